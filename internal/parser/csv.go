package parser

import (
	"io"
	"strings"

	"github.com/KaramelBytes/coexnet/internal/analysis"
)

type csvParser struct{}

func (csvParser) CanParse(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".tsv") || strings.HasSuffix(name, ".txt")
}

func (csvParser) Parse(r io.Reader, name string, opt analysis.LoadOptions) (*analysis.Table, error) {
	return analysis.ReadCSV(r, name, opt)
}
