package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/KaramelBytes/coexnet/internal/analysis"
)

type xlsxParser struct{}

func (xlsxParser) CanParse(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".xlsx") || strings.HasSuffix(name, ".xlsm")
}

func (xlsxParser) Parse(r io.Reader, name string, opt analysis.LoadOptions) (*analysis.Table, error) {
	t, err := analysis.ReadXLSX(r, name, opt)
	if err != nil {
		return nil, err
	}
	if opt.SheetName != "" {
		t.Name = fmt.Sprintf("%s (sheet: %s)", t.Name, opt.SheetName)
	}
	return t, nil
}
