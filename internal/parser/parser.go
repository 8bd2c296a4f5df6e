package parser

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/coexnet/internal/analysis"
)

// Parser turns a spreadsheet file into an analysis.Table.
type Parser interface {
	CanParse(filename string) bool
	Parse(r io.Reader, name string, opt analysis.LoadOptions) (*analysis.Table, error)
}

var registry []Parser

// Register adds a parser implementation to the registry.
func Register(p Parser) {
	registry = append(registry, p)
}

// ErrUnsupported indicates a format is not supported.
var ErrUnsupported = errors.New("unsupported table format")

// Lookup returns the parser for filename, or ErrUnsupported.
func Lookup(filename string) (Parser, error) {
	for _, p := range registry {
		if p.CanParse(filename) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", filepath.Base(filename), ErrUnsupported)
}

// Supported reports whether a parser is registered for filename.
func Supported(filename string) bool {
	_, err := Lookup(filename)
	return err == nil
}

// ParseFile selects a parser based on the file extension and loads the table.
func ParseFile(path string, opt analysis.LoadOptions) (*analysis.Table, error) {
	p, err := Lookup(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open table: %w", err)
	}
	defer f.Close()
	return p.Parse(f, filepath.Base(path), opt)
}

// Parse loads a table from r, using name to pick the parser.
func Parse(r io.Reader, name string, opt analysis.LoadOptions) (*analysis.Table, error) {
	p, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	return p.Parse(r, filepath.Base(name), opt)
}

func init() {
	Register(csvParser{})
	Register(xlsxParser{})
}
