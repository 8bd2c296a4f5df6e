package cmd

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/coexnet/internal/analysis"
	cfgpkg "github.com/KaramelBytes/coexnet/internal/config"
	"github.com/KaramelBytes/coexnet/internal/metrics"
	"github.com/KaramelBytes/coexnet/internal/nlp"
	"github.com/KaramelBytes/coexnet/internal/pipeline"
	"github.com/KaramelBytes/coexnet/internal/store"
)

// loadFlags are the table loading flags shared by import and detect.
type loadFlags struct {
	delimiter  string
	decimal    string
	thousands  string
	sheetName  string
	sheetIndex int
	maxRows    int
}

func (f *loadFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (sniffed if omitted)")
	cmd.Flags().StringVar(&f.decimal, "decimal", "", "decimal separator for numbers: '.'|'comma' (config or auto-detect if omitted)")
	cmd.Flags().StringVar(&f.thousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space' (config or auto-detect if omitted)")
	cmd.Flags().StringVar(&f.sheetName, "sheet-name", "", "XLSX: sheet name to load")
	cmd.Flags().IntVar(&f.sheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
	cmd.Flags().IntVar(&f.maxRows, "max-rows", 0, "maximum data rows to load (0 = unlimited)")
}

// options merges the flags over the configured number format.
func (f *loadFlags) options(c *cfgpkg.Global) (analysis.LoadOptions, error) {
	opt := analysis.DefaultLoadOptions()
	opt.MaxRows = f.maxRows
	opt.SheetName = f.sheetName
	opt.SheetIndex = f.sheetIndex
	if c != nil {
		opt.Format = numberFormat(c)
	}
	switch f.delimiter {
	case "":
	case ",":
		opt.Delimiter = ','
	case "\t", "tab":
		opt.Delimiter = '\t'
	case ";":
		opt.Delimiter = ';'
	default:
		return opt, fmt.Errorf("unsupported --delimiter: %s", f.delimiter)
	}
	switch strings.ToLower(strings.TrimSpace(f.decimal)) {
	case ",", "comma":
		opt.Format.DecimalSeparator = ','
	case ".", "dot":
		opt.Format.DecimalSeparator = '.'
	case "":
	default:
		return opt, fmt.Errorf("unsupported --decimal: %s (use '.'|'comma')", f.decimal)
	}
	switch strings.ToLower(f.thousands) {
	case ",":
		opt.Format.ThousandsSeparator = ','
	case ".":
		opt.Format.ThousandsSeparator = '.'
	case "space", " ":
		opt.Format.ThousandsSeparator = ' '
	case "":
	default:
		return opt, fmt.Errorf("unsupported --thousands: %s (use ','|'.'|'space')", f.thousands)
	}
	return opt, nil
}

func numberFormat(c *cfgpkg.Global) analysis.NumberFormat {
	return analysis.NumberFormat{DecimalSeparator: c.DecimalRune(), ThousandsSeparator: c.ThousandsRune()}
}

func pipelineOptions(c *cfgpkg.Global) pipeline.Options {
	return pipeline.Options{
		Threshold:   c.SignificanceThreshold,
		MinScore:    c.MinColumnScore,
		SampleSize:  c.SampleSize,
		MirrorEdges: c.MirrorEdges,
		Seed:        c.Seed,
		Format:      numberFormat(c),
	}
}

func openStore(c *cfgpkg.Global) (*store.Store, error) {
	return store.Open(c.DataDir)
}

// newClassifier loads the entity model unless entities is false.
func newClassifier(entities bool) (analysis.EntityClassifier, error) {
	if !entities {
		return analysis.NoEntities, nil
	}
	pc, err := nlp.NewProseClassifier()
	if err != nil {
		return nil, err
	}
	return pc, nil
}

// newService wires the store, the entity model and metrics into a pipeline.
func newService(c *cfgpkg.Global, st *store.Store, rec *metrics.Recorder, entities bool) (*pipeline.Service, error) {
	classifier, err := newClassifier(entities)
	if err != nil {
		return nil, err
	}
	return pipeline.New(st, st, classifier, pipelineOptions(c),
		pipeline.WithLogger(logger),
		pipeline.WithMetrics(rec),
	), nil
}

// expandInputs resolves globs and literal paths, de-duplicated and sorted.
func expandInputs(args []string) ([]string, error) {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			// treat as literal path if exists
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no input files matched")
	}
	sort.Strings(files)
	return files, nil
}

// readIDs collects identifiers from comma-separated flags and an optional file
// with one identifier (or comma-separated list) per line.
func readIDs(ids []string, path string) ([]string, error) {
	out := append([]string(nil), ids...)
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open ids file: %w", err)
		}
		defer f.Close()
		sc := bufio.NewScanner(f)
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			out = append(out, strings.Split(line, ",")...)
		}
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("read ids file: %w", err)
		}
	}
	out = pipeline.CleanTargets(out)
	if len(out) == 0 {
		return nil, fmt.Errorf("no identifiers given (use --ids or --ids-file)")
	}
	return out, nil
}
