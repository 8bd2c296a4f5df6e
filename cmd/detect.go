package cmd

import (
	"fmt"
	"os"

	"github.com/KaramelBytes/coexnet/internal/analysis"
	"github.com/KaramelBytes/coexnet/internal/parser"
	"github.com/KaramelBytes/coexnet/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	detLoad       loadFlags
	detOutputPath string
	detSampleRows int
	detNoEntities bool
)

var detectCmd = &cobra.Command{
	Use:   "detect <handle|file>",
	Short: "Detect the identifier column and data start row and print a layout report",
	Long: `Detect scores every column of a table for identifier-likeness, picks the identifier
column and the first data row, and prints a Markdown report. The argument is either the handle
of an imported table or a CSV/TSV/XLSX file path.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		classifier, err := newClassifier(!detNoEntities)
		if err != nil {
			return err
		}
		svc := pipeline.New(pipeline.TableLoaderFunc(loadForDetect), nil, classifier, pipelineOptions(c),
			pipeline.WithLogger(logger))

		t, lay, derr := svc.Detect(cmd.Context(), args[0])
		if lay == nil {
			return derr
		}
		md := lay.Markdown(t, detSampleRows)
		if detOutputPath != "" {
			if err := os.WriteFile(detOutputPath, []byte(md), 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote layout report to %s\n", detOutputPath)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), md)
		}
		return derr
	},
}

// loadForDetect reads arg from disk when it names a supported file, otherwise
// from the table cache.
func loadForDetect(arg string) (*analysis.Table, error) {
	if info, err := os.Stat(arg); err == nil && !info.IsDir() && parser.Supported(arg) {
		opt, err := detLoad.options(cfg)
		if err != nil {
			return nil, err
		}
		return parser.ParseFile(arg, opt)
	}
	st, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	return st.Table(arg)
}

func init() {
	rootCmd.AddCommand(detectCmd)
	detLoad.register(detectCmd)
	detectCmd.Flags().StringVarP(&detOutputPath, "output", "o", "", "optional path to write the report (Markdown)")
	detectCmd.Flags().IntVar(&detSampleRows, "sample-rows", 5, "number of data rows to include in the report")
	detectCmd.Flags().BoolVar(&detNoEntities, "no-entities", false, "skip the named-entity bonus (faster, no model load)")
}
