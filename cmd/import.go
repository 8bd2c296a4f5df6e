package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

var (
	impLoad  loadFlags
	impQuiet bool
)

var importCmd = &cobra.Command{
	Use:   "import <files...>",
	Short: "Import CSV/TSV/XLSX tables into the data directory",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		files, err := expandInputs(args)
		if err != nil {
			return err
		}
		opt, err := impLoad.options(c)
		if err != nil {
			return err
		}
		st, err := openStore(c)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		total := len(files)
		for i, path := range files {
			if !impQuiet {
				fmt.Fprintf(out, "[%d/%d] Importing %s...\n", i+1, total, filepath.Base(path))
			}
			info, err := st.ImportFile(path, opt)
			if err != nil {
				return fmt.Errorf("%s: %w", filepath.Base(path), err)
			}
			fmt.Fprintf(out, "✓ Imported %s as '%s' (%d rows, %d columns)\n", info.Source, info.Handle, info.Rows, info.Columns)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
	impLoad.register(importCmd)
	importCmd.Flags().BoolVarP(&impQuiet, "quiet", "q", false, "suppress progress lines")
}
