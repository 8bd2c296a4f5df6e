package cmd

import (
	"fmt"

	"github.com/KaramelBytes/coexnet/internal/utils"
	"github.com/spf13/cobra"
)

var previewRows int

var previewCmd = &cobra.Command{
	Use:   "preview <handle>",
	Short: "Show the columns and first rows of an imported table as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		st, err := openStore(c)
		if err != nil {
			return err
		}
		t, err := st.Table(args[0])
		if err != nil {
			return err
		}
		info, err := st.TableInfo(args[0])
		if err != nil {
			return err
		}
		n := c.PreviewRows
		if cmd.Flags().Changed("rows") {
			n = previewRows
		}
		b, err := utils.PrettyJSON(map[string]any{
			"handle":  info.Handle,
			"source":  info.Source,
			"columns": t.Columns,
			"rows":    t.NumRows(),
			"head":    t.Head(n),
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)
	previewCmd.Flags().IntVarP(&previewRows, "rows", "n", 10, "number of rows to show (default from config preview_rows)")
}
