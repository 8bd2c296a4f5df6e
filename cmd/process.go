package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	procIDs        []string
	procIDsFile    string
	procPrint      bool
	procNoEntities bool
)

var processCmd = &cobra.Command{
	Use:   "process <handle>",
	Short: "Build the correlation edge list for a set of identifiers",
	Long: `Process detects the layout of an imported table, keeps the rows whose identifier is in
the requested set and writes an edge list of pairs whose Pearson correlation is significant.`,
	Example: `  coexnet process expression --ids TP53,BRCA1,EGFR
  coexnet process expression --ids-file genes.txt --print`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		ids, err := readIDs(procIDs, procIDsFile)
		if err != nil {
			return err
		}
		st, err := openStore(c)
		if err != nil {
			return err
		}
		svc, err := newService(c, st, nil, !procNoEntities)
		if err != nil {
			return err
		}
		res, err := svc.DetectAndBuild(cmd.Context(), args[0], ids)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Layout: identifier column '%s' (#%d), data starts at row %d\n", res.ColumnName, res.Column, res.StartRow)
		fmt.Fprintf(out, "✓ Wrote edge list: %s (%d nodes, %d edges)\n", res.EdgeList, res.Nodes, res.Edges)
		if path, err := st.EdgeListPath(res.EdgeList); err == nil {
			fmt.Fprintf(out, "  %s\n", path)
		}
		if procPrint && res.Graph != nil {
			if _, err := res.Graph.WriteTo(out); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(processCmd)
	processCmd.Flags().StringSliceVar(&procIDs, "ids", nil, "identifiers to correlate (comma-separated or repeated)")
	processCmd.Flags().StringVar(&procIDsFile, "ids-file", "", "file with identifiers, one per line or comma-separated")
	processCmd.Flags().BoolVar(&procPrint, "print", false, "print the edge list to stdout")
	processCmd.Flags().BoolVar(&procNoEntities, "no-entities", false, "skip the named-entity bonus (faster, no model load)")
}
