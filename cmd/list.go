package cmd

import (
	"fmt"

	"github.com/KaramelBytes/coexnet/internal/analysis"
	"github.com/spf13/cobra"
)

var (
	listTables    bool
	listEdgeLists bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List imported tables or written edge lists",
	RunE: func(cmd *cobra.Command, args []string) error {
		if listTables == listEdgeLists { // either both true or both false
			return fmt.Errorf("specify exactly one of --tables or --edgelists")
		}
		c, err := requireConfig()
		if err != nil {
			return err
		}
		st, err := openStore(c)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if listTables {
			tables, err := st.Tables()
			if err != nil {
				return err
			}
			if len(tables) == 0 {
				fmt.Fprintf(out, "(no tables in %s)\n", c.TablesDir())
				return nil
			}
			for _, t := range tables {
				fmt.Fprintf(out, "- %s: %s (%d rows, %d columns, imported %s)\n",
					t.Handle, t.Source, t.Rows, t.Columns, t.ImportedAt.Format("2006-01-02 15:04"))
			}
			return nil
		}
		names, err := st.EdgeLists()
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Fprintf(out, "(no edge lists in %s)\n", c.EdgeListsDir())
			return nil
		}
		for _, n := range names {
			g, err := st.EdgeList(n)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "- %s (%d nodes, %d edges%s)\n", n, len(g.Nodes), len(g.Edges), hubSummary(g))
		}
		return nil
	},
}

// hubSummary names the most connected node of g, first in node order on ties.
func hubSummary(g *analysis.EdgeList) string {
	hub, best := "", 0
	for _, id := range g.Nodes {
		if d := g.Degree(id); d > best {
			hub, best = id, d
		}
	}
	if hub == "" {
		return ""
	}
	return fmt.Sprintf(", hub %s with degree %d", hub, best)
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listTables, "tables", false, "list imported tables")
	listCmd.Flags().BoolVar(&listEdgeLists, "edgelists", false, "list written edge lists")
}
