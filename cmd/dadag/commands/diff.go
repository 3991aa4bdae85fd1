package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/l3aro/docassemble-dag/pkg/diff"
)

// diffCmd represents the diff command
var diffCmd = &cobra.Command{
	Use:   "diff <old file|dir> <new file|dir>",
	Short: "Compare two graph versions and report impact",
	Long: `Builds a dependency graph from each input and reports what changed:
added, removed, and changed nodes and edges, authority changes, and the
downstream nodes affected by the changes.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		failOnChange, _ := cmd.Flags().GetBool("fail-on-change")

		oldGraph, err := buildGraph(args[:1], cfg.Recursive)
		if err != nil {
			return fmt.Errorf("building old graph: %w", err)
		}
		newGraph, err := buildGraph(args[1:], cfg.Recursive)
		if err != nil {
			return fmt.Errorf("building new graph: %w", err)
		}

		d := diff.Compare(oldGraph, newGraph)
		if err := printJSON(d); err != nil {
			return err
		}

		if failOnChange && !d.Empty() {
			return fmt.Errorf("graphs differ: %d node(s) and %d edge(s) affected",
				len(d.AddedNodes)+len(d.RemovedNodes)+len(d.ChangedNodes),
				len(d.AddedEdges)+len(d.RemovedEdges))
		}
		return nil
	},
}

func init() {
	diffCmd.Flags().Bool("fail-on-change", false, "Exit nonzero when the graphs differ")
}
