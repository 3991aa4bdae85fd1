package commands

import (
	"github.com/spf13/cobra"

	"github.com/l3aro/docassemble-dag/pkg/decision"
)

// treeCmd represents the tree command
var treeCmd = &cobra.Command{
	Use:   "tree <root> <file|dir>...",
	Short: "Extract the decision tree rooted at an entity",
	Long: `Builds the dependency graph and extracts the decision tree reachable
from the given root entity, annotating branches with their conditional
directives.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")

		root, inputs := args[0], args[1:]

		g, err := buildGraph(inputs, cfg.Recursive)
		if err != nil {
			return err
		}
		conditionals, err := collectConditionals(inputs, cfg.Recursive)
		if err != nil {
			return err
		}

		tree, err := decision.Extract(g, root, conditionals)
		if err != nil {
			return err
		}

		if format == "dot" {
			return writeOutput([]byte(decision.ToDOT(tree, "decision_tree")), "")
		}
		return printJSON(tree)
	},
}

func init() {
	treeCmd.Flags().StringP("format", "f", "json", "Output format: json or dot")
}
