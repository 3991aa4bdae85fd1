package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// orderCmd represents the order command
var orderCmd = &cobra.Command{
	Use:   "order <file|dir>...",
	Short: "Compute evaluation order",
	Long: `Computes an evaluation order for the dependency graph.

Modes:
  topo    one flat topological order (default)
  layers  nodes grouped by dependency depth
  exec    execution stages from given start nodes (or the roots)`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, _ := cmd.Flags().GetString("mode")
		start, _ := cmd.Flags().GetStringSlice("start")
		jsonOutput, _ := cmd.Flags().GetBool("json")

		g, err := buildGraph(args, cfg.Recursive)
		if err != nil {
			return err
		}

		switch mode {
		case "topo":
			order, err := g.TopologicalSort()
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(order)
			}
			for i, name := range order {
				fmt.Printf("%3d. %s\n", i+1, name)
			}
		case "layers":
			layers := g.DependencyLayers()
			if jsonOutput {
				return printJSON(layers)
			}
			printStages(layers, "layer")
		case "exec":
			stages, err := g.ExecutionOrder(start)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(stages)
			}
			printStages(stages, "stage")
		default:
			return fmt.Errorf("unknown mode %q: must be topo, layers, or exec", mode)
		}
		return nil
	},
}

func printStages(stages [][]string, label string) {
	for i, stage := range stages {
		fmt.Printf("%s %d: %s\n", label, i, joinStrings(stage))
	}
}

func init() {
	orderCmd.Flags().StringP("mode", "m", "topo", "Order mode: topo, layers, or exec")
	orderCmd.Flags().StringSlice("start", nil, "Start nodes for exec mode (default: graph roots)")
	orderCmd.Flags().BoolP("json", "j", false, "Output as JSON")
}
