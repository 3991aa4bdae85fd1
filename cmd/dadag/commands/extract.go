package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/l3aro/docassemble-dag/pkg/diff"
	"github.com/l3aro/docassemble-dag/pkg/graph"
	"github.com/l3aro/docassemble-dag/pkg/store"
	"github.com/l3aro/docassemble-dag/pkg/types"
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract <file|dir>...",
	Short: "Build and export the dependency graph",
	Long: `Parses interview YAML files, builds the merged dependency graph, and
writes it in the requested format. With --baseline, also reports the
differences against a snapshot file or a stored graph.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")
		checkCycles, _ := cmd.Flags().GetBool("check-cycles")
		baseline, _ := cmd.Flags().GetString("baseline")
		noRecursive, _ := cmd.Flags().GetBool("no-recursive")
		noIncludes, _ := cmd.Flags().GetBool("no-includes")

		if format == "" {
			format = cfg.DefaultFormat
		}
		if noIncludes {
			cfg.FollowIncludes = false
		}

		g, err := buildGraph(args, cfg.Recursive && !noRecursive)
		if err != nil {
			return err
		}

		if checkCycles {
			if cycles := g.FindCycles(); len(cycles) > 0 {
				return &graph.CycleError{
					Message: fmt.Sprintf("graph contains %d cycle(s)", len(cycles)),
					Cycles:  cycles,
				}
			}
		}

		data, err := renderGraph(g, format, "dependency_graph")
		if err != nil {
			return err
		}
		if err := writeOutput(data, output); err != nil {
			return err
		}

		if baseline != "" {
			return reportBaselineDiff(g, baseline)
		}
		return nil
	},
}

func reportBaselineDiff(g *graph.Graph, baseline string) error {
	old, err := loadBaseline(baseline)
	if err != nil {
		return err
	}

	d := diff.Compare(old, g)
	if d.Empty() {
		fmt.Println("No changes against baseline.")
		return nil
	}
	return printJSON(d)
}

// loadBaseline resolves a baseline reference: a JSON snapshot file on disk,
// or a stored graph id.
func loadBaseline(ref string) (*graph.Graph, error) {
	if _, err := os.Stat(ref); err == nil {
		data, err := os.ReadFile(ref)
		if err != nil {
			return nil, fmt.Errorf("reading baseline: %w", err)
		}
		var snap types.Snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			return nil, fmt.Errorf("parsing baseline %s: %w", ref, err)
		}
		return graph.FromSnapshot(snap)
	}

	s, err := store.Open(cfg.StoreDir)
	if err != nil {
		return nil, err
	}
	old, _, err := s.Load(ref)
	if err != nil {
		if errors.Is(err, store.ErrGraphNotFound) {
			return nil, fmt.Errorf("baseline %q is neither a file nor an id in store %s", ref, cfg.StoreDir)
		}
		return nil, err
	}
	return old, nil
}

func init() {
	extractCmd.Flags().StringP("format", "f", "", "Output format: json, dot, or graphml")
	extractCmd.Flags().StringP("output", "o", "", "Write output to file instead of stdout")
	extractCmd.Flags().Bool("check-cycles", false, "Fail if the graph contains cycles")
	extractCmd.Flags().String("baseline", "", "Snapshot file or stored graph id to diff against")
	extractCmd.Flags().Bool("no-recursive", false, "Do not scan directories recursively")
	extractCmd.Flags().Bool("no-includes", false, "Do not resolve include: directives")
}
