package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/l3aro/docassemble-dag/pkg/query"
	"github.com/l3aro/docassemble-dag/pkg/types"
)

// queryCmd represents the query command
var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Inspect nodes, paths, and graph statistics",
}

var queryStatsCmd = &cobra.Command{
	Use:   "stats <file|dir>...",
	Short: "Show graph statistics",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := buildService(args)
		if err != nil {
			return err
		}
		return printJSON(svc.Stats())
	},
}

var queryNodeCmd = &cobra.Command{
	Use:   "node <name> <file|dir>...",
	Short: "Show one node with its dependencies and dependents",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		transitive, _ := cmd.Flags().GetBool("transitive")

		svc, err := buildService(args[1:])
		if err != nil {
			return err
		}
		detail, err := svc.Node(args[0])
		if err != nil {
			return err
		}
		if !transitive {
			return printJSON(detail)
		}

		dependents, err := svc.TransitiveDependents(args[0])
		if err != nil {
			return err
		}
		return printJSON(map[string]any{
			"node":                    detail.Node,
			"transitive_dependencies": svc.TransitiveDependencies(args[0]),
			"transitive_dependents":   dependents,
		})
	},
}

var queryListCmd = &cobra.Command{
	Use:   "list <file|dir>...",
	Short: "List nodes, optionally filtered by kind or authority",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, _ := cmd.Flags().GetString("kind")
		authority, _ := cmd.Flags().GetString("authority")

		svc, err := buildService(args)
		if err != nil {
			return err
		}

		switch {
		case authority != "":
			return printJSON(svc.NodesByAuthority(authority))
		case kind != "":
			return printJSON(svc.NodesByKind(types.NodeKind(kind)))
		default:
			return printJSON(svc.Nodes())
		}
	},
}

var queryPathCmd = &cobra.Command{
	Use:   "path <from> <to> <file|dir>...",
	Short: "Show a shortest dependency path between two nodes",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := buildService(args[2:])
		if err != nil {
			return err
		}
		path := svc.Path(args[0], args[1])
		if path == nil {
			return fmt.Errorf("no path from %q to %q", args[0], args[1])
		}
		return printJSON(path)
	},
}

func buildService(args []string) (*query.Service, error) {
	g, err := buildGraph(args, cfg.Recursive)
	if err != nil {
		return nil, err
	}
	return query.NewService(g), nil
}

func init() {
	queryNodeCmd.Flags().BoolP("transitive", "t", false, "Include transitive dependencies and dependents")
	queryListCmd.Flags().StringP("kind", "k", "", "Filter by node kind")
	queryListCmd.Flags().StringP("authority", "a", "", "Filter by authority substring")

	queryCmd.AddCommand(queryStatsCmd)
	queryCmd.AddCommand(queryNodeCmd)
	queryCmd.AddCommand(queryListCmd)
	queryCmd.AddCommand(queryPathCmd)
}
