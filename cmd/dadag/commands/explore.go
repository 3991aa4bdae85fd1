package commands

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/l3aro/docassemble-dag/pkg/query"
)

// exploreCmd represents the explore command
var exploreCmd = &cobra.Command{
	Use:   "explore <file|dir>...",
	Short: "Browse the graph interactively",
	Long: `Opens an interactive browser over the dependency graph. Pick a node to
see its kind, authority, provenance, and neighborhood, then jump to a
neighbor or back to the full list.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := buildService(args)
		if err != nil {
			return err
		}
		return runExplore(svc)
	},
}

func runExplore(svc *query.Service) error {
	nodes := svc.Nodes()
	if len(nodes) == 0 {
		return fmt.Errorf("graph is empty")
	}

	current := ""
	for {
		name, err := pickNode(svc, current)
		if err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return fmt.Errorf("interactive prompt failed: %w", err)
		}
		if name == "" {
			return nil
		}

		detail, err := svc.Node(name)
		if err != nil {
			return err
		}
		printNodeDetail(detail)
		current = name
	}
}

// pickNode offers the current node's neighborhood first, then the full
// node list. Returns "" when the user chooses to quit.
func pickNode(svc *query.Service, current string) (string, error) {
	var options []huh.Option[string]

	if current != "" {
		detail, err := svc.Node(current)
		if err == nil {
			for _, dep := range detail.DependsOn {
				options = append(options, huh.NewOption("← "+dep, dep))
			}
			for _, dep := range detail.Dependents {
				options = append(options, huh.NewOption("→ "+dep, dep))
			}
		}
	}
	for _, node := range svc.Nodes() {
		label := node.Name
		if node.Kind != "" {
			label = fmt.Sprintf("%s (%s)", node.Name, node.Kind)
		}
		options = append(options, huh.NewOption(label, node.Name))
	}
	options = append(options, huh.NewOption("quit", ""))

	var choice string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Select a node").
				Options(options...).
				Value(&choice),
		),
	)
	if err := form.Run(); err != nil {
		return "", err
	}
	return choice, nil
}

func printNodeDetail(detail query.NodeDetail) {
	node := detail.Node
	fmt.Printf("\n=== %s ===\n", node.Name)
	fmt.Printf("kind:      %s\n", node.Kind)
	fmt.Printf("source:    %s\n", node.Source)
	if node.Authority != "" {
		fmt.Printf("authority: %s\n", node.Authority)
	}
	if node.FilePath != "" {
		fmt.Printf("declared:  %s:%d\n", node.FilePath, node.LineNumber)
	}
	if len(detail.DependsOn) > 0 {
		fmt.Printf("depends on: %s\n", joinStrings(detail.DependsOn))
	}
	if len(detail.Dependents) > 0 {
		fmt.Printf("dependents: %s\n", joinStrings(detail.Dependents))
	}
	fmt.Println()
}
