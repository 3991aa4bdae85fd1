package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/l3aro/docassemble-dag/internal/config"
	"github.com/l3aro/docassemble-dag/internal/log"
)

// cfg is the loaded configuration, shared by all commands.
var cfg *config.Config

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "dadag",
	Short: "dadag - dependency graph analysis for interview YAML",
	Long: `dadag statically analyzes declarative interview documents and builds
a dependency graph of their variables, questions, and rules.

Commands:
  extract     Build and export the dependency graph
  validate    Check the graph against policy rules
  order       Compute evaluation order (topological, layers, execution)
  query       Inspect nodes, paths, and graph statistics
  diff        Compare two graph versions and report impact
  tree        Extract the decision tree rooted at an entity
  explore     Browse the graph interactively
  store       Save and load graph baselines

Use "dadag [command] --help" for more information about a command.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")

		var err error
		if configPath != "" {
			cfg, err = config.LoadFromFile(configPath)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		verbose, _ := cmd.Flags().GetBool("verbose")
		if verbose || cfg.Verbose {
			log.Default().SetLevel(log.DebugLevel)
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return RootCmd.Execute()
}

// SetVersion records build metadata for the version command.
func SetVersion(version, buildTime string) {
	RootCmd.Version = version
	if buildTime != "" {
		RootCmd.Version = version + " (built " + buildTime + ")"
	}
}

func init() {
	RootCmd.PersistentFlags().String("config", "", "Path to config file")
	RootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	RootCmd.AddCommand(extractCmd)
	RootCmd.AddCommand(validateCmd)
	RootCmd.AddCommand(orderCmd)
	RootCmd.AddCommand(queryCmd)
	RootCmd.AddCommand(diffCmd)
	RootCmd.AddCommand(treeCmd)
	RootCmd.AddCommand(exploreCmd)
	RootCmd.AddCommand(storeCmd)
}
