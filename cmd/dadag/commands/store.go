package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/l3aro/docassemble-dag/pkg/store"
)

// storeCmd represents the store command
var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Save and load graph baselines",
}

var storeSaveCmd = &cobra.Command{
	Use:   "save <file|dir>...",
	Short: "Save the graph as a baseline",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		version, _ := cmd.Flags().GetString("graph-version")

		g, err := buildGraph(args, cfg.Recursive)
		if err != nil {
			return err
		}
		s, err := store.Open(cfg.StoreDir)
		if err != nil {
			return err
		}

		id, err := s.Save(g, name, version, map[string]any{"inputs": args})
		if err != nil {
			return err
		}
		fmt.Printf("Saved graph %s (%d nodes, %d edges) as %s\n", name, g.Len(), g.EdgeCount(), id)
		return nil
	},
}

var storeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored baselines",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOutput, _ := cmd.Flags().GetBool("json")

		s, err := store.Open(cfg.StoreDir)
		if err != nil {
			return err
		}
		records, err := s.List()
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(records)
		}
		if len(records) == 0 {
			fmt.Println("Store is empty.")
			return nil
		}
		for _, rec := range records {
			fmt.Printf("%s  %s %s  %d nodes, %d edges  %s\n",
				rec.ID, rec.Name, rec.Version, rec.NodeCount, rec.EdgeCount,
				rec.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

var storeShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a stored graph",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		if format == "" {
			format = cfg.DefaultFormat
		}

		s, err := store.Open(cfg.StoreDir)
		if err != nil {
			return err
		}
		g, rec, err := s.Load(args[0])
		if err != nil {
			return err
		}

		data, err := renderGraph(g, format, rec.Name)
		if err != nil {
			return err
		}
		return writeOutput(data, "")
	},
}

var storeDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a stored baseline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := store.Open(cfg.StoreDir)
		if err != nil {
			return err
		}
		if err := s.Delete(args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted %s\n", args[0])
		return nil
	},
}

func init() {
	storeSaveCmd.Flags().StringP("name", "n", "interview", "Baseline name")
	storeSaveCmd.Flags().String("graph-version", "", "Baseline version label")
	storeListCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	storeShowCmd.Flags().StringP("format", "f", "", "Output format: json, dot, or graphml")

	storeCmd.AddCommand(storeSaveCmd)
	storeCmd.AddCommand(storeListCmd)
	storeCmd.AddCommand(storeShowCmd)
	storeCmd.AddCommand(storeDeleteCmd)
}
