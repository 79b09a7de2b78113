package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var resetConfirmed bool

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export tasks, categories and tags as JSON",
	Long: `Export writes tasks, categories and tags to a JSON document (stdout when
no file is given). Templates and units are not included.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := current.Adapter.Export(current.Now())
		if err != nil {
			return err
		}
		if len(args) == 0 {
			_, err := cmd.OutOrStdout().Write(append(data, '\n'))
			return err
		}
		if err := os.WriteFile(args[0], data, 0o644); err != nil {
			return fmt.Errorf("writing export: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "exported to %s\n", args[0])
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a JSON export, replacing the collections it contains",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading import: %w", err)
		}
		if err := current.Adapter.Import(data); err != nil {
			return err
		}
		current.Adapter.Reload(current.Store)

		snap := current.Store.Snapshot()
		fmt.Fprintf(cmd.OutOrStdout(), "imported: %d tasks, %d categories, %d tags\n",
			len(snap.Tasks), len(snap.Categories), len(snap.Tags))
		return nil
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete every stored collection",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !resetConfirmed {
			return fmt.Errorf("reset deletes all data; pass --yes to confirm")
		}
		if err := current.Adapter.Clear(); err != nil {
			return err
		}
		current.Adapter.Reload(current.Store)
		fmt.Fprintln(cmd.OutOrStdout(), "all data deleted")
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolVar(&resetConfirmed, "yes", false, "confirm deletion")
	rootCmd.AddCommand(exportCmd, importCmd, resetCmd)
}
