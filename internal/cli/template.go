package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"github.com/tgienger/taskboard/internal/models"
	"github.com/tgienger/taskboard/internal/store"
	"gopkg.in/yaml.v3"
)

var applyCategory string

var templateCmd = &cobra.Command{
	Use:     "template",
	Aliases: []string{"templates"},
	Short:   "Manage project templates and generate tasks from them",
}

var templateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List templates",
	Run: func(cmd *cobra.Command, args []string) {
		snap := current.Store.Snapshot()
		units := make(map[string]string, len(snap.Units))
		for _, u := range snap.Units {
			units[u.ID] = u.Name
		}

		t := table.New().Border(lipgloss.NormalBorder()).Headers("ID", "NAME", "UNIT", "PHASES", "TASKS")
		for _, tpl := range snap.Templates {
			t.Row(shortID(tpl.ID), tpl.Name, units[models.Deref(tpl.UnitID)],
				fmt.Sprint(len(tpl.Phases)), fmt.Sprint(tpl.TaskCount()))
		}
		fmt.Fprintln(cmd.OutOrStdout(), t.Render())
	},
}

var templateImportCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Create a template from a YAML definition",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading template file: %w", err)
		}
		in, err := decodeTemplateYAML(data, current.Store.Snapshot())
		if err != nil {
			return err
		}
		if err := store.ValidateTemplate(in); err != nil {
			return err
		}

		next := current.Store.Dispatch(store.AddTemplate{Input: in})
		tpl := next.Templates[len(next.Templates)-1]
		fmt.Fprintf(cmd.OutOrStdout(), "added template %s %s (%d tasks)\n", shortID(tpl.ID), tpl.Name, tpl.TaskCount())
		return nil
	},
}

var templatePreviewCmd = &cobra.Command{
	Use:   "preview <id|name>",
	Short: "Show the tasks a template would create, in order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tpl, err := resolveTemplate(current.Store.Snapshot(), args[0])
		if err != nil {
			return err
		}
		for i, title := range store.PreviewTemplate(tpl) {
			fmt.Fprintf(cmd.OutOrStdout(), "%3d. %s\n", i+1, title)
		}
		return nil
	},
}

var templateApplyCmd = &cobra.Command{
	Use:   "apply <id|name>",
	Short: "Generate tasks from a template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		snap := current.Store.Snapshot()
		tpl, err := resolveTemplate(snap, args[0])
		if err != nil {
			return err
		}
		var categoryID *string
		if applyCategory != "" {
			c, err := resolveCategory(snap, applyCategory)
			if err != nil {
				return err
			}
			categoryID = models.Ref(c.ID)
		}

		before := len(snap.Tasks)
		next := current.Store.Dispatch(store.ApplyTemplate{TemplateID: tpl.ID, CategoryID: categoryID})
		fmt.Fprintf(cmd.OutOrStdout(), "created %d tasks from %s\n", len(next.Tasks)-before, tpl.Name)
		return nil
	},
}

var templateDeleteCmd = &cobra.Command{
	Use:   "delete <id|name>",
	Short: "Delete a template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tpl, err := resolveTemplate(current.Store.Snapshot(), args[0])
		if err != nil {
			return err
		}
		current.Store.Dispatch(store.DeleteTemplate{ID: tpl.ID})
		fmt.Fprintf(cmd.OutOrStdout(), "deleted template %s\n", tpl.Name)
		return nil
	},
}

func init() {
	templateApplyCmd.Flags().StringVarP(&applyCategory, "category", "c", "", "category id or name for the generated tasks")

	templateCmd.AddCommand(templateListCmd, templateImportCmd, templatePreviewCmd, templateApplyCmd, templateDeleteCmd)
	rootCmd.AddCommand(templateCmd)
}

// decodeTemplateYAML parses a template definition and resolves its unit by
// name or id.
func decodeTemplateYAML(data []byte, snap store.State) (models.TemplateInput, error) {
	var in models.TemplateInput
	if err := yaml.Unmarshal(data, &in); err != nil {
		return in, fmt.Errorf("parsing template: %w", err)
	}
	if in.Unit != "" {
		u, err := resolveUnit(snap, in.Unit)
		if err != nil {
			return in, err
		}
		in.UnitID = models.Ref(u.ID)
	}
	return in, nil
}

func resolveTemplate(snap store.State, s string) (models.Template, error) {
	for _, t := range snap.Templates {
		if t.Name == s {
			return t, nil
		}
	}
	return resolveID(snap.Templates, s, func(t models.Template) string { return t.ID }, "template")
}
