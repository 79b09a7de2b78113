package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"github.com/tgienger/taskboard/internal/models"
	"github.com/tgienger/taskboard/internal/store"
)

var labelColor string

var categoryCmd = &cobra.Command{
	Use:     "category",
	Aliases: []string{"categories"},
	Short:   "Manage categories",
}

var categoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List categories",
	Run: func(cmd *cobra.Command, args []string) {
		t := table.New().Border(lipgloss.NormalBorder()).Headers("ID", "NAME", "COLOR")
		for _, c := range current.Store.Snapshot().Categories {
			t.Row(shortID(c.ID), c.Name, swatch(c.Color))
		}
		fmt.Fprintln(cmd.OutOrStdout(), t.Render())
	},
}

var categoryAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := models.CategoryInput{Name: args[0], Color: labelColor}
		if err := store.ValidateCategory(in); err != nil {
			return err
		}
		next := current.Store.Dispatch(store.AddCategory{Input: in})
		c := next.Categories[len(next.Categories)-1]
		fmt.Fprintf(cmd.OutOrStdout(), "added category %s %s\n", shortID(c.ID), c.Name)
		return nil
	},
}

var categoryDeleteCmd = &cobra.Command{
	Use:   "delete <id|name>",
	Short: "Delete a category and detach it from its tasks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := resolveCategory(current.Store.Snapshot(), args[0])
		if err != nil {
			return err
		}
		current.Store.Dispatch(store.DeleteCategory{ID: c.ID})
		fmt.Fprintf(cmd.OutOrStdout(), "deleted category %s\n", c.Name)
		return nil
	},
}

var tagCmd = &cobra.Command{
	Use:     "tag",
	Aliases: []string{"tags"},
	Short:   "Manage tags",
}

var tagListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tags",
	Run: func(cmd *cobra.Command, args []string) {
		t := table.New().Border(lipgloss.NormalBorder()).Headers("ID", "NAME", "COLOR")
		for _, tag := range current.Store.Snapshot().Tags {
			t.Row(shortID(tag.ID), tag.Name, swatch(tag.Color))
		}
		fmt.Fprintln(cmd.OutOrStdout(), t.Render())
	},
}

var tagAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a tag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := models.TagInput{Name: args[0], Color: labelColor}
		if err := store.ValidateTag(in); err != nil {
			return err
		}
		next := current.Store.Dispatch(store.AddTag{Input: in})
		tag := next.Tags[len(next.Tags)-1]
		fmt.Fprintf(cmd.OutOrStdout(), "added tag %s %s\n", shortID(tag.ID), tag.Name)
		return nil
	},
}

var tagDeleteCmd = &cobra.Command{
	Use:   "delete <id|name>",
	Short: "Delete a tag and remove it from every task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tag, err := resolveTag(current.Store.Snapshot(), args[0])
		if err != nil {
			return err
		}
		current.Store.Dispatch(store.DeleteTag{ID: tag.ID})
		fmt.Fprintf(cmd.OutOrStdout(), "deleted tag %s\n", tag.Name)
		return nil
	},
}

var unitCmd = &cobra.Command{
	Use:     "unit",
	Aliases: []string{"units"},
	Short:   "Manage units that group templates",
}

var unitListCmd = &cobra.Command{
	Use:   "list",
	Short: "List units",
	Run: func(cmd *cobra.Command, args []string) {
		t := table.New().Border(lipgloss.NormalBorder()).Headers("ID", "NAME")
		for _, u := range current.Store.Snapshot().Units {
			t.Row(shortID(u.ID), u.Name)
		}
		fmt.Fprintln(cmd.OutOrStdout(), t.Render())
	},
}

var unitAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a unit; names must be unique",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := current.Store.AddUnit(models.UnitInput{Name: args[0]}); err != nil {
			return err
		}
		units := current.Store.Snapshot().Units
		u := units[len(units)-1]
		fmt.Fprintf(cmd.OutOrStdout(), "added unit %s %s\n", shortID(u.ID), u.Name)
		return nil
	},
}

var unitDeleteCmd = &cobra.Command{
	Use:   "delete <id|name>",
	Short: "Delete a unit and detach it from its templates",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := resolveUnit(current.Store.Snapshot(), args[0])
		if err != nil {
			return err
		}
		current.Store.Dispatch(store.DeleteUnit{ID: u.ID})
		fmt.Fprintf(cmd.OutOrStdout(), "deleted unit %s\n", u.Name)
		return nil
	},
}

func init() {
	categoryAddCmd.Flags().StringVar(&labelColor, "color", "", "palette color, e.g. #3B82F6")
	tagAddCmd.Flags().StringVar(&labelColor, "color", "", "palette color, e.g. #6366F1")

	categoryCmd.AddCommand(categoryListCmd, categoryAddCmd, categoryDeleteCmd)
	tagCmd.AddCommand(tagListCmd, tagAddCmd, tagDeleteCmd)
	unitCmd.AddCommand(unitListCmd, unitAddCmd, unitDeleteCmd)
	rootCmd.AddCommand(categoryCmd, tagCmd, unitCmd)
}

func swatch(color string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("●") + " " + color
}

func resolveUnit(snap store.State, s string) (models.Unit, error) {
	for _, u := range snap.Units {
		if u.Name == s {
			return u, nil
		}
	}
	return resolveID(snap.Units, s, func(u models.Unit) string { return u.ID }, "unit")
}
