package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"github.com/tgienger/taskboard/internal/models"
	"github.com/tgienger/taskboard/internal/query"
	"github.com/tgienger/taskboard/internal/store"
)

var taskCmd = &cobra.Command{
	Use:     "tasks",
	Aliases: []string{"task"},
	Short:   "List and edit tasks",
}

var (
	listStatus   string
	listPriority string
	listCategory string
	listProject  string
	listTags     []string
	listSearch   string
	listSort     string
	listOrder    string
)

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks matching the given filters",
	RunE: func(cmd *cobra.Command, args []string) error {
		st := current.Store
		snap := st.Snapshot()

		patch := query.FilterPatch{
			Status:      &listStatus,
			Priority:    &listPriority,
			ProjectID:   &listProject,
			SearchQuery: &listSearch,
		}
		category := query.All
		if listCategory != "" && listCategory != query.All {
			c, err := resolveCategory(snap, listCategory)
			if err != nil {
				return err
			}
			category = c.ID
		}
		patch.CategoryID = &category

		if len(listTags) > 0 {
			ids := make([]string, 0, len(listTags))
			for _, name := range listTags {
				tag, err := resolveTag(snap, name)
				if err != nil {
					return err
				}
				ids = append(ids, tag.ID)
			}
			patch.TagIDs, patch.SetTagIDs = ids, true
		}

		field := query.SortField(listSort)
		if !field.Valid() {
			return fmt.Errorf("unknown sort field %q", listSort)
		}
		order := query.SortOrder(listOrder)
		if order != query.Asc && order != query.Desc {
			return fmt.Errorf("sort order must be asc or desc, got %q", listOrder)
		}

		st.Dispatch(store.SetFilters{Patch: patch})
		snap = st.Dispatch(store.SetSort{Options: query.SortOptions{Field: field, Order: order}})

		renderTasks(cmd.OutOrStdout(), snap, snap.View())
		return nil
	},
}

var (
	addDesc     string
	addPriority string
	addCategory string
	addTags     []string
	addDue      string
)

var taskAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a task",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		snap := current.Store.Snapshot()
		in := models.TaskInput{
			Title:       strings.Join(args, " "),
			Description: addDesc,
			Priority:    models.Priority(addPriority),
			TagIDs:      []string{},
		}
		if addCategory != "" {
			c, err := resolveCategory(snap, addCategory)
			if err != nil {
				return err
			}
			in.CategoryID = models.Ref(c.ID)
		}
		for _, name := range addTags {
			tag, err := resolveTag(snap, name)
			if err != nil {
				return err
			}
			in.TagIDs = append(in.TagIDs, tag.ID)
		}
		if addDue != "" {
			d := models.Date(addDue)
			in.DueDate = &d
		}

		if err := store.ValidateTask(in); err != nil {
			return err
		}
		next := current.Store.Dispatch(store.AddTask{Input: in})
		fmt.Fprintf(cmd.OutOrStdout(), "added %s %s\n", shortID(next.Tasks[0].ID), next.Tasks[0].Title)
		return nil
	},
}

var taskToggleCmd = &cobra.Command{
	Use:   "toggle <id>",
	Short: "Mark a task completed, or reopen a completed task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		task, err := resolveID(current.Store.Snapshot().Tasks, args[0], func(t models.Task) string { return t.ID }, "task")
		if err != nil {
			return err
		}
		current.Store.Dispatch(store.ToggleTaskStatus{ID: task.ID})
		task, _ = current.Store.Task(task.ID)
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", shortID(task.ID), task.Status)
		return nil
	},
}

var taskDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		task, err := resolveID(current.Store.Snapshot().Tasks, args[0], func(t models.Task) string { return t.ID }, "task")
		if err != nil {
			return err
		}
		current.Store.Dispatch(store.DeleteTask{ID: task.ID})
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", shortID(task.ID))
		return nil
	},
}

func init() {
	taskListCmd.Flags().StringVar(&listStatus, "status", query.All, "pending, in_progress, completed or all")
	taskListCmd.Flags().StringVar(&listPriority, "priority", query.All, "high, medium, low or all")
	taskListCmd.Flags().StringVar(&listCategory, "category", query.All, "category id or name")
	taskListCmd.Flags().StringVar(&listProject, "project", query.All, "project id")
	taskListCmd.Flags().StringSliceVar(&listTags, "tag", nil, "tag id or name (repeatable, matches any)")
	taskListCmd.Flags().StringVarP(&listSearch, "search", "s", "", "case-insensitive text in title or description")
	taskListCmd.Flags().StringVar(&listSort, "sort", string(query.SortByCreatedAt), "createdAt, updatedAt, dueDate, priority or title")
	taskListCmd.Flags().StringVar(&listOrder, "order", string(query.Desc), "asc or desc")

	taskAddCmd.Flags().StringVarP(&addDesc, "desc", "d", "", "description")
	taskAddCmd.Flags().StringVarP(&addPriority, "priority", "p", string(models.PriorityMedium), "high, medium or low")
	taskAddCmd.Flags().StringVarP(&addCategory, "category", "c", "", "category id or name")
	taskAddCmd.Flags().StringSliceVarP(&addTags, "tag", "t", nil, "tag id or name (repeatable)")
	taskAddCmd.Flags().StringVar(&addDue, "due", "", "due date (YYYY-MM-DD)")

	taskCmd.AddCommand(taskListCmd, taskAddCmd, taskToggleCmd, taskDeleteCmd)
	rootCmd.AddCommand(taskCmd)
}

func renderTasks(w io.Writer, snap store.State, tasks []models.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "no tasks")
		return
	}

	categories := make(map[string]string, len(snap.Categories))
	for _, c := range snap.Categories {
		categories[c.ID] = c.Name
	}
	tags := make(map[string]string, len(snap.Tags))
	for _, t := range snap.Tags {
		tags[t.ID] = t.Name
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "STATUS", "PRIORITY", "TITLE", "CATEGORY", "TAGS", "DUE")
	for _, task := range tasks {
		var tagNames []string
		for _, id := range task.TagIDs {
			tagNames = append(tagNames, tags[id])
		}
		due := ""
		if task.DueDate != nil {
			due = string(*task.DueDate)
		}
		t.Row(
			shortID(task.ID),
			string(task.Status),
			string(task.Priority),
			task.Title,
			categories[models.Deref(task.CategoryID)],
			strings.Join(tagNames, ", "),
			due,
		)
	}
	fmt.Fprintln(w, t.Render())
}

func resolveCategory(snap store.State, s string) (models.Category, error) {
	for _, c := range snap.Categories {
		if c.Name == s {
			return c, nil
		}
	}
	return resolveID(snap.Categories, s, func(c models.Category) string { return c.ID }, "category")
}

func resolveTag(snap store.State, s string) (models.Tag, error) {
	for _, t := range snap.Tags {
		if t.Name == s {
			return t, nil
		}
	}
	return resolveID(snap.Tags, s, func(t models.Tag) string { return t.ID }, "tag")
}
