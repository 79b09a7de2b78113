package store

import (
	"fmt"

	"github.com/tgienger/taskboard/internal/models"
)

// ExpandTemplate builds one pending task per template task, phase by phase
// in declaration order. Every task gets categoryID; tags and due date are
// left empty.
func ExpandTemplate(env Env, tpl models.Template, categoryID *string) []models.Task {
	now := env.Now()
	tasks := make([]models.Task, 0, tpl.TaskCount())
	for _, phase := range tpl.Phases {
		for _, tt := range phase.Tasks {
			tasks = append(tasks, models.Task{
				ID:          env.NewID(),
				Title:       phaseTitle(phase.Name, tt.Title),
				Description: tt.Description,
				Status:      models.StatusPending,
				Priority:    tt.Priority,
				CategoryID:  cloneRef(categoryID),
				TagIDs:      []string{},
				CreatedAt:   now,
				UpdatedAt:   now,
			})
		}
	}
	return tasks
}

// PreviewTemplate returns the titles ApplyTemplate would create, in order
func PreviewTemplate(tpl models.Template) []string {
	titles := make([]string, 0, tpl.TaskCount())
	for _, phase := range tpl.Phases {
		for _, tt := range phase.Tasks {
			titles = append(titles, phaseTitle(phase.Name, tt.Title))
		}
	}
	return titles
}

func phaseTitle(phase, title string) string {
	return fmt.Sprintf("[%s] %s", phase, title)
}
