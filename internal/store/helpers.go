package store

import (
	"slices"

	"github.com/tgienger/taskboard/internal/models"
)

func taskID(t models.Task) string         { return t.ID }
func categoryID(c models.Category) string { return c.ID }
func tagID(t models.Tag) string           { return t.ID }
func unitID(u models.Unit) string         { return u.ID }
func templateID(t models.Template) string { return t.ID }

func indexOf[T any](items []T, id string, key func(T) string) int {
	return slices.IndexFunc(items, func(item T) bool { return key(item) == id })
}

func find[T any](items []T, id string, key func(T) string) (T, bool) {
	i := indexOf(items, id, key)
	if i < 0 {
		var zero T
		return zero, false
	}
	return items[i], true
}

func prepend[T any](items []T, item T) []T {
	out := make([]T, 0, len(items)+1)
	out = append(out, item)
	return append(out, items...)
}

func replaceAt[T any](items []T, i int, item T) []T {
	out := slices.Clone(items)
	out[i] = item
	return out
}

func cloneRef(id *string) *string {
	if id == nil || *id == "" {
		return nil
	}
	v := *id
	return &v
}

func cloneDate(d *models.Date) *models.Date {
	if d == nil || *d == "" {
		return nil
	}
	v := *d
	return &v
}

// uniqueIDs copies ids dropping blanks and duplicates; never returns nil
func uniqueIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

func priorityOr(p models.Priority) models.Priority {
	if p.Valid() {
		return p
	}
	return models.PriorityMedium
}

func colorOr(color string, palette []string) string {
	if color == "" {
		return palette[0]
	}
	return color
}
