package store

import (
	"slices"

	"github.com/tgienger/taskboard/internal/models"
)

// detachCategory clears categoryId on every task pointing at id. The input
// slice is returned as-is when no task referenced the category.
func detachCategory(tasks []models.Task, id string) []models.Task {
	return rewrite(tasks, func(t models.Task) (models.Task, bool) {
		if t.CategoryID == nil || *t.CategoryID != id {
			return t, false
		}
		t.CategoryID = nil
		return t, true
	})
}

// detachTag removes id from every task's tag set
func detachTag(tasks []models.Task, id string) []models.Task {
	return rewrite(tasks, func(t models.Task) (models.Task, bool) {
		if !t.HasTag(id) {
			return t, false
		}
		t.TagIDs = slices.DeleteFunc(slices.Clone(t.TagIDs), func(tagID string) bool {
			return tagID == id
		})
		return t, true
	})
}

// detachUnit clears unitId on every template pointing at id
func detachUnit(templates []models.Template, id string) []models.Template {
	return rewrite(templates, func(t models.Template) (models.Template, bool) {
		if t.UnitID == nil || *t.UnitID != id {
			return t, false
		}
		t.UnitID = nil
		return t, true
	})
}

// pruneTaskRefs clears categoryId and drops tagIds on every task that
// names a category or tag not present in s
func pruneTaskRefs(s State) []models.Task {
	categories := idSet(s.Categories, categoryID)
	tags := idSet(s.Tags, tagID)
	return rewrite(s.Tasks, func(t models.Task) (models.Task, bool) {
		changed := false
		if t.CategoryID != nil && !categories[*t.CategoryID] {
			t.CategoryID = nil
			changed = true
		}
		if slices.ContainsFunc(t.TagIDs, func(id string) bool { return !tags[id] }) {
			t.TagIDs = slices.DeleteFunc(slices.Clone(t.TagIDs), func(id string) bool { return !tags[id] })
			changed = true
		}
		return t, changed
	})
}

// pruneTemplateRefs clears unitId on every template naming a unit not
// present in s
func pruneTemplateRefs(s State) []models.Template {
	units := idSet(s.Units, unitID)
	return rewrite(s.Templates, func(t models.Template) (models.Template, bool) {
		if t.UnitID == nil || units[*t.UnitID] {
			return t, false
		}
		t.UnitID = nil
		return t, true
	})
}

func idSet[T any](items []T, id func(T) string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[id(item)] = true
	}
	return set
}

// rewrite applies fn to every element, copying the slice on the first change
func rewrite[T any](items []T, fn func(T) (T, bool)) []T {
	var out []T
	for i, item := range items {
		next, changed := fn(item)
		if !changed {
			continue
		}
		if out == nil {
			out = slices.Clone(items)
		}
		out[i] = next
	}
	if out == nil {
		return items
	}
	return out
}
