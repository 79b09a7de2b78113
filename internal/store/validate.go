package store

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/tgienger/taskboard/internal/models"
)

// ErrNotFound is returned by lookups for an unknown id
var ErrNotFound = errors.New("not found")

// ValidationError maps form field names to messages. It is returned before
// a command is issued and never produced by the reducer.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Field returns the message for a field, or ""
func (e *ValidationError) Field(name string) string {
	return e.Fields[name]
}

type fieldErrors map[string]string

func (f fieldErrors) require(field, value, msg string) {
	if strings.TrimSpace(value) == "" {
		f[field] = msg
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Fields: f}
}

// ValidateTask checks a task form
func ValidateTask(in models.TaskInput) error {
	errs := fieldErrors{}
	errs.require("title", in.Title, "title is required")
	if in.Priority != "" && !in.Priority.Valid() {
		errs["priority"] = fmt.Sprintf("unknown priority %q", in.Priority)
	}
	if in.DueDate != nil && *in.DueDate != "" {
		if _, err := models.ParseDate(string(*in.DueDate)); err != nil {
			errs["dueDate"] = "due date must be YYYY-MM-DD"
		}
	}
	return errs.err()
}

// ValidateCategory checks a category form
func ValidateCategory(in models.CategoryInput) error {
	errs := fieldErrors{}
	errs.require("name", in.Name, "category name is required")
	if in.Color != "" && !models.InPalette(models.CategoryColors, in.Color) {
		errs["color"] = fmt.Sprintf("color %s is not in the category palette", in.Color)
	}
	return errs.err()
}

// ValidateTag checks a tag form
func ValidateTag(in models.TagInput) error {
	errs := fieldErrors{}
	errs.require("name", in.Name, "tag name is required")
	if in.Color != "" && !models.InPalette(models.TagColors, in.Color) {
		errs["color"] = fmt.Sprintf("color %s is not in the tag palette", in.Color)
	}
	return errs.err()
}

// ValidateUnit checks a new unit's name against the existing units. Names
// are compared exactly after trimming.
func ValidateUnit(in models.UnitInput, existing []models.Unit) error {
	errs := fieldErrors{}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		errs["name"] = "unit name is required"
		return errs.err()
	}
	for _, u := range existing {
		if u.Name == name {
			errs["name"] = fmt.Sprintf("a unit named %q already exists", name)
			break
		}
	}
	return errs.err()
}

// ValidateTemplate checks the template name, every phase name and every
// task title
func ValidateTemplate(in models.TemplateInput) error {
	errs := fieldErrors{}
	errs.require("name", in.Name, "template name is required")
	for pi, phase := range in.Phases {
		errs.require(fmt.Sprintf("phases[%d].name", pi), phase.Name, "phase name is required")
		for ti, task := range phase.Tasks {
			errs.require(fmt.Sprintf("phases[%d].tasks[%d].title", pi, ti), task.Title, "task title is required")
			if task.Priority != "" && !task.Priority.Valid() {
				errs[fmt.Sprintf("phases[%d].tasks[%d].priority", pi, ti)] = fmt.Sprintf("unknown priority %q", task.Priority)
			}
		}
	}
	return errs.err()
}
