package models

import (
	"fmt"
	"time"
)

// DateLayout is the calendar date format used for due dates
const DateLayout = "2006-01-02"

// Date is a calendar date in YYYY-MM-DD form. String ordering of two
// well-formed dates equals chronological ordering.
type Date string

// ParseDate validates s and returns it as a Date
func ParseDate(s string) (Date, error) {
	if _, err := time.Parse(DateLayout, s); err != nil {
		return "", fmt.Errorf("parsing date %q: %w", s, err)
	}
	return Date(s), nil
}

// DateOf returns the calendar date of t in its own location
func DateOf(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

// Time returns the date at midnight UTC
func (d Date) Time() (time.Time, error) {
	return time.Parse(DateLayout, string(d))
}

// DaysUntil returns the number of calendar days from today's date to d.
// Negative values are days past due. today is read in its own location.
func (d Date) DaysUntil(today time.Time) (int, error) {
	due, err := d.Time()
	if err != nil {
		return 0, err
	}
	start, err := DateOf(today).Time()
	if err != nil {
		return 0, err
	}
	return int(due.Sub(start).Hours() / 24), nil
}

// IsOverdue reports whether d is strictly before today's date. Malformed
// dates are never overdue.
func (d Date) IsOverdue(today time.Time) bool {
	n, err := d.DaysUntil(today)
	return err == nil && n < 0
}

// DueLabel describes d relative to today, e.g. "yesterday", "in 3 days" or
// "2 days overdue". Malformed dates are returned verbatim.
func (d Date) DueLabel(today time.Time) string {
	n, err := d.DaysUntil(today)
	if err != nil {
		return string(d)
	}
	switch {
	case n == 0:
		return "today"
	case n == 1:
		return "tomorrow"
	case n == -1:
		return "yesterday"
	case n < 0:
		return fmt.Sprintf("%d days overdue", -n)
	default:
		return fmt.Sprintf("in %d days", n)
	}
}

// TaskInput holds the user-editable fields of a task
type TaskInput struct {
	Title       string
	Description string
	Priority    Priority
	CategoryID  *string
	ProjectID   *string
	TagIDs      []string
	DueDate     *Date
}

// CategoryInput holds the user-editable fields of a category
type CategoryInput struct {
	Name  string
	Color string
}

// TagInput holds the user-editable fields of a tag
type TagInput struct {
	Name  string
	Color string
}

// UnitInput holds the user-editable fields of a unit
type UnitInput struct {
	Name string
}

// TemplateTaskInput describes one task in a template phase
type TemplateTaskInput struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Priority    Priority `yaml:"priority"`
}

// TemplatePhaseInput describes one phase of a template
type TemplatePhaseInput struct {
	Name  string              `yaml:"name"`
	Tasks []TemplateTaskInput `yaml:"tasks"`
}

// TemplateInput holds the user-editable fields of a template. Unit is only
// used by the YAML loader to resolve a unit by name.
type TemplateInput struct {
	Name        string               `yaml:"name"`
	Unit        string               `yaml:"unit,omitempty"`
	UnitID      *string              `yaml:"-"`
	Description string               `yaml:"description"`
	Phases      []TemplatePhaseInput `yaml:"phases"`
}
