package models

import "time"

// TaskStatus is the lifecycle state of a task
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
)

// Priority is the urgency of a task
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Valid reports whether p is one of the known priorities
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Valid reports whether s is one of the known statuses
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Category is an exclusive grouping label for tasks
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Tag is a non-exclusive label that can be applied to tasks
type Tag struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"createdAt"`
}

// Unit groups templates, e.g. a department
type Unit struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// Task represents a single task
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	Priority    Priority   `json:"priority"`
	CategoryID  *string    `json:"categoryId"`
	ProjectID   *string    `json:"projectId"`
	TagIDs      []string   `json:"tagIds"`
	DueDate     *Date      `json:"dueDate"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	CompletedAt *time.Time `json:"completedAt"`
}

// HasTag reports whether the task carries the given tag
func (t Task) HasTag(id string) bool {
	for _, tagID := range t.TagIDs {
		if tagID == id {
			return true
		}
	}
	return false
}

// TemplateTask is one task definition inside a template phase
type TemplateTask struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
}

// TemplatePhase is an ordered group of template tasks
type TemplatePhase struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Tasks []TemplateTask `json:"tasks"`
}

// Template is a reusable blueprint used to bulk-generate tasks
type Template struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	UnitID      *string         `json:"unitId"`
	Description string          `json:"description"`
	Phases      []TemplatePhase `json:"phases"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// TaskCount returns the number of tasks the template expands to
func (t Template) TaskCount() int {
	n := 0
	for _, p := range t.Phases {
		n += len(p.Tasks)
	}
	return n
}

// Ref returns a pointer to a copy of id, or nil when id is empty.
func Ref(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}

// Deref returns the referenced id or "" for nil
func Deref(id *string) string {
	if id == nil {
		return ""
	}
	return *id
}
