// Package store holds the application state and the single reducer that
// mutates it. Every transition produces a new snapshot; a snapshot is never
// modified once handed out.
package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/tgienger/taskboard/internal/models"
	"github.com/tgienger/taskboard/internal/query"
)

// Modal identifies a form or dialog the UI can open
type Modal int

const (
	ModalTaskForm Modal = iota
	ModalCategoryForm
	ModalTagForm
	ModalTemplateForm
	ModalApplyTemplate
	ModalUnitForm
)

// UI holds ephemeral presentation flags. It is never persisted.
type UI struct {
	TaskFormOpen      bool
	EditingTaskID     string
	CategoryFormOpen  bool
	EditingCategoryID string
	TagFormOpen       bool
	TemplateFormOpen  bool
	EditingTemplateID string
	ApplyTemplateOpen bool
	UnitFormOpen      bool
	SidebarOpen       bool
}

// Collections holds the five durable entity collections
type Collections struct {
	Tasks      []models.Task
	Categories []models.Category
	Tags       []models.Tag
	Templates  []models.Template
	Units      []models.Unit
}

// State is an immutable snapshot of the whole application
type State struct {
	Collections
	Filters query.Filters
	Sort    query.SortOptions
	UI      UI

	rev uint64
}

// New returns the initial state seeded with the given collections
func New(c Collections) State {
	return State{
		Collections: c.normalized(),
		Filters:     query.DefaultFilters(),
		Sort:        query.DefaultSort(),
		UI:          UI{SidebarOpen: true},
	}
}

// Revision increases by one for every transition that changed something
func (s State) Revision() uint64 {
	return s.rev
}

// View is the filtered and sorted task list for this snapshot
func (s State) View() []models.Task {
	return query.ComputeView(s.Tasks, s.Filters, s.Sort)
}

func (c Collections) normalized() Collections {
	if c.Tasks == nil {
		c.Tasks = []models.Task{}
	}
	for i := range c.Tasks {
		if c.Tasks[i].TagIDs == nil {
			c.Tasks[i].TagIDs = []string{}
		}
	}
	if c.Categories == nil {
		c.Categories = []models.Category{}
	}
	if c.Tags == nil {
		c.Tags = []models.Tag{}
	}
	if c.Templates == nil {
		c.Templates = []models.Template{}
	}
	if c.Units == nil {
		c.Units = []models.Unit{}
	}
	return c
}

// Env supplies the ambient clock and identifier primitives
type Env struct {
	Now   func() time.Time
	NewID func() string
}

// DefaultEnv uses the wall clock (UTC) and random UUIDs
func DefaultEnv() Env {
	return Env{
		Now:   func() time.Time { return time.Now().UTC() },
		NewID: uuid.NewString,
	}
}

// SameCollection reports whether a and b share the same backing array and
// length, i.e. the reducer left the collection untouched.
func SameCollection[T any](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}
	return &a[0] == &b[0]
}
