package store

import (
	"github.com/tgienger/taskboard/internal/models"
	"github.com/tgienger/taskboard/internal/query"
)

// Command is one state transition request. The set is closed: only the
// types in this file implement it.
type Command interface {
	command()
}

type (
	AddTask struct{ Input models.TaskInput }
	// UpdateTask replaces a task's fields and reopens it.
	UpdateTask struct {
		ID    string
		Input models.TaskInput
	}
	DeleteTask       struct{ ID string }
	ToggleTaskStatus struct{ ID string }
	ReplaceTasks     struct{ Tasks []models.Task }

	AddCategory    struct{ Input models.CategoryInput }
	UpdateCategory struct {
		ID    string
		Input models.CategoryInput
	}
	// DeleteCategory also detaches the category from every task.
	DeleteCategory    struct{ ID string }
	ReplaceCategories struct{ Categories []models.Category }

	AddTag    struct{ Input models.TagInput }
	UpdateTag struct {
		ID    string
		Input models.TagInput
	}
	// DeleteTag also removes the tag from every task.
	DeleteTag   struct{ ID string }
	ReplaceTags struct{ Tags []models.Tag }

	AddUnit    struct{ Input models.UnitInput }
	UpdateUnit struct {
		ID    string
		Input models.UnitInput
	}
	// DeleteUnit also detaches the unit from every template.
	DeleteUnit   struct{ ID string }
	ReplaceUnits struct{ Units []models.Unit }

	AddTemplate    struct{ Input models.TemplateInput }
	UpdateTemplate struct {
		ID    string
		Input models.TemplateInput
	}
	DeleteTemplate   struct{ ID string }
	ReplaceTemplates struct{ Templates []models.Template }
	// ApplyTemplate expands a template into new tasks in one transition.
	ApplyTemplate struct {
		TemplateID string
		CategoryID *string
	}

	SetFilters   struct{ Patch query.FilterPatch }
	ResetFilters struct{}
	SetSort      struct{ Options query.SortOptions }

	OpenModal struct {
		Modal     Modal
		EditingID string
	}
	CloseModal    struct{ Modal Modal }
	ToggleSidebar struct{}
)

func (AddTask) command()           {}
func (UpdateTask) command()        {}
func (DeleteTask) command()        {}
func (ToggleTaskStatus) command()  {}
func (ReplaceTasks) command()      {}
func (AddCategory) command()       {}
func (UpdateCategory) command()    {}
func (DeleteCategory) command()    {}
func (ReplaceCategories) command() {}
func (AddTag) command()            {}
func (UpdateTag) command()         {}
func (DeleteTag) command()         {}
func (ReplaceTags) command()       {}
func (AddUnit) command()           {}
func (UpdateUnit) command()        {}
func (DeleteUnit) command()        {}
func (ReplaceUnits) command()      {}
func (AddTemplate) command()       {}
func (UpdateTemplate) command()    {}
func (DeleteTemplate) command()    {}
func (ReplaceTemplates) command()  {}
func (ApplyTemplate) command()     {}
func (SetFilters) command()        {}
func (ResetFilters) command()      {}
func (SetSort) command()           {}
func (OpenModal) command()         {}
func (CloseModal) command()        {}
func (ToggleSidebar) command()     {}
