// Package query derives the ordered, filtered task view shown to the user.
package query

import "slices"

// All disables a single-valued filter field
const All = "all"

// SortField names the task attribute a view is ordered by
type SortField string

const (
	SortByTitle     SortField = "title"
	SortByPriority  SortField = "priority"
	SortByDueDate   SortField = "dueDate"
	SortByCreatedAt SortField = "createdAt"
	SortByUpdatedAt SortField = "updatedAt"
)

// SortFields lists the sort fields in display order
var SortFields = []SortField{SortByCreatedAt, SortByUpdatedAt, SortByDueDate, SortByPriority, SortByTitle}

// Valid reports whether f is a known sort field
func (f SortField) Valid() bool {
	return slices.Contains(SortFields, f)
}

// SortOrder is either ascending or descending
type SortOrder string

const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

// Filters selects which tasks appear in the view. Status, Priority,
// CategoryID and ProjectID match exactly unless set to All. A non-empty
// TagIDs matches tasks carrying any of the tags.
type Filters struct {
	Status      string   `json:"status"`
	Priority    string   `json:"priority"`
	CategoryID  string   `json:"categoryId"`
	ProjectID   string   `json:"projectId"`
	TagIDs      []string `json:"tagIds"`
	SearchQuery string   `json:"searchQuery"`
}

// SortOptions picks the sort field and direction
type SortOptions struct {
	Field SortField `json:"field"`
	Order SortOrder `json:"order"`
}

// DefaultFilters returns filters that let every task through
func DefaultFilters() Filters {
	return Filters{
		Status:     All,
		Priority:   All,
		CategoryID: All,
		ProjectID:  All,
		TagIDs:     []string{},
	}
}

// DefaultSort orders newest first
func DefaultSort() SortOptions {
	return SortOptions{Field: SortByCreatedAt, Order: Desc}
}

// FilterPatch is a partial update of Filters; nil fields are left unchanged.
type FilterPatch struct {
	Status      *string
	Priority    *string
	CategoryID  *string
	ProjectID   *string
	TagIDs      []string
	SetTagIDs   bool
	SearchQuery *string
}

// Apply returns f with the patch's set fields replaced
func (p FilterPatch) Apply(f Filters) Filters {
	if p.Status != nil {
		f.Status = *p.Status
	}
	if p.Priority != nil {
		f.Priority = *p.Priority
	}
	if p.CategoryID != nil {
		f.CategoryID = *p.CategoryID
	}
	if p.ProjectID != nil {
		f.ProjectID = *p.ProjectID
	}
	if p.SetTagIDs {
		f.TagIDs = slices.Clone(p.TagIDs)
		if f.TagIDs == nil {
			f.TagIDs = []string{}
		}
	}
	if p.SearchQuery != nil {
		f.SearchQuery = *p.SearchQuery
	}
	return f
}

// Active reports whether any filter narrows the view
func (f Filters) Active() bool {
	return (f.Status != All && f.Status != "") ||
		(f.Priority != All && f.Priority != "") ||
		(f.CategoryID != All && f.CategoryID != "") ||
		(f.ProjectID != All && f.ProjectID != "") ||
		len(f.TagIDs) > 0 ||
		f.SearchQuery != ""
}
