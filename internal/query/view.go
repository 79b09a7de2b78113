package query

import (
	"slices"
	"strings"

	"github.com/tgienger/taskboard/internal/models"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

var priorityRank = map[models.Priority]int{
	models.PriorityHigh:   0,
	models.PriorityMedium: 1,
	models.PriorityLow:    2,
}

// rank orders priorities high to low. Unrecognized values rank after low.
func rank(p models.Priority) int {
	if r, ok := priorityRank[p]; ok {
		return r
	}
	return len(priorityRank)
}

// ComputeView returns the tasks matching f, ordered by s. The input slice is
// never modified. Ties keep their original relative order.
func ComputeView(tasks []models.Task, f Filters, s SortOptions) []models.Task {
	q := strings.ToLower(strings.TrimSpace(f.SearchQuery))

	result := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if Matches(t, f, q) {
			result = append(result, t)
		}
	}

	cmp := comparator(s)
	slices.SortStableFunc(result, cmp)
	return result
}

// Matches reports whether t passes every filter. q is the lower-cased,
// trimmed search query.
func Matches(t models.Task, f Filters, q string) bool {
	if set(f.Status) && string(t.Status) != f.Status {
		return false
	}
	if set(f.Priority) && string(t.Priority) != f.Priority {
		return false
	}
	if set(f.CategoryID) && (t.CategoryID == nil || *t.CategoryID != f.CategoryID) {
		return false
	}
	if set(f.ProjectID) && (t.ProjectID == nil || *t.ProjectID != f.ProjectID) {
		return false
	}
	if len(f.TagIDs) > 0 && !slices.ContainsFunc(f.TagIDs, t.HasTag) {
		return false
	}
	if q != "" &&
		!strings.Contains(strings.ToLower(t.Title), q) &&
		!strings.Contains(strings.ToLower(t.Description), q) {
		return false
	}
	return true
}

func set(v string) bool {
	return v != "" && v != All
}

func comparator(s SortOptions) func(a, b models.Task) int {
	sign := 1
	if s.Order == Desc {
		sign = -1
	}

	switch s.Field {
	case SortByTitle:
		// a collator is not safe for concurrent use, so each view gets its own
		col := collate.New(language.Und)
		return func(a, b models.Task) int {
			return sign * col.CompareString(a.Title, b.Title)
		}
	case SortByPriority:
		return func(a, b models.Task) int {
			return sign * (rank(a.Priority) - rank(b.Priority))
		}
	case SortByDueDate:
		return func(a, b models.Task) int {
			switch {
			case a.DueDate == nil && b.DueDate == nil:
				return 0
			case a.DueDate == nil:
				return 1
			case b.DueDate == nil:
				return -1
			}
			return sign * strings.Compare(string(*a.DueDate), string(*b.DueDate))
		}
	case SortByUpdatedAt:
		return func(a, b models.Task) int {
			return sign * a.UpdatedAt.Compare(b.UpdatedAt)
		}
	default:
		return func(a, b models.Task) int {
			return sign * a.CreatedAt.Compare(b.CreatedAt)
		}
	}
}
