package store

import (
	"testing"

	"github.com/tgienger/taskboard/internal/models"
	"pgregory.net/rapid"
)

// randomCommand draws a command that may reference existing or unknown ids
func randomCommand(rt *rapid.T, s State) Command {
	pick := func(label string, ids []string) string {
		return rapid.SampledFrom(append(ids, "unknown")).Draw(rt, label)
	}
	var taskIDs, catIDs, tagIDs, unitIDs, tplIDs []string
	for _, t := range s.Tasks {
		taskIDs = append(taskIDs, t.ID)
	}
	for _, c := range s.Categories {
		catIDs = append(catIDs, c.ID)
	}
	for _, t := range s.Tags {
		tagIDs = append(tagIDs, t.ID)
	}
	for _, u := range s.Units {
		unitIDs = append(unitIDs, u.ID)
	}
	for _, t := range s.Templates {
		tplIDs = append(tplIDs, t.ID)
	}

	switch rapid.IntRange(0, 10).Draw(rt, "kind") {
	case 0:
		var tags []string
		if len(tagIDs) > 0 {
			tags = rapid.SliceOfN(rapid.SampledFrom(tagIDs), 0, 3).Draw(rt, "tags")
		}
		var cat *string
		if len(catIDs) > 0 && rapid.Bool().Draw(rt, "withCategory") {
			cat = models.Ref(rapid.SampledFrom(catIDs).Draw(rt, "category"))
		}
		return AddTask{Input: models.TaskInput{Title: "task", CategoryID: cat, TagIDs: tags}}
	case 1:
		return ToggleTaskStatus{ID: pick("toggle", taskIDs)}
	case 2:
		return DeleteTask{ID: pick("deleteTask", taskIDs)}
	case 3:
		return AddCategory{Input: models.CategoryInput{Name: "cat"}}
	case 4:
		return DeleteCategory{ID: pick("deleteCategory", catIDs)}
	case 5:
		return AddTag{Input: models.TagInput{Name: "tag"}}
	case 6:
		return DeleteTag{ID: pick("deleteTag", tagIDs)}
	case 7:
		return AddUnit{Input: models.UnitInput{Name: "unit"}}
	case 8:
		return DeleteUnit{ID: pick("deleteUnit", unitIDs)}
	case 9:
		var unit *string
		if len(unitIDs) > 0 {
			unit = models.Ref(rapid.SampledFrom(unitIDs).Draw(rt, "unit"))
		}
		return AddTemplate{Input: models.TemplateInput{
			Name:   "tpl",
			UnitID: unit,
			Phases: []models.TemplatePhaseInput{{Name: "P", Tasks: []models.TemplateTaskInput{{Title: "x"}}}},
		}}
	default:
		return ApplyTemplate{TemplateID: pick("apply", tplIDs)}
	}
}

func checkReferences(rt *rapid.T, s State) {
	cats := map[string]bool{}
	for _, c := range s.Categories {
		cats[c.ID] = true
	}
	tags := map[string]bool{}
	for _, t := range s.Tags {
		tags[t.ID] = true
	}
	units := map[string]bool{}
	for _, u := range s.Units {
		units[u.ID] = true
	}

	for _, task := range s.Tasks {
		if task.CategoryID != nil && !cats[*task.CategoryID] {
			rt.Fatalf("task %s references deleted category %s", task.ID, *task.CategoryID)
		}
		for _, id := range task.TagIDs {
			if !tags[id] {
				rt.Fatalf("task %s references deleted tag %s", task.ID, id)
			}
		}
	}
	for _, tpl := range s.Templates {
		if tpl.UnitID != nil && !units[*tpl.UnitID] {
			rt.Fatalf("template %s references deleted unit %s", tpl.ID, *tpl.UnitID)
		}
	}
}

func TestProperty_NoDanglingReferences(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		env := testEnv()
		s := New(Collections{})

		steps := rapid.IntRange(1, 60).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			s = Reduce(env, s, randomCommand(rt, s))
			checkReferences(rt, s)
		}
	})
}

func TestProperty_RevisionCountsChanges(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		env := testEnv()
		s := New(Collections{})

		steps := rapid.IntRange(1, 40).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			next := Reduce(env, s, randomCommand(rt, s))
			if next.Revision() != s.Revision() && next.Revision() != s.Revision()+1 {
				rt.Fatalf("revision jumped from %d to %d", s.Revision(), next.Revision())
			}
			if next.Revision() == s.Revision() && !SameCollection(s.Tasks, next.Tasks) {
				rt.Fatalf("tasks changed without a new revision")
			}
			s = next
		}
	})
}

func TestProperty_ToggleTwiceRestoresPending(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		env := testEnv()
		n := rapid.IntRange(1, 10).Draw(rt, "tasks")
		s := New(Collections{})
		for i := 0; i < n; i++ {
			s = Reduce(env, s, AddTask{Input: models.TaskInput{Title: "t"}})
		}
		target := s.Tasks[rapid.IntRange(0, n-1).Draw(rt, "target")].ID

		s = Reduce(env, s, ToggleTaskStatus{ID: target})
		s = Reduce(env, s, ToggleTaskStatus{ID: target})

		for _, task := range s.Tasks {
			if task.Status != models.StatusPending || task.CompletedAt != nil {
				rt.Fatalf("task %s is %s after a double toggle", task.ID, task.Status)
			}
		}
	})
}

func TestProperty_AddDeleteMatchesModel(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		env := testEnv()
		s := New(Collections{})
		var model []string

		steps := rapid.IntRange(1, 50).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			if len(model) == 0 || rapid.Bool().Draw(rt, "add") {
				s = Reduce(env, s, AddTask{Input: models.TaskInput{Title: "t"}})
				model = append([]string{s.Tasks[0].ID}, model...)
				continue
			}
			j := rapid.IntRange(0, len(model)-1).Draw(rt, "delete")
			s = Reduce(env, s, DeleteTask{ID: model[j]})
			model = append(model[:j:j], model[j+1:]...)
		}

		if len(s.Tasks) != len(model) {
			rt.Fatalf("got %d tasks, model has %d", len(s.Tasks), len(model))
		}
		for i, task := range s.Tasks {
			if task.ID != model[i] {
				rt.Fatalf("position %d: got %s, want %s", i, task.ID, model[i])
			}
		}
	})
}
