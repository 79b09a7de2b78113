package store

import (
	"slices"
	"strings"
	"time"

	"github.com/tgienger/taskboard/internal/models"
	"github.com/tgienger/taskboard/internal/query"
)

// Reduce applies cmd to s and returns the resulting snapshot. It never
// modifies s or any slice reachable from it. Commands naming an unknown id
// return s unchanged.
func Reduce(env Env, s State, cmd Command) State {
	switch c := cmd.(type) {
	case AddTask:
		now := env.Now()
		task := newTask(env.NewID(), c.Input, now)
		s.Tasks = prepend(s.Tasks, task)

	case UpdateTask:
		i := indexOf(s.Tasks, c.ID, taskID)
		if i < 0 {
			return s
		}
		now := env.Now()
		task := newTask(c.ID, c.Input, s.Tasks[i].CreatedAt)
		task.UpdatedAt = now
		s.Tasks = replaceAt(s.Tasks, i, task)

	case DeleteTask:
		i := indexOf(s.Tasks, c.ID, taskID)
		if i < 0 {
			return s
		}
		s.Tasks = slices.Delete(slices.Clone(s.Tasks), i, i+1)

	case ToggleTaskStatus:
		i := indexOf(s.Tasks, c.ID, taskID)
		if i < 0 {
			return s
		}
		now := env.Now()
		task := s.Tasks[i]
		if task.Status != models.StatusCompleted {
			task.Status = models.StatusCompleted
			task.CompletedAt = &now
		} else {
			task.Status = models.StatusPending
			task.CompletedAt = nil
		}
		task.UpdatedAt = now
		s.Tasks = replaceAt(s.Tasks, i, task)

	case ReplaceTasks:
		s.Tasks = New(Collections{Tasks: slices.Clone(c.Tasks)}).Tasks
		s.Tasks = pruneTaskRefs(s)

	case AddCategory:
		now := env.Now()
		s.Categories = append(slices.Clip(s.Categories), models.Category{
			ID:        env.NewID(),
			Name:      strings.TrimSpace(c.Input.Name),
			Color:     colorOr(c.Input.Color, models.CategoryColors),
			CreatedAt: now,
			UpdatedAt: now,
		})

	case UpdateCategory:
		i := indexOf(s.Categories, c.ID, categoryID)
		if i < 0 {
			return s
		}
		cat := s.Categories[i]
		cat.Name = strings.TrimSpace(c.Input.Name)
		cat.Color = colorOr(c.Input.Color, models.CategoryColors)
		cat.UpdatedAt = env.Now()
		s.Categories = replaceAt(s.Categories, i, cat)

	case DeleteCategory:
		i := indexOf(s.Categories, c.ID, categoryID)
		if i < 0 {
			return s
		}
		s.Categories = slices.Delete(slices.Clone(s.Categories), i, i+1)
		s.Tasks = detachCategory(s.Tasks, c.ID)

	case ReplaceCategories:
		s.Categories = New(Collections{Categories: slices.Clone(c.Categories)}).Categories
		s.Tasks = pruneTaskRefs(s)

	case AddTag:
		s.Tags = append(slices.Clip(s.Tags), models.Tag{
			ID:        env.NewID(),
			Name:      strings.TrimSpace(c.Input.Name),
			Color:     colorOr(c.Input.Color, models.TagColors),
			CreatedAt: env.Now(),
		})

	case UpdateTag:
		i := indexOf(s.Tags, c.ID, tagID)
		if i < 0 {
			return s
		}
		tag := s.Tags[i]
		tag.Name = strings.TrimSpace(c.Input.Name)
		tag.Color = colorOr(c.Input.Color, models.TagColors)
		s.Tags = replaceAt(s.Tags, i, tag)

	case DeleteTag:
		i := indexOf(s.Tags, c.ID, tagID)
		if i < 0 {
			return s
		}
		s.Tags = slices.Delete(slices.Clone(s.Tags), i, i+1)
		s.Tasks = detachTag(s.Tasks, c.ID)

	case ReplaceTags:
		s.Tags = New(Collections{Tags: slices.Clone(c.Tags)}).Tags
		s.Tasks = pruneTaskRefs(s)

	case AddUnit:
		s.Units = append(slices.Clip(s.Units), models.Unit{
			ID:        env.NewID(),
			Name:      strings.TrimSpace(c.Input.Name),
			CreatedAt: env.Now(),
		})

	case UpdateUnit:
		i := indexOf(s.Units, c.ID, unitID)
		if i < 0 {
			return s
		}
		unit := s.Units[i]
		unit.Name = strings.TrimSpace(c.Input.Name)
		s.Units = replaceAt(s.Units, i, unit)

	case DeleteUnit:
		i := indexOf(s.Units, c.ID, unitID)
		if i < 0 {
			return s
		}
		s.Units = slices.Delete(slices.Clone(s.Units), i, i+1)
		s.Templates = detachUnit(s.Templates, c.ID)

	case ReplaceUnits:
		s.Units = New(Collections{Units: slices.Clone(c.Units)}).Units
		s.Templates = pruneTemplateRefs(s)

	case AddTemplate:
		now := env.Now()
		s.Templates = append(slices.Clip(s.Templates), newTemplate(env, env.NewID(), c.Input, now, now))

	case UpdateTemplate:
		i := indexOf(s.Templates, c.ID, templateID)
		if i < 0 {
			return s
		}
		tpl := newTemplate(env, c.ID, c.Input, s.Templates[i].CreatedAt, env.Now())
		s.Templates = replaceAt(s.Templates, i, tpl)

	case DeleteTemplate:
		i := indexOf(s.Templates, c.ID, templateID)
		if i < 0 {
			return s
		}
		s.Templates = slices.Delete(slices.Clone(s.Templates), i, i+1)

	case ReplaceTemplates:
		s.Templates = New(Collections{Templates: slices.Clone(c.Templates)}).Templates
		s.Templates = pruneTemplateRefs(s)

	case ApplyTemplate:
		i := indexOf(s.Templates, c.TemplateID, templateID)
		if i < 0 {
			return s
		}
		batch := ExpandTemplate(env, s.Templates[i], c.CategoryID)
		if len(batch) == 0 {
			return s
		}
		s.Tasks = append(batch, s.Tasks...)

	case SetFilters:
		s.Filters = c.Patch.Apply(s.Filters)

	case ResetFilters:
		s.Filters = query.DefaultFilters()

	case SetSort:
		s.Sort = c.Options

	case OpenModal:
		s.UI = openModal(s.UI, c.Modal, c.EditingID)

	case CloseModal:
		s.UI = closeModal(s.UI, c.Modal)

	case ToggleSidebar:
		s.UI.SidebarOpen = !s.UI.SidebarOpen

	default:
		return s
	}

	s.rev++
	return s
}

func newTask(id string, in models.TaskInput, created time.Time) models.Task {
	return models.Task{
		ID:          id,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Status:      models.StatusPending,
		Priority:    priorityOr(in.Priority),
		CategoryID:  cloneRef(in.CategoryID),
		ProjectID:   cloneRef(in.ProjectID),
		TagIDs:      uniqueIDs(in.TagIDs),
		DueDate:     cloneDate(in.DueDate),
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}

func newTemplate(env Env, id string, in models.TemplateInput, created, updated time.Time) models.Template {
	phases := make([]models.TemplatePhase, 0, len(in.Phases))
	for _, p := range in.Phases {
		tasks := make([]models.TemplateTask, 0, len(p.Tasks))
		for _, t := range p.Tasks {
			tasks = append(tasks, models.TemplateTask{
				ID:          env.NewID(),
				Title:       strings.TrimSpace(t.Title),
				Description: strings.TrimSpace(t.Description),
				Priority:    priorityOr(t.Priority),
			})
		}
		phases = append(phases, models.TemplatePhase{
			ID:    env.NewID(),
			Name:  strings.TrimSpace(p.Name),
			Tasks: tasks,
		})
	}
	return models.Template{
		ID:          id,
		Name:        strings.TrimSpace(in.Name),
		UnitID:      cloneRef(in.UnitID),
		Description: strings.TrimSpace(in.Description),
		Phases:      phases,
		CreatedAt:   created,
		UpdatedAt:   updated,
	}
}

func openModal(ui UI, m Modal, editingID string) UI {
	switch m {
	case ModalTaskForm:
		ui.TaskFormOpen, ui.EditingTaskID = true, editingID
	case ModalCategoryForm:
		ui.CategoryFormOpen, ui.EditingCategoryID = true, editingID
	case ModalTagForm:
		ui.TagFormOpen = true
	case ModalTemplateForm:
		ui.TemplateFormOpen, ui.EditingTemplateID = true, editingID
	case ModalApplyTemplate:
		ui.ApplyTemplateOpen = true
	case ModalUnitForm:
		ui.UnitFormOpen = true
	}
	return ui
}

func closeModal(ui UI, m Modal) UI {
	switch m {
	case ModalTaskForm:
		ui.TaskFormOpen, ui.EditingTaskID = false, ""
	case ModalCategoryForm:
		ui.CategoryFormOpen, ui.EditingCategoryID = false, ""
	case ModalTagForm:
		ui.TagFormOpen = false
	case ModalTemplateForm:
		ui.TemplateFormOpen, ui.EditingTemplateID = false, ""
	case ModalApplyTemplate:
		ui.ApplyTemplateOpen = false
	case ModalUnitForm:
		ui.UnitFormOpen = false
	}
	return ui
}
