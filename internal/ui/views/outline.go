package views

import (
	"strings"

	"github.com/tgienger/taskboard/internal/models"
)

// ParseOutline reads template phases from the editor's outline format:
//
//	Design
//	- Wireframes !high
//	- Review
//	Build
//	- Implement
//
// A line starting with "-" is a task of the phase above it; any other
// non-blank line starts a phase. A trailing !high, !medium or !low sets the
// task priority. Tasks before the first phase are collected in an unnamed
// phase so validation can point at them.
func ParseOutline(text string) []models.TemplatePhaseInput {
	var phases []models.TemplatePhaseInput
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		title, isTask := strings.CutPrefix(line, "-")
		if !isTask {
			phases = append(phases, models.TemplatePhaseInput{Name: line, Tasks: []models.TemplateTaskInput{}})
			continue
		}
		if len(phases) == 0 {
			phases = append(phases, models.TemplatePhaseInput{Tasks: []models.TemplateTaskInput{}})
		}

		task := models.TemplateTaskInput{Title: strings.TrimSpace(title)}
		if i := strings.LastIndex(task.Title, " !"); i >= 0 {
			if p := models.Priority(task.Title[i+2:]); p.Valid() {
				task.Title, task.Priority = strings.TrimSpace(task.Title[:i]), p
			}
		}
		last := &phases[len(phases)-1]
		last.Tasks = append(last.Tasks, task)
	}
	return phases
}

// FormatOutline is the inverse of ParseOutline
func FormatOutline(phases []models.TemplatePhase) string {
	var b strings.Builder
	for _, p := range phases {
		b.WriteString(p.Name)
		b.WriteByte('\n')
		for _, t := range p.Tasks {
			b.WriteString("- ")
			b.WriteString(t.Title)
			if t.Priority != "" && t.Priority != models.PriorityMedium {
				b.WriteString(" !")
				b.WriteString(string(t.Priority))
			}
			b.WriteByte('\n')
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}
