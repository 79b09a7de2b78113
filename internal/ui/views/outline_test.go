package views

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/taskboard/internal/models"
)

func TestParseOutline(t *testing.T) {
	text := `
Design
- Wireframes !high
  - Review
Build
- Implement !low
- Ship it !soon
Empty
`
	phases := ParseOutline(text)
	require.Len(t, phases, 3)

	assert.Equal(t, "Design", phases[0].Name)
	assert.Equal(t, []models.TemplateTaskInput{
		{Title: "Wireframes", Priority: models.PriorityHigh},
		{Title: "Review"},
	}, phases[0].Tasks)

	assert.Equal(t, "Build", phases[1].Name)
	require.Len(t, phases[1].Tasks, 2)
	assert.Equal(t, models.PriorityLow, phases[1].Tasks[0].Priority)
	assert.Equal(t, "Ship it !soon", phases[1].Tasks[1].Title, "unknown markers stay in the title")

	assert.Equal(t, "Empty", phases[2].Name)
	assert.Empty(t, phases[2].Tasks)
}

func TestParseOutlineTasksBeforePhase(t *testing.T) {
	phases := ParseOutline("- orphan\nPhase\n- task")
	require.Len(t, phases, 2)
	assert.Empty(t, phases[0].Name)
	assert.Equal(t, "orphan", phases[0].Tasks[0].Title)
}

func TestFormatOutlineRoundTrip(t *testing.T) {
	phases := []models.TemplatePhase{
		{Name: "Plan", Tasks: []models.TemplateTask{
			{Title: "scope", Priority: models.PriorityHigh},
			{Title: "estimate", Priority: models.PriorityMedium},
		}},
		{Name: "Ship", Tasks: []models.TemplateTask{{Title: "release", Priority: models.PriorityLow}}},
	}

	text := FormatOutline(phases)
	assert.Equal(t, "Plan\n- scope !high\n- estimate\nShip\n- release !low", text)

	parsed := ParseOutline(text)
	require.Len(t, parsed, 2)
	assert.Equal(t, "estimate", parsed[0].Tasks[1].Title)
	assert.Empty(t, parsed[0].Tasks[1].Priority)
	assert.Equal(t, models.PriorityLow, parsed[1].Tasks[0].Priority)
}
