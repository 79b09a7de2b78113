package persist

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/taskboard/internal/db"
	"github.com/tgienger/taskboard/internal/models"
	"github.com/tgienger/taskboard/internal/store"
)

// countingMedium records writes made through it
type countingMedium struct {
	*db.Memory
	sets   map[string]int
	failOn string
}

func newCounting(m *db.Memory) *countingMedium {
	return &countingMedium{Memory: m, sets: map[string]int{}}
}

func (c *countingMedium) Set(key, value string) error {
	if key == c.failOn {
		return errors.New("quota exceeded")
	}
	c.sets[key]++
	return c.Memory.Set(key, value)
}

func open(t *testing.T, medium db.Medium) (*Adapter, *store.Store) {
	t.Helper()
	a := New(medium, DefaultPrefix, nil)
	st := store.NewStore(store.DefaultEnv(), store.New(a.Load()))
	t.Cleanup(a.Attach(st))
	return a, st
}

func TestLoadEmptyAndCorrupt(t *testing.T) {
	m := db.NewMemory()
	require.NoError(t, m.Set("taskapp_tasks", "{not json"))
	require.NoError(t, m.Set("taskapp_tags", `[{"id":"t1","name":"x","color":"#6366F1"}]`))

	c := New(m, DefaultPrefix, nil).Load()
	assert.NotNil(t, c.Tasks)
	assert.Empty(t, c.Tasks)
	assert.Empty(t, c.Categories)
	require.Len(t, c.Tags, 1)
	assert.Equal(t, "x", c.Tags[0].Name)
}

func TestMirrorWritesOnlyChangedCollections(t *testing.T) {
	m := newCounting(db.NewMemory())
	_, st := open(t, m)

	st.Dispatch(store.AddTask{Input: models.TaskInput{Title: "a"}})
	assert.Equal(t, map[string]int{"taskapp_tasks": 1}, m.sets)

	st.Dispatch(store.ToggleSidebar{})
	st.Dispatch(store.DeleteTask{ID: "missing"})
	assert.Equal(t, map[string]int{"taskapp_tasks": 1}, m.sets, "UI and no-op transitions write nothing")

	next := st.Dispatch(store.AddCategory{Input: models.CategoryInput{Name: "Work"}})
	cat := next.Categories[0].ID
	st.Dispatch(store.UpdateTask{ID: next.Tasks[0].ID, Input: models.TaskInput{Title: "a", CategoryID: &cat}})
	st.Dispatch(store.DeleteCategory{ID: cat})
	assert.Equal(t, 3, m.sets["taskapp_tasks"])
	assert.Equal(t, 2, m.sets["taskapp_categories"])

	raw, ok, _ := m.Get("taskapp_tasks")
	require.True(t, ok)
	var tasks []models.Task
	require.NoError(t, json.Unmarshal([]byte(raw), &tasks))
	require.Len(t, tasks, 1)
	assert.Nil(t, tasks[0].CategoryID)
}

func TestMirrorFailureKeepsState(t *testing.T) {
	m := newCounting(db.NewMemory())
	m.failOn = "taskapp_tasks"
	_, st := open(t, m)

	next := st.Dispatch(store.AddTask{Input: models.TaskInput{Title: "kept in memory"}})
	assert.Len(t, next.Tasks, 1)
	_, ok, _ := m.Get("taskapp_tasks")
	assert.False(t, ok)
}

func TestReloadRestoresPersistedState(t *testing.T) {
	m := db.NewMemory()
	_, st := open(t, m)
	st.Dispatch(store.AddTag{Input: models.TagInput{Name: "urgent"}})
	st.Dispatch(store.AddTemplate{Input: models.TemplateInput{Name: "Release"}})

	_, reopened := open(t, m)
	s := reopened.Snapshot()
	require.Len(t, s.Tags, 1)
	assert.Equal(t, "urgent", s.Tags[0].Name)
	require.Len(t, s.Templates, 1)
	assert.Equal(t, "Release", s.Templates[0].Name)
}

func TestApplyForeignChange(t *testing.T) {
	shared := db.NewMemory()
	mine := newCounting(shared.Attach())
	a, st := open(t, mine)

	other := shared.Attach()

	foreign := `[{"id":"f1","title":"from elsewhere","status":"pending","priority":"high","tagIds":null}]`
	require.NoError(t, other.Set("taskapp_tasks", foreign))
	a.Apply(st, db.Change{Key: "taskapp_tasks", Value: foreign})

	s := st.Snapshot()
	require.Len(t, s.Tasks, 1)
	assert.Equal(t, "from elsewhere", s.Tasks[0].Title)
	assert.NotNil(t, s.Tasks[0].TagIDs)
	assert.Zero(t, mine.sets["taskapp_tasks"], "foreign values are not written back")

	rev := s.Revision()
	a.Apply(st, db.Change{Key: "taskapp_tasks", Value: "garbage"})
	a.Apply(st, db.Change{Key: "unrelated", Value: "[]"})
	a.Apply(st, db.Change{Key: "taskapp_tasks", Value: ""})
	assert.Equal(t, rev, st.Snapshot().Revision())

	st.Dispatch(store.ToggleTaskStatus{ID: "f1"})
	assert.Equal(t, 1, mine.sets["taskapp_tasks"], "local changes are written again afterwards")
}

func TestExportImport(t *testing.T) {
	src := db.NewMemory()
	a, st := open(t, src)
	next := st.Dispatch(store.AddCategory{Input: models.CategoryInput{Name: "Work"}})
	cat := next.Categories[0].ID
	st.Dispatch(store.AddTask{Input: models.TaskInput{Title: "report", CategoryID: &cat}})
	st.Dispatch(store.AddTemplate{Input: models.TemplateInput{Name: "not exported"}})

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	data, err := a.Export(now)
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.JSONEq(t, `"2024-05-01T12:00:00Z"`, string(doc["exportedAt"]))
	assert.JSONEq(t, `null`, string(doc["tags"]), "never written")
	assert.NotContains(t, doc, "templates")

	dst := db.NewMemory()
	b, restored := open(t, dst)
	require.NoError(t, b.Import(data))
	b.Reload(restored)

	want := a.Load()
	s := restored.Snapshot()
	require.Len(t, s.Tasks, 1)
	assert.Equal(t, cat, models.Deref(s.Tasks[0].CategoryID))
	assert.Equal(t, want.Tasks, s.Tasks)
	assert.Equal(t, want.Categories, s.Categories)
	assert.Equal(t, st.Snapshot().Tasks, s.Tasks)
	assert.Empty(t, s.Tags)
	assert.Empty(t, s.Templates)
	_, ok, _ := dst.Get("taskapp_tags")
	assert.False(t, ok, "null collections are skipped")
}

func TestImportDropsDanglingReferences(t *testing.T) {
	m := db.NewMemory()
	a, st := open(t, m)
	next := st.Dispatch(store.AddCategory{Input: models.CategoryInput{Name: "Work"}})
	cat := next.Categories[0].ID
	next = st.Dispatch(store.AddTag{Input: models.TagInput{Name: "urgent"}})
	tag := next.Tags[0].ID
	st.Dispatch(store.AddTask{Input: models.TaskInput{Title: "report", CategoryID: &cat, TagIDs: []string{tag}}})

	require.NoError(t, a.Import([]byte(`{"categories": [], "tags": []}`)))
	a.Reload(st)

	s := st.Snapshot()
	require.Len(t, s.Tasks, 1)
	assert.Nil(t, s.Tasks[0].CategoryID)
	assert.Empty(t, s.Tasks[0].TagIDs)
	assert.Empty(t, s.Categories)
}

func TestImportRejectsMalformed(t *testing.T) {
	m := newCounting(db.NewMemory())
	a := New(m, DefaultPrefix, nil)

	for name, doc := range map[string]string{
		"not json":       `{"tasks": [`,
		"wrong type":     `{"tasks": {"id": "x"}}`,
		"bad later part": `{"tasks": [], "categories": [], "tags": "nope"}`,
	} {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, a.Import([]byte(doc)))
			assert.Empty(t, m.sets)
		})
	}
}

func TestClear(t *testing.T) {
	m := db.NewMemory()
	require.NoError(t, m.Set("unrelated", "keep"))
	a, st := open(t, m)
	st.Dispatch(store.AddTask{Input: models.TaskInput{Title: "a"}})
	st.Dispatch(store.AddUnit{Input: models.UnitInput{Name: "u"}})

	require.NoError(t, a.Clear())
	a.Reload(st)

	keys, _ := m.Keys("")
	assert.Equal(t, []string{"unrelated"}, keys)
	assert.Empty(t, st.Snapshot().Tasks)
	assert.Empty(t, st.Snapshot().Units)
}
