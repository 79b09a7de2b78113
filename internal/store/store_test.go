package store

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/taskboard/internal/models"
)

func TestStoreDispatchNotifies(t *testing.T) {
	st := NewStore(testEnv(), New(Collections{}))

	var got []uint64
	unsubscribe := st.Subscribe(func(prev, next State) {
		assert.Equal(t, prev.Revision()+1, next.Revision())
		got = append(got, next.Revision())
	})

	st.Dispatch(AddTask{Input: models.TaskInput{Title: "a"}})
	st.Dispatch(DeleteTask{ID: "missing"})
	st.Dispatch(AddTask{Input: models.TaskInput{Title: "b"}})

	assert.Equal(t, []uint64{1, 2}, got, "no-op transitions are not announced")

	unsubscribe()
	st.Dispatch(ToggleSidebar{})
	assert.Len(t, got, 2)
	assert.Equal(t, uint64(3), st.Snapshot().Revision())
}

func TestStoreNotifiesInSubscriptionOrder(t *testing.T) {
	st := NewStore(testEnv(), New(Collections{}))

	var order []int
	var unsubscribe []func()
	for i := range 8 {
		unsubscribe = append(unsubscribe, st.Subscribe(func(prev, next State) {
			order = append(order, i)
		}))
	}

	for range 20 {
		order = nil
		st.Dispatch(AddTag{Input: models.TagInput{Name: "t"}})
		require.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7}, order)
	}

	unsubscribe[3]()
	unsubscribe[0]()
	st.Subscribe(func(prev, next State) { order = append(order, 8) })

	order = nil
	st.Dispatch(AddTag{Input: models.TagInput{Name: "t"}})
	assert.Equal(t, []int{1, 2, 4, 5, 6, 7, 8}, order)
}

func TestStoreConcurrentDispatch(t *testing.T) {
	st := NewStore(DefaultEnv(), New(Collections{}))

	var mu sync.Mutex
	var revs []uint64
	st.Subscribe(func(prev, next State) {
		mu.Lock()
		defer mu.Unlock()
		revs = append(revs, next.Revision())
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			st.Dispatch(AddTask{Input: models.TaskInput{Title: "t"}})
		}()
	}
	wg.Wait()

	assert.Len(t, st.Snapshot().Tasks, 20)
	require.Len(t, revs, 20)
	for i, rev := range revs {
		assert.Equal(t, uint64(i+1), rev, "listeners see transitions in order")
	}
}

func TestStoreAddUnitRejectsDuplicates(t *testing.T) {
	st := NewStore(testEnv(), New(Collections{}))

	require.NoError(t, st.AddUnit(models.UnitInput{Name: "Unit 1"}))

	err := st.AddUnit(models.UnitInput{Name: " Unit 1 "})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Field("name"), "already exists")

	err = st.AddUnit(models.UnitInput{Name: "  "})
	require.Error(t, err)

	require.NoError(t, st.AddUnit(models.UnitInput{Name: "unit 1"}), "names compare case-sensitively")
	assert.Len(t, st.Snapshot().Units, 2)
}

func TestStoreAddUnitConcurrent(t *testing.T) {
	st := NewStore(DefaultEnv(), New(Collections{}))

	var wg sync.WaitGroup
	var mu sync.Mutex
	var ok int
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if st.AddUnit(models.UnitInput{Name: "Ops"}) == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Len(t, st.Snapshot().Units, 1)
}

func TestStoreLookups(t *testing.T) {
	st := NewStore(testEnv(), New(Collections{}))
	next := st.Dispatch(AddCategory{Input: models.CategoryInput{Name: "Work"}})

	cat, err := st.Category(next.Categories[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Work", cat.Name)

	_, err = st.Task("nope")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = st.Template("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestValidateTask(t *testing.T) {
	bad := models.Date("2024-13-40")
	err := ValidateTask(models.TaskInput{Title: "  ", Priority: "urgent", DueDate: &bad})

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.NotEmpty(t, verr.Field("title"))
	assert.NotEmpty(t, verr.Field("priority"))
	assert.NotEmpty(t, verr.Field("dueDate"))

	good := models.Date("2024-12-31")
	assert.NoError(t, ValidateTask(models.TaskInput{Title: "ok", DueDate: &good}))
}

func TestValidateLabels(t *testing.T) {
	assert.Error(t, ValidateCategory(models.CategoryInput{}))
	assert.Error(t, ValidateCategory(models.CategoryInput{Name: "c", Color: "#000001"}))
	assert.NoError(t, ValidateCategory(models.CategoryInput{Name: "c", Color: models.CategoryColors[2]}))

	assert.Error(t, ValidateTag(models.TagInput{Name: ""}))
	assert.NoError(t, ValidateTag(models.TagInput{Name: "t"}))
}

func TestValidateTemplate(t *testing.T) {
	err := ValidateTemplate(models.TemplateInput{
		Name: "x",
		Phases: []models.TemplatePhaseInput{
			{Name: "", Tasks: []models.TemplateTaskInput{{Title: "ok"}, {Title: " "}}},
		},
	})

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Fields, 2)
	assert.NotEmpty(t, verr.Field("phases[0].name"))
	assert.NotEmpty(t, verr.Field("phases[0].tasks[1].title"))
	assert.Contains(t, err.Error(), "validation failed")
}

func TestPreviewMatchesExpand(t *testing.T) {
	tpl := models.Template{Phases: []models.TemplatePhase{
		{Name: "Plan", Tasks: []models.TemplateTask{{Title: "scope"}, {Title: "estimate"}}},
		{Name: "Ship", Tasks: []models.TemplateTask{{Title: "release"}}},
	}}

	preview := PreviewTemplate(tpl)
	tasks := ExpandTemplate(testEnv(), tpl, nil)

	require.Len(t, tasks, len(preview))
	for i := range tasks {
		assert.Equal(t, preview[i], tasks[i].Title)
		assert.Nil(t, tasks[i].CategoryID)
	}
	assert.Equal(t, "[Ship] release", preview[2])
}
