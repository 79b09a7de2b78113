package views

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/taskboard/internal/models"
	"github.com/tgienger/taskboard/internal/query"
	"github.com/tgienger/taskboard/internal/store"
	"github.com/tgienger/taskboard/internal/ui/keys"
	"github.com/tgienger/taskboard/internal/ui/styles"
)

// clamp returns val clamped between minVal and maxVal
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// cycle returns the value after cur in values, wrapping around
func cycle(values []string, cur string) string {
	i := slices.Index(values, cur)
	return values[(i+1)%len(values)]
}

// FocusArea represents which part of the UI has focus
type FocusArea int

const (
	FocusSearchInput FocusArea = iota
	FocusTagDropdown
	FocusTaskList
)

// form field indexes
const (
	fieldTitle = iota
	fieldDesc
	fieldPriority
	fieldCategory
	fieldDue
	fieldTags
	fieldSave
	fieldCount
)

var (
	statusCycle   = []string{query.All, string(models.StatusPending), string(models.StatusInProgress), string(models.StatusCompleted)}
	priorityCycle = []string{query.All, string(models.PriorityHigh), string(models.PriorityMedium), string(models.PriorityLow)}
	formPriority  = []string{string(models.PriorityHigh), string(models.PriorityMedium), string(models.PriorityLow)}
)

// searchDebouncedMsg fires when the search input has been idle for the
// debounce window. Stale messages carry an old seq and are dropped.
type searchDebouncedMsg struct {
	seq   int
	query string
}

// TaskListView shows the filtered and sorted task list
type TaskListView struct {
	store    *store.Store
	state    store.State
	tasks    []models.Task
	styles   *styles.Styles
	keys     keys.KeyMap
	debounce time.Duration
	user     string
	now      func() time.Time

	width  int
	height int

	// UI state
	focus       FocusArea
	cursor      int
	scrollY     int
	searchInput textinput.Model
	searchSeq   int

	// Tag dropdown state
	tagDropdownOpen bool
	tagCursor       int

	// Task creation/editing; the form is open while state.UI.TaskFormOpen
	editTitle     textinput.Model
	editDesc      textarea.Model
	editDue       textinput.Model
	editPriority  string
	editCategory  string
	editTags      []string
	editTagCursor int
	editFocusIdx  int
	editErr       *store.ValidationError

	// Task view mode (read-only detail view)
	viewingTask bool

	// Delete confirmation
	confirmingDelete bool
	deleteTargetID   string
	deleteTargetName string

	// status filter saved while showing completed tasks
	preCompletedStatus string
	showingCompleted   bool

	// Help popup (shown with ? at narrow widths)
	showHelpPopup bool
}

// NewTaskListView creates a new task list view
func NewTaskListView(st *store.Store, debounce time.Duration) *TaskListView {
	s := styles.NewStyles()

	search := textinput.New()
	search.Placeholder = "Search tasks..."
	search.CharLimit = 100

	editTitle := textinput.New()
	editTitle.Placeholder = "Task title"
	editTitle.CharLimit = 200

	editDesc := textarea.New()
	editDesc.Placeholder = "Description"
	editDesc.CharLimit = 1000
	editDesc.SetWidth(50)
	editDesc.SetHeight(3)
	editDesc.ShowLineNumbers = false

	editDue := textinput.New()
	editDue.Placeholder = "YYYY-MM-DD"
	editDue.CharLimit = 10

	v := &TaskListView{
		store:       st,
		styles:      s,
		keys:        keys.DefaultKeyMap(),
		debounce:    debounce,
		now:         time.Now,
		focus:       FocusTaskList,
		searchInput: search,
		editTitle:   editTitle,
		editDesc:    editDesc,
		editDue:     editDue,
	}
	v.setState(st.Snapshot())
	return v
}

// SetUser sets the signed-in user shown in the header
func (v *TaskListView) SetUser(user string) {
	v.user = user
}

// Init initializes the view
func (v *TaskListView) Init() tea.Cmd {
	v.setState(v.store.Snapshot())
	return nil
}

func (v *TaskListView) setState(s store.State) {
	v.state = s
	v.tasks = s.View()
	if v.cursor >= len(v.tasks) {
		v.cursor = max(0, len(v.tasks)-1)
	}
	v.ensureVisible()
}

func (v *TaskListView) dispatch(cmd store.Command) {
	v.setState(v.store.Dispatch(cmd))
}

func (v *TaskListView) editing() bool {
	return v.state.UI.TaskFormOpen
}

// Update handles messages
func (v *TaskListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		contentWidth := styles.ContentWidth(v.width)
		v.editDesc.SetWidth(clamp(contentWidth-10, 20, 50))
		return v, nil

	case StateChanged:
		if newer(v.state, msg.State) {
			v.setState(msg.State)
		}
		return v, nil

	case searchDebouncedMsg:
		if msg.seq == v.searchSeq {
			v.applySearch(msg.query)
		}
		return v, nil

	case tea.KeyMsg:
		// Handle help popup first - any key closes it
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}

		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}

		if v.editing() {
			return v.updateEditing(msg)
		}

		if v.viewingTask {
			return v.updateViewingTask(msg)
		}

		if v.tagDropdownOpen {
			return v.updateTagDropdown(msg)
		}

		return v.updateNormal(msg)
	}

	return v, nil
}

func (v *TaskListView) applySearch(q string) {
	if q == v.state.Filters.SearchQuery {
		return
	}
	v.cursor, v.scrollY = 0, 0
	v.dispatch(store.SetFilters{Patch: query.FilterPatch{SearchQuery: &q}})
}

// debounceSearch schedules the current input to become the search query
func (v *TaskListView) debounceSearch() tea.Cmd {
	v.searchSeq++
	seq, q := v.searchSeq, v.searchInput.Value()
	if v.debounce <= 0 {
		v.applySearch(q)
		return nil
	}
	return tea.Tick(v.debounce, func(time.Time) tea.Msg {
		return searchDebouncedMsg{seq: seq, query: q}
	})
}

func (v *TaskListView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Handle search input typing first - don't process hotkeys while typing
	if v.focus == FocusSearchInput {
		switch {
		case key.Matches(msg, v.keys.Back):
			v.searchInput.Blur()
			v.focus = FocusTaskList
			return v, nil
		case key.Matches(msg, v.keys.Enter):
			v.searchInput.Blur()
			v.focus = FocusTaskList
			v.searchSeq++
			v.applySearch(v.searchInput.Value())
			return v, nil
		default:
			before := v.searchInput.Value()
			var cmd tea.Cmd
			v.searchInput, cmd = v.searchInput.Update(msg)
			if v.searchInput.Value() == before {
				return v, cmd
			}
			return v, tea.Batch(cmd, v.debounceSearch())
		}
	}

	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Tab):
		v.cycleFocus(1)
		return v, nil

	case msg.String() == "shift+tab":
		v.cycleFocus(-1)
		return v, nil

	case key.Matches(msg, v.keys.Up):
		if v.focus == FocusTaskList && v.cursor > 0 {
			v.cursor--
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.focus == FocusTaskList && v.cursor < len(v.tasks)-1 {
			v.cursor++
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		switch v.focus {
		case FocusTagDropdown:
			v.tagDropdownOpen = true
			v.tagCursor = 0
		case FocusTaskList:
			if len(v.tasks) > 0 {
				v.viewingTask = true
			}
		}
		return v, nil

	case key.Matches(msg, v.keys.Toggle):
		if v.focus == FocusTaskList && len(v.tasks) > 0 {
			v.dispatch(store.ToggleTaskStatus{ID: v.tasks[v.cursor].ID})
		}
		return v, nil

	case key.Matches(msg, v.keys.Edit):
		if v.focus == FocusTaskList && len(v.tasks) > 0 {
			v.startEditTask(v.tasks[v.cursor])
			return v, textinput.Blink
		}
		return v, nil

	case key.Matches(msg, v.keys.New):
		v.startNewTask()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Delete):
		if v.focus == FocusTaskList && len(v.tasks) > 0 {
			v.confirmDelete(v.tasks[v.cursor])
		}
		return v, nil

	case key.Matches(msg, v.keys.Search):
		v.focus = FocusSearchInput
		v.searchInput.Focus()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Filter):
		v.focus = FocusTagDropdown
		v.tagDropdownOpen = true
		v.tagCursor = 0
		return v, nil

	case key.Matches(msg, v.keys.Status):
		next := cycle(statusCycle, v.state.Filters.Status)
		v.showingCompleted = false
		v.setFilter(query.FilterPatch{Status: &next})
		return v, nil

	case key.Matches(msg, v.keys.Priority):
		next := cycle(priorityCycle, v.state.Filters.Priority)
		v.setFilter(query.FilterPatch{Priority: &next})
		return v, nil

	case key.Matches(msg, v.keys.Category):
		ids := []string{query.All}
		for _, c := range v.state.Categories {
			ids = append(ids, c.ID)
		}
		next := cycle(ids, v.state.Filters.CategoryID)
		v.setFilter(query.FilterPatch{CategoryID: &next})
		return v, nil

	case key.Matches(msg, v.keys.Sort):
		fields := make([]string, len(query.SortFields))
		for i, f := range query.SortFields {
			fields[i] = string(f)
		}
		opts := v.state.Sort
		opts.Field = query.SortField(cycle(fields, string(opts.Field)))
		v.dispatch(store.SetSort{Options: opts})
		return v, nil

	case key.Matches(msg, v.keys.Order):
		opts := v.state.Sort
		if opts.Order == query.Asc {
			opts.Order = query.Desc
		} else {
			opts.Order = query.Asc
		}
		v.dispatch(store.SetSort{Options: opts})
		return v, nil

	case key.Matches(msg, v.keys.Reset):
		v.searchSeq++
		v.searchInput.Reset()
		v.showingCompleted = false
		v.cursor, v.scrollY = 0, 0
		v.dispatch(store.ResetFilters{})
		return v, nil

	case key.Matches(msg, v.keys.Sidebar):
		v.dispatch(store.ToggleSidebar{})
		return v, nil

	case key.Matches(msg, v.keys.Templates):
		return v, func() tea.Msg { return ShowTemplates{} }

	case key.Matches(msg, v.keys.Labels):
		return v, func() tea.Msg { return ShowLabels{} }

	case key.Matches(msg, v.keys.SignOut):
		if v.user != "" {
			return v, func() tea.Msg { return SignedOut{} }
		}
		return v, func() tea.Msg { return ShowSignIn{} }

	case msg.String() == "?":
		// Show help popup (useful at narrow widths)
		v.showHelpPopup = true
		return v, nil

	case key.Matches(msg, v.keys.ShowCompleted):
		// Toggle between completed tasks and the previous status filter
		var next string
		if v.showingCompleted {
			v.showingCompleted = false
			next = v.preCompletedStatus
		} else {
			v.preCompletedStatus = v.state.Filters.Status
			v.showingCompleted = true
			next = string(models.StatusCompleted)
		}
		v.setFilter(query.FilterPatch{Status: &next})
		return v, nil
	}

	return v, nil
}

func (v *TaskListView) setFilter(p query.FilterPatch) {
	v.cursor, v.scrollY = 0, 0
	v.dispatch(store.SetFilters{Patch: p})
}

func (v *TaskListView) updateTagDropdown(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.tagDropdownOpen = false
		return v, nil

	case key.Matches(msg, v.keys.Up):
		if v.tagCursor > 0 {
			v.tagCursor--
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.tagCursor < len(v.state.Tags) { // +1 for "None" option
			v.tagCursor++
		}
		return v, nil

	case key.Matches(msg, v.keys.Enter), msg.String() == " ":
		// "None" clears the filter, a tag toggles its membership
		var ids []string
		if v.tagCursor > 0 {
			tagID := v.state.Tags[v.tagCursor-1].ID
			ids = slices.Clone(v.state.Filters.TagIDs)
			if i := slices.Index(ids, tagID); i >= 0 {
				ids = slices.Delete(ids, i, i+1)
			} else {
				ids = append(ids, tagID)
			}
		}
		v.setFilter(query.FilterPatch{TagIDs: ids, SetTagIDs: true})
		if v.tagCursor == 0 {
			v.tagDropdownOpen = false
		}
		return v, nil
	}

	return v, nil
}

func (v *TaskListView) confirmDelete(task models.Task) {
	v.confirmingDelete = true
	v.deleteTargetID = task.ID
	v.deleteTargetName = task.Title
}

func (v *TaskListView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.dispatch(store.DeleteTask{ID: v.deleteTargetID})
		v.confirmingDelete = false
		v.viewingTask = false
		return v, nil
	case "n", "N", "esc":
		v.confirmingDelete = false
		return v, nil
	}
	return v, nil
}

func (v *TaskListView) updateViewingTask(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if len(v.tasks) == 0 {
		v.viewingTask = false
		return v, nil
	}

	switch {
	case key.Matches(msg, v.keys.Back):
		v.viewingTask = false
		return v, nil
	case key.Matches(msg, v.keys.Edit):
		v.viewingTask = false
		v.startEditTask(v.tasks[v.cursor])
		return v, textinput.Blink
	case key.Matches(msg, v.keys.Delete):
		v.confirmDelete(v.tasks[v.cursor])
		return v, nil
	case key.Matches(msg, v.keys.Toggle):
		id := v.tasks[v.cursor].ID
		v.dispatch(store.ToggleTaskStatus{ID: id})
		// the toggled task may have left the view
		if !slices.ContainsFunc(v.tasks, func(t models.Task) bool { return t.ID == id }) {
			v.viewingTask = false
		}
		return v, nil
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit
	}
	return v, nil
}

func (v *TaskListView) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.dispatch(store.CloseModal{Modal: store.ModalTaskForm})
		return v, nil

	case msg.String() == "ctrl+s":
		v.saveTask()
		return v, nil

	case key.Matches(msg, v.keys.Tab):
		v.editFocusIdx = (v.editFocusIdx + 1) % fieldCount
		v.updateEditFocus()
		return v, nil

	case msg.String() == "shift+tab":
		v.editFocusIdx = (v.editFocusIdx + fieldCount - 1) % fieldCount
		v.updateEditFocus()
		return v, nil

	case msg.String() == "left" || msg.String() == "right":
		// Left/right cycle the choice fields
		switch v.editFocusIdx {
		case fieldPriority:
			v.editPriority = cycleDir(formPriority, v.editPriority, msg.String() == "left")
			return v, nil
		case fieldCategory:
			ids := []string{""}
			for _, c := range v.state.Categories {
				ids = append(ids, c.ID)
			}
			v.editCategory = cycleDir(ids, v.editCategory, msg.String() == "left")
			return v, nil
		}

	case key.Matches(msg, v.keys.Enter):
		switch v.editFocusIdx {
		case fieldTitle, fieldPriority, fieldCategory, fieldDue:
			v.editFocusIdx++
			v.updateEditFocus()
			return v, nil
		case fieldTags:
			v.toggleEditTag()
			return v, nil
		case fieldSave:
			v.saveTask()
			return v, nil
		}
		// For the description textarea, let enter pass through for newlines

	case msg.String() == " ":
		// Space also toggles tags when in tag selector
		if v.editFocusIdx == fieldTags {
			v.toggleEditTag()
			return v, nil
		}

	case key.Matches(msg, v.keys.Up):
		if v.editFocusIdx == fieldTags && v.editTagCursor > 0 {
			v.editTagCursor--
			return v, nil
		}

	case key.Matches(msg, v.keys.Down):
		if v.editFocusIdx == fieldTags && v.editTagCursor < len(v.state.Tags)-1 {
			v.editTagCursor++
			return v, nil
		}
	}

	var cmd tea.Cmd
	switch v.editFocusIdx {
	case fieldTitle:
		v.editTitle, cmd = v.editTitle.Update(msg)
	case fieldDesc:
		v.editDesc, cmd = v.editDesc.Update(msg)
	case fieldDue:
		v.editDue, cmd = v.editDue.Update(msg)
	}
	return v, cmd
}

// cycleDir steps through values forwards or backwards
func cycleDir(values []string, cur string, back bool) string {
	if !back {
		return cycle(values, cur)
	}
	i := slices.Index(values, cur)
	if i <= 0 {
		return values[len(values)-1]
	}
	return values[i-1]
}

// toggleEditTag toggles the currently selected tag in the edit form
func (v *TaskListView) toggleEditTag() {
	if v.editTagCursor >= len(v.state.Tags) {
		return
	}
	tagID := v.state.Tags[v.editTagCursor].ID
	if i := slices.Index(v.editTags, tagID); i >= 0 {
		v.editTags = slices.Delete(v.editTags, i, i+1)
		return
	}
	v.editTags = append(v.editTags, tagID)
}

func (v *TaskListView) cycleFocus(dir int) {
	v.searchInput.Blur()
	v.focus = FocusArea((int(v.focus) + dir + 3) % 3)
	if v.focus == FocusSearchInput {
		v.searchInput.Focus()
	}
}

func (v *TaskListView) visibleItems() int {
	// Each task item is 2 lines + 1 margin = 3 lines
	availableHeight := max(v.height-12, 3)
	return max(availableHeight/3, 1)
}

func (v *TaskListView) ensureVisible() {
	visible := v.visibleItems()
	if v.cursor < v.scrollY {
		v.scrollY = v.cursor
	} else if v.cursor >= v.scrollY+visible {
		v.scrollY = v.cursor - visible + 1
	}
}

func (v *TaskListView) startNewTask() {
	v.resetForm()
	v.editPriority = string(models.PriorityMedium)
	// preselect the category the list is filtered by
	if _, err := v.store.Category(v.state.Filters.CategoryID); err == nil {
		v.editCategory = v.state.Filters.CategoryID
	}
	v.dispatch(store.OpenModal{Modal: store.ModalTaskForm})
	v.updateEditFocus()
}

func (v *TaskListView) startEditTask(task models.Task) {
	v.resetForm()
	v.editTitle.SetValue(task.Title)
	v.editDesc.SetValue(task.Description)
	v.editPriority = string(task.Priority)
	v.editCategory = models.Deref(task.CategoryID)
	v.editTags = slices.Clone(task.TagIDs)
	if task.DueDate != nil {
		v.editDue.SetValue(string(*task.DueDate))
	}
	v.dispatch(store.OpenModal{Modal: store.ModalTaskForm, EditingID: task.ID})
	v.updateEditFocus()
}

func (v *TaskListView) resetForm() {
	v.editFocusIdx = fieldTitle
	v.editTagCursor = 0
	v.editTags = []string{}
	v.editCategory = ""
	v.editErr = nil
	v.editTitle.Reset()
	v.editDesc.Reset()
	v.editDue.Reset()
}

func (v *TaskListView) updateEditFocus() {
	v.editTitle.Blur()
	v.editDesc.Blur()
	v.editDue.Blur()

	switch v.editFocusIdx {
	case fieldTitle:
		v.editTitle.Focus()
	case fieldDesc:
		v.editDesc.Focus()
	case fieldDue:
		v.editDue.Focus()
	}
}

func (v *TaskListView) formInput() models.TaskInput {
	in := models.TaskInput{
		Title:       v.editTitle.Value(),
		Description: v.editDesc.Value(),
		Priority:    models.Priority(v.editPriority),
		CategoryID:  models.Ref(v.editCategory),
		TagIDs:      slices.Clone(v.editTags),
	}
	if due := strings.TrimSpace(v.editDue.Value()); due != "" {
		d := models.Date(due)
		in.DueDate = &d
	}
	return in
}

func (v *TaskListView) saveTask() {
	in := v.formInput()
	if err := store.ValidateTask(in); err != nil {
		var verr *store.ValidationError
		if errors.As(err, &verr) {
			v.editErr = verr
		}
		return
	}

	if id := v.state.UI.EditingTaskID; id != "" {
		// keep the project the task already belongs to
		if t, err := v.store.Task(id); err == nil {
			in.ProjectID = t.ProjectID
		}
		v.dispatch(store.UpdateTask{ID: id, Input: in})
	} else {
		v.dispatch(store.AddTask{Input: in})
		v.cursor, v.scrollY = 0, 0
	}
	v.editErr = nil
	v.dispatch(store.CloseModal{Modal: store.ModalTaskForm})
}

// View renders the view
func (v *TaskListView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}

	if v.confirmingDelete {
		return v.renderDeleteConfirm()
	}

	if v.editing() {
		return v.renderEditForm()
	}

	if v.viewingTask {
		return v.renderTaskView()
	}

	var b strings.Builder

	b.WriteString(v.renderHeader())
	b.WriteString("\n\n")

	list := v.renderTaskList()
	if v.showSidebar() {
		list = lipgloss.JoinHorizontal(lipgloss.Top, v.renderSidebar(), " ", list)
	}
	b.WriteString(list)

	b.WriteString("\n")
	b.WriteString(v.renderHelp())

	return styles.CenterView(b.String(), v.width, v.height)
}

func (v *TaskListView) showSidebar() bool {
	return v.state.UI.SidebarOpen && styles.ContentWidth(v.width) >= 60
}

func (v *TaskListView) listWidth() int {
	w := styles.ContentWidth(v.width) - 4
	if v.showSidebar() {
		w -= styles.SidebarWidth + 3
	}
	return max(w, 20)
}

func (v *TaskListView) categoryName(id *string) string {
	if id == nil {
		return ""
	}
	for _, c := range v.state.Categories {
		if c.ID == *id {
			return c.Name
		}
	}
	return ""
}

func (v *TaskListView) renderHeader() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	isNarrow := contentWidth < 60

	searchStyle := s.Input
	if v.focus == FocusSearchInput {
		searchStyle = s.InputFocused
	}
	searchWidth := clamp(contentWidth-8, 10, 30)
	v.searchInput.Placeholder = "Search..."
	searchBox := searchStyle.Width(searchWidth).Render(v.searchInput.View())

	tagStyle := s.Button
	if v.focus == FocusTagDropdown {
		tagStyle = s.ButtonFocused
	}
	tagLabel := "All"
	if n := len(v.state.Filters.TagIDs); n == 1 {
		for _, t := range v.state.Tags {
			if t.ID == v.state.Filters.TagIDs[0] {
				tagLabel = t.Name
			}
		}
	} else if n > 1 {
		tagLabel = fmt.Sprintf("%d tags", n)
	}
	if !isNarrow {
		tagLabel = "Tags: " + tagLabel
	}
	tagBtn := tagStyle.Render(tagLabel + " ▼")

	titleText := "Tasks"
	if v.showingCompleted {
		titleText = "Tasks (Completed)"
	}
	title := s.Title.Render(titleText)
	if v.user != "" {
		title += s.TitleMuted.Render("  · " + v.user)
	}

	var header string
	if isNarrow {
		header = lipgloss.JoinVertical(lipgloss.Left, searchBox, tagBtn)
	} else {
		header = lipgloss.JoinHorizontal(lipgloss.Center, searchBox, "  ", tagBtn)
	}

	dropdown := ""
	if v.tagDropdownOpen {
		dropdown = "\n" + v.renderTagDropdown()
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, header+dropdown, v.renderFilterSummary())
}

func (v *TaskListView) renderFilterSummary() string {
	f := v.state.Filters
	category := query.All
	if f.CategoryID != query.All && f.CategoryID != "" {
		category = v.categoryName(&f.CategoryID)
	}
	return v.styles.StatusBar.Render(fmt.Sprintf("status: %s · priority: %s · category: %s · sort: %s %s · %d/%d",
		f.Status, f.Priority, category, v.state.Sort.Field, v.state.Sort.Order, len(v.tasks), len(v.state.Tasks)))
}

func (v *TaskListView) renderTagDropdown() string {
	s := v.styles
	var items []string

	noneStyle := s.ListItem
	if v.tagCursor == 0 {
		noneStyle = s.ListSelected
	}
	items = append(items, noneStyle.Render("None"))

	for i, tag := range v.state.Tags {
		itemStyle := s.ListItem
		if v.tagCursor == i+1 {
			itemStyle = s.ListSelected
		}
		checkbox := "[ ]"
		if slices.Contains(v.state.Filters.TagIDs, tag.ID) {
			checkbox = "[x]"
		}
		items = append(items, itemStyle.Render(checkbox+" "+styles.Dot(tag.Color)+" "+tag.Name))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, items...)
	return s.FilterBar.Render(content)
}

func (v *TaskListView) renderSidebar() string {
	s := v.styles
	counts := make(map[string]int)
	for _, t := range v.state.Tasks {
		counts[models.Deref(t.CategoryID)]++
	}

	active := v.state.Filters.CategoryID
	line := func(label string, n int, selected bool) string {
		text := fmt.Sprintf("%s (%d)", label, n)
		if selected {
			return s.Title.Render(text)
		}
		return s.TaskTitle.Render(text)
	}

	items := []string{
		s.TitleMuted.Render("Categories"),
		line("All", len(v.state.Tasks), active == query.All || active == ""),
	}
	for _, c := range v.state.Categories {
		dot := styles.Dot(c.Color)
		items = append(items, dot+" "+line(c.Name, counts[c.ID], active == c.ID))
	}
	return s.Sidebar.Render(lipgloss.JoinVertical(lipgloss.Left, items...))
}

func (v *TaskListView) renderTaskList() string {
	s := v.styles

	if len(v.tasks) == 0 {
		if v.state.Filters.Active() {
			return s.TitleMuted.Render("No tasks match. Press 'r' to reset filters.")
		}
		return s.TitleMuted.Render("No tasks. Press 'n' to create one.")
	}

	var items []string
	endIdx := min(v.scrollY+v.visibleItems(), len(v.tasks))

	for i := v.scrollY; i < endIdx; i++ {
		items = append(items, v.renderTaskItem(v.tasks[i], i == v.cursor && v.focus == FocusTaskList))
	}

	return lipgloss.JoinVertical(lipgloss.Left, items...)
}

func (v *TaskListView) renderTaskItem(task models.Task, selected bool) string {
	s := v.styles
	width := v.listWidth()

	icon, iconColor := styles.StatusIcon(task.Status)
	priority := lipgloss.NewStyle().Foreground(styles.PriorityColor(task.Priority)).Render("●")
	titleLine := lipgloss.NewStyle().Foreground(iconColor).Render(icon) + " " + priority + " " + task.Title

	var meta []string
	if name := v.categoryName(task.CategoryID); name != "" {
		meta = append(meta, name)
	}
	for _, id := range task.TagIDs {
		for _, tag := range v.state.Tags {
			if tag.ID == id {
				meta = append(meta, styles.Label(tag.Color, "#"+tag.Name))
			}
		}
	}
	if task.DueDate != nil {
		meta = append(meta, v.dueText(task))
	}
	metaLine := s.TitleMuted.Render("no details")
	if len(meta) > 0 {
		metaLine = strings.Join(meta, " ")
	}

	itemStyle := s.ListItem
	if selected {
		itemStyle = s.ListSelected
	}

	title := itemStyle.Width(width).Render(titleLine)
	details := itemStyle.Width(width).Render("    " + metaLine)

	return lipgloss.JoinVertical(lipgloss.Left, title, details) + "\n"
}

// dueText labels a due date relative to today. Overdue open tasks are
// highlighted.
func (v *TaskListView) dueText(task models.Task) string {
	today := v.now()
	label := "due " + task.DueDate.DueLabel(today)
	if task.Status != models.StatusCompleted && task.DueDate.IsOverdue(today) {
		return lipgloss.NewStyle().Foreground(styles.Current.Error).Bold(true).Render(label)
	}
	return label
}

func (v *TaskListView) fieldError(name string) string {
	if v.editErr == nil {
		return ""
	}
	if msg := v.editErr.Field(name); msg != "" {
		return v.styles.FieldError.Render(msg)
	}
	return ""
}

func (v *TaskListView) renderEditForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	formTitle := "New Task"
	if v.state.UI.EditingTaskID != "" {
		formTitle = "Edit Task"
	}

	fieldStyles := make([]lipgloss.Style, fieldCount)
	for i := range fieldStyles {
		fieldStyles[i] = s.Input
	}
	btnStyle := s.Button
	if v.editFocusIdx == fieldSave {
		btnStyle = s.ButtonFocused
	} else {
		fieldStyles[v.editFocusIdx] = s.InputFocused
	}

	inputWidth := clamp(contentWidth-6, 20, 50)

	priority := lipgloss.NewStyle().Foreground(styles.PriorityColor(models.Priority(v.editPriority))).Render(v.editPriority)
	category := "None"
	if name := v.categoryName(models.Ref(v.editCategory)); name != "" {
		category = name
	}

	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render(formTitle),
		"",
		"Title:",
		fieldStyles[fieldTitle].Width(inputWidth).Render(v.editTitle.View()),
		v.fieldError("title"),
		"Description:",
		fieldStyles[fieldDesc].Render(v.editDesc.View()),
		"Priority:",
		fieldStyles[fieldPriority].Width(inputWidth).Render("◀ "+priority+" ▶"),
		v.fieldError("priority"),
		"Category:",
		fieldStyles[fieldCategory].Width(inputWidth).Render("◀ "+category+" ▶"),
		"Due date:",
		fieldStyles[fieldDue].Width(14).Render(v.editDue.View()),
		v.fieldError("dueDate"),
		"Tags:",
		v.renderEditTagSelector(fieldStyles[fieldTags], inputWidth),
		"",
		btnStyle.Render(" Save "),
		"",
		s.TitleMuted.Render("Tab: next • ←→: choose • Space/↵: toggle tag • Ctrl+S: save • Esc: cancel"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}

// renderEditTagSelector renders the inline tag selector for the edit form
func (v *TaskListView) renderEditTagSelector(containerStyle lipgloss.Style, width int) string {
	s := v.styles

	if len(v.state.Tags) == 0 {
		return containerStyle.Width(width).Render(s.TitleMuted.Render("No tags available"))
	}

	var items []string
	for i, tag := range v.state.Tags {
		checkbox := "[ ]"
		if slices.Contains(v.editTags, tag.ID) {
			checkbox = "[x]"
		}

		itemText := checkbox + " " + styles.Dot(tag.Color) + " " + tag.Name

		if v.editFocusIdx == fieldTags && i == v.editTagCursor {
			items = append(items, s.ListSelected.Render(itemText))
		} else {
			items = append(items, s.ListItem.Render(itemText))
		}
	}

	content := lipgloss.JoinVertical(lipgloss.Left, items...)
	return containerStyle.Width(width).Render(content)
}

func (v *TaskListView) renderHelp() string {
	contentWidth := styles.ContentWidth(v.width)
	if contentWidth > 0 && contentWidth < 50 {
		return v.styles.Help.Render(v.styles.HelpKey.Render("?") + " help")
	}

	k := v.styles.HelpKey.Render
	return v.styles.Help.Render(
		fmt.Sprintf("%s done • %s new • %s edit • %s del • %s search • %s tags • %s status • %s sort • %s templates • %s help • %s quit",
			k("space"), k("n"), k("e"), k("d"), k("/"), k("f"), k("s"), k("o"), k("T"), k("?"), k("q"),
		),
	)
}

func (v *TaskListView) renderHelpPopup() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	completedLabel := "show completed"
	if v.showingCompleted {
		completedLabel = "hide completed"
	}

	helpItems := []string{
		s.HelpKey.Render("↵") + "      view task",
		s.HelpKey.Render("space") + "  toggle done",
		s.HelpKey.Render("e") + "      edit task",
		s.HelpKey.Render("n") + "      new task",
		s.HelpKey.Render("d") + "      delete task",
		s.HelpKey.Render("/") + "      search",
		s.HelpKey.Render("f") + "      filter by tags",
		s.HelpKey.Render("s") + "      cycle status filter",
		s.HelpKey.Render("p") + "      cycle priority filter",
		s.HelpKey.Render("g") + "      cycle category filter",
		s.HelpKey.Render("o/O") + "    sort field / order",
		s.HelpKey.Render("r") + "      reset filters",
		s.HelpKey.Render("c") + "      " + completedLabel,
		s.HelpKey.Render("b") + "      toggle sidebar",
		s.HelpKey.Render("T") + "      templates",
		s.HelpKey.Render("L") + "      categories, tags, units",
	}
	if v.user != "" {
		helpItems = append(helpItems, s.HelpKey.Render("ctrl+o")+" sign out")
	} else {
		helpItems = append(helpItems, s.HelpKey.Render("ctrl+o")+" sign in")
	}
	helpItems = append(helpItems,
		s.HelpKey.Render("q")+"      quit",
		"",
		s.TitleMuted.Render("Press any key to close"),
	)

	content := lipgloss.JoinVertical(lipgloss.Left,
		append([]string{s.Title.Render("Keyboard Shortcuts"), ""}, helpItems...)...,
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		s.FilterBar.Render(content),
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *TaskListView) renderDeleteConfirm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render("Delete Task?"),
		"",
		s.TitleMuted.Render(fmt.Sprintf("%q will be removed.", v.deleteTargetName)),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonPrimary.Render(" Y - Yes "),
			"  ",
			s.Button.Render(" N - No "),
		),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *TaskListView) renderTaskView() string {
	if len(v.tasks) == 0 || v.cursor >= len(v.tasks) {
		return ""
	}

	s := v.styles
	task := v.tasks[v.cursor]
	textWidth := clamp(styles.ContentWidth(v.width)-10, 20, 70)

	var tagStrs []string
	for _, id := range task.TagIDs {
		for _, tag := range v.state.Tags {
			if tag.ID == id {
				tagStrs = append(tagStrs, styles.Label(tag.Color, tag.Name))
			}
		}
	}
	tagsLine := "None"
	if len(tagStrs) > 0 {
		tagsLine = strings.Join(tagStrs, " ")
	}

	descText := task.Description
	if descText == "" {
		descText = s.TitleMuted.Render("No description")
	}

	category := v.categoryName(task.CategoryID)
	if category == "" {
		category = "None"
	}
	due := "None"
	if task.DueDate != nil {
		due = string(*task.DueDate) + " (" + v.dueText(task) + ")"
	}
	completed := ""
	if task.CompletedAt != nil {
		completed = " on " + task.CompletedAt.Local().Format("Jan 2, 2006 3:04 PM")
	}

	labelStyle := s.TitleMuted
	content := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.MarginBottom(1).Render(task.Title),
		labelStyle.Render("Status"),
		string(task.Status)+completed,
		"",
		labelStyle.Render("Priority"),
		lipgloss.NewStyle().Foreground(styles.PriorityColor(task.Priority)).Bold(true).Render(string(task.Priority)),
		"",
		labelStyle.Render("Category"),
		category,
		"",
		labelStyle.Render("Tags"),
		tagsLine,
		"",
		labelStyle.Render("Due"),
		due,
		"",
		labelStyle.Render("Description"),
		lipgloss.NewStyle().Width(textWidth).Render(descText),
		"",
		labelStyle.Render("Created "+task.CreatedAt.Local().Format("Jan 2, 2006 3:04 PM")+
			" • Updated "+task.UpdatedAt.Local().Format("Jan 2, 2006 3:04 PM")),
		"",
		s.Help.Render(fmt.Sprintf("%s toggle • %s edit • %s delete • %s back",
			s.HelpKey.Render("space"),
			s.HelpKey.Render("e"),
			s.HelpKey.Render("d"),
			s.HelpKey.Render("esc"),
		)),
	)

	padded := lipgloss.NewStyle().Padding(1, 2).Render(content)
	return styles.CenterView(padded, v.width, v.height)
}
