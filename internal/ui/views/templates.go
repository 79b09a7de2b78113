package views

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/taskboard/internal/models"
	"github.com/tgienger/taskboard/internal/store"
	"github.com/tgienger/taskboard/internal/ui/keys"
	"github.com/tgienger/taskboard/internal/ui/styles"
)

type templateItem struct {
	template models.Template
	unit     string
}

func (i templateItem) Title() string { return i.template.Name }
func (i templateItem) Description() string {
	desc := fmt.Sprintf("%d phases · %d tasks", len(i.template.Phases), i.template.TaskCount())
	if i.unit != "" {
		desc = i.unit + " · " + desc
	}
	return desc
}
func (i templateItem) FilterValue() string { return i.template.Name + " " + i.unit }

type templateDelegate struct {
	styles *styles.Styles
	width  int
}

func (d templateDelegate) Height() int                               { return 2 }
func (d templateDelegate) Spacing() int                              { return 1 }
func (d templateDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d templateDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	t, ok := item.(templateItem)
	if !ok {
		return
	}

	selected := index == m.Index()
	width := max(d.width-4, 20)

	var titleStyle, descStyle lipgloss.Style
	if selected {
		titleStyle = d.styles.ListSelected.Width(width)
		descStyle = d.styles.ListSelected.Foreground(styles.Current.ForegroundDim).Width(width)
	} else {
		titleStyle = d.styles.ListItem.Width(width)
		descStyle = d.styles.ListItem.Foreground(styles.Current.ForegroundDim).Width(width)
	}

	fmt.Fprintf(w, "%s\n%s", titleStyle.Render(t.Title()), descStyle.Render(t.Description()))
}

// template form fields
const (
	tplFieldName = iota
	tplFieldUnit
	tplFieldDesc
	tplFieldPhases
	tplFieldSave
	tplFieldCount
)

// TemplateListView lists templates and creates tasks from them
type TemplateListView struct {
	store    *store.Store
	state    store.State
	list     list.Model
	delegate *templateDelegate
	styles   *styles.Styles
	keys     keys.KeyMap
	width    int
	height   int

	confirmingDelete bool
	deleteTargetID   string
	deleteTargetName string

	// Template form; open while state.UI.TemplateFormOpen
	newName   textinput.Model
	newDesc   textinput.Model
	newPhases textarea.Model
	newUnit   string
	focusIdx  int
	formErr   *store.ValidationError

	// Apply dialog; open while state.UI.ApplyTemplateOpen
	applying      models.Template
	applyCategory string

	// Help popup (shown with ? at narrow widths)
	showHelpPopup bool
}

func NewTemplateListView(st *store.Store) *TemplateListView {
	s := styles.NewStyles()

	newName := textinput.New()
	newName.Placeholder = "Template name"
	newName.CharLimit = 100

	newDesc := textinput.New()
	newDesc.Placeholder = "Description (optional)"
	newDesc.CharLimit = 200

	newPhases := textarea.New()
	newPhases.Placeholder = "Phase name\n- task title\n- another task !high"
	newPhases.CharLimit = 5000
	newPhases.SetWidth(50)
	newPhases.SetHeight(8)
	newPhases.ShowLineNumbers = false

	delegate := &templateDelegate{styles: s, width: 80}

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Templates"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = s.Title
	l.SetShowHelp(false)

	v := &TemplateListView{
		store:     st,
		list:      l,
		delegate:  delegate,
		styles:    s,
		keys:      keys.DefaultKeyMap(),
		newName:   newName,
		newDesc:   newDesc,
		newPhases: newPhases,
	}
	v.setState(st.Snapshot())
	return v
}

func (v *TemplateListView) Init() tea.Cmd {
	v.setState(v.store.Snapshot())
	return nil
}

func (v *TemplateListView) setState(s store.State) {
	v.state = s

	units := make(map[string]string, len(s.Units))
	for _, u := range s.Units {
		units[u.ID] = u.Name
	}
	items := make([]list.Item, len(s.Templates))
	for i, t := range s.Templates {
		items[i] = templateItem{template: t, unit: units[models.Deref(t.UnitID)]}
	}
	v.list.SetItems(items)
}

func (v *TemplateListView) dispatch(cmd store.Command) {
	v.setState(v.store.Dispatch(cmd))
}

func (v *TemplateListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		contentWidth := styles.ContentWidth(msg.Width)
		v.delegate.width = contentWidth
		v.list.SetSize(contentWidth-4, msg.Height-6)
		v.newPhases.SetWidth(clamp(contentWidth-10, 20, 50))
		return v, nil

	case StateChanged:
		if newer(v.state, msg.State) {
			v.setState(msg.State)
		}
		return v, nil

	case tea.KeyMsg:
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}

		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}

		if v.state.UI.TemplateFormOpen {
			return v.updateCreating(msg)
		}

		if v.state.UI.ApplyTemplateOpen {
			return v.updateApplying(msg)
		}

		// let the list consume keys while its filter is being typed
		if v.list.FilterState() == list.Filtering {
			break
		}

		switch {
		case key.Matches(msg, v.keys.Quit):
			return v, tea.Quit
		case key.Matches(msg, v.keys.Back):
			if v.list.FilterState() == list.FilterApplied {
				v.list.ResetFilter()
				return v, nil
			}
			return v, func() tea.Msg { return ShowTasks{} }
		case key.Matches(msg, v.keys.New):
			v.startForm(nil)
			return v, textinput.Blink
		case key.Matches(msg, v.keys.Edit):
			if item, ok := v.list.SelectedItem().(templateItem); ok {
				v.startForm(&item.template)
				return v, textinput.Blink
			}
		case msg.String() == "?":
			v.showHelpPopup = true
			return v, nil
		case key.Matches(msg, v.keys.Enter), key.Matches(msg, v.keys.Apply):
			if item, ok := v.list.SelectedItem().(templateItem); ok {
				v.applying = item.template
				v.applyCategory = ""
				v.dispatch(store.OpenModal{Modal: store.ModalApplyTemplate})
				return v, nil
			}
		case key.Matches(msg, v.keys.Delete):
			if item, ok := v.list.SelectedItem().(templateItem); ok {
				v.confirmingDelete = true
				v.deleteTargetID = item.template.ID
				v.deleteTargetName = item.template.Name
				return v, nil
			}
		}
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

func (v *TemplateListView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.dispatch(store.DeleteTemplate{ID: v.deleteTargetID})
		v.confirmingDelete = false
		return v, nil
	case "n", "N", "esc":
		v.confirmingDelete = false
		return v, nil
	}
	return v, nil
}

func (v *TemplateListView) updateApplying(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.dispatch(store.CloseModal{Modal: store.ModalApplyTemplate})
		return v, nil

	case msg.String() == "left" || msg.String() == "right":
		ids := []string{""}
		for _, c := range v.state.Categories {
			ids = append(ids, c.ID)
		}
		v.applyCategory = cycleDir(ids, v.applyCategory, msg.String() == "left")
		return v, nil

	case key.Matches(msg, v.keys.Enter), msg.String() == "ctrl+s":
		v.dispatch(store.ApplyTemplate{TemplateID: v.applying.ID, CategoryID: models.Ref(v.applyCategory)})
		v.dispatch(store.CloseModal{Modal: store.ModalApplyTemplate})
		return v, func() tea.Msg { return ShowTasks{} }
	}
	return v, nil
}

func (v *TemplateListView) startForm(tpl *models.Template) {
	v.focusIdx = tplFieldName
	v.formErr = nil
	v.newName.Reset()
	v.newDesc.Reset()
	v.newPhases.Reset()
	v.newUnit = ""

	editingID := ""
	if tpl != nil {
		editingID = tpl.ID
		v.newName.SetValue(tpl.Name)
		v.newDesc.SetValue(tpl.Description)
		v.newPhases.SetValue(FormatOutline(tpl.Phases))
		v.newUnit = models.Deref(tpl.UnitID)
	}
	v.dispatch(store.OpenModal{Modal: store.ModalTemplateForm, EditingID: editingID})
	v.updateFocus()
}

func (v *TemplateListView) updateCreating(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.dispatch(store.CloseModal{Modal: store.ModalTemplateForm})
		return v, nil

	case msg.String() == "ctrl+s":
		v.saveTemplate()
		return v, nil

	case msg.String() == "shift+tab":
		v.focusIdx = (v.focusIdx + tplFieldCount - 1) % tplFieldCount
		v.updateFocus()
		return v, nil

	case key.Matches(msg, v.keys.Tab):
		v.focusIdx = (v.focusIdx + 1) % tplFieldCount
		v.updateFocus()
		return v, nil

	case (msg.String() == "left" || msg.String() == "right") && v.focusIdx == tplFieldUnit:
		ids := []string{""}
		for _, u := range v.state.Units {
			ids = append(ids, u.ID)
		}
		v.newUnit = cycleDir(ids, v.newUnit, msg.String() == "left")
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		switch v.focusIdx {
		case tplFieldName, tplFieldUnit, tplFieldDesc:
			v.focusIdx++
			v.updateFocus()
			return v, nil
		case tplFieldSave:
			v.saveTemplate()
			return v, nil
		}
	}

	var cmd tea.Cmd
	switch v.focusIdx {
	case tplFieldName:
		v.newName, cmd = v.newName.Update(msg)
	case tplFieldDesc:
		v.newDesc, cmd = v.newDesc.Update(msg)
	case tplFieldPhases:
		v.newPhases, cmd = v.newPhases.Update(msg)
	}
	return v, cmd
}

func (v *TemplateListView) updateFocus() {
	v.newName.Blur()
	v.newDesc.Blur()
	v.newPhases.Blur()
	switch v.focusIdx {
	case tplFieldName:
		v.newName.Focus()
	case tplFieldDesc:
		v.newDesc.Focus()
	case tplFieldPhases:
		v.newPhases.Focus()
	}
}

func (v *TemplateListView) saveTemplate() {
	in := models.TemplateInput{
		Name:        v.newName.Value(),
		UnitID:      models.Ref(v.newUnit),
		Description: v.newDesc.Value(),
		Phases:      ParseOutline(v.newPhases.Value()),
	}
	if err := store.ValidateTemplate(in); err != nil {
		var verr *store.ValidationError
		if errors.As(err, &verr) {
			v.formErr = verr
		}
		return
	}

	if id := v.state.UI.EditingTemplateID; id != "" {
		v.dispatch(store.UpdateTemplate{ID: id, Input: in})
	} else {
		v.dispatch(store.AddTemplate{Input: in})
	}
	v.formErr = nil
	v.dispatch(store.CloseModal{Modal: store.ModalTemplateForm})
}

// View renders the view
func (v *TemplateListView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}

	if v.confirmingDelete {
		return v.renderDeleteConfirm()
	}

	if v.state.UI.TemplateFormOpen {
		return v.renderCreateForm()
	}

	if v.state.UI.ApplyTemplateOpen {
		return v.renderApply()
	}

	if len(v.list.Items()) == 0 {
		return v.renderEmpty()
	}

	content := v.list.View() + "\n" + v.renderHelp()
	return styles.CenterView(content, v.width, v.height)
}

func (v *TemplateListView) renderEmpty() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Render("No Templates"),
		"",
		s.TitleMuted.Render("Press 'n' to create your first template, esc to go back"),
		"",
		s.ButtonPrimary.Render(" New Template "),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *TemplateListView) unitName(id string) string {
	for _, u := range v.state.Units {
		if u.ID == id {
			return u.Name
		}
	}
	return "None"
}

// phaseErrors lists the validation messages that are not about the name
func (v *TemplateListView) phaseErrors() []string {
	if v.formErr == nil {
		return nil
	}
	var fields []string
	for f := range v.formErr.Fields {
		if f != "name" {
			fields = append(fields, f)
		}
	}
	sort.Strings(fields)

	lines := make([]string, 0, len(fields))
	for _, f := range fields {
		lines = append(lines, v.styles.FieldError.Render(f+": "+v.formErr.Fields[f]))
	}
	return lines
}

func (v *TemplateListView) renderCreateForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	fieldStyles := []lipgloss.Style{s.Input, s.Input, s.Input, s.Input}
	btnStyle := s.Button
	if v.focusIdx == tplFieldSave {
		btnStyle = s.ButtonFocused
	} else {
		fieldStyles[v.focusIdx] = s.InputFocused
	}

	formTitle := "New Template"
	if v.state.UI.EditingTemplateID != "" {
		formTitle = "Edit Template"
	}

	inputWidth := clamp(contentWidth-6, 20, 50)
	nameErr := ""
	if v.formErr != nil && v.formErr.Field("name") != "" {
		nameErr = s.FieldError.Render(v.formErr.Field("name"))
	}

	rows := []string{
		s.Title.Render(formTitle),
		"",
		"Name:",
		fieldStyles[tplFieldName].Width(inputWidth).Render(v.newName.View()),
		nameErr,
		"Unit:",
		fieldStyles[tplFieldUnit].Width(inputWidth).Render("◀ " + v.unitName(v.newUnit) + " ▶"),
		"Description:",
		fieldStyles[tplFieldDesc].Width(inputWidth).Render(v.newDesc.View()),
		"Phases:",
		fieldStyles[tplFieldPhases].Render(v.newPhases.View()),
	}
	rows = append(rows, v.phaseErrors()...)
	rows = append(rows,
		"",
		btnStyle.Render(" Save "),
		"",
		s.TitleMuted.Render("Tab: next • ←→: unit • Ctrl+S: save • Esc: cancel"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *TemplateListView) renderApply() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	category := "None"
	if i := slices.IndexFunc(v.state.Categories, func(c models.Category) bool { return c.ID == v.applyCategory }); i >= 0 {
		c := v.state.Categories[i]
		category = styles.Dot(c.Color) + " " + c.Name
	}

	preview := store.PreviewTemplate(v.applying)
	limit := max(v.height-14, 3)
	var lines []string
	for i, title := range preview {
		if i == limit {
			lines = append(lines, s.TitleMuted.Render(fmt.Sprintf("… and %d more", len(preview)-limit)))
			break
		}
		lines = append(lines, s.ListItem.Render(title))
	}
	if len(lines) == 0 {
		lines = append(lines, s.TitleMuted.Render("This template has no tasks."))
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("Apply: "+v.applying.Name),
		s.TitleMuted.Render(fmt.Sprintf("Creates %d tasks", len(preview))),
		"",
		strings.Join(lines, "\n"),
		"",
		"Category:",
		s.InputFocused.Width(clamp(contentWidth-6, 20, 40)).Render("◀ "+category+" ▶"),
		"",
		s.TitleMuted.Render("←→: category • ↵: create tasks • Esc: cancel"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		s.FilterBar.Render(content),
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *TemplateListView) renderHelp() string {
	contentWidth := styles.ContentWidth(v.width)
	if contentWidth > 0 && contentWidth < 50 {
		return v.styles.Help.Render(v.styles.HelpKey.Render("?") + " help")
	}
	return v.styles.Help.Render(
		fmt.Sprintf("%s apply • %s new • %s edit • %s del • %s filter • %s tasks • %s quit",
			v.styles.HelpKey.Render("↵"),
			v.styles.HelpKey.Render("n"),
			v.styles.HelpKey.Render("e"),
			v.styles.HelpKey.Render("d"),
			v.styles.HelpKey.Render("/"),
			v.styles.HelpKey.Render("esc"),
			v.styles.HelpKey.Render("q"),
		),
	)
}

func (v *TemplateListView) renderHelpPopup() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	helpItems := []string{
		s.HelpKey.Render("↵") + "      preview and apply",
		s.HelpKey.Render("n") + "      new template",
		s.HelpKey.Render("e") + "      edit template",
		s.HelpKey.Render("d") + "      delete template",
		s.HelpKey.Render("/") + "      filter templates",
		s.HelpKey.Render("esc") + "    back to tasks",
		s.HelpKey.Render("q") + "      quit",
		"",
		s.TitleMuted.Render("Press any key to close"),
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		append([]string{s.Title.Render("Keyboard Shortcuts"), ""}, helpItems...)...,
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		s.FilterBar.Render(content),
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *TemplateListView) renderDeleteConfirm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render("Delete Template?"),
		"",
		s.TitleMuted.Render(fmt.Sprintf("%q will be removed. Tasks created from it are kept.", v.deleteTargetName)),
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
