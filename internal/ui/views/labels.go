package views

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/taskboard/internal/models"
	"github.com/tgienger/taskboard/internal/store"
	"github.com/tgienger/taskboard/internal/ui/keys"
	"github.com/tgienger/taskboard/internal/ui/styles"
)

// LabelSection is one of the lists on the labels screen
type LabelSection int

const (
	SectionCategories LabelSection = iota
	SectionTags
	SectionUnits
)

func (s LabelSection) String() string {
	switch s {
	case SectionTags:
		return "Tags"
	case SectionUnits:
		return "Units"
	}
	return "Categories"
}

func (s LabelSection) modal() store.Modal {
	switch s {
	case SectionTags:
		return store.ModalTagForm
	case SectionUnits:
		return store.ModalUnitForm
	}
	return store.ModalCategoryForm
}

type labelRow struct {
	id    string
	name  string
	color string
}

// LabelsView manages categories, tags and units
type LabelsView struct {
	store  *store.Store
	state  store.State
	styles *styles.Styles
	keys   keys.KeyMap
	width  int
	height int

	section LabelSection
	cursor  int

	// form state; the open flag lives in state.UI
	formName  textinput.Model
	formColor string
	editingID string
	formErr   *store.ValidationError

	confirmingDelete bool
	deleteTarget     labelRow
}

func NewLabelsView(st *store.Store) *LabelsView {
	name := textinput.New()
	name.Placeholder = "Name"
	name.CharLimit = 60

	return &LabelsView{
		store:    st,
		state:    st.Snapshot(),
		styles:   styles.NewStyles(),
		keys:     keys.DefaultKeyMap(),
		formName: name,
	}
}

func (v *LabelsView) Init() tea.Cmd {
	v.setState(v.store.Snapshot())
	return nil
}

func (v *LabelsView) setState(s store.State) {
	v.state = s
	if n := len(v.rows()); v.cursor >= n {
		v.cursor = max(0, n-1)
	}
}

func (v *LabelsView) dispatch(cmd store.Command) {
	v.setState(v.store.Dispatch(cmd))
}

func (v *LabelsView) formOpen() bool {
	ui := v.state.UI
	switch v.section {
	case SectionTags:
		return ui.TagFormOpen
	case SectionUnits:
		return ui.UnitFormOpen
	}
	return ui.CategoryFormOpen
}

func (v *LabelsView) rows() []labelRow {
	var rows []labelRow
	switch v.section {
	case SectionCategories:
		for _, c := range v.state.Categories {
			rows = append(rows, labelRow{id: c.ID, name: c.Name, color: c.Color})
		}
	case SectionTags:
		for _, t := range v.state.Tags {
			rows = append(rows, labelRow{id: t.ID, name: t.Name, color: t.Color})
		}
	case SectionUnits:
		for _, u := range v.state.Units {
			rows = append(rows, labelRow{id: u.ID, name: u.Name})
		}
	}
	return rows
}

func (v *LabelsView) palette() []string {
	if v.section == SectionTags {
		return models.TagColors
	}
	return models.CategoryColors
}

func (v *LabelsView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case StateChanged:
		if newer(v.state, msg.State) {
			v.setState(msg.State)
		}
		return v, nil

	case tea.KeyMsg:
		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}
		if v.formOpen() {
			return v.updateForm(msg)
		}
		return v.updateNormal(msg)
	}
	return v, nil
}

func (v *LabelsView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := v.rows()
	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit
	case key.Matches(msg, v.keys.Back):
		return v, func() tea.Msg { return ShowTasks{} }
	case key.Matches(msg, v.keys.Tab):
		v.section = (v.section + 1) % 3
		v.cursor = 0
	case msg.String() == "shift+tab":
		v.section = (v.section + 2) % 3
		v.cursor = 0
	case key.Matches(msg, v.keys.Up):
		if v.cursor > 0 {
			v.cursor--
		}
	case key.Matches(msg, v.keys.Down):
		if v.cursor < len(rows)-1 {
			v.cursor++
		}
	case key.Matches(msg, v.keys.New):
		v.startForm(labelRow{})
		return v, textinput.Blink
	case key.Matches(msg, v.keys.Edit), key.Matches(msg, v.keys.Enter):
		if len(rows) > 0 {
			v.startForm(rows[v.cursor])
			return v, textinput.Blink
		}
	case key.Matches(msg, v.keys.Delete):
		if len(rows) > 0 {
			v.confirmingDelete = true
			v.deleteTarget = rows[v.cursor]
		}
	}
	return v, nil
}

func (v *LabelsView) startForm(row labelRow) {
	v.editingID = row.id
	v.formErr = nil
	v.formName.Reset()
	v.formName.SetValue(row.name)
	v.formColor = row.color
	if v.formColor == "" && v.section != SectionUnits {
		v.formColor = v.palette()[0]
	}
	v.formName.Focus()
	v.dispatch(store.OpenModal{Modal: v.section.modal(), EditingID: row.id})
}

func (v *LabelsView) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.dispatch(store.CloseModal{Modal: v.section.modal()})
		return v, nil
	case key.Matches(msg, v.keys.Enter), msg.String() == "ctrl+s":
		v.save()
		return v, nil
	case (msg.String() == "left" || msg.String() == "right") && v.section != SectionUnits:
		v.formColor = cycleDir(v.palette(), v.formColor, msg.String() == "left")
		return v, nil
	}

	var cmd tea.Cmd
	v.formName, cmd = v.formName.Update(msg)
	return v, cmd
}

func (v *LabelsView) save() {
	name := v.formName.Value()
	var (
		err error
		cmd store.Command
	)
	switch v.section {
	case SectionCategories:
		in := models.CategoryInput{Name: name, Color: v.formColor}
		if err = store.ValidateCategory(in); err == nil {
			cmd = store.AddCategory{Input: in}
			if v.editingID != "" {
				cmd = store.UpdateCategory{ID: v.editingID, Input: in}
			}
		}
	case SectionTags:
		in := models.TagInput{Name: name, Color: v.formColor}
		if err = store.ValidateTag(in); err == nil {
			cmd = store.AddTag{Input: in}
			if v.editingID != "" {
				cmd = store.UpdateTag{ID: v.editingID, Input: in}
			}
		}
	case SectionUnits:
		in := models.UnitInput{Name: name}
		if v.editingID == "" {
			// duplicate names are checked against the store under its lock
			err = v.store.AddUnit(in)
			if err == nil {
				v.setState(v.store.Snapshot())
			}
		} else {
			var others []models.Unit
			for _, u := range v.state.Units {
				if u.ID != v.editingID {
					others = append(others, u)
				}
			}
			if err = store.ValidateUnit(in, others); err == nil {
				cmd = store.UpdateUnit{ID: v.editingID, Input: in}
			}
		}
	}

	if err != nil {
		var verr *store.ValidationError
		if errors.As(err, &verr) {
			v.formErr = verr
		}
		return
	}
	if cmd != nil {
		v.dispatch(cmd)
	}
	v.formErr = nil
	v.dispatch(store.CloseModal{Modal: v.section.modal()})
}

func (v *LabelsView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		switch v.section {
		case SectionCategories:
			v.dispatch(store.DeleteCategory{ID: v.deleteTarget.id})
		case SectionTags:
			v.dispatch(store.DeleteTag{ID: v.deleteTarget.id})
		case SectionUnits:
			v.dispatch(store.DeleteUnit{ID: v.deleteTarget.id})
		}
		v.confirmingDelete = false
	case "n", "N", "esc":
		v.confirmingDelete = false
	}
	return v, nil
}

func (v *LabelsView) View() string {
	if v.confirmingDelete {
		return v.renderDeleteConfirm()
	}
	if v.formOpen() {
		return v.renderForm()
	}

	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	width := max(contentWidth-4, 20)

	var tabs []string
	for _, sec := range []LabelSection{SectionCategories, SectionTags, SectionUnits} {
		if sec == v.section {
			tabs = append(tabs, s.ButtonFocused.Render(sec.String()))
		} else {
			tabs = append(tabs, s.Button.Render(sec.String()))
		}
	}

	rows := v.rows()
	var items []string
	for i, r := range rows {
		text := r.name
		if r.color != "" {
			text = styles.Dot(r.color) + " " + r.name
		}
		text += s.TitleMuted.Render("  " + v.usage(r.id))
		if i == v.cursor {
			items = append(items, s.ListSelected.Width(width).Render(text))
		} else {
			items = append(items, s.ListItem.Width(width).Render(text))
		}
	}
	list := s.TitleMuted.Render(fmt.Sprintf("No %s yet. Press 'n' to add one.", strings.ToLower(v.section.String())))
	if len(items) > 0 {
		list = lipgloss.JoinVertical(lipgloss.Left, items...)
	}

	help := s.Help.Render(fmt.Sprintf("%s section • %s new • %s edit • %s del • %s back",
		s.HelpKey.Render("tab"),
		s.HelpKey.Render("n"),
		s.HelpKey.Render("e"),
		s.HelpKey.Render("d"),
		s.HelpKey.Render("esc"),
	))

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Center, tabs...),
		"",
		list,
		"",
		help,
	)
	return styles.CenterView(content, v.width, v.height)
}

// usage describes how many tasks or templates reference a label
func (v *LabelsView) usage(id string) string {
	n := 0
	switch v.section {
	case SectionCategories:
		for _, t := range v.state.Tasks {
			if models.Deref(t.CategoryID) == id {
				n++
			}
		}
		return fmt.Sprintf("%d tasks", n)
	case SectionTags:
		for _, t := range v.state.Tasks {
			if t.HasTag(id) {
				n++
			}
		}
		return fmt.Sprintf("%d tasks", n)
	}
	for _, t := range v.state.Templates {
		if models.Deref(t.UnitID) == id {
			n++
		}
	}
	return fmt.Sprintf("%d templates", n)
}

func (v *LabelsView) renderForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	inputWidth := clamp(contentWidth-6, 20, 40)

	verb := "New"
	if v.editingID != "" {
		verb = "Edit"
	}
	title := verb + " " + strings.TrimSuffix(v.section.String(), "s")
	if v.section == SectionCategories {
		title = verb + " Category"
	}

	rows := []string{
		s.Title.Render(title),
		"",
		"Name:",
		s.InputFocused.Width(inputWidth).Render(v.formName.View()),
	}
	if v.formErr != nil {
		for _, f := range []string{"name", "color"} {
			if msg := v.formErr.Field(f); msg != "" {
				rows = append(rows, s.FieldError.Render(msg))
			}
		}
	}
	hint := "↵: save • Esc: cancel"
	if v.section != SectionUnits {
		var swatches []string
		for _, c := range v.palette() {
			dot := styles.Dot(c)
			if c == v.formColor {
				dot = "[" + dot + "]"
			} else {
				dot = " " + dot + " "
			}
			swatches = append(swatches, dot)
		}
		rows = append(rows, "", "Color:", strings.Join(swatches, ""))
		hint = "←→: color • " + hint
	}
	rows = append(rows, "", s.TitleMuted.Render(hint))

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *LabelsView) renderDeleteConfirm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	detail := "Tasks using it will lose it."
	if v.section == SectionUnits {
		detail = "Templates in it will be ungrouped."
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render(fmt.Sprintf("Delete %q?", v.deleteTarget.name)),
		"",
		s.TitleMuted.Render(detail),
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
