package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings shared by every view
type KeyMap struct {
	Quit          key.Binding
	Back          key.Binding
	New           key.Binding
	Enter         key.Binding
	Delete        key.Binding
	Edit          key.Binding
	Tab           key.Binding
	Up            key.Binding
	Down          key.Binding
	Search        key.Binding
	Filter        key.Binding
	ShowCompleted key.Binding

	Toggle    key.Binding
	Status    key.Binding
	Priority  key.Binding
	Category  key.Binding
	Sort      key.Binding
	Order     key.Binding
	Reset     key.Binding
	Templates key.Binding
	Labels    key.Binding
	Sidebar   key.Binding
	SignOut   key.Binding
	Apply     key.Binding
}

// DefaultKeyMap returns the default bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("↵", "select"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Filter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "tags"),
		),
		ShowCompleted: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "done"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "x"),
			key.WithHelp("space", "toggle"),
		),
		Status: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "status"),
		),
		Priority: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "priority"),
		),
		Category: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "category"),
		),
		Sort: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "sort"),
		),
		Order: key.NewBinding(
			key.WithKeys("O"),
			key.WithHelp("O", "order"),
		),
		Reset: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reset"),
		),
		Templates: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "templates"),
		),
		Labels: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "labels"),
		),
		Sidebar: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "sidebar"),
		),
		SignOut: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("ctrl+o", "sign in/out"),
		),
		Apply: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "apply"),
		),
	}
}
