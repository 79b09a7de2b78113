package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/taskboard/internal/models"
)

// Theme is the color scheme. Label colors (categories, tags) come from the
// entity palettes, not from the theme.
type Theme struct {
	Name string

	Background    lipgloss.Color
	Foreground    lipgloss.Color
	ForegroundDim lipgloss.Color

	Primary lipgloss.Color

	// status colors
	Done    lipgloss.Color
	Started lipgloss.Color
	Error   lipgloss.Color

	Border      lipgloss.Color
	BorderFocus lipgloss.Color
	Selection   lipgloss.Color
}

// Slate is the default theme
var Slate = Theme{
	Name: "Slate",

	Background:    lipgloss.Color("#0f172a"),
	Foreground:    lipgloss.Color("#e2e8f0"),
	ForegroundDim: lipgloss.Color("#64748b"),

	Primary: lipgloss.Color("#3B82F6"),

	Done:    lipgloss.Color("#22C55E"),
	Started: lipgloss.Color("#EAB308"),
	Error:   lipgloss.Color("#EF4444"),

	Border:      lipgloss.Color("#334155"),
	BorderFocus: lipgloss.Color("#3B82F6"),
	Selection:   lipgloss.Color("#1e3a8a"),
}

// Current holds the active theme
var Current = Slate

// MaxWidth caps the content width on wide terminals
const MaxWidth = 100

// SidebarWidth is the width of the category sidebar
const SidebarWidth = 18

// ContentWidth returns min(terminalWidth, MaxWidth)
func ContentWidth(terminalWidth int) int {
	return min(terminalWidth, MaxWidth)
}

// CenterView centers content horizontally once the terminal is wider than
// MaxWidth
func CenterView(content string, terminalWidth, terminalHeight int) string {
	if terminalWidth <= MaxWidth {
		return content
	}
	return lipgloss.Place(terminalWidth, terminalHeight, lipgloss.Center, lipgloss.Top, content)
}

// Styles holds the pre-computed styles shared by the views
type Styles struct {
	Title      lipgloss.Style
	TitleMuted lipgloss.Style

	ListItem     lipgloss.Style
	ListSelected lipgloss.Style

	FilterBar lipgloss.Style
	Sidebar   lipgloss.Style
	TaskTitle lipgloss.Style

	Button        lipgloss.Style
	ButtonFocused lipgloss.Style
	ButtonPrimary lipgloss.Style

	Input        lipgloss.Style
	InputFocused lipgloss.Style
	FieldError   lipgloss.Style

	Help      lipgloss.Style
	HelpKey   lipgloss.Style
	StatusBar lipgloss.Style
}

// NewStyles builds the styles from the current theme
func NewStyles() *Styles {
	t := Current
	button := lipgloss.NewStyle().
		Foreground(t.Foreground).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(0, 2)

	return &Styles{
		Title:      lipgloss.NewStyle().Foreground(t.Primary).Bold(true),
		TitleMuted: lipgloss.NewStyle().Foreground(t.ForegroundDim),

		ListItem: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Padding(0, 2),
		ListSelected: lipgloss.NewStyle().
			Foreground(t.Primary).
			Background(t.Selection).
			Padding(0, 2).
			Bold(true),

		FilterBar: lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border),
		Sidebar: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, true, false, false).
			BorderForeground(t.Border).
			Padding(0, 1).
			Width(SidebarWidth),
		TaskTitle: lipgloss.NewStyle().Foreground(t.Foreground),

		Button:        button,
		ButtonFocused: button.Foreground(t.Primary).BorderForeground(t.BorderFocus).Bold(true),
		ButtonPrimary: lipgloss.NewStyle().
			Foreground(t.Background).
			Background(t.Primary).
			Padding(0, 2).
			Bold(true),

		Input: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 1),
		InputFocused: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.BorderFocus).
			Padding(0, 1),
		FieldError: lipgloss.NewStyle().Foreground(t.Error),

		Help:      lipgloss.NewStyle().Foreground(t.ForegroundDim).Padding(1, 2),
		HelpKey:   lipgloss.NewStyle().Foreground(t.Primary).Bold(true),
		StatusBar: lipgloss.NewStyle().Foreground(t.ForegroundDim).Padding(0, 1),
	}
}

// Label renders text in a palette color such as a tag's or category's
func Label(color, text string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(text)
}

// Dot renders a colored bullet for a label
func Dot(color string) string {
	return Label(color, "●")
}

// PriorityColor returns the display color for a task priority
func PriorityColor(p models.Priority) lipgloss.Color {
	if c, ok := models.PriorityColors[p]; ok {
		return lipgloss.Color(c)
	}
	return Current.ForegroundDim
}

// StatusIcon returns the checkbox glyph and color for a task status
func StatusIcon(s models.TaskStatus) (string, lipgloss.Color) {
	switch s {
	case models.StatusCompleted:
		return "[x]", Current.Done
	case models.StatusInProgress:
		return "[~]", Current.Started
	default:
		return "[ ]", Current.ForegroundDim
	}
}
