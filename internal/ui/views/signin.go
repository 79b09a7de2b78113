package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/taskboard/internal/session"
	"github.com/tgienger/taskboard/internal/ui/keys"
	"github.com/tgienger/taskboard/internal/ui/styles"
)

// SignInView asks for the user name shown in the task list header
type SignInView struct {
	sessions *session.Manager
	name     textinput.Model
	styles   *styles.Styles
	keys     keys.KeyMap
	err      string

	width  int
	height int
}

func NewSignInView(sessions *session.Manager) *SignInView {
	name := textinput.New()
	name.Placeholder = "Your name"
	name.CharLimit = 60
	name.Focus()

	return &SignInView{
		sessions: sessions,
		name:     name,
		styles:   styles.NewStyles(),
		keys:     keys.DefaultKeyMap(),
	}
}

func (v *SignInView) Init() tea.Cmd {
	v.name.Reset()
	v.name.Focus()
	v.err = ""
	return textinput.Blink
}

func (v *SignInView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case tea.KeyMsg:
		switch {
		case msg.String() == "ctrl+c":
			return v, tea.Quit
		case key.Matches(msg, v.keys.Back):
			return v, func() tea.Msg { return ShowTasks{} }
		case key.Matches(msg, v.keys.Enter):
			s, err := v.sessions.SignIn(strings.TrimSpace(v.name.Value()))
			if err != nil {
				v.err = err.Error()
				return v, nil
			}
			return v, func() tea.Msg { return SignedIn{User: s.User} }
		}
	}

	var cmd tea.Cmd
	v.name, cmd = v.name.Update(msg)
	return v, cmd
}

func (v *SignInView) View() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	inputWidth := clamp(contentWidth-6, 20, 40)

	errLine := ""
	if v.err != "" {
		errLine = s.FieldError.Render(v.err)
	}

	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("Sign in"),
		"",
		"Name:",
		s.InputFocused.Width(inputWidth).Render(v.name.View()),
		errLine,
		"",
		s.TitleMuted.Render("↵: sign in • Esc: cancel"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}
