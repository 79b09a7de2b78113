package ui

import (
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tgienger/taskboard/internal/session"
	"github.com/tgienger/taskboard/internal/store"
	"github.com/tgienger/taskboard/internal/ui/views"
)

// Currently active view
type View int

const (
	ViewTasks View = iota
	ViewTemplates
	ViewLabels
	ViewSignIn
)

type App struct {
	store        *store.Store
	sessions     *session.Manager
	log          *slog.Logger
	currentView  View
	taskList     *views.TaskListView
	templateList *views.TemplateListView
	labels       *views.LabelsView
	signIn       *views.SignInView
	width        int
	height       int
}

// Creates a new application over the given store. debounce is the idle time
// before typed search text is applied.
func NewApp(st *store.Store, sessions *session.Manager, debounce time.Duration, log *slog.Logger) *App {
	a := &App{
		store:        st,
		sessions:     sessions,
		log:          log,
		currentView:  ViewTasks,
		taskList:     views.NewTaskListView(st, debounce),
		templateList: views.NewTemplateListView(st),
		labels:       views.NewLabelsView(st),
		signIn:       views.NewSignInView(sessions),
	}
	if s, ok, err := sessions.Current(); err != nil {
		log.Warn("reading session", "err", err)
	} else if ok {
		a.taskList.SetUser(s.User)
	}
	return a
}

// CurrentView reports which view is showing
func (a *App) CurrentView() View {
	return a.currentView
}

func (a *App) Init() tea.Cmd {
	return a.taskList.Init()
}

func (a *App) show(v View, init tea.Cmd) tea.Cmd {
	a.currentView = v
	// views only learn their size from WindowSizeMsg
	return tea.Batch(
		init,
		func() tea.Msg {
			return tea.WindowSizeMsg{Width: a.width, Height: a.height}
		},
	)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Task list keeps its size since it is the home view
		a.taskList.Update(msg)

	case views.StateChanged:
		// every view mirrors the store, not just the visible one
		a.taskList.Update(msg)
		a.templateList.Update(msg)
		a.labels.Update(msg)
		return a, nil

	case views.ShowTasks:
		return a, a.show(ViewTasks, a.taskList.Init())

	case views.ShowTemplates:
		return a, a.show(ViewTemplates, a.templateList.Init())

	case views.ShowLabels:
		return a, a.show(ViewLabels, a.labels.Init())

	case views.ShowSignIn:
		return a, a.show(ViewSignIn, a.signIn.Init())

	case views.SignedIn:
		a.taskList.SetUser(msg.User)
		a.log.Info("signed in", "user", msg.User)
		return a, a.show(ViewTasks, a.taskList.Init())

	case views.SignedOut:
		if err := a.sessions.SignOut(); err != nil {
			a.log.Error("signing out", "err", err)
			return a, nil
		}
		a.taskList.SetUser("")
		a.log.Info("signed out")
		return a, nil
	}

	var cmd tea.Cmd
	switch a.currentView {
	case ViewTasks:
		_, cmd = a.taskList.Update(msg)
	case ViewTemplates:
		_, cmd = a.templateList.Update(msg)
	case ViewLabels:
		_, cmd = a.labels.Update(msg)
	case ViewSignIn:
		_, cmd = a.signIn.Update(msg)
	}

	return a, cmd
}

func (a *App) View() string {
	switch a.currentView {
	case ViewTemplates:
		return a.templateList.View()
	case ViewLabels:
		return a.labels.View()
	case ViewSignIn:
		return a.signIn.View()
	}
	return a.taskList.View()
}
