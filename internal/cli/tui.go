package cli

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/tgienger/taskboard/internal/store"
	"github.com/tgienger/taskboard/internal/ui"
	"github.com/tgienger/taskboard/internal/ui/views"
)

// runTUI opens the terminal UI on the current app
func runTUI(cmd *cobra.Command, args []string) error {
	app := ui.NewApp(current.Store, current.Sessions, current.Config.SearchDebounce, current.Log)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))

	// Listeners must not block or dispatch, so hand snapshots to the program
	// from a goroutine.
	unsubscribe := current.Store.Subscribe(func(prev, next store.State) {
		go p.Send(views.StateChanged{State: next})
	})
	defer unsubscribe()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if current.Watcher != nil {
		go func() {
			if err := current.Adapter.Follow(ctx, current.Watcher, current.Store); err != nil && !errors.Is(err, context.Canceled) {
				current.Log.Error("following other sessions", "err", err)
			}
		}()
	}

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}
