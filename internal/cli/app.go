package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/tgienger/taskboard/internal/config"
	"github.com/tgienger/taskboard/internal/db"
	"github.com/tgienger/taskboard/internal/logging"
	"github.com/tgienger/taskboard/internal/persist"
	"github.com/tgienger/taskboard/internal/session"
	"github.com/tgienger/taskboard/internal/store"
)

// App bundles the wired components a command works with
type App struct {
	Config   *config.Config
	Log      *slog.Logger
	Medium   db.Medium
	Watcher  db.Watcher
	Adapter  *persist.Adapter
	Store    *store.Store
	Sessions *session.Manager
	Now      func() time.Time

	closers []func() error
}

// NewApp loads the persisted collections from medium and attaches the
// persistence adapter to a fresh store.
func NewApp(cfg *config.Config, medium db.Medium, log *slog.Logger, env store.Env) *App {
	adapter := persist.New(medium, cfg.StoragePrefix, log)
	st := store.NewStore(env, store.New(adapter.Load()))

	a := &App{
		Config:   cfg,
		Log:      log,
		Medium:   medium,
		Adapter:  adapter,
		Store:    st,
		Sessions: session.NewManager(medium, cfg.StoragePrefix, env.Now),
		Now:      env.Now,
	}
	if w, ok := medium.(db.Watcher); ok {
		a.Watcher = w
	}
	detach := adapter.Attach(st)
	a.closers = append(a.closers, func() error { detach(); return nil })
	return a
}

// Close releases everything the app opened, last opened first
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// openApp builds the App for a command run. Tests replace it.
var openApp = func(cmd *cobra.Command) (*App, error) {
	cfg, err := config.Load(configDir)
	if err != nil {
		return nil, err
	}
	if err := cfg.EnsureDataDir(); err != nil {
		return nil, err
	}

	log, closeLog, err := logging.OpenFile(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	database, err := db.New(cfg.DBPath, log)
	if err != nil {
		closeLog()
		return nil, err
	}

	a := NewApp(cfg, database, log, store.DefaultEnv())
	a.closers = append([]func() error{closeLog, database.Close}, a.closers...)
	log.Debug("app opened", "command", cmd.CommandPath(), "db", cfg.DBPath)
	return a, nil
}

var current *App

func openCurrent(cmd *cobra.Command) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	current = a
	return nil
}

func closeCurrent() error {
	if current == nil {
		return nil
	}
	err := current.Close()
	current = nil
	return err
}

// resolveID finds the single id starting with prefix
func resolveID[T any](items []T, prefix string, key func(T) string, kind string) (T, error) {
	var (
		match T
		found int
	)
	for _, item := range items {
		id := key(item)
		if id == prefix {
			return item, nil
		}
		if prefix != "" && strings.HasPrefix(id, prefix) {
			match = item
			found++
		}
	}
	switch found {
	case 0:
		return match, fmt.Errorf("%s %s: %w", kind, prefix, store.ErrNotFound)
	case 1:
		return match, nil
	}
	return match, fmt.Errorf("%s id %q is ambiguous (%d matches)", kind, prefix, found)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
