package db

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Watch calls fn for every value another handle writes, until ctx is done.
// It watches the database directory and rescans the table whenever the
// database file or its WAL changes.
func (db *DB) Watch(ctx context.Context, fn func(Change)) error {
	rev, err := db.LatestRev()
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	dir := filepath.Dir(db.path)
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	base := filepath.Base(db.path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !strings.HasPrefix(filepath.Base(ev.Name), base) || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			changes, latest, err := db.ForeignChanges(rev)
			if err != nil {
				db.log.Warn("polling changes failed", "error", err)
				continue
			}
			rev = latest
			for _, c := range changes {
				fn(c)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			db.log.Warn("watcher error", "error", err)
		}
	}
}
