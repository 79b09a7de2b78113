// Package persist mirrors the store's collections to a key/value medium and
// applies changes other processes make to the same medium.
package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tgienger/taskboard/internal/db"
	"github.com/tgienger/taskboard/internal/models"
	"github.com/tgienger/taskboard/internal/store"
)

// DefaultPrefix namespaces every key the adapter writes
const DefaultPrefix = "taskapp_"

// Collection key names, before prefixing
const (
	KeyTasks      = "tasks"
	KeyCategories = "categories"
	KeyTags       = "tags"
	KeyTemplates  = "templates"
	KeyUnits      = "units"
)

// Adapter keeps each collection under its own prefixed key as a JSON array
type Adapter struct {
	medium db.Medium
	prefix string
	log    *slog.Logger

	mu       sync.Mutex
	suppress map[string]bool
}

// New creates an adapter over medium
func New(medium db.Medium, prefix string, log *slog.Logger) *Adapter {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		medium:   medium,
		prefix:   prefix,
		log:      log.With("component", "persist"),
		suppress: make(map[string]bool),
	}
}

// Key returns the medium key for a collection name
func (a *Adapter) Key(name string) string {
	return a.prefix + name
}

// Load reads every collection. A missing key, a read error or a corrupt
// value all yield an empty collection; the latter two are logged.
func (a *Adapter) Load() store.Collections {
	return store.Collections{
		Tasks:      readCollection[models.Task](a, KeyTasks),
		Categories: readCollection[models.Category](a, KeyCategories),
		Tags:       readCollection[models.Tag](a, KeyTags),
		Templates:  readCollection[models.Template](a, KeyTemplates),
		Units:      readCollection[models.Unit](a, KeyUnits),
	}
}

func readCollection[T any](a *Adapter, name string) []T {
	key := a.Key(name)
	raw, ok, err := a.medium.Get(key)
	if err != nil {
		a.log.Error("reading collection failed", "key", key, "error", err)
		return []T{}
	}
	if !ok {
		return []T{}
	}

	items, err := decodeCollection[T](raw)
	if err != nil {
		a.log.Error("decoding collection failed", "key", key, "error", err)
		return []T{}
	}
	return items
}

func decodeCollection[T any](raw string) ([]T, error) {
	var items []T
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Attach mirrors every store transition until the returned func is called
func (a *Adapter) Attach(s *store.Store) (detach func()) {
	return s.Subscribe(a.Mirror)
}

// Mirror writes each collection that differs between prev and next. Write
// failures are logged and leave the medium behind the in-memory state.
func (a *Adapter) Mirror(prev, next store.State) {
	if !store.SameCollection(prev.Tasks, next.Tasks) {
		a.write(KeyTasks, next.Tasks)
	}
	if !store.SameCollection(prev.Categories, next.Categories) {
		a.write(KeyCategories, next.Categories)
	}
	if !store.SameCollection(prev.Tags, next.Tags) {
		a.write(KeyTags, next.Tags)
	}
	if !store.SameCollection(prev.Templates, next.Templates) {
		a.write(KeyTemplates, next.Templates)
	}
	if !store.SameCollection(prev.Units, next.Units) {
		a.write(KeyUnits, next.Units)
	}
}

func (a *Adapter) write(name string, v any) {
	a.mu.Lock()
	skip := a.suppress[name]
	a.mu.Unlock()
	if skip {
		return
	}

	key := a.Key(name)
	data, err := json.Marshal(v)
	if err != nil {
		a.log.Error("encoding collection failed", "key", key, "error", err)
		return
	}
	if err := a.medium.Set(key, string(data)); err != nil {
		a.log.Error("writing collection failed", "key", key, "error", err)
		return
	}
	a.log.Debug("collection written", "key", key, "bytes", len(data))
}

// Apply replaces the matching collection in s with a value another process
// wrote. Unknown keys and undecodable values are ignored. The replaced
// collection is not written back.
func (a *Adapter) Apply(s *store.Store, c db.Change) {
	name, cmd, err := a.decodeChange(c)
	if err != nil {
		a.log.Warn("ignoring foreign change", "key", c.Key, "error", err)
		return
	}
	if cmd == nil {
		return
	}

	a.mu.Lock()
	a.suppress[name] = true
	a.mu.Unlock()
	defer func() {
		a.mu.Lock()
		delete(a.suppress, name)
		a.mu.Unlock()
	}()

	s.Dispatch(cmd)
	a.log.Info("applied foreign change", "key", c.Key)
}

func (a *Adapter) decodeChange(c db.Change) (string, store.Command, error) {
	if c.Value == "" {
		return "", nil, nil
	}
	switch c.Key {
	case a.Key(KeyTasks):
		items, err := decodeCollection[models.Task](c.Value)
		return KeyTasks, store.ReplaceTasks{Tasks: items}, err
	case a.Key(KeyCategories):
		items, err := decodeCollection[models.Category](c.Value)
		return KeyCategories, store.ReplaceCategories{Categories: items}, err
	case a.Key(KeyTags):
		items, err := decodeCollection[models.Tag](c.Value)
		return KeyTags, store.ReplaceTags{Tags: items}, err
	case a.Key(KeyTemplates):
		items, err := decodeCollection[models.Template](c.Value)
		return KeyTemplates, store.ReplaceTemplates{Templates: items}, err
	case a.Key(KeyUnits):
		items, err := decodeCollection[models.Unit](c.Value)
		return KeyUnits, store.ReplaceUnits{Units: items}, err
	}
	return "", nil, nil
}

// Follow applies foreign changes from w to s until ctx is done
func (a *Adapter) Follow(ctx context.Context, w db.Watcher, s *store.Store) error {
	if err := w.Watch(ctx, func(c db.Change) { a.Apply(s, c) }); err != nil {
		return fmt.Errorf("following changes: %w", err)
	}
	return nil
}

// Reload re-reads every collection into s without writing anything back
func (a *Adapter) Reload(s *store.Store) {
	c := a.Load()
	cmds := map[string]store.Command{
		KeyTasks:      store.ReplaceTasks{Tasks: c.Tasks},
		KeyCategories: store.ReplaceCategories{Categories: c.Categories},
		KeyTags:       store.ReplaceTags{Tags: c.Tags},
		KeyTemplates:  store.ReplaceTemplates{Templates: c.Templates},
		KeyUnits:      store.ReplaceUnits{Units: c.Units},
	}

	a.mu.Lock()
	for name := range cmds {
		a.suppress[name] = true
	}
	a.mu.Unlock()
	defer func() {
		a.mu.Lock()
		clear(a.suppress)
		a.mu.Unlock()
	}()

	// referenced collections first so tasks and templates are pruned
	// against the reloaded categories, tags and units
	for _, name := range []string{KeyCategories, KeyTags, KeyUnits, KeyTasks, KeyTemplates} {
		s.Dispatch(cmds[name])
	}
}

// Clear deletes every key under the adapter's prefix
func (a *Adapter) Clear() error {
	keys, err := a.medium.Keys(a.prefix)
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := a.medium.Delete(k); err != nil {
			return err
		}
	}
	return nil
}
