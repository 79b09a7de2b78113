package persist

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tgienger/taskboard/internal/models"
)

// ExportFile is the import/export document. Templates and units are not
// part of it.
type ExportFile struct {
	Tasks      json.RawMessage `json:"tasks"`
	Categories json.RawMessage `json:"categories"`
	Tags       json.RawMessage `json:"tags"`
	ExportedAt time.Time       `json:"exportedAt"`
}

// Export returns the persisted tasks, categories and tags as indented JSON.
// A collection that was never written exports as null.
func (a *Adapter) Export(now time.Time) ([]byte, error) {
	f := ExportFile{ExportedAt: now.UTC()}
	for _, part := range []struct {
		name string
		dst  *json.RawMessage
	}{
		{KeyTasks, &f.Tasks},
		{KeyCategories, &f.Categories},
		{KeyTags, &f.Tags},
	} {
		raw, ok, err := a.medium.Get(a.Key(part.name))
		if err != nil {
			return nil, fmt.Errorf("exporting %s: %w", part.name, err)
		}
		if !ok || !json.Valid([]byte(raw)) {
			*part.dst = json.RawMessage("null")
			continue
		}
		*part.dst = json.RawMessage(raw)
	}

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding export: %w", err)
	}
	return data, nil
}

// Import overwrites each collection present (and non-null) in data. The
// whole document is decoded before anything is written, so a malformed
// payload changes nothing.
func (a *Adapter) Import(data []byte) error {
	var f ExportFile
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parsing import: %w", err)
	}

	var writes []pendingWrite
	add := func(name string, raw json.RawMessage, decode func(string) error) error {
		if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
			return nil
		}
		if err := decode(string(raw)); err != nil {
			return fmt.Errorf("parsing import %s: %w", name, err)
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return fmt.Errorf("parsing import %s: %w", name, err)
		}
		writes = append(writes, pendingWrite{key: a.Key(name), value: buf.String()})
		return nil
	}

	if err := add(KeyTasks, f.Tasks, func(s string) error { _, err := decodeCollection[models.Task](s); return err }); err != nil {
		return err
	}
	if err := add(KeyCategories, f.Categories, func(s string) error { _, err := decodeCollection[models.Category](s); return err }); err != nil {
		return err
	}
	if err := add(KeyTags, f.Tags, func(s string) error { _, err := decodeCollection[models.Tag](s); return err }); err != nil {
		return err
	}

	for _, w := range writes {
		if err := a.medium.Set(w.key, w.value); err != nil {
			return fmt.Errorf("writing %s: %w", w.key, err)
		}
	}
	a.log.Info("import applied", "collections", len(writes))
	return nil
}

type pendingWrite struct {
	key   string
	value string
}
