package cli

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/taskboard/internal/config"
	"github.com/tgienger/taskboard/internal/db"
	"github.com/tgienger/taskboard/internal/store"
)

// resetFlags puts every flag back to its default; cobra keeps parsed values
// in package variables between Execute calls.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// run executes the root command against medium
func run(t *testing.T, medium *db.Memory, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	orig := openApp
	t.Cleanup(func() { openApp = orig })
	openApp = func(cmd *cobra.Command) (*App, error) {
		cfg := &config.Config{StoragePrefix: "taskapp_", LogLevel: "info"}
		return NewApp(cfg, medium, slog.New(slog.DiscardHandler), store.DefaultEnv()), nil
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, medium *db.Memory, args ...string) string {
	t.Helper()
	out, err := run(t, medium, args...)
	require.NoError(t, err, out)
	return out
}

var addedID = regexp.MustCompile(`^added (\S+) `)

func TestTaskCommands(t *testing.T) {
	m := db.NewMemory()

	mustRun(t, m, "category", "add", "Work")
	mustRun(t, m, "tag", "add", "urgent")

	out := mustRun(t, m, "tasks", "add", "Write", "report", "-p", "high", "-c", "Work", "-t", "urgent", "--due", "2024-06-01")
	match := addedID.FindStringSubmatch(out)
	require.NotNil(t, match, out)
	assert.Contains(t, out, "Write report")
	id := match[1]

	mustRun(t, m, "tasks", "add", "Water plants")

	out = mustRun(t, m, "tasks", "list", "--category", "Work")
	assert.Contains(t, out, "Write report")
	assert.Contains(t, out, "urgent")
	assert.Contains(t, out, "2024-06-01")
	assert.NotContains(t, out, "Water plants")

	out = mustRun(t, m, "tasks", "list", "--search", "PLANTS")
	assert.Contains(t, out, "Water plants")
	assert.NotContains(t, out, "Write report")

	out = mustRun(t, m, "tasks", "toggle", id)
	assert.Equal(t, id+" completed\n", out)

	out = mustRun(t, m, "tasks", "list", "--status", "completed")
	assert.Contains(t, out, "Write report")

	out = mustRun(t, m, "tasks", "list", "--priority", "low")
	assert.Equal(t, "no tasks\n", out)

	mustRun(t, m, "category", "delete", "Work")
	out = mustRun(t, m, "tasks", "list")
	assert.Contains(t, out, "Write report", "deleting a category keeps its tasks")

	out = mustRun(t, m, "tasks", "delete", id)
	assert.Equal(t, "deleted "+id+"\n", out)
}

func TestTaskCommandErrors(t *testing.T) {
	m := db.NewMemory()

	_, err := run(t, m, "tasks", "toggle", "nope")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = run(t, m, "tasks", "add", "x", "--due", "tomorrow")
	var verr *store.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.NotEmpty(t, verr.Field("dueDate"))

	_, err = run(t, m, "tasks", "list", "--sort", "size")
	assert.ErrorContains(t, err, "unknown sort field")

	_, err = run(t, m, "tasks", "add", "x", "-c", "Missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUnitDuplicate(t *testing.T) {
	m := db.NewMemory()
	mustRun(t, m, "unit", "add", "Engineering")

	_, err := run(t, m, "unit", "add", "Engineering")
	assert.ErrorContains(t, err, "already exists")
}

const launchYAML = `
name: Launch
unit: Engineering
description: New service rollout
phases:
  - name: Plan
    tasks:
      - title: scope
        priority: high
      - title: estimate
  - name: Ship
    tasks:
      - title: release
`

func TestTemplateCommands(t *testing.T) {
	m := db.NewMemory()
	mustRun(t, m, "unit", "add", "Engineering")
	mustRun(t, m, "category", "add", "Work")
	mustRun(t, m, "tasks", "add", "existing")

	file := filepath.Join(t.TempDir(), "launch.yaml")
	require.NoError(t, os.WriteFile(file, []byte(launchYAML), 0o644))

	out := mustRun(t, m, "template", "import", file)
	assert.Regexp(t, `^added template \S+ Launch \(3 tasks\)\n$`, out)

	out = mustRun(t, m, "template", "list")
	assert.Contains(t, out, "Launch")
	assert.Contains(t, out, "Engineering")

	out = mustRun(t, m, "template", "preview", "Launch")
	assert.Equal(t, "  1. [Plan] scope\n  2. [Plan] estimate\n  3. [Ship] release\n", out)

	out = mustRun(t, m, "template", "apply", "Launch", "-c", "Work")
	assert.Equal(t, "created 3 tasks from Launch\n", out)

	out = mustRun(t, m, "tasks", "list", "--category", "Work", "--sort", "title", "--order", "asc")
	assert.Contains(t, out, "[Plan] scope")
	assert.Contains(t, out, "[Ship] release")
	assert.NotContains(t, out, "existing")

	mustRun(t, m, "unit", "delete", "Engineering")
	out = mustRun(t, m, "template", "delete", "Launch")
	assert.Equal(t, "deleted template Launch\n", out)
}

func TestTemplateImportRejectsInvalid(t *testing.T) {
	m := db.NewMemory()
	file := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(file, []byte("name: Bad\nphases:\n  - name: P\n    tasks:\n      - title: ''\n"), 0o644))

	_, err := run(t, m, "template", "import", file)
	var verr *store.ValidationError
	require.ErrorAs(t, err, &verr)

	require.NoError(t, os.WriteFile(file, []byte("name: X\nunit: Nowhere\n"), 0o644))
	_, err = run(t, m, "template", "import", file)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestExportImportReset(t *testing.T) {
	src := db.NewMemory()
	mustRun(t, src, "category", "add", "Home")
	mustRun(t, src, "tasks", "add", "Fix sink", "-c", "Home")

	out := mustRun(t, src, "export")
	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Contains(t, doc, "exportedAt")

	file := filepath.Join(t.TempDir(), "export.json")
	out = mustRun(t, src, "export", file)
	assert.Equal(t, "exported to "+file+"\n", out)

	dst := db.NewMemory()
	out = mustRun(t, dst, "import", file)
	assert.Equal(t, "imported: 1 tasks, 1 categories, 0 tags\n", out)
	assert.Contains(t, mustRun(t, dst, "tasks", "list"), "Fix sink")

	_, err := run(t, dst, "reset")
	assert.ErrorContains(t, err, "--yes")

	out = mustRun(t, dst, "reset", "--yes")
	assert.Equal(t, "all data deleted\n", out)
	assert.Equal(t, "no tasks\n", mustRun(t, dst, "tasks", "list"))

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"tasks": 5}`), 0o644))
	_, err = run(t, src, "import", bad)
	assert.Error(t, err)
	assert.Contains(t, mustRun(t, src, "tasks", "list"), "Fix sink")
}

func TestSessionCommands(t *testing.T) {
	m := db.NewMemory()

	assert.Equal(t, "not signed in\n", mustRun(t, m, "whoami"))

	_, err := run(t, m, "signout")
	assert.ErrorContains(t, err, "not signed in")

	assert.Equal(t, "signed in as ada\n", mustRun(t, m, "signin", "ada"))
	assert.Regexp(t, `^ada \(since \d{4}-\d{2}-\d{2} \d{2}:\d{2}\)\n$`, mustRun(t, m, "whoami"))

	assert.Equal(t, "signed out\n", mustRun(t, m, "signout"))
}

func TestResolveID(t *testing.T) {
	items := []string{"abc123", "abd456", "xyz"}
	key := func(s string) string { return s }

	got, err := resolveID(items, "abc", key, "task")
	require.NoError(t, err)
	assert.Equal(t, "abc123", got)

	got, err = resolveID(items, "xyz", key, "task")
	require.NoError(t, err)
	assert.Equal(t, "xyz", got)

	_, err = resolveID(items, "ab", key, "task")
	assert.ErrorContains(t, err, "ambiguous")

	_, err = resolveID(items, "", key, "task")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
