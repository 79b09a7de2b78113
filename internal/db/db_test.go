package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return Wrap(sqlx.NewDb(conn, "sqlite3"), "mock.db", nil), mock
}

func TestGet(t *testing.T) {
	db, mock := newMock(t)

	t.Run("existing key", func(t *testing.T) {
		mock.ExpectQuery(`SELECT value FROM kv WHERE key = \?`).
			WithArgs("taskapp_tasks").
			WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(`[]`))

		v, ok, err := db.Get("taskapp_tasks")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "[]", v)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing key", func(t *testing.T) {
		mock.ExpectQuery(`SELECT value FROM kv WHERE key = \?`).
			WithArgs("taskapp_tags").
			WillReturnError(sql.ErrNoRows)

		_, ok, err := db.Get("taskapp_tags")
		require.NoError(t, err)
		assert.False(t, ok)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("driver error", func(t *testing.T) {
		mock.ExpectQuery(`SELECT value FROM kv`).
			WillReturnError(errors.New("disk I/O error"))

		_, _, err := db.Get("taskapp_units")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reading taskapp_units")
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSetStampsOrigin(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectExec(`INSERT INTO kv \(key,value,origin,rev\) VALUES \(\?,\?,\?,\(SELECT COALESCE\(MAX\(rev\), 0\) \+ 1 FROM kv\)\) ON CONFLICT\(key\) DO UPDATE`).
		WithArgs("taskapp_tasks", `[{"id":"1"}]`, db.Origin()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, db.Set("taskapp_tasks", `[{"id":"1"}]`))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteAndKeys(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(`SELECT key FROM kv WHERE key LIKE \? ORDER BY key`).
		WithArgs("taskapp_%").
		WillReturnRows(sqlmock.NewRows([]string{"key"}).AddRow("taskapp_tags").AddRow("taskapp_tasks"))
	mock.ExpectExec(`DELETE FROM kv WHERE key = \?`).
		WithArgs("taskapp_tags").
		WillReturnResult(sqlmock.NewResult(0, 1))

	keys, err := db.Keys("taskapp_")
	require.NoError(t, err)
	assert.Equal(t, []string{"taskapp_tags", "taskapp_tasks"}, keys)

	require.NoError(t, db.Delete("taskapp_tags"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestForeignChanges(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(`SELECT key, value, rev FROM kv WHERE \(rev > \? AND origin <> \?\) ORDER BY rev`).
		WithArgs(int64(3), db.Origin()).
		WillReturnRows(sqlmock.NewRows([]string{"key", "value", "rev"}).
			AddRow("taskapp_tasks", "[]", int64(4)).
			AddRow("taskapp_tags", "[]", int64(6)))

	changes, rev, err := db.ForeignChanges(3)
	require.NoError(t, err)
	assert.Equal(t, int64(6), rev)
	assert.Equal(t, []Change{
		{Key: "taskapp_tasks", Value: "[]"},
		{Key: "taskapp_tags", Value: "[]"},
	}, changes)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.db")

	a, err := New(path, nil)
	require.NoError(t, err)
	defer a.Close()
	b, err := New(path, nil)
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, a.Set("taskapp_tasks", "[]"))
	require.NoError(t, a.Set("taskapp_tasks", `[{"id":"x"}]`))
	require.NoError(t, b.Set("taskapp_tags", "[]"))
	require.NoError(t, a.Set("other", "1"))

	v, ok, err := b.Get("taskapp_tasks")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"x"}]`, v)

	keys, err := a.Keys("taskapp_")
	require.NoError(t, err)
	assert.Equal(t, []string{"taskapp_tags", "taskapp_tasks"}, keys)

	changes, rev, err := a.ForeignChanges(0)
	require.NoError(t, err)
	assert.Equal(t, []Change{{Key: "taskapp_tags", Value: "[]"}}, changes)

	assert.Equal(t, int64(3), rev)

	latest, err := a.LatestRev()
	require.NoError(t, err)
	assert.Equal(t, int64(4), latest)

	require.NoError(t, a.Delete("taskapp_tags"))
	require.NoError(t, a.Delete("taskapp_tags"))
	_, ok, err = b.Get("taskapp_tags")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWatchSeesOtherHandle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.db")

	a, err := New(path, nil)
	require.NoError(t, err)
	defer a.Close()
	b, err := New(path, nil)
	require.NoError(t, err)
	defer b.Close()

	var mu sync.Mutex
	var got []Change
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- a.Watch(ctx, func(c Change) {
			mu.Lock()
			got = append(got, c)
			mu.Unlock()
		})
	}()

	n := 0
	require.Eventually(t, func() bool {
		n++
		if err := b.Set("taskapp_tasks", fmt.Sprintf(`[{"id":"%d"}]`, n)); err != nil {
			return false
		}
		mu.Lock()
		defer mu.Unlock()
		return len(got) > 0
	}, 5*time.Second, 50*time.Millisecond)

	require.NoError(t, a.Set("taskapp_tags", "[]"))

	cancel()
	require.NoError(t, <-done)

	mu.Lock()
	defer mu.Unlock()
	for _, c := range got {
		assert.Equal(t, "taskapp_tasks", c.Key, "own writes are never reported")
	}
}
