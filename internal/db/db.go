package db

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schema string

// nextRev yields a revision greater than every stored one
const nextRev = "(SELECT COALESCE(MAX(rev), 0) + 1 FROM kv)"

// Medium is a durable string key/value store
type Medium interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Delete(key string) error
	Keys(prefix string) ([]string, error)
}

// Change is a value written to the medium by another handle
type Change struct {
	Key   string
	Value string
}

// Watcher delivers changes made by other handles until ctx is done
type Watcher interface {
	Watch(ctx context.Context, fn func(Change)) error
}

// DB wraps the SQLite key/value database. Every write is stamped with the
// handle's origin so a handle can tell its own writes from foreign ones.
type DB struct {
	*sqlx.DB
	path   string
	origin string
	log    *slog.Logger
}

// New opens the database at path and initializes the schema
func New(path string, log *slog.Logger) (*DB, error) {
	conn, err := sqlx.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return Wrap(conn, path, log), nil
}

// Wrap uses an already opened connection; the schema must exist
func Wrap(conn *sqlx.DB, path string, log *slog.Logger) *DB {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &DB{
		DB:     conn,
		path:   path,
		origin: uuid.NewString(),
		log:    log.With("component", "db"),
	}
}

// Origin identifies this handle's writes
func (db *DB) Origin() string {
	return db.origin
}

// Get retrieves the value stored under key
func (db *DB) Get(key string) (string, bool, error) {
	query, args, err := sq.Select("value").From("kv").Where(sq.Eq{"key": key}).ToSql()
	if err != nil {
		return "", false, err
	}

	var value string
	err = db.DB.Get(&value, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading %s: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key
func (db *DB) Set(key, value string) error {
	query, args, err := sq.Insert("kv").
		Columns("key", "value", "origin", "rev").
		Values(key, value, db.origin, sq.Expr(nextRev)).
		Suffix("ON CONFLICT(key) DO UPDATE SET value = excluded.value, origin = excluded.origin, rev = excluded.rev, updated_at = CURRENT_TIMESTAMP").
		ToSql()
	if err != nil {
		return err
	}

	if _, err := db.Exec(query, args...); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// Delete removes key; deleting a missing key is not an error
func (db *DB) Delete(key string) error {
	query, args, err := sq.Delete("kv").Where(sq.Eq{"key": key}).ToSql()
	if err != nil {
		return err
	}
	if _, err := db.Exec(query, args...); err != nil {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}

// Keys lists the stored keys starting with prefix
func (db *DB) Keys(prefix string) ([]string, error) {
	query, args, err := sq.Select("key").From("kv").
		Where(sq.Like{"key": prefix + "%"}).
		OrderBy("key").
		ToSql()
	if err != nil {
		return nil, err
	}

	var keys []string
	if err := db.Select(&keys, query, args...); err != nil {
		return nil, fmt.Errorf("listing keys: %w", err)
	}
	return keys, nil
}

// LatestRev returns the highest revision stored
func (db *DB) LatestRev() (int64, error) {
	query, args, err := sq.Select("COALESCE(MAX(rev), 0)").From("kv").ToSql()
	if err != nil {
		return 0, err
	}

	var rev int64
	if err := db.DB.Get(&rev, query, args...); err != nil {
		return 0, fmt.Errorf("reading latest revision: %w", err)
	}
	return rev, nil
}

type changeRow struct {
	Key   string `db:"key"`
	Value string `db:"value"`
	Rev   int64  `db:"rev"`
}

// ForeignChanges returns values written by other handles after rev, oldest
// first, and the highest revision seen.
func (db *DB) ForeignChanges(rev int64) ([]Change, int64, error) {
	query, args, err := sq.Select("key", "value", "rev").From("kv").
		Where(sq.And{sq.Gt{"rev": rev}, sq.NotEq{"origin": db.origin}}).
		OrderBy("rev").
		ToSql()
	if err != nil {
		return nil, rev, err
	}

	var rows []changeRow
	if err := db.Select(&rows, query, args...); err != nil {
		return nil, rev, fmt.Errorf("reading changes: %w", err)
	}

	changes := make([]Change, 0, len(rows))
	for _, r := range rows {
		changes = append(changes, Change{Key: r.Key, Value: r.Value})
		rev = max(rev, r.Rev)
	}
	return changes, rev, nil
}
