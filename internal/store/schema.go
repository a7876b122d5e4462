// Package store provides the SQLite-backed frame table.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/starford/timer/internal/apperr"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS frames (
	id         INTEGER PRIMARY KEY,
	project    TEXT NOT NULL,
	start_time INTEGER NOT NULL,
	end_time   INTEGER,
	tags       TEXT
);

CREATE INDEX IF NOT EXISTS idx_frames_project ON frames(project);
CREATE INDEX IF NOT EXISTS idx_frames_start ON frames(start_time);
`

// BusyTimeoutMillis bounds how long a writer waits for the lock held by
// another invocation before failing.
const BusyTimeoutMillis = 5000

// DB wraps a sql.DB with frame operations. Calls made directly on DB run
// in autocommit mode; use WithTx to group several of them.
type DB struct {
	*Queries
	conn *sql.DB
}

// Open opens (or creates) the SQLite database at path and applies the schema.
func Open(path string) (*DB, error) {
	return open(path, BusyTimeoutMillis)
}

func open(path string, busyMillis int) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=%d&_txlock=immediate", dsnPath(path), busyMillis)
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", unavailable(err))
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", unavailable(err))
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply schema: %w", unavailable(err))
	}
	return &DB{Queries: &Queries{q: conn}, conn: conn}, nil
}

// dsnPath escapes path for a file: URI. SQLite decodes it back, so
// characters such as '?', '#' and '%' survive in directory and file names.
func dsnPath(path string) string {
	segs := strings.Split(filepath.ToSlash(path), "/")
	for i, seg := range segs {
		segs[i] = url.PathEscape(seg)
	}
	return strings.Join(segs, "/")
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks that the database file is still reachable.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("store: ping: %w", unavailable(err))
	}
	return nil
}

// WithTx runs fn inside a single write transaction. The transaction is
// committed when fn returns nil and rolled back otherwise, so a failure
// part way through leaves the table exactly as it was.
func (db *DB) WithTx(ctx context.Context, fn func(Frames) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", classify(err))
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := fn(&Queries{q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", classify(err))
	}
	return nil
}

// classify maps lock contention onto ErrStorageUnavailable and leaves
// other errors untouched.
func classify(err error) error {
	var serr sqlite3.Error
	if errors.As(err, &serr) && (serr.Code == sqlite3.ErrBusy || serr.Code == sqlite3.ErrLocked) {
		return unavailable(err)
	}
	return err
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %w", apperr.ErrStorageUnavailable, err)
}
