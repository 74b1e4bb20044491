// Package sqlite implements the repository interfaces on SQLite.
//
// WHY modernc.org/sqlite?
// It is a pure Go translation of SQLite: no CGo, no C compiler, cross
// compilation just works. The blank import below registers it with
// database/sql under the driver name "sqlite".
//
// DATABASE/SQL RECAP:
//   - sql.DB:   a connection pool (NOT a single connection!)
//   - sql.Row:  a single result row, read with Scan
//   - sql.Rows: multiple rows; must be closed
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sakif/techmind/internal/repository"

	_ "modernc.org/sqlite"
)

var _ repository.Store = (*DB)(nil)

// DB wraps a sql.DB pool and implements repository.Store.
type DB struct {
	conn *sql.DB
	now  func() time.Time
}

// New opens (creating if needed) the database at dbPath and runs migrations.
//
// dbPath examples:
//   - "data/techmind.db" → file-based database (persistent)
//   - ":memory:"         → in-memory database (tests)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// ONE CONNECTION:
	// PRAGMAs apply per connection, and every connection to ":memory:" gets
	// its own empty database. A single pooled connection keeps both right.
	// SQLite serializes writers anyway.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",  // readers don't block the writer
		"PRAGMA foreign_keys=ON",   // off by default in SQLite
		"PRAGMA busy_timeout=5000", // wait for locks instead of failing with SQLITE_BUSY
	}
	for _, p := range pragmas {
		if _, err := conn.Exec(p); err != nil {
			conn.Close()
			return nil, fmt.Errorf("sqlite: %s: %w", p, err)
		}
	}

	db := &DB{conn: conn, now: time.Now}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Ping checks the connection; used by GET /healthz.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// timestamp returns the current time in UTC. Storing every timestamp in one
// zone keeps ORDER BY on the text column chronological.
func (db *DB) timestamp() time.Time {
	return db.now().UTC()
}

// migrate creates the schema. CREATE ... IF NOT EXISTS makes it idempotent.
func (db *DB) migrate() error {
	// github_id is UNIQUE: each GitHub account maps to exactly one row, and it
	// is the conflict target of Upsert.
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id           TEXT PRIMARY KEY,
			github_id    INTEGER NOT NULL UNIQUE,
			username     TEXT NOT NULL,
			email        TEXT NOT NULL DEFAULT '',
			avatar_url   TEXT NOT NULL DEFAULT '',
			access_token TEXT NOT NULL DEFAULT '',
			created_at   DATETIME NOT NULL,
			updated_at   DATETIME NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	// The unique (user_id, term) index is what makes IncrementStreak a single
	// atomic upsert.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS term_streaks (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL REFERENCES users(id),
			term       TEXT NOT NULL,
			count      INTEGER NOT NULL DEFAULT 1,
			updated_at DATETIME NOT NULL
		);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_term_streaks_user_term ON term_streaks(user_id, term);
		CREATE INDEX IF NOT EXISTS idx_term_streaks_user_updated ON term_streaks(user_id, updated_at);
	`)
	if err != nil {
		return fmt.Errorf("creating term_streaks table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS explanations (
			id         TEXT PRIMARY KEY,
			term       TEXT NOT NULL,
			responses  TEXT NOT NULL,
			created_at DATETIME NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating explanations table: %w", err)
	}

	return nil
}
