// Package store persists review cards and events in SQLite, keyed by the
// composite (pack, item, direction) card id.
package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store wraps the SQLite connection and exposes card/event operations.
type Store struct {
	db *sqlx.DB
}

// Open connects to the SQLite database at path, applies pragmas and
// creates the schema if needed.
func Open(path string) (*Store, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func applyPragmas(db *sqlx.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

func initSchema(db *sqlx.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS review_cards (
		id               TEXT PRIMARY KEY,
		pack_id          TEXT NOT NULL,
		item_id          TEXT NOT NULL,
		direction        TEXT NOT NULL,
		attempts         INTEGER NOT NULL DEFAULT 0,
		correct          INTEGER NOT NULL DEFAULT 0,
		incorrect        INTEGER NOT NULL DEFAULT 0,
		streak           INTEGER NOT NULL DEFAULT 0,
		lapses           INTEGER NOT NULL DEFAULT 0,
		last_result      TEXT NOT NULL DEFAULT '',
		last_reviewed_at INTEGER NOT NULL DEFAULT 0,
		last_quality     INTEGER NOT NULL DEFAULT 0,
		ef               REAL NOT NULL,
		interval_days    INTEGER NOT NULL DEFAULT 0,
		repetitions      INTEGER NOT NULL DEFAULT 0,
		due_at           INTEGER NOT NULL DEFAULT 0,
		UNIQUE(pack_id, item_id, direction)
	);

	CREATE TABLE IF NOT EXISTS review_events (
		id        TEXT PRIMARY KEY,
		pack_id   TEXT NOT NULL,
		item_id   TEXT NOT NULL,
		direction TEXT NOT NULL,
		result    TEXT NOT NULL,
		timestamp INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_review_events_pack ON review_events(pack_id);
	CREATE INDEX IF NOT EXISTS idx_review_events_pack_time ON review_events(pack_id, timestamp);
	`
	if _, err := db.Exec(schema); err != nil {
		return err
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// RIPASSO_DB env var, $XDG_DATA_HOME/ripasso/ripasso.db,
// ~/.local/share/ripasso/ripasso.db.
func DefaultDBPath() (string, error) {
	if p := os.Getenv("RIPASSO_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "ripasso", "ripasso.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
