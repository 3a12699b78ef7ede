// Package store is the embedded SQL persistence layer: captures, tasks,
// the active-task pointer, and the schema migration log that guards them.
package store

import (
	"database/sql"
	"embed"
	"fmt"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// currentVersion is the schema version this binary expects. CaptureController
// compares its major.minor to a child shell's heartbeat independently; this
// is the on-disk schema's own version, tracked in schema_migrations.
const currentVersion = "2.6.0"

type Store struct {
	db *sql.DB
}

// Open opens (and migrates) the sqlite database at dsn. Use ":memory:" for
// an ephemeral store, as the test suite does.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) DB() *sql.DB {
	return s.db
}
