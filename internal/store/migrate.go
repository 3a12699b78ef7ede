package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// migrationStep describes the single fixed step from one schema version to
// the next. The table is closed: a stored version with no entry here (and
// that isn't already current) is a fatal, unrecoverable mismatch.
type migrationStep struct {
	next string
	ddl  string
}

// migrationSteps is keyed by the major.minor a database reports itself at.
// There are no predecessor schemas to step from yet; this table exists so
// a future schema change has a concrete place to land a step, following the
// same "mark dirty, apply, mark clean" protocol as the initial create.
var migrationSteps = map[string]migrationStep{}

func majorMinor(version string) string {
	parts := strings.SplitN(version, ".", 3)
	if len(parts) < 2 {
		return version
	}
	return parts[0] + "." + parts[1]
}

type migrationRow struct {
	version string
	dirty   bool
}

func (s *Store) latestMigration() (*migrationRow, error) {
	row := s.db.QueryRow(`SELECT version, dirty FROM schema_migrations ORDER BY rowid DESC LIMIT 1`)
	var r migrationRow
	var dirty int
	err := row.Scan(&r.version, &dirty)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	r.dirty = dirty != 0
	return &r, nil
}

func (s *Store) recordMigration(version string, dirty bool) error {
	d := 0
	if dirty {
		d = 1
	}
	_, err := s.db.Exec(`INSERT INTO schema_migrations (version, dirty, applied_at) VALUES (?, ?, ?)`,
		version, d, time.Now().UTC().Format(time.RFC3339))
	return err
}

// migrate implements the protocol in full: a dirty latest row is fatal, a
// missing log means a fresh database (create at currentVersion), and a
// version behind current steps forward one fixed migration at a time,
// marking dirty before DDL and clean after, until it matches.
func (s *Store) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version TEXT NOT NULL,
		dirty INTEGER NOT NULL DEFAULT 0,
		applied_at TEXT NOT NULL
	)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	for {
		latest, err := s.latestMigration()
		if err != nil {
			return fmt.Errorf("read latest migration: %w", err)
		}

		if latest == nil {
			if err := s.createFresh(); err != nil {
				return fmt.Errorf("create fresh schema: %w", err)
			}
			return nil
		}

		if latest.dirty {
			return fmt.Errorf("schema_migrations: latest version %s is dirty; a prior migration did not complete", latest.version)
		}

		if majorMinor(latest.version) == majorMinor(currentVersion) {
			return nil
		}

		step, ok := migrationSteps[majorMinor(latest.version)]
		if !ok {
			return fmt.Errorf("schema_migrations: no migration path from version %s", latest.version)
		}

		if err := s.applyStep(latest.version, step); err != nil {
			return err
		}
	}
}

func (s *Store) createFresh() error {
	ddl, err := migrationsFS.ReadFile("migrations/0001_initial.sql")
	if err != nil {
		return fmt.Errorf("read initial schema: %w", err)
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(string(ddl)); err != nil {
		tx.Rollback()
		return fmt.Errorf("apply initial schema: %w", err)
	}
	if err := s.recordMigrationTx(tx, currentVersion, false); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *Store) applyStep(from string, step migrationStep) error {
	if err := s.recordMigration(from, true); err != nil {
		return fmt.Errorf("mark %s dirty: %w", from, err)
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(step.ddl); err != nil {
		tx.Rollback()
		return fmt.Errorf("apply migration %s -> %s: %w", from, step.next, err)
	}
	if err := s.recordMigrationTx(tx, step.next, false); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *Store) recordMigrationTx(tx *sql.Tx, version string, dirty bool) error {
	d := 0
	if dirty {
		d = 1
	}
	_, err := tx.Exec(`INSERT INTO schema_migrations (version, dirty, applied_at) VALUES (?, ?, ?)`,
		version, d, time.Now().UTC().Format(time.RFC3339))
	return err
}
