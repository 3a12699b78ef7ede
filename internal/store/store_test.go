package store

import "testing"

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMigrationIdempotent(t *testing.T) {
	s := openTestStore(t)
	if err := s.migrate(); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func TestAllTablesExist(t *testing.T) {
	s := openTestStore(t)
	for _, table := range []string{"captures", "tasks", "active_task", "schema_migrations"} {
		var name string
		err := s.db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}
}

func TestLatestMigrationIsCleanAtCurrentVersion(t *testing.T) {
	s := openTestStore(t)
	latest, err := s.latestMigration()
	if err != nil {
		t.Fatalf("latestMigration: %v", err)
	}
	if latest == nil {
		t.Fatal("expected a migration row after Open")
	}
	if latest.dirty {
		t.Error("latest migration row is dirty after a clean Open")
	}
	if majorMinor(latest.version) != majorMinor(currentVersion) {
		t.Errorf("latest version = %s, want major.minor %s", latest.version, majorMinor(currentVersion))
	}
}

func TestDirtyLatestMigrationIsFatal(t *testing.T) {
	s := openTestStore(t)
	if err := s.recordMigration("9.9.9", true); err != nil {
		t.Fatalf("recordMigration: %v", err)
	}
	if err := s.migrate(); err == nil {
		t.Fatal("expected migrate to fail on a dirty latest row")
	}
}

func TestActiveTaskSingletonRowExists(t *testing.T) {
	s := openTestStore(t)
	active, err := s.GetActiveTask()
	if err != nil {
		t.Fatalf("GetActiveTask: %v", err)
	}
	if active != nil {
		t.Errorf("expected no active task initially, got %v", *active)
	}
}
