package shared

import (
	"database/sql"
	"testing"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

func TestMigrations(t *testing.T) {
	tableExists := func(t *testing.T, db *sql.DB, table string) bool {
		t.Helper()
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name = ?", table).Scan(&name)
		if err == sql.ErrNoRows {
			return false
		}
		if err != nil {
			t.Fatalf("failed to inspect schema: %v", err)
		}
		return true
	}

	t.Run("RunMigrations", func(t *testing.T) {
		t.Run("creates the schema", func(t *testing.T) {
			db := newTestDB(t)

			if err := RunMigrations(db); err != nil {
				t.Fatalf("migrations failed: %v", err)
			}

			for _, table := range []string{"session_entries", "lookups", "lookups_sequence", "schema_migrations"} {
				if !tableExists(t, db, table) {
					t.Errorf("expected table %s to exist", table)
				}
			}

			var seed int
			if err := db.QueryRow("SELECT value FROM lookups_sequence WHERE id = 1").Scan(&seed); err != nil {
				t.Fatalf("expected seeded sequence row: %v", err)
			}
			if seed != 0 {
				t.Errorf("expected sequence seed 0, got %d", seed)
			}
		})

		t.Run("is idempotent", func(t *testing.T) {
			db := newTestDB(t)

			if err := RunMigrations(db); err != nil {
				t.Fatalf("first run failed: %v", err)
			}
			if err := RunMigrations(db); err != nil {
				t.Fatalf("second run failed: %v", err)
			}

			var applied int
			if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&applied); err != nil {
				t.Fatalf("failed to count applied migrations: %v", err)
			}
			if applied != 1 {
				t.Errorf("expected 1 applied migration, got %d", applied)
			}
		})
	})

	t.Run("RollbackMigration", func(t *testing.T) {
		t.Run("drops the schema", func(t *testing.T) {
			db := newTestDB(t)

			if err := RunMigrations(db); err != nil {
				t.Fatalf("migrations failed: %v", err)
			}
			if err := RollbackMigration(db); err != nil {
				t.Fatalf("rollback failed: %v", err)
			}

			for _, table := range []string{"session_entries", "lookups", "lookups_sequence"} {
				if tableExists(t, db, table) {
					t.Errorf("expected table %s to be dropped", table)
				}
			}
		})

		t.Run("fails with nothing applied", func(t *testing.T) {
			db := newTestDB(t)

			if err := RunMigrations(db); err != nil {
				t.Fatalf("migrations failed: %v", err)
			}
			if err := RollbackMigration(db); err != nil {
				t.Fatalf("rollback failed: %v", err)
			}
			if err := RollbackMigration(db); err == nil {
				t.Error("expected error with no migrations applied")
			}
		})
	})
}
