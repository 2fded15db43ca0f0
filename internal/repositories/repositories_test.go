package repositories

import (
	"database/sql"
	"testing"

	"github.com/desertthunder/chordex/internal/models"
	"github.com/desertthunder/chordex/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func TestSessionRepository(t *testing.T) {
	t.Run("Get", func(t *testing.T) {
		t.Run("absent key", func(t *testing.T) {
			repo := NewSessionRepository(setupTestDB(t))

			value, ok, err := repo.Get(SessionKeyToken)
			if err != nil {
				t.Fatalf("get failed: %v", err)
			}
			if ok || value != "" {
				t.Errorf("expected absent key, got %q (ok=%v)", value, ok)
			}
		})
	})

	t.Run("PutAll", func(t *testing.T) {
		t.Run("writes the pair together", func(t *testing.T) {
			repo := NewSessionRepository(setupTestDB(t))

			entries := map[string]string{
				SessionKeyToken:   "T",
				SessionKeyProfile: `{"id":1}`,
			}
			if err := repo.PutAll(entries); err != nil {
				t.Fatalf("put failed: %v", err)
			}

			token, ok, err := repo.Get(SessionKeyToken)
			if err != nil || !ok || token != "T" {
				t.Errorf("expected token 'T', got %q (ok=%v, err=%v)", token, ok, err)
			}
			profile, ok, err := repo.Get(SessionKeyProfile)
			if err != nil || !ok || profile != `{"id":1}` {
				t.Errorf("expected profile, got %q (ok=%v, err=%v)", profile, ok, err)
			}
		})

		t.Run("upserts existing keys", func(t *testing.T) {
			repo := NewSessionRepository(setupTestDB(t))

			if err := repo.PutAll(map[string]string{SessionKeyToken: "old"}); err != nil {
				t.Fatalf("put failed: %v", err)
			}
			if err := repo.PutAll(map[string]string{SessionKeyToken: "new"}); err != nil {
				t.Fatalf("put failed: %v", err)
			}

			token, _, _ := repo.Get(SessionKeyToken)
			if token != "new" {
				t.Errorf("expected token 'new', got %q", token)
			}
		})
	})

	t.Run("Clear", func(t *testing.T) {
		repo := NewSessionRepository(setupTestDB(t))

		entries := map[string]string{
			SessionKeyToken:   "T",
			SessionKeyProfile: `{"id":1}`,
		}
		if err := repo.PutAll(entries); err != nil {
			t.Fatalf("put failed: %v", err)
		}
		if err := repo.Clear(); err != nil {
			t.Fatalf("clear failed: %v", err)
		}

		if _, ok, _ := repo.Get(SessionKeyToken); ok {
			t.Error("expected token to be gone")
		}
		if _, ok, _ := repo.Get(SessionKeyProfile); ok {
			t.Error("expected profile to be gone")
		}
	})
}

func TestLookupRepository(t *testing.T) {
	t.Run("Create & Get", func(t *testing.T) {
		repo := NewLookupRepository(setupTestDB(t))

		lookup := models.NewLookup("abc123", "Hotel California", "Eagles", "hotel")
		if err := repo.Create(lookup); err != nil {
			t.Fatalf("create failed: %v", err)
		}
		if lookup.ID() == "" {
			t.Error("expected a generated ID")
		}
		if lookup.Sequence() != 1 {
			t.Errorf("expected sequence 1, got %d", lookup.Sequence())
		}

		got, err := repo.Get(lookup.ID())
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if got.VideoID() != "abc123" || got.Title() != "Hotel California" {
			t.Errorf("unexpected lookup %s / %s", got.VideoID(), got.Title())
		}
		if got.Query() != "hotel" {
			t.Errorf("expected query to round-trip, got %q", got.Query())
		}
	})

	t.Run("Create rejects invalid entries", func(t *testing.T) {
		repo := NewLookupRepository(setupTestDB(t))

		if err := repo.Create(models.NewLookup("", "Title", "", "")); err == nil {
			t.Error("expected validation failure for missing video ID")
		}
	})

	t.Run("Update", func(t *testing.T) {
		repo := NewLookupRepository(setupTestDB(t))

		lookup := models.NewLookup("abc123", "Old Title", "", "")
		if err := repo.Create(lookup); err != nil {
			t.Fatalf("create failed: %v", err)
		}

		updated := models.NewLookup("abc123", "New Title", "Artist", "query")
		updated.SetID(lookup.ID())
		if err := repo.Update(updated); err != nil {
			t.Fatalf("update failed: %v", err)
		}

		got, err := repo.Get(lookup.ID())
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if got.Title() != "New Title" {
			t.Errorf("expected updated title, got %q", got.Title())
		}
	})

	t.Run("Delete", func(t *testing.T) {
		repo := NewLookupRepository(setupTestDB(t))

		lookup := models.NewLookup("abc123", "Title", "", "")
		if err := repo.Create(lookup); err != nil {
			t.Fatalf("create failed: %v", err)
		}
		if err := repo.Delete(lookup.ID()); err != nil {
			t.Fatalf("delete failed: %v", err)
		}

		if _, err := repo.Get(lookup.ID()); err == nil {
			t.Error("expected soft-deleted entry to be invisible")
		}
		if err := repo.Delete(lookup.ID()); err == nil {
			t.Error("expected a second delete to fail")
		}
	})

	t.Run("List", func(t *testing.T) {
		t.Run("most recent first", func(t *testing.T) {
			repo := NewLookupRepository(setupTestDB(t))

			for _, title := range []string{"first", "second", "third"} {
				if err := repo.Create(models.NewLookup("vid-"+title, title, "", "")); err != nil {
					t.Fatalf("create failed: %v", err)
				}
			}

			lookups, err := repo.List(map[string]any{})
			if err != nil {
				t.Fatalf("list failed: %v", err)
			}
			if len(lookups) != 3 {
				t.Fatalf("expected 3 lookups, got %d", len(lookups))
			}
			if lookups[0].Title() != "third" || lookups[2].Title() != "first" {
				t.Errorf("expected newest first, got %s..%s", lookups[0].Title(), lookups[2].Title())
			}
		})

		t.Run("with limit", func(t *testing.T) {
			repo := NewLookupRepository(setupTestDB(t))

			for _, title := range []string{"a", "b", "c"} {
				if err := repo.Create(models.NewLookup("vid-"+title, title, "", "")); err != nil {
					t.Fatalf("create failed: %v", err)
				}
			}

			lookups, err := repo.List(map[string]any{"limit": 2})
			if err != nil {
				t.Fatalf("list failed: %v", err)
			}
			if len(lookups) != 2 {
				t.Errorf("expected 2 lookups, got %d", len(lookups))
			}
		})

		t.Run("filtered by video ID", func(t *testing.T) {
			repo := NewLookupRepository(setupTestDB(t))

			repo.Create(models.NewLookup("abc", "one", "", ""))
			repo.Create(models.NewLookup("def", "two", "", ""))
			repo.Create(models.NewLookup("abc", "three", "", ""))

			lookups, err := repo.List(map[string]any{"video_id": "abc"})
			if err != nil {
				t.Fatalf("list failed: %v", err)
			}
			if len(lookups) != 2 {
				t.Errorf("expected 2 lookups for 'abc', got %d", len(lookups))
			}
		})
	})

	t.Run("DeleteAll", func(t *testing.T) {
		repo := NewLookupRepository(setupTestDB(t))

		repo.Create(models.NewLookup("abc", "one", "", ""))
		repo.Create(models.NewLookup("def", "two", "", ""))

		if err := repo.DeleteAll(); err != nil {
			t.Fatalf("delete all failed: %v", err)
		}

		lookups, err := repo.List(map[string]any{})
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(lookups) != 0 {
			t.Errorf("expected empty history, got %d entries", len(lookups))
		}
	})
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)

	for expected := 1; expected <= 3; expected++ {
		sequence, err := NextSequence(db, "lookups")
		if err != nil {
			t.Fatalf("sequence generation failed: %v", err)
		}
		if sequence != expected {
			t.Errorf("expected sequence %d, got %d", expected, sequence)
		}
	}
}
