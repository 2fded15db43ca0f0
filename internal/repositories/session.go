package repositories

import (
	"database/sql"
	"fmt"
	"time"
)

// Keys for the two durable session entries. They are written together on login
// and cleared together on logout.
const (
	SessionKeyToken   = "auth_token"
	SessionKeyProfile = "user_profile"
)

// SessionRepository persists opaque key/value session entries.
//
// Only the session store writes through this repository; every other component
// reads session state via the store at call time.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new SessionRepository with the given database connection
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Get retrieves the value for a key. Returns ok=false when the key is absent.
func (r *SessionRepository) Get(key string) (string, bool, error) {
	var value string
	err := r.db.QueryRow("SELECT value FROM session_entries WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query session entry: %w", err)
	}

	return value, true, nil
}

// PutAll upserts the given entries in a single transaction so the token and
// profile are always written together.
func (r *SessionRepository) PutAll(entries map[string]string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO session_entries (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`

	now := time.Now()
	for key, value := range entries {
		if _, err := tx.Exec(query, key, value, now); err != nil {
			return fmt.Errorf("failed to upsert session entry %s: %w", key, err)
		}
	}

	return tx.Commit()
}

// Clear removes every session entry. It is used both by logout and by the
// self-repair path when persisted state fails to parse.
func (r *SessionRepository) Clear() error {
	if _, err := r.db.Exec("DELETE FROM session_entries"); err != nil {
		return fmt.Errorf("failed to clear session entries: %w", err)
	}
	return nil
}
