package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/chordex/internal/models"
	"github.com/desertthunder/chordex/internal/shared"
)

// LookupRepository implements [models.Repository] for [models.Lookup] history entries.
//
// Opened songs are recorded on every detail fetch so users can revisit them
// without searching again.
type LookupRepository struct {
	db *sql.DB
}

// NewLookupRepository creates a new LookupRepository with the given database connection
func NewLookupRepository(db *sql.DB) *LookupRepository {
	return &LookupRepository{db: db}
}

// Create inserts a new lookup into the database with generated ID and sequence
func (r *LookupRepository) Create(lookup *models.Lookup) error {
	sequence, err := NextSequence(r.db, "lookups")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	lookup.SetID(id)
	lookup.SetSequence(sequence)

	if err := lookup.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO lookups (id, sequence, video_id, title, channel_title, query, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		lookup.VideoID(),
		lookup.Title(),
		lookup.ChannelTitle(),
		lookup.Query(),
		lookup.CreatedAt(),
		lookup.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert lookup: %w", err)
	}

	return nil
}

// Get retrieves a lookup by ID, excluding soft-deleted entries
func (r *LookupRepository) Get(id string) (*models.Lookup, error) {
	query := `
		SELECT id, sequence, video_id, title, channel_title, query, created_at, updated_at, deleted_at
		FROM lookups
		WHERE id = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, id))
}

// Update modifies an existing lookup in the database
func (r *LookupRepository) Update(lookup *models.Lookup) error {
	if err := lookup.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	lookup.SetUpdatedAt(now)

	query := `
		UPDATE lookups
		SET title = ?, channel_title = ?, query = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, lookup.Title(), lookup.ChannelTitle(), lookup.Query(), now, lookup.ID())
	if err != nil {
		return fmt.Errorf("failed to update lookup: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("lookup not found or already deleted: %s", lookup.ID())
	}

	return nil
}

// Delete soft-deletes a lookup by ID
func (r *LookupRepository) Delete(id string) error {
	now := time.Now()

	query := `
		UPDATE lookups
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete lookup: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("lookup not found or already deleted: %s", id)
	}

	return nil
}

// DeleteAll soft-deletes every lookup, backing the `history clear` command.
func (r *LookupRepository) DeleteAll() error {
	_, err := r.db.Exec("UPDATE lookups SET deleted_at = ? WHERE deleted_at IS NULL", time.Now())
	if err != nil {
		return fmt.Errorf("failed to clear lookups: %w", err)
	}
	return nil
}

// List retrieves lookups matching the given criteria, most recent first,
// excluding soft-deleted entries
func (r *LookupRepository) List(criteria map[string]any) ([]*models.Lookup, error) {
	query := `
		SELECT id, sequence, video_id, title, channel_title, query, created_at, updated_at, deleted_at
		FROM lookups
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if videoID, ok := criteria["video_id"].(string); ok && videoID != "" {
		query += " AND video_id = ?"
		args = append(args, videoID)
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query lookups: %w", err)
	}
	defer rows.Close()

	var lookups []*models.Lookup
	for rows.Next() {
		lookup, err := scanLookup(rows.Scan)
		if err != nil {
			return nil, err
		}
		lookups = append(lookups, lookup)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return lookups, nil
}

func (r *LookupRepository) scanOne(row *sql.Row) (*models.Lookup, error) {
	lookup, err := scanLookup(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("lookup not found")
	}
	return lookup, err
}

func scanLookup(scan func(dest ...any) error) (*models.Lookup, error) {
	var (
		id           string
		sequence     int
		videoID      string
		title        string
		channelTitle sql.NullString
		searchQuery  sql.NullString
		createdAt    time.Time
		updatedAt    time.Time
		deletedAt    sql.NullTime
	)

	err := scan(&id, &sequence, &videoID, &title, &channelTitle, &searchQuery, &createdAt, &updatedAt, &deletedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan lookup: %w", err)
	}

	lookup := models.NewLookup(videoID, title, channelTitle.String, searchQuery.String)
	lookup.SetID(id)
	lookup.SetSequence(sequence)
	lookup.SetCreatedAt(createdAt)
	lookup.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		lookup.SetDeletedAt(&deletedAt.Time)
	}

	return lookup, nil
}
