package repositories

import (
	"database/sql"
	"time"

	"fmt"

	"github.com/desertthunder/flowdj/internal/models"
	"github.com/desertthunder/flowdj/internal/shared"
)

// TrackCacheRepository persists resolved catalog tracks keyed by a
// normalized song/artist key.
//
// Handles deduplication via the track_key UNIQUE constraint and soft delete
// support for evicting stale resolutions.
type TrackCacheRepository struct {
	db *sql.DB
}

// NewTrackCacheRepository creates a new TrackCacheRepository with the given database connection
func NewTrackCacheRepository(db *sql.DB) *TrackCacheRepository {
	return &TrackCacheRepository{db: db}
}

// Put inserts a resolved track into the cache with generated ID and sequence.
//
// Duplicate song/artist keys are silently ignored (UNIQUE constraint
// violations are treated as success).
func (r *TrackCacheRepository) Put(track *models.CachedTrack) error {
	if err := track.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "tracks")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	now := time.Now()
	track.ID = shared.GenerateID()
	track.CreatedAt = now
	track.UpdatedAt = now

	query := `
		INSERT INTO tracks (id, sequence, track_key, catalog_id, song, artist, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (track_key) DO NOTHING
	`

	key := shared.NormalizeTrackKey(track.Song, track.Artist)
	if _, err := r.db.Exec(query, track.ID, sequence, key, track.CatalogID, track.Song, track.Artist, now, now); err != nil {
		return fmt.Errorf("failed to insert track: %w", err)
	}

	return nil
}

// Get retrieves a cached resolution by song/artist, excluding soft-deleted rows.
//
// Returns [shared.ErrTrackNotFound] on a cache miss.
func (r *TrackCacheRepository) Get(song, artist string) (*models.CachedTrack, error) {
	query := `
		SELECT id, catalog_id, song, artist, created_at, updated_at
		FROM tracks
		WHERE track_key = ? AND deleted_at IS NULL
	`

	key := shared.NormalizeTrackKey(song, artist)
	row := r.db.QueryRow(query, key)

	var track models.CachedTrack
	err := row.Scan(&track.ID, &track.CatalogID, &track.Song, &track.Artist, &track.CreatedAt, &track.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: no cached resolution for '%s' by '%s'", shared.ErrTrackNotFound, song, artist)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan track: %w", err)
	}

	return &track, nil
}

// Delete soft-deletes a cached resolution by song/artist.
func (r *TrackCacheRepository) Delete(song, artist string) error {
	query := `
		UPDATE tracks
		SET deleted_at = ?
		WHERE track_key = ? AND deleted_at IS NULL
	`

	key := shared.NormalizeTrackKey(song, artist)
	result, err := r.db.Exec(query, time.Now(), key)
	if err != nil {
		return fmt.Errorf("failed to delete track: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: no cached resolution for '%s' by '%s'", shared.ErrTrackNotFound, song, artist)
	}

	return nil
}

// List retrieves all cached resolutions in insertion order.
func (r *TrackCacheRepository) List() ([]*models.CachedTrack, error) {
	query := `
		SELECT id, catalog_id, song, artist, created_at, updated_at
		FROM tracks
		WHERE deleted_at IS NULL
		ORDER BY sequence ASC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	var tracks []*models.CachedTrack
	for rows.Next() {
		var track models.CachedTrack
		if err := rows.Scan(&track.ID, &track.CatalogID, &track.Song, &track.Artist, &track.CreatedAt, &track.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan track: %w", err)
		}
		tracks = append(tracks, &track)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return tracks, nil
}
