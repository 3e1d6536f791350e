// package repositories provides the persistence layer for cached catalog data.
//
// The database is a cache of upstream API responses, not a system of record:
// every prep run refreshes the liked-library snapshot wholesale, and nothing
// generated by a run is persisted locally.
package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/venndale/showprep/internal/catalog"
)

// LibraryRepository stores per-user liked-library snapshots in SQLite.
type LibraryRepository struct {
	db *sql.DB
}

// NewLibraryRepository creates a LibraryRepository over an open database.
func NewLibraryRepository(db *sql.DB) *LibraryRepository {
	return &LibraryRepository{db: db}
}

// Replace swaps a user's snapshot for the given tracks in one transaction.
// Track order is preserved via the position column.
func (r *LibraryRepository) Replace(userID string, tracks []catalog.Track) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM library_tracks WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("failed to clear snapshot: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO library_tracks (user_id, track_id, uri, name, artists, position, cached_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for i, track := range tracks {
		artists, err := json.Marshal(track.Artists)
		if err != nil {
			return fmt.Errorf("failed to encode artists for %s: %w", track.ID, err)
		}
		if _, err := stmt.Exec(userID, track.ID, track.URI, track.Name, string(artists), i, now); err != nil {
			return fmt.Errorf("failed to insert track %s: %w", track.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}

	return nil
}

// GetForUser returns a user's snapshot in original library order, with the
// time the snapshot was taken. An empty snapshot returns no error.
func (r *LibraryRepository) GetForUser(userID string) ([]catalog.Track, time.Time, error) {
	rows, err := r.db.Query(`
		SELECT track_id, uri, name, artists, cached_at
		FROM library_tracks
		WHERE user_id = ?
		ORDER BY position ASC
	`, userID)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to query snapshot: %w", err)
	}
	defer rows.Close()

	var (
		tracks   []catalog.Track
		cachedAt time.Time
	)
	for rows.Next() {
		var (
			track       catalog.Track
			artistsJSON string
		)
		if err := rows.Scan(&track.ID, &track.URI, &track.Name, &artistsJSON, &cachedAt); err != nil {
			return nil, time.Time{}, fmt.Errorf("failed to scan track: %w", err)
		}
		if err := json.Unmarshal([]byte(artistsJSON), &track.Artists); err != nil {
			return nil, time.Time{}, fmt.Errorf("failed to decode artists: %w", err)
		}
		tracks = append(tracks, track)
	}

	if err := rows.Err(); err != nil {
		return nil, time.Time{}, fmt.Errorf("row iteration error: %w", err)
	}

	return tracks, cachedAt, nil
}

// Count returns the number of cached tracks for a user.
func (r *LibraryRepository) Count(userID string) (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM library_tracks WHERE user_id = ?", userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count snapshot: %w", err)
	}
	return count, nil
}

// Clear removes a user's snapshot.
func (r *LibraryRepository) Clear(userID string) error {
	if _, err := r.db.Exec("DELETE FROM library_tracks WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("failed to clear snapshot: %w", err)
	}
	return nil
}
