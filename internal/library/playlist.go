package library

import (
	"fmt"
	"strings"

	"github.com/rxtnnn/harmony/internal/models"
	"github.com/rxtnnn/harmony/internal/shared"
)

// CreatePlaylist inserts a new named playlist and returns its id.
//
// Names consisting only of whitespace fail with [shared.ErrValidation].
// Name uniqueness is not enforced; duplicates are allowed.
func (s *Store) CreatePlaylist(name string) (int64, error) {
	if err := s.ensureInit(); err != nil {
		return 0, err
	}

	if strings.TrimSpace(name) == "" {
		return 0, fmt.Errorf("%w: playlist name is empty", shared.ErrValidation)
	}

	ts := now()
	res, err := s.db.Exec(
		`INSERT INTO playlists (name, created_at, updated_at) VALUES (?, ?, ?)`,
		name, ts, ts,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert playlist: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get playlist id: %w", err)
	}

	return id, nil
}

// RenamePlaylist updates a playlist's name. The updated_at column follows
// via the rename trigger. Missing playlists fail with [shared.ErrNotFound].
func (s *Store) RenamePlaylist(id int64, name string) error {
	if err := s.ensureInit(); err != nil {
		return err
	}

	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: playlist name is empty", shared.ErrValidation)
	}

	res, err := s.db.Exec(`UPDATE playlists SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return fmt.Errorf("failed to rename playlist: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: playlist %d", shared.ErrNotFound, id)
	}

	return nil
}

// Playlists retrieves all playlists, most recently created first.
func (s *Store) Playlists() ([]models.Playlist, error) {
	if err := s.ensureInit(); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`
		SELECT id, name, created_at, updated_at
		FROM playlists
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	defer rows.Close()

	var playlists []models.Playlist
	for rows.Next() {
		var (
			p                    models.Playlist
			createdAt, updatedAt string
		)
		if err := rows.Scan(&p.ID, &p.Name, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan playlist: %w", err)
		}
		p.CreatedAt = parseTime(createdAt)
		p.UpdatedAt = parseTime(updatedAt)
		playlists = append(playlists, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return playlists, nil
}

// AddTrackToPlaylist appends a track to a playlist, assigning the next
// position as max(existing position)+1 (0 for an empty playlist).
//
// Membership is keyed by (playlist, track): re-adding an existing pair
// replaces its position rather than duplicating the row.
func (s *Store) AddTrackToPlaylist(playlistID int64, trackID string) error {
	if err := s.ensureInit(); err != nil {
		return err
	}

	var maxPos *int
	err := s.db.QueryRow(
		`SELECT MAX(position) FROM playlist_tracks WHERE playlist_id = ?`,
		playlistID,
	).Scan(&maxPos)
	if err != nil {
		return fmt.Errorf("failed to query max position: %w", err)
	}

	position := 0
	if maxPos != nil {
		position = *maxPos + 1
	}

	return s.AddTrackToPlaylistAt(playlistID, trackID, position)
}

// AddTrackToPlaylistAt upserts playlist membership at an explicit position.
func (s *Store) AddTrackToPlaylistAt(playlistID int64, trackID string, position int) error {
	if err := s.ensureInit(); err != nil {
		return err
	}

	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO playlist_tracks (playlist_id, track_id, position) VALUES (?, ?, ?)`,
		playlistID, trackID, position,
	)
	if err != nil {
		return fmt.Errorf("failed to insert playlist track: %w", err)
	}

	return nil
}

// PlaylistTracks retrieves a playlist's tracks ordered by position
// ascending. A missing playlist yields an empty slice, not an error.
func (s *Store) PlaylistTracks(playlistID int64) ([]models.Track, error) {
	if err := s.ensureInit(); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`
		SELECT `+trackColumns+`
		FROM tracks t
		JOIN playlist_tracks pt ON pt.track_id = t.id
		LEFT JOIN downloaded_music dm ON dm.track_id = t.id
		WHERE pt.playlist_id = ?
		ORDER BY pt.position ASC
	`, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlist tracks: %w", err)
	}
	defer rows.Close()

	return scanTracks(rows)
}
