package library

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rxtnnn/harmony/internal/models"
	"github.com/rxtnnn/harmony/internal/shared"
)

// trackColumns is the shared select list for track projections. Every track
// query left-joins downloaded_music so local tracks surface their stored
// relative path.
const trackColumns = `t.id, t.title, t.artist, t.album, t.duration,
	t.image_url, t.preview_url, t.spotify_id, t.liked, t.is_local,
	COALESCE(dm.file_path, '')`

// scanTracks drains a track query into a slice.
func scanTracks(rows *sql.Rows) ([]models.Track, error) {
	var tracks []models.Track
	for rows.Next() {
		var t models.Track
		err := rows.Scan(
			&t.ID, &t.Title, &t.Artist, &t.Album, &t.Duration,
			&t.ImageURL, &t.PreviewURL, &t.SpotifyID, &t.Liked, &t.IsLocal,
			&t.LocalPath,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan track: %w", err)
		}
		tracks = append(tracks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return tracks, nil
}

// SaveTrack upserts a track by primary key with overwrite semantics.
func (s *Store) SaveTrack(t models.Track) error {
	if err := s.ensureInit(); err != nil {
		return err
	}

	return s.saveTrack(s.db, t)
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func (s *Store) saveTrack(e execer, t models.Track) error {
	_, err := e.Exec(`
		INSERT OR REPLACE INTO tracks
			(id, title, artist, album, duration, image_url, preview_url, spotify_id, liked, is_local)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.Title, t.Artist, t.Album, t.Duration, t.ImageURL, t.PreviewURL, t.SpotifyID, t.Liked, t.IsLocal)
	if err != nil {
		return fmt.Errorf("failed to upsert track: %w", err)
	}
	return nil
}

// Track retrieves a single track by id, failing with [shared.ErrNotFound]
// when absent.
func (s *Store) Track(id string) (models.Track, error) {
	if err := s.ensureInit(); err != nil {
		return models.Track{}, err
	}

	var t models.Track
	err := s.db.QueryRow(`
		SELECT `+trackColumns+`
		FROM tracks t
		LEFT JOIN downloaded_music dm ON dm.track_id = t.id
		WHERE t.id = ?
	`, id).Scan(
		&t.ID, &t.Title, &t.Artist, &t.Album, &t.Duration,
		&t.ImageURL, &t.PreviewURL, &t.SpotifyID, &t.Liked, &t.IsLocal,
		&t.LocalPath,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Track{}, fmt.Errorf("%w: track %s", shared.ErrNotFound, id)
	}
	if err != nil {
		return models.Track{}, fmt.Errorf("failed to scan track: %w", err)
	}

	return t, nil
}

// AddLiked marks a track as liked, inserting the liked_music row and setting
// tracks.liked in one transaction. Calling it twice is a no-op the second
// time.
func (s *Store) AddLiked(trackID string) error {
	if err := s.ensureInit(); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT OR IGNORE INTO liked_music (track_id, liked_at) VALUES (?, ?)`,
		trackID, now(),
	); err != nil {
		return fmt.Errorf("failed to insert liked row: %w", err)
	}

	if _, err := tx.Exec(`UPDATE tracks SET liked = 1 WHERE id = ?`, trackID); err != nil {
		return fmt.Errorf("failed to set liked flag: %w", err)
	}

	return tx.Commit()
}

// RemoveLiked unmarks a liked track, removing the liked_music row and
// clearing tracks.liked in one transaction.
func (s *Store) RemoveLiked(trackID string) error {
	if err := s.ensureInit(); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM liked_music WHERE track_id = ?`, trackID); err != nil {
		return fmt.Errorf("failed to delete liked row: %w", err)
	}

	if _, err := tx.Exec(`UPDATE tracks SET liked = 0 WHERE id = ?`, trackID); err != nil {
		return fmt.Errorf("failed to clear liked flag: %w", err)
	}

	return tx.Commit()
}

// ToggleLiked dispatches on the desired final state, not the current one,
// so repeated calls with the same argument are idempotent.
func (s *Store) ToggleLiked(trackID string, liked bool) error {
	if liked {
		return s.AddLiked(trackID)
	}
	return s.RemoveLiked(trackID)
}

// LikedTracks retrieves all liked tracks, most recently liked first.
func (s *Store) LikedTracks() ([]models.Track, error) {
	if err := s.ensureInit(); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`
		SELECT ` + trackColumns + `
		FROM tracks t
		JOIN liked_music lm ON lm.track_id = t.id
		LEFT JOIN downloaded_music dm ON dm.track_id = t.id
		ORDER BY lm.liked_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query liked tracks: %w", err)
	}
	defer rows.Close()

	return scanTracks(rows)
}

// SaveLocalMusic persists an imported local track and its download record as
// one logical unit: a local track without a downloaded_music row must never
// be observable.
func (s *Store) SaveLocalMusic(t models.Track, filePath string) error {
	if err := s.ensureInit(); err != nil {
		return err
	}

	if t.PreviewURL == "" {
		return fmt.Errorf("%w: local track %s has no playable source", shared.ErrValidation, t.ID)
	}
	t.IsLocal = true

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.saveTrack(tx, t); err != nil {
		return err
	}

	if _, err := tx.Exec(`
		INSERT OR REPLACE INTO downloaded_music (track_id, file_uri, file_path, downloaded_at)
		VALUES (?, ?, ?, ?)
	`, t.ID, t.PreviewURL, filePath, now()); err != nil {
		return fmt.Errorf("failed to upsert download record: %w", err)
	}

	return tx.Commit()
}

// RemoveDownloaded deletes a track's download record only.
func (s *Store) RemoveDownloaded(trackID string) error {
	if err := s.ensureInit(); err != nil {
		return err
	}

	if _, err := s.db.Exec(`DELETE FROM downloaded_music WHERE track_id = ?`, trackID); err != nil {
		return fmt.Errorf("failed to delete download record: %w", err)
	}
	return nil
}

// DeleteLocalTrack removes an imported track and every dependent row
// (likes, download record, playlist membership) in one transaction, then
// best-effort deletes the stored file. File deletion failure is logged, not
// fatal; the database rows are gone either way.
//
// Fails with [shared.ErrNotFound] for unknown tracks and
// [shared.ErrInvalidOperation] for remote ones, leaving all rows untouched.
func (s *Store) DeleteLocalTrack(trackID string) error {
	if err := s.ensureInit(); err != nil {
		return err
	}

	t, err := s.Track(trackID)
	if err != nil {
		return err
	}
	if !t.IsLocal {
		return fmt.Errorf("%w: track %s is not a local track", shared.ErrInvalidOperation, trackID)
	}

	var filePath string
	err = s.db.QueryRow(
		`SELECT COALESCE(file_path, '') FROM downloaded_music WHERE track_id = ?`,
		trackID,
	).Scan(&filePath)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to query download record: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM playlist_tracks WHERE track_id = ?`,
		`DELETE FROM liked_music WHERE track_id = ?`,
		`DELETE FROM downloaded_music WHERE track_id = ?`,
		`DELETE FROM tracks WHERE id = ?`,
	} {
		if _, err := tx.Exec(stmt, trackID); err != nil {
			return fmt.Errorf("failed to delete track rows: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}

	if filePath != "" {
		full := filepath.Join(s.musicDir, filePath)
		if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("failed to delete stored file", "track", trackID, "path", full, "err", err)
		}
	}

	return nil
}

// LocalTracks retrieves all user-imported tracks.
func (s *Store) LocalTracks() ([]models.Track, error) {
	if err := s.ensureInit(); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`
		SELECT ` + trackColumns + `
		FROM tracks t
		LEFT JOIN downloaded_music dm ON dm.track_id = t.id
		WHERE t.is_local = 1
		ORDER BY t.title ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query local tracks: %w", err)
	}
	defer rows.Close()

	return scanTracks(rows)
}

// DownloadedTracksWithInfo retrieves full track rows for every download
// record, most recent first.
func (s *Store) DownloadedTracksWithInfo() ([]models.Track, error) {
	if err := s.ensureInit(); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`
		SELECT ` + trackColumns + `
		FROM tracks t
		JOIN downloaded_music dm ON dm.track_id = t.id
		ORDER BY dm.downloaded_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query downloaded tracks: %w", err)
	}
	defer rows.Close()

	return scanTracks(rows)
}

// LikedCount reports how many liked_music rows exist for a track. Used by
// consistency checks; a track is either liked once or not at all.
func (s *Store) LikedCount(trackID string) (int, error) {
	if err := s.ensureInit(); err != nil {
		return 0, err
	}

	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM liked_music WHERE track_id = ?`, trackID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count liked rows: %w", err)
	}
	return n, nil
}
