// Package session persists playback continuity state, the last-played track
// and per-track resume offsets, through the library settings table, so a
// restarted engine can republish where the listener left off.
package session

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/rxtnnn/harmony/internal/library"
	"github.com/rxtnnn/harmony/internal/models"
	"github.com/rxtnnn/harmony/internal/shared"
)

const lastPlayedKey = "last_played_track"

// positionKey is the settings key holding a track's resume offset in seconds.
func positionKey(trackID string) string {
	return "position_" + trackID
}

// Session reads and writes continuity state. Restores never auto-play;
// they only republish the saved track as current.
type Session struct {
	store  *library.Store
	logger *log.Logger
}

// New creates a Session over the given store.
func New(store *library.Store, logger *log.Logger) *Session {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Session{store: store, logger: logger}
}

// SaveLastPlayed records track as the most recently played.
func (s *Session) SaveLastPlayed(t models.Track) error {
	return s.store.Set(lastPlayedKey, t)
}

// ClearLastPlayed forgets the most recently played track.
func (s *Session) ClearLastPlayed() error {
	return s.store.Delete(lastPlayedKey)
}

// LastPlayed returns the saved last-played track, if any.
//
// A saved local track that no longer exists in the library is a dangling
// reference: it is silently discarded (and the stale setting cleared) rather
// than surfaced.
func (s *Session) LastPlayed() (models.Track, bool, error) {
	var t models.Track
	ok, err := s.store.Get(lastPlayedKey, &t)
	if err != nil || !ok {
		return models.Track{}, false, err
	}

	if t.IsLocal {
		if _, err := s.store.Track(t.ID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				s.logger.Debug("discarding dangling last-played reference", "track", t.ID)
				if err := s.ClearLastPlayed(); err != nil {
					s.logger.Warn("failed to clear stale last-played entry", "err", err)
				}
				return models.Track{}, false, nil
			}
			return models.Track{}, false, err
		}
	}

	return t, true, nil
}

// SavePosition persists a track's resume offset in seconds.
func (s *Session) SavePosition(trackID string, seconds float64) error {
	if trackID == "" {
		return fmt.Errorf("%w: track id is empty", shared.ErrValidation)
	}
	return s.store.Set(positionKey(trackID), seconds)
}

// Position returns a track's persisted resume offset in seconds, if one
// exists.
func (s *Session) Position(trackID string) (float64, bool, error) {
	var seconds float64
	ok, err := s.store.Get(positionKey(trackID), &seconds)
	if err != nil || !ok {
		return 0, false, err
	}
	return seconds, true, nil
}

// ClearPosition forgets a track's resume offset.
func (s *Session) ClearPosition(trackID string) error {
	return s.store.Delete(positionKey(trackID))
}
