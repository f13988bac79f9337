// Package queue sequences tracks for playback.
//
// A [Manager] holds an ordered list of tracks and a cursor, and drives a
// [Player] as the cursor moves. Both directions wrap around, so a queue
// behaves like a loop rather than a one-shot list.
package queue

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/rxtnnn/harmony/internal/models"
	"github.com/rxtnnn/harmony/internal/shared"
)

// Player is the slice of the playback controller the queue drives.
type Player interface {
	Play(track models.Track) error
	Position() time.Duration
	Seek(pos time.Duration) error
}

// Manager owns the playback order. Safe for concurrent use.
type Manager struct {
	mu     sync.Mutex
	player Player
	logger *log.Logger

	tracks []models.Track
	index  int

	// previousThreshold is how far into a track Previous restarts it
	// instead of stepping back.
	previousThreshold time.Duration
}

// New creates a Manager over the given player. A non-positive threshold
// falls back to 3 seconds.
func New(player Player, previousThreshold time.Duration, logger *log.Logger) *Manager {
	if previousThreshold <= 0 {
		previousThreshold = 3 * time.Second
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Manager{
		player:            player,
		logger:            logger,
		previousThreshold: previousThreshold,
	}
}

// SetQueue replaces the queue and starts playing the track at start.
// An out-of-range start falls back to the first track. An empty list
// clears the queue without touching playback.
func (m *Manager) SetQueue(tracks []models.Track, start int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tracks = append([]models.Track(nil), tracks...)
	if len(m.tracks) == 0 {
		m.index = 0
		return nil
	}
	if start < 0 || start >= len(m.tracks) {
		start = 0
	}
	m.index = start
	return m.playCurrentLocked()
}

// Clear empties the queue without touching playback.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tracks = nil
	m.index = 0
}

// Next advances the cursor, wrapping from the last track to the first.
func (m *Manager) Next() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.tracks) == 0 {
		return fmt.Errorf("%w: nothing queued", shared.ErrQueueEmpty)
	}
	m.index = (m.index + 1) % len(m.tracks)
	return m.playCurrentLocked()
}

// Previous restarts the current track when playback is past the threshold,
// otherwise steps back, wrapping from the first track to the last.
func (m *Manager) Previous() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.tracks) == 0 {
		return fmt.Errorf("%w: nothing queued", shared.ErrQueueEmpty)
	}
	if m.player.Position() > m.previousThreshold {
		if err := m.player.Seek(0); err != nil {
			return fmt.Errorf("%w: restart: %v", shared.ErrPlayback, err)
		}
		return nil
	}
	m.index = (m.index - 1 + len(m.tracks)) % len(m.tracks)
	return m.playCurrentLocked()
}

// Jump moves the cursor to the given index and plays it.
func (m *Manager) Jump(index int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if index < 0 || index >= len(m.tracks) {
		return fmt.Errorf("%w: index %d out of range", shared.ErrInvalidOperation, index)
	}
	m.index = index
	return m.playCurrentLocked()
}

// Current returns the track under the cursor, if any.
func (m *Manager) Current() (models.Track, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.tracks) == 0 {
		return models.Track{}, false
	}
	return m.tracks[m.index], true
}

// Tracks returns a copy of the queued tracks.
func (m *Manager) Tracks() []models.Track {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Track(nil), m.tracks...)
}

// Index returns the cursor position.
func (m *Manager) Index() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.index
}

// Len returns the number of queued tracks.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tracks)
}

func (m *Manager) playCurrentLocked() error {
	t := m.tracks[m.index]
	m.logger.Debug("playing queued track", "index", m.index, "id", t.ID, "title", t.Title)
	return m.player.Play(t)
}
