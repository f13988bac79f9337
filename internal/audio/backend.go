// Package audio implements the playback controller and its audio backends.
//
// The controller owns two backend slots, one for remote streaming previews
// and one for imported local files, selected per track by its origin. Only one
// slot ever produces sound at a time; the controller enforces that, not the
// backends. Observers receive state through a channel-based subscription.
package audio

import "time"

// State is the controller's playback state.
type State int

const (
	Idle State = iota
	Loading
	Playing
	Paused
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	}
	return "unknown"
}

// Backend abstracts a single playback slot.
//
// Load acquires whatever transient resources the source needs (network
// buffer, decoded file data); Release frees them. A backend must tolerate
// Stop/Seek/Release in any order and when nothing is loaded.
type Backend interface {
	// Load prepares the given source for playback.
	Load(src string) error

	// Start begins or restarts audible playback of the loaded source.
	Start() error

	// Stop halts audible playback without forgetting the loaded source.
	Stop()

	// Seek moves the playback position.
	Seek(pos time.Duration) error

	// Position reports the current playback position.
	Position() time.Duration

	// Duration reports the total length of the loaded source, 0 if unknown.
	Duration() time.Duration

	// Playing reports whether the slot is currently producing sound.
	Playing() bool

	// Loaded reports whether a source is currently loaded.
	Loaded() bool

	// Release frees transient buffers owned by the slot. Idempotent.
	Release()
}
