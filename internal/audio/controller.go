package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/rxtnnn/harmony/internal/library"
	"github.com/rxtnnn/harmony/internal/models"
	"github.com/rxtnnn/harmony/internal/session"
	"github.com/rxtnnn/harmony/internal/shared"
)

// Update is a snapshot of the controller published to subscribers.
type Update struct {
	Track    *models.Track
	State    State
	Position time.Duration
	Duration time.Duration
}

// Controller coordinates the remote and local backends, the resume store,
// and the library. All exported methods are safe for concurrent use.
type Controller struct {
	mu sync.Mutex

	store  *library.Store
	sess   *session.Session
	logger *log.Logger

	remote Backend
	local  Backend

	state   State
	current *models.Track

	saved    time.Duration
	hasSaved bool

	tick       time.Duration
	tickStop   chan struct{}
	onFinished func()

	subs []chan Update
}

// Options carries the controller's tunables.
type Options struct {
	// Tick is the interval between position updates while playing.
	Tick time.Duration

	// OnFinished is invoked, without the controller lock held, when the
	// active track plays to completion.
	OnFinished func()
}

// NewController wires the backends to the library and resume stores. The
// last played track, if any, is restored as the current track without
// starting playback.
func NewController(store *library.Store, sess *session.Session, remote, local Backend, opts Options, logger *log.Logger) *Controller {
	if opts.Tick <= 0 {
		opts.Tick = 500 * time.Millisecond
	}
	c := &Controller{
		store:      store,
		sess:       sess,
		logger:     logger,
		remote:     remote,
		local:      local,
		state:      Idle,
		tick:       opts.Tick,
		onFinished: opts.OnFinished,
	}
	if t, ok, err := sess.LastPlayed(); err != nil {
		logger.Warn("failed to restore last played track", "error", err)
	} else if ok {
		c.current = &t
	}
	return c
}

// SetOnFinished replaces the completion hook.
func (c *Controller) SetOnFinished(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onFinished = fn
}

// Subscribe returns a channel of state snapshots. Publishes never block;
// a subscriber that falls behind misses intermediate updates.
func (c *Controller) Subscribe() <-chan Update {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := make(chan Update, 16)
	c.subs = append(c.subs, ch)
	return ch
}

// Current returns a copy of the current track, if any.
func (c *Controller) Current() (models.Track, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return models.Track{}, false
	}
	return *c.current, true
}

// State returns the playback state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Position reports the active backend's playback position.
func (c *Controller) Position() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if b := c.activeBackendLocked(); b != nil {
		return b.Position()
	}
	return 0
}

// Duration reports the length of the loaded track, 0 if unknown.
func (c *Controller) Duration() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if b := c.activeBackendLocked(); b != nil {
		return b.Duration()
	}
	return 0
}

// Play tears down any ongoing playback and starts the given track from the
// beginning. Remote tracks without a preview source fail with
// [shared.ErrNoPreview] and leave the controller idle.
func (c *Controller) Play(track models.Track) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playLocked(track)
}

func (c *Controller) playLocked(track models.Track) error {
	c.cleanupLocked()

	t := track
	c.current = &t
	c.state = Loading
	c.publishLocked()

	// Persistence failures must not fail playback.
	if err := c.sess.SaveLastPlayed(t); err != nil {
		c.logger.Warn("failed to persist last played track", "id", t.ID, "error", err)
	}

	src, err := c.sourceFor(t)
	if err != nil {
		c.state = Idle
		c.publishLocked()
		return err
	}

	b := c.backendFor(t)
	if err := b.Load(src); err != nil {
		c.state = Idle
		c.publishLocked()
		return fmt.Errorf("%w: load %q: %v", shared.ErrPlayback, t.Title, err)
	}
	if err := b.Start(); err != nil {
		b.Release()
		c.state = Idle
		c.publishLocked()
		return fmt.Errorf("%w: start %q: %v", shared.ErrPlayback, t.Title, err)
	}

	c.state = Playing
	c.startTickLocked()
	c.publishLocked()
	return nil
}

// Pause records the playback position, both in memory and in the resume
// store, and halts the active backend. Pausing while not playing is a no-op.
func (c *Controller) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pauseLocked()
}

func (c *Controller) pauseLocked() {
	if c.state != Playing || c.current == nil {
		return
	}
	b := c.activeBackendLocked()
	pos := b.Position()
	c.saved = pos
	c.hasSaved = true
	if err := c.sess.SavePosition(c.current.ID, pos.Seconds()); err != nil {
		c.logger.Warn("failed to persist playback position", "id", c.current.ID, "error", err)
	}
	b.Stop()
	c.stopTickLocked()
	c.state = Paused
	c.publishLocked()
}

// Resume continues playback of the current track from the in-memory
// position, falling back to the persisted one when the process was
// restarted in between. Resuming with no current track fails with
// [shared.ErrInvalidOperation].
func (c *Controller) Resume() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resumeLocked(nil)
}

// ResumeAt is Resume from an explicit position.
func (c *Controller) ResumeAt(pos time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resumeLocked(&pos)
}

func (c *Controller) resumeLocked(explicit *time.Duration) error {
	if c.current == nil {
		return fmt.Errorf("%w: no track to resume", shared.ErrInvalidOperation)
	}
	t := *c.current

	b := c.backendFor(t)
	if !b.Loaded() {
		src, err := c.sourceFor(t)
		if err != nil {
			return err
		}
		if err := b.Load(src); err != nil {
			return fmt.Errorf("%w: load %q: %v", shared.ErrPlayback, t.Title, err)
		}
	}

	pos, ok := c.resumePositionLocked(explicit, t.ID)
	if ok {
		if err := b.Seek(pos); err != nil {
			return fmt.Errorf("%w: seek %q: %v", shared.ErrPlayback, t.Title, err)
		}
	}
	if err := b.Start(); err != nil {
		return fmt.Errorf("%w: start %q: %v", shared.ErrPlayback, t.Title, err)
	}

	c.state = Playing
	c.startTickLocked()
	c.publishLocked()
	return nil
}

func (c *Controller) resumePositionLocked(explicit *time.Duration, trackID string) (time.Duration, bool) {
	if explicit != nil {
		return *explicit, true
	}
	if c.hasSaved {
		return c.saved, true
	}
	seconds, ok, err := c.sess.Position(trackID)
	if err != nil {
		c.logger.Warn("failed to read persisted position", "id", trackID, "error", err)
		return 0, false
	}
	if !ok {
		return 0, false
	}
	return time.Duration(seconds * float64(time.Second)), true
}

// TogglePlay pauses when playing, resumes when paused, and restarts the
// current track when idle with one set.
func (c *Controller) TogglePlay() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case Playing:
		c.pauseLocked()
		return nil
	case Paused:
		return c.resumeLocked(nil)
	default:
		if c.current == nil {
			return fmt.Errorf("%w: no track to play", shared.ErrInvalidOperation)
		}
		return c.resumeLocked(nil)
	}
}

// Seek moves the playback position of the current track and records it as
// the resume point.
func (c *Controller) Seek(pos time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return fmt.Errorf("%w: no track to seek", shared.ErrInvalidOperation)
	}
	b := c.activeBackendLocked()
	if err := b.Seek(pos); err != nil {
		return fmt.Errorf("%w: seek %q: %v", shared.ErrPlayback, c.current.Title, err)
	}
	c.saved = pos
	c.hasSaved = true
	c.publishLocked()
	return nil
}

// ToggleLike flips the track's liked flag in the library and mirrors the
// change onto the current track when it is the same one.
func (c *Controller) ToggleLike(track *models.Track) error {
	liked := !track.Liked
	if err := c.store.ToggleLiked(track.ID, liked); err != nil {
		return err
	}
	track.Liked = liked

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != nil && c.current.ID == track.ID {
		c.current.Liked = liked
		c.publishLocked()
	}
	return nil
}

// ClearCurrentTrack stops playback, forgets the current track, and removes
// it from the resume store.
func (c *Controller) ClearCurrentTrack() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cleanupLocked()
	c.current = nil
	c.state = Idle
	if err := c.sess.ClearLastPlayed(); err != nil {
		c.logger.Warn("failed to clear last played track", "error", err)
	}
	c.publishLocked()
}

// Cleanup stops both backends, rewinds them, and releases their buffers.
// Safe to call repeatedly.
func (c *Controller) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cleanupLocked()
	c.state = Idle
	c.publishLocked()
}

func (c *Controller) cleanupLocked() {
	c.stopTickLocked()
	for _, b := range []Backend{c.remote, c.local} {
		if b == nil {
			continue
		}
		b.Stop()
		if err := b.Seek(0); err != nil {
			c.logger.Debug("rewind during cleanup failed", "error", err)
		}
		b.Release()
	}
	c.saved = 0
	c.hasSaved = false
}

func (c *Controller) backendFor(t models.Track) Backend {
	if t.IsLocal {
		return c.local
	}
	return c.remote
}

func (c *Controller) activeBackendLocked() Backend {
	if c.current == nil {
		return nil
	}
	return c.backendFor(*c.current)
}

// sourceFor resolves the backend source for a track. Local tracks play
// from their imported file, remote ones from the preview stream.
func (c *Controller) sourceFor(t models.Track) (string, error) {
	if t.IsLocal {
		if t.LocalPath != "" {
			return t.LocalPath, nil
		}
		if t.PreviewURL != "" {
			return t.PreviewURL, nil
		}
		return "", fmt.Errorf("%w: local track %q has no file", shared.ErrNoPreview, t.Title)
	}
	if t.PreviewURL == "" {
		return "", fmt.Errorf("%w: %q", shared.ErrNoPreview, t.Title)
	}
	return t.PreviewURL, nil
}

func (c *Controller) startTickLocked() {
	if c.tickStop != nil {
		return
	}
	stop := make(chan struct{})
	c.tickStop = stop
	go c.tickLoop(stop)
}

func (c *Controller) stopTickLocked() {
	if c.tickStop != nil {
		close(c.tickStop)
		c.tickStop = nil
	}
}

func (c *Controller) tickLoop(stop chan struct{}) {
	ticker := time.NewTicker(c.tick)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			c.onTick()
		}
	}
}

// onTick publishes a position update and detects track completion by the
// active backend going silent on its own.
func (c *Controller) onTick() {
	c.mu.Lock()
	if c.state != Playing {
		c.mu.Unlock()
		return
	}
	b := c.activeBackendLocked()
	if b == nil {
		c.mu.Unlock()
		return
	}
	if b.Playing() {
		c.publishLocked()
		c.mu.Unlock()
		return
	}

	c.stopTickLocked()
	c.state = Idle
	c.saved = 0
	c.hasSaved = false
	fn := c.onFinished
	c.publishLocked()
	c.mu.Unlock()

	if fn != nil {
		fn()
	}
}

func (c *Controller) publishLocked() {
	u := Update{State: c.state}
	if c.current != nil {
		t := *c.current
		u.Track = &t
	}
	if b := c.activeBackendLocked(); b != nil {
		u.Position = b.Position()
		u.Duration = b.Duration()
	}
	for _, ch := range c.subs {
		select {
		case ch <- u:
		default:
		}
	}
}
