package audio

import (
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rxtnnn/harmony/internal/library"
	"github.com/rxtnnn/harmony/internal/models"
	"github.com/rxtnnn/harmony/internal/session"
	"github.com/rxtnnn/harmony/internal/shared"
)

// fakeBackend records the calls a controller makes against a slot.
type fakeBackend struct {
	mu sync.Mutex

	source   string
	playing  bool
	pos      time.Duration
	dur      time.Duration
	loadErr  error
	startErr error

	loads    int
	starts   int
	stops    int
	releases int
	seeks    []time.Duration
}

func (f *fakeBackend) Load(src string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	if f.loadErr != nil {
		return f.loadErr
	}
	f.source = src
	return nil
}

func (f *fakeBackend) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts++
	if f.startErr != nil {
		return f.startErr
	}
	f.playing = true
	return nil
}

func (f *fakeBackend) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	f.playing = false
}

func (f *fakeBackend) Seek(pos time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seeks = append(f.seeks, pos)
	f.pos = pos
	return nil
}

func (f *fakeBackend) Position() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pos
}

func (f *fakeBackend) Duration() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dur
}

func (f *fakeBackend) Playing() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.playing
}

func (f *fakeBackend) Loaded() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.source != ""
}

func (f *fakeBackend) Release() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.releases++
	f.source = ""
	f.playing = false
	f.pos = 0
}

func (f *fakeBackend) setPos(pos time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pos = pos
}

func (f *fakeBackend) finish() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.playing = false
}

type harness struct {
	store  *library.Store
	sess   *session.Session
	remote *fakeBackend
	local  *fakeBackend
}

func setupController(t *testing.T, opts Options) (*Controller, *harness) {
	t.Helper()

	cfg := shared.DefaultConfig()
	cfg.Database.Path = ":memory:"

	logger := shared.NewLogger(io.Discard)
	store := library.New(cfg, t.TempDir(), logger)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	h := &harness{
		store:  store,
		sess:   session.New(store, logger),
		remote: &fakeBackend{},
		local:  &fakeBackend{},
	}
	c := NewController(store, h.sess, h.remote, h.local, opts, logger)
	t.Cleanup(c.Cleanup)
	return c, h
}

func remoteTrack(id string) models.Track {
	return models.Track{
		ID:         id,
		Title:      "Preview Song",
		Artist:     "Some Artist",
		Duration:   30,
		PreviewURL: "https://cdn.example.com/" + id + ".mp3",
		SpotifyID:  id,
	}
}

func localTrack(id string) models.Track {
	return models.Track{
		ID:         id,
		Title:      "Imported Song",
		Artist:     "Local File",
		Album:      "My Music",
		PreviewURL: "file:///data/music/" + id + ".mp3",
		IsLocal:    true,
		LocalPath:  id + ".mp3",
	}
}

func TestPlay(t *testing.T) {
	t.Run("switching tracks silences the other slot", func(t *testing.T) {
		c, h := setupController(t, Options{})

		if err := c.Play(remoteTrack("r1")); err != nil {
			t.Fatalf("failed to play remote track: %v", err)
		}
		if !h.remote.Playing() {
			t.Fatal("remote slot should be playing")
		}

		if err := c.Play(localTrack("l1")); err != nil {
			t.Fatalf("failed to play local track: %v", err)
		}
		if h.remote.Playing() {
			t.Error("remote slot still playing after switch")
		}
		if h.remote.Loaded() {
			t.Error("remote slot not released after switch")
		}
		if got := h.remote.Position(); got != 0 {
			t.Errorf("remote slot position = %v, want 0 after teardown", got)
		}
		if !h.local.Playing() {
			t.Error("local slot should be playing")
		}
		if got := c.State(); got != Playing {
			t.Errorf("state = %v, want %v", got, Playing)
		}
	})

	t.Run("remote track without preview is rejected", func(t *testing.T) {
		c, h := setupController(t, Options{})

		track := remoteTrack("r1")
		track.PreviewURL = ""
		err := c.Play(track)
		if !errors.Is(err, shared.ErrNoPreview) {
			t.Fatalf("err = %v, want ErrNoPreview", err)
		}
		if got := c.State(); got != Idle {
			t.Errorf("state = %v, want %v", got, Idle)
		}
		if h.remote.loads != 0 {
			t.Errorf("remote slot loaded %d times, want 0", h.remote.loads)
		}
	})

	t.Run("load failures surface as playback errors", func(t *testing.T) {
		c, h := setupController(t, Options{})

		h.local.loadErr = errors.New("corrupt file")
		err := c.Play(localTrack("l1"))
		if !errors.Is(err, shared.ErrPlayback) {
			t.Fatalf("err = %v, want ErrPlayback", err)
		}
		if got := c.State(); got != Idle {
			t.Errorf("state = %v, want %v", got, Idle)
		}
	})

	t.Run("played track becomes the last played", func(t *testing.T) {
		c, h := setupController(t, Options{})

		if err := c.Play(remoteTrack("r1")); err != nil {
			t.Fatalf("failed to play: %v", err)
		}

		got, ok, err := h.sess.LastPlayed()
		if err != nil {
			t.Fatalf("failed to read last played: %v", err)
		}
		if !ok || got.ID != "r1" {
			t.Errorf("last played = %+v ok=%v, want r1", got, ok)
		}
	})
}

func TestPauseResume(t *testing.T) {
	t.Run("pause records the position, resume restores it", func(t *testing.T) {
		c, h := setupController(t, Options{})

		if err := c.Play(localTrack("l1")); err != nil {
			t.Fatalf("failed to play: %v", err)
		}
		h.local.setPos(42 * time.Second)

		c.Pause()
		if got := c.State(); got != Paused {
			t.Fatalf("state = %v, want %v", got, Paused)
		}
		if h.local.Playing() {
			t.Error("local slot still playing after pause")
		}

		seconds, ok, err := h.sess.Position("l1")
		if err != nil || !ok {
			t.Fatalf("position not persisted: ok=%v err=%v", ok, err)
		}
		if seconds != 42 {
			t.Errorf("persisted position = %v, want 42", seconds)
		}

		if err := c.Resume(); err != nil {
			t.Fatalf("failed to resume: %v", err)
		}
		if got := h.local.Position(); got != 42*time.Second {
			t.Errorf("resume position = %v, want 42s", got)
		}
		if !h.local.Playing() {
			t.Error("local slot should be playing after resume")
		}
	})

	t.Run("pause while not playing is a no-op", func(t *testing.T) {
		c, h := setupController(t, Options{})

		c.Pause()
		if got := c.State(); got != Idle {
			t.Errorf("state = %v, want %v", got, Idle)
		}
		if h.local.stops != 0 || h.remote.stops != 0 {
			t.Error("pause touched backends with nothing playing")
		}
	})

	t.Run("resume without a track fails", func(t *testing.T) {
		c, _ := setupController(t, Options{})

		if err := c.Resume(); !errors.Is(err, shared.ErrInvalidOperation) {
			t.Errorf("err = %v, want ErrInvalidOperation", err)
		}
	})

	t.Run("explicit position wins over the recorded one", func(t *testing.T) {
		c, h := setupController(t, Options{})

		if err := c.Play(localTrack("l1")); err != nil {
			t.Fatalf("failed to play: %v", err)
		}
		h.local.setPos(42 * time.Second)
		c.Pause()

		if err := c.ResumeAt(10 * time.Second); err != nil {
			t.Fatalf("failed to resume: %v", err)
		}
		if got := h.local.Position(); got != 10*time.Second {
			t.Errorf("resume position = %v, want 10s", got)
		}
	})
}

func TestRestoreAcrossRestart(t *testing.T) {
	c, h := setupController(t, Options{})

	track := localTrack("l1")
	if err := h.store.SaveLocalMusic(track, track.LocalPath); err != nil {
		t.Fatalf("failed to save local track: %v", err)
	}
	if err := h.sess.SaveLastPlayed(track); err != nil {
		t.Fatalf("failed to save last played: %v", err)
	}
	if err := h.sess.SavePosition(track.ID, 42); err != nil {
		t.Fatalf("failed to save position: %v", err)
	}

	// A fresh controller over the same stores stands in for a restart.
	restarted := NewController(h.store, h.sess, h.remote, h.local, Options{}, shared.NewLogger(io.Discard))
	defer restarted.Cleanup()
	_ = c

	got, ok := restarted.Current()
	if !ok || got.ID != "l1" {
		t.Fatalf("current = %+v ok=%v, want restored l1", got, ok)
	}
	if restarted.State() != Idle {
		t.Fatal("restored track must not autoplay")
	}

	if err := restarted.Resume(); err != nil {
		t.Fatalf("failed to resume: %v", err)
	}
	if h.local.loads != 1 {
		t.Errorf("local slot loaded %d times, want 1", h.local.loads)
	}
	if got := h.local.Position(); got != 42*time.Second {
		t.Errorf("resume position = %v, want 42s", got)
	}
}

func TestTrackCompletion(t *testing.T) {
	finished := make(chan struct{})
	var once sync.Once
	c, h := setupController(t, Options{
		Tick:       5 * time.Millisecond,
		OnFinished: func() { once.Do(func() { close(finished) }) },
	})

	if err := c.Play(localTrack("l1")); err != nil {
		t.Fatalf("failed to play: %v", err)
	}
	h.local.finish()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("completion hook never fired")
	}
}

func TestSeek(t *testing.T) {
	c, h := setupController(t, Options{})

	if err := c.Play(localTrack("l1")); err != nil {
		t.Fatalf("failed to play: %v", err)
	}
	if err := c.Seek(10 * time.Second); err != nil {
		t.Fatalf("failed to seek: %v", err)
	}
	if got := h.local.Position(); got != 10*time.Second {
		t.Errorf("position = %v, want 10s", got)
	}

	// The seek target doubles as the resume point.
	c.Pause()
	seconds, ok, err := h.sess.Position("l1")
	if err != nil || !ok {
		t.Fatalf("position not persisted: ok=%v err=%v", ok, err)
	}
	if seconds != 10 {
		t.Errorf("persisted position = %v, want 10", seconds)
	}
}

func TestToggleLike(t *testing.T) {
	c, h := setupController(t, Options{})

	track := remoteTrack("r1")
	if err := h.store.SaveTrack(track); err != nil {
		t.Fatalf("failed to save track: %v", err)
	}
	if err := c.Play(track); err != nil {
		t.Fatalf("failed to play: %v", err)
	}

	if err := c.ToggleLike(&track); err != nil {
		t.Fatalf("failed to toggle like: %v", err)
	}
	if !track.Liked {
		t.Error("track flag not flipped")
	}
	if cur, _ := c.Current(); !cur.Liked {
		t.Error("current track flag not mirrored")
	}

	liked, err := h.store.LikedTracks()
	if err != nil {
		t.Fatalf("failed to list liked tracks: %v", err)
	}
	if len(liked) != 1 || liked[0].ID != "r1" {
		t.Fatalf("liked tracks = %+v, want [r1]", liked)
	}
}

func TestCleanup(t *testing.T) {
	t.Run("idempotent", func(t *testing.T) {
		c, h := setupController(t, Options{})

		if err := c.Play(localTrack("l1")); err != nil {
			t.Fatalf("failed to play: %v", err)
		}
		c.Cleanup()
		c.Cleanup()

		if h.local.Playing() || h.local.Loaded() {
			t.Error("local slot not torn down")
		}
		if got := c.State(); got != Idle {
			t.Errorf("state = %v, want %v", got, Idle)
		}
	})

	t.Run("clear current track forgets the resume entry", func(t *testing.T) {
		c, h := setupController(t, Options{})

		track := localTrack("l1")
		if err := h.sess.SaveLastPlayed(track); err != nil {
			t.Fatalf("failed to save last played: %v", err)
		}
		if err := c.Play(track); err != nil {
			t.Fatalf("failed to play: %v", err)
		}

		c.ClearCurrentTrack()
		if _, ok := c.Current(); ok {
			t.Error("current track not cleared")
		}
		if _, ok, err := h.sess.LastPlayed(); err != nil {
			t.Fatalf("failed to read last played: %v", err)
		} else if ok {
			t.Error("last played entry not cleared")
		}
	})
}
