package audio

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
)

// backendSampleRate is the rate the speaker is initialized with. Every
// decoded stream is resampled to it, so sources with differing rates can
// share the one speaker.
const backendSampleRate = beep.SampleRate(44100)

var (
	speakerOnce sync.Once
	speakerErr  error
)

func initSpeaker() error {
	speakerOnce.Do(func() {
		speakerErr = speaker.Init(backendSampleRate, backendSampleRate.N(time.Second/10))
	})
	return speakerErr
}

// sourceFunc resolves a backend source string into a reader and the file
// extension used to pick a decoder.
type sourceFunc func(src string) (io.ReadCloser, string, error)

// beepBackend plays decoded audio through the shared beep speaker. The
// whole source is buffered in memory before decoding so the streamer can
// seek, which preview-sized files and typical local tracks afford.
type beepBackend struct {
	mu      sync.Mutex
	resolve sourceFunc

	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	playing  bool
	finished bool
}

// NewLocalBackend returns a backend that plays imported files. Relative
// sources resolve against musicDir; file:// prefixes are stripped.
func NewLocalBackend(musicDir string) Backend {
	return &beepBackend{resolve: func(src string) (io.ReadCloser, string, error) {
		path := strings.TrimPrefix(src, "file://")
		if !filepath.IsAbs(path) {
			path = filepath.Join(musicDir, path)
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, "", err
		}
		return f, strings.ToLower(filepath.Ext(path)), nil
	}}
}

// NewRemoteBackend returns a backend that streams preview URLs over HTTP.
func NewRemoteBackend(client *http.Client) Backend {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &beepBackend{resolve: func(src string) (io.ReadCloser, string, error) {
		resp, err := client.Get(src)
		if err != nil {
			return nil, "", err
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, "", fmt.Errorf("fetch %s: %s", src, resp.Status)
		}
		ext := ".mp3"
		if u, err := url.Parse(src); err == nil {
			if e := strings.ToLower(filepath.Ext(u.Path)); e != "" {
				ext = e
			}
		}
		return resp.Body, ext, nil
	}}
}

type bufferCloser struct{ *bytes.Reader }

func (bufferCloser) Close() error { return nil }

func decodeStream(r io.ReadCloser, ext string) (beep.StreamSeekCloser, beep.Format, error) {
	switch ext {
	case ".wav":
		return wav.Decode(r)
	case ".flac":
		return flac.Decode(r)
	case ".ogg", ".oga":
		return vorbis.Decode(r)
	default:
		return mp3.Decode(r)
	}
}

func (b *beepBackend) Load(src string) error {
	rc, ext, err := b.resolve(src)
	if err != nil {
		return err
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return err
	}

	streamer, format, err := decodeStream(bufferCloser{bytes.NewReader(data)}, ext)
	if err != nil {
		return fmt.Errorf("decode %s: %w", ext, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.releaseLocked()
	b.streamer = streamer
	b.format = format
	return nil
}

func (b *beepBackend) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.streamer == nil {
		return fmt.Errorf("no source loaded")
	}
	if err := initSpeaker(); err != nil {
		return err
	}

	if b.ctrl != nil {
		speaker.Lock()
		b.ctrl.Paused = false
		speaker.Unlock()
		b.playing = true
		return nil
	}

	b.finished = false
	resampled := beep.Resample(4, b.format.SampleRate, backendSampleRate, b.streamer)
	ctrl := &beep.Ctrl{Streamer: resampled}
	b.ctrl = ctrl
	speaker.Play(beep.Seq(ctrl, beep.Callback(b.onFinish(ctrl))))
	b.playing = true
	return nil
}

// onFinish builds the end-of-stream callback for ctrl. The speaker invokes
// callbacks while holding its own mutex, and the other methods here hold
// b.mu across speaker.Lock, so the state flip happens on a fresh goroutine
// and the callback itself never blocks.
func (b *beepBackend) onFinish(ctrl *beep.Ctrl) func() {
	return func() {
		go func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if b.ctrl == ctrl {
				b.playing = false
				b.finished = true
				b.ctrl = nil
			}
		}()
	}
}

func (b *beepBackend) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ctrl != nil {
		speaker.Lock()
		b.ctrl.Paused = true
		speaker.Unlock()
	}
	b.playing = false
}

func (b *beepBackend) Seek(pos time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.streamer == nil {
		return nil
	}
	n := b.format.SampleRate.N(pos)
	if n < 0 {
		n = 0
	}
	if l := b.streamer.Len(); n > l {
		n = l
	}
	speaker.Lock()
	err := b.streamer.Seek(n)
	speaker.Unlock()
	return err
}

func (b *beepBackend) Position() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.streamer == nil {
		return 0
	}
	speaker.Lock()
	n := b.streamer.Position()
	speaker.Unlock()
	return b.format.SampleRate.D(n)
}

func (b *beepBackend) Duration() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.streamer == nil {
		return 0
	}
	return b.format.SampleRate.D(b.streamer.Len())
}

func (b *beepBackend) Playing() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.playing && !b.finished
}

func (b *beepBackend) Loaded() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.streamer != nil
}

func (b *beepBackend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.releaseLocked()
}

func (b *beepBackend) releaseLocked() {
	if b.ctrl != nil {
		speaker.Lock()
		b.ctrl.Paused = true
		b.ctrl.Streamer = nil
		speaker.Unlock()
		b.ctrl = nil
	}
	if b.streamer != nil {
		b.streamer.Close()
		b.streamer = nil
	}
	b.playing = false
	b.finished = false
}

// ProbeDuration decodes just enough of the file at path to report its
// length. Files that cannot be decoded within the timeout report 0.
func ProbeDuration(path string, timeout time.Duration) float64 {
	type result struct{ seconds float64 }
	ch := make(chan result, 1)

	go func() {
		f, err := os.Open(path)
		if err != nil {
			ch <- result{0}
			return
		}
		streamer, format, err := decodeStream(f, strings.ToLower(filepath.Ext(path)))
		if err != nil {
			f.Close()
			ch <- result{0}
			return
		}
		d := format.SampleRate.D(streamer.Len())
		streamer.Close()
		ch <- result{d.Seconds()}
	}()

	select {
	case r := <-ch:
		return r.seconds
	case <-time.After(timeout):
		return 0
	}
}
