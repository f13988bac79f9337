package importer

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rxtnnn/harmony/internal/library"
	"github.com/rxtnnn/harmony/internal/shared"
)

func setupImporter(t *testing.T) (*Importer, *library.Store, string) {
	t.Helper()

	cfg := shared.DefaultConfig()
	cfg.Database.Path = ":memory:"

	logger := shared.NewLogger(io.Discard)
	musicDir := filepath.Join(t.TempDir(), "music")

	store := library.New(cfg, musicDir, logger)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	im := New(store, musicDir, Options{
		Probe: func(string, time.Duration) float64 { return 30 },
	}, logger)
	return im, store, musicDir
}

// writeSource drops a throwaway file into its own temp dir and returns its
// path. The content is not valid audio; the fake probe never decodes it.
func writeSource(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("not really audio"), 0o644); err != nil {
		t.Fatalf("failed to write source file: %v", err)
	}
	return path
}

// writeTaggedSource writes a file carrying an ID3v2.3 TIT2 frame so the
// embedded title differs from the filename.
func writeTaggedSource(t *testing.T, dir, name, title string) string {
	t.Helper()

	payload := append([]byte{0}, []byte(title)...)
	frame := append([]byte("TIT2"), 0, 0, 0, byte(len(payload)), 0, 0)
	frame = append(frame, payload...)

	size := len(frame)
	data := []byte{'I', 'D', '3', 3, 0, 0,
		byte(size >> 21 & 0x7f), byte(size >> 14 & 0x7f), byte(size >> 7 & 0x7f), byte(size & 0x7f)}
	data = append(data, frame...)
	data = append(data, []byte("not really audio")...)

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write tagged source: %v", err)
	}
	return path
}

func TestImportBatch(t *testing.T) {
	t.Run("copies, registers, and probes each file", func(t *testing.T) {
		im, store, musicDir := setupImporter(t)
		src := t.TempDir()

		res, err := im.ImportBatch([]string{
			writeSource(t, src, "morning.mp3"),
			writeSource(t, src, "evening.wav"),
		})
		if err != nil {
			t.Fatalf("failed to import: %v", err)
		}
		if len(res.Imported) != 2 || len(res.Skipped) != 0 || len(res.Failed) != 0 {
			t.Fatalf("result = %+v, want 2 imported", res)
		}

		for _, track := range res.Imported {
			if !track.IsLocal {
				t.Errorf("track %s not marked local", track.ID)
			}
			if !strings.HasPrefix(track.ID, "local-") {
				t.Errorf("track id %q missing local prefix", track.ID)
			}
			if track.Duration != 30 {
				t.Errorf("track duration = %v, want 30", track.Duration)
			}
			if track.Artist != "Local File" || track.Album != "My Music" {
				t.Errorf("fallback metadata not applied: %+v", track)
			}
			if _, err := os.Stat(filepath.Join(musicDir, track.LocalPath)); err != nil {
				t.Errorf("copied file missing: %v", err)
			}
		}

		first := res.Imported[0]
		if first.Title != "morning" {
			t.Errorf("title = %q, want name-derived %q", first.Title, "morning")
		}
		if first.LocalPath != "morning.mp3" {
			t.Errorf("local path = %q, want the normalized name %q", first.LocalPath, "morning.mp3")
		}

		local, err := store.LocalTracks()
		if err != nil {
			t.Fatalf("failed to list local tracks: %v", err)
		}
		if len(local) != 2 {
			t.Errorf("library has %d local tracks, want 2", len(local))
		}
	})

	t.Run("same name different case and extension is one track", func(t *testing.T) {
		im, _, _ := setupImporter(t)
		src := t.TempDir()

		res, err := im.ImportBatch([]string{
			writeSource(t, src, "song.mp3"),
			writeSource(t, src, "SONG.wav"),
		})
		if err != nil {
			t.Fatalf("failed to import: %v", err)
		}
		if len(res.Imported) != 1 {
			t.Errorf("imported %d, want 1", len(res.Imported))
		}
		if len(res.Skipped) != 1 || normalizeKey(res.Skipped[0]) != "song" {
			t.Errorf("skipped = %v, want the later duplicate", res.Skipped)
		}
	})

	t.Run("already imported names are skipped across batches", func(t *testing.T) {
		im, _, _ := setupImporter(t)
		src := t.TempDir()

		if _, err := im.ImportBatch([]string{writeSource(t, src, "anthem.mp3")}); err != nil {
			t.Fatalf("failed to import: %v", err)
		}

		res, err := im.ImportBatch([]string{writeSource(t, src, "Anthem.flac")})
		if err != nil {
			t.Fatalf("failed to import: %v", err)
		}
		if len(res.Imported) != 0 || len(res.Skipped) != 1 {
			t.Errorf("result = %+v, want 1 skipped", res)
		}
	})

	t.Run("tagged files still dedupe by filename across batches", func(t *testing.T) {
		im, _, _ := setupImporter(t)

		first, err := im.ImportBatch([]string{writeTaggedSource(t, t.TempDir(), "song.mp3", "Great Song")})
		if err != nil {
			t.Fatalf("failed to import: %v", err)
		}
		if len(first.Imported) != 1 {
			t.Fatalf("imported = %+v, want 1", first.Imported)
		}
		if got := first.Imported[0].Title; got != "Great Song" {
			t.Errorf("title = %q, want the tagged %q", got, "Great Song")
		}
		if got := first.Imported[0].LocalPath; got != "song.mp3" {
			t.Errorf("local path = %q, want %q", got, "song.mp3")
		}

		res, err := im.ImportBatch([]string{writeTaggedSource(t, t.TempDir(), "Song.mp3", "Great Song")})
		if err != nil {
			t.Fatalf("failed to import: %v", err)
		}
		if len(res.Imported) != 0 || len(res.Skipped) != 1 {
			t.Errorf("result = %+v, want 1 skipped", res)
		}
	})

	t.Run("a missing file fails alone", func(t *testing.T) {
		im, _, _ := setupImporter(t)
		src := t.TempDir()

		res, err := im.ImportBatch([]string{
			filepath.Join(src, "does-not-exist.mp3"),
			writeSource(t, src, "survivor.mp3"),
		})
		if err != nil {
			t.Fatalf("failed to import: %v", err)
		}
		if len(res.Failed) != 1 {
			t.Fatalf("failed = %+v, want 1", res.Failed)
		}
		if len(res.Imported) != 1 || res.Imported[0].Title != "survivor" {
			t.Errorf("imported = %+v, want survivor", res.Imported)
		}
	})

	t.Run("probe timeout leaves duration unknown", func(t *testing.T) {
		im, _, _ := setupImporter(t)
		im.probe = func(string, time.Duration) float64 { return 0 }
		src := t.TempDir()

		res, err := im.ImportBatch([]string{writeSource(t, src, "mystery.mp3")})
		if err != nil {
			t.Fatalf("failed to import: %v", err)
		}
		if len(res.Imported) != 1 || res.Imported[0].Duration != 0 {
			t.Errorf("result = %+v, want duration 0", res.Imported)
		}
	})
}
