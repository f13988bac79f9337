// Package importer copies audio files into the managed music directory and
// registers them in the library.
//
// Files are deduplicated by a normalized name key, so "Song.mp3" and
// "song.wav" count as the same track. One bad file never fails the batch;
// it is recorded and the rest proceed.
package importer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dhowden/tag"

	"github.com/rxtnnn/harmony/internal/audio"
	"github.com/rxtnnn/harmony/internal/library"
	"github.com/rxtnnn/harmony/internal/models"
	"github.com/rxtnnn/harmony/internal/shared"
)

const (
	fallbackArtist = "Local File"
	fallbackAlbum  = "My Music"
)

// Probe reports the duration of the audio file at path in seconds, 0 when
// it cannot be determined within the timeout.
type Probe func(path string, timeout time.Duration) float64

// Failure pairs a source path with the error that kept it out.
type Failure struct {
	Path string
	Err  error
}

// Result summarizes a batch import.
type Result struct {
	Imported []models.Track
	Skipped  []string
	Failed   []Failure
}

// Importer brings external audio files into the library.
type Importer struct {
	store        *library.Store
	musicDir     string
	probe        Probe
	probeTimeout time.Duration
	logger       *log.Logger
}

// Options tunes an Importer. Zero values fall back to decoding probes with
// a 3 second timeout.
type Options struct {
	Probe        Probe
	ProbeTimeout time.Duration
}

// New creates an Importer that copies files into musicDir.
func New(store *library.Store, musicDir string, opts Options, logger *log.Logger) *Importer {
	if opts.Probe == nil {
		opts.Probe = audio.ProbeDuration
	}
	if opts.ProbeTimeout <= 0 {
		opts.ProbeTimeout = 3 * time.Second
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Importer{
		store:        store,
		musicDir:     musicDir,
		probe:        opts.Probe,
		probeTimeout: opts.ProbeTimeout,
		logger:       logger,
	}
}

// normalizeKey reduces a file name to its dedupe key: lowercased, extension
// stripped.
func normalizeKey(name string) string {
	base := filepath.Base(name)
	return strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))
}

// ImportBatch imports the given files. Files whose normalized name matches
// an already imported track, or an earlier file in the same batch, are
// skipped. Failures are per-file; the returned error covers only the
// inability to consult the library.
func (im *Importer) ImportBatch(paths []string) (Result, error) {
	var res Result

	existing, err := im.store.LocalTracks()
	if err != nil {
		return res, fmt.Errorf("failed to list local tracks: %w", err)
	}
	// Stored copies are named by their normalized source key, so the
	// paths on record are the dedupe set. Titles are not consulted; tags
	// may have rewritten them.
	seen := make(map[string]bool)
	for _, t := range existing {
		if t.LocalPath != "" {
			seen[normalizeKey(t.LocalPath)] = true
		}
	}

	if err := os.MkdirAll(im.musicDir, 0o755); err != nil {
		return res, fmt.Errorf("%w: failed to create music dir: %v", shared.ErrStorageIO, err)
	}

	for _, path := range paths {
		key := normalizeKey(path)
		if seen[key] {
			im.logger.Debug("skipping duplicate", "path", path)
			res.Skipped = append(res.Skipped, path)
			continue
		}

		track, err := im.importFile(path)
		if err != nil {
			im.logger.Warn("import failed", "path", path, "error", err)
			res.Failed = append(res.Failed, Failure{Path: path, Err: err})
			continue
		}

		seen[key] = true
		res.Imported = append(res.Imported, track)
		im.logger.Info("imported track", "path", path, "id", track.ID, "title", track.Title)
	}

	return res, nil
}

func (im *Importer) importFile(path string) (models.Track, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		ext = ".mp3"
	}

	id := shared.GenerateLocalID()
	rel := normalizeKey(path) + ext
	dest := filepath.Join(im.musicDir, rel)

	if err := copyFile(path, dest); err != nil {
		return models.Track{}, fmt.Errorf("%w: %v", shared.ErrStorageIO, err)
	}

	track := models.Track{
		ID:         id,
		Title:      strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Artist:     fallbackArtist,
		Album:      fallbackAlbum,
		PreviewURL: "file://" + dest,
		IsLocal:    true,
		LocalPath:  rel,
	}
	applyMetadata(&track, path)
	track.Duration = im.probe(dest, im.probeTimeout)

	if err := im.store.SaveLocalMusic(track, rel); err != nil {
		if rmErr := os.Remove(dest); rmErr != nil {
			im.logger.Warn("failed to remove orphaned copy", "path", dest, "error", rmErr)
		}
		return models.Track{}, err
	}
	return track, nil
}

// applyMetadata fills in tagged title, artist, and album when the file
// carries them. Untagged files keep the name-derived fallbacks.
func applyMetadata(track *models.Track, path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	meta, err := tag.ReadFrom(f)
	if err != nil {
		return
	}
	if v := strings.TrimSpace(meta.Title()); v != "" {
		track.Title = v
	}
	if v := strings.TrimSpace(meta.Artist()); v != "" {
		track.Artist = v
	}
	if v := strings.TrimSpace(meta.Album()); v != "" {
		track.Album = v
	}
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dest)
		return err
	}
	return out.Close()
}
