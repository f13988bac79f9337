package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/rxtnnn/harmony/internal/audio"
	"github.com/rxtnnn/harmony/internal/catalog"
	"github.com/rxtnnn/harmony/internal/importer"
	"github.com/rxtnnn/harmony/internal/library"
	"github.com/rxtnnn/harmony/internal/queue"
	"github.com/rxtnnn/harmony/internal/session"
	"github.com/rxtnnn/harmony/internal/shared"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	store      *library.Store
	sess       *session.Session
	controller *audio.Controller
	manager    *queue.Manager
	importer   *importer.Importer
	catalog    *catalog.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner. Absent
// playback and import dependencies are built from the config; a nil Store
// is opened at the configured database path.
type RunnerOpts struct {
	Config     *shared.Config
	Store      *library.Store
	Controller *audio.Controller
	Manager    *queue.Manager
	Importer   *importer.Importer
	Catalog    *catalog.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	musicDir := filepath.Join(opts.Config.Storage.DataDir, "music")

	if opts.Store == nil {
		opts.Store = library.New(opts.Config, musicDir, opts.Logger)
	}
	sess := session.New(opts.Store, opts.Logger)

	if opts.Importer == nil {
		opts.Importer = importer.New(opts.Store, musicDir, importer.Options{
			ProbeTimeout: opts.Config.Playback.ProbeTimeout(),
		}, opts.Logger)
	}

	return &Runner{
		config:     opts.Config,
		store:      opts.Store,
		sess:       sess,
		controller: opts.Controller,
		manager:    opts.Manager,
		importer:   opts.Importer,
		catalog:    opts.Catalog,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

// player builds the playback controller and queue on first use; commands
// that never play audio stay free of speaker and resume-store side effects.
func (r *Runner) player() (*audio.Controller, *queue.Manager) {
	if r.controller == nil {
		musicDir := filepath.Join(r.config.Storage.DataDir, "music")
		r.controller = audio.NewController(
			r.store,
			r.sess,
			audio.NewRemoteBackend(nil),
			audio.NewLocalBackend(musicDir),
			audio.Options{Tick: r.config.Playback.Tick()},
			r.logger,
		)
	}
	if r.manager == nil {
		manager := queue.New(r.controller, r.config.Playback.PreviousThreshold(), r.logger)
		r.controller.SetOnFinished(func() {
			if err := manager.Next(); err != nil {
				r.logger.Debug("queue exhausted", "error", err)
			}
		})
		r.manager = manager
	}
	return r.controller, r.manager
}

// SetLogger replaces the runner's logger.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, importCommand, playlistCommand, tracksCommand, likeCommand, deleteCommand, searchCommand, playCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
