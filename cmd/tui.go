package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/rxtnnn/harmony/internal/models"
	"github.com/rxtnnn/harmony/internal/shared"
	"github.com/rxtnnn/harmony/internal/ui"
)

// Play launches the interactive player over the chosen track source.
func (r *Runner) Play(ctx context.Context, cmd *cli.Command) error {
	source := cmd.String("source")

	var title string
	var tracks []models.Track
	var err error

	switch source {
	case "local":
		title = "Local Tracks"
		tracks, err = r.store.LocalTracks()
	case "liked":
		title = "Liked Tracks"
		tracks, err = r.store.LikedTracks()
	default:
		id, idErr := parsePlaylistID(source)
		if idErr != nil {
			return fmt.Errorf("%w: source must be local, liked, or a playlist id", shared.ErrValidation)
		}
		title = fmt.Sprintf("Playlist %d", id)
		tracks, err = r.store.PlaylistTracks(id)
	}
	if err != nil {
		return err
	}
	if len(tracks) == 0 {
		return r.writePlain("Nothing to play from source %q.\n", source)
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/harmony-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	controller, manager := r.player()
	model := ui.NewModel(controller, manager, title, tracks)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
