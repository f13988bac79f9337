package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/rxtnnn/harmony/internal/models"
	"github.com/rxtnnn/harmony/internal/shared"
)

// PlaylistCreate creates a named playlist.
func (r *Runner) PlaylistCreate(ctx context.Context, cmd *cli.Command) error {
	name := cmd.Args().First()
	if name == "" {
		return fmt.Errorf("%w: playlist name", shared.ErrMissingArgument)
	}

	id, err := r.store.CreatePlaylist(name)
	if err != nil {
		return err
	}

	r.logger.Info("playlist created", "id", id, "name", name)
	return r.writePlain("✓ Created playlist %d: %s\n", id, name)
}

// PlaylistRename renames an existing playlist.
func (r *Runner) PlaylistRename(ctx context.Context, cmd *cli.Command) error {
	id, err := parsePlaylistID(cmd.Args().Get(0))
	if err != nil {
		return err
	}
	name := cmd.Args().Get(1)
	if name == "" {
		return fmt.Errorf("%w: new playlist name", shared.ErrMissingArgument)
	}

	if err := r.store.RenamePlaylist(id, name); err != nil {
		return err
	}
	return r.writePlain("✓ Renamed playlist %d to %s\n", id, name)
}

// PlaylistList prints all playlists, newest first.
func (r *Runner) PlaylistList(ctx context.Context, cmd *cli.Command) error {
	playlists, err := r.store.Playlists()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlists, true)
	}

	if len(playlists) == 0 {
		return r.writePlain("No playlists yet. Create one with 'playlist create'.\n")
	}
	for _, pl := range playlists {
		r.writePlain("%d\t%s\n", pl.ID, pl.Name)
	}
	return nil
}

// PlaylistAdd appends a track to the end of a playlist.
func (r *Runner) PlaylistAdd(ctx context.Context, cmd *cli.Command) error {
	id, err := parsePlaylistID(cmd.Args().Get(0))
	if err != nil {
		return err
	}
	trackID := cmd.Args().Get(1)
	if trackID == "" {
		return fmt.Errorf("%w: track id", shared.ErrMissingArgument)
	}

	if err := r.store.AddTrackToPlaylist(id, trackID); err != nil {
		return err
	}
	return r.writePlain("✓ Added %s to playlist %d\n", trackID, id)
}

// PlaylistShow prints a playlist's tracks in playback order.
func (r *Runner) PlaylistShow(ctx context.Context, cmd *cli.Command) error {
	id, err := parsePlaylistID(cmd.Args().Get(0))
	if err != nil {
		return err
	}

	tracks, err := r.store.PlaylistTracks(id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(tracks, true)
	}
	return r.printTracks(tracks)
}

// TracksLocal prints imported local tracks.
func (r *Runner) TracksLocal(ctx context.Context, cmd *cli.Command) error {
	tracks, err := r.store.LocalTracks()
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(tracks, true)
	}
	return r.printTracks(tracks)
}

// TracksLiked prints liked tracks, most recently liked first.
func (r *Runner) TracksLiked(ctx context.Context, cmd *cli.Command) error {
	tracks, err := r.store.LikedTracks()
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(tracks, true)
	}
	return r.printTracks(tracks)
}

// TracksDownloads prints tracks with a stored file, most recent first.
func (r *Runner) TracksDownloads(ctx context.Context, cmd *cli.Command) error {
	tracks, err := r.store.DownloadedTracksWithInfo()
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(tracks, true)
	}
	return r.printTracks(tracks)
}

// Like toggles a track's liked flag.
func (r *Runner) Like(ctx context.Context, cmd *cli.Command) error {
	trackID := cmd.Args().First()
	if trackID == "" {
		return fmt.Errorf("%w: track id", shared.ErrMissingArgument)
	}

	track, err := r.store.Track(trackID)
	if err != nil {
		return err
	}

	liked := !track.Liked
	if err := r.store.ToggleLiked(trackID, liked); err != nil {
		return err
	}

	if liked {
		return r.writePlain("♥ Liked %s\n", track.Title)
	}
	return r.writePlain("Unliked %s\n", track.Title)
}

// Delete removes an imported local track, its file, and its references.
func (r *Runner) Delete(ctx context.Context, cmd *cli.Command) error {
	trackID := cmd.Args().First()
	if trackID == "" {
		return fmt.Errorf("%w: track id", shared.ErrMissingArgument)
	}

	if err := r.store.DeleteLocalTrack(trackID); err != nil {
		return err
	}

	r.logger.Info("deleted local track", "id", trackID)
	return r.writePlain("✓ Deleted %s\n", trackID)
}

func (r *Runner) printTracks(tracks []models.Track) error {
	if len(tracks) == 0 {
		return r.writePlain("No tracks.\n")
	}
	for i, t := range tracks {
		var marks []string
		if t.Liked {
			marks = append(marks, "♥")
		}
		if t.IsLocal {
			marks = append(marks, "local")
		}
		suffix := ""
		if len(marks) > 0 {
			suffix = " [" + strings.Join(marks, ", ") + "]"
		}
		r.writePlain("%d. %s • %s (%s)%s\n", i+1, t.Title, t.Artist, t.ID, suffix)
	}
	return nil
}

func parsePlaylistID(arg string) (int64, error) {
	if arg == "" {
		return 0, fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: playlist id %q is not numeric", shared.ErrValidation, arg)
	}
	return id, nil
}
