// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize database and run migrations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}

// importCommand brings local audio files into the library
func importCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Import audio files into the library",
		ArgsUsage: "<file> [file...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
			},
		},
		Action: r.Import,
	}
}

// playlistCommand handles playlist operations
func playlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlist",
		Aliases: []string{"pl"},
		Usage:   "Playlist operations",
		Commands: []*cli.Command{
			{
				Name:      "create",
				Usage:     "Create a new playlist",
				ArgsUsage: "<name>",
				Action:    r.PlaylistCreate,
			},
			{
				Name:      "rename",
				Usage:     "Rename a playlist",
				ArgsUsage: "<id> <name>",
				Action:    r.PlaylistRename,
			},
			{
				Name:   "list",
				Usage:  "List playlists",
				Action: r.PlaylistList,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
			},
			{
				Name:      "add",
				Usage:     "Append a track to a playlist",
				ArgsUsage: "<playlist-id> <track-id>",
				Action:    r.PlaylistAdd,
			},
			{
				Name:      "show",
				Usage:     "Show the tracks of a playlist in order",
				ArgsUsage: "<playlist-id>",
				Action:    r.PlaylistShow,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
			},
		},
	}
}

// tracksCommand lists tracks by origin
func tracksCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tracks",
		Usage: "List library tracks",
		Commands: []*cli.Command{
			{
				Name:   "local",
				Usage:  "List imported local tracks",
				Action: r.TracksLocal,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
			},
			{
				Name:   "liked",
				Usage:  "List liked tracks, most recent first",
				Action: r.TracksLiked,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
			},
			{
				Name:   "downloads",
				Usage:  "List tracks with stored files, most recent first",
				Action: r.TracksDownloads,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
			},
		},
	}
}

// likeCommand toggles the liked flag of a track
func likeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "like",
		Usage:     "Toggle a track's liked flag",
		ArgsUsage: "<track-id>",
		Action:    r.Like,
	}
}

// deleteCommand removes an imported local track
func deleteCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete an imported local track and its file",
		ArgsUsage: "<track-id>",
		Action:    r.Delete,
	}
}

// searchCommand queries the streaming catalog
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search the streaming catalog for tracks",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of results",
				Value: 20,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "save",
				Usage: "Save results to the library",
			},
		},
		Action: r.Search,
	}
}

// playCommand launches the interactive player
func playCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "play",
		Usage: "Open the interactive player",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "source",
				Usage: "Track list to load: local, liked, or a playlist id",
				Value: "local",
			},
		},
		Action: r.Play,
	}
}
