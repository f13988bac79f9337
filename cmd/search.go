package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/rxtnnn/harmony/internal/catalog"
	"github.com/rxtnnn/harmony/internal/shared"
)

// Search queries the streaming catalog and optionally saves the results to
// the library so they can be queued and liked.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	query := strings.Join(cmd.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("%w: search query", shared.ErrMissingArgument)
	}

	client, err := r.catalogClient(ctx)
	if err != nil {
		return err
	}

	tracks, err := client.SearchTracks(ctx, query, int(cmd.Int("limit")))
	if err != nil {
		return err
	}

	if cmd.Bool("save") {
		for _, t := range tracks {
			if err := r.store.SaveTrack(t); err != nil {
				return err
			}
		}
		r.logger.Info("saved search results", "count", len(tracks))
	}

	if cmd.Bool("json") {
		return r.writeJSON(tracks, true)
	}
	return r.printTracks(tracks)
}

// catalogClient builds the catalog client on first use so commands that
// never touch the catalog work without credentials.
func (r *Runner) catalogClient(ctx context.Context) (*catalog.Client, error) {
	if r.catalog != nil {
		return r.catalog, nil
	}
	client, err := catalog.NewClient(ctx, r.config.Credentials.Spotify)
	if err != nil {
		return nil, err
	}
	r.catalog = client
	return client, nil
}
