package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/rxtnnn/harmony/internal/shared"
)

// Import copies the given audio files into the music directory and
// registers them as local tracks.
func (r *Runner) Import(ctx context.Context, cmd *cli.Command) error {
	paths := cmd.Args().Slice()
	if len(paths) == 0 {
		return fmt.Errorf("%w: at least one audio file", shared.ErrMissingArgument)
	}

	res, err := r.importer.ImportBatch(paths)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(res, cmd.Bool("pretty"))
	}

	for _, t := range res.Imported {
		r.writePlain("✓ %s • %s (%s)\n", t.Title, t.Artist, t.ID)
	}
	for _, p := range res.Skipped {
		r.writePlain("- skipped duplicate %s\n", p)
	}
	for _, f := range res.Failed {
		r.writePlain("✗ %s: %v\n", f.Path, f.Err)
	}
	r.writePlainln("Imported %d, skipped %d, failed %d", len(res.Imported), len(res.Skipped), len(res.Failed))
	return nil
}
