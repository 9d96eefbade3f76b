package main

import (
	"context"
	"fmt"
	"time"

	"github.com/djib1010/stremio-library-exporter/internal/history"
	"github.com/djib1010/stremio-library-exporter/internal/shared"
	"github.com/urfave/cli/v3"
)

// History lists recent export/restore runs from the local store.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	if r.config.History.Path == "" {
		return fmt.Errorf("%w: history.path is not configured", shared.ErrInvalidConfig)
	}

	store, err := history.Open(r.config.History.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.List(int(cmd.Int("limit")))
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		return r.writePlain("No runs recorded yet.\n")
	}

	for _, run := range runs {
		r.writePlain("%s  %-7s  %4d/%-4d items  %s\n",
			run.StartedAt.Local().Format(time.DateTime),
			run.Kind,
			run.SuccessCount,
			run.ItemCount,
			run.ArtifactPath,
		)
	}
	return nil
}
