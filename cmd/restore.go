package main

import (
	"context"
	"fmt"
	"time"

	"github.com/djib1010/stremio-library-exporter/internal/history"
	"github.com/djib1010/stremio-library-exporter/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Restore loads a backup file and replays it into an account in batches.
// Partial batch failures are reported in the tally; with --strict they
// also fail the process.
func (r *Runner) Restore(ctx context.Context, cmd *cli.Command) error {
	backupPath := cmd.StringArg("backup")
	if backupPath == "" {
		return fmt.Errorf("usage: slx restore <backup-file>")
	}

	startedAt := time.Now()

	r.logger.Info("loading backup", "path", backupPath)
	items, err := tasks.LoadBackup(backupPath)
	if err != nil {
		return err
	}
	r.writePlain("Loaded %d items from %s\n", len(items), backupPath)

	key, err := r.resolveAuthKey(cmd)
	if err != nil {
		return err
	}

	progressCh := make(chan tasks.ProgressUpdate, 10)
	go func() {
		for update := range progressCh {
			r.writePlain("%s\n", update.Message)
		}
	}()

	result, err := r.engine.Restore(ctx, progressCh, key, items)
	close(progressCh)
	if err != nil {
		return err
	}

	r.recordRun(history.Run{
		Kind:         history.KindRestore,
		StartedAt:    startedAt,
		FinishedAt:   time.Now(),
		ItemCount:    result.Total,
		SuccessCount: result.Succeeded,
		ArtifactPath: backupPath,
	})

	lines := []string{
		fmt.Sprintf("Restored: %d/%d items", result.Succeeded, result.Total),
	}
	for _, batch := range result.Batches {
		if !batch.OK {
			lines = append(lines, fmt.Sprintf("Batch at index %d failed: %v", batch.Start, batch.Err))
		}
	}
	r.writeSummary("Restore complete", lines...)

	if cmd.Bool("strict") && result.Partial() {
		return cli.Exit(fmt.Sprintf("restore incomplete: %d/%d items", result.Succeeded, result.Total), 1)
	}

	return nil
}
