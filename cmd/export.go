package main

import (
	"context"
	"fmt"
	"time"

	"github.com/djib1010/stremio-library-exporter/internal/formatter"
	"github.com/djib1010/stremio-library-exporter/internal/history"
	"github.com/djib1010/stremio-library-exporter/internal/shared"
	"github.com/djib1010/stremio-library-exporter/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Export runs the full pipeline: auth key, library fetch, categorization,
// and rendering of the CSV/HTML/JSON/ZIP artifacts.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	startedAt := time.Now()

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

	result, err := r.engine.Export(ctx, progressCh, key)
	close(progressCh)
	if err != nil {
		return err
	}

	outputDir := cmd.String("output")
	if outputDir == "" {
		outputDir = r.config.Output.Dir
	}
	archive := r.config.Output.Archive && !cmd.Bool("no-zip")

	files, err := formatter.WriteLibraryExport(result.Bundle, result.Response.Raw, formatter.ExportOpts{
		OutputDir: outputDir,
		Timestamp: startedAt,
		Archive:   archive,
	})
	if err != nil {
		return err
	}

	r.recordRun(history.Run{
		Kind:         history.KindExport,
		StartedAt:    startedAt,
		FinishedAt:   time.Now(),
		ItemCount:    result.Fetched,
		SuccessCount: result.Bundle.Total(),
		ArtifactPath: files.Backup,
	})

	lines := []string{
		fmt.Sprintf("Watched:   %d", len(result.Bundle.Watched)),
		fmt.Sprintf("Watchlist: %d", len(result.Bundle.Watchlist)),
	}
	if result.Dropped > 0 {
		lines = append(lines, fmt.Sprintf("Dropped:   %d (missing id or title)", result.Dropped))
	}
	lines = append(lines, "")
	for _, path := range files.All() {
		lines = append(lines, path)
	}
	r.writeSummary("Export complete", lines...)

	if r.config.Output.OpenReport && !cmd.Bool("no-open") {
		if err := shared.OpenBrowser(files.HTMLReport); err != nil {
			r.logger.Warn("could not open HTML report", "err", err)
		}
	}

	return nil
}

// recordRun appends to the run history; failures are logged, never fatal.
func (r *Runner) recordRun(run history.Run) {
	if r.config.History.Path == "" {
		return
	}

	store, err := history.Open(r.config.History.Path)
	if err != nil {
		r.logger.Warn("history store unavailable", "err", err)
		return
	}
	defer store.Close()

	if err := store.Record(run); err != nil {
		r.logger.Warn("failed to record run", "err", err)
	}
}
