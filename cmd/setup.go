package main

import (
	"context"

	"github.com/djib1010/stremio-library-exporter/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup writes a starter configuration file.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.writePlain("Wrote %s\n", path)
	r.writePlain("Fill in credentials.stremio (or set STREMIO_EMAIL / STREMIO_PASSWORD) before running export.\n")
	return nil
}
