package main

import (
	"context"
	"os"

	"github.com/djib1010/stremio-library-exporter/internal/shared"
	"github.com/djib1010/stremio-library-exporter/internal/stremio"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("ignoring unreadable config.toml", "err", err)
		}
	}
	config.LoadEnvCredentials()

	client := stremio.NewClient(config.API.BaseURL, nil, logger)

	runner := NewRunner(RunnerOpts{
		Config: config,
		Client: client,
		Logger: logger,
	})

	app := &cli.Command{
		Name:     "slx",
		Usage:    "Export and restore a Stremio library",
		Version:  "1.0.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
