// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// browserFlags are shared by every command that may drive a browser.
func browserFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "browser",
			Aliases: []string{"b"},
			Usage:   "Browser engine to use (chromium, firefox, webkit)",
		},
		&cli.BoolFlag{
			Name:  "headed",
			Usage: "Run the browser with a visible window",
		},
	}
}

// authCommand extracts and prints the Stremio auth key.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Log in with a headless browser and print the auth key",
		Flags: append(browserFlags(),
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output as JSON",
			},
		),
		Action: r.Auth,
	}
}

// exportCommand runs the full export pipeline.
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export the library to CSV, HTML and a JSON backup",
		Flags: append(browserFlags(),
			&cli.StringFlag{
				Name:  "auth-key",
				Usage: "Use an existing auth key instead of logging in",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output directory",
			},
			&cli.BoolFlag{
				Name:  "no-open",
				Usage: "Do not open the HTML report when done",
			},
			&cli.BoolFlag{
				Name:  "no-zip",
				Usage: "Skip the ZIP archive",
			},
		),
		Action: r.Export,
	}
}

// restoreCommand replays a backup into an account.
func restoreCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "restore",
		Usage:     "Restore a library backup into a Stremio account",
		ArgsUsage: "<backup-file>",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "backup",
			},
		},
		Flags: append(browserFlags(),
			&cli.StringFlag{
				Name:  "auth-key",
				Usage: "Use an existing auth key instead of logging in",
			},
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "Exit non-zero when some items could not be restored",
			},
		),
		Action: r.Restore,
	}
}

// historyCommand lists recorded runs.
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List recent export/restore runs",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of runs to show",
				Value: 20,
			},
		},
		Action: r.History,
	}
}

// setupCommand scaffolds a configuration file.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Write a starter config.toml",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path for the configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}
