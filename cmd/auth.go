package main

import (
	"context"

	"github.com/urfave/cli/v3"
)

// Auth logs in with a browser session and prints the extracted auth key.
func (r *Runner) Auth(ctx context.Context, cmd *cli.Command) error {
	key, err := r.extractAuthKey(cmd)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]string{"authKey": key}, true)
	}
	return r.writePlain("%s\n", key)
}
