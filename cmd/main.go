package main

import (
	"context"
	"errors"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/spotbak/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)
	runner := NewRunner(RunnerOpts{Logger: logger})

	app := newApp(runner)

	if err := app.Run(context.Background(), os.Args); err != nil {
		switch {
		case errors.Is(err, shared.ErrNotAuthenticated), errors.Is(err, shared.ErrMissingCredentials):
			logger.Warn("not authenticated", "error", err)
			os.Exit(2)
		case errors.Is(err, shared.ErrNotFound), errors.Is(err, shared.ErrInvalidIdentity):
			logger.Warn(err.Error())
			os.Exit(1)
		default:
			logger.Fatalf("application error: %v", err)
		}
	}
}

func newApp(runner *Runner) *cli.Command {
	return &cli.Command{
		Name:    "spotbak",
		Usage:   "Back up your Spotify library metadata to SQLite",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
				Sources: cli.EnvVars("SPOTBAK_CONFIG"),
			},
		},
		Before:   runner.loadConfig,
		Commands: runner.register(),
	}
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create the config file, initialize the database and run migrations",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "rollback",
				Usage: "Roll back the most recent migration instead",
			},
		},
		Action: r.Setup,
	}
}
