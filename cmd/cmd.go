// submodule cmd contains command definitions
package main

import (
	"time"

	"github.com/urfave/cli/v3"
)

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "json",
		Usage: "Output raw JSON",
	}
}

// authCommand handles the Spotify OAuth2 flow
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authorize spotbak to read your Spotify library",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Open the consent page and receive the redirect on the local callback server",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "How long to wait for the redirect",
						Value: 2 * time.Minute,
					},
					&cli.BoolFlag{
						Name:  "no-browser",
						Usage: "Print the URL instead of opening it",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:  "url",
				Usage: "Print the Spotify consent URL",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "open",
						Usage: "Open the URL in the default browser",
					},
				},
				Action: r.AuthURL,
			},
			{
				Name:  "exchange",
				Usage: "Exchange the code from the redirect URL and store the refresh token",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "code",
					},
				},
				Action: r.AuthExchange,
			},
		},
	}
}

// backupCommand runs a backup
func backupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "backup",
		Usage: "Back up the library; with no selection flags everything is backed up",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "albums",
				Usage: "Back up saved albums",
			},
			&cli.BoolFlag{
				Name:  "tracks",
				Usage: "Back up saved tracks",
			},
			&cli.BoolFlag{
				Name:  "playlists",
				Usage: "Back up playlists",
			},
			&cli.BoolFlag{
				Name:  "artists",
				Usage: "Back up followed artists",
			},
			&cli.BoolFlag{
				Name:  "full",
				Usage: "Read complete listings and mark missing saved items as removed",
			},
			jsonFlag(),
		},
		Action: r.Backup,
	}
}

// savedCommand inspects the saved-item ledgers
func savedCommand(r *Runner) *cli.Command {
	flags := func() []cli.Flag {
		return []cli.Flag{
			&cli.StringFlag{
				Name:  "kind",
				Usage: "Ledger to read: album or track",
				Value: "album",
			},
			&cli.StringFlag{
				Name:  "user",
				Usage: "Spotify user id (default: the user of the last completed backup)",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of entries to print",
				Value: 50,
			},
			&cli.BoolFlag{
				Name:  "csv",
				Usage: "Output CSV",
			},
			jsonFlag(),
		}
	}

	return &cli.Command{
		Name:  "saved",
		Usage: "Inspect saved albums and tracks",
		Commands: []*cli.Command{
			{
				Name:   "newest",
				Usage:  "Show the most recently saved entry",
				Flags:  flags(),
				Action: r.SavedNewest,
			},
			{
				Name:   "active",
				Usage:  "List active entries, newest first",
				Flags:  flags(),
				Action: r.SavedActive,
			},
			{
				Name:   "removed",
				Usage:  "List entries removed from the library",
				Flags:  flags(),
				Action: r.SavedRemoved,
			},
		},
	}
}

// statsCommand prints catalog counters
func statsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "stats",
		Usage:  "Show what the backup database contains",
		Flags:  []cli.Flag{jsonFlag()},
		Action: r.Stats,
	}
}

// runsCommand lists backup history
func runsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "runs",
		Usage: "List recent backup runs",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of runs to list",
				Value: 20,
			},
			&cli.StringFlag{
				Name:  "status",
				Usage: "Only list runs with this status",
			},
			jsonFlag(),
		},
		Action: r.Runs,
	}
}

// marketsCommand decodes stored market availability
func marketsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "markets",
		Usage: "Show the markets an album (or track) is available in",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "id",
			},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "track",
				Usage: "Treat the id as a track id",
			},
			jsonFlag(),
		},
		Action: r.Markets,
	}
}
