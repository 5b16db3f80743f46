// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// setupCommand handles setup operations for configuration and the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
		},
	}
}

// authCommand handles per-role authentication operations.
func authCommand(r *Runner) *cli.Command {
	roleFlag := &cli.StringFlag{
		Name:     "role",
		Usage:    "Account role: source or dest",
		Required: true,
	}

	return &cli.Command{
		Name:  "auth",
		Usage: "Manage account authentication",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Authorize an account role via the browser",
				Flags:  []cli.Flag{roleFlag, configFlag()},
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Check which account roles are authenticated",
				Action: r.AuthStatus,
			},
			{
				Name:  "logout",
				Usage: "Clear stored tokens",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "role",
						Usage: "Account role to log out (default: both)",
					},
				},
				Action: r.AuthLogout,
			},
		},
	}
}

// playlistsCommand lists the source account's playlists.
func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "playlists",
		Usage: "List the source account's playlists",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of playlists to show",
			},
		},
		Action: r.Playlists,
	}
}

// transferCommand handles library transfer operations.
//
// Transfers are additive: repeating a run creates duplicate playlists on
// the destination, nothing is deduplicated.
func transferCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "transfer",
		Usage: "Transfer the source library to the destination account",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run a transfer for the given selection",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "liked",
						Usage: "Transfer liked songs",
					},
					&cli.StringSliceFlag{
						Name:  "playlist",
						Usage: "Playlist ID to transfer (repeatable)",
					},
					&cli.StringFlag{
						Name:  "report",
						Usage: "Write a run report to this path (.json or .txt)",
					},
				},
				Action: r.TransferRun,
			},
			{
				Name:    "ui",
				Aliases: []string{"tui", "interactive"},
				Usage:   "Interactive selection and live progress",
				Action:  r.TransferUI,
			},
		},
	}
}

// historyCommand lists recorded transfer runs.
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show recorded transfer runs",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of runs to show",
				Value: 20,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.History,
	}
}

// serveCommand starts the web interface.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Serve the web interface",
		Action: r.Serve,
	}
}
