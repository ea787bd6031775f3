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

// serveCommand starts the webhook and admin HTTP server.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the webhook listener and admin UI",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "Disable the sqlite track cache",
			},
		},
		Action: r.Serve,
	}
}

// flowsCommand manages the flow registry.
func flowsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "flows",
		Usage: "Inspect and configure marketing flows",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List flows from the marketing service",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.FlowsList,
			},
			{
				Name:  "activate",
				Usage: "Activate a flow with keywords",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Flow ID to activate",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "keywords",
						Usage:    "Comma-separated keywords",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "sample-url",
						Usage: "Sample playlist URL",
					},
				},
				Action: r.FlowsActivate,
			},
			{
				Name:  "deactivate",
				Usage: "Deactivate a flow and clear its keywords",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Flow ID to deactivate",
						Required: true,
					},
				},
				Action: r.FlowsDeactivate,
			},
		},
	}
}

// playlistCommand previews playlist proposals and realizes them on the
// catalog.
func playlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "playlist",
		Usage: "Playlist proposal operations",
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Synthesize a proposal and create the playlist on Spotify",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "keywords",
						Usage:    "Comma-separated keywords",
						Required: true,
					},
				},
				Action: r.PlaylistCreate,
			},
			{
				Name:  "preview",
				Usage: "Synthesize a mood and playlist proposal from keywords",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "keywords",
						Usage:    "Comma-separated keywords",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write the proposal as Markdown to this path",
					},
				},
				Action: r.PlaylistPreview,
			},
		},
	}
}

// eventCommand fires test events at the marketing service.
func eventCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "event",
		Usage: "Marketing event operations",
		Commands: []*cli.Command{
			{
				Name:  "test",
				Usage: "Fire a test \"Placed Order\" event",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "email",
						Usage:    "Recipient profile email",
						Required: true,
					},
				},
				Action: r.EventTest,
			},
		},
	}
}

// spotifyCommand handles Spotify operations
func spotifyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "spotify",
		Aliases: []string{"spot"},
		Usage:   "Spotify catalog operations",
		Commands: []*cli.Command{
			{
				Name:   "auth",
				Usage:  "Authenticate with Spotify using OAuth2",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SpotifyAuth,
			},
		},
	}
}

// setupCommand handles setup operations for the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize the track cache database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive flow management.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for flow management",
		Action:  r.TUI,
	}
}
