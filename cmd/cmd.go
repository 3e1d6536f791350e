// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// authCommand handles Spotify OAuth authentication.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "auth",
		Usage:  "Authenticate with Spotify using OAuth2",
		Flags:  []cli.Flag{configFlag()},
		Action: r.SpotifyAuth,
	}
}

// prepCommand handles concert-prep playlist runs.
func prepCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "prep",
		Usage: "Build a concert-prep playlist of songs you haven't heard yet",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run the full prep pipeline for an artist",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:     "artist",
						Aliases:  []string{"a"},
						Usage:    "Artist name",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "concert",
						Usage: "Concert or tour name",
					},
					&cli.StringFlag{
						Name:  "year",
						Usage: "Concert year",
					},
					&cli.BoolFlag{
						Name:  "skip-setlist",
						Usage: "Skip the setlist playlist lookup",
					},
					&cli.StringFlag{
						Name:  "export",
						Usage: "Export the unheard-track report (csv, markdown, or text)",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output path for the exported report",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output the run summary as JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print JSON output",
						Value: true,
					},
				},
				Action: r.PrepRun,
			},
			{
				Name:    "ui",
				Aliases: []string{"interactive", "tui"},
				Usage:   "Interactive TUI for building a prep playlist",
				Flags:   []cli.Flag{configFlag()},
				Action:  r.PrepUI,
			},
		},
	}
}

// setlistCommand inspects setlist playlist resolution without creating anything.
func setlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setlist",
		Usage: "Setlist playlist operations",
		Commands: []*cli.Command{
			{
				Name:  "find",
				Usage: "Find the most followed setlist playlist for an artist",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:     "artist",
						Aliases:  []string{"a"},
						Usage:    "Artist name",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "concert",
						Usage: "Concert or tour name",
					},
					&cli.StringFlag{
						Name:  "year",
						Usage: "Concert year",
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
				},
				Action: r.SetlistFind,
			},
		},
	}
}

// artistCommand handles artist lookups.
func artistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "artist",
		Usage: "Artist catalog operations",
		Commands: []*cli.Command{
			{
				Name:  "top",
				Usage: "Show an artist's most popular tracks",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Flags: []cli.Flag{
					configFlag(),
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
				Action: r.ArtistTop,
			},
		},
	}
}

// libraryCommand manages the local liked-library snapshot.
func libraryCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "library",
		Usage: "Liked-library snapshot operations",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show the cached liked-library snapshot",
				Flags: []cli.Flag{
					configFlag(),
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of tracks to print",
						Value: 20,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.LibraryShow,
			},
			{
				Name:   "sync",
				Usage:  "Refresh the snapshot from your Spotify liked tracks",
				Flags:  []cli.Flag{configFlag()},
				Action: r.LibrarySync,
			},
		},
	}
}

// setupCommand handles setup operations for database and configuration.
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
			{
				Name:   "config",
				Usage:  "Create a config.toml from the bundled template",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupConfig,
			},
		},
	}
}

// serveCommand starts the web interface.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Serve the browser interface for building prep playlists",
		Flags:  []cli.Flag{configFlag()},
		Action: r.Serve,
	}
}
