// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func jsonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print output",
			Value: true,
		},
	}
}

// setupCommand handles database setup operations.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and maintenance commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "status",
						Usage: "Show migration status without changing anything",
					},
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Roll back the most recently applied migration",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// configCommand handles the configuration file.
func configCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration file commands",
		Commands: []*cli.Command{
			{
				Name:   "init",
				Usage:  "Write the default configuration to the --config path",
				Action: r.ConfigInit,
			},
			{
				Name:   "show",
				Usage:  "Print the effective configuration (file + environment) as TOML",
				Action: r.ConfigShow,
			},
		},
	}
}

// searchCommand runs one catalog search through a discovery session.
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Aliases:   []string{"s"},
		Usage:     "Search the catalog for tracks",
		ArgsUsage: "<term>",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "mode",
				Aliases: []string{"m"},
				Usage:   "Search mode (keyword, genre, artist, song)",
				Value:   "keyword",
			},
			&cli.IntFlag{
				Name:  "genre-id",
				Usage: "Catalog genre id for genre mode",
			},
			&cli.StringFlag{
				Name:    "preset",
				Aliases: []string{"p"},
				Usage:   "Run a configured preset by title or key instead of a term",
			},
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Maximum number of results (1-200); defaults to the config value",
			},
			&cli.BoolFlag{
				Name:  "all",
				Usage: "Include tracks without an audio preview",
			},
			&cli.StringFlag{
				Name:  "sort",
				Usage: "Result order (relevance, track, artist)",
				Value: "relevance",
			},
		}, jsonFlags()...),
		Action: r.Search,
	}
}

// presetsCommand lists the preset catalog.
func presetsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "presets",
		Usage:  "List configured search presets",
		Flags:  jsonFlags(),
		Action: r.Presets,
	}
}

// historyCommand handles recent searches.
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Recent searches",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List recent searches, most recent first",
				Flags:  jsonFlags(),
				Action: r.HistoryList,
			},
			{
				Name:   "clear",
				Usage:  "Forget all recent searches",
				Action: r.HistoryClear,
			},
		},
	}
}

// likesCommand handles liked tracks.
func likesCommand(r *Runner) *cli.Command {
	trackArg := []cli.Argument{&cli.StringArg{Name: "track-id"}}

	return &cli.Command{
		Name:    "likes",
		Aliases: []string{"liked"},
		Usage:   "Liked tracks",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List liked tracks, most recent first",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:  "genre",
						Usage: "Only tracks with this primary genre",
					},
					&cli.StringFlag{
						Name:  "search",
						Usage: "Only tracks whose title or artist contains this text",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of tracks",
					},
				}, jsonFlags()...),
				Action: r.LikesList,
			},
			{
				Name:      "add",
				Usage:     "Look up a track by catalog id and like it",
				Arguments: trackArg,
				Action:    r.LikesAdd,
			},
			{
				Name:      "remove",
				Aliases:   []string{"rm"},
				Usage:     "Unlike a track",
				Arguments: trackArg,
				Action:    r.LikesRemove,
			},
			{
				Name:      "open",
				Usage:     "Open a liked track's catalog page in the browser",
				Arguments: trackArg,
				Action:    r.LikesOpen,
			},
			{
				Name:  "export",
				Usage: "Export liked tracks (csv, markdown, text, json)",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format (csv, md, txt, json)",
						Value:   "csv",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file (or directory for markdown)",
					},
					&cli.BoolFlag{
						Name:  "cover",
						Usage: "Download the most recent artwork as the markdown cover image",
					},
				},
				Action: r.LikesExport,
			},
		},
	}
}

// playCommand plays a track preview through the configured player.
func playCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "play",
		Usage:     "Play the audio preview of a track",
		ArgsUsage: "<track-id>",
		Arguments: []cli.Argument{&cli.StringArg{Name: "track-id"}},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "url",
				Usage: "Play this preview URL instead of looking up a track",
			},
		},
		Action: r.Play,
	}
}

// exploreCommand opens the TUI on the explore view.
func exploreCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "explore",
		Usage:  "Search, filter and preview tracks interactively",
		Action: r.Explore,
	}
}

// swipeCommand opens the TUI on the swipe view.
func swipeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "swipe",
		Usage: "Swipe through a deck of tracks: right to like, left to skip",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "term",
				Aliases: []string{"t"},
				Usage:   "Deck search term; defaults to the configured swipe term",
			},
			&cli.StringFlag{
				Name:    "preset",
				Aliases: []string{"p"},
				Usage:   "Build the deck from a configured preset",
			},
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Deck size",
				Value:   25,
			},
		},
		Action: r.Swipe,
	}
}

// tuiCommand returns the top-level TUI command.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive TUI",
		Action:  r.TUI,
	}
}
