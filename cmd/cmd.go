// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create a config file and initialize the local database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}

// authCommand handles login, signup, logout and session status
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the AutoChord session",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Log in and persist the session",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Usage: "Account email", Required: true},
					&cli.StringFlag{Name: "password", Usage: "Account password", Required: true},
				},
				Action: r.AuthLogin,
			},
			{
				Name:  "signup",
				Usage: "Register a new account (log in separately afterwards)",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Usage: "Account email", Required: true},
					&cli.StringFlag{Name: "password", Usage: "Account password", Required: true},
					&cli.StringFlag{Name: "nickname", Usage: "Display name", Required: true},
				},
				Action: r.AuthSignup,
			},
			{
				Name:   "logout",
				Usage:  "Clear the persisted session",
				Action: r.AuthLogout,
			},
			{
				Name:   "status",
				Usage:  "Show the current session and service health",
				Action: r.AuthStatus,
			},
		},
	}
}

// searchCommand performs a full search with token pagination
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search for songs",
		ArgsUsage: "<query>",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "query"},
		},
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "pages",
				Aliases: []string{"p"},
				Usage:   "Number of pages to fetch",
				Value:   1,
			},
			&cli.BoolFlag{Name: "json", Usage: "Output JSON"},
			&cli.BoolFlag{Name: "csv", Usage: "Output CSV"},
		},
		Action: r.Search,
	}
}

// songCommand groups per-song operations
func songCommand(r *Runner) *cli.Command {
	videoIDArg := func() []cli.Argument {
		return []cli.Argument{&cli.StringArg{Name: "videoId"}}
	}

	return &cli.Command{
		Name:  "song",
		Usage: "Song detail and chord analysis operations",
		Commands: []*cli.Command{
			{
				Name:      "detail",
				Usage:     "Fetch the detail record for a song",
				ArgsUsage: "<videoId>",
				Arguments: videoIDArg(),
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Output JSON"},
					&cli.BoolFlag{Name: "md", Usage: "Output a Markdown chord sheet"},
				},
				Action: r.SongDetail,
			},
			{
				Name:      "analyze",
				Usage:     "Run chord analysis for a song",
				ArgsUsage: "<videoId>",
				Arguments: videoIDArg(),
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "save",
						Usage: "Ask the server to persist the result (requires login)",
					},
					&cli.BoolFlag{Name: "json", Usage: "Output JSON"},
				},
				Action: r.SongAnalyze,
			},
			{
				Name:      "saved",
				Usage:     "Load a previously saved analysis (requires login)",
				ArgsUsage: "<videoId>",
				Arguments: videoIDArg(),
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Output JSON"},
				},
				Action: r.SongSaved,
			},
			{
				Name:      "check",
				Usage:     "Check whether a saved analysis exists",
				ArgsUsage: "<videoId>",
				Arguments: videoIDArg(),
				Action:    r.SongCheck,
			},
			{
				Name:      "download",
				Usage:     "Request an audio download URL for a song",
				ArgsUsage: "<videoId>",
				Arguments: videoIDArg(),
				Action:    r.SongDownload,
			},
		},
	}
}

// historyCommand manages locally recorded lookups
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Locally recorded song lookups",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recent lookups",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum entries to show",
						Value:   20,
					},
					&cli.BoolFlag{Name: "json", Usage: "Output JSON"},
				},
				Action: r.HistoryList,
			},
			{
				Name:   "clear",
				Usage:  "Clear lookup history",
				Action: r.HistoryClear,
			},
		},
	}
}

func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "tui",
		Usage:  "Launch the interactive terminal UI",
		Action: r.TUI,
	}
}
