// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand initializes the configuration file and database
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create the config file if needed, then initialize the database and run migrations",
		Action: r.SetupDatabase,
		Commands: []*cli.Command{
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent migration",
				Action: r.SetupRollback,
			},
		},
	}
}

// serveCommand runs the library server
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the library server (folder browsing, progress storage and video streaming)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Interface to listen on (overrides server.host)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on (overrides server.port)",
			},
		},
		Action: r.Serve,
	}
}

// tuiCommand launches the terminal player
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"play"},
		Usage:   "Launch mpv and the interactive terminal player",
		Action:  r.TUI,
	}
}

// historyCommand manages the folder history
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Folder history operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recently opened folders",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.HistoryList,
			},
			{
				Name:  "remove",
				Usage: "Forget a folder",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Action: r.HistoryRemove,
			},
		},
	}
}

// clearCompletedCommand removes progress of watched videos
func clearCompletedCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "clear-completed",
		Usage:  "Forget the progress of every video watched to 95% or more",
		Action: r.ClearCompleted,
	}
}

// exportCommand exports a folder's video list
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export the video list of a folder with progress and notes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Export format: csv, md, txt or json",
				Value:   "md",
			},
			&cli.StringFlag{
				Name:  "folder",
				Usage: "Folder to export (selects it); defaults to the last selected folder",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file path, - for stdout (with --all: output directory)",
			},
			&cli.BoolFlag{
				Name:  "all",
				Usage: "Export every folder in the history, one file each, without changing the selection",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent exports with --all",
				Value: 4,
			},
		},
		Action: r.Export,
	}
}

// doctorCommand checks the environment
func doctorCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "doctor",
		Usage:  "Check that mpv is installed and the server is reachable",
		Action: r.Doctor,
	}
}

// apiCommand handles direct API calls
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct calls to the library server",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET to the server, prints raw JSON",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output compact JSON",
					},
				},
				Action: r.APIGet,
			},
			{
				Name:  "post",
				Usage: "Direct POST to the server with a JSON body",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "data",
						Usage: "JSON request body",
					},
				},
				Action: r.APIPost,
			},
			{
				Name:  "dump",
				Usage: "Fetch health, folder history and the selected folder",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.APIDump,
			},
		},
	}
}
