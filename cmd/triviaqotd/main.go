package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli"
)

const version = "0.3.0"

var globalFlags = []cli.Flag{
	cli.StringFlag{
		Name:   "config, c",
		Usage:  "path to a YAML config file (default: ~/.config/triviaqotd/config.yml when present)",
		EnvVar: "TRIVIA_CONFIG",
	},
	cli.StringFlag{
		Name:  "log-level",
		Usage: "override log.level (debug, info, warn, error)",
	},
	cli.StringFlag{
		Name:  "log-file",
		Usage: "write logs to this file instead of stderr",
	},
}

var tuiFlags = []cli.Flag{
	cli.BoolFlag{
		Name:  "no-alt-screen",
		Usage: "disable the alternate screen buffer",
	},
}

var serveFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "addr, a",
		Usage: "listen address (overrides server.addr)",
	},
}

var fetchFlags = []cli.Flag{
	cli.BoolFlag{
		Name:  "force, f",
		Usage: "bypass the freshness window",
	},
}

func main() {
	// A missing .env is normal; values may come from the real environment.
	_ = godotenv.Load()

	app := cli.App{
		Name:      "triviaqotd",
		HelpName:  "triviaqotd",
		Usage:     "Trivia Question of the Day dashboard",
		Version:   version,
		UsageText: "triviaqotd [global options] [command] [options]",
		Flags:     globalFlags,
		Action:    runTUI,
		Commands: []cli.Command{
			{
				Name:   "tui",
				Usage:  "show the dashboard in the terminal (default)",
				Action: runTUI,
				Flags:  tuiFlags,
			},
			{
				Name:   "serve",
				Usage:  "run the dashboard headless and serve it over HTTP and SSE",
				Action: runServe,
				Flags:  serveFlags,
			},
			{
				Name:   "fetch",
				Usage:  "fetch the current question once and print it as JSON",
				Action: runFetch,
				Flags:  fetchFlags,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
