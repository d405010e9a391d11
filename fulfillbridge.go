package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/fulfillbridge/cmd"
)

const (
	version = "0.1.0"
)

func main() {
	app := &cli.App{
		Name:    "fulfillbridge",
		Usage:   "Verify FastSpring checkouts and issue Keygen licenses",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Load configuration from `FILE` (default: ./fulfillbridge.toml or ~/.fulfillbridge.toml)",
			},
		},
		Commands: []*cli.Command{
			cmd.ServeCommand(),
			cmd.ConfigCommand(),
			cmd.IssueCommand(),
			cmd.KeygenCommand(),
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
