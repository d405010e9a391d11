package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/fulfillbridge/internal/api"
	"github.com/fulfillbridge/internal/config"
)

// ServeCommand returns the CLI command for starting the fulfillment server
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the checkout fulfillment server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Interface to bind (overrides server.host / HOST)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on (overrides server.port / PORT)",
			},
		},
		Action: runServe,
	}
}

func runServe(c *cli.Context) error {
	cfg, logger, closer, err := setup(c)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	defer closer.Close()

	if c.IsSet("host") {
		cfg.Server.Host = c.String("host")
	}
	if c.IsSet("port") {
		cfg.Server.Port = c.Int("port")
	}

	if err := config.ValidateSettings(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	for _, name := range config.MissingCredentials(cfg) {
		logger.Warn().Str("variable", name).Msg("credential not configured; fulfillment requests will fail")
	}

	server, err := api.NewServer(cfg.Server, newFulfillmentService(cfg, logger), logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	return server.Start(c.Context)
}
