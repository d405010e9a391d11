package cmd

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/fulfillbridge/internal/config"
	"github.com/fulfillbridge/internal/fulfillment"
	"github.com/fulfillbridge/internal/license"
	"github.com/fulfillbridge/internal/logging"
	"github.com/fulfillbridge/internal/payment"
)

// setup loads configuration and builds the process logger.
func setup(c *cli.Context) (*config.Config, zerolog.Logger, io.Closer, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, zerolog.Nop(), nil, err
	}

	logger, closer, err := logging.New(cfg.Log, os.Stderr)
	if err != nil {
		return nil, zerolog.Nop(), nil, err
	}
	return cfg, logger, closer, nil
}

// newFulfillmentService wires both upstream clients into the fulfillment flow.
func newFulfillmentService(cfg *config.Config, logger zerolog.Logger) *fulfillment.Service {
	orders := payment.NewClient(cfg.FastSpring, logger)
	licenses := license.NewClient(cfg.Keygen, logger)
	return fulfillment.NewService(orders, licenses, logger)
}
