package cmd

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/urfave/cli/v2"

	"github.com/fulfillbridge/internal/api"
	"github.com/fulfillbridge/internal/fulfillment"
)

// IssueCommand re-runs fulfillment for one order. Operators use it after a
// license_creation_failed diagnostic instead of creating the license by hand.
func IssueCommand() *cli.Command {
	return &cli.Command{
		Name:  "issue",
		Usage: "Verify an order and issue its license (manual remediation)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "order",
				Aliases:  []string{"o"},
				Usage:    "Payment processor order ID",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the license and order documents as JSON",
			},
		},
		Action: runIssue,
	}
}

func runIssue(c *cli.Context) error {
	cfg, logger, closer, err := setup(c)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	defer closer.Close()

	orderID := c.String("order")
	out := newFulfillmentService(cfg, logger).Fulfill(c.Context, fulfillment.Request{
		OrderID: orderID,
		Query:   url.Values{"orderId": {orderID}, "source": {"cli"}},
	})
	if out.State != fulfillment.StateFulfilled {
		return cli.Exit(fmt.Sprintf("%s: %s", out.State, out.Message), 1)
	}

	if c.Bool("json") {
		enc := json.NewEncoder(c.App.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(api.SuccessView{License: out.License, Order: out.Order})
	}

	fmt.Fprintf(c.App.Writer, "License key: %s\n", out.License.Attributes.Key)
	fmt.Fprintf(c.App.Writer, "License ID:  %s\n", out.License.ID)
	fmt.Fprintf(c.App.Writer, "Order ID:    %s\n", out.Order.ID)
	if out.Order.Customer.Email != "" {
		fmt.Fprintf(c.App.Writer, "Customer:    %s\n", out.Order.Customer.Email)
	}
	return nil
}
