package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/fulfillbridge/internal/licensekey"
)

// KeygenCommand prints freshly generated license keys.
func KeygenCommand() *cli.Command {
	return &cli.Command{
		Name:  "keygen",
		Usage: "Generate license keys in XXXX-XXXX-XXXX-XXXX form",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "count",
				Aliases: []string{"n"},
				Usage:   "Number of keys to print",
				Value:   1,
			},
		},
		Action: func(c *cli.Context) error {
			n := c.Int("count")
			if n < 1 {
				return fmt.Errorf("count must be at least 1, got %d", n)
			}
			for i := 0; i < n; i++ {
				key, err := licensekey.Generate()
				if err != nil {
					return fmt.Errorf("failed to generate key: %w", err)
				}
				fmt.Fprintln(c.App.Writer, key)
			}
			return nil
		},
	}
}
