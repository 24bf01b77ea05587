package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// claimCommand returns a CLI command that runs one claim from the operator's shell.
//
// Usage example:
//
//	faucet claim --address 0xABC123...
func claimCommand(app Application) *cli.Command {
	return &cli.Command{
		Name:        "claim",
		Description: "Send the configured amount to an address that never claimed before.",
		Usage:       "Runs a single claim. Must provide the recipient address.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "address",
				Usage:    "Recipient address (0x followed by 40 hex characters)",
				Required: true,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			svc, err := app.Service(ctx)
			if err != nil {
				return err
			}

			receipt, err := svc.Claim(ctx, c.String("address"))
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(c.Root().Writer, "address: %s\ntx: %s\n", receipt.Address, receipt.TxReference)
			return err
		},
	}
}

// statusCommand returns a CLI command that reports whether an address already claimed.
//
// Usage example:
//
//	faucet status --address 0xABC123...
func statusCommand(app Application) *cli.Command {
	return &cli.Command{
		Name:        "status",
		Description: "Check whether an address already claimed.",
		Usage:       "Prints the claim state of an address.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "address",
				Usage:    "Address to check",
				Required: true,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			reader, err := app.StatusReader(ctx)
			if err != nil {
				return err
			}

			claimed, err := reader.Status(ctx, c.String("address"))
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(c.Root().Writer, "claimed: %t\n", claimed)
			return err
		},
	}
}
