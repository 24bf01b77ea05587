package cli

import (
	"context"
	"fmt"

	"github.com/gabapcia/faucet/internal/pkg/config"

	"github.com/urfave/cli/v3"
)

// balanceCommand returns a CLI command that prints the operator account and
// its balance of the disbursed asset.
//
// Usage example:
//
//	faucet balance
func balanceCommand(app Application, decimals int32) *cli.Command {
	return &cli.Command{
		Name:        "balance",
		Description: "Show the operator account and its balance of the disbursed asset.",
		Usage:       "Prints the operator address and balance.",
		Action: func(ctx context.Context, c *cli.Command) error {
			wallet, err := app.Wallet(ctx)
			if err != nil {
				return err
			}

			balance, err := wallet.Balance(ctx)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(c.Root().Writer, "operator: %s\nbalance: %s\n",
				wallet.Address(),
				config.FormatUnits(balance, decimals),
			)
			return err
		},
	}
}
