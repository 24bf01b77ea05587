package cli

import (
	"context"
	"io"
	"os"

	"github.com/gabapcia/faucet/internal/faucet"

	"github.com/gocarina/gocsv"
	"github.com/urfave/cli/v3"
)

// exportCommand returns a CLI command that dumps every claim record as CSV,
// for reconciling the records against the ledger.
//
// Usage example:
//
//	faucet export --output claims.csv
func exportCommand(app Application) *cli.Command {
	return &cli.Command{
		Name:        "export",
		Description: "Write every claim record as CSV (address, claimed_at, tx_reference).",
		Usage:       "Exports claim records to a file or stdout.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "output",
				Usage: "Destination file; '-' writes to stdout",
				Value: "-",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			claims, err := app.Claims(ctx)
			if err != nil {
				return err
			}

			records, err := claims.ListClaims(ctx)
			if err != nil {
				return err
			}

			path := c.String("output")
			if path == "-" {
				return gocsv.Marshal(records, c.Root().Writer)
			}

			f, err := os.Create(path)
			if err != nil {
				return err
			}

			return writeCSV(f, records)
		},
	}
}

// writeCSV marshals records into w and closes it, reporting a failed close.
func writeCSV(w io.WriteCloser, records []faucet.ClaimRecord) error {
	if err := gocsv.Marshal(records, w); err != nil {
		_ = w.Close()
		return err
	}

	return w.Close()
}
