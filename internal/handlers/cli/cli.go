package cli

import (
	"context"
	"math/big"
	"os"
	"time"

	"github.com/gabapcia/faucet/internal/faucet"

	"github.com/urfave/cli/v3"
)

// Server is the long-running transport started by the serve command.
type Server interface {
	ListenAndServe(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// Wallet exposes the operator account funding the claims.
type Wallet interface {
	Address() string
	Balance(ctx context.Context) (*big.Int, error)
}

// Application builds the components each command needs. Components are
// created on first use, so a command only connects to what it uses
// (e.g., export never dials the chain node).
type Application interface {
	Service(ctx context.Context) (faucet.Service, error)
	StatusReader(ctx context.Context) (faucet.StatusReader, error)
	Server(ctx context.Context) (Server, error)
	Claims(ctx context.Context) (faucet.ClaimLister, error)
	Wallet(ctx context.Context) (Wallet, error)
}

type config struct {
	decimals        int32
	shutdownTimeout time.Duration
}

type Option func(*config)

// WithDecimals sets the decimals used to render base unit balances. Default: 18.
func WithDecimals(decimals int32) Option {
	return func(c *config) {
		c.decimals = decimals
	}
}

// WithShutdownTimeout sets the default drain window of the serve command. Default: 15 seconds.
func WithShutdownTimeout(d time.Duration) Option {
	return func(c *config) {
		c.shutdownTimeout = d
	}
}

// Run initializes and executes the faucet CLI application.
//
// It registers all available commands, including:
//
//   - `serve`: Starts the HTTP server.
//   - `claim`: Runs one claim for an address.
//   - `status`: Reports whether an address already claimed.
//   - `export`: Writes every claim record as CSV.
//   - `balance`: Prints the operator account balance.
func Run(ctx context.Context, app Application, opts ...Option) error {
	cmd := newCommand(app, opts...)
	return cmd.Run(ctx, os.Args)
}

func newCommand(app Application, opts ...Option) *cli.Command {
	cfg := config{
		decimals:        18,
		shutdownTimeout: defaultShutdownTimeout,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &cli.Command{
		EnableShellCompletion: true,
		Name:                  "faucet",
		Description:           "Testnet faucet granting each address a single token claim.",
		Usage:                 "faucet [command] [flags]",
		Commands: []*cli.Command{
			serveCommand(app, cfg.shutdownTimeout),
			claimCommand(app),
			statusCommand(app),
			exportCommand(app),
			balanceCommand(app, cfg.decimals),
		},
	}
}
