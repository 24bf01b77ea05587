// Command faucet runs the testnet faucet: an HTTP service (and operator CLI)
// that sends a fixed amount of tokens to each address at most once.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gabapcia/faucet/internal/handlers/cli"
	"github.com/gabapcia/faucet/internal/pkg/config"
	"github.com/gabapcia/faucet/internal/pkg/logger"
	"github.com/gabapcia/faucet/internal/pkg/telemetry"
)

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if cfg.TelemetryEnabled {
		shutdown, err := telemetry.Init(ctx, cfg.ServiceName)
		if err != nil {
			return fmt.Errorf("initializing telemetry: %w", err)
		}
		defer func() {
			if shutdownErr := shutdown(context.WithoutCancel(ctx)); shutdownErr != nil {
				fmt.Fprintln(os.Stderr, "telemetry shutdown:", shutdownErr)
			}
		}()
	}

	if err := logger.Init(cfg.LogLevel); err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	app := newApplication(cfg)
	defer app.Close(ctx)

	return cli.Run(ctx, app,
		cli.WithDecimals(cfg.Claim.Decimals),
		cli.WithShutdownTimeout(cfg.HTTP.ShutdownTimeout),
	)
}
