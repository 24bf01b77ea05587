package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gabapcia/faucet/internal/pkg/logger"

	"github.com/urfave/cli/v3"
)

const defaultShutdownTimeout = 15 * time.Second

// serveCommand returns a CLI command that starts the HTTP server.
//
// Usage example:
//
//	faucet serve
//
// The server runs until it receives an interrupt (SIGINT or SIGTERM), then
// drains in-flight claims for up to --shutdown-timeout.
func serveCommand(app Application, shutdownTimeout time.Duration) *cli.Command {
	return &cli.Command{
		Name:        "serve",
		Description: "Starts the HTTP server exposing the claim endpoints.",
		Usage:       "Serves /claim-faucet until Ctrl+C or a termination signal.",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "shutdown-timeout",
				Usage: "Maximum time to wait for in-flight requests on shutdown",
				Value: shutdownTimeout,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			srv, err := app.Server(ctx)
			if err != nil {
				return err
			}

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(quit)

			return serve(ctx, srv, quit, c.Duration("shutdown-timeout"))
		},
	}
}

// serve runs srv until it fails, quit fires or ctx is done, then shuts it down gracefully.
func serve(ctx context.Context, srv Server, quit <-chan os.Signal, shutdownTimeout time.Duration) error {
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.ListenAndServe(ctx)
	}()

	select {
	case err := <-serveErr:
		return err
	case sig := <-quit:
		logger.Info(ctx, "shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info(ctx, "context done, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	select {
	case err := <-serveErr:
		return err
	case <-shutdownCtx.Done():
		return shutdownCtx.Err()
	}
}
