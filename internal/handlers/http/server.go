// Package http exposes the faucet claim service over HTTP using echo.
package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gabapcia/faucet/internal/faucet"
	"github.com/gabapcia/faucet/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"golang.org/x/time/rate"
)

const (
	defaultReadTimeout  = 10 * time.Second
	defaultWriteTimeout = 90 * time.Second
	defaultBodyLimit    = "4K"
)

type server struct {
	echo       *echo.Echo
	httpServer *http.Server
}

type config struct {
	serviceName  string
	readTimeout  time.Duration
	writeTimeout time.Duration
	rateLimit    rate.Limit
	rateBurst    int
}

type Option func(*config)

// WithServiceName sets the service name reported on request spans. Default: "faucet".
func WithServiceName(name string) Option {
	return func(c *config) {
		c.serviceName = name
	}
}

// WithTimeouts sets the read and write timeouts of the underlying http.Server.
// The write timeout must cover a full disbursement.
func WithTimeouts(read, write time.Duration) Option {
	return func(c *config) {
		c.readTimeout = read
		c.writeTimeout = write
	}
}

// WithRateLimit limits claim endpoints to perSecond requests per client IP with
// the given burst. A zero rate disables limiting.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *config) {
		c.rateLimit = rate.Limit(perSecond)
		c.rateBurst = burst
	}
}

// New builds the HTTP server serving svc on addr.
func New(addr string, svc faucet.Service, opts ...Option) *server {
	cfg := config{
		serviceName:  "faucet",
		readTimeout:  defaultReadTimeout,
		writeTimeout: defaultWriteTimeout,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(
		middleware.Recover(),
		middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}),
		otelecho.Middleware(cfg.serviceName),
		deriveLogger(),
		requestLogger(),
	)

	h := &handler{svc: svc}

	e.GET("/healthz", h.health)

	claims := e.Group("/claim-faucet", bodyLimit(defaultBodyLimit))
	if cfg.rateLimit > 0 {
		claims.Use(rateLimiter(cfg.rateLimit, cfg.rateBurst))
	}
	claims.POST("", h.claim)
	claims.GET("", h.status)

	return &server{
		echo: e,
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      e,
			ReadTimeout:  cfg.readTimeout,
			WriteTimeout: cfg.writeTimeout,
		},
	}
}

// Handler returns the routed handler, for embedding or tests.
func (s *server) Handler() http.Handler {
	return s.echo
}

// ListenAndServe blocks serving requests until Shutdown is called.
func (s *server) ListenAndServe(ctx context.Context) error {
	logger.Info(ctx, "http server listening", "addr", s.httpServer.Addr)

	err := s.httpServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// Shutdown stops accepting connections and waits for in-flight claims to finish.
func (s *server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
