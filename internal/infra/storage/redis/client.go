// Package redis implements the faucet's claim storage and per-address lock on Redis.
package redis

import (
	"context"
	"time"

	"github.com/gabapcia/faucet/internal/pkg/resilience/retry"

	redis "github.com/redis/go-redis/v9"
)

const (
	defaultLockTTL          = time.Minute
	defaultLockWaitAttempts = 50
	defaultLockWaitDelay    = 100 * time.Millisecond
)

type client struct {
	conn *redis.Client

	lockTTL   time.Duration
	lockRetry retry.Retry
}

type config struct {
	lockTTL          time.Duration
	lockWaitAttempts uint
	lockWaitDelay    time.Duration
}

type Option func(*config)

// WithLockTTL sets how long a claim lock survives if its holder never releases it.
// It must exceed the longest expected disbursement plus record write.
// Default: 1 minute.
func WithLockTTL(d time.Duration) Option {
	return func(c *config) {
		c.lockTTL = d
	}
}

// WithLockWait sets how many times, and how often, Lock polls a busy key before
// giving up with faucet.ErrClaimInProgress.
// Default: 50 attempts every 100ms.
func WithLockWait(attempts uint, delay time.Duration) Option {
	return func(c *config) {
		c.lockWaitAttempts = attempts
		c.lockWaitDelay = delay
	}
}

func (c *client) Close() error {
	return c.conn.Close()
}

// NewClient connects to Redis and checks the connection, retrying the ping with backoff.
func NewClient(ctx context.Context, addr, username, password string, db int, opts ...Option) (*client, error) {
	cfg := config{
		lockTTL:          defaultLockTTL,
		lockWaitAttempts: defaultLockWaitAttempts,
		lockWaitDelay:    defaultLockWaitDelay,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	conn := redis.NewClient(&redis.Options{
		Addr:     addr,
		Username: username,
		Password: password,
		DB:       db,
	})

	ping := retry.New(retry.WithAttempts(3), retry.WithDelay(200*time.Millisecond))
	if err := ping.Execute(ctx, func() error { return conn.Ping(ctx).Err() }); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return &client{
		conn:    conn,
		lockTTL: cfg.lockTTL,
		lockRetry: retry.New(
			retry.WithAttempts(cfg.lockWaitAttempts),
			retry.WithDelay(cfg.lockWaitDelay),
			retry.WithFixedDelay(),
			retry.WithRetryIf(isLockBusy),
		),
	}, nil
}
