// Package cache decorates a faucet.ClaimStorage with an in-memory cache of
// positive HasClaimed answers.
//
// Claim records are immutable, so once an address is known to have claimed the
// answer never changes. Negative answers are never cached: a claim recorded by
// another instance must be visible on the next read.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/gabapcia/faucet/internal/faucet"

	gocache "github.com/patrickmn/go-cache"
)

const (
	defaultTTL             = time.Hour
	defaultCleanupInterval = 10 * time.Minute
)

type claimCache struct {
	next  faucet.ClaimStorage
	cache *gocache.Cache
}

type config struct {
	ttl             time.Duration
	cleanupInterval time.Duration
}

type Option func(*config)

// WithTTL bounds how long a positive answer is kept in memory. Default: 1 hour.
func WithTTL(d time.Duration) Option {
	return func(c *config) {
		c.ttl = d
	}
}

// WithCleanupInterval sets how often expired entries are purged. Default: 10 minutes.
func WithCleanupInterval(d time.Duration) Option {
	return func(c *config) {
		c.cleanupInterval = d
	}
}

// New wraps next with the positive answer cache.
func New(next faucet.ClaimStorage, opts ...Option) *claimCache {
	cfg := config{
		ttl:             defaultTTL,
		cleanupInterval: defaultCleanupInterval,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &claimCache{
		next:  next,
		cache: gocache.New(cfg.ttl, cfg.cleanupInterval),
	}
}

// HasClaimed answers from memory when the address is known to have claimed,
// and asks the underlying storage otherwise.
func (c *claimCache) HasClaimed(ctx context.Context, address string) (bool, error) {
	if _, found := c.cache.Get(address); found {
		return true, nil
	}

	claimed, err := c.next.HasClaimed(ctx, address)
	if err != nil {
		return false, err
	}

	if claimed {
		c.cache.SetDefault(address, struct{}{})
	}

	return claimed, nil
}

// MarkClaimed always writes through. Both a created and a duplicate record
// prove the address has claimed.
func (c *claimCache) MarkClaimed(ctx context.Context, address, txReference string) error {
	err := c.next.MarkClaimed(ctx, address, txReference)
	if err == nil || errors.Is(err, faucet.ErrDuplicateClaim) {
		c.cache.SetDefault(address, struct{}{})
	}

	return err
}

var _ faucet.ClaimStorage = new(claimCache)
