// Package faucet authorizes one-time testnet token claims.
//
// A claim is honored at most once per address: the address is validated and
// normalized, the claim store is consulted, value is sent through a Disburser,
// and the claim is recorded with an atomic insert-if-absent.
//
// Without a Locker, two concurrent claims for the same unclaimed address can
// both pass the HasClaimed check and both disburse before either records. The
// store still keeps exactly one record; the extra disbursement is logged and
// counted as a reconciliation anomaly.
package faucet

import (
	"context"
	"math/big"
	"time"
)

const defaultRecordTimeout = 10 * time.Second

// Service is the claim-authorization entry point used by transport handlers.
type Service interface {
	// Claim disburses the configured amount to address unless it already claimed.
	//
	// Returns:
	//   - the receipt with the normalized address and the transaction reference.
	//   - ErrInvalidAddress, ErrAlreadyClaimed, ErrClaimInProgress,
	//     ErrStoreUnavailable or ErrDisbursementFailed otherwise.
	Claim(ctx context.Context, address string) (Receipt, error)

	// Status reports whether address already claimed.
	//
	// Returns ErrInvalidAddress or ErrStoreUnavailable on failure.
	Status(ctx context.Context, address string) (bool, error)
}

// StatusReader answers claim status queries.
type StatusReader interface {
	Status(ctx context.Context, address string) (bool, error)
}

// Receipt is returned by a successful Claim.
type Receipt struct {
	Address     string `json:"address"`
	TxReference string `json:"txReference"`
}

type service struct {
	amount              *big.Int
	disbursementTimeout time.Duration
	recordTimeout       time.Duration
	locker              Locker

	claimStorage ClaimStorage
	disburser    Disburser
	metrics      metrics
}

var _ Service = (*service)(nil)

type config struct {
	disbursementTimeout time.Duration
	recordTimeout       time.Duration
	locker              Locker
}

type Option func(*config)

// New builds the claim service. amount is expressed in the token's base units
// and is copied, so later changes to the caller's value have no effect.
//
// Defaults: no per-address lock, no disbursement timeout beyond the caller's
// context, and a 10s bound on the record write.
func New(cs ClaimStorage, d Disburser, amount *big.Int, opts ...Option) *service {
	cfg := config{
		recordTimeout: defaultRecordTimeout,
		locker:        nopLocker{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &service{
		amount:              new(big.Int).Set(amount),
		disbursementTimeout: cfg.disbursementTimeout,
		recordTimeout:       cfg.recordTimeout,
		locker:              cfg.locker,
		claimStorage:        cs,
		disburser:           d,
		metrics:             newMetrics(),
	}
}

// NewStatusReader returns a read-only StatusReader over cs. It needs no
// Disburser, so status checks keep working while the chain node is down.
func NewStatusReader(cs ClaimStorage) StatusReader {
	return &service{
		claimStorage: cs,
		metrics:      newMetrics(),
	}
}

// WithLocker serializes claims per address using l.
func WithLocker(l Locker) Option {
	return func(c *config) {
		c.locker = l
	}
}

// WithDisbursementTimeout bounds each Send call. Zero means no extra bound.
func WithDisbursementTimeout(d time.Duration) Option {
	return func(c *config) {
		c.disbursementTimeout = d
	}
}

// WithRecordTimeout bounds the claim record write that follows a successful Send.
func WithRecordTimeout(d time.Duration) Option {
	return func(c *config) {
		c.recordTimeout = d
	}
}
