package faucet

import (
	"context"
	"time"
)

// ClaimRecord is the durable proof that an address was funded.
// Records are immutable once written.
type ClaimRecord struct {
	Address     string    `json:"address" csv:"address"`
	ClaimedAt   time.Time `json:"claimed_at" csv:"claimed_at"`
	TxReference string    `json:"tx_reference" csv:"tx_reference"`
}

// ClaimStorage defines the durable, idempotent mapping from a normalized
// address to its claim record.
//
// Implementations must provide an atomic insert-if-absent: it is the only
// mechanism that guarantees at most one record per address under concurrency.
// There is no update or delete path.
type ClaimStorage interface {
	// HasClaimed reports whether a record exists for the address.
	//
	// Returns:
	//   - false, nil when no record exists.
	//   - an error wrapping ErrStoreUnavailable when the store cannot be queried.
	HasClaimed(ctx context.Context, address string) (bool, error)

	// MarkClaimed atomically inserts a record for the address with the current time.
	//
	// Returns:
	//   - nil when the record was created.
	//   - ErrDuplicateClaim when a record already exists (the existing record is untouched).
	//   - an error wrapping ErrStoreUnavailable on I/O failure.
	MarkClaimed(ctx context.Context, address, txReference string) error
}

// ClaimLister enumerates every stored claim record, for reconciliation exports.
type ClaimLister interface {
	ListClaims(ctx context.Context) ([]ClaimRecord, error)
}
