package faucet

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAddress is returned when the address is not a 0x-prefixed, 40 hex character identifier.
	// Neither the store nor the disburser is contacted.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrAlreadyClaimed is returned when a claim record already exists for the address.
	// It is terminal and must not be retried.
	ErrAlreadyClaimed = errors.New("already claimed")

	// ErrStoreUnavailable indicates the claim store could not be read or written.
	// On the read path the claim fails closed; retrying later is safe.
	ErrStoreUnavailable = errors.New("claim store unavailable")

	// ErrDuplicateClaim is returned by ClaimStorage.MarkClaimed when a record already exists.
	ErrDuplicateClaim = errors.New("duplicate claim")

	// ErrDisbursementFailed wraps any Disburser failure. No claim record is written,
	// so the address stays eligible.
	ErrDisbursementFailed = errors.New("disbursement failed")

	// ErrClaimRecordedFailure marks a record write that failed after value was already sent.
	// It is logged for reconciliation and never returned to callers.
	ErrClaimRecordedFailure = errors.New("claim record failure")

	// ErrClaimInProgress is returned when the per-address lock could not be acquired.
	ErrClaimInProgress = errors.New("claim already in progress")
)

// wrapStoreUnavailable tags err with ErrStoreUnavailable unless it already carries it.
func wrapStoreUnavailable(err error) error {
	if errors.Is(err, ErrStoreUnavailable) {
		return err
	}

	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}

// Reason maps an error returned by Service into the short message shown to end users.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidAddress):
		return "Invalid address"
	case errors.Is(err, ErrAlreadyClaimed):
		return "Already claimed"
	case errors.Is(err, ErrClaimInProgress):
		return "Claim already in progress"
	case errors.Is(err, ErrStoreUnavailable):
		return "Database error"
	case errors.Is(err, ErrDisbursementFailed):
		for _, reason := range disbursementReasons {
			if errors.Is(err, reason) {
				return "Failed to send token: " + reason.Error()
			}
		}
		return "Failed to send token"
	default:
		return "Internal error"
	}
}
