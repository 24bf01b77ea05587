package faucet

import (
	"context"
	"errors"
	"math/big"
)

var (
	// ErrInsufficientOperatorFunds indicates the operator account cannot cover the amount and fees.
	ErrInsufficientOperatorFunds = errors.New("insufficient operator funds")

	// ErrNetwork indicates the ledger node could not be reached.
	ErrNetwork = errors.New("network error")

	// ErrTransactionRejected indicates the node refused the transaction (revert, nonce, fee rules).
	ErrTransactionRejected = errors.New("transaction rejected")

	// ErrDisbursementTimeout indicates the send did not complete in time. The outcome is
	// ambiguous: the transaction may or may not have been broadcast.
	ErrDisbursementTimeout = errors.New("disbursement timed out")
)

// disbursementReasons lists the classified failures surfaced to users, in match order.
var disbursementReasons = []error{
	ErrInsufficientOperatorFunds,
	ErrDisbursementTimeout,
	ErrNetwork,
	ErrTransactionRejected,
}

// Disburser transfers value from the operator-held account to a recipient.
//
// Implementations own every signing concern, including nonce sequencing for the
// shared operator key. No idempotency key is passed, so callers must not blindly
// retry a failed or timed-out Send.
type Disburser interface {
	// Send submits a transfer of amount (in base units) to the given normalized address.
	//
	// It returns once the transaction was accepted for broadcast, not when it is mined.
	//
	// Returns:
	//   - the transaction reference (e.g., transaction hash) on success.
	//   - an error wrapping one of ErrInsufficientOperatorFunds, ErrNetwork,
	//     ErrTransactionRejected or ErrDisbursementTimeout when it can be classified.
	Send(ctx context.Context, to string, amount *big.Int) (string, error)
}
