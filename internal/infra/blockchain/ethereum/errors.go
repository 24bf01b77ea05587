package ethereum

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/gabapcia/faucet/internal/faucet"

	"github.com/ethereum/go-ethereum/rpc"
)

var (
	// ErrInvalidPrivateKey is returned when the operator key is not 32 bytes of hex.
	ErrInvalidPrivateKey = errors.New("invalid operator private key")

	// ErrInvalidAmount is returned when the amount to send is missing or not positive.
	ErrInvalidAmount = errors.New("invalid amount")
)

// rejectionMessages are node error fragments meaning the transaction itself was refused.
var rejectionMessages = []string{
	"execution reverted",
	"nonce too low",
	"nonce too high",
	"underpriced",
	"intrinsic gas too low",
	"exceeds block gas limit",
	"gas limit reached",
	"invalid sender",
}

// isAlreadyKnown reports whether the node already holds the exact transaction.
func isAlreadyKnown(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "already known")
}

// classify tags a node error with the matching faucet disbursement sentinel.
// Errors that fit no class are returned unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var tag error
	msg := strings.ToLower(err.Error())

	var (
		httpErr rpc.HTTPError
		rpcErr  rpc.Error
		netErr  net.Error
	)

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		tag = faucet.ErrDisbursementTimeout
	case strings.Contains(msg, "insufficient funds"):
		tag = faucet.ErrInsufficientOperatorFunds
	case containsAny(msg, rejectionMessages):
		tag = faucet.ErrTransactionRejected
	case errors.As(err, &httpErr), errors.As(err, &netErr):
		tag = faucet.ErrNetwork
	case errors.As(err, &rpcErr):
		tag = faucet.ErrTransactionRejected
	default:
		return err
	}

	if errors.Is(err, tag) {
		return err
	}

	return fmt.Errorf("%w: %w", tag, err)
}

func containsAny(s string, fragments []string) bool {
	for _, f := range fragments {
		if strings.Contains(s, f) {
			return true
		}
	}

	return false
}
