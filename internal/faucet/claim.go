package faucet

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/gabapcia/faucet/internal/pkg/logger"
	"github.com/gabapcia/faucet/internal/pkg/types"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Claim implements Service.
func (s *service) Claim(ctx context.Context, address string) (Receipt, error) {
	ctx, span := tracer.Start(ctx, "faucet.Claim")
	defer span.End()

	receipt, err := s.claim(ctx, address)
	s.metrics.recordClaim(ctx, err)
	endSpan(span, err)

	return receipt, err
}

// Status implements Service.
func (s *service) Status(ctx context.Context, address string) (bool, error) {
	ctx, span := tracer.Start(ctx, "faucet.Status")
	defer span.End()

	addr, err := parseAddress(address)
	if err != nil {
		endSpan(span, err)
		return false, err
	}
	span.SetAttributes(attribute.String("faucet.address", addr))

	claimed, err := s.claimStorage.HasClaimed(ctx, addr)
	if err != nil {
		err = wrapStoreUnavailable(err)
		logger.Error(ctx, "failed to read claim record", "address", addr, "error", err)
		endSpan(span, err)
		return false, err
	}

	return claimed, nil
}

func (s *service) claim(ctx context.Context, address string) (Receipt, error) {
	addr, err := parseAddress(address)
	if err != nil {
		return Receipt{}, err
	}
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("faucet.address", addr))
	ctx = logger.Derive(ctx, "address", addr)

	unlock, err := s.locker.Lock(ctx, addr)
	if err != nil {
		if !errors.Is(err, ErrClaimInProgress) {
			err = fmt.Errorf("%w: %w", ErrClaimInProgress, err)
		}
		logger.Warn(ctx, "failed to acquire claim lock", "error", err)
		return Receipt{}, err
	}
	defer unlock()

	claimed, err := s.claimStorage.HasClaimed(ctx, addr)
	if err != nil {
		err = wrapStoreUnavailable(err)
		logger.Error(ctx, "failed to read claim record", "error", err)
		return Receipt{}, err
	}
	if claimed {
		logger.Info(ctx, "address already claimed")
		return Receipt{}, ErrAlreadyClaimed
	}

	txReference, err := s.send(ctx, addr)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrDisbursementFailed, err)
		logger.Error(ctx, "failed to send token", "error", err)
		return Receipt{}, err
	}
	logger.Info(ctx, "token sent", "tx_reference", txReference)

	s.record(ctx, addr, txReference)

	return Receipt{Address: addr, TxReference: txReference}, nil
}

// send calls the disburser under the optional disbursement timeout. A deadline
// hit is reported as ErrDisbursementTimeout since the outcome is unknown.
func (s *service) send(ctx context.Context, addr string) (string, error) {
	if s.disbursementTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.disbursementTimeout)
		defer cancel()
	}

	txReference, err := s.disburser.Send(ctx, addr, new(big.Int).Set(s.amount))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, ErrDisbursementTimeout) {
			err = fmt.Errorf("%w: %w", ErrDisbursementTimeout, err)
		}
		return "", err
	}

	return txReference, nil
}

// record persists the claim after value was sent. The caller's cancellation is
// ignored: once the disbursement happened the record must be attempted. Failures
// are never returned; they are logged and counted for reconciliation.
func (s *service) record(ctx context.Context, addr, txReference string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.recordTimeout)
	defer cancel()

	err := s.claimStorage.MarkClaimed(ctx, addr, txReference)
	switch {
	case err == nil:
		logger.Info(ctx, "claim recorded", "tx_reference", txReference)
	case errors.Is(err, ErrDuplicateClaim):
		s.metrics.recordAnomaly(ctx, anomalyDuplicateClaim)
		logger.Warn(ctx, "claim recorded by a concurrent request; disbursement needs reconciliation",
			"tx_reference", txReference,
			"error", err,
		)
	default:
		s.metrics.recordAnomaly(ctx, anomalyRecordFailure)
		logger.Error(ctx, "failed to record claim after disbursement; disbursement needs reconciliation",
			"tx_reference", txReference,
			"error", fmt.Errorf("%w: %w", ErrClaimRecordedFailure, err),
		)
	}
}

func parseAddress(address string) (string, error) {
	addr, err := types.AddressFromString(address)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}

	return addr.Normalize().String(), nil
}

func endSpan(span trace.Span, err error) {
	if err == nil {
		span.SetStatus(codes.Ok, "")
		return
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
