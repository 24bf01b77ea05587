package faucet

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const instrumentationName = "github.com/gabapcia/faucet/internal/faucet"

const (
	anomalyDuplicateClaim = "duplicate_claim"
	anomalyRecordFailure  = "record_failure"
)

var tracer = otel.Tracer(instrumentationName)

// metrics holds the counters emitted by the claim flow.
type metrics struct {
	claims    metric.Int64Counter
	anomalies metric.Int64Counter
}

// newMetrics registers the instruments on the global meter provider.
// Registration failures fall back to no-op counters.
func newMetrics() metrics {
	meter := otel.Meter(instrumentationName)

	claims, err := meter.Int64Counter(
		"faucet.claims",
		metric.WithDescription("Claim attempts by outcome"),
	)
	if err != nil {
		otel.Handle(err)
		claims = noop.Int64Counter{}
	}

	anomalies, err := meter.Int64Counter(
		"faucet.reconciliation.anomalies",
		metric.WithDescription("Disbursements sent without a matching claim record written by the same request"),
	)
	if err != nil {
		otel.Handle(err)
		anomalies = noop.Int64Counter{}
	}

	return metrics{claims: claims, anomalies: anomalies}
}

func (m metrics) recordClaim(ctx context.Context, err error) {
	m.claims.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome(err))))
}

func (m metrics) recordAnomaly(ctx context.Context, kind string) {
	m.anomalies.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// outcome converts a Claim result into a low-cardinality metric label.
func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrInvalidAddress):
		return "invalid_address"
	case errors.Is(err, ErrAlreadyClaimed):
		return "already_claimed"
	case errors.Is(err, ErrClaimInProgress):
		return "in_progress"
	case errors.Is(err, ErrStoreUnavailable):
		return "store_unavailable"
	case errors.Is(err, ErrDisbursementFailed):
		return "disbursement_failed"
	default:
		return "error"
	}
}
