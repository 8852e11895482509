package observability

import (
	"context"
	"time"

	"deployverify/internal/models"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// VerificationMetrics counts verification outcomes by status and failure kind.
type VerificationMetrics struct {
	outcomes metric.Int64Counter
	duration metric.Float64Histogram
}

func NewVerificationMetrics() (*VerificationMetrics, error) {
	meter := otel.Meter("deployverify/verify")

	outcomes, err := meter.Int64Counter(
		"verification.outcomes",
		metric.WithDescription("Number of verified pipeline jobs"),
		metric.WithUnit("{job}"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		"verification.duration",
		metric.WithDescription("Time from job receipt to outcome in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &VerificationMetrics{outcomes: outcomes, duration: duration}, nil
}

// RecordOutcome satisfies verify.OutcomeRecorder.
func (m *VerificationMetrics) RecordOutcome(ctx context.Context, outcome *models.Outcome, reported bool) {
	kind := outcome.Kind
	if kind == "" {
		kind = "none"
	}
	attrs := metric.WithAttributes(
		attribute.String("status", outcome.Status),
		attribute.String("kind", kind),
		attribute.Bool("reported", reported),
	)

	m.outcomes.Add(ctx, 1, attrs)
	if d, err := time.ParseDuration(outcome.Duration); err == nil {
		m.duration.Record(ctx, d.Seconds(), attrs)
	}
}
