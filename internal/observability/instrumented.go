package observability

import (
	"context"
	"time"

	"deployverify/internal/models"
	"deployverify/internal/pipeline"
	"deployverify/internal/stack"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// callInstruments records a span, a latency histogram and an error counter for
// every call to a remote dependency.
type callInstruments struct {
	prefix   string
	tracer   trace.Tracer
	duration metric.Float64Histogram
	errors   metric.Int64Counter
}

func newCallInstruments(scope, prefix string) (*callInstruments, error) {
	meter := otel.Meter(scope)

	duration, err := meter.Float64Histogram(
		prefix+".operation.duration",
		metric.WithDescription("Duration of "+prefix+" operations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	errCounter, err := meter.Int64Counter(
		prefix+".operation.errors",
		metric.WithDescription("Number of failed "+prefix+" operations"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	return &callInstruments{
		prefix:   prefix,
		tracer:   otel.Tracer(scope),
		duration: duration,
		errors:   errCounter,
	}, nil
}

func (c *callInstruments) start(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span, time.Time) {
	ctx, span := c.tracer.Start(ctx, c.prefix+"."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(append([]attribute.KeyValue{
			attribute.String(c.prefix+".operation", operation),
		}, attrs...)...),
	)
	return ctx, span, time.Now()
}

func (c *callInstruments) end(ctx context.Context, span trace.Span, operation string, start time.Time, err error) {
	attrs := metric.WithAttributes(attribute.String("operation", operation))

	c.duration.Record(ctx, time.Since(start).Seconds(), attrs)

	if err != nil {
		c.errors.Add(ctx, 1, attrs)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}

	span.End()
}

// InstrumentedResolver wraps a stack.Resolver with tracing and metrics.
type InstrumentedResolver struct {
	inner stack.Resolver
	calls *callInstruments
}

func NewInstrumentedResolver(inner stack.Resolver) (*InstrumentedResolver, error) {
	calls, err := newCallInstruments("deployverify/stack", "stack")
	if err != nil {
		return nil, err
	}
	return &InstrumentedResolver{inner: inner, calls: calls}, nil
}

func (r *InstrumentedResolver) Outputs(ctx context.Context, stackName string) ([]models.StackOutput, error) {
	ctx, span, start := r.calls.start(ctx, "Outputs", attribute.String("stack.name", stackName))
	outputs, err := r.inner.Outputs(ctx, stackName)
	span.SetAttributes(attribute.Int("stack.outputs", len(outputs)))
	r.calls.end(ctx, span, "Outputs", start, err)
	return outputs, err
}

// InstrumentedReporter wraps a pipeline.Reporter with tracing and metrics.
type InstrumentedReporter struct {
	inner pipeline.Reporter
	calls *callInstruments
}

func NewInstrumentedReporter(inner pipeline.Reporter) (*InstrumentedReporter, error) {
	calls, err := newCallInstruments("deployverify/pipeline", "pipeline")
	if err != nil {
		return nil, err
	}
	return &InstrumentedReporter{inner: inner, calls: calls}, nil
}

func (r *InstrumentedReporter) ReportSuccess(ctx context.Context, jobID, message string) error {
	ctx, span, start := r.calls.start(ctx, "ReportSuccess", attribute.String("job.id", jobID))
	err := r.inner.ReportSuccess(ctx, jobID, message)
	r.calls.end(ctx, span, "ReportSuccess", start, err)
	return err
}

func (r *InstrumentedReporter) ReportFailure(ctx context.Context, jobID, message, failureType string) error {
	ctx, span, start := r.calls.start(ctx, "ReportFailure",
		attribute.String("job.id", jobID),
		attribute.String("failure.type", failureType),
	)
	err := r.inner.ReportFailure(ctx, jobID, message, failureType)
	r.calls.end(ctx, span, "ReportFailure", start, err)
	return err
}

var (
	_ stack.Resolver    = (*InstrumentedResolver)(nil)
	_ pipeline.Reporter = (*InstrumentedReporter)(nil)
)
