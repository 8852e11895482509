// Package verify implements the deployment verifier: it resolves the URL a
// stack publishes, checks that the URL answers 200, and reports the result for
// the pipeline job exactly once.
package verify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"deployverify/internal/models"
	"deployverify/internal/pipeline"
	"deployverify/internal/probe"
	"deployverify/internal/stack"

	"github.com/aws/aws-lambda-go/events"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrReportFailed is returned when the pipeline did not accept the job result.
var ErrReportFailed = errors.New("failed to report job result")

const (
	// DefaultReportTimeout bounds the call that delivers the outcome.
	DefaultReportTimeout = 10 * time.Second
	// DefaultReportReserve is kept free before the caller's deadline so the
	// outcome can still be reported after a slow check.
	DefaultReportReserve = 5 * time.Second
)

// OutcomeRecorder observes every outcome the service produces.
type OutcomeRecorder interface {
	RecordOutcome(ctx context.Context, outcome *models.Outcome, reported bool)
}

// Option configures a Service.
type Option func(*Service)

// WithOutputKey changes the stack output key holding the endpoint URL.
func WithOutputKey(key string) Option {
	return func(s *Service) {
		s.outputKey = key
	}
}

// WithOutcomeRecorder registers a recorder notified after each verification.
func WithOutcomeRecorder(recorder OutcomeRecorder) Option {
	return func(s *Service) {
		s.recorder = recorder
	}
}

// WithReportTimeout bounds the report call, which runs detached from the
// caller's cancellation.
func WithReportTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		s.reportTimeout = timeout
	}
}

// WithReportReserve sets how much of the caller's deadline is held back for
// reporting. At most half of the remaining time is reserved.
func WithReportReserve(reserve time.Duration) Option {
	return func(s *Service) {
		s.reportReserve = reserve
	}
}

// WithLogger replaces the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// Service verifies deployments for pipeline jobs
type Service struct {
	resolver  stack.Resolver
	prober    probe.Prober
	reporter  pipeline.Reporter
	outputKey string
	recorder  OutcomeRecorder
	logger    *slog.Logger
	tracer    trace.Tracer

	reportTimeout time.Duration
	reportReserve time.Duration
}

// NewService creates a verifier with the given collaborators
func NewService(resolver stack.Resolver, prober probe.Prober, reporter pipeline.Reporter, opts ...Option) *Service {
	s := &Service{
		resolver:  resolver,
		prober:    prober,
		reporter:  reporter,
		outputKey: models.URLOutputKey,
		logger:    slog.With("component", "verifier"),
		tracer:    otel.Tracer("deployverify/verify"),

		reportTimeout: DefaultReportTimeout,
		reportReserve: DefaultReportReserve,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// VerifyEvent parses a CodePipeline job event and verifies it. Parameter errors are
// reported to the pipeline as failures whenever the event carries a job id.
func (s *Service) VerifyEvent(ctx context.Context, event events.CodePipelineJobEvent) (*models.Outcome, error) {
	req, err := models.ParseJobRequest(event)
	return s.run(ctx, req, err)
}

// Verify runs the check for req and reports the outcome to the pipeline.
//
// The returned outcome is never nil. A verification that fails is a failure
// outcome, not an error: the error is non-nil only when the outcome could not be
// delivered to the pipeline (no job id, or the report call failed).
func (s *Service) Verify(ctx context.Context, req *models.JobRequest) (*models.Outcome, error) {
	if req == nil {
		return s.run(ctx, &models.JobRequest{}, models.ErrMissingRequest)
	}
	return s.run(ctx, req, req.Validate())
}

func (s *Service) run(ctx context.Context, req *models.JobRequest, inputErr error) (*models.Outcome, error) {
	ctx, span := s.tracer.Start(ctx, "verify.Job", trace.WithAttributes(
		attribute.String("job.id", req.JobID),
		attribute.String("stack.name", req.StackName),
	))
	defer span.End()

	start := time.Now()
	var (
		url        string
		statusCode int
		verr       *VerificationError
	)
	if inputErr != nil {
		verr = NewInputError(inputErr)
	} else {
		checkCtx, cancel := s.checkContext(ctx)
		url, statusCode, verr = s.check(checkCtx, req)
		cancel()
	}

	var outcome *models.Outcome
	if verr == nil {
		outcome = models.NewSuccessOutcome(req, url, statusCode)
	} else {
		outcome = models.NewFailureOutcome(req, verr.Kind, verr.pipelineMessage())
		outcome.URL = url
		outcome.StatusCode = statusCode
		outcome.Detail = verr.Error()
		span.SetAttributes(attribute.String("verify.kind", verr.Kind))
		s.logger.Warn("Deployment verification failed",
			"job_id", req.JobID,
			"stack", req.StackName,
			"kind", verr.Kind,
			"error", verr)
	}
	outcome.Duration = time.Since(start).String()
	span.SetAttributes(attribute.String("verify.status", outcome.Status))

	err := s.report(ctx, outcome)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if s.recorder != nil {
		s.recorder.RecordOutcome(ctx, outcome, err == nil)
	}

	return outcome, err
}

// checkContext derives the context for lookup and probe. When ctx carries a
// deadline, the check ends early enough to leave time for the report.
func (s *Service) checkContext(ctx context.Context) (context.Context, context.CancelFunc) {
	deadline, ok := ctx.Deadline()
	if !ok {
		return context.WithCancel(ctx)
	}
	reserve := s.reportReserve
	if half := time.Until(deadline) / 2; reserve > half {
		reserve = half
	}
	return context.WithDeadline(ctx, deadline.Add(-reserve))
}

// check performs lookup, resolution and the GET in strict sequence.
func (s *Service) check(ctx context.Context, req *models.JobRequest) (string, int, *VerificationError) {
	outputs, err := s.resolver.Outputs(ctx, req.StackName)
	if err != nil {
		return "", 0, NewLookupError(req.StackName, err)
	}

	url, found := models.ResolveOutput(outputs, s.outputKey)
	if !found {
		s.logger.Warn("Stack has no URL output", "stack", req.StackName, "output_key", s.outputKey)
		return "", 0, NewNetworkError("", probe.ErrEmptyURL)
	}
	s.logger.Info("Resolved endpoint", "stack", req.StackName, "url", url)

	statusCode, err := s.prober.Check(ctx, url)
	if err != nil {
		return url, 0, NewNetworkError(url, err)
	}
	if statusCode != http.StatusOK {
		return url, statusCode, NewUnreachableError(url, statusCode)
	}

	return url, statusCode, nil
}

// report delivers the outcome to the pipeline. It is the only place a report is
// made, so a job receives at most one of success or failure. The call survives
// cancellation of ctx and is bounded by the report timeout instead.
func (s *Service) report(ctx context.Context, outcome *models.Outcome) error {
	if outcome.JobID == "" {
		s.logger.Error("Cannot report outcome without a job id", "detail", outcome.Detail)
		return fmt.Errorf("%w: %w", ErrReportFailed, models.ErrMissingJobID)
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.reportTimeout)
	defer cancel()

	var err error
	if outcome.Succeeded() {
		err = s.reporter.ReportSuccess(ctx, outcome.JobID, outcome.Message)
	} else {
		err = s.reporter.ReportFailure(ctx, outcome.JobID, outcome.Message, outcome.FailureType)
	}
	if err != nil {
		s.logger.Error("Failed to report outcome", "job_id", outcome.JobID, "status", outcome.Status, "error", err)
		return fmt.Errorf("%w: %w", ErrReportFailed, err)
	}

	s.logger.Info("Reported outcome", "job_id", outcome.JobID, "status", outcome.Status, "duration", outcome.Duration)
	return nil
}
