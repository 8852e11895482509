// Package invoke adapts the verifier to the AWS Lambda runtime.
package invoke

import (
	"context"
	"log/slog"

	"deployverify/internal/verify"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
)

// Result is what the function returns to the runtime once the job has been reported.
const Result = "Complete"

// Flusher exports buffered telemetry before the runtime freezes the sandbox.
type Flusher interface {
	ForceFlush(ctx context.Context) error
}

type Option func(*Handler)

func WithFlusher(f Flusher) Option {
	return func(h *Handler) {
		h.flusher = f
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// Handler receives CodePipeline job events from the Lambda runtime.
type Handler struct {
	service verify.ServiceInterface
	flusher Flusher
	logger  *slog.Logger
}

func NewHandler(service verify.ServiceInterface, opts ...Option) *Handler {
	h := &Handler{
		service: service,
		logger:  slog.With("component", "lambda_handler"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle verifies the job and returns Result. A failed verification is a
// successful invocation because the job was reported; only an unreported job
// yields an error, so the runtime marks the invocation as failed.
func (h *Handler) Handle(ctx context.Context, event events.CodePipelineJobEvent) (string, error) {
	logger := h.logger.With("job_id", event.CodePipelineJob.ID)
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		logger = logger.With("request_id", lc.AwsRequestID)
	}
	defer h.flush(ctx)

	logger.Info("Received pipeline job",
		"user_parameters", event.CodePipelineJob.Data.ActionConfiguration.Configuration.UserParameters)

	outcome, err := h.service.VerifyEvent(ctx, event)
	if err != nil {
		logger.Error("Pipeline job was not reported", "kind", outcome.Kind, "detail", outcome.Detail, "error", err)
		return "", err
	}

	logger.Info("Pipeline job complete",
		"stack", outcome.StackName,
		"status", outcome.Status,
		"kind", outcome.Kind,
		"status_code", outcome.StatusCode,
		"duration", outcome.Duration)
	return Result, nil
}

func (h *Handler) flush(ctx context.Context) {
	if h.flusher == nil {
		return
	}
	if err := h.flusher.ForceFlush(context.WithoutCancel(ctx)); err != nil {
		h.logger.Warn("Failed to flush telemetry", "error", err)
	}
}
