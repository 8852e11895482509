// Package pipeline reports job results back to CodePipeline.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/codepipeline"
	cptypes "github.com/aws/aws-sdk-go-v2/service/codepipeline/types"
)

// maxSummaryLength is the CodePipeline limit on ExecutionDetails.Summary.
const maxSummaryLength = 2048

// Reporter acknowledges a pipeline job as succeeded or failed.
type Reporter interface {
	ReportSuccess(ctx context.Context, jobID, message string) error
	ReportFailure(ctx context.Context, jobID, message, failureType string) error
}

// JobResultAPI is the subset of the CodePipeline client the reporter needs.
type JobResultAPI interface {
	PutJobSuccessResult(ctx context.Context, params *codepipeline.PutJobSuccessResultInput, optFns ...func(*codepipeline.Options)) (*codepipeline.PutJobSuccessResultOutput, error)
	PutJobFailureResult(ctx context.Context, params *codepipeline.PutJobFailureResultInput, optFns ...func(*codepipeline.Options)) (*codepipeline.PutJobFailureResultOutput, error)
}

// CodePipelineReporter sends job results through the CodePipeline API.
type CodePipelineReporter struct {
	client JobResultAPI
	logger *slog.Logger
}

// NewCodePipelineReporter creates a reporter backed by the given client.
func NewCodePipelineReporter(client JobResultAPI) *CodePipelineReporter {
	return &CodePipelineReporter{
		client: client,
		logger: slog.With("component", "pipeline_reporter"),
	}
}

// ReportSuccess marks the job as succeeded. The message is attached as the
// execution summary shown in the pipeline console.
func (r *CodePipelineReporter) ReportSuccess(ctx context.Context, jobID, message string) error {
	r.logger.Info("Putting job success", "job_id", jobID, "message", message)

	_, err := r.client.PutJobSuccessResult(ctx, &codepipeline.PutJobSuccessResultInput{
		JobId: aws.String(jobID),
		ExecutionDetails: &cptypes.ExecutionDetails{
			Summary: aws.String(truncate(message, maxSummaryLength)),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to put job success result for %s: %w", jobID, err)
	}
	return nil
}

// ReportFailure marks the job as failed with the given message and failure type.
func (r *CodePipelineReporter) ReportFailure(ctx context.Context, jobID, message, failureType string) error {
	r.logger.Info("Putting job failure", "job_id", jobID, "message", message, "failure_type", failureType)

	_, err := r.client.PutJobFailureResult(ctx, &codepipeline.PutJobFailureResultInput{
		JobId: aws.String(jobID),
		FailureDetails: &cptypes.FailureDetails{
			Message: aws.String(truncate(message, maxSummaryLength)),
			Type:    cptypes.FailureType(failureType),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to put job failure result for %s: %w", jobID, err)
	}
	return nil
}

// truncate cuts s to at most max bytes without splitting a rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
