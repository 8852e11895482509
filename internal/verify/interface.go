package verify

import (
	"context"

	"deployverify/internal/models"

	"github.com/aws/aws-lambda-go/events"
)

// ServiceInterface defines the interface for deployment verification
type ServiceInterface interface {
	// VerifyEvent parses a CodePipeline job event, verifies it and reports the outcome
	VerifyEvent(ctx context.Context, event events.CodePipelineJobEvent) (*models.Outcome, error)

	// Verify verifies an already parsed job request and reports the outcome
	Verify(ctx context.Context, req *models.JobRequest) (*models.Outcome, error)
}

// Ensure Service implements ServiceInterface
var _ ServiceInterface = (*Service)(nil)
