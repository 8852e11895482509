package verify

import (
	"fmt"

	"deployverify/internal/models"
)

// VerificationError represents a failed verification with the stage it failed in
type VerificationError struct {
	Kind    string
	Message string
	Err     error
}

func (e *VerificationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *VerificationError) Unwrap() error {
	return e.Err
}

// Error constructors for each failure kind

func NewInputError(err error) *VerificationError {
	return &VerificationError{
		Kind:    models.KindInput,
		Message: "invalid job parameters",
		Err:     err,
	}
}

func NewLookupError(stackName string, err error) *VerificationError {
	return &VerificationError{
		Kind:    models.KindLookup,
		Message: fmt.Sprintf("unable to read outputs of stack %s", stackName),
		Err:     err,
	}
}

func NewNetworkError(url string, err error) *VerificationError {
	msg := fmt.Sprintf("request to %s failed", url)
	if url == "" {
		msg = "endpoint URL could not be resolved"
	}
	return &VerificationError{
		Kind:    models.KindNetwork,
		Message: msg,
		Err:     err,
	}
}

func NewUnreachableError(url string, statusCode int) *VerificationError {
	return &VerificationError{
		Kind:    models.KindUnreachable,
		Message: fmt.Sprintf("%s answered with status %d", url, statusCode),
	}
}

// pipelineMessage is the message the pipeline receives for a failure of this kind.
// Network and unreachable failures keep the fixed reachability message; input and
// lookup failures say what went wrong since the website was never checked.
func (e *VerificationError) pipelineMessage() string {
	switch e.Kind {
	case models.KindInput:
		return "The deployment could not be verified, invalid job parameters: " + causeText(e)
	case models.KindLookup:
		return "The deployment could not be verified, " + e.Error()
	default:
		return models.FailureMessage
	}
}

func causeText(e *VerificationError) string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}
