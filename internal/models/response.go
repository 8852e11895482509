// Package models - HTTP trigger response types and error handling.
//
// Response Design Principles:
// - Consistent JSON structure across all endpoints
// - The verify response embeds the same Outcome the pipeline was told about
// - Error codes are upper-case with underscores and map to HTTP status codes
package models

import (
	"time"
)

// VerifyResponse is returned by POST /api/v1/jobs. Code is set whenever the
// outcome is not a reported success.
type VerifyResponse struct {
	Outcome   *Outcome `json:"outcome"`
	Reported  bool     `json:"reported"`
	Code      string   `json:"code,omitempty"`
	RequestID string   `json:"request_id,omitempty"`
}

type ErrorResponse struct {
	Error     string            `json:"error"`
	Message   string            `json:"message"`
	Code      string            `json:"code,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	RequestID string            `json:"request_id,omitempty"`
}

type HealthCheckResponse struct {
	Status    string    `json:"status"`
	Version   string    `json:"version,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// StatusHealthy is the only health status; a running verifier is healthy.
const StatusHealthy = "healthy"

// Standard HTTP Error Codes
const (
	ErrorCodeBadRequest        = "BAD_REQUEST"         // 400: Body is not a job event or has no job id
	ErrorCodeInvalidRequest    = "INVALID_REQUEST"     // 405: Method not allowed
	ErrorCodeVerificationError = "VERIFICATION_FAILED" // 422: Job verified as failed
	ErrorCodeReportFailed      = "REPORT_FAILED"       // 502: Pipeline did not accept the report
	ErrorCodeRateLimited       = "RATE_LIMIT_EXCEEDED" // 429: Too many requests
	ErrorCodeInternalError     = "INTERNAL_ERROR"      // 500: Server-side error
)

func NewErrorResponse(message string, code string) *ErrorResponse {
	return &ErrorResponse{
		Error:     "error",
		Message:   message,
		Code:      code,
		Timestamp: time.Now(),
	}
}

func NewHealthCheckResponse(status, version string) *HealthCheckResponse {
	return &HealthCheckResponse{
		Status:    status,
		Version:   version,
		Timestamp: time.Now(),
	}
}
