// Package api exposes the verifier over HTTP for hosts that are not Lambda,
// such as a container started by a pipeline runner.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"deployverify/internal/models"
	"deployverify/internal/verify"

	"github.com/aws/aws-lambda-go/events"
)

// maxEventBytes bounds the job event body; real events are a few KiB.
const maxEventBytes = 1 << 20

// Handlers contains HTTP handlers for the verifier API
type Handlers struct {
	service verify.ServiceInterface
	version string
}

// HandlerOption configures optional Handlers dependencies.
type HandlerOption func(*Handlers)

// WithVersion sets the version reported by the health endpoints.
func WithVersion(v string) HandlerOption {
	return func(h *Handlers) {
		h.version = v
	}
}

// NewHandlers creates a new handlers instance
func NewHandlers(service verify.ServiceInterface, opts ...HandlerOption) *Handlers {
	h := &Handlers{service: service}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// VerifyJob runs the verifier for a CodePipeline job event.
// POST /api/v1/jobs
//
// The status mirrors the outcome: 200 for a reported success, 422 for a
// reported failure, 400 when the event has no job id to report against, 502
// when the pipeline did not accept the report.
func (h *Handlers) VerifyJob(w http.ResponseWriter, r *http.Request) {
	var event events.CodePipelineJobEvent
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEventBytes))
	if err := dec.Decode(&event); err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, models.ErrorCodeBadRequest, "Invalid job event: "+err.Error())
		return
	}

	outcome, err := h.service.VerifyEvent(r.Context(), event)
	resp := &models.VerifyResponse{
		Outcome:   outcome,
		Reported:  err == nil,
		RequestID: RequestIDFromContext(r.Context()),
	}

	switch {
	case errors.Is(err, models.ErrMissingJobID):
		errorResp := models.NewErrorResponse("Job event has no job id", models.ErrorCodeBadRequest)
		errorResp.Details = map[string]string{"field": "CodePipeline.job.id"}
		errorResp.RequestID = resp.RequestID
		h.writeJSONResponse(w, http.StatusBadRequest, errorResp)
	case errors.Is(err, verify.ErrReportFailed):
		resp.Code = models.ErrorCodeReportFailed
		h.writeJSONResponse(w, http.StatusBadGateway, resp)
	case err != nil:
		slog.Error("Verification returned an unexpected error", "error", err)
		h.writeErrorResponse(w, r, http.StatusInternalServerError, models.ErrorCodeInternalError, "Internal server error")
	case !outcome.Succeeded():
		resp.Code = models.ErrorCodeVerificationError
		h.writeJSONResponse(w, http.StatusUnprocessableEntity, resp)
	default:
		h.writeJSONResponse(w, http.StatusOK, resp)
	}
}

// HealthCheck reports liveness. The verifier keeps no state, so a running
// process is a healthy one.
// GET /health, GET /api/v1/health
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeJSONResponse(w, http.StatusOK, models.NewHealthCheckResponse(models.StatusHealthy, h.version))
}

func (h *Handlers) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already written.
		slog.Error("Error encoding JSON response", "error", err)
	}
}

func (h *Handlers) writeErrorResponse(w http.ResponseWriter, r *http.Request, statusCode int, errorCode, message string) {
	errorResp := models.NewErrorResponse(message, errorCode)
	errorResp.RequestID = RequestIDFromContext(r.Context())
	h.writeJSONResponse(w, statusCode, errorResp)
}
