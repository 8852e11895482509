// Package models - Verification outcomes.
//
// An Outcome is produced once per job and reported once to the pipeline.
// The messages are part of the pipeline contract and are kept byte for byte,
// spelling included.
package models

import "time"

// Outcome statuses
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Failure kinds
//
// Kind Mapping:
// - input: the job's UserParameters could not yield a stack name
// - lookup: the stack or its outputs could not be read
// - network: the GET never produced a response (includes an unresolved URL)
// - unreachable: the GET produced a response other than 200
const (
	KindInput       = "input"
	KindLookup      = "lookup"
	KindNetwork     = "network"
	KindUnreachable = "unreachable"
)

const (
	SuccessMessage = "The deployment was succesfull, the website is reachable"
	FailureMessage = "The deployment was not succesfull the website is NOT reachable"

	// FailureTypeJobFailed is the failure type tag sent with every failure report.
	FailureTypeJobFailed = "JobFailed"
)

// Outcome is the result of verifying one job.
type Outcome struct {
	JobID       string    `json:"job_id"`
	StackName   string    `json:"stack_name,omitempty"`
	URL         string    `json:"url,omitempty"`
	Status      string    `json:"status"`
	Message     string    `json:"message"`
	FailureType string    `json:"failure_type,omitempty"`
	Kind        string    `json:"kind,omitempty"`
	StatusCode  int       `json:"status_code,omitempty"`
	Detail      string    `json:"detail,omitempty"`
	Duration    string    `json:"duration,omitempty"`
	CheckedAt   time.Time `json:"checked_at"`
}

func NewSuccessOutcome(req *JobRequest, url string, statusCode int) *Outcome {
	return &Outcome{
		JobID:      req.JobID,
		StackName:  req.StackName,
		URL:        url,
		Status:     OutcomeSuccess,
		Message:    SuccessMessage,
		StatusCode: statusCode,
		CheckedAt:  time.Now(),
	}
}

func NewFailureOutcome(req *JobRequest, kind, message string) *Outcome {
	return &Outcome{
		JobID:       req.JobID,
		StackName:   req.StackName,
		Status:      OutcomeFailure,
		Message:     message,
		FailureType: FailureTypeJobFailed,
		Kind:        kind,
		CheckedAt:   time.Now(),
	}
}

func (o *Outcome) Succeeded() bool {
	return o.Status == OutcomeSuccess
}
