// Package models - CodePipeline job requests and stack outputs.
package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-lambda-go/events"
)

// URLOutputKey is the stack output key the deployed endpoint is published under.
const URLOutputKey = "URL"

var (
	ErrMissingRequest    = errors.New("job request is required")
	ErrMissingJobID      = errors.New("job id is required")
	ErrMissingParameters = errors.New("user parameters are required")
	ErrEmptyParameters   = errors.New("user parameters list is empty")
	ErrMissingStackName  = errors.New("first user parameter must be a non-empty stack name")
)

// JobRequest is the verification work extracted from one CodePipeline job.
type JobRequest struct {
	JobID     string `json:"job_id"`
	AccountID string `json:"account_id,omitempty"`
	StackName string `json:"stack_name"`
	// RawParameters is the UserParameters string as configured on the action.
	RawParameters string `json:"raw_parameters,omitempty"`
}

// ParseJobRequest reads the job id and the stack name from a CodePipeline job event.
// UserParameters must be a JSON list whose first element is the stack name, which is
// how the pipeline's Invoke action serialises `userParameters: [stackName]`.
//
// The returned request is never nil: when parsing fails after the job id was read,
// JobID is populated so the caller can still report the failure for that job.
func ParseJobRequest(event events.CodePipelineJobEvent) (*JobRequest, error) {
	job := event.CodePipelineJob
	req := &JobRequest{
		JobID:         strings.TrimSpace(job.ID),
		AccountID:     job.AccountID,
		RawParameters: job.Data.ActionConfiguration.Configuration.UserParameters,
	}

	if req.JobID == "" {
		return req, ErrMissingJobID
	}

	stackName, err := parseStackName(req.RawParameters)
	if err != nil {
		return req, err
	}
	req.StackName = stackName

	return req, nil
}

func parseStackName(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", ErrMissingParameters
	}

	var params []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &params); err != nil {
		return "", fmt.Errorf("user parameters must be a JSON list: %w", err)
	}
	if len(params) == 0 {
		return "", ErrEmptyParameters
	}

	var name string
	if err := json.Unmarshal(params[0], &name); err != nil {
		return "", ErrMissingStackName
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrMissingStackName
	}

	return name, nil
}

// Validate checks that the request carries everything a verification needs.
func (r *JobRequest) Validate() error {
	if strings.TrimSpace(r.JobID) == "" {
		return ErrMissingJobID
	}
	if strings.TrimSpace(r.StackName) == "" {
		return ErrMissingStackName
	}
	return nil
}

// StackOutput is one key/value pair declared in a stack's Outputs section.
type StackOutput struct {
	Key         string `json:"key"`
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
}

// ResolveOutput scans outputs in the order the provider returned them and
// returns the value of the first entry whose key equals key. Later duplicates
// are ignored.
func ResolveOutput(outputs []StackOutput, key string) (string, bool) {
	for _, output := range outputs {
		if output.Key == key {
			return output.Value, true
		}
	}
	return "", false
}

