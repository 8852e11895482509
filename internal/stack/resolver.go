// Package stack looks up the outputs a deployed CloudFormation stack declares.
package stack

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"deployverify/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/smithy-go"
)

var (
	// ErrStackNotFound is returned when the provider knows no stack by that name.
	ErrStackNotFound = errors.New("stack not found")
	// ErrNoOutputs is returned when the stack exists but declares no outputs.
	ErrNoOutputs = errors.New("stack declares no outputs")
)

// Resolver returns the outputs of a named stack.
type Resolver interface {
	Outputs(ctx context.Context, stackName string) ([]models.StackOutput, error)
}

// DescribeStacksAPI is the subset of the CloudFormation client the resolver needs.
type DescribeStacksAPI interface {
	DescribeStacks(ctx context.Context, params *cloudformation.DescribeStacksInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DescribeStacksOutput, error)
}

// CloudFormationResolver reads stack outputs through DescribeStacks.
type CloudFormationResolver struct {
	client DescribeStacksAPI
}

// NewCloudFormationResolver creates a resolver backed by the given client.
func NewCloudFormationResolver(client DescribeStacksAPI) *CloudFormationResolver {
	return &CloudFormationResolver{client: client}
}

// Outputs returns the outputs of the first stack DescribeStacks reports for
// stackName, in the order the provider returned them.
func (r *CloudFormationResolver) Outputs(ctx context.Context, stackName string) ([]models.StackOutput, error) {
	out, err := r.client.DescribeStacks(ctx, &cloudformation.DescribeStacksInput{
		StackName: aws.String(stackName),
	})
	if err != nil {
		if isStackNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrStackNotFound, stackName)
		}
		return nil, fmt.Errorf("failed to describe stack %s: %w", stackName, err)
	}

	if out == nil || len(out.Stacks) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrStackNotFound, stackName)
	}

	stack := out.Stacks[0]
	if len(stack.Outputs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoOutputs, stackName)
	}

	outputs := make([]models.StackOutput, 0, len(stack.Outputs))
	for _, o := range stack.Outputs {
		outputs = append(outputs, models.StackOutput{
			Key:         aws.ToString(o.OutputKey),
			Value:       aws.ToString(o.OutputValue),
			Description: aws.ToString(o.Description),
		})
	}

	return outputs, nil
}

// isStackNotFound recognises the ValidationError CloudFormation returns for an
// unknown stack name ("Stack with id X does not exist").
func isStackNotFound(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.ErrorCode() == "ValidationError" &&
		strings.Contains(apiErr.ErrorMessage(), "does not exist")
}
