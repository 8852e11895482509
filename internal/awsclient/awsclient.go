// Package awsclient builds the CloudFormation and CodePipeline clients used by
// the verifier from the shared AWS configuration chain.
package awsclient

import (
	"context"
	"fmt"

	"deployverify/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/codepipeline"
	"go.opentelemetry.io/contrib/instrumentation/github.com/aws/aws-sdk-go-v2/otelaws"
)

// Clients holds the service clients the verifier talks to.
type Clients struct {
	CloudFormation *cloudformation.Client
	CodePipeline   *codepipeline.Client
}

// LoadConfig resolves aws.Config from cfg on top of the default chain
// (environment, shared files, Lambda role). With tracing on, every SDK call
// gets an otel span.
func LoadConfig(ctx context.Context, cfg models.AWSConfig, tracing bool) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}
	if cfg.EndpointURL != "" {
		opts = append(opts, awsconfig.WithBaseEndpoint(cfg.EndpointURL))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}

	if tracing {
		otelaws.AppendMiddlewares(&awsCfg.APIOptions)
	}
	return awsCfg, nil
}

// New loads the AWS configuration and creates both service clients from it.
func New(ctx context.Context, cfg models.AWSConfig, tracing bool) (*Clients, error) {
	awsCfg, err := LoadConfig(ctx, cfg, tracing)
	if err != nil {
		return nil, err
	}
	return NewFromConfig(awsCfg), nil
}

func NewFromConfig(awsCfg aws.Config) *Clients {
	return &Clients{
		CloudFormation: cloudformation.NewFromConfig(awsCfg),
		CodePipeline:   codepipeline.NewFromConfig(awsCfg),
	}
}
