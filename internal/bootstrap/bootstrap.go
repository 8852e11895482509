// Package bootstrap assembles the verifier service from configuration. Both
// the Lambda and the HTTP trigger binaries start here.
package bootstrap

import (
	"context"
	"fmt"

	"deployverify/internal/awsclient"
	"deployverify/internal/models"
	"deployverify/internal/observability"
	"deployverify/internal/pipeline"
	"deployverify/internal/probe"
	"deployverify/internal/stack"
	"deployverify/internal/verify"
)

// NewService builds a verifier backed by CloudFormation and CodePipeline.
// observability.Setup must run first so the instruments bind to its providers.
func NewService(ctx context.Context, cfg *models.Config) (*verify.Service, error) {
	clients, err := awsclient.New(ctx, cfg.AWS, cfg.Observability.Tracing.Enabled)
	if err != nil {
		return nil, err
	}
	return Assemble(cfg,
		stack.NewCloudFormationResolver(clients.CloudFormation),
		pipeline.NewCodePipelineReporter(clients.CodePipeline),
	)
}

// Assemble wires resolver and reporter into a service, adding the probe from
// cfg and metrics instrumentation when metrics are enabled.
func Assemble(cfg *models.Config, resolver stack.Resolver, reporter pipeline.Reporter) (*verify.Service, error) {
	prober := probe.NewChecker(
		probe.WithTimeout(cfg.Probe.Timeout),
		probe.WithUserAgent(cfg.Probe.UserAgent),
	)
	opts := []verify.Option{verify.WithOutputKey(cfg.Probe.OutputKey)}

	if cfg.Metrics.Enabled {
		instrumentedResolver, err := observability.NewInstrumentedResolver(resolver)
		if err != nil {
			return nil, fmt.Errorf("failed to instrument resolver: %w", err)
		}
		instrumentedReporter, err := observability.NewInstrumentedReporter(reporter)
		if err != nil {
			return nil, fmt.Errorf("failed to instrument reporter: %w", err)
		}
		outcomes, err := observability.NewVerificationMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to create verification metrics: %w", err)
		}
		resolver, reporter = instrumentedResolver, instrumentedReporter
		opts = append(opts, verify.WithOutcomeRecorder(outcomes))
	}

	return verify.NewService(resolver, prober, reporter, opts...), nil
}
