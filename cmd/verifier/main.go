// Command verifier is the Lambda function invoked by the pipeline's Invoke
// action. Configuration comes from VERIFIER_* variables and, optionally, the
// YAML file named by VERIFIER_CONFIG_FILE.
package main

import (
	"context"
	"log/slog"
	"os"

	"deployverify/internal/bootstrap"
	"deployverify/internal/config"
	"deployverify/internal/invoke"
	"deployverify/internal/logger"
	"deployverify/internal/observability"
	"deployverify/internal/version"

	"github.com/aws/aws-lambda-go/lambda"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	ver := version.GetInfo()
	log, closer, err := logger.Setup(cfg.Logging, ver)
	if err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}
	if closer != nil {
		defer closer.Close()
	}
	slog.SetDefault(log)

	otelProvider, err := observability.Setup(cfg.Metrics, cfg.Observability, ver)
	if err != nil {
		slog.Error("Failed to initialize observability", "error", err)
		os.Exit(1)
	}

	service, err := bootstrap.NewService(context.Background(), cfg)
	if err != nil {
		slog.Error("Failed to initialize verifier", "error", err)
		os.Exit(1)
	}

	handler := invoke.NewHandler(service, invoke.WithFlusher(otelProvider))

	slog.Info("Starting Lambda handler", "version", ver.Version)
	lambda.StartWithOptions(handler.Handle,
		lambda.WithEnableSIGTERM(func() {
			if err := otelProvider.Shutdown(context.Background()); err != nil {
				slog.Error("Failed to shutdown observability", "error", err)
			}
		}),
	)
}
