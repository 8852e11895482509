// Package models - Verifier configuration and operational settings.
// This file defines the configuration structures for every verifier component.
//
// Configuration Philosophy:
// - Hierarchical configuration grouped by component (aws, probe, server, logging, ...)
// - Defaults that work unchanged inside the Lambda runtime
// - Validation catches misconfigurations before the first job is handled
package models

import (
	"errors"
	"fmt"
	"time"
)

// Trace exporter constants
const (
	TraceExporterStdout = "stdout"
	TraceExporterOTLP   = "otlp"
)

// Config is the root configuration structure containing all verifier settings.
//
// Configuration Structure:
// - AWS: region, profile and endpoint used for CloudFormation and CodePipeline
// - Probe: the reachability check HTTP client
// - Server: HTTP trigger adapter (cmd/verifier-server only)
// - Security: rate limiting for the HTTP trigger
// - Logging: structured logging and output configuration
// - Metrics / Observability: Prometheus metrics and OpenTelemetry tracing
type Config struct {
	AWS           AWSConfig           `yaml:"aws" json:"aws"`
	Probe         ProbeConfig         `yaml:"probe" json:"probe"`
	Server        ServerConfig        `yaml:"server" json:"server"`
	Security      SecurityConfig      `yaml:"security" json:"security"`
	Logging       LoggingConfig       `yaml:"logging" json:"logging"`
	Metrics       MetricsConfig       `yaml:"metrics" json:"metrics"`
	Observability ObservabilityConfig `yaml:"observability" json:"observability"`
}

type AWSConfig struct {
	Region string `yaml:"region" json:"region"`
	// Profile selects a shared config profile; ignored inside Lambda.
	Profile string `yaml:"profile" json:"profile"`
	// EndpointURL overrides the service endpoint, e.g. for LocalStack.
	EndpointURL string `yaml:"endpoint_url" json:"endpoint_url"`
}

type ProbeConfig struct {
	// Timeout bounds the single GET. Zero leaves only the caller deadline.
	Timeout   time.Duration `yaml:"timeout" json:"timeout"`
	UserAgent string        `yaml:"user_agent" json:"user_agent"`
	// OutputKey is the stack output holding the endpoint URL.
	OutputKey string `yaml:"output_key" json:"output_key"`
}

type ServerConfig struct {
	Port         int           `yaml:"port" json:"port"`
	Host         string        `yaml:"host" json:"host"`
	ReadTimeout  time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" json:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" json:"idle_timeout"`
}

type SecurityConfig struct {
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`
}

type RateLimitConfig struct {
	Enabled           bool          `yaml:"enabled" json:"enabled"`
	RequestsPerMinute int           `yaml:"requests_per_minute" json:"requests_per_minute"`
	BurstSize         int           `yaml:"burst_size" json:"burst_size"`
	CleanupInterval   time.Duration `yaml:"cleanup_interval" json:"cleanup_interval"`
}

type LoggingConfig struct {
	Level    string `yaml:"level" json:"level"`
	Format   string `yaml:"format" json:"format"`
	Output   string `yaml:"output" json:"output"`
	FilePath string `yaml:"file_path" json:"file_path"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Path    string `yaml:"path" json:"path"`
	Port    int    `yaml:"port" json:"port"`
}

type ObservabilityConfig struct {
	ServiceName string        `yaml:"service_name" json:"service_name"`
	Tracing     TracingConfig `yaml:"tracing" json:"tracing"`
}

type TracingConfig struct {
	Enabled      bool    `yaml:"enabled" json:"enabled"`
	Exporter     string  `yaml:"exporter" json:"exporter"`
	OTLPEndpoint string  `yaml:"otlp_endpoint" json:"otlp_endpoint"`
	SampleRate   float64 `yaml:"sample_rate" json:"sample_rate"`
}

// NewDefaultConfig creates a configuration suited to the Lambda runtime.
//
// Default Values Rationale:
// - Region empty: the SDK falls back to AWS_REGION, which Lambda always sets
// - Probe timeout 30s: the HTTP trigger has no deadline of its own; under Lambda the
//   check also ends early enough to leave time for the report
// - Output key "URL": the key the pipeline's stacks publish the endpoint under
// - JSON logs on stdout: CloudWatch Logs captures stdout
// - Metrics off: there is nothing to scrape inside a Lambda sandbox
func NewDefaultConfig() *Config {
	return &Config{
		Probe: ProbeConfig{
			Timeout:   30 * time.Second,
			UserAgent: "deployverify",
			OutputKey: URLOutputKey,
		},
		Server: ServerConfig{
			Port:         8080,
			Host:         "0.0.0.0",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 5 * time.Minute,
			IdleTimeout:  60 * time.Second,
		},
		Security: SecurityConfig{
			RateLimit: RateLimitConfig{
				Enabled:           false,
				RequestsPerMinute: 30,
				BurstSize:         5,
				CleanupInterval:   5 * time.Minute,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Path:    "/metrics",
			Port:    9090,
		},
		Observability: ObservabilityConfig{
			ServiceName: "deployverify",
			Tracing: TracingConfig{
				Enabled:    false,
				Exporter:   TraceExporterStdout,
				SampleRate: 1.0,
			},
		},
	}
}

func (c *Config) Validate() error {
	if err := c.Probe.Validate(); err != nil {
		return fmt.Errorf("invalid probe config: %w", err)
	}

	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("invalid server config: %w", err)
	}

	if err := c.Security.Validate(); err != nil {
		return fmt.Errorf("invalid security config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("invalid logging config: %w", err)
	}

	if err := c.Metrics.Validate(); err != nil {
		return fmt.Errorf("invalid metrics config: %w", err)
	}

	if err := c.Observability.Validate(); err != nil {
		return fmt.Errorf("invalid observability config: %w", err)
	}

	return nil
}

func (pc *ProbeConfig) Validate() error {
	if pc.Timeout < 0 {
		return errors.New("probe timeout cannot be negative")
	}

	if pc.OutputKey == "" {
		return errors.New("output key cannot be empty")
	}

	return nil
}

func (sc *ServerConfig) Validate() error {
	if sc.Port <= 0 || sc.Port > 65535 {
		return errors.New("port must be between 1 and 65535")
	}

	if sc.Host == "" {
		return errors.New("host cannot be empty")
	}

	if sc.ReadTimeout < 0 {
		return errors.New("read timeout cannot be negative")
	}

	if sc.WriteTimeout < 0 {
		return errors.New("write timeout cannot be negative")
	}

	if sc.IdleTimeout < 0 {
		return errors.New("idle timeout cannot be negative")
	}

	return nil
}

func (sec *SecurityConfig) Validate() error {
	if !sec.RateLimit.Enabled {
		return nil
	}

	if sec.RateLimit.RequestsPerMinute <= 0 {
		return errors.New("requests per minute must be positive")
	}
	if sec.RateLimit.BurstSize < 0 {
		return errors.New("burst size cannot be negative")
	}
	if sec.RateLimit.CleanupInterval <= 0 {
		return errors.New("cleanup interval must be positive")
	}

	return nil
}

func (lc *LoggingConfig) Validate() error {
	if !oneOf(lc.Level, "debug", "info", "warn", "error") {
		return fmt.Errorf("invalid log level: %s", lc.Level)
	}

	if !oneOf(lc.Format, "json", "text") {
		return fmt.Errorf("invalid log format: %s", lc.Format)
	}

	if !oneOf(lc.Output, "stdout", "stderr", "file") {
		return fmt.Errorf("invalid log output: %s", lc.Output)
	}

	if lc.Output == "file" && lc.FilePath == "" {
		return errors.New("file path is required when output is file")
	}

	return nil
}

func (mc *MetricsConfig) Validate() error {
	if !mc.Enabled {
		return nil
	}

	if mc.Path == "" {
		return errors.New("metrics path cannot be empty")
	}

	if mc.Port <= 0 || mc.Port > 65535 {
		return errors.New("metrics port must be between 1 and 65535")
	}

	return nil
}

func (oc *ObservabilityConfig) Validate() error {
	if oc.ServiceName == "" {
		return errors.New("service name cannot be empty")
	}

	if !oc.Tracing.Enabled {
		return nil
	}

	if !oneOf(oc.Tracing.Exporter, TraceExporterStdout, TraceExporterOTLP) {
		return fmt.Errorf("invalid trace exporter: %s", oc.Tracing.Exporter)
	}

	if oc.Tracing.Exporter == TraceExporterOTLP && oc.Tracing.OTLPEndpoint == "" {
		return errors.New("otlp endpoint is required when exporter is otlp")
	}

	if oc.Tracing.SampleRate < 0 || oc.Tracing.SampleRate > 1 {
		return errors.New("sample rate must be between 0 and 1")
	}

	return nil
}

func oneOf(value string, allowed ...string) bool {
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	return false
}
