package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"deployverify/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "verifier.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_WithValidConfigFile(t *testing.T) {
	path := writeConfig(t, `
aws:
  region: eu-west-1
  endpoint_url: http://localhost:4566

probe:
  timeout: 10s
  user_agent: "pipeline-verifier"
  output_key: "WebsiteURL"

server:
  port: 9000
  host: "127.0.0.1"
  read_timeout: 15s

security:
  rate_limit:
    enabled: true
    requests_per_minute: 60
    burst_size: 10
    cleanup_interval: 1m

logging:
  level: debug
  format: text

metrics:
  enabled: true
  port: 9100

observability:
  tracing:
    enabled: true
    exporter: otlp
    otlp_endpoint: "collector:4317"
    sample_rate: 0.5
`)

	config, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "eu-west-1", config.AWS.Region)
	assert.Equal(t, "http://localhost:4566", config.AWS.EndpointURL)
	assert.Equal(t, 10*time.Second, config.Probe.Timeout)
	assert.Equal(t, "pipeline-verifier", config.Probe.UserAgent)
	assert.Equal(t, "WebsiteURL", config.Probe.OutputKey)
	assert.Equal(t, 9000, config.Server.Port)
	assert.Equal(t, "127.0.0.1", config.Server.Host)
	assert.Equal(t, 15*time.Second, config.Server.ReadTimeout)
	assert.True(t, config.Security.RateLimit.Enabled)
	assert.Equal(t, 60, config.Security.RateLimit.RequestsPerMinute)
	assert.Equal(t, time.Minute, config.Security.RateLimit.CleanupInterval)
	assert.Equal(t, "debug", config.Logging.Level)
	assert.Equal(t, "text", config.Logging.Format)
	assert.True(t, config.Metrics.Enabled)
	assert.Equal(t, 9100, config.Metrics.Port)
	assert.Equal(t, "/metrics", config.Metrics.Path, "unset keys keep defaults")
	assert.Equal(t, models.TraceExporterOTLP, config.Observability.Tracing.Exporter)
	assert.Equal(t, 0.5, config.Observability.Tracing.SampleRate)
}

func TestLoad_WithoutConfigFile(t *testing.T) {
	config, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, models.NewDefaultConfig(), config)
}

func TestLoad_NonExistentFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "probe: [unterminated")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML config")
}

func TestLoad_InvalidValues(t *testing.T) {
	path := writeConfig(t, `
probe:
  output_key: ""
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestLoad_UnknownSectionIsIgnored(t *testing.T) {
	path := writeConfig(t, `
storage:
  type: json
logging:
  level: warn
`)

	config, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", config.Logging.Level)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	path := writeConfig(t, `
aws:
  region: eu-west-1
logging:
  level: debug
`)

	t.Setenv("VERIFIER_AWS_REGION", "us-east-1")
	t.Setenv("VERIFIER_AWS_PROFILE", "deploy")
	t.Setenv("VERIFIER_PROBE_TIMEOUT", "3s")
	t.Setenv("VERIFIER_OUTPUT_KEY", "HealthURL")
	t.Setenv("VERIFIER_PORT", "8181")
	t.Setenv("VERIFIER_LOG_LEVEL", "error")
	t.Setenv("VERIFIER_METRICS_ENABLED", "TRUE")
	t.Setenv("VERIFIER_RATE_LIMIT_ENABLED", "true")
	t.Setenv("VERIFIER_RATE_LIMIT_REQUESTS_PER_MINUTE", "120")
	t.Setenv("VERIFIER_TRACING_ENABLED", "true")
	t.Setenv("VERIFIER_TRACING_SAMPLE_RATE", "0.25")

	config, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "us-east-1", config.AWS.Region)
	assert.Equal(t, "deploy", config.AWS.Profile)
	assert.Equal(t, 3*time.Second, config.Probe.Timeout)
	assert.Equal(t, "HealthURL", config.Probe.OutputKey)
	assert.Equal(t, 8181, config.Server.Port)
	assert.Equal(t, "error", config.Logging.Level)
	assert.True(t, config.Metrics.Enabled)
	assert.True(t, config.Security.RateLimit.Enabled)
	assert.Equal(t, 120, config.Security.RateLimit.RequestsPerMinute)
	assert.True(t, config.Observability.Tracing.Enabled)
	assert.Equal(t, 0.25, config.Observability.Tracing.SampleRate)
}

func TestLoad_MalformedEnvironmentValuesKeepDefaults(t *testing.T) {
	t.Setenv("VERIFIER_PORT", "eighty")
	t.Setenv("VERIFIER_PROBE_TIMEOUT", "soon")
	t.Setenv("VERIFIER_TRACING_SAMPLE_RATE", "half")

	config, err := Load("")
	require.NoError(t, err)

	defaults := models.NewDefaultConfig()
	assert.Equal(t, defaults.Server.Port, config.Server.Port)
	assert.Equal(t, defaults.Probe.Timeout, config.Probe.Timeout)
	assert.Equal(t, defaults.Observability.Tracing.SampleRate, config.Observability.Tracing.SampleRate)
}

func TestLoad_EnvironmentValidation(t *testing.T) {
	t.Setenv("VERIFIER_LOG_LEVEL", "loud")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestLoadFromEnv(t *testing.T) {
	path := writeConfig(t, `
probe:
  user_agent: from-file
`)
	t.Setenv(EnvConfigFile, path)

	config, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "from-file", config.Probe.UserAgent)
}

func TestSaveExample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "example.yaml")

	require.NoError(t, SaveExample(path))

	config, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "eu-west-1", config.AWS.Region)
	assert.Equal(t, 10*time.Second, config.Probe.Timeout)
	assert.True(t, config.Metrics.Enabled)
}
