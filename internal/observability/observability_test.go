package observability

import (
	"context"
	"strings"
	"testing"

	"deployverify/internal/models"
	"deployverify/internal/version"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestProvider(t *testing.T) *Provider {
	t.Helper()
	metrics := models.MetricsConfig{Enabled: true, Path: "/metrics", Port: 9090}
	obs := models.ObservabilityConfig{
		ServiceName: "test",
		Tracing: models.TracingConfig{
			Enabled:    true,
			Exporter:   models.TraceExporterStdout,
			SampleRate: 1.0,
		},
	}
	provider, err := Setup(metrics, obs, version.Info{Version: "1.0.0"})
	require.NoError(t, err)
	t.Cleanup(func() { provider.Shutdown(context.Background()) })
	return provider
}

// findFamily returns the first gathered family whose name starts with prefix.
func findFamily(t *testing.T, provider *Provider, prefix string) *dto.MetricFamily {
	t.Helper()
	families, err := provider.Gatherer().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if strings.HasPrefix(mf.GetName(), prefix) {
			return mf
		}
	}
	return nil
}

func labels(m *dto.Metric) map[string]string {
	out := make(map[string]string)
	for _, lp := range m.GetLabel() {
		out[lp.GetName()] = lp.GetValue()
	}
	return out
}

func TestSetup_MetricsOnly(t *testing.T) {
	provider, err := Setup(
		models.MetricsConfig{Enabled: true, Path: "/metrics", Port: 9090},
		models.ObservabilityConfig{ServiceName: "test-service"},
		version.Info{},
	)
	require.NoError(t, err)
	require.NotNil(t, provider)
	assert.NotNil(t, provider.Gatherer())
	assert.Nil(t, provider.tracerProvider)

	assert.NoError(t, provider.ForceFlush(context.Background()))
	assert.NoError(t, provider.Shutdown(context.Background()))
}

func TestSetup_TracingStdout(t *testing.T) {
	provider, err := Setup(
		models.MetricsConfig{Enabled: false},
		models.ObservabilityConfig{
			ServiceName: "test-service",
			Tracing:     models.TracingConfig{Enabled: true, Exporter: models.TraceExporterStdout, SampleRate: 0.5},
		},
		version.Info{},
	)
	require.NoError(t, err)
	assert.NotNil(t, provider.tracerProvider)
	assert.Nil(t, provider.Gatherer())

	assert.NoError(t, provider.ForceFlush(context.Background()))
	assert.NoError(t, provider.Shutdown(context.Background()))
}

func TestSetup_TracingOTLP(t *testing.T) {
	provider, err := Setup(
		models.MetricsConfig{},
		models.ObservabilityConfig{
			ServiceName: "test-service",
			Tracing: models.TracingConfig{
				Enabled:      true,
				Exporter:     models.TraceExporterOTLP,
				OTLPEndpoint: "localhost:4317",
				SampleRate:   0,
			},
		},
		version.Info{},
	)
	require.NoError(t, err)
	assert.NotNil(t, provider.tracerProvider)
}

func TestSetup_UnsupportedExporter(t *testing.T) {
	_, err := Setup(
		models.MetricsConfig{},
		models.ObservabilityConfig{
			ServiceName: "test-service",
			Tracing:     models.TracingConfig{Enabled: true, Exporter: "zipkin"},
		},
		version.Info{},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported trace exporter")
}

func TestSetup_NothingEnabled(t *testing.T) {
	provider, err := Setup(models.MetricsConfig{}, models.ObservabilityConfig{ServiceName: "s"}, version.Info{})
	require.NoError(t, err)
	assert.Nil(t, provider.Gatherer())
	assert.NoError(t, provider.Shutdown(context.Background()))
}

func TestGetEnvironment(t *testing.T) {
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("DEPLOYMENT_ENV", "")
	assert.Equal(t, "development", getEnvironment())

	t.Setenv("DEPLOYMENT_ENV", "staging")
	assert.Equal(t, "staging", getEnvironment())

	t.Setenv("ENVIRONMENT", "production")
	assert.Equal(t, "production", getEnvironment())
}
