// Package config loads verifier configuration from defaults, an optional YAML
// file and VERIFIER_* environment variables, in that order of precedence.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"deployverify/internal/models"

	"gopkg.in/yaml.v3"
)

// EnvConfigFile names the variable the Lambda binary reads its config path from.
const EnvConfigFile = "VERIFIER_CONFIG_FILE"

// Load loads configuration from file and environment variables
func Load(configPath string) (*models.Config, error) {
	config := models.NewDefaultConfig()

	if configPath != "" {
		if err := loadFromFile(config, configPath); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	loadFromEnvironment(config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// LoadFromEnv loads configuration using the file named by VERIFIER_CONFIG_FILE, if set.
func LoadFromEnv() (*models.Config, error) {
	return Load(os.Getenv(EnvConfigFile))
}

var knownSections = map[string]bool{
	"aws":           true,
	"probe":         true,
	"server":        true,
	"security":      true,
	"logging":       true,
	"metrics":       true,
	"observability": true,
}

// warnUnknownSections logs top-level keys the decoder will ignore, which are
// usually typos that would otherwise silently fall back to defaults.
func warnUnknownSections(data []byte) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return
	}
	for key := range raw {
		if !knownSections[key] {
			slog.Warn("Ignoring unknown config section", "config_key", key)
		}
	}
}

func loadFromFile(config *models.Config, filePath string) error {
	data, err := os.ReadFile(filePath)
	if os.IsNotExist(err) {
		return fmt.Errorf("config file not found: %s", filePath)
	}
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	warnUnknownSections(data)
	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse YAML config: %w", err)
	}
	return nil
}

func loadFromEnvironment(config *models.Config) {
	// AWS
	setString(&config.AWS.Region, "VERIFIER_AWS_REGION")
	setString(&config.AWS.Profile, "VERIFIER_AWS_PROFILE")
	setString(&config.AWS.EndpointURL, "VERIFIER_AWS_ENDPOINT_URL")

	// Probe
	setDuration(&config.Probe.Timeout, "VERIFIER_PROBE_TIMEOUT")
	setString(&config.Probe.UserAgent, "VERIFIER_PROBE_USER_AGENT")
	setString(&config.Probe.OutputKey, "VERIFIER_OUTPUT_KEY")

	// Server
	setInt(&config.Server.Port, "VERIFIER_PORT")
	setString(&config.Server.Host, "VERIFIER_HOST")
	setDuration(&config.Server.ReadTimeout, "VERIFIER_READ_TIMEOUT")
	setDuration(&config.Server.WriteTimeout, "VERIFIER_WRITE_TIMEOUT")
	setDuration(&config.Server.IdleTimeout, "VERIFIER_IDLE_TIMEOUT")

	// Rate limiting
	setBool(&config.Security.RateLimit.Enabled, "VERIFIER_RATE_LIMIT_ENABLED")
	setInt(&config.Security.RateLimit.RequestsPerMinute, "VERIFIER_RATE_LIMIT_REQUESTS_PER_MINUTE")
	setInt(&config.Security.RateLimit.BurstSize, "VERIFIER_RATE_LIMIT_BURST_SIZE")

	// Logging
	setString(&config.Logging.Level, "VERIFIER_LOG_LEVEL")
	setString(&config.Logging.Format, "VERIFIER_LOG_FORMAT")
	setString(&config.Logging.Output, "VERIFIER_LOG_OUTPUT")
	setString(&config.Logging.FilePath, "VERIFIER_LOG_FILE_PATH")

	// Metrics
	setBool(&config.Metrics.Enabled, "VERIFIER_METRICS_ENABLED")
	setString(&config.Metrics.Path, "VERIFIER_METRICS_PATH")
	setInt(&config.Metrics.Port, "VERIFIER_METRICS_PORT")

	// Tracing
	setString(&config.Observability.ServiceName, "VERIFIER_SERVICE_NAME")
	setBool(&config.Observability.Tracing.Enabled, "VERIFIER_TRACING_ENABLED")
	setString(&config.Observability.Tracing.Exporter, "VERIFIER_TRACING_EXPORTER")
	setString(&config.Observability.Tracing.OTLPEndpoint, "VERIFIER_OTLP_ENDPOINT")
	if rate := os.Getenv("VERIFIER_TRACING_SAMPLE_RATE"); rate != "" {
		if r, err := strconv.ParseFloat(rate, 64); err == nil {
			config.Observability.Tracing.SampleRate = r
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Unparseable values are ignored and the previous value kept.

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = strings.ToLower(v) == "true"
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

// SaveExample saves an example configuration file
func SaveExample(filePath string) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	config := models.NewDefaultConfig()
	config.AWS.Region = "eu-west-1"
	config.Probe.Timeout = 10 * time.Second
	config.Metrics.Enabled = true
	config.Security.RateLimit.Enabled = true

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
