package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from a YAML file at the specified path.
// Defaults are applied for unset fields and the result is validated.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}
	return Parse(data)
}

// Parse parses YAML configuration bytes, applies defaults, and validates.
func Parse(data []byte) (*Config, error) {
	// Start from the full default set so booleans that default to true
	// keep that default unless the file sets them explicitly.
	cfg := NewDefault()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Variables follow the naming convention
// JANUS_SECTION_FIELD (e.g., JANUS_SERVER_LISTEN_ADDRESS). Environment
// variables always take precedence over file-based configuration.
func LoadWithEnvOverrides(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("JANUS_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	if val := os.Getenv("JANUS_SERVER_WRITE_PREFIX"); val != "" {
		cfg.Server.WritePrefix = val
	}
	overrideDuration("JANUS_SERVER_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	overrideDuration("JANUS_SERVER_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	overrideDuration("JANUS_SERVER_IDLE_TIMEOUT", &cfg.Server.IdleTimeout)
	overrideDuration("JANUS_SERVER_DRAIN_TIMEOUT", &cfg.Server.DrainTimeout)

	overrideDuration("JANUS_ADMISSION_LAG_THRESHOLD", &cfg.Admission.LagThreshold)
	overrideDuration("JANUS_ADMISSION_SAMPLE_INTERVAL", &cfg.Admission.SampleInterval)

	if val := os.Getenv("JANUS_TRANSPORT_TRUSTED_PROXIES"); val != "" {
		cfg.Transport.TrustedProxies = splitAndTrim(val)
	}

	if val := os.Getenv("JANUS_STORE_DRIVER"); val != "" {
		cfg.Store.Driver = val
	}
	if val := os.Getenv("JANUS_STORE_PATH"); val != "" {
		cfg.Store.Path = val
	}
	overrideDuration("JANUS_STORE_BUSY_TIMEOUT", &cfg.Store.BusyTimeout)
	if val := os.Getenv("JANUS_STORE_MAX_OPEN_CONNS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Store.MaxOpenConns = i
		}
	}

	overrideDuration("JANUS_HEALTH_PROBE_INTERVAL", &cfg.Health.ProbeInterval)
	overrideDuration("JANUS_HEALTH_PROBE_TIMEOUT", &cfg.Health.ProbeTimeout)

	if val := os.Getenv("JANUS_TELEMETRY_LOG_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("JANUS_TELEMETRY_LOG_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
}

func overrideDuration(name string, dst *time.Duration) {
	if val := os.Getenv(name); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
