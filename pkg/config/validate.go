package config

import (
	"fmt"
	"net"
	"strings"

	"github.com/robfig/cron/v3"
)

// Validate checks the configuration for invalid or inconsistent values.
// It returns an error describing the first problem found.
func Validate(cfg *Config) error {
	if err := validateListenAddress(cfg.Server.ListenAddress); err != nil {
		return err
	}

	if !strings.HasPrefix(cfg.Server.WritePrefix, "/") {
		return fmt.Errorf("server.write_prefix %q must start with '/'", cfg.Server.WritePrefix)
	}
	if cfg.Server.DrainTimeout <= 0 {
		return fmt.Errorf("server.drain_timeout must be positive, got %s", cfg.Server.DrainTimeout)
	}

	if cfg.Admission.LagThreshold <= 0 {
		return fmt.Errorf("admission.lag_threshold must be positive, got %s", cfg.Admission.LagThreshold)
	}
	if cfg.Admission.SampleInterval <= 0 {
		return fmt.Errorf("admission.sample_interval must be positive, got %s", cfg.Admission.SampleInterval)
	}

	for _, cidr := range cfg.Transport.TrustedProxies {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			return fmt.Errorf("transport.trusted_proxies entry %q is not a valid CIDR: %w", cidr, err)
		}
	}

	switch cfg.Store.Driver {
	case "sqlite3", "sqlite":
	default:
		return fmt.Errorf("store.driver must be \"sqlite3\" or \"sqlite\", got %q", cfg.Store.Driver)
	}
	if cfg.Store.Path == "" {
		return fmt.Errorf("store.path must not be empty")
	}

	if cfg.Health.ProbeInterval <= 0 {
		return fmt.Errorf("health.probe_interval must be positive, got %s", cfg.Health.ProbeInterval)
	}
	if cfg.Health.ProbeTimeout <= 0 {
		return fmt.Errorf("health.probe_timeout must be positive, got %s", cfg.Health.ProbeTimeout)
	}
	if cfg.Health.ProbeTimeout >= cfg.Health.ProbeInterval {
		return fmt.Errorf("health.probe_timeout (%s) must be shorter than health.probe_interval (%s)",
			cfg.Health.ProbeTimeout, cfg.Health.ProbeInterval)
	}

	if cfg.Retention.Enabled {
		if cfg.Retention.Days <= 0 {
			return fmt.Errorf("retention.days must be positive when retention is enabled, got %d", cfg.Retention.Days)
		}
		if _, err := cron.ParseStandard(cfg.Retention.Schedule); err != nil {
			return fmt.Errorf("retention.schedule %q is not a valid cron expression: %w", cfg.Retention.Schedule, err)
		}
	}

	switch cfg.Telemetry.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("telemetry.logging.level must be one of debug, info, warn, error; got %q", cfg.Telemetry.Logging.Level)
	}
	switch cfg.Telemetry.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("telemetry.logging.format must be \"json\" or \"text\", got %q", cfg.Telemetry.Logging.Format)
	}

	return nil
}

func validateListenAddress(addr string) error {
	if addr == "" {
		return fmt.Errorf("server.listen_address must not be empty")
	}
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("server.listen_address %q is not a valid host:port: %w", addr, err)
	}
	if port == "" {
		return fmt.Errorf("server.listen_address %q is missing a port", addr)
	}
	// Host may be empty (bind all interfaces) or a name; only reject
	// values that cannot possibly resolve.
	if strings.ContainsAny(host, " \t") {
		return fmt.Errorf("server.listen_address host %q contains whitespace", host)
	}
	return nil
}
