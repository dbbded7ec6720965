package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress  = "127.0.0.1:8080"
	DefaultWritePrefix    = "/v1"
	DefaultReadTimeout    = 30 * time.Second
	DefaultWriteTimeout   = 30 * time.Second
	DefaultIdleTimeout    = 120 * time.Second
	DefaultDrainTimeout   = 30 * time.Second
	DefaultMaxHeaderBytes = 1048576 // 1MB

	// Admission defaults
	DefaultLagThreshold   = 70 * time.Millisecond
	DefaultSampleInterval = 500 * time.Millisecond

	// Transport defaults
	DefaultHSTS                  = true
	DefaultContentSecurityPolicy = "default-src 'self'"
	DefaultFrameOptions          = "DENY"

	// Store defaults
	DefaultStoreDriver       = "sqlite3"
	DefaultStorePath         = "data/idp.db"
	DefaultStoreWALMode      = true
	DefaultStoreBusyTimeout  = 5 * time.Second
	DefaultStoreMaxOpenConns = 10
	DefaultStoreMaxIdleConns = 5

	// Health defaults
	DefaultProbeInterval = 5 * time.Second
	DefaultProbeTimeout  = 2 * time.Second

	// Retention defaults
	DefaultRetentionDays     = 90
	DefaultRetentionSchedule = "0 3 * * *"

	// Telemetry defaults
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "json"
	DefaultMetricsEnabled   = true
	DefaultMetricsPath      = "/metrics"
	DefaultMetricsNamespace = "janus"
)

// DefaultTrustedProxies is the default set of CIDR blocks trusted to
// assert X-Forwarded-Proto.
var DefaultTrustedProxies = []string{"127.0.0.1/32", "::1/128"}

// ApplyDefaults fills in default values for any unset configuration fields.
// Zero values for booleans that default to true cannot be distinguished
// from explicit false after unmarshalling, so those are handled by
// NewDefault before parsing rather than here.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.WritePrefix == "" {
		cfg.Server.WritePrefix = DefaultWritePrefix
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.DrainTimeout == 0 {
		cfg.Server.DrainTimeout = DefaultDrainTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}

	if cfg.Admission.LagThreshold == 0 {
		cfg.Admission.LagThreshold = DefaultLagThreshold
	}
	if cfg.Admission.SampleInterval == 0 {
		cfg.Admission.SampleInterval = DefaultSampleInterval
	}

	if len(cfg.Transport.TrustedProxies) == 0 {
		cfg.Transport.TrustedProxies = append([]string(nil), DefaultTrustedProxies...)
	}
	if cfg.Transport.ContentSecurityPolicy == "" {
		cfg.Transport.ContentSecurityPolicy = DefaultContentSecurityPolicy
	}
	if cfg.Transport.FrameOptions == "" {
		cfg.Transport.FrameOptions = DefaultFrameOptions
	}

	if cfg.Store.Driver == "" {
		cfg.Store.Driver = DefaultStoreDriver
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = DefaultStorePath
	}
	if cfg.Store.BusyTimeout == 0 {
		cfg.Store.BusyTimeout = DefaultStoreBusyTimeout
	}
	if cfg.Store.MaxOpenConns == 0 {
		cfg.Store.MaxOpenConns = DefaultStoreMaxOpenConns
	}
	if cfg.Store.MaxIdleConns == 0 {
		cfg.Store.MaxIdleConns = DefaultStoreMaxIdleConns
	}

	if cfg.Health.ProbeInterval == 0 {
		cfg.Health.ProbeInterval = DefaultProbeInterval
	}
	if cfg.Health.ProbeTimeout == 0 {
		cfg.Health.ProbeTimeout = DefaultProbeTimeout
	}

	if cfg.Retention.Days == 0 {
		cfg.Retention.Days = DefaultRetentionDays
	}
	if cfg.Retention.Schedule == "" {
		cfg.Retention.Schedule = DefaultRetentionSchedule
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLogLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLogFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
}

// NewDefault returns a Config pre-populated with every default, including
// the booleans that default to true.
func NewDefault() *Config {
	cfg := &Config{}
	cfg.Transport.HSTS = DefaultHSTS
	cfg.Store.WALMode = DefaultStoreWALMode
	cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
	ApplyDefaults(cfg)
	return cfg
}
