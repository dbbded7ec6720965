package config

import "time"

// Config is the root configuration structure for Janus. It contains all
// configuration sections for the HTTP server, admission control, transport
// trust, the IdP record store, health probing, retention, and telemetry.
type Config struct {
	// Server contains HTTP server configuration including listen address,
	// timeouts, and the write-API path prefix.
	Server ServerConfig `yaml:"server"`

	// Admission contains configuration for load-based admission control.
	Admission AdmissionConfig `yaml:"admission"`

	// Transport contains transport-trust and security header configuration.
	Transport TransportConfig `yaml:"transport"`

	// Store contains configuration for the IdP record store.
	Store StoreConfig `yaml:"store"`

	// Health contains configuration for the store liveness prober.
	Health HealthConfig `yaml:"health"`

	// Retention contains configuration for pruning stale IdP records.
	Retention RetentionConfig `yaml:"retention"`

	// Telemetry contains configuration for logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8080").
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// WritePrefix is the path prefix under which write-API routes are
	// mounted. No read routes are served under this prefix.
	// Default: "/v1"
	WritePrefix string `yaml:"write_prefix"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out response writes.
	// Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum time to wait for the next request when
	// keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// DrainTimeout bounds the whole graceful shutdown: in-flight requests
	// plus every registered shutdown hook. If the drain does not complete
	// within this duration the process terminates anyway.
	// Default: 30s
	DrainTimeout time.Duration `yaml:"drain_timeout"`

	// MaxHeaderBytes limits the size of request headers.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`
}

// AdmissionConfig contains configuration for the admission controller.
type AdmissionConfig struct {
	// LagThreshold is the scheduler lag above which new requests are
	// rejected with 503. Rejection is O(1) and touches no dependency.
	// Default: 70ms
	LagThreshold time.Duration `yaml:"lag_threshold"`

	// SampleInterval is the cadence at which scheduler lag is sampled.
	// Default: 500ms
	SampleInterval time.Duration `yaml:"sample_interval"`
}

// TransportConfig contains transport-trust and security header settings.
type TransportConfig struct {
	// TrustedProxies is the list of CIDR blocks whose proxy-asserted
	// X-Forwarded-Proto headers are believed. Requests from peers outside
	// these blocks are never treated as secure based on headers alone.
	// Default: ["127.0.0.1/32", "::1/128"]
	TrustedProxies []string `yaml:"trusted_proxies"`

	// HSTS controls whether Strict-Transport-Security is sent on
	// trusted-secure responses.
	// Default: true
	HSTS bool `yaml:"hsts"`

	// ContentSecurityPolicy is the Content-Security-Policy header value.
	// Default: "default-src 'self'"
	ContentSecurityPolicy string `yaml:"content_security_policy"`

	// FrameOptions is the X-Frame-Options header value.
	// Default: "DENY"
	FrameOptions string `yaml:"frame_options"`
}

// StoreConfig contains configuration for the IdP record store.
type StoreConfig struct {
	// Driver selects the SQLite driver: "sqlite3" (cgo, mattn) or
	// "sqlite" (pure Go, modernc).
	// Default: "sqlite3"
	Driver string `yaml:"driver"`

	// Path is the database file path.
	// Default: "data/idp.db"
	Path string `yaml:"path"`

	// WALMode enables Write-Ahead Logging for better concurrency.
	// Default: true
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is how long to wait when the database is locked.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int `yaml:"max_idle_conns"`
}

// HealthConfig contains configuration for the store liveness prober.
type HealthConfig struct {
	// ProbeInterval is how often the store is probed.
	// Default: 5s
	ProbeInterval time.Duration `yaml:"probe_interval"`

	// ProbeTimeout bounds each individual probe.
	// Default: 2s
	ProbeTimeout time.Duration `yaml:"probe_timeout"`
}

// RetentionConfig contains configuration for stale-record pruning.
type RetentionConfig struct {
	// Enabled controls whether scheduled pruning runs at all.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Days is the age in days after which an IdP record with no new
	// observation is deleted.
	// Default: 90
	Days int `yaml:"days"`

	// Schedule is a standard cron expression for when pruning runs.
	// Default: "0 3 * * *" (daily at 3 AM)
	Schedule string `yaml:"schedule"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains structured logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the output format: "json" or "text".
	// Default: "json"
	Format string `yaml:"format"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled controls whether the /metrics endpoint is served.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the metrics endpoint path.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the Prometheus metric namespace.
	// Default: "janus"
	Namespace string `yaml:"namespace"`
}
