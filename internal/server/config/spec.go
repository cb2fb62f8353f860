package config

import "time"

// ExporterConfig is the root configuration for omfamily-exporter.
type ExporterConfig struct {
	Server ServerSection `koanf:"server"`
	Family FamilySection `koanf:"family"`
	Log    LogSection    `koanf:"log"`
}

// ServerSection configures the HTTP endpoint.
type ServerSection struct {
	HTTP            HTTPConfig      `koanf:"http"`
	Local           LocalConfig     `koanf:"local"`
	RateLimit       RateLimitConfig `koanf:"rate_limit"`
	ShutdownTimeout time.Duration   `koanf:"shutdown_timeout"`
}

// LocalConfig configures the Unix socket listener. It serves the same
// endpoints without bearer authentication or rate limiting.
type LocalConfig struct {
	// SocketPath enables the listener when set.
	SocketPath string `koanf:"socket_path"`
}

// HTTPConfig configures the HTTP server.
type HTTPConfig struct {
	Addr        string        `koanf:"addr"`
	MetricsPath string        `koanf:"metrics_path"`
	TLSCertFile string        `koanf:"tls_cert_file"`
	TLSKeyFile  string        `koanf:"tls_key_file"`
	ReadTimeout time.Duration `koanf:"read_timeout"`
	// BearerToken, when set, is required on the metrics endpoints.
	BearerToken string `koanf:"bearer_token"`
	// TrustProxyHeaders takes the client address used for rate limiting
	// and audit logs from X-Forwarded-For or X-Real-IP. Enable it only
	// behind a proxy that overwrites those headers.
	TrustProxyHeaders bool `koanf:"trust_proxy_headers"`
}

// RateLimitConfig configures per-client request limiting.
type RateLimitConfig struct {
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	Burst             int     `koanf:"burst"`
}

// FamilySection configures the families the exporter creates.
type FamilySection struct {
	// StrictInsert constructs each label set exactly once.
	StrictInsert bool `koanf:"strict_insert"`
	// LatencyBuckets are the request duration histogram bounds in seconds.
	LatencyBuckets []float64 `koanf:"latency_buckets"`
}

// LogSection configures logging.
type LogSection struct {
	Level   string `koanf:"level"`
	Format  string `koanf:"format"`
	Backend string `koanf:"backend"`
}
