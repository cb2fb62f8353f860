package config

import (
	"time"

	"github.com/yndnr/omfamily/pkg/metric"
)

// Default configuration values.
const (
	DefaultHTTPAddr        = "127.0.0.1:9464"
	DefaultMetricsPath     = "/metrics"
	DefaultReadTimeout     = 10 * time.Second
	DefaultShutdownTimeout = 10 * time.Second

	DefaultRequestsPerSecond = 100
	DefaultBurst             = 200

	DefaultLogLevel   = "info"
	DefaultLogFormat  = "json"
	DefaultLogBackend = "slog"
)

// Default returns the default exporter configuration.
func Default() *ExporterConfig {
	return &ExporterConfig{
		Server: ServerSection{
			HTTP: HTTPConfig{
				Addr:        DefaultHTTPAddr,
				MetricsPath: DefaultMetricsPath,
				ReadTimeout: DefaultReadTimeout,
			},
			RateLimit: RateLimitConfig{
				RequestsPerSecond: DefaultRequestsPerSecond,
				Burst:             DefaultBurst,
			},
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Family: FamilySection{
			LatencyBuckets: append([]float64(nil), metric.DefaultBuckets...),
		},
		Log: LogSection{
			Level:   DefaultLogLevel,
			Format:  DefaultLogFormat,
			Backend: DefaultLogBackend,
		},
	}
}
