package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"sort"
	"strings"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// maxSocketPath is the portable sun_path limit.
const maxSocketPath = 104

// Verify validates the configuration.
func Verify(cfg *ExporterConfig) error {
	var errs []error
	errs = append(errs, verifyServer(&cfg.Server)...)
	errs = append(errs, verifyFamily(&cfg.Family)...)
	errs = append(errs, verifyLog(&cfg.Log)...)
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

func verifyServer(cfg *ServerSection) []error {
	var errs []error
	if _, _, err := net.SplitHostPort(cfg.HTTP.Addr); err != nil {
		errs = append(errs, fmt.Errorf("server.http.addr: %w", err))
	}
	if !strings.HasPrefix(cfg.HTTP.MetricsPath, "/") {
		errs = append(errs, errors.New("server.http.metrics_path must start with /"))
	}
	if (cfg.HTTP.TLSCertFile == "") != (cfg.HTTP.TLSKeyFile == "") {
		errs = append(errs, errors.New("server.http.tls_cert_file and tls_key_file must be set together"))
	}
	for _, f := range []string{cfg.HTTP.TLSCertFile, cfg.HTTP.TLSKeyFile} {
		if f == "" {
			continue
		}
		if _, err := os.Stat(f); err != nil {
			errs = append(errs, fmt.Errorf("server.http tls file: %w", err))
		}
	}
	if len(cfg.Local.SocketPath) > maxSocketPath {
		errs = append(errs, fmt.Errorf("server.local.socket_path longer than %d bytes", maxSocketPath))
	}
	if cfg.RateLimit.RequestsPerSecond < 0 {
		errs = append(errs, errors.New("server.rate_limit.requests_per_second must not be negative"))
	}
	if cfg.RateLimit.RequestsPerSecond > 0 && cfg.RateLimit.Burst < 1 {
		errs = append(errs, errors.New("server.rate_limit.burst must be at least 1"))
	}
	if cfg.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("server.shutdown_timeout must be positive"))
	}
	return errs
}

func verifyFamily(cfg *FamilySection) []error {
	if len(cfg.LatencyBuckets) == 0 {
		return []error{errors.New("family.latency_buckets must not be empty")}
	}
	if !sort.Float64sAreSorted(cfg.LatencyBuckets) {
		return []error{errors.New("family.latency_buckets must be sorted")}
	}
	return nil
}

func verifyLog(cfg *LogSection) []error {
	var errs []error
	switch strings.ToLower(cfg.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level: unknown level %q", cfg.Level))
	}
	switch strings.ToLower(cfg.Backend) {
	case "", "slog", "zap":
	default:
		errs = append(errs, fmt.Errorf("log.backend: unknown backend %q", cfg.Backend))
	}
	return errs
}
