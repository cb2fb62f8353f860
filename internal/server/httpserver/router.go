package httpserver

import (
	"net/http"

	"github.com/yndnr/omfamily/internal/server/config"
	"github.com/yndnr/omfamily/internal/server/httpserver/handler"
	"github.com/yndnr/omfamily/internal/telemetry/logger"
	"github.com/yndnr/omfamily/internal/telemetry/metric"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	Registry *metric.Registry
	Logger   logger.Logger

	// MetricsPath serves the Prometheus handler. Defaults to /metrics.
	MetricsPath string

	// BearerToken protects the metrics endpoints when set.
	BearerToken string

	RateLimit config.RateLimitConfig

	// TrustProxyHeaders takes the client address from forwarding headers.
	TrustProxyHeaders bool

	// Instruments records request families. Nil disables instrumentation.
	Instruments *Instruments
}

// NewRouter creates the exporter handler with all routes and middleware.
func NewRouter(cfg *RouterConfig) http.Handler {
	metricsPath := cfg.MetricsPath
	if metricsPath == "" {
		metricsPath = config.DefaultMetricsPath
	}

	h := handler.New(cfg.Registry, cfg.Logger)
	auth := BearerAuth(cfg.BearerToken)

	mux := http.NewServeMux()
	mux.Handle("GET "+metricsPath, auth(cfg.Registry.Handler()))
	mux.Handle("GET /openmetrics", auth(h))
	mux.Handle("GET /families", h)
	mux.Handle("GET /health", h)
	mux.Handle("GET /ready", h)
	mux.Handle("GET /hello", h)
	mux.Handle("PUT /hello", h)

	middlewares := []Middleware{Recover()}
	if cfg.TrustProxyHeaders {
		middlewares = append(middlewares, RealIP())
	}
	middlewares = append(middlewares,
		RequestID(),
		Audit(),
		RateLimit(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst),
	)
	if cfg.Instruments != nil {
		middlewares = append(middlewares, cfg.Instruments.Instrument())
	}
	return Chain(mux, middlewares...)
}
