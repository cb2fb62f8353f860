package handler

import (
	"encoding/json"
	"net/http"

	"github.com/yndnr/omfamily/internal/telemetry/logger"
	"github.com/yndnr/omfamily/internal/telemetry/metric"
)

// Handler serves the exporter endpoints other than the Prometheus handler.
type Handler struct {
	registry *metric.Registry
	logger   logger.Logger
	mux      *http.ServeMux
}

// New creates a Handler over registry.
func New(registry *metric.Registry, l logger.Logger) *Handler {
	h := &Handler{
		registry: registry,
		logger:   l,
		mux:      http.NewServeMux(),
	}
	h.registerRoutes()
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.mux.HandleFunc("GET /health", h.handleHealth)
	h.mux.HandleFunc("GET /ready", h.handleReady)
	h.mux.HandleFunc("GET /families", h.handleFamilies)
	h.mux.HandleFunc("GET /openmetrics", h.handleOpenMetrics)
	h.mux.HandleFunc("GET /hello", h.handleHello)
	h.mux.HandleFunc("PUT /hello", h.handleHello)
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	requestID := getRequestID(r)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(NewResponse(requestID, data)); err != nil {
		logger.L(r.Context()).Error("failed to encode response", "error", err)
	}
}

func getRequestID(r *http.Request) string {
	if id := logger.RequestIDFromContext(r.Context()); id != "" {
		return id
	}
	return r.Header.Get("X-Request-ID")
}
