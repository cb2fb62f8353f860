package handler

import (
	"net/http"

	"github.com/yndnr/omfamily/internal/telemetry/logger"
)

// OpenMetricsContentType is the media type of the native encoder output.
const OpenMetricsContentType = "application/openmetrics-text; version=1.0.0; charset=utf-8"

// handleFamilies handles GET /families.
func (h *Handler) handleFamilies(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, FamiliesResponse{Families: h.registry.Families()})
}

// handleOpenMetrics handles GET /openmetrics with the registry's own encoder.
func (h *Handler) handleOpenMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", OpenMetricsContentType)
	if err := h.registry.Encode(w); err != nil {
		logger.L(r.Context()).Error("failed to encode metrics", "error", err)
	}
}

// handleHello is a demo endpoint whose traffic shows up in the request families.
func (h *Handler) handleHello(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		name = "world"
	}
	h.writeJSON(w, r, http.StatusOK, map[string]string{"greeting": "hello, " + name})
}
