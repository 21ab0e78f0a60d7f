package handler

import (
	"net/http"
	"time"
)

// handleHealth handles GET /health.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.health("healthy"))
}

// handleReady handles GET /ready. It reports 503 once shutdown has begun.
func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	if h.draining.Load() {
		h.writeJSON(w, http.StatusServiceUnavailable, h.health("draining"))
		return
	}
	h.writeJSON(w, http.StatusOK, h.health("ready"))
}

func (h *Handler) health(status string) HealthResponse {
	resp := HealthResponse{
		Status: status,
		Time:   time.Now().UTC().Format(time.RFC3339),
	}
	if h.stats != nil {
		resp.Documents = h.stats.DocumentCount()
		resp.Connections = h.stats.ConnectionCount()
	}
	return resp
}
