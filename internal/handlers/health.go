package handlers

import (
	"net/http"
	"time"

	"github.com/XavierBriggs/fortuna/services/match-feed-service/internal/health"
)

// HealthHandler exposes the health monitor
type HealthHandler struct {
	monitor *health.Monitor
}

// NewHealthHandler creates a health handler
func NewHealthHandler(monitor *health.Monitor) *HealthHandler {
	return &HealthHandler{
		monitor: monitor,
	}
}

// HandleHealth returns the service health snapshot.
// Degradation is reported in the body, not the status code: a degraded
// service still answers requests.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := h.monitor.CheckHealth(r.Context())

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    status.SystemStatus(),
		"healthy":   status.Healthy,
		"warnings":  status.Warnings,
		"degraded":  status.Degraded,
		"timestamp": time.Now().UTC(),
		"service":   "match-feed-service",
	})
}
