package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"insurance-portal/internal/models"
)

// UpstreamChecker reports whether the insurance API is reachable
type UpstreamChecker interface {
	HealthCheck(ctx context.Context) (*models.HealthResponse, error)
}

// HealthHandler handles health check requests
type HealthHandler struct {
	upstream UpstreamChecker
	version  string
}

func NewHealthHandler(upstream UpstreamChecker, version string) *HealthHandler {
	return &HealthHandler{upstream: upstream, version: version}
}

// Health handles GET /health - liveness, never touches the upstream
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, models.HealthResponse{
		Status:    "healthy",
		Service:   "insurance-portal",
		Version:   h.version,
		Timestamp: time.Now().UTC(),
	})
}

// Ready handles GET /ready - the portal is ready when the insurance API answers
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if _, err := h.upstream.HealthCheck(ctx); err != nil {
		slog.Warn("Readiness check failed", "error", err)
		writeErrorResponse(w, http.StatusServiceUnavailable, "upstream_unavailable", "Insurance API is not reachable", nil)
		return
	}
	writeJSONResponse(w, http.StatusOK, models.HealthResponse{
		Status:    "ready",
		Service:   "insurance-portal",
		Version:   h.version,
		Timestamp: time.Now().UTC(),
	})
}
