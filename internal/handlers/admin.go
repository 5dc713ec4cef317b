package handlers

import (
	"net/http"
	"time"

	"insurance-portal/internal/middleware"
	"insurance-portal/internal/telemetry"
)

// AdminHandler lists agents, customers and offers across departments and
// exposes the service's rate limiting and dashboard status
type AdminHandler struct {
	dashboards  *Dashboards
	rateLimiter *middleware.RateLimiter
	errors      errorWriter
}

func NewAdminHandler(dashboards *Dashboards, rateLimiter *middleware.RateLimiter, tel *telemetry.PortalTelemetry) *AdminHandler {
	return &AdminHandler{dashboards: dashboards, rateLimiter: rateLimiter, errors: errorWriter{telemetry: tel}}
}

// Agents handles GET /v1/admin/agents?q=&sort=&dir=
func (h *AdminHandler) Agents(w http.ResponseWriter, r *http.Request) {
	sort, err := sortParams(r)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
		return
	}
	view := h.dashboards.Admin(middleware.SessionFromContext(r.Context()))
	agents, err := view.Agents(r.Context(), r.URL.Query().Get("q"), sort)
	if err != nil {
		h.errors.write(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, agents)
}

// Customers handles GET /v1/admin/customers?q=&sort=&dir=
func (h *AdminHandler) Customers(w http.ResponseWriter, r *http.Request) {
	sort, err := sortParams(r)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
		return
	}
	view := h.dashboards.Admin(middleware.SessionFromContext(r.Context()))
	customers, err := view.Customers(r.Context(), r.URL.Query().Get("q"), sort)
	if err != nil {
		h.errors.write(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, customers)
}

// Offers handles GET /v1/admin/offers?tab=&sort=&dir=; without tab every status is listed
func (h *AdminHandler) Offers(w http.ResponseWriter, r *http.Request) {
	sort, err := sortParams(r)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
		return
	}
	tab, err := intParam(r, "tab", -1)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
		return
	}
	view := h.dashboards.Admin(middleware.SessionFromContext(r.Context()))
	offers, err := view.Offers(r.Context(), tab, sort)
	if err != nil {
		h.errors.write(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, offers)
}

// Dashboards handles GET /v1/admin/dashboards
func (h *AdminHandler) Dashboards(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, h.dashboards.Stats())
}

// GetRateLimitStatus handles GET /v1/admin/rate-limits
func (h *AdminHandler) GetRateLimitStatus(w http.ResponseWriter, r *http.Request) {
	if h.rateLimiter == nil {
		writeErrorResponse(w, http.StatusServiceUnavailable, "rate_limiter_unavailable", "Rate limiter not available", nil)
		return
	}
	writeJSONResponse(w, http.StatusOK, h.rateLimiter.GetRateLimitStats())
}

// ResetRateLimits handles POST /v1/admin/rate-limits/reset
func (h *AdminHandler) ResetRateLimits(w http.ResponseWriter, r *http.Request) {
	if h.rateLimiter == nil {
		writeErrorResponse(w, http.StatusServiceUnavailable, "rate_limiter_unavailable", "Rate limiter not available", nil)
		return
	}
	h.rateLimiter.ResetRateLimits()
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"message":   "Rate limits reset successfully",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
