package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"insurance-portal/internal/dashboard"
	"insurance-portal/internal/middleware"
	"insurance-portal/internal/telemetry"
)

// AgentHandler serves the agent dashboard: the department's offers and claims tables
type AgentHandler struct {
	dashboards *Dashboards
	telemetry  *telemetry.PortalTelemetry
	errors     errorWriter
}

func NewAgentHandler(dashboards *Dashboards, tel *telemetry.PortalTelemetry) *AgentHandler {
	return &AgentHandler{dashboards: dashboards, telemetry: tel, errors: errorWriter{telemetry: tel}}
}

// QuotePreviewRequest is the body of POST /v1/agent/quote/preview
type QuotePreviewRequest struct {
	OfferID      int64           `json:"offerId"`
	DiscountRate decimal.Decimal `json:"discountRate"`
}

// RefreshResponse carries both tables after a reload
type RefreshResponse struct {
	Offers dashboard.OffersPage `json:"offers"`
	Claims dashboard.ClaimsPage `json:"claims"`
}

// dashboard resolves the caller's mounted agent dashboard, writing the error response on failure
func (h *AgentHandler) dashboard(w http.ResponseWriter, r *http.Request) (*dashboard.AgentDashboard, bool) {
	d, err := h.dashboards.Agent(r.Context(), middleware.SessionFromContext(r.Context()))
	if err != nil {
		h.errors.write(w, r, err)
		return nil, false
	}
	return d, true
}

// Profile handles GET /v1/agent/profile
func (h *AgentHandler) Profile(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dashboard(w, r)
	if !ok {
		return
	}
	writeJSONResponse(w, http.StatusOK, d.Agent())
}

// Offers handles GET /v1/agent/offers?tab=&sort=&dir=. Given parameters update the view.
func (h *AgentHandler) Offers(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dashboard(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	if q.Has("tab") {
		tab, err := intParam(r, "tab", 0)
		if err != nil {
			writeErrorResponse(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
			return
		}
		if err := d.SelectOfferTab(tab); err != nil {
			h.errors.write(w, r, err)
			return
		}
	}
	if q.Has("sort") {
		state, err := sortParams(r)
		if err != nil {
			writeErrorResponse(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
			return
		}
		if err := d.SetOfferSort(state); err != nil {
			h.errors.write(w, r, err)
			return
		}
	}
	writeJSONResponse(w, http.StatusOK, d.OffersPage())
}

// SortOffers handles POST /v1/agent/offers/sort/{key}, a header click
func (h *AgentHandler) SortOffers(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dashboard(w, r)
	if !ok {
		return
	}
	if _, err := d.SortOffers(mux.Vars(r)["key"]); err != nil {
		h.errors.write(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, d.OffersPage())
}

// BeginEdit handles POST /v1/agent/offers/{id}/edit
func (h *AgentHandler) BeginEdit(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dashboard(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
		return
	}
	if err := d.BeginEdit(id); err != nil {
		h.errors.write(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, d.EditState())
}

// UpdateDraft handles PATCH /v1/agent/offers/edit
func (h *AgentHandler) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dashboard(w, r)
	if !ok {
		return
	}
	var patch dashboard.DraftPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
		return
	}
	if err := d.UpdateDraft(patch); err != nil {
		h.errors.write(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, d.EditState())
}

// SaveEdit handles POST /v1/agent/offers/edit/save
func (h *AgentHandler) SaveEdit(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dashboard(w, r)
	if !ok {
		return
	}
	err := d.SaveEdit(r.Context())
	switch {
	case err == nil, errors.Is(err, dashboard.ErrRefreshFailed):
		h.telemetry.RecordOfferSave(r.Context(), true)
	case errors.Is(err, dashboard.ErrSaveFailed):
		h.telemetry.RecordOfferSave(r.Context(), false)
	}
	h.writeOffersAfterChange(w, r, d, err)
}

// CancelEdit handles DELETE /v1/agent/offers/edit
func (h *AgentHandler) CancelEdit(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dashboard(w, r)
	if !ok {
		return
	}
	if err := d.CancelEdit(); err != nil {
		h.errors.write(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RequestDelete handles POST /v1/agent/offers/{id}/delete and opens the confirmation dialog
func (h *AgentHandler) RequestDelete(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dashboard(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
		return
	}
	if err := d.RequestDelete(id); err != nil {
		h.errors.write(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, d.DeleteTarget())
}

// ConfirmDelete handles POST /v1/agent/offers/delete/confirm
func (h *AgentHandler) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dashboard(w, r)
	if !ok {
		return
	}
	err := d.ConfirmDelete(r.Context())
	switch {
	case err == nil, errors.Is(err, dashboard.ErrRefreshFailed):
		h.telemetry.RecordOfferDelete(r.Context(), true)
	case errors.Is(err, dashboard.ErrDeleteFailed):
		h.telemetry.RecordOfferDelete(r.Context(), false)
	}
	h.writeOffersAfterChange(w, r, d, err)
}

// writeOffersAfterChange answers a save or delete. A change that reached the API
// but could not be reloaded is still a success, rendered from the last rows with stale set.
func (h *AgentHandler) writeOffersAfterChange(w http.ResponseWriter, r *http.Request, d *dashboard.AgentDashboard, err error) {
	if err != nil && !errors.Is(err, dashboard.ErrRefreshFailed) {
		h.errors.write(w, r, err)
		return
	}
	page := d.OffersPage()
	if err != nil {
		slog.Warn("Serving offers without reload", "path", r.URL.Path, "error", err)
		page.Stale = true
	}
	writeJSONResponse(w, http.StatusOK, page)
}

// CancelDelete handles DELETE /v1/agent/offers/delete
func (h *AgentHandler) CancelDelete(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dashboard(w, r)
	if !ok {
		return
	}
	if err := d.CancelDelete(); err != nil {
		h.errors.write(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Claims handles GET /v1/agent/claims?tab=&q=&sort=&dir=
func (h *AgentHandler) Claims(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dashboard(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	if q.Has("tab") {
		tab, err := intParam(r, "tab", 0)
		if err != nil {
			writeErrorResponse(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
			return
		}
		if err := d.SelectClaimTab(tab); err != nil {
			h.errors.write(w, r, err)
			return
		}
	}
	if q.Has("sort") {
		state, err := sortParams(r)
		if err != nil {
			writeErrorResponse(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
			return
		}
		if err := d.SetClaimSort(state); err != nil {
			h.errors.write(w, r, err)
			return
		}
	}
	if q.Has("q") {
		d.SearchClaims(q.Get("q"))
	}
	writeJSONResponse(w, http.StatusOK, d.ClaimsPage())
}

// SortClaims handles POST /v1/agent/claims/sort/{key}
func (h *AgentHandler) SortClaims(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dashboard(w, r)
	if !ok {
		return
	}
	if _, err := d.SortClaims(mux.Vars(r)["key"]); err != nil {
		h.errors.write(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, d.ClaimsPage())
}

// Refresh handles POST /v1/agent/refresh
func (h *AgentHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dashboard(w, r)
	if !ok {
		return
	}
	if err := d.Refresh(r.Context()); err != nil {
		h.errors.write(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, RefreshResponse{Offers: d.OffersPage(), Claims: d.ClaimsPage()})
}

// QuotePreview handles POST /v1/agent/quote/preview
func (h *AgentHandler) QuotePreview(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dashboard(w, r)
	if !ok {
		return
	}
	var req QuotePreviewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
		return
	}
	preview, err := d.QuotePreview(req.OfferID, req.DiscountRate)
	if err != nil {
		h.errors.write(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, preview)
}
