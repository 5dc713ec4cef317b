package handlers

import (
	"net/http"

	"insurance-portal/internal/dashboard"
	"insurance-portal/internal/documents"
	"insurance-portal/internal/middleware"
	"insurance-portal/internal/telemetry"
	"insurance-portal/internal/validate"
)

// CustomerHandler serves the customer dashboard, the quote wizard and claim submission
type CustomerHandler struct {
	dashboards *Dashboards
	validator  *validate.Validator
	resolver   *documents.Resolver
	errors     errorWriter
}

func NewCustomerHandler(dashboards *Dashboards, validator *validate.Validator, resolver *documents.Resolver, tel *telemetry.PortalTelemetry) *CustomerHandler {
	return &CustomerHandler{
		dashboards: dashboards,
		validator:  validator,
		resolver:   resolver,
		errors:     errorWriter{telemetry: tel},
	}
}

// QuoteStepRequest is the body of POST /v1/customer/quotes/validate
type QuoteStepRequest struct {
	Step int                `json:"step"`
	Form validate.QuoteForm `json:"form"`
}

// OfferInfoResponse lists the additional information a customer attached to a quote
type OfferInfoResponse struct {
	OfferID      int64             `json:"offerId"`
	Fields       []documents.Field `json:"fields"`
	PolicyPdfURL string            `json:"policyPdfUrl,omitempty"`
}

func (h *CustomerHandler) dashboard(w http.ResponseWriter, r *http.Request) (*dashboard.CustomerDashboard, bool) {
	d, err := h.dashboards.Customer(r.Context(), middleware.SessionFromContext(r.Context()))
	if err != nil {
		h.errors.write(w, r, err)
		return nil, false
	}
	return d, true
}

// Profile handles GET /v1/customer/profile
func (h *CustomerHandler) Profile(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dashboard(w, r)
	if !ok {
		return
	}
	writeJSONResponse(w, http.StatusOK, d.Customer())
}

// Offers handles GET /v1/customer/offers?sort=&dir=
func (h *CustomerHandler) Offers(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dashboard(w, r)
	if !ok {
		return
	}
	sort, err := sortParams(r)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
		return
	}
	writeJSONResponse(w, http.StatusOK, d.Offers(sort))
}

// Claims handles GET /v1/customer/claims?sort=&dir=
func (h *CustomerHandler) Claims(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dashboard(w, r)
	if !ok {
		return
	}
	sort, err := sortParams(r)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
		return
	}
	writeJSONResponse(w, http.StatusOK, d.Claims(sort))
}

// Refresh handles POST /v1/customer/refresh
func (h *CustomerHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dashboard(w, r)
	if !ok {
		return
	}
	if err := d.Refresh(r.Context()); err != nil {
		h.errors.write(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ApproveOffer handles POST /v1/customer/offers/{id}/approve
func (h *CustomerHandler) ApproveOffer(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dashboard(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
		return
	}
	if err := d.ApproveOffer(r.Context(), id); err != nil {
		h.errors.write(w, r, err)
		return
	}
	offer, err := d.Offer(id)
	if err != nil {
		// approved offers may leave the customer's listing
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSONResponse(w, http.StatusOK, offer)
}

// OfferInfo handles GET /v1/customer/offers/{id}/info
func (h *CustomerHandler) OfferInfo(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dashboard(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
		return
	}
	offer, err := d.Offer(id)
	if err != nil {
		h.errors.write(w, r, err)
		return
	}

	resp := OfferInfoResponse{OfferID: offer.OfferID, Fields: h.resolver.Fields(r.Context(), offer.CustomerAdditionalInfo)}
	if offer.PolicyPdfURL != "" {
		if u, err := h.resolver.Resolve(r.Context(), offer.PolicyPdfURL); err == nil {
			resp.PolicyPdfURL = u
		}
	}
	writeJSONResponse(w, http.StatusOK, resp)
}

// ValidateQuoteStep handles POST /v1/customer/quotes/validate; the wizard calls it before advancing
func (h *CustomerHandler) ValidateQuoteStep(w http.ResponseWriter, r *http.Request) {
	var req QuoteStepRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
		return
	}
	if err := h.validator.QuoteStep(req.Step, req.Form); err != nil {
		h.errors.write(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SubmitQuote handles POST /v1/customer/quotes
func (h *CustomerHandler) SubmitQuote(w http.ResponseWriter, r *http.Request) {
	var form validate.QuoteForm
	if err := decodeJSON(r, &form); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
		return
	}
	if err := h.validator.Quote(form); err != nil {
		h.errors.write(w, r, err)
		return
	}

	d, ok := h.dashboard(w, r)
	if !ok {
		return
	}
	// the customer id is filled in from the mounted record
	offer, err := d.SubmitQuote(r.Context(), form.Request(0))
	// a failed refresh after a successful submit still reports the new offer
	if err != nil && offer == nil {
		h.errors.write(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, offer)
}

// SubmitClaim handles POST /v1/customer/claims
func (h *CustomerHandler) SubmitClaim(w http.ResponseWriter, r *http.Request) {
	var form validate.ClaimForm
	if err := decodeJSON(r, &form); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
		return
	}
	if err := h.validator.Struct(form); err != nil {
		h.errors.write(w, r, err)
		return
	}

	d, ok := h.dashboard(w, r)
	if !ok {
		return
	}
	claim, err := d.SubmitClaim(r.Context(), form.Request())
	if err != nil && claim == nil {
		h.errors.write(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, claim)
}
