package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"insurance-portal/internal/client"
	"insurance-portal/internal/dashboard"
	"insurance-portal/internal/models"
	"insurance-portal/internal/session"
	"insurance-portal/internal/table"
	"insurance-portal/internal/telemetry"
	"insurance-portal/internal/validate"
)

// maxBodyBytes bounds every JSON request body
const maxBodyBytes = 1 << 20

// writeJSONResponse is a helper function to write JSON responses
func writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeErrorResponse is a helper function to write error responses
func writeErrorResponse(w http.ResponseWriter, statusCode int, code, message string, details []models.ErrorDetail) {
	writeJSONResponse(w, statusCode, models.ErrorResponse{
		Code:    code,
		Message: message,
		Details: details,
	})
}

// decodeJSON reads a JSON body into dst. An empty body leaves dst untouched.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

// pathID parses the {id} route variable
func pathID(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

// sortParams reads ?sort=&dir= into a sort state; an absent key means the table default
func sortParams(r *http.Request) (table.SortState, error) {
	q := r.URL.Query()
	state := table.SortState{Key: q.Get("sort"), Direction: table.Asc}
	if dir := q.Get("dir"); dir != "" {
		d, err := table.ParseDirection(dir)
		if err != nil {
			return table.SortState{}, err
		}
		state.Direction = d
	}
	return state, nil
}

// intParam reads an optional integer query parameter
func intParam(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return n, nil
}

// errorWriter translates service errors into the portal's error responses
type errorWriter struct {
	telemetry *telemetry.PortalTelemetry
}

func (ew errorWriter) write(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *validate.Error
	var apiErr *client.APIError

	switch {
	case errors.As(err, &vErr):
		writeErrorResponse(w, http.StatusBadRequest, "validation_error", "Please correct the highlighted fields", vErr.Details)

	case errors.Is(err, dashboard.ErrInvalidBasePrice):
		writeErrorResponse(w, http.StatusBadRequest, "validation_error", err.Error(),
			[]models.ErrorDetail{{Field: "basePrice", Issue: "must be a number"}})

	case errors.Is(err, dashboard.ErrInvalidStatus):
		writeErrorResponse(w, http.StatusBadRequest, "validation_error", err.Error(),
			[]models.ErrorDetail{{Field: "status", Issue: "is not a known offer status"}})

	case errors.Is(err, dashboard.ErrUnknownColumn), errors.Is(err, dashboard.ErrUnknownTab):
		writeErrorResponse(w, http.StatusBadRequest, "bad_request", err.Error(), nil)

	case errors.Is(err, dashboard.ErrNoAgentRecord), errors.Is(err, dashboard.ErrNoCustomerRecord):
		writeErrorResponse(w, http.StatusForbidden, "no_profile", err.Error(), nil)

	case errors.Is(err, dashboard.ErrOfferNotFound):
		writeErrorResponse(w, http.StatusNotFound, "not_found", err.Error(), nil)

	case errors.Is(err, dashboard.ErrEditInProgress),
		errors.Is(err, dashboard.ErrOfferLocked),
		errors.Is(err, dashboard.ErrNotEditing),
		errors.Is(err, dashboard.ErrSaveInFlight):
		writeErrorResponse(w, http.StatusConflict, "edit_conflict", err.Error(), nil)

	case errors.Is(err, dashboard.ErrDeleteNotAllowed),
		errors.Is(err, dashboard.ErrDialogOpen),
		errors.Is(err, dashboard.ErrNoDeleteDialog),
		errors.Is(err, dashboard.ErrDeleteInFlight),
		errors.Is(err, dashboard.ErrOfferNotApprovable):
		writeErrorResponse(w, http.StatusConflict, "conflict", err.Error(), nil)

	case errors.Is(err, dashboard.ErrUnmounted), errors.Is(err, dashboard.ErrNotMounted):
		writeErrorResponse(w, http.StatusConflict, "dashboard_closed", "The dashboard was closed, please reload", nil)

	case errors.Is(err, session.ErrSessionNotFound), errors.Is(err, session.ErrSessionExpired),
		errors.Is(err, client.ErrUnauthorized):
		writeErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Your session has ended, please sign in again", nil)

	case errors.As(err, &apiErr):
		ew.telemetry.RecordUpstreamError(r.Context(), apiErr.StatusCode)
		slog.Error("Insurance API request failed",
			"path", r.URL.Path,
			"status_code", apiErr.StatusCode,
			"error", err)
		writeErrorResponse(w, http.StatusBadGateway, "upstream_error", "The insurance service could not complete the request", nil)

	case errors.Is(err, client.ErrUnavailable):
		ew.telemetry.RecordUpstreamError(r.Context(), 0)
		slog.Error("Insurance API unreachable", "path", r.URL.Path, "error", err)
		writeErrorResponse(w, http.StatusBadGateway, "upstream_error", "The insurance service could not complete the request", nil)

	default:
		slog.Error("Request failed", "path", r.URL.Path, "error", err)
		writeErrorResponse(w, http.StatusInternalServerError, "internal_error", "Something went wrong", nil)
	}
}
