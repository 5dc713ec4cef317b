package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"insurance-portal/internal/client"
	"insurance-portal/internal/middleware"
	"insurance-portal/internal/models"
	"insurance-portal/internal/session"
	"insurance-portal/internal/telemetry"
	"insurance-portal/internal/validate"
)

// SessionResponse is returned by login, register and me
type SessionResponse struct {
	SessionID      string      `json:"sessionId,omitempty"`
	User           models.User `json:"user"`
	TokenExpiresAt *time.Time  `json:"tokenExpiresAt"`
}

func newSessionResponse(s *session.Session, withID bool) SessionResponse {
	resp := SessionResponse{User: s.User}
	if withID {
		resp.SessionID = s.ID
	}
	if !s.ExpiresAt.IsZero() {
		exp := s.ExpiresAt
		resp.TokenExpiresAt = &exp
	}
	return resp
}

// AuthHandler handles sign in, registration and sign out
type AuthHandler struct {
	sessions  *session.Manager
	validator *validate.Validator
	errors    errorWriter
}

func NewAuthHandler(sessions *session.Manager, validator *validate.Validator, tel *telemetry.PortalTelemetry) *AuthHandler {
	return &AuthHandler{sessions: sessions, validator: validator, errors: errorWriter{telemetry: tel}}
}

// Login handles POST /v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var form validate.LoginForm
	if err := decodeJSON(r, &form); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
		return
	}
	if err := h.validator.Struct(form); err != nil {
		h.errors.write(w, r, err)
		return
	}

	s, err := h.sessions.Login(r.Context(), form.Request())
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			slog.Info("Login rejected", "email", form.Email)
			writeErrorResponse(w, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password", nil)
			return
		}
		h.errors.write(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, newSessionResponse(s, true))
}

// Register handles POST /v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var form validate.RegisterForm
	if err := decodeJSON(r, &form); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
		return
	}
	if err := h.validator.Struct(form); err != nil {
		h.errors.write(w, r, err)
		return
	}

	s, err := h.sessions.Register(r.Context(), form.Request())
	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusConflict {
			writeErrorResponse(w, http.StatusConflict, "account_exists", "An account with this email already exists", nil)
			return
		}
		h.errors.write(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, newSessionResponse(s, true))
}

// Logout handles POST /v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	s := middleware.SessionFromContext(r.Context())
	if err := h.sessions.Logout(r.Context(), s.ID); err != nil {
		h.errors.write(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /v1/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, newSessionResponse(middleware.SessionFromContext(r.Context()), false))
}
