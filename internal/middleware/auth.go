package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"insurance-portal/internal/models"
	"insurance-portal/internal/session"
)

// SessionHeader carries the portal session id for clients that cannot set Authorization
const SessionHeader = "X-Session-ID"

type sessionKey struct{}

// roleReporter is implemented by response writers that label metrics with the caller's role
type roleReporter interface {
	SetRole(role string)
}

// SessionSource resolves a session id to a live session
type SessionSource interface {
	Get(ctx context.Context, id string) (*session.Session, error)
}

// SessionAuth requires a live portal session, passed as "Authorization: Bearer <session id>"
// or in the X-Session-ID header, and stores it in the request context.
func SessionAuth(sessions SessionSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := sessionID(r)
			if id == "" {
				slog.Warn("Authentication failed: missing session", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
				writeErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Session required", nil)
				return
			}

			s, err := sessions.Get(r.Context(), id)
			if err != nil {
				message := "Invalid session"
				if errors.Is(err, session.ErrSessionExpired) {
					message = "Session expired"
				}
				slog.Warn("Authentication failed", "remote_addr", r.RemoteAddr, "error", err)
				writeErrorResponse(w, http.StatusUnauthorized, "unauthorized", message, nil)
				return
			}

			if rr, ok := w.(roleReporter); ok {
				rr.SetRole(string(s.User.Role))
			}
			slog.Debug("Authentication successful", "session_id", s.ID, "user_id", s.User.UserID, "role", s.User.Role)
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
		})
	}
}

// RequireRole rejects sessions whose user has none of roles. It must run after SessionAuth.
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := SessionFromContext(r.Context())
			if s == nil {
				writeErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Session required", nil)
				return
			}
			if !slices.Contains(roles, s.User.Role) {
				slog.Warn("Role check failed",
					"session_id", s.ID,
					"role", s.User.Role,
					"path", r.URL.Path)
				writeErrorResponse(w, http.StatusForbidden, "forbidden", "This page is not available for your role", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithSession returns a copy of ctx carrying s
func WithSession(ctx context.Context, s *session.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFromContext returns the authenticated session, or nil
func SessionFromContext(ctx context.Context) *session.Session {
	s, _ := ctx.Value(sessionKey{}).(*session.Session)
	return s
}

func sessionID(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if id, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return strings.TrimSpace(id)
		}
	}
	return strings.TrimSpace(r.Header.Get(SessionHeader))
}

// writeErrorResponse is a helper function to write error responses
func writeErrorResponse(w http.ResponseWriter, statusCode int, code, message string, details []models.ErrorDetail) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(models.ErrorResponse{
		Code:    code,
		Message: message,
		Details: details,
	}); err != nil {
		slog.Error("Failed to encode error response", "error", err)
	}
}
