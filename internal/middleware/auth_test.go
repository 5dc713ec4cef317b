package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insurance-portal/internal/models"
	"insurance-portal/internal/session"
)

type fakeSessions map[string]*session.Session

func (f fakeSessions) Get(_ context.Context, id string) (*session.Session, error) {
	if id == "expired" {
		return nil, session.ErrSessionExpired
	}
	s, ok := f[id]
	if !ok {
		return nil, session.ErrSessionNotFound
	}
	return s, nil
}

func protected(roles ...models.Role) http.Handler {
	sessions := fakeSessions{
		"agent-sid":    {ID: "agent-sid", User: models.User{UserID: 1, Role: models.RoleAgent}},
		"customer-sid": {ID: "customer-sid", User: models.User{UserID: 2, Role: models.RoleCustomer}},
	}
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := SessionFromContext(r.Context())
		w.Header().Set("X-User", s.ID)
		w.WriteHeader(http.StatusOK)
	})
	return SessionAuth(sessions)(RequireRole(roles...)(inner))
}

func TestSessionAuth(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		value   string
		code    int
		message string
	}{
		{"bearer", "Authorization", "Bearer agent-sid", http.StatusOK, ""},
		{"session header", SessionHeader, "agent-sid", http.StatusOK, ""},
		{"missing", "", "", http.StatusUnauthorized, "Session required"},
		{"unknown", "Authorization", "Bearer nope", http.StatusUnauthorized, "Invalid session"},
		{"expired", SessionHeader, "expired", http.StatusUnauthorized, "Session expired"},
		{"wrong role", SessionHeader, "customer-sid", http.StatusForbidden, "This page is not available for your role"},
	}

	handler := protected(models.RoleAgent)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/agent/offers", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			require.Equal(t, tt.code, rr.Code)
			if tt.code == http.StatusOK {
				assert.Equal(t, "agent-sid", rr.Header().Get("X-User"))
				return
			}
			var body models.ErrorResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
			assert.Equal(t, tt.message, body.Message)
		})
	}
}

func TestRequireRole_WithoutSession(t *testing.T) {
	handler := RequireRole(models.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/admin/agents", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRequestID(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rr.Header().Get(RequestIDHeader))

	const incoming = "6f1c2d3e-4a5b-4c6d-8e7f-0123456789ab"
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, incoming)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, incoming, seen)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "garbage\nid")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.NotEqual(t, "garbage\nid", seen)
}
