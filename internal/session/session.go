// Package session keeps the signed-in portal users: their API token, the profile
// returned at login and the token's expiry. Sessions survive restarts through a Store.
package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"insurance-portal/internal/models"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
)

// Session is one signed-in user
type Session struct {
	ID        string      `json:"id"`
	Token     string      `json:"-"`
	User      models.User `json:"user"`
	ExpiresAt time.Time   `json:"expiresAt,omitzero"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// Expired reports whether the token has passed its expiry. Tokens without one never expire.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// TokenExpiry reads the exp claim of a JWT without verifying its signature.
// The API is the only party that verifies tokens; the portal only displays
// the expiry. Opaque tokens report false.
func TokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
