package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"insurance-portal/internal/client"
	"insurance-portal/internal/models"
)

// API is what the manager needs from the insurance API
type API interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	Logout(ctx context.Context, token string) error
}

// clientAPI binds the portal client's token-scoped logout to the API interface
type clientAPI struct {
	c *client.PortalClient
}

// NewClientAPI adapts a portal client to API
func NewClientAPI(c *client.PortalClient) API {
	return clientAPI{c: c}
}

func (a clientAPI) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	return a.c.Login(ctx, req)
}

func (a clientAPI) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	return a.c.Register(ctx, req)
}

func (a clientAPI) Logout(ctx context.Context, token string) error {
	return a.c.WithToken(token).Logout(ctx)
}

// EndFunc is called with the id of every session that ends, by logout or expiry
type EndFunc func(id string)

// Manager owns the live sessions of the process. Init loads persisted sessions;
// Logout tears one down in memory, in the store and at the API.
type Manager struct {
	api    API
	store  Store
	logger *slog.Logger
	now    func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
	onEnd    []EndFunc
}

func NewManager(api API, store Store, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		api:      api,
		store:    store,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// OnEnd registers fn to run when a session ends
func (m *Manager) OnEnd(fn EndFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onEnd = append(m.onEnd, fn)
}

// Init loads persisted sessions and drops the expired ones
func (m *Manager) Init(ctx context.Context) error {
	stored, err := m.store.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load sessions: %w", err)
	}

	now := m.now()
	loaded, dropped := 0, 0
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range stored {
		if s.Expired(now) {
			if err := m.store.Delete(ctx, s.ID); err != nil {
				m.logger.Warn("Failed to delete expired session", "session_id", s.ID, "error", err)
			}
			dropped++
			continue
		}
		m.sessions[s.ID] = s
		loaded++
	}

	m.logger.Info("Sessions restored", "loaded", loaded, "expired", dropped)
	return nil
}

// Login signs in with the API and opens a session
func (m *Manager) Login(ctx context.Context, req models.LoginRequest) (*Session, error) {
	resp, err := m.api.Login(ctx, req)
	if err != nil {
		return nil, err
	}
	return m.open(ctx, resp)
}

// Register creates an account and opens a session for it
func (m *Manager) Register(ctx context.Context, req models.RegisterRequest) (*Session, error) {
	resp, err := m.api.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	return m.open(ctx, resp)
}

func (m *Manager) open(ctx context.Context, resp *models.AuthResponse) (*Session, error) {
	s := &Session{
		ID:        uuid.NewString(),
		Token:     resp.Token,
		User:      resp.User,
		UpdatedAt: m.now(),
	}
	if exp, ok := TokenExpiry(resp.Token); ok {
		s.ExpiresAt = exp
	}

	if err := m.store.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	m.logger.Info("Session opened", "session_id", s.ID, "user_id", s.User.UserID, "role", s.User.Role)
	return s, nil
}

// Get returns the live session for id. An expired session is ended and reported as ErrSessionExpired.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	if s.Expired(m.now()) {
		m.end(ctx, id)
		return nil, ErrSessionExpired
	}
	return s, nil
}

// Current returns the most recently opened live session
func (m *Manager) Current(ctx context.Context) (*Session, error) {
	m.mu.RLock()
	var latest *Session
	for _, s := range m.sessions {
		if latest == nil || s.UpdatedAt.After(latest.UpdatedAt) {
			latest = s
		}
	}
	m.mu.RUnlock()
	if latest == nil {
		return nil, ErrSessionNotFound
	}
	return m.Get(ctx, latest.ID)
}

// Logout ends the session. The API logout is best-effort; local state is always cleared.
func (m *Manager) Logout(ctx context.Context, id string) error {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return ErrSessionNotFound
	}

	if err := m.api.Logout(ctx, s.Token); err != nil && !errors.Is(err, client.ErrUnauthorized) {
		m.logger.Warn("API logout failed", "session_id", id, "error", err)
	}
	m.end(ctx, id)
	m.logger.Info("Session closed", "session_id", id, "user_id", s.User.UserID)
	return nil
}

func (m *Manager) end(ctx context.Context, id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	hooks := append([]EndFunc(nil), m.onEnd...)
	m.mu.Unlock()

	if err := m.store.Delete(ctx, id); err != nil {
		m.logger.Warn("Failed to delete persisted session", "session_id", id, "error", err)
	}
	for _, fn := range hooks {
		fn(id)
	}
}

// Count returns the number of live sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close releases the store
func (m *Manager) Close() error {
	return m.store.Close()
}
