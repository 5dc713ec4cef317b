package handlers

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/text/language"

	"insurance-portal/internal/cache"
	"insurance-portal/internal/client"
	"insurance-portal/internal/dashboard"
	"insurance-portal/internal/models"
	"insurance-portal/internal/session"
	"insurance-portal/internal/telemetry"
)

// Dashboards keeps one mounted dashboard per session. Idle dashboards expire
// and are unmounted, so late responses for them are discarded.
type Dashboards struct {
	api       *client.PortalClient
	lang      language.Tag
	logger    *slog.Logger
	telemetry *telemetry.PortalTelemetry
	agents    *cache.TTLCache[*dashboard.AgentDashboard]
	customers *cache.TTLCache[*dashboard.CustomerDashboard]
	sessions  SessionLookup
}

// SessionLookup reports whether a session is still live
type SessionLookup interface {
	Get(ctx context.Context, id string) (*session.Session, error)
}

// DashboardStats is reported on the admin status endpoint
type DashboardStats struct {
	Agents    cache.Stats `json:"agents"`
	Customers cache.Stats `json:"customers"`
}

func NewDashboards(api *client.PortalClient, lang language.Tag, ttl, cleanupInterval time.Duration, tel *telemetry.PortalTelemetry, logger *slog.Logger) *Dashboards {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dashboards{
		api:       api,
		lang:      lang,
		logger:    logger,
		telemetry: tel,
		agents: cache.NewTTLCache[*dashboard.AgentDashboard](ttl, cleanupInterval, func(sessionID string, d *dashboard.AgentDashboard) {
			d.Unmount()
			logger.Debug("Agent dashboard unmounted", "session_id", sessionID)
		}),
		customers: cache.NewTTLCache[*dashboard.CustomerDashboard](ttl, cleanupInterval, func(sessionID string, d *dashboard.CustomerDashboard) {
			d.Unmount()
			logger.Debug("Customer dashboard unmounted", "session_id", sessionID)
		}),
	}
}

// Attach ties dashboards to the lifetime of the manager's sessions
func (ds *Dashboards) Attach(sessions *session.Manager) {
	ds.sessions = sessions
	sessions.OnEnd(ds.End)
}

// stillLive drops a dashboard whose session ended while it was being mounted.
// Sessions leave the manager before end hooks run, so either this check or End sees the entry.
func stillLive[V any](ctx context.Context, ds *Dashboards, c *cache.TTLCache[V], sessionID string) error {
	if ds.sessions == nil {
		return nil
	}
	if _, err := ds.sessions.Get(ctx, sessionID); err != nil {
		c.Delete(sessionID)
		ds.logger.Debug("Dropped dashboard of ended session", "session_id", sessionID)
		return err
	}
	return nil
}

// Agent returns the session's agent dashboard, mounting it on first use
func (ds *Dashboards) Agent(ctx context.Context, s *session.Session) (*dashboard.AgentDashboard, error) {
	d, err := ds.agents.GetOrCreate(s.ID, func() (*dashboard.AgentDashboard, error) {
		d := dashboard.NewAgentDashboard(ds.api.WithToken(s.Token), s.User, ds.lang, ds.logger)
		err := d.Mount(ctx)
		ds.telemetry.RecordDashboardMount(ctx, string(models.RoleAgent), err == nil)
		if err != nil {
			d.Unmount()
			return nil, err
		}
		return d, nil
	})
	if err != nil {
		return nil, err
	}
	if err := stillLive(ctx, ds, ds.agents, s.ID); err != nil {
		return nil, err
	}
	return d, nil
}

// Customer returns the session's customer dashboard, mounting it on first use
func (ds *Dashboards) Customer(ctx context.Context, s *session.Session) (*dashboard.CustomerDashboard, error) {
	d, err := ds.customers.GetOrCreate(s.ID, func() (*dashboard.CustomerDashboard, error) {
		d := dashboard.NewCustomerDashboard(ds.api.WithToken(s.Token), s.User, ds.lang, ds.logger)
		err := d.Mount(ctx)
		ds.telemetry.RecordDashboardMount(ctx, string(models.RoleCustomer), err == nil)
		if err != nil {
			d.Unmount()
			return nil, err
		}
		return d, nil
	})
	if err != nil {
		return nil, err
	}
	if err := stillLive(ctx, ds, ds.customers, s.ID); err != nil {
		return nil, err
	}
	return d, nil
}

// Admin builds a stateless admin view bound to the session's token
func (ds *Dashboards) Admin(s *session.Session) *dashboard.AdminDashboard {
	return dashboard.NewAdminDashboard(ds.api.WithToken(s.Token), ds.lang)
}

// End unmounts every dashboard of a session; it is registered as a session end hook
func (ds *Dashboards) End(sessionID string) {
	ds.agents.Delete(sessionID)
	ds.customers.Delete(sessionID)
}

func (ds *Dashboards) Stats() DashboardStats {
	return DashboardStats{Agents: ds.agents.GetStats(), Customers: ds.customers.GetStats()}
}

// Stop unmounts everything and stops the expiry goroutines
func (ds *Dashboards) Stop() {
	ds.agents.Stop()
	ds.customers.Stop()
	ds.agents.Clear()
	ds.customers.Clear()
}
