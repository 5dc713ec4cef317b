package server

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"insurance-portal/internal/client"
	"insurance-portal/internal/documents"
	"insurance-portal/internal/handlers"
	"insurance-portal/internal/middleware"
	"insurance-portal/internal/models"
	"insurance-portal/internal/session"
	"insurance-portal/internal/telemetry"
	"insurance-portal/internal/validate"
)

// Deps are the long-lived components the router serves
type Deps struct {
	Client      *client.PortalClient
	Sessions    *session.Manager
	Dashboards  *handlers.Dashboards
	Resolver    *documents.Resolver
	Validator   *validate.Validator
	RateLimiter *middleware.RateLimiter // nil disables rate limiting
	Telemetry   *telemetry.PortalTelemetry
	Metrics     http.Handler // nil when metrics are not scraped
	Version     string
}

// NewRouter builds the portal's HTTP routes
func NewRouter(d Deps) *mux.Router {
	r := mux.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(telemetry.NewTelemetryMiddleware(d.Telemetry).Middleware)
	if d.RateLimiter != nil {
		r.Use(middleware.RateLimitMiddleware(d.RateLimiter))
		slog.Info("Rate limiting middleware enabled")
	} else {
		slog.Info("Rate limiting middleware disabled")
	}

	healthHandler := handlers.NewHealthHandler(d.Client, d.Version)
	authHandler := handlers.NewAuthHandler(d.Sessions, d.Validator, d.Telemetry)
	agentHandler := handlers.NewAgentHandler(d.Dashboards, d.Telemetry)
	customerHandler := handlers.NewCustomerHandler(d.Dashboards, d.Validator, d.Resolver, d.Telemetry)
	adminHandler := handlers.NewAdminHandler(d.Dashboards, d.RateLimiter, d.Telemetry)
	documentHandler := handlers.NewDocumentHandler(d.Resolver)

	// System endpoints (no auth required)
	r.HandleFunc("/health", healthHandler.Health).Methods(http.MethodGet)
	r.HandleFunc("/ready", healthHandler.Ready).Methods(http.MethodGet)
	if d.Metrics != nil {
		r.Handle("/metrics", d.Metrics).Methods(http.MethodGet)
	}

	r.HandleFunc("/v1/auth/login", authHandler.Login).Methods(http.MethodPost)
	r.HandleFunc("/v1/auth/register", authHandler.Register).Methods(http.MethodPost)

	authed := r.PathPrefix("/v1").Subrouter()
	authed.Use(middleware.SessionAuth(d.Sessions))
	authed.HandleFunc("/auth/logout", authHandler.Logout).Methods(http.MethodPost)
	authed.HandleFunc("/auth/me", authHandler.Me).Methods(http.MethodGet)
	authed.HandleFunc("/documents/{path:.+}", documentHandler.Get).Methods(http.MethodGet)

	agent := authed.PathPrefix("/agent").Subrouter()
	agent.Use(middleware.RequireRole(models.RoleAgent))
	agent.HandleFunc("/profile", agentHandler.Profile).Methods(http.MethodGet)
	agent.HandleFunc("/offers", agentHandler.Offers).Methods(http.MethodGet)
	agent.HandleFunc("/offers/sort/{key}", agentHandler.SortOffers).Methods(http.MethodPost)
	agent.HandleFunc("/offers/edit", agentHandler.UpdateDraft).Methods(http.MethodPatch)
	agent.HandleFunc("/offers/edit", agentHandler.CancelEdit).Methods(http.MethodDelete)
	agent.HandleFunc("/offers/edit/save", agentHandler.SaveEdit).Methods(http.MethodPost)
	agent.HandleFunc("/offers/delete/confirm", agentHandler.ConfirmDelete).Methods(http.MethodPost)
	agent.HandleFunc("/offers/delete", agentHandler.CancelDelete).Methods(http.MethodDelete)
	agent.HandleFunc("/offers/{id:[0-9]+}/edit", agentHandler.BeginEdit).Methods(http.MethodPost)
	agent.HandleFunc("/offers/{id:[0-9]+}/delete", agentHandler.RequestDelete).Methods(http.MethodPost)
	agent.HandleFunc("/claims", agentHandler.Claims).Methods(http.MethodGet)
	agent.HandleFunc("/claims/sort/{key}", agentHandler.SortClaims).Methods(http.MethodPost)
	agent.HandleFunc("/refresh", agentHandler.Refresh).Methods(http.MethodPost)
	agent.HandleFunc("/quote/preview", agentHandler.QuotePreview).Methods(http.MethodPost)

	customer := authed.PathPrefix("/customer").Subrouter()
	customer.Use(middleware.RequireRole(models.RoleCustomer))
	customer.HandleFunc("/profile", customerHandler.Profile).Methods(http.MethodGet)
	customer.HandleFunc("/offers", customerHandler.Offers).Methods(http.MethodGet)
	customer.HandleFunc("/offers/{id:[0-9]+}/approve", customerHandler.ApproveOffer).Methods(http.MethodPost)
	customer.HandleFunc("/offers/{id:[0-9]+}/info", customerHandler.OfferInfo).Methods(http.MethodGet)
	customer.HandleFunc("/quotes/validate", customerHandler.ValidateQuoteStep).Methods(http.MethodPost)
	customer.HandleFunc("/quotes", customerHandler.SubmitQuote).Methods(http.MethodPost)
	customer.HandleFunc("/claims", customerHandler.Claims).Methods(http.MethodGet)
	customer.HandleFunc("/claims", customerHandler.SubmitClaim).Methods(http.MethodPost)
	customer.HandleFunc("/refresh", customerHandler.Refresh).Methods(http.MethodPost)

	admin := authed.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.RequireRole(models.RoleAdmin))
	admin.HandleFunc("/agents", adminHandler.Agents).Methods(http.MethodGet)
	admin.HandleFunc("/customers", adminHandler.Customers).Methods(http.MethodGet)
	admin.HandleFunc("/offers", adminHandler.Offers).Methods(http.MethodGet)
	admin.HandleFunc("/dashboards", adminHandler.Dashboards).Methods(http.MethodGet)
	admin.HandleFunc("/rate-limits", adminHandler.GetRateLimitStatus).Methods(http.MethodGet)
	admin.HandleFunc("/rate-limits/reset", adminHandler.ResetRateLimits).Methods(http.MethodPost)

	return r
}
