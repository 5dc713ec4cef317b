// Package server assembles the portal service from its configuration and runs it.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"insurance-portal/internal/client"
	"insurance-portal/internal/config"
	"insurance-portal/internal/documents"
	"insurance-portal/internal/handlers"
	"insurance-portal/internal/middleware"
	"insurance-portal/internal/session"
	"insurance-portal/internal/telemetry"
	"insurance-portal/internal/validate"
)

const shutdownTimeout = 30 * time.Second

// Run starts the portal and blocks until ctx is cancelled, then shuts down gracefully
func Run(ctx context.Context, cfg *config.Config) error {
	slog.Info("Starting insurance portal", "version", cfg.ServiceVersion)
	slog.Info("Configuration loaded", cfg.LogAttrs()...)

	otel, err := telemetry.InitMetrics(ctx, cfg.MetricsExporter, "insurance-portal")
	if err != nil {
		return err
	}
	portalTelemetry, err := telemetry.NewPortalTelemetry(otel.Meter())
	if err != nil {
		return err
	}

	tracing, err := telemetry.InitTracing(ctx, cfg.TracesExporter, "insurance-portal", cfg.ServiceVersion)
	if err != nil {
		return err
	}

	api := client.NewPortalClient(cfg.APIBaseURL, cfg.APITimeout,
		client.WithDocumentsOrigin(cfg.DocumentsBase()),
		client.WithTracerProvider(tracing.Provider()),
	)

	sessions, err := OpenSessions(ctx, cfg, api)
	if err != nil {
		return err
	}
	defer func() {
		if err := sessions.Close(); err != nil {
			slog.Error("Error closing session store", "error", err)
		}
	}()

	resolver, err := newResolver(ctx, cfg)
	if err != nil {
		return err
	}

	dashboards := handlers.NewDashboards(api, cfg.Language(), cfg.DashboardTTL, cfg.DashboardCleanupInterval, portalTelemetry, slog.Default())
	defer dashboards.Stop()
	dashboards.Attach(sessions)

	var rateLimiter *middleware.RateLimiter
	if rlc := middleware.NewRateLimitConfig(cfg); rlc.Enabled {
		rateLimiter = middleware.NewRateLimiter(rlc)
		defer rateLimiter.Stop()
	}

	router := NewRouter(Deps{
		Client:      api,
		Sessions:    sessions,
		Dashboards:  dashboards,
		Resolver:    resolver,
		Validator:   validate.New(),
		RateLimiter: rateLimiter,
		Telemetry:   portalTelemetry,
		Metrics:     otel.Handler(),
		Version:     cfg.ServiceVersion,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("Server ready to accept connections", "address", srv.Addr, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}
	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}
	if err := otel.Shutdown(shutdownCtx); err != nil {
		slog.Error("Telemetry shutdown failed", "error", err)
	}
	if err := tracing.Shutdown(shutdownCtx); err != nil {
		slog.Error("Tracing shutdown failed", "error", err)
	}

	slog.Info("Server exited")
	return nil
}

// OpenSessions restores persisted sessions; an empty SESSION_DB_PATH keeps them in memory
func OpenSessions(ctx context.Context, cfg *config.Config, api *client.PortalClient) (*session.Manager, error) {
	var store session.Store = session.NewMemoryStore()
	if cfg.SessionDBPath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.SessionDBPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create session directory: %w", err)
		}
		sqlStore, err := session.OpenSQLiteStore(ctx, cfg.SessionDBPath)
		if err != nil {
			return nil, err
		}
		store = sqlStore
	}

	manager := session.NewManager(session.NewClientAPI(api), store, slog.Default())
	if err := manager.Init(ctx); err != nil {
		_ = manager.Close()
		return nil, err
	}
	return manager, nil
}

// newResolver presigns policy PDFs from S3 when a bucket is configured
func newResolver(ctx context.Context, cfg *config.Config) (*documents.Resolver, error) {
	s3cfg := documents.S3Config{
		Bucket: cfg.DocumentsS3Bucket,
		Prefix: cfg.DocumentsS3Prefix,
		TTL:    cfg.DocumentsPresignTTL,
	}
	if cfg.DocumentsS3Bucket == "" {
		return documents.NewResolver(cfg.DocumentsBase(), nil, s3cfg, slog.Default()), nil
	}

	presigner, err := documents.NewS3Presigner(ctx, cfg.AWSRegion, cfg.AWSEndpoint)
	if err != nil {
		return nil, err
	}
	slog.Info("Serving policy documents from S3", "bucket", cfg.DocumentsS3Bucket, "prefix", cfg.DocumentsS3Prefix)
	return documents.NewResolver(cfg.DocumentsBase(), presigner, s3cfg, slog.Default()), nil
}
