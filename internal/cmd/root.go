package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"insurance-portal/internal/client"
	"insurance-portal/internal/config"
	"insurance-portal/internal/logging"
	"insurance-portal/internal/server"
	"insurance-portal/internal/session"
)

var errNotSignedIn = errors.New("not signed in, run `portal login` first")

type rootOptions struct {
	configFile string
	verbose    bool
}

// NewRootCommand builds the portal command tree
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "portal",
		Short: "Insurance portal - agent, customer and admin dashboards",
		Long: `portal serves the insurance portal over HTTP, or drives the same
dashboards from a terminal. The terminal session is kept in the session
database, so one login lasts until logout or token expiry.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (default ./portal.yaml)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log at the configured level instead of warnings only")

	root.AddCommand(
		newServeCommand(opts),
		newLoginCommand(opts),
		newLogoutCommand(opts),
		newWhoamiCommand(opts),
		newOffersCommand(opts),
		newClaimsCommand(opts),
		newTypesCommand(opts),
		newPriceCommand(opts),
	)
	return root
}

// Execute runs the root command
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app is what every terminal command needs: configuration, the API client and the sessions
type app struct {
	cfg      *config.Config
	api      *client.PortalClient
	sessions *session.Manager
}

func openApp(cmd *cobra.Command, opts *rootOptions) (*app, error) {
	cfg, err := config.LoadConfig(opts.configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	level := cfg.LogLevel
	if !opts.verbose {
		level = "warn"
	}
	logging.SetupLogging(level, cmd.ErrOrStderr())

	api := client.NewPortalClient(cfg.APIBaseURL, cfg.APITimeout, client.WithDocumentsOrigin(cfg.DocumentsBase()))
	sessions, err := server.OpenSessions(cmd.Context(), cfg, api)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, api: api, sessions: sessions}, nil
}

func (a *app) Close() {
	_ = a.sessions.Close()
}

// current returns the signed-in session together with a client carrying its token
func (a *app) current(ctx context.Context) (*session.Session, *client.PortalClient, error) {
	s, err := a.sessions.Current(ctx)
	if errors.Is(err, session.ErrSessionNotFound) {
		return nil, nil, errNotSignedIn
	}
	if errors.Is(err, session.ErrSessionExpired) {
		return nil, nil, fmt.Errorf("session expired: %w", errNotSignedIn)
	}
	if err != nil {
		return nil, nil, err
	}
	return s, a.api.WithToken(s.Token), nil
}
