package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"insurance-portal/internal/config"
	"insurance-portal/internal/logging"
	"insurance-portal/internal/server"
)

func main() {
	configFile := flag.String("config", "", "config file (default ./portal.yaml)")
	flag.Parse()

	// Load configuration from .env, portal.yaml and environment variables
	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logging.SetupLogging(cfg.LogLevel, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx, cfg); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
