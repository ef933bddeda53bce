// Package main runs the useradmin HTTP server. With -migrate it applies
// database migrations and exits instead.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/useradmin/internal/config"
	"github.com/phrazzld/useradmin/internal/platform/logger"
	"github.com/phrazzld/useradmin/internal/platform/postgres"
)

func main() {
	configDir := flag.String("config", ".", "directory containing config.yaml")
	migrateCmd := flag.String("migrate", "", "run a migration command (up, down, status, version, reset) and exit")
	flag.Parse()

	if err := run(*configDir, *migrateCmd, flag.Args()); err != nil {
		slog.Error("useradmin failed", "error", err)
		os.Exit(1)
	}
}

func run(configDir, migrateCmd string, migrateArgs []string) error {
	cfg, err := loadAppConfig(configDir)
	if err != nil {
		return err
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := setupAppDatabase(ctx, cfg, log)
	if err != nil {
		return err
	}

	if migrateCmd != "" {
		defer func() { _ = db.Close() }()
		return postgres.Migrate(ctx, db, log, migrateCmd, migrateArgs...)
	}

	app, err := newApplication(cfg, log, db)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return app.Run(ctx)
}

// loadAppConfig loads the configuration and logs a summary without secrets.
func loadAppConfig(dir string) (*config.Config, error) {
	cfg, err := config.LoadFrom(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"mail_enabled", cfg.Mail.Enabled,
		"bootstrap_admin", cfg.Bootstrap.AdminEmail != "")
	return cfg, nil
}
