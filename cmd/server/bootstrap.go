package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/useradmin/internal/config"
	"github.com/phrazzld/useradmin/internal/domain"
	"github.com/phrazzld/useradmin/internal/service"
)

// bootstrapAdmin creates the configured administrator on first start.
// An existing account with that email is left untouched.
func bootstrapAdmin(
	ctx context.Context,
	cfg config.BootstrapConfig,
	users service.UserService,
	roles service.RoleService,
	logger *slog.Logger,
) error {
	if cfg.AdminEmail == "" {
		return nil
	}

	existing, err := users.FindByEmail(ctx, cfg.AdminEmail)
	if err != nil {
		return fmt.Errorf("failed to look up bootstrap admin: %w", err)
	}
	if existing != nil {
		logger.Debug("bootstrap admin already present", "user_id", existing.ID)
		return nil
	}

	adminRoles, err := roles.ResolveRoles(ctx, []string{domain.RoleAdmin, domain.RoleUser})
	if err != nil {
		return fmt.Errorf("failed to resolve bootstrap admin roles: %w", err)
	}

	admin := domain.NewUser(cfg.AdminEmail, cfg.AdminPassword)
	admin.FirstName = "Admin"
	admin.Roles = adminRoles

	created, err := users.CreateUser(ctx, admin)
	if errors.Is(err, service.ErrAlreadyExists) {
		logger.Debug("bootstrap admin created concurrently")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to create bootstrap admin: %w", err)
	}
	logger.Info("bootstrap admin created", "user_id", created.ID)
	return nil
}
