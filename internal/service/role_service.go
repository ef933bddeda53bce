package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phrazzld/useradmin/internal/domain"
	"github.com/phrazzld/useradmin/internal/platform/logger"
	"github.com/phrazzld/useradmin/internal/store"
)

// RoleService exposes the role catalogue to the admin panel.
type RoleService interface {
	// ListRoles returns every role ordered by name.
	ListRoles(ctx context.Context) ([]domain.Role, error)

	// ResolveRoles turns role names into stored roles.
	// Unknown names fail with ErrInvalidArgument.
	ResolveRoles(ctx context.Context, names []string) ([]domain.Role, error)
}

type roleServiceImpl struct {
	roleStore store.RoleStore
	logger    *slog.Logger
}

// NewRoleService creates a new RoleService.
func NewRoleService(roleStore store.RoleStore, log *slog.Logger) (RoleService, error) {
	if roleStore == nil {
		return nil, fmt.Errorf("%w: roleStore cannot be nil", ErrInvalidArgument)
	}
	if log == nil {
		log = slog.Default()
	}
	return &roleServiceImpl{
		roleStore: roleStore,
		logger:    log.With("component", "role_service"),
	}, nil
}

func (s *roleServiceImpl) ListRoles(ctx context.Context) ([]domain.Role, error) {
	roles, err := s.roleStore.FindAll(ctx)
	if err != nil {
		s.log(ctx).Error("failed to list roles", "error", err)
		return nil, NewServiceError("role", "list_roles", err)
	}
	return domain.NewRoleSet(roles...), nil
}

// ResolveRoles accepts names with or without the ROLE_ prefix.
func (s *roleServiceImpl) ResolveRoles(ctx context.Context, names []string) ([]domain.Role, error) {
	roles := make([]domain.Role, 0, len(names))
	for _, name := range names {
		name = canonicalRoleName(name)
		if name == "" {
			continue
		}

		role, err := s.roleStore.GetByName(ctx, name)
		if errors.Is(err, store.ErrRoleNotFound) {
			return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidArgument, name)
		}
		if err != nil {
			s.log(ctx).Error("failed to resolve role", "error", err, "role", name)
			return nil, NewServiceError("role", "resolve_roles", err)
		}
		roles = append(roles, role)
	}
	return domain.NewRoleSet(roles...), nil
}

func (s *roleServiceImpl) log(ctx context.Context) *slog.Logger {
	return logger.FromContextOrDefault(ctx, s.logger)
}

func canonicalRoleName(name string) string {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "" || strings.HasPrefix(name, "ROLE_") {
		return name
	}
	return "ROLE_" + name
}
