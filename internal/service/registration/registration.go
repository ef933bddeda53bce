// Package registration persists new accounts: it encodes the raw password,
// grants the default role and, once the caller has committed, announces the
// new user to event subscribers.
package registration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/useradmin/internal/domain"
	"github.com/phrazzld/useradmin/internal/events"
	"github.com/phrazzld/useradmin/internal/platform/logger"
	"github.com/phrazzld/useradmin/internal/service"
	"github.com/phrazzld/useradmin/internal/service/auth"
	"github.com/phrazzld/useradmin/internal/store"
)

// DefaultRole is granted to users registered without any role.
const DefaultRole = domain.RoleUser

// Service implements service.Registrar.
type Service struct {
	userStore store.UserStore
	roleStore store.RoleStore
	encoder   auth.PasswordEncoder
	emitter   events.EventEmitter
	logger    *slog.Logger
}

var _ service.Registrar = (*Service)(nil)

// NewService creates a registration Service. A nil emitter disables
// registration events.
func NewService(
	userStore store.UserStore,
	roleStore store.RoleStore,
	encoder auth.PasswordEncoder,
	emitter events.EventEmitter,
	logger *slog.Logger,
) (*Service, error) {
	if userStore == nil {
		return nil, errors.New("userStore cannot be nil")
	}
	if roleStore == nil {
		return nil, errors.New("roleStore cannot be nil")
	}
	if encoder == nil {
		return nil, errors.New("encoder cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		userStore: userStore,
		roleStore: roleStore,
		encoder:   encoder,
		emitter:   emitter,
		logger:    logger.With("component", "registration"),
	}, nil
}

// WithTx returns a copy of the service whose stores use tx.
func (s *Service) WithTx(tx *sql.Tx) service.Registrar {
	if tx == nil {
		return s
	}
	clone := *s
	clone.userStore = s.userStore.WithTx(tx)
	clone.roleStore = s.roleStore.WithTx(tx)
	return &clone
}

// EncodePassword validates and encodes a raw password.
func (s *Service) EncodePassword(raw string) (string, error) {
	if err := validateRawPassword(raw); err != nil {
		return "", err
	}
	encoded, err := s.encoder.Encode(raw)
	if err != nil {
		return "", fmt.Errorf("failed to encode password: %w", err)
	}
	return encoded, nil
}

func validateRawPassword(raw string) error {
	switch {
	case raw == "":
		return fmt.Errorf("%w: %w", service.ErrInvalidArgument,
			domain.NewValidationError("password", "cannot be empty", domain.ErrEmptyPassword))
	case len(raw) > auth.MaxPasswordBytes:
		return fmt.Errorf("%w: %w", service.ErrInvalidArgument,
			domain.NewValidationError("password",
				fmt.Sprintf("must be at most %d bytes", auth.MaxPasswordBytes),
				domain.ErrInvalidPassword))
	}
	return nil
}

// Register encodes the user's raw password, grants DefaultRole when the
// user has no roles and saves the user. It emits nothing; callers announce
// the user with NotifyRegistered after their transaction commits.
func (s *Service) Register(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if user == nil {
		return fmt.Errorf("%w: user cannot be nil", service.ErrInvalidArgument)
	}
	user.Email = domain.NormalizeEmail(user.Email)
	user.EnsureRoles()

	if user.Email == "" {
		return fmt.Errorf("%w: %w", service.ErrInvalidArgument,
			domain.NewValidationError("email", "cannot be empty", domain.ErrEmptyEmail))
	}
	if !domain.ValidateEmailFormat(user.Email) {
		return fmt.Errorf("%w: %w", service.ErrInvalidArgument,
			domain.NewValidationError("email", "is not a valid address", domain.ErrInvalidEmail))
	}

	encoded, err := s.EncodePassword(user.Password)
	if err != nil {
		return err
	}
	user.Password = encoded

	if len(user.Roles) == 0 {
		role, err := s.roleStore.GetByName(ctx, DefaultRole)
		if err != nil {
			log.Error("failed to look up default role", "error", err, "role", DefaultRole)
			return fmt.Errorf("failed to assign default role: %w", err)
		}
		user.Roles = domain.NewRoleSet(role)
	}

	if err := s.userStore.Save(ctx, user); err != nil {
		return fmt.Errorf("failed to save registered user: %w", err)
	}

	log.Info("user registered",
		"user_id", user.ID,
		"roles", domain.RoleNames(user.Roles))
	return nil
}

// NotifyRegistered emits a UserRegistered event for a persisted user.
// A failing subscriber is logged and never reported to the caller.
func (s *Service) NotifyRegistered(ctx context.Context, user *domain.User) {
	if s.emitter == nil || user == nil {
		return
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	event, err := events.NewEvent(events.UserRegistered, events.UserRegisteredPayload{
		UserID:    user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Roles:     domain.RoleNames(user.Roles),
	})
	if err != nil {
		log.Error("failed to build registration event", "error", err, "user_id", user.ID)
		return
	}

	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		log.Warn("registration event handler failed",
			"error", err,
			"user_id", user.ID,
			"event_id", event.ID)
	}
}
