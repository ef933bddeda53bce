package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phrazzld/useradmin/internal/domain"
	"github.com/phrazzld/useradmin/internal/platform/logger"
	"github.com/phrazzld/useradmin/internal/service/auth"
	"github.com/phrazzld/useradmin/internal/store"
)

// Registrar persists new accounts and encodes passwords on behalf of the
// user service. The registration package provides the production implementation.
type Registrar interface {
	// Register encodes the raw password on user, assigns default roles
	// and persists it.
	Register(ctx context.Context, user *domain.User) error

	// NotifyRegistered triggers onboarding side effects for a user whose
	// registration has been committed.
	NotifyRegistered(ctx context.Context, user *domain.User)

	// EncodePassword returns the stored form of a raw password.
	EncodePassword(raw string) (string, error)

	// WithTx returns a Registrar whose stores use the provided transaction.
	WithTx(tx *sql.Tx) Registrar
}

// UpdateUserParams carries the full replacement state for UpdateUser.
// A nil Email means the email was not supplied.
type UpdateUserParams struct {
	ID        int64
	FirstName string
	LastName  string
	Password  string
	Email     *string
	Age       int
	Roles     []domain.Role
}

// UserService provides user management operations for the admin panel.
// Every user returned by the service has its roles loaded.
type UserService interface {
	// Index returns all users ordered by ID.
	Index(ctx context.Context) ([]*domain.User, error)

	// Show returns the user with the given ID, or nil when there is none.
	Show(ctx context.Context, id int64) (*domain.User, error)

	// Save upserts user without a uniqueness check.
	Save(ctx context.Context, user *domain.User) error

	// Update forces user.ID to id and upserts it, replacing every field.
	Update(ctx context.Context, id int64, user *domain.User) error

	// Delete removes the user with the given ID. A missing user is not an error.
	Delete(ctx context.Context, id int64) error

	// FindByEmail returns the user with the given email, or nil when there is none.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)

	// LoadUserByUsername resolves a login name (the email) to a user.
	// Returns ErrUsernameNotFound when no user matches.
	LoadUserByUsername(ctx context.Context, username string) (*domain.User, error)

	// GetCurrentUser returns the user the principal refers to, or nil.
	// Failures are logged and never returned.
	GetCurrentUser(ctx context.Context, principal *auth.Principal) *domain.User

	// CreateUser registers a new user and returns the same pointer.
	// Returns ErrAlreadyExists when the email is taken.
	CreateUser(ctx context.Context, user *domain.User) (*domain.User, error)

	// UpdateUser replaces the state of an existing user.
	// Returns ErrUserNotFound when the user does not exist.
	UpdateUser(ctx context.Context, params UpdateUserParams) (*domain.User, error)

	// DeleteUser removes an existing user.
	// Returns ErrUserNotFound when the user does not exist.
	DeleteUser(ctx context.Context, id int64) error
}

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	userStore  store.UserStore
	registrar  Registrar
	transactor store.Transactor
	logger     *slog.Logger
}

var _ UserService = (*UserServiceImpl)(nil)

// NewUserService creates a new UserService.
// It returns an error if any of the required dependencies are nil.
func NewUserService(
	userStore store.UserStore,
	registrar Registrar,
	transactor store.Transactor,
	logger *slog.Logger,
) (*UserServiceImpl, error) {
	if userStore == nil {
		return nil, fmt.Errorf("%w: userStore cannot be nil", ErrInvalidArgument)
	}
	if registrar == nil {
		return nil, fmt.Errorf("%w: registrar cannot be nil", ErrInvalidArgument)
	}
	if transactor == nil {
		return nil, fmt.Errorf("%w: transactor cannot be nil", ErrInvalidArgument)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &UserServiceImpl{
		userStore:  userStore,
		registrar:  registrar,
		transactor: transactor,
		logger:     logger.With("component", "user_service"),
	}, nil
}

func (s *UserServiceImpl) log(ctx context.Context) *slog.Logger {
	return logger.FromContextOrDefault(ctx, s.logger)
}

// Index returns all users with their roles loaded.
func (s *UserServiceImpl) Index(ctx context.Context) ([]*domain.User, error) {
	var users []*domain.User
	err := s.transactor.ReadOnly(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.userStore.WithTx(tx)

		found, err := txStore.FindAll(ctx)
		if err != nil {
			return err
		}
		if err := txStore.LoadRoles(ctx, found...); err != nil {
			return err
		}
		users = found
		return nil
	})
	if err != nil {
		s.log(ctx).Error("failed to list users", "error", err)
		return nil, NewServiceError("user", "index", err)
	}

	s.log(ctx).Debug("listed users", "count", len(users))
	return users, nil
}

// Show returns the user with the given ID, or nil when it does not exist.
func (s *UserServiceImpl) Show(ctx context.Context, id int64) (*domain.User, error) {
	if id <= 0 {
		return nil, nil
	}

	var user *domain.User
	err := s.transactor.ReadOnly(ctx, func(ctx context.Context, tx *sql.Tx) error {
		found, err := s.findWithRoles(ctx, s.userStore.WithTx(tx), func(st store.UserStore) (*domain.User, error) {
			return st.GetByID(ctx, id)
		})
		user = found
		return err
	})
	if err != nil {
		s.log(ctx).Error("failed to retrieve user", "error", err, "user_id", id)
		return nil, NewServiceError("user", "show", err)
	}

	return user, nil
}

// Save upserts user. The caller is responsible for email uniqueness.
func (s *UserServiceImpl) Save(ctx context.Context, user *domain.User) error {
	if user == nil {
		return fmt.Errorf("%w: user cannot be nil", ErrInvalidArgument)
	}

	err := s.transactor.InTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return s.userStore.WithTx(tx).Save(ctx, user)
	})
	if err != nil {
		s.log(ctx).Error("failed to save user", "error", err, "user_id", user.ID)
		return translateStoreError(err)
	}

	s.log(ctx).Debug("user saved", "user_id", user.ID)
	return nil
}

// Update forces user.ID to id and upserts the full user.
func (s *UserServiceImpl) Update(ctx context.Context, id int64, user *domain.User) error {
	if err := validateUpdate(id, user); err != nil {
		return err
	}

	err := s.transactor.InTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return s.update(ctx, s.userStore.WithTx(tx), id, user)
	})
	if err != nil {
		s.log(ctx).Error("failed to update user", "error", err, "user_id", id)
		return translateStoreError(err)
	}
	return nil
}

func validateUpdate(id int64, user *domain.User) error {
	if user == nil {
		return fmt.Errorf("%w: user cannot be nil", ErrInvalidArgument)
	}
	if id <= 0 {
		return fmt.Errorf("%w: user id must be positive, got %d", ErrInvalidArgument, id)
	}
	return nil
}

func (s *UserServiceImpl) update(ctx context.Context, txStore store.UserStore, id int64, user *domain.User) error {
	user.ID = id
	return txStore.Save(ctx, user)
}

// Delete removes the user with the given ID. Deleting a missing user is a no-op.
func (s *UserServiceImpl) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: user id must be positive, got %d", ErrInvalidArgument, id)
	}

	err := s.transactor.InTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return s.delete(ctx, s.userStore.WithTx(tx), id)
	})
	if err != nil {
		s.log(ctx).Error("failed to delete user", "error", err, "user_id", id)
		return NewServiceError("user", "delete", err)
	}
	return nil
}

func (s *UserServiceImpl) delete(ctx context.Context, txStore store.UserStore, id int64) error {
	err := txStore.DeleteByID(ctx, id)
	if errors.Is(err, store.ErrUserNotFound) {
		s.log(ctx).Debug("delete of missing user ignored", "user_id", id)
		return nil
	}
	return err
}

// FindByEmail returns the user with the given email, or nil when there is none.
func (s *UserServiceImpl) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user *domain.User
	err := s.transactor.ReadOnly(ctx, func(ctx context.Context, tx *sql.Tx) error {
		found, err := s.findWithRoles(ctx, s.userStore.WithTx(tx), func(st store.UserStore) (*domain.User, error) {
			return st.GetByEmail(ctx, email)
		})
		user = found
		return err
	})
	if err != nil {
		s.log(ctx).Error("failed to retrieve user by email", "error", err)
		return nil, NewServiceError("user", "find_by_email", err)
	}
	return user, nil
}

// findWithRoles runs lookup and loads roles on the result. A missing user
// yields (nil, nil).
func (s *UserServiceImpl) findWithRoles(
	ctx context.Context,
	txStore store.UserStore,
	lookup func(store.UserStore) (*domain.User, error),
) (*domain.User, error) {
	user, err := lookup(txStore)
	if errors.Is(err, store.ErrUserNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := txStore.LoadRoles(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// LoadUserByUsername resolves username (an email) to a user with roles.
func (s *UserServiceImpl) LoadUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user *domain.User
	err := s.transactor.ReadOnly(ctx, func(ctx context.Context, tx *sql.Tx) error {
		found, err := s.findWithRoles(ctx, s.userStore.WithTx(tx), func(st store.UserStore) (*domain.User, error) {
			return st.GetByEmail(ctx, username)
		})
		user = found
		return err
	})
	if err != nil {
		s.log(ctx).Error("failed to load user by username", "error", err)
		return nil, NewServiceError("user", "load_user_by_username", err)
	}
	if user == nil {
		s.log(ctx).Debug("username not found")
		return nil, ErrUsernameNotFound
	}
	return user, nil
}

// GetCurrentUser returns the user identified by principal, or nil when the
// principal is missing or the lookup fails for any reason.
func (s *UserServiceImpl) GetCurrentUser(ctx context.Context, principal *auth.Principal) (user *domain.User) {
	defer func() {
		if p := recover(); p != nil {
			s.log(ctx).Error("recovered from panic while resolving current user", "panic", p)
			user = nil
		}
	}()

	if principal == nil || strings.TrimSpace(principal.Name) == "" {
		s.log(ctx).Debug("no authenticated principal")
		return nil
	}

	found, err := s.FindByEmail(ctx, principal.Name)
	if err != nil {
		s.log(ctx).Warn("failed to resolve current user", "error", err)
		return nil
	}
	return found
}

// CreateUser checks the email is free and delegates persistence to the registrar.
// The unique email index closes the window between the check and the insert.
// Subscribers hear about the user only once the transaction has committed.
func (s *UserServiceImpl) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user == nil {
		return nil, fmt.Errorf("%w: user cannot be nil", ErrInvalidArgument)
	}

	err := s.transactor.InTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		existing, err := s.userStore.WithTx(tx).GetByEmail(ctx, user.Email)
		switch {
		case err == nil && existing != nil:
			return fmt.Errorf("%w: email %s", ErrAlreadyExists, domain.NormalizeEmail(user.Email))
		case err != nil && !errors.Is(err, store.ErrUserNotFound):
			return err
		}

		return s.registrar.WithTx(tx).Register(ctx, user)
	})
	if err != nil {
		err = translateStoreError(err)
		if errors.Is(err, ErrAlreadyExists) || errors.Is(err, ErrInvalidArgument) {
			s.log(ctx).Debug("user creation rejected", "error", err)
			return nil, err
		}
		s.log(ctx).Error("failed to create user", "error", err)
		return nil, NewServiceError("user", "create_user", err)
	}

	s.log(ctx).Info("user created successfully",
		"user_id", user.ID,
		"roles", domain.RoleNames(user.Roles))
	s.registrar.NotifyRegistered(ctx, user)
	return user, nil
}

// UpdateUser builds a new user from params and replaces the stored one.
// A blank password keeps the stored hash. Nil roles clear the role set.
func (s *UserServiceImpl) UpdateUser(ctx context.Context, params UpdateUserParams) (*domain.User, error) {
	if params.ID <= 0 {
		return nil, fmt.Errorf("%w: user id must be positive, got %d", ErrInvalidArgument, params.ID)
	}
	if params.Email == nil {
		return nil, fmt.Errorf("%w: email is required", ErrInvalidArgument)
	}

	var updated *domain.User
	err := s.transactor.InTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.userStore.WithTx(tx)

		existing, err := txStore.GetByID(ctx, params.ID)
		if errors.Is(err, store.ErrUserNotFound) {
			return fmt.Errorf("%w: id %d", ErrUserNotFound, params.ID)
		}
		if err != nil {
			return err
		}

		user := &domain.User{
			ID:        params.ID,
			FirstName: params.FirstName,
			LastName:  params.LastName,
			Email:     *params.Email,
			Password:  existing.Password,
			Age:       params.Age,
			Roles:     domain.NewRoleSet(params.Roles...),
			CreatedAt: existing.CreatedAt,
		}

		if strings.TrimSpace(params.Password) != "" {
			encoded, err := s.registrar.EncodePassword(params.Password)
			if errors.Is(err, ErrInvalidArgument) {
				return err
			}
			if err != nil {
				return NewServiceError("user", "encode_password", err)
			}
			user.Password = encoded
		}

		if err := s.update(ctx, txStore, params.ID, user); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		err = translateStoreError(err)
		if errors.Is(err, ErrInvalidArgument) || errors.Is(err, ErrAlreadyExists) {
			s.log(ctx).Debug("user update rejected", "error", err, "user_id", params.ID)
			return nil, err
		}
		s.log(ctx).Error("failed to update user", "error", err, "user_id", params.ID)
		return nil, NewServiceError("user", "update_user", err)
	}

	s.log(ctx).Info("user updated successfully", "user_id", updated.ID)
	return updated, nil
}

// DeleteUser removes an existing user. Missing users are reported as ErrUserNotFound.
func (s *UserServiceImpl) DeleteUser(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: user id must be positive, got %d", ErrInvalidArgument, id)
	}

	err := s.transactor.InTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.userStore.WithTx(tx)

		if _, err := txStore.GetByID(ctx, id); err != nil {
			if errors.Is(err, store.ErrUserNotFound) {
				return fmt.Errorf("%w: id %d", ErrUserNotFound, id)
			}
			return err
		}
		return s.delete(ctx, txStore, id)
	})
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.log(ctx).Debug("delete of missing user rejected", "user_id", id)
			return err
		}
		s.log(ctx).Error("failed to delete user", "error", err, "user_id", id)
		return NewServiceError("user", "delete_user", err)
	}

	s.log(ctx).Info("user deleted successfully", "user_id", id)
	return nil
}
