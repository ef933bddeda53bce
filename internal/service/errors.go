package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/useradmin/internal/domain"
	"github.com/phrazzld/useradmin/internal/store"
)

// Common service errors - sentinel errors used across service implementations.
// Callers check them with errors.Is; the API layer maps them to status codes.
var (
	// ErrInvalidArgument indicates a missing or malformed input, such as a nil
	// user, a non-positive ID, or an absent email.
	// API layer should map this to HTTP 400 Bad Request.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrAlreadyExists indicates that a user with the same email is already registered.
	// API layer should map this to HTTP 409 Conflict.
	ErrAlreadyExists = errors.New("already exists")

	// ErrNotFound indicates that a requested resource does not exist.
	// API layer should map this to HTTP 404 Not Found.
	ErrNotFound = errors.New("not found")

	// ErrUserNotFound is returned by mutations addressing a user ID with no
	// backing record. It matches both ErrNotFound and ErrInvalidArgument.
	ErrUserNotFound = fmt.Errorf("user %w: %w", ErrNotFound, ErrInvalidArgument)

	// ErrUsernameNotFound is returned when an authentication lookup cannot
	// resolve the username (email) to a user.
	ErrUsernameNotFound = fmt.Errorf("username %w", ErrNotFound)
)

// ServiceError adds the failing service and operation to an unexpected error.
type ServiceError struct {
	Service string // e.g. "user"
	Op      string // e.g. "create_user"
	Err     error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s service %s operation failed", e.Service, e.Op)
	}
	return fmt.Sprintf("%s service %s operation failed: %v", e.Service, e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a ServiceError.
func NewServiceError(service, op string, err error) *ServiceError {
	return &ServiceError{Service: service, Op: op, Err: err}
}

// translateStoreError maps store and domain failures onto service sentinels.
// The original error stays in the chain; anything unrecognized is returned as is.
func translateStoreError(err error) error {
	if err == nil {
		return nil
	}

	var validationErr *domain.ValidationError
	switch {
	case errors.Is(err, ErrInvalidArgument), errors.Is(err, ErrAlreadyExists):
		return err
	case errors.Is(err, store.ErrDuplicate):
		return fmt.Errorf("%w: %w", ErrAlreadyExists, err)
	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, store.ErrRoleNotFound),
		errors.Is(err, domain.ErrValidation),
		errors.As(err, &validationErr):
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	return err
}
