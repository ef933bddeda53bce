package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/phrazzld/useradmin/internal/domain"
	"github.com/phrazzld/useradmin/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestSentinelErrors(t *testing.T) {
	t.Run("user not found matches both categories", func(t *testing.T) {
		assert.ErrorIs(t, ErrUserNotFound, ErrNotFound)
		assert.ErrorIs(t, ErrUserNotFound, ErrInvalidArgument)
		assert.NotErrorIs(t, ErrUserNotFound, ErrAlreadyExists)
	})

	t.Run("username not found is only not found", func(t *testing.T) {
		assert.ErrorIs(t, ErrUsernameNotFound, ErrNotFound)
		assert.NotErrorIs(t, ErrUsernameNotFound, ErrInvalidArgument)
	})

	t.Run("wrapped with context", func(t *testing.T) {
		err := fmt.Errorf("%w: id %d", ErrUserNotFound, 5)
		assert.ErrorIs(t, err, ErrUserNotFound)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})
}

func TestServiceError(t *testing.T) {
	underlying := errors.New("database connection failed")

	tests := []struct {
		name     string
		err      *ServiceError
		expected string
	}{
		{
			name:     "with underlying error",
			err:      NewServiceError("user", "create_user", underlying),
			expected: "user service create_user operation failed: database connection failed",
		},
		{
			name:     "without underlying error",
			err:      NewServiceError("role", "list_roles", nil),
			expected: "role service list_roles operation failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}

	wrapped := fmt.Errorf("handler: %w", NewServiceError("user", "index", underlying))
	assert.ErrorIs(t, wrapped, underlying)

	var svcErr *ServiceError
	assert.ErrorAs(t, wrapped, &svcErr)
	assert.Equal(t, "index", svcErr.Op)
}

func TestTranslateStoreError(t *testing.T) {
	plain := errors.New("connection refused")

	tests := []struct {
		name  string
		in    error
		is    []error
		isNot []error
	}{
		{
			name: "email exists",
			in:   fmt.Errorf("failed to save: %w", store.ErrEmailExists),
			is:   []error{ErrAlreadyExists, store.ErrEmailExists},
		},
		{
			name: "invalid entity",
			in:   fmt.Errorf("%w: %w", store.ErrInvalidEntity, domain.ErrNegativeAge),
			is:   []error{ErrInvalidArgument, domain.ErrNegativeAge},
		},
		{
			name: "unknown role",
			in:   fmt.Errorf("%w: ROLE_ROOT", store.ErrRoleNotFound),
			is:   []error{ErrInvalidArgument},
		},
		{
			name: "validation error",
			in:   domain.NewValidationError("email", "is invalid", domain.ErrInvalidEmail),
			is:   []error{ErrInvalidArgument, domain.ErrInvalidEmail},
		},
		{
			name:  "already classified",
			in:    ErrUserNotFound,
			is:    []error{ErrUserNotFound},
			isNot: []error{ErrAlreadyExists},
		},
		{
			name:  "unrecognized",
			in:    plain,
			is:    []error{plain},
			isNot: []error{ErrInvalidArgument, ErrAlreadyExists},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translateStoreError(tt.in)
			for _, target := range tt.is {
				assert.ErrorIs(t, got, target)
			}
			for _, target := range tt.isNot {
				assert.NotErrorIs(t, got, target)
			}
		})
	}

	assert.NoError(t, translateStoreError(nil))
}
