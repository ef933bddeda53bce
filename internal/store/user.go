package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/useradmin/internal/domain"
)

// UserStore defines the interface for user data persistence.
//
// Lookups return users without their roles; callers that need the role
// set must call LoadRoles on the same store (and therefore in the same
// transaction) before handing the users out.
type UserStore interface {
	// FindAll returns every user ordered by ID. Roles are not loaded.
	FindAll(ctx context.Context) ([]*domain.User, error)

	// GetByID retrieves a user by ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id int64) (*domain.User, error)

	// GetByEmail retrieves a user by email address (case-insensitive).
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// LoadRoles populates the Roles field of every given user with a
	// single query. Users without roles end up with an empty, non-nil set.
	LoadRoles(ctx context.Context, users ...*domain.User) error

	// Save inserts the user when ID is zero and otherwise upserts it keyed
	// by ID, replacing every column and the full role assignment.
	// The assigned ID and timestamps are written back to user.
	// Returns ErrEmailExists if the email is taken by another user.
	Save(ctx context.Context, user *domain.User) error

	// DeleteByID removes a user and its role assignments.
	// Returns ErrUserNotFound if no row was deleted.
	DeleteByID(ctx context.Context, id int64) error

	// WithTx returns a new UserStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) UserStore
}
