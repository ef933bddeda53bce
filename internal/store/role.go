package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/useradmin/internal/domain"
)

// RoleStore defines read access to the role catalogue.
type RoleStore interface {
	// FindAll returns every role ordered by name.
	FindAll(ctx context.Context) ([]domain.Role, error)

	// GetByName retrieves a role by its exact name.
	// Returns ErrRoleNotFound if the role does not exist.
	GetByName(ctx context.Context, name string) (domain.Role, error)

	// WithTx returns a new RoleStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) RoleStore
}
