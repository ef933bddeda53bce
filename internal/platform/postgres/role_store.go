package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/phrazzld/useradmin/internal/domain"
	"github.com/phrazzld/useradmin/internal/platform/logger"
	"github.com/phrazzld/useradmin/internal/store"
)

// PostgresRoleStore implements store.RoleStore on the roles table.
type PostgresRoleStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresRoleStore creates a role store on db.
// If logger is nil, a default logger will be used.
func NewPostgresRoleStore(db store.DBTX, logger *slog.Logger) *PostgresRoleStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresRoleStore{
		db:     db,
		logger: logger.With(slog.String("component", "role_store")),
	}
}

var _ store.RoleStore = (*PostgresRoleStore)(nil)

// FindAll implements store.RoleStore.FindAll
func (s *PostgresRoleStore) FindAll(ctx context.Context) ([]domain.Role, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM roles ORDER BY name`)
	if err != nil {
		log.Error("failed to query roles", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	roles := make([]domain.Role, 0)
	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			log.Error("failed to scan role row", slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		log.Error("error iterating role rows", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	return roles, nil
}

// GetByName implements store.RoleStore.GetByName
// Returns store.ErrRoleNotFound if no role has that name.
func (s *PostgresRoleStore) GetByName(ctx context.Context, name string) (domain.Role, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var role domain.Role
	err := s.db.QueryRowContext(ctx, `SELECT id, name FROM roles WHERE name = $1`, name).
		Scan(&role.ID, &role.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("role not found", slog.String("role", name))
			return domain.Role{}, store.ErrRoleNotFound
		}
		log.Error("failed to get role by name",
			slog.String("role", name),
			slog.String("error", err.Error()))
		return domain.Role{}, MapError(err)
	}
	return role, nil
}

// WithTx implements store.RoleStore.WithTx
func (s *PostgresRoleStore) WithTx(tx *sql.Tx) store.RoleStore {
	return &PostgresRoleStore{
		db:     tx,
		logger: s.logger,
	}
}
