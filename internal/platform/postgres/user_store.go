package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/phrazzld/useradmin/internal/domain"
	"github.com/phrazzld/useradmin/internal/platform/logger"
	"github.com/phrazzld/useradmin/internal/store"
)

const userColumns = `id, first_name, last_name, email, password, age, created_at, updated_at`

// PostgresUserStore implements the store.UserStore interface
// using a PostgreSQL database as the storage backend.
type PostgresUserStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresUserStore creates a new PostgreSQL implementation of the UserStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresUserStore(db store.DBTX, logger *slog.Logger) *PostgresUserStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresUserStore{
		db:     db,
		logger: logger.With(slog.String("component", "user_store")),
	}
}

// Ensure PostgresUserStore implements store.UserStore interface
var _ store.UserStore = (*PostgresUserStore)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	user := &domain.User{Roles: []domain.Role{}}
	err := row.Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.Password,
		&user.Age,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// FindAll implements store.UserStore.FindAll
func (s *PostgresUserStore) FindAll(ctx context.Context) ([]*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		log.Error("failed to query users", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	users := make([]*domain.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			log.Error("failed to scan user row", slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		log.Error("error iterating user rows", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	log.Debug("users retrieved", slog.Int("count", len(users)))
	return users, nil
}

// GetByID implements store.UserStore.GetByID
// Returns store.ErrUserNotFound if the user does not exist.
func (s *PostgresUserStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	log.Debug("retrieving user by ID", slog.Int64("user_id", id))

	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("user not found", slog.Int64("user_id", id))
			return nil, store.ErrUserNotFound
		}
		log.Error("failed to get user by ID",
			slog.Int64("user_id", id),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	return user, nil
}

// GetByEmail implements store.UserStore.GetByEmail
// The comparison is case-insensitive, matching the unique index on lower(email).
// Returns store.ErrUserNotFound if the user does not exist.
func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`,
		domain.NormalizeEmail(email))
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("user not found by email")
			return nil, store.ErrUserNotFound
		}
		log.Error("failed to get user by email", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	return user, nil
}

// LoadRoles implements store.UserStore.LoadRoles
func (s *PostgresUserStore) LoadRoles(ctx context.Context, users ...*domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	byID := make(map[int64]*domain.User, len(users))
	args := make([]any, 0, len(users))
	placeholders := make([]string, 0, len(users))
	for _, user := range users {
		if user == nil {
			continue
		}
		user.Roles = []domain.Role{}
		if _, seen := byID[user.ID]; seen {
			continue
		}
		byID[user.ID] = user
		args = append(args, user.ID)
		placeholders = append(placeholders, "$"+strconv.Itoa(len(args)))
	}
	if len(args) == 0 {
		return nil
	}

	query := `
		SELECT ur.user_id, r.id, r.name
		FROM user_roles ur
		JOIN roles r ON r.id = ur.role_id
		WHERE ur.user_id IN (` + strings.Join(placeholders, ", ") + `)
		ORDER BY ur.user_id, r.name
	`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query user roles", slog.String("error", err.Error()))
		return MapError(err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var userID int64
		var role domain.Role
		if err := rows.Scan(&userID, &role.ID, &role.Name); err != nil {
			log.Error("failed to scan user role row", slog.String("error", err.Error()))
			return MapError(err)
		}
		if user, ok := byID[userID]; ok {
			user.Roles = append(user.Roles, role)
		}
	}
	if err := rows.Err(); err != nil {
		log.Error("error iterating user role rows", slog.String("error", err.Error()))
		return MapError(err)
	}

	// users sharing an ID receive the same role set
	for _, user := range users {
		if user != nil {
			user.Roles = domain.NewRoleSet(byID[user.ID].Roles...)
		}
	}
	return nil
}

// Save implements store.UserStore.Save
// It issues several statements and should run inside a transaction.
// Returns store.ErrEmailExists when another user already owns the email.
func (s *PostgresUserStore) Save(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if user == nil {
		return fmt.Errorf("%w: user is nil", store.ErrInvalidEntity)
	}
	user.Email = domain.NormalizeEmail(user.Email)
	user.EnsureRoles()

	if err := user.Validate(); err != nil {
		log.Warn("user validation failed during save",
			slog.Int64("user_id", user.ID),
			slog.String("error", err.Error()))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	var row *sql.Row
	explicitID := user.ID != 0
	if !explicitID {
		row = s.db.QueryRowContext(ctx, `
			INSERT INTO users (first_name, last_name, email, password, age)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at, updated_at
		`, user.FirstName, user.LastName, user.Email, user.Password, user.Age)
	} else {
		row = s.db.QueryRowContext(ctx, `
			INSERT INTO users (id, first_name, last_name, email, password, age)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO UPDATE SET
				first_name = EXCLUDED.first_name,
				last_name  = EXCLUDED.last_name,
				email      = EXCLUDED.email,
				password   = EXCLUDED.password,
				age        = EXCLUDED.age,
				updated_at = NOW()
			RETURNING id, created_at, updated_at
		`, user.ID, user.FirstName, user.LastName, user.Email, user.Password, user.Age)
	}

	if err := row.Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt); err != nil {
		mapped := MapError(err)
		if errors.Is(mapped, store.ErrEmailExists) {
			log.Warn("attempt to save user with existing email", slog.Int64("user_id", user.ID))
		} else {
			log.Error("failed to save user",
				slog.Int64("user_id", user.ID),
				slog.String("error", err.Error()))
		}
		return mapped
	}

	if explicitID {
		if err := s.advanceIDSequence(ctx, user.ID); err != nil {
			log.Error("failed to advance user id sequence",
				slog.Int64("user_id", user.ID),
				slog.String("error", err.Error()))
			return err
		}
	}

	if err := s.replaceRoles(ctx, user); err != nil {
		log.Error("failed to replace user roles",
			slog.Int64("user_id", user.ID),
			slog.String("error", err.Error()))
		return err
	}

	log.Info("user saved",
		slog.Int64("user_id", user.ID),
		slog.Int("role_count", len(user.Roles)))
	return nil
}

// advanceIDSequence moves users_id_seq past an explicitly inserted id so
// later generated ids cannot collide with it. It never moves the sequence back.
func (s *PostgresUserStore) advanceIDSequence(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `
		SELECT setval('users_id_seq', $1)
		FROM users_id_seq
		WHERE last_value < $1 OR (last_value = $1 AND NOT is_called)
	`, id)
	return MapError(err)
}

// replaceRoles rewrites the user_roles rows of user to match user.Roles.
// Roles without an ID are resolved by name.
func (s *PostgresUserStore) replaceRoles(ctx context.Context, user *domain.User) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM user_roles WHERE user_id = $1`, user.ID); err != nil {
		return MapError(err)
	}

	for _, role := range user.Roles {
		var (
			result sql.Result
			err    error
		)
		if role.ID != 0 {
			result, err = s.db.ExecContext(ctx,
				`INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
				user.ID, role.ID)
		} else {
			result, err = s.db.ExecContext(ctx, `
				INSERT INTO user_roles (user_id, role_id)
				SELECT $1, id FROM roles WHERE name = $2
				ON CONFLICT DO NOTHING
			`, user.ID, role.Name)
		}
		if err != nil {
			return MapError(err)
		}
		if role.ID == 0 {
			if err := CheckRowsAffected(result, fmt.Errorf("%w: %s", store.ErrRoleNotFound, role.Name)); err != nil {
				return err
			}
		}
	}
	return nil
}

// DeleteByID implements store.UserStore.DeleteByID
// Role assignments are removed by the ON DELETE CASCADE foreign key.
// Returns store.ErrUserNotFound if no row was deleted.
func (s *PostgresUserStore) DeleteByID(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete user",
			slog.Int64("user_id", id),
			slog.String("error", err.Error()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrUserNotFound); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Debug("user not found for deletion", slog.Int64("user_id", id))
		}
		return err
	}

	log.Info("user deleted", slog.Int64("user_id", id))
	return nil
}

// WithTx implements store.UserStore.WithTx
// It returns a new UserStore instance that uses the provided transaction.
func (s *PostgresUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return &PostgresUserStore{
		db:     tx,
		logger: s.logger,
	}
}
