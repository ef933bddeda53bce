//go:build integration

package postgres_test

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/phrazzld/useradmin/internal/domain"
	"github.com/phrazzld/useradmin/internal/platform/postgres"
	"github.com/phrazzld/useradmin/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const testTimeout = 10 * time.Second

// testDB is shared by every test in this file; each test works inside its
// own transaction which is rolled back afterwards.
var testDB *sql.DB

func TestMain(m *testing.M) {
	os.Exit(runWithDatabase(m))
}

func runWithDatabase(m *testing.M) int {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("useradmin"),
		tcpostgres.WithUsername("useradmin"),
		tcpostgres.WithPassword("useradmin"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		fmt.Printf("failed to start postgres container: %v\n", err)
		return 1
	}
	defer func() {
		if err := container.Terminate(ctx); err != nil {
			fmt.Printf("failed to terminate container: %v\n", err)
		}
	}()

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		fmt.Printf("failed to build connection string: %v\n", err)
		return 1
	}

	testDB, err = sql.Open("pgx", dsn)
	if err != nil {
		fmt.Printf("failed to open database: %v\n", err)
		return 1
	}
	defer func() { _ = testDB.Close() }()

	if err := postgres.Migrate(ctx, testDB, nil, "up"); err != nil {
		fmt.Printf("failed to migrate: %v\n", err)
		return 1
	}

	return m.Run()
}

// withTx runs fn inside a transaction that is always rolled back.
func withTx(t *testing.T, fn func(ctx context.Context, tx *sql.Tx)) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	tx, err := testDB.BeginTx(ctx, nil)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()

	fn(ctx, tx)
}

func TestUserStore_SaveThenShowRoundTrip(t *testing.T) {
	withTx(t, func(ctx context.Context, tx *sql.Tx) {
		users := postgres.NewPostgresUserStore(tx, nil)
		roles := postgres.NewPostgresRoleStore(tx, nil)

		userRole, err := roles.GetByName(ctx, domain.RoleUser)
		require.NoError(t, err)

		user := &domain.User{
			FirstName: "Ada",
			LastName:  "Lovelace",
			Email:     "ada@example.com",
			Password:  "$2a$10$encoded",
			Age:       36,
			Roles:     []domain.Role{userRole, {Name: domain.RoleAdmin}},
		}
		require.NoError(t, users.Save(ctx, user))
		require.NotZero(t, user.ID)

		loaded, err := users.GetByID(ctx, user.ID)
		require.NoError(t, err)
		require.NoError(t, users.LoadRoles(ctx, loaded))

		assert.Equal(t, user.FirstName, loaded.FirstName)
		assert.Equal(t, user.LastName, loaded.LastName)
		assert.Equal(t, user.Email, loaded.Email)
		assert.Equal(t, user.Password, loaded.Password)
		assert.Equal(t, user.Age, loaded.Age)
		assert.Equal(t, []string{domain.RoleAdmin, domain.RoleUser}, domain.RoleNames(loaded.Roles))
	})
}

func TestUserStore_UpsertReplacesFieldsAndRoles(t *testing.T) {
	withTx(t, func(ctx context.Context, tx *sql.Tx) {
		users := postgres.NewPostgresUserStore(tx, nil)

		user := &domain.User{
			Email:    "grace@example.com",
			Password: "hash-1",
			Roles:    []domain.Role{{Name: domain.RoleAdmin}},
		}
		require.NoError(t, users.Save(ctx, user))

		replacement := &domain.User{
			ID:       user.ID,
			Email:    "grace.hopper@example.com",
			Password: "hash-2",
			Age:      85,
		}
		require.NoError(t, users.Save(ctx, replacement))

		loaded, err := users.GetByEmail(ctx, "GRACE.HOPPER@example.com")
		require.NoError(t, err)
		require.NoError(t, users.LoadRoles(ctx, loaded))

		assert.Equal(t, user.ID, loaded.ID)
		assert.Equal(t, 85, loaded.Age)
		assert.Equal(t, "hash-2", loaded.Password)
		assert.NotNil(t, loaded.Roles)
		assert.Empty(t, loaded.Roles)
	})
}

func TestUserStore_ExplicitIDAdvancesSequence(t *testing.T) {
	withTx(t, func(ctx context.Context, tx *sql.Tx) {
		users := postgres.NewPostgresUserStore(tx, nil)

		var last int64
		require.NoError(t, tx.QueryRowContext(ctx, `SELECT last_value FROM users_id_seq`).Scan(&last))

		explicit := &domain.User{ID: last + 3, Email: "explicit@example.com", Password: "hash"}
		require.NoError(t, users.Save(ctx, explicit))
		assert.Equal(t, last+3, explicit.ID)

		for i := 0; i < 5; i++ {
			fresh := &domain.User{Email: fmt.Sprintf("fresh%d@example.com", i), Password: "hash"}
			require.NoError(t, users.Save(ctx, fresh))
			assert.Greater(t, fresh.ID, explicit.ID)
		}
	})
}

func TestUserStore_UniqueEmailIsCaseInsensitive(t *testing.T) {
	withTx(t, func(ctx context.Context, tx *sql.Tx) {
		users := postgres.NewPostgresUserStore(tx, nil)

		require.NoError(t, users.Save(ctx, &domain.User{Email: "dup@example.com", Password: "hash"}))
		err := users.Save(ctx, &domain.User{Email: "DUP@example.com", Password: "hash"})

		assert.ErrorIs(t, err, store.ErrEmailExists)
	})
}

func TestUserStore_DeleteCascadesRoles(t *testing.T) {
	withTx(t, func(ctx context.Context, tx *sql.Tx) {
		users := postgres.NewPostgresUserStore(tx, nil)

		user := &domain.User{Email: "gone@example.com", Password: "hash", Roles: []domain.Role{{Name: domain.RoleUser}}}
		require.NoError(t, users.Save(ctx, user))

		require.NoError(t, users.DeleteByID(ctx, user.ID))
		assert.ErrorIs(t, users.DeleteByID(ctx, user.ID), store.ErrUserNotFound)

		_, err := users.GetByID(ctx, user.ID)
		assert.ErrorIs(t, err, store.ErrUserNotFound)

		var remaining int
		require.NoError(t, tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM user_roles WHERE user_id = $1`, user.ID).Scan(&remaining))
		assert.Zero(t, remaining)
	})
}

func TestRoleStore_SeededRoles(t *testing.T) {
	withTx(t, func(ctx context.Context, tx *sql.Tx) {
		roles, err := postgres.NewPostgresRoleStore(tx, nil).FindAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{domain.RoleAdmin, domain.RoleUser}, domain.RoleNames(roles))
	})
}
