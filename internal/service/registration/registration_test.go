package registration

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/phrazzld/useradmin/internal/domain"
	"github.com/phrazzld/useradmin/internal/events"
	"github.com/phrazzld/useradmin/internal/mocks"
	"github.com/phrazzld/useradmin/internal/service"
	"github.com/phrazzld/useradmin/internal/service/auth"
	"github.com/phrazzld/useradmin/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var roleUser = domain.Role{ID: 1, Name: domain.RoleUser}

type fixture struct {
	svc     *Service
	users   *mocks.MockUserStore
	roles   *mocks.MockRoleStore
	emitter *events.InMemoryEventEmitter
	seen    []*events.Event
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f := &fixture{
		users:   new(mocks.MockUserStore),
		roles:   new(mocks.MockRoleStore),
		emitter: events.NewInMemoryEventEmitter(logger),
	}
	f.emitter.Subscribe(events.UserRegistered, events.HandlerFunc(func(_ context.Context, e *events.Event) error {
		f.seen = append(f.seen, e)
		return nil
	}))

	svc, err := NewService(f.users, f.roles, auth.NewBcryptEncoder(bcrypt.MinCost), f.emitter, logger)
	require.NoError(t, err)
	f.svc = svc
	return f
}

func TestNewService(t *testing.T) {
	encoder := auth.NewBcryptEncoder(bcrypt.MinCost)

	_, err := NewService(nil, new(mocks.MockRoleStore), encoder, nil, nil)
	assert.Error(t, err)
	_, err = NewService(new(mocks.MockUserStore), nil, encoder, nil, nil)
	assert.Error(t, err)
	_, err = NewService(new(mocks.MockUserStore), new(mocks.MockRoleStore), nil, nil, nil)
	assert.Error(t, err)

	svc, err := NewService(new(mocks.MockUserStore), new(mocks.MockRoleStore), encoder, nil, nil)
	require.NoError(t, err)
	assert.Same(t, svc, svc.WithTx(nil))
}

func TestRegister_AssignsDefaultRoleAndEncodes(t *testing.T) {
	f := newFixture(t)
	f.roles.On("GetByName", mock.Anything, DefaultRole).Return(roleUser, nil)
	f.users.On("Save", mock.Anything, mock.AnythingOfType("*domain.User")).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.User).ID = 11
	}).Return(nil)

	user := domain.NewUser("  ada@example.com ", "pw1")
	user.FirstName = "Ada"

	require.NoError(t, f.svc.Register(context.Background(), user))

	assert.Equal(t, "ada@example.com", user.Email)
	assert.NotEqual(t, "pw1", user.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("pw1")))
	assert.Equal(t, []domain.Role{roleUser}, user.Roles)
	assert.Empty(t, f.seen, "Register must not announce before the caller commits")

	f.svc.NotifyRegistered(context.Background(), user)

	require.Len(t, f.seen, 1)
	var payload events.UserRegisteredPayload
	require.NoError(t, f.seen[0].UnmarshalPayload(&payload))
	assert.Equal(t, events.UserRegisteredPayload{
		UserID:    11,
		Email:     "ada@example.com",
		FirstName: "Ada",
		Roles:     []string{domain.RoleUser},
	}, payload)
}

func TestRegister_KeepsExplicitRoles(t *testing.T) {
	f := newFixture(t)
	admin := domain.Role{ID: 2, Name: domain.RoleAdmin}
	f.users.On("Save", mock.Anything, mock.Anything).Return(nil)

	user := domain.NewUser("root@example.com", "pw")
	user.Roles = []domain.Role{admin}

	require.NoError(t, f.svc.Register(context.Background(), user))

	assert.Equal(t, []domain.Role{admin}, user.Roles)
	f.roles.AssertNotCalled(t, "GetByName", mock.Anything, mock.Anything)
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name     string
		user     *domain.User
		sentinel error
	}{
		{"nil user", nil, nil},
		{"empty email", domain.NewUser("  ", "pw"), domain.ErrEmptyEmail},
		{"malformed email", domain.NewUser("not-an-email", "pw"), domain.ErrInvalidEmail},
		{"empty password", domain.NewUser("a@x.com", ""), domain.ErrEmptyPassword},
		{"password too long", domain.NewUser("a@x.com", strings.Repeat("x", auth.MaxPasswordBytes+1)), domain.ErrInvalidPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			err := f.svc.Register(context.Background(), tt.user)

			assert.ErrorIs(t, err, service.ErrInvalidArgument)
			if tt.sentinel != nil {
				assert.ErrorIs(t, err, tt.sentinel)
			}
			f.users.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
			assert.Empty(t, f.seen)
		})
	}
}

func TestRegister_StoreFailures(t *testing.T) {
	t.Run("default role missing", func(t *testing.T) {
		f := newFixture(t)
		f.roles.On("GetByName", mock.Anything, DefaultRole).Return(domain.Role{}, store.ErrRoleNotFound)

		err := f.svc.Register(context.Background(), domain.NewUser("a@x.com", "pw"))

		assert.ErrorIs(t, err, store.ErrRoleNotFound)
		f.users.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("duplicate email", func(t *testing.T) {
		f := newFixture(t)
		f.roles.On("GetByName", mock.Anything, DefaultRole).Return(roleUser, nil)
		f.users.On("Save", mock.Anything, mock.Anything).Return(store.ErrEmailExists)

		err := f.svc.Register(context.Background(), domain.NewUser("a@x.com", "pw"))

		assert.ErrorIs(t, err, store.ErrEmailExists)
		assert.Empty(t, f.seen)
	})
}

func TestNotifyRegistered(t *testing.T) {
	t.Run("failing subscriber is tolerated", func(t *testing.T) {
		f := newFixture(t)
		f.emitter.RegisterHandler(events.HandlerFunc(func(context.Context, *events.Event) error {
			return errors.New("smtp unavailable")
		}))

		assert.NotPanics(t, func() {
			f.svc.NotifyRegistered(context.Background(), &domain.User{ID: 3, Email: "a@x.com"})
		})
		assert.Len(t, f.seen, 1)
	})

	t.Run("nil user and nil emitter are ignored", func(t *testing.T) {
		f := newFixture(t)
		f.svc.NotifyRegistered(context.Background(), nil)
		assert.Empty(t, f.seen)

		quiet, err := NewService(f.users, f.roles, auth.NewBcryptEncoder(bcrypt.MinCost), nil, nil)
		require.NoError(t, err)
		assert.NotPanics(t, func() {
			quiet.NotifyRegistered(context.Background(), &domain.User{ID: 3})
		})
	})
}

func TestEncodePassword(t *testing.T) {
	f := newFixture(t)

	encoded, err := f.svc.EncodePassword("secret")
	require.NoError(t, err)
	assert.NotEqual(t, "secret", encoded)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(encoded), []byte("secret")))

	_, err = f.svc.EncodePassword("")
	assert.ErrorIs(t, err, service.ErrInvalidArgument)
}
