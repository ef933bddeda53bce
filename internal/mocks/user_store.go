package mocks

import (
	"context"
	"database/sql"

	"github.com/phrazzld/useradmin/internal/domain"
	"github.com/phrazzld/useradmin/internal/store"
	"github.com/stretchr/testify/mock"
)

// MockUserStore is a testify mock of store.UserStore.
// WithTx returns the mock itself so expectations set before a transaction
// still apply inside it.
type MockUserStore struct {
	mock.Mock
}

var _ store.UserStore = (*MockUserStore)(nil)

// FindAll is a mock implementation of store.UserStore.FindAll
func (m *MockUserStore) FindAll(ctx context.Context) ([]*domain.User, error) {
	args := m.Called(ctx)
	if users, ok := args.Get(0).([]*domain.User); ok {
		return users, args.Error(1)
	}
	return nil, args.Error(1)
}

// GetByID is a mock implementation of store.UserStore.GetByID
func (m *MockUserStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if user, ok := args.Get(0).(*domain.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

// GetByEmail is a mock implementation of store.UserStore.GetByEmail
func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if user, ok := args.Get(0).(*domain.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

// LoadRoles is a mock implementation of store.UserStore.LoadRoles.
// Expectations match on the variadic users as a single slice argument.
func (m *MockUserStore) LoadRoles(ctx context.Context, users ...*domain.User) error {
	args := m.Called(ctx, users)
	return args.Error(0)
}

// Save is a mock implementation of store.UserStore.Save
func (m *MockUserStore) Save(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// DeleteByID is a mock implementation of store.UserStore.DeleteByID
func (m *MockUserStore) DeleteByID(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// WithTx returns the mock itself.
func (m *MockUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return m
}
