package mocks

import (
	"context"
	"database/sql"

	"github.com/phrazzld/useradmin/internal/domain"
	"github.com/phrazzld/useradmin/internal/store"
	"github.com/stretchr/testify/mock"
)

// MockRoleStore is a testify mock of store.RoleStore.
type MockRoleStore struct {
	mock.Mock
}

var _ store.RoleStore = (*MockRoleStore)(nil)

// FindAll is a mock implementation of store.RoleStore.FindAll
func (m *MockRoleStore) FindAll(ctx context.Context) ([]domain.Role, error) {
	args := m.Called(ctx)
	if roles, ok := args.Get(0).([]domain.Role); ok {
		return roles, args.Error(1)
	}
	return nil, args.Error(1)
}

// GetByName is a mock implementation of store.RoleStore.GetByName
func (m *MockRoleStore) GetByName(ctx context.Context, name string) (domain.Role, error) {
	args := m.Called(ctx, name)
	role, _ := args.Get(0).(domain.Role)
	return role, args.Error(1)
}

// WithTx returns the mock itself.
func (m *MockRoleStore) WithTx(tx *sql.Tx) store.RoleStore {
	return m
}
