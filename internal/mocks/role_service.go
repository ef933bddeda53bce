package mocks

import (
	"context"

	"github.com/phrazzld/useradmin/internal/domain"
	"github.com/phrazzld/useradmin/internal/service"
	"github.com/stretchr/testify/mock"
)

// MockRoleService is a testify mock of service.RoleService.
type MockRoleService struct {
	mock.Mock
}

var _ service.RoleService = (*MockRoleService)(nil)

// ListRoles is a mock implementation of service.RoleService.ListRoles
func (m *MockRoleService) ListRoles(ctx context.Context) ([]domain.Role, error) {
	args := m.Called(ctx)
	roles, _ := args.Get(0).([]domain.Role)
	return roles, args.Error(1)
}

// ResolveRoles is a mock implementation of service.RoleService.ResolveRoles
func (m *MockRoleService) ResolveRoles(ctx context.Context, names []string) ([]domain.Role, error) {
	args := m.Called(ctx, names)
	roles, _ := args.Get(0).([]domain.Role)
	return roles, args.Error(1)
}
