package mocks

import (
	"context"
	"database/sql"

	"github.com/phrazzld/useradmin/internal/domain"
	"github.com/phrazzld/useradmin/internal/service"
	"github.com/stretchr/testify/mock"
)

// MockRegistrar is a testify mock of service.Registrar.
type MockRegistrar struct {
	mock.Mock
}

var _ service.Registrar = (*MockRegistrar)(nil)

// Register is a mock implementation of service.Registrar.Register
func (m *MockRegistrar) Register(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// NotifyRegistered is a mock implementation of service.Registrar.NotifyRegistered
func (m *MockRegistrar) NotifyRegistered(ctx context.Context, user *domain.User) {
	m.Called(ctx, user)
}

// EncodePassword is a mock implementation of service.Registrar.EncodePassword
func (m *MockRegistrar) EncodePassword(raw string) (string, error) {
	args := m.Called(raw)
	return args.String(0), args.Error(1)
}

// WithTx returns the mock itself.
func (m *MockRegistrar) WithTx(tx *sql.Tx) service.Registrar {
	return m
}
