package mocks

import (
	"context"

	"github.com/phrazzld/useradmin/internal/domain"
	"github.com/phrazzld/useradmin/internal/service"
	"github.com/phrazzld/useradmin/internal/service/auth"
	"github.com/stretchr/testify/mock"
)

// MockUserService is a testify mock of service.UserService.
type MockUserService struct {
	mock.Mock
}

var _ service.UserService = (*MockUserService)(nil)

func userArg(args mock.Arguments, i int) *domain.User {
	user, _ := args.Get(i).(*domain.User)
	return user
}

// Index is a mock implementation of service.UserService.Index
func (m *MockUserService) Index(ctx context.Context) ([]*domain.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]*domain.User)
	return users, args.Error(1)
}

// Show is a mock implementation of service.UserService.Show
func (m *MockUserService) Show(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	return userArg(args, 0), args.Error(1)
}

// Save is a mock implementation of service.UserService.Save
func (m *MockUserService) Save(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

// Update is a mock implementation of service.UserService.Update
func (m *MockUserService) Update(ctx context.Context, id int64, user *domain.User) error {
	return m.Called(ctx, id, user).Error(0)
}

// Delete is a mock implementation of service.UserService.Delete
func (m *MockUserService) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

// FindByEmail is a mock implementation of service.UserService.FindByEmail
func (m *MockUserService) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	return userArg(args, 0), args.Error(1)
}

// LoadUserByUsername is a mock implementation of service.UserService.LoadUserByUsername
func (m *MockUserService) LoadUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	return userArg(args, 0), args.Error(1)
}

// GetCurrentUser is a mock implementation of service.UserService.GetCurrentUser
func (m *MockUserService) GetCurrentUser(ctx context.Context, principal *auth.Principal) *domain.User {
	return userArg(m.Called(ctx, principal), 0)
}

// CreateUser is a mock implementation of service.UserService.CreateUser
func (m *MockUserService) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	args := m.Called(ctx, user)
	return userArg(args, 0), args.Error(1)
}

// UpdateUser is a mock implementation of service.UserService.UpdateUser
func (m *MockUserService) UpdateUser(ctx context.Context, params service.UpdateUserParams) (*domain.User, error) {
	args := m.Called(ctx, params)
	return userArg(args, 0), args.Error(1)
}

// DeleteUser is a mock implementation of service.UserService.DeleteUser
func (m *MockUserService) DeleteUser(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}
