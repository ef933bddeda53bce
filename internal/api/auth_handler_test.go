package api

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/phrazzld/useradmin/internal/domain"
	"github.com/phrazzld/useradmin/internal/mocks"
	"github.com/phrazzld/useradmin/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func loginFixture() *domain.User {
	return &domain.User{
		ID:       5,
		Email:    "ada@example.com",
		Password: "$2a$10$hash",
		Roles:    []domain.Role{{ID: 1, Name: domain.RoleAdmin}, {ID: 2, Name: domain.RoleUser}},
	}
}

func TestAuthHandler_Login(t *testing.T) {
	expiresAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		users := &mocks.MockUserService{}
		users.On("LoadUserByUsername", mock.Anything, "ada@example.com").Return(loginFixture(), nil)
		verifier := &mocks.MockPasswordVerifier{ShouldSucceed: true}
		jwt := &mocks.MockJWTService{Token: "signed-token", ExpiresAt: expiresAt}

		router := newTestRouter(NewAuthHandler(users, jwt, verifier), nil, nil)
		rr := doRequest(t, router, http.MethodPost, "/api/auth/login",
			LoginRequest{Email: "ada@example.com", Password: "secret"})

		assert.Equal(t, http.StatusOK, rr.Code)
		resp := decodeBody[AuthResponse](t, rr)
		assert.Equal(t, "signed-token", resp.Token)
		assert.Equal(t, "2026-01-02T03:04:05Z", resp.ExpiresAt)
		assert.Equal(t, "ada@example.com", resp.Email)
		assert.Equal(t, []string{domain.RoleAdmin, domain.RoleUser}, resp.Roles)
		assert.Equal(t, "$2a$10$hash", verifier.CompareCalledWith.HashedPassword)
		assert.Equal(t, "secret", verifier.CompareCalledWith.Password)
		users.AssertExpectations(t)
	})

	tests := []struct {
		name      string
		lookupErr error
		verifies  bool
	}{
		{"unknown email", service.ErrUsernameNotFound, true},
		{"wrong password", nil, false},
		{"lookup failure", errors.New("connection refused"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := &mocks.MockUserService{}
			if tt.lookupErr != nil {
				users.On("LoadUserByUsername", mock.Anything, "ada@example.com").Return(nil, tt.lookupErr)
			} else {
				users.On("LoadUserByUsername", mock.Anything, "ada@example.com").Return(loginFixture(), nil)
			}
			jwt := &mocks.MockJWTService{Token: "signed-token"}

			router := newTestRouter(NewAuthHandler(users, jwt, &mocks.MockPasswordVerifier{ShouldSucceed: tt.verifies}), nil, nil)
			rr := doRequest(t, router, http.MethodPost, "/api/auth/login",
				LoginRequest{Email: "ada@example.com", Password: "secret"})

			assert.Equal(t, http.StatusUnauthorized, rr.Code)
			assert.Equal(t, "Invalid credentials", decodeBody[map[string]any](t, rr)["error"])
		})
	}

	t.Run("malformed body", func(t *testing.T) {
		router := newTestRouter(NewAuthHandler(&mocks.MockUserService{}, &mocks.MockJWTService{}, &mocks.MockPasswordVerifier{}), nil, nil)
		rr := doRequest(t, router, http.MethodPost, "/api/auth/login", `{"email":`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("token failure", func(t *testing.T) {
		users := &mocks.MockUserService{}
		users.On("LoadUserByUsername", mock.Anything, "ada@example.com").Return(loginFixture(), nil)
		jwt := &mocks.MockJWTService{Err: errors.New("signing failed")}

		router := newTestRouter(NewAuthHandler(users, jwt, &mocks.MockPasswordVerifier{ShouldSucceed: true}), nil, nil)
		rr := doRequest(t, router, http.MethodPost, "/api/auth/login",
			LoginRequest{Email: "ada@example.com", Password: "secret"})
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}

func TestAuthHandler_Register(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		users := &mocks.MockUserService{}
		users.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
			return u.Email == "grace@example.com" && u.Password == "pw" && u.FirstName == "Grace" && u.Age == 30
		})).Return(func() *domain.User {
			return &domain.User{
				ID: 9, Email: "grace@example.com", FirstName: "Grace", Age: 30,
				Password: "$2a$10$encoded",
				Roles:    []domain.Role{{ID: 2, Name: domain.RoleUser}},
			}
		}(), nil)

		router := newTestRouter(NewAuthHandler(users, &mocks.MockJWTService{}, &mocks.MockPasswordVerifier{}), nil, nil)
		rr := doRequest(t, router, http.MethodPost, "/api/auth/register", RegisterRequest{
			Email: "grace@example.com", Password: "pw", FirstName: "Grace", Age: 30,
		})

		assert.Equal(t, http.StatusCreated, rr.Code)
		resp := decodeBody[UserResponse](t, rr)
		assert.Equal(t, int64(9), resp.ID)
		assert.Equal(t, []string{domain.RoleUser}, resp.RoleNames)
		assert.NotContains(t, rr.Body.String(), "encoded")
		users.AssertExpectations(t)
	})

	t.Run("duplicate email", func(t *testing.T) {
		users := &mocks.MockUserService{}
		users.On("CreateUser", mock.Anything, mock.Anything).Return(nil, service.ErrAlreadyExists)

		router := newTestRouter(NewAuthHandler(users, &mocks.MockJWTService{}, &mocks.MockPasswordVerifier{}), nil, nil)
		rr := doRequest(t, router, http.MethodPost, "/api/auth/register",
			RegisterRequest{Email: "grace@example.com", Password: "pw"})

		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Equal(t, "Email already exists", decodeBody[map[string]any](t, rr)["error"])
	})

	t.Run("invalid email", func(t *testing.T) {
		users := &mocks.MockUserService{}
		router := newTestRouter(NewAuthHandler(users, &mocks.MockJWTService{}, &mocks.MockPasswordVerifier{}), nil, nil)
		rr := doRequest(t, router, http.MethodPost, "/api/auth/register",
			RegisterRequest{Email: "nope", Password: "pw"})

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		users.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
	})
}
