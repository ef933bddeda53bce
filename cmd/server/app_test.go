package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/phrazzld/useradmin/internal/api"
	"github.com/phrazzld/useradmin/internal/config"
	"github.com/phrazzld/useradmin/internal/domain"
	"github.com/phrazzld/useradmin/internal/mocks"
	"github.com/phrazzld/useradmin/internal/platform/logger"
	"github.com/phrazzld/useradmin/internal/service"
	"github.com/phrazzld/useradmin/internal/service/auth"
	"github.com/phrazzld/useradmin/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestApplication(t *testing.T) (*application, *mocks.MockUserService, *mocks.MockRoleService, *mocks.MockJWTService) {
	t.Helper()

	log, _ := logger.GetTestLogger(t)
	errs, err := api.NewErrorController(log)
	require.NoError(t, err)

	users := &mocks.MockUserService{}
	roles := &mocks.MockRoleService{}
	jwt := &mocks.MockJWTService{}

	app := &application{
		config:           &config.Config{Server: config.ServerConfig{Port: 0, LogLevel: "debug"}},
		logger:           log,
		jwtService:       jwt,
		passwordVerifier: &mocks.MockPasswordVerifier{ShouldSucceed: true},
		userService:      users,
		roleService:      roles,
		errorController:  errs,
		taskRunner:       task.NewTaskRunner(task.DefaultTaskRunnerConfig(), log),
	}
	return app, users, roles, jwt
}

func TestRouter_PublicRoutes(t *testing.T) {
	app, _, _, _ := newTestApplication(t)
	router := app.setupRouter()

	tests := []struct {
		name   string
		method string
		path   string
		status int
		body   string
	}{
		{"health", http.MethodGet, "/health", http.StatusOK, "OK"},
		{"error page", http.MethodGet, "/error", http.StatusOK, "Something went wrong"},
		{"unknown route", http.MethodGet, "/nope", http.StatusNotFound, "Status: 404"},
		{"wrong method", http.MethodDelete, "/health", http.StatusMethodNotAllowed, "Status: 405"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(tt.method, tt.path, nil))

			assert.Equal(t, tt.status, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.body)
			assert.Len(t, rr.Header().Get("X-Trace-Id"), 32)
		})
	}
}

func TestRouter_AdminRequiresRole(t *testing.T) {
	app, users, _, jwt := newTestApplication(t)
	jwt.ValidateTokenFn = func(_ context.Context, token string) (*auth.Claims, error) {
		switch token {
		case "admin-token":
			return &auth.Claims{Subject: "root@example.com", Roles: []string{domain.RoleAdmin}}, nil
		case "user-token":
			return &auth.Claims{Subject: "ada@example.com", Roles: []string{domain.RoleUser}}, nil
		}
		return nil, auth.ErrInvalidToken
	}
	users.On("Index", mock.Anything).Return([]*domain.User{}, nil)
	router := app.setupRouter()

	tests := []struct {
		name   string
		token  string
		status int
	}{
		{"admin", "admin-token", http.StatusOK},
		{"plain user", "user-token", http.StatusForbidden},
		{"bad token", "forged", http.StatusUnauthorized},
		{"no token", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)
			assert.Equal(t, tt.status, rr.Code)
		})
	}
	users.AssertNumberOfCalls(t, "Index", 1)
}

func TestRouter_CurrentUserUsesPrincipal(t *testing.T) {
	app, users, _, jwt := newTestApplication(t)
	jwt.Claims = &auth.Claims{Subject: "ada@example.com", Roles: []string{domain.RoleUser}}
	users.On("GetCurrentUser", mock.Anything, mock.MatchedBy(func(p *auth.Principal) bool {
		return p.Name == "ada@example.com" && p.HasRole(domain.RoleUser)
	})).Return(&domain.User{ID: 5, Email: "ada@example.com", Roles: []domain.Role{}})

	req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
	req.Header.Set("Authorization", "Bearer token")
	rr := httptest.NewRecorder()
	app.setupRouter().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"email":"ada@example.com"`)
	users.AssertExpectations(t)
}

func TestServe_StopsOnCancel(t *testing.T) {
	app, _, _, _ := newTestApplication(t)
	server := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler(), ReadHeaderTimeout: time.Second}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, server, app) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestCleanup_StopsRunner(t *testing.T) {
	app, _, _, _ := newTestApplication(t)
	app.taskRunner.Start()

	assert.NoError(t, app.cleanup())
	assert.ErrorIs(t, app.taskRunner.Submit(context.Background(),
		task.NewFunc("noop", func(context.Context) error { return nil })), task.ErrQueueClosed)
}

func TestBootstrapAdmin(t *testing.T) {
	log, buf := logger.GetTestLogger(t)
	cfg := config.BootstrapConfig{AdminEmail: "root@example.com", AdminPassword: "changeme123"}
	adminRoles := []domain.Role{{ID: 1, Name: domain.RoleAdmin}, {ID: 2, Name: domain.RoleUser}}

	t.Run("disabled", func(t *testing.T) {
		users := &mocks.MockUserService{}
		require.NoError(t, bootstrapAdmin(context.Background(), config.BootstrapConfig{}, users, &mocks.MockRoleService{}, log))
		users.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
	})

	t.Run("creates admin", func(t *testing.T) {
		users := &mocks.MockUserService{}
		roles := &mocks.MockRoleService{}
		users.On("FindByEmail", mock.Anything, "root@example.com").Return(nil, nil)
		roles.On("ResolveRoles", mock.Anything, []string{domain.RoleAdmin, domain.RoleUser}).Return(adminRoles, nil)
		users.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
			return u.Email == "root@example.com" && u.Password == "changeme123" && u.HasRole(domain.RoleAdmin)
		})).Return(&domain.User{ID: 1, Email: "root@example.com"}, nil)

		require.NoError(t, bootstrapAdmin(context.Background(), cfg, users, roles, log))
		users.AssertExpectations(t)
		assert.True(t, strings.Contains(buf.String(), "bootstrap admin created"))
	})

	t.Run("existing admin untouched", func(t *testing.T) {
		users := &mocks.MockUserService{}
		users.On("FindByEmail", mock.Anything, "root@example.com").Return(&domain.User{ID: 1}, nil)

		require.NoError(t, bootstrapAdmin(context.Background(), cfg, users, &mocks.MockRoleService{}, log))
		users.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
	})

	t.Run("concurrent creation tolerated", func(t *testing.T) {
		users := &mocks.MockUserService{}
		roles := &mocks.MockRoleService{}
		users.On("FindByEmail", mock.Anything, mock.Anything).Return(nil, nil)
		roles.On("ResolveRoles", mock.Anything, mock.Anything).Return(adminRoles, nil)
		users.On("CreateUser", mock.Anything, mock.Anything).Return(nil, service.ErrAlreadyExists)

		assert.NoError(t, bootstrapAdmin(context.Background(), cfg, users, roles, log))
	})

	t.Run("lookup failure", func(t *testing.T) {
		users := &mocks.MockUserService{}
		users.On("FindByEmail", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))

		assert.Error(t, bootstrapAdmin(context.Background(), cfg, users, &mocks.MockRoleService{}, log))
	})
}
