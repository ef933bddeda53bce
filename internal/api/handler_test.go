package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/useradmin/internal/api/middleware"
	"github.com/phrazzld/useradmin/internal/service/auth"
	"github.com/stretchr/testify/require"
)

// newTestRouter mounts the handlers on the production paths. A non-nil
// principal is injected into every request in place of token validation.
func newTestRouter(authHandler *AuthHandler, userHandler *UserHandler, principal *auth.Principal) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if principal != nil {
				req = req.WithContext(middleware.WithPrincipal(req.Context(), principal))
			}
			next.ServeHTTP(w, req)
		})
	})

	if authHandler != nil {
		r.Post("/api/auth/login", authHandler.Login)
		r.Post("/api/auth/register", authHandler.Register)
	}
	if userHandler != nil {
		r.Get("/api/user", userHandler.CurrentUser)
		r.Route("/api/admin", func(r chi.Router) {
			r.Get("/users", userHandler.Index)
			r.Post("/users", userHandler.Create)
			r.Get("/users/{id}", userHandler.Show)
			r.Put("/users/{id}", userHandler.Update)
			r.Delete("/users/{id}", userHandler.Delete)
			r.Get("/roles", userHandler.Roles)
		})
	}
	return r
}

func doRequest(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequestWithContext(context.Background(), method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}
