package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/phrazzld/useradmin/internal/api"
	apiMiddleware "github.com/phrazzld/useradmin/internal/api/middleware"
	"github.com/phrazzld/useradmin/internal/domain"
)

// setupRouter creates the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	authHandler := api.NewAuthHandler(app.userService, app.jwtService, app.passwordVerifier)
	userHandler := api.NewUserHandler(app.userService, app.roleService)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)
	errs := app.errorController

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.Trace(app.logger))
	r.Use(errs.Recoverer)

	r.NotFound(errs.NotFound)
	r.MethodNotAllowed(errs.MethodNotAllowed)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Get("/user", userHandler.CurrentUser)

			r.Route("/admin", func(r chi.Router) {
				r.Use(apiMiddleware.RequireRole(domain.RoleAdmin))
				r.Get("/users", userHandler.Index)
				r.Post("/users", userHandler.Create)
				r.Get("/users/{id}", userHandler.Show)
				r.Put("/users/{id}", userHandler.Update)
				r.Delete("/users/{id}", userHandler.Delete)
				r.Get("/roles", userHandler.Roles)
			})
		})
	})

	r.Get(api.ErrorPath, errs.HandleError)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
