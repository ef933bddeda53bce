package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"go.uber.org/multierr"

	"github.com/phrazzld/useradmin/internal/api"
	"github.com/phrazzld/useradmin/internal/config"
	"github.com/phrazzld/useradmin/internal/events"
	"github.com/phrazzld/useradmin/internal/platform/mail"
	"github.com/phrazzld/useradmin/internal/platform/postgres"
	"github.com/phrazzld/useradmin/internal/service"
	"github.com/phrazzld/useradmin/internal/service/auth"
	"github.com/phrazzld/useradmin/internal/service/registration"
	"github.com/phrazzld/useradmin/internal/store"
	"github.com/phrazzld/useradmin/internal/task"
)

const shutdownTimeout = 10 * time.Second

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore store.UserStore
	roleStore store.RoleStore

	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier
	userService      service.UserService
	roleService      service.RoleService
	errorController  *api.ErrorController

	eventEmitter *events.InMemoryEventEmitter
	taskRunner   *task.TaskRunner
}

// newApplication wires stores, services and background delivery. Nothing is
// started until Run.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.passwordVerifier = auth.NewBcryptVerifier()

	app.userStore = postgres.NewPostgresUserStore(db, logger)
	app.roleStore = postgres.NewPostgresRoleStore(db, logger)

	app.taskRunner = task.NewTaskRunner(task.DefaultTaskRunnerConfig(), logger)
	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	if err := app.registerMailer(); err != nil {
		return nil, err
	}

	registrar, err := registration.NewService(
		app.userStore,
		app.roleStore,
		auth.NewBcryptEncoder(cfg.Auth.BcryptCost),
		app.eventEmitter,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create registration service: %w", err)
	}

	app.userService, err = service.NewUserService(app.userStore, registrar, store.NewTransactor(db), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}

	app.roleService, err = service.NewRoleService(app.roleStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create role service: %w", err)
	}

	app.errorController, err = api.NewErrorController(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create error controller: %w", err)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// registerMailer subscribes the welcome mail notifier to registration
// events. Delivery runs on the task runner, outside the request.
func (app *application) registerMailer() error {
	if !app.config.Mail.Enabled {
		app.logger.Info("Mail delivery disabled")
		return nil
	}

	notifier, err := mail.NewNotifier(app.config.Mail, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create mail notifier: %w", err)
	}
	app.eventEmitter.Subscribe(events.UserRegistered,
		task.NewAsyncEventHandler(notifier, app.taskRunner, app.logger))

	app.logger.Info("Mail delivery enabled", "host", app.config.Mail.Host)
	return nil
}

// Run starts background workers, seeds the bootstrap admin and serves HTTP
// until ctx is cancelled. Resources are released before it returns.
func (app *application) Run(ctx context.Context) error {
	app.taskRunner.Start()

	err := bootstrapAdmin(ctx, app.config.Bootstrap, app.userService, app.roleService, app.logger)
	if err == nil {
		err = app.startHTTPServer(ctx, app.setupRouter())
	}
	return multierr.Append(err, app.cleanup())
}

// cleanup drains the task runner and closes the database.
func (app *application) cleanup() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var err error
	if app.taskRunner != nil {
		err = multierr.Append(err, app.taskRunner.Stop(ctx))
	}
	if app.db != nil {
		if closeErr := app.db.Close(); closeErr != nil {
			err = multierr.Append(err, fmt.Errorf("failed to close database: %w", closeErr))
		}
	}
	if err != nil {
		app.logger.Error("Cleanup finished with errors", "error", err)
	}
	return err
}
