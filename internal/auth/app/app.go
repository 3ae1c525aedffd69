package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/campuscode/lmsauthd/internal/auth/http"
	"github.com/campuscode/lmsauthd/internal/auth/service"
	"github.com/campuscode/lmsauthd/internal/auth/store"
	"github.com/campuscode/lmsauthd/internal/auth/store/drivers/postgres"
	"github.com/campuscode/lmsauthd/internal/auth/store/drivers/sqlite"
	"github.com/campuscode/lmsauthd/pkg/slogx"
)

// BuildVersion is overridden at build time via ldflags.
var BuildVersion = "v0.1.0"

// Application encapsulates the credential bridge with all its dependencies.
// The store handle is owned here and passed into the authenticator
// explicitly so tests can substitute a fake.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db            store.Store
	authenticator *service.Authenticator

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "lms-auth",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.logger.Info("lms-auth starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"db_driver", app.cfg.DBDriver,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down lms-auth...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("lms-auth stopped")
	return nil
}

// initDatabase opens the configured store driver. The postgres driver points
// at the real LMS database; the sqlite driver provisions a local
// LMS-shaped table for development.
func (app *Application) initDatabase() error {
	tableCfg := store.TableConfig{
		Prefix:     app.cfg.TablePrefix,
		AuthMethod: app.cfg.AuthMethod,
	}

	switch app.cfg.DBDriver {
	case "postgres":
		db, err := postgres.NewStore(context.Background(), app.cfg.DatabaseURL, tableCfg)
		if err != nil {
			return fmt.Errorf("failed to connect to LMS database: %w", err)
		}
		app.db = db

	case "sqlite":
		dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
		db, err := sqlite.NewStore(dsn, tableCfg)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		if err := db.ApplyMigrations(); err != nil {
			_ = db.Close()
			return fmt.Errorf("failed to apply database migrations: %w", err)
		}
		app.db = db
		app.logger.Info("development database ready", "file", app.cfg.DatabaseFile)

	default:
		return fmt.Errorf("unknown database driver %q", app.cfg.DBDriver)
	}

	return nil
}

func (app *Application) initServices() {
	app.authenticator = &service.Authenticator{
		Store: app.db,
		Admin: service.AdminIdentity{
			Username:  app.cfg.AdminUsername,
			Password:  app.cfg.AdminPassword,
			FirstName: app.cfg.AdminFirstName,
			LastName:  app.cfg.AdminLastName,
			Email:     app.cfg.AdminEmail,
		},
	}

	if app.cfg.AdminUsername == "" {
		app.logger.Warn("no static admin configured; admin short circuit disabled")
	}
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.db, app.logger)
	router.Authenticator = app.authenticator
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
