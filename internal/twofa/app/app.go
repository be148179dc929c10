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

	httpapi "github.com/harborauth/twofa/internal/twofa/http"
	"github.com/harborauth/twofa/internal/twofa/service"
	"github.com/harborauth/twofa/internal/twofa/store"
	"github.com/harborauth/twofa/internal/twofa/store/drivers/sqlite"
	"github.com/harborauth/twofa/pkg/jwtx"
	"github.com/harborauth/twofa/pkg/lockout"
	"github.com/harborauth/twofa/pkg/otpx"
	"github.com/harborauth/twofa/pkg/replayguard"
	"github.com/harborauth/twofa/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the twofa service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db      store.Store
	signer  *jwtx.Signer
	engine  *otpx.Engine
	replay  *replayguard.Memory
	lockout *lockout.Memory

	// Services
	twoFactorService    *service.TwoFactorService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "twofa-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	signer, err := InitAssertionSigner(app.cfg, app.logger)
	if err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.signer = signer

	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	// Start housekeeping service
	app.housekeepingService.Start()

	app.logger.Info("twofa service starting", "port", app.cfg.Port, "version", BuildVersion)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		// Perform graceful shutdown
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down twofa service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	// Shutdown the HTTP server
	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	// Stop the housekeeping service
	app.housekeepingService.Stop()

	// Close database connection
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("twofa service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initServices initializes the verification engine, guards and business services
func (app *Application) initServices() error {
	engine, err := otpx.NewEngine(int64(app.cfg.Period), app.cfg.Tolerance)
	if err != nil {
		return fmt.Errorf("failed to initialize verification engine: %w", err)
	}
	app.engine = engine

	// Replay entries only matter inside the drift tolerance; retain them for
	// a few windows past that.
	retention := time.Duration(engine.Period()) * time.Second * time.Duration(app.cfg.Tolerance+2) * 2
	app.replay = replayguard.NewMemory(retention)
	app.lockout = lockout.NewMemory(app.cfg.MaxAttempts, app.cfg.LockoutWindow)

	var remote *service.RemoteVerifier
	if app.cfg.RemoteVerifyURL != "" {
		remote = &service.RemoteVerifier{
			URL:     app.cfg.RemoteVerifyURL,
			Timeout: app.cfg.RemoteVerifyTimeout,
		}
		app.logger.Info("remote verification fallback enabled", "url", app.cfg.RemoteVerifyURL)
	}

	app.twoFactorService = &service.TwoFactorService{
		Store:           app.db,
		Engine:          app.engine,
		Replay:          app.replay,
		Lockout:         app.lockout,
		Signer:          app.signer,
		Remote:          remote,
		Issuer:          app.cfg.Issuer,
		SessionTTL:      app.cfg.SessionTTL,
		BackupCodeCount: app.cfg.BackupCodeCount,
		AssertionTTL:    app.cfg.AssertionTTL,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.replay,
		app.lockout,
		app.logger,
		app.cfg.HousekeepingInterval,
	)

	return nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.signer,
		BuildVersion,
		app.db,
		app.logger,
	)

	router.TwoFactorService = app.twoFactorService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
