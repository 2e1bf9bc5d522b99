// Package server wires the portal together and runs its HTTP server.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cameronmore/go-courses/auth"
	"github.com/cameronmore/go-courses/config"
	"github.com/cameronmore/go-courses/courses"
	"github.com/cameronmore/go-courses/logging"
	"github.com/cameronmore/go-courses/sessions"
	"github.com/cameronmore/go-courses/views"
)

const shutdownTimeout = 10 * time.Second

// Store is a user store that can bring its own schema up to date.
type Store interface {
	sessions.UserStore
	Migrate(ctx context.Context) error
}

type App struct {
	config *config.Config
	logger *logging.ZerologLogger
	db     *sql.DB
	server *http.Server
}

// NewApp opens the database, applies migrations and builds the HTTP handler.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.New(os.Stdout, cfg.LogLevel).Hook(requestIDHook{})

	db, store, err := OpenStore(ctx, cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	catalog, err := loadCatalog(cfg.CoursesFile)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	handler, err := NewHandler(cfg, store, catalog, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &App{
		config: cfg,
		logger: logger,
		db:     db,
		server: &http.Server{
			Addr:              cfg.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}, nil
}

// NewHandler builds the full router over an already migrated store.
func NewHandler(cfg *config.Config, store sessions.UserStore, catalog *courses.Catalog, logger *logging.ZerologLogger) (http.Handler, error) {
	tokens, err := sessions.NewTokenService([]byte(cfg.SecretKey), sessions.WithIssuer("course-portal"))
	if err != nil {
		return nil, err
	}
	v, err := views.New()
	if err != nil {
		return nil, fmt.Errorf("loading views: %w", err)
	}

	cookie := sessions.CookieOptions{Secure: cfg.CookieSecure}
	ac := auth.NewAuthContext(store, tokens, v, logger, cookie)
	ch := courses.NewHandlers(courses.NewManager(store, catalog), v, logger)

	return NewRouter(Routes{
		Auth:         ac,
		Courses:      ch,
		Log:          logger.Zerolog(),
		LoginLimiter: NewClientLimiter(cfg.LoginRate, cfg.LoginBurst),
		TrustProxy:   cfg.TrustProxy,
	}), nil
}

// OpenStore connects to the configured database and returns the matching store.
func OpenStore(ctx context.Context, driver, dsn string) (*sql.DB, Store, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("db open error: %w", err)
	}

	var store Store
	switch driver {
	case config.DriverSQLite:
		// a single writer avoids SQLITE_BUSY between pooled connections
		db.SetMaxOpenConns(1)
		store = auth.NewSQLiteStore(db)
	case config.DriverPostgres:
		db.SetMaxOpenConns(20)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(time.Hour)
		store = auth.NewPostgresStore(db)
	default:
		_ = db.Close()
		return nil, nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("db ping error: %w", err)
	}
	return db, store, nil
}

func loadCatalog(path string) (*courses.Catalog, error) {
	if path == "" {
		return courses.DefaultCatalog()
	}
	c, err := courses.LoadCatalogFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading course catalog: %w", err)
	}
	return c, nil
}

// Run serves until ctx is cancelled or a termination signal arrives, then shuts down
// gracefully.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()
	defer app.db.Close()

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info(ctx, "Starting server", "addr", app.config.Addr, "driver", app.config.DatabaseDriver)
		if err := app.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	app.logger.Info(context.Background(), "Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return app.server.Shutdown(shutdownCtx)
}
