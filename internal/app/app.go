package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"user-service/internal/adapter/httpapi"
	"user-service/internal/config"
	"user-service/internal/platform/logger"
	"user-service/internal/platform/pg"
	"user-service/internal/platform/sqlite"
	"user-service/internal/shared"
)

// App wires application components.
type App struct {
	cfg    config.Config
	log    *slog.Logger
	errors *shared.Registry
}

// New creates a new App instance and loads configuration.
func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return NewWithConfig(cfg)
}

// NewWithConfig builds the logger and error registry. Both error catalogs are
// read here, so a missing catalog file stops startup.
func NewWithConfig(cfg config.Config) (*App, error) {
	log := logger.New(logger.Options{
		Env:          cfg.Env,
		ConsoleLevel: cfg.Log.ConsoleLevel,
		FileLevel:    cfg.Log.FileLevel,
		File:         cfg.Log.File,
		App:          "user-service",
	})

	reg := shared.NewRegistry(
		shared.NewCatalog(shared.GlobalCatalog, cfg.Errors.GlobalFile, shared.WithLogger(log)),
		shared.NewCatalog(shared.ServiceCatalog, cfg.Errors.ServiceFile, shared.WithLogger(log)),
	)
	if err := reg.Preload(); err != nil {
		log.Error("error catalogs unavailable", logger.Err(err))
		_ = logger.Close(log)
		return nil, err
	}
	reg.UseStorageTranslator(shared.NewStorageTranslator(reg, pg.Classify, sqlite.Classify))
	shared.SetDefault(reg)

	return &App{cfg: cfg, log: log, errors: reg}, nil
}

// Run starts the application and blocks until SIGINT or SIGTERM.
func (a *App) Run() error {
	defer func() { _ = logger.Close(a.log) }()
	a.log.Info("starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := a.openStorage(ctx)
	if err != nil {
		a.log.Error("storage", logger.Err(err))
		return err
	}
	defer st.close()

	srv := &http.Server{
		Addr:              a.cfg.HTTP.Addr,
		Handler:           a.Handler(st.health),
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		a.log.Info("http listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		a.log.Error("server", logger.Err(err))
		return err
	}

	a.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// Handler returns the HTTP handler with the given storage probe.
func (a *App) Handler(health func(context.Context) error) http.Handler {
	return httpapi.NewRouter(httpapi.Deps{Log: a.log, Errors: a.errors, Health: health})
}

// Errors returns the registry built from the configured catalogs.
func (a *App) Errors() *shared.Registry { return a.errors }

type storage struct {
	health func(context.Context) error
	close  func()
}

func (a *App) openStorage(ctx context.Context) (storage, error) {
	switch a.cfg.DB.Driver {
	case "postgres":
		wait := pg.DefaultWaitOptions()
		if a.cfg.DB.WaitTimeout > 0 {
			wait.Timeout = a.cfg.DB.WaitTimeout
		}
		if err := pg.WaitForDB(ctx, a.log, a.cfg.DB.DSN, wait); err != nil {
			return storage{}, err
		}
		pool, err := pg.NewPool(ctx, a.cfg.DB.DSN, pg.DefaultPoolOptions())
		if err != nil {
			return storage{}, err
		}
		a.log.Info("storage ready", slog.String("driver", "postgres"))
		return storage{
			health: func(ctx context.Context) error { return pg.Ping(ctx, pool) },
			close:  pool.Close,
		}, nil
	case "sqlite":
		db, err := sqlite.NewDB(ctx, a.cfg.DB.DSN, sqlite.DefaultDBOptions())
		if err != nil {
			return storage{}, err
		}
		a.log.Info("storage ready", slog.String("driver", "sqlite"), slog.String("path", a.cfg.DB.DSN))
		return storage{
			health: func(ctx context.Context) error { return sqlite.Ping(ctx, db) },
			close:  func() { _ = db.Close() },
		}, nil
	case "":
		a.log.Info("running without storage")
		return storage{close: func() {}}, nil
	default:
		return storage{}, fmt.Errorf("unknown database driver %q", a.cfg.DB.Driver)
	}
}
