// Package app assembles storage, locking, services and the HTTP server from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Miandari/dailygrit/internal/core"
	"github.com/Miandari/dailygrit/internal/lock"
	httpProtocol "github.com/Miandari/dailygrit/internal/protocols/http"
	"github.com/Miandari/dailygrit/internal/repository"
	"github.com/Miandari/dailygrit/pkg/config"
	"github.com/Miandari/dailygrit/pkg/database"
	"github.com/Miandari/dailygrit/pkg/logger"
	"github.com/Miandari/dailygrit/pkg/metrics"
	"github.com/Miandari/dailygrit/pkg/utils"
)

// App is a fully wired service instance
type App struct {
	Config   *config.Config
	Store    repository.Store
	Services *core.Services
	Server   *httpProtocol.Server

	closers []func()
}

// New opens the configured store and locker and builds the HTTP server
func New(ctx context.Context, cfg *config.Config, recorder *metrics.Recorder) (*App, error) {
	a := &App{Config: cfg}

	clock, err := Clock(cfg)
	if err != nil {
		return nil, err
	}

	store, err := OpenStore(cfg)
	if err != nil {
		return nil, err
	}
	a.Store = store
	a.closers = append(a.closers, store.Close)

	locker, closeLocker, err := OpenLocker(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.closers = append(a.closers, closeLocker)

	tokens := core.NewTokenService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiration)
	a.Services = core.NewServices(store, locker, clock, recorder, tokens)
	a.Server = httpProtocol.NewServer(cfg, a.Services, store, recorder)

	logger.WithFields(map[string]interface{}{
		"component": "app",
		"storage":   cfg.Storage.Driver,
		"lock":      cfg.Lock.Driver,
		"timezone":  cfg.App.Timezone,
	}).Info("service wired")

	return a, nil
}

// Run serves HTTP until ctx is done, then shuts down within the configured timeout
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				errCh <- fmt.Errorf("http server panic: %v", r)
			}
		}()
		logger.Infof("Starting HTTP server on %s", a.Config.Server.Addr())
		errCh <- a.Server.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return <-errCh
}

// Close releases the store and locker connections in reverse order
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// Clock returns a system clock in the configured timezone
func Clock(cfg *config.Config) (utils.Clock, error) {
	loc, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid app.timezone %q: %w", cfg.App.Timezone, err)
	}
	return utils.SystemClock(loc), nil
}

// OpenStore connects the configured storage driver
func OpenStore(cfg *config.Config) (repository.Store, error) {
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		logger.Warn("Using in-memory storage; data is lost on restart")
		return repository.NewMemoryStore(), nil
	case config.DriverPostgres:
		pool, err := database.NewPGXPool(cfg.Database.ToDatabase())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		logger.Info("Connected to PostgreSQL database")
		return repository.NewPostgresStore(pool), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// OpenLocker returns the participant locker and a func releasing its resources
func OpenLocker(ctx context.Context, cfg *config.Config) (lock.Locker, func(), error) {
	switch cfg.Lock.Driver {
	case config.DriverMemory:
		return lock.NewMemoryLocker(), func() {}, nil
	case config.DriverRedis:
		client, err := lock.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, nil, err
		}
		logger.Infof("Using Redis participant locks at %s", cfg.Redis.Addr)
		return lock.NewRedisLocker(client, cfg.Lock.Prefix, cfg.Lock.TTL), func() { _ = client.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown lock driver %q", cfg.Lock.Driver)
	}
}

// Migrate applies pending SQL migrations through database/sql
func Migrate(ctx context.Context, cfg *config.Config) ([]string, error) {
	if cfg.Storage.Driver != config.DriverPostgres {
		return nil, errors.New("migrations need storage.driver=postgres")
	}

	db, err := database.NewDB(cfg.Database.ToDatabase())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.HealthCheck(ctx); err != nil {
		return nil, fmt.Errorf("database health check failed: %w", err)
	}
	return db.Migrate(ctx)
}
