package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/eshaffer321/foodtracker/internal/adapters/providers"
	"github.com/eshaffer321/foodtracker/internal/application/service"
	"github.com/eshaffer321/foodtracker/internal/infrastructure/config"
	"github.com/eshaffer321/foodtracker/internal/infrastructure/logging"
	"github.com/eshaffer321/foodtracker/internal/infrastructure/metrics"
	"github.com/eshaffer321/foodtracker/internal/infrastructure/storage"
)

// App holds the wired components shared by the commands.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Location *time.Location
	Registry *providers.Registry
	Store    *storage.OrderStore
	Metrics  *metrics.Registry
	Sync     *service.SyncService
	Reports  *service.ReportService
}

// NewApp opens storage and builds the registry and services from cfg.
// system tags every log line.
func NewApp(ctx context.Context, cfg *config.Config, system string, verbose bool) (*App, error) {
	loggingCfg := cfg.Observability.Logging
	if verbose {
		loggingCfg.Level = "debug"
	}
	logger := logging.NewLoggerWithSystem(loggingCfg, system)

	loc, err := cfg.Analytics.Location()
	if err != nil {
		return nil, err
	}

	registry, err := NewRegistry(cfg, loc, logger)
	if err != nil {
		return nil, err
	}

	kv, err := storage.Open(ctx, cfg.Storage.Backend, cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s store at %s: %w", cfg.Storage.Backend, cfg.Storage.Path, err)
	}
	store := storage.NewOrderStore(kv).WithLogger(logger)

	reg := metrics.NewRegistry()
	logger.Debug("storage ready",
		slog.String("backend", cfg.Storage.Backend),
		slog.String("path", cfg.Storage.Path),
		slog.Any("platforms", registry.List()),
	)

	return &App{
		Config:   cfg,
		Logger:   logger,
		Location: loc,
		Registry: registry,
		Store:    store,
		Metrics:  reg,
		Sync:     service.NewSyncService(registry, store, reg, logger),
		Reports:  service.NewReportService(registry, store, loc, logger),
	}, nil
}

// Close releases the store.
func (a *App) Close() error {
	if a.Store == nil {
		return nil
	}
	return a.Store.Close()
}

// ExitCode maps a command error to a process exit status: 2 for bad input,
// 3 for an expired session, 1 otherwise.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, providers.ErrAuthRequired):
		return 3
	case errors.Is(err, providers.ErrUnknownPlatform),
		errors.Is(err, service.ErrInvalidRange),
		errors.Is(err, ErrNoPlatforms),
		errors.Is(err, storage.ErrUnknownBackend):
		return 2
	default:
		return 1
	}
}
