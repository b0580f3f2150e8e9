package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eshaffer321/foodtracker/internal/api"
)

// jobCleanupInterval is how often the server expires stale and old sync jobs.
const jobCleanupInterval = 5 * time.Minute

// RunServe runs the API server until SIGINT or SIGTERM.
func RunServe(ctx context.Context, flags ServeFlags) error {
	cfg := flags.Load()

	app, err := NewApp(ctx, cfg, "api", flags.Verbose)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()
	logger := app.Logger

	apiCfg := api.DefaultConfig()
	apiCfg.Port = cfg.API.Port
	if flags.Port > 0 {
		apiCfg.Port = flags.Port
	}
	if len(cfg.API.AllowedOrigins) > 0 {
		apiCfg.AllowedOrigins = cfg.API.AllowedOrigins
	}

	server := api.NewServer(apiCfg, app.Reports, app.Sync, app.Metrics, logger)

	app.Sync.StartBackgroundCleanup(jobCleanupInterval)
	defer app.Sync.StopBackgroundCleanup()

	// Handle graceful shutdown
	done := make(chan struct{})
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	go func() {
		defer close(done)
		select {
		case <-quit:
			logger.Info("received shutdown signal")
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", slog.Any("error", err))
		}
	}()

	// Start server (blocks until shutdown)
	if err := server.Start(); err != nil {
		return err
	}

	<-done
	logger.Info("server stopped", slog.Int("active_jobs", len(app.Sync.ListActiveSyncJobs())))
	return nil
}
