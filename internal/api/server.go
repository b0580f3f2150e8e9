// Package api serves the sync trigger, sync jobs, stored orders, analytics
// and Prometheus metrics over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eshaffer321/foodtracker/internal/api/handlers"
	"github.com/eshaffer321/foodtracker/internal/api/middleware"
	"github.com/eshaffer321/foodtracker/internal/application/service"
	"github.com/eshaffer321/foodtracker/internal/infrastructure/metrics"
)

// Config holds API server configuration.
type Config struct {
	Port           int
	AllowedOrigins []string
}

// DefaultConfig returns sensible defaults for the API server.
func DefaultConfig() Config {
	return Config{
		Port:           8085,
		AllowedOrigins: middleware.DefaultCORSConfig().AllowedOrigins,
	}
}

// Server is the HTTP API server.
type Server struct {
	config      Config
	router      *gin.Engine
	httpServer  *http.Server
	logger      *slog.Logger
	reports     *service.ReportService
	syncService *service.SyncService
	metrics     *metrics.Registry
}

// NewServer creates a new API server.
// If syncService is nil, sync endpoints will not be available; if reg is
// nil, /metrics is not served.
func NewServer(cfg Config, reports *service.ReportService, syncService *service.SyncService, reg *metrics.Registry, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		config:      cfg,
		router:      gin.New(),
		logger:      logger,
		reports:     reports,
		syncService: syncService,
		metrics:     reg,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures global middleware.
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())

	s.router.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: s.config.AllowedOrigins,
	}))

	s.router.Use(middleware.Logging(s.logger))
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check (no /api prefix - for load balancers)
	s.router.GET("/health", handlers.NewHealthHandler().Get)

	if s.metrics != nil {
		s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	api := s.router.Group("/api")
	{
		platformsHandler := handlers.NewPlatformsHandler(s.reports, s.syncService)
		api.GET("/platforms", platformsHandler.List)

		ordersHandler := handlers.NewOrdersHandler(s.reports)
		api.GET("/platforms/:platform/orders", ordersHandler.List)

		analyticsHandler := handlers.NewAnalyticsHandler(s.reports)
		api.GET("/platforms/:platform/analytics", analyticsHandler.Get)

		if s.syncService != nil {
			runsHandler := handlers.NewRunsHandler(s.syncService)
			api.GET("/platforms/:platform/runs", runsHandler.List)

			syncHandler := handlers.NewSyncHandler(s.syncService)
			api.POST("/sync", syncHandler.Sync)
			api.POST("/sync/jobs", syncHandler.StartJob)
			api.GET("/sync/jobs", syncHandler.ListJobs)
			api.GET("/sync/jobs/active", syncHandler.ListActiveJobs)
			api.GET("/sync/jobs/:id", syncHandler.GetJob)
			api.DELETE("/sync/jobs/:id", syncHandler.CancelJob)
		}
	}
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	s.httpServer = &http.Server{
		Addr:        addr,
		Handler:     s.router,
		ReadTimeout: 15 * time.Second,
		// POST /api/sync holds the request open for the whole session.
		WriteTimeout: 15 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting API server", "addr", addr)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")

	if s.httpServer == nil {
		return nil
	}

	return s.httpServer.Shutdown(ctx)
}

// Router returns the HTTP handler for testing.
func (s *Server) Router() http.Handler {
	return s.router
}
