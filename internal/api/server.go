// Package api exposes document ingestion, expense lookup and
// reconciliation runs over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eshaffer321/receipt-reconciler/internal/api/handlers"
	"github.com/eshaffer321/receipt-reconciler/internal/api/middleware"
	"github.com/eshaffer321/receipt-reconciler/internal/application/service"
	"github.com/eshaffer321/receipt-reconciler/internal/infrastructure/storage"
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
		AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
	}
}

// Server is the HTTP API server.
type Server struct {
	config     Config
	router     *gin.Engine
	httpServer *http.Server
	logger     *slog.Logger
	repo       storage.Repository
	ingest     *service.IngestService
	reconcile  *service.ReconcileService
}

// NewServer creates a new API server.
func NewServer(cfg Config, repo storage.Repository, ingest *service.IngestService, reconcile *service.ReconcileService, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		config:    cfg,
		router:    gin.New(),
		logger:    logger,
		repo:      repo,
		ingest:    ingest,
		reconcile: reconcile,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures global middleware.
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())

	corsConfig := middleware.DefaultCORSConfig()
	if len(s.config.AllowedOrigins) > 0 {
		corsConfig.AllowedOrigins = s.config.AllowedOrigins
	}
	s.router.Use(middleware.CORS(corsConfig))

	s.router.Use(middleware.Logging(s.logger, "/health"))
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check (no /api prefix - for load balancers)
	s.router.GET("/health", handlers.NewHealthHandler().Get)

	api := s.router.Group("/api")
	{
		documents := handlers.NewDocumentsHandler(s.ingest)
		api.POST("/documents", documents.Create)

		formats := handlers.NewFormatsHandler(s.ingest)
		api.GET("/formats", formats.List)

		expenses := handlers.NewExpensesHandler(s.repo)
		api.GET("/expenses", expenses.List)
		api.GET("/expenses/:id", expenses.Get)

		runs := handlers.NewRunsHandler(s.reconcile)
		api.POST("/reconcile", runs.Create)
		api.GET("/runs", runs.List)
		api.GET("/runs/:id", runs.Get)
		api.GET("/runs/:id/export", runs.Export)
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
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

// Router returns the gin engine for testing.
func (s *Server) Router() http.Handler {
	return s.router
}
