// Package http exposes the desk bindings over gin.
// It only translates requests into application service calls.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/teciza/desk/internal/application/service"
)

// Logger interface for logging operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	Mode            string
	AllowedOrigins  []string
	// JWTSecret verifies bearer session tokens; empty treats every caller as Guest
	JWTSecret       string
	DefaultLanguage string
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:            "0.0.0.0",
		Port:            8000,
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    15 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		Mode:            gin.ReleaseMode,
		AllowedOrigins:  []string{"*"},
		DefaultLanguage: "en",
	}
}

// Server is the HTTP server adapter
type Server struct {
	config        ServerConfig
	httpServer    *http.Server
	router        *gin.Engine
	formService   service.FormService
	reportService service.ReportService
	health        HealthFunc
	logger        Logger
}

// HealthFunc reports whether the backing components are healthy, with
// details for the response body
type HealthFunc func(ctx context.Context) (bool, interface{})

// NewServer creates a new HTTP server with the given services
func NewServer(
	config ServerConfig,
	formService service.FormService,
	reportService service.ReportService,
	health HealthFunc,
	logger Logger,
) *Server {
	if config.Mode != "" {
		gin.SetMode(config.Mode)
	}

	// route on the escaped path so names holding '/' stay one segment
	router := gin.New()
	router.UseRawPath = true
	router.UnescapePathValues = true

	server := &Server{
		config:        config,
		router:        router,
		formService:   formService,
		reportService: reportService,
		health:        health,
		logger:        logger,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(RequestID())
	s.router.Use(RequestLogger(s.logger))
	s.router.Use(CORS(s.config.AllowedOrigins))
}

func (s *Server) setupRoutes() {
	handlers := NewHandlers(s.formService, s.reportService, s.health, s.logger)

	s.router.GET("/health", handlers.HealthCheck)

	desk := s.router.Group("/api/desk")
	desk.Use(Session(s.config.JWTSecret, s.logger), Language(s.config.DefaultLanguage))
	{
		desk.GET("/form/:doctype/:name", handlers.GetForm)
		desk.GET("/form/:doctype/:name/action/:label", handlers.ActivateAction)
		desk.POST("/form/:doctype/:name/action/:label", handlers.ActivateAction)

		desk.GET("/reports", handlers.ListReports)
		desk.GET("/report/:report/filters", handlers.GetReportFilters)
	}
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         s.Address(),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", "address", s.httpServer.Addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", "error", err)
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	timeout := s.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Address returns the server address
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}
