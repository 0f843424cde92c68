package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/jonathan/pts-radar/internal/config"
	"github.com/jonathan/pts-radar/internal/logger"
	"github.com/jonathan/pts-radar/internal/pipeline"
)

// DefaultShutdownTimeout bounds graceful shutdown.
const DefaultShutdownTimeout = 15 * time.Second

// Config holds server settings
type Config struct {
	Port              int
	RequestsPerMinute int
	// Defaults fill query parameters the client leaves out
	Defaults        config.DefaultsConfig
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
	Debug           bool
}

// Server is the HTTP API server
type Server struct {
	router   *gin.Engine
	server   *http.Server
	runner   *pipeline.Runner
	gatherer prometheus.Gatherer
	logger   logger.Logger
	config   Config

	// runMu serializes runs; the runner's collaborators are not shared safely
	runMu sync.Mutex
}

// New creates a server. A nil gatherer serves the default Prometheus registry.
func New(cfg Config, runner *pipeline.Runner, gatherer prometheus.Gatherer, log logger.Logger) *Server {
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = config.DefaultRequestsPerMinute
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	if log == nil {
		log = logger.NewNop()
	}

	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		runner:   runner,
		gatherer: gatherer,
		logger:   log,
		config:   cfg,
	}

	router := gin.New()
	router.Use(RecoveryMiddleware(log))
	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware(log))
	router.Use(CORSMiddleware(cfg.AllowedOrigins))
	s.setupRoutes(router)
	s.router = router

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) setupRoutes(router *gin.Engine) {
	router.GET("/health", s.handleHealth)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	limiter := rate.NewLimiter(rate.Every(time.Minute/time.Duration(s.config.RequestsPerMinute)), s.config.RequestsPerMinute)
	api := router.Group("/api/v1")
	api.Use(RateLimitMiddleware(limiter, s.config.RequestsPerMinute, s.logger))
	api.GET("/surges", s.handleSurges)
	api.GET("/surges/stream", s.handleSurgesStream)
}

// Handler returns the HTTP handler with all routes and middleware.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server",
			logger.String("address", s.server.Addr),
			logger.Int("requests_per_minute", s.config.RequestsPerMinute),
		)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server error: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server", logger.Duration("timeout", s.config.ShutdownTimeout))
	//nolint:contextcheck // ctx is already cancelled; shutdown needs a fresh deadline
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	s.logger.Info("HTTP server stopped gracefully")
	return <-errCh
}
