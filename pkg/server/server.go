package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/i-zyk/deepseek-zyk-workers/pkg/config"
	"github.com/i-zyk/deepseek-zyk-workers/pkg/providers"
	"github.com/i-zyk/deepseek-zyk-workers/pkg/proxy"
	"github.com/i-zyk/deepseek-zyk-workers/pkg/proxy/handlers"
	"github.com/i-zyk/deepseek-zyk-workers/pkg/proxy/middleware"
	"github.com/i-zyk/deepseek-zyk-workers/pkg/proxy/types"
	"github.com/i-zyk/deepseek-zyk-workers/pkg/telemetry/metrics"
)

// Server is the completion HTTP server.
type Server struct {
	config     *config.Config
	seen       *config.Config // last config passed to Reload, guarded by mu
	backend    *Backend
	recorder   handlers.Recorder
	metrics    *metrics.Collector
	httpServer *http.Server
	listener   net.Listener
	mu         sync.RWMutex
	isRunning  bool
	ready      chan struct{}
	readyOnce  sync.Once
	logger     *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithRecorder records every completion in the usage ledger.
func WithRecorder(r handlers.Recorder) Option {
	return func(s *Server) { s.recorder = r }
}

// WithMetrics exposes /metrics and records HTTP and provider health metrics.
func WithMetrics(c *metrics.Collector) Option {
	return func(s *Server) { s.metrics = c }
}

// WithListener serves on an existing listener instead of ListenAddress.
func WithListener(l net.Listener) Option {
	return func(s *Server) { s.listener = l }
}

// NewServer creates a server that answers completions through backend.
func NewServer(cfg *config.Config, backend *Backend, opts ...Option) *Server {
	s := &Server{
		config:  cfg,
		seen:    cfg,
		backend: backend,
		ready:   make(chan struct{}),
		logger:  slog.Default().With("component", "server"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start serves until ctx is cancelled or the listener fails, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}

	cfg := s.config.Server
	if s.listener == nil {
		l, err := net.Listen("tcp", cfg.ListenAddress)
		if err != nil {
			s.mu.Unlock()
			return fmt.Errorf("failed to listen on %s: %w", cfg.ListenAddress, err)
		}
		s.listener = l
	}

	s.httpServer = &http.Server{
		Handler:        s.Handler(),
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}
	s.isRunning = true
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting completion server", "address", s.listener.Addr().String())
		if err := s.httpServer.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()
	s.readyOnce.Do(func() { close(s.ready) })

	healthCtx, stopHealth := context.WithCancel(ctx)
	defer stopHealth()
	go s.reportHealth(healthCtx)

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
		return err
	}
}

// Ready is closed once the server accepts connections.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr returns the listen address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Shutdown drains in-flight requests within ShutdownTimeout.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	timeout := s.config.Server.ShutdownTimeout
	s.logger.Info("initiating graceful shutdown", "timeout", timeout.String())

	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var shutdownErr error
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("error during server shutdown", "error", err)
		shutdownErr = fmt.Errorf("server shutdown error: %w", err)
	}
	s.isRunning = false

	s.logger.Info("completion server stopped")
	return shutdownErr
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Reload applies the reloadable parts of cfg: retry policy and request
// defaults. Server and provider settings need a restart; a change to them
// is warned about once, on the reload that introduces it.
func (s *Server) Reload(cfg *config.Config) {
	s.mu.Lock()
	prev := s.seen
	s.seen = cfg
	s.mu.Unlock()

	if cfg.Provider.TransportConfig().BaseURL != prev.Provider.TransportConfig().BaseURL ||
		cfg.Provider.Type != prev.Provider.Type {
		s.logger.Warn("provider settings changed; restart to apply")
	}
	if cfg.Server.ListenAddress != prev.Server.ListenAddress {
		s.logger.Warn("server settings changed; restart to apply")
	}

	s.backend.Apply(cfg)
	s.logger.Info("configuration reloaded",
		"max_retries", cfg.Retry.MaxRetries,
		"base_delay", cfg.Retry.BaseDelay,
		"max_delay", cfg.Retry.MaxDelay,
	)
}

// Handler returns the routed handler with the full middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/v1/completions", handlers.NewCompletionHandler(s.backend, s.recorder, s.config.Server.MaxBodyBytes))
	mux.Handle("GET /health", handlers.NewHealthHandler())
	mux.Handle("GET /ready", handlers.NewReadyHandler(s.backend))
	if s.metrics != nil && s.config.Telemetry.Metrics.Enabled {
		mux.Handle("GET "+s.config.Telemetry.Metrics.Path, s.metrics.Handler())
	}
	mux.HandleFunc("/", notFound)

	var httpMetrics middleware.HTTPMetrics
	if s.metrics != nil {
		httpMetrics = s.metrics
	}

	return middleware.Chain(mux,
		middleware.RecoveryMiddleware,
		middleware.RequestIDMiddleware,
		middleware.LoggingMiddleware,
		middleware.CORSMiddleware(s.config.Server.CORS),
		middleware.TimeoutMiddleware(s.config.Server.RequestTimeout),
		middleware.MetricsMiddleware(httpMetrics),
	)
}

// reportHealth mirrors the transport's health into the metrics gauge.
func (s *Server) reportHealth(ctx context.Context) {
	if s.metrics == nil {
		return
	}

	interval := s.config.Provider.HealthCheckInterval
	if interval <= 0 {
		interval = providers.DefaultHealthCheckInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		transport := s.backend.Client().Transport()
		s.metrics.UpdateProviderHealth(transport.GetName(), transport.IsHealthy())

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func notFound(w http.ResponseWriter, r *http.Request) {
	_ = proxy.WriteErrorResponse(w, types.NewErrorResponse(http.StatusNotFound, types.ErrorTypeNotFound,
		"no route for "+r.Method+" "+r.URL.Path))
}
