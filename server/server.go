// Package server wires the gateway together and runs it over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/teilomillet/chatintel/config"
	"github.com/teilomillet/chatintel/server/handlers"
	"github.com/teilomillet/chatintel/server/metrics"
	"github.com/teilomillet/chatintel/server/processing"
	"github.com/teilomillet/chatintel/server/provider"
	"github.com/teilomillet/chatintel/server/routing"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Server represents the HTTP server
type Server struct {
	httpServer      *http.Server
	handler         http.Handler
	logger          *zap.Logger
	shutdownTimeout time.Duration

	watcher config.Watcher
	level   *zap.AtomicLevel
}

// New assembles the gateway around completer: processor, handlers, router
// and, when enabled, metrics. Pass m to share a registry with the
// completer's instrumentation; nil creates one if metrics are enabled.
func New(cfg *config.Config, completer provider.Completer, logger *zap.Logger, m *metrics.Metrics) (*Server, error) {
	if m == nil && cfg.Metrics.Enabled {
		m = metrics.NewMetrics()
	}

	processor, err := processing.NewProcessor(&cfg.Processing, completer, logger)
	if err != nil {
		return nil, fmt.Errorf("create processor: %w", err)
	}

	gateway := handlers.NewGatewayHandler(processor, logger)
	router := routing.NewRouter(cfg, gateway, m, logger)

	return NewServer(cfg.Server, router, logger), nil
}

// NewServer creates a server that serves handler with the timeouts of cfg.
func NewServer(cfg config.ServerConfig, handler http.Handler, logger *zap.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:           fmt.Sprintf(":%d", cfg.Port),
			Handler:        handler,
			ReadTimeout:    cfg.ReadTimeout,
			WriteTimeout:   cfg.WriteTimeout,
			MaxHeaderBytes: cfg.MaxHeaderBytes,
		},
		handler:         handler,
		logger:          logger,
		shutdownTimeout: cfg.ShutdownTimeout,
	}
}

// Handler returns the root handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// WatchConfig applies configuration reloads from w while the server runs.
// Only the log level is applied live; other settings need a restart.
func (s *Server) WatchConfig(w config.Watcher, level *zap.AtomicLevel) {
	s.watcher = w
	s.level = level
}

// Start serves until ctx is cancelled, then shuts down gracefully within
// the configured shutdown timeout.
func (s *Server) Start(ctx context.Context) error {
	errChan := make(chan error, 1)

	go func() {
		s.logger.Info("Server started", zap.String("address", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	var updates <-chan *config.Config
	if s.watcher != nil {
		updates = s.watcher.Subscribe()
	}

	for {
		select {
		case <-ctx.Done():
			return s.shutdown()

		case err := <-errChan:
			return err

		case cfg, ok := <-updates:
			if !ok {
				updates = nil
				continue
			}
			s.applyConfig(cfg)
		}
	}
}

func (s *Server) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	s.logger.Info("Shutting down server", zap.Duration("timeout", s.shutdownTimeout))
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("error during server shutdown: %w", err)
	}
	return nil
}

func (s *Server) applyConfig(cfg *config.Config) {
	if s.level == nil {
		return
	}

	lvl, err := zapcore.ParseLevel(cfg.Logging.Level)
	if err != nil {
		s.logger.Warn("Ignoring invalid log level from reloaded config",
			zap.String("level", cfg.Logging.Level),
			zap.Error(err),
		)
		return
	}
	if lvl != s.level.Level() {
		s.level.SetLevel(lvl)
		s.logger.Info("Log level updated", zap.String("level", lvl.String()))
	}
}
