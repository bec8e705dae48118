// Package server exposes the key-value store over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/nimburion/remotestore/pkg/observability/logger"
)

const defaultShutdownTimeout = 30 * time.Second

// Server wraps http.Server with configurable timeouts and graceful lifecycle management.
type Server struct {
	handler http.Handler
	logger  logger.Logger
	config  Config

	mu         sync.Mutex
	httpServer *http.Server
	addr       string
}

// Config holds configuration for the HTTP server.
type Config struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// NewServer creates a new Server instance with the provided configuration.
func NewServer(cfg Config, handler http.Handler, log logger.Logger) *Server {
	if log == nil {
		log = logger.NewNop()
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
	return &Server{
		handler: handler,
		logger:  log,
		config:  cfg,
	}
}

// Addr returns the bound listen address once Start has opened the listener.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Start listens on the configured port and serves until ctx is cancelled,
// then shuts down gracefully. Port 0 picks a free port.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", s.config.Port))
	if err != nil {
		return fmt.Errorf("server failed to start: %w", err)
	}

	srv := &http.Server{
		Handler:      s.handler,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
	s.mu.Lock()
	s.httpServer = srv
	s.addr = listener.Addr().String()
	s.mu.Unlock()

	s.logger.Info("starting server", "addr", s.addr)

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case err, ok := <-errChan:
		if !ok {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown stops accepting connections and waits for in-flight requests,
// bounded by the configured shutdown timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()
	if srv == nil {
		return nil
	}

	s.logger.Info("shutting down server", "addr", s.Addr())

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("server shutdown complete", "addr", s.Addr())
	return nil
}
