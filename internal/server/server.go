// Package server hosts the public API: a gorilla/mux router behind request-scoped middleware.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/fd1az/slippage-sentinel/internal/config"
	"github.com/fd1az/slippage-sentinel/internal/logger"
)

const shutdownTimeout = 10 * time.Second

// Server represents the API server.
type Server struct {
	router *mux.Router
	server *http.Server
	config config.ServerConfig
	logger logger.LoggerInterface
}

// NewRouter returns a router with the standard middleware chain installed.
func NewRouter(cfg config.ServerConfig, log logger.LoggerInterface) *mux.Router {
	router := mux.NewRouter()

	router.Use(RequestID)
	router.Use(Logging(log))
	router.Use(Recover(log))
	router.Use(Timeout(cfg.RequestTimeout))

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	})

	return router
}

// New creates a server for router.
func New(cfg config.ServerConfig, router *mux.Router, log logger.LoggerInterface) *Server {
	return &Server{
		router: router,
		config: cfg,
		logger: log,
		server: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       60 * time.Second,
		},
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("port %d is busy or unavailable: %w", s.config.Port, err)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "api server listening", "addr", listener.Addr().String())
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info(context.Background(), "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("api server shutdown: %w", err)
	}
	return nil
}
