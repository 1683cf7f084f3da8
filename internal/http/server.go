package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/davidbz/relay/internal/config"
	"github.com/davidbz/relay/internal/http/middleware"
	"github.com/davidbz/relay/internal/observability"
)

// Server serves the relay API.
type Server struct {
	port        int
	handler     *Handler
	middlewares middleware.Middleware
	srv         *http.Server
}

// NewServer creates the HTTP server. Routes are wrapped in middlewares.
func NewServer(
	cfg *config.ServerConfig,
	handler *Handler,
	middlewares middleware.Middleware,
) *Server {
	s := &Server{
		port:        cfg.Port,
		handler:     handler,
		middlewares: middlewares,
	}

	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.Routes(),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}

	return s
}

// Routes returns the mux wrapped in the middleware chain.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/route", s.handler.HandleRoute)
	mux.HandleFunc("GET /v1/providers", s.handler.HandleProviders)
	mux.HandleFunc("POST /v1/cache/cleanup", s.handler.HandleCacheCleanup)
	mux.HandleFunc("POST /v1/cache/invalidate", s.handler.HandleCacheInvalidate)
	mux.HandleFunc("GET /v1/metrics", s.handler.HandleMetrics)
	mux.HandleFunc("GET /health", s.handler.HandleHealth)

	return s.middlewares(mux)
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start(ctx context.Context) error {
	observability.FromContext(ctx).Info("starting HTTP server", observability.Int("port", s.port))

	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	observability.FromContext(ctx).Info("shutting down HTTP server")

	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}
