// Package core provides the API chassis for the Maya admin dashboard. It
// creates the chi router and enforces cross-cutting concerns -- panic
// recovery, request IDs, logging, CORS, and rate limiting -- before requests
// reach domain-specific handlers.
package core

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"mayadmin/internal/config"
)

// RouteRegistrar mounts one handler group onto a router. Domain handler
// packages supply registrars to the entry point, which passes them to the
// Server; this indirection avoids import cycles between core and handlers.
type RouteRegistrar func(chi.Router)

// Server encapsulates the HTTP dependencies of the dashboard API, allowing
// for easy injection during testing.
type Server struct {
	Config    *config.Config
	Logger    *slog.Logger
	Validator *Validator

	// V1RouteRegistrars are mounted under /v1 by MountRoutes.
	V1RouteRegistrars []RouteRegistrar

	// closers are resources released on Shutdown, typically the database pool.
	closers []func()

	router *chi.Mux
}

// NewServer initializes the router and prepares the server for route
// mounting. The caller mounts routes via MountRoutes after registering
// handler registrars; the separation lets tests customize registration.
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}

	return &Server{
		Config:    cfg,
		Logger:    logger,
		Validator: NewValidator(logger),
		router:    chi.NewRouter(),
	}, nil
}

// Handler returns the http.Handler for the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Router returns the underlying chi.Mux for route registration in tests.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// OnShutdown registers a cleanup function to run during Shutdown, in
// registration order.
func (s *Server) OnShutdown(fn func()) {
	s.closers = append(s.closers, fn)
}

// Shutdown releases server-owned resources after the HTTP listener has
// drained.
func (s *Server) Shutdown(ctx context.Context) error {
	s.Logger.Info("server shutdown initiated")
	for _, fn := range s.closers {
		fn()
	}
	s.Logger.Info("server shutdown complete")
	return nil
}
