// Package main is the entry point for the Maya admin dashboard API server.
//
// It loads configuration from the environment, connects to PostgreSQL, wires
// the Razorpay client and the domain services, builds the HTTP server with
// the core chassis (middleware, routing, health check), and listens until a
// shutdown signal arrives.
//
// Graceful shutdown is handled via OS signal interception (SIGINT, SIGTERM).
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mayadmin/internal/api/handlers"
	"mayadmin/internal/config"
	"mayadmin/internal/core"
	"mayadmin/internal/db"
	"mayadmin/internal/external"
	"mayadmin/internal/payments"
	"mayadmin/internal/stats"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// run encapsulates the startup lifecycle so that main() can cleanly exit on error.
func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("mayadmin API starting",
		"environment", cfg.Environment,
		"port", cfg.Server.Port,
	)

	// Database pool. Startup fails fast if the database is unreachable.
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}

	// Repositories.
	deviceRepo := db.NewDeviceRepo(pool)
	sessionRepo := db.NewSessionRepo(pool)
	supportRepo := db.NewSupportRepo(pool)
	aliasRepo := db.NewAliasRepo(pool)

	// Razorpay client and payment service.
	razorpayClient := external.NewRazorpayClient(
		&http.Client{Timeout: 30 * time.Second},
		external.RazorpayClientConfig{
			KeyID:     cfg.Razorpay.KeyID,
			KeySecret: cfg.Razorpay.KeySecret.Unmask(),
			BaseURL:   cfg.Razorpay.BaseURL,
			Logger:    logger,
		},
	)
	paymentSvc := payments.NewService(razorpayClient, deviceRepo, cfg.Razorpay, logger)
	statsSvc := stats.NewService(deviceRepo, sessionRepo, paymentSvc, logger)

	// Build the server and register the versioned handlers.
	srv, err := core.NewServer(cfg, logger)
	if err != nil {
		pool.Close()
		return fmt.Errorf("creating server: %w", err)
	}
	srv.OnShutdown(pool.Close)

	statsHandler := handlers.NewStatsHandler(statsSvc, deviceRepo, logger)
	deviceHandler := handlers.NewDeviceHandler(deviceRepo, aliasRepo, srv.Validator, logger)
	sessionHandler := handlers.NewSessionHandler(sessionRepo, logger)
	supportHandler := handlers.NewSupportHandler(supportRepo, logger)
	paymentHandler := handlers.NewPaymentHandler(paymentSvc, logger)

	srv.V1RouteRegistrars = append(srv.V1RouteRegistrars,
		statsHandler.RegisterRoutes,
		deviceHandler.RegisterRoutes,
		sessionHandler.RegisterRoutes,
		supportHandler.RegisterRoutes,
		paymentHandler.RegisterRoutes,
	)

	// Mount all routes (middleware chain + versioned endpoints + health).
	srv.MountRoutes()

	return runHTTPServer(srv, cfg, logger)
}

// runHTTPServer starts the server in standard HTTP mode with graceful shutdown.
func runHTTPServer(srv *core.Server, cfg *config.Config, logger *slog.Logger) error {
	addr := ":" + cfg.Server.Port

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)

	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	logger.Info("initiating graceful shutdown")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	// Release server resources (DB pool, caches).
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server resource shutdown error", "error", err)
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped cleanly")
	return nil
}

// newLogger creates a structured slog.Logger configured for the given log level.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	return slog.New(handler)
}
