// Package main is the entry point for the Calendraft server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Leigh-Chr/calendraft-sub003/internal/config"
	"github.com/Leigh-Chr/calendraft-sub003/internal/database"
	"github.com/Leigh-Chr/calendraft-sub003/internal/server"
	"github.com/Leigh-Chr/calendraft-sub003/internal/util"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	util.SetDefaultLogger(logger)

	logger.Info("Starting Calendraft",
		"version", "1.0.0",
		"port", cfg.Server.Port,
	)

	// Open database
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	logger.Info("Database initialized",
		"path", cfg.Database.Path,
	)

	srv := server.New(cfg, db)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      srv.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening",
			"addr", httpServer.Addr,
			"base_url", cfg.Server.BaseURL,
		)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Start background workers
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := srv.StartBackgroundWorkers(ctx); err != nil {
		return fmt.Errorf("failed to start background workers: %w", err)
	}

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("Received shutdown signal", "signal", sig.String())
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	}

	// Graceful shutdown
	logger.Info("Shutting down gracefully...")
	cancel()
	srv.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Server stopped")
	return nil
}
