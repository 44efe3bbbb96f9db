// Package main is the entry point for the Mobbin proxy server.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/appscout/mobbin-proxy/internal/api"
	"github.com/appscout/mobbin-proxy/internal/config"
	"github.com/appscout/mobbin-proxy/internal/mobbin"
	"github.com/appscout/mobbin-proxy/pkg/logger"
)

func main() {
	// Load configuration; a missing API key is fatal at startup, never a
	// per-request error.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Log configuration (without sensitive data)
	log.Printf("Upstream config: BaseURL=%s, Timeout=%s", cfg.Upstream.BaseURL, cfg.Upstream.RequestTimeout)
	log.Printf("Server config: Address=%s", cfg.Server.Address)

	// Initialize logger
	logLevel := "info"
	if cfg.LogLevel >= 5 {
		logLevel = "debug"
	}

	if err := logger.Initialize(logLevel, !cfg.Environment.IsProduction()); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// One client instance for the process lifetime; handlers share it.
	client, err := mobbin.New(&cfg.Upstream)
	if err != nil {
		logger.Fatal("Failed to create Mobbin client: %v", err)
	}
	if client.HasSession() {
		logger.Info("Client primed with a pre-existing session token")
	}

	// Setup API router
	router := api.SetupRouter(client, cfg)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Upstream.RequestTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Starting Mobbin proxy server on %s", cfg.Server.Address)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Graceful shutdown
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}
