package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "fieldmatch-backend/internal/api/http"
	"fieldmatch-backend/internal/app"
	"fieldmatch-backend/internal/config"
	"fieldmatch-backend/internal/jobs"
	"fieldmatch-backend/internal/logger"
	"fieldmatch-backend/internal/scheduler"
	"fieldmatch-backend/internal/security"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting FieldMatch backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Storage configuration", "type", cfg.Storage.Type)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := app.OpenBackend(ctx, cfg)
	if err != nil {
		logger.Error("Failed to open storage", "error", err)
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer backend.Close()

	// Deliveries keep running through shutdown so the queue can drain.
	dispatcher := app.NewDispatcher(cfg, backend)
	dispatcher.Start(context.Background())

	matchSvc := app.NewMatchService(cfg, backend, dispatcher)
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer)

	var cronScheduler *scheduler.Scheduler
	if cfg.Scheduler.Embedded {
		cronScheduler, err = scheduler.NewScheduler(jobs.NewJobRunner(matchSvc, cfg))
		if err != nil {
			logger.Error("Failed to create scheduler", "error", err)
			log.Fatalf("Failed to create scheduler: %v", err)
		}
		cronScheduler.Start()
	}

	router := httpapi.NewRouter(matchSvc, tokenManager, backend.Pinger)
	srv := &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           httpapi.WithCORS(router, cfg.Server.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			logger.Error("HTTP server error", "error", err)
		}
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	}

	// Graceful shutdown: stop taking requests, finish jobs, then drain events.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}
	if cronScheduler != nil {
		cronScheduler.Stop()
	}
	dispatcher.Stop()
	logger.Info("Server stopped. Goodbye!")
}
