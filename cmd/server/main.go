package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/disputekit/disputekit-server/internal/api"
	"github.com/disputekit/disputekit-server/internal/app"
	"github.com/disputekit/disputekit-server/internal/config"
	"github.com/disputekit/disputekit-server/internal/logging"
)

func main() {
	// Load configuration
	configManager, err := config.NewManager()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate configuration
	if err := configManager.Validate(); err != nil {
		logrus.Fatalf("Configuration validation failed: %v", err)
	}

	cfg := configManager.GetConfig()
	logger := logging.New(cfg.Logging)
	logger.WithFields(logrus.Fields{
		"host":        cfg.Server.Host,
		"port":        cfg.Server.Port,
		"environment": cfg.Environment,
	}).Info("Starting dispute server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize: %v", err)
	}
	defer application.Close()

	// /ready answers 503 until the first load publishes a snapshot.
	go func() {
		if _, err := application.LoadCatalog(ctx); err != nil {
			logger.WithError(err).Error("Initial catalog load failed")
		}
	}()

	// Handle shutdown and reload signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	go func() {
		for sig := range sigChan {
			if sig == syscall.SIGHUP {
				logger.Info("Reload signal received, reloading catalog")
				if _, err := application.LoadCatalog(ctx); err != nil {
					logger.WithError(err).Error("Catalog reload failed")
				}
				continue
			}
			logger.Info("Shutdown signal received, gracefully shutting down...")
			cancel()
			return
		}
	}()

	server := api.NewServer(configManager, application.Service, logger)
	if err := server.Start(ctx); err != nil {
		logger.Fatalf("Server failed to start: %v", err)
	}

	logger.Info("Server stopped")
}
