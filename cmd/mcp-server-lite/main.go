// Package main runs the dispute MCP server over stdio. It needs no external
// services: the catalog comes from the data directory and records go to SQLite.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/disputekit/disputekit-server/internal/config"
	"github.com/disputekit/disputekit-server/internal/domain"
	"github.com/disputekit/disputekit-server/internal/logging"
	"github.com/disputekit/disputekit-server/internal/mcp"
	"github.com/disputekit/disputekit-server/internal/setup"
)

func main() {
	cfg := config.LoadLiteConfig()

	// stdout carries the MCP protocol, so logs go to stderr.
	logger := logging.New(domain.LoggingConfig{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: "stderr"})

	if len(os.Args) > 1 && os.Args[1] == "setup" {
		path, err := setup.Register(setup.Options{DataDir: cfg.DataDir})
		if err != nil {
			logger.Fatalf("Setup failed: %v", err)
		}
		fmt.Fprintf(os.Stderr, "Registered %s in %s\n", setup.ServerKey, path)
		return
	}

	logger.WithField("data_dir", cfg.DataDir).Info("Starting dispute MCP server (lite)")

	server, err := mcp.NewLiteServer(cfg, mcp.WithLogger(logger))
	if err != nil {
		logger.Fatalf("Failed to create MCP server: %v", err)
	}
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	if err := server.Start(ctx); err != nil && ctx.Err() == nil {
		logger.WithError(err).Error("MCP server failed")
		server.Close()
		os.Exit(1)
	}

	logger.Info("Dispute MCP server (lite) stopped")
}
