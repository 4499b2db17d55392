// Package mcp exposes the dispute operations as MCP tools over stdio.
// The lite server needs no external services: the catalog is read from the
// data directory, sessions live in memory and records in SQLite.
package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/disputekit/disputekit-server/internal/catalog"
	litecfg "github.com/disputekit/disputekit-server/internal/config"
	"github.com/disputekit/disputekit-server/internal/domain"
	"github.com/disputekit/disputekit-server/internal/logging"
	"github.com/disputekit/disputekit-server/internal/matcher"
	"github.com/disputekit/disputekit-server/internal/records"
	"github.com/disputekit/disputekit-server/internal/service"
	"github.com/disputekit/disputekit-server/internal/session"
)

// ServerName identifies the server to MCP clients.
const ServerName = "disputekit-mcp-server-lite"

// LiteServer is a lightweight MCP server that requires no external services.
type LiteServer struct {
	config      *litecfg.LiteConfig
	mcpServer   *mcp.Server
	catalog     *catalog.Store
	service     *service.DisputeService
	recordStore records.Store
	logger      *logrus.Logger
}

// LiteServerOption is a functional option for LiteServer.
type LiteServerOption func(*LiteServer) error

// WithRecordStore sets a custom dispute record store.
func WithRecordStore(store records.Store) LiteServerOption {
	return func(s *LiteServer) error {
		s.recordStore = store
		return nil
	}
}

// WithCatalogStore sets a prepared catalog store instead of loading the
// data directory.
func WithCatalogStore(store *catalog.Store) LiteServerOption {
	return func(s *LiteServer) error {
		s.catalog = store
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *logrus.Logger) LiteServerOption {
	return func(s *LiteServer) error {
		s.logger = logger
		return nil
	}
}

// NewLiteServer creates a new lightweight MCP server instance.
func NewLiteServer(cfg *litecfg.LiteConfig, opts ...LiteServerOption) (*LiteServer, error) {
	server := &LiteServer{
		config: cfg,
		// stdout carries the protocol, so logs go to stderr.
		logger: logging.New(domain.LoggingConfig{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: "stderr"}),
	}

	for _, opt := range opts {
		if err := opt(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if err := cfg.EnsureDataDir(); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	if server.recordStore == nil {
		store, err := records.NewSQLiteStore(cfg.RecordsDBPath())
		if err != nil {
			return nil, fmt.Errorf("failed to create record store: %w", err)
		}
		server.recordStore = store
	}

	if server.catalog == nil {
		loader := catalog.NewLoader(cfg.DataDir, domain.DefaultNetworks, server.logger)
		server.catalog = catalog.NewStore(loader, server.logger)
	}

	server.service = service.NewDisputeService(server.catalog,
		session.NewMemoryStore(cfg.SessionMaxItems, cfg.SessionTTL),
		server.logger,
		service.WithRecords(server.recordStore),
		service.WithMatcherOptions(matcher.Options{FuzzyThreshold: cfg.FuzzyThreshold}),
	)

	server.mcpServer = mcp.NewServer(&mcp.Implementation{
		Name:    ServerName,
		Version: "v1.0.0",
	}, nil)
	server.registerTools()

	server.logger.Info("Lite server initialized successfully")
	return server, nil
}

// Start loads the catalog when needed and serves MCP over stdio until ctx
// is cancelled or the client disconnects.
func (s *LiteServer) Start(ctx context.Context) error {
	s.logger.Info("Starting dispute MCP server (lite)...")

	if !s.catalog.Ready() {
		if _, err := s.catalog.Load(ctx); err != nil {
			return fmt.Errorf("failed to load catalog: %w", err)
		}
	}

	if err := s.mcpServer.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}

// Close cleans up server resources.
func (s *LiteServer) Close() error {
	if s.recordStore != nil {
		if err := s.recordStore.Close(); err != nil {
			s.logger.WithError(err).Error("Failed to close record store")
			return err
		}
	}
	return nil
}

// Service returns the dispute service behind the tools.
func (s *LiteServer) Service() *service.DisputeService {
	return s.service
}
