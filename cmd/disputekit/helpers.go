package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/disputekit/disputekit-server/internal/app"
	"github.com/disputekit/disputekit-server/internal/catalog"
	"github.com/disputekit/disputekit-server/internal/config"
	"github.com/disputekit/disputekit-server/internal/domain"
	"github.com/disputekit/disputekit-server/internal/logging"
	"github.com/disputekit/disputekit-server/internal/matcher"
	"github.com/disputekit/disputekit-server/internal/service"
	"github.com/disputekit/disputekit-server/internal/session"
)

func loadConfig() (*config.Manager, error) {
	manager, err := config.NewManager()
	if err != nil {
		return nil, err
	}
	if err := manager.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return manager, nil
}

func newLogger() *logrus.Logger {
	return logging.New(domain.LoggingConfig{
		Level:  viper.GetString("logging.level"),
		Format: "text",
		Output: "stderr",
	})
}

// openCatalogService loads the catalog and returns a service without a
// records store, so nothing is persisted.
func openCatalogService(ctx context.Context) (*service.DisputeService, error) {
	manager, err := loadConfig()
	if err != nil {
		return nil, err
	}
	cfg := manager.GetCatalogConfig()
	logger := newLogger()

	store := catalog.NewStore(catalog.NewLoader(cfg.DataDir, cfg.Networks, logger), logger)
	if _, err := store.Load(ctx); err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	return service.NewDisputeService(store, session.NewMemoryStore(100, time.Hour), logger,
		service.WithSearchLimit(cfg.StrategySearchLimit),
		service.WithMatcherOptions(matcher.Options{
			FuzzyThreshold: cfg.FuzzyThreshold,
			CacheSize:      cfg.FuzzyCacheSize,
		}),
	), nil
}

// openApp builds the full application, including the configured records
// store. Callers must Close it.
func openApp(ctx context.Context) (*app.App, error) {
	manager, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return app.New(ctx, manager.GetConfig(), newLogger())
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
