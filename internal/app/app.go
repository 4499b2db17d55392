// Package app wires configuration into the catalog, stores and dispute
// service shared by every entrypoint.
package app

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/disputekit/disputekit-server/internal/catalog"
	"github.com/disputekit/disputekit-server/internal/database"
	"github.com/disputekit/disputekit-server/internal/domain"
	"github.com/disputekit/disputekit-server/internal/matcher"
	"github.com/disputekit/disputekit-server/internal/records"
	"github.com/disputekit/disputekit-server/internal/service"
	"github.com/disputekit/disputekit-server/internal/session"
)

// App holds the long-lived components built from a Config.
type App struct {
	Catalog  *catalog.Store
	Sessions domain.IntakeStore
	Records  records.Store
	Service  *service.DisputeService
	logger   *logrus.Logger
	closers  []func()
}

// New builds every component. The catalog is not loaded; call LoadCatalog.
func New(ctx context.Context, cfg *domain.Config, logger *logrus.Logger) (*App, error) {
	a := &App{logger: logger}

	loader := catalog.NewLoader(cfg.Catalog.DataDir, cfg.Catalog.Networks, logger)
	a.Catalog = catalog.NewStore(loader, logger)

	sessions, err := session.NewStore(ctx, cfg.Session, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create session store: %w", err)
	}
	a.Sessions = sessions
	if closer, ok := sessions.(interface{ Close() error }); ok {
		a.closers = append(a.closers, func() { _ = closer.Close() })
	}

	store, err := a.openRecords(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Records = store
	a.closers = append(a.closers, func() { _ = store.Close() })

	a.Service = service.NewDisputeService(a.Catalog, a.Sessions, logger,
		service.WithRecords(store),
		service.WithSearchLimit(cfg.Catalog.StrategySearchLimit),
		service.WithMatcherOptions(matcher.Options{
			FuzzyThreshold: cfg.Catalog.FuzzyThreshold,
			CacheSize:      cfg.Catalog.FuzzyCacheSize,
		}),
	)
	return a, nil
}

func (a *App) openRecords(ctx context.Context, cfg *domain.Config) (records.Store, error) {
	switch cfg.Records.Backend {
	case "postgres":
		db, err := database.NewConnection(ctx, database.ConfigFrom(cfg.Database), a.logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		store, err := records.NewPostgresStore(db.OpenDB())
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres records store: %w", err)
		}
		return store, nil
	case "sqlite", "":
		store, err := records.NewSQLiteStore(cfg.Records.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite records store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown records backend: %s", cfg.Records.Backend)
	}
}

// LoadCatalog loads or reloads the catalog. Degraded parts are reported in
// the returned snapshot's Failures.
func (a *App) LoadCatalog(ctx context.Context) (*catalog.Snapshot, error) {
	snap, err := a.Catalog.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return snap, nil
}

// Close releases every store in reverse order of creation.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
