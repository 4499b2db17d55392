package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/disputekit/disputekit-server/internal/domain"
	"github.com/disputekit/disputekit-server/internal/records"
)

func TestConfigFrom(t *testing.T) {
	cfg := ConfigFrom(domain.DatabaseConfig{
		Host:            "db",
		Port:            5433,
		Database:        "disputekit",
		Username:        "app",
		Password:        "secret",
		SSLMode:         "require",
		MaxOpenConns:    4,
		MaxIdleConns:    10,
		ConnMaxLifetime: time.Minute,
	})

	assert.Equal(t, "db", cfg.Host)
	assert.Equal(t, 5433, cfg.Port)
	assert.Equal(t, int32(4), cfg.MaxConns)
	assert.Equal(t, int32(4), cfg.MinConns, "min conns never exceed max conns")
	assert.Equal(t, time.Minute, cfg.MaxConnLife)
	assert.Equal(t, "require", cfg.SSLMode)
}

func TestDatabaseConnection(t *testing.T) {
	if os.Getenv("DISPUTEKIT_CONTAINER_TESTS") == "" {
		t.Skip("DISPUTEKIT_CONTAINER_TESTS not set, skipping container tests")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate PostgreSQL container: %v", err)
		}
	}()

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	config := Config{
		Host:        host,
		Port:        port.Int(),
		Database:    "testdb",
		Username:    "testuser",
		Password:    "testpass",
		MaxConns:    10,
		MinConns:    2,
		MaxConnLife: time.Hour,
		MaxConnIdle: time.Minute * 30,
		SSLMode:     "disable",
	}

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	db, err := NewConnection(ctx, config, logger)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Health(ctx))
	assert.NotZero(t, db.Stats().TotalConns())

	migrationsPath, err := filepath.Abs("../../migrations")
	require.NoError(t, err)
	url := fmt.Sprintf("postgres://testuser:testpass@%s:%d/testdb?sslmode=disable", host, port.Int())

	runner, err := NewMigrationRunner(url, migrationsPath, logger)
	require.NoError(t, err)
	defer runner.Close()

	require.NoError(t, runner.Up(ctx))
	require.NoError(t, runner.Up(ctx), "second up is a no-op")
	version, dirty, err := runner.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)

	store, err := records.NewPostgresStore(db.OpenDB())
	require.NoError(t, err)

	session := &records.DisputeSession{
		SessionID:    "s1",
		Merchant:     "Acme Corp",
		Network:      "visa",
		ReasonCode:   "13.1",
		StrategyTips: []string{"Keep the tracking number"},
	}
	require.NoError(t, store.RecordSession(ctx, session))
	require.NoError(t, store.UpdateOutcome(ctx, "s1", records.OutcomeWon))
	require.NoError(t, store.GrantEntitlement(ctx, "pat@example.com"))

	sessions, err := store.ListSessions(ctx, records.Filter{Merchant: "acme"})
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, records.OutcomeWon, sessions[0].Outcome)
	assert.Equal(t, []string{"Keep the tracking number"}, sessions[0].StrategyTips)

	entitled, err := store.IsEntitled(ctx, "pat@example.com")
	require.NoError(t, err)
	assert.True(t, entitled)

	require.NoError(t, runner.Down(ctx))
}
