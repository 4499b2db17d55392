package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/disputekit/disputekit-server/internal/domain"
)

const keyPrefix = "intake:"

// RedisConfig configures the Redis session store.
type RedisConfig struct {
	URL         string
	TTL         time.Duration
	PoolSize    int
	PoolTimeout time.Duration
	MaxRetries  int
}

// RedisConfigFrom maps the session configuration section.
func RedisConfigFrom(cfg domain.SessionConfig) RedisConfig {
	return RedisConfig{
		URL:         cfg.RedisURL,
		TTL:         cfg.TTL,
		PoolSize:    cfg.PoolSize,
		PoolTimeout: cfg.PoolTimeout,
		MaxRetries:  cfg.MaxRetries,
	}
}

// storedIntake is the JSON envelope written to Redis.
type storedIntake struct {
	Intake    domain.Intake `json:"intake"`
	StoredAt  time.Time     `json:"stored_at"`
	ExpiresAt time.Time     `json:"expires_at"`
}

// RedisStore keeps intakes in Redis behind a circuit breaker.
type RedisStore struct {
	client  *redis.Client
	breaker *gobreaker.CircuitBreaker
	ttl     time.Duration
	logger  *logrus.Logger
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg RedisConfig, logger *logrus.Logger) (*RedisStore, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.PoolTimeout > 0 {
		opts.PoolTimeout = cfg.PoolTimeout
	}
	opts.MaxRetries = cfg.MaxRetries

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w: %w", domain.ErrStoreUnavailable, err)
	}

	return newRedisStore(client, cfg.TTL, logger), nil
}

func newRedisStore(client *redis.Client, ttl time.Duration, logger *logrus.Logger) *RedisStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "redis-session",
		MaxRequests: 5,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
		},
		// A missing key is a normal outcome, not a backend failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, redis.Nil)
		},
	})

	return &RedisStore{
		client:  client,
		breaker: breaker,
		ttl:     ttl,
		logger:  logger,
	}
}

// Save writes the intake with the configured TTL.
func (s *RedisStore) Save(ctx context.Context, intake domain.Intake) error {
	if strings.TrimSpace(intake.SessionID) == "" {
		return domain.NewValidationError("sessionId", "session id is required", intake.SessionID)
	}

	now := time.Now()
	payload, err := json.Marshal(storedIntake{
		Intake:    intake,
		StoredAt:  now,
		ExpiresAt: now.Add(s.ttl),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal intake: %w", err)
	}

	_, err = s.breaker.Execute(func() (interface{}, error) {
		return nil, s.client.Set(ctx, keyPrefix+intake.SessionID, payload, s.ttl).Err()
	})
	if err != nil {
		return fmt.Errorf("failed to save session %s: %w: %w", intake.SessionID, domain.ErrStoreUnavailable, err)
	}
	return nil
}

// Get reads an intake. A missing or expired key is domain.ErrNotFound.
func (s *RedisStore) Get(ctx context.Context, sessionID string) (domain.Intake, error) {
	key := keyPrefix + sessionID

	raw, err := s.breaker.Execute(func() (interface{}, error) {
		return s.client.Get(ctx, key).Bytes()
	})
	if errors.Is(err, redis.Nil) {
		return domain.Intake{}, fmt.Errorf("session %s: %w", sessionID, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Intake{}, fmt.Errorf("failed to load session %s: %w: %w", sessionID, domain.ErrStoreUnavailable, err)
	}

	var stored storedIntake
	if err := json.Unmarshal(raw.([]byte), &stored); err != nil {
		s.logger.WithError(err).WithField("session_id", sessionID).Warn("Dropping corrupted session entry")
		s.client.Del(ctx, key)
		return domain.Intake{}, fmt.Errorf("session %s: %w", sessionID, domain.ErrNotFound)
	}
	if time.Now().After(stored.ExpiresAt) {
		s.client.Del(ctx, key)
		return domain.Intake{}, fmt.Errorf("session %s: %w", sessionID, domain.ErrNotFound)
	}
	return stored.Intake, nil
}

// State reports the circuit breaker state.
func (s *RedisStore) State() gobreaker.State {
	return s.breaker.State()
}

// Close closes the Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
