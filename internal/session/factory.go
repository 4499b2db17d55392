package session

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/disputekit/disputekit-server/internal/domain"
)

// NewStore builds the configured session backend.
func NewStore(ctx context.Context, cfg domain.SessionConfig, logger *logrus.Logger) (domain.IntakeStore, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemoryStore(cfg.MemoryMaxItems, cfg.TTL), nil
	case "redis":
		return NewRedisStore(ctx, RedisConfigFrom(cfg), logger)
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Backend)
	}
}
