// Package session stores intake sessions between the intake and letter steps.
package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/disputekit/disputekit-server/internal/domain"
)

// MemoryStore keeps intakes in an expiring in-process LRU.
type MemoryStore struct {
	cache *expirable.LRU[string, domain.Intake]
}

// NewMemoryStore creates a memory store holding at most maxItems intakes for ttl.
func NewMemoryStore(maxItems int, ttl time.Duration) *MemoryStore {
	if maxItems <= 0 {
		maxItems = 1000
	}
	return &MemoryStore{
		cache: expirable.NewLRU[string, domain.Intake](maxItems, nil, ttl),
	}
}

// Save stores a copy of the intake under its session id.
func (s *MemoryStore) Save(_ context.Context, intake domain.Intake) error {
	if strings.TrimSpace(intake.SessionID) == "" {
		return domain.NewValidationError("sessionId", "session id is required", intake.SessionID)
	}
	s.cache.Add(intake.SessionID, intake.Clone())
	return nil
}

// Get returns a copy of the stored intake.
func (s *MemoryStore) Get(_ context.Context, sessionID string) (domain.Intake, error) {
	intake, ok := s.cache.Get(sessionID)
	if !ok {
		return domain.Intake{}, fmt.Errorf("session %s: %w", sessionID, domain.ErrNotFound)
	}
	return intake.Clone(), nil
}

// Len returns the number of live sessions.
func (s *MemoryStore) Len() int {
	return s.cache.Len()
}
