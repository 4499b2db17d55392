package catalog

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/disputekit/disputekit-server/internal/domain"
)

// SnapshotLoader produces a fresh Snapshot.
type SnapshotLoader interface {
	Load(ctx context.Context) (*Snapshot, error)
}

// Store publishes the current Snapshot. Until the first load completes,
// Snapshot returns domain.ErrNotReady and Wait blocks.
type Store struct {
	loader    SnapshotLoader
	current   atomic.Pointer[Snapshot]
	ready     chan struct{}
	readyOnce sync.Once
	mu        sync.Mutex
	logger    *logrus.Logger
}

// NewStore creates an empty, not-ready store.
func NewStore(loader SnapshotLoader, logger *logrus.Logger) *Store {
	return &Store{
		loader: loader,
		ready:  make(chan struct{}),
		logger: logger,
	}
}

// NewStaticStore creates a store that is already ready with snap.
func NewStaticStore(snap *Snapshot, logger *logrus.Logger) *Store {
	s := NewStore(nil, logger)
	s.publish(snap)
	return s
}

// Load runs the loader and publishes the result. Calling it again reloads;
// readers holding the previous snapshot keep it.
func (s *Store) Load(ctx context.Context) (*Snapshot, error) {
	if s.loader == nil {
		return nil, fmt.Errorf("catalog store has no loader")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	s.publish(snap)
	return snap, nil
}

func (s *Store) publish(snap *Snapshot) {
	s.current.Store(snap)
	s.readyOnce.Do(func() { close(s.ready) })
	s.logger.WithFields(logrus.Fields{
		"networks": snap.Catalog.Networks(),
		"failures": len(snap.Failures),
	}).Info("Catalog snapshot published")
}

// Ready reports whether a snapshot has been published.
func (s *Store) Ready() bool {
	select {
	case <-s.ready:
		return true
	default:
		return false
	}
}

// Snapshot returns the current snapshot or domain.ErrNotReady.
func (s *Store) Snapshot() (*Snapshot, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, domain.ErrNotReady
	}
	return snap, nil
}

// Wait blocks until a snapshot is published or ctx is done.
func (s *Store) Wait(ctx context.Context) (*Snapshot, error) {
	select {
	case <-s.ready:
		return s.Snapshot()
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", domain.ErrNotReady, ctx.Err())
	}
}
