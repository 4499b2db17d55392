// Package service exposes the dispute operations shared by the HTTP API, the
// MCP server and the CLI.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/disputekit/disputekit-server/internal/catalog"
	"github.com/disputekit/disputekit-server/internal/domain"
	"github.com/disputekit/disputekit-server/internal/letter"
	"github.com/disputekit/disputekit-server/internal/matcher"
	"github.com/disputekit/disputekit-server/internal/records"
	"github.com/disputekit/disputekit-server/internal/scoring"
)

// DisputeService runs every dispute operation against the current catalog
// snapshot. Matchers are rebuilt once per published snapshot.
type DisputeService struct {
	catalog     *catalog.Store
	sessions    domain.IntakeStore
	records     records.Store
	opts        matcher.Options
	searchLimit int
	clock       func() time.Time
	newID       func() string
	logger      *logrus.Logger

	mu         sync.Mutex
	engine     *matcher.Engine
	engineSnap *catalog.Snapshot
}

// Option configures a DisputeService.
type Option func(*DisputeService)

// WithRecords enables the dispute-session log and entitlements.
func WithRecords(store records.Store) Option {
	return func(s *DisputeService) { s.records = store }
}

// WithMatcherOptions tunes the scenario matcher.
func WithMatcherOptions(opts matcher.Options) Option {
	return func(s *DisputeService) { s.opts = opts }
}

// WithSearchLimit sets the default SearchStrategies limit.
func WithSearchLimit(limit int) Option {
	return func(s *DisputeService) { s.searchLimit = limit }
}

// WithClock overrides the clock used for letters and intake timestamps.
func WithClock(clock func() time.Time) Option {
	return func(s *DisputeService) { s.clock = clock }
}

// WithIDGenerator overrides session id generation.
func WithIDGenerator(newID func() string) Option {
	return func(s *DisputeService) { s.newID = newID }
}

// NewDisputeService creates the service.
func NewDisputeService(store *catalog.Store, sessions domain.IntakeStore, logger *logrus.Logger, opts ...Option) *DisputeService {
	s := &DisputeService{
		catalog:     store,
		sessions:    sessions,
		searchLimit: 5,
		clock:       time.Now,
		newID:       func() string { return uuid.New().String() },
		logger:      logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ready reports whether the catalog has loaded.
func (s *DisputeService) Ready() bool {
	return s.catalog.Ready()
}

// current waits for the catalog and returns the snapshot with its matchers.
func (s *DisputeService) current(ctx context.Context) (*catalog.Snapshot, *matcher.Engine, error) {
	snap, err := s.catalog.Wait(ctx)
	if err != nil {
		return nil, nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engineSnap != snap {
		engine, err := matcher.NewEngine(snap.Catalog, s.opts, s.logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to build matchers: %w", err)
		}
		s.engine = engine
		s.engineSnap = snap
	}
	return snap, s.engine, nil
}

// MatchScenario resolves free text to a reason code, pinned to network when
// given. A total miss is a NoMatch result, not an error.
func (s *DisputeService) MatchScenario(ctx context.Context, network, scenario string) (domain.MatchResult, error) {
	_, engine, err := s.current(ctx)
	if err != nil {
		return domain.NoMatch(), err
	}
	result, err := engine.Resolver.Resolve(network, scenario)
	if err != nil {
		return domain.NoMatch(), err
	}
	s.logger.WithFields(logrus.Fields{
		"network":     result.Network,
		"reason_code": result.ReasonCode,
		"method":      result.Method,
		"outcome":     result.Outcome(),
	}).Debug("Scenario matched")
	return result, nil
}

// MatchKeywords returns every entry of network whose keywords overlap.
func (s *DisputeService) MatchKeywords(ctx context.Context, network string, keywords []string) ([]domain.MatchResult, error) {
	_, engine, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	return engine.Keywords.Match(network, keywords)
}

// ListReasons returns a network's entries in catalog order.
func (s *DisputeService) ListReasons(ctx context.Context, network string) ([]domain.ReasonCodeEntry, error) {
	snap, _, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	entries := snap.Catalog.Entries(network)
	if entries == nil {
		entries = []domain.ReasonCodeEntry{}
	}
	return entries, nil
}

// Networks lists the loaded networks in resolver priority order.
func (s *DisputeService) Networks(ctx context.Context) ([]string, error) {
	snap, _, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Catalog.Networks(), nil
}

// ReasonDetails returns the entry for (network, code) or domain.ErrNotFound.
func (s *DisputeService) ReasonDetails(ctx context.Context, network, code string) (domain.ReasonCodeEntry, error) {
	snap, _, err := s.current(ctx)
	if err != nil {
		return domain.ReasonCodeEntry{}, err
	}
	return snap.Catalog.Get(network, code)
}

// Strategy returns the rebuttal strategy for (network, code).
func (s *DisputeService) Strategy(ctx context.Context, network, code string) (domain.RebuttalStrategy, error) {
	snap, _, err := s.current(ctx)
	if err != nil {
		return domain.RebuttalStrategy{}, err
	}
	return snap.Strategies.Strategy(network, code)
}

// SearchStrategies ranks candidates across networks and attaches strategies.
func (s *DisputeService) SearchStrategies(ctx context.Context, query string, limit int) ([]StrategyHit, error) {
	snap, engine, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.searchLimit
	}

	results, err := engine.Resolver.Search(query, limit)
	if err != nil {
		return nil, err
	}

	hits := make([]StrategyHit, 0, len(results))
	for _, r := range results {
		hit := StrategyHit{
			Network: r.Network,
			Code:    r.ReasonCode,
			Title:   r.Title,
			Method:  r.Method,
		}
		if strategy, err := snap.Strategies.Strategy(r.Network, r.ReasonCode); err == nil {
			hit.Strategy = &strategy
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// EstimateSuccessScore scores an intake.
func (s *DisputeService) EstimateSuccessScore(intake domain.Intake) int {
	return scoring.EstimateSuccessScore(intake)
}

// EstimateDisputeSuccess returns the coarse pre-letter estimate.
func (s *DisputeService) EstimateDisputeSuccess(consumerEvidence, priorAttempts bool) scoring.DisputeEstimate {
	return scoring.EstimateDisputeSuccess(consumerEvidence, priorAttempts)
}

// EvidencePacket compiles the evidence checklist for (network, code).
func (s *DisputeService) EvidencePacket(ctx context.Context, network, code string) (scoring.EvidencePacket, error) {
	entry, err := s.ReasonDetails(ctx, network, code)
	if err != nil {
		return scoring.EvidencePacket{}, err
	}
	return scoring.BuildEvidencePacket(entry), nil
}

// ComplaintSummary renders the CFPB complaint text.
func (s *DisputeService) ComplaintSummary(in letter.ComplaintInput) string {
	return letter.ComplaintSummary(in)
}

// LookupBin resolves a six-digit BIN.
func (s *DisputeService) LookupBin(ctx context.Context, bin string) (domain.BinInfo, error) {
	snap, _, err := s.current(ctx)
	if err != nil {
		return domain.BinInfo{}, err
	}
	return snap.Directory.LookupBin(bin)
}

// IssuerContact returns an issuer's contact sheet.
func (s *DisputeService) IssuerContact(ctx context.Context, name string) (domain.IssuerContact, error) {
	snap, _, err := s.current(ctx)
	if err != nil {
		return domain.IssuerContact{}, err
	}
	return snap.Directory.IssuerContact(name)
}
