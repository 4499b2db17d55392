package matcher

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/disputekit/disputekit-server/internal/domain"
)

// ErrUnsearchableEntry is returned by the fuzzy phase for an entry with no
// pattern, title, description or keywords.
var ErrUnsearchableEntry = errors.New("catalog entry has no searchable text")

// DefaultFuzzyCacheSize bounds the per-catalog fuzzy result cache.
const DefaultFuzzyCacheSize = 512

// Options tunes the scenario matcher.
type Options struct {
	FuzzyThreshold float64
	CacheSize      int
}

// Candidate is a fuzzy-phase hit.
type Candidate struct {
	Entry domain.ReasonCodeEntry
	Score float64
	Rank  int
}

// Result converts the candidate to a MatchResult.
func (c Candidate) Result() domain.MatchResult {
	score := c.Score
	return domain.NewMatchResult(c.Entry, domain.MethodFuzzy, &score)
}

// ScenarioMatcher runs the exact pattern phase and the fuzzy fallback for a
// single network. It is safe for concurrent use.
type ScenarioMatcher struct {
	catalog   domain.ReasonCatalogReader
	threshold float64
	weights   map[string]Weights
	cache     *lru.Cache[string, []Candidate]
}

// NewScenarioMatcher creates a matcher. Zero options select the defaults.
func NewScenarioMatcher(catalog domain.ReasonCatalogReader, opts Options) (*ScenarioMatcher, error) {
	if opts.FuzzyThreshold <= 0 || opts.FuzzyThreshold > 1 {
		opts.FuzzyThreshold = DefaultFuzzyThreshold
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultFuzzyCacheSize
	}

	cache, err := lru.New[string, []Candidate](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create fuzzy cache: %w", err)
	}

	return &ScenarioMatcher{
		catalog:   catalog,
		threshold: opts.FuzzyThreshold,
		weights:   networkWeights(catalog),
		cache:     cache,
	}, nil
}

// networkWeights computes term weights per network, treating each entry's
// searchable fields as one document.
func networkWeights(catalog domain.ReasonCatalogReader) map[string]Weights {
	out := make(map[string]Weights)
	for _, network := range catalog.Networks() {
		entries := catalog.Entries(network)
		docs := make([][]string, 0, len(entries))
		for _, entry := range entries {
			var doc []string
			for _, f := range searchableFields(entry) {
				doc = append(doc, Terms(f)...)
			}
			docs = append(docs, doc)
		}
		out[domain.NormalizeNetwork(network)] = NewWeights(docs)
	}
	return out
}

// Threshold returns the fuzzy inclusion threshold.
func (m *ScenarioMatcher) Threshold() float64 {
	return m.threshold
}

// Exact returns the first entry, in catalog order, whose pattern has an
// alternative contained in the scenario.
func (m *ScenarioMatcher) Exact(network, scenario string) (domain.MatchResult, bool) {
	text := Normalize(scenario)
	if text == "" {
		return domain.NoMatch(), false
	}
	for _, entry := range m.catalog.Entries(network) {
		if exactHit(entry, text) {
			return domain.NewMatchResult(entry, domain.MethodExact, nil), true
		}
	}
	return domain.NoMatch(), false
}

// ExactAll returns every entry whose pattern matches, in catalog order.
func (m *ScenarioMatcher) ExactAll(network, scenario string) []domain.MatchResult {
	text := Normalize(scenario)
	var out []domain.MatchResult
	if text == "" {
		return out
	}
	for _, entry := range m.catalog.Entries(network) {
		if exactHit(entry, text) {
			out = append(out, domain.NewMatchResult(entry, domain.MethodExact, nil))
		}
	}
	return out
}

func exactHit(entry domain.ReasonCodeEntry, text string) bool {
	for _, alt := range entry.Alternatives() {
		if alt = Normalize(alt); alt != "" && strings.Contains(text, alt) {
			return true
		}
	}
	return false
}

// Fuzzy scores every entry of the network and returns those at or above the
// threshold, best first; equal scores keep catalog order.
func (m *ScenarioMatcher) Fuzzy(network, scenario string) ([]Candidate, error) {
	network = domain.NormalizeNetwork(network)
	tokens := Terms(scenario)
	if len(tokens) == 0 {
		return nil, nil
	}

	key := network + "\x00" + strings.Join(tokens, " ")
	if cached, ok := m.cache.Get(key); ok {
		return copyCandidates(cached), nil
	}

	var out []Candidate
	for rank, entry := range m.catalog.Entries(network) {
		score, err := entryScore(entry, tokens, m.weights[network])
		if err != nil {
			return nil, fmt.Errorf("fuzzy %s/%s: %w", network, entry.Code, err)
		}
		if score >= m.threshold {
			out = append(out, Candidate{Entry: entry, Score: score, Rank: rank})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })

	m.cache.Add(key, out)
	return copyCandidates(out), nil
}

// Match runs the exact phase, then the fuzzy phase, for one network. A miss
// is a NoMatch result, not an error.
func (m *ScenarioMatcher) Match(network, scenario string) (domain.MatchResult, error) {
	if err := validateScenario(scenario); err != nil {
		return domain.NoMatch(), err
	}
	if domain.NormalizeNetwork(network) == "" {
		return domain.NoMatch(), domain.NewValidationError("network", "network is required", network)
	}

	if result, ok := m.Exact(network, scenario); ok {
		return result, nil
	}

	candidates, err := m.Fuzzy(network, scenario)
	if err != nil {
		return domain.NoMatch(), err
	}
	if len(candidates) == 0 {
		return domain.NoMatch(), nil
	}
	return candidates[0].Result(), nil
}

func entryScore(entry domain.ReasonCodeEntry, tokens []string, weights Weights) (float64, error) {
	fields := searchableFields(entry)
	if len(fields) == 0 {
		return 0, ErrUnsearchableEntry
	}
	best := 0.0
	for _, f := range fields {
		if s := FieldSimilarity(tokens, Terms(f), weights); s > best {
			best = s
		}
	}
	return best, nil
}

func searchableFields(entry domain.ReasonCodeEntry) []string {
	candidates := append(entry.Alternatives(), entry.Title, entry.Description)
	candidates = append(candidates, entry.MatchKeywords...)
	out := candidates[:0]
	for _, f := range candidates {
		if strings.TrimSpace(f) != "" {
			out = append(out, f)
		}
	}
	return out
}

func validateScenario(scenario string) error {
	if strings.TrimSpace(scenario) == "" {
		return domain.NewValidationError("scenario", "scenario text is required", scenario)
	}
	return nil
}

func copyCandidates(in []Candidate) []Candidate {
	if in == nil {
		return nil
	}
	out := make([]Candidate, len(in))
	for i, c := range in {
		c.Entry = c.Entry.Clone()
		out[i] = c
	}
	return out
}
