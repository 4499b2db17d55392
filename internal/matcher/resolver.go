package matcher

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/disputekit/disputekit-server/internal/domain"
)

// Step is one strategy in the resolver's fallback chain. It reports whether
// it produced a match.
type Step struct {
	Name string
	Run  func(scenario string) (domain.MatchResult, bool)
}

// RunSteps evaluates steps in order and returns the first match.
func RunSteps(steps []Step, scenario string) (domain.MatchResult, string) {
	for _, step := range steps {
		if result, ok := step.Run(scenario); ok {
			return result, step.Name
		}
	}
	return domain.NoMatch(), ""
}

// Resolver picks a single reason code across networks: exact matches per
// network in priority order, then the best fuzzy candidate across all of
// them.
type Resolver struct {
	scenario *ScenarioMatcher
	networks []string
	logger   *logrus.Logger
}

// NewResolver creates a resolver over networks in priority order.
func NewResolver(scenario *ScenarioMatcher, networks []string, logger *logrus.Logger) *Resolver {
	if len(networks) == 0 {
		networks = domain.DefaultNetworks
	}
	return &Resolver{scenario: scenario, networks: networks, logger: logger}
}

// Steps returns the ordered fallback chain. A pinned network restricts the
// chain to that network.
func (r *Resolver) Steps(network string) []Step {
	networks := r.networks
	if pinned := domain.NormalizeNetwork(network); pinned != "" {
		networks = []string{pinned}
	}

	steps := make([]Step, 0, len(networks)+1)
	for _, n := range networks {
		n := n
		steps = append(steps, Step{
			Name: "exact:" + n,
			Run: func(scenario string) (domain.MatchResult, bool) {
				return r.scenario.Exact(n, scenario)
			},
		})
	}
	steps = append(steps, Step{
		Name: "fuzzy",
		Run: func(scenario string) (domain.MatchResult, bool) {
			return r.bestFuzzy(networks, scenario)
		},
	})
	return steps
}

// Resolve returns the best match for the scenario. A total miss is a NoMatch
// result; only blank input is an error.
func (r *Resolver) Resolve(network, scenario string) (domain.MatchResult, error) {
	if err := validateScenario(scenario); err != nil {
		return domain.NoMatch(), err
	}

	result, step := RunSteps(r.Steps(network), scenario)

	fields := logrus.Fields{"network": network, "step": step, "outcome": result.Outcome()}
	if result.Matched() {
		fields["reason_code"] = result.ReasonCode
		fields["matched_network"] = result.Network
	}
	r.logger.WithFields(fields).Debug("Scenario resolved")

	return result, nil
}

// bestFuzzy keeps the highest score; ties go to the earlier network and then
// the earlier catalog entry. Networks whose fuzzy phase fails are skipped.
func (r *Resolver) bestFuzzy(networks []string, scenario string) (domain.MatchResult, bool) {
	var best *Candidate
	for _, n := range networks {
		candidates, err := r.scenario.Fuzzy(n, scenario)
		if err != nil {
			r.logger.WithFields(logrus.Fields{
				"network": n,
				"error":   err.Error(),
			}).Warn("Fuzzy search failed for network, skipping")
			continue
		}
		if len(candidates) == 0 {
			continue
		}
		if best == nil || candidates[0].Score > best.Score {
			top := candidates[0]
			best = &top
		}
	}
	if best == nil {
		return domain.NoMatch(), false
	}
	return best.Result(), true
}

// Search lists up to limit candidates across all networks: every exact match
// first, then fuzzy candidates by score. Each (network, code) appears once.
func (r *Resolver) Search(query string, limit int) ([]domain.MatchResult, error) {
	if err := validateScenario(query); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 5
	}

	type ranked struct {
		result  domain.MatchResult
		score   float64
		network int
		rank    int
	}

	seen := make(map[string]bool)
	var exact, fuzzy []ranked
	for ni, n := range r.networks {
		for i, m := range r.scenario.ExactAll(n, query) {
			key := m.Network + "/" + m.ReasonCode
			if !seen[key] {
				seen[key] = true
				exact = append(exact, ranked{result: m, score: 1, network: ni, rank: i})
			}
		}
	}
	for ni, n := range r.networks {
		candidates, err := r.scenario.Fuzzy(n, query)
		if err != nil {
			r.logger.WithFields(logrus.Fields{"network": n, "error": err.Error()}).Warn("Fuzzy search failed for network, skipping")
			continue
		}
		for _, c := range candidates {
			key := n + "/" + c.Entry.Code
			if !seen[key] {
				seen[key] = true
				fuzzy = append(fuzzy, ranked{result: c.Result(), score: c.Score, network: ni, rank: c.Rank})
			}
		}
	}
	sort.SliceStable(fuzzy, func(i, j int) bool {
		if fuzzy[i].score != fuzzy[j].score {
			return fuzzy[i].score > fuzzy[j].score
		}
		if fuzzy[i].network != fuzzy[j].network {
			return fuzzy[i].network < fuzzy[j].network
		}
		return fuzzy[i].rank < fuzzy[j].rank
	})

	out := make([]domain.MatchResult, 0, limit)
	for _, group := range [][]ranked{exact, fuzzy} {
		for _, item := range group {
			if len(out) == limit {
				return out, nil
			}
			out = append(out, item.result)
		}
	}
	return out, nil
}
