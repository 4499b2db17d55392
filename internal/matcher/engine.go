package matcher

import (
	"github.com/sirupsen/logrus"

	"github.com/disputekit/disputekit-server/internal/domain"
)

// Engine bundles the matchers built over one catalog snapshot.
type Engine struct {
	Keywords *KeywordMatcher
	Scenario *ScenarioMatcher
	Resolver *Resolver
}

// NewEngine builds every matcher over catalog.
func NewEngine(catalog domain.ReasonCatalogReader, opts Options, logger *logrus.Logger) (*Engine, error) {
	scenario, err := NewScenarioMatcher(catalog, opts)
	if err != nil {
		return nil, err
	}
	return &Engine{
		Keywords: NewKeywordMatcher(catalog),
		Scenario: scenario,
		Resolver: NewResolver(scenario, catalog.Networks(), logger),
	}, nil
}
