package matcher

import (
	"strings"
	"unicode/utf8"

	"github.com/disputekit/disputekit-server/internal/domain"
)

// KeywordMatcher is a recall-oriented coarse filter: an entry matches when
// any of its keywords and any input token contain one another.
type KeywordMatcher struct {
	catalog domain.ReasonCatalogReader
}

// NewKeywordMatcher creates a keyword matcher over a catalog.
func NewKeywordMatcher(catalog domain.ReasonCatalogReader) *KeywordMatcher {
	return &KeywordMatcher{catalog: catalog}
}

// Match returns every matching entry in catalog order. Results are not
// ranked. Tokens shorter than MinKeywordLength are ignored.
func (m *KeywordMatcher) Match(network string, keywords []string) ([]domain.MatchResult, error) {
	network = domain.NormalizeNetwork(network)
	if network == "" {
		return nil, domain.NewValidationError("network", "network is required", network)
	}
	if len(keywords) == 0 {
		return nil, domain.NewValidationError("keywords", "at least one keyword is required", keywords)
	}

	tokens := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = Normalize(k)
		if utf8.RuneCountInString(k) >= MinKeywordLength {
			tokens = append(tokens, k)
		}
	}

	results := []domain.MatchResult{}
	if len(tokens) == 0 {
		return results, nil
	}

	for _, entry := range m.catalog.Entries(network) {
		if keywordHit(entry.MatchKeywords, tokens) {
			results = append(results, domain.NewMatchResult(entry, domain.MethodKeyword, nil))
		}
	}
	return results, nil
}

func keywordHit(entryKeywords, tokens []string) bool {
	for _, kw := range entryKeywords {
		kw = Normalize(kw)
		if kw == "" {
			continue
		}
		for _, tok := range tokens {
			if strings.Contains(kw, tok) || strings.Contains(tok, kw) {
				return true
			}
		}
	}
	return false
}
