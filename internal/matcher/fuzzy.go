package matcher

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// DefaultFuzzyThreshold admits a candidate when at least half of a field's
// weighted content is present in the scenario.
const DefaultFuzzyThreshold = 0.5

// tokenFloor is the minimum per-word similarity that counts toward coverage.
// It tolerates a one-letter typo in a five-letter word.
const tokenFloor = 0.7

// minSupport is the number of field words a scenario must hit before a
// multi-word field scores at all.
const minSupport = 2

// Weights maps a stemmed term to its inverse document frequency within one
// network. Unknown terms weigh 1.
type Weights map[string]float64

// NewWeights computes ln(1 + N/df) over documents, where each document is the
// term list of one catalog entry.
func NewWeights(docs [][]string) Weights {
	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]bool, len(doc))
		for _, term := range doc {
			if !seen[term] {
				seen[term] = true
				df[term]++
			}
		}
	}
	w := make(Weights, len(df))
	n := float64(len(docs))
	for term, count := range df {
		w[term] = math.Log(1 + n/float64(count))
	}
	return w
}

// Weight returns the weight of a term.
func (w Weights) Weight(term string) float64 {
	if v, ok := w[term]; ok {
		return v
	}
	return 1
}

// TokenSimilarity is 1 - levenshtein(a, b) / max(len(a), len(b)) over runes.
func TokenSimilarity(a, b string) float64 {
	if a == b {
		return 1
	}
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}

// TokenSortRatio compares both strings after sorting their tokens, which
// makes the comparison insensitive to word order.
func TokenSortRatio(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	return TokenSimilarity(sortedJoin(a), sortedJoin(b))
}

// Coverage is the weighted mean, over the field's significant words, of the
// best TokenSimilarity against any scenario word. Matches under tokenFloor
// count as zero, and a field scores zero unless the scenario hits
// min(minSupport, words) of its words.
func Coverage(scenario, field []string, weights Weights) float64 {
	words := significant(field)
	if len(words) == 0 || len(scenario) == 0 {
		return 0
	}

	var total, norm float64
	hits := 0
	for _, w := range words {
		weight := weights.Weight(w)
		norm += weight
		best := 0.0
		for _, s := range scenario {
			if sim := TokenSimilarity(w, s); sim > best {
				best = sim
				if best == 1 {
					break
				}
			}
		}
		if best >= tokenFloor {
			total += best * weight
			hits++
		}
	}
	if hits < min(minSupport, len(words)) || norm == 0 {
		return 0
	}
	return total / norm
}

// FieldSimilarity is the larger of Coverage and TokenSortRatio. Both inputs
// are stemmed terms. TokenSortRatio only applies when each side has at least
// two content words.
func FieldSimilarity(scenario, field []string, weights Weights) float64 {
	best := Coverage(scenario, field, weights)
	sc, fc := contentWords(scenario), contentWords(field)
	if len(sc) >= minSupport && len(fc) >= minSupport {
		if ratio := TokenSortRatio(sc, fc); ratio > best {
			best = ratio
		}
	}
	return best
}

// significant returns the content words, or every token when none qualify.
func significant(tokens []string) []string {
	if out := contentWords(tokens); len(out) > 0 {
		return out
	}
	return tokens
}

func contentWords(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if utf8.RuneCountInString(t) >= MinKeywordLength && !stopWords[t] {
			out = append(out, t)
		}
	}
	return out
}

func sortedJoin(tokens []string) string {
	sorted := make([]string, len(tokens))
	copy(sorted, tokens)
	sort.Strings(sorted)
	return strings.Join(sorted, " ")
}
