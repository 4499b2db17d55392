package domain

import (
	"encoding/json"
	"strings"
)

// Card networks in resolver priority order, most common first.
const (
	NetworkVisa       = "visa"
	NetworkMastercard = "mastercard"
	NetworkAmex       = "amex"
	NetworkDiscover   = "discover"
)

// DefaultNetworks is the fixed network priority order.
var DefaultNetworks = []string{NetworkVisa, NetworkMastercard, NetworkAmex, NetworkDiscover}

// PatternDelimiter separates alternatives inside a scenario pattern.
const PatternDelimiter = "|"

// NormalizeNetwork lower-cases and trims a network name.
func NormalizeNetwork(network string) string {
	return strings.ToLower(strings.TrimSpace(network))
}

// ReasonCodeEntry is one network-defined dispute reason code.
type ReasonCodeEntry struct {
	Network               string   `json:"network" yaml:"network,omitempty"`
	Code                  string   `json:"code" yaml:"code"`
	Title                 string   `json:"title" yaml:"title"`
	Description           string   `json:"description" yaml:"description"`
	Category              string   `json:"category" yaml:"category"`
	EvidenceRequirements  []string `json:"evidenceRequirements" yaml:"evidenceRequirements"`
	StrategyTips          []string `json:"strategyTips" yaml:"strategyTips"`
	MatchKeywords         []string `json:"matchKeywords" yaml:"matchKeywords"`
	ScenarioPattern       string   `json:"scenarioPattern" yaml:"scenarioPattern"`
	TimeLimitIssuer       string   `json:"timeLimitIssuer,omitempty" yaml:"timeLimitIssuer,omitempty"`
	TimeLimitAcquirer     string   `json:"timeLimitAcquirer,omitempty" yaml:"timeLimitAcquirer,omitempty"`
	TimeLimitIssuerDays   *int     `json:"timeLimitIssuerDays,omitempty" yaml:"timeLimitIssuerDays,omitempty"`
	TimeLimitAcquirerDays *int     `json:"timeLimitAcquirerDays,omitempty" yaml:"timeLimitAcquirerDays,omitempty"`
}

// Alternatives returns the trimmed, non-empty scenario pattern alternatives.
func (e ReasonCodeEntry) Alternatives() []string {
	if e.ScenarioPattern == "" {
		return nil
	}
	parts := strings.Split(e.ScenarioPattern, PatternDelimiter)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Clone returns a deep copy so callers cannot mutate catalog state.
func (e ReasonCodeEntry) Clone() ReasonCodeEntry {
	c := e
	c.EvidenceRequirements = cloneStrings(e.EvidenceRequirements)
	c.StrategyTips = cloneStrings(e.StrategyTips)
	c.MatchKeywords = cloneStrings(e.MatchKeywords)
	if e.TimeLimitIssuerDays != nil {
		v := *e.TimeLimitIssuerDays
		c.TimeLimitIssuerDays = &v
	}
	if e.TimeLimitAcquirerDays != nil {
		v := *e.TimeLimitAcquirerDays
		c.TimeLimitAcquirerDays = &v
	}
	return c
}

// RebuttalStrategy is the strategy table row for a (network, code) pair.
type RebuttalStrategy struct {
	CustomerStrategy        string   `json:"customerStrategy" yaml:"customerStrategy"`
	CommonMerchantRebuttals []string `json:"commonMerchantRebuttals" yaml:"commonMerchantRebuttals"`
	StrategyTips            []string `json:"strategyTips" yaml:"strategyTips"`
	EvidenceToFocusOn       []string `json:"evidenceToFocusOn" yaml:"evidenceToFocusOn"`
}

// Clone returns a deep copy.
func (s RebuttalStrategy) Clone() RebuttalStrategy {
	return RebuttalStrategy{
		CustomerStrategy:        s.CustomerStrategy,
		CommonMerchantRebuttals: cloneStrings(s.CommonMerchantRebuttals),
		StrategyTips:            cloneStrings(s.StrategyTips),
		EvidenceToFocusOn:       cloneStrings(s.EvidenceToFocusOn),
	}
}

// Outcome distinguishes a found entry, a catalog gap and a legitimate no-match.
type Outcome string

const (
	OutcomeFound    Outcome = "found"
	OutcomeNotFound Outcome = "not_found"
	OutcomeNoMatch  Outcome = "no_match"
)

// MatchMethod records which matcher phase produced a result.
type MatchMethod string

const (
	MethodExact   MatchMethod = "exact"
	MethodFuzzy   MatchMethod = "fuzzy"
	MethodKeyword MatchMethod = "keyword"
)

// MatchResult is the output of matching. An empty ReasonCode is a valid
// no-match outcome; its JSON form carries nulls.
type MatchResult struct {
	Network     string
	ReasonCode  string
	Title       string
	Description string
	Category    string
	Score       *float64
	Method      MatchMethod
	Reason      *ReasonCodeEntry
}

// NoMatch returns the total-miss result.
func NoMatch() MatchResult {
	return MatchResult{}
}

// NewMatchResult builds a matched result from a catalog entry.
func NewMatchResult(entry ReasonCodeEntry, method MatchMethod, score *float64) MatchResult {
	reason := entry.Clone()
	return MatchResult{
		Network:     entry.Network,
		ReasonCode:  entry.Code,
		Title:       entry.Title,
		Description: entry.Description,
		Category:    entry.Category,
		Score:       score,
		Method:      method,
		Reason:      &reason,
	}
}

// Matched reports whether the result identifies a reason code.
func (m MatchResult) Matched() bool {
	return m.ReasonCode != ""
}

// Outcome is OutcomeFound for a match and OutcomeNoMatch otherwise.
func (m MatchResult) Outcome() Outcome {
	if m.Matched() {
		return OutcomeFound
	}
	return OutcomeNoMatch
}

type matchResultJSON struct {
	Network     *string          `json:"network"`
	ReasonCode  *string          `json:"reasonCode"`
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Category    *string          `json:"category"`
	Score       *float64         `json:"score"`
	Method      *MatchMethod     `json:"method"`
	Outcome     Outcome          `json:"outcome"`
	Reason      *ReasonCodeEntry `json:"reason,omitempty"`
}

// MarshalJSON writes null for every empty field.
func (m MatchResult) MarshalJSON() ([]byte, error) {
	out := matchResultJSON{
		Network:     nullable(m.Network),
		ReasonCode:  nullable(m.ReasonCode),
		Title:       nullable(m.Title),
		Description: nullable(m.Description),
		Category:    nullable(m.Category),
		Score:       m.Score,
		Outcome:     m.Outcome(),
		Reason:      m.Reason,
	}
	if m.Method != "" {
		method := m.Method
		out.Method = &method
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads the form written by MarshalJSON.
func (m *MatchResult) UnmarshalJSON(data []byte) error {
	var in matchResultJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*m = MatchResult{
		Network:     deref(in.Network),
		ReasonCode:  deref(in.ReasonCode),
		Title:       deref(in.Title),
		Description: deref(in.Description),
		Category:    deref(in.Category),
		Score:       in.Score,
		Reason:      in.Reason,
	}
	if in.Method != nil {
		m.Method = *in.Method
	}
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
