package domain

import (
	"strings"
	"time"
)

// Tone selects the letter template.
type Tone string

const (
	ToneFormal    Tone = "formal"
	ToneAssertive Tone = "assertive"
	TonePolite    Tone = "polite"
)

// ParseTone maps free text onto a known tone, defaulting to formal.
func ParseTone(s string) Tone {
	switch Tone(strings.ToLower(strings.TrimSpace(s))) {
	case ToneAssertive:
		return ToneAssertive
	case TonePolite:
		return TonePolite
	default:
		return ToneFormal
	}
}

// Answers holds the structured intake questionnaire.
type Answers struct {
	Name            string `json:"name,omitempty"`
	Address         string `json:"address,omitempty"`
	CityStateZip    string `json:"cityStateZip,omitempty"`
	Phone           string `json:"phone,omitempty"`
	Email           string `json:"email,omitempty"`
	Merchant        string `json:"merchant,omitempty"`
	Amount          string `json:"amount,omitempty"`
	TransactionDate string `json:"transactionDate,omitempty"`
	CardBrand       string `json:"cardBrand,omitempty"`
	Issuer          string `json:"issuer,omitempty"`
	EvidenceSummary string `json:"evidenceSummary,omitempty"`
}

// EvidenceItem is one piece of supporting evidence.
type EvidenceItem struct {
	Description string `json:"description"`
}

// Intake is a dispute submission. The core reads it but never persists it.
type Intake struct {
	SessionID          string         `json:"sessionId,omitempty"`
	Description        string         `json:"description"`
	Network            string         `json:"network,omitempty"`
	Answers            Answers        `json:"answers"`
	Keywords           []string       `json:"keywords,omitempty"`
	RecommendedReasons []MatchResult  `json:"recommendedReasons,omitempty"`
	MatchedReason      *MatchResult   `json:"matchedReason,omitempty"`
	Tone               Tone           `json:"tone,omitempty"`
	Evidence           []EvidenceItem `json:"evidence,omitempty"`
	StrategyTips       []string       `json:"strategyTips,omitempty"`
	RebuttalStrategy   []string       `json:"rebuttalStrategy,omitempty"`
	SuccessScore       *int           `json:"successScore,omitempty"`
	CreatedAt          time.Time      `json:"createdAt,omitempty"`
}

// Clone returns a deep copy of the intake.
func (in Intake) Clone() Intake {
	c := in
	c.Keywords = cloneStrings(in.Keywords)
	c.StrategyTips = cloneStrings(in.StrategyTips)
	c.RebuttalStrategy = cloneStrings(in.RebuttalStrategy)
	if in.Evidence != nil {
		c.Evidence = make([]EvidenceItem, len(in.Evidence))
		copy(c.Evidence, in.Evidence)
	}
	if in.RecommendedReasons != nil {
		c.RecommendedReasons = make([]MatchResult, len(in.RecommendedReasons))
		copy(c.RecommendedReasons, in.RecommendedReasons)
	}
	if in.MatchedReason != nil {
		m := *in.MatchedReason
		c.MatchedReason = &m
	}
	if in.SuccessScore != nil {
		s := *in.SuccessScore
		c.SuccessScore = &s
	}
	return c
}
