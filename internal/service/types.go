package service

import (
	"github.com/disputekit/disputekit-server/internal/domain"
)

// DefaultNetwork is used when an intake carries no network hint.
const DefaultNetwork = domain.NetworkVisa

// maxRecommendations caps the keyword recommendations stored on an intake.
const maxRecommendations = 3

// IntakeRequest is a new dispute submission.
type IntakeRequest struct {
	Description string                `json:"description"`
	Network     string                `json:"network,omitempty"`
	Answers     domain.Answers        `json:"answers"`
	Tone        domain.Tone           `json:"tone,omitempty"`
	Evidence    []domain.EvidenceItem `json:"evidence,omitempty"`
}

// LetterRequest asks for a letter from a stored session or an inline intake.
type LetterRequest struct {
	SessionID        string                `json:"sessionId,omitempty"`
	Intake           *domain.Intake        `json:"intake,omitempty"`
	Tone             domain.Tone           `json:"tone,omitempty"`
	PaywallUnlocked  bool                  `json:"paywallUnlocked"`
	Evidence         []domain.EvidenceItem `json:"evidence,omitempty"`
	StrategyTips     []string              `json:"strategyTips,omitempty"`
	RebuttalStrategy []string              `json:"rebuttalStrategy,omitempty"`
}

// LetterResult is a generated letter with its renderings and score.
type LetterResult struct {
	SessionID     string             `json:"sessionId"`
	Letter        domain.LetterDraft `json:"letter"`
	Text          string             `json:"text"`
	HTML          string             `json:"html"`
	SuccessScore  int                `json:"successScore"`
	MatchedReason domain.MatchResult `json:"matchedReason"`
}

// StrategyHit is one SearchStrategies candidate.
type StrategyHit struct {
	Network  string                   `json:"network"`
	Code     string                   `json:"code"`
	Title    string                   `json:"title"`
	Method   domain.MatchMethod       `json:"method"`
	Strategy *domain.RebuttalStrategy `json:"strategy,omitempty"`
}
