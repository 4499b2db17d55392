// Package scoring holds the dispute success heuristics. None of them is a
// prediction model: the values are presentation hints for the cardholder
// and must be shown as such.
package scoring

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/disputekit/disputekit-server/internal/domain"
)

// Score bounds and adjustments.
const (
	MinScore = 40
	MaxScore = 95

	baseFraud     = 90.0
	baseDuplicate = 85.0
	baseDefault   = 80.0

	detailedEvidenceLength = 100
	detailedEvidenceBonus  = 5.0
	missingEvidencePenalty = 10.0
)

// ToneMultiplier returns the multiplier for a tone; unknown tones use formal.
func ToneMultiplier(tone domain.Tone) float64 {
	switch domain.ParseTone(string(tone)) {
	case domain.ToneAssertive:
		return 0.9
	case domain.TonePolite:
		return 0.95
	default:
		return 1.0
	}
}

// EstimateSuccessScore returns a bounded heuristic in [MinScore, MaxScore]
// from the matched reason category, the evidence summary length and the
// letter tone. It is deterministic and has no side effects.
func EstimateSuccessScore(intake domain.Intake) int {
	score := baseScore(category(intake))

	evidence := strings.TrimSpace(intake.Answers.EvidenceSummary)
	switch n := utf8.RuneCountInString(evidence); {
	case n == 0:
		score -= missingEvidencePenalty
	case n > detailedEvidenceLength:
		score += detailedEvidenceBonus
	}

	score *= ToneMultiplier(intake.Tone)
	score = math.Max(MinScore, math.Min(MaxScore, score))
	return int(math.Round(score))
}

func baseScore(category string) float64 {
	category = strings.ToLower(category)
	switch {
	case strings.Contains(category, "fraud"):
		return baseFraud
	case strings.Contains(category, "duplicate"):
		return baseDuplicate
	default:
		return baseDefault
	}
}

func category(intake domain.Intake) string {
	if intake.MatchedReason == nil {
		return ""
	}
	if intake.MatchedReason.Category != "" {
		return intake.MatchedReason.Category
	}
	if intake.MatchedReason.Reason != nil {
		return intake.MatchedReason.Reason.Category
	}
	return ""
}
