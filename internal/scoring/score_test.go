package scoring

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/disputekit/disputekit-server/internal/domain"
)

func intakeWith(category, evidence string, tone domain.Tone) domain.Intake {
	in := domain.Intake{
		Answers: domain.Answers{EvidenceSummary: evidence},
		Tone:    tone,
	}
	if category != "" {
		in.MatchedReason = &domain.MatchResult{Network: "visa", ReasonCode: "x", Category: category}
	}
	return in
}

func TestEstimateSuccessScore(t *testing.T) {
	long := strings.Repeat("a", 101)
	exactly100 := strings.Repeat("a", 100)

	tests := []struct {
		name   string
		intake domain.Intake
		want   int
	}{
		{"fraud formal with some evidence", intakeWith("Fraud", "receipt", domain.ToneFormal), 90},
		{"fraud long evidence caps at max", intakeWith("fraud", long, domain.ToneFormal), 95},
		{"duplicate assertive", intakeWith("processing error - duplicate", "two charges", domain.ToneAssertive), 77},
		{"default polite", intakeWith("consumer dispute", "details", domain.TonePolite), 76},
		{"default no evidence", intakeWith("consumer dispute", "", domain.ToneFormal), 70},
		{"no evidence assertive", intakeWith("consumer dispute", "   ", domain.ToneAssertive), 63},
		{"exactly 100 chars gets no bonus", intakeWith("consumer dispute", exactly100, domain.ToneFormal), 80},
		{"unknown tone uses formal", intakeWith("consumer dispute", long, domain.Tone("snarky")), 85},
		{"no matched reason", domain.Intake{}, 70},
		{"category from reason metadata", domain.Intake{
			Answers:       domain.Answers{EvidenceSummary: "x"},
			MatchedReason: &domain.MatchResult{ReasonCode: "10.4", Reason: &domain.ReasonCodeEntry{Category: "fraud"}},
		}, 90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EstimateSuccessScore(tt.intake))
		})
	}
}

func TestEstimateSuccessScore_BoundedAndMonotone(t *testing.T) {
	categories := []string{"", "fraud", "duplicate", "other"}
	tones := []domain.Tone{domain.ToneFormal, domain.ToneAssertive, domain.TonePolite, "", "weird"}

	for _, c := range categories {
		for _, tone := range tones {
			prev := -1
			for n := 0; n <= 150; n++ {
				score := EstimateSuccessScore(intakeWith(c, strings.Repeat("e", n), tone))
				assert.GreaterOrEqual(t, score, MinScore)
				assert.LessOrEqual(t, score, MaxScore)
				if n <= 100 {
					assert.GreaterOrEqual(t, score, prev, "category=%q tone=%q n=%d", c, tone, n)
				}
				prev = score
			}
		}
	}
}

func TestEstimateDisputeSuccess(t *testing.T) {
	tests := []struct {
		evidence, prior bool
		want            float64
	}{
		{false, false, 0.5},
		{true, false, 0.8},
		{false, true, 0.6},
		{true, true, 0.9},
	}

	for _, tt := range tests {
		got := EstimateDisputeSuccess(tt.evidence, tt.prior)
		assert.InDelta(t, tt.want, got.EstimatedSuccessRate, 1e-9)
		assert.Equal(t, estimateRationale, got.Rationale)
	}
}

func TestBuildEvidencePacket(t *testing.T) {
	entry := domain.ReasonCodeEntry{
		Network:              "visa",
		Code:                 "13.1",
		Title:                "Merchandise/Services Not Received",
		EvidenceRequirements: []string{"Proof of expected delivery date"},
		StrategyTips:         []string{"Show you contacted the merchant"},
	}

	packet := BuildEvidencePacket(entry)
	assert.Equal(t, []string{"Proof of expected delivery date"}, packet.CompiledEvidence)
	assert.Equal(t, []string{"Show you contacted the merchant"}, packet.SubmissionTips)
	assert.Equal(t, 0.8, packet.EstimatedSuccessRate)

	packet.CompiledEvidence[0] = "changed"
	assert.Equal(t, "Proof of expected delivery date", entry.EvidenceRequirements[0])
}
