package scoring

import (
	"math"

	"github.com/disputekit/disputekit-server/internal/domain"
)

// DisputeEstimate is the coarse success rate offered before a letter exists.
type DisputeEstimate struct {
	EstimatedSuccessRate float64 `json:"estimatedSuccessRate"`
	Rationale            string  `json:"rationale"`
}

const estimateRationale = "Heuristic-based estimate: evidence and resolution attempts boost success odds."

// EstimateDisputeSuccess starts at 0.5, adds 0.3 for consumer evidence and
// 0.1 for prior resolution attempts, capped at 0.99.
func EstimateDisputeSuccess(consumerEvidence, priorAttempts bool) DisputeEstimate {
	rate := 0.5
	if consumerEvidence {
		rate += 0.3
	}
	if priorAttempts {
		rate += 0.1
	}
	rate = math.Min(rate, 0.99)
	return DisputeEstimate{
		EstimatedSuccessRate: math.Round(rate*100) / 100,
		Rationale:            estimateRationale,
	}
}

// EvidencePacket bundles what to submit for a reason code.
type EvidencePacket struct {
	Network              string   `json:"network"`
	Code                 string   `json:"code"`
	Title                string   `json:"title"`
	CompiledEvidence     []string `json:"compiledEvidence"`
	SubmissionTips       []string `json:"submissionTips"`
	EstimatedSuccessRate float64  `json:"estimatedSuccessRate"`
}

// packetSuccessRate is the fixed rate shown on evidence packets.
const packetSuccessRate = 0.8

// BuildEvidencePacket compiles an entry's evidence requirements and tips.
func BuildEvidencePacket(entry domain.ReasonCodeEntry) EvidencePacket {
	evidence := append([]string{}, entry.EvidenceRequirements...)
	tips := append([]string{}, entry.StrategyTips...)
	return EvidencePacket{
		Network:              entry.Network,
		Code:                 entry.Code,
		Title:                entry.Title,
		CompiledEvidence:     evidence,
		SubmissionTips:       tips,
		EstimatedSuccessRate: packetSuccessRate,
	}
}
