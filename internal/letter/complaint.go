package letter

import (
	"fmt"
	"strings"
)

// CFPBComplaint is the escalation paragraph shown on unlocked letters.
func CFPBComplaint(merchant string) string {
	return "If your dispute is denied or ignored, you may file a formal complaint with the " +
		"Consumer Financial Protection Bureau (CFPB) at https://www.consumerfinance.gov/complaint/. " +
		"Include the dispute letter and reference this merchant: " + merchant + "."
}

// ComplaintInput is the data for a CFPB complaint summary.
type ComplaintInput struct {
	Date     string `json:"date"`
	Amount   string `json:"amount"`
	Merchant string `json:"merchant"`
	Summary  string `json:"summary"`
	Issuer   string `json:"issuer"`
	Network  string `json:"network"`
}

// ComplaintSummary renders the text to paste into a CFPB complaint.
func ComplaintSummary(in ComplaintInput) string {
	amount := strings.TrimPrefix(strings.TrimSpace(in.Amount), "$")
	return fmt.Sprintf("Complaint Summary:\n\nOn %s, a $%s charge at %s was disputed but unresolved.\n\nDetails: %s\nIssuer: %s\nNetwork: %s",
		in.Date, amount, in.Merchant, in.Summary, in.Issuer, in.Network)
}
