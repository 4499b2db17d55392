package domain

// LetterDraft is a rendered dispute letter. It is built fresh on each call
// and never mutated afterwards.
type LetterDraft struct {
	Tone            Tone            `json:"tone"`
	PaywallUnlocked bool            `json:"paywallUnlocked"`
	Header          LetterHeader    `json:"header"`
	Greeting        string          `json:"greeting"`
	Opening         string          `json:"opening"`
	Evidence        EvidenceSection `json:"evidence"`
	Reason          ReasonSection   `json:"reason"`
	StrategyTips    []string        `json:"strategyTips"`
	Request         RequestSection  `json:"request"`
	Exhibits        []Exhibit       `json:"exhibits"`
	CFPBComplaint   string          `json:"cfpbComplaint,omitempty"`
}

// LetterHeader carries the date stamp and address blocks.
type LetterHeader struct {
	Date      string        `json:"date"`
	Sender    []string      `json:"sender"`
	Recipient DisputeOffice `json:"recipient"`
	Subject   string        `json:"subject"`
}

// EvidenceSection is the gated evidence paragraph.
type EvidenceSection struct {
	Summary string `json:"summary"`
}

// ReasonSection is empty when no strategy exists for the matched reason.
type ReasonSection struct {
	Network           string   `json:"network,omitempty"`
	Code              string   `json:"code,omitempty"`
	Statement         string   `json:"statement,omitempty"`
	Title             string   `json:"title,omitempty"`
	MerchantRebuttals []string `json:"merchantRebuttals,omitempty"`
	StrategyTips      []string `json:"strategyTips,omitempty"`
	EvidenceFocus     []string `json:"evidenceFocus,omitempty"`
	SuggestedArgument string   `json:"suggestedArgument,omitempty"`
}

// Empty reports whether the section carries no content.
func (r ReasonSection) Empty() bool {
	return r.Code == "" && r.Title == "" && len(r.MerchantRebuttals) == 0 &&
		len(r.StrategyTips) == 0 && len(r.EvidenceFocus) == 0 && r.SuggestedArgument == ""
}

// RequestSection holds the request, closing and signature.
type RequestSection struct {
	Request   string `json:"request"`
	Closing   string `json:"closing"`
	SignOff   string `json:"signOff"`
	Signature string `json:"signature"`
}

// Exhibit is an evidence item labelled within a letter.
type Exhibit struct {
	Letter      string `json:"letter"`
	Label       string `json:"label"`
	Description string `json:"description"`
}
