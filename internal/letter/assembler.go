// Package letter assembles dispute letters from a matched intake, a tone
// template and the paywall state.
package letter

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/disputekit/disputekit-server/internal/domain"
)

// Placeholders for answers the cardholder left blank.
const (
	PlaceholderName         = "[Your Name]"
	PlaceholderAddress      = "[Your Address]"
	PlaceholderCityStateZip = "[City, State, ZIP]"
	PlaceholderPhone        = "[Phone Number]"
	PlaceholderEmail        = "[Your Email]"
	PlaceholderMerchant     = "the merchant"
	PlaceholderAmount       = "the transaction amount"
	PlaceholderDate         = "the transaction date"

	defaultEvidenceDescription = "Evidence item"
	maxTitleLength             = 80
	dateLayout                 = "January 2, 2006"
	signOff                    = "Sincerely,"
)

// OfficeDirectory resolves the recipient block for an issuer.
type OfficeDirectory interface {
	DisputeOffice(issuer string) domain.DisputeOffice
}

// Assembler renders LetterDrafts. It holds no mutable state and is safe for
// concurrent use.
type Assembler struct {
	strategies domain.StrategyReader
	offices    OfficeDirectory
	clock      func() time.Time
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithClock overrides the clock used for the date stamp.
func WithClock(clock func() time.Time) Option {
	return func(a *Assembler) {
		a.clock = clock
	}
}

// NewAssembler creates an assembler.
func NewAssembler(strategies domain.StrategyReader, offices OfficeDirectory, opts ...Option) *Assembler {
	a := &Assembler{
		strategies: strategies,
		offices:    offices,
		clock:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble renders a letter. An empty tone falls back to the intake's tone
// and then to formal. A missing match or strategy yields an empty reason
// section; assembly itself never fails.
func (a *Assembler) Assemble(intake domain.Intake, tone domain.Tone, paywallUnlocked bool) domain.LetterDraft {
	if tone == "" {
		tone = intake.Tone
	}
	tone = domain.ParseTone(string(tone))
	tmpl := TemplateFor(tone)
	ans := intake.Answers

	merchant := orDefault(ans.Merchant, PlaceholderMerchant)
	amount := formatAmount(ans.Amount)
	date := orDefault(ans.TransactionDate, PlaceholderDate)
	name := orDefault(ans.Name, PlaceholderName)

	evidence := GateEvidence(evidenceItems(intake), paywallUnlocked)
	reason := a.reasonSection(intake.MatchedReason, tmpl, paywallUnlocked)
	tips := GateStrategyTips(strategyTips(intake), intake.RebuttalStrategy, paywallUnlocked)
	if !paywallUnlocked && len(tips) > 0 {
		// A locked letter carries one tip in total.
		reason.StrategyTips = nil
	}

	draft := domain.LetterDraft{
		Tone:            tone,
		PaywallUnlocked: paywallUnlocked,
		Header: domain.LetterHeader{
			Date: a.clock().Format(dateLayout),
			Sender: []string{
				name,
				orDefault(ans.Address, PlaceholderAddress),
				orDefault(ans.CityStateZip, PlaceholderCityStateZip),
				orDefault(ans.Phone, PlaceholderPhone),
				orDefault(ans.Email, PlaceholderEmail),
			},
			Recipient: a.office(ans.Issuer),
			Subject:   fmt.Sprintf("Dispute of Charge - %s - %s - %s", merchant, date, amount),
		},
		Greeting: tmpl.Greeting,
		Opening:  fmt.Sprintf("%s a %s charge made to %s on %s.", tmpl.Opener, amount, merchant, date),
		Evidence: domain.EvidenceSection{Summary: evidenceSentence(ans.EvidenceSummary)},
		Reason:       reason,
		StrategyTips: tips,
		Request: domain.RequestSection{
			Request:   tmpl.Request,
			Closing:   tmpl.Closing,
			SignOff:   signOff,
			Signature: name,
		},
		Exhibits: LabelExhibits(evidence),
	}

	if paywallUnlocked {
		draft.CFPBComplaint = CFPBComplaint(merchant)
	}
	return draft
}

func (a *Assembler) office(issuer string) domain.DisputeOffice {
	if a.offices == nil {
		return domain.DisputeOffice{}
	}
	return a.offices.DisputeOffice(issuer)
}

func (a *Assembler) reasonSection(matched *domain.MatchResult, tmpl Template, unlocked bool) domain.ReasonSection {
	if matched == nil || !matched.Matched() || a.strategies == nil {
		return domain.ReasonSection{}
	}
	strategy, err := a.strategies.Strategy(matched.Network, matched.ReasonCode)
	if err != nil {
		return domain.ReasonSection{}
	}

	title := strategy.CustomerStrategy
	if title == "" {
		title = matched.Title
	}
	title = TruncateTitle(title)

	statement := fmt.Sprintf("%s this charge under reason code %s", tmpl.Opener, matched.ReasonCode)
	if title != "" {
		statement += " - " + title
	}

	return domain.ReasonSection{
		Network:           matched.Network,
		Code:              matched.ReasonCode,
		Statement:         statement + ".",
		Title:             title,
		MerchantRebuttals: strategy.CommonMerchantRebuttals,
		StrategyTips:      gateReasonTips(strategy.StrategyTips, unlocked),
		EvidenceFocus:     strategy.EvidenceToFocusOn,
		SuggestedArgument: strategy.CustomerStrategy,
	}
}

// GateEvidence keeps only the first item while the paywall is locked.
func GateEvidence(items []domain.EvidenceItem, unlocked bool) []domain.EvidenceItem {
	if !unlocked && len(items) > 1 {
		items = items[:1]
	}
	out := make([]domain.EvidenceItem, len(items))
	copy(out, items)
	return out
}

// GateStrategyTips keeps the first tip only. The full list is released
// solely through a non-empty override on an unlocked letter.
func GateStrategyTips(tips, override []string, unlocked bool) []string {
	src := tips
	if unlocked && len(override) > 0 {
		src = override
	} else if len(src) > 1 {
		src = src[:1]
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}

func gateReasonTips(tips []string, unlocked bool) []string {
	if !unlocked && len(tips) > 1 {
		tips = tips[:1]
	}
	out := make([]string, len(tips))
	copy(out, tips)
	return out
}

// LabelExhibits labels items A, B, C... by position in the given list.
func LabelExhibits(items []domain.EvidenceItem) []domain.Exhibit {
	exhibits := make([]domain.Exhibit, 0, len(items))
	for i, item := range items {
		letter := ExhibitLetter(i)
		desc := strings.TrimSpace(item.Description)
		if desc == "" {
			desc = defaultEvidenceDescription
		}
		exhibits = append(exhibits, domain.Exhibit{
			Letter:      letter,
			Label:       "Exhibit " + letter,
			Description: desc,
		})
	}
	return exhibits
}

// ExhibitLetter maps 0 to "A", 25 to "Z", 26 to "AA" and so on.
func ExhibitLetter(i int) string {
	var b []byte
	for i >= 0 {
		b = append([]byte{byte('A' + i%26)}, b...)
		i = i/26 - 1
	}
	return string(b)
}

// TruncateTitle keeps the first 80 runes and appends "..." when cut.
func TruncateTitle(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= maxTitleLength {
		return s
	}
	return string([]rune(s)[:maxTitleLength]) + "..."
}

func evidenceItems(intake domain.Intake) []domain.EvidenceItem {
	if len(intake.Evidence) > 0 {
		return intake.Evidence
	}
	if intake.MatchedReason == nil || intake.MatchedReason.Reason == nil {
		return nil
	}
	reqs := intake.MatchedReason.Reason.EvidenceRequirements
	items := make([]domain.EvidenceItem, 0, len(reqs))
	for _, r := range reqs {
		items = append(items, domain.EvidenceItem{Description: r})
	}
	return items
}

func strategyTips(intake domain.Intake) []string {
	if len(intake.StrategyTips) > 0 {
		return intake.StrategyTips
	}
	if intake.MatchedReason != nil && intake.MatchedReason.Reason != nil {
		return intake.MatchedReason.Reason.StrategyTips
	}
	return nil
}

func evidenceSentence(summary string) string {
	if summary = strings.TrimSpace(summary); summary != "" {
		return fmt.Sprintf("I am providing supporting evidence including %s.", strings.TrimRight(summary, "."))
	}
	return "Although I have limited supporting evidence available, the facts remain clear as outlined above."
}

func formatAmount(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return PlaceholderAmount
	}
	if strings.HasPrefix(raw, "$") {
		return raw
	}
	return "$" + raw
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}
