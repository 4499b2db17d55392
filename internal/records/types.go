// Package records keeps the dispute-session log and paywall entitlements.
package records

import (
	"context"
	"io"
	"strings"
	"time"
)

// Outcome is the resolution state of a recorded dispute.
type Outcome string

const (
	OutcomePending   Outcome = "pending"
	OutcomeWon       Outcome = "won"
	OutcomeLost      Outcome = "lost"
	OutcomeWithdrawn Outcome = "withdrawn"
)

// ParseOutcome validates an outcome string.
func ParseOutcome(s string) (Outcome, bool) {
	switch o := Outcome(strings.ToLower(strings.TrimSpace(s))); o {
	case OutcomePending, OutcomeWon, OutcomeLost, OutcomeWithdrawn:
		return o, true
	default:
		return "", false
	}
}

// DisputeSession is one generated letter as recorded for follow-up.
type DisputeSession struct {
	ID              int64     `json:"id,omitempty"`
	SessionID       string    `json:"session_id"`
	Merchant        string    `json:"merchant"`
	Amount          string    `json:"amount"`
	Network         string    `json:"network"`
	ReasonCode      string    `json:"reason_code"`
	StrategyTips    []string  `json:"strategy_tips"`
	PaywallUnlocked bool      `json:"paywall_unlocked"`
	TransactionDate string    `json:"transaction_date,omitempty"`
	Outcome         Outcome   `json:"outcome"`
	SuccessScore    int       `json:"success_score"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Filter narrows ListSessions. Zero values match everything.
type Filter struct {
	Merchant string // case-insensitive substring
	Network  string
	Outcome  Outcome
	Limit    int
}

// DefaultListLimit caps ListSessions when no limit is given.
const DefaultListLimit = 100

// maxExportLimit is the maximum number of entries to export at once.
const maxExportLimit = 1000000

func (f Filter) limit() int {
	if f.Limit <= 0 {
		return DefaultListLimit
	}
	return f.Limit
}

// Store defines the dispute-record and entitlement storage operations.
type Store interface {
	// RecordSession inserts a session, or updates it when the session id is
	// already recorded.
	RecordSession(ctx context.Context, session *DisputeSession) error

	// ListSessions returns matching sessions, newest first.
	ListSessions(ctx context.Context, filter Filter) ([]*DisputeSession, error)

	// UpdateOutcome sets the outcome of a recorded session.
	UpdateOutcome(ctx context.Context, sessionID string, outcome Outcome) error

	// GrantEntitlement unlocks the paywall for an email address.
	GrantEntitlement(ctx context.Context, email string) error

	// IsEntitled reports whether an email address has unlocked the paywall.
	IsEntitled(ctx context.Context, email string) (bool, error)

	// ExportJSON exports all sessions to a JSON writer.
	ExportJSON(ctx context.Context, writer io.Writer) error

	// Close closes the store and releases resources.
	Close() error
}

// SessionExport represents the JSON export format.
type SessionExport struct {
	Version    string            `json:"version"`
	ExportedAt time.Time         `json:"exported_at"`
	Count      int               `json:"count"`
	Sessions   []*DisputeSession `json:"sessions"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// containsPattern builds a LIKE pattern matching s literally anywhere in the
// column. Queries using it declare ESCAPE '\'.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
