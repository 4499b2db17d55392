package service

import (
	"context"
	"io"
	"strings"

	"github.com/disputekit/disputekit-server/internal/domain"
	"github.com/disputekit/disputekit-server/internal/records"
)

var errRecordsDisabled = domain.NewDisputeError(domain.CodeStoreUnavailable,
	"dispute records are not configured", "", domain.ErrStoreUnavailable)

// ListDisputes returns recorded disputes, newest first.
func (s *DisputeService) ListDisputes(ctx context.Context, filter records.Filter) ([]*records.DisputeSession, error) {
	if s.records == nil {
		return nil, errRecordsDisabled
	}
	filter.Network = domain.NormalizeNetwork(filter.Network)
	return s.records.ListSessions(ctx, filter)
}

// UpdateOutcome sets the outcome of a recorded dispute.
func (s *DisputeService) UpdateOutcome(ctx context.Context, sessionID, outcome string) error {
	if s.records == nil {
		return errRecordsDisabled
	}
	if strings.TrimSpace(sessionID) == "" {
		return domain.NewValidationError("sessionId", "session id is required", nil)
	}
	o, ok := records.ParseOutcome(outcome)
	if !ok {
		return domain.NewValidationError("outcome", "must be one of pending, won, lost, withdrawn", outcome)
	}
	return s.records.UpdateOutcome(ctx, sessionID, o)
}

// GrantEntitlement unlocks the paywall for an email address.
func (s *DisputeService) GrantEntitlement(ctx context.Context, email string) error {
	if s.records == nil {
		return errRecordsDisabled
	}
	if !strings.Contains(email, "@") {
		return domain.NewValidationError("email", "a valid email address is required", email)
	}
	return s.records.GrantEntitlement(ctx, email)
}

// IsEntitled reports whether email has unlocked the paywall. Without a
// records store nobody is entitled.
func (s *DisputeService) IsEntitled(ctx context.Context, email string) (bool, error) {
	if s.records == nil || strings.TrimSpace(email) == "" {
		return false, nil
	}
	return s.records.IsEntitled(ctx, email)
}

// ExportDisputes writes every recorded dispute as JSON.
func (s *DisputeService) ExportDisputes(ctx context.Context, w io.Writer) error {
	if s.records == nil {
		return errRecordsDisabled
	}
	return s.records.ExportJSON(ctx, w)
}
