package service

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/disputekit/disputekit-server/internal/catalog"
	"github.com/disputekit/disputekit-server/internal/domain"
	"github.com/disputekit/disputekit-server/internal/letter"
	"github.com/disputekit/disputekit-server/internal/matcher"
	"github.com/disputekit/disputekit-server/internal/records"
	"github.com/disputekit/disputekit-server/internal/scoring"
)

// GenerateLetter selects the reason, scores the intake and assembles the
// letter. The enriched intake is written back when the request referenced a
// session, and the dispute is recorded when a records store is configured.
func (s *DisputeService) GenerateLetter(ctx context.Context, req LetterRequest) (LetterResult, error) {
	return s.generate(ctx, req, true)
}

// PreviewLetter assembles a locked letter without storing anything.
func (s *DisputeService) PreviewLetter(ctx context.Context, req LetterRequest) (LetterResult, error) {
	req.PaywallUnlocked = false
	return s.generate(ctx, req, false)
}

func (s *DisputeService) generate(ctx context.Context, req LetterRequest, persist bool) (LetterResult, error) {
	intake, fromSession, err := s.requestIntake(ctx, req)
	if err != nil {
		return LetterResult{}, err
	}

	snap, engine, err := s.current(ctx)
	if err != nil {
		return LetterResult{}, err
	}

	if req.Tone != "" {
		intake.Tone = req.Tone
	}
	intake.Tone = domain.ParseTone(string(intake.Tone))
	if len(req.Evidence) > 0 {
		intake.Evidence = req.Evidence
	}
	if len(req.StrategyTips) > 0 {
		intake.StrategyTips = req.StrategyTips
	}
	if len(req.RebuttalStrategy) > 0 {
		intake.RebuttalStrategy = req.RebuttalStrategy
	}

	matched := s.selectReason(snap, engine, intake)
	intake.MatchedReason = &matched

	score := scoring.EstimateSuccessScore(intake)
	intake.SuccessScore = &score

	assembler := letter.NewAssembler(snap.Strategies, snap.Directory, letter.WithClock(s.clock))
	draft := assembler.Assemble(intake, intake.Tone, req.PaywallUnlocked)

	html, err := letter.RenderHTML(draft)
	if err != nil {
		return LetterResult{}, err
	}

	result := LetterResult{
		SessionID:     intake.SessionID,
		Letter:        draft,
		Text:          letter.RenderText(draft),
		HTML:          html,
		SuccessScore:  score,
		MatchedReason: matched,
	}

	if persist {
		result.SessionID = s.persist(ctx, intake, draft, fromSession)
	}

	s.logger.WithFields(logrus.Fields{
		"session_id":       result.SessionID,
		"reason_code":      matched.ReasonCode,
		"tone":             intake.Tone,
		"paywall_unlocked": req.PaywallUnlocked,
		"success_score":    score,
		"preview":          !persist,
	}).Info("Letter generated")

	return result, nil
}

// requestIntake resolves the intake a letter request refers to.
func (s *DisputeService) requestIntake(ctx context.Context, req LetterRequest) (domain.Intake, bool, error) {
	if id := strings.TrimSpace(req.SessionID); id != "" {
		intake, err := s.sessions.Get(ctx, id)
		if err != nil {
			return domain.Intake{}, false, err
		}
		intake.SessionID = id
		return intake, true, nil
	}
	if req.Intake == nil {
		return domain.Intake{}, false, domain.NewValidationError("intake", "either sessionId or intake is required", nil)
	}
	return req.Intake.Clone(), false, nil
}

// selectReason picks the reason a letter argues: an existing selection, the
// recommendation on the card brand, the first recommendation, then the
// resolver over the description.
func (s *DisputeService) selectReason(snap *catalog.Snapshot, engine *matcher.Engine, intake domain.Intake) domain.MatchResult {
	var matched domain.MatchResult
	switch {
	case intake.MatchedReason != nil && intake.MatchedReason.Matched():
		matched = *intake.MatchedReason
	default:
		matched = recommendedForBrand(intake.RecommendedReasons, intake.Answers.CardBrand)
		if !matched.Matched() && strings.TrimSpace(intake.Description) != "" {
			resolved, err := engine.Resolver.Resolve(intake.Network, intake.Description)
			if err != nil {
				s.logger.WithError(err).WithField("session_id", intake.SessionID).Warn("Reason resolution failed")
			} else {
				matched = resolved
			}
		}
	}

	if matched.Matched() && matched.Reason == nil {
		if entry, err := snap.Catalog.Get(matched.Network, matched.ReasonCode); err == nil {
			matched = domain.NewMatchResult(entry, matched.Method, matched.Score)
		}
	}
	return matched
}

func recommendedForBrand(recommended []domain.MatchResult, brand string) domain.MatchResult {
	brand = domain.NormalizeNetwork(brand)
	if brand != "" {
		for _, r := range recommended {
			if r.Matched() && r.Network == brand {
				return r
			}
		}
	}
	for _, r := range recommended {
		if r.Matched() {
			return r
		}
	}
	return domain.NoMatch()
}

// persist writes the enriched intake back and records the dispute, returning
// the session id used. Failures are logged and do not fail the letter.
func (s *DisputeService) persist(ctx context.Context, intake domain.Intake, draft domain.LetterDraft, fromSession bool) string {
	if fromSession {
		if err := s.sessions.Save(ctx, intake); err != nil {
			s.logger.WithError(err).WithField("session_id", intake.SessionID).Warn("Failed to write back intake")
		}
	}

	if s.records == nil {
		return intake.SessionID
	}
	if intake.SessionID == "" {
		intake.SessionID = s.newID()
	}

	session := &records.DisputeSession{
		SessionID:       intake.SessionID,
		Merchant:        intake.Answers.Merchant,
		Amount:          intake.Answers.Amount,
		Network:         intake.MatchedReason.Network,
		ReasonCode:      intake.MatchedReason.ReasonCode,
		StrategyTips:    draft.StrategyTips,
		PaywallUnlocked: draft.PaywallUnlocked,
		TransactionDate: intake.Answers.TransactionDate,
		Outcome:         records.OutcomePending,
		SuccessScore:    *intake.SuccessScore,
	}
	if err := s.records.RecordSession(ctx, session); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.WithError(err).WithField("session_id", intake.SessionID).Warn("Failed to record dispute session")
	}
	return intake.SessionID
}
