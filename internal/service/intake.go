package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/disputekit/disputekit-server/internal/domain"
	"github.com/disputekit/disputekit-server/internal/matcher"
)

// SubmitIntake enriches a submission with keyword recommendations and stores
// it under a new session id.
func (s *DisputeService) SubmitIntake(ctx context.Context, req IntakeRequest) (domain.Intake, error) {
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return domain.Intake{}, domain.NewValidationError("description", "description is required", nil)
	}

	_, engine, err := s.current(ctx)
	if err != nil {
		return domain.Intake{}, err
	}

	network := domain.NormalizeNetwork(req.Network)
	if network == "" {
		network = DefaultNetwork
	}

	intake := domain.Intake{
		SessionID:   s.newID(),
		Description: description,
		Network:     network,
		Answers:     req.Answers,
		Tone:        req.Tone,
		Evidence:    req.Evidence,
		Keywords:    matcher.ExtractKeywords(description),
		CreatedAt:   s.clock().UTC(),
	}

	if len(intake.Keywords) > 0 {
		matches, err := engine.Keywords.Match(network, intake.Keywords)
		if err != nil {
			return domain.Intake{}, err
		}
		if len(matches) > maxRecommendations {
			matches = matches[:maxRecommendations]
		}
		intake.RecommendedReasons = matches
	}

	if err := s.sessions.Save(ctx, intake); err != nil {
		return domain.Intake{}, fmt.Errorf("failed to save intake: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"session_id":      intake.SessionID,
		"network":         network,
		"recommendations": len(intake.RecommendedReasons),
	}).Info("Intake submitted")

	return intake, nil
}

// GetIntake loads a stored intake or returns domain.ErrNotFound.
func (s *DisputeService) GetIntake(ctx context.Context, sessionID string) (domain.Intake, error) {
	if strings.TrimSpace(sessionID) == "" {
		return domain.Intake{}, domain.NewValidationError("sessionId", "session id is required", nil)
	}
	return s.sessions.Get(ctx, sessionID)
}
