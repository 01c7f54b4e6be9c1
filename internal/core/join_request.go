package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Miandari/dailygrit/internal/repository"
	"github.com/Miandari/dailygrit/pkg/logger"
	"github.com/Miandari/dailygrit/pkg/models"
)

// RequestJoin files a pending request for a private challenge
func (s *participantService) RequestJoin(ctx context.Context, actorID, challengeID string) (*models.JoinRequest, error) {
	challenge, err := s.store.Challenges().GetByID(ctx, challengeID)
	if err != nil {
		return nil, notFoundAs(err, models.ErrChallengeNotFound)
	}
	if challenge.IsPublic {
		return nil, models.ValidationError("challenge_id", "challenge is public, join it directly")
	}

	if _, err := s.store.Participants().GetByChallengeAndUser(ctx, challengeID, actorID); err == nil {
		return nil, fmt.Errorf("already participating in this challenge: %w", models.ErrConflict)
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	request := &models.JoinRequest{
		ID:          uuid.New().String(),
		ChallengeID: challengeID,
		UserID:      actorID,
	}
	if err := s.store.JoinRequests().Create(ctx, request); err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, fmt.Errorf("join request already submitted: %w", models.ErrConflict)
		}
		return nil, notFoundAs(err, models.ErrChallengeNotFound)
	}

	logger.WithFields(map[string]interface{}{
		"component":    "participants",
		"challenge_id": challengeID,
		"request_id":   request.ID,
	}).Info("join request submitted")

	return request, nil
}

// ListRequests shows the creator the challenge's pending requests
func (s *participantService) ListRequests(ctx context.Context, actorID, challengeID string) ([]*models.JoinRequest, error) {
	challenge, err := s.store.Challenges().GetByID(ctx, challengeID)
	if err != nil {
		return nil, notFoundAs(err, models.ErrChallengeNotFound)
	}
	if challenge.CreatorID != actorID {
		return nil, fmt.Errorf("%w: only the challenge creator can review join requests", models.ErrUnauthorized)
	}

	requests, err := s.store.JoinRequests().ListPending(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	if requests == nil {
		requests = []*models.JoinRequest{}
	}
	return requests, nil
}

// ApproveRequest enrolls the requester and marks the request approved
func (s *participantService) ApproveRequest(ctx context.Context, actorID, requestID string) (*models.Participant, error) {
	var participant *models.Participant
	err := s.store.WithTransaction(ctx, func(tx repository.Store) error {
		request, err := s.pendingRequest(ctx, tx, actorID, requestID)
		if err != nil {
			return err
		}

		participant = &models.Participant{
			ID:          uuid.New().String(),
			ChallengeID: request.ChallengeID,
			UserID:      request.UserID,
			JoinedAt:    s.clock().UTC(),
			Status:      models.ParticipantActive,
		}
		if err := tx.Participants().Create(ctx, participant); err != nil {
			if errors.Is(err, models.ErrConflict) {
				return fmt.Errorf("requester already participates in this challenge: %w", models.ErrConflict)
			}
			return err
		}
		return tx.JoinRequests().Review(ctx, request.ID, models.JoinRequestApproved, actorID, s.clock().UTC())
	})
	if err != nil {
		return nil, err
	}

	logger.WithFields(map[string]interface{}{
		"component":      "participants",
		"challenge_id":   participant.ChallengeID,
		"participant_id": participant.ID,
		"request_id":     requestID,
	}).Info("join request approved")

	return participant, nil
}

// RejectRequest marks the request rejected; the requester cannot ask again
func (s *participantService) RejectRequest(ctx context.Context, actorID, requestID string) (*models.JoinRequest, error) {
	var request *models.JoinRequest
	err := s.store.WithTransaction(ctx, func(tx repository.Store) error {
		var err error
		request, err = s.pendingRequest(ctx, tx, actorID, requestID)
		if err != nil {
			return err
		}
		if err := tx.JoinRequests().Review(ctx, request.ID, models.JoinRequestRejected, actorID, s.clock().UTC()); err != nil {
			return err
		}
		request, err = tx.JoinRequests().GetByID(ctx, request.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.WithFields(map[string]interface{}{
		"component":    "participants",
		"challenge_id": request.ChallengeID,
		"request_id":   requestID,
	}).Info("join request rejected")

	return request, nil
}

func (s *participantService) pendingRequest(ctx context.Context, tx repository.Store, actorID, requestID string) (*models.JoinRequest, error) {
	request, err := tx.JoinRequests().GetByID(ctx, requestID)
	if err != nil {
		return nil, notFoundAs(err, models.ErrJoinRequestNotFound)
	}
	challenge, err := tx.Challenges().GetByID(ctx, request.ChallengeID)
	if err != nil {
		return nil, notFoundAs(err, models.ErrChallengeNotFound)
	}
	if challenge.CreatorID != actorID {
		return nil, fmt.Errorf("%w: only the challenge creator can review join requests", models.ErrUnauthorized)
	}
	if request.Status != models.JoinRequestPending {
		return nil, models.ValidationError("status", "join request has already been reviewed")
	}
	return request, nil
}
