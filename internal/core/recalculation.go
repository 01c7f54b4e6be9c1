package core

import (
	"context"
	"fmt"
	"time"

	"github.com/Miandari/dailygrit/internal/lock"
	"github.com/Miandari/dailygrit/internal/repository"
	"github.com/Miandari/dailygrit/internal/scoring"
	"github.com/Miandari/dailygrit/pkg/logger"
	"github.com/Miandari/dailygrit/pkg/metrics"
	"github.com/Miandari/dailygrit/pkg/models"
)

// RecalculationService rescores a challenge's historical entries after its
// scoring configuration changed
type RecalculationService interface {
	Recalculate(ctx context.Context, actorID, challengeID string) (*models.RecalculationResponse, error)
}

type recalculationService struct {
	store   repository.Store
	locker  lock.Locker
	metrics *metrics.Recorder
}

// NewRecalculationService creates a new recalculation service
func NewRecalculationService(store repository.Store, locker lock.Locker, recorder *metrics.Recorder) RecalculationService {
	return &recalculationService{
		store:   store,
		locker:  locker,
		metrics: recorder,
	}
}

// Recalculate rescores every entry of every participant. Each entry uses the
// participant's current stored streak, not the streak in effect on its date.
// Streak fields are never written. A participant that fails is rolled back,
// logged and skipped; the count covers committed participants only.
func (s *recalculationService) Recalculate(ctx context.Context, actorID, challengeID string) (*models.RecalculationResponse, error) {
	started := time.Now()

	challenge, err := s.store.Challenges().GetByID(ctx, challengeID)
	if err != nil {
		return nil, notFoundAs(err, models.ErrChallengeNotFound)
	}
	if challenge.CreatorID != actorID {
		return nil, fmt.Errorf("%w: only the challenge creator can recalculate points", models.ErrUnauthorized)
	}

	participants, err := s.store.Participants().ListByChallenge(ctx, challengeID)
	if err != nil {
		return nil, err
	}

	log := logger.WithFields(map[string]interface{}{
		"component":    "recalculation",
		"challenge_id": challengeID,
	})

	recalculated, failed := 0, 0
	for i, p := range participants {
		if ctx.Err() != nil {
			failed += len(participants) - i
			log.With("remaining", len(participants)-i).Warn("recalculation stopped: context done")
			break
		}

		n, err := s.recalculateParticipant(ctx, challenge, p.ID)
		if err != nil {
			failed++
			log.With("participant_id", p.ID).With("error", err.Error()).Warn("participant recalculation failed, skipping")
			continue
		}
		recalculated += n
	}

	s.metrics.Recalculated(recalculated, failed, started)
	log.With("recalculated", recalculated).With("failed_participants", failed).Info("recalculation finished")

	return &models.RecalculationResponse{
		ChallengeID:  challengeID,
		Recalculated: recalculated,
	}, nil
}

func (s *recalculationService) recalculateParticipant(ctx context.Context, challenge *models.Challenge, participantID string) (int, error) {
	unlock, err := s.locker.Lock(ctx, participantLockKey(participantID))
	if err != nil {
		return 0, models.PersistenceError("lock_participant", err)
	}
	defer unlock()

	count := 0
	err = s.store.WithTransaction(ctx, func(tx repository.Store) error {
		count = 0

		participant, err := tx.Participants().GetForUpdate(ctx, participantID)
		if err != nil {
			return notFoundAs(err, models.ErrParticipantNotFound)
		}

		entries, err := tx.Entries().ListByParticipant(ctx, participantID)
		if err != nil {
			return err
		}

		for _, entry := range entries {
			score := scoring.EntryScore(challenge.Metrics, entry.MetricData, challenge.BonusConfig, participant.CurrentStreak)
			if err := tx.Entries().UpdatePoints(ctx, entry.ID, score.BasePoints, score.BonusPoints); err != nil {
				return err
			}
			count++
		}

		total, err := tx.Entries().SumPoints(ctx, participantID)
		if err != nil {
			return err
		}
		return tx.Participants().UpdateTotalPoints(ctx, participantID, total)
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}
