// Package core holds the protocol-agnostic services: entry submission,
// recalculation, challenge management and participation.
package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Miandari/dailygrit/internal/lock"
	"github.com/Miandari/dailygrit/internal/repository"
	"github.com/Miandari/dailygrit/internal/scoring"
	"github.com/Miandari/dailygrit/internal/streak"
	"github.com/Miandari/dailygrit/pkg/logger"
	"github.com/Miandari/dailygrit/pkg/metrics"
	"github.com/Miandari/dailygrit/pkg/models"
	"github.com/Miandari/dailygrit/pkg/utils"
)

// EntryService handles daily entry submission and reads
type EntryService interface {
	Submit(ctx context.Context, actorID string, req models.SubmitEntryRequest) (*models.SubmitEntryResponse, error)
	Get(ctx context.Context, actorID, participantID, date string) (*models.DailyEntry, error)
	List(ctx context.Context, actorID, participantID string) ([]*models.DailyEntry, error)
}

type entryService struct {
	store   repository.Store
	locker  lock.Locker
	clock   utils.Clock
	metrics *metrics.Recorder
}

// NewEntryService creates a new entry service
func NewEntryService(store repository.Store, locker lock.Locker, clock utils.Clock, recorder *metrics.Recorder) EntryService {
	return &entryService{
		store:   store,
		locker:  locker,
		clock:   clock,
		metrics: recorder,
	}
}

// Submit scores and stores one day's entry, then refreshes the participant's
// streak and total inside the same transaction.
func (s *entryService) Submit(ctx context.Context, actorID string, req models.SubmitEntryRequest) (resp *models.SubmitEntryResponse, err error) {
	started := time.Now()
	defer func() {
		s.metrics.EntrySubmitted(submitResult(err), started)
	}()

	today := s.clock.Today()
	entryDate, err := resolveEntryDate(req.Date, today)
	if err != nil {
		return nil, err
	}

	participant, err := s.ownedParticipant(ctx, actorID, req.ParticipantID)
	if err != nil {
		return nil, err
	}

	challenge, err := s.store.Challenges().GetByID(ctx, participant.ChallengeID)
	if err != nil {
		return nil, notFoundAs(err, models.ErrChallengeNotFound)
	}

	unlock, err := s.locker.Lock(ctx, participantLockKey(participant.ID))
	if err != nil {
		return nil, models.PersistenceError("lock_participant", err)
	}
	defer unlock()

	metricData := req.MetricData
	if metricData == nil {
		metricData = map[string]interface{}{}
	}
	notes := req.Notes
	if notes != nil && strings.TrimSpace(*notes) == "" {
		notes = nil
	}

	err = s.store.WithTransaction(ctx, func(tx repository.Store) error {
		current, err := tx.Participants().GetForUpdate(ctx, participant.ID)
		if err != nil {
			return notFoundAs(err, models.ErrParticipantNotFound)
		}

		existing, err := tx.Entries().GetByDate(ctx, current.ID, entryDate)
		if err != nil && !errors.Is(err, models.ErrNotFound) {
			return err
		}
		if existing != nil && existing.IsLocked {
			return fmt.Errorf("entry for %s: %w", entryDate, models.ErrLocked)
		}

		score := scoring.EntryScore(challenge.Metrics, metricData, challenge.BonusConfig, current.CurrentStreak)

		entry := &models.DailyEntry{
			ParticipantID: current.ID,
			EntryDate:     entryDate,
			MetricData:    metricData,
			IsCompleted:   req.IsCompleted,
			IsLocked:      challenge.LockEntriesAfterDay,
			Notes:         notes,
			PointsEarned:  score.BasePoints,
			BonusPoints:   score.BonusPoints,
			SubmittedAt:   s.clock().UTC(),
		}
		if existing != nil {
			entry.ID = existing.ID
		}
		if err := tx.Entries().Upsert(ctx, entry); err != nil {
			return err
		}

		if req.IsCompleted {
			dates, err := tx.Entries().ListCompletedDates(ctx, current.ID)
			if err != nil {
				return err
			}
			streaks := streak.ComputeFromStrings(dates, today, current.LongestStreak)
			if err := tx.Participants().UpdateStreaks(ctx, current.ID, streaks.CurrentStreak, streaks.LongestStreak); err != nil {
				return err
			}
			current.CurrentStreak = streaks.CurrentStreak
			current.LongestStreak = streaks.LongestStreak
		}

		total, err := tx.Entries().SumPoints(ctx, current.ID)
		if err != nil {
			return err
		}
		if err := tx.Participants().UpdateTotalPoints(ctx, current.ID, total); err != nil {
			return err
		}
		current.TotalPoints = total

		resp = &models.SubmitEntryResponse{
			Entry:       entry,
			Score:       score,
			Participant: current,
		}
		return nil
	})
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"component":      "entries",
			"participant_id": participant.ID,
			"entry_date":     entryDate,
			"error":          err.Error(),
		}).Warn("entry submission rejected")
		return nil, err
	}

	s.metrics.PointsAwarded(resp.Score.BasePoints, resp.Score.BonusPoints)
	logger.WithFields(map[string]interface{}{
		"component":      "entries",
		"participant_id": participant.ID,
		"entry_date":     entryDate,
		"points":         resp.Score.TotalPoints,
		"current_streak": resp.Participant.CurrentStreak,
	}).Info("entry submitted")

	return resp, nil
}

// Get returns the actor's entry for one date
func (s *entryService) Get(ctx context.Context, actorID, participantID, date string) (*models.DailyEntry, error) {
	entryDate, err := resolveEntryDate(date, s.clock.Today())
	if err != nil {
		return nil, err
	}
	if _, err := s.ownedParticipant(ctx, actorID, participantID); err != nil {
		return nil, err
	}

	entry, err := s.store.Entries().GetByDate(ctx, participantID, entryDate)
	if err != nil {
		return nil, notFoundAs(err, models.ErrEntryNotFound)
	}
	return entry, nil
}

// List returns every entry of the actor's participation, oldest first
func (s *entryService) List(ctx context.Context, actorID, participantID string) ([]*models.DailyEntry, error) {
	if _, err := s.ownedParticipant(ctx, actorID, participantID); err != nil {
		return nil, err
	}

	entries, err := s.store.Entries().ListByParticipant(ctx, participantID)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []*models.DailyEntry{}
	}
	return entries, nil
}

func (s *entryService) ownedParticipant(ctx context.Context, actorID, participantID string) (*models.Participant, error) {
	if strings.TrimSpace(participantID) == "" {
		return nil, models.ValidationError("participant_id", "is required")
	}

	participant, err := s.store.Participants().GetByID(ctx, participantID)
	if err != nil {
		return nil, notFoundAs(err, models.ErrParticipantNotFound)
	}
	if participant.UserID != actorID {
		return nil, fmt.Errorf("%w: participant %s belongs to another user", models.ErrUnauthorized, participantID)
	}
	return participant, nil
}

// resolveEntryDate defaults to today and rejects dates after today
func resolveEntryDate(date string, today time.Time) (string, error) {
	if strings.TrimSpace(date) == "" {
		return utils.FormatDate(today), nil
	}
	day, err := utils.ParseDate(strings.TrimSpace(date), today.Location())
	if err != nil {
		return "", models.ValidationError("date", "%v", err)
	}
	if day.After(today) {
		return "", models.ValidationError("date", "%s is in the future", utils.FormatDate(day))
	}
	return utils.FormatDate(day), nil
}

func submitResult(err error) string {
	switch {
	case err == nil:
		return metrics.ResultAccepted
	case errors.Is(err, models.ErrLocked):
		return metrics.ResultLocked
	case errors.Is(err, models.ErrUnauthorized):
		return metrics.ResultUnauthorized
	case errors.Is(err, models.ErrValidation), errors.Is(err, models.ErrNotFound):
		return metrics.ResultInvalid
	default:
		return metrics.ResultError
	}
}

func participantLockKey(participantID string) string {
	return "participant:" + participantID
}

// notFoundAs swaps a generic not-found for a resource-specific one
func notFoundAs(err, target error) error {
	if errors.Is(err, models.ErrNotFound) {
		return target
	}
	return err
}
