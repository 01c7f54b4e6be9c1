package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Miandari/dailygrit/internal/repository"
	"github.com/Miandari/dailygrit/internal/scoring"
	"github.com/Miandari/dailygrit/pkg/logger"
	"github.com/Miandari/dailygrit/pkg/models"
	"github.com/Miandari/dailygrit/pkg/utils"
)

// ChallengeService manages challenges and their scoring configuration
type ChallengeService interface {
	Create(ctx context.Context, actorID string, req models.CreateChallengeRequest) (*models.Challenge, error)
	Get(ctx context.Context, challengeID string) (*models.Challenge, error)
	UpdateScoring(ctx context.Context, actorID, challengeID string, req models.UpdateScoringRequest) (*models.RecalculationResponse, error)
	Delete(ctx context.Context, actorID, challengeID string) error
}

type challengeService struct {
	store  repository.Store
	recalc RecalculationService
	clock  utils.Clock
}

// NewChallengeService creates a new challenge service
func NewChallengeService(store repository.Store, recalc RecalculationService, clock utils.Clock) ChallengeService {
	return &challengeService{
		store:  store,
		recalc: recalc,
		clock:  clock,
	}
}

// Create validates and stores a challenge; the creator joins it straight away
func (s *challengeService) Create(ctx context.Context, actorID string, req models.CreateChallengeRequest) (*models.Challenge, error) {
	if strings.TrimSpace(actorID) == "" {
		return nil, fmt.Errorf("%w: missing identity", models.ErrUnauthorized)
	}

	if req.DurationDays == 0 {
		req.DurationDays = models.DefaultDurationDays
	}

	today := s.clock.Today()
	startsAt := today
	var errs []error
	if strings.TrimSpace(req.StartsAt) != "" {
		day, err := utils.ParseDate(strings.TrimSpace(req.StartsAt), today.Location())
		if err != nil {
			errs = append(errs, models.ValidationError("starts_at", "%v", err))
		} else {
			startsAt = day
		}
	}
	errs = append(errs,
		utils.ValidateChallengeName(req.Name),
		utils.ValidateDescription(req.Description),
		utils.ValidateDurationDays(req.DurationDays),
		scoring.Validate(req.Metrics),
		scoring.ValidateBonus(req.BonusConfig),
	)
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	challenge := &models.Challenge{
		ID:                  uuid.New().String(),
		CreatorID:           actorID,
		Name:                strings.TrimSpace(req.Name),
		Description:         req.Description,
		StartsAt:            startsAt,
		EndsAt:              startsAt.AddDate(0, 0, req.DurationDays),
		DurationDays:        req.DurationDays,
		IsPublic:            isPublic,
		LockEntriesAfterDay: req.LockEntriesAfterDay,
		Metrics:             req.Metrics,
		BonusConfig:         req.BonusConfig,
	}
	if !isPublic {
		code := newInviteCode()
		challenge.InviteCode = &code
	}

	err := s.store.WithTransaction(ctx, func(tx repository.Store) error {
		if err := tx.Challenges().Create(ctx, challenge); err != nil {
			return err
		}
		return tx.Participants().Create(ctx, &models.Participant{
			ID:          uuid.New().String(),
			ChallengeID: challenge.ID,
			UserID:      actorID,
			JoinedAt:    s.clock().UTC(),
			Status:      models.ParticipantActive,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create challenge: %w", err)
	}

	logger.WithFields(map[string]interface{}{
		"component":    "challenges",
		"challenge_id": challenge.ID,
		"creator_id":   actorID,
		"metrics":      len(challenge.Metrics),
	}).Info("challenge created")

	return challenge, nil
}

// Get retrieves a challenge by ID
func (s *challengeService) Get(ctx context.Context, challengeID string) (*models.Challenge, error) {
	challenge, err := s.store.Challenges().GetByID(ctx, challengeID)
	if err != nil {
		return nil, notFoundAs(err, models.ErrChallengeNotFound)
	}
	return challenge, nil
}

// UpdateScoring replaces the metrics and bonus settings, then rescores history
func (s *challengeService) UpdateScoring(ctx context.Context, actorID, challengeID string, req models.UpdateScoringRequest) (*models.RecalculationResponse, error) {
	challenge, err := s.Get(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	if challenge.CreatorID != actorID {
		return nil, fmt.Errorf("%w: only the challenge creator can change scoring", models.ErrUnauthorized)
	}

	if err := errors.Join(scoring.Validate(req.Metrics), scoring.ValidateBonus(req.BonusConfig)); err != nil {
		return nil, err
	}

	if err := s.store.Challenges().UpdateScoring(ctx, challengeID, req.Metrics, req.BonusConfig); err != nil {
		return nil, notFoundAs(err, models.ErrChallengeNotFound)
	}

	logger.WithFields(map[string]interface{}{
		"component":    "challenges",
		"challenge_id": challengeID,
		"metrics":      len(req.Metrics),
	}).Info("scoring configuration updated")

	return s.recalc.Recalculate(ctx, actorID, challengeID)
}

// Delete permanently removes a challenge with its participants, entries and join requests
func (s *challengeService) Delete(ctx context.Context, actorID, challengeID string) error {
	challenge, err := s.Get(ctx, challengeID)
	if err != nil {
		return err
	}
	if challenge.CreatorID != actorID {
		return fmt.Errorf("%w: only the challenge creator can delete it", models.ErrUnauthorized)
	}

	if err := s.store.Challenges().Delete(ctx, challengeID); err != nil {
		return notFoundAs(err, models.ErrChallengeNotFound)
	}

	logger.WithFields(map[string]interface{}{
		"component":    "challenges",
		"challenge_id": challengeID,
		"creator_id":   actorID,
	}).Info("challenge deleted")
	return nil
}

// newInviteCode returns an 8 character upper-case code
func newInviteCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
}

// elapsedDays counts challenge days reached by today, capped at the duration
func elapsedDays(challenge *models.Challenge, today time.Time) int {
	days := utils.DaysBetween(challenge.StartsAt.In(today.Location()), today) + 1
	if days < 0 {
		return 0
	}
	if days > challenge.DurationDays {
		return challenge.DurationDays
	}
	return days
}
