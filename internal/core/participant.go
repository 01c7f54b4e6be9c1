package core

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/Miandari/dailygrit/internal/lock"
	"github.com/Miandari/dailygrit/internal/repository"
	"github.com/Miandari/dailygrit/pkg/logger"
	"github.com/Miandari/dailygrit/pkg/models"
	"github.com/Miandari/dailygrit/pkg/utils"
)

// ParticipantService manages membership and progress views
type ParticipantService interface {
	Join(ctx context.Context, actorID, challengeID, inviteCode string) (*models.Participant, error)
	Leave(ctx context.Context, actorID, challengeID string) error
	Remove(ctx context.Context, actorID, challengeID, participantID string) error
	Progress(ctx context.Context, actorID, participantID string) (*models.ParticipantProgress, error)
	Leaderboard(ctx context.Context, challengeID, sortBy string) (*models.LeaderboardResponse, error)

	RequestJoin(ctx context.Context, actorID, challengeID string) (*models.JoinRequest, error)
	ListRequests(ctx context.Context, actorID, challengeID string) ([]*models.JoinRequest, error)
	ApproveRequest(ctx context.Context, actorID, requestID string) (*models.Participant, error)
	RejectRequest(ctx context.Context, actorID, requestID string) (*models.JoinRequest, error)
}

type participantService struct {
	store  repository.Store
	locker lock.Locker
	clock  utils.Clock
}

// NewParticipantService creates a new participant service
func NewParticipantService(store repository.Store, locker lock.Locker, clock utils.Clock) ParticipantService {
	return &participantService{
		store:  store,
		locker: locker,
		clock:  clock,
	}
}

// Join enrolls the actor. Private challenges need the matching invite code.
func (s *participantService) Join(ctx context.Context, actorID, challengeID, inviteCode string) (*models.Participant, error) {
	challenge, err := s.store.Challenges().GetByID(ctx, challengeID)
	if err != nil {
		return nil, notFoundAs(err, models.ErrChallengeNotFound)
	}

	if !challenge.IsPublic {
		code := strings.ToUpper(strings.TrimSpace(inviteCode))
		if challenge.InviteCode == nil || subtle.ConstantTimeCompare([]byte(code), []byte(*challenge.InviteCode)) != 1 {
			return nil, fmt.Errorf("%w: invalid invite code", models.ErrUnauthorized)
		}
	}

	participant := &models.Participant{
		ID:          uuid.New().String(),
		ChallengeID: challengeID,
		UserID:      actorID,
		JoinedAt:    s.clock().UTC(),
		Status:      models.ParticipantActive,
	}
	if err := s.store.Participants().Create(ctx, participant); err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, fmt.Errorf("already participating in this challenge: %w", models.ErrConflict)
		}
		return nil, err
	}

	logger.WithFields(map[string]interface{}{
		"component":      "participants",
		"challenge_id":   challengeID,
		"participant_id": participant.ID,
	}).Info("participant joined")

	return participant, nil
}

// Leave removes the actor's own membership and its entries
func (s *participantService) Leave(ctx context.Context, actorID, challengeID string) error {
	challenge, err := s.store.Challenges().GetByID(ctx, challengeID)
	if err != nil {
		return notFoundAs(err, models.ErrChallengeNotFound)
	}
	if challenge.CreatorID == actorID {
		return models.ValidationError("participant", "the challenge creator cannot leave")
	}

	participant, err := s.store.Participants().GetByChallengeAndUser(ctx, challengeID, actorID)
	if err != nil {
		return notFoundAs(err, models.ErrParticipantNotFound)
	}
	return s.delete(ctx, participant, "participant left")
}

// Remove lets the creator drop another participant
func (s *participantService) Remove(ctx context.Context, actorID, challengeID, participantID string) error {
	challenge, err := s.store.Challenges().GetByID(ctx, challengeID)
	if err != nil {
		return notFoundAs(err, models.ErrChallengeNotFound)
	}
	if challenge.CreatorID != actorID {
		return fmt.Errorf("%w: only the challenge creator can remove participants", models.ErrUnauthorized)
	}

	participant, err := s.store.Participants().GetByID(ctx, participantID)
	if err != nil {
		return notFoundAs(err, models.ErrParticipantNotFound)
	}
	if participant.ChallengeID != challengeID {
		return models.ErrParticipantNotFound
	}
	if participant.UserID == challenge.CreatorID {
		return models.ValidationError("participant", "cannot remove the challenge creator")
	}
	return s.delete(ctx, participant, "participant removed")
}

func (s *participantService) delete(ctx context.Context, participant *models.Participant, msg string) error {
	unlock, err := s.locker.Lock(ctx, participantLockKey(participant.ID))
	if err != nil {
		return models.PersistenceError("lock_participant", err)
	}
	defer unlock()

	if err := s.store.Participants().Delete(ctx, participant.ID); err != nil {
		return notFoundAs(err, models.ErrParticipantNotFound)
	}

	logger.WithFields(map[string]interface{}{
		"component":      "participants",
		"challenge_id":   participant.ChallengeID,
		"participant_id": participant.ID,
	}).Info(msg)
	return nil
}

// Progress summarises one participant for a member of the same challenge.
// Streaks are reported as stored.
func (s *participantService) Progress(ctx context.Context, actorID, participantID string) (*models.ParticipantProgress, error) {
	participant, err := s.store.Participants().GetByID(ctx, participantID)
	if err != nil {
		return nil, notFoundAs(err, models.ErrParticipantNotFound)
	}
	if participant.UserID != actorID {
		if _, err := s.store.Participants().GetByChallengeAndUser(ctx, participant.ChallengeID, actorID); err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return nil, fmt.Errorf("%w: progress is visible to challenge members only", models.ErrUnauthorized)
			}
			return nil, err
		}
	}
	challenge, err := s.store.Challenges().GetByID(ctx, participant.ChallengeID)
	if err != nil {
		return nil, notFoundAs(err, models.ErrChallengeNotFound)
	}
	return s.progress(ctx, challenge, participant)
}

func (s *participantService) progress(ctx context.Context, challenge *models.Challenge, participant *models.Participant) (*models.ParticipantProgress, error) {
	entries, err := s.store.Entries().ListByParticipant(ctx, participant.ID)
	if err != nil {
		return nil, err
	}

	completed := 0
	lastActivity := ""
	for _, e := range entries {
		if e.IsCompleted {
			completed++
		}
		if e.EntryDate > lastActivity {
			lastActivity = e.EntryDate
		}
	}

	totalDays := elapsedDays(challenge, s.clock.Today())
	rate := 0
	if totalDays > 0 {
		rate = int(float64(completed)/float64(totalDays)*100 + 0.5)
	}

	return &models.ParticipantProgress{
		ParticipantID:  participant.ID,
		UserID:         participant.UserID,
		CurrentStreak:  participant.CurrentStreak,
		LongestStreak:  participant.LongestStreak,
		TotalPoints:    participant.TotalPoints,
		CompletedDays:  completed,
		TotalDays:      totalDays,
		CompletionRate: rate,
		LastActivity:   lastActivity,
	}, nil
}

// Leaderboard ranks all participants by points or by completion rate; ties
// are broken by current streak
func (s *participantService) Leaderboard(ctx context.Context, challengeID, sortBy string) (*models.LeaderboardResponse, error) {
	switch sortBy {
	case "":
		sortBy = models.LeaderboardByPoints
	case models.LeaderboardByPoints, models.LeaderboardByCompletion:
	default:
		return nil, models.ValidationError("sort", "must be %q or %q", models.LeaderboardByPoints, models.LeaderboardByCompletion)
	}

	challenge, err := s.store.Challenges().GetByID(ctx, challengeID)
	if err != nil {
		return nil, notFoundAs(err, models.ErrChallengeNotFound)
	}

	participants, err := s.store.Participants().ListByChallenge(ctx, challengeID)
	if err != nil {
		return nil, err
	}

	rows := make([]models.LeaderboardEntry, 0, len(participants))
	for _, p := range participants {
		progress, err := s.progress(ctx, challenge, p)
		if err != nil {
			return nil, err
		}
		rows = append(rows, models.LeaderboardEntry{ParticipantProgress: *progress})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if sortBy == models.LeaderboardByCompletion {
			if ra, rb := completionRatio(a.ParticipantProgress), completionRatio(b.ParticipantProgress); ra != rb {
				return ra > rb
			}
		} else if a.TotalPoints != b.TotalPoints {
			return a.TotalPoints > b.TotalPoints
		}
		return a.CurrentStreak > b.CurrentStreak
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}

	return &models.LeaderboardResponse{
		ChallengeID: challengeID,
		SortBy:      sortBy,
		Entries:     rows,
	}, nil
}

func completionRatio(p models.ParticipantProgress) float64 {
	if p.TotalDays <= 0 {
		return 0
	}
	return float64(p.CompletedDays) / float64(p.TotalDays)
}
