package repository

import (
	"context"
	"time"

	"github.com/Miandari/dailygrit/pkg/models"
)

// ChallengeRepository handles challenge persistence
type ChallengeRepository interface {
	Create(ctx context.Context, challenge *models.Challenge) error
	GetByID(ctx context.Context, id string) (*models.Challenge, error)
	UpdateScoring(ctx context.Context, id string, metrics []models.MetricDefinition, bonus models.BonusConfig) error
	// Delete removes the challenge with its participants, entries and join requests
	Delete(ctx context.Context, id string) error
}

// ParticipantRepository handles challenge membership and the streak/point state on it
type ParticipantRepository interface {
	Create(ctx context.Context, participant *models.Participant) error
	GetByID(ctx context.Context, id string) (*models.Participant, error)
	// GetForUpdate reads a participant and, inside a transaction, locks its row until commit
	GetForUpdate(ctx context.Context, id string) (*models.Participant, error)
	GetByChallengeAndUser(ctx context.Context, challengeID, userID string) (*models.Participant, error)
	ListByChallenge(ctx context.Context, challengeID string) ([]*models.Participant, error)
	UpdateStreaks(ctx context.Context, id string, current, longest int) error
	UpdateTotalPoints(ctx context.Context, id string, total int) error
	// Delete removes the participant and, by cascade, its entries
	Delete(ctx context.Context, id string) error
}

// EntryRepository handles daily entries
type EntryRepository interface {
	GetByDate(ctx context.Context, participantID, entryDate string) (*models.DailyEntry, error)
	// Upsert inserts the entry or replaces the one stored for the same participant and date
	Upsert(ctx context.Context, entry *models.DailyEntry) error
	// ListByParticipant returns entries oldest first
	ListByParticipant(ctx context.Context, participantID string) ([]*models.DailyEntry, error)
	// ListCompletedDates returns the yyyy-MM-dd dates of completed entries, newest first
	ListCompletedDates(ctx context.Context, participantID string) ([]string, error)
	UpdatePoints(ctx context.Context, entryID string, pointsEarned, bonusPoints int) error
	// SumPoints is Σ(points_earned + bonus_points) over the participant's entries
	SumPoints(ctx context.Context, participantID string) (int, error)
}

// JoinRequestRepository handles requests to join private challenges
type JoinRequestRepository interface {
	// Create inserts a pending request; one request per user and challenge
	Create(ctx context.Context, request *models.JoinRequest) error
	GetByID(ctx context.Context, id string) (*models.JoinRequest, error)
	// ListPending returns the challenge's pending requests, oldest first
	ListPending(ctx context.Context, challengeID string) ([]*models.JoinRequest, error)
	// Review records the decision; only a pending request can be reviewed
	Review(ctx context.Context, id, status, reviewerID string, reviewedAt time.Time) error
}

// Store groups the repositories behind one transaction boundary
type Store interface {
	Challenges() ChallengeRepository
	Participants() ParticipantRepository
	Entries() EntryRepository
	JoinRequests() JoinRequestRepository

	// WithTransaction runs fn against a store whose writes commit together or not at all.
	// Calling it on a transactional store runs fn in the same transaction.
	WithTransaction(ctx context.Context, fn func(tx Store) error) error

	Ping(ctx context.Context) error
	Close()
}
