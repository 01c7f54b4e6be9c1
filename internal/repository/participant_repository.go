package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/Miandari/dailygrit/pkg/models"
)

var pgxNoRows = pgx.ErrNoRows

type participantRepository struct {
	db   DBTX
	inTx bool
}

const participantColumns = `id, challenge_id, user_id, joined_at, status, current_streak, longest_streak, total_points`

// Create inserts a membership; a second join of the same user is a conflict
func (r *participantRepository) Create(ctx context.Context, p *models.Participant) error {
	query := `
		INSERT INTO challenge_participants (id, challenge_id, user_id, joined_at, status, current_streak, longest_streak, total_points)
		VALUES ($1, $2, $3, $4, $5, 0, 0, 0)
	`
	if _, err := r.db.Exec(ctx, query, p.ID, p.ChallengeID, p.UserID, p.JoinedAt, p.Status); err != nil {
		return mapDBError(err, "create_participant")
	}
	return nil
}

// GetByID retrieves one participant
func (r *participantRepository) GetByID(ctx context.Context, id string) (*models.Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM challenge_participants WHERE id = $1`
	return r.scanOne(ctx, "get_participant", query, id)
}

// GetForUpdate locks the participant row when called inside a transaction
func (r *participantRepository) GetForUpdate(ctx context.Context, id string) (*models.Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM challenge_participants WHERE id = $1`
	if r.inTx {
		query += ` FOR UPDATE`
	}
	return r.scanOne(ctx, "get_participant_for_update", query, id)
}

// GetByChallengeAndUser finds a user's membership in a challenge
func (r *participantRepository) GetByChallengeAndUser(ctx context.Context, challengeID, userID string) (*models.Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM challenge_participants WHERE challenge_id = $1 AND user_id = $2`
	return r.scanOne(ctx, "get_participant_by_user", query, challengeID, userID)
}

// ListByChallenge returns every participant in join order
func (r *participantRepository) ListByChallenge(ctx context.Context, challengeID string) ([]*models.Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM challenge_participants WHERE challenge_id = $1 ORDER BY joined_at ASC, id ASC`

	rows, err := r.db.Query(ctx, query, challengeID)
	if err != nil {
		return nil, mapDBError(err, "list_participants")
	}
	defer rows.Close()

	var participants []*models.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, mapDBError(err, "scan_participant")
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, mapDBError(err, "list_participants")
	}
	return participants, nil
}

// UpdateStreaks persists the streak tracker output
func (r *participantRepository) UpdateStreaks(ctx context.Context, id string, current, longest int) error {
	query := `
		UPDATE challenge_participants
		SET current_streak = $2,
		    longest_streak = $3
		WHERE id = $1
	`
	return r.execOne(ctx, "update_streaks", query, id, current, longest)
}

// UpdateTotalPoints persists the recomputed point total
func (r *participantRepository) UpdateTotalPoints(ctx context.Context, id string, total int) error {
	query := `UPDATE challenge_participants SET total_points = $2 WHERE id = $1`
	return r.execOne(ctx, "update_total_points", query, id, total)
}

// Delete removes a participant; entries go with it via ON DELETE CASCADE
func (r *participantRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM challenge_participants WHERE id = $1`
	return r.execOne(ctx, "delete_participant", query, id)
}

func (r *participantRepository) scanOne(ctx context.Context, operation, query string, args ...any) (*models.Participant, error) {
	p, err := scanParticipant(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapDBError(err, operation)
	}
	return p, nil
}

func (r *participantRepository) execOne(ctx context.Context, operation, query string, args ...any) error {
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return mapDBError(err, operation)
	}
	if tag.RowsAffected() == 0 {
		return mapDBError(pgxNoRows, operation)
	}
	return nil
}

func scanParticipant(row pgx.Row) (*models.Participant, error) {
	p := &models.Participant{}
	err := row.Scan(
		&p.ID,
		&p.ChallengeID,
		&p.UserID,
		&p.JoinedAt,
		&p.Status,
		&p.CurrentStreak,
		&p.LongestStreak,
		&p.TotalPoints,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}
