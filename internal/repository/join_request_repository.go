package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Miandari/dailygrit/pkg/models"
)

type joinRequestRepository struct {
	db DBTX
}

const joinRequestColumns = `id, challenge_id, user_id, status, created_at, reviewed_at, reviewed_by`

// Create inserts a pending request; a second request from the same user is a conflict
func (r *joinRequestRepository) Create(ctx context.Context, jr *models.JoinRequest) error {
	query := `
		INSERT INTO challenge_join_requests (id, challenge_id, user_id, status, created_at)
		VALUES ($1, $2, $3, 'pending', NOW())
		RETURNING status, created_at
	`
	if err := r.db.QueryRow(ctx, query, jr.ID, jr.ChallengeID, jr.UserID).Scan(&jr.Status, &jr.CreatedAt); err != nil {
		return mapDBError(err, "create_join_request")
	}
	return nil
}

// GetByID retrieves one request
func (r *joinRequestRepository) GetByID(ctx context.Context, id string) (*models.JoinRequest, error) {
	query := `SELECT ` + joinRequestColumns + ` FROM challenge_join_requests WHERE id = $1`
	jr, err := scanJoinRequest(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapDBError(err, "get_join_request")
	}
	return jr, nil
}

// ListPending returns pending requests for a challenge, oldest first
func (r *joinRequestRepository) ListPending(ctx context.Context, challengeID string) ([]*models.JoinRequest, error) {
	query := `
		SELECT ` + joinRequestColumns + `
		FROM challenge_join_requests
		WHERE challenge_id = $1 AND status = 'pending'
		ORDER BY created_at ASC, id ASC
	`
	rows, err := r.db.Query(ctx, query, challengeID)
	if err != nil {
		return nil, mapDBError(err, "list_join_requests")
	}
	defer rows.Close()

	var requests []*models.JoinRequest
	for rows.Next() {
		jr, err := scanJoinRequest(rows)
		if err != nil {
			return nil, mapDBError(err, "scan_join_request")
		}
		requests = append(requests, jr)
	}
	if err := rows.Err(); err != nil {
		return nil, mapDBError(err, "list_join_requests")
	}
	return requests, nil
}

// Review moves a pending request to approved or rejected
func (r *joinRequestRepository) Review(ctx context.Context, id, status, reviewerID string, reviewedAt time.Time) error {
	query := `
		UPDATE challenge_join_requests
		SET status = $2,
		    reviewed_at = $3,
		    reviewed_by = $4
		WHERE id = $1 AND status = 'pending'
	`
	tag, err := r.db.Exec(ctx, query, id, status, reviewedAt, reviewerID)
	if err != nil {
		return mapDBError(err, "review_join_request")
	}
	if tag.RowsAffected() == 0 {
		return mapDBError(pgxNoRows, "review_join_request")
	}
	return nil
}

func scanJoinRequest(row pgx.Row) (*models.JoinRequest, error) {
	jr := &models.JoinRequest{}
	err := row.Scan(
		&jr.ID,
		&jr.ChallengeID,
		&jr.UserID,
		&jr.Status,
		&jr.CreatedAt,
		&jr.ReviewedAt,
		&jr.ReviewedBy,
	)
	if err != nil {
		return nil, err
	}
	return jr, nil
}
