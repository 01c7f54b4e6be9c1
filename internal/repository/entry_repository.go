package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Miandari/dailygrit/pkg/models"
)

type entryRepository struct {
	db DBTX
}

const entryColumns = `
	id, participant_id, entry_date::text, metric_data, is_completed, is_locked, notes,
	points_earned, bonus_points, submitted_at, created_at, updated_at`

// GetByDate retrieves the participant's entry for one calendar date
func (r *entryRepository) GetByDate(ctx context.Context, participantID, entryDate string) (*models.DailyEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM daily_entries WHERE participant_id = $1 AND entry_date = $2::date`

	entry, err := scanEntry(r.db.QueryRow(ctx, query, participantID, entryDate))
	if err != nil {
		return nil, mapDBError(err, "get_entry_by_date")
	}
	return entry, nil
}

// Upsert inserts the entry or overwrites the stored one for the same date
func (r *entryRepository) Upsert(ctx context.Context, e *models.DailyEntry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	metricData := e.MetricData
	if metricData == nil {
		metricData = map[string]interface{}{}
	}

	query := `
		INSERT INTO daily_entries (
			id, participant_id, entry_date, metric_data, is_completed, is_locked, notes,
			points_earned, bonus_points, submitted_at, created_at, updated_at
		)
		VALUES ($1, $2, $3::date, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		ON CONFLICT (participant_id, entry_date) DO UPDATE
		SET metric_data = EXCLUDED.metric_data,
		    is_completed = EXCLUDED.is_completed,
		    is_locked = EXCLUDED.is_locked,
		    notes = EXCLUDED.notes,
		    points_earned = EXCLUDED.points_earned,
		    bonus_points = EXCLUDED.bonus_points,
		    submitted_at = EXCLUDED.submitted_at,
		    updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		e.ID,
		e.ParticipantID,
		e.EntryDate,
		metricData,
		e.IsCompleted,
		e.IsLocked,
		e.Notes,
		e.PointsEarned,
		e.BonusPoints,
		e.SubmittedAt,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return mapDBError(err, "upsert_entry")
	}
	return nil
}

// ListByParticipant returns all entries, oldest first
func (r *entryRepository) ListByParticipant(ctx context.Context, participantID string) ([]*models.DailyEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM daily_entries WHERE participant_id = $1 ORDER BY entry_date ASC`

	rows, err := r.db.Query(ctx, query, participantID)
	if err != nil {
		return nil, mapDBError(err, "list_entries")
	}
	defer rows.Close()

	var entries []*models.DailyEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, mapDBError(err, "scan_entry")
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, mapDBError(err, "list_entries")
	}
	return entries, nil
}

// ListCompletedDates returns completed entry dates, newest first
func (r *entryRepository) ListCompletedDates(ctx context.Context, participantID string) ([]string, error) {
	query := `
		SELECT entry_date::text
		FROM daily_entries
		WHERE participant_id = $1 AND is_completed = TRUE
		ORDER BY entry_date DESC
	`

	rows, err := r.db.Query(ctx, query, participantID)
	if err != nil {
		return nil, mapDBError(err, "list_completed_dates")
	}
	dates, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, mapDBError(err, "scan_completed_dates")
	}
	return dates, nil
}

// UpdatePoints overwrites the scoring fields of one entry
func (r *entryRepository) UpdatePoints(ctx context.Context, entryID string, pointsEarned, bonusPoints int) error {
	query := `
		UPDATE daily_entries
		SET points_earned = $2,
		    bonus_points = $3,
		    updated_at = NOW()
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query, entryID, pointsEarned, bonusPoints)
	if err != nil {
		return mapDBError(err, "update_entry_points")
	}
	if tag.RowsAffected() == 0 {
		return mapDBError(pgxNoRows, "update_entry_points")
	}
	return nil
}

// SumPoints totals base and bonus points across the participant's entries
func (r *entryRepository) SumPoints(ctx context.Context, participantID string) (int, error) {
	query := `
		SELECT COALESCE(SUM(points_earned + bonus_points), 0)::int
		FROM daily_entries
		WHERE participant_id = $1
	`
	var total int
	if err := r.db.QueryRow(ctx, query, participantID).Scan(&total); err != nil {
		return 0, mapDBError(err, "sum_entry_points")
	}
	return total, nil
}

func scanEntry(row pgx.Row) (*models.DailyEntry, error) {
	e := &models.DailyEntry{}
	err := row.Scan(
		&e.ID,
		&e.ParticipantID,
		&e.EntryDate,
		&e.MetricData,
		&e.IsCompleted,
		&e.IsLocked,
		&e.Notes,
		&e.PointsEarned,
		&e.BonusPoints,
		&e.SubmittedAt,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}
