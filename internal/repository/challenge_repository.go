package repository

import (
	"context"

	"github.com/Miandari/dailygrit/pkg/models"
)

type challengeRepository struct {
	db DBTX
}

const challengeColumns = `
	id, creator_id, name, description, starts_at, ends_at, duration_days,
	is_public, invite_code, lock_entries_after_day, metrics,
	enable_streak_bonus, streak_bonus_points, enable_perfect_day_bonus, perfect_day_bonus_points,
	created_at, updated_at`

// Create inserts a new challenge
func (r *challengeRepository) Create(ctx context.Context, c *models.Challenge) error {
	query := `
		INSERT INTO challenges (
			id, creator_id, name, description, starts_at, ends_at, duration_days,
			is_public, invite_code, lock_entries_after_day, metrics,
			enable_streak_bonus, streak_bonus_points, enable_perfect_day_bonus, perfect_day_bonus_points,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	metrics := c.Metrics
	if metrics == nil {
		metrics = []models.MetricDefinition{}
	}

	err := r.db.QueryRow(ctx, query,
		c.ID,
		c.CreatorID,
		c.Name,
		c.Description,
		c.StartsAt,
		c.EndsAt,
		c.DurationDays,
		c.IsPublic,
		c.InviteCode,
		c.LockEntriesAfterDay,
		metrics,
		c.EnableStreakBonus,
		c.StreakBonusPoints,
		c.EnablePerfectDayBonus,
		c.PerfectDayBonusPoints,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return mapDBError(err, "create_challenge")
	}
	return nil
}

// GetByID retrieves a challenge with its scoring configuration
func (r *challengeRepository) GetByID(ctx context.Context, id string) (*models.Challenge, error) {
	query := `SELECT ` + challengeColumns + ` FROM challenges WHERE id = $1`

	c := &models.Challenge{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&c.ID,
		&c.CreatorID,
		&c.Name,
		&c.Description,
		&c.StartsAt,
		&c.EndsAt,
		&c.DurationDays,
		&c.IsPublic,
		&c.InviteCode,
		&c.LockEntriesAfterDay,
		&c.Metrics,
		&c.EnableStreakBonus,
		&c.StreakBonusPoints,
		&c.EnablePerfectDayBonus,
		&c.PerfectDayBonusPoints,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, mapDBError(err, "get_challenge")
	}
	return c, nil
}

// UpdateScoring replaces the metric definitions and bonus settings
func (r *challengeRepository) UpdateScoring(ctx context.Context, id string, metrics []models.MetricDefinition, bonus models.BonusConfig) error {
	query := `
		UPDATE challenges
		SET metrics = $2,
		    enable_streak_bonus = $3,
		    streak_bonus_points = $4,
		    enable_perfect_day_bonus = $5,
		    perfect_day_bonus_points = $6,
		    updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, id,
		metrics,
		bonus.EnableStreakBonus,
		bonus.StreakBonusPoints,
		bonus.EnablePerfectDayBonus,
		bonus.PerfectDayBonusPoints,
	)
	if err != nil {
		return mapDBError(err, "update_challenge_scoring")
	}
	if tag.RowsAffected() == 0 {
		return mapDBError(pgxNoRows, "update_challenge_scoring")
	}
	return nil
}

// Delete removes a challenge; participants, entries and join requests cascade
func (r *challengeRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM challenges WHERE id = $1`, id)
	if err != nil {
		return mapDBError(err, "delete_challenge")
	}
	if tag.RowsAffected() == 0 {
		return mapDBError(pgxNoRows, "delete_challenge")
	}
	return nil
}
