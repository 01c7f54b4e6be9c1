package models

import "time"

// Challenge represents a habit-tracking program - matches the challenges table
type Challenge struct {
	ID                  string             `json:"id" yaml:"id" db:"id"`
	CreatorID           string             `json:"creator_id" yaml:"creator_id" db:"creator_id"`
	Name                string             `json:"name" yaml:"name" db:"name"`
	Description         *string            `json:"description,omitempty" yaml:"description,omitempty" db:"description"`
	StartsAt            time.Time          `json:"starts_at" yaml:"starts_at" db:"starts_at"`
	EndsAt              time.Time          `json:"ends_at" yaml:"ends_at" db:"ends_at"`
	DurationDays        int                `json:"duration_days" yaml:"duration_days" db:"duration_days"`
	IsPublic            bool               `json:"is_public" yaml:"is_public" db:"is_public"`
	InviteCode          *string            `json:"invite_code,omitempty" yaml:"invite_code,omitempty" db:"invite_code"`
	LockEntriesAfterDay bool               `json:"lock_entries_after_day" yaml:"lock_entries_after_day" db:"lock_entries_after_day"`
	Metrics             []MetricDefinition `json:"metrics" yaml:"metrics" db:"metrics"`
	BonusConfig         `yaml:",inline"`
	CreatedAt           time.Time `json:"created_at" yaml:"created_at" db:"created_at"`
	UpdatedAt           time.Time `json:"updated_at" yaml:"updated_at" db:"updated_at"`
}

// CreateChallengeRequest carries the fields a creator supplies
type CreateChallengeRequest struct {
	Name                string             `json:"name"`
	Description         *string            `json:"description,omitempty"`
	StartsAt            string             `json:"starts_at"` // yyyy-MM-dd, defaults to today
	DurationDays        int                `json:"duration_days"`
	IsPublic            *bool              `json:"is_public,omitempty"`
	LockEntriesAfterDay bool               `json:"lock_entries_after_day"`
	Metrics             []MetricDefinition `json:"metrics"`
	BonusConfig
}

// UpdateScoringRequest replaces a challenge's metric and bonus configuration
type UpdateScoringRequest struct {
	Metrics []MetricDefinition `json:"metrics"`
	BonusConfig
}

// Challenge limits
const (
	MinChallengeNameLength = 3
	MaxChallengeNameLength = 100
	MaxDescriptionLength   = 500
	DefaultDurationDays    = 30
	MaxDurationDays        = 365
)
