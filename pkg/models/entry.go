package models

import "time"

// DailyEntry is one participant's submission for one calendar date - matches daily_entries
type DailyEntry struct {
	ID            string                 `json:"id" db:"id"`
	ParticipantID string                 `json:"participant_id" db:"participant_id"`
	EntryDate     string                 `json:"entry_date" db:"entry_date"` // yyyy-MM-dd
	MetricData    map[string]interface{} `json:"metric_data" db:"metric_data"`
	IsCompleted   bool                   `json:"is_completed" db:"is_completed"`
	IsLocked      bool                   `json:"is_locked" db:"is_locked"`
	Notes         *string                `json:"notes" db:"notes"`
	PointsEarned  int                    `json:"points_earned" db:"points_earned"`
	BonusPoints   int                    `json:"bonus_points" db:"bonus_points"`
	SubmittedAt   time.Time              `json:"submitted_at" db:"submitted_at"`
	CreatedAt     time.Time              `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at" db:"updated_at"`
}

// TotalPoints is the entry's contribution to the participant total
func (e *DailyEntry) TotalPoints() int {
	return e.PointsEarned + e.BonusPoints
}

// SubmitEntryRequest carries one day's metric values
type SubmitEntryRequest struct {
	ParticipantID string                 `json:"-"`
	Date          string                 `json:"date,omitempty"` // yyyy-MM-dd, defaults to today
	MetricData    map[string]interface{} `json:"metric_data"`
	IsCompleted   bool                   `json:"is_completed"`
	Notes         *string                `json:"notes,omitempty"`
}

// EntryScore is the scoring outcome stored alongside an entry
type EntryScore struct {
	BasePoints  int            `json:"base_points" yaml:"base_points"`
	BonusPoints int            `json:"bonus_points" yaml:"bonus_points"`
	TotalPoints int            `json:"total_points" yaml:"total_points"`
	Breakdown   map[string]int `json:"breakdown" yaml:"breakdown"`
}

// SubmitEntryResponse is returned after a successful submission
type SubmitEntryResponse struct {
	Entry       *DailyEntry  `json:"entry"`
	Score       EntryScore   `json:"score"`
	Participant *Participant `json:"participant"`
}

// RecalculationResponse reports a recalculation pass
type RecalculationResponse struct {
	ChallengeID  string `json:"challenge_id"`
	Recalculated int    `json:"recalculated"`
}
