package models

import "time"

// Participant statuses
const (
	ParticipantActive = "active"
)

// Participant is one user's membership in one challenge - matches challenge_participants
type Participant struct {
	ID            string    `json:"id" db:"id"`
	ChallengeID   string    `json:"challenge_id" db:"challenge_id"`
	UserID        string    `json:"user_id" db:"user_id"`
	JoinedAt      time.Time `json:"joined_at" db:"joined_at"`
	Status        string    `json:"status" db:"status"`
	CurrentStreak int       `json:"current_streak" db:"current_streak"`
	LongestStreak int       `json:"longest_streak" db:"longest_streak"`
	TotalPoints   int       `json:"total_points" db:"total_points"`
}

// JoinChallengeRequest is the body of a join call
type JoinChallengeRequest struct {
	InviteCode string `json:"invite_code"`
}

// ParticipantProgress summarises one participant's standing
type ParticipantProgress struct {
	ParticipantID  string `json:"participant_id"`
	UserID         string `json:"user_id"`
	CurrentStreak  int    `json:"current_streak"`
	LongestStreak  int    `json:"longest_streak"`
	TotalPoints    int    `json:"total_points"`
	CompletedDays  int    `json:"completed_days"`
	TotalDays      int    `json:"total_days"`
	CompletionRate int    `json:"completion_rate"` // percent, rounded
	LastActivity   string `json:"last_activity,omitempty"`
}

// LeaderboardEntry is one ranked row of a challenge leaderboard
type LeaderboardEntry struct {
	Rank int `json:"rank"`
	ParticipantProgress
}

// Leaderboard sort keys
const (
	LeaderboardByPoints     = "points"
	LeaderboardByCompletion = "completion"
)

// LeaderboardResponse is the API shape for a challenge leaderboard
type LeaderboardResponse struct {
	ChallengeID string             `json:"challenge_id"`
	SortBy      string             `json:"sort_by"`
	Entries     []LeaderboardEntry `json:"entries"`
}
