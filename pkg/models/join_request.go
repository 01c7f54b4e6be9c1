package models

import "time"

// Join request statuses
const (
	JoinRequestPending  = "pending"
	JoinRequestApproved = "approved"
	JoinRequestRejected = "rejected"
)

// JoinRequest asks the creator of a private challenge for membership - matches challenge_join_requests
type JoinRequest struct {
	ID          string     `json:"id" db:"id"`
	ChallengeID string     `json:"challenge_id" db:"challenge_id"`
	UserID      string     `json:"user_id" db:"user_id"`
	Status      string     `json:"status" db:"status"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty" db:"reviewed_at"`
	ReviewedBy  *string    `json:"reviewed_by,omitempty" db:"reviewed_by"`
}
