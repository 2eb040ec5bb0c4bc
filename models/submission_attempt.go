package models

import (
	"time"
)

// SubmissionAttempt is an audit row written for every decided submission,
// accepted or not. Best-effort: a failed audit write never changes the
// outcome returned to the participant.
type SubmissionAttempt struct {
	ID           string    `gorm:"primaryKey;type:char(36)" json:"id"`
	Identity     string    `gorm:"index;not null" json:"identity"`
	Wargame      string    `gorm:"index;not null" json:"wargame"`
	ClaimedLevel int       `json:"claimed_level"`
	Outcome      string    `gorm:"index" json:"outcome"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
}
