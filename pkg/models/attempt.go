package models

import "time"

// Attempt is the immutable result of one completed test
type Attempt struct {
	ID              int64     `json:"id" db:"id"`
	UserIdentity    string    `json:"user_identity" db:"user_identity"` // Email or external id
	UserName        string    `json:"user_name" db:"user_name"`
	CorrectCount    int       `json:"correct_count" db:"correct_count"`
	IncorrectCount  int       `json:"incorrect_count" db:"incorrect_count"`
	NormalizedScore float64   `json:"normalized_score" db:"normalized_score"` // 1.0 = 100%
	Category        string    `json:"category" db:"category"`
	OccurredAt      time.Time `json:"occurred_at" db:"occurred_at"`
}

// AnsweredCount returns the number of answered questions
func (a Attempt) AnsweredCount() int {
	return a.CorrectCount + a.IncorrectCount
}
