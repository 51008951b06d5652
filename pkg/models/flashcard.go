package models

import "time"

// Flashcard is a single study card together with its review state
type Flashcard struct {
	ID                   string     `json:"id" db:"id"`
	UserID               string     `json:"user_id" db:"user_id"`
	DeckID               string     `json:"deck_id" db:"deck_id"`
	Front                string     `json:"front" db:"front"`
	Back                 string     `json:"back" db:"back"`
	LastGrade            int        `json:"last_grade" db:"last_grade"`                       // 0 = never reviewed, otherwise 1-5
	ConsecutiveSuccesses int        `json:"consecutive_successes" db:"consecutive_successes"` // Streak of grade 4-5 answers
	LastReviewedAt       *time.Time `json:"last_reviewed_at" db:"last_reviewed_at"`
	NextReviewAt         *time.Time `json:"next_review_at" db:"next_review_at"` // nil means due now
	CreatedAt            time.Time  `json:"created_at" db:"created_at"`
}

// Deck groups flashcards generated together
type Deck struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Title     string    `json:"title" db:"title"`
	CardCount int       `json:"card_count" db:"card_count"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CardContent is the front/back pair used when creating cards
type CardContent struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}
