package exam

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/example/oposbot/pkg/models"
)

// IncorrectPenalty is subtracted from the raw score for each wrong answer
const IncorrectPenalty = 0.33

// AttemptStore persists completed attempts
type AttemptStore interface {
	Create(ctx context.Context, attempt *models.Attempt) error
}

// Module records exam results
type Module struct {
	store AttemptStore
	now   func() time.Time
}

// NewModule creates a new exam module
func NewModule(store AttemptStore) *Module {
	return &Module{store: store, now: time.Now}
}

// Result is the outcome of a finished test as reported by the client
type Result struct {
	UserIdentity   string
	UserName       string
	CorrectCount   int
	IncorrectCount int
	Category       string
	OccurredAt     time.Time // Zero means now
}

// NormalizeIdentity is the canonical form of a user identity (email):
// trimmed and lowercased. Attempts and linked accounts both use it.
func NormalizeIdentity(identity string) string {
	return strings.ToLower(strings.TrimSpace(identity))
}

// Score returns the raw score (one point per correct answer minus the
// penalty per wrong one) and the score normalized by answered questions.
func Score(correct, incorrect int) (raw float64, normalized float64) {
	raw = float64(correct) - float64(incorrect)*IncorrectPenalty
	answered := correct + incorrect
	if answered <= 0 {
		return raw, 0
	}
	return raw, raw / float64(answered)
}

// RecordAttempt validates and stores a finished test
func (m *Module) RecordAttempt(ctx context.Context, result Result) (*models.Attempt, error) {
	identity := NormalizeIdentity(result.UserIdentity)
	if identity == "" {
		return nil, fmt.Errorf("user identity is required")
	}
	if result.CorrectCount < 0 || result.IncorrectCount < 0 {
		return nil, fmt.Errorf("answer counts must not be negative")
	}

	occurredAt := result.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = m.now()
	}

	_, normalized := Score(result.CorrectCount, result.IncorrectCount)
	attempt := &models.Attempt{
		UserIdentity:    identity,
		UserName:        strings.TrimSpace(result.UserName),
		CorrectCount:    result.CorrectCount,
		IncorrectCount:  result.IncorrectCount,
		NormalizedScore: normalized,
		Category:        strings.TrimSpace(result.Category),
		OccurredAt:      occurredAt.UTC(),
	}

	if err := m.store.Create(ctx, attempt); err != nil {
		return nil, fmt.Errorf("failed to record attempt: %w", err)
	}
	return attempt, nil
}

// Stats summarises the test history of a single user
type Stats struct {
	TotalTests     int
	TotalQuestions int
	TotalCorrect   int
	TotalIncorrect int
	Accuracy       float64 // Percentage of correct answers
	AverageScore   float64 // Mean normalized score as a percentage
	BestCategory   string  // Category with the highest accuracy
	LastTestAt     *time.Time
}

// UserStats computes the statistics of one user's attempts
func UserStats(attempts []models.Attempt) Stats {
	var stats Stats
	var scoreSum float64
	type categoryTotals struct{ correct, answered int }
	categories := make(map[string]*categoryTotals)

	for i := range attempts {
		a := attempts[i]
		stats.TotalTests++
		stats.TotalCorrect += a.CorrectCount
		stats.TotalIncorrect += a.IncorrectCount
		scoreSum += a.NormalizedScore * 100

		if a.Category != "" {
			totals, ok := categories[a.Category]
			if !ok {
				totals = &categoryTotals{}
				categories[a.Category] = totals
			}
			totals.correct += a.CorrectCount
			totals.answered += a.AnsweredCount()
		}

		if stats.LastTestAt == nil || a.OccurredAt.After(*stats.LastTestAt) {
			occurred := a.OccurredAt
			stats.LastTestAt = &occurred
		}
	}

	stats.TotalQuestions = stats.TotalCorrect + stats.TotalIncorrect
	if stats.TotalQuestions > 0 {
		stats.Accuracy = float64(stats.TotalCorrect) / float64(stats.TotalQuestions) * 100
	}
	if stats.TotalTests > 0 {
		stats.AverageScore = scoreSum / float64(stats.TotalTests)
	}

	bestAccuracy := -1.0
	for name, totals := range categories {
		if totals.answered == 0 {
			continue
		}
		accuracy := float64(totals.correct) / float64(totals.answered)
		if accuracy > bestAccuracy || (accuracy == bestAccuracy && name < stats.BestCategory) {
			bestAccuracy = accuracy
			stats.BestCategory = name
		}
	}

	return stats
}
