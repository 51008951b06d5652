package spaced_repetition

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/oposbot/pkg/models"
)

func timePtr(t time.Time) *time.Time {
	return &t
}

func TestReviewUpdatesCard(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	card := &models.Flashcard{ID: "c1", ConsecutiveSuccesses: 1}

	interval, err := Review(card, GradeConfident, now)
	require.NoError(t, err)

	assert.Equal(t, 4320, interval.DelayMinutes)
	assert.Equal(t, 4, card.LastGrade)
	assert.Equal(t, 2, card.ConsecutiveSuccesses)
	require.NotNil(t, card.LastReviewedAt)
	require.NotNil(t, card.NextReviewAt)
	assert.True(t, card.LastReviewedAt.Equal(now))
	assert.True(t, card.NextReviewAt.Equal(now.Add(72*time.Hour)))
	assert.True(t, card.NextReviewAt.After(now))
}

func TestReviewInvalidGradeLeavesCard(t *testing.T) {
	card := &models.Flashcard{ID: "c1", ConsecutiveSuccesses: 3, LastGrade: 5}
	before := *card

	_, err := Review(card, 9, time.Now())
	require.Error(t, err)
	assert.Equal(t, before, *card)
}

func TestIsMastered(t *testing.T) {
	assert.False(t, IsMastered(&models.Flashcard{ConsecutiveSuccesses: 3}))
	assert.True(t, IsMastered(&models.Flashcard{ConsecutiveSuccesses: 4}))
}

func TestIsDue(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	assert.True(t, IsDue(models.Flashcard{}, now))
	assert.True(t, IsDue(models.Flashcard{NextReviewAt: timePtr(now)}, now))
	assert.True(t, IsDue(models.Flashcard{NextReviewAt: timePtr(now.Add(-time.Minute))}, now))
	assert.False(t, IsDue(models.Flashcard{NextReviewAt: timePtr(now.Add(time.Minute))}, now))
}

func TestDueCards(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	cards := []models.Flashcard{
		{ID: "future", NextReviewAt: timePtr(now.Add(time.Hour))},
		{ID: "recent", NextReviewAt: timePtr(now.Add(-time.Minute))},
		{ID: "new"},
		{ID: "old", NextReviewAt: timePtr(now.Add(-48 * time.Hour))},
	}

	due := DueCards(cards, now, 0)
	require.Len(t, due, 3)
	assert.Equal(t, "new", due[0].ID)
	assert.Equal(t, "old", due[1].ID)
	assert.Equal(t, "recent", due[2].ID)

	limited := DueCards(cards, now, 2)
	assert.Len(t, limited, 2)
}

func TestOrderForStudy(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	cards := []models.Flashcard{
		{ID: "later", NextReviewAt: timePtr(now.Add(48 * time.Hour))},
		{ID: "soon", NextReviewAt: timePtr(now.Add(time.Hour))},
		{ID: "due", NextReviewAt: timePtr(now.Add(-time.Hour))},
	}

	ordered := OrderForStudy(cards, now)
	ids := make([]string, len(ordered))
	for i, c := range ordered {
		ids[i] = c.ID
	}
	assert.Equal(t, []string{"due", "soon", "later"}, ids)
	assert.Equal(t, "later", cards[0].ID, "input must not be reordered")
}
