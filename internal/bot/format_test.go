package bot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/oposbot/internal/exam"
	"github.com/example/oposbot/internal/spaced_repetition"
	"github.com/example/oposbot/internal/study"
	"github.com/example/oposbot/pkg/models"
)

func TestGradeCallbackRoundTrip(t *testing.T) {
	cardID := "6f1c2a9e-4c1b-4a59-9a53-0f3f1a3b2c11"
	data := gradeCallback(cardID, spaced_repetition.GradeConfident)
	assert.Equal(t, "grade:"+cardID+":4", data)
	assert.LessOrEqual(t, len(data), 64)

	gotID, grade, err := parseGradeCallback(data)
	require.NoError(t, err)
	assert.Equal(t, cardID, gotID)
	assert.Equal(t, spaced_repetition.GradeConfident, grade)
}

func TestParseGradeCallbackKeepsOutOfRangeGrades(t *testing.T) {
	cardID, grade, err := parseGradeCallback("grade:c1:9")
	require.NoError(t, err)
	assert.Equal(t, "c1", cardID)
	assert.False(t, grade.Valid())
}

func TestParseGradeCallbackMalformed(t *testing.T) {
	for _, data := range []string{"grade:", "grade:c1", "grade::3", "grade:c1:x", "show:c1"} {
		_, _, err := parseGradeCallback(data)
		assert.Error(t, err, data)
	}
}

func TestGradeButtons(t *testing.T) {
	rows := gradeButtons("c1")
	require.Len(t, rows, 1)
	require.Len(t, rows[0], 5)
	assert.Equal(t, "grade:c1:1", rows[0][0].CallbackData)
	assert.Equal(t, "grade:c1:5", rows[0][4].CallbackData)
}

func TestFormatDelay(t *testing.T) {
	tests := map[int]string{
		1:     "1 minute",
		10:    "10 minutes",
		90:    "90 minutes",
		720:   "12 hours",
		1440:  "1 day",
		4320:  "3 days",
		10080: "7 days",
		20160: "14 days",
	}
	for minutes, want := range tests {
		assert.Equal(t, want, formatDelay(minutes))
	}
}

func TestFormatReviewOutcome(t *testing.T) {
	outcome := &study.ReviewOutcome{
		Card:     models.Flashcard{ConsecutiveSuccesses: 4},
		Interval: spaced_repetition.Interval{DelayMinutes: 20160, ConsecutiveSuccesses: 4},
	}
	assert.Equal(t, "Next review in 14 days. This card is mastered 🏆", formatReviewOutcome(outcome))

	outcome.Card.ConsecutiveSuccesses = 0
	outcome.Interval = spaced_repetition.Interval{DelayMinutes: 10}
	assert.Equal(t, "Next review in 10 minutes.", formatReviewOutcome(outcome))
}

func TestFormatSummary(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	next := now.Add(3 * time.Hour)

	text := formatSummary(study.Summary{Total: 5, Mastered: 1, NextDue: &next}, now)
	assert.Contains(t, text, "Total: 5")
	assert.Contains(t, text, "Due now: 0")
	assert.Contains(t, text, "Next review in 3 hours.")

	assert.Contains(t, formatSummary(study.Summary{}, now), "/add")
}

func TestFormatLeaderboard(t *testing.T) {
	entries := []models.LeaderboardEntry{
		{Rank: 1, UserAggregate: models.UserAggregate{
			UserName: "Ana", WilsonScore: 69.8963, TotalQuestions: 20, AverageScore: 86.7,
			TopCategory: "Law",
			RecentResults: []models.RecentResult{
				{Score: 86.7, Kind: models.ResultCorrect},
				{Score: 20, Kind: models.ResultIncorrect},
				{Score: 0, Kind: models.ResultNeutral},
			},
		}},
	}

	text := formatLeaderboard(entries, 20)
	assert.Contains(t, text, "1. Ana: 69.9 (20 questions, avg 86.7%, Law) 🟢🔴⚪")
	assert.Contains(t, text, "Minimum 20 answered questions")

	assert.Contains(t, formatLeaderboard(nil, 20), "Nobody has answered 20 questions yet.")
}

func TestFormatStanding(t *testing.T) {
	position := 2
	agg := &models.UserAggregate{WilsonScore: 43.1357, TotalQuestions: 200, TotalCorrect: 100, TotalIncorrect: 100, TopCategory: "N/A"}

	ranked := formatStanding(models.Standing{Position: &position, Aggregate: agg, MeetsMinimum: true, TotalParticipants: 4, Percentile: 50}, 20)
	assert.Contains(t, ranked, "Position: 2 of 4 (top 50.0%)")
	assert.Contains(t, ranked, "Wilson score: 43.1")

	small := &models.UserAggregate{TotalQuestions: 3, TotalCorrect: 3, WilsonScore: 43.849}
	unranked := formatStanding(models.Standing{Aggregate: small, TotalParticipants: 4}, 20)
	assert.Contains(t, unranked, "answer 17 more questions")

	assert.Equal(t, "You have no test results yet.", formatStanding(models.Standing{}, 20))
}

func TestFormatStats(t *testing.T) {
	last := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	text := formatStats(exam.Stats{TotalTests: 2, Accuracy: 75, BestCategory: "Law", LastTestAt: &last})
	assert.Equal(t, "\nTests taken: 2, accuracy 75.0%, best category Law\nLast test: 2024-03-01", text)

	assert.Empty(t, formatStats(exam.Stats{}))
}

func TestFormatReminder(t *testing.T) {
	assert.Contains(t, formatReminder(1), "1 card to review")
	assert.Contains(t, formatReminder(7), "7 cards to review")
}

func TestFormatDecks(t *testing.T) {
	decks := []models.Deck{
		{Title: "Constitution", CardCount: 12},
		{Title: "Administrative law", CardCount: 1},
	}
	text := formatDecks(decks, []int{3, 0})
	assert.Contains(t, text, "1. Constitution (12 cards, 3 due)")
	assert.Contains(t, text, "2. Administrative law (1 card, 0 due)")

	assert.Contains(t, formatDecks(nil, nil), "/add")
}
