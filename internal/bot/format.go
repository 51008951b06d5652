package bot

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/example/oposbot/internal/exam"
	"github.com/example/oposbot/internal/spaced_repetition"
	"github.com/example/oposbot/internal/study"
	"github.com/example/oposbot/pkg/models"
)

// Callback data
const (
	callbackReview      = "review"
	callbackShowPrefix  = "show:"
	callbackGradePrefix = "grade:"
)

var gradeLabels = map[spaced_repetition.Grade]string{
	spaced_repetition.GradeFail:      "1 ❌",
	spaced_repetition.GradeUncertain: "2 🤔",
	spaced_repetition.GradeAdequate:  "3 🙂",
	spaced_repetition.GradeConfident: "4 💪",
	spaced_repetition.GradeMastered:  "5 🏆",
}

var resultIcons = map[models.ResultKind]string{
	models.ResultCorrect:   "🟢",
	models.ResultIncorrect: "🔴",
	models.ResultNeutral:   "⚪",
}

func showCallback(cardID string) string {
	return callbackShowPrefix + cardID
}

func gradeCallback(cardID string, grade spaced_repetition.Grade) string {
	return fmt.Sprintf("%s%s:%d", callbackGradePrefix, cardID, grade)
}

// parseGradeCallback splits "grade:<card>:<n>". The grade itself is not
// range checked here; the scheduler rejects invalid values.
func parseGradeCallback(data string) (string, spaced_repetition.Grade, error) {
	rest := strings.TrimPrefix(data, callbackGradePrefix)
	idx := strings.LastIndex(rest, ":")
	if rest == data || idx <= 0 {
		return "", 0, fmt.Errorf("malformed grade callback %q", data)
	}
	grade, err := strconv.Atoi(rest[idx+1:])
	if err != nil {
		return "", 0, fmt.Errorf("malformed grade in callback %q", data)
	}
	return rest[:idx], spaced_repetition.Grade(grade), nil
}

func gradeButtons(cardID string) [][]MenuButton {
	var row []MenuButton
	for grade := spaced_repetition.GradeFail; grade <= spaced_repetition.GradeMastered; grade++ {
		row = append(row, MenuButton{Text: gradeLabels[grade], CallbackData: gradeCallback(cardID, grade)})
	}
	return [][]MenuButton{row}
}

// formatDelay renders a delay in minutes using the largest whole unit
func formatDelay(minutes int) string {
	switch {
	case minutes >= 1440 && minutes%1440 == 0:
		return plural(minutes/1440, "day", "days")
	case minutes >= 60 && minutes%60 == 0:
		return plural(minutes/60, "hour", "hours")
	default:
		return plural(minutes, "minute", "minutes")
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}

func formatReminder(count int) string {
	return fmt.Sprintf("🔔 You have %s to review! Press the button below to start.",
		plural(count, "card", "cards"))
}

func formatCardFront(card models.Flashcard) string {
	return fmt.Sprintf("❓ %s", card.Front)
}

func formatCardBack(card models.Flashcard) string {
	return fmt.Sprintf("❓ %s\n\n💡 %s\n\nHow well did you remember it?", card.Front, card.Back)
}

func formatReviewOutcome(outcome *study.ReviewOutcome) string {
	text := fmt.Sprintf("Next review in %s.", formatDelay(outcome.Interval.DelayMinutes))
	if spaced_repetition.IsMastered(&outcome.Card) {
		text += " This card is mastered 🏆"
	}
	return text
}

func formatSummary(summary study.Summary, now time.Time) string {
	if summary.Total == 0 {
		return "You have no flashcards yet. Send /add followed by lines like\n\"question | answer\" to create a deck."
	}

	var text strings.Builder
	text.WriteString("📚 Your flashcards\n\n")
	text.WriteString(fmt.Sprintf("Total: %d\n", summary.Total))
	text.WriteString(fmt.Sprintf("Due now: %d\n", summary.Due))
	text.WriteString(fmt.Sprintf("New: %d\n", summary.New))
	text.WriteString(fmt.Sprintf("Mastered: %d\n", summary.Mastered))
	if summary.NextDue != nil {
		wait := int(summary.NextDue.Sub(now).Minutes())
		if wait < 1 {
			wait = 1
		}
		text.WriteString(fmt.Sprintf("\nNext review in %s.", formatDelay(wait)))
	}
	return text.String()
}

// formatDecks lists decks numbered from 1 with their due counts
func formatDecks(decks []models.Deck, due []int) string {
	if len(decks) == 0 {
		return "You have no decks yet. Create one with /add."
	}

	var text strings.Builder
	text.WriteString("🗂 Your decks\n\n")
	for i, deck := range decks {
		text.WriteString(fmt.Sprintf("%d. %s (%s, %d due)\n", i+1, deck.Title, plural(deck.CardCount, "card", "cards"), due[i]))
	}
	return text.String()
}

func formatRecent(results []models.RecentResult) string {
	var icons strings.Builder
	for _, r := range results {
		icons.WriteString(resultIcons[r.Kind])
	}
	return icons.String()
}

func formatLeaderboard(entries []models.LeaderboardEntry, minQuestions int) string {
	if len(entries) == 0 {
		return fmt.Sprintf("🏆 Leaderboard\n\nNobody has answered %d questions yet.", minQuestions)
	}

	var text strings.Builder
	text.WriteString("🏆 Leaderboard\n\n")
	for _, e := range entries {
		text.WriteString(fmt.Sprintf("%d. %s: %.1f (%d questions, avg %.1f%%, %s) %s\n",
			e.Rank, e.UserName, e.WilsonScore, e.TotalQuestions, e.AverageScore, e.TopCategory, formatRecent(e.RecentResults)))
	}
	text.WriteString(fmt.Sprintf("\nMinimum %d answered questions to qualify.", minQuestions))
	return text.String()
}

func formatStanding(standing models.Standing, minQuestions int) string {
	if standing.Aggregate == nil {
		return "You have no test results yet."
	}

	agg := standing.Aggregate
	var text strings.Builder
	text.WriteString("📈 Your standing\n\n")
	if standing.Position != nil {
		text.WriteString(fmt.Sprintf("Position: %d of %d (top %.1f%%)\n",
			*standing.Position, standing.TotalParticipants, standing.Percentile))
	} else {
		remaining := minQuestions - agg.TotalQuestions
		text.WriteString(fmt.Sprintf("Not ranked yet: answer %d more questions to qualify.\n", remaining))
	}
	text.WriteString(fmt.Sprintf("Wilson score: %.1f\n", agg.WilsonScore))
	text.WriteString(fmt.Sprintf("Questions: %d (%d correct, %d incorrect)\n",
		agg.TotalQuestions, agg.TotalCorrect, agg.TotalIncorrect))
	text.WriteString(fmt.Sprintf("Average score: %.1f%%\n", agg.AverageScore))
	text.WriteString(fmt.Sprintf("Top category: %s\n", agg.TopCategory))
	if len(agg.RecentResults) > 0 {
		text.WriteString(fmt.Sprintf("Recent: %s\n", formatRecent(agg.RecentResults)))
	}
	return text.String()
}

func formatStats(stats exam.Stats) string {
	if stats.TotalTests == 0 {
		return ""
	}
	text := fmt.Sprintf("\nTests taken: %d, accuracy %.1f%%", stats.TotalTests, stats.Accuracy)
	if stats.BestCategory != "" {
		text += fmt.Sprintf(", best category %s", stats.BestCategory)
	}
	if stats.LastTestAt != nil {
		text += fmt.Sprintf("\nLast test: %s", stats.LastTestAt.Format("2006-01-02"))
	}
	return text
}

func boolToEnabledString(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}
