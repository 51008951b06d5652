package leaderboard

import (
	"math"
	"sort"
	"strings"

	"github.com/example/oposbot/pkg/models"
)

const (
	// DefaultMinQuestions is the minimum sample needed to enter the ranking
	DefaultMinQuestions = 20
	// RecentResultsLimit is the number of latest attempts kept per user
	RecentResultsLimit = 5
	// NoCategory is reported when no category has any correct answer
	NoCategory = "N/A"
	// Uncategorized labels attempts without a category
	Uncategorized = "Uncategorized"
)

// Rank aggregates attempts per user, ranks qualified users by Wilson score
// and reports the standing of currentUser ("" for none).
func Rank(attempts []models.Attempt, minQuestions int, currentUser string) models.Ranking {
	aggregates := Aggregate(attempts)
	entries := Qualify(aggregates, minQuestions)

	return models.Ranking{
		Entries:  entries,
		Standing: StandingOf(aggregates, entries, minQuestions, currentUser),
	}
}

// Aggregate groups attempts by user identity. The result is ordered by identity.
// Malformed values are treated as zero contributions.
func Aggregate(attempts []models.Attempt) []models.UserAggregate {
	groups := make(map[string][]models.Attempt)
	for _, a := range attempts {
		if a.UserIdentity == "" {
			continue
		}
		groups[a.UserIdentity] = append(groups[a.UserIdentity], sanitize(a))
	}

	identities := make([]string, 0, len(groups))
	for identity := range groups {
		identities = append(identities, identity)
	}
	sort.Strings(identities)

	aggregates := make([]models.UserAggregate, 0, len(identities))
	for _, identity := range identities {
		aggregates = append(aggregates, aggregateUser(identity, groups[identity]))
	}
	return aggregates
}

// Qualify filters aggregates by the minimum number of questions and ranks
// them by Wilson score descending. Ties are broken by identity ascending.
func Qualify(aggregates []models.UserAggregate, minQuestions int) []models.LeaderboardEntry {
	entries := make([]models.LeaderboardEntry, 0, len(aggregates))
	for _, agg := range aggregates {
		if agg.TotalQuestions >= minQuestions {
			entries = append(entries, models.LeaderboardEntry{UserAggregate: agg})
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].WilsonScore != entries[j].WilsonScore {
			return entries[i].WilsonScore > entries[j].WilsonScore
		}
		return entries[i].UserIdentity < entries[j].UserIdentity
	})

	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// StandingOf locates user among all aggregates and within the ranked entries
func StandingOf(aggregates []models.UserAggregate, entries []models.LeaderboardEntry, minQuestions int, user string) models.Standing {
	standing := models.Standing{TotalParticipants: len(entries)}
	if user == "" {
		return standing
	}

	for i := range aggregates {
		if aggregates[i].UserIdentity == user {
			agg := aggregates[i]
			standing.Aggregate = &agg
			break
		}
	}
	if standing.Aggregate == nil {
		return standing
	}

	standing.MeetsMinimum = standing.Aggregate.TotalQuestions >= minQuestions
	if !standing.MeetsMinimum {
		return standing
	}

	for _, entry := range entries {
		if entry.UserIdentity == user {
			position := entry.Rank
			standing.Position = &position
			standing.Percentile = float64(position) / float64(len(entries)) * 100
			break
		}
	}
	return standing
}

func aggregateUser(identity string, attempts []models.Attempt) models.UserAggregate {
	agg := models.UserAggregate{
		UserIdentity: identity,
		TopCategory:  NoCategory,
	}

	categoryCorrect := make(map[string]int)
	var scoreSum float64
	for _, a := range attempts {
		agg.TotalTests++
		agg.TotalCorrect += a.CorrectCount
		agg.TotalIncorrect += a.IncorrectCount
		scoreSum += a.NormalizedScore * 100

		category := a.Category
		if category == "" {
			category = Uncategorized
		}
		categoryCorrect[category] += a.CorrectCount
	}

	agg.TotalQuestions = agg.TotalCorrect + agg.TotalIncorrect
	if agg.TotalTests > 0 {
		agg.AverageScore = scoreSum / float64(agg.TotalTests)
	}
	agg.WilsonScore = WilsonScore(agg.TotalCorrect, agg.TotalQuestions)
	agg.TopCategory = topCategory(categoryCorrect)

	recent := make([]models.Attempt, len(attempts))
	copy(recent, attempts)
	sort.SliceStable(recent, func(i, j int) bool {
		if !recent[i].OccurredAt.Equal(recent[j].OccurredAt) {
			return recent[i].OccurredAt.After(recent[j].OccurredAt)
		}
		return recent[i].ID > recent[j].ID
	})

	agg.UserName = displayName(identity, recent)

	if len(recent) > RecentResultsLimit {
		recent = recent[:RecentResultsLimit]
	}
	agg.RecentResults = make([]models.RecentResult, 0, len(recent))
	for _, a := range recent {
		score := a.NormalizedScore * 100
		agg.RecentResults = append(agg.RecentResults, models.RecentResult{
			Score: score,
			Kind:  ClassifyResult(score),
		})
	}

	return agg
}

// ClassifyResult maps a percentage score to a display class
func ClassifyResult(score float64) models.ResultKind {
	switch {
	case score >= 50:
		return models.ResultCorrect
	case score > 0:
		return models.ResultIncorrect
	default:
		return models.ResultNeutral
	}
}

func topCategory(categoryCorrect map[string]int) string {
	best := NoCategory
	bestCorrect := 0
	for category, correct := range categoryCorrect {
		if correct > bestCorrect || (correct == bestCorrect && correct > 0 && category < best) {
			best = category
			bestCorrect = correct
		}
	}
	return best
}

// displayName takes the most recent non-empty name, falling back to the
// local part of an email identity.
func displayName(identity string, newestFirst []models.Attempt) string {
	for _, a := range newestFirst {
		if a.UserName != "" {
			return a.UserName
		}
	}
	if at := strings.Index(identity, "@"); at > 0 {
		return identity[:at]
	}
	return identity
}

func sanitize(a models.Attempt) models.Attempt {
	if a.CorrectCount < 0 {
		a.CorrectCount = 0
	}
	if a.IncorrectCount < 0 {
		a.IncorrectCount = 0
	}
	if math.IsNaN(a.NormalizedScore) || math.IsInf(a.NormalizedScore, 0) {
		a.NormalizedScore = 0
	}
	return a
}
