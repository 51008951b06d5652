package leaderboard

import (
	"fmt"
	"sort"
	"strings"

	"github.com/example/oposbot/pkg/models"
)

// SortColumn names a leaderboard column that can be sorted on
type SortColumn string

const (
	SortByWilson      SortColumn = "wilson"
	SortByQuestions   SortColumn = "questions"
	SortByCorrect     SortColumn = "correct"
	SortByIncorrect   SortColumn = "incorrect"
	SortByAverage     SortColumn = "average"
	SortByTopCategory SortColumn = "category"
)

// Direction is the sort order
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// ParseSortColumn validates a column name
func ParseSortColumn(s string) (SortColumn, error) {
	column := SortColumn(strings.ToLower(strings.TrimSpace(s)))
	switch column {
	case SortByWilson, SortByQuestions, SortByCorrect, SortByIncorrect, SortByAverage, SortByTopCategory:
		return column, nil
	case "":
		return SortByWilson, nil
	}
	return "", fmt.Errorf("unknown sort column %q", s)
}

// DefaultDirection is A-Z for the category column and highest first for numbers
func DefaultDirection(column SortColumn) Direction {
	if column == SortByTopCategory {
		return Ascending
	}
	return Descending
}

// SortEntries returns a copy of entries sorted by column and re-numbered.
// Equal values keep their Wilson order.
func SortEntries(entries []models.LeaderboardEntry, column SortColumn, direction Direction) []models.LeaderboardEntry {
	sorted := make([]models.LeaderboardEntry, len(entries))
	copy(sorted, entries)

	compare := func(a, b models.LeaderboardEntry) int {
		switch column {
		case SortByTopCategory:
			return strings.Compare(strings.ToLower(a.TopCategory), strings.ToLower(b.TopCategory))
		case SortByQuestions:
			return compareFloat(float64(a.TotalQuestions), float64(b.TotalQuestions))
		case SortByCorrect:
			return compareFloat(float64(a.TotalCorrect), float64(b.TotalCorrect))
		case SortByIncorrect:
			return compareFloat(float64(a.TotalIncorrect), float64(b.TotalIncorrect))
		case SortByAverage:
			return compareFloat(a.AverageScore, b.AverageScore)
		default:
			return compareFloat(a.WilsonScore, b.WilsonScore)
		}
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		c := compare(sorted[i], sorted[j])
		if direction == Ascending {
			return c < 0
		}
		return c > 0
	})

	for i := range sorted {
		sorted[i].Rank = i + 1
	}
	return sorted
}

// Top returns the first n entries; n <= 0 returns all of them
func Top(entries []models.LeaderboardEntry, n int) []models.LeaderboardEntry {
	if n <= 0 || len(entries) <= n {
		return entries
	}
	return entries[:n]
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
