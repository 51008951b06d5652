package leaderboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/oposbot/pkg/models"
)

func sampleEntries() []models.LeaderboardEntry {
	return Qualify([]models.UserAggregate{
		{UserIdentity: "a", TotalQuestions: 20, TotalCorrect: 18, TotalIncorrect: 2, AverageScore: 90, WilsonScore: 69.9, TopCategory: "law"},
		{UserIdentity: "b", TotalQuestions: 200, TotalCorrect: 100, TotalIncorrect: 100, AverageScore: 50, WilsonScore: 43.1, TopCategory: "History"},
		{UserIdentity: "c", TotalQuestions: 50, TotalCorrect: 45, TotalIncorrect: 5, AverageScore: 88, WilsonScore: 78.6, TopCategory: "biology"},
	}, 0)
}

func identities(entries []models.LeaderboardEntry) []string {
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.UserIdentity
	}
	return ids
}

func TestSortEntries(t *testing.T) {
	entries := sampleEntries()
	require.Equal(t, []string{"c", "a", "b"}, identities(entries))

	tests := []struct {
		column    SortColumn
		direction Direction
		want      []string
	}{
		{SortByWilson, Descending, []string{"c", "a", "b"}},
		{SortByWilson, Ascending, []string{"b", "a", "c"}},
		{SortByQuestions, Descending, []string{"b", "c", "a"}},
		{SortByCorrect, Descending, []string{"b", "c", "a"}},
		{SortByIncorrect, Ascending, []string{"a", "c", "b"}},
		{SortByAverage, Descending, []string{"a", "c", "b"}},
		{SortByTopCategory, Ascending, []string{"c", "b", "a"}},
		{SortByTopCategory, Descending, []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.column)+"_"+string(tt.direction), func(t *testing.T) {
			sorted := SortEntries(entries, tt.column, tt.direction)
			assert.Equal(t, tt.want, identities(sorted))
			for i, e := range sorted {
				assert.Equal(t, i+1, e.Rank)
			}
		})
	}

	// Input is not modified
	assert.Equal(t, []string{"c", "a", "b"}, identities(entries))
	assert.Equal(t, 1, entries[0].Rank)
}

func TestParseSortColumn(t *testing.T) {
	column, err := ParseSortColumn("Average")
	require.NoError(t, err)
	assert.Equal(t, SortByAverage, column)

	column, err = ParseSortColumn("")
	require.NoError(t, err)
	assert.Equal(t, SortByWilson, column)

	_, err = ParseSortColumn("email")
	assert.Error(t, err)

	assert.Equal(t, Ascending, DefaultDirection(SortByTopCategory))
	assert.Equal(t, Descending, DefaultDirection(SortByQuestions))
}

func TestTop(t *testing.T) {
	entries := sampleEntries()

	assert.Len(t, Top(entries, 2), 2)
	assert.Len(t, Top(entries, 10), 3)
	assert.Len(t, Top(entries, 0), 3)
}
