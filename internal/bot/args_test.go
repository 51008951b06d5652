package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/oposbot/internal/leaderboard"
)

func TestParseLinkArgs(t *testing.T) {
	tests := []struct {
		args string
		want string
		ok   bool
	}{
		{"ana@example.com", "ana@example.com", true},
		{"  Ana@Example.COM ", "ana@example.com", true},
		{"", "", false},
		{"ana", "", false},
		{"ana @example.com", "", false},
		{"ana@example.com\nbob@example.com", "", false},
	}

	for _, tt := range tests {
		got, ok := parseLinkArgs(tt.args)
		assert.Equal(t, tt.ok, ok, tt.args)
		assert.Equal(t, tt.want, got, tt.args)
	}
}

func TestSplitDeckArgs(t *testing.T) {
	tests := []struct {
		name      string
		args      string
		wantTitle string
		wantBody  string
	}{
		{"title line", "Constitution\nArt. 1 | Spain is a social state", "Constitution", "Art. 1 | Spain is a social state"},
		{"first line is a card", "Art. 1 | Social state\nArt. 2 | Unity", "", "Art. 1 | Social state\nArt. 2 | Unity"},
		{"single card", "Art. 1 | Social state", "", "Art. 1 | Social state"},
		{"single line without card", "Constitution", "", "Constitution"},
		{"empty", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, body := splitDeckArgs(tt.args)
			assert.Equal(t, tt.wantTitle, title)
			assert.Equal(t, tt.wantBody, body)
		})
	}
}

func TestParseLeaderboardArgs(t *testing.T) {
	tests := []struct {
		args      string
		column    leaderboard.SortColumn
		direction leaderboard.Direction
	}{
		{"", leaderboard.SortByWilson, leaderboard.Descending},
		{"questions", leaderboard.SortByQuestions, leaderboard.Descending},
		{"Category", leaderboard.SortByTopCategory, leaderboard.Ascending},
		{"category desc", leaderboard.SortByTopCategory, leaderboard.Descending},
		{"wilson ASC", leaderboard.SortByWilson, leaderboard.Ascending},
	}

	for _, tt := range tests {
		column, direction, err := parseLeaderboardArgs(tt.args)
		require.NoError(t, err, tt.args)
		assert.Equal(t, tt.column, column, tt.args)
		assert.Equal(t, tt.direction, direction, tt.args)
	}
}

func TestParseLeaderboardArgsErrors(t *testing.T) {
	for _, args := range []string{"speed", "wilson up", "wilson asc extra"} {
		_, _, err := parseLeaderboardArgs(args)
		assert.Error(t, err, args)
	}
}
