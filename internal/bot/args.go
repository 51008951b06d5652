package bot

import (
	"fmt"
	"strings"

	"github.com/example/oposbot/internal/exam"
	"github.com/example/oposbot/internal/leaderboard"
)

// parseLinkArgs returns the normalized email given to /link
func parseLinkArgs(args string) (string, bool) {
	identity := exam.NormalizeIdentity(args)
	if !strings.Contains(identity, "@") || strings.ContainsAny(identity, " \t\n") {
		return "", false
	}
	return identity, true
}

// splitDeckArgs separates an optional title line from the card lines of /add.
// The first line is a title only when it is not itself a card.
func splitDeckArgs(args string) (title, body string) {
	first, rest, found := strings.Cut(args, "\n")
	if found && !strings.Contains(first, "|") {
		return strings.TrimSpace(first), rest
	}
	return "", args
}

// parseLeaderboardArgs reads "[column] [asc|desc]"
func parseLeaderboardArgs(args string) (leaderboard.SortColumn, leaderboard.Direction, error) {
	fields := strings.Fields(args)

	column := leaderboard.SortByWilson
	if len(fields) > 0 {
		var err error
		if column, err = leaderboard.ParseSortColumn(fields[0]); err != nil {
			return "", "", err
		}
	}

	direction := leaderboard.DefaultDirection(column)
	if len(fields) > 1 {
		direction = leaderboard.Direction(strings.ToLower(fields[1]))
		if direction != leaderboard.Ascending && direction != leaderboard.Descending {
			return "", "", fmt.Errorf("direction must be asc or desc")
		}
	}
	if len(fields) > 2 {
		return "", "", fmt.Errorf("too many arguments")
	}
	return column, direction, nil
}
