package leaderboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/oposbot/pkg/models"
)

type fakeSource struct {
	attempts []models.Attempt
	err      error
	calls    int
}

func (f *fakeSource) ListAll(ctx context.Context) ([]models.Attempt, error) {
	f.calls++
	return f.attempts, f.err
}

func TestBoardCachesWithinTTL(t *testing.T) {
	source := &fakeSource{attempts: []models.Attempt{
		attempt("a@example.com", 18, 2, 0.9, "", 1),
	}}
	now := baseTime
	board := NewBoard(source, 20, time.Minute)
	board.now = func() time.Time { return now }

	first, err := board.Current(context.Background())
	require.NoError(t, err)
	require.Len(t, first.Entries, 1)

	now = now.Add(30 * time.Second)
	second, err := board.Current(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, source.calls)

	now = now.Add(time.Minute)
	_, err = board.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, source.calls)
}

func TestBoardMatchesRecompute(t *testing.T) {
	attempts := []models.Attempt{
		attempt("a@example.com", 18, 2, 0.9, "Law", 1),
		attempt("b@example.com", 100, 100, 0.5, "History", 1),
		attempt("c@example.com", 5, 0, 1, "", 1),
	}
	board := NewBoard(&fakeSource{attempts: attempts}, 20, time.Hour)

	snapshot, err := board.Current(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Rank(attempts, 20, "c@example.com"), snapshot.Ranking("c@example.com"))
	assert.Equal(t, Rank(attempts, 20, "a@example.com"), snapshot.Ranking("a@example.com"))
}

func TestBoardZeroTTLAlwaysRecomputes(t *testing.T) {
	source := &fakeSource{}
	board := NewBoard(source, 20, 0)

	for i := 0; i < 3; i++ {
		_, err := board.Current(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, 3, source.calls)
}

func TestBoardInvalidate(t *testing.T) {
	source := &fakeSource{}
	board := NewBoard(source, 20, time.Hour)

	_, err := board.Current(context.Background())
	require.NoError(t, err)
	board.Invalidate()
	_, err = board.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, source.calls)
}

func TestBoardSourceError(t *testing.T) {
	board := NewBoard(&fakeSource{err: errors.New("connection refused")}, 20, time.Hour)

	_, err := board.Current(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}
