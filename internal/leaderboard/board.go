package leaderboard

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/example/oposbot/pkg/models"
)

// AttemptSource supplies the full attempt collection
type AttemptSource interface {
	ListAll(ctx context.Context) ([]models.Attempt, error)
}

// Snapshot is a computed leaderboard at a point in time
type Snapshot struct {
	Aggregates   []models.UserAggregate
	Entries      []models.LeaderboardEntry
	MinQuestions int
	ComputedAt   time.Time
}

// Standing returns the standing of a user within the snapshot
func (s *Snapshot) Standing(user string) models.Standing {
	return StandingOf(s.Aggregates, s.Entries, s.MinQuestions, user)
}

// Ranking returns the snapshot as a ranking for user
func (s *Snapshot) Ranking(user string) models.Ranking {
	return models.Ranking{Entries: s.Entries, Standing: s.Standing(user)}
}

// Board keeps the last computed leaderboard. A read that finds no snapshot,
// or one older than the TTL, recomputes from the source. A zero TTL disables caching.
type Board struct {
	source       AttemptSource
	minQuestions int
	ttl          time.Duration
	now          func() time.Time

	mu       sync.RWMutex
	snapshot *Snapshot
}

// NewBoard creates a leaderboard cache over source
func NewBoard(source AttemptSource, minQuestions int, ttl time.Duration) *Board {
	return &Board{
		source:       source,
		minQuestions: minQuestions,
		ttl:          ttl,
		now:          time.Now,
	}
}

// Refresh recomputes the leaderboard from the source
func (b *Board) Refresh(ctx context.Context) (*Snapshot, error) {
	attempts, err := b.source.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load attempts: %w", err)
	}

	aggregates := Aggregate(attempts)
	snapshot := &Snapshot{
		Aggregates:   aggregates,
		Entries:      Qualify(aggregates, b.minQuestions),
		MinQuestions: b.minQuestions,
		ComputedAt:   b.now(),
	}

	b.mu.Lock()
	b.snapshot = snapshot
	b.mu.Unlock()

	log.Printf("Leaderboard refreshed: %d attempts, %d users, %d qualified",
		len(attempts), len(aggregates), len(snapshot.Entries))

	return snapshot, nil
}

// Current returns a fresh snapshot, recomputing when needed
func (b *Board) Current(ctx context.Context) (*Snapshot, error) {
	b.mu.RLock()
	snapshot := b.snapshot
	b.mu.RUnlock()

	if snapshot != nil && b.ttl > 0 && b.now().Sub(snapshot.ComputedAt) < b.ttl {
		return snapshot, nil
	}
	return b.Refresh(ctx)
}

// Invalidate drops the cached snapshot
func (b *Board) Invalidate() {
	b.mu.Lock()
	b.snapshot = nil
	b.mu.Unlock()
}
