package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/oposbot/internal/leaderboard"
	"github.com/example/oposbot/internal/study"
	"github.com/example/oposbot/pkg/models"
)

type sentReminder struct {
	telegramID int64
	count      int
}

type fakeNotifier struct {
	sent []sentReminder
	fail map[int64]bool
}

func (n *fakeNotifier) SendReminders(telegramID int64, count int) error {
	if n.fail[telegramID] {
		return errors.New("blocked by user")
	}
	n.sent = append(n.sent, sentReminder{telegramID, count})
	return nil
}

type fakeUsers struct {
	byHour map[int][]models.User
	hours  []int
}

func (u *fakeUsers) GetUsersForNotification(_ context.Context, hour int) ([]models.User, error) {
	u.hours = append(u.hours, hour)
	return u.byHour[hour], nil
}

type fakeCards map[string]int

func (c fakeCards) Summary(_ context.Context, userID string) (study.Summary, error) {
	due, ok := c[userID]
	if !ok {
		return study.Summary{}, errors.New("unknown user")
	}
	return study.Summary{Total: due, Due: due}, nil
}

type fakeBoard struct {
	refreshed int
}

func (b *fakeBoard) Refresh(context.Context) (*leaderboard.Snapshot, error) {
	b.refreshed++
	return &leaderboard.Snapshot{}, nil
}

func newTestScheduler(notifier *fakeNotifier, users *fakeUsers, cards fakeCards, hour int) *Scheduler {
	s := New(notifier, users, cards, nil, DefaultConfig())
	s.now = func() time.Time { return time.Date(2024, 3, 1, hour, 30, 0, 0, time.UTC) }
	return s
}

func TestSendRemindersNotifiesUsersWithDueCards(t *testing.T) {
	users := &fakeUsers{byHour: map[int][]models.User{
		9: {{TelegramID: 1}, {TelegramID: 2}, {TelegramID: 3}, {TelegramID: 4}},
	}}
	cards := fakeCards{"tg:1": 3, "tg:2": 0, "tg:3": 45}
	notifier := &fakeNotifier{}

	sent := newTestScheduler(notifier, users, cards, 9).sendReminders(context.Background())

	assert.Equal(t, 2, sent)
	assert.Equal(t, []sentReminder{{1, 3}, {3, 20}}, notifier.sent)
	assert.Equal(t, []int{9}, users.hours)
}

func TestSendRemindersOutsideWindow(t *testing.T) {
	users := &fakeUsers{byHour: map[int][]models.User{22: {{TelegramID: 1}}}}
	notifier := &fakeNotifier{}

	sent := newTestScheduler(notifier, users, fakeCards{"tg:1": 5}, 22).sendReminders(context.Background())

	assert.Zero(t, sent)
	assert.Empty(t, users.hours)
	assert.Empty(t, notifier.sent)
}

func TestSendRemindersContinuesAfterFailure(t *testing.T) {
	users := &fakeUsers{byHour: map[int][]models.User{10: {{TelegramID: 1}, {TelegramID: 2}}}}
	notifier := &fakeNotifier{fail: map[int64]bool{1: true}}

	sent := newTestScheduler(notifier, users, fakeCards{"tg:1": 5, "tg:2": 5}, 10).sendReminders(context.Background())

	assert.Equal(t, 1, sent)
	assert.Equal(t, []sentReminder{{2, 5}}, notifier.sent)
}

func TestConfigInWindow(t *testing.T) {
	day := Config{NotificationStartHour: 4, NotificationEndHour: 18}
	assert.True(t, day.InWindow(4))
	assert.True(t, day.InWindow(18))
	assert.False(t, day.InWindow(3))
	assert.False(t, day.InWindow(19))

	night := Config{NotificationStartHour: 22, NotificationEndHour: 2}
	assert.True(t, night.InWindow(23))
	assert.True(t, night.InWindow(1))
	assert.False(t, night.InWindow(12))
}

func TestRunManualCheck(t *testing.T) {
	notifier := &fakeNotifier{}
	s := newTestScheduler(notifier, &fakeUsers{}, fakeCards{"tg:7": 2}, 23)

	require.NoError(t, s.RunManualCheck(context.Background(), models.User{TelegramID: 7}))
	assert.Equal(t, []sentReminder{{7, 2}}, notifier.sent)

	assert.Error(t, s.RunManualCheck(context.Background(), models.User{TelegramID: 8}))
}

func TestRefreshLeaderboardJob(t *testing.T) {
	board := &fakeBoard{}
	s := New(&fakeNotifier{}, &fakeUsers{}, fakeCards{}, board, DefaultConfig())

	s.refreshLeaderboard()
	assert.Equal(t, 1, board.refreshed)
}
