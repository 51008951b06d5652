package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/example/oposbot/internal/leaderboard"
	"github.com/example/oposbot/internal/study"
	"github.com/example/oposbot/pkg/models"
)

// Default notification window, in UTC hours
const (
	DefaultNotificationStartHour = 4
	DefaultNotificationEndHour   = 18
)

// Notifier interface for sending notifications
type Notifier interface {
	SendReminders(telegramID int64, count int) error
}

// UserSource returns the users subscribed to reminders at a given hour
type UserSource interface {
	GetUsersForNotification(ctx context.Context, hour int) ([]models.User, error)
}

// CardSummarizer reports how many cards a user has due
type CardSummarizer interface {
	Summary(ctx context.Context, userID string) (study.Summary, error)
}

// LeaderboardRefresher recomputes the cached leaderboard
type LeaderboardRefresher interface {
	Refresh(ctx context.Context) (*leaderboard.Snapshot, error)
}

// Config holds the job settings
type Config struct {
	NotificationStartHour int
	NotificationEndHour   int
	// Upper bound for the number of cards announced in one reminder
	ReviewBatchSize int
	// Zero disables the leaderboard job
	LeaderboardRefresh time.Duration
}

// DefaultConfig returns the scheduler defaults
func DefaultConfig() Config {
	return Config{
		NotificationStartHour: DefaultNotificationStartHour,
		NotificationEndHour:   DefaultNotificationEndHour,
		ReviewBatchSize:       20,
		LeaderboardRefresh:    5 * time.Minute,
	}
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	notifier  Notifier
	users     UserSource
	cards     CardSummarizer
	board     LeaderboardRefresher
	config    Config
	now       func() time.Time
	ctx       context.Context
}

// New creates a new scheduler instance. board may be nil.
func New(notifier Notifier, users UserSource, cards CardSummarizer, board LeaderboardRefresher, config Config) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		notifier:  notifier,
		users:     users,
		cards:     cards,
		board:     board,
		config:    config,
		now:       time.Now,
		ctx:       context.Background(),
	}
}

// Start registers the jobs and runs them in the background until Stop
func (s *Scheduler) Start(ctx context.Context) error {
	s.ctx = ctx

	// Hourly check for users who need notifications
	if _, err := s.scheduler.Every(1).Hour().Do(s.checkAndSendReminders); err != nil {
		return fmt.Errorf("failed to schedule reminders: %v", err)
	}

	if s.board != nil && s.config.LeaderboardRefresh > 0 {
		if _, err := s.scheduler.Every(s.config.LeaderboardRefresh).Do(s.refreshLeaderboard); err != nil {
			return fmt.Errorf("failed to schedule leaderboard refresh: %v", err)
		}
	}

	s.scheduler.StartAsync()
	log.Printf("Scheduler started with %d jobs", len(s.scheduler.Jobs()))
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// InWindow reports whether reminders may be sent at the given hour.
// A window whose start is after its end wraps around midnight.
func (c Config) InWindow(hour int) bool {
	if c.NotificationStartHour <= c.NotificationEndHour {
		return hour >= c.NotificationStartHour && hour <= c.NotificationEndHour
	}
	return hour >= c.NotificationStartHour || hour <= c.NotificationEndHour
}

func (s *Scheduler) checkAndSendReminders() {
	s.sendReminders(s.ctx)
}

// sendReminders notifies every subscribed user with due cards and
// returns the number of reminders delivered
func (s *Scheduler) sendReminders(ctx context.Context) int {
	currentHour := s.now().UTC().Hour()

	if !s.config.InWindow(currentHour) {
		log.Printf("Current hour %d is outside notification hours (%d-%d), skipping reminders",
			currentHour, s.config.NotificationStartHour, s.config.NotificationEndHour)
		return 0
	}

	users, err := s.users.GetUsersForNotification(ctx, currentHour)
	if err != nil {
		log.Printf("Error getting users for notification: %v", err)
		return 0
	}

	sent := 0
	for _, user := range users {
		delivered, err := s.remind(ctx, user)
		if err != nil {
			log.Printf("Error sending reminder to user %d: %v", user.TelegramID, err)
			continue
		}
		if delivered {
			sent++
		}
	}
	return sent
}

func (s *Scheduler) remind(ctx context.Context, user models.User) (bool, error) {
	summary, err := s.cards.Summary(ctx, user.CardOwner())
	if err != nil {
		return false, fmt.Errorf("failed to get due cards: %v", err)
	}
	if summary.Due == 0 {
		return false, nil
	}

	count := summary.Due
	if s.config.ReviewBatchSize > 0 && count > s.config.ReviewBatchSize {
		count = s.config.ReviewBatchSize
	}
	if err := s.notifier.SendReminders(user.TelegramID, count); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Scheduler) refreshLeaderboard() {
	if _, err := s.board.Refresh(s.ctx); err != nil {
		log.Printf("Error refreshing leaderboard: %v", err)
	}
}

// RunManualCheck forces a reminder check for a specific user,
// ignoring the notification window
func (s *Scheduler) RunManualCheck(ctx context.Context, user models.User) error {
	_, err := s.remind(ctx, user)
	return err
}
