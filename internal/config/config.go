package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/example/oposbot/internal/database"
)

// Config holds the application settings read from the environment
type Config struct {
	TelegramToken string
	Database      database.Config

	// Minimum number of answered questions to enter the leaderboard
	MinQuestions int
	// Number of rows shown by /leaderboard
	LeaderboardSize int
	// How often the cached leaderboard is recomputed
	LeaderboardRefresh time.Duration
	// Maximum number of cards in one review session
	ReviewBatchSize int

	// Reminders are only sent between these hours (inclusive, UTC)
	NotificationStartHour int
	NotificationEndHour   int

	AdminUserIDs map[int64]bool
}

// Load reads .env files (if present) and the environment
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load %s: %v", file, err)
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("DB_TYPE", "sqlite")
	v.SetDefault("SQLITE_PATH", "data/oposbot.db")
	v.SetDefault("MIN_QUESTIONS", 20)
	v.SetDefault("LEADERBOARD_SIZE", 10)
	v.SetDefault("LEADERBOARD_REFRESH", "5m")
	v.SetDefault("REVIEW_BATCH_SIZE", 20)
	v.SetDefault("NOTIFICATION_START_HOUR", 4)
	v.SetDefault("NOTIFICATION_END_HOUR", 18)

	cfg := &Config{
		TelegramToken: v.GetString("TELEGRAM_BOT_TOKEN"),
		Database: database.Config{
			Type:       strings.ToLower(v.GetString("DB_TYPE")),
			URL:        v.GetString("DATABASE_URL"),
			SQLitePath: v.GetString("SQLITE_PATH"),
		},
		MinQuestions:          v.GetInt("MIN_QUESTIONS"),
		LeaderboardSize:       v.GetInt("LEADERBOARD_SIZE"),
		LeaderboardRefresh:    v.GetDuration("LEADERBOARD_REFRESH"),
		ReviewBatchSize:       v.GetInt("REVIEW_BATCH_SIZE"),
		NotificationStartHour: v.GetInt("NOTIFICATION_START_HOUR"),
		NotificationEndHour:   v.GetInt("NOTIFICATION_END_HOUR"),
		AdminUserIDs:          parseAdminIDs(v.GetString("ADMIN_USER_IDS")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	if c.MinQuestions < 0 {
		return fmt.Errorf("MIN_QUESTIONS must not be negative, got %d", c.MinQuestions)
	}
	if c.LeaderboardSize < 0 {
		return fmt.Errorf("LEADERBOARD_SIZE must not be negative, got %d", c.LeaderboardSize)
	}
	if c.ReviewBatchSize <= 0 {
		return fmt.Errorf("REVIEW_BATCH_SIZE must be positive, got %d", c.ReviewBatchSize)
	}
	if c.LeaderboardRefresh < 0 {
		return fmt.Errorf("LEADERBOARD_REFRESH must not be negative, got %s", c.LeaderboardRefresh)
	}
	for name, hour := range map[string]int{
		"NOTIFICATION_START_HOUR": c.NotificationStartHour,
		"NOTIFICATION_END_HOUR":   c.NotificationEndHour,
	} {
		if hour < 0 || hour > 23 {
			return fmt.Errorf("%s must be between 0 and 23, got %d", name, hour)
		}
	}
	switch c.Database.Type {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("DB_TYPE must be sqlite or postgres, got %q", c.Database.Type)
	}
	return nil
}

// IsAdmin reports whether the Telegram user is listed in ADMIN_USER_IDS
func (c *Config) IsAdmin(userID int64) bool {
	return c.AdminUserIDs[userID]
}

func parseAdminIDs(raw string) map[int64]bool {
	ids := make(map[int64]bool)
	if raw == "" {
		return ids
	}
	for _, idStr := range strings.Split(raw, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(idStr), 10, 64)
		if err != nil {
			log.Printf("Warning: Invalid admin user ID: %s", idStr)
			continue
		}
		ids[id] = true
	}
	return ids
}
