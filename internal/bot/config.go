package bot

// BotConfig represents the configuration for the bot
type BotConfig struct {
	// Number of rows shown by /leaderboard
	LeaderboardSize int
	// Reminder hour for new users
	DefaultNotificationHour int
	// Telegram IDs allowed to use admin commands
	AdminUserIDs map[int64]bool
}

// DefaultConfig returns the default bot configuration
func DefaultConfig() *BotConfig {
	return &BotConfig{
		LeaderboardSize:         10,
		DefaultNotificationHour: 9,
		AdminUserIDs:            make(map[int64]bool),
	}
}
