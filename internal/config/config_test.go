package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "token", cfg.TelegramToken)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "data/oposbot.db", cfg.Database.SQLitePath)
	assert.Equal(t, 20, cfg.MinQuestions)
	assert.Equal(t, 10, cfg.LeaderboardSize)
	assert.Equal(t, 5*time.Minute, cfg.LeaderboardRefresh)
	assert.Equal(t, 20, cfg.ReviewBatchSize)
	assert.Equal(t, 4, cfg.NotificationStartHour)
	assert.Equal(t, 18, cfg.NotificationEndHour)
	assert.Empty(t, cfg.AdminUserIDs)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("DB_TYPE", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/oposbot")
	t.Setenv("MIN_QUESTIONS", "50")
	t.Setenv("LEADERBOARD_REFRESH", "90s")
	t.Setenv("ADMIN_USER_IDS", "12, 34,oops")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, "postgres://localhost/oposbot", cfg.Database.URL)
	assert.Equal(t, 50, cfg.MinQuestions)
	assert.Equal(t, 90*time.Second, cfg.LeaderboardRefresh)
	assert.True(t, cfg.IsAdmin(12))
	assert.True(t, cfg.IsAdmin(34))
	assert.False(t, cfg.IsAdmin(56))
}

func TestLoadDotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("LEADERBOARD_SIZE=25\n"), 0600))
	t.Cleanup(func() { os.Unsetenv("LEADERBOARD_SIZE") })

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.LeaderboardSize)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := map[string]string{
		"NOTIFICATION_START_HOUR": "24",
		"REVIEW_BATCH_SIZE":       "0",
		"MIN_QUESTIONS":           "-1",
		"DB_TYPE":                 "oracle",
	}

	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
			assert.Error(t, err)
		})
	}
}
