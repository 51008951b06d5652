package models

import (
	"strconv"
	"time"
)

// User represents a Telegram user using the bot
type User struct {
	TelegramID          int64     `json:"telegram_id" db:"telegram_id"`
	Identity            string    `json:"identity" db:"identity"` // Email linked to exam results
	Username            string    `json:"username" db:"username"`
	FirstName           string    `json:"first_name" db:"first_name"`
	IsAdmin             bool      `json:"is_admin" db:"is_admin"`
	NotificationEnabled bool      `json:"notification_enabled" db:"notification_enabled"`
	NotificationHour    int       `json:"notification_hour" db:"notification_hour"` // Hour of day for notifications (0-23)
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time `json:"updated_at" db:"updated_at"`
}

// CardOwner is the key flashcards of this user are stored under
func (u *User) CardOwner() string {
	return "tg:" + strconv.FormatInt(u.TelegramID, 10)
}
