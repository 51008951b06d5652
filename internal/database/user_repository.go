package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/example/oposbot/pkg/models"
)

const userColumns = `telegram_id, identity, username, first_name, is_admin,
	notification_enabled, notification_hour, created_at, updated_at`

// UserRepository handles database operations for users
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new repository instance
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Upsert inserts a new user or refreshes the profile of an existing one.
// Identity and notification settings of existing users are preserved.
func (r *UserRepository) Upsert(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (telegram_id) DO UPDATE SET
			username = EXCLUDED.username,
			first_name = EXCLUDED.first_name,
			is_admin = EXCLUDED.is_admin,
			updated_at = EXCLUDED.updated_at
	`),
		user.TelegramID,
		user.Identity,
		user.Username,
		user.FirstName,
		user.IsAdmin,
		user.NotificationEnabled,
		user.NotificationHour,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "failed to upsert user")
	}
	return nil
}

// GetByTelegramID returns a user by Telegram ID
func (r *UserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, r.db.Rebind(`SELECT `+userColumns+` FROM users WHERE telegram_id = ?`), telegramID)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user")
	}
	return &user, nil
}

// LinkIdentity associates the user with the identity used for exam results
func (r *UserRepository) LinkIdentity(ctx context.Context, telegramID int64, identity string) error {
	return r.update(ctx, `identity = ?`, telegramID, identity)
}

// UpdateNotifications changes the reminder settings of a user
func (r *UserRepository) UpdateNotifications(ctx context.Context, telegramID int64, enabled bool, hour int) error {
	if hour < 0 || hour > 23 {
		return errors.Errorf("notification hour %d out of range", hour)
	}
	return r.update(ctx, `notification_enabled = ?, notification_hour = ?`, telegramID, enabled, hour)
}

// GetUsersForNotification returns users who want reminders at the given hour
func (r *UserRepository) GetUsersForNotification(ctx context.Context, hour int) ([]models.User, error) {
	var users []models.User
	err := r.db.SelectContext(ctx, &users, r.db.Rebind(`
		SELECT `+userColumns+`
		FROM users
		WHERE notification_enabled = ? AND notification_hour = ?
		ORDER BY telegram_id
	`), true, hour)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get users for notification")
	}
	return users, nil
}

// update is a helper that sets columns on a single user
func (r *UserRepository) update(ctx context.Context, set string, telegramID int64, args ...interface{}) error {
	args = append(args, time.Now().UTC(), telegramID)
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE users SET `+set+`, updated_at = ? WHERE telegram_id = ?`), args...)
	if err != nil {
		return errors.Wrap(err, "failed to update user")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to get rows affected")
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
