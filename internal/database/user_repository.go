package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/studyplanner/pkg/models"
)

const userColumns = "id, telegram_id, username, first_name, last_name, notification_enabled, notification_hour, created_at, updated_at"

// UserRepository handles database operations for users
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new repository instance
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Upsert inserts a user or refreshes the profile of an existing one, matched
// by Telegram ID. Notification settings of existing users are kept.
func (r *UserRepository) Upsert(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	query := r.db.Rebind(`
		INSERT INTO users (
			telegram_id, username, first_name, last_name,
			notification_enabled, notification_hour, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (telegram_id) DO UPDATE SET
			username = excluded.username,
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			updated_at = excluded.updated_at
		RETURNING ` + userColumns)

	err := conn(ctx, r.db).QueryRowxContext(ctx, query,
		user.TelegramID,
		user.Username,
		user.FirstName,
		user.LastName,
		user.NotificationEnabled,
		user.NotificationHour,
		now,
		now,
	).StructScan(user)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

// GetByID returns a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, "id = ?", id)
}

// GetByTelegramID returns a user by Telegram ID
func (r *UserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	return r.getOne(ctx, "telegram_id = ?", telegramID)
}

// UpdateNotifications changes the reminder settings of a user
func (r *UserRepository) UpdateNotifications(ctx context.Context, id int64, enabled bool, hour int) error {
	query := r.db.Rebind("UPDATE users SET notification_enabled = ?, notification_hour = ?, updated_at = ? WHERE id = ?")
	res, err := conn(ctx, r.db).ExecContext(ctx, query, enabled, hour, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update notifications: %w", err)
	}
	return expectAffected(res, models.ErrUserNotFound)
}

// ListNotificationEnabled returns users who opted in to notifications
func (r *UserRepository) ListNotificationEnabled(ctx context.Context) ([]models.User, error) {
	return r.list(ctx, "notification_enabled = ?", true)
}

// ListForNotification returns users who have notifications enabled for the given hour
func (r *UserRepository) ListForNotification(ctx context.Context, hour int) ([]models.User, error) {
	return r.list(ctx, "notification_enabled = ? AND notification_hour = ?", true, hour)
}

func (r *UserRepository) getOne(ctx context.Context, condition string, args ...any) (*models.User, error) {
	var user models.User
	query := r.db.Rebind("SELECT " + userColumns + " FROM users WHERE " + condition)
	if err := conn(ctx, r.db).GetContext(ctx, &user, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) list(ctx context.Context, condition string, args ...any) ([]models.User, error) {
	users := []models.User{}
	query := r.db.Rebind("SELECT " + userColumns + " FROM users WHERE " + condition + " ORDER BY id")
	if err := conn(ctx, r.db).SelectContext(ctx, &users, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// expectAffected turns an update that touched no rows into notFound
func expectAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
