package usecase

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/example/studyplanner/pkg/models"
)

// UserUsecase registers Telegram users and manages their reminder settings.
type UserUsecase interface {
	Register(ctx context.Context, user *models.User) (*models.User, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error)
	UpdateNotifications(ctx context.Context, userID int64, enabled bool, hour int) error
	ListForNotification(ctx context.Context, hour int) ([]models.User, error)
	ListNotificationEnabled(ctx context.Context) ([]models.User, error)
}

// NewUserUsecase wires the repositories with default behaviour.
func NewUserUsecase(users UserRepository, gamification GamificationRepository, logger logrus.FieldLogger) UserUsecase {
	return &userUsecase{users: users, gamification: gamification, logger: logger}
}

type userUsecase struct {
	users        UserRepository
	gamification GamificationRepository
	logger       logrus.FieldLogger
}

// Register creates the user on first contact and refreshes the Telegram
// profile afterwards. Every registered user has a gamification record.
func (u *userUsecase) Register(ctx context.Context, user *models.User) (*models.User, error) {
	if user == nil || user.TelegramID == 0 {
		return nil, models.ErrUserNotFound
	}
	copy := *user
	copy.NotificationEnabled = true
	copy.NotificationHour = models.DefaultNotificationHour

	if err := u.users.Upsert(ctx, &copy); err != nil {
		return nil, err
	}
	if err := u.gamification.Ensure(ctx, copy.ID); err != nil {
		return nil, fmt.Errorf("register user %d: %w", copy.ID, err)
	}
	u.logger.WithFields(logrus.Fields{
		"user_id":     copy.ID,
		"telegram_id": copy.TelegramID,
	}).Debug("user registered")
	return &copy, nil
}

func (u *userUsecase) GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	return u.users.GetByTelegramID(ctx, telegramID)
}

func (u *userUsecase) UpdateNotifications(ctx context.Context, userID int64, enabled bool, hour int) error {
	if hour < 0 || hour > 23 {
		return models.ErrInvalidHour
	}
	return u.users.UpdateNotifications(ctx, userID, enabled, hour)
}

func (u *userUsecase) ListForNotification(ctx context.Context, hour int) ([]models.User, error) {
	if hour < 0 || hour > 23 {
		return nil, models.ErrInvalidHour
	}
	return u.users.ListForNotification(ctx, hour)
}

func (u *userUsecase) ListNotificationEnabled(ctx context.Context) ([]models.User, error) {
	return u.users.ListNotificationEnabled(ctx)
}
