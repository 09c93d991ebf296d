package usecase

import (
	"context"
	"time"

	"github.com/example/studyplanner/pkg/models"
)

// UserRepository persists Telegram users.
type UserRepository interface {
	Upsert(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error)
	UpdateNotifications(ctx context.Context, id int64, enabled bool, hour int) error
	ListNotificationEnabled(ctx context.Context) ([]models.User, error)
	ListForNotification(ctx context.Context, hour int) ([]models.User, error)
}

// SubjectLoader provides the subjects a plan is generated from.
type SubjectLoader interface {
	LoadActiveSubjects(ctx context.Context, userID int64) ([]models.Subject, error)
}

// SubjectRepository persists subjects.
type SubjectRepository interface {
	SubjectLoader
	Create(ctx context.Context, subject *models.Subject) error
	GetByID(ctx context.Context, userID, id int64) (*models.Subject, error)
	Update(ctx context.Context, subject *models.Subject) error
	SoftDelete(ctx context.Context, userID, id int64, at time.Time) error
}

// GamificationRepository persists experience, streaks and badges.
type GamificationRepository interface {
	Ensure(ctx context.Context, userID int64) error
	Get(ctx context.Context, userID int64) (*models.Gamification, error)
	Save(ctx context.Context, g *models.Gamification) error
}

// SessionRepository persists study sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *models.StudySession) error
	ListRecent(ctx context.Context, userID int64, limit int) ([]models.StudySession, error)
	ListSince(ctx context.Context, userID int64, since time.Time) ([]models.StudySession, error)
}

// ReflectionRepository persists reflections.
type ReflectionRepository interface {
	Create(ctx context.Context, reflection *models.Reflection) error
	ListSince(ctx context.Context, userID int64, since time.Time) ([]models.Reflection, error)
}

// MoodRepository persists mood entries.
type MoodRepository interface {
	Create(ctx context.Context, mood *models.Mood) error
	ListSince(ctx context.Context, userID int64, since time.Time) ([]models.Mood, error)
}

// PlanStore persists generated weekly plans.
type PlanStore interface {
	Save(ctx context.Context, record *models.PlanRecord) error
	Latest(ctx context.Context, userID int64) (*models.PlanRecord, error)
}

// Transactor runs fn atomically. Repository calls made with the context
// passed to fn share the transaction.
type Transactor interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
