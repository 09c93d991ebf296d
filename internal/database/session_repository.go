package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/studyplanner/pkg/models"
)

// SessionRepository handles database operations for study sessions
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new repository instance
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts a study session and fills its ID
func (r *SessionRepository) Create(ctx context.Context, session *models.StudySession) error {
	query := r.db.Rebind(`
		INSERT INTO study_sessions (user_id, subject_id, duration_minutes, pomodoro_count, date)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id`)
	err := conn(ctx, r.db).QueryRowxContext(ctx, query,
		session.UserID,
		session.SubjectID,
		session.DurationMinutes,
		session.PomodoroCount,
		session.Date.UTC(),
	).Scan(&session.ID)
	if err != nil {
		return fmt.Errorf("failed to create study session: %w", err)
	}
	return nil
}

// ListRecent returns the newest sessions of a user. A non-positive limit returns all of them.
func (r *SessionRepository) ListRecent(ctx context.Context, userID int64, limit int) ([]models.StudySession, error) {
	sessions := []models.StudySession{}
	query := "SELECT id, user_id, subject_id, duration_minutes, pomodoro_count, date FROM study_sessions WHERE user_id = ? ORDER BY date DESC, id DESC"
	args := []any{userID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	if err := conn(ctx, r.db).SelectContext(ctx, &sessions, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list study sessions: %w", err)
	}
	return sessions, nil
}

// ListSince returns the sessions of a user from the given time on, oldest first
func (r *SessionRepository) ListSince(ctx context.Context, userID int64, since time.Time) ([]models.StudySession, error) {
	sessions := []models.StudySession{}
	query := r.db.Rebind("SELECT id, user_id, subject_id, duration_minutes, pomodoro_count, date FROM study_sessions WHERE user_id = ? AND date >= ? ORDER BY date, id")
	if err := conn(ctx, r.db).SelectContext(ctx, &sessions, query, userID, since.UTC()); err != nil {
		return nil, fmt.Errorf("failed to list study sessions: %w", err)
	}
	return sessions, nil
}
