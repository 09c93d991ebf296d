package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/studyplanner/pkg/models"
)

// ReflectionRepository handles database operations for reflections
type ReflectionRepository struct {
	db *sqlx.DB
}

// NewReflectionRepository creates a new repository instance
func NewReflectionRepository(db *sqlx.DB) *ReflectionRepository {
	return &ReflectionRepository{db: db}
}

// Create inserts a reflection and fills its ID
func (r *ReflectionRepository) Create(ctx context.Context, reflection *models.Reflection) error {
	query := r.db.Rebind(`
		INSERT INTO reflections (user_id, subject_id, reason_idx, reason_text, date)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id`)
	err := conn(ctx, r.db).QueryRowxContext(ctx, query,
		reflection.UserID,
		reflection.SubjectID,
		reflection.ReasonIdx,
		reflection.ReasonText,
		reflection.Date.UTC(),
	).Scan(&reflection.ID)
	if err != nil {
		return fmt.Errorf("failed to create reflection: %w", err)
	}
	return nil
}

// ListSince returns the reflections of a user from the given time on, newest first
func (r *ReflectionRepository) ListSince(ctx context.Context, userID int64, since time.Time) ([]models.Reflection, error) {
	reflections := []models.Reflection{}
	query := r.db.Rebind("SELECT id, user_id, subject_id, reason_idx, reason_text, date FROM reflections WHERE user_id = ? AND date >= ? ORDER BY date DESC, id DESC")
	if err := conn(ctx, r.db).SelectContext(ctx, &reflections, query, userID, since.UTC()); err != nil {
		return nil, fmt.Errorf("failed to list reflections: %w", err)
	}
	return reflections, nil
}

// MoodRepository handles database operations for study moods
type MoodRepository struct {
	db *sqlx.DB
}

// NewMoodRepository creates a new repository instance
func NewMoodRepository(db *sqlx.DB) *MoodRepository {
	return &MoodRepository{db: db}
}

// Create inserts a mood entry and fills its ID
func (r *MoodRepository) Create(ctx context.Context, mood *models.Mood) error {
	query := r.db.Rebind(`
		INSERT INTO study_moods (user_id, mood, time, duration_minutes, effectiveness, session_id)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id`)
	err := conn(ctx, r.db).QueryRowxContext(ctx, query,
		mood.UserID,
		mood.Mood,
		mood.Time.UTC(),
		mood.DurationMinutes,
		mood.Effectiveness,
		mood.SessionID,
	).Scan(&mood.ID)
	if err != nil {
		return fmt.Errorf("failed to create mood: %w", err)
	}
	return nil
}

// ListSince returns the moods of a user from the given time on, newest first
func (r *MoodRepository) ListSince(ctx context.Context, userID int64, since time.Time) ([]models.Mood, error) {
	moods := []models.Mood{}
	query := r.db.Rebind("SELECT id, user_id, mood, time, duration_minutes, effectiveness, session_id FROM study_moods WHERE user_id = ? AND time >= ? ORDER BY time DESC, id DESC")
	if err := conn(ctx, r.db).SelectContext(ctx, &moods, query, userID, since.UTC()); err != nil {
		return nil, fmt.Errorf("failed to list moods: %w", err)
	}
	return moods, nil
}
