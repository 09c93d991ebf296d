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

const subjectColumns = `id, user_id, name, chapters, completed_chapters, difficulty, priority, deadline,
	sessions_completed, total_time_minutes, is_deleted, deleted_at, created_at, updated_at`

// SubjectRepository handles database operations for subjects
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository creates a new repository instance
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// Create inserts a new subject and fills its ID and timestamps
func (r *SubjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	now := time.Now().UTC()
	subject.CreatedAt = now
	subject.UpdatedAt = now

	query := r.db.Rebind(`
		INSERT INTO subjects (
			user_id, name, chapters, completed_chapters, difficulty, priority, deadline,
			sessions_completed, total_time_minutes, is_deleted, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)

	err := conn(ctx, r.db).QueryRowxContext(ctx, query,
		subject.UserID,
		subject.Name,
		subject.Chapters,
		subject.CompletedChapters,
		subject.Difficulty,
		subject.Priority,
		subject.Deadline.UTC(),
		subject.SessionsCompleted,
		subject.TotalTimeMinutes,
		false,
		subject.CreatedAt,
		subject.UpdatedAt,
	).Scan(&subject.ID)
	if err != nil {
		return fmt.Errorf("failed to create subject: %w", err)
	}
	return nil
}

// GetByID returns an active subject of the user
func (r *SubjectRepository) GetByID(ctx context.Context, userID, id int64) (*models.Subject, error) {
	var subject models.Subject
	query := r.db.Rebind("SELECT " + subjectColumns + " FROM subjects WHERE id = ? AND user_id = ? AND is_deleted = ?")
	if err := conn(ctx, r.db).GetContext(ctx, &subject, query, id, userID, false); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrSubjectNotFound
		}
		return nil, fmt.Errorf("failed to get subject: %w", err)
	}
	return &subject, nil
}

// LoadActiveSubjects returns the user's subjects that are not soft deleted, in
// creation order
func (r *SubjectRepository) LoadActiveSubjects(ctx context.Context, userID int64) ([]models.Subject, error) {
	subjects := []models.Subject{}
	query := r.db.Rebind("SELECT " + subjectColumns + " FROM subjects WHERE user_id = ? AND is_deleted = ? ORDER BY id")
	if err := conn(ctx, r.db).SelectContext(ctx, &subjects, query, userID, false); err != nil {
		return nil, fmt.Errorf("failed to load subjects: %w", err)
	}
	return subjects, nil
}

// Update stores the mutable fields of an active subject
func (r *SubjectRepository) Update(ctx context.Context, subject *models.Subject) error {
	subject.UpdatedAt = time.Now().UTC()
	query := r.db.Rebind(`
		UPDATE subjects SET
			name = ?,
			chapters = ?,
			completed_chapters = ?,
			difficulty = ?,
			priority = ?,
			deadline = ?,
			sessions_completed = ?,
			total_time_minutes = ?,
			updated_at = ?
		WHERE id = ? AND user_id = ? AND is_deleted = ?`)

	res, err := conn(ctx, r.db).ExecContext(ctx, query,
		subject.Name,
		subject.Chapters,
		subject.CompletedChapters,
		subject.Difficulty,
		subject.Priority,
		subject.Deadline.UTC(),
		subject.SessionsCompleted,
		subject.TotalTimeMinutes,
		subject.UpdatedAt,
		subject.ID,
		subject.UserID,
		false,
	)
	if err != nil {
		return fmt.Errorf("failed to update subject: %w", err)
	}
	return expectAffected(res, models.ErrSubjectNotFound)
}

// SoftDelete marks a subject as deleted. Deleted subjects disappear from
// listings and plans but their history is kept.
func (r *SubjectRepository) SoftDelete(ctx context.Context, userID, id int64, at time.Time) error {
	query := r.db.Rebind("UPDATE subjects SET is_deleted = ?, deleted_at = ?, updated_at = ? WHERE id = ? AND user_id = ? AND is_deleted = ?")
	res, err := conn(ctx, r.db).ExecContext(ctx, query, true, at.UTC(), at.UTC(), id, userID, false)
	if err != nil {
		return fmt.Errorf("failed to delete subject: %w", err)
	}
	return expectAffected(res, models.ErrSubjectNotFound)
}
