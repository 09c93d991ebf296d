package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/example/studyplanner/pkg/models"
)

type planRow struct {
	ID                string    `db:"id"`
	UserID            int64     `db:"user_id"`
	PlanData          string    `db:"plan_data"`
	GeneratedAt       time.Time `db:"generated_at"`
	SubjectCount      int       `db:"subject_count"`
	OptimizationNotes string    `db:"optimization_notes"`
}

// PlanRepository stores generated weekly plans
type PlanRepository struct {
	db *sqlx.DB
}

// NewPlanRepository creates a new repository instance
func NewPlanRepository(db *sqlx.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

// Save stores a generated plan. Records without an ID get a fresh one.
func (r *PlanRepository) Save(ctx context.Context, record *models.PlanRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	data, err := json.Marshal(record.Plan)
	if err != nil {
		return fmt.Errorf("failed to marshal plan: %w", err)
	}

	query := r.db.Rebind(`
		INSERT INTO weekly_plans (id, user_id, plan_data, generated_at, subject_count, optimization_notes)
		VALUES (?, ?, ?, ?, ?, ?)`)
	_, err = conn(ctx, r.db).ExecContext(ctx, query,
		record.ID.String(),
		record.UserID,
		string(data),
		record.GeneratedAt.UTC(),
		record.SubjectCount,
		record.OptimizationNotes,
	)
	if err != nil {
		return fmt.Errorf("failed to save plan: %w", err)
	}
	return nil
}

// Latest returns the most recently generated plan of a user
func (r *PlanRepository) Latest(ctx context.Context, userID int64) (*models.PlanRecord, error) {
	var row planRow
	query := r.db.Rebind(`
		SELECT id, user_id, plan_data, generated_at, subject_count, optimization_notes
		FROM weekly_plans WHERE user_id = ?
		ORDER BY generated_at DESC LIMIT 1`)
	if err := conn(ctx, r.db).GetContext(ctx, &row, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrPlanNotFound
		}
		return nil, fmt.Errorf("failed to get latest plan: %w", err)
	}

	id, err := uuid.Parse(row.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse plan id: %w", err)
	}
	record := &models.PlanRecord{
		ID:                id,
		UserID:            row.UserID,
		GeneratedAt:       row.GeneratedAt,
		SubjectCount:      row.SubjectCount,
		OptimizationNotes: row.OptimizationNotes,
	}
	if err := json.Unmarshal([]byte(row.PlanData), &record.Plan); err != nil {
		return nil, fmt.Errorf("failed to parse plan: %w", err)
	}
	return record, nil
}
