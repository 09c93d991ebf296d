package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/studyplanner/pkg/models"
)

// gamificationRow mirrors the gamification table. Badges are stored as a JSON array.
type gamificationRow struct {
	models.Gamification
	BadgesJSON string `db:"badges"`
}

// GamificationRepository handles database operations for experience, streaks and badges
type GamificationRepository struct {
	db *sqlx.DB
}

// NewGamificationRepository creates a new repository instance
func NewGamificationRepository(db *sqlx.DB) *GamificationRepository {
	return &GamificationRepository{db: db}
}

// Ensure creates the starting row of a user if it does not exist yet
func (r *GamificationRepository) Ensure(ctx context.Context, userID int64) error {
	query := r.db.Rebind(`
		INSERT INTO gamification (user_id, xp, level, streak, total_minutes_studied, badges, current_mode, updated_at)
		VALUES (?, 0, 1, 0, 0, '[]', ?, ?)
		ON CONFLICT (user_id) DO NOTHING`)
	if _, err := conn(ctx, r.db).ExecContext(ctx, query, userID, models.ModeNormal, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to create gamification: %w", err)
	}
	return nil
}

// Get returns the gamification state of a user
func (r *GamificationRepository) Get(ctx context.Context, userID int64) (*models.Gamification, error) {
	var row gamificationRow
	query := r.db.Rebind(`
		SELECT user_id, xp, level, streak, total_minutes_studied, last_study_date, badges, current_mode, updated_at
		FROM gamification WHERE user_id = ?`)
	if err := conn(ctx, r.db).GetContext(ctx, &row, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get gamification: %w", err)
	}

	g := row.Gamification
	g.Badges = []string{}
	if row.BadgesJSON != "" {
		if err := json.Unmarshal([]byte(row.BadgesJSON), &g.Badges); err != nil {
			return nil, fmt.Errorf("failed to parse badges: %w", err)
		}
	}
	return &g, nil
}

// Save stores the whole gamification state of a user
func (r *GamificationRepository) Save(ctx context.Context, g *models.Gamification) error {
	badges := g.Badges
	if badges == nil {
		badges = []string{}
	}
	badgesJSON, err := json.Marshal(badges)
	if err != nil {
		return fmt.Errorf("failed to marshal badges: %w", err)
	}

	var lastStudy *time.Time
	if g.LastStudyDate != nil {
		t := g.LastStudyDate.UTC()
		lastStudy = &t
	}
	g.UpdatedAt = time.Now().UTC()

	query := r.db.Rebind(`
		UPDATE gamification SET
			xp = ?,
			level = ?,
			streak = ?,
			total_minutes_studied = ?,
			last_study_date = ?,
			badges = ?,
			current_mode = ?,
			updated_at = ?
		WHERE user_id = ?`)
	res, err := conn(ctx, r.db).ExecContext(ctx, query,
		g.XP,
		g.Level,
		g.Streak,
		g.TotalMinutesStudied,
		lastStudy,
		string(badgesJSON),
		g.Mode,
		g.UpdatedAt,
		g.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to save gamification: %w", err)
	}
	return expectAffected(res, models.ErrUserNotFound)
}
