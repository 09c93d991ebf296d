package database

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// tables lists the schema in dependency order. {{id}} is replaced with the
// driver specific auto increment primary key.
var tables = []struct {
	name string
	ddl  string
}{
	{"users", `
		CREATE TABLE IF NOT EXISTS users (
			id {{id}},
			telegram_id BIGINT UNIQUE NOT NULL,
			username TEXT NOT NULL DEFAULT '',
			first_name TEXT NOT NULL DEFAULT '',
			last_name TEXT NOT NULL DEFAULT '',
			notification_enabled BOOLEAN NOT NULL DEFAULT TRUE,
			notification_hour INTEGER NOT NULL DEFAULT 9,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`},
	{"subjects", `
		CREATE TABLE IF NOT EXISTS subjects (
			id {{id}},
			user_id BIGINT NOT NULL REFERENCES users(id),
			name TEXT NOT NULL,
			chapters INTEGER NOT NULL,
			completed_chapters INTEGER NOT NULL DEFAULT 0,
			difficulty TEXT NOT NULL,
			priority TEXT NOT NULL,
			deadline TIMESTAMP NOT NULL,
			sessions_completed INTEGER NOT NULL DEFAULT 0,
			total_time_minutes INTEGER NOT NULL DEFAULT 0,
			is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
			deleted_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`},
	{"gamification", `
		CREATE TABLE IF NOT EXISTS gamification (
			user_id BIGINT PRIMARY KEY REFERENCES users(id),
			xp INTEGER NOT NULL DEFAULT 0,
			level INTEGER NOT NULL DEFAULT 1,
			streak INTEGER NOT NULL DEFAULT 0,
			total_minutes_studied INTEGER NOT NULL DEFAULT 0,
			last_study_date TIMESTAMP,
			badges TEXT NOT NULL DEFAULT '[]',
			current_mode TEXT NOT NULL DEFAULT 'normal',
			updated_at TIMESTAMP NOT NULL
		)`},
	{"study_sessions", `
		CREATE TABLE IF NOT EXISTS study_sessions (
			id {{id}},
			user_id BIGINT NOT NULL REFERENCES users(id),
			subject_id BIGINT REFERENCES subjects(id),
			duration_minutes INTEGER NOT NULL,
			pomodoro_count INTEGER NOT NULL,
			date TIMESTAMP NOT NULL
		)`},
	{"reflections", `
		CREATE TABLE IF NOT EXISTS reflections (
			id {{id}},
			user_id BIGINT NOT NULL REFERENCES users(id),
			subject_id BIGINT REFERENCES subjects(id),
			reason_idx INTEGER NOT NULL,
			reason_text TEXT NOT NULL,
			date TIMESTAMP NOT NULL
		)`},
	{"study_moods", `
		CREATE TABLE IF NOT EXISTS study_moods (
			id {{id}},
			user_id BIGINT NOT NULL REFERENCES users(id),
			mood TEXT NOT NULL,
			time TIMESTAMP NOT NULL,
			duration_minutes INTEGER NOT NULL DEFAULT 0,
			effectiveness INTEGER NOT NULL,
			session_id BIGINT REFERENCES study_sessions(id)
		)`},
	{"weekly_plans", `
		CREATE TABLE IF NOT EXISTS weekly_plans (
			id TEXT PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id),
			plan_data TEXT NOT NULL,
			generated_at TIMESTAMP NOT NULL,
			subject_count INTEGER NOT NULL,
			optimization_notes TEXT NOT NULL DEFAULT ''
		)`},
}

var indexes = []string{
	"CREATE INDEX IF NOT EXISTS idx_subjects_user ON subjects(user_id, is_deleted)",
	"CREATE INDEX IF NOT EXISTS idx_sessions_user_date ON study_sessions(user_id, date)",
	"CREATE INDEX IF NOT EXISTS idx_reflections_user_date ON reflections(user_id, date)",
	"CREATE INDEX IF NOT EXISTS idx_moods_user_time ON study_moods(user_id, time)",
	"CREATE INDEX IF NOT EXISTS idx_plans_user_generated ON weekly_plans(user_id, generated_at)",
}

// InitSchema creates necessary tables if they don't exist
func InitSchema(db *sqlx.DB) error {
	idColumn := "BIGSERIAL PRIMARY KEY"
	if isSQLite(db) {
		idColumn = "INTEGER PRIMARY KEY AUTOINCREMENT"
	}

	for _, t := range tables {
		if _, err := db.Exec(strings.ReplaceAll(t.ddl, "{{id}}", idColumn)); err != nil {
			return fmt.Errorf("failed to create %s table: %w", t.name, err)
		}
	}
	for _, stmt := range indexes {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}
