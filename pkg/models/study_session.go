package models

import "time"

// Defaults applied to a study session when the caller leaves them out
const (
	DefaultSessionMinutes = 25
	DefaultPomodoroCount  = 1
)

// StudySession is one logged block of study time
type StudySession struct {
	ID              int64     `json:"id" db:"id"`
	UserID          int64     `json:"-" db:"user_id"`
	SubjectID       *int64    `json:"subject_id" db:"subject_id"`
	DurationMinutes int       `json:"duration_minutes" db:"duration_minutes"`
	PomodoroCount   int       `json:"pomodoro_count" db:"pomodoro_count"`
	Date            time.Time `json:"date" db:"date"`
}
