package models

import (
	"math"
	"time"
)

// Difficulty is how hard a subject feels to the student
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Weight returns the planning weight of the difficulty. Unknown values weigh like medium.
func (d Difficulty) Weight() int {
	switch d {
	case DifficultyEasy:
		return 1
	case DifficultyHard:
		return 3
	default:
		return 2
	}
}

// Valid reports whether d is one of the known difficulties
func (d Difficulty) Valid() bool {
	return d == DifficultyEasy || d == DifficultyMedium || d == DifficultyHard
}

// Priority is how important a subject is to the student
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities lists the known priorities from lowest to highest
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// Weight returns the planning weight of the priority. Unknown values weigh like medium.
func (p Priority) Weight() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityHigh:
		return 3
	default:
		return 2
	}
}

// Valid reports whether p is one of the known priorities
func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Subject is a trackable unit of study material with a chapter count and deadline
type Subject struct {
	ID                int64      `json:"id" db:"id"`
	UserID            int64      `json:"user_id" db:"user_id"`
	Name              string     `json:"name" db:"name"`
	Chapters          int        `json:"chapters" db:"chapters"`
	CompletedChapters int        `json:"completed_chapters" db:"completed_chapters"`
	Difficulty        Difficulty `json:"difficulty" db:"difficulty"`
	Priority          Priority   `json:"priority" db:"priority"`
	Deadline          time.Time  `json:"deadline" db:"deadline"`
	SessionsCompleted int        `json:"sessions_completed" db:"sessions_completed"`
	TotalTimeMinutes  int        `json:"total_time_minutes" db:"total_time_minutes"`
	IsDeleted         bool       `json:"-" db:"is_deleted"`
	DeletedAt         *time.Time `json:"-" db:"deleted_at"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" db:"updated_at"`
}

// ChaptersLeft returns the remaining chapters. It is negative when more chapters
// were completed than assigned.
func (s Subject) ChaptersLeft() int {
	return s.Chapters - s.CompletedChapters
}

// IsComplete reports whether no chapters are left
func (s Subject) IsComplete() bool {
	return s.ChaptersLeft() <= 0
}

// DaysLeft returns the whole days until the deadline, never below zero
func (s Subject) DaysLeft(now time.Time) int {
	days := WholeDays(s.Deadline.Sub(now))
	if days < 0 {
		return 0
	}
	return days
}

// CompletionPercentage returns the completed share of chapters rounded to one decimal
func (s Subject) CompletionPercentage() float64 {
	if s.Chapters <= 0 {
		return 0
	}
	return math.Round(float64(s.CompletedChapters)/float64(s.Chapters)*1000) / 10
}

// WholeDays floors a duration to whole days, rounding towards negative infinity
func WholeDays(d time.Duration) int {
	return int(math.Floor(d.Hours() / 24))
}
