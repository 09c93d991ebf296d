package models

import "time"

// StudyMode switches the student between everyday and exam preparation
type StudyMode string

const (
	ModeNormal StudyMode = "normal"
	ModeExam   StudyMode = "exam"
)

// Valid reports whether m is a known study mode
func (m StudyMode) Valid() bool {
	return m == ModeNormal || m == ModeExam
}

// XPPerLevel is the experience needed to climb one level
const XPPerLevel = 100

// Experience rewards for study activity
const (
	XPSubjectAdded     = 10
	XPChapterCompleted = 5
	XPPomodoro         = 25
)

// Badge identifiers awarded by the service
const (
	BadgeLevelUp         = "level_up"
	BadgeStreak7         = "streak_7"
	BadgeSubjectComplete = "subject_complete"
)

// Gamification tracks a user's experience, level, streak and badges
type Gamification struct {
	UserID              int64      `json:"-" db:"user_id"`
	XP                  int        `json:"xp" db:"xp"`
	Level               int        `json:"level" db:"level"`
	Streak              int        `json:"streak" db:"streak"`
	TotalMinutesStudied int        `json:"total_minutes_studied" db:"total_minutes_studied"`
	LastStudyDate       *time.Time `json:"last_study_date" db:"last_study_date"`
	Badges              []string   `json:"badges_earned" db:"-"`
	Mode                StudyMode  `json:"current_mode" db:"current_mode"`
	UpdatedAt           time.Time  `json:"-" db:"updated_at"`
}

// LevelForXP returns the level reached with the given experience
func LevelForXP(xp int) int {
	return xp/XPPerLevel + 1
}

// HasBadge reports whether the badge was already earned
func (g Gamification) HasBadge(id string) bool {
	for _, b := range g.Badges {
		if b == id {
			return true
		}
	}
	return false
}

// AddBadge appends the badge unless it was already earned. It reports whether
// the badge is new.
func (g *Gamification) AddBadge(id string) bool {
	if g.HasBadge(id) {
		return false
	}
	g.Badges = append(g.Badges, id)
	return true
}
