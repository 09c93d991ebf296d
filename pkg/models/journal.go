package models

import "time"

// ReasonSkipped is the reflection reason recorded when a planned subject was skipped
const ReasonSkipped = 4

// ReflectionReasons names the reasons a student can give for missing a task
var ReflectionReasons = map[int]string{
	0: "Too Tired",
	1: "Lost Motivation",
	2: "Distracted",
	3: "Difficult Topic",
	4: "Skipped",
	5: "Not Covered",
}

// ReasonName returns the display name of a reflection reason
func ReasonName(idx int) string {
	if name, ok := ReflectionReasons[idx]; ok {
		return name
	}
	return "Unknown"
}

// Reflection records why a planned study task was missed
type Reflection struct {
	ID         int64     `json:"id" db:"id"`
	UserID     int64     `json:"-" db:"user_id"`
	SubjectID  *int64    `json:"subject_id" db:"subject_id"`
	ReasonIdx  int       `json:"reason_idx" db:"reason_idx"`
	ReasonText string    `json:"reason_text" db:"reason_text"`
	Date       time.Time `json:"date" db:"date"`
}

// MoodKind is how the student felt while studying
type MoodKind string

const (
	MoodTired     MoodKind = "tired"
	MoodNormal    MoodKind = "normal"
	MoodEnergetic MoodKind = "energetic"
)

// Valid reports whether m is a known mood
func (m MoodKind) Valid() bool {
	return m == MoodTired || m == MoodNormal || m == MoodEnergetic
}

// Effectiveness bounds for mood ratings
const (
	MinEffectiveness     = 1
	MaxEffectiveness     = 5
	DefaultEffectiveness = 3
)

// Mood is a study mood entry with a self-rated effectiveness
type Mood struct {
	ID              int64     `json:"id" db:"id"`
	UserID          int64     `json:"-" db:"user_id"`
	Mood            MoodKind  `json:"mood" db:"mood"`
	Time            time.Time `json:"time" db:"time"`
	DurationMinutes int       `json:"duration_minutes" db:"duration_minutes"`
	Effectiveness   int       `json:"effectiveness" db:"effectiveness"`
	SessionID       *int64    `json:"session_id,omitempty" db:"session_id"`
}
