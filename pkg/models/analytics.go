package models

// PriorityStats summarises subjects of one priority
type PriorityStats struct {
	Count         int     `json:"count"`
	AvgCompletion float64 `json:"avg_completion"`
}

// AnalyticsSummary is the overall study summary of a user
type AnalyticsSummary struct {
	TotalSubjects               int                        `json:"total_subjects"`
	TotalChapters               int                        `json:"total_chapters"`
	CompletedChapters           int                        `json:"completed_chapters"`
	OverallCompletionPercentage float64                    `json:"overall_completion_percentage"`
	TotalStudyMinutes           int                        `json:"total_study_minutes"`
	TotalSessions               int                        `json:"total_sessions"`
	AvgSessionMinutes           float64                    `json:"avg_session_minutes"`
	TotalReflections            int                        `json:"total_reflections"`
	PriorityBreakdown           map[Priority]PriorityStats `json:"priority_breakdown"`
}

// Heatmap maps a date (YYYY-MM-DD) to an hour (HH) to studied minutes
type Heatmap map[string]map[string]int

// SkippedSubject counts how often a subject was skipped
type SkippedSubject struct {
	SubjectID int64 `json:"subject_id"`
	SkipCount int   `json:"skip_count"`
}

// ReasonCount counts reflections with the same reason
type ReasonCount struct {
	Reason string `json:"reason"`
	Count  int    `json:"count"`
}

// StudyHour rates one hour of the day by average mood effectiveness
type StudyHour struct {
	Hour          int     `json:"hour"`
	Effectiveness float64 `json:"effectiveness"`
	Sessions      int     `json:"sessions"`
}

// FailureAnalytics explains what keeps a user from studying
type FailureAnalytics struct {
	SkippedSubjects []SkippedSubject `json:"skipped_subjects"`
	FailureReasons  []ReasonCount    `json:"failure_reasons"`
	BestStudyHours  []StudyHour      `json:"best_study_hours"`
}
