// Package planner turns a user's active subjects into a weekly study plan.
package planner

import (
	"sort"
	"time"

	"github.com/example/studyplanner/pkg/models"
)

// MinutesPerChapter is the recommended study time for one chapter
const MinutesPerChapter = 30

// OptimizationNotes explains how generated plans are built
const OptimizationNotes = "Plan prioritizes urgent deadlines and high-difficulty subjects. Recommend studying Sunday for overflow."

// studyDays are the days that receive entries. Sunday is kept free for overflow.
var studyDays = models.PlanDays[:models.DaysPerWeek-1]

// ScoredSubject pairs a subject with its urgency score
type ScoredSubject struct {
	Subject models.Subject
	Score   float64
}

// Score computes the urgency of a subject at the given time.
// Deadlines that are overdue or less than a day away count as one day left.
func Score(subject models.Subject, now time.Time) float64 {
	daysLeft := models.WholeDays(subject.Deadline.Sub(now))
	if daysLeft < 1 {
		daysLeft = 1
	}
	urgency := float64(subject.ChaptersLeft()) / float64(daysLeft)
	return urgency * float64(subject.Difficulty.Weight()) * float64(subject.Priority.Weight())
}

// Rank scores subjects and orders them by descending score.
// Subjects with equal scores keep their input order.
func Rank(subjects []models.Subject, now time.Time) []ScoredSubject {
	scored := make([]ScoredSubject, len(subjects))
	for i, s := range subjects {
		scored[i] = ScoredSubject{Subject: s, Score: Score(s, now)}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// Generate distributes the remaining work of the subjects across a week.
//
// Subjects are walked in rank order and the rank picks the day (Monday to
// Saturday, wrapping around). A subject without chapters left gets no entry but
// still consumes its rank, so the following subject moves to the next day.
// Each entry commits to half of the remaining chapters, at least one.
func Generate(subjects []models.Subject, now time.Time) models.WeeklyPlan {
	plan := models.NewWeeklyPlan()

	for idx, scored := range Rank(subjects, now) {
		subject := scored.Subject
		chaptersLeft := subject.ChaptersLeft()
		if chaptersLeft <= 0 {
			continue
		}

		chapters := chaptersLeft / 2
		if chapters < 1 {
			chapters = 1
		}

		plan.Append(studyDays[idx%len(studyDays)], models.PlanEntry{
			SubjectID:                  subject.ID,
			SubjectName:                subject.Name,
			ChaptersAssigned:           chapters,
			Difficulty:                 subject.Difficulty,
			Priority:                   subject.Priority,
			RecommendedDurationMinutes: chapters * MinutesPerChapter,
		})
	}

	return plan
}
