package usecase

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/example/studyplanner/pkg/models"
)

const (
	// DefaultFailureWindowDays is the history analysed when no window is requested
	DefaultFailureWindowDays = 30
	maxSkippedSubjects       = 10
)

// AnalyticsUsecase summarises study history.
type AnalyticsUsecase interface {
	Summary(ctx context.Context, userID int64) (*models.AnalyticsSummary, error)
	Heatmap(ctx context.Context, userID int64) (models.Heatmap, error)
	FailureAnalytics(ctx context.Context, userID int64, days int) (*models.FailureAnalytics, error)
}

// NewAnalyticsUsecase wires the repositories with default behaviour.
func NewAnalyticsUsecase(subjects SubjectLoader, sessions SessionRepository, reflections ReflectionRepository, moods MoodRepository) AnalyticsUsecase {
	return &analyticsUsecase{
		subjects:    subjects,
		sessions:    sessions,
		reflections: reflections,
		moods:       moods,
		clock:       time.Now,
	}
}

type analyticsUsecase struct {
	subjects    SubjectLoader
	sessions    SessionRepository
	reflections ReflectionRepository
	moods       MoodRepository
	clock       func() time.Time
}

func (u *analyticsUsecase) Summary(ctx context.Context, userID int64) (*models.AnalyticsSummary, error) {
	subjects, err := u.subjects.LoadActiveSubjects(ctx, userID)
	if err != nil {
		return nil, err
	}
	sessions, err := u.sessions.ListSince(ctx, userID, time.Time{})
	if err != nil {
		return nil, err
	}
	reflections, err := u.reflections.ListSince(ctx, userID, time.Time{})
	if err != nil {
		return nil, err
	}

	chapters := lo.SumBy(subjects, func(s models.Subject) int { return s.Chapters })
	completed := lo.SumBy(subjects, func(s models.Subject) int { return s.CompletedChapters })
	minutes := lo.SumBy(sessions, func(s models.StudySession) int { return s.DurationMinutes })

	summary := &models.AnalyticsSummary{
		TotalSubjects:               len(subjects),
		TotalChapters:               chapters,
		CompletedChapters:           completed,
		OverallCompletionPercentage: percentage(completed, chapters),
		TotalStudyMinutes:           minutes,
		TotalSessions:               len(sessions),
		TotalReflections:            len(reflections),
		PriorityBreakdown:           make(map[models.Priority]models.PriorityStats, len(models.Priorities)),
	}
	if len(sessions) > 0 {
		summary.AvgSessionMinutes = round(float64(minutes)/float64(len(sessions)), 1)
	}

	byPriority := lo.GroupBy(subjects, func(s models.Subject) models.Priority { return s.Priority })
	for _, p := range models.Priorities {
		group := byPriority[p]
		summary.PriorityBreakdown[p] = models.PriorityStats{
			Count: len(group),
			AvgCompletion: percentage(
				lo.SumBy(group, func(s models.Subject) int { return s.CompletedChapters }),
				lo.SumBy(group, func(s models.Subject) int { return s.Chapters }),
			),
		}
	}
	return summary, nil
}

// Heatmap totals studied minutes per UTC date and hour.
func (u *analyticsUsecase) Heatmap(ctx context.Context, userID int64) (models.Heatmap, error) {
	sessions, err := u.sessions.ListSince(ctx, userID, time.Time{})
	if err != nil {
		return nil, err
	}
	heatmap := models.Heatmap{}
	for _, s := range sessions {
		at := s.Date.UTC()
		date, hour := at.Format("2006-01-02"), at.Format("15")
		if heatmap[date] == nil {
			heatmap[date] = map[string]int{}
		}
		heatmap[date][hour] += s.DurationMinutes
	}
	return heatmap, nil
}

// FailureAnalytics looks at the last days for skipped subjects, the most
// common reasons for missed work and the hours with the best study moods.
func (u *analyticsUsecase) FailureAnalytics(ctx context.Context, userID int64, days int) (*models.FailureAnalytics, error) {
	if days <= 0 {
		days = DefaultFailureWindowDays
	}
	since := u.clock().AddDate(0, 0, -days)

	reflections, err := u.reflections.ListSince(ctx, userID, since)
	if err != nil {
		return nil, err
	}
	moods, err := u.moods.ListSince(ctx, userID, since)
	if err != nil {
		return nil, err
	}

	return &models.FailureAnalytics{
		SkippedSubjects: skippedSubjects(reflections),
		FailureReasons:  failureReasons(reflections),
		BestStudyHours:  bestStudyHours(moods),
	}, nil
}

func skippedSubjects(reflections []models.Reflection) []models.SkippedSubject {
	skipped := lo.Filter(reflections, func(r models.Reflection, _ int) bool {
		return r.ReasonIdx == models.ReasonSkipped && r.SubjectID != nil
	})
	bySubject := lo.GroupBy(skipped, func(r models.Reflection) int64 { return *r.SubjectID })

	result := lo.MapToSlice(bySubject, func(id int64, rs []models.Reflection) models.SkippedSubject {
		return models.SkippedSubject{SubjectID: id, SkipCount: len(rs)}
	})
	sort.Slice(result, func(i, j int) bool {
		if result[i].SkipCount != result[j].SkipCount {
			return result[i].SkipCount > result[j].SkipCount
		}
		return result[i].SubjectID < result[j].SubjectID
	})
	if len(result) > maxSkippedSubjects {
		result = result[:maxSkippedSubjects]
	}
	return result
}

func failureReasons(reflections []models.Reflection) []models.ReasonCount {
	byReason := lo.GroupBy(reflections, func(r models.Reflection) int { return r.ReasonIdx })
	reasons := lo.Keys(byReason)
	sort.Slice(reasons, func(i, j int) bool {
		ci, cj := len(byReason[reasons[i]]), len(byReason[reasons[j]])
		if ci != cj {
			return ci > cj
		}
		return reasons[i] < reasons[j]
	})
	return lo.Map(reasons, func(idx int, _ int) models.ReasonCount {
		return models.ReasonCount{Reason: models.ReasonName(idx), Count: len(byReason[idx])}
	})
}

func bestStudyHours(moods []models.Mood) []models.StudyHour {
	byHour := lo.GroupBy(moods, func(m models.Mood) int { return m.Time.UTC().Hour() })
	hours := lo.MapToSlice(byHour, func(hour int, ms []models.Mood) models.StudyHour {
		total := lo.SumBy(ms, func(m models.Mood) int { return m.Effectiveness })
		return models.StudyHour{
			Hour:          hour,
			Effectiveness: round(float64(total)/float64(len(ms)), 2),
			Sessions:      len(ms),
		}
	})
	sort.Slice(hours, func(i, j int) bool {
		if hours[i].Effectiveness != hours[j].Effectiveness {
			return hours[i].Effectiveness > hours[j].Effectiveness
		}
		return hours[i].Hour < hours[j].Hour
	})
	return hours
}

// percentage returns part of whole in percent with one decimal, 0 for an empty whole
func percentage(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	return round(float64(part)/float64(whole)*100, 1)
}

func round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
