package bot

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/example/studyplanner/internal/usecase"
	"github.com/example/studyplanner/pkg/models"
)

func formatEntry(e models.PlanEntry) string {
	return fmt.Sprintf("• %s: %d ch, %d min (%s, %s)",
		e.SubjectName, e.ChaptersAssigned, e.RecommendedDurationMinutes, e.Difficulty, e.Priority)
}

// formatPlan renders a weekly plan day by day, Monday first
func formatPlan(record *models.PlanRecord) string {
	var text strings.Builder
	fmt.Fprintf(&text, "🗓 Weekly plan: %d subjects, %d min in total\n",
		record.SubjectCount, record.Plan.TotalMinutes())

	for _, day := range record.Plan.Days {
		fmt.Fprintf(&text, "\n%s\n", day.Day)
		if len(day.Entries) == 0 {
			if day.Day == time.Sunday {
				text.WriteString("  free for overflow\n")
			} else {
				text.WriteString("  free\n")
			}
			continue
		}
		for _, e := range day.Entries {
			text.WriteString(formatEntry(e))
			text.WriteString("\n")
		}
	}

	if record.OptimizationNotes != "" {
		fmt.Fprintf(&text, "\n💡 %s", record.OptimizationNotes)
	}
	return text.String()
}

// formatDay renders the entries of one day
func formatDay(day time.Weekday, entries []models.PlanEntry) string {
	if len(entries) == 0 {
		return fmt.Sprintf("📌 Nothing planned for %s. Enjoy the break!", day)
	}
	minutes := lo.SumBy(entries, func(e models.PlanEntry) int { return e.RecommendedDurationMinutes })

	var text strings.Builder
	fmt.Fprintf(&text, "📌 %s: %d min of study\n\n", day, minutes)
	for _, e := range entries {
		text.WriteString(formatEntry(e))
		text.WriteString("\n")
	}
	return text.String()
}

// formatSubjects renders the subject list with progress and days left
func formatSubjects(subjects []models.Subject, now time.Time) string {
	if len(subjects) == 0 {
		return "You have no subjects yet. Add one with\n/add name | chapters | difficulty | priority | YYYY-MM-DD"
	}
	var text strings.Builder
	text.WriteString("📚 Your subjects:\n\n")
	for _, s := range subjects {
		fmt.Fprintf(&text, "#%d %s\n   %d/%d chapters (%.1f%%), %s, %s, %d days left\n",
			s.ID, s.Name, s.CompletedChapters, s.Chapters, s.CompletionPercentage(),
			s.Difficulty, s.Priority, s.DaysLeft(now))
	}
	return text.String()
}

// formatStats renders the gamification state
func formatStats(g *models.Gamification) string {
	var text strings.Builder
	fmt.Fprintf(&text, "🏆 Level %d, %d XP\n", g.Level, g.XP)
	fmt.Fprintf(&text, "🔥 Streak: %d days\n", g.Streak)
	fmt.Fprintf(&text, "⏱ Studied: %d min\n", g.TotalMinutesStudied)
	fmt.Fprintf(&text, "🎯 Mode: %s\n", g.Mode)
	if len(g.Badges) > 0 {
		fmt.Fprintf(&text, "🎖 Badges: %s\n", strings.Join(g.Badges, ", "))
	}
	return text.String()
}

// formatSession renders a recorded session and what it earned
func formatSession(res *usecase.SessionResult) string {
	var text strings.Builder
	fmt.Fprintf(&text, "✅ Logged %d min (%d pomodoro)\n", res.Session.DurationMinutes, res.Session.PomodoroCount)
	fmt.Fprintf(&text, "+%d XP, level %d", res.Rewards.XP.XPEarned, res.Rewards.XP.Level)
	if res.Rewards.XP.LeveledUp {
		text.WriteString(" 🎉 level up!")
	}
	fmt.Fprintf(&text, "\n🔥 Streak: %d days", res.Rewards.Streak.Streak)
	if len(res.Rewards.NewBadges) > 0 {
		fmt.Fprintf(&text, "\n🎖 New badges: %s", strings.Join(res.Rewards.NewBadges, ", "))
	}
	return text.String()
}

// formatSummary renders overall progress and what gets in the way
func formatSummary(s *models.AnalyticsSummary, f *models.FailureAnalytics) string {
	var text strings.Builder
	text.WriteString("📊 Summary\n\n")
	fmt.Fprintf(&text, "Subjects: %d\n", s.TotalSubjects)
	fmt.Fprintf(&text, "Chapters: %d/%d (%.1f%%)\n", s.CompletedChapters, s.TotalChapters, s.OverallCompletionPercentage)
	fmt.Fprintf(&text, "Study time: %d min in %d sessions (avg %.1f)\n", s.TotalStudyMinutes, s.TotalSessions, s.AvgSessionMinutes)
	fmt.Fprintf(&text, "Reflections: %d\n", s.TotalReflections)

	text.WriteString("\nBy priority:\n")
	for i := len(models.Priorities) - 1; i >= 0; i-- {
		p := models.Priorities[i]
		stats := s.PriorityBreakdown[p]
		fmt.Fprintf(&text, "• %s: %d subjects, %.1f%% done\n", p, stats.Count, stats.AvgCompletion)
	}

	if f == nil {
		return text.String()
	}
	if len(f.FailureReasons) > 0 {
		text.WriteString("\nWhat got in the way:\n")
		for _, r := range f.FailureReasons {
			fmt.Fprintf(&text, "• %s ×%d\n", r.Reason, r.Count)
		}
	}
	if len(f.BestStudyHours) > 0 {
		best := f.BestStudyHours[0]
		fmt.Fprintf(&text, "\n⏰ You study best around %02d:00 (%.2f/5)\n", best.Hour, best.Effectiveness)
	}
	return text.String()
}

// formatHeatmap renders the minutes studied per day, oldest first
func formatHeatmap(h models.Heatmap) string {
	if len(h) == 0 {
		return "No study sessions yet. Log one with /session."
	}
	dates := lo.Keys(h)
	sort.Strings(dates)

	var text strings.Builder
	text.WriteString("🗺 Study time per day:\n\n")
	for _, date := range dates {
		minutes := lo.Sum(lo.Values(h[date]))
		fmt.Fprintf(&text, "%s  %4d min  %s\n", date, minutes, strings.Repeat("▇", min(minutes/15+1, 20)))
	}
	return text.String()
}

// formatReasons lists the reflection reasons with their numbers
func formatReasons() string {
	var text strings.Builder
	text.WriteString("Why did you miss it? Reply with /reflect <number> [subject_id] [note]\n\n")
	for idx := 0; idx < len(models.ReflectionReasons); idx++ {
		fmt.Fprintf(&text, "%d. %s\n", idx, models.ReasonName(idx))
	}
	return text.String()
}
