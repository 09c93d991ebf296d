package database

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/studyplanner/internal/config"
	"github.com/example/studyplanner/pkg/models"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := Open(config.DatabaseConfig{Driver: "sqlite3", DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestUser(t *testing.T, db *sqlx.DB, telegramID int64) *models.User {
	t.Helper()
	user := &models.User{TelegramID: telegramID, Username: "learner", FirstName: "Ada", NotificationEnabled: true, NotificationHour: 9}
	require.NoError(t, NewUserRepository(db).Upsert(context.Background(), user))
	require.NoError(t, NewGamificationRepository(db).Ensure(context.Background(), user.ID))
	return user
}

func TestOpenIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	assert.NoError(t, InitSchema(db))
}

func TestUserRepositoryUpsert(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewUserRepository(db)

	user := &models.User{TelegramID: 42, Username: "first", NotificationEnabled: true, NotificationHour: 9}
	require.NoError(t, repo.Upsert(ctx, user))
	require.NotZero(t, user.ID)
	require.NoError(t, repo.UpdateNotifications(ctx, user.ID, false, 20))

	again := &models.User{TelegramID: 42, Username: "renamed", NotificationEnabled: true, NotificationHour: 9}
	require.NoError(t, repo.Upsert(ctx, again))
	assert.Equal(t, user.ID, again.ID)
	assert.Equal(t, "renamed", again.Username)
	assert.False(t, again.NotificationEnabled, "settings survive a profile refresh")
	assert.Equal(t, 20, again.NotificationHour)

	got, err := repo.GetByTelegramID(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Username)

	_, err = repo.GetByTelegramID(ctx, 7)
	assert.ErrorIs(t, err, models.ErrUserNotFound)
	assert.ErrorIs(t, repo.UpdateNotifications(ctx, 999, true, 8), models.ErrUserNotFound)
}

func TestUserRepositoryNotificationQueries(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewUserRepository(db)

	morning := newTestUser(t, db, 1)
	evening := newTestUser(t, db, 2)
	muted := newTestUser(t, db, 3)
	require.NoError(t, repo.UpdateNotifications(ctx, evening.ID, true, 19))
	require.NoError(t, repo.UpdateNotifications(ctx, muted.ID, false, 9))

	users, err := repo.ListForNotification(ctx, 9)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, morning.ID, users[0].ID)

	enabled, err := repo.ListNotificationEnabled(ctx)
	require.NoError(t, err)
	assert.Len(t, enabled, 2)
}

func TestSubjectRepositoryLifecycle(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewSubjectRepository(db)
	user := newTestUser(t, db, 1)
	deadline := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)

	math := &models.Subject{UserID: user.ID, Name: "Math", Chapters: 10, Difficulty: models.DifficultyHard, Priority: models.PriorityHigh, Deadline: deadline}
	bio := &models.Subject{UserID: user.ID, Name: "Bio", Chapters: 4, Difficulty: models.DifficultyEasy, Priority: models.PriorityLow, Deadline: deadline}
	require.NoError(t, repo.Create(ctx, math))
	require.NoError(t, repo.Create(ctx, bio))
	require.NotZero(t, math.ID)

	math.CompletedChapters = 3
	math.SessionsCompleted = 1
	require.NoError(t, repo.Update(ctx, math))

	got, err := repo.GetByID(ctx, user.ID, math.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.CompletedChapters)
	assert.Equal(t, models.DifficultyHard, got.Difficulty)
	assert.True(t, got.Deadline.Equal(deadline))

	require.NoError(t, repo.SoftDelete(ctx, user.ID, bio.ID, time.Now()))
	assert.ErrorIs(t, repo.SoftDelete(ctx, user.ID, bio.ID, time.Now()), models.ErrSubjectNotFound)

	active, err := repo.LoadActiveSubjects(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Math", active[0].Name)

	_, err = repo.GetByID(ctx, user.ID, bio.ID)
	assert.ErrorIs(t, err, models.ErrSubjectNotFound)

	other := newTestUser(t, db, 2)
	_, err = repo.GetByID(ctx, other.ID, math.ID)
	assert.ErrorIs(t, err, models.ErrSubjectNotFound, "subjects are scoped to their owner")
}

func TestGamificationRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGamificationRepository(db)
	user := newTestUser(t, db, 1)

	g, err := repo.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, g.Level)
	assert.Equal(t, models.ModeNormal, g.Mode)
	assert.Empty(t, g.Badges)
	assert.Nil(t, g.LastStudyDate)

	studied := time.Date(2025, 3, 3, 18, 0, 0, 0, time.UTC)
	g.XP = 130
	g.Level = 2
	g.Streak = 3
	g.LastStudyDate = &studied
	g.Mode = models.ModeExam
	g.AddBadge(models.BadgeLevelUp)
	require.NoError(t, repo.Save(ctx, g))

	require.NoError(t, repo.Ensure(ctx, user.ID), "ensure keeps existing state")
	got, err := repo.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 130, got.XP)
	assert.Equal(t, models.ModeExam, got.Mode)
	assert.Equal(t, []string{models.BadgeLevelUp}, got.Badges)
	require.NotNil(t, got.LastStudyDate)
	assert.True(t, got.LastStudyDate.Equal(studied))

	_, err = repo.Get(ctx, 999)
	assert.ErrorIs(t, err, models.ErrUserNotFound)
}

func TestSessionRepositoryOrdering(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewSessionRepository(db)
	user := newTestUser(t, db, 1)
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		s := &models.StudySession{UserID: user.ID, DurationMinutes: 25 * (i + 1), PomodoroCount: i + 1, Date: base.AddDate(0, 0, i)}
		require.NoError(t, repo.Create(ctx, s))
	}

	recent, err := repo.ListRecent(ctx, user.ID, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, 75, recent[0].DurationMinutes)
	assert.Nil(t, recent[0].SubjectID)

	since, err := repo.ListSince(ctx, user.ID, base.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, since, 2)
	assert.Equal(t, 50, since[0].DurationMinutes)
}

func TestJournalRepositories(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	user := newTestUser(t, db, 1)
	subject := &models.Subject{UserID: user.ID, Name: "Chem", Chapters: 5, Difficulty: models.DifficultyMedium, Priority: models.PriorityMedium, Deadline: time.Now().AddDate(0, 1, 0)}
	require.NoError(t, NewSubjectRepository(db).Create(ctx, subject))
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	reflections := NewReflectionRepository(db)
	require.NoError(t, reflections.Create(ctx, &models.Reflection{UserID: user.ID, SubjectID: &subject.ID, ReasonIdx: 4, ReasonText: "Skipped", Date: now.AddDate(0, 0, -10)}))
	require.NoError(t, reflections.Create(ctx, &models.Reflection{UserID: user.ID, ReasonIdx: 0, ReasonText: "Too Tired", Date: now}))

	list, err := reflections.ListSince(ctx, user.ID, now.AddDate(0, 0, -30))
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 0, list[0].ReasonIdx)
	require.NotNil(t, list[1].SubjectID)
	assert.Equal(t, subject.ID, *list[1].SubjectID)

	moods := NewMoodRepository(db)
	require.NoError(t, moods.Create(ctx, &models.Mood{UserID: user.ID, Mood: models.MoodEnergetic, Time: now, Effectiveness: 5}))
	require.NoError(t, moods.Create(ctx, &models.Mood{UserID: user.ID, Mood: models.MoodTired, Time: now.AddDate(0, 0, -8), Effectiveness: 2}))

	week, err := moods.ListSince(ctx, user.ID, now.AddDate(0, 0, -7))
	require.NoError(t, err)
	require.Len(t, week, 1)
	assert.Equal(t, models.MoodEnergetic, week[0].Mood)
}

func TestPlanRepositoryLatest(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewPlanRepository(db)
	user := newTestUser(t, db, 1)

	_, err := repo.Latest(ctx, user.ID)
	assert.ErrorIs(t, err, models.ErrPlanNotFound)

	older := &models.PlanRecord{UserID: user.ID, Plan: models.NewWeeklyPlan(), GeneratedAt: time.Date(2025, 3, 3, 7, 0, 0, 0, time.UTC)}
	require.NoError(t, repo.Save(ctx, older))
	assert.NotEqual(t, uuid.Nil, older.ID)

	plan := models.NewWeeklyPlan()
	plan.Append(time.Tuesday, models.PlanEntry{SubjectID: 1, SubjectName: "Math", ChaptersAssigned: 2, Difficulty: models.DifficultyHard, Priority: models.PriorityHigh, RecommendedDurationMinutes: 60})
	newer := &models.PlanRecord{UserID: user.ID, Plan: plan, GeneratedAt: older.GeneratedAt.AddDate(0, 0, 7), SubjectCount: 1, OptimizationNotes: "notes"}
	require.NoError(t, repo.Save(ctx, newer))

	latest, err := repo.Latest(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, newer.ID, latest.ID)
	assert.Equal(t, 1, latest.SubjectCount)
	assert.Equal(t, "notes", latest.OptimizationNotes)
	assert.Equal(t, plan.Day(time.Tuesday), latest.Plan.Day(time.Tuesday))
	assert.Empty(t, latest.Plan.Day(time.Sunday))
}
