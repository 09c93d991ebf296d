package bot

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/studyplanner/internal/config"
	"github.com/example/studyplanner/internal/database"
	"github.com/example/studyplanner/internal/usecase"
	"github.com/example/studyplanner/pkg/models"
)

const adminID = 1000

type fakeSender struct {
	mu       sync.Mutex
	messages []tgbotapi.MessageConfig
	requests []tgbotapi.Chattable
	updates  chan tgbotapi.Update
}

func newFakeSender() *fakeSender {
	return &fakeSender{updates: make(chan tgbotapi.Update, 10)}
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.messages = append(f.messages, msg)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeSender) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeSender) StopReceivingUpdates() {}

func (f *fakeSender) last(t *testing.T) tgbotapi.MessageConfig {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.messages)
	return f.messages[len(f.messages)-1]
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

type countingBroadcaster struct {
	calls int
}

func (c *countingBroadcaster) SendWeeklyPlans(ctx context.Context) int {
	c.calls++
	return 3
}

func newTestBot(t *testing.T) (*Bot, *fakeSender) {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{Driver: "sqlite3", DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger, _ := test.NewNullLogger()
	users := database.NewUserRepository(db)
	subjects := database.NewSubjectRepository(db)
	gamificationRepo := database.NewGamificationRepository(db)
	sessions := database.NewSessionRepository(db)
	reflections := database.NewReflectionRepository(db)
	moods := database.NewMoodRepository(db)

	gamification := usecase.NewGamificationUsecase(gamificationRepo, logger)
	services := Services{
		Users:        usecase.NewUserUsecase(users, gamificationRepo, logger),
		Subjects:     usecase.NewSubjectUsecase(subjects, gamification, logger),
		Planner:      usecase.NewPlannerUsecase(subjects, database.NewPlanRepository(db), true, nil, logger),
		Gamification: gamification,
		Sessions:     usecase.NewSessionUsecase(database.NewTransactor(db), sessions, subjects, gamification, logger),
		Journal:      usecase.NewJournalUsecase(reflections, moods, subjects),
		Analytics:    usecase.NewAnalyticsUsecase(subjects, sessions, reflections, moods),
	}

	api := newFakeSender()
	isAdmin := func(id int64) bool { return id == adminID }
	return newBot(api, services, isAdmin, logger), api
}

func command(from int64, text string) *tgbotapi.Message {
	length := strings.IndexByte(text, ' ')
	if length < 0 {
		length = len(text)
	}
	return &tgbotapi.Message{
		From:     &tgbotapi.User{ID: from, FirstName: "Ada", UserName: "ada"},
		Chat:     &tgbotapi.Chat{ID: from},
		Text:     text,
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: length}},
	}
}

func run(t *testing.T, b *Bot, api *fakeSender, from int64, text string) string {
	t.Helper()
	require.NoError(t, b.HandleCommand(context.Background(), command(from, text)))
	return api.last(t).Text
}

func TestStartRegistersUser(t *testing.T) {
	b, api := newTestBot(t)

	reply := run(t, b, api, 1, "/start")
	assert.Contains(t, reply, "Hi Ada")
	assert.NotNil(t, api.last(t).ReplyMarkup)

	user, err := b.services.Users.GetByTelegramID(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, user.NotificationEnabled)
	assert.Equal(t, models.DefaultNotificationHour, user.NotificationHour)
}

func TestSubjectCommands(t *testing.T) {
	b, api := newTestBot(t)

	assert.Contains(t, run(t, b, api, 1, "/subjects"), "no subjects yet")

	reply := run(t, b, api, 1, "/add Algebra | 10 | hard | high | 2099-01-01")
	assert.Contains(t, reply, "Added #1 Algebra: 10 chapters due 2099-01-01")

	assert.Contains(t, run(t, b, api, 1, "/subjects"), "#1 Algebra")
	assert.Contains(t, run(t, b, api, 1, "/progress 1 10"), "Subject complete")
	assert.Contains(t, run(t, b, api, 1, "/delete 1"), "Subject #1 removed")
	assert.Contains(t, run(t, b, api, 1, "/delete 1"), "Subject not found")
}

func TestCommandErrorsAreExplained(t *testing.T) {
	b, api := newTestBot(t)

	assert.Contains(t, run(t, b, api, 1, "/add Algebra"), "Send /help")
	assert.Contains(t, run(t, b, api, 1, "/add Algebra | 10 | brutal | high | 2099-01-01"), "invalid subject")
	assert.Contains(t, run(t, b, api, 1, "/mood sleepy"), "invalid mood")
	assert.Contains(t, run(t, b, api, 1, "/reflect 9"), "invalid reflection")
	assert.Contains(t, run(t, b, api, 1, "/mode party"), "invalid mode")
	assert.Contains(t, run(t, b, api, 1, "/dance"), "Unknown command")
}

func TestPlanCommands(t *testing.T) {
	b, api := newTestBot(t)

	assert.Contains(t, run(t, b, api, 1, "/plan"), "plan is empty")

	run(t, b, api, 1, "/add Algebra | 10 | hard | high | 2099-01-01")
	reply := run(t, b, api, 1, "/plan")
	assert.Contains(t, reply, "Weekly plan: 1 subjects, 150 min in total")
	assert.Contains(t, reply, "Algebra: 5 ch, 150 min (hard, high)")

	assert.Contains(t, run(t, b, api, 1, "/today"), "📌")
}

func TestSessionAndStats(t *testing.T) {
	b, api := newTestBot(t)

	reply := run(t, b, api, 1, "/session 50")
	assert.Contains(t, reply, "Logged 50 min (1 pomodoro)")
	assert.Contains(t, reply, "Streak: 1 days")

	assert.Contains(t, run(t, b, api, 1, "/sessions"), "50 min")

	stats := run(t, b, api, 1, "/stats")
	assert.Contains(t, stats, "Studied: 50 min")
	assert.Contains(t, stats, "Mode: normal")

	assert.Contains(t, run(t, b, api, 1, "/heatmap"), "50 min")
}

func TestJournalAndSummary(t *testing.T) {
	b, api := newTestBot(t)

	assert.Contains(t, run(t, b, api, 1, "/reflect"), "0. Too Tired")
	assert.Contains(t, run(t, b, api, 1, "/reflect 2"), "Noted: Distracted")
	assert.Contains(t, run(t, b, api, 1, "/mood energetic 9"), "effectiveness 5/5")

	summary := run(t, b, api, 1, "/summary")
	assert.Contains(t, summary, "Reflections: 1")
	assert.Contains(t, summary, "Distracted ×1")
	assert.Contains(t, summary, "You study best around")
}

func TestNotifyCommand(t *testing.T) {
	b, api := newTestBot(t)
	ctx := context.Background()

	assert.Contains(t, run(t, b, api, 1, "/notify on 18"), "on at 18:00")
	assert.Contains(t, run(t, b, api, 1, "/notify off"), "Reminders are off")

	user, err := b.services.Users.GetByTelegramID(ctx, 1)
	require.NoError(t, err)
	assert.False(t, user.NotificationEnabled)
	assert.Equal(t, 18, user.NotificationHour, "hour is kept when not given")
}

func TestBroadcastIsAdminOnly(t *testing.T) {
	b, api := newTestBot(t)
	broadcaster := &countingBroadcaster{}
	b.SetBroadcaster(broadcaster)

	assert.Contains(t, run(t, b, api, 1, "/broadcast"), "only available for administrators")
	assert.Zero(t, broadcaster.calls)

	assert.Contains(t, run(t, b, api, adminID, "/broadcast"), "sent to 3 users")
	assert.Equal(t, 1, broadcaster.calls)
}

func TestHandleCallbackSwitchesMode(t *testing.T) {
	b, api := newTestBot(t)
	callback := &tgbotapi.CallbackQuery{
		ID:      "cb-1",
		From:    &tgbotapi.User{ID: 1, FirstName: "Ada"},
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 1}},
		Data:    "mode_exam",
	}

	require.NoError(t, b.HandleCallback(context.Background(), callback))
	assert.Contains(t, api.last(t).Text, "Study mode set to exam")
	assert.Len(t, api.requests, 1)

	assert.Contains(t, run(t, b, api, 1, "/stats"), "Mode: exam")

	assert.Error(t, b.HandleCallback(context.Background(), &tgbotapi.CallbackQuery{ID: "cb-2"}))
}

func TestHandleCallbackRejectsMessageWithoutChat(t *testing.T) {
	b, api := newTestBot(t)
	callback := &tgbotapi.CallbackQuery{
		ID:      "cb-3",
		From:    &tgbotapi.User{ID: 1},
		Message: &tgbotapi.Message{},
		Data:    "stats",
	}

	assert.Error(t, b.HandleCallback(context.Background(), callback))
	assert.Empty(t, api.requests)
	assert.Zero(t, api.count())
}

func TestNotifierMessages(t *testing.T) {
	b, api := newTestBot(t)
	ctx := context.Background()
	user := models.User{ID: 5, TelegramID: 77}

	require.NoError(t, b.SendWeeklyPlan(ctx, user, &models.PlanRecord{Plan: models.NewWeeklyPlan()}))
	assert.Zero(t, api.count(), "empty plans are not sent")

	plan := models.NewWeeklyPlan()
	plan.Append(time.Monday, models.PlanEntry{SubjectName: "Biology", ChaptersAssigned: 1, RecommendedDurationMinutes: 30})
	require.NoError(t, b.SendWeeklyPlan(ctx, user, &models.PlanRecord{Plan: plan, SubjectCount: 1}))
	assert.Equal(t, int64(77), api.last(t).ChatID)
	assert.Contains(t, api.last(t).Text, "Biology")

	require.NoError(t, b.SendDailyReminder(ctx, user, time.Monday, plan.Day(time.Monday)))
	assert.Contains(t, api.last(t).Text, "Time to study")
	assert.Contains(t, api.last(t).Text, "Monday: 30 min of study")
}

func TestStartHandlesUpdatesUntilCancelled(t *testing.T) {
	b, api := newTestBot(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- b.Start(ctx) }()

	api.updates <- tgbotapi.Update{Message: command(1, "/help")}
	assert.Eventually(t, func() bool { return api.count() == 1 }, time.Second, 10*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
	defer stopCancel()
	assert.NoError(t, b.Stop(stopCtx))
	assert.Contains(t, api.last(t).Text, "/plan")
}
