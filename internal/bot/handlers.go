package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/studyplanner/internal/usecase"
	"github.com/example/studyplanner/pkg/models"
)

const helpText = "📖 Study planner\n\n" +
	"📚 Subjects:\n" +
	"/subjects - list your subjects\n" +
	"/add name | chapters | difficulty | priority | YYYY-MM-DD - add a subject\n" +
	"/progress <id> <completed> - update completed chapters\n" +
	"/delete <id> - remove a subject\n\n" +
	"🗓 Planning:\n" +
	"/plan - build this week's plan\n" +
	"/today - what to study today\n\n" +
	"⏱ Tracking:\n" +
	"/session [minutes] [subject_id] [pomodoros] - log a study session\n" +
	"/sessions - recent sessions\n" +
	"/mood <tired|normal|energetic> [1-5] [minutes] - rate how it went\n" +
	"/reflect <reason> [subject_id] [note] - note why a task was missed\n\n" +
	"📊 Progress:\n" +
	"/stats - level, streak and badges\n" +
	"/summary - progress and what gets in the way\n" +
	"/heatmap - study time per day\n\n" +
	"⚙️ Settings:\n" +
	"/mode normal|exam - switch study mode\n" +
	"/notify on|off [hour] - daily reminders"

// HandleCommand handles bot commands
func (b *Bot) HandleCommand(ctx context.Context, message *tgbotapi.Message) error {
	if message == nil || message.From == nil || message.Chat == nil {
		return fmt.Errorf("invalid message: required fields are missing")
	}

	user, err := b.currentUser(ctx, message.From)
	if err != nil {
		return err
	}

	args := strings.TrimSpace(message.CommandArguments())
	switch message.Command() {
	case "start":
		err = b.handleStart(message, user)
	case "help":
		err = b.sendText(message.Chat.ID, helpText)
	case "subjects":
		err = b.handleSubjects(ctx, message.Chat.ID, user)
	case "add":
		err = b.handleAdd(ctx, message.Chat.ID, user, args)
	case "progress":
		err = b.handleProgress(ctx, message.Chat.ID, user, args)
	case "delete":
		err = b.handleDelete(ctx, message.Chat.ID, user, args)
	case "plan":
		err = b.handlePlan(ctx, message.Chat.ID, user)
	case "today":
		err = b.handleToday(ctx, message.Chat.ID, user)
	case "session":
		err = b.handleSession(ctx, message.Chat.ID, user, args)
	case "sessions":
		err = b.handleSessions(ctx, message.Chat.ID, user)
	case "stats":
		err = b.handleStats(ctx, message.Chat.ID, user)
	case "mode":
		err = b.handleMode(ctx, message.Chat.ID, user, args)
	case "mood":
		err = b.handleMood(ctx, message.Chat.ID, user, args)
	case "reflect":
		err = b.handleReflect(ctx, message.Chat.ID, user, args)
	case "summary":
		err = b.handleSummary(ctx, message.Chat.ID, user)
	case "heatmap":
		err = b.handleHeatmap(ctx, message.Chat.ID, user)
	case "notify":
		err = b.handleNotify(ctx, message.Chat.ID, user, args)
	case "broadcast":
		err = b.handleBroadcast(ctx, message)
	default:
		err = b.sendText(message.Chat.ID, "Unknown command. Use /help to see the list of commands.")
	}

	if err != nil {
		return b.replyError(message.Chat.ID, err)
	}
	return nil
}

// HandleCallback handles presses on inline buttons
func (b *Bot) HandleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) error {
	if callback == nil || callback.Message == nil || callback.Message.Chat == nil || callback.From == nil {
		return fmt.Errorf("invalid callback data: required fields are missing")
	}

	// Always answer the callback query to remove the loading state
	if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		b.logger.WithError(err).Warn("failed to answer callback")
	}

	user, err := b.currentUser(ctx, callback.From)
	if err != nil {
		return err
	}
	chatID := callback.Message.Chat.ID

	switch callback.Data {
	case "main_menu":
		err = b.sendMenu(chatID, "Main menu - choose an option:")
	case "help":
		err = b.sendText(chatID, helpText)
	case "plan":
		err = b.handlePlan(ctx, chatID, user)
	case "today":
		err = b.handleToday(ctx, chatID, user)
	case "subjects":
		err = b.handleSubjects(ctx, chatID, user)
	case "stats":
		err = b.handleStats(ctx, chatID, user)
	case "summary":
		err = b.handleSummary(ctx, chatID, user)
	case "mode_normal", "mode_exam":
		err = b.handleMode(ctx, chatID, user, strings.TrimPrefix(callback.Data, "mode_"))
	default:
		err = b.sendText(chatID, "⚠️ Unknown action")
	}

	if err != nil {
		return b.replyError(chatID, err)
	}
	return nil
}

// currentUser returns the registered user behind a Telegram account,
// registering it on first contact
func (b *Bot) currentUser(ctx context.Context, from *tgbotapi.User) (*models.User, error) {
	user, err := b.services.Users.GetByTelegramID(ctx, from.ID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, models.ErrUserNotFound) {
		return nil, err
	}
	return b.services.Users.Register(ctx, telegramUser(from))
}

func telegramUser(from *tgbotapi.User) *models.User {
	return &models.User{
		TelegramID: from.ID,
		Username:   from.UserName,
		FirstName:  from.FirstName,
		LastName:   from.LastName,
	}
}

func (b *Bot) handleStart(message *tgbotapi.Message, user *models.User) error {
	text := fmt.Sprintf("👋 Hi %s! I turn your subjects and deadlines into a weekly study plan.\n\n"+
		"1. Add subjects with /add\n"+
		"2. Get your plan with /plan\n"+
		"3. Log study time with /session\n\n"+
		"Send /help for all commands.", user.DisplayName())
	return b.sendMenu(message.Chat.ID, text)
}

func (b *Bot) handleSubjects(ctx context.Context, chatID int64, user *models.User) error {
	subjects, err := b.services.Subjects.List(ctx, user.ID)
	if err != nil {
		return err
	}
	return b.sendText(chatID, formatSubjects(subjects, time.Now()))
}

func (b *Bot) handleAdd(ctx context.Context, chatID int64, user *models.User, args string) error {
	input, err := parseAddArgs(args)
	if err != nil {
		return err
	}
	subject, err := b.services.Subjects.Create(ctx, user.ID, input)
	if err != nil {
		return err
	}
	return b.sendText(chatID, fmt.Sprintf("✅ Added #%d %s: %d chapters due %s (+%d XP)",
		subject.ID, subject.Name, subject.Chapters, subject.Deadline.Format(deadlineLayout), models.XPSubjectAdded))
}

func (b *Bot) handleProgress(ctx context.Context, chatID int64, user *models.User, args string) error {
	ids, err := parseIDs(args, 2)
	if err != nil {
		return err
	}
	completed := int(ids[1])
	subject, err := b.services.Subjects.UpdateProgress(ctx, user.ID, ids[0], usecase.SubjectUpdate{CompletedChapters: &completed})
	if err != nil {
		return err
	}

	text := fmt.Sprintf("📈 %s: %d/%d chapters (%.1f%%)", subject.Name, subject.CompletedChapters, subject.Chapters, subject.CompletionPercentage())
	if subject.IsComplete() {
		text += "\n🎉 Subject complete!"
	}
	return b.sendText(chatID, text)
}

func (b *Bot) handleDelete(ctx context.Context, chatID int64, user *models.User, args string) error {
	ids, err := parseIDs(args, 1)
	if err != nil {
		return err
	}
	if err := b.services.Subjects.Delete(ctx, user.ID, ids[0]); err != nil {
		return err
	}
	return b.sendText(chatID, fmt.Sprintf("🗑 Subject #%d removed", ids[0]))
}

func (b *Bot) handlePlan(ctx context.Context, chatID int64, user *models.User) error {
	record, err := b.services.Planner.GenerateWeeklyPlan(ctx, user.ID)
	if err != nil {
		return err
	}
	if record.SubjectCount == 0 {
		return b.sendText(chatID, "Your plan is empty. Add subjects with /add first.")
	}
	return b.sendText(chatID, formatPlan(record))
}

func (b *Bot) handleToday(ctx context.Context, chatID int64, user *models.User) error {
	day, entries, err := b.services.Planner.TodayEntries(ctx, user.ID)
	if err != nil {
		return err
	}
	return b.sendText(chatID, formatDay(day, entries))
}

func (b *Bot) handleSession(ctx context.Context, chatID int64, user *models.User, args string) error {
	input, err := parseSessionArgs(args)
	if err != nil {
		return err
	}
	res, err := b.services.Sessions.Record(ctx, user.ID, input)
	if err != nil {
		return err
	}
	return b.sendText(chatID, formatSession(res))
}

func (b *Bot) handleSessions(ctx context.Context, chatID int64, user *models.User) error {
	sessions, err := b.services.Sessions.List(ctx, user.ID, b.config.SessionListLimit)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		return b.sendText(chatID, "No sessions yet. Log one with /session.")
	}

	var text strings.Builder
	text.WriteString("⏱ Recent sessions:\n\n")
	for _, s := range sessions {
		fmt.Fprintf(&text, "%s  %d min", s.Date.Format("2006-01-02 15:04"), s.DurationMinutes)
		if s.SubjectID != nil {
			fmt.Fprintf(&text, "  subject #%d", *s.SubjectID)
		}
		text.WriteString("\n")
	}
	return b.sendText(chatID, text.String())
}

func (b *Bot) handleStats(ctx context.Context, chatID int64, user *models.User) error {
	g, err := b.services.Gamification.Get(ctx, user.ID)
	if err != nil {
		return err
	}
	return b.sendText(chatID, formatStats(g))
}

func (b *Bot) handleMode(ctx context.Context, chatID int64, user *models.User, args string) error {
	if args == "" {
		msg := tgbotapi.NewMessage(chatID, "Choose your study mode:")
		msg.ReplyMarkup = createKeyboard(b.ModeButtons())
		return b.sendMessage(msg)
	}
	mode := models.StudyMode(strings.ToLower(args))
	if err := b.services.Gamification.SetMode(ctx, user.ID, mode); err != nil {
		return err
	}
	return b.sendText(chatID, fmt.Sprintf("🎯 Study mode set to %s", mode))
}

func (b *Bot) handleMood(ctx context.Context, chatID int64, user *models.User, args string) error {
	input, err := parseMoodArgs(args)
	if err != nil {
		return err
	}
	mood, err := b.services.Journal.RecordMood(ctx, user.ID, input)
	if err != nil {
		return err
	}
	return b.sendText(chatID, fmt.Sprintf("📝 Mood %s recorded, effectiveness %d/5", mood.Mood, mood.Effectiveness))
}

func (b *Bot) handleReflect(ctx context.Context, chatID int64, user *models.User, args string) error {
	if args == "" {
		return b.sendText(chatID, formatReasons())
	}
	input, err := parseReflectArgs(args)
	if err != nil {
		return err
	}
	reflection, err := b.services.Journal.RecordReflection(ctx, user.ID, input)
	if err != nil {
		return err
	}
	return b.sendText(chatID, fmt.Sprintf("🙏 Noted: %s. Tomorrow is a new day.", reflection.ReasonText))
}

func (b *Bot) handleSummary(ctx context.Context, chatID int64, user *models.User) error {
	summary, err := b.services.Analytics.Summary(ctx, user.ID)
	if err != nil {
		return err
	}
	failure, err := b.services.Analytics.FailureAnalytics(ctx, user.ID, b.config.FailureWindowDays)
	if err != nil {
		return err
	}
	return b.sendText(chatID, formatSummary(summary, failure))
}

func (b *Bot) handleHeatmap(ctx context.Context, chatID int64, user *models.User) error {
	heatmap, err := b.services.Analytics.Heatmap(ctx, user.ID)
	if err != nil {
		return err
	}
	return b.sendText(chatID, formatHeatmap(heatmap))
}

func (b *Bot) handleNotify(ctx context.Context, chatID int64, user *models.User, args string) error {
	enabled, hour, err := parseNotifyArgs(args)
	if err != nil {
		return err
	}
	if hour < 0 {
		hour = user.NotificationHour
	}
	if err := b.services.Users.UpdateNotifications(ctx, user.ID, enabled, hour); err != nil {
		return err
	}
	if !enabled {
		return b.sendText(chatID, "🔕 Reminders are off")
	}
	return b.sendText(chatID, fmt.Sprintf("🔔 Reminders are on at %02d:00", hour))
}

func (b *Bot) handleBroadcast(ctx context.Context, message *tgbotapi.Message) error {
	if !b.isAdmin(message.From.ID) || b.broadcaster == nil {
		return b.sendText(message.Chat.ID, "This command is only available for administrators.")
	}
	sent := b.broadcaster.SendWeeklyPlans(ctx)
	return b.sendText(message.Chat.ID, fmt.Sprintf("📣 Weekly plans sent to %d users", sent))
}

func (b *Bot) sendMenu(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = createKeyboard(b.MainMenuButtons())
	return b.sendMessage(msg)
}

// replyError tells the user what went wrong. Domain errors are shown as is;
// anything else is logged and hidden behind a generic message.
func (b *Bot) replyError(chatID int64, err error) error {
	var text string
	switch {
	case errors.Is(err, errUsage):
		text = "⚠️ " + err.Error() + "\nSend /help for the command format."
	case errors.Is(err, models.ErrInvalidSubject),
		errors.Is(err, models.ErrInvalidMode),
		errors.Is(err, models.ErrInvalidMood),
		errors.Is(err, models.ErrInvalidReflection),
		errors.Is(err, models.ErrInvalidHour):
		text = "⚠️ " + err.Error()
	case errors.Is(err, models.ErrSubjectNotFound):
		text = "⚠️ Subject not found. Check /subjects for the ids."
	default:
		b.logger.WithError(err).Error("command failed")
		text = "❌ Something went wrong. Please try again later."
	}
	return b.sendText(chatID, text)
}

// SendWeeklyPlan implements the scheduler.Notifier interface
func (b *Bot) SendWeeklyPlan(ctx context.Context, user models.User, record *models.PlanRecord) error {
	if record.Plan.EntryCount() == 0 {
		return nil
	}
	msg := tgbotapi.NewMessage(user.TelegramID, "Good morning! Here is your new week.\n\n"+formatPlan(record))
	msg.ReplyMarkup = createKeyboard(b.MainMenuButtons())
	return b.sendMessage(msg)
}

// SendDailyReminder implements the scheduler.Notifier interface
func (b *Bot) SendDailyReminder(ctx context.Context, user models.User, day time.Weekday, entries []models.PlanEntry) error {
	text := "🔔 Time to study!\n\n" + formatDay(day, entries) + "\nLog your progress with /session."
	return b.sendText(user.TelegramID, text)
}
