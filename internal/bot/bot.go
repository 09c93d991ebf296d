package bot

import (
	"context"
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/example/studyplanner/internal/usecase"
)

// MenuButton represents a button in the menu
type MenuButton struct {
	Text         string
	CallbackData string
}

// createKeyboard creates a keyboard from menu buttons
func createKeyboard(buttons [][]MenuButton) tgbotapi.InlineKeyboardMarkup {
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, row := range buttons {
		var keyboardRow []tgbotapi.InlineKeyboardButton
		for _, button := range row {
			keyboardRow = append(keyboardRow, tgbotapi.NewInlineKeyboardButtonData(button.Text, button.CallbackData))
		}
		keyboard = append(keyboard, keyboardRow)
	}
	return tgbotapi.NewInlineKeyboardMarkup(keyboard...)
}

// sender is the part of the Telegram API the bot uses
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Broadcaster pushes fresh weekly plans to every subscribed user
type Broadcaster interface {
	SendWeeklyPlans(ctx context.Context) int
}

// Services groups the use cases the bot talks to
type Services struct {
	Users        usecase.UserUsecase
	Subjects     usecase.SubjectUsecase
	Planner      usecase.PlannerUsecase
	Gamification usecase.GamificationUsecase
	Sessions     usecase.SessionUsecase
	Journal      usecase.JournalUsecase
	Analytics    usecase.AnalyticsUsecase
}

// Bot represents the Telegram bot application
type Bot struct {
	api         sender
	services    Services
	config      *BotConfig
	isAdmin     func(telegramID int64) bool
	broadcaster Broadcaster
	logger      logrus.FieldLogger
	wg          sync.WaitGroup
}

// New creates a bot connected to the Telegram API
func New(token string, services Services, isAdmin func(int64) bool, logger logrus.FieldLogger) (*Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram bot token is not set")
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("unable to create bot: %w", err)
	}
	logger.WithField("account", api.Self.UserName).Info("authorized on telegram")
	return newBot(api, services, isAdmin, logger), nil
}

func newBot(api sender, services Services, isAdmin func(int64) bool, logger logrus.FieldLogger) *Bot {
	if isAdmin == nil {
		isAdmin = func(int64) bool { return false }
	}
	return &Bot{
		api:      api,
		services: services,
		config:   DefaultConfig(),
		isAdmin:  isAdmin,
		logger:   logger.WithField("component", "bot"),
	}
}

// SetBroadcaster enables the admin /broadcast command
func (b *Bot) SetBroadcaster(br Broadcaster) {
	b.broadcaster = br
}

// Start handles incoming updates until ctx is cancelled
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = b.config.UpdateTimeout
	updates := b.api.GetUpdatesChan(updateConfig)

	b.logger.Info("bot started")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.wg.Add(1)
			go func() {
				defer b.wg.Done()
				b.handleUpdate(ctx, update)
			}()
		}
	}
}

// Stop stops polling and waits for in-flight updates or ctx, whichever comes first
func (b *Bot) Stop(ctx context.Context) error {
	b.api.StopReceivingUpdates()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.logger.Info("bot stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// handleUpdate handles incoming updates from Telegram
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	ctx, cancel := context.WithTimeout(ctx, b.config.HandlerTimeout)
	defer cancel()

	var err error
	switch {
	case update.Message != nil && update.Message.IsCommand():
		err = b.HandleCommand(ctx, update.Message)
	case update.Message != nil && update.Message.Chat != nil:
		err = b.sendText(update.Message.Chat.ID, "Send /help to see what I can do.")
	case update.CallbackQuery != nil:
		err = b.HandleCallback(ctx, update.CallbackQuery)
	}
	if err != nil {
		b.logger.WithError(err).Error("failed to handle update")
	}
}

// MainMenuButtons returns the buttons for the main menu
func (b *Bot) MainMenuButtons() [][]MenuButton {
	return [][]MenuButton{
		{
			{Text: "🗓 Weekly plan", CallbackData: "plan"},
			{Text: "📌 Today", CallbackData: "today"},
		},
		{
			{Text: "📚 Subjects", CallbackData: "subjects"},
			{Text: "🏆 Stats", CallbackData: "stats"},
		},
		{
			{Text: "📊 Summary", CallbackData: "summary"},
			{Text: "❓ Help", CallbackData: "help"},
		},
	}
}

// ModeButtons returns the buttons for switching study mode
func (b *Bot) ModeButtons() [][]MenuButton {
	return [][]MenuButton{
		{
			{Text: "📖 Normal", CallbackData: "mode_normal"},
			{Text: "🔥 Exam", CallbackData: "mode_exam"},
		},
		{{Text: "⬅️ Back to menu", CallbackData: "main_menu"}},
	}
}

func (b *Bot) sendMessage(msg tgbotapi.MessageConfig) error {
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

func (b *Bot) sendText(chatID int64, text string) error {
	return b.sendMessage(tgbotapi.NewMessage(chatID, text))
}
