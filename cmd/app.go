package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/example/studyplanner/internal/bot"
	"github.com/example/studyplanner/internal/config"
	"github.com/example/studyplanner/internal/database"
	"github.com/example/studyplanner/internal/logging"
	"github.com/example/studyplanner/internal/usecase"
	"github.com/example/studyplanner/pkg/models"
)

// application holds everything the commands share
type application struct {
	cfg      *config.Config
	logger   *logrus.Logger
	db       *sqlx.DB
	services bot.Services
}

func newApplication() (*application, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.NewLogger(cfg.Log, os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	location, err := cfg.Scheduler.Location()
	if err != nil {
		return nil, err
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}

	return &application{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		services: newServices(db, cfg.Planner, location, logger),
	}, nil
}

func newServices(db *sqlx.DB, cfg config.PlannerConfig, location *time.Location, logger logrus.FieldLogger) bot.Services {
	users := database.NewUserRepository(db)
	subjects := database.NewSubjectRepository(db)
	gamificationRepo := database.NewGamificationRepository(db)
	sessions := database.NewSessionRepository(db)
	reflections := database.NewReflectionRepository(db)
	moods := database.NewMoodRepository(db)

	gamification := usecase.NewGamificationUsecase(gamificationRepo, logger)
	return bot.Services{
		Users:        usecase.NewUserUsecase(users, gamificationRepo, logger),
		Subjects:     usecase.NewSubjectUsecase(subjects, gamification, logger),
		Planner:      usecase.NewPlannerUsecase(subjects, database.NewPlanRepository(db), cfg.PersistPlans, location, logger),
		Gamification: gamification,
		Sessions:     usecase.NewSessionUsecase(database.NewTransactor(db), sessions, subjects, gamification, logger),
		Journal:      usecase.NewJournalUsecase(reflections, moods, subjects),
		Analytics:    usecase.NewAnalyticsUsecase(subjects, sessions, reflections, moods),
	}
}

func (a *application) Close() {
	if err := a.db.Close(); err != nil {
		a.logger.WithError(err).Warn("failed to close database")
	}
}

// lookupUser finds a user by Telegram id. With register set, unknown users are
// created the way the bot does on first contact.
func (a *application) lookupUser(ctx context.Context, telegramID int64, register bool) (*models.User, error) {
	if telegramID == 0 {
		return nil, fmt.Errorf("--telegram-id is required")
	}
	user, err := a.services.Users.GetByTelegramID(ctx, telegramID)
	if errors.Is(err, models.ErrUserNotFound) && register {
		return a.services.Users.Register(ctx, &models.User{TelegramID: telegramID})
	}
	if err != nil {
		return nil, fmt.Errorf("telegram user %d: %w", telegramID, err)
	}
	return user, nil
}
