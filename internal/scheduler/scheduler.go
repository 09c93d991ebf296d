package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"

	"github.com/example/studyplanner/internal/config"
	"github.com/example/studyplanner/pkg/models"
)

// Notifier delivers plans and reminders to users
type Notifier interface {
	SendWeeklyPlan(ctx context.Context, user models.User, record *models.PlanRecord) error
	SendDailyReminder(ctx context.Context, user models.User, day time.Weekday, entries []models.PlanEntry) error
}

// UserLister finds the users who receive notifications
type UserLister interface {
	ListNotificationEnabled(ctx context.Context) ([]models.User, error)
	ListForNotification(ctx context.Context, hour int) ([]models.User, error)
}

// PlanSource generates plans and looks up today's work
type PlanSource interface {
	GenerateWeeklyPlan(ctx context.Context, userID int64) (*models.PlanRecord, error)
	TodayEntries(ctx context.Context, userID int64) (time.Weekday, []models.PlanEntry, error)
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	cfg       config.SchedulerConfig
	weekday   time.Weekday
	location  *time.Location
	users     UserLister
	plans     PlanSource
	notifier  Notifier
	logger    logrus.FieldLogger
	clock     func() time.Time
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseWeekday converts an English day name to a time.Weekday
func ParseWeekday(name string) (time.Weekday, error) {
	day, ok := weekdays[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("unknown weekday %q", name)
	}
	return day, nil
}

// New creates a new scheduler instance
func New(cfg config.SchedulerConfig, users UserLister, plans PlanSource, notifier Notifier, logger logrus.FieldLogger) (*Scheduler, error) {
	weekday, err := ParseWeekday(cfg.WeeklyDay)
	if err != nil {
		return nil, err
	}
	location, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	return &Scheduler{
		scheduler: gocron.NewScheduler(location),
		cfg:       cfg,
		weekday:   weekday,
		location:  location,
		users:     users,
		plans:     plans,
		notifier:  notifier,
		logger:    logger.WithField("component", "scheduler"),
		clock:     time.Now,
	}, nil
}

// Start registers the jobs and runs them in the background
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.scheduler.Every(1).Weekday(s.weekday).At(s.cfg.WeeklyTime).Do(func() {
		s.SendWeeklyPlans(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule weekly plans: %w", err)
	}

	// Reminders go out at the top of every hour
	_, err = s.scheduler.Cron("0 * * * *").Do(func() {
		s.SendDailyReminders(ctx, s.clock().In(s.location).Hour())
	})
	if err != nil {
		return fmt.Errorf("failed to schedule reminders: %w", err)
	}

	s.scheduler.StartAsync()
	s.logger.WithFields(logrus.Fields{
		"weekly_day":  s.weekday.String(),
		"weekly_time": s.cfg.WeeklyTime,
		"timezone":    s.location.String(),
	}).Info("scheduler started")
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// SendWeeklyPlans generates a fresh plan for every user with notifications
// enabled and delivers it. It returns the number of plans delivered.
func (s *Scheduler) SendWeeklyPlans(ctx context.Context) int {
	users, err := s.users.ListNotificationEnabled(ctx)
	if err != nil {
		s.logger.WithError(err).Error("failed to list users for weekly plans")
		return 0
	}

	sent := 0
	for _, user := range users {
		log := s.logger.WithField("user_id", user.ID)

		record, err := s.plans.GenerateWeeklyPlan(ctx, user.ID)
		if err != nil {
			log.WithError(err).Error("failed to generate weekly plan")
			continue
		}
		if err := s.notifier.SendWeeklyPlan(ctx, user, record); err != nil {
			log.WithError(err).Error("failed to send weekly plan")
			continue
		}
		sent++
	}

	s.logger.WithFields(logrus.Fields{"users": len(users), "sent": sent}).Info("weekly plans delivered")
	return sent
}

// SendDailyReminders reminds users whose notification hour is hour about
// today's entries of their latest plan. Hours outside the configured
// notification window are skipped. It returns the number of reminders sent.
func (s *Scheduler) SendDailyReminders(ctx context.Context, hour int) int {
	if hour < s.cfg.NotificationStartHour || hour > s.cfg.NotificationEndHour {
		s.logger.WithField("hour", hour).Debug("outside notification hours, skipping reminders")
		return 0
	}

	users, err := s.users.ListForNotification(ctx, hour)
	if err != nil {
		s.logger.WithError(err).Error("failed to list users for reminders")
		return 0
	}

	sent := 0
	for _, user := range users {
		log := s.logger.WithField("user_id", user.ID)

		day, entries, err := s.plans.TodayEntries(ctx, user.ID)
		if err != nil {
			log.WithError(err).Error("failed to load today's plan")
			continue
		}
		if len(entries) == 0 {
			continue
		}
		if err := s.notifier.SendDailyReminder(ctx, user, day, entries); err != nil {
			log.WithError(err).Error("failed to send reminder")
			continue
		}
		sent++
	}
	return sent
}
