package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/example/studyplanner/internal/planner"
	"github.com/example/studyplanner/pkg/models"
)

// PlannerUsecase generates weekly plans from a user's active subjects.
type PlannerUsecase interface {
	GenerateWeeklyPlan(ctx context.Context, userID int64) (*models.PlanRecord, error)
	LatestPlan(ctx context.Context, userID int64) (*models.PlanRecord, error)
	TodayEntries(ctx context.Context, userID int64) (time.Weekday, []models.PlanEntry, error)
}

// MaxPlanAge is how long a stored plan keeps serving daily entries
const MaxPlanAge = 7 * 24 * time.Hour

// NewPlannerUsecase wires the repositories with default behaviour. Generated
// plans are stored only when persist is set. The current weekday is taken in
// location, UTC when nil.
func NewPlannerUsecase(subjects SubjectLoader, plans PlanStore, persist bool, location *time.Location, logger logrus.FieldLogger) PlannerUsecase {
	if location == nil {
		location = time.UTC
	}
	return &plannerUsecase{
		subjects: subjects,
		plans:    plans,
		persist:  persist,
		location: location,
		logger:   logger,
		clock:    time.Now,
	}
}

type plannerUsecase struct {
	subjects SubjectLoader
	plans    PlanStore
	persist  bool
	location *time.Location
	logger   logrus.FieldLogger
	clock    func() time.Time
}

func (u *plannerUsecase) GenerateWeeklyPlan(ctx context.Context, userID int64) (*models.PlanRecord, error) {
	subjects, err := u.subjects.LoadActiveSubjects(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load subjects for user %d: %w", userID, err)
	}

	now := u.clock()
	record := &models.PlanRecord{
		ID:                uuid.New(),
		UserID:            userID,
		Plan:              planner.Generate(subjects, now),
		GeneratedAt:       now,
		SubjectCount:      len(subjects),
		OptimizationNotes: planner.OptimizationNotes,
	}

	if u.persist {
		if err := u.plans.Save(ctx, record); err != nil {
			return nil, err
		}
	}

	u.logger.WithFields(logrus.Fields{
		"user_id":  userID,
		"plan_id":  record.ID,
		"subjects": record.SubjectCount,
		"entries":  record.Plan.EntryCount(),
		"minutes":  record.Plan.TotalMinutes(),
	}).Info("weekly plan generated")

	return record, nil
}

func (u *plannerUsecase) LatestPlan(ctx context.Context, userID int64) (*models.PlanRecord, error) {
	if !u.persist {
		return nil, models.ErrPlanNotFound
	}
	return u.plans.Latest(ctx, userID)
}

// TodayEntries returns today's entries of the latest plan. A fresh plan is
// generated when none is stored or the stored one is older than MaxPlanAge.
func (u *plannerUsecase) TodayEntries(ctx context.Context, userID int64) (time.Weekday, []models.PlanEntry, error) {
	now := u.clock().In(u.location)
	today := now.Weekday()

	record, err := u.LatestPlan(ctx, userID)
	if errors.Is(err, models.ErrPlanNotFound) || (err == nil && now.Sub(record.GeneratedAt) > MaxPlanAge) {
		record, err = u.GenerateWeeklyPlan(ctx, userID)
	}
	if err != nil {
		return today, nil, err
	}
	return today, record.Plan.Day(today), nil
}
