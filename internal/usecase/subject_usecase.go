package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/example/studyplanner/pkg/models"
)

// SubjectInput carries the fields of a new subject.
type SubjectInput struct {
	Name       string
	Chapters   int
	Difficulty models.Difficulty
	Priority   models.Priority
	Deadline   time.Time
}

// SubjectUpdate is a partial update. Nil fields are left unchanged.
type SubjectUpdate struct {
	CompletedChapters *int
	Difficulty        *models.Difficulty
	Priority          *models.Priority
	SessionsCompleted *int
	TotalTimeMinutes  *int
}

// SubjectUsecase manages the subjects a student is working through.
type SubjectUsecase interface {
	Create(ctx context.Context, userID int64, input SubjectInput) (*models.Subject, error)
	List(ctx context.Context, userID int64) ([]models.Subject, error)
	Get(ctx context.Context, userID, id int64) (*models.Subject, error)
	UpdateProgress(ctx context.Context, userID, id int64, update SubjectUpdate) (*models.Subject, error)
	Delete(ctx context.Context, userID, id int64) error
}

// NewSubjectUsecase wires the repository with default behaviour.
func NewSubjectUsecase(repo SubjectRepository, gamification GamificationUsecase, logger logrus.FieldLogger) SubjectUsecase {
	return &subjectUsecase{repo: repo, gamification: gamification, logger: logger, clock: time.Now}
}

type subjectUsecase struct {
	repo         SubjectRepository
	gamification GamificationUsecase
	logger       logrus.FieldLogger
	clock        func() time.Time
}

func (u *subjectUsecase) Create(ctx context.Context, userID int64, input SubjectInput) (*models.Subject, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	subject := &models.Subject{
		UserID:     userID,
		Name:       strings.TrimSpace(input.Name),
		Chapters:   input.Chapters,
		Difficulty: input.Difficulty,
		Priority:   input.Priority,
		Deadline:   input.Deadline,
	}
	if err := u.repo.Create(ctx, subject); err != nil {
		return nil, err
	}

	u.reward(ctx, userID, models.XPSubjectAdded)
	return subject, nil
}

func (u *subjectUsecase) List(ctx context.Context, userID int64) ([]models.Subject, error) {
	return u.repo.LoadActiveSubjects(ctx, userID)
}

func (u *subjectUsecase) Get(ctx context.Context, userID, id int64) (*models.Subject, error) {
	if id <= 0 {
		return nil, models.ErrSubjectNotFound
	}
	return u.repo.GetByID(ctx, userID, id)
}

// UpdateProgress applies a partial update. Newly completed chapters earn
// experience and finishing the subject earns the completion badge.
func (u *subjectUsecase) UpdateProgress(ctx context.Context, userID, id int64, update SubjectUpdate) (*models.Subject, error) {
	subject, err := u.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	wasComplete := subject.IsComplete()
	previous := subject.CompletedChapters

	if update.CompletedChapters != nil {
		if *update.CompletedChapters < 0 {
			return nil, fmt.Errorf("%w: completed chapters must not be negative", models.ErrInvalidSubject)
		}
		subject.CompletedChapters = *update.CompletedChapters
	}
	if update.Difficulty != nil {
		if !update.Difficulty.Valid() {
			return nil, fmt.Errorf("%w: unknown difficulty %q", models.ErrInvalidSubject, *update.Difficulty)
		}
		subject.Difficulty = *update.Difficulty
	}
	if update.Priority != nil {
		if !update.Priority.Valid() {
			return nil, fmt.Errorf("%w: unknown priority %q", models.ErrInvalidSubject, *update.Priority)
		}
		subject.Priority = *update.Priority
	}
	if update.SessionsCompleted != nil {
		subject.SessionsCompleted = *update.SessionsCompleted
	}
	if update.TotalTimeMinutes != nil {
		subject.TotalTimeMinutes = *update.TotalTimeMinutes
	}

	if err := u.repo.Update(ctx, subject); err != nil {
		return nil, err
	}

	if gained := subject.CompletedChapters - previous; gained > 0 {
		u.reward(ctx, userID, gained*models.XPChapterCompleted)
	}
	if !wasComplete && subject.IsComplete() {
		if _, err := u.gamification.AwardBadge(ctx, userID, models.BadgeSubjectComplete); err != nil {
			u.logger.WithError(err).WithField("user_id", userID).Warn("failed to award completion badge")
		}
	}
	return subject, nil
}

// Delete soft deletes the subject so that its history stays intact.
func (u *subjectUsecase) Delete(ctx context.Context, userID, id int64) error {
	if id <= 0 {
		return models.ErrSubjectNotFound
	}
	return u.repo.SoftDelete(ctx, userID, id, u.clock())
}

// reward grants experience for subject work. The subject change is already
// stored, so a failure is only logged.
func (u *subjectUsecase) reward(ctx context.Context, userID int64, xp int) {
	if _, err := u.gamification.AddXP(ctx, userID, xp); err != nil {
		u.logger.WithError(err).WithFields(logrus.Fields{"user_id": userID, "xp": xp}).Warn("failed to award xp")
	}
}

func (in SubjectInput) validate() error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return fmt.Errorf("%w: name is required", models.ErrInvalidSubject)
	case in.Chapters <= 0:
		return fmt.Errorf("%w: chapters must be positive", models.ErrInvalidSubject)
	case !in.Difficulty.Valid():
		return fmt.Errorf("%w: unknown difficulty %q", models.ErrInvalidSubject, in.Difficulty)
	case !in.Priority.Valid():
		return fmt.Errorf("%w: unknown priority %q", models.ErrInvalidSubject, in.Priority)
	case in.Deadline.IsZero():
		return fmt.Errorf("%w: deadline is required", models.ErrInvalidSubject)
	}
	return nil
}
