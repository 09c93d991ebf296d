package usecase

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/example/studyplanner/pkg/models"
)

// SessionInput carries a study session to record. Zero values fall back to
// one default pomodoro.
type SessionInput struct {
	SubjectID       *int64
	DurationMinutes int
	PomodoroCount   int
}

// SessionResult is a recorded session together with its rewards.
type SessionResult struct {
	Session models.StudySession `json:"session"`
	Rewards StudyResult         `json:"rewards"`
}

// SessionUsecase records study sessions.
type SessionUsecase interface {
	Record(ctx context.Context, userID int64, input SessionInput) (*SessionResult, error)
	List(ctx context.Context, userID int64, limit int) ([]models.StudySession, error)
}

// NewSessionUsecase wires the repositories with default behaviour.
func NewSessionUsecase(tx Transactor, sessions SessionRepository, subjects SubjectRepository, gamification GamificationUsecase, logger logrus.FieldLogger) SessionUsecase {
	return &sessionUsecase{
		tx:           tx,
		sessions:     sessions,
		subjects:     subjects,
		gamification: gamification,
		logger:       logger,
		clock:        time.Now,
	}
}

type sessionUsecase struct {
	tx           Transactor
	sessions     SessionRepository
	subjects     SubjectRepository
	gamification GamificationUsecase
	logger       logrus.FieldLogger
	clock        func() time.Time
}

func (u *sessionUsecase) Record(ctx context.Context, userID int64, input SessionInput) (*SessionResult, error) {
	session := models.StudySession{
		UserID:          userID,
		SubjectID:       input.SubjectID,
		DurationMinutes: input.DurationMinutes,
		PomodoroCount:   input.PomodoroCount,
		Date:            u.clock(),
	}
	if session.DurationMinutes <= 0 {
		session.DurationMinutes = models.DefaultSessionMinutes
	}
	if session.PomodoroCount <= 0 {
		session.PomodoroCount = models.DefaultPomodoroCount
	}

	var rewards *StudyResult
	err := u.tx.RunInTx(ctx, func(ctx context.Context) error {
		var subject *models.Subject
		if session.SubjectID != nil {
			var err error
			if subject, err = u.subjects.GetByID(ctx, userID, *session.SubjectID); err != nil {
				return err
			}
		}

		if err := u.sessions.Create(ctx, &session); err != nil {
			return err
		}

		if subject != nil {
			subject.SessionsCompleted++
			subject.TotalTimeMinutes += session.DurationMinutes
			if err := u.subjects.Update(ctx, subject); err != nil {
				return err
			}
		}

		var err error
		rewards, err = u.gamification.RecordStudy(ctx, userID, session.DurationMinutes, session.PomodoroCount*models.XPPomodoro)
		return err
	})
	if err != nil {
		return nil, err
	}

	u.logger.WithFields(logrus.Fields{
		"user_id":  userID,
		"minutes":  session.DurationMinutes,
		"streak":   rewards.Streak.Streak,
		"xp_total": rewards.XP.TotalXP,
	}).Info("study session recorded")

	return &SessionResult{Session: session, Rewards: *rewards}, nil
}

// List returns the newest sessions first. A non-positive limit returns all.
func (u *sessionUsecase) List(ctx context.Context, userID int64, limit int) ([]models.StudySession, error) {
	return u.sessions.ListRecent(ctx, userID, limit)
}
