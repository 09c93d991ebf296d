package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/example/studyplanner/pkg/models"
)

// XPResult describes the outcome of an experience award.
type XPResult struct {
	XPEarned  int  `json:"xp_earned"`
	TotalXP   int  `json:"total_xp"`
	Level     int  `json:"level"`
	LeveledUp bool `json:"leveled_up"`
}

// StreakResult describes the streak after a study day was counted.
type StreakResult struct {
	Streak              int  `json:"streak"`
	AlreadyStudiedToday bool `json:"already_studied_today"`
}

// StudyResult bundles the rewards of a recorded study session.
type StudyResult struct {
	XP        XPResult     `json:"xp"`
	Streak    StreakResult `json:"streak"`
	NewBadges []string     `json:"new_badges,omitempty"`
}

// GamificationUsecase manages experience, levels, streaks, badges and study mode.
type GamificationUsecase interface {
	Get(ctx context.Context, userID int64) (*models.Gamification, error)
	AddXP(ctx context.Context, userID int64, xp int) (*XPResult, error)
	UpdateStreak(ctx context.Context, userID int64) (*StreakResult, error)
	AwardBadge(ctx context.Context, userID int64, badge string) ([]string, error)
	SetMode(ctx context.Context, userID int64, mode models.StudyMode) error
	RecordStudy(ctx context.Context, userID int64, minutes, xp int) (*StudyResult, error)
}

// NewGamificationUsecase wires the repository with default behaviour.
func NewGamificationUsecase(repo GamificationRepository, logger logrus.FieldLogger) GamificationUsecase {
	return &gamificationUsecase{repo: repo, logger: logger, clock: time.Now}
}

type gamificationUsecase struct {
	repo   GamificationRepository
	logger logrus.FieldLogger
	clock  func() time.Time
}

func (u *gamificationUsecase) Get(ctx context.Context, userID int64) (*models.Gamification, error) {
	return u.repo.Get(ctx, userID)
}

func (u *gamificationUsecase) AddXP(ctx context.Context, userID int64, xp int) (*XPResult, error) {
	if xp < 0 {
		return nil, models.ErrInvalidXP
	}
	g, err := u.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	result := applyXP(g, xp)
	if err := u.repo.Save(ctx, g); err != nil {
		return nil, err
	}
	u.logLevelUp(userID, result)
	return &result, nil
}

func (u *gamificationUsecase) UpdateStreak(ctx context.Context, userID int64) (*StreakResult, error) {
	g, err := u.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	result := applyStreak(g, u.clock())
	if result.AlreadyStudiedToday {
		return &result, nil
	}
	if err := u.repo.Save(ctx, g); err != nil {
		return nil, err
	}
	return &result, nil
}

func (u *gamificationUsecase) AwardBadge(ctx context.Context, userID int64, badge string) ([]string, error) {
	badge = strings.TrimSpace(badge)
	if badge == "" {
		return nil, models.ErrBadgeRequired
	}
	g, err := u.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if g.AddBadge(badge) {
		if err := u.repo.Save(ctx, g); err != nil {
			return nil, err
		}
	}
	return g.Badges, nil
}

func (u *gamificationUsecase) SetMode(ctx context.Context, userID int64, mode models.StudyMode) error {
	if !mode.Valid() {
		return models.ErrInvalidMode
	}
	g, err := u.repo.Get(ctx, userID)
	if err != nil {
		return err
	}
	g.Mode = mode
	return u.repo.Save(ctx, g)
}

// RecordStudy adds studied minutes and experience and counts the day towards
// the streak, all in a single update.
func (u *gamificationUsecase) RecordStudy(ctx context.Context, userID int64, minutes, xp int) (*StudyResult, error) {
	if xp < 0 {
		return nil, models.ErrInvalidXP
	}
	g, err := u.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	before := len(g.Badges)

	g.TotalMinutesStudied += minutes
	result := StudyResult{
		XP:     applyXP(g, xp),
		Streak: applyStreak(g, u.clock()),
	}
	result.NewBadges = append(result.NewBadges, g.Badges[before:]...)

	if err := u.repo.Save(ctx, g); err != nil {
		return nil, err
	}
	u.logLevelUp(userID, result.XP)
	return &result, nil
}

func (u *gamificationUsecase) logLevelUp(userID int64, result XPResult) {
	if result.LeveledUp {
		u.logger.WithFields(logrus.Fields{"user_id": userID, "level": result.Level}).Info("user leveled up")
	}
}

// applyXP adds experience and recomputes the level. Climbing a level earns
// the level up badge.
func applyXP(g *models.Gamification, xp int) XPResult {
	g.XP += xp
	level := models.LevelForXP(g.XP)
	leveledUp := level > g.Level
	g.Level = level
	if leveledUp {
		g.AddBadge(models.BadgeLevelUp)
	}
	return XPResult{XPEarned: xp, TotalXP: g.XP, Level: g.Level, LeveledUp: leveledUp}
}

// applyStreak counts now as a study day. Days are compared as UTC calendar
// dates: the same day leaves the streak alone, the next day extends it and
// any longer gap restarts it at one.
func applyStreak(g *models.Gamification, now time.Time) StreakResult {
	today := utcDate(now)
	if g.LastStudyDate != nil {
		switch models.WholeDays(today.Sub(utcDate(*g.LastStudyDate))) {
		case 0:
			return StreakResult{Streak: g.Streak, AlreadyStudiedToday: true}
		case 1:
			g.Streak++
		default:
			g.Streak = 1
		}
	} else {
		g.Streak = 1
	}

	studied := now.UTC()
	g.LastStudyDate = &studied
	if g.Streak == 7 {
		g.AddBadge(models.BadgeStreak7)
	}
	return StreakResult{Streak: g.Streak}
}

func utcDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
