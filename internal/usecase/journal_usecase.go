package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/example/studyplanner/pkg/models"
)

// DefaultMoodWindowDays is the history returned when no window is requested
const DefaultMoodWindowDays = 7

// ReflectionInput records why a planned task was missed.
type ReflectionInput struct {
	SubjectID  *int64
	ReasonIdx  int
	ReasonText string
}

// MoodInput records how a study block felt.
type MoodInput struct {
	Mood            models.MoodKind
	DurationMinutes int
	Effectiveness   int
	SessionID       *int64
}

// JournalUsecase keeps the student's reflections and moods.
type JournalUsecase interface {
	RecordReflection(ctx context.Context, userID int64, input ReflectionInput) (*models.Reflection, error)
	ListReflections(ctx context.Context, userID int64) ([]models.Reflection, error)
	RecordMood(ctx context.Context, userID int64, input MoodInput) (*models.Mood, error)
	ListMoods(ctx context.Context, userID int64, days int) ([]models.Mood, error)
}

// NewJournalUsecase wires the repositories with default behaviour.
func NewJournalUsecase(reflections ReflectionRepository, moods MoodRepository, subjects SubjectRepository) JournalUsecase {
	return &journalUsecase{
		reflections: reflections,
		moods:       moods,
		subjects:    subjects,
		clock:       time.Now,
	}
}

type journalUsecase struct {
	reflections ReflectionRepository
	moods       MoodRepository
	subjects    SubjectRepository
	clock       func() time.Time
}

func (u *journalUsecase) RecordReflection(ctx context.Context, userID int64, input ReflectionInput) (*models.Reflection, error) {
	if _, ok := models.ReflectionReasons[input.ReasonIdx]; !ok {
		return nil, models.ErrInvalidReflection
	}
	if input.SubjectID != nil {
		if _, err := u.subjects.GetByID(ctx, userID, *input.SubjectID); err != nil {
			return nil, err
		}
	}

	text := strings.TrimSpace(input.ReasonText)
	if text == "" {
		text = models.ReasonName(input.ReasonIdx)
	}
	reflection := &models.Reflection{
		UserID:     userID,
		SubjectID:  input.SubjectID,
		ReasonIdx:  input.ReasonIdx,
		ReasonText: text,
		Date:       u.clock(),
	}
	if err := u.reflections.Create(ctx, reflection); err != nil {
		return nil, err
	}
	return reflection, nil
}

// ListReflections returns every reflection of the user, newest first.
func (u *journalUsecase) ListReflections(ctx context.Context, userID int64) ([]models.Reflection, error) {
	return u.reflections.ListSince(ctx, userID, time.Time{})
}

func (u *journalUsecase) RecordMood(ctx context.Context, userID int64, input MoodInput) (*models.Mood, error) {
	if !input.Mood.Valid() {
		return nil, models.ErrInvalidMood
	}
	mood := &models.Mood{
		UserID:          userID,
		Mood:            input.Mood,
		Time:            u.clock(),
		DurationMinutes: max(input.DurationMinutes, 0),
		Effectiveness:   normalizeEffectiveness(input.Effectiveness),
		SessionID:       input.SessionID,
	}
	if err := u.moods.Create(ctx, mood); err != nil {
		return nil, err
	}
	return mood, nil
}

// ListMoods returns the moods of the last days, newest first.
func (u *journalUsecase) ListMoods(ctx context.Context, userID int64, days int) ([]models.Mood, error) {
	if days <= 0 {
		days = DefaultMoodWindowDays
	}
	return u.moods.ListSince(ctx, userID, u.clock().AddDate(0, 0, -days))
}

// normalizeEffectiveness treats a missing rating as average and clamps the rest.
func normalizeEffectiveness(v int) int {
	if v == 0 {
		return models.DefaultEffectiveness
	}
	return min(max(v, models.MinEffectiveness), models.MaxEffectiveness)
}
