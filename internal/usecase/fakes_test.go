package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/example/studyplanner/pkg/models"
)

type fakeUserRepo struct {
	mu    sync.RWMutex
	seq   int64
	items map[int64]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{items: make(map[int64]*models.User)}
}

func (r *fakeUserRepo) Upsert(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.items {
		if existing.TelegramID == user.TelegramID {
			existing.Username = user.Username
			existing.FirstName = user.FirstName
			existing.LastName = user.LastName
			*user = *existing
			return nil
		}
	}
	r.seq++
	copy := *user
	copy.ID = r.seq
	r.items[copy.ID] = &copy
	*user = copy
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if u, ok := r.items[id]; ok {
		copy := *u
		return &copy, nil
	}
	return nil, models.ErrUserNotFound
}

func (r *fakeUserRepo) GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.items {
		if u.TelegramID == telegramID {
			copy := *u
			return &copy, nil
		}
	}
	return nil, models.ErrUserNotFound
}

func (r *fakeUserRepo) UpdateNotifications(ctx context.Context, id int64, enabled bool, hour int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.items[id]
	if !ok {
		return models.ErrUserNotFound
	}
	u.NotificationEnabled = enabled
	u.NotificationHour = hour
	return nil
}

func (r *fakeUserRepo) ListNotificationEnabled(ctx context.Context) ([]models.User, error) {
	return r.filter(func(u *models.User) bool { return u.NotificationEnabled }), nil
}

func (r *fakeUserRepo) ListForNotification(ctx context.Context, hour int) ([]models.User, error) {
	return r.filter(func(u *models.User) bool { return u.NotificationEnabled && u.NotificationHour == hour }), nil
}

func (r *fakeUserRepo) filter(keep func(*models.User) bool) []models.User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := []models.User{}
	for _, u := range r.items {
		if keep(u) {
			users = append(users, *u)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users
}

type fakeSubjectRepo struct {
	mu    sync.RWMutex
	seq   int64
	items map[int64]*models.Subject
}

func newFakeSubjectRepo() *fakeSubjectRepo {
	return &fakeSubjectRepo{items: make(map[int64]*models.Subject)}
}

func (r *fakeSubjectRepo) Create(ctx context.Context, subject *models.Subject) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	subject.ID = r.seq
	copy := *subject
	r.items[copy.ID] = &copy
	return nil
}

func (r *fakeSubjectRepo) GetByID(ctx context.Context, userID, id int64) (*models.Subject, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.items[id]
	if !ok || s.UserID != userID || s.IsDeleted {
		return nil, models.ErrSubjectNotFound
	}
	copy := *s
	return &copy, nil
}

func (r *fakeSubjectRepo) LoadActiveSubjects(ctx context.Context, userID int64) ([]models.Subject, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	subjects := []models.Subject{}
	for _, s := range r.items {
		if s.UserID == userID && !s.IsDeleted {
			subjects = append(subjects, *s)
		}
	}
	sort.Slice(subjects, func(i, j int) bool { return subjects[i].ID < subjects[j].ID })
	return subjects, nil
}

func (r *fakeSubjectRepo) Update(ctx context.Context, subject *models.Subject) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.items[subject.ID]
	if !ok || s.UserID != subject.UserID || s.IsDeleted {
		return models.ErrSubjectNotFound
	}
	copy := *subject
	r.items[copy.ID] = &copy
	return nil
}

func (r *fakeSubjectRepo) SoftDelete(ctx context.Context, userID, id int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.items[id]
	if !ok || s.UserID != userID || s.IsDeleted {
		return models.ErrSubjectNotFound
	}
	s.IsDeleted = true
	s.DeletedAt = &at
	return nil
}

type fakeGamificationRepo struct {
	mu    sync.RWMutex
	items map[int64]*models.Gamification
	saves int
}

func newFakeGamificationRepo(userIDs ...int64) *fakeGamificationRepo {
	r := &fakeGamificationRepo{items: make(map[int64]*models.Gamification)}
	for _, id := range userIDs {
		r.Ensure(context.Background(), id)
	}
	return r
}

func (r *fakeGamificationRepo) Ensure(ctx context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[userID]; !ok {
		r.items[userID] = &models.Gamification{UserID: userID, Level: 1, Mode: models.ModeNormal, Badges: []string{}}
	}
	return nil
}

func (r *fakeGamificationRepo) Get(ctx context.Context, userID int64) (*models.Gamification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.items[userID]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	copy := *g
	copy.Badges = append([]string{}, g.Badges...)
	return &copy, nil
}

func (r *fakeGamificationRepo) Save(ctx context.Context, g *models.Gamification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[g.UserID]; !ok {
		return models.ErrUserNotFound
	}
	copy := *g
	copy.Badges = append([]string{}, g.Badges...)
	r.items[g.UserID] = &copy
	r.saves++
	return nil
}

type fakeSessionRepo struct {
	mu    sync.RWMutex
	seq   int64
	items []models.StudySession
}

func (r *fakeSessionRepo) Create(ctx context.Context, session *models.StudySession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	session.ID = r.seq
	r.items = append(r.items, *session)
	return nil
}

func (r *fakeSessionRepo) ListRecent(ctx context.Context, userID int64, limit int) ([]models.StudySession, error) {
	sessions, _ := r.ListSince(ctx, userID, time.Time{})
	sort.SliceStable(sessions, func(i, j int) bool { return sessions[i].Date.After(sessions[j].Date) })
	if limit > 0 && len(sessions) > limit {
		sessions = sessions[:limit]
	}
	return sessions, nil
}

func (r *fakeSessionRepo) ListSince(ctx context.Context, userID int64, since time.Time) ([]models.StudySession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sessions := []models.StudySession{}
	for _, s := range r.items {
		if s.UserID == userID && !s.Date.Before(since) {
			sessions = append(sessions, s)
		}
	}
	return sessions, nil
}

type fakeReflectionRepo struct {
	mu    sync.RWMutex
	seq   int64
	items []models.Reflection
}

func (r *fakeReflectionRepo) Create(ctx context.Context, reflection *models.Reflection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	reflection.ID = r.seq
	r.items = append(r.items, *reflection)
	return nil
}

func (r *fakeReflectionRepo) ListSince(ctx context.Context, userID int64, since time.Time) ([]models.Reflection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reflections := []models.Reflection{}
	for i := len(r.items) - 1; i >= 0; i-- {
		if ref := r.items[i]; ref.UserID == userID && !ref.Date.Before(since) {
			reflections = append(reflections, ref)
		}
	}
	return reflections, nil
}

type fakeMoodRepo struct {
	mu    sync.RWMutex
	seq   int64
	items []models.Mood
}

func (r *fakeMoodRepo) Create(ctx context.Context, mood *models.Mood) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	mood.ID = r.seq
	r.items = append(r.items, *mood)
	return nil
}

func (r *fakeMoodRepo) ListSince(ctx context.Context, userID int64, since time.Time) ([]models.Mood, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	moods := []models.Mood{}
	for i := len(r.items) - 1; i >= 0; i-- {
		if m := r.items[i]; m.UserID == userID && !m.Time.Before(since) {
			moods = append(moods, m)
		}
	}
	return moods, nil
}

type fakePlanStore struct {
	mu      sync.RWMutex
	records []models.PlanRecord
}

func (s *fakePlanStore) Save(ctx context.Context, record *models.PlanRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, *record)
	return nil
}

func (s *fakePlanStore) Latest(ctx context.Context, userID int64) (*models.PlanRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.records) - 1; i >= 0; i-- {
		if s.records[i].UserID == userID {
			record := s.records[i]
			return &record, nil
		}
	}
	return nil, models.ErrPlanNotFound
}

// fakeTransactor runs fn directly and counts the calls
type fakeTransactor struct {
	calls int
}

func (f *fakeTransactor) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

// failingSessionRepo rejects every insert
type failingSessionRepo struct {
	fakeSessionRepo
	err error
}

func (r *failingSessionRepo) Create(ctx context.Context, session *models.StudySession) error {
	return r.err
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }
