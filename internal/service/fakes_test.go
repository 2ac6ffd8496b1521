package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/lesson-planner-api/internal/cycle"
	"github.com/noah-isme/lesson-planner-api/internal/models"
	appErrors "github.com/noah-isme/lesson-planner-api/pkg/errors"
)

type memSettingsRepo struct {
	settings *models.Settings
	getErr   error
	creates  int
	updates  int
}

func (r *memSettingsRepo) Get(ctx context.Context) (*models.Settings, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	if r.settings == nil {
		return nil, sql.ErrNoRows
	}
	clone := *r.settings
	return &clone, nil
}

func (r *memSettingsRepo) Create(ctx context.Context, settings *models.Settings) error {
	r.creates++
	if r.settings == nil {
		settings.ID = models.SettingsID
		clone := *settings
		r.settings = &clone
	}
	return nil
}

func (r *memSettingsRepo) Update(ctx context.Context, settings *models.Settings) error {
	r.updates++
	clone := *settings
	r.settings = &clone
	return nil
}

type memExclusionRepo struct {
	items   map[time.Time]models.ExclusionDate
	listErr error
}

func newMemExclusionRepo(dates ...time.Time) *memExclusionRepo {
	repo := &memExclusionRepo{items: map[time.Time]models.ExclusionDate{}}
	for _, d := range dates {
		repo.items[d] = models.ExclusionDate{ID: uuid.NewString(), Date: d}
	}
	return repo
}

func (r *memExclusionRepo) List(ctx context.Context) ([]models.ExclusionDate, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]models.ExclusionDate, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r *memExclusionRepo) FindByDate(ctx context.Context, date time.Time) (*models.ExclusionDate, error) {
	item, ok := r.items[date]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &item, nil
}

func (r *memExclusionRepo) Create(ctx context.Context, exclusion *models.ExclusionDate) error {
	exclusion.ID = uuid.NewString()
	r.items[exclusion.Date] = *exclusion
	return nil
}

func (r *memExclusionRepo) DeleteByDate(ctx context.Context, date time.Time) error {
	if _, ok := r.items[date]; !ok {
		return sql.ErrNoRows
	}
	delete(r.items, date)
	return nil
}

type memCacheRepo struct {
	mu   sync.Mutex
	data map[string][]byte
	gets int
	sets int
}

func newMemCacheRepo() *memCacheRepo {
	return &memCacheRepo{data: map[string][]byte{}}
}

func (r *memCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gets++
	raw, ok := r.data[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (r *memCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	r.sets++
	r.data[key] = raw
	return nil
}

func (r *memCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range r.data {
		if strings.HasPrefix(key, prefix) {
			delete(r.data, key)
		}
	}
	return nil
}

// calendarStub serves a fixed calendar built from a fortnightly rotation
// anchored on Monday 2025-01-27.
type calendarStub struct {
	cal      *cycle.Calendar
	settings *models.Settings
	err      error
}

func newCalendarStub(exclusions ...time.Time) *calendarStub {
	anchor := time.Date(2025, 1, 27, 0, 0, 0, 0, time.UTC)
	cal, err := cycle.New(cycle.Config{Length: 10, Anchor: anchor, ExclusionDates: exclusions})
	if err != nil {
		panic(err)
	}
	return &calendarStub{
		cal:      cal,
		settings: &models.Settings{ID: models.SettingsID, PeriodsPerDay: 6, CycleLength: 10, CycleStartDate: &anchor},
	}
}

func (s *calendarStub) Calendar(ctx context.Context) (*cycle.Calendar, *models.Settings, error) {
	if s.err != nil {
		return nil, nil, s.err
	}
	return s.cal, s.settings, nil
}

type memLessonRepo struct {
	mu        sync.Mutex
	lessons   map[string]models.Lesson
	failDates map[time.Time]error
	listCalls int
}

func newMemLessonRepo(lessons ...models.Lesson) *memLessonRepo {
	repo := &memLessonRepo{lessons: map[string]models.Lesson{}, failDates: map[time.Time]error{}}
	for _, lesson := range lessons {
		repo.lessons[lesson.ID] = lesson
	}
	return repo
}

func (r *memLessonRepo) ListByDate(ctx context.Context, date time.Time) ([]models.Lesson, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	if err := r.failDates[date]; err != nil {
		return nil, err
	}
	out := make([]models.Lesson, 0)
	for _, lesson := range r.lessons {
		if lesson.Date.Equal(date) {
			out = append(out, lesson)
		}
	}
	// map order is random; sorting by id leaves period ordering to the caller
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *memLessonRepo) FindByID(ctx context.Context, id string) (*models.Lesson, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lesson, ok := r.lessons[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &lesson, nil
}

func (r *memLessonRepo) FindBySlot(ctx context.Context, date time.Time, period int) (*models.Lesson, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, lesson := range r.lessons {
		if lesson.Date.Equal(date) && lesson.Period == period {
			return &lesson, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *memLessonRepo) Create(ctx context.Context, lesson *models.Lesson) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	lesson.ID = uuid.NewString()
	r.lessons[lesson.ID] = *lesson
	return nil
}

func (r *memLessonRepo) Update(ctx context.Context, lesson *models.Lesson) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lessons[lesson.ID] = *lesson
	return nil
}

func (r *memLessonRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.lessons[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.lessons, id)
	return nil
}

type memSubjectRepo struct {
	subjects map[string]models.Subject
	deleted  []string
}

func newMemSubjectRepo(subjects ...models.Subject) *memSubjectRepo {
	repo := &memSubjectRepo{subjects: map[string]models.Subject{}}
	for _, subject := range subjects {
		repo.subjects[subject.ID] = subject
	}
	return repo
}

func (r *memSubjectRepo) List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, error) {
	out := make([]models.Subject, 0)
	for _, subject := range r.subjects {
		if filter.IsActive != nil && subject.IsActive != *filter.IsActive {
			continue
		}
		out = append(out, subject)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memSubjectRepo) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	subject, ok := r.subjects[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &subject, nil
}

func (r *memSubjectRepo) FindByIDs(ctx context.Context, ids []string) (map[string]models.Subject, error) {
	out := make(map[string]models.Subject, len(ids))
	for _, id := range ids {
		if subject, ok := r.subjects[id]; ok {
			out[id] = subject
		}
	}
	return out, nil
}

func (r *memSubjectRepo) Create(ctx context.Context, subject *models.Subject) error {
	subject.ID = uuid.NewString()
	r.subjects[subject.ID] = *subject
	return nil
}

func (r *memSubjectRepo) Update(ctx context.Context, subject *models.Subject) error {
	r.subjects[subject.ID] = *subject
	return nil
}

func (r *memSubjectRepo) Delete(ctx context.Context, id string) error {
	r.deleted = append(r.deleted, id)
	delete(r.subjects, id)
	return nil
}

// memAttachments implements the three attachment listers over fixed data.
type memAttachments struct {
	notes     map[string][]models.Note
	resources map[string][]models.Resource
	todos     map[string][]models.Todo
	err       error
}

func newMemAttachments() *memAttachments {
	return &memAttachments{
		notes:     map[string][]models.Note{},
		resources: map[string][]models.Resource{},
		todos:     map[string][]models.Todo{},
	}
}

func (m *memAttachments) sources() AttachmentSources {
	return AttachmentSources{Notes: noteLister{m}, Resources: resourceLister{m}, Todos: todoLister{m}}
}

type noteLister struct{ m *memAttachments }

func (l noteLister) ListByLesson(ctx context.Context, lessonID string) ([]models.Note, error) {
	if l.m.err != nil {
		return nil, l.m.err
	}
	return l.m.notes[lessonID], nil
}

type resourceLister struct{ m *memAttachments }

func (l resourceLister) ListByLesson(ctx context.Context, lessonID string) ([]models.Resource, error) {
	return l.m.resources[lessonID], nil
}

type todoLister struct{ m *memAttachments }

func (l todoLister) ListByLesson(ctx context.Context, lessonID string) ([]models.Todo, error) {
	return l.m.todos[lessonID], nil
}

func lessonOn(id string, date time.Time, period int, subjectID string) models.Lesson {
	return models.Lesson{ID: id, Date: date, Period: period, SubjectID: subjectID, Title: strPtrOrNil(fmt.Sprintf("lesson %s", id))}
}

func strPtrOrNil(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
