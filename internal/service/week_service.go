package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/lesson-planner-api/internal/cycle"
	"github.com/noah-isme/lesson-planner-api/internal/dto"
	"github.com/noah-isme/lesson-planner-api/internal/models"
)

const (
	schoolDaysPerWeek       = 5
	defaultFetchConcurrency = 8
)

type calendarSource interface {
	Calendar(ctx context.Context) (*cycle.Calendar, *models.Settings, error)
}

type lessonsByDate interface {
	ListByDate(ctx context.Context, date time.Time) ([]models.Lesson, error)
}

type subjectDirectory interface {
	FindByIDs(ctx context.Context, ids []string) (map[string]models.Subject, error)
}

// WeekService assembles the Monday to Friday timetable view.
type WeekService struct {
	calendars   calendarSource
	lessons     lessonsByDate
	subjects    subjectDirectory
	attachments AttachmentSources
	metrics     *MetricsService
	logger      *zap.Logger
	concurrency int
}

// NewWeekService constructs a WeekService. concurrency bounds in-flight store reads.
func NewWeekService(calendars calendarSource, lessons lessonsByDate, subjects subjectDirectory, attachments AttachmentSources, metrics *MetricsService, logger *zap.Logger, concurrency int) *WeekService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if concurrency <= 0 {
		concurrency = defaultFetchConcurrency
	}
	return &WeekService{
		calendars:   calendars,
		lessons:     lessons,
		subjects:    subjects,
		attachments: attachments,
		metrics:     metrics,
		logger:      logger,
		concurrency: concurrency,
	}
}

// AssembleWeek builds the timetable for the week containing weekStart. Any
// store failure aborts the whole assembly.
func (s *WeekService) AssembleWeek(ctx context.Context, weekStart time.Time) (*dto.WeekTimetable, error) {
	started := time.Now()
	week, lessonCount, err := s.assemble(ctx, weekStart)
	s.metrics.ObserveWeekAssembly(time.Since(started), lessonCount, err)
	if err != nil {
		s.logger.Error("week assembly failed", zap.String("week_start", cycle.FormatDate(weekStart)), zap.Error(err))
		return nil, err
	}
	return week, nil
}

func (s *WeekService) assemble(ctx context.Context, weekStart time.Time) (*dto.WeekTimetable, int, error) {
	cal, settings, err := s.calendars.Calendar(ctx)
	if err != nil {
		return nil, 0, err
	}

	monday := cycle.MondayOf(weekStart)
	week := &dto.WeekTimetable{
		WeekStart:     cycle.FormatDate(monday),
		WeekEnd:       cycle.FormatDate(monday.AddDate(0, 0, schoolDaysPerWeek-1)),
		PeriodsPerDay: settings.PeriodsPerDay,
		Days:          make([]dto.DayInfo, schoolDaysPerWeek),
	}

	lessonsPerDay := make([][]models.Lesson, schoolDaysPerWeek)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i := 0; i < schoolDaysPerWeek; i++ {
		i := i
		result := cal.CycleDayFor(monday.AddDate(0, 0, i))
		week.Days[i] = dto.NewDayInfo(result)
		if !result.Instructional() {
			continue
		}
		if week.PrimaryWeek == nil {
			week.PrimaryWeek = week.Days[i].WeekLabel
		}
		g.Go(func() error {
			lessons, err := s.lessons.ListByDate(gctx, result.Date)
			if err != nil {
				return fmt.Errorf("lessons on %s: %w", cycle.FormatDate(result.Date), err)
			}
			sort.SliceStable(lessons, func(a, b int) bool { return lessons[a].Period < lessons[b].Period })
			lessonsPerDay[i] = lessons
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, internalError(err, "failed to load lessons for week")
	}

	subjects, err := s.subjects.FindByIDs(ctx, subjectIDs(lessonsPerDay))
	if err != nil {
		return nil, 0, internalError(err, "failed to resolve subjects for week")
	}

	total := 0
	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, lessons := range lessonsPerDay {
		if len(lessons) == 0 {
			continue
		}
		details := make([]dto.LessonDetail, len(lessons))
		for j, lesson := range lessons {
			var subject *models.Subject
			if found, ok := subjects[lesson.SubjectID]; ok {
				subject = &found
			}
			details[j] = dto.NewLessonDetail(lesson, subject)
			s.attachments.schedule(gctx, g, &details[j])
		}
		week.Days[i].Lessons = details
		total += len(details)
	}
	if err := g.Wait(); err != nil {
		return nil, 0, internalError(err, "failed to load lesson attachments for week")
	}

	return week, total, nil
}

func subjectIDs(lessonsPerDay [][]models.Lesson) []string {
	seen := make(map[string]struct{})
	ids := make([]string, 0)
	for _, lessons := range lessonsPerDay {
		for _, lesson := range lessons {
			if _, ok := seen[lesson.SubjectID]; ok {
				continue
			}
			seen[lesson.SubjectID] = struct{}{}
			ids = append(ids, lesson.SubjectID)
		}
	}
	return ids
}

