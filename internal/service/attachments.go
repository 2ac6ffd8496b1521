package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/lesson-planner-api/internal/dto"
	"github.com/noah-isme/lesson-planner-api/internal/models"
)

// NoteLister reads a lesson's notes in insertion order.
type NoteLister interface {
	ListByLesson(ctx context.Context, lessonID string) ([]models.Note, error)
}

// ResourceLister reads a lesson's resources in insertion order.
type ResourceLister interface {
	ListByLesson(ctx context.Context, lessonID string) ([]models.Resource, error)
}

// TodoLister reads a lesson's todos in insertion order.
type TodoLister interface {
	ListByLesson(ctx context.Context, lessonID string) ([]models.Todo, error)
}

// AttachmentSources groups the stores lesson attachments are read from.
type AttachmentSources struct {
	Notes     NoteLister
	Resources ResourceLister
	Todos     TodoLister
}

// schedule queues the three attachment fetches for detail on g. Each goroutine
// writes a distinct field of detail.
func (a AttachmentSources) schedule(ctx context.Context, g *errgroup.Group, detail *dto.LessonDetail) {
	lessonID := detail.ID
	g.Go(func() error {
		notes, err := a.Notes.ListByLesson(ctx, lessonID)
		if err != nil {
			return fmt.Errorf("notes for lesson %s: %w", lessonID, err)
		}
		if notes != nil {
			detail.Notes = notes
		}
		return nil
	})
	g.Go(func() error {
		resources, err := a.Resources.ListByLesson(ctx, lessonID)
		if err != nil {
			return fmt.Errorf("resources for lesson %s: %w", lessonID, err)
		}
		if resources != nil {
			detail.Resources = resources
		}
		return nil
	})
	g.Go(func() error {
		todos, err := a.Todos.ListByLesson(ctx, lessonID)
		if err != nil {
			return fmt.Errorf("todos for lesson %s: %w", lessonID, err)
		}
		detail.Todos = dto.NewTodoItems(todos)
		return nil
	})
}

// load fetches the attachments of a single lesson.
func (a AttachmentSources) load(ctx context.Context, detail *dto.LessonDetail) error {
	g, gctx := errgroup.WithContext(ctx)
	a.schedule(gctx, g, detail)
	return g.Wait()
}
