package tui

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lesson-planner-api/internal/dto"
	"github.com/noah-isme/lesson-planner-api/internal/models"
)

type fakePlanner struct {
	mu        sync.Mutex
	week      *dto.WeekTimetable
	subjects  []models.Subject
	weekDates []time.Time
	toggled   []string
	exported  []string
	err       error
}

func (f *fakePlanner) Week(_ context.Context, date time.Time) (*dto.WeekTimetable, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.weekDates = append(f.weekDates, date)
	return f.week, f.err
}

func (f *fakePlanner) Subjects(context.Context, bool) ([]models.Subject, error) {
	return f.subjects, f.err
}

func (f *fakePlanner) ToggleTodo(_ context.Context, lessonID, todoID string) (*dto.TodoItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.toggled = append(f.toggled, lessonID+"/"+todoID)
	return &dto.TodoItem{ID: todoID, LessonID: lessonID, IsCompleted: true}, f.err
}

func (f *fakePlanner) ExportWeek(_ context.Context, date time.Time, format string) (*dto.WeekExportResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exported = append(f.exported, date.Format("2006-01-02")+"."+format)
	if f.err != nil {
		return nil, f.err
	}
	return &dto.WeekExportResult{URL: "/exports/download?token=abc", Format: format, ExpiresAt: "2025-01-29T10:00:00Z"}, nil
}

func newTestApp(t *testing.T, api *fakePlanner) *App {
	t.Helper()
	app := NewApp(context.Background(), NewStore(), api, Config{ServerURL: defaultServerURL, ExportFormat: "pdf"})
	app.now = func() time.Time { return testNow }
	t.Cleanup(app.Close)
	app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return app
}

// run executes cmd and feeds every resulting message back into the app.
func run(app *App, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			run(app, c)
		}
		return
	}
	_, next := app.Update(msg)
	run(app, next)
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestAppInitLoadsSubjectsAndWeek(t *testing.T) {
	api := &fakePlanner{week: sampleWeek(), subjects: []models.Subject{{ID: "sub-maths", Name: "Maths"}}}
	app := newTestApp(t, api)

	run(app, app.Init())

	state := app.store.State()
	require.NotNil(t, state.Week)
	assert.Equal(t, time.Date(2025, 1, 27, 0, 0, 0, 0, time.UTC), state.WeekStart)
	assert.Len(t, state.Subjects, 1)
	assert.Len(t, app.sidebar.Items(), 4)

	view := app.View()
	assert.Contains(t, view, "Week of 2025-01-27")
	assert.Contains(t, view, "P1 Maths · Fractions")
	assert.Contains(t, view, "No school")
}

func TestAppNavigatesWeeks(t *testing.T) {
	api := &fakePlanner{week: sampleWeek()}
	app := newTestApp(t, api)
	run(app, app.Init())

	_, cmd := app.Update(key("l"))
	run(app, cmd)
	assert.Equal(t, time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC), app.store.State().WeekStart)

	_, cmd = app.Update(key("h"))
	run(app, cmd)
	_, cmd = app.Update(key("h"))
	run(app, cmd)
	assert.Equal(t, time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC), app.store.State().WeekStart)

	_, cmd = app.Update(key("t"))
	run(app, cmd)
	assert.Equal(t, time.Date(2025, 1, 27, 0, 0, 0, 0, time.UTC), app.store.State().WeekStart)
	assert.Len(t, api.weekDates, 5)
}

func TestAppTogglesFirstOpenTodoAndRefetches(t *testing.T) {
	api := &fakePlanner{week: sampleWeek()}
	app := newTestApp(t, api)
	run(app, app.Init())

	_, cmd := app.Update(key("x"))
	run(app, cmd)

	assert.Equal(t, []string{"l1/t1"}, api.toggled)
	assert.Len(t, api.weekDates, 2)
	assert.Equal(t, "", app.store.State().Notice)
}

func TestAppToggleWithoutOpenTodos(t *testing.T) {
	api := &fakePlanner{week: sampleWeek()}
	app := newTestApp(t, api)
	run(app, app.Init())

	app.Update(key("j"))
	_, cmd := app.Update(key("x"))
	assert.Nil(t, cmd)
	assert.Empty(t, api.toggled)
	assert.Equal(t, "No open todos on this lesson", app.store.State().Notice)
}

func TestAppExportShowsLink(t *testing.T) {
	api := &fakePlanner{week: sampleWeek()}
	app := newTestApp(t, api)
	run(app, app.Init())

	_, cmd := app.Update(key("e"))
	run(app, cmd)

	assert.Equal(t, []string{"2025-01-27.pdf"}, api.exported)
	assert.Contains(t, app.store.State().Notice, "/exports/download?token=abc")
}

func TestAppSidebarSelection(t *testing.T) {
	api := &fakePlanner{week: sampleWeek()}
	app := newTestApp(t, api)
	run(app, app.Init())

	app.store.Dispatch(SelectionChanged{Selection: TabSelection{Tab: TabTodos}})
	app.Update(tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, focusSidebar, app.focus)

	app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, focusLessons, app.focus)
	assert.Equal(t, TabSelection{Tab: TabWeek}, app.store.State().Selection)
}

func TestAppQuit(t *testing.T) {
	app := newTestApp(t, &fakePlanner{})
	_, cmd := app.Update(key("q"))
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}
