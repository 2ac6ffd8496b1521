// Package tui is the terminal client for the lesson planner. It follows the
// bubbletea model/update/view loop, with all planner data held in a Store
// that is only changed through Dispatch.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/noah-isme/lesson-planner-api/internal/cycle"
	"github.com/noah-isme/lesson-planner-api/internal/dto"
	"github.com/noah-isme/lesson-planner-api/internal/models"
)

// PlannerAPI is the subset of the planner client the TUI uses.
type PlannerAPI interface {
	Week(ctx context.Context, date time.Time) (*dto.WeekTimetable, error)
	Subjects(ctx context.Context, activeOnly bool) ([]models.Subject, error)
	ToggleTodo(ctx context.Context, lessonID, todoID string) (*dto.TodoItem, error)
	ExportWeek(ctx context.Context, date time.Time, format string) (*dto.WeekExportResult, error)
}

type focusArea int

const (
	focusSidebar focusArea = iota
	focusLessons
)

type weekLoadedMsg struct {
	seq  uint64
	week *dto.WeekTimetable
	err  error
}

type subjectsLoadedMsg struct {
	subjects []models.Subject
	err      error
}

type mutationDoneMsg struct {
	err     error
	notice  string
	refetch bool
}

// sidebarItem implements list.Item for the sidebar.
type sidebarItem struct {
	title string
	desc  string
	sel   SidebarSelection
}

func (i sidebarItem) Title() string       { return i.title }
func (i sidebarItem) Description() string { return i.desc }
func (i sidebarItem) FilterValue() string { return i.title }

// App is the bubbletea model.
type App struct {
	store   *Store
	api     PlannerAPI
	cfg     Config
	ctx     context.Context
	now     func() time.Time
	sidebar list.Model
	focus   focusArea

	width  int
	height int

	unsubscribe  func()
	lastSubjects []models.Subject
}

// NewApp wires a store and an API client into a bubbletea model. The context
// bounds every request the app issues.
func NewApp(ctx context.Context, store *Store, api PlannerAPI, cfg Config) *App {
	sidebar := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	sidebar.Title = "Planner"
	sidebar.SetShowStatusBar(false)
	sidebar.SetFilteringEnabled(false)
	sidebar.SetShowHelp(false)

	a := &App{
		store:   store,
		api:     api,
		cfg:     cfg,
		ctx:     ctx,
		now:     time.Now,
		sidebar: sidebar,
		focus:   focusLessons,
	}
	a.setSidebarItems(nil)
	a.unsubscribe = store.Subscribe(a.onStateChange)
	return a
}

// Close detaches the app from its store.
func (a *App) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
		a.unsubscribe = nil
	}
}

func (a *App) onStateChange(state State) {
	if sameSubjects(a.lastSubjects, state.Subjects) {
		return
	}
	a.lastSubjects = state.Subjects
	a.setSidebarItems(state.Subjects)
}

func sameSubjects(a, b []models.Subject) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID || a[i].Name != b[i].Name {
			return false
		}
	}
	return true
}

func (a *App) setSidebarItems(subjects []models.Subject) {
	items := []list.Item{
		sidebarItem{title: TabWeek.String(), desc: "All lessons", sel: TabSelection{Tab: TabWeek}},
		sidebarItem{title: TabTodos.String(), desc: "Lessons with unfinished todos", sel: TabSelection{Tab: TabTodos}},
		sidebarItem{title: TabSettings.String(), desc: "Cycle calendar", sel: TabSelection{Tab: TabSettings}},
	}
	for _, subject := range subjects {
		desc := "Subject"
		if subject.Code != nil {
			desc = *subject.Code
		}
		items = append(items, sidebarItem{
			title: subject.Name,
			desc:  desc,
			sel:   SubjectSelection{SubjectID: subject.ID, Name: subject.Name},
		})
	}
	a.sidebar.SetItems(items)
}

// Init loads subjects and the current week.
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.fetchSubjects(), a.fetchWeek(a.now()))
}

func (a *App) fetchWeek(date time.Time) tea.Cmd {
	start := cycle.MondayOf(date)
	a.store.Dispatch(WeekRequested{Start: start, At: a.now()})
	seq := a.store.WeekSeq()
	return func() tea.Msg {
		week, err := a.api.Week(a.ctx, start)
		return weekLoadedMsg{seq: seq, week: week, err: err}
	}
}

func (a *App) fetchSubjects() tea.Cmd {
	a.store.Dispatch(SubjectsRequested{At: a.now()})
	activeOnly := a.cfg.ActiveOnly
	return func() tea.Msg {
		subjects, err := a.api.Subjects(a.ctx, activeOnly)
		return subjectsLoadedMsg{subjects: subjects, err: err}
	}
}

func (a *App) toggleSelectedTodo() tea.Cmd {
	lesson, ok := selectedLesson(a.store.State())
	if !ok {
		return nil
	}
	var todo *dto.TodoItem
	for i := range lesson.Todos {
		if !lesson.Todos[i].IsCompleted {
			todo = &lesson.Todos[i]
			break
		}
	}
	if todo == nil {
		a.store.Dispatch(NoticeShown{Text: "No open todos on this lesson"})
		return nil
	}
	a.store.Dispatch(MutationStarted{Description: "Completing " + todo.Content, At: a.now()})
	lessonID, todoID := lesson.ID, todo.ID
	return func() tea.Msg {
		_, err := a.api.ToggleTodo(a.ctx, lessonID, todoID)
		return mutationDoneMsg{err: err, refetch: true}
	}
}

func (a *App) exportWeek() tea.Cmd {
	state := a.store.State()
	if state.WeekStart.IsZero() {
		return nil
	}
	a.store.Dispatch(MutationStarted{Description: "Exporting week", At: a.now()})
	start, format := state.WeekStart, a.cfg.ExportFormat
	return func() tea.Msg {
		result, err := a.api.ExportWeek(a.ctx, start, format)
		if err != nil {
			return mutationDoneMsg{err: err}
		}
		return mutationDoneMsg{notice: fmt.Sprintf("Export ready: %s (expires %s)", result.URL, result.ExpiresAt)}
	}
}

// Update applies a message and returns the next command.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.sidebar.SetSize(sidebarWidth, max(0, msg.Height-4))
		return a, nil

	case weekLoadedMsg:
		a.store.Dispatch(WeekLoaded{Seq: msg.seq, Week: msg.week, Err: msg.err, At: a.now()})
		return a, nil

	case subjectsLoadedMsg:
		a.store.Dispatch(SubjectsLoaded{Subjects: msg.subjects, Err: msg.err, At: a.now()})
		return a, nil

	case mutationDoneMsg:
		a.store.Dispatch(MutationFinished{Err: msg.err, At: a.now()})
		if msg.err == nil && msg.notice != "" {
			a.store.Dispatch(NoticeShown{Text: msg.notice})
		}
		if msg.err == nil && msg.refetch {
			return a, a.fetchWeek(a.store.State().WeekStart)
		}
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	state := a.store.State()
	switch msg.String() {
	case "ctrl+c", "q":
		a.Close()
		return a, tea.Quit
	case "tab":
		if a.focus == focusSidebar {
			a.focus = focusLessons
		} else {
			a.focus = focusSidebar
		}
		return a, nil
	case "left", "h":
		return a, a.fetchWeek(state.WeekStart.AddDate(0, 0, -7))
	case "right", "l":
		return a, a.fetchWeek(state.WeekStart.AddDate(0, 0, 7))
	case "t":
		return a, a.fetchWeek(a.now())
	case "r":
		return a, tea.Batch(a.fetchSubjects(), a.fetchWeek(state.WeekStart))
	case "e":
		return a, a.exportWeek()
	}

	if a.focus == focusSidebar {
		if msg.String() == "enter" {
			if item, ok := a.sidebar.SelectedItem().(sidebarItem); ok {
				a.store.Dispatch(SelectionChanged{Selection: item.sel})
				a.focus = focusLessons
			}
			return a, nil
		}
		var cmd tea.Cmd
		a.sidebar, cmd = a.sidebar.Update(msg)
		return a, cmd
	}

	switch msg.String() {
	case "up", "k":
		a.store.Dispatch(CursorMoved{Delta: -1})
	case "down", "j":
		a.store.Dispatch(CursorMoved{Delta: 1})
	case "x", " ":
		return a, a.toggleSelectedTodo()
	}
	return a, nil
}
