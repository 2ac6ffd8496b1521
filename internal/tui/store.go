package tui

import (
	"sync"
	"time"

	"github.com/noah-isme/lesson-planner-api/internal/dto"
	"github.com/noah-isme/lesson-planner-api/internal/models"
	"github.com/noah-isme/lesson-planner-api/pkg/plannerclient"
)

// State is everything the views render. Views receive it by value.
type State struct {
	WeekStart time.Time
	Week      *dto.WeekTimetable
	Subjects  []models.Subject
	Selection SidebarSelection
	Cursor    int
	Notice    string

	WeekRequest     plannerclient.RequestState
	SubjectsRequest plannerclient.RequestState
	MutationRequest plannerclient.RequestState

	weekSeq uint64
}

// Action is a state change applied through Store.Dispatch.
type Action interface {
	isAction()
}

// WeekRequested starts loading the week containing Start.
type WeekRequested struct {
	Start time.Time
	At    time.Time
}

// WeekLoaded finishes the week request numbered Seq.
type WeekLoaded struct {
	Seq  uint64
	Week *dto.WeekTimetable
	Err  error
	At   time.Time
}

// SubjectsRequested starts loading the sidebar subjects.
type SubjectsRequested struct {
	At time.Time
}

// SubjectsLoaded finishes the subjects request.
type SubjectsLoaded struct {
	Subjects []models.Subject
	Err      error
	At       time.Time
}

// SelectionChanged moves the sidebar focus.
type SelectionChanged struct {
	Selection SidebarSelection
}

// CursorMoved shifts the lesson cursor by Delta.
type CursorMoved struct {
	Delta int
}

// MutationStarted marks a write against the API as in flight.
type MutationStarted struct {
	Description string
	At          time.Time
}

// MutationFinished records the outcome of the last write.
type MutationFinished struct {
	Err error
	At  time.Time
}

// NoticeShown replaces the status line message.
type NoticeShown struct {
	Text string
}

func (WeekRequested) isAction()     {}
func (WeekLoaded) isAction()        {}
func (SubjectsRequested) isAction() {}
func (SubjectsLoaded) isAction()    {}
func (SelectionChanged) isAction()  {}
func (CursorMoved) isAction()       {}
func (MutationStarted) isAction()   {}
func (MutationFinished) isAction()  {}
func (NoticeShown) isAction()       {}

// Store owns State. Every change goes through Dispatch, and subscribers are
// told about each new state after it is applied.
type Store struct {
	mu          sync.Mutex
	state       State
	subscribers map[int]func(State)
	nextID      int
}

// NewStore creates a store showing the week tab.
func NewStore() *Store {
	return &Store{
		state:       State{Selection: TabSelection{Tab: TabWeek}},
		subscribers: make(map[int]func(State)),
	}
}

// State returns a snapshot of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// WeekSeq returns the number of the most recent week request.
func (s *Store) WeekSeq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.weekSeq
}

// Subscribe registers fn to run after every dispatch and returns a function
// that removes it.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.subscribers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

// Dispatch applies action and notifies subscribers outside the lock.
func (s *Store) Dispatch(action Action) State {
	s.mu.Lock()
	s.state = reduce(s.state, action)
	next := s.state
	subs := make([]func(State), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
	return next
}

func reduce(state State, action Action) State {
	switch a := action.(type) {
	case WeekRequested:
		state.weekSeq++
		state.WeekStart = a.Start
		state.WeekRequest = state.WeekRequest.Start(a.At)
	case WeekLoaded:
		if a.Seq != state.weekSeq {
			return state
		}
		state.WeekRequest = state.WeekRequest.Finish(a.Err, a.At)
		if a.Err == nil {
			state.Week = a.Week
		}
		state.Cursor = clampCursor(state.Cursor, countVisible(state))
	case SubjectsRequested:
		state.SubjectsRequest = state.SubjectsRequest.Start(a.At)
	case SubjectsLoaded:
		state.SubjectsRequest = state.SubjectsRequest.Finish(a.Err, a.At)
		if a.Err == nil {
			state.Subjects = a.Subjects
			state.Selection = keepSelection(state.Selection, a.Subjects)
		}
	case SelectionChanged:
		state.Selection = a.Selection
		state.Cursor = 0
	case CursorMoved:
		state.Cursor = clampCursor(state.Cursor+a.Delta, countVisible(state))
	case MutationStarted:
		state.Notice = a.Description
		state.MutationRequest = state.MutationRequest.Start(a.At)
	case MutationFinished:
		state.MutationRequest = state.MutationRequest.Finish(a.Err, a.At)
		if a.Err != nil {
			state.Notice = a.Err.Error()
		} else {
			state.Notice = ""
		}
	case NoticeShown:
		state.Notice = a.Text
	}
	return state
}

// keepSelection falls back to the week tab when the selected subject is gone.
func keepSelection(sel SidebarSelection, subjects []models.Subject) SidebarSelection {
	switch s := sel.(type) {
	case TabSelection:
		return s
	case SubjectSelection:
		for _, subject := range subjects {
			if subject.ID == s.SubjectID {
				return SubjectSelection{SubjectID: subject.ID, Name: subject.Name}
			}
		}
		return TabSelection{Tab: TabWeek}
	default:
		return TabSelection{Tab: TabWeek}
	}
}

// visibleWeekLessons flattens the lessons the selection shows, Monday first.
func visibleWeekLessons(state State) []dto.LessonDetail {
	if state.Week == nil || state.Selection == nil {
		return nil
	}
	var out []dto.LessonDetail
	for _, day := range state.Week.Days {
		out = append(out, visibleLessons(state.Selection, day)...)
	}
	return out
}

func countVisible(state State) int {
	return len(visibleWeekLessons(state))
}

func clampCursor(cursor, n int) int {
	if n == 0 || cursor < 0 {
		return 0
	}
	if cursor >= n {
		return n - 1
	}
	return cursor
}

// selectedLesson returns the lesson under the cursor.
func selectedLesson(state State) (dto.LessonDetail, bool) {
	lessons := visibleWeekLessons(state)
	if len(lessons) == 0 {
		return dto.LessonDetail{}, false
	}
	return lessons[clampCursor(state.Cursor, len(lessons))], true
}
