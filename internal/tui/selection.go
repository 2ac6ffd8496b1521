package tui

import (
	"fmt"

	"github.com/noah-isme/lesson-planner-api/internal/dto"
)

// Tab is a top-level sidebar entry.
type Tab int

const (
	TabWeek Tab = iota
	TabTodos
	TabSettings
)

func (t Tab) String() string {
	switch t {
	case TabWeek:
		return "This week"
	case TabTodos:
		return "Open todos"
	case TabSettings:
		return "Settings"
	default:
		return fmt.Sprintf("Tab(%d)", int(t))
	}
}

// SidebarSelection is the sidebar item in focus. It is either a TabSelection
// or a SubjectSelection; the unexported method keeps the set closed.
type SidebarSelection interface {
	isSidebarSelection()
}

// TabSelection selects a plain tab.
type TabSelection struct {
	Tab Tab
}

// SubjectSelection selects the week view filtered to one subject.
type SubjectSelection struct {
	SubjectID string
	Name      string
}

func (TabSelection) isSidebarSelection()     {}
func (SubjectSelection) isSidebarSelection() {}

// selectionTitle names the selection for the content header.
func selectionTitle(sel SidebarSelection) string {
	switch s := sel.(type) {
	case TabSelection:
		return s.Tab.String()
	case SubjectSelection:
		return s.Name
	default:
		panic(fmt.Sprintf("tui: unhandled sidebar selection %T", sel))
	}
}

// visibleLessons returns the lessons of day that the selection shows.
func visibleLessons(sel SidebarSelection, day dto.DayInfo) []dto.LessonDetail {
	switch s := sel.(type) {
	case TabSelection:
		switch s.Tab {
		case TabTodos:
			var out []dto.LessonDetail
			for _, lesson := range day.Lessons {
				if openTodoCount(lesson) > 0 {
					out = append(out, lesson)
				}
			}
			return out
		case TabSettings:
			return nil
		default:
			return day.Lessons
		}
	case SubjectSelection:
		var out []dto.LessonDetail
		for _, lesson := range day.Lessons {
			if lesson.SubjectID == s.SubjectID {
				out = append(out, lesson)
			}
		}
		return out
	default:
		panic(fmt.Sprintf("tui: unhandled sidebar selection %T", sel))
	}
}

func openTodoCount(lesson dto.LessonDetail) int {
	open := 0
	for _, todo := range lesson.Todos {
		if !todo.IsCompleted {
			open++
		}
	}
	return open
}
