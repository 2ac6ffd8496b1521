package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/noah-isme/lesson-planner-api/internal/dto"
	"github.com/noah-isme/lesson-planner-api/pkg/plannerclient"
)

const sidebarWidth = 28

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	dayStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#CCCCCC"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	cursorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F7B801"))
	todoStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	loadingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF"))
	boxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#444444")).Padding(0, 1)
	focusBoxStyle = boxStyle.BorderForeground(lipgloss.Color("#5B8DEF"))
)

// View renders the sidebar, the selected content and the status line.
func (a *App) View() string {
	state := a.store.State()

	sideBox, mainBox := boxStyle, focusBoxStyle
	if a.focus == focusSidebar {
		sideBox, mainBox = focusBoxStyle, boxStyle
	}

	contentWidth := max(40, a.width-sidebarWidth-8)
	left := sideBox.Width(sidebarWidth).Render(a.sidebar.View())
	right := mainBox.Width(contentWidth).Render(renderContent(state))

	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	return lipgloss.JoinVertical(lipgloss.Left, body, renderStatus(state))
}

func renderContent(state State) string {
	if state.Selection == nil {
		return ""
	}
	lines := []string{headerStyle.Render(weekHeader(state))}

	if state.Week == nil {
		if state.WeekRequest.Loading() {
			return strings.Join(append(lines, loadingStyle.Render("Loading week...")), "\n")
		}
		return strings.Join(append(lines, mutedStyle.Render("No week loaded")), "\n")
	}

	if sel, ok := state.Selection.(TabSelection); ok && sel.Tab == TabSettings {
		return strings.Join(append(lines, renderCycleSummary(state.Week)...), "\n")
	}

	cursor := clampCursor(state.Cursor, countVisible(state))
	index := 0
	for _, day := range state.Week.Days {
		lines = append(lines, "", dayStyle.Render(dayHeading(day)))
		if day.CycleDay == nil {
			lines = append(lines, mutedStyle.Render("  No school"))
			continue
		}
		lessons := visibleLessons(state.Selection, day)
		if len(lessons) == 0 {
			lines = append(lines, mutedStyle.Render("  Nothing planned"))
			continue
		}
		for _, lesson := range lessons {
			line := "  " + lessonLine(lesson)
			if index == cursor {
				line = cursorStyle.Render("> " + lessonLine(lesson))
			}
			if open := openTodoCount(lesson); open > 0 {
				line += " " + todoStyle.Render(fmt.Sprintf("[%d todo]", open))
			}
			lines = append(lines, line)
			index++
		}
	}
	return strings.Join(lines, "\n")
}

func weekHeader(state State) string {
	title := selectionTitle(state.Selection)
	if state.Week == nil {
		return title
	}
	header := fmt.Sprintf("%s · Week of %s", title, state.Week.WeekStart)
	if state.Week.PrimaryWeek != nil {
		header += " · Week " + *state.Week.PrimaryWeek
	}
	return header
}

func dayHeading(day dto.DayInfo) string {
	heading := fmt.Sprintf("%s %s", day.WeekdayName, day.Date)
	if day.CycleDay != nil {
		heading += fmt.Sprintf(" · Day %d", *day.CycleDay)
	}
	return heading
}

func lessonLine(lesson dto.LessonDetail) string {
	subject := lesson.SubjectID
	if lesson.Subject != nil {
		subject = lesson.Subject.Name
	}
	line := fmt.Sprintf("P%d %s", lesson.Period, subject)
	if lesson.Title != nil && *lesson.Title != "" {
		line += " · " + *lesson.Title
	}
	return line
}

func renderCycleSummary(week *dto.WeekTimetable) []string {
	lines := []string{"", fmt.Sprintf("Periods per day: %d", week.PeriodsPerDay)}
	for _, day := range week.Days {
		if day.CycleDay == nil {
			lines = append(lines, mutedStyle.Render(fmt.Sprintf("%s  excluded", day.Date)))
			continue
		}
		label := ""
		if day.WeekLabel != nil {
			label = "Week " + *day.WeekLabel
		}
		lines = append(lines, fmt.Sprintf("%s  day %-2d %s", day.Date, *day.CycleDay, label))
	}
	return lines
}

func renderStatus(state State) string {
	parts := []string{
		requestStatus("week", state.WeekRequest),
		requestStatus("subjects", state.SubjectsRequest),
	}
	if state.MutationRequest.Status != plannerclient.Idle {
		parts = append(parts, requestStatus("save", state.MutationRequest))
	}
	status := strings.Join(parts, "  ")
	if state.Notice != "" {
		notice := mutedStyle.Render(state.Notice)
		if state.MutationRequest.Status == plannerclient.Failed {
			notice = errorStyle.Render(state.Notice)
		}
		status += "  " + notice
	}
	help := mutedStyle.Render("h/l week · t today · j/k move · x done · e export · r refresh · tab focus · q quit")
	return lipgloss.JoinVertical(lipgloss.Left, status, help)
}

func requestStatus(name string, rs plannerclient.RequestState) string {
	switch rs.Status {
	case plannerclient.InFlight:
		return loadingStyle.Render(name + ": loading")
	case plannerclient.Failed:
		return errorStyle.Render(name + ": " + rs.Err.Error())
	case plannerclient.Succeeded:
		return mutedStyle.Render(name + ": ok")
	default:
		return mutedStyle.Render(name + ": idle")
	}
}
