package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/tasktime/internal/store"
	"github.com/sadopc/tasktime/internal/tracking"
)

// viewState represents the currently active view.
type viewState int

const (
	viewDashboard viewState = iota
	viewTasks
	viewReports
	viewSettings
)

var viewNames = []string{"Dashboard", "Tasks", "Reports", "Settings"}

// --- Messages ---

type timerStartedMsg struct {
	taskID int64
	prev   *tracking.TimeEntry
}

type timerStoppedMsg struct {
	entry *tracking.TimeEntry
}

type entryLoggedMsg struct {
	entry tracking.TimeEntry
}

// startTaskMsg asks the dashboard to start timing a task picked elsewhere.
type startTaskMsg struct {
	taskID int64
}

type prefsChangedMsg struct{}

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type exportDoneMsg struct {
	path string
}

func statusCmd(text string) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text} }
}

func errorCmd(prefix string, err error) tea.Cmd {
	text := fmt.Sprintf("%s: %v", prefix, err)
	var verr *tracking.ValidationError
	if errors.As(err, &verr) {
		text = fmt.Sprintf("%s: %s %s", prefix, verr.Field, verr.Reason)
	}
	return func() tea.Msg { return statusMsg{text: text, isError: true} }
}

// taskRow is a task with its project name, for pickers and labels.
type taskRow struct {
	ID      int64
	Title   string
	Project string
}

func (t taskRow) label() string {
	return t.Project + " / " + t.Title
}

func loadTaskRows(s *store.Store) ([]taskRow, error) {
	projects, err := s.ListProjects(true)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(projects))
	for _, p := range projects {
		names[p.ID] = p.Name
	}
	tasks, err := s.ListAllTasks()
	if err != nil {
		return nil, err
	}
	rows := make([]taskRow, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, taskRow{ID: t.ID, Title: t.Title, Project: names[t.ProjectID]})
	}
	return rows, nil
}

// --- Helpers ---

func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func formatSeconds(secs int64) string {
	return formatDuration(time.Duration(secs) * time.Second)
}

func formatHours(secs int64) string {
	h := float64(secs) / 3600
	return fmt.Sprintf("%.1fh", h)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

// goalBar renders done/goal as a fixed-width bar followed by a percentage.
func goalBar(done, goal int64, width int) string {
	if goal <= 0 || width <= 0 {
		return ""
	}
	ratio := float64(done) / float64(goal)
	filled := int(min(ratio, 1) * float64(width))
	bar := successStyle.Render(strings.Repeat("█", filled)) +
		mutedStyle.Render(strings.Repeat("░", width-filled))
	return fmt.Sprintf("%s %3.0f%%", bar, ratio*100)
}
