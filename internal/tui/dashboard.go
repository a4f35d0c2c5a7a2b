package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
	"github.com/sadopc/tasktime/internal/report"
	"github.com/sadopc/tasktime/internal/store"
	"github.com/sadopc/tasktime/internal/tracking"
)

type dashboardModel struct {
	store  *store.Store
	ctrl   *tracking.Controller
	log    zerolog.Logger
	now    func() time.Time
	width  int
	height int

	prefs        store.Preferences
	tasks        []taskRow
	todayTotal   int64
	todayBuckets []report.Bucket
	recent       []report.EnrichedEntry

	// Task picker state
	picking      bool
	pickerCursor int

	// Idle detection
	lastActivity time.Time
	idle         bool

	// Manual entry form, pointers survive value copies
	formActive  bool
	form        *huh.Form
	formTask    *int64
	formHours   *string
	formMinutes *string
	formDesc    *string
}

func newDashboardModel(s *store.Store, c *tracking.Controller, log zerolog.Logger, now func() time.Time) dashboardModel {
	var task int64
	hours, minutes, desc := "", "", ""
	return dashboardModel{
		store:        s,
		ctrl:         c,
		log:          log,
		now:          now,
		prefs:        store.DefaultPreferences(),
		lastActivity: now(),
		formTask:     &task,
		formHours:    &hours,
		formMinutes:  &minutes,
		formDesc:     &desc,
	}
}

func (d dashboardModel) Init() tea.Cmd {
	return d.loadData()
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

func (d dashboardModel) isRunning() bool { return d.ctrl.State() != tracking.StateIdle }
func (d dashboardModel) isPaused() bool  { return d.ctrl.State() == tracking.StatePaused }
func (d dashboardModel) elapsed() time.Duration {
	return d.ctrl.Elapsed()
}

type dashboardDataMsg struct {
	prefs        store.Preferences
	tasks        []taskRow
	todayTotal   int64
	todayBuckets []report.Bucket
	recent       []report.EnrichedEntry
}

func (d dashboardModel) loadData() tea.Cmd {
	st, dayStart := d.store, report.StartOfDay(d.now())
	return func() tea.Msg {
		ctx := context.Background()
		var msg dashboardDataMsg
		var err error

		if msg.prefs, err = st.Preferences(); err != nil {
			return statusMsg{text: fmt.Sprintf("Load settings: %v", err), isError: true}
		}
		if msg.tasks, err = loadTaskRows(st); err != nil {
			return statusMsg{text: fmt.Sprintf("Load tasks: %v", err), isError: true}
		}

		today, err := st.QueryEntries(ctx, tracking.EntryQuery{From: &dayStart})
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Load entries: %v", err), isError: true}
		}
		enriched, err := report.Enrich(ctx, today, st)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Load entries: %v", err), isError: true}
		}
		if msg.todayTotal, err = st.TotalSince(ctx, dayStart); err != nil {
			return statusMsg{text: fmt.Sprintf("Load entries: %v", err), isError: true}
		}
		msg.todayBuckets = report.TopN(report.Buckets(enriched, report.ByProject), 0)

		recent, err := st.QueryEntries(ctx, tracking.EntryQuery{Limit: 5})
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Load entries: %v", err), isError: true}
		}
		if msg.recent, err = report.Enrich(ctx, recent, st); err != nil {
			return statusMsg{text: fmt.Sprintf("Load entries: %v", err), isError: true}
		}
		return msg
	}
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	if d.formActive && d.form != nil {
		switch msg.(type) {
		case tickMsg, dashboardDataMsg:
		case tea.KeyMsg:
			d.lastActivity = d.now()
			return d.updateForm(msg)
		default:
			return d.updateForm(msg)
		}
	}

	switch msg := msg.(type) {
	case dashboardDataMsg:
		d.prefs = msg.prefs
		d.tasks = msg.tasks
		d.todayTotal = msg.todayTotal
		d.todayBuckets = msg.todayBuckets
		d.recent = msg.recent
		if d.pickerCursor >= len(d.tasks) {
			d.pickerCursor = max(0, len(d.tasks)-1)
		}
		return d, nil

	case tickMsg:
		return d.checkIdle()

	case startTaskMsg:
		return d.startTask(msg.taskID)

	case tea.KeyMsg:
		var resumed tea.Cmd
		d, resumed = d.recordActivity()

		var cmd tea.Cmd
		if d.picking {
			d, cmd = d.updatePicker(msg)
			return d, tea.Batch(resumed, cmd)
		}

		switch {
		case key.Matches(msg, keys.Start):
			switch len(d.tasks) {
			case 0:
				cmd = func() tea.Msg {
					return statusMsg{text: "No tasks yet. Press 2 to go to Tasks and create one.", isError: true}
				}
			case 1:
				d, cmd = d.startTask(d.tasks[0].ID)
			default:
				d.picking = true
				d.pickerCursor = d.activeTaskIndex()
			}

		case key.Matches(msg, keys.Stop):
			d, cmd = d.stopTimer()

		case key.Matches(msg, keys.Pause):
			d.ctrl.Toggle()

		case key.Matches(msg, keys.Manual):
			d, cmd = d.showManualForm()

		case key.Matches(msg, keys.Retry):
			d, cmd = d.retryPending()
		}
		return d, tea.Batch(resumed, cmd)
	}
	return d, nil
}

// recordActivity notes user input and resumes a timer that idle detection paused.
func (d dashboardModel) recordActivity() (dashboardModel, tea.Cmd) {
	d.lastActivity = d.now()
	if !d.idle {
		return d, nil
	}
	d.idle = false
	if d.ctrl.Resume() {
		return d, statusCmd("Welcome back, timer resumed")
	}
	return d, nil
}

func (d dashboardModel) checkIdle() (dashboardModel, tea.Cmd) {
	if d.idle || d.prefs.IdleTimeout <= 0 || d.ctrl.State() != tracking.StateRunning {
		return d, nil
	}
	if d.now().Sub(d.lastActivity) < d.prefs.IdleTimeout {
		return d, nil
	}

	d.log.Info().Str("action", d.prefs.IdleAction).Dur("timeout", d.prefs.IdleTimeout).Msg("idle detected")
	if d.prefs.IdleAction == "stop" {
		return d.stopTimer()
	}
	d.ctrl.Pause()
	d.idle = true
	return d, statusCmd("Idle, timer paused")
}

func (d dashboardModel) activeTaskIndex() int {
	if at, ok := d.ctrl.Active(); ok {
		for i, t := range d.tasks {
			if t.ID == at.TaskID {
				return i
			}
		}
	}
	return 0
}

func (d dashboardModel) updatePicker(msg tea.KeyMsg) (dashboardModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if d.pickerCursor > 0 {
			d.pickerCursor--
		}
	case key.Matches(msg, keys.Down):
		if d.pickerCursor < len(d.tasks)-1 {
			d.pickerCursor++
		}
	case key.Matches(msg, keys.Enter):
		d.picking = false
		if d.pickerCursor < len(d.tasks) {
			return d.startTask(d.tasks[d.pickerCursor].ID)
		}
	case key.Matches(msg, keys.Back):
		d.picking = false
	}
	return d, nil
}

// startTask starts the timer on taskID, saving whatever was running before.
func (d dashboardModel) startTask(taskID int64) (dashboardModel, tea.Cmd) {
	prev, err := d.ctrl.Start(context.Background(), taskID)
	if err != nil {
		return d, tea.Batch(d.loadData(), errorCmd("Could not start timer", err))
	}
	d.idle = false
	d.lastActivity = d.now()
	return d, tea.Batch(
		d.loadData(),
		func() tea.Msg { return timerStartedMsg{taskID: taskID, prev: prev} },
	)
}

func (d dashboardModel) stopTimer() (dashboardModel, tea.Cmd) {
	d.idle = false
	entry, err := d.ctrl.Stop(context.Background())
	if err != nil {
		if errors.Is(err, tracking.ErrRepository) {
			return d, func() tea.Msg {
				return statusMsg{text: "Entry not saved, press r to retry: " + err.Error(), isError: true}
			}
		}
		return d, errorCmd("Stop failed", err)
	}
	if entry == nil {
		return d, nil
	}
	return d, tea.Batch(
		d.loadData(),
		func() tea.Msg { return timerStoppedMsg{entry: entry} },
	)
}

func (d dashboardModel) retryPending() (dashboardModel, tea.Cmd) {
	entry, err := d.ctrl.RetryPending(context.Background())
	if err != nil {
		return d, errorCmd("Retry failed", err)
	}
	if entry == nil {
		return d, statusCmd("Nothing to retry")
	}
	return d, tea.Batch(d.loadData(), statusCmd("Saved "+formatSeconds(entry.Duration)))
}

func (d dashboardModel) showManualForm() (dashboardModel, tea.Cmd) {
	if len(d.tasks) == 0 {
		return d, func() tea.Msg {
			return statusMsg{text: "No tasks yet. Press 2 to go to Tasks and create one.", isError: true}
		}
	}

	*d.formTask = d.tasks[d.activeTaskIndex()].ID
	*d.formHours = "0"
	*d.formMinutes = "30"
	*d.formDesc = ""

	options := make([]huh.Option[int64], len(d.tasks))
	for i, t := range d.tasks {
		options[i] = huh.NewOption(t.label(), t.ID)
	}

	d.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int64]().Title("Task").Options(options...).Value(d.formTask),
			huh.NewInput().Title("Hours").Value(d.formHours).Validate(validateWhole),
			huh.NewInput().Title("Minutes").Value(d.formMinutes).Validate(validateWhole),
			huh.NewInput().Title("Description").Value(d.formDesc),
		),
	).WithShowHelp(true).WithShowErrors(true)

	d.formActive = true
	return d, d.form.Init()
}

func validateWhole(s string) error {
	if _, err := strconv.Atoi(strings.TrimSpace(s)); err != nil {
		return errors.New("enter a whole number")
	}
	return nil
}

func (d dashboardModel) updateForm(msg tea.Msg) (dashboardModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			d.formActive = false
			d.form = nil
			return d, nil
		}
	}

	form, cmd := d.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		d.form = f
	}

	if d.form.State == huh.StateCompleted {
		d.formActive = false
		d.form = nil
		return d.logManual()
	}
	return d, cmd
}

func (d dashboardModel) logManual() (dashboardModel, tea.Cmd) {
	hours, _ := strconv.Atoi(strings.TrimSpace(*d.formHours))
	minutes, _ := strconv.Atoi(strings.TrimSpace(*d.formMinutes))
	entry, err := d.ctrl.LogManual(context.Background(), tracking.ManualEntry{
		TaskID:      *d.formTask,
		Hours:       hours,
		Minutes:     minutes,
		Description: strings.TrimSpace(*d.formDesc),
	})
	if err != nil {
		return d, errorCmd("Not logged", err)
	}
	return d, tea.Batch(
		d.loadData(),
		func() tea.Msg { return entryLoggedMsg{entry: entry} },
	)
}

func (d dashboardModel) taskLabel(id int64) string {
	for _, t := range d.tasks {
		if t.ID == id {
			return t.label()
		}
	}
	return fmt.Sprintf("task #%d", id)
}

func (d dashboardModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}

	contentWidth := d.width - 4

	if d.formActive && d.form != nil {
		title := titleStyle.Render("Log Time")
		return panelStyle.Width(contentWidth).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", d.form.View()),
		)
	}

	timerPanel := d.renderTimerPanel(contentWidth)
	summaryPanel := d.renderSummaryPanel(contentWidth)

	var bottomPanel string
	if d.picking {
		bottomPanel = d.renderTaskPicker(contentWidth)
	} else {
		bottomPanel = d.renderRecentPanel(contentWidth)
	}

	return lipgloss.JoinVertical(lipgloss.Left, timerPanel, summaryPanel, bottomPanel)
}

func (d dashboardModel) renderTimerPanel(w int) string {
	var pendingLine string
	if p, ok := d.ctrl.Pending(); ok {
		pendingLine = accentStyle.Render(fmt.Sprintf("Unsaved entry of %s, press r to retry", formatSeconds(p.Duration)))
	}

	at, ok := d.ctrl.Active()
	if !ok {
		rows := []string{
			timerStyle.Width(w - 6).Render("00:00:00"),
			mutedStyle.Render("■  STOPPED"),
			mutedStyle.Render("Press s to start tracking, m to log time"),
		}
		if pendingLine != "" {
			rows = append(rows, pendingLine)
		}
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Center, rows...))
	}

	timeStr := formatDuration(d.ctrl.Elapsed())
	var timeDisplay, indicator string
	if at.Running {
		timeDisplay = timerRunningStyle.Width(w - 6).Render(timeStr)
		indicator = successStyle.Render("●  RUNNING")
	} else {
		timeDisplay = timerPausedStyle.Width(w - 6).Render(timeStr)
		if d.idle {
			indicator = warningStyle.Render("⏸  IDLE")
		} else {
			indicator = warningStyle.Render("⏸  PAUSED")
		}
	}

	rows := []string{timeDisplay, indicator, highlightStyle.Render(d.taskLabel(at.TaskID))}
	if pendingLine != "" {
		rows = append(rows, pendingLine)
	}
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Center, rows...))
}

func (d dashboardModel) renderSummaryPanel(w int) string {
	title := titleStyle.Render("Today")
	total := highlightStyle.Render(formatSeconds(d.todayTotal))
	header := fmt.Sprintf("%s  %s", title, total)
	if d.prefs.DailyGoal > 0 {
		header += mutedStyle.Render(fmt.Sprintf("  of %s goal", formatHours(d.prefs.DailyGoal)))
	}

	rows := []string{header}
	if bar := goalBar(d.todayTotal, d.prefs.DailyGoal, min(40, max(10, w-20))); bar != "" {
		rows = append(rows, bar)
	}

	if len(d.todayBuckets) == 0 {
		rows = append(rows, mutedStyle.Render("No entries today"))
		return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
	}

	for i, b := range d.todayBuckets {
		dot := lipgloss.NewStyle().Foreground(chartColors[i%len(chartColors)]).Render("●")
		rows = append(rows, fmt.Sprintf("  %s %-20s %s", dot, truncate(b.Key, 20), formatSeconds(b.TotalSeconds)))
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d dashboardModel) renderRecentPanel(w int) string {
	title := titleStyle.Render("Recent Entries")
	if len(d.recent) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("No entries yet"),
		)
		return panelStyle.Width(w).Render(content)
	}

	rows := []string{title}
	for _, e := range d.recent {
		label := e.TaskTitle
		if label == "" {
			label = report.Unspecified
		}
		row := fmt.Sprintf("  ✓ %s  %-24s %-16s %s",
			e.StartTime.Local().Format("Jan 02 15:04"),
			truncate(label, 24),
			truncate(e.Project, 16),
			formatSeconds(e.Duration),
		)
		if e.Description != "" {
			row += mutedStyle.Render("  " + truncate(e.Description, 30))
		}
		rows = append(rows, row)
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d dashboardModel) renderTaskPicker(w int) string {
	rows := []string{titleStyle.Render("Select Task")}
	for i, t := range d.tasks {
		cursor := "  "
		style := normalItemStyle
		if i == d.pickerCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+t.label()))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: start  esc: cancel"))

	return activePanelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
