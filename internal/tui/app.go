package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
	"github.com/sadopc/tasktime/internal/export"
	"github.com/sadopc/tasktime/internal/report"
	"github.com/sadopc/tasktime/internal/store"
	"github.com/sadopc/tasktime/internal/tracking"
)

// Options configures the TUI beyond its store and controller.
type Options struct {
	Log       zerolog.Logger
	ExportDir string
	Now       func() time.Time
}

// App is the root Bubble Tea model.
type App struct {
	store     *store.Store
	ctrl      *tracking.Controller
	log       zerolog.Logger
	exportDir string
	width     int
	height    int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	dashboard dashboardModel
	tasks     tasksModel
	reports   reportsModel
	settings  settingsModel

	help   help.Model
	status string
	isErr  bool
}

func NewApp(s *store.Store, c *tracking.Controller, opts Options) App {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.ExportDir == "" {
		opts.ExportDir = "."
	}
	h := help.New()
	h.ShowAll = false

	return App{
		store:      s,
		ctrl:       c,
		log:        opts.Log,
		exportDir:  opts.ExportDir,
		activeView: viewDashboard,
		dashboard:  newDashboardModel(s, c, opts.Log, opts.Now),
		tasks:      newTasksModel(s),
		reports:    newReportsModel(s, opts.Now),
		settings:   newSettingsModel(s),
		help:       h,
	}
}

// Run drives the TUI until the user quits. A timer still running at exit
// is stopped so its time is saved.
func Run(s *store.Store, c *tracking.Controller, opts Options) error {
	p := tea.NewProgram(NewApp(s, c, opts), tea.WithAltScreen())
	_, err := p.Run()

	ctx := context.Background()
	if c.State() != tracking.StateIdle {
		if e, serr := c.Stop(ctx); serr != nil {
			opts.Log.Error().Err(serr).Msg("saving active timer on exit")
		} else if e != nil {
			opts.Log.Info().Str("entry_id", e.ID).Int64("duration", e.Duration).Msg("saved active timer on exit")
		}
	}
	if _, ok := c.Pending(); ok {
		if _, perr := c.RetryPending(ctx); perr != nil {
			opts.Log.Error().Err(perr).Msg("pending time entry lost on exit")
		}
	}
	return err
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.dashboard.Init(),
		tickCmd(),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.dashboard.setSize(a.width, contentHeight)
		a.tasks.setSize(a.width, contentHeight)
		a.reports.setSize(a.width, contentHeight)
		a.reports.buildChart()
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewDashboard
			return a, a.dashboard.loadData()
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewTasks
			return a, a.tasks.refresh()
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewReports
			return a, a.reports.refresh()
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewSettings
			return a, a.settings.refresh()
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % viewState(len(viewNames))
			return a, a.refreshCurrentView()
		}

		// Any key counts as activity for idle detection.
		if a.activeView != viewDashboard {
			var cmd tea.Cmd
			a.dashboard, cmd = a.dashboard.recordActivity()
			cmds = append(cmds, cmd)
		}

	case tickMsg:
		cmds = append(cmds, tickCmd())
		var cmd tea.Cmd
		a.dashboard, cmd = a.dashboard.update(msg)
		cmds = append(cmds, cmd)
		return a, tea.Batch(cmds...)

	// Data and control messages go to their owner whatever view is showing.
	case dashboardDataMsg, startTaskMsg:
		var cmd tea.Cmd
		a.dashboard, cmd = a.dashboard.update(msg)
		if _, ok := msg.(startTaskMsg); ok {
			a.activeView = viewDashboard
		}
		return a, cmd

	case reportsDataMsg:
		var cmd tea.Cmd
		a.reports, cmd = a.reports.update(msg)
		return a, cmd

	case projectsDataMsg, tasksDataMsg:
		var cmd tea.Cmd
		a.tasks, cmd = a.tasks.update(msg)
		return a, cmd

	case settingsDataMsg:
		var cmd tea.Cmd
		a.settings, cmd = a.settings.update(msg)
		return a, cmd

	case prefsChangedMsg:
		return a, tea.Batch(a.dashboard.loadData(), a.reports.refresh())

	case statusMsg:
		a.status = msg.text
		a.isErr = msg.isError
		if msg.isError {
			a.log.Warn().Msg(msg.text)
		}
		return a, nil

	case timerStartedMsg:
		a.status = "Timer started on " + a.dashboard.taskLabel(msg.taskID)
		if msg.prev != nil {
			a.status += fmt.Sprintf(" (saved %s)", formatSeconds(msg.prev.Duration))
		}
		a.isErr = false
		return a, nil

	case timerStoppedMsg:
		a.status = "Timer stopped, saved " + formatSeconds(msg.entry.Duration)
		a.isErr = false
		return a, a.reports.refresh()

	case entryLoggedMsg:
		a.status = "Logged " + formatSeconds(msg.entry.Duration)
		a.isErr = false
		return a, a.reports.refresh()

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.isErr = false
		a.exportPicking = false
		return a, nil
	}

	m, cmd := a.updateActiveView(msg)
	return m, tea.Batch(append(cmds, cmd)...)
}

func (a App) updateActiveView(msg tea.Msg) (App, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewDashboard:
		a.dashboard, cmd = a.dashboard.update(msg)
	case viewTasks:
		a.tasks, cmd = a.tasks.update(msg)
	case viewReports:
		a.reports, cmd = a.reports.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewDashboard:
		return a.dashboard.formActive
	case viewTasks:
		return a.tasks.formActive
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewDashboard:
		return a.dashboard.loadData()
	case viewTasks:
		return a.tasks.refresh()
	case viewReports:
		return a.reports.refresh()
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewDashboard:
		content = a.dashboard.view()
	case viewTasks:
		content = a.tasks.view()
	case viewReports:
		content = a.reports.view()
	case viewSettings:
		content = a.settings.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("tasktime")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		style := mutedStyle
		if a.isErr {
			style = errorStyle
		}
		status = style.Render(" " + a.status)
	}

	timerInfo := ""
	if a.dashboard.isRunning() {
		elapsed := a.dashboard.elapsed()
		timerInfo = successStyle.Render(" ● " + formatDuration(elapsed))
		if a.dashboard.isPaused() {
			timerInfo = warningStyle.Render(" ⏸ " + formatDuration(elapsed))
		}
	}

	left := footerStyle.Render(helpView)
	right := timerInfo + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	f := a.reports.currentFilter()
	rows := []string{
		titleStyle.Render("Export Report"),
		mutedStyle.Render(fmt.Sprintf("%s, %s to %s", a.reports.project.value(), f.Start.Format("Jan 02"), f.End.Format("Jan 02, 2006"))),
		"",
	}
	for i, format := range export.Formats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+export.FileName(format, f.Start, f.End)))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(export.Formats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(export.Formats[a.exportCursor])
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

// doExport writes the entries behind the current report filter.
func (a App) doExport(format export.Format) tea.Cmd {
	st, f, dir, log := a.store, a.reports.currentFilter(), a.exportDir, a.log
	return func() tea.Msg {
		entries, err := report.Load(context.Background(), st, f)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		path := filepath.Join(dir, export.FileName(format, f.Start, f.End))
		if err := export.ToFile(format, entries, path); err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		log.Info().Str("path", path).Int("entries", len(entries)).Msg("report exported")
		return exportDoneMsg{path: path}
	}
}
