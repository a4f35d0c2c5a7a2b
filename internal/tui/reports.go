package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/tasktime/internal/report"
	"github.com/sadopc/tasktime/internal/store"
)

// choice is a cyclable filter value list whose first element is the "All" sentinel.
type choice struct {
	options []string
	index   int
}

func newChoice(all string) choice {
	return choice{options: []string{all}}
}

func (c choice) value() string { return c.options[c.index] }

func (c choice) next() choice {
	c.index = (c.index + 1) % len(c.options)
	return c
}

// withOptions replaces the values, keeping the current selection when it still exists.
func (c choice) withOptions(values []string) choice {
	current := c.value()
	c.options = append(c.options[:1:1], values...)
	c.index = 0
	for i, v := range c.options {
		if v == current {
			c.index = i
		}
	}
	return c
}

type reportsModel struct {
	store  *store.Store
	now    func() time.Time
	width  int
	height int

	prefs    store.Preferences
	preset   int
	dim      int
	project  choice
	user     choice
	tag      choice
	priority choice

	entries []report.EnrichedEntry
	buckets []report.Bucket
	summary report.Summary

	chart barchart.Model
}

func newReportsModel(s *store.Store, now func() time.Time) reportsModel {
	return reportsModel{
		store:    s,
		now:      now,
		prefs:    store.DefaultPreferences(),
		preset:   2, // This Week
		project:  newChoice(report.AllProjects),
		user:     newChoice(report.AllUsers),
		tag:      newChoice(report.AllTags),
		priority: newChoice(report.AllPriorities).withOptions(store.Priorities),
		chart:    barchart.New(60, 12),
	}
}

func (r *reportsModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

func (r reportsModel) dimension() report.Dimension {
	return report.Dimensions[r.dim]
}

// currentFilter is the filter the view is showing, for the chart and for export.
func (r reportsModel) currentFilter() report.Filter {
	start, end := report.Range(report.Presets[r.preset], r.now(), report.ParseWeekStart(r.prefs.WeekStart))
	return report.Filter{
		Start:    start,
		End:      end,
		Project:  r.project.value(),
		Assignee: r.user.value(),
		Tag:      r.tag.value(),
		Priority: r.priority.value(),
	}
}

type reportsDataMsg struct {
	entries  []report.EnrichedEntry
	prefs    store.Preferences
	projects []string
	users    []string
	tags     []string
}

func (r reportsModel) refresh() tea.Cmd {
	st, f := r.store, r.currentFilter()
	return func() tea.Msg {
		var msg reportsDataMsg
		var err error
		if msg.prefs, err = st.Preferences(); err != nil {
			return statusMsg{text: fmt.Sprintf("Load settings: %v", err), isError: true}
		}
		projects, err := st.ListProjects(true)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Load projects: %v", err), isError: true}
		}
		for _, p := range projects {
			msg.projects = append(msg.projects, p.Name)
		}
		if msg.users, err = st.ListAssignees(); err != nil {
			return statusMsg{text: fmt.Sprintf("Load assignees: %v", err), isError: true}
		}
		if msg.tags, err = st.ListTags(); err != nil {
			return statusMsg{text: fmt.Sprintf("Load tags: %v", err), isError: true}
		}
		if msg.entries, err = report.Load(context.Background(), st, f); err != nil {
			return statusMsg{text: fmt.Sprintf("Load report: %v", err), isError: true}
		}
		return msg
	}
}

func (r reportsModel) update(msg tea.Msg) (reportsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case reportsDataMsg:
		weekChanged := msg.prefs.WeekStart != r.prefs.WeekStart
		r.prefs = msg.prefs
		r.project = r.project.withOptions(msg.projects)
		r.user = r.user.withOptions(msg.users)
		r.tag = r.tag.withOptions(msg.tags)
		r.entries = msg.entries
		r.summary = report.Summarize(r.entries)
		r.buildChart()
		if weekChanged {
			return r, r.refresh()
		}
		return r, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			r.preset = (r.preset + len(report.Presets) - 1) % len(report.Presets)
		case key.Matches(msg, keys.Right):
			r.preset = (r.preset + 1) % len(report.Presets)
		case key.Matches(msg, keys.GroupBy):
			r.dim = (r.dim + 1) % len(report.Dimensions)
			r.buildChart()
			return r, nil
		case key.Matches(msg, keys.Project):
			r.project = r.project.next()
		case key.Matches(msg, keys.User):
			r.user = r.user.next()
		case key.Matches(msg, keys.Tag):
			r.tag = r.tag.next()
		case key.Matches(msg, keys.Priority):
			r.priority = r.priority.next()
		default:
			return r, nil
		}
		return r, r.refresh()
	}
	return r, nil
}

// chartBuckets is the series to plot: one bar per day for the date
// dimension, otherwise the top groups.
func (r reportsModel) chartBuckets() []report.Bucket {
	if r.dimension() == report.ByDate {
		f := r.currentFilter()
		return report.DailySeries(r.entries, f.Start, f.End)
	}
	return report.TopN(report.Buckets(r.entries, r.dimension()), r.prefs.TopN)
}

func (r *reportsModel) buildChart() {
	chartWidth := r.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if r.height > 30 {
		chartHeight = 16
	}

	r.chart = barchart.New(chartWidth, chartHeight)
	r.buckets = r.chartBuckets()

	labelWidth := 10
	if n := len(r.buckets); n > 0 {
		labelWidth = max(3, min(12, chartWidth/n-1))
	}

	var bars []barchart.BarData
	for i, b := range r.buckets {
		label := b.Key
		if r.dimension() == report.ByDate {
			if d, err := time.Parse(report.DateLayout, b.Key); err == nil {
				label = d.Format("Mon 02")
			}
		}
		style := lipgloss.NewStyle().Foreground(chartColors[i%len(chartColors)])
		if b.TotalSeconds == 0 {
			style = lipgloss.NewStyle().Foreground(colorSubtle)
		}
		bars = append(bars, barchart.BarData{
			Label: truncate(label, labelWidth),
			Values: []barchart.BarValue{{
				Name:  b.Key,
				Value: b.Hours(),
				Style: style,
			}},
		})
	}

	r.chart.PushAll(bars)
	r.chart.Draw()
}

func (r reportsModel) view() string {
	w := r.width - 4

	f := r.currentFilter()
	preset := activeTabStyle.Render(string(report.Presets[r.preset]))
	dateLabel := subtitleStyle.Render(fmt.Sprintf("%s to %s", f.Start.Format("Jan 02"), f.End.Format("Jan 02, 2006")))
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Reports"), "  ", preset, "  ", dateLabel,
	)

	filters := mutedStyle.Render(fmt.Sprintf("  by %s  |  %s  |  %s  |  %s  |  %s",
		r.dimension(), r.project.value(), r.user.value(), r.tag.value(), r.priority.value()))

	totals := fmt.Sprintf("  %s  %s",
		highlightStyle.Render(fmt.Sprintf("%.2f h", report.Hours(r.summary.TotalSeconds))),
		mutedStyle.Render(fmt.Sprintf("%d entries, %d tasks", r.summary.Entries, r.summary.Tasks)),
	)

	nav := mutedStyle.Render("  ←/→: range  g: group by  p/u/t/P: filters  E: export")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, filters, "", r.chart.View(), "", totals, "", r.renderTable(w), "", nav,
		),
	)
}

func (r reportsModel) renderTable(w int) string {
	if len(r.entries) == 0 {
		return mutedStyle.Render("  No data for this period")
	}

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-28s %10s %7s", strings.ToUpper(string(r.dimension())[:1])+string(r.dimension())[1:], "Hours", "Share")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 47))))

	total := r.summary.TotalSeconds
	for i, b := range r.buckets {
		if b.TotalSeconds == 0 {
			continue
		}
		dot := lipgloss.NewStyle().Foreground(chartColors[i%len(chartColors)]).Render("●")
		share := 0.0
		if total > 0 {
			share = float64(b.TotalSeconds) / float64(total) * 100
		}
		rows = append(rows, fmt.Sprintf("  %s %-26s %10.2f %6.1f%%", dot, truncate(b.Key, 26), b.Hours(), share))
	}
	return strings.Join(rows, "\n")
}
