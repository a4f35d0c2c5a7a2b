package report

import (
	"fmt"
	"time"
)

// RangePreset names a date range relative to today.
type RangePreset string

const (
	Today     RangePreset = "Today"
	Yesterday RangePreset = "Yesterday"
	ThisWeek  RangePreset = "This Week"
	LastWeek  RangePreset = "Last Week"
	ThisMonth RangePreset = "This Month"
	LastMonth RangePreset = "Last Month"
	Custom    RangePreset = "Custom Range"
)

// Presets lists the relative presets in display order.
var Presets = []RangePreset{Today, Yesterday, ThisWeek, LastWeek, ThisMonth, LastMonth}

// ParsePreset accepts a display name or a short form such as "this-week".
func ParsePreset(s string) (RangePreset, error) {
	switch s {
	case string(Today), "today":
		return Today, nil
	case string(Yesterday), "yesterday":
		return Yesterday, nil
	case string(ThisWeek), "this-week", "week":
		return ThisWeek, nil
	case string(LastWeek), "last-week":
		return LastWeek, nil
	case string(ThisMonth), "this-month", "month":
		return ThisMonth, nil
	case string(LastMonth), "last-month":
		return LastMonth, nil
	case string(Custom), "custom":
		return Custom, nil
	}
	return "", fmt.Errorf("unknown range %q", s)
}

// Range returns the first and last day of preset relative to now. Both are
// midnight of their day; pair the end with EndOfDay when filtering.
// weekStart is time.Monday or time.Sunday. Custom returns zero times.
func Range(preset RangePreset, now time.Time, weekStart time.Weekday) (time.Time, time.Time) {
	today := StartOfDay(now)

	switch preset {
	case Today:
		return today, today
	case Yesterday:
		y := today.AddDate(0, 0, -1)
		return y, y
	case ThisWeek:
		start := startOfWeek(today, weekStart)
		return start, start.AddDate(0, 0, 6)
	case LastWeek:
		start := startOfWeek(today, weekStart).AddDate(0, 0, -7)
		return start, start.AddDate(0, 0, 6)
	case ThisMonth:
		start := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
		return start, start.AddDate(0, 1, -1)
	case LastMonth:
		start := time.Date(today.Year(), today.Month()-1, 1, 0, 0, 0, 0, today.Location())
		return start, start.AddDate(0, 1, -1)
	}
	return time.Time{}, time.Time{}
}

func startOfWeek(day time.Time, weekStart time.Weekday) time.Time {
	offset := (int(day.Weekday()) - int(weekStart) + 7) % 7
	return day.AddDate(0, 0, -offset)
}

// ParseWeekStart maps the week_start setting to a weekday, defaulting to Monday.
func ParseWeekStart(s string) time.Weekday {
	if s == "sunday" {
		return time.Sunday
	}
	return time.Monday
}
