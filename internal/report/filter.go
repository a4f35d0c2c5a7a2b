package report

import "time"

// Sentinel filter values that disable a dimension.
const (
	All           = "All"
	AllProjects   = "All Projects"
	AllUsers      = "All Users"
	AllTags       = "All Tags"
	AllPriorities = "All Priorities"
)

// Filter selects entries. Start and End are dates; End covers its whole day.
// A zero Start or End leaves that side open.
type Filter struct {
	Start    time.Time
	End      time.Time
	Project  string
	Assignee string
	Tag      string
	Priority string
}

// EndOfDay returns the last instant of t's calendar day in t's location.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func isAll(v string) bool {
	switch v {
	case "", All, AllProjects, AllUsers, AllTags, AllPriorities:
		return true
	}
	return false
}

// Match reports whether e passes every dimension of f.
func (f Filter) Match(e EnrichedEntry) bool {
	if !f.Start.IsZero() && e.StartTime.Before(StartOfDay(f.Start)) {
		return false
	}
	if !f.End.IsZero() && e.StartTime.After(EndOfDay(f.End)) {
		return false
	}
	if !isAll(f.Project) && e.Project != f.Project {
		return false
	}
	if !isAll(f.Assignee) && e.Assignee != f.Assignee {
		return false
	}
	if !isAll(f.Priority) && e.Priority != f.Priority {
		return false
	}
	if !isAll(f.Tag) && !hasTag(e.Tags, f.Tag) {
		return false
	}
	return true
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Apply returns the entries matching f, in input order.
func Apply(entries []EnrichedEntry, f Filter) []EnrichedEntry {
	out := make([]EnrichedEntry, 0, len(entries))
	for _, e := range entries {
		if f.Match(e) {
			out = append(out, e)
		}
	}
	return out
}
