package report

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Unspecified is the bucket key for entries missing the grouped attribute.
const Unspecified = "Unspecified"

// DateLayout is the key format of the date dimension.
const DateLayout = "2006-01-02"

// Dimension is an attribute entries can be grouped by.
type Dimension string

const (
	ByProject  Dimension = "project"
	ByAssignee Dimension = "assignee"
	ByTask     Dimension = "task"
	ByStatus   Dimension = "status"
	ByPriority Dimension = "priority"
	ByDate     Dimension = "date"
)

// Dimensions lists every dimension in display order.
var Dimensions = []Dimension{ByProject, ByAssignee, ByTask, ByStatus, ByPriority, ByDate}

func ParseDimension(s string) (Dimension, error) {
	switch s {
	case "project":
		return ByProject, nil
	case "assignee", "user":
		return ByAssignee, nil
	case "task":
		return ByTask, nil
	case "status":
		return ByStatus, nil
	case "priority":
		return ByPriority, nil
	case "date", "day":
		return ByDate, nil
	}
	return "", fmt.Errorf("unknown dimension %q", s)
}

// Key returns e's bucket key for d.
func Key(e EnrichedEntry, d Dimension) string {
	var k string
	switch d {
	case ByProject:
		k = e.Project
	case ByAssignee:
		k = e.Assignee
	case ByTask:
		k = e.TaskTitle
	case ByStatus:
		k = e.Status
	case ByPriority:
		k = e.Priority
	case ByDate:
		if !e.StartTime.IsZero() {
			k = e.StartTime.Local().Format(DateLayout)
		}
	}
	if k == "" {
		return Unspecified
	}
	return k
}

// Bucket is a group key with its total duration.
type Bucket struct {
	Key          string
	TotalSeconds int64
}

// Hours is the bucket total in hours.
func (b Bucket) Hours() float64 { return Hours(b.TotalSeconds) }

// GroupBy sums durations per key of d.
func GroupBy(entries []EnrichedEntry, d Dimension) map[string]int64 {
	out := make(map[string]int64)
	for _, e := range entries {
		out[Key(e, d)] += e.Duration
	}
	return out
}

// Buckets is GroupBy as a slice in order of first appearance.
func Buckets(entries []EnrichedEntry, d Dimension) []Bucket {
	index := make(map[string]int)
	var out []Bucket
	for _, e := range entries {
		k := Key(e, d)
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, Bucket{Key: k})
		}
		out[i].TotalSeconds += e.Duration
	}
	return out
}

// TopN sorts buckets by total, largest first, keeping the input order for
// ties, and keeps at most n of them. n <= 0 keeps all. The input is not modified.
func TopN(buckets []Bucket, n int) []Bucket {
	out := make([]Bucket, len(buckets))
	copy(out, buckets)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalSeconds > out[j].TotalSeconds
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// DailySeries has one bucket per day from start to end inclusive, with days
// that have no entries set to zero. Entries outside the range are ignored.
func DailySeries(entries []EnrichedEntry, start, end time.Time) []Bucket {
	if start.IsZero() || end.IsZero() {
		return nil
	}
	totals := GroupBy(entries, ByDate)
	var out []Bucket
	for d := StartOfDay(start); !d.After(end); d = d.AddDate(0, 0, 1) {
		k := d.Format(DateLayout)
		out = append(out, Bucket{Key: k, TotalSeconds: totals[k]})
	}
	return out
}

// Total sums the durations of entries.
func Total(entries []EnrichedEntry) int64 {
	var sum int64
	for _, e := range entries {
		sum += e.Duration
	}
	return sum
}

// Hours converts seconds to hours rounded to two decimals.
func Hours(seconds int64) float64 {
	return math.Round(float64(seconds)/3600*100) / 100
}

// Summary is a headline view of a set of entries.
type Summary struct {
	TotalSeconds int64
	Entries      int
	Tasks        int
}

func Summarize(entries []EnrichedEntry) Summary {
	tasks := make(map[int64]struct{})
	for _, e := range entries {
		tasks[e.TaskID] = struct{}{}
	}
	return Summary{
		TotalSeconds: Total(entries),
		Entries:      len(entries),
		Tasks:        len(tasks),
	}
}
