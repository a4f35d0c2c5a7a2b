// Package tracking holds the time-tracking core: time entries, the
// single-timer controller, manual entries and the repository boundary.
package tracking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TimeEntry is a completed work interval. It is never mutated after creation.
type TimeEntry struct {
	ID          string
	TaskID      int64
	StartTime   time.Time
	EndTime     time.Time
	Duration    int64 // seconds
	Description string
}

// NewEntry builds an entry with a fresh ID. If end is before start, end is
// clamped to start so the duration is never negative. Monotonic clock
// readings are dropped so the duration matches the stored wall times.
func NewEntry(taskID int64, start, end time.Time, description string) TimeEntry {
	start, end = start.Round(0), end.Round(0)
	if end.Before(start) {
		end = start
	}
	return TimeEntry{
		ID:          uuid.NewString(),
		TaskID:      taskID,
		StartTime:   start,
		EndTime:     end,
		Duration:    int64(end.Sub(start) / time.Second),
		Description: description,
	}
}

// EntryQuery narrows a repository query. Zero values mean no restriction.
type EntryQuery struct {
	TaskIDs []int64
	From    *time.Time
	To      *time.Time // exclusive
	Limit   int
}

// EntryRepository persists time entries.
type EntryRepository interface {
	CreateEntry(ctx context.Context, e TimeEntry) (string, error)
	QueryEntries(ctx context.Context, q EntryQuery) ([]TimeEntry, error)
	DeleteEntry(ctx context.Context, id string) error
}

// TaskInfo is the descriptive part of a task that reports need.
type TaskInfo struct {
	ID       int64
	Title    string
	Project  string
	Assignee string
	Tags     []string
	Priority string
	Status   string
}

// TaskLookup resolves a task ID to its attributes.
type TaskLookup interface {
	LookupTask(ctx context.Context, taskID int64) (TaskInfo, error)
}
