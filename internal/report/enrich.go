// Package report filters, groups and summarizes time entries joined with
// their task attributes.
package report

import (
	"context"
	"errors"
	"fmt"

	"github.com/sadopc/tasktime/internal/tracking"
)

// EnrichedEntry is a time entry joined with its task.
type EnrichedEntry struct {
	tracking.TimeEntry

	TaskTitle string
	Project   string
	Assignee  string
	Tags      []string
	Priority  string
	Status    string
}

// Enrich joins each entry with its task. Entries whose task no longer
// exists are kept with empty attributes.
func Enrich(ctx context.Context, entries []tracking.TimeEntry, lookup tracking.TaskLookup) ([]EnrichedEntry, error) {
	tasks := make(map[int64]tracking.TaskInfo)
	out := make([]EnrichedEntry, 0, len(entries))

	for _, e := range entries {
		info, ok := tasks[e.TaskID]
		if !ok {
			var err error
			info, err = lookup.LookupTask(ctx, e.TaskID)
			if err != nil && !errors.Is(err, tracking.ErrTaskNotFound) {
				return nil, fmt.Errorf("enrich entry %s: %w", e.ID, err)
			}
			tasks[e.TaskID] = info
		}
		out = append(out, Join(e, info))
	}
	return out, nil
}

// Join combines one entry with its task attributes.
func Join(e tracking.TimeEntry, t tracking.TaskInfo) EnrichedEntry {
	return EnrichedEntry{
		TimeEntry: e,
		TaskTitle: t.Title,
		Project:   t.Project,
		Assignee:  t.Assignee,
		Tags:      t.Tags,
		Priority:  t.Priority,
		Status:    t.Status,
	}
}
