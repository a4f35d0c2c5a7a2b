package report

import (
	"context"
	"fmt"

	"github.com/sadopc/tasktime/internal/tracking"
)

// Source supplies stored entries and their tasks.
type Source interface {
	QueryEntries(ctx context.Context, q tracking.EntryQuery) ([]tracking.TimeEntry, error)
	tracking.TaskLookup
}

// Load fetches the entries in f's date range, joins them with their tasks
// and applies the rest of f. Results are newest first.
func Load(ctx context.Context, src Source, f Filter) ([]EnrichedEntry, error) {
	var q tracking.EntryQuery
	if !f.Start.IsZero() {
		from := StartOfDay(f.Start)
		q.From = &from
	}
	if !f.End.IsZero() {
		to := StartOfDay(f.End).AddDate(0, 0, 1)
		q.To = &to
	}
	entries, err := src.QueryEntries(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	enriched, err := Enrich(ctx, entries, src)
	if err != nil {
		return nil, err
	}
	return Apply(enriched, f), nil
}
