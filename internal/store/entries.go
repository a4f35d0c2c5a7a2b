package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/sadopc/tasktime/internal/tracking"
)

// timeLayout is fixed-width so stored timestamps compare correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

var _ tracking.EntryRepository = (*Store)(nil)
var _ tracking.TaskLookup = (*Store)(nil)

type scanner interface {
	Scan(dest ...any) error
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// CreateEntry persists a finished entry. Writing the same ID twice is a no-op
// so a retried save never duplicates time.
func (s *Store) CreateEntry(ctx context.Context, e tracking.TimeEntry) (string, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO time_entries (id, task_id, start_time, end_time, duration, description)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO NOTHING`,
		e.ID, e.TaskID, formatTime(e.StartTime), formatTime(e.EndTime), e.Duration, e.Description,
	)
	if err != nil {
		return "", fmt.Errorf("insert entry: %w", err)
	}
	return e.ID, nil
}

func (s *Store) GetEntry(ctx context.Context, id string) (*tracking.TimeEntry, error) {
	e, err := scanEntry(s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM time_entries WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("get entry %s: %w", id, tracking.ErrEntryNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get entry %s: %w", id, err)
	}
	return e, nil
}

const entryColumns = `id, task_id, start_time, end_time, duration, description`

// QueryEntries returns entries newest first.
func (s *Store) QueryEntries(ctx context.Context, q tracking.EntryQuery) ([]tracking.TimeEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM time_entries WHERE 1=1`
	var args []any

	if len(q.TaskIDs) > 0 {
		query += ` AND task_id IN (?` + strings.Repeat(`, ?`, len(q.TaskIDs)-1) + `)`
		for _, id := range q.TaskIDs {
			args = append(args, id)
		}
	}
	if q.From != nil {
		query += ` AND start_time >= ?`
		args = append(args, formatTime(*q.From))
	}
	if q.To != nil {
		query += ` AND start_time < ?`
		args = append(args, formatTime(*q.To))
	}
	query += ` ORDER BY start_time DESC`
	if q.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var entries []tracking.TimeEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

func (s *Store) DeleteEntry(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM time_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete entry %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete entry %s: %w", id, tracking.ErrEntryNotFound)
	}
	return nil
}

// TotalSince sums the duration of entries started at or after from.
func (s *Store) TotalSince(ctx context.Context, from time.Time) (int64, error) {
	var total sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(duration), 0) FROM time_entries WHERE start_time >= ?`,
		formatTime(from),
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("total since: %w", err)
	}
	return total.Int64, nil
}

func scanEntry(r scanner) (*tracking.TimeEntry, error) {
	var e tracking.TimeEntry
	var startTime, endTime string
	if err := r.Scan(&e.ID, &e.TaskID, &startTime, &endTime, &e.Duration, &e.Description); err != nil {
		return nil, err
	}
	var err error
	if e.StartTime, err = time.Parse(time.RFC3339Nano, startTime); err != nil {
		return nil, fmt.Errorf("parse start_time of %s: %w", e.ID, err)
	}
	if e.EndTime, err = time.Parse(time.RFC3339Nano, endTime); err != nil {
		return nil, fmt.Errorf("parse end_time of %s: %w", e.ID, err)
	}
	e.StartTime = e.StartTime.Local()
	e.EndTime = e.EndTime.Local()
	return &e, nil
}
