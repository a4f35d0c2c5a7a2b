package tracking

import (
	"context"
	"fmt"
	"time"
)

// MaxManualHours caps a single manual entry at one leap year.
const MaxManualHours = 24 * 366

// ManualEntry is retroactively logged work.
type ManualEntry struct {
	TaskID      int64
	Hours       int
	Minutes     int
	Description string
}

// Seconds is the total logged duration.
func (m ManualEntry) Seconds() int64 {
	return int64(m.Hours)*3600 + int64(m.Minutes)*60
}

func (m ManualEntry) Validate() error {
	switch {
	case m.Hours < 0:
		return &ValidationError{Field: "hours", Reason: "must not be negative"}
	case m.Hours > MaxManualHours:
		return &ValidationError{Field: "hours", Reason: fmt.Sprintf("must be at most %d", MaxManualHours)}
	case m.Minutes < 0 || m.Minutes > 59:
		return &ValidationError{Field: "minutes", Reason: "must be between 0 and 59"}
	case m.Seconds() <= 0:
		return &ValidationError{Field: "duration", Reason: "nothing to log"}
	}
	return nil
}

// NewManualEntry turns validated input into an entry ending at now. The
// real work window is unknown, so the start is placed duration before now.
func NewManualEntry(m ManualEntry, now time.Time) (TimeEntry, error) {
	if err := m.Validate(); err != nil {
		return TimeEntry{}, err
	}
	d := time.Duration(m.Seconds()) * time.Second
	return NewEntry(m.TaskID, now.Add(-d), now, m.Description), nil
}

// LogManual validates and saves a manual entry. It does not touch the
// active timer.
func (c *Controller) LogManual(ctx context.Context, m ManualEntry) (TimeEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, err := NewManualEntry(m, c.now())
	if err != nil {
		return TimeEntry{}, err
	}
	if err := c.saveLocked(ctx, &e); err != nil {
		return e, err
	}
	c.log.Info().Str("entry_id", e.ID).Int64("task_id", e.TaskID).Int64("duration", e.Duration).Msg("manual entry logged")
	return e, nil
}
