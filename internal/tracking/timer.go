package tracking

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// State is the controller's timer state.
type State int

const (
	StateIdle State = iota
	StateRunning
	StatePaused
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	default:
		return "idle"
	}
}

// ActiveTimer is the in-memory record of the current work session.
// StartTime is the effective start: it moves forward by every pause, so
// worked time is always measured from it.
type ActiveTimer struct {
	TaskID    int64
	StartTime time.Time
	Running   bool
	PausedAt  time.Time     // zero unless paused
	Paused    time.Duration // total pause folded into StartTime so far
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithLogger sets the controller's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// Controller owns the single active timer. All transitions, including the
// persistence write on stop, happen under one lock.
type Controller struct {
	mu   sync.Mutex
	repo EntryRepository
	now  func() time.Time
	log  zerolog.Logger

	active  *ActiveTimer
	pending *TimeEntry // computed on stop but not yet saved
}

func NewController(repo EntryRepository, opts ...Option) *Controller {
	c := &Controller{
		repo: repo,
		now:  time.Now,
		log:  zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Start begins timing taskID. An active timer, for any task, is stopped
// first and its entry returned. A pending entry from an earlier failed save
// is retried before anything else; if that or the stop fails, the new timer
// is not started.
func (c *Controller) Start(ctx context.Context, taskID int64) (*TimeEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending != nil {
		if _, err := c.savePendingLocked(ctx); err != nil {
			return nil, err
		}
	}

	var prev *TimeEntry
	if c.active != nil {
		e, err := c.stopLocked(ctx)
		if err != nil {
			return e, err
		}
		prev = e
	}

	c.active = &ActiveTimer{
		TaskID:    taskID,
		StartTime: c.now(),
		Running:   true,
	}
	c.log.Info().Int64("task_id", taskID).Msg("timer started")
	return prev, nil
}

// Pause freezes a running timer. It reports whether anything changed.
func (c *Controller) Pause() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active == nil || !c.active.Running {
		c.log.Debug().Err(ErrInvalidTransition).Str("op", "pause").Stringer("state", c.stateLocked()).Msg("ignored")
		return false
	}
	c.active.Running = false
	c.active.PausedAt = c.now()
	return true
}

// Resume restarts a paused timer, excluding the paused interval from the
// worked time. It reports whether anything changed.
func (c *Controller) Resume() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active == nil || c.active.Running {
		c.log.Debug().Err(ErrInvalidTransition).Str("op", "resume").Stringer("state", c.stateLocked()).Msg("ignored")
		return false
	}
	c.foldPauseLocked(c.now())
	c.active.Running = true
	return true
}

// Toggle pauses a running timer or resumes a paused one and returns the new state.
func (c *Controller) Toggle() State {
	switch c.State() {
	case StateRunning:
		c.Pause()
	case StatePaused:
		c.Resume()
	}
	return c.State()
}

// Stop finalizes the active timer into a TimeEntry and saves it. Stopping
// an idle controller returns (nil, nil). When the save fails the timer is
// still reset; the entry is returned with a *RepositoryError and kept as
// pending so RetryPending can save it later.
func (c *Controller) Stop(ctx context.Context) (*TimeEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active == nil {
		return nil, nil
	}
	return c.stopLocked(ctx)
}

func (c *Controller) stopLocked(ctx context.Context) (*TimeEntry, error) {
	now := c.now()
	if !c.active.Running {
		c.foldPauseLocked(now)
	}
	entry := NewEntry(c.active.TaskID, c.active.StartTime, now, "")
	c.active = nil

	if err := c.saveLocked(ctx, &entry); err != nil {
		c.pending = &entry
		c.log.Warn().Err(err).Str("entry_id", entry.ID).Int64("duration", entry.Duration).Msg("time entry kept pending")
		return &entry, err
	}
	c.log.Info().Str("entry_id", entry.ID).Int64("task_id", entry.TaskID).Int64("duration", entry.Duration).Msg("timer stopped")
	return &entry, nil
}

func (c *Controller) foldPauseLocked(now time.Time) {
	gap := now.Sub(c.active.PausedAt)
	if gap < 0 {
		gap = 0
	}
	c.active.StartTime = c.active.StartTime.Add(gap)
	c.active.Paused += gap
	c.active.PausedAt = time.Time{}
}

func (c *Controller) saveLocked(ctx context.Context, e *TimeEntry) error {
	id, err := c.repo.CreateEntry(ctx, *e)
	if err != nil {
		return &RepositoryError{Op: "create time entry", Err: err}
	}
	if id != "" {
		e.ID = id
	}
	return nil
}

// Pending returns the entry whose save failed, if any.
func (c *Controller) Pending() (TimeEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return TimeEntry{}, false
	}
	return *c.pending, true
}

// RetryPending saves the pending entry. It returns (nil, nil) when nothing is pending.
func (c *Controller) RetryPending(ctx context.Context) (*TimeEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.savePendingLocked(ctx)
}

func (c *Controller) savePendingLocked(ctx context.Context) (*TimeEntry, error) {
	if c.pending == nil {
		return nil, nil
	}
	e := *c.pending
	if err := c.saveLocked(ctx, &e); err != nil {
		return &e, err
	}
	c.pending = nil
	c.log.Info().Str("entry_id", e.ID).Msg("pending time entry saved")
	return &e, nil
}

// Elapsed is the worked time of the active timer. It is frozen while paused
// and zero when idle.
func (c *Controller) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active == nil {
		return 0
	}
	end := c.now()
	if !c.active.Running {
		end = c.active.PausedAt
	}
	d := end.Sub(c.active.StartTime)
	if d < 0 {
		return 0
	}
	return d
}

// ElapsedSeconds is Elapsed truncated to whole seconds.
func (c *Controller) ElapsedSeconds() int64 {
	return int64(c.Elapsed() / time.Second)
}

// Active returns a copy of the active timer.
func (c *Controller) Active() (ActiveTimer, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return ActiveTimer{}, false
	}
	return *c.active, true
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Controller) stateLocked() State {
	switch {
	case c.active == nil:
		return StateIdle
	case c.active.Running:
		return StateRunning
	default:
		return StatePaused
	}
}
