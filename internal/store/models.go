package store

import "time"

type Project struct {
	ID        int64
	Name      string
	Color     string
	Category  string
	Archived  bool
	CreatedAt time.Time
	UpdatedAt time.Time

	// TrackedSeconds is the total logged on the project's tasks.
	TrackedSeconds int64
}

type Task struct {
	ID        int64
	ProjectID int64
	Title     string
	Assignee  string
	Priority  string
	Status    string
	Tags      string // comma-separated
	Archived  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TaskInput carries the editable fields of a task.
type TaskInput struct {
	Title    string
	Assignee string
	Priority string
	Status   string
	Tags     string
}

type Setting struct {
	Key   string
	Value string
}

var (
	Priorities = []string{"Low", "Medium", "High", "Urgent"}
	Statuses   = []string{"To Do", "In Progress", "Review", "Done"}
)
