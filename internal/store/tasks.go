package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sadopc/tasktime/internal/tracking"
)

const taskColumns = `id, project_id, title, assignee, priority, status, tags, archived, created_at, updated_at`

func (s *Store) CreateTask(projectID int64, in TaskInput) (*Task, error) {
	in = in.withDefaults()
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(
		`INSERT INTO tasks (project_id, title, assignee, priority, status, tags, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		projectID, in.Title, in.Assignee, in.Priority, in.Status, normalizeTags(in.Tags), now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetTask(id)
}

// UpdateTask replaces the editable fields of an existing task.
func (s *Store) UpdateTask(id int64, in TaskInput) error {
	in = in.withDefaults()
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(
		`UPDATE tasks SET title = ?, assignee = ?, priority = ?, status = ?, tags = ?, updated_at = ? WHERE id = ?`,
		in.Title, in.Assignee, in.Priority, in.Status, normalizeTags(in.Tags), now, id,
	)
	if err != nil {
		return fmt.Errorf("update task %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update task %d: %w", id, tracking.ErrTaskNotFound)
	}
	return nil
}

func (s *Store) GetTask(id int64) (*Task, error) {
	t, err := scanTask(s.db.QueryRow(`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("get task %d: %w", id, err)
	}
	return t, nil
}

func (s *Store) ListTasks(projectID int64, includeArchived bool) ([]Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE project_id = ?`
	if !includeArchived {
		query += ` AND archived = 0`
	}
	query += ` ORDER BY title`
	return s.queryTasks(query, projectID)
}

// ListAllTasks returns active tasks across every active project.
func (s *Store) ListAllTasks() ([]Task, error) {
	return s.queryTasks(`
		SELECT t.id, t.project_id, t.title, t.assignee, t.priority, t.status, t.tags, t.archived, t.created_at, t.updated_at
		FROM tasks t JOIN projects p ON p.id = t.project_id
		WHERE t.archived = 0 AND p.archived = 0
		ORDER BY p.name, t.title`)
}

func (s *Store) queryTasks(query string, args ...any) ([]Task, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (s *Store) ArchiveTask(id int64) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`UPDATE tasks SET archived = 1, updated_at = ? WHERE id = ?`, now, id,
	)
	return err
}

// ListAssignees returns the distinct non-empty assignees, sorted.
func (s *Store) ListAssignees() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT assignee FROM tasks WHERE assignee != '' ORDER BY assignee`)
	if err != nil {
		return nil, fmt.Errorf("list assignees: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ListTags returns every distinct tag used by any task, sorted.
func (s *Store) ListTags() ([]string, error) {
	rows, err := s.db.Query(`SELECT tags FROM tasks WHERE tags != ''`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]bool)
	var out []string
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		for _, tag := range SplitTags(raw) {
			if !seen[tag] {
				seen[tag] = true
				out = append(out, tag)
			}
		}
	}
	sort.Strings(out)
	return out, rows.Err()
}

// LookupTask resolves a task and its project name for reports.
func (s *Store) LookupTask(ctx context.Context, taskID int64) (tracking.TaskInfo, error) {
	var info tracking.TaskInfo
	var tags string
	err := s.db.QueryRowContext(ctx, `
		SELECT t.id, t.title, p.name, t.assignee, t.tags, t.priority, t.status
		FROM tasks t JOIN projects p ON p.id = t.project_id
		WHERE t.id = ?`, taskID,
	).Scan(&info.ID, &info.Title, &info.Project, &info.Assignee, &tags, &info.Priority, &info.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return info, fmt.Errorf("lookup task %d: %w", taskID, tracking.ErrTaskNotFound)
	}
	if err != nil {
		return info, fmt.Errorf("lookup task %d: %w", taskID, err)
	}
	info.Tags = SplitTags(tags)
	return info, nil
}

// SplitTags splits a comma-separated tag list, dropping blanks.
func SplitTags(raw string) []string {
	var out []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func normalizeTags(raw string) string {
	return strings.Join(SplitTags(raw), ",")
}

func (in TaskInput) withDefaults() TaskInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Assignee = strings.TrimSpace(in.Assignee)
	if in.Priority == "" {
		in.Priority = "Medium"
	}
	if in.Status == "" {
		in.Status = "To Do"
	}
	return in
}

func scanTask(r scanner) (*Task, error) {
	t := &Task{}
	var createdAt, updatedAt string
	var archived int
	if err := r.Scan(&t.ID, &t.ProjectID, &t.Title, &t.Assignee, &t.Priority, &t.Status, &t.Tags, &archived, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	t.Archived = archived == 1
	t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	t.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return t, nil
}
