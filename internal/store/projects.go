package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sadopc/tasktime/internal/tracking"
)

var ErrProjectNotFound = errors.New("project not found")

// projectColumns ends with the seconds tracked on the project's tasks,
// archived tasks included.
const projectColumns = `p.id, p.name, p.color, p.category, p.archived, p.created_at, p.updated_at,
	COALESCE((SELECT SUM(e.duration) FROM time_entries e JOIN tasks t ON t.id = e.task_id WHERE t.project_id = p.id), 0)`

func (s *Store) CreateProject(name, color, category string) (*Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &tracking.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(
		`INSERT INTO projects (name, color, category, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		name, color, category, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetProject(id)
}

func (s *Store) GetProject(id int64) (*Project, error) {
	p, err := scanProject(s.db.QueryRow(`SELECT `+projectColumns+` FROM projects p WHERE p.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get project %d: %w", id, ErrProjectNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get project %d: %w", id, err)
	}
	return p, nil
}

// ListProjects returns projects by name with their tracked totals.
func (s *Store) ListProjects(includeArchived bool) ([]Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects p`
	if !includeArchived {
		query += ` WHERE p.archived = 0`
	}
	query += ` ORDER BY p.name`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

func (s *Store) UpdateProject(id int64, name, color, category string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return &tracking.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	return s.touchProject(id, "update",
		`UPDATE projects SET name = ?, color = ?, category = ?, updated_at = ? WHERE id = ?`,
		name, color, category)
}

// ArchiveProject hides a project from pickers. Its entries stay in reports.
func (s *Store) ArchiveProject(id int64) error {
	return s.touchProject(id, "archive", `UPDATE projects SET archived = 1, updated_at = ? WHERE id = ?`)
}

// touchProject runs an update whose last two parameters are updated_at and id.
func (s *Store) touchProject(id int64, op, query string, args ...any) error {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(query, append(args, now, id)...)
	if err != nil {
		return fmt.Errorf("%s project %d: %w", op, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s project %d: %w", op, id, ErrProjectNotFound)
	}
	return nil
}

func scanProject(r scanner) (*Project, error) {
	p := &Project{}
	var createdAt, updatedAt string
	var archived int
	if err := r.Scan(&p.ID, &p.Name, &p.Color, &p.Category, &archived, &createdAt, &updatedAt, &p.TrackedSeconds); err != nil {
		return nil, err
	}
	p.Archived = archived == 1
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return p, nil
}
