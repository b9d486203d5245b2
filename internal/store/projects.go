package store

import (
	"database/sql"
	"fmt"
	"time"
)

// Project is one filesystem path the assistant operated in.
type Project struct {
	ID             int64
	Path           string
	EncodedPath    string
	Name           string
	LastCost       sql.NullFloat64
	LastSessionID  string
	LastModelUsage string // raw JSON object
	GroupID        sql.NullInt64
}

// UpsertProject creates or updates the project row keyed by path and
// returns its id. All metadata fields are overwritten on every pass.
func (s *Store) UpsertProject(p Project) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	usage := p.LastModelUsage
	if usage == "" {
		usage = "{}"
	}

	_, err := s.db.Exec(
		`INSERT INTO projects (path, encoded_path, name, last_cost, last_session_id, last_model_usage, project_group_id, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET
			encoded_path = excluded.encoded_path,
			name = excluded.name,
			last_cost = excluded.last_cost,
			last_session_id = excluded.last_session_id,
			last_model_usage = excluded.last_model_usage,
			project_group_id = excluded.project_group_id,
			updated_at = excluded.updated_at`,
		p.Path, p.EncodedPath, p.Name, p.LastCost, p.LastSessionID, usage, p.GroupID, now,
	)
	if err != nil {
		return 0, fmt.Errorf("upsert project %s: %w", p.Path, err)
	}

	var id int64
	if err := s.db.QueryRow(`SELECT id FROM projects WHERE path = ?`, p.Path).Scan(&id); err != nil {
		return 0, fmt.Errorf("lookup project %s: %w", p.Path, err)
	}
	return id, nil
}

// ProjectByPath returns the project with the given path, or nil if absent.
func (s *Store) ProjectByPath(path string) (*Project, error) {
	row := s.db.QueryRow(
		`SELECT id, path, encoded_path, name, last_cost, last_session_id, last_model_usage, project_group_id
		 FROM projects WHERE path = ?`, path)
	return scanProject(row)
}

// ListProjects returns all projects ordered by most recently updated.
func (s *Store) ListProjects() ([]Project, error) {
	rows, err := s.db.Query(
		`SELECT id, path, encoded_path, name, last_cost, last_session_id, last_model_usage, project_group_id
		 FROM projects ORDER BY updated_at DESC`)
	if err != nil {
		return nil, err
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*Project, error) {
	var p Project
	err := row.Scan(&p.ID, &p.Path, &p.EncodedPath, &p.Name,
		&p.LastCost, &p.LastSessionID, &p.LastModelUsage, &p.GroupID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
