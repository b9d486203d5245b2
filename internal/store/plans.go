package store

import (
	"database/sql"
	"fmt"
	"time"
)

// Plan is a standalone plan document, optionally linked to the session in
// which it was authored.
type Plan struct {
	ID            int64
	Slug          string
	Title         string
	Content       string
	FileCreatedAt time.Time
	SessionRowID  sql.NullInt64
}

// UpsertPlan creates or updates the plan keyed by slug. An existing session
// link is preserved.
func (s *Store) UpsertPlan(slug, title, content string, fileCreatedAt time.Time) error {
	_, err := s.db.Exec(
		`INSERT INTO session_plans (slug, title, content, file_created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(slug) DO UPDATE SET
			title = excluded.title,
			content = excluded.content,
			file_created_at = excluded.file_created_at`,
		slug, title, content, fmtTime(fileCreatedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert plan %s: %w", slug, err)
	}
	return nil
}

// UnlinkedPlans returns all plans without a session link.
func (s *Store) UnlinkedPlans() ([]Plan, error) {
	rows, err := s.db.Query(
		`SELECT id, slug, title, content, file_created_at, project_session_id
		 FROM session_plans WHERE project_session_id IS NULL`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPlans(rows)
}

// ListPlans returns all plans ordered by source file creation time, newest first.
func (s *Store) ListPlans() ([]Plan, error) {
	rows, err := s.db.Query(
		`SELECT id, slug, title, content, file_created_at, project_session_id
		 FROM session_plans ORDER BY file_created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPlans(rows)
}

// PlanBySlug returns the plan with the given slug, or nil if absent.
func (s *Store) PlanBySlug(slug string) (*Plan, error) {
	rows, err := s.db.Query(
		`SELECT id, slug, title, content, file_created_at, project_session_id
		 FROM session_plans WHERE slug = ?`, slug)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	plans, err := scanPlans(rows)
	if err != nil || len(plans) == 0 {
		return nil, err
	}
	return &plans[0], nil
}

// LinkPlan attaches a plan to the session it was authored in.
func (s *Store) LinkPlan(planID, sessionRowID int64) error {
	_, err := s.db.Exec(
		`UPDATE session_plans SET project_session_id = ? WHERE id = ?`,
		sessionRowID, planID,
	)
	return err
}

func scanPlans(rows *sql.Rows) ([]Plan, error) {
	var plans []Plan
	for rows.Next() {
		var p Plan
		var created sql.NullString
		if err := rows.Scan(&p.ID, &p.Slug, &p.Title, &p.Content, &created, &p.SessionRowID); err != nil {
			return nil, err
		}
		var err error
		if p.FileCreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}
