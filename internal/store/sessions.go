package store

import (
	"database/sql"
	"fmt"
	"time"
)

// Session is one conversation log stream within a project.
type Session struct {
	ID              int64
	ProjectID       int64
	SessionID       string
	IsSidechain     bool
	AgentID         string
	ParentSessionID sql.NullInt64
	Summary         string
	GitBranch       string
	CWD             string
	ClaudeVersion   string
	StartedAt       time.Time // zero if unknown
	EndedAt         time.Time // zero if unknown
	TotalInput      int64
	TotalOutput     int64
	TotalCacheRead  int64
	TotalCacheCreat int64
	MessagesCount   int64
}

const sessionColumns = `id, project_id, session_id, is_sidechain, agent_id,
	parent_project_session_id, summary, git_branch, cwd, claude_version,
	started_at, ended_at, total_input_tokens, total_output_tokens,
	total_cache_read_tokens, total_cache_creation_tokens, messages_count`

// SessionByKey returns the session with the given (project, session id) key,
// or nil if absent.
func (s *Store) SessionByKey(projectID int64, sessionID string) (*Session, error) {
	row := s.db.QueryRow(
		`SELECT `+sessionColumns+` FROM project_sessions WHERE project_id = ? AND session_id = ?`,
		projectID, sessionID)
	return scanSession(row)
}

// SessionBySessionID returns the first session with the given session id
// across all projects, or nil if absent. Session ids are UUID-like filenames,
// so cross-project collisions are not expected.
func (s *Store) SessionBySessionID(sessionID string) (*Session, error) {
	row := s.db.QueryRow(
		`SELECT `+sessionColumns+` FROM project_sessions WHERE session_id = ? ORDER BY id LIMIT 1`,
		sessionID)
	return scanSession(row)
}

// UpsertSessionStart creates or updates the session row with the metadata
// taken from the first message-bearing record of its log file, and returns
// the row id. Totals and ended_at are left for FinalizeSession.
func (s *Store) UpsertSessionStart(sess Session) (int64, error) {
	_, err := s.db.Exec(
		`INSERT INTO project_sessions (project_id, session_id, is_sidechain, agent_id, git_branch, cwd, claude_version, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(project_id, session_id) DO UPDATE SET
			is_sidechain = excluded.is_sidechain,
			agent_id = excluded.agent_id,
			git_branch = excluded.git_branch,
			cwd = excluded.cwd,
			claude_version = excluded.claude_version,
			started_at = excluded.started_at`,
		sess.ProjectID, sess.SessionID, sess.IsSidechain, sess.AgentID,
		sess.GitBranch, sess.CWD, sess.ClaudeVersion, fmtTime(sess.StartedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("upsert session %s: %w", sess.SessionID, err)
	}

	var id int64
	err = s.db.QueryRow(
		`SELECT id FROM project_sessions WHERE project_id = ? AND session_id = ?`,
		sess.ProjectID, sess.SessionID,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("lookup session %s: %w", sess.SessionID, err)
	}
	return id, nil
}

// FinalizeSession stores the pending summary and recomputes ended_at, the
// four token totals and messages_count from the session's current messages.
// Derived values are always recomputed, never advanced incrementally, so
// repeated imports converge on the same row.
func (s *Store) FinalizeSession(sessionRowID int64, summary string) error {
	_, err := s.db.Exec(
		`UPDATE project_sessions SET
			summary = ?,
			ended_at = (SELECT MAX(timestamp) FROM messages WHERE project_session_id = ?),
			total_input_tokens = (SELECT COALESCE(SUM(input_tokens), 0) FROM messages WHERE project_session_id = ?),
			total_output_tokens = (SELECT COALESCE(SUM(output_tokens), 0) FROM messages WHERE project_session_id = ?),
			total_cache_read_tokens = (SELECT COALESCE(SUM(cache_read_tokens), 0) FROM messages WHERE project_session_id = ?),
			total_cache_creation_tokens = (SELECT COALESCE(SUM(cache_creation_tokens), 0) FROM messages WHERE project_session_id = ?),
			messages_count = (SELECT COUNT(*) FROM messages WHERE project_session_id = ?)
		 WHERE id = ?`,
		summary, sessionRowID, sessionRowID, sessionRowID, sessionRowID, sessionRowID, sessionRowID, sessionRowID,
	)
	if err != nil {
		return fmt.Errorf("finalize session %d: %w", sessionRowID, err)
	}
	return nil
}

// SessionMessageCount returns the number of messages stored for a session.
func (s *Store) SessionMessageCount(sessionRowID int64) (int64, error) {
	var n int64
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM messages WHERE project_session_id = ?`, sessionRowID,
	).Scan(&n)
	return n, err
}

// OrphanSidechains returns all sidechain sessions lacking a parent link.
func (s *Store) OrphanSidechains() ([]Session, error) {
	rows, err := s.db.Query(
		`SELECT ` + sessionColumns + ` FROM project_sessions
		 WHERE is_sidechain = 1 AND parent_project_session_id IS NULL`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *sess)
	}
	return sessions, rows.Err()
}

// FindEnclosingMainSession returns the id of the most-recently-started
// non-sidechain session in the project whose time span contains `at`
// (started_at <= at, and ended_at absent or >= at). ok is false when no
// session qualifies. Exact started_at ties fall to the newest row.
func (s *Store) FindEnclosingMainSession(projectID int64, at time.Time) (id int64, ok bool, err error) {
	ts := at.UTC().Format(timeLayout)
	err = s.db.QueryRow(
		`SELECT id FROM project_sessions
		 WHERE project_id = ? AND is_sidechain = 0
		   AND started_at IS NOT NULL AND started_at <= ?
		   AND (ended_at IS NULL OR ended_at >= ?)
		 ORDER BY started_at DESC, id DESC
		 LIMIT 1`,
		projectID, ts, ts,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// LinkParentSession sets the parent session of a sidechain.
func (s *Store) LinkParentSession(sessionRowID, parentRowID int64) error {
	_, err := s.db.Exec(
		`UPDATE project_sessions SET parent_project_session_id = ? WHERE id = ?`,
		parentRowID, sessionRowID,
	)
	return err
}

// RecentSessions returns sessions ordered by latest start, optionally scoped
// to one project path. projectPath == "" means all projects.
func (s *Store) RecentSessions(projectPath string, limit int) ([]Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM project_sessions`
	args := []any{}
	if projectPath != "" {
		query = `SELECT ` + sessionColumns + ` FROM project_sessions
			 WHERE project_id = (SELECT id FROM projects WHERE path = ?)`
		args = append(args, projectPath)
	}
	query += ` ORDER BY started_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *sess)
	}
	return sessions, rows.Err()
}

func scanSession(row rowScanner) (*Session, error) {
	var sess Session
	var sidechain int
	var startedAt, endedAt sql.NullString
	err := row.Scan(
		&sess.ID, &sess.ProjectID, &sess.SessionID, &sidechain, &sess.AgentID,
		&sess.ParentSessionID, &sess.Summary, &sess.GitBranch, &sess.CWD,
		&sess.ClaudeVersion, &startedAt, &endedAt,
		&sess.TotalInput, &sess.TotalOutput, &sess.TotalCacheRead,
		&sess.TotalCacheCreat, &sess.MessagesCount,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	sess.IsSidechain = sidechain != 0
	if sess.StartedAt, err = parseTime(startedAt); err != nil {
		return nil, err
	}
	if sess.EndedAt, err = parseTime(endedAt); err != nil {
		return nil, err
	}
	return &sess, nil
}
