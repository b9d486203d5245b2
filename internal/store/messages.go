package store

import (
	"database/sql"
	"fmt"
	"time"
)

// Message is one conversation turn. JSON-valued fields (Content,
// ThinkingMetadata, Todos) hold the raw serialized payloads.
type Message struct {
	ID               int64
	SessionRowID     int64
	UUID             string
	ParentUUID       string
	ParentMessageID  sql.NullInt64
	MessageType      string
	Role             string
	Model            string
	Content          string
	IsSidechain      bool
	HasThinking      bool
	ThinkingMetadata string
	Todos            string
	Timestamp        time.Time
	InputTokens      int64
	OutputTokens     int64
	CacheReadTokens  int64
	CacheCreatTokens int64
}

// UpsertMessage creates or updates the message keyed by its uuid and returns
// the row id. Every attribute except the resolved parent link is overwritten.
func (s *Store) UpsertMessage(m Message) (int64, error) {
	_, err := s.db.Exec(
		`INSERT INTO messages (project_session_id, uuid, parent_uuid, message_type, role, model,
			content, is_sidechain, has_thinking, thinking_metadata, todos, timestamp,
			input_tokens, output_tokens, cache_read_tokens, cache_creation_tokens)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(uuid) DO UPDATE SET
			project_session_id = excluded.project_session_id,
			parent_uuid = excluded.parent_uuid,
			message_type = excluded.message_type,
			role = excluded.role,
			model = excluded.model,
			content = excluded.content,
			is_sidechain = excluded.is_sidechain,
			has_thinking = excluded.has_thinking,
			thinking_metadata = excluded.thinking_metadata,
			todos = excluded.todos,
			timestamp = excluded.timestamp,
			input_tokens = excluded.input_tokens,
			output_tokens = excluded.output_tokens,
			cache_read_tokens = excluded.cache_read_tokens,
			cache_creation_tokens = excluded.cache_creation_tokens`,
		m.SessionRowID, m.UUID, m.ParentUUID, m.MessageType, m.Role, m.Model,
		m.Content, m.IsSidechain, m.HasThinking, m.ThinkingMetadata, m.Todos,
		fmtTime(m.Timestamp),
		m.InputTokens, m.OutputTokens, m.CacheReadTokens, m.CacheCreatTokens,
	)
	if err != nil {
		return 0, fmt.Errorf("upsert message %s: %w", m.UUID, err)
	}

	var id int64
	if err := s.db.QueryRow(`SELECT id FROM messages WHERE uuid = ?`, m.UUID).Scan(&id); err != nil {
		return 0, fmt.Errorf("lookup message %s: %w", m.UUID, err)
	}
	return id, nil
}

// MessageRef is the subset of a message needed to resolve thread links.
type MessageRef struct {
	ID              int64
	UUID            string
	ParentUUID      string
	ParentMessageID sql.NullInt64
}

// SessionMessageRefs returns id/uuid/parent data for every message in a
// session, ordered by timestamp.
func (s *Store) SessionMessageRefs(sessionRowID int64) ([]MessageRef, error) {
	rows, err := s.db.Query(
		`SELECT id, uuid, parent_uuid, parent_message_id FROM messages
		 WHERE project_session_id = ? ORDER BY timestamp`, sessionRowID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []MessageRef
	for rows.Next() {
		var r MessageRef
		if err := rows.Scan(&r.ID, &r.UUID, &r.ParentUUID, &r.ParentMessageID); err != nil {
			return nil, err
		}
		refs = append(refs, r)
	}
	return refs, rows.Err()
}

// SetParentMessage records the resolved parent link for a message.
func (s *Store) SetParentMessage(messageID, parentID int64) error {
	_, err := s.db.Exec(`UPDATE messages SET parent_message_id = ? WHERE id = ?`, parentID, messageID)
	return err
}

// MessageByUUID returns the message with the given uuid, or nil if absent.
func (s *Store) MessageByUUID(uuid string) (*Message, error) {
	var m Message
	var sidechain, thinking int
	var ts sql.NullString
	err := s.db.QueryRow(
		`SELECT id, project_session_id, uuid, parent_uuid, parent_message_id, message_type,
			role, model, content, is_sidechain, has_thinking, thinking_metadata, todos,
			timestamp, input_tokens, output_tokens, cache_read_tokens, cache_creation_tokens
		 FROM messages WHERE uuid = ?`, uuid,
	).Scan(&m.ID, &m.SessionRowID, &m.UUID, &m.ParentUUID, &m.ParentMessageID,
		&m.MessageType, &m.Role, &m.Model, &m.Content, &sidechain, &thinking,
		&m.ThinkingMetadata, &m.Todos, &ts,
		&m.InputTokens, &m.OutputTokens, &m.CacheReadTokens, &m.CacheCreatTokens)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	m.IsSidechain = sidechain != 0
	m.HasThinking = thinking != 0
	if m.Timestamp, err = parseTime(ts); err != nil {
		return nil, err
	}
	return &m, nil
}
