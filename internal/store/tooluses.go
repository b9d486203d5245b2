package store

import (
	"database/sql"
	"fmt"
)

// ToolUse is one tool invocation by an assistant message. Result and Success
// stay NULL until a matching tool_result block arrives.
type ToolUse struct {
	ID        int64
	MessageID int64
	ToolUseID string
	ToolName  string
	Input     string // raw JSON
	Result    sql.NullString
	Success   sql.NullBool
}

// UpsertToolUse creates or updates the invocation keyed by toolUseID,
// overwriting tool_name and input. An existing result is preserved.
func (s *Store) UpsertToolUse(messageID int64, toolUseID, toolName, input string) error {
	if input == "" {
		input = "{}"
	}
	_, err := s.db.Exec(
		`INSERT INTO tool_uses (message_id, tool_use_id, tool_name, input)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(tool_use_id) DO UPDATE SET
			message_id = excluded.message_id,
			tool_name = excluded.tool_name,
			input = excluded.input`,
		messageID, toolUseID, toolName, input,
	)
	if err != nil {
		return fmt.Errorf("upsert tool use %s: %w", toolUseID, err)
	}
	return nil
}

// AttachToolResult records the result of a previously seen invocation.
// found is false when no invocation with that id exists; the caller treats
// that as a silent skip, since a result may precede its tool_use.
func (s *Store) AttachToolResult(toolUseID, result string, success bool) (found bool, err error) {
	res, err := s.db.Exec(
		`UPDATE tool_uses SET result = ?, success = ? WHERE tool_use_id = ?`,
		result, success, toolUseID,
	)
	if err != nil {
		return false, fmt.Errorf("attach result to %s: %w", toolUseID, err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ToolUseByID returns the invocation with the given external id, or nil.
func (s *Store) ToolUseByID(toolUseID string) (*ToolUse, error) {
	var t ToolUse
	err := s.db.QueryRow(
		`SELECT id, message_id, tool_use_id, tool_name, input, result, success
		 FROM tool_uses WHERE tool_use_id = ?`, toolUseID,
	).Scan(&t.ID, &t.MessageID, &t.ToolUseID, &t.ToolName, &t.Input, &t.Result, &t.Success)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}
