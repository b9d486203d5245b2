package logparse

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/thomascarr/claudeview/internal/store"
)

// Record is one top-level JSONL object from a session log. The format is
// observed behavior with no stability contract, so every field is optional
// and unknown fields are ignored.
type Record struct {
	Type             string          `json:"type"`
	UUID             string          `json:"uuid"`
	ParentUUID       string          `json:"parentUuid"`
	IsSidechain      bool            `json:"isSidechain"`
	GitBranch        string          `json:"gitBranch"`
	CWD              string          `json:"cwd"`
	Version          string          `json:"version"`
	Timestamp        string          `json:"timestamp"`
	Summary          string          `json:"summary"`
	ThinkingMetadata json.RawMessage `json:"thinkingMetadata"`
	Todos            json.RawMessage `json:"todos"`
	Message          json.RawMessage `json:"message"`
}

type messageBody struct {
	Role    string          `json:"role"`
	Model   string          `json:"model"`
	Content json.RawMessage `json:"content"`
	Usage   usage           `json:"usage"`
}

type usage struct {
	InputTokens         int64 `json:"input_tokens"`
	OutputTokens        int64 `json:"output_tokens"`
	CacheReadTokens     int64 `json:"cache_read_input_tokens"`
	CacheCreationTokens int64 `json:"cache_creation_input_tokens"`
}

// Block is one typed content block of a message. Fields are a union over
// the text / thinking / tool_use / tool_result shapes.
type Block struct {
	Type      string          `json:"type"`
	Text      string          `json:"text,omitempty"`
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Input     json.RawMessage `json:"input,omitempty"`
	ToolUseID string          `json:"tool_use_id,omitempty"`
	Content   json.RawMessage `json:"content,omitempty"`
	IsError   bool            `json:"is_error,omitempty"`
}

// BuildMessage maps a user/assistant record to message attributes plus its
// normalized content blocks. A string content value is wrapped into a single
// synthetic text block; absent content becomes an empty sequence; an array
// passes through in order, undeduplicated. A malformed timestamp is a hard
// failure for the record and propagates to the caller.
func BuildMessage(rec *Record) (store.Message, []Block, error) {
	var body messageBody
	if len(rec.Message) > 0 {
		// A malformed message body degrades to empty attributes; the
		// record itself is still imported.
		_ = json.Unmarshal(rec.Message, &body)
	}

	blocks, content, err := normalizeContent(body.Content)
	if err != nil {
		return store.Message{}, nil, fmt.Errorf("normalize content of %s: %w", rec.UUID, err)
	}

	ts, err := time.Parse(time.RFC3339Nano, rec.Timestamp)
	if err != nil {
		return store.Message{}, nil, fmt.Errorf("parse timestamp of %s: %w", rec.UUID, err)
	}

	hasThinking := false
	for _, b := range blocks {
		if b.Type == "thinking" {
			hasThinking = true
			break
		}
	}

	msg := store.Message{
		UUID:             rec.UUID,
		ParentUUID:       rec.ParentUUID,
		MessageType:      rec.Type,
		Role:             body.Role,
		Model:            body.Model,
		Content:          content,
		IsSidechain:      rec.IsSidechain,
		HasThinking:      hasThinking,
		ThinkingMetadata: rawOrDefault(rec.ThinkingMetadata, "{}"),
		Todos:            rawOrDefault(rec.Todos, "[]"),
		Timestamp:        ts,
		InputTokens:      body.Usage.InputTokens,
		OutputTokens:     body.Usage.OutputTokens,
		CacheReadTokens:  body.Usage.CacheReadTokens,
		CacheCreatTokens: body.Usage.CacheCreationTokens,
	}
	return msg, blocks, nil
}

// normalizeContent returns the typed blocks and the canonical JSON array
// text persisted on the message row.
func normalizeContent(raw json.RawMessage) ([]Block, string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, "[]", nil
	}

	var blocks []Block
	if err := json.Unmarshal(raw, &blocks); err == nil {
		return blocks, string(raw), nil
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		// Anything that is neither an array nor a string normalizes to
		// an empty sequence.
		return nil, "[]", nil
	}

	blocks = []Block{{Type: "text", Text: text}}
	wrapped, err := json.Marshal(blocks)
	if err != nil {
		return nil, "", err
	}
	return blocks, string(wrapped), nil
}

func rawOrDefault(raw json.RawMessage, def string) string {
	if len(raw) == 0 || string(raw) == "null" {
		return def
	}
	return string(raw)
}
