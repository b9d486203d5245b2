package logparse

import (
	"encoding/json"
	"testing"
	"time"
)

func mustRecord(t *testing.T, line string) *Record {
	t.Helper()
	var rec Record
	if err := json.Unmarshal([]byte(line), &rec); err != nil {
		t.Fatalf("unmarshal record: %v", err)
	}
	return &rec
}

func TestBuildMessageStringContent(t *testing.T) {
	rec := mustRecord(t, `{"type":"user","uuid":"u1","timestamp":"2025-01-02T10:00:00.000Z",
		"message":{"role":"user","content":"hello there"}}`)

	msg, blocks, err := BuildMessage(rec)
	if err != nil {
		t.Fatalf("BuildMessage: %v", err)
	}

	if len(blocks) != 1 || blocks[0].Type != "text" || blocks[0].Text != "hello there" {
		t.Errorf("blocks = %+v, want one synthetic text block", blocks)
	}
	if msg.Content != `[{"type":"text","text":"hello there"}]` {
		t.Errorf("Content = %q, want wrapped text block", msg.Content)
	}
	if msg.Role != "user" || msg.MessageType != "user" {
		t.Errorf("Role/MessageType = %q/%q, want user/user", msg.Role, msg.MessageType)
	}
}

func TestBuildMessageAbsentContent(t *testing.T) {
	rec := mustRecord(t, `{"type":"user","uuid":"u2","timestamp":"2025-01-02T10:00:00Z","message":{"role":"user"}}`)

	msg, blocks, err := BuildMessage(rec)
	if err != nil {
		t.Fatalf("BuildMessage: %v", err)
	}
	if len(blocks) != 0 {
		t.Errorf("blocks = %+v, want empty", blocks)
	}
	if msg.Content != "[]" {
		t.Errorf("Content = %q, want empty array", msg.Content)
	}
}

func TestBuildMessageBlockContentPreservesOrder(t *testing.T) {
	rec := mustRecord(t, `{"type":"assistant","uuid":"a1","parentUuid":"u1","timestamp":"2025-01-02T10:00:05.123Z",
		"message":{"role":"assistant","model":"some-model","content":[
			{"type":"thinking","thinking":"hmm"},
			{"type":"text","text":"answer"},
			{"type":"text","text":"answer"},
			{"type":"tool_use","id":"tu1","name":"Bash","input":{"command":"ls"}}],
		"usage":{"input_tokens":10,"output_tokens":20,"cache_read_input_tokens":30,"cache_creation_input_tokens":40}}}`)

	msg, blocks, err := BuildMessage(rec)
	if err != nil {
		t.Fatalf("BuildMessage: %v", err)
	}

	// Order-preserving, not deduplicated.
	if len(blocks) != 4 {
		t.Fatalf("len(blocks) = %d, want 4", len(blocks))
	}
	if blocks[0].Type != "thinking" || blocks[3].Name != "Bash" {
		t.Errorf("blocks out of order: %+v", blocks)
	}
	if !msg.HasThinking {
		t.Error("HasThinking = false, want true")
	}
	if msg.ParentUUID != "u1" {
		t.Errorf("ParentUUID = %q, want u1", msg.ParentUUID)
	}
	if msg.Model != "some-model" {
		t.Errorf("Model = %q, want some-model", msg.Model)
	}
	if msg.InputTokens != 10 || msg.OutputTokens != 20 || msg.CacheReadTokens != 30 || msg.CacheCreatTokens != 40 {
		t.Errorf("tokens = %d/%d/%d/%d, want 10/20/30/40",
			msg.InputTokens, msg.OutputTokens, msg.CacheReadTokens, msg.CacheCreatTokens)
	}

	want := time.Date(2025, 1, 2, 10, 0, 5, 123000000, time.UTC)
	if !msg.Timestamp.Equal(want) {
		t.Errorf("Timestamp = %v, want %v", msg.Timestamp, want)
	}
}

func TestBuildMessageMissingUsageDefaultsZero(t *testing.T) {
	rec := mustRecord(t, `{"type":"assistant","uuid":"a2","timestamp":"2025-01-02T10:00:00Z",
		"message":{"role":"assistant","content":[{"type":"text","text":"x"}]}}`)

	msg, _, err := BuildMessage(rec)
	if err != nil {
		t.Fatalf("BuildMessage: %v", err)
	}
	if msg.InputTokens != 0 || msg.OutputTokens != 0 || msg.CacheReadTokens != 0 || msg.CacheCreatTokens != 0 {
		t.Errorf("tokens = %d/%d/%d/%d, want all zero",
			msg.InputTokens, msg.OutputTokens, msg.CacheReadTokens, msg.CacheCreatTokens)
	}
	if msg.HasThinking {
		t.Error("HasThinking = true, want false")
	}
}

func TestBuildMessageMalformedTimestamp(t *testing.T) {
	rec := mustRecord(t, `{"type":"user","uuid":"u3","timestamp":"not-a-time","message":{"role":"user","content":"x"}}`)

	if _, _, err := BuildMessage(rec); err == nil {
		t.Error("expected error for malformed timestamp, got nil")
	}
}

func TestBuildMessageMetadataDefaults(t *testing.T) {
	rec := mustRecord(t, `{"type":"user","uuid":"u4","timestamp":"2025-01-02T10:00:00Z",
		"message":{"role":"user","content":"x"},"todos":[{"content":"task"}]}`)

	msg, _, err := BuildMessage(rec)
	if err != nil {
		t.Fatalf("BuildMessage: %v", err)
	}
	if msg.ThinkingMetadata != "{}" {
		t.Errorf("ThinkingMetadata = %q, want {}", msg.ThinkingMetadata)
	}
	if msg.Todos != `[{"content":"task"}]` {
		t.Errorf("Todos = %q, want passthrough", msg.Todos)
	}
}
