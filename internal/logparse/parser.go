// Package logparse turns append-only session log files into stored
// sessions, messages and tool uses.
package logparse

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/thomascarr/claudeview/internal/store"
)

// maxLineSize bounds a single JSONL line. Tool results with embedded file
// contents routinely exceed bufio's default 64KB.
const maxLineSize = 10 * 1024 * 1024

// Parser imports one session log file into the store.
type Parser struct {
	store     *store.Store
	projectID int64
	path      string
	file      FileInfo

	sessionRowID int64
	summary      string
}

// NewParser prepares an import of the log file at path into the given project.
func NewParser(st *store.Store, projectID int64, path string) *Parser {
	return &Parser{
		store:     st,
		projectID: projectID,
		path:      path,
		file:      ClassifyFilename(path),
	}
}

// Import streams the file end to end. If the session was already imported
// (it exists and has at least one message) the whole file is skipped; this
// does not detect lines appended after a partial import. Malformed JSON
// lines are logged and skipped. A record-level timestamp or persistence
// failure aborts the file and propagates to the orchestrator.
func (p *Parser) Import() error {
	imported, err := p.alreadyImported()
	if err != nil {
		return err
	}
	if imported {
		return nil
	}

	f, err := os.Open(p.path)
	if err != nil {
		return fmt.Errorf("open %s: %w", p.path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	for scanner.Scan() {
		if err := p.processLine(scanner.Bytes()); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", p.path, err)
	}

	return p.finalize()
}

func (p *Parser) alreadyImported() (bool, error) {
	existing, err := p.store.SessionByKey(p.projectID, p.file.SessionID)
	if err != nil {
		return false, err
	}
	if existing == nil {
		return false, nil
	}
	n, err := p.store.SessionMessageCount(existing.ID)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (p *Parser) processLine(line []byte) error {
	line = trimLine(line)
	if len(line) == 0 {
		return nil
	}

	var rec Record
	if err := json.Unmarshal(line, &rec); err != nil {
		log.Printf("logparse: skip malformed line in %s: %v", p.path, err)
		return nil
	}

	switch rec.Type {
	case "summary":
		// Last summary wins; applied at finalize.
		p.summary = rec.Summary
	case "user", "assistant":
		return p.handleMessage(&rec)
	case "file-history-snapshot":
		// Recognized but intentionally ignored.
	default:
		// Unknown record types are ignored.
	}
	return nil
}

func (p *Parser) handleMessage(rec *Record) error {
	if err := p.ensureSession(rec); err != nil {
		return err
	}

	msg, blocks, err := BuildMessage(rec)
	if err != nil {
		return err
	}
	msg.SessionRowID = p.sessionRowID

	msgID, err := p.store.UpsertMessage(msg)
	if err != nil {
		return err
	}

	return p.importToolUses(rec.Type, msgID, blocks)
}

// ensureSession creates or updates the session row from the first
// message-bearing record of the file.
func (p *Parser) ensureSession(rec *Record) error {
	if p.sessionRowID != 0 {
		return nil
	}

	startedAt, err := time.Parse(time.RFC3339Nano, rec.Timestamp)
	if err != nil {
		return fmt.Errorf("parse session start timestamp in %s: %w", p.path, err)
	}

	id, err := p.store.UpsertSessionStart(store.Session{
		ProjectID:     p.projectID,
		SessionID:     p.file.SessionID,
		IsSidechain:   p.file.IsSidechain,
		AgentID:       p.file.AgentID,
		GitBranch:     rec.GitBranch,
		CWD:           rec.CWD,
		ClaudeVersion: rec.Version,
		StartedAt:     startedAt,
	})
	if err != nil {
		return err
	}
	p.sessionRowID = id
	return nil
}

// importToolUses records every tool_use block of a message, and for user
// records additionally attaches tool_result blocks to previously seen
// invocations. A result with no matching invocation is skipped silently:
// it may precede its tool_use in the stream, or never find one.
func (p *Parser) importToolUses(messageType string, messageID int64, blocks []Block) error {
	for _, b := range blocks {
		if b.Type != "tool_use" {
			continue
		}
		if err := p.store.UpsertToolUse(messageID, b.ID, b.Name, string(b.Input)); err != nil {
			return err
		}
	}

	if messageType != "user" {
		return nil
	}

	for _, b := range blocks {
		if b.Type != "tool_result" {
			continue
		}
		if _, err := p.store.AttachToolResult(b.ToolUseID, resultText(b.Content), !b.IsError); err != nil {
			return err
		}
	}
	return nil
}

// resultText stores plain strings unquoted and any other content shape as
// its raw JSON text.
func resultText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// finalize applies the pending summary and recomputes the derived session
// fields, then resolves message thread links. Skipped entirely when the
// file contained no message-bearing record.
func (p *Parser) finalize() error {
	if p.sessionRowID == 0 {
		return nil
	}
	if err := p.store.FinalizeSession(p.sessionRowID, p.summary); err != nil {
		return err
	}
	return ResolveThreads(p.store, p.sessionRowID)
}

// trimLine removes leading/trailing whitespace and a UTF-8 BOM.
func trimLine(line []byte) []byte {
	line = bytes.TrimPrefix(line, []byte{0xEF, 0xBB, 0xBF})
	return bytes.TrimSpace(line)
}
