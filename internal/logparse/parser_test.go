package logparse

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/thomascarr/claudeview/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func newTestProject(t *testing.T, st *store.Store) int64 {
	t.Helper()
	id, err := st.UpsertProject(store.Project{
		Path:        "/home/alice/dev",
		EncodedPath: "-home-alice-dev",
		Name:        "dev",
	})
	if err != nil {
		t.Fatalf("upsert project: %v", err)
	}
	return id
}

func writeLog(t *testing.T, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	var content string
	for _, l := range lines {
		content += l + "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	return path
}

func userLine(uuid, parentUUID, ts, text string) string {
	parent := "null"
	if parentUUID != "" {
		parent = fmt.Sprintf("%q", parentUUID)
	}
	return fmt.Sprintf(`{"type":"user","uuid":%q,"parentUuid":%s,"timestamp":%q,"gitBranch":"main","cwd":"/home/alice/dev","version":"1.0.33","message":{"role":"user","content":%q}}`,
		uuid, parent, ts, text)
}

func assistantLine(uuid, parentUUID, ts string, in, out int) string {
	return fmt.Sprintf(`{"type":"assistant","uuid":%q,"parentUuid":%q,"timestamp":%q,"message":{"role":"assistant","model":"some-model","content":[{"type":"text","text":"ok"}],"usage":{"input_tokens":%d,"output_tokens":%d,"cache_read_input_tokens":5,"cache_creation_input_tokens":7}}}`,
		uuid, parentUUID, ts, in, out)
}

func TestImportCreatesSessionMessagesAndTotals(t *testing.T) {
	st := newTestStore(t)
	projectID := newTestProject(t, st)

	u1, a1 := uuid.NewString(), uuid.NewString()
	path := writeLog(t, "sess-1.jsonl",
		`{"type":"summary","summary":"early summary"}`,
		userLine(u1, "", "2025-01-02T10:00:00.000Z", "do the thing"),
		assistantLine(a1, u1, "2025-01-02T10:00:30.000Z", 100, 200),
		`{"type":"summary","summary":"final summary"}`,
		`{"type":"file-history-snapshot","messageId":"x"}`,
	)

	if err := NewParser(st, projectID, path).Import(); err != nil {
		t.Fatalf("Import: %v", err)
	}

	sess, err := st.SessionByKey(projectID, "sess-1")
	if err != nil || sess == nil {
		t.Fatalf("SessionByKey: %v, session=%v", err, sess)
	}

	if sess.Summary != "final summary" {
		t.Errorf("Summary = %q, want last summary to win", sess.Summary)
	}
	if sess.GitBranch != "main" || sess.CWD != "/home/alice/dev" || sess.ClaudeVersion != "1.0.33" {
		t.Errorf("session metadata = %q/%q/%q", sess.GitBranch, sess.CWD, sess.ClaudeVersion)
	}
	wantStart := time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)
	if !sess.StartedAt.Equal(wantStart) {
		t.Errorf("StartedAt = %v, want %v", sess.StartedAt, wantStart)
	}
	wantEnd := time.Date(2025, 1, 2, 10, 0, 30, 0, time.UTC)
	if !sess.EndedAt.Equal(wantEnd) {
		t.Errorf("EndedAt = %v, want max message timestamp %v", sess.EndedAt, wantEnd)
	}
	if sess.TotalInput != 100 || sess.TotalOutput != 200 || sess.TotalCacheRead != 5 || sess.TotalCacheCreat != 7 {
		t.Errorf("totals = %d/%d/%d/%d, want 100/200/5/7",
			sess.TotalInput, sess.TotalOutput, sess.TotalCacheRead, sess.TotalCacheCreat)
	}
	if sess.MessagesCount != 2 {
		t.Errorf("MessagesCount = %d, want 2", sess.MessagesCount)
	}
	if sess.IsSidechain {
		t.Error("IsSidechain = true, want false for plain filename")
	}
}

func TestImportIdempotent(t *testing.T) {
	st := newTestStore(t)
	projectID := newTestProject(t, st)

	u1, a1 := uuid.NewString(), uuid.NewString()
	path := writeLog(t, "sess-2.jsonl",
		userLine(u1, "", "2025-01-02T10:00:00Z", "hi"),
		assistantLine(a1, u1, "2025-01-02T10:00:10Z", 10, 20),
	)

	for i := 0; i < 2; i++ {
		if err := NewParser(st, projectID, path).Import(); err != nil {
			t.Fatalf("Import pass %d: %v", i+1, err)
		}
	}

	sess, err := st.SessionByKey(projectID, "sess-2")
	if err != nil || sess == nil {
		t.Fatalf("SessionByKey: %v", err)
	}
	if sess.MessagesCount != 2 {
		t.Errorf("MessagesCount = %d after re-import, want 2", sess.MessagesCount)
	}
	// Totals are recomputed, not accumulated.
	if sess.TotalInput != 10 || sess.TotalOutput != 20 {
		t.Errorf("totals = %d/%d after re-import, want 10/20", sess.TotalInput, sess.TotalOutput)
	}
}

func TestImportSkipsFullyImportedFile(t *testing.T) {
	st := newTestStore(t)
	projectID := newTestProject(t, st)

	u1 := uuid.NewString()
	path := writeLog(t, "sess-3.jsonl", userLine(u1, "", "2025-01-02T10:00:00Z", "hi"))

	if err := NewParser(st, projectID, path).Import(); err != nil {
		t.Fatalf("Import: %v", err)
	}

	// Append a new line; the conservative skip check means it is never read.
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatal(err)
	}
	fmt.Fprintln(f, userLine(uuid.NewString(), u1, "2025-01-02T10:05:00Z", "more"))
	f.Close()

	if err := NewParser(st, projectID, path).Import(); err != nil {
		t.Fatalf("re-Import: %v", err)
	}

	sess, _ := st.SessionByKey(projectID, "sess-3")
	if sess.MessagesCount != 1 {
		t.Errorf("MessagesCount = %d, want 1 (appended lines are not reprocessed)", sess.MessagesCount)
	}
}

func TestImportSkipsMalformedLines(t *testing.T) {
	st := newTestStore(t)
	projectID := newTestProject(t, st)

	u1, a1 := uuid.NewString(), uuid.NewString()
	path := writeLog(t, "sess-4.jsonl",
		userLine(u1, "", "2025-01-02T10:00:00Z", "hi"),
		`{this is not json`,
		assistantLine(a1, u1, "2025-01-02T10:00:10Z", 1, 2),
	)

	if err := NewParser(st, projectID, path).Import(); err != nil {
		t.Fatalf("Import: %v", err)
	}

	sess, _ := st.SessionByKey(projectID, "sess-4")
	if sess == nil || sess.MessagesCount != 2 {
		t.Fatalf("valid lines around the corrupt one were not imported: %+v", sess)
	}
}

func TestImportSidechainFilename(t *testing.T) {
	st := newTestStore(t)
	projectID := newTestProject(t, st)

	path := writeLog(t, "agent-a05ff79.jsonl",
		userLine(uuid.NewString(), "", "2025-01-02T10:00:00Z", "spawned work"))

	if err := NewParser(st, projectID, path).Import(); err != nil {
		t.Fatalf("Import: %v", err)
	}

	sess, _ := st.SessionByKey(projectID, "agent-a05ff79")
	if sess == nil {
		t.Fatal("sidechain session not created")
	}
	if !sess.IsSidechain || sess.AgentID != "a05ff79" {
		t.Errorf("IsSidechain/AgentID = %v/%q, want true/a05ff79", sess.IsSidechain, sess.AgentID)
	}
}

func TestImportEmptyFileCreatesNoSession(t *testing.T) {
	st := newTestStore(t)
	projectID := newTestProject(t, st)

	path := writeLog(t, "sess-5.jsonl", `{"type":"summary","summary":"only a summary"}`)

	if err := NewParser(st, projectID, path).Import(); err != nil {
		t.Fatalf("Import: %v", err)
	}

	sess, err := st.SessionByKey(projectID, "sess-5")
	if err != nil {
		t.Fatal(err)
	}
	if sess != nil {
		t.Errorf("session created for message-less file: %+v", sess)
	}
}

func TestToolUseLifecycle(t *testing.T) {
	st := newTestStore(t)
	projectID := newTestProject(t, st)

	u1, a1, r1, u2 := uuid.NewString(), uuid.NewString(), uuid.NewString(), uuid.NewString()
	assistantToolUse := fmt.Sprintf(`{"type":"assistant","uuid":%q,"parentUuid":%q,"timestamp":"2025-01-02T10:00:10Z","message":{"role":"assistant","content":[{"type":"tool_use","id":"toolu_01","name":"Bash","input":{"command":"ls"}}]}}`, a1, u1)
	userToolResult := fmt.Sprintf(`{"type":"user","uuid":%q,"parentUuid":%q,"timestamp":"2025-01-02T10:00:20Z","message":{"role":"user","content":[{"type":"tool_result","tool_use_id":"toolu_01","content":"file1\nfile2","is_error":false},{"type":"tool_result","tool_use_id":"toolu_unknown","content":"orphan","is_error":true}]}}`, r1, a1)

	path := writeLog(t, "sess-6.jsonl",
		userLine(u1, "", "2025-01-02T10:00:00Z", "list files"),
		assistantToolUse,
		userToolResult,
		userLine(u2, a1, "2025-01-02T10:00:30Z", "thanks"),
	)

	if err := NewParser(st, projectID, path).Import(); err != nil {
		t.Fatalf("Import: %v", err)
	}

	tu, err := st.ToolUseByID("toolu_01")
	if err != nil || tu == nil {
		t.Fatalf("ToolUseByID: %v, tu=%v", err, tu)
	}
	if tu.ToolName != "Bash" {
		t.Errorf("ToolName = %q, want Bash", tu.ToolName)
	}
	if tu.Input != `{"command":"ls"}` {
		t.Errorf("Input = %q, want raw input json", tu.Input)
	}
	if !tu.Result.Valid || tu.Result.String != "file1\nfile2" {
		t.Errorf("Result = %+v, want file listing", tu.Result)
	}
	if !tu.Success.Valid || !tu.Success.Bool {
		t.Errorf("Success = %+v, want true", tu.Success)
	}

	// The result with no matching invocation has no effect.
	orphan, err := st.ToolUseByID("toolu_unknown")
	if err != nil {
		t.Fatal(err)
	}
	if orphan != nil {
		t.Errorf("orphan tool_result created a row: %+v", orphan)
	}
}

func TestToolResultErrorSetsSuccessFalse(t *testing.T) {
	st := newTestStore(t)
	projectID := newTestProject(t, st)

	a1 := uuid.NewString()
	path := writeLog(t, "sess-7.jsonl",
		fmt.Sprintf(`{"type":"assistant","uuid":%q,"timestamp":"2025-01-02T10:00:00Z","message":{"role":"assistant","content":[{"type":"tool_use","id":"toolu_02","name":"Bash","input":{"command":"false"}}]}}`, a1),
		fmt.Sprintf(`{"type":"user","uuid":%q,"parentUuid":%q,"timestamp":"2025-01-02T10:00:05Z","message":{"role":"user","content":[{"type":"tool_result","tool_use_id":"toolu_02","content":"boom","is_error":true}]}}`, uuid.NewString(), a1),
	)

	if err := NewParser(st, projectID, path).Import(); err != nil {
		t.Fatalf("Import: %v", err)
	}

	tu, _ := st.ToolUseByID("toolu_02")
	if tu == nil || !tu.Success.Valid || tu.Success.Bool {
		t.Errorf("Success = %+v, want false", tu)
	}
}

func TestThreadResolutionEitherOrder(t *testing.T) {
	parentUUID, childUUID := uuid.NewString(), uuid.NewString()

	orders := map[string][]string{
		"parent-first": {
			userLine(parentUUID, "", "2025-01-02T10:00:00Z", "root"),
			userLine(childUUID, parentUUID, "2025-01-02T10:00:10Z", "child"),
		},
		"child-first": {
			userLine(childUUID, parentUUID, "2025-01-02T10:00:10Z", "child"),
			userLine(parentUUID, "", "2025-01-02T10:00:00Z", "root"),
		},
	}

	for name, lines := range orders {
		t.Run(name, func(t *testing.T) {
			st := newTestStore(t)
			projectID := newTestProject(t, st)
			path := writeLog(t, "sess-8.jsonl", lines...)

			if err := NewParser(st, projectID, path).Import(); err != nil {
				t.Fatalf("Import: %v", err)
			}

			parent, _ := st.MessageByUUID(parentUUID)
			child, _ := st.MessageByUUID(childUUID)
			if parent == nil || child == nil {
				t.Fatal("messages not imported")
			}
			if !child.ParentMessageID.Valid || child.ParentMessageID.Int64 != parent.ID {
				t.Errorf("child parent link = %+v, want %d", child.ParentMessageID, parent.ID)
			}
			if parent.ParentMessageID.Valid {
				t.Errorf("root message has parent link: %+v", parent.ParentMessageID)
			}
		})
	}
}

func TestThreadResolutionMissingParentLeftUnlinked(t *testing.T) {
	st := newTestStore(t)
	projectID := newTestProject(t, st)

	childUUID := uuid.NewString()
	path := writeLog(t, "sess-9.jsonl",
		userLine(childUUID, uuid.NewString(), "2025-01-02T10:00:00Z", "orphan"))

	if err := NewParser(st, projectID, path).Import(); err != nil {
		t.Fatalf("Import: %v", err)
	}

	child, _ := st.MessageByUUID(childUUID)
	if child == nil {
		t.Fatal("message not imported")
	}
	if child.ParentMessageID.Valid {
		t.Errorf("message with missing parent uuid got linked: %+v", child.ParentMessageID)
	}
}

func TestImportBadTimestampAbortsFile(t *testing.T) {
	st := newTestStore(t)
	projectID := newTestProject(t, st)

	path := writeLog(t, "sess-10.jsonl",
		fmt.Sprintf(`{"type":"user","uuid":%q,"timestamp":"garbage","message":{"role":"user","content":"x"}}`, uuid.NewString()))

	if err := NewParser(st, projectID, path).Import(); err == nil {
		t.Error("expected error for unparsable timestamp, got nil")
	}
}
