package logparse

import (
	"path/filepath"
	"strings"
)

// agentPrefix marks sidechain log files: a sub-session spawned by an agent
// invocation is written to agent-<agent_id>.jsonl next to the main session.
const agentPrefix = "agent-"

// FileInfo is the session identity derived from a log file's name.
type FileInfo struct {
	SessionID   string
	IsSidechain bool
	AgentID     string
}

// ClassifyFilename derives the session id and sidechain/agent identity from
// a log file path. It never fails: any filename yields a usable identity.
func ClassifyFilename(path string) FileInfo {
	name := strings.TrimSuffix(filepath.Base(path), ".jsonl")
	info := FileInfo{SessionID: name}
	if strings.HasPrefix(name, agentPrefix) {
		info.IsSidechain = true
		info.AgentID = strings.TrimPrefix(name, agentPrefix)
	}
	return info
}
