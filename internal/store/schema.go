package store

// schemaVersion is the current schema version. Increment when adding migrations.
const schemaVersion = 1

// migrations maps version numbers to SQL statements that bring the schema
// from (version-1) to (version). Version 1 is the initial schema.
var migrations = map[int]string{
	1: `
-- Project paths the assistant operated in, one row per path.
CREATE TABLE IF NOT EXISTS projects (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	path             TEXT    NOT NULL UNIQUE,
	encoded_path     TEXT    NOT NULL,
	name             TEXT    NOT NULL DEFAULT '',
	last_cost        REAL,
	last_session_id  TEXT    NOT NULL DEFAULT '',
	last_model_usage TEXT    NOT NULL DEFAULT '{}',
	project_group_id INTEGER REFERENCES project_groups(id),
	updated_at       TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_projects_group ON projects(project_group_id);

-- Identity-level grouping of projects: one row per distinct repository or folder.
CREATE TABLE IF NOT EXISTS project_groups (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	sourceable_type TEXT    NOT NULL,
	sourceable_id   INTEGER NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_project_groups_sourceable
	ON project_groups(sourceable_type, sourceable_id);

-- Git repositories, keyed by the common dir (stable across worktrees).
CREATE TABLE IF NOT EXISTS repositories (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	git_common_dir TEXT NOT NULL UNIQUE,
	remote_url     TEXT NOT NULL DEFAULT '',
	normalized_url TEXT NOT NULL DEFAULT '',
	provider       TEXT NOT NULL DEFAULT ''
);

-- Plain folders (no .git), keyed by canonical path.
CREATE TABLE IF NOT EXISTS folders (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	canonical_path TEXT NOT NULL UNIQUE
);

-- One conversation log stream per row.
CREATE TABLE IF NOT EXISTS project_sessions (
	id                          INTEGER PRIMARY KEY AUTOINCREMENT,
	project_id                  INTEGER NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
	session_id                  TEXT    NOT NULL,
	is_sidechain                INTEGER NOT NULL DEFAULT 0,
	agent_id                    TEXT    NOT NULL DEFAULT '',
	parent_project_session_id   INTEGER REFERENCES project_sessions(id) ON DELETE SET NULL,
	summary                     TEXT    NOT NULL DEFAULT '',
	git_branch                  TEXT    NOT NULL DEFAULT '',
	cwd                         TEXT    NOT NULL DEFAULT '',
	claude_version              TEXT    NOT NULL DEFAULT '',
	started_at                  TEXT,
	ended_at                    TEXT,
	total_input_tokens          INTEGER NOT NULL DEFAULT 0,
	total_output_tokens         INTEGER NOT NULL DEFAULT 0,
	total_cache_read_tokens     INTEGER NOT NULL DEFAULT 0,
	total_cache_creation_tokens INTEGER NOT NULL DEFAULT 0,
	messages_count              INTEGER NOT NULL DEFAULT 0
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_project_sessions_key
	ON project_sessions(project_id, session_id);
CREATE INDEX IF NOT EXISTS idx_project_sessions_session ON project_sessions(session_id);
CREATE INDEX IF NOT EXISTS idx_project_sessions_parent
	ON project_sessions(parent_project_session_id);

-- One conversation turn per row. uuid is the global idempotency key.
CREATE TABLE IF NOT EXISTS messages (
	id                    INTEGER PRIMARY KEY AUTOINCREMENT,
	project_session_id    INTEGER NOT NULL REFERENCES project_sessions(id) ON DELETE CASCADE,
	uuid                  TEXT    NOT NULL UNIQUE,
	parent_uuid           TEXT    NOT NULL DEFAULT '',
	parent_message_id     INTEGER REFERENCES messages(id) ON DELETE SET NULL,
	message_type          TEXT    NOT NULL,
	role                  TEXT    NOT NULL DEFAULT '',
	model                 TEXT    NOT NULL DEFAULT '',
	content               TEXT    NOT NULL DEFAULT '[]',
	is_sidechain          INTEGER NOT NULL DEFAULT 0,
	has_thinking          INTEGER NOT NULL DEFAULT 0,
	thinking_metadata     TEXT    NOT NULL DEFAULT '{}',
	todos                 TEXT    NOT NULL DEFAULT '[]',
	timestamp             TEXT    NOT NULL,
	input_tokens          INTEGER NOT NULL DEFAULT 0,
	output_tokens         INTEGER NOT NULL DEFAULT 0,
	cache_read_tokens     INTEGER NOT NULL DEFAULT 0,
	cache_creation_tokens INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_messages_session_ts
	ON messages(project_session_id, timestamp);
CREATE INDEX IF NOT EXISTS idx_messages_parent_uuid ON messages(parent_uuid);

-- One tool invocation per row, mutated in place when its result arrives.
CREATE TABLE IF NOT EXISTS tool_uses (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	message_id  INTEGER NOT NULL REFERENCES messages(id) ON DELETE CASCADE,
	tool_use_id TEXT    NOT NULL UNIQUE,
	tool_name   TEXT    NOT NULL DEFAULT '',
	input       TEXT    NOT NULL DEFAULT '{}',
	result      TEXT,
	success     INTEGER
);

CREATE INDEX IF NOT EXISTS idx_tool_uses_message ON tool_uses(message_id);
CREATE INDEX IF NOT EXISTS idx_tool_uses_name ON tool_uses(tool_name);

-- Standalone plan documents, keyed by filename slug.
CREATE TABLE IF NOT EXISTS session_plans (
	id                 INTEGER PRIMARY KEY AUTOINCREMENT,
	slug               TEXT NOT NULL UNIQUE,
	title              TEXT NOT NULL DEFAULT '',
	content            TEXT NOT NULL DEFAULT '',
	file_created_at    TEXT,
	project_session_id INTEGER REFERENCES project_sessions(id) ON DELETE SET NULL
);

CREATE INDEX IF NOT EXISTS idx_session_plans_session ON session_plans(project_session_id);
`,
}
