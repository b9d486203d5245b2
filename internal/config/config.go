// Package config loads claudeview configuration from a TOML file,
// falling back to home-relative defaults for anything unset.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds every filesystem location the import pipeline touches.
type Config struct {
	// ClaudeDir is the assistant's data directory (default ~/.claude).
	ClaudeDir string `toml:"claude_dir"`

	// ProjectsDir holds one subdirectory of JSONL session logs per project,
	// named by the project's encoded path (default <claude_dir>/projects).
	ProjectsDir string `toml:"projects_dir"`

	// PlansDir holds standalone plan markdown files (default <claude_dir>/plans).
	PlansDir string `toml:"plans_dir"`

	// RegistryPath is the JSON document mapping project paths to their
	// last-known metadata (default ~/.claude.json).
	RegistryPath string `toml:"registry_path"`

	// DBPath is the sqlite database location.
	DBPath string `toml:"db_path"`
}

// Load reads ~/.config/claudeview/config.toml if it exists and overlays it
// on the defaults. A missing config file is not an error.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return loadFrom(filepath.Join(home, ".config", "claudeview", "config.toml"), home)
}

func loadFrom(cfgPath, home string) (*Config, error) {
	cfg := &Config{
		ClaudeDir:    filepath.Join(home, ".claude"),
		RegistryPath: filepath.Join(home, ".claude.json"),
		DBPath:       filepath.Join(home, ".config", "claudeview", "claudeview.db"),
	}

	if _, err := os.Stat(cfgPath); err == nil {
		if _, err := toml.DecodeFile(cfgPath, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", cfgPath, err)
		}
	}

	cfg.ClaudeDir = expandHome(cfg.ClaudeDir, home)
	if cfg.ProjectsDir == "" {
		cfg.ProjectsDir = filepath.Join(cfg.ClaudeDir, "projects")
	}
	if cfg.PlansDir == "" {
		cfg.PlansDir = filepath.Join(cfg.ClaudeDir, "plans")
	}
	cfg.ProjectsDir = expandHome(cfg.ProjectsDir, home)
	cfg.PlansDir = expandHome(cfg.PlansDir, home)
	cfg.RegistryPath = expandHome(cfg.RegistryPath, home)
	cfg.DBPath = expandHome(cfg.DBPath, home)

	return cfg, nil
}

// EnsureDBDir creates the directory containing DBPath if needed.
func (c *Config) EnsureDBDir() error {
	return os.MkdirAll(filepath.Dir(c.DBPath), 0755)
}

func expandHome(path, home string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(home, path[2:])
	}
	return path
}
