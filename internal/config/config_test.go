package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	home := t.TempDir()

	cfg, err := loadFrom(filepath.Join(home, "nonexistent.toml"), home)
	if err != nil {
		t.Fatalf("loadFrom: %v", err)
	}

	if cfg.ClaudeDir != filepath.Join(home, ".claude") {
		t.Errorf("ClaudeDir = %q, want %q", cfg.ClaudeDir, filepath.Join(home, ".claude"))
	}
	if cfg.ProjectsDir != filepath.Join(home, ".claude", "projects") {
		t.Errorf("ProjectsDir = %q, want projects under claude dir", cfg.ProjectsDir)
	}
	if cfg.PlansDir != filepath.Join(home, ".claude", "plans") {
		t.Errorf("PlansDir = %q, want plans under claude dir", cfg.PlansDir)
	}
	if cfg.RegistryPath != filepath.Join(home, ".claude.json") {
		t.Errorf("RegistryPath = %q, want ~/.claude.json", cfg.RegistryPath)
	}
}

func TestOverrideAndHomeExpansion(t *testing.T) {
	home := t.TempDir()
	cfgPath := filepath.Join(home, "config.toml")

	content := "claude_dir = \"~/custom\"\ndb_path = \"/tmp/cv.db\"\n"
	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadFrom(cfgPath, home)
	if err != nil {
		t.Fatalf("loadFrom: %v", err)
	}

	if cfg.ClaudeDir != filepath.Join(home, "custom") {
		t.Errorf("ClaudeDir = %q, want expanded ~/custom", cfg.ClaudeDir)
	}
	// ProjectsDir follows the overridden claude_dir.
	if cfg.ProjectsDir != filepath.Join(home, "custom", "projects") {
		t.Errorf("ProjectsDir = %q, want derived from claude_dir", cfg.ProjectsDir)
	}
	if cfg.DBPath != "/tmp/cv.db" {
		t.Errorf("DBPath = %q, want /tmp/cv.db", cfg.DBPath)
	}
}

func TestMalformedConfig(t *testing.T) {
	home := t.TempDir()
	cfgPath := filepath.Join(home, "config.toml")
	if err := os.WriteFile(cfgPath, []byte("claude_dir = [broken"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := loadFrom(cfgPath, home); err == nil {
		t.Error("expected error for malformed config, got nil")
	}
}
