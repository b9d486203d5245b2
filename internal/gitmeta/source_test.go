package gitmeta

import (
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
)

func TestCommonDirForPlainRepo(t *testing.T) {
	dir := t.TempDir()
	if _, err := git.PlainInit(dir, false); err != nil {
		t.Fatalf("init repo: %v", err)
	}

	got := GitSource{}.CommonDir(dir)
	want := filepath.Join(dir, ".git")
	if got != want {
		t.Errorf("CommonDir = %q, want %q", got, want)
	}
}

func TestCommonDirForNonRepo(t *testing.T) {
	if got := (GitSource{}).CommonDir(t.TempDir()); got != "" {
		t.Errorf("CommonDir on non-repo = %q, want empty", got)
	}
}

func TestRemoteURL(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("init repo: %v", err)
	}

	// No origin configured yet.
	if got := (GitSource{}).RemoteURL(dir); got != "" {
		t.Errorf("RemoteURL without origin = %q, want empty", got)
	}

	_, err = repo.CreateRemote(&gitconfig.RemoteConfig{
		Name: "origin",
		URLs: []string{"git@github.com:user/repo.git"},
	})
	if err != nil {
		t.Fatalf("create remote: %v", err)
	}

	if got := (GitSource{}).RemoteURL(dir); got != "git@github.com:user/repo.git" {
		t.Errorf("RemoteURL = %q, want origin url", got)
	}
}
