// Package gitmeta resolves a project directory to its git identity using
// go-git. The import pipeline treats it as a best-effort collaborator:
// every failure maps to an empty value, never an error.
package gitmeta

import (
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/storage/filesystem"
)

// MetadataSource answers identity questions about a directory that may be a
// git worktree. Implementations must treat any internal failure as absence
// and return the empty string.
type MetadataSource interface {
	// CommonDir returns the canonical git common directory for path, or "".
	// The common dir is stable across worktrees and clones of the same
	// checkout, which makes it the repository identity key.
	CommonDir(path string) string

	// RemoteURL returns the URL of the "origin" remote, or "".
	RemoteURL(path string) string
}

// GitSource is the go-git backed MetadataSource.
type GitSource struct{}

// CommonDir opens the repository at path and reports the root of its object
// storage, which for worktrees resolves through the commondir indirection.
func (GitSource) CommonDir(path string) string {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return ""
	}
	st, ok := repo.Storer.(*filesystem.Storage)
	if !ok {
		return ""
	}
	root := st.Filesystem().Root()
	if root == "" {
		return ""
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return root
	}
	return abs
}

// RemoteURL reports the first URL configured for the "origin" remote.
func (GitSource) RemoteURL(path string) string {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return ""
	}
	remote, err := repo.Remote(git.DefaultRemoteName)
	if err != nil {
		return ""
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return ""
	}
	return urls[0]
}
