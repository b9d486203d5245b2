package store

import (
	"database/sql"
	"fmt"
)

// Sourceable type tags for project_groups. A group wraps exactly one
// repository or one folder.
const (
	SourceRepository = "repository"
	SourceFolder     = "folder"
)

// Repository identifies a git repository by its common dir.
type Repository struct {
	ID            int64
	GitCommonDir  string
	RemoteURL     string
	NormalizedURL string
	Provider      string
}

// FindOrCreateRepository returns the repository keyed by gitCommonDir,
// creating it if absent. created reports whether a new row was inserted;
// remote metadata is only meaningful to set on a freshly created row.
func (s *Store) FindOrCreateRepository(gitCommonDir string) (id int64, created bool, err error) {
	err = s.db.QueryRow(`SELECT id FROM repositories WHERE git_common_dir = ?`, gitCommonDir).Scan(&id)
	if err == nil {
		return id, false, nil
	}
	if err != sql.ErrNoRows {
		return 0, false, fmt.Errorf("lookup repository %s: %w", gitCommonDir, err)
	}

	res, err := s.db.Exec(`INSERT INTO repositories (git_common_dir) VALUES (?)`, gitCommonDir)
	if err != nil {
		return 0, false, fmt.Errorf("create repository %s: %w", gitCommonDir, err)
	}
	id, err = res.LastInsertId()
	return id, true, err
}

// SetRepositoryRemote records remote metadata for a repository. The resolver
// calls this once, when the repository row is first created.
func (s *Store) SetRepositoryRemote(id int64, remoteURL, normalizedURL, provider string) error {
	_, err := s.db.Exec(
		`UPDATE repositories SET remote_url = ?, normalized_url = ?, provider = ? WHERE id = ?`,
		remoteURL, normalizedURL, provider, id,
	)
	return err
}

// RepositoryByID returns the repository row, or nil if absent.
func (s *Store) RepositoryByID(id int64) (*Repository, error) {
	var r Repository
	err := s.db.QueryRow(
		`SELECT id, git_common_dir, remote_url, normalized_url, provider FROM repositories WHERE id = ?`, id,
	).Scan(&r.ID, &r.GitCommonDir, &r.RemoteURL, &r.NormalizedURL, &r.Provider)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// FindOrCreateFolder returns the folder keyed by canonicalPath, creating
// it if absent.
func (s *Store) FindOrCreateFolder(canonicalPath string) (int64, error) {
	var id int64
	err := s.db.QueryRow(`SELECT id FROM folders WHERE canonical_path = ?`, canonicalPath).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("lookup folder %s: %w", canonicalPath, err)
	}

	res, err := s.db.Exec(`INSERT INTO folders (canonical_path) VALUES (?)`, canonicalPath)
	if err != nil {
		return 0, fmt.Errorf("create folder %s: %w", canonicalPath, err)
	}
	return res.LastInsertId()
}

// FindOrCreateProjectGroup returns the group owning the given sourceable,
// creating it if absent. The unique index on (sourceable_type, sourceable_id)
// guarantees at most one group per identity.
func (s *Store) FindOrCreateProjectGroup(sourceableType string, sourceableID int64) (int64, error) {
	var id int64
	err := s.db.QueryRow(
		`SELECT id FROM project_groups WHERE sourceable_type = ? AND sourceable_id = ?`,
		sourceableType, sourceableID,
	).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("lookup project group %s/%d: %w", sourceableType, sourceableID, err)
	}

	res, err := s.db.Exec(
		`INSERT INTO project_groups (sourceable_type, sourceable_id) VALUES (?, ?)`,
		sourceableType, sourceableID,
	)
	if err != nil {
		return 0, fmt.Errorf("create project group %s/%d: %w", sourceableType, sourceableID, err)
	}
	return res.LastInsertId()
}
