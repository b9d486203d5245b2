package importer

import (
	"os"
	"path/filepath"

	"github.com/thomascarr/claudeview/internal/gitmeta"
	"github.com/thomascarr/claudeview/internal/store"
)

// GroupResolver classifies a project path as belonging to a repository or a
// plain folder and returns its project group, guaranteeing one group per
// true identity across repeated invocations.
type GroupResolver struct {
	store *store.Store
	meta  gitmeta.MetadataSource
}

// NewGroupResolver wires a resolver to the store and a metadata source.
func NewGroupResolver(st *store.Store, meta gitmeta.MetadataSource) *GroupResolver {
	return &GroupResolver{store: st, meta: meta}
}

// Resolve returns the project group id for path. Git collaborator failures
// are swallowed: the directory still resolves to a repository keyed by the
// default <path>/.git common dir.
func (r *GroupResolver) Resolve(path string) (int64, error) {
	if info, err := os.Stat(filepath.Join(path, ".git")); err == nil && info.IsDir() {
		return r.resolveRepository(path)
	}
	return r.resolveFolder(path)
}

func (r *GroupResolver) resolveRepository(path string) (int64, error) {
	commonDir := r.meta.CommonDir(path)
	if commonDir == "" {
		commonDir = filepath.Join(path, ".git")
	}

	repoID, created, err := r.store.FindOrCreateRepository(commonDir)
	if err != nil {
		return 0, err
	}

	// Remote metadata is captured once, when the repository is first seen.
	if created {
		remote := r.meta.RemoteURL(path)
		if err := r.store.SetRepositoryRemote(repoID, remote,
			gitmeta.NormalizeURL(remote), gitmeta.DetectProvider(remote)); err != nil {
			return 0, err
		}
	}

	return r.store.FindOrCreateProjectGroup(store.SourceRepository, repoID)
}

func (r *GroupResolver) resolveFolder(path string) (int64, error) {
	canonical, err := filepath.Abs(path)
	if err != nil {
		canonical = path
	}

	folderID, err := r.store.FindOrCreateFolder(canonical)
	if err != nil {
		return 0, err
	}
	return r.store.FindOrCreateProjectGroup(store.SourceFolder, folderID)
}
