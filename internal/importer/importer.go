// Package importer drives one full import pass over the assistant's data
// directory: projects, session logs, sidechain links and plans. Failures
// are isolated per project, per file and per plan so one bad input never
// aborts the run.
package importer

import (
	"database/sql"
	"log"
	"path/filepath"
	"sort"
	"strings"

	"github.com/thomascarr/claudeview/internal/config"
	"github.com/thomascarr/claudeview/internal/gitmeta"
	"github.com/thomascarr/claudeview/internal/logparse"
	"github.com/thomascarr/claudeview/internal/plans"
	"github.com/thomascarr/claudeview/internal/store"
)

// Importer runs import passes against one store.
type Importer struct {
	store    *store.Store
	cfg      *config.Config
	resolver *GroupResolver
}

// New creates an importer using the real git metadata source.
func New(st *store.Store, cfg *config.Config) *Importer {
	return NewWithMetadata(st, cfg, gitmeta.GitSource{})
}

// NewWithMetadata creates an importer with an injected metadata source.
func NewWithMetadata(st *store.Store, cfg *config.Config, meta gitmeta.MetadataSource) *Importer {
	return &Importer{
		store:    st,
		cfg:      cfg,
		resolver: NewGroupResolver(st, meta),
	}
}

// Run performs one full pass: every registered project is imported, then
// sidechains are linked, then plans are imported and linked, strictly in
// that order. A missing registry file makes the whole pass a no-op.
func (imp *Importer) Run() error {
	reg, err := LoadRegistry(imp.cfg.RegistryPath)
	if err != nil {
		return err
	}
	if reg == nil {
		return nil
	}

	// Deterministic project order across passes.
	paths := make([]string, 0, len(reg.Projects))
	for path := range reg.Projects {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		if path == "" || path == "/" {
			continue
		}
		if err := imp.ImportProject(path, reg.Projects[path]); err != nil {
			log.Printf("importer: project %s: %v", path, err)
		}
	}

	if err := LinkSidechains(imp.store); err != nil {
		log.Printf("importer: link sidechains: %v", err)
	}
	plans.ImportAll(imp.store, imp.cfg.PlansDir)
	plans.LinkAll(imp.store, imp.cfg.ProjectsDir)

	return nil
}

// ImportProject upserts one project row, resolves its group, and imports
// every session log in its directory. A per-file failure is logged and the
// remaining files still run.
func (imp *Importer) ImportProject(path string, meta ProjectMeta) error {
	groupID, err := imp.resolver.Resolve(path)
	if err != nil {
		return err
	}

	var lastCost sql.NullFloat64
	if meta.LastCost != nil {
		lastCost = sql.NullFloat64{Float64: *meta.LastCost, Valid: true}
	}
	usage := string(meta.LastModelUsage)
	if usage == "" || usage == "null" {
		usage = "{}"
	}

	projectID, err := imp.store.UpsertProject(store.Project{
		Path:           path,
		EncodedPath:    EncodePath(path),
		Name:           filepath.Base(path),
		LastCost:       lastCost,
		LastSessionID:  meta.LastSessionID,
		LastModelUsage: usage,
		GroupID:        sql.NullInt64{Int64: groupID, Valid: true},
	})
	if err != nil {
		return err
	}

	files, err := logparse.SessionFiles(imp.cfg.ProjectsDir, EncodePath(path))
	if err != nil {
		return err
	}
	for _, file := range files {
		if err := logparse.NewParser(imp.store, projectID, file).Import(); err != nil {
			log.Printf("importer: file %s: %v", file, err)
		}
	}
	return nil
}

// EncodePath derives the log directory name for a project path by replacing
// every path separator with a dash. The leading dash is kept:
// /Users/alice/dev becomes -Users-alice-dev.
func EncodePath(path string) string {
	return strings.ReplaceAll(path, "/", "-")
}
