package logparse

import (
	"os"
	"path/filepath"
	"sort"
)

// SessionFiles returns the JSONL log files of one project, sorted by name.
// A missing directory is not an error; there is simply nothing to import.
func SessionFiles(projectsDir, encodedPath string) ([]string, error) {
	dir := filepath.Join(projectsDir, encodedPath)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.jsonl"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// AllSessionFiles returns every JSONL log file across all project
// directories, for corpus-wide scans.
func AllSessionFiles(projectsDir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(projectsDir, "*", "*.jsonl"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
