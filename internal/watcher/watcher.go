// Package watcher re-runs the import when session logs or plan files
// change. Bursts of writes collapse into a single run after a quiet window;
// each run is a full batch pass, not streaming ingestion.
package watcher

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch monitors dirs recursively and calls run after `quiet` of silence
// following a relevant change (.jsonl or .md). New subdirectories are picked
// up as they appear, since a new project creates a new log directory.
// Watch blocks until ctx is cancelled.
func Watch(ctx context.Context, dirs []string, quiet time.Duration, run func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
		if err := addDirRecursive(w, dir); err != nil {
			return err
		}
	}

	timer := time.NewTimer(quiet)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = addDirRecursive(w, event.Name)
				}
			}
			if relevant(event) {
				timer.Reset(quiet)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Printf("watcher: %v", err)

		case <-timer.C:
			run()
		}
	}
}

func relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
		return false
	}
	return strings.HasSuffix(event.Name, ".jsonl") || strings.HasSuffix(event.Name, ".md")
}

func addDirRecursive(w *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			_ = w.Add(path)
		}
		return nil
	})
}
