// Package plans imports standalone plan documents and links them to the
// sessions they were authored in.
package plans

import (
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/thomascarr/claudeview/internal/store"
)

var titleRe = regexp.MustCompile(`(?m)^# ([^\n]+)`)

// ImportAll imports every markdown file in plansDir, keyed by filename slug.
// A missing directory is a no-op. A per-file failure is logged and that
// file skipped; the pass continues.
func ImportAll(st *store.Store, plansDir string) {
	if _, err := os.Stat(plansDir); os.IsNotExist(err) {
		return
	}

	files, err := filepath.Glob(filepath.Join(plansDir, "*.md"))
	if err != nil {
		log.Printf("plans: list %s: %v", plansDir, err)
		return
	}

	for _, path := range files {
		if err := importFile(st, path); err != nil {
			log.Printf("plans: import %s: %v", path, err)
		}
	}
}

func importFile(st *store.Store, path string) error {
	slug := strings.TrimSuffix(filepath.Base(path), ".md")

	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	title := ExtractTitle(string(content))
	if title == "" {
		title = HumanizeSlug(slug)
	}

	return st.UpsertPlan(slug, title, string(content), info.ModTime())
}

// ExtractTitle returns the first level-1 markdown heading on its own line,
// or "" if the document has none.
func ExtractTitle(content string) string {
	m := titleRe.FindStringSubmatch(content)
	if m == nil {
		return ""
	}
	return m[1]
}

// HumanizeSlug turns a filename slug into a display title:
// "my-session-plan" becomes "My Session Plan".
func HumanizeSlug(slug string) string {
	words := strings.FieldsFunc(slug, func(r rune) bool {
		return r == '-' || r == '_'
	})
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
