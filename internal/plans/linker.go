package plans

import (
	"bufio"
	"bytes"
	"encoding/json"
	"log"
	"os"

	"github.com/thomascarr/claudeview/internal/logparse"
	"github.com/thomascarr/claudeview/internal/store"
)

const maxLineSize = 10 * 1024 * 1024

// LinkAll links every currently unlinked plan to the session whose log
// mentions its slug. The slug appears in message records written in plan
// mode; the owning session is identified by the log file's name. A plan
// with no match anywhere stays unlinked. Per-plan failures are logged and
// the pass continues.
func LinkAll(st *store.Store, projectsDir string) {
	unlinked, err := st.UnlinkedPlans()
	if err != nil {
		log.Printf("plans: list unlinked: %v", err)
		return
	}
	if len(unlinked) == 0 {
		return
	}

	files, err := logparse.AllSessionFiles(projectsDir)
	if err != nil {
		log.Printf("plans: list session files: %v", err)
		return
	}

	for _, plan := range unlinked {
		if err := linkPlan(st, plan, files); err != nil {
			log.Printf("plans: link %s: %v", plan.Slug, err)
		}
	}
}

func linkPlan(st *store.Store, plan store.Plan, files []string) error {
	for _, path := range files {
		if !fileMentionsSlug(path, plan.Slug) {
			continue
		}
		info := logparse.ClassifyFilename(path)
		session, err := st.SessionBySessionID(info.SessionID)
		if err != nil {
			return err
		}
		if session == nil {
			continue
		}
		return st.LinkPlan(plan.ID, session.ID)
	}
	return nil
}

// fileMentionsSlug reports whether any line of the log file is a JSON
// object whose slug field equals slug. Malformed lines are skipped, and a
// cheap substring check avoids decoding lines that cannot match.
func fileMentionsSlug(path, slug string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	needle := []byte(slug)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	for scanner.Scan() {
		line := scanner.Bytes()
		if !bytes.Contains(line, needle) {
			continue
		}
		var rec struct {
			Slug string `json:"slug"`
		}
		if err := json.Unmarshal(line, &rec); err != nil {
			continue
		}
		if rec.Slug == slug {
			return true
		}
	}
	return false
}
