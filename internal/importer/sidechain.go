package importer

import (
	"log"

	"github.com/thomascarr/claudeview/internal/store"
)

// LinkSidechains assigns a parent session to every sidechain lacking one.
// There is no exact identifier tying an agent invocation to its spawning
// session, so the link is inferred by temporal containment: the
// most-recently-started main session of the same project whose span covers
// the sidechain's start. Sidechains without an agent id or start time stay
// unlinked, as do those with no enclosing candidate.
func LinkSidechains(st *store.Store) error {
	orphans, err := st.OrphanSidechains()
	if err != nil {
		return err
	}

	for _, sc := range orphans {
		if sc.AgentID == "" || sc.StartedAt.IsZero() {
			continue
		}

		parentID, ok, err := st.FindEnclosingMainSession(sc.ProjectID, sc.StartedAt)
		if err != nil {
			log.Printf("importer: find parent for sidechain %s: %v", sc.SessionID, err)
			continue
		}
		if !ok {
			continue
		}

		if err := st.LinkParentSession(sc.ID, parentID); err != nil {
			log.Printf("importer: link sidechain %s: %v", sc.SessionID, err)
		}
	}
	return nil
}
