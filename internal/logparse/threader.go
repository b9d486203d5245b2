package logparse

import "github.com/thomascarr/claudeview/internal/store"

// ResolveThreads resolves each message's parent link from its raw
// parent_uuid, for one session. Two-phase: all messages are already
// persisted, so an id lookup table handles forward references (a child
// appearing before its parent in the stream). A parent_uuid that matches
// nothing, as in truncated logs, is left unlinked.
func ResolveThreads(st *store.Store, sessionRowID int64) error {
	refs, err := st.SessionMessageRefs(sessionRowID)
	if err != nil {
		return err
	}

	byUUID := make(map[string]int64, len(refs))
	for _, r := range refs {
		byUUID[r.UUID] = r.ID
	}

	for _, r := range refs {
		if r.ParentUUID == "" {
			continue
		}
		parentID, ok := byUUID[r.ParentUUID]
		if !ok {
			continue
		}
		if r.ParentMessageID.Valid && r.ParentMessageID.Int64 == parentID {
			continue
		}
		if err := st.SetParentMessage(r.ID, parentID); err != nil {
			return err
		}
	}
	return nil
}
