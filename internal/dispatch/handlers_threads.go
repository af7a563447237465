package dispatch

import (
	"chatsync/internal/domain"
	"chatsync/internal/state"
)

func (d *Dispatcher) handleThreadInfo(s *state.Snapshot, u ThreadInfo) (*state.Snapshot, []Effect) {
	return state.UpdateThreadInfo(s, u.Info), nil
}

func (d *Dispatcher) handleThreadReadState(s *state.Snapshot, u ThreadReadState) (*state.Snapshot, []Effect) {
	// Read states may arrive ahead of any message in the thread.
	s = state.EnsureThread(s, u.ChatID, u.ThreadID)
	return state.UpdateThreadReadState(s, u.ChatID, u.ThreadID, u.ReadState), nil
}

func (d *Dispatcher) handlePinnedMessagesUpdated(s *state.Snapshot, u PinnedMessagesUpdated) (*state.Snapshot, []Effect) {
	byThread := state.GroupMessageIDsByThread(s, u.ChatID, u.IDs)
	if _, ok := byThread[domain.MainThreadID]; !ok {
		// Every pin is also a pin of the main timeline.
		byThread[domain.MainThreadID] = nil
	}
	for threadID, ids := range byThread {
		if threadID != domain.MainThreadID && state.SelectThread(s, u.ChatID, threadID) == nil {
			continue
		}
		if threadID == domain.MainThreadID {
			ids = u.IDs
			s = state.EnsureThread(s, u.ChatID, threadID)
		}
		pinned := state.SelectPinnedIDs(s, u.ChatID, threadID)
		if u.IsPinned {
			for _, id := range ids {
				pinned = insertDescUnique(pinned, id)
			}
		} else {
			pinned = filterIDs(pinned, ids)
		}
		s = state.ReplacePinnedIDs(s, u.ChatID, threadID, pinned)
	}
	return s, nil
}

// insertDescUnique inserts id into a descending unique id list.
func insertDescUnique(ids []int64, id int64) []int64 {
	out := make([]int64, 0, len(ids)+1)
	inserted := false
	for _, existing := range ids {
		if existing == id {
			if inserted {
				continue
			}
			inserted = true
		} else if !inserted && existing < id {
			out = append(out, id)
			inserted = true
		}
		out = append(out, existing)
	}
	if !inserted {
		out = append(out, id)
	}
	return out
}

func filterIDs(ids, drop []int64) []int64 {
	dropSet := make(map[int64]struct{}, len(drop))
	for _, id := range drop {
		dropSet[id] = struct{}{}
	}
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := dropSet[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}
