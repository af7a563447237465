package state

import (
	"cmp"
	"slices"

	"chatsync/internal/domain"
)

// PutChatMessage inserts or replaces a message in the chat's canonical
// table.
func PutChatMessage(s *Snapshot, msg *domain.Message) *Snapshot {
	cm := s.MessagesByChatID[msg.ChatID].clone()
	cm.ByID[msg.ID] = msg
	return s.withChatMessages(msg.ChatID, cm)
}

// PatchChatMessage merges a partial update into an existing message. A
// reference to an unknown chat or message is a no-op: there is nothing to
// reconcile.
func PatchChatMessage(s *Snapshot, chatID string, id int64, patch domain.MessagePatch) *Snapshot {
	cm := s.MessagesByChatID[chatID]
	if cm == nil {
		return s
	}
	current := cm.ByID[id]
	if current == nil {
		return s
	}
	next := cm.clone()
	next.ByID[id] = patch.Apply(current)
	return s.withChatMessages(chatID, next)
}

// DeleteChatMessages removes messages from the canonical table and from
// every thread's id sets, adjusting unread-reaction and unread-mention
// counters by the actual set delta.
func DeleteChatMessages(s *Snapshot, chatID string, ids []int64) *Snapshot {
	cm := s.MessagesByChatID[chatID]
	if cm == nil || len(ids) == 0 {
		return s
	}

	idSet := make(map[int64]struct{}, len(ids))
	deleted := 0
	for _, id := range ids {
		if _, ok := cm.ByID[id]; ok {
			deleted++
		}
		idSet[id] = struct{}{}
	}

	next := cm.clone()
	for id := range idSet {
		delete(next.ByID, id)
	}

	threadsTouched := false
	for threadID, thread := range next.ThreadsByID {
		scrubbed := scrubThreadIDs(thread, idSet)
		if scrubbed != thread {
			next.ThreadsByID[threadID] = scrubbed
			threadsTouched = true
		}
	}

	if deleted == 0 && !threadsTouched {
		return s
	}
	return s.withChatMessages(chatID, next)
}

// scrubThreadIDs drops the deleted ids from a thread's id sets, returning
// the same thread when nothing referenced them.
func scrubThreadIDs(thread *domain.Thread, idSet map[int64]struct{}) *domain.Thread {
	contains := func(ids []int64) bool {
		for _, id := range ids {
			if _, ok := idSet[id]; ok {
				return true
			}
		}
		return false
	}

	touched := contains(thread.LocalState.ListedIDs) ||
		contains(thread.LocalState.PinnedIDs) ||
		contains(thread.ReadState.UnreadMentions) ||
		contains(thread.ReadState.UnreadReactions)
	if !touched {
		return thread
	}

	without := func(ids []int64) []int64 {
		out := make([]int64, 0, len(ids))
		for _, id := range ids {
			if _, ok := idSet[id]; !ok {
				out = append(out, id)
			}
		}
		return out
	}

	next := *thread
	next.LocalState.ListedIDs = without(thread.LocalState.ListedIDs)
	next.LocalState.PinnedIDs = without(thread.LocalState.PinnedIDs)

	mentions := without(thread.ReadState.UnreadMentions)
	if delta := len(thread.ReadState.UnreadMentions) - len(mentions); delta > 0 {
		next.ReadState.UnreadMentions = mentions
		next.ReadState.UnreadMentionsCount = max(0, thread.ReadState.UnreadMentionsCount-delta)
	}
	reactions := without(thread.ReadState.UnreadReactions)
	if delta := len(thread.ReadState.UnreadReactions) - len(reactions); delta > 0 {
		next.ReadState.UnreadReactions = reactions
		next.ReadState.UnreadReactionsCount = max(0, thread.ReadState.UnreadReactionsCount-delta)
	}
	return &next
}

// PutScheduledMessage inserts or replaces a scheduled message.
func PutScheduledMessage(s *Snapshot, msg *domain.Message) *Snapshot {
	cm := s.MessagesByChatID[msg.ChatID].clone()
	cm.ScheduledByID[msg.ID] = msg
	return s.withChatMessages(msg.ChatID, cm)
}

// PatchScheduledMessage merges a partial update into a scheduled message;
// unknown targets are a no-op.
func PatchScheduledMessage(s *Snapshot, chatID string, id int64, patch domain.MessagePatch) *Snapshot {
	cm := s.MessagesByChatID[chatID]
	if cm == nil {
		return s
	}
	current := cm.ScheduledByID[id]
	if current == nil {
		return s
	}
	next := cm.clone()
	next.ScheduledByID[id] = patch.Apply(current)
	return s.withChatMessages(chatID, next)
}

// DeleteScheduledMessages removes scheduled messages and drops their ids
// from every thread's scheduled set.
func DeleteScheduledMessages(s *Snapshot, chatID string, ids []int64) *Snapshot {
	cm := s.MessagesByChatID[chatID]
	if cm == nil || len(ids) == 0 {
		return s
	}
	next := cm.clone()
	idSet := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		delete(next.ScheduledByID, id)
		idSet[id] = struct{}{}
	}
	for threadID, thread := range next.ThreadsByID {
		kept := make([]int64, 0, len(thread.LocalState.ScheduledIDs))
		for _, id := range thread.LocalState.ScheduledIDs {
			if _, ok := idSet[id]; !ok {
				kept = append(kept, id)
			}
		}
		if len(kept) != len(thread.LocalState.ScheduledIDs) {
			t := *thread
			t.LocalState.ScheduledIDs = kept
			next.ThreadsByID[threadID] = &t
		}
	}
	return s.withChatMessages(chatID, next)
}

// AppendListedIDs extends a thread's listed set, keeping it deduplicated
// and ascending. No-op if the thread does not exist.
func AppendListedIDs(s *Snapshot, chatID string, threadID domain.ThreadID, ids []int64) *Snapshot {
	thread := SelectThread(s, chatID, threadID)
	if thread == nil {
		return s
	}
	merged := mergeSortedUnique(thread.LocalState.ListedIDs, ids, false)
	return replaceLocalState(s, chatID, threadID, func(ls *domain.LocalState) {
		ls.ListedIDs = merged
	})
}

// mergeSortedUnique merges ids into base, deduplicated, sorted ascending
// (desc=false) or descending (desc=true).
func mergeSortedUnique(base, ids []int64, desc bool) []int64 {
	out := make([]int64, 0, len(base)+len(ids))
	seen := make(map[int64]struct{}, len(base)+len(ids))
	for _, id := range base {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	for _, id := range ids {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	if desc {
		slices.SortFunc(out, func(a, b int64) int { return cmp.Compare(b, a) })
	} else {
		slices.Sort(out)
	}
	return out
}
