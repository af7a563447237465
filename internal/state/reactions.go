package state

import (
	"chatsync/internal/domain"
)

// HasUnreadReactions reports whether the reaction aggregate contains a
// reaction the viewer has not seen yet. Reactions the viewer placed, and
// reactions from the viewer under another peer identity, never count.
func HasUnreadReactions(s *Snapshot, reactions *domain.Reactions) bool {
	if reactions == nil {
		return false
	}
	for _, r := range reactions.RecentReactions {
		if r.IsUnread && !r.IsOwn && r.PeerID != s.CurrentUserID {
			return true
		}
	}
	return false
}

// ReinjectLocalPaidReaction carries a locally optimistic paid reaction from
// the current aggregate into an incoming authoritative one. The server
// snapshot may not yet reflect a reaction sent moments ago; local wins over
// the stale snapshot until an explicit send confirmation replaces the
// aggregate wholesale.
func ReinjectLocalPaidReaction(current, incoming *domain.Reactions) *domain.Reactions {
	if current == nil {
		return incoming
	}
	var local *domain.ReactionCount
	for i := range current.Results {
		if current.Results[i].LocalAmount != 0 {
			local = &current.Results[i]
			break
		}
	}
	if local == nil {
		return incoming
	}

	next := *incoming
	next.Results = addPaidReaction(incoming.Results, local.LocalAmount, local.LocalIsPrivate, local.LocalPeerID)
	return &next
}

// addPaidReaction merges a paid-reaction local amount into the results
// list, prepending a paid entry if none exists. Paid reactions always sort
// first.
func addPaidReaction(results []domain.ReactionCount, amount int64, isPrivate bool, peerID string) []domain.ReactionCount {
	out := make([]domain.ReactionCount, len(results))
	copy(out, results)
	for i := range out {
		if out[i].Reaction.Type == domain.ReactionTypePaid {
			out[i].LocalAmount = amount
			out[i].LocalIsPrivate = isPrivate
			out[i].LocalPeerID = peerID
			return out
		}
	}
	entry := domain.ReactionCount{
		Reaction:       domain.Reaction{Type: domain.ReactionTypePaid},
		LocalAmount:    amount,
		LocalIsPrivate: isPrivate,
		LocalPeerID:    peerID,
	}
	return append([]domain.ReactionCount{entry}, out...)
}

// AddUnreadReactions records messages that gained an unread reaction.
// When totalCount is non-nil the server returned the full id list and the
// per-thread set and counter are replaced; otherwise the merge is
// incremental and the counter moves by the actual set delta, which keeps it
// honest across partial, windowed responses.
func AddUnreadReactions(s *Snapshot, chatID string, ids []int64, totalCount *int) *Snapshot {
	for threadID, messageIDs := range GroupMessageIDsByThread(s, chatID, ids) {
		if totalCount != nil {
			sorted := mergeSortedUnique(nil, messageIDs, true)
			s = UpdateThreadReadState(s, chatID, threadID, domain.ReadStatePatch{
				UnreadReactions:      &sorted,
				UnreadReactionsCount: totalCount,
			})
			continue
		}

		readState := SelectThreadReadState(s, chatID, threadID)
		if readState == nil {
			continue
		}
		prev := readState.UnreadReactions
		updated := mergeSortedUnique(prev, messageIDs, true)
		patch := domain.ReadStatePatch{UnreadReactions: &updated}
		if delta := len(updated) - len(prev); delta > 0 {
			count := readState.UnreadReactionsCount + delta
			patch.UnreadReactionsCount = &count
		}
		s = UpdateThreadReadState(s, chatID, threadID, patch)
	}
	return s
}

// RemoveUnreadReactions clears messages from the per-thread unread-reaction
// sets, decrementing the counter by the actual set delta.
func RemoveUnreadReactions(s *Snapshot, chatID string, ids []int64) *Snapshot {
	for threadID, messageIDs := range GroupMessageIDsByThread(s, chatID, ids) {
		readState := SelectThreadReadState(s, chatID, threadID)
		if readState == nil {
			continue
		}
		drop := make(map[int64]struct{}, len(messageIDs))
		for _, id := range messageIDs {
			drop[id] = struct{}{}
		}
		prev := readState.UnreadReactions
		updated := make([]int64, 0, len(prev))
		for _, id := range prev {
			if _, ok := drop[id]; !ok {
				updated = append(updated, id)
			}
		}
		patch := domain.ReadStatePatch{UnreadReactions: &updated}
		if delta := len(prev) - len(updated); delta > 0 && readState.UnreadReactionsCount > 0 {
			count := max(readState.UnreadReactionsCount-delta, 0)
			patch.UnreadReactionsCount = &count
		}
		s = UpdateThreadReadState(s, chatID, threadID, patch)
	}
	return s
}

// GroupMessageIDsByThread buckets message ids by the thread they belong to.
// Ids the table does not know fall back to the main thread; an unread
// counter can still be adjusted for content we cannot merge.
func GroupMessageIDsByThread(s *Snapshot, chatID string, ids []int64) map[domain.ThreadID][]int64 {
	out := make(map[domain.ThreadID][]int64)
	for _, id := range ids {
		threadID := domain.MainThreadID
		if msg := SelectChatMessage(s, chatID, id); msg != nil {
			threadID = SelectThreadIDFromMessage(s, msg)
		}
		out[threadID] = append(out[threadID], id)
	}
	return out
}
