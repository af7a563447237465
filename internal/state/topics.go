package state

import (
	"maps"

	"chatsync/internal/domain"
)

// UpdateTopicsInfo merges fields into a chat's topic registry, creating it
// on first reference.
func UpdateTopicsInfo(s *Snapshot, chatID string, fn func(*domain.TopicsInfo)) *Snapshot {
	var info domain.TopicsInfo
	if current := s.TopicsInfoByChatID[chatID]; current != nil {
		info = *current
		info.TopicsByID = maps.Clone(current.TopicsByID)
	}
	if info.TopicsByID == nil {
		info.TopicsByID = map[int64]*domain.Topic{}
	}
	fn(&info)

	next := s.clone()
	next.TopicsInfoByChatID = maps.Clone(s.TopicsInfoByChatID)
	next.TopicsInfoByChatID[chatID] = &info
	return next
}

// UpdateTopic upserts a forum topic. Min (partial) updates are restricted
// to the safe field subset by TopicPatch.Apply, so a stale partial snapshot
// never clobbers richer known fields. Every successful upsert roots the
// topic's backing thread at its creation message.
func UpdateTopic(s *Snapshot, chatID string, topicID int64, patch domain.TopicPatch) *Snapshot {
	if s.ChatsByID[chatID] == nil {
		return s
	}

	current := SelectTopic(s, chatID, topicID)
	updated := patch.Apply(current)
	if updated.ID == 0 {
		updated.ID = topicID
	}

	s = UpdateTopicsInfo(s, chatID, func(info *domain.TopicsInfo) {
		info.TopicsByID[topicID] = updated
	})

	threadID := domain.TopicThreadID(topicID)
	s = EnsureThread(s, chatID, threadID)
	return SetFirstMessageID(s, chatID, threadID, topicID)
}

// DeleteTopic removes a topic from the registry. Its backing thread is torn
// down by the message-deletion path that destroys the creation message.
func DeleteTopic(s *Snapshot, chatID string, topicID int64) *Snapshot {
	info := s.TopicsInfoByChatID[chatID]
	if info == nil {
		return s
	}
	if _, ok := info.TopicsByID[topicID]; !ok {
		return s
	}
	return UpdateTopicsInfo(s, chatID, func(next *domain.TopicsInfo) {
		delete(next.TopicsByID, topicID)
	})
}

// AppendListedTopicIDs extends the chat's listed topic set, deduplicated,
// preserving arrival order.
func AppendListedTopicIDs(s *Snapshot, chatID string, topicIDs []int64) *Snapshot {
	return UpdateTopicsInfo(s, chatID, func(info *domain.TopicsInfo) {
		seen := make(map[int64]struct{}, len(info.ListedTopicIDs)+len(topicIDs))
		merged := make([]int64, 0, len(info.ListedTopicIDs)+len(topicIDs))
		for _, id := range info.ListedTopicIDs {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				merged = append(merged, id)
			}
		}
		for _, id := range topicIDs {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				merged = append(merged, id)
			}
		}
		info.ListedTopicIDs = merged
	})
}

// ReplacePinnedTopicIDs replaces the chat's pinned topic ordering.
func ReplacePinnedTopicIDs(s *Snapshot, chatID string, topicIDs []int64) *Snapshot {
	return UpdateTopicsInfo(s, chatID, func(info *domain.TopicsInfo) {
		info.OrderedPinnedTopicIDs = topicIDs
	})
}
