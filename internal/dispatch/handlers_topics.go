package dispatch

import (
	"chatsync/internal/domain"
	"chatsync/internal/state"
)

func (d *Dispatcher) handleTopicUpdated(s *state.Snapshot, u TopicUpdated) (*state.Snapshot, []Effect) {
	if state.SelectChat(s, u.ChatID) == nil {
		// Topic updates for chats we have never seen are useless on their
		// own; ask for the chat first.
		return s, []Effect{RequestChatUpdate{ChatID: u.ChatID}}
	}

	patch := u.Topic
	if patch.ID == 0 {
		patch.ID = u.TopicID
	}
	s = state.UpdateTopic(s, u.ChatID, u.TopicID, patch)

	threadID := domain.TopicThreadID(u.TopicID)
	if u.LastMessageID != nil && !patch.IsMin {
		s = state.UpdateThreadInfo(s, state.ThreadInfoUpdate{
			ChatID:        u.ChatID,
			ThreadID:      threadID,
			LastMessageID: u.LastMessageID,
		})
	}
	if u.ReadState != nil {
		s = state.EnsureThread(s, u.ChatID, threadID)
		s = state.UpdateThreadReadState(s, u.ChatID, threadID, *u.ReadState)
	}
	return s, nil
}

func (d *Dispatcher) handleTopicsListed(s *state.Snapshot, u TopicsListed) (*state.Snapshot, []Effect) {
	if state.SelectChat(s, u.ChatID) == nil {
		return s, []Effect{RequestChatUpdate{ChatID: u.ChatID}}
	}

	listed := make([]int64, 0, len(u.Topics))
	for _, patch := range u.Topics {
		if patch.ID == 0 {
			continue
		}
		s = state.UpdateTopic(s, u.ChatID, patch.ID, patch)
		listed = append(listed, patch.ID)
	}
	s = state.AppendListedTopicIDs(s, u.ChatID, listed)
	if u.TotalCount != nil {
		total := *u.TotalCount
		s = state.UpdateTopicsInfo(s, u.ChatID, func(info *domain.TopicsInfo) {
			info.TotalCount = total
		})
	}
	return s, nil
}

func (d *Dispatcher) handlePinnedTopicsOrder(s *state.Snapshot, u PinnedTopicsOrder) (*state.Snapshot, []Effect) {
	return state.ReplacePinnedTopicIDs(s, u.ChatID, u.TopicIDs), nil
}
