package dispatch

import (
	"time"

	"chatsync/internal/domain"
	"chatsync/internal/state"
)

func (d *Dispatcher) handleMessagesDeleted(s *state.Snapshot, u MessagesDeleted) (*state.Snapshot, []Effect) {
	return d.beginDeleteMessages(s, u.ChatID, u.IDs, nil)
}

func (d *Dispatcher) handleHistoryDeleted(s *state.Snapshot, u HistoryDeleted) (*state.Snapshot, []Effect) {
	ids := make([]int64, 0, len(state.SelectChatMessages(s, u.ChatID)))
	for id := range state.SelectChatMessages(s, u.ChatID) {
		ids = append(ids, id)
	}
	chatID := u.ChatID
	return d.beginDeleteMessages(s, chatID, ids, func(next *state.Snapshot) *state.Snapshot {
		// Whole history gone means the threads go with it.
		if len(state.SelectChatMessages(next, chatID)) != 0 {
			return next
		}
		thread, ok := next.MessagesByChatID[chatID]
		if !ok || len(thread.ThreadsByID) == 0 {
			return next
		}
		for threadID := range thread.ThreadsByID {
			next = state.DeleteThread(next, chatID, threadID)
		}
		return next
	})
}

func (d *Dispatcher) handleSavedHistoryDeleted(s *state.Snapshot, u SavedHistoryDeleted) (*state.Snapshot, []Effect) {
	chatID := s.CurrentUserID
	threadID := domain.PeerThreadID(u.PeerID)

	var ids []int64
	for id, msg := range state.SelectChatMessages(s, chatID) {
		if state.SelectSavedDialogIDFromMessage(s, msg) == u.PeerID {
			ids = append(ids, id)
		}
	}
	return d.beginDeleteMessages(s, chatID, ids, func(next *state.Snapshot) *state.Snapshot {
		return state.DeleteThread(next, chatID, threadID)
	})
}

func (d *Dispatcher) handleParticipantHistoryDeleted(s *state.Snapshot, u ParticipantHistoryDeleted) (*state.Snapshot, []Effect) {
	var ids []int64
	for id, msg := range state.SelectChatMessages(s, u.ChatID) {
		if msg.SenderID == u.PeerID {
			ids = append(ids, id)
		}
	}
	return d.beginDeleteMessages(s, u.ChatID, ids, nil)
}

func (d *Dispatcher) handleScheduledMessagesDeleted(s *state.Snapshot, u ScheduledMessagesDeleted) (*state.Snapshot, []Effect) {
	deleting := true
	for _, id := range u.IDs {
		s = state.PatchScheduledMessage(s, u.ChatID, id, domain.MessagePatch{IsDeleting: &deleting})
	}

	chatID := u.ChatID
	ids := append([]int64(nil), u.IDs...)
	d.sched.Schedule(d.purgeDelay(s), func() {
		d.store.Update(func(cur *state.Snapshot) *state.Snapshot {
			still := make([]int64, 0, len(ids))
			for _, id := range ids {
				if msg := state.SelectScheduledMessage(cur, chatID, id); msg != nil && msg.IsDeleting {
					still = append(still, id)
				}
			}
			return state.DeleteScheduledMessages(cur, chatID, still)
		})
	})
	return s, nil
}

// beginDeleteMessages runs the first phase of a delete: every target is
// flagged IsDeleting so it keeps rendering until the purge fires, affected
// thread last-message pointers are repaired, and the purge itself is
// scheduled. onPurged, when set, runs against the snapshot after the purge
// commits.
func (d *Dispatcher) beginDeleteMessages(s *state.Snapshot, chatID string, ids []int64, onPurged func(*state.Snapshot) *state.Snapshot) (*state.Snapshot, []Effect) {
	if len(ids) == 0 {
		return s, nil
	}
	chat := state.SelectChat(s, chatID)

	deleting := true
	idSet := make(map[int64]struct{}, len(ids))
	threadIDs := map[domain.ThreadID]struct{}{domain.MainThreadID: {}}
	for _, id := range ids {
		idSet[id] = struct{}{}
		s = state.PatchChatMessage(s, chatID, id, domain.MessagePatch{IsDeleting: &deleting})
		if state.SelectTopic(s, chatID, id) != nil {
			// Deleting a topic's root service message deletes the topic.
			s = state.DeleteTopic(s, chatID, id)
		}
		msg := state.SelectChatMessage(s, chatID, id)
		if msg == nil {
			continue
		}
		threadIDs[state.SelectThreadIDFromMessage(s, msg)] = struct{}{}
	}

	effects := []Effect{RequestChatUpdate{ChatID: chatID}}
	for threadID := range threadIDs {
		if chat != nil && chat.IsForum && threadID != domain.MainThreadID {
			if topicID, ok := threadID.MessageID(); ok {
				effects = append(effects, LoadTopic{ChatID: chatID, TopicID: topicID})
			}
		}

		info := state.SelectThreadInfo(s, chatID, threadID)
		if info == nil {
			continue
		}
		if _, gone := idSet[info.LastMessageID]; !gone {
			continue
		}
		newLast := state.FindLastMessage(s, chatID, threadID)
		if newLast == nil {
			continue
		}
		if threadID == domain.MainThreadID {
			s = d.updateChatLastMessage(s, chatID, newLast, true)
		}
		s = state.UpdateThreadInfoLastMessageID(s, chatID, threadID, newLast.ID)
	}

	retained := append([]int64(nil), ids...)
	d.sched.Schedule(d.purgeDelay(s), func() {
		d.store.Update(func(cur *state.Snapshot) *state.Snapshot {
			// Only purge messages still marked: a send-succeeded rename or a
			// fresh update in the interim cancels the delete.
			still := make([]int64, 0, len(retained))
			for _, id := range retained {
				if msg := state.SelectChatMessage(cur, chatID, id); msg != nil && msg.IsDeleting {
					still = append(still, id)
				}
			}
			next := state.DeleteChatMessages(cur, chatID, still)
			if onPurged != nil {
				next = onPurged(next)
			}
			return next
		})
	})

	return s, effects
}

func (d *Dispatcher) purgeDelay(s *state.Snapshot) time.Duration {
	if s.Settings.CanAnimateSnapEffect {
		return d.cfg.SnapAnimationDelay
	}
	return d.cfg.AnimationDelay
}
