package state

import (
	"chatsync/internal/domain"
)

// Selectors are the read-only query surface over a snapshot. All of them
// are pure and may return nil: callers must not assume a value is present,
// since the transport layer may still be loading history.

func SelectChat(s *Snapshot, chatID string) *domain.Chat {
	return s.ChatsByID[chatID]
}

func SelectChatMessages(s *Snapshot, chatID string) map[int64]*domain.Message {
	cm := s.MessagesByChatID[chatID]
	if cm == nil {
		return nil
	}
	return cm.ByID
}

func SelectChatMessage(s *Snapshot, chatID string, id int64) *domain.Message {
	cm := s.MessagesByChatID[chatID]
	if cm == nil {
		return nil
	}
	return cm.ByID[id]
}

func SelectScheduledMessages(s *Snapshot, chatID string) map[int64]*domain.Message {
	cm := s.MessagesByChatID[chatID]
	if cm == nil {
		return nil
	}
	return cm.ScheduledByID
}

func SelectScheduledMessage(s *Snapshot, chatID string, id int64) *domain.Message {
	cm := s.MessagesByChatID[chatID]
	if cm == nil {
		return nil
	}
	return cm.ScheduledByID[id]
}

func SelectThread(s *Snapshot, chatID string, threadID domain.ThreadID) *domain.Thread {
	cm := s.MessagesByChatID[chatID]
	if cm == nil {
		return nil
	}
	return cm.ThreadsByID[threadID]
}

func SelectThreadInfo(s *Snapshot, chatID string, threadID domain.ThreadID) *domain.ThreadInfo {
	thread := SelectThread(s, chatID, threadID)
	if thread == nil {
		return nil
	}
	return thread.Info
}

func SelectThreadReadState(s *Snapshot, chatID string, threadID domain.ThreadID) *domain.ReadState {
	thread := SelectThread(s, chatID, threadID)
	if thread == nil {
		return nil
	}
	return &thread.ReadState
}

func SelectThreadLocalState(s *Snapshot, chatID string, threadID domain.ThreadID) *domain.LocalState {
	thread := SelectThread(s, chatID, threadID)
	if thread == nil {
		return nil
	}
	return &thread.LocalState
}

func SelectListedIDs(s *Snapshot, chatID string, threadID domain.ThreadID) []int64 {
	ls := SelectThreadLocalState(s, chatID, threadID)
	if ls == nil {
		return nil
	}
	return ls.ListedIDs
}

func SelectPinnedIDs(s *Snapshot, chatID string, threadID domain.ThreadID) []int64 {
	ls := SelectThreadLocalState(s, chatID, threadID)
	if ls == nil {
		return nil
	}
	return ls.PinnedIDs
}

func SelectScheduledIDs(s *Snapshot, chatID string, threadID domain.ThreadID) []int64 {
	ls := SelectThreadLocalState(s, chatID, threadID)
	if ls == nil {
		return nil
	}
	return ls.ScheduledIDs
}

func SelectChatLastMessageID(s *Snapshot, chatID string) int64 {
	return s.LastMessageIDByChatID[chatID]
}

func SelectTopicsInfo(s *Snapshot, chatID string) *domain.TopicsInfo {
	return s.TopicsInfoByChatID[chatID]
}

func SelectTopics(s *Snapshot, chatID string) map[int64]*domain.Topic {
	info := s.TopicsInfoByChatID[chatID]
	if info == nil {
		return nil
	}
	return info.TopicsByID
}

func SelectTopic(s *Snapshot, chatID string, topicID int64) *domain.Topic {
	topics := SelectTopics(s, chatID)
	if topics == nil {
		return nil
	}
	return topics[topicID]
}

// SelectTopicFromMessage resolves the forum topic a message belongs to, if
// any.
func SelectTopicFromMessage(s *Snapshot, msg *domain.Message) *domain.Topic {
	chat := SelectChat(s, msg.ChatID)
	if chat == nil || !chat.IsForum {
		return nil
	}
	threadID := SelectThreadIDFromMessage(s, msg)
	topicID, ok := threadID.MessageID()
	if !ok {
		return nil
	}
	return SelectTopic(s, msg.ChatID, topicID)
}

// SelectThreadByMessage resolves the non-main thread a message belongs to.
func SelectThreadByMessage(s *Snapshot, msg *domain.Message) *domain.Thread {
	threadID := SelectThreadIDFromMessage(s, msg)
	if threadID == domain.MainThreadID {
		return nil
	}
	return SelectThread(s, msg.ChatID, threadID)
}

// SelectSavedDialogIDFromMessage classifies a message into a saved-dialog
// peer grouping. Only messages in the viewer's own chat group into saved
// dialogs; forwarded messages group under their origin.
func SelectSavedDialogIDFromMessage(s *Snapshot, msg *domain.Message) string {
	if msg.SavedPeerID != "" {
		return msg.SavedPeerID
	}
	if msg.ChatID != s.CurrentUserID {
		return ""
	}
	if fwd := msg.Forward; fwd != nil {
		if fwd.SavedFromPeerID != "" {
			return fwd.SavedFromPeerID
		}
		if fwd.FromID != "" {
			return fwd.FromID
		}
		if fwd.HiddenUserName != "" {
			return AnonymousUserID
		}
	}
	return msg.SenderID
}

// AnonymousUserID groups saved messages forwarded from hidden senders.
const AnonymousUserID = "anonymous"

// SelectThreadIDFromMessage is the pure thread classification: saved-dialog
// peer takes priority; a topic-create action message roots its own thread;
// non-forum chats resolve to the main thread except supergroups, which
// follow the reply chain; forum chats follow the reply chain and fall back
// to the General topic. Stable for a given (snapshot, message) pair.
func SelectThreadIDFromMessage(s *Snapshot, msg *domain.Message) domain.ThreadID {
	if savedDialogID := SelectSavedDialogIDFromMessage(s, msg); savedDialogID != "" {
		return domain.PeerThreadID(savedDialogID)
	}

	if msg.Content.Action != nil && msg.Content.Action.Type == domain.ActionTopicCreate {
		return domain.TopicThreadID(msg.ID)
	}

	chat := SelectChat(s, msg.ChatID)
	reply := msg.Reply

	if chat == nil || !chat.IsForum {
		if chat != nil && chat.Type == domain.ChatTypeSuperGroup {
			if reply != nil {
				if reply.ReplyToTopID != 0 {
					return domain.TopicThreadID(reply.ReplyToTopID)
				}
				if reply.ReplyToMsgID != 0 {
					return domain.TopicThreadID(reply.ReplyToMsgID)
				}
			}
		}
		return domain.MainThreadID
	}

	if reply == nil || !reply.IsForumTopic {
		return domain.TopicThreadID(domain.GeneralTopicID)
	}
	if reply.ReplyToTopID != 0 {
		return domain.TopicThreadID(reply.ReplyToTopID)
	}
	if reply.ReplyToMsgID != 0 {
		return domain.TopicThreadID(reply.ReplyToMsgID)
	}
	return domain.TopicThreadID(domain.GeneralTopicID)
}

// FindLastMessage scans a thread's listed ids backward for the newest
// message not flagged as deleting. Used to recompute a last-message pointer
// after deletions.
func FindLastMessage(s *Snapshot, chatID string, threadID domain.ThreadID) *domain.Message {
	byID := SelectChatMessages(s, chatID)
	listed := SelectListedIDs(s, chatID, threadID)
	if byID == nil || listed == nil {
		return nil
	}
	for i := len(listed) - 1; i >= 0; i-- {
		if msg := byID[listed[i]]; msg != nil && !msg.IsDeleting {
			return msg
		}
	}
	return nil
}
