package state

import (
	"chatsync/internal/domain"
)

// ThreadInfoUpdate describes an incoming thread-info merge. When
// IsCommentsInfo is set the update targets the comment thread rooted at
// (OriginChannelID, OriginMessageID) instead of (ChatID, ThreadID).
type ThreadInfoUpdate struct {
	IsCommentsInfo  bool            `json:"is_comments_info,omitempty"`
	ChatID          string          `json:"chat_id,omitempty"`
	ThreadID        domain.ThreadID `json:"thread_id,omitempty"`
	OriginChannelID string          `json:"origin_channel_id,omitempty"`
	OriginMessageID int64           `json:"origin_message_id,omitempty"`

	FromChannelID string `json:"from_channel_id,omitempty"`
	FromMessageID int64  `json:"from_message_id,omitempty"`

	LastMessageID *int64 `json:"last_message_id,omitempty"`
	MessagesCount *int   `json:"messages_count,omitempty"`
}

// UpdateThreadInfo merges server-authoritative thread metadata. Unlike the
// read-state and local-state merges, it creates the thread record on first
// reference. When the update describes a channel-comments thread it also
// propagates the counter subset to the linked discussion thread, one
// direction only.
func UpdateThreadInfo(s *Snapshot, u ThreadInfoUpdate) *Snapshot {
	chatID, threadID := u.ChatID, u.ThreadID
	if u.IsCommentsInfo {
		chatID = u.OriginChannelID
		threadID = domain.TopicThreadID(u.OriginMessageID)
	}
	if chatID == "" || threadID == "" {
		return s
	}

	current := SelectThreadInfo(s, chatID, threadID)
	next := mergeThreadInfo(current, chatID, threadID, u)

	if !u.IsCommentsInfo {
		s = updateLinkedThreadInfo(s, next)
	}
	return putThreadInfo(s, chatID, threadID, next)
}

func mergeThreadInfo(current *domain.ThreadInfo, chatID string, threadID domain.ThreadID, u ThreadInfoUpdate) *domain.ThreadInfo {
	var info domain.ThreadInfo
	if current != nil {
		info = *current
	}
	info.ChatID = chatID
	info.ThreadID = threadID
	if u.FromChannelID != "" {
		info.FromChannelID = u.FromChannelID
	}
	if u.FromMessageID != 0 {
		info.FromMessageID = u.FromMessageID
	}
	if u.LastMessageID != nil {
		info.LastMessageID = *u.LastMessageID
	}
	if u.MessagesCount != nil {
		info.MessagesCount = *u.MessagesCount
	}
	return &info
}

// updateLinkedThreadInfo carries messagesCount and lastMessageId from a
// discussion thread back to the channel post it comments on. Only these two
// fields cross over, and only if the channel-side thread already exists, so
// the propagation cannot loop back.
func updateLinkedThreadInfo(s *Snapshot, info *domain.ThreadInfo) *Snapshot {
	if info.FromChannelID == "" || info.FromMessageID == 0 {
		return s
	}
	linkedThreadID := domain.TopicThreadID(info.FromMessageID)
	linked := SelectThreadInfo(s, info.FromChannelID, linkedThreadID)
	if linked == nil {
		return s
	}
	next := *linked
	next.MessagesCount = info.MessagesCount
	next.LastMessageID = info.LastMessageID
	return putThreadInfo(s, info.FromChannelID, linkedThreadID, &next)
}

// putThreadInfo writes a thread's info record, creating the thread if
// needed.
func putThreadInfo(s *Snapshot, chatID string, threadID domain.ThreadID, info *domain.ThreadInfo) *Snapshot {
	cm := s.MessagesByChatID[chatID].clone()
	var thread domain.Thread
	if current := cm.ThreadsByID[threadID]; current != nil {
		thread = *current
	}
	thread.Info = info
	cm.ThreadsByID[threadID] = &thread
	return s.withChatMessages(chatID, cm)
}

// UpdateThreadInfoLastMessageID sets the last-message pointer of an
// existing thread. No-op when the thread has no info record yet.
func UpdateThreadInfoLastMessageID(s *Snapshot, chatID string, threadID domain.ThreadID, lastMessageID int64) *Snapshot {
	info := SelectThreadInfo(s, chatID, threadID)
	if info == nil {
		return s
	}
	next := *info
	next.LastMessageID = lastMessageID
	return UpdateThreadInfo(s, threadInfoUpdateFrom(&next))
}

// UpdateThreadInfoMessagesCount sets the message counter of an existing
// thread. No-op when the thread has no info record yet.
func UpdateThreadInfoMessagesCount(s *Snapshot, chatID string, threadID domain.ThreadID, count int) *Snapshot {
	info := SelectThreadInfo(s, chatID, threadID)
	if info == nil {
		return s
	}
	next := *info
	next.MessagesCount = count
	return UpdateThreadInfo(s, threadInfoUpdateFrom(&next))
}

// threadInfoUpdateFrom re-expresses a full info record as an update so the
// linked-thread propagation applies to pointer moves too.
func threadInfoUpdateFrom(info *domain.ThreadInfo) ThreadInfoUpdate {
	last := info.LastMessageID
	count := info.MessagesCount
	return ThreadInfoUpdate{
		ChatID:        info.ChatID,
		ThreadID:      info.ThreadID,
		FromChannelID: info.FromChannelID,
		FromMessageID: info.FromMessageID,
		LastMessageID: &last,
		MessagesCount: &count,
	}
}

// UpdateThreadReadState merges a partial read-state update. No-op if the
// thread does not exist.
func UpdateThreadReadState(s *Snapshot, chatID string, threadID domain.ThreadID, patch domain.ReadStatePatch) *Snapshot {
	thread := SelectThread(s, chatID, threadID)
	if thread == nil {
		return s
	}
	cm := s.MessagesByChatID[chatID].clone()
	next := *thread
	next.ReadState = patch.Apply(thread.ReadState)
	cm.ThreadsByID[threadID] = &next
	return s.withChatMessages(chatID, cm)
}

// replaceLocalState applies fn to a copy of the thread's local state.
// No-op if the thread does not exist.
func replaceLocalState(s *Snapshot, chatID string, threadID domain.ThreadID, fn func(*domain.LocalState)) *Snapshot {
	thread := SelectThread(s, chatID, threadID)
	if thread == nil {
		return s
	}
	cm := s.MessagesByChatID[chatID].clone()
	next := *thread
	fn(&next.LocalState)
	cm.ThreadsByID[threadID] = &next
	return s.withChatMessages(chatID, cm)
}

// ReplaceScheduledIDs replaces a thread's scheduled id set.
func ReplaceScheduledIDs(s *Snapshot, chatID string, threadID domain.ThreadID, ids []int64) *Snapshot {
	return replaceLocalState(s, chatID, threadID, func(ls *domain.LocalState) {
		ls.ScheduledIDs = ids
	})
}

// ReplacePinnedIDs replaces a thread's pinned id set.
func ReplacePinnedIDs(s *Snapshot, chatID string, threadID domain.ThreadID, ids []int64) *Snapshot {
	return replaceLocalState(s, chatID, threadID, func(ls *domain.LocalState) {
		ls.PinnedIDs = ids
	})
}

// ReplaceTypingDrafts replaces a thread's typing-draft correlation map.
// A nil map clears it.
func ReplaceTypingDrafts(s *Snapshot, chatID string, threadID domain.ThreadID, drafts map[string]int64) *Snapshot {
	return replaceLocalState(s, chatID, threadID, func(ls *domain.LocalState) {
		ls.TypingDrafts = drafts
	})
}

// SetFirstMessageID pins a thread's first message id (topics are rooted at
// their creation message).
func SetFirstMessageID(s *Snapshot, chatID string, threadID domain.ThreadID, id int64) *Snapshot {
	return replaceLocalState(s, chatID, threadID, func(ls *domain.LocalState) {
		ls.FirstMessageID = id
	})
}

// EnsureThread creates an empty thread record if none exists yet. Threads
// come to exist lazily, on first message reference or explicit metadata.
func EnsureThread(s *Snapshot, chatID string, threadID domain.ThreadID) *Snapshot {
	if SelectThread(s, chatID, threadID) != nil {
		return s
	}
	cm := s.MessagesByChatID[chatID].clone()
	cm.ThreadsByID[threadID] = &domain.Thread{}
	return s.withChatMessages(chatID, cm)
}

// DeleteThread drops a thread and all three of its sub-records atomically.
func DeleteThread(s *Snapshot, chatID string, threadID domain.ThreadID) *Snapshot {
	cm := s.MessagesByChatID[chatID]
	if cm == nil {
		return s
	}
	if _, ok := cm.ThreadsByID[threadID]; !ok {
		return s
	}
	next := cm.clone()
	delete(next.ThreadsByID, threadID)
	return s.withChatMessages(chatID, next)
}
