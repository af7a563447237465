// Package state holds the immutable conversation snapshot and the pure
// merge functions that produce the next snapshot from an update. Nothing
// here mutates in place: every merge clones the maps along its write path
// and returns a new snapshot, so concurrent readers always observe either
// the prior snapshot or a fully formed new one.
package state

import (
	"maps"

	"chatsync/internal/domain"
)

// ChatMessages is the per-chat message table: canonical entities plus the
// thread records that index them.
type ChatMessages struct {
	ByID          map[int64]*domain.Message
	ScheduledByID map[int64]*domain.Message
	ThreadsByID   map[domain.ThreadID]*domain.Thread
}

// Settings is the small slice of presentation configuration the reconciler
// consumes: it only selects durations, it never renders anything.
type Settings struct {
	CanAnimateSnapEffect bool
}

// Snapshot is the full in-memory conversation state.
type Snapshot struct {
	CurrentUserID string
	Settings      Settings

	ChatsByID          map[string]*domain.Chat
	MessagesByChatID   map[string]*ChatMessages
	TopicsInfoByChatID map[string]*domain.TopicsInfo

	LastMessageIDByChatID map[string]int64
	// Saved-dialog last messages, keyed by the saved peer id.
	SavedLastMessageIDByPeerID map[string]int64
}

// NewSnapshot returns an empty snapshot for the given viewer.
func NewSnapshot(currentUserID string, settings Settings) *Snapshot {
	return &Snapshot{
		CurrentUserID:              currentUserID,
		Settings:                   settings,
		ChatsByID:                  map[string]*domain.Chat{},
		MessagesByChatID:           map[string]*ChatMessages{},
		TopicsInfoByChatID:         map[string]*domain.TopicsInfo{},
		LastMessageIDByChatID:      map[string]int64{},
		SavedLastMessageIDByPeerID: map[string]int64{},
	}
}

func (s *Snapshot) clone() *Snapshot {
	next := *s
	return &next
}

func (c *ChatMessages) clone() *ChatMessages {
	if c == nil {
		return &ChatMessages{
			ByID:          map[int64]*domain.Message{},
			ScheduledByID: map[int64]*domain.Message{},
			ThreadsByID:   map[domain.ThreadID]*domain.Thread{},
		}
	}
	return &ChatMessages{
		ByID:          maps.Clone(c.ByID),
		ScheduledByID: maps.Clone(c.ScheduledByID),
		ThreadsByID:   maps.Clone(c.ThreadsByID),
	}
}

// withChatMessages clones the snapshot with the chat's message table
// replaced.
func (s *Snapshot) withChatMessages(chatID string, cm *ChatMessages) *Snapshot {
	next := s.clone()
	next.MessagesByChatID = maps.Clone(s.MessagesByChatID)
	next.MessagesByChatID[chatID] = cm
	return next
}

// UpdateChat upserts a chat registry record.
func UpdateChat(s *Snapshot, chat *domain.Chat) *Snapshot {
	next := s.clone()
	next.ChatsByID = maps.Clone(s.ChatsByID)
	next.ChatsByID[chat.ID] = chat
	return next
}

// UpdateChatLastMessageID replaces a chat's last-message pointer without
// any monotonic check. Callers wanting the tie-break go through
// UpdateChatLastMessage in the dispatch layer.
func UpdateChatLastMessageID(s *Snapshot, chatID string, messageID int64) *Snapshot {
	next := s.clone()
	next.LastMessageIDByChatID = maps.Clone(s.LastMessageIDByChatID)
	next.LastMessageIDByChatID[chatID] = messageID
	return next
}

// UpdateSavedLastMessageID replaces a saved dialog's last-message pointer.
func UpdateSavedLastMessageID(s *Snapshot, peerID string, messageID int64) *Snapshot {
	next := s.clone()
	next.SavedLastMessageIDByPeerID = maps.Clone(s.SavedLastMessageIDByPeerID)
	next.SavedLastMessageIDByPeerID[peerID] = messageID
	return next
}
