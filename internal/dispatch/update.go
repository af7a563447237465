package dispatch

import (
	"chatsync/internal/domain"
	"chatsync/internal/state"
)

// Kind discriminates the closed update union. The set is append-only: a
// new kind means a new handler branch, never a change to existing ones.
type Kind string

const (
	KindNewMessage                    Kind = "message.new"
	KindNewScheduledMessage           Kind = "message.scheduled_new"
	KindMessageUpdated                Kind = "message.updated"
	KindScheduledMessageUpdated       Kind = "message.scheduled_updated"
	KindMessageSendSucceeded          Kind = "message.send_succeeded"
	KindScheduledMessageSendSucceeded Kind = "message.scheduled_send_succeeded"
	KindMessageSendFailed             Kind = "message.send_failed"
	KindScheduledMessageSendFailed    Kind = "message.scheduled_send_failed"
	KindMessagesDeleted               Kind = "messages.deleted"
	KindScheduledMessagesDeleted      Kind = "messages.scheduled_deleted"
	KindMessagesPatched               Kind = "messages.patched"
	KindHistoryDeleted                Kind = "history.deleted"
	KindSavedHistoryDeleted           Kind = "history.saved_deleted"
	KindParticipantHistoryDeleted     Kind = "history.participant_deleted"
	KindMessageReactions              Kind = "message.reactions"
	KindReactionSendConfirmed         Kind = "message.reaction_sent"
	KindPinnedMessagesUpdated         Kind = "pins.updated"
	KindThreadInfo                    Kind = "thread.info"
	KindThreadReadState               Kind = "thread.read_state"
	KindTopicUpdated                  Kind = "topic.updated"
	KindTopicsListed                  Kind = "topics.listed"
	KindPinnedTopicsOrder             Kind = "topics.pinned_order"
	KindTypingDraft                   Kind = "draft.typing"
	KindChatUpdated                   Kind = "chat.updated"
)

// Update is one typed server-originated event.
type Update interface {
	Kind() Kind
}

// NewMessage announces a message, server-confirmed or locally synthesized.
type NewMessage struct {
	ChatID     string          `json:"chat_id"`
	ID         int64           `json:"id"`
	Message    *domain.Message `json:"message"`
	WasDrafted bool            `json:"was_drafted,omitempty"`
}

func (NewMessage) Kind() Kind { return KindNewMessage }

type NewScheduledMessage struct {
	ChatID  string          `json:"chat_id"`
	ID      int64           `json:"id"`
	Message *domain.Message `json:"message"`
}

func (NewScheduledMessage) Kind() Kind { return KindNewScheduledMessage }

// MessageUpdated patches a known message. IsFull carries a complete
// message so an unknown target can be promoted to a NewMessage.
type MessageUpdated struct {
	ChatID  string          `json:"chat_id"`
	ID      int64           `json:"id"`
	Message *domain.Message `json:"message"`
	IsFull  bool            `json:"is_full,omitempty"`
}

func (MessageUpdated) Kind() Kind { return KindMessageUpdated }

type ScheduledMessageUpdated struct {
	ChatID    string          `json:"chat_id"`
	ID        int64           `json:"id"`
	Message   *domain.Message `json:"message"`
	IsFromNew bool            `json:"is_from_new,omitempty"`
}

func (ScheduledMessageUpdated) Kind() Kind { return KindScheduledMessageUpdated }

// MessageSendSucceeded renames a local placeholder to its confirmed
// server id, preserving locally known content the response omits.
type MessageSendSucceeded struct {
	ChatID  string          `json:"chat_id"`
	LocalID int64           `json:"local_id"`
	Message *domain.Message `json:"message"`
}

func (MessageSendSucceeded) Kind() Kind { return KindMessageSendSucceeded }

type ScheduledMessageSendSucceeded struct {
	ChatID  string          `json:"chat_id"`
	LocalID int64           `json:"local_id"`
	Message *domain.Message `json:"message"`
}

func (ScheduledMessageSendSucceeded) Kind() Kind { return KindScheduledMessageSendSucceeded }

type MessageSendFailed struct {
	ChatID  string `json:"chat_id"`
	LocalID int64  `json:"local_id"`
	Error   string `json:"error,omitempty"`
}

func (MessageSendFailed) Kind() Kind { return KindMessageSendFailed }

type ScheduledMessageSendFailed struct {
	ChatID  string `json:"chat_id"`
	LocalID int64  `json:"local_id"`
	Error   string `json:"error,omitempty"`
}

func (ScheduledMessageSendFailed) Kind() Kind { return KindScheduledMessageSendFailed }

type MessagesDeleted struct {
	ChatID string  `json:"chat_id"`
	IDs    []int64 `json:"ids"`
}

func (MessagesDeleted) Kind() Kind { return KindMessagesDeleted }

type ScheduledMessagesDeleted struct {
	ChatID string  `json:"chat_id"`
	IDs    []int64 `json:"ids"`
}

func (ScheduledMessagesDeleted) Kind() Kind { return KindScheduledMessagesDeleted }

// MessagesPatched applies one partial update across a set of ids in a
// chat, e.g. a channel-wide flag flip.
type MessagesPatched struct {
	ChatID string              `json:"chat_id"`
	IDs    []int64             `json:"ids"`
	Patch  domain.MessagePatch `json:"patch"`
}

func (MessagesPatched) Kind() Kind { return KindMessagesPatched }

type HistoryDeleted struct {
	ChatID string `json:"chat_id"`
}

func (HistoryDeleted) Kind() Kind { return KindHistoryDeleted }

type SavedHistoryDeleted struct {
	PeerID string `json:"peer_id"`
}

func (SavedHistoryDeleted) Kind() Kind { return KindSavedHistoryDeleted }

type ParticipantHistoryDeleted struct {
	ChatID string `json:"chat_id"`
	PeerID string `json:"peer_id"`
}

func (ParticipantHistoryDeleted) Kind() Kind { return KindParticipantHistoryDeleted }

// MessageReactions is the passive reaction reconciliation event.
type MessageReactions struct {
	ChatID    string            `json:"chat_id"`
	ID        int64             `json:"id"`
	ThreadID  domain.ThreadID   `json:"thread_id,omitempty"`
	Reactions *domain.Reactions `json:"reactions"`
}

func (MessageReactions) Kind() Kind { return KindMessageReactions }

// ReactionSendConfirmed is the explicit confirmation of the viewer's own
// send-reaction request. It replaces the aggregate wholesale and is the
// only event that resets a locally tracked paid reaction.
type ReactionSendConfirmed struct {
	ChatID    string            `json:"chat_id"`
	ID        int64             `json:"id"`
	Reactions *domain.Reactions `json:"reactions"`
}

func (ReactionSendConfirmed) Kind() Kind { return KindReactionSendConfirmed }

type PinnedMessagesUpdated struct {
	ChatID   string  `json:"chat_id"`
	IsPinned bool    `json:"is_pinned"`
	IDs      []int64 `json:"ids"`
}

func (PinnedMessagesUpdated) Kind() Kind { return KindPinnedMessagesUpdated }

type ThreadInfo struct {
	Info state.ThreadInfoUpdate `json:"info"`
}

func (ThreadInfo) Kind() Kind { return KindThreadInfo }

type ThreadReadState struct {
	ChatID    string                `json:"chat_id"`
	ThreadID  domain.ThreadID       `json:"thread_id"`
	ReadState domain.ReadStatePatch `json:"read_state"`
}

func (ThreadReadState) Kind() Kind { return KindThreadReadState }

// TopicUpdated upserts a forum topic, optionally with its thread state.
type TopicUpdated struct {
	ChatID        string                 `json:"chat_id"`
	TopicID       int64                  `json:"topic_id"`
	Topic         domain.TopicPatch      `json:"topic"`
	LastMessageID *int64                 `json:"last_message_id,omitempty"`
	ReadState     *domain.ReadStatePatch `json:"read_state,omitempty"`
}

func (TopicUpdated) Kind() Kind { return KindTopicUpdated }

// TopicsListed is a topic-list load result.
type TopicsListed struct {
	ChatID     string              `json:"chat_id"`
	Topics     []domain.TopicPatch `json:"topics"`
	TotalCount *int                `json:"total_count,omitempty"`
}

func (TopicsListed) Kind() Kind { return KindTopicsListed }

type PinnedTopicsOrder struct {
	ChatID   string  `json:"chat_id"`
	TopicIDs []int64 `json:"topic_ids"`
}

func (PinnedTopicsOrder) Kind() Kind { return KindPinnedTopicsOrder }

// TypingDraft renders a peer's in-progress draft as an ephemeral local
// message, at most one per correlation id.
type TypingDraft struct {
	ChatID   string          `json:"chat_id"`
	ThreadID domain.ThreadID `json:"thread_id,omitempty"`
	RandomID string          `json:"random_id"`
	Text     string          `json:"text"`
}

func (TypingDraft) Kind() Kind { return KindTypingDraft }

type ChatUpdated struct {
	Chat *domain.Chat `json:"chat"`
}

func (ChatUpdated) Kind() Kind { return KindChatUpdated }
