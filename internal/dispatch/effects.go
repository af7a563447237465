package dispatch

import "chatsync/internal/domain"

// Effect is a side-effect intent emitted by a handler. The reconciler never
// performs side effects itself; the caller (notification layer, transport)
// decides what to do with them.
type Effect interface {
	EffectName() string
}

// NotifyReaction asks the notification layer to surface a fresh unread
// reaction to one of the viewer's messages.
type NotifyReaction struct {
	ChatID    string `json:"chat_id"`
	MessageID int64  `json:"message_id"`
}

func (NotifyReaction) EffectName() string { return "notify_reaction" }

// LoadTopic asks the transport to fetch a topic the reconciler saw
// referenced but does not know, or whose unread counters need a refresh.
type LoadTopic struct {
	ChatID  string `json:"chat_id"`
	TopicID int64  `json:"topic_id"`
}

func (LoadTopic) EffectName() string { return "load_topic" }

// ReloadUnreadReactions asks the transport to re-fetch a thread's unread
// reaction list; emitted when a reaction update referenced content we do
// not hold and the counter cannot be derived locally.
type ReloadUnreadReactions struct {
	ChatID   string          `json:"chat_id"`
	ThreadID domain.ThreadID `json:"thread_id,omitempty"`
}

func (ReloadUnreadReactions) EffectName() string { return "reload_unread_reactions" }

// RequestChatUpdate asks the transport to refresh chat-level metadata
// after a destructive change.
type RequestChatUpdate struct {
	ChatID string `json:"chat_id"`
}

func (RequestChatUpdate) EffectName() string { return "request_chat_update" }
