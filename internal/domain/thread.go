package domain

// Thread is an addressable timeline within a chat. It bundles three
// independently mutable sub-records; deleting a thread drops all three
// atomically.
type Thread struct {
	Info       *ThreadInfo `json:"info,omitempty"`
	ReadState  ReadState   `json:"read_state"`
	LocalState LocalState  `json:"local_state"`
}

// ThreadInfo is the server-authoritative thread metadata.
type ThreadInfo struct {
	ChatID   string   `json:"chat_id"`
	ThreadID ThreadID `json:"thread_id"`

	LastMessageID int64 `json:"last_message_id,omitempty"`
	MessagesCount int   `json:"messages_count,omitempty"`

	// Comment threads in a discussion group remember the channel post they
	// originate from. The propagation of counters back to the channel is
	// one-directional.
	FromChannelID string `json:"from_channel_id,omitempty"`
	FromMessageID int64  `json:"from_message_id,omitempty"`
}

// ReadState is the per-thread unread bookkeeping.
type ReadState struct {
	UnreadCount          int  `json:"unread_count,omitempty"`
	UnreadMentionsCount  int  `json:"unread_mentions_count,omitempty"`
	UnreadReactionsCount int  `json:"unread_reactions_count,omitempty"`
	HasUnreadMark        bool `json:"has_unread_mark,omitempty"`

	// Sorted descending by message id, deduplicated.
	UnreadMentions  []int64 `json:"unread_mentions,omitempty"`
	UnreadReactions []int64 `json:"unread_reactions,omitempty"`

	LastReadInboxMessageID  int64 `json:"last_read_inbox_message_id,omitempty"`
	LastReadOutboxMessageID int64 `json:"last_read_outbox_message_id,omitempty"`
}

// ReadStatePatch is a partial ReadState update. Nil fields keep the current
// value; set slice pointers replace wholesale (an empty slice clears).
type ReadStatePatch struct {
	UnreadCount          *int  `json:"unread_count,omitempty"`
	UnreadMentionsCount  *int  `json:"unread_mentions_count,omitempty"`
	UnreadReactionsCount *int  `json:"unread_reactions_count,omitempty"`
	HasUnreadMark        *bool `json:"has_unread_mark,omitempty"`

	UnreadMentions  *[]int64 `json:"unread_mentions,omitempty"`
	UnreadReactions *[]int64 `json:"unread_reactions,omitempty"`

	LastReadInboxMessageID  *int64 `json:"last_read_inbox_message_id,omitempty"`
	LastReadOutboxMessageID *int64 `json:"last_read_outbox_message_id,omitempty"`
}

// Apply merges the patch into a copy of rs and returns it.
func (p ReadStatePatch) Apply(rs ReadState) ReadState {
	if p.UnreadCount != nil {
		rs.UnreadCount = *p.UnreadCount
	}
	if p.UnreadMentionsCount != nil {
		rs.UnreadMentionsCount = *p.UnreadMentionsCount
	}
	if p.UnreadReactionsCount != nil {
		rs.UnreadReactionsCount = *p.UnreadReactionsCount
	}
	if p.HasUnreadMark != nil {
		rs.HasUnreadMark = *p.HasUnreadMark
	}
	if p.UnreadMentions != nil {
		rs.UnreadMentions = *p.UnreadMentions
	}
	if p.UnreadReactions != nil {
		rs.UnreadReactions = *p.UnreadReactions
	}
	if p.LastReadInboxMessageID != nil {
		rs.LastReadInboxMessageID = *p.LastReadInboxMessageID
	}
	if p.LastReadOutboxMessageID != nil {
		rs.LastReadOutboxMessageID = *p.LastReadOutboxMessageID
	}
	return rs
}

// LocalState is client-only thread bookkeeping. It is never sent to the
// server and never fully derivable from it.
type LocalState struct {
	// ListedIDs are the message ids known to be loaded and orderable for
	// this thread, ascending.
	ListedIDs []int64 `json:"listed_ids,omitempty"`

	// PinnedIDs are sorted descending.
	PinnedIDs []int64 `json:"pinned_ids,omitempty"`

	// ScheduledIDs are sorted descending.
	ScheduledIDs []int64 `json:"scheduled_ids,omitempty"`

	// TypingDrafts maps a correlation id to the local placeholder message
	// currently rendering the peer's typing draft. At most one placeholder
	// per correlation id.
	TypingDrafts map[string]int64 `json:"typing_drafts,omitempty"`

	FirstMessageID int64 `json:"first_message_id,omitempty"`
	EditingID      int64 `json:"editing_id,omitempty"`
}
