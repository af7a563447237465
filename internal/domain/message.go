package domain

type SendingState string

const (
	SendingStatePending   SendingState = "PENDING"
	SendingStateSucceeded SendingState = "SUCCEEDED"
	SendingStateFailed    SendingState = "FAILED"
)

// Action types carried by service messages.
const (
	ActionTopicCreate   = "topicCreate"
	ActionChatEditPhoto = "chatEditPhoto"
)

// Message is the canonical message entity, identified by (ChatID, ID).
// Server-confirmed ids grow monotonically per chat; ids at or above
// LocalMessageMinID are client-synthesized placeholders awaiting
// confirmation.
type Message struct {
	ChatID   string `json:"chat_id"`
	ID       int64  `json:"id"`
	SenderID string `json:"sender_id,omitempty"`

	Content  Content    `json:"content"`
	Date     int64      `json:"date"`
	EditDate int64      `json:"edit_date,omitempty"`
	Reply    *ReplyInfo `json:"reply,omitempty"`

	IsOutgoing   bool         `json:"is_outgoing,omitempty"`
	SendingState SendingState `json:"sending_state,omitempty"`
	Reactions    *Reactions   `json:"reactions,omitempty"`

	// PreviousLocalID links a confirmed message back to the placeholder it
	// replaced.
	PreviousLocalID int64 `json:"previous_local_id,omitempty"`

	// IsDeleting marks the first phase of a two-phase delete. The message
	// stays in the table until the purge fires, so the rendering layer can
	// animate its exit.
	IsDeleting bool `json:"is_deleting,omitempty"`

	IsScheduled              bool `json:"is_scheduled,omitempty"`
	IsVideoProcessingPending bool `json:"is_video_processing_pending,omitempty"`

	SavedPeerID string       `json:"saved_peer_id,omitempty"`
	Forward     *ForwardInfo `json:"forward,omitempty"`
}

// IsLocal reports whether the message is an unconfirmed placeholder.
func (m *Message) IsLocal() bool {
	return IsLocalMessageID(m.ID)
}

// IsAction reports whether the message is a service/action message.
func (m *Message) IsAction() bool {
	return m.Content.Action != nil
}

// ReplyInfo describes what a message replies to.
type ReplyInfo struct {
	ReplyToMsgID int64 `json:"reply_to_msg_id,omitempty"`
	ReplyToTopID int64 `json:"reply_to_top_id,omitempty"`
	IsForumTopic bool  `json:"is_forum_topic,omitempty"`
}

// ForwardInfo describes the origin of a forwarded message. Saved dialogs
// are grouped by it.
type ForwardInfo struct {
	FromID          string `json:"from_id,omitempty"`
	SavedFromPeerID string `json:"saved_from_peer_id,omitempty"`
	HiddenUserName  string `json:"hidden_user_name,omitempty"`
}

// Content is the message payload variant. Exactly one of the pointers is
// normally set; text may accompany media as a caption.
type Content struct {
	Text     *TextContent     `json:"text,omitempty"`
	Photo    *PhotoContent    `json:"photo,omitempty"`
	Video    *VideoContent    `json:"video,omitempty"`
	Sticker  *StickerContent  `json:"sticker,omitempty"`
	Document *DocumentContent `json:"document,omitempty"`
	Poll     *PollContent     `json:"poll,omitempty"`
	Action   *ActionContent   `json:"action,omitempty"`
}

type TextContent struct {
	Text string `json:"text"`
}

type PhotoContent struct {
	ID        string `json:"id"`
	BlobURL   string `json:"blob_url,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

type VideoContent struct {
	ID      string `json:"id"`
	BlobURL string `json:"blob_url,omitempty"`
}

type StickerContent struct {
	ID                  string `json:"id"`
	Emoji               string `json:"emoji,omitempty"`
	IsPreloadedGlobally bool   `json:"is_preloaded_globally,omitempty"`
}

type DocumentContent struct {
	ID             string `json:"id"`
	FileName       string `json:"file_name,omitempty"`
	PreviewBlobURL string `json:"preview_blob_url,omitempty"`
}

type PollContent struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Answers  []string `json:"answers,omitempty"`
	IsClosed bool     `json:"is_closed,omitempty"`
}

type ActionContent struct {
	Type    string `json:"type"`
	Title   string `json:"title,omitempty"`
	PhotoID string `json:"photo_id,omitempty"`
}

// MessagePatch is a partial message update. Nil fields keep the current
// value.
type MessagePatch struct {
	Content         *Content      `json:"content,omitempty"`
	EditDate        *int64        `json:"edit_date,omitempty"`
	SendingState    *SendingState `json:"sending_state,omitempty"`
	Reactions       *Reactions    `json:"reactions,omitempty"`
	IsDeleting      *bool         `json:"is_deleting,omitempty"`
	PreviousLocalID *int64        `json:"previous_local_id,omitempty"`
}

// Apply merges the patch into a copy of m and returns it.
func (p MessagePatch) Apply(m *Message) *Message {
	next := *m
	if p.Content != nil {
		next.Content = *p.Content
	}
	if p.EditDate != nil {
		next.EditDate = *p.EditDate
	}
	if p.SendingState != nil {
		next.SendingState = *p.SendingState
	}
	if p.Reactions != nil {
		next.Reactions = p.Reactions
	}
	if p.IsDeleting != nil {
		next.IsDeleting = *p.IsDeleting
	}
	if p.PreviousLocalID != nil {
		next.PreviousLocalID = *p.PreviousLocalID
	}
	return &next
}
