package domain

type ChatType string

const (
	ChatTypePrivate    ChatType = "PRIVATE"
	ChatTypeBasicGroup ChatType = "BASIC_GROUP"
	ChatTypeSuperGroup ChatType = "SUPER_GROUP"
	ChatTypeChannel    ChatType = "CHANNEL"
)

// Chat is the minimal chat record the reconciler needs: enough to classify
// a message into a thread and to gate forum-only behavior. Everything else
// about a chat lives with the collaborators that own it.
type Chat struct {
	ID         string   `json:"id"`
	Type       ChatType `json:"type"`
	Title      string   `json:"title,omitempty"`
	IsForum    bool     `json:"is_forum,omitempty"`
	IsBotForum bool     `json:"is_bot_forum,omitempty"`
}
