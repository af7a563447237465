package domain

import (
	"strconv"
	"sync/atomic"
)

// ThreadID addresses a timeline within a chat: the main timeline, a forum
// topic (the decimal id of its root message), or a saved-dialog peer id.
type ThreadID string

// MainThreadID is the sentinel for a chat's main timeline.
const MainThreadID ThreadID = "main"

// GeneralTopicID is the root message id of a forum's General topic.
const GeneralTopicID int64 = 1

// TopicThreadID converts a topic or reply root message id into a thread id.
func TopicThreadID(id int64) ThreadID {
	return ThreadID(strconv.FormatInt(id, 10))
}

// PeerThreadID converts a saved-dialog peer id into a thread id.
func PeerThreadID(peerID string) ThreadID {
	return ThreadID(peerID)
}

// MessageID parses a thread id rooted at a message. Returns false for the
// main-thread sentinel and for saved-dialog peer threads.
func (t ThreadID) MessageID() (int64, bool) {
	if t == MainThreadID {
		return 0, false
	}
	id, err := strconv.ParseInt(string(t), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// LocalMessageMinID is the lower bound of the id range reserved for
// client-synthesized placeholder messages. It sits far above any id the
// server will ever assign, so placeholders order after confirmed messages
// and win the monotonic last-message comparison until renamed.
const LocalMessageMinID int64 = 1 << 52

var localMessageCounter atomic.Int64

// NextLocalMessageID allocates a placeholder message id.
func NextLocalMessageID() int64 {
	return LocalMessageMinID + localMessageCounter.Add(1)
}

// IsLocalMessageID reports whether id belongs to the placeholder range.
func IsLocalMessageID(id int64) bool {
	return id >= LocalMessageMinID
}
