package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatsync/internal/domain"
)

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }

func TestUpdateThreadInfoCreatesThread(t *testing.T) {
	s := NewSnapshot("viewer", Settings{})
	s = UpdateThreadInfo(s, ThreadInfoUpdate{
		ChatID:        "c1",
		ThreadID:      domain.TopicThreadID(7),
		LastMessageID: int64Ptr(40),
		MessagesCount: intPtr(12),
	})

	info := SelectThreadInfo(s, "c1", domain.TopicThreadID(7))
	require.NotNil(t, info)
	assert.Equal(t, int64(40), info.LastMessageID)
	assert.Equal(t, 12, info.MessagesCount)
}

func TestCommentsInfoTargetsOriginChannel(t *testing.T) {
	s := NewSnapshot("viewer", Settings{})
	s = UpdateThreadInfo(s, ThreadInfoUpdate{
		IsCommentsInfo:  true,
		OriginChannelID: "channel",
		OriginMessageID: 500,
		MessagesCount:   intPtr(3),
	})

	info := SelectThreadInfo(s, "channel", domain.TopicThreadID(500))
	require.NotNil(t, info)
	assert.Equal(t, 3, info.MessagesCount)
}

func TestLinkedThreadPropagation(t *testing.T) {
	s := NewSnapshot("viewer", Settings{})

	// Channel-side comment thread exists already.
	s = UpdateThreadInfo(s, ThreadInfoUpdate{
		ChatID:   "channel",
		ThreadID: domain.TopicThreadID(500),
	})

	// Discussion-side thread update carries its origin pointer.
	s = UpdateThreadInfo(s, ThreadInfoUpdate{
		ChatID:        "discussion",
		ThreadID:      domain.TopicThreadID(42),
		FromChannelID: "channel",
		FromMessageID: 500,
		LastMessageID: int64Ptr(60),
		MessagesCount: intPtr(9),
	})

	linked := SelectThreadInfo(s, "channel", domain.TopicThreadID(500))
	require.NotNil(t, linked)
	assert.Equal(t, int64(60), linked.LastMessageID)
	assert.Equal(t, 9, linked.MessagesCount)

	// Origin pointer itself never crosses over.
	assert.Empty(t, linked.FromChannelID)
}

func TestLinkedThreadPropagationSkipsUnknownTarget(t *testing.T) {
	s := NewSnapshot("viewer", Settings{})
	s = UpdateThreadInfo(s, ThreadInfoUpdate{
		ChatID:        "discussion",
		ThreadID:      domain.TopicThreadID(42),
		FromChannelID: "channel",
		FromMessageID: 500,
		MessagesCount: intPtr(9),
	})

	assert.Nil(t, SelectThreadInfo(s, "channel", domain.TopicThreadID(500)))
}

func TestUpdateThreadReadStateRequiresThread(t *testing.T) {
	s := NewSnapshot("viewer", Settings{})
	next := UpdateThreadReadState(s, "c1", domain.MainThreadID, domain.ReadStatePatch{
		UnreadCount: intPtr(4),
	})
	assert.Same(t, s, next)

	s = EnsureThread(s, "c1", domain.MainThreadID)
	s = UpdateThreadReadState(s, "c1", domain.MainThreadID, domain.ReadStatePatch{
		UnreadCount: intPtr(4),
	})
	rs := SelectThreadReadState(s, "c1", domain.MainThreadID)
	require.NotNil(t, rs)
	assert.Equal(t, 4, rs.UnreadCount)
}

func TestDeleteThreadDropsAllSubRecords(t *testing.T) {
	threadID := domain.TopicThreadID(7)
	s := NewSnapshot("viewer", Settings{})
	s = UpdateThreadInfo(s, ThreadInfoUpdate{ChatID: "c1", ThreadID: threadID, MessagesCount: intPtr(2)})
	s = AppendListedIDs(s, "c1", threadID, []int64{1, 2})
	s = UpdateThreadReadState(s, "c1", threadID, domain.ReadStatePatch{UnreadCount: intPtr(1)})

	s = DeleteThread(s, "c1", threadID)

	assert.Nil(t, SelectThread(s, "c1", threadID))
	assert.Nil(t, SelectThreadInfo(s, "c1", threadID))
	assert.Nil(t, SelectListedIDs(s, "c1", threadID))
}
