package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatsync/internal/domain"
	"chatsync/internal/state"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }
func int64Ptr(v int64) *int64 { return &v }
func intPtr(v int) *int       { return &v }

func seedForum(d *Dispatcher, chatID string) {
	d.Apply(ChatUpdated{Chat: &domain.Chat{
		ID: chatID, Type: domain.ChatTypeSuperGroup, IsForum: true,
	}})
}

func TestTopicUpdatedForUnknownChatRequestsChat(t *testing.T) {
	d, _ := newTestDispatcher("viewer", state.Settings{})

	effects := d.Apply(TopicUpdated{ChatID: "ghost", TopicID: 7,
		Topic: domain.TopicPatch{ID: 7, Title: strPtr("x")}})

	assert.Contains(t, effects, RequestChatUpdate{ChatID: "ghost"})
	assert.Nil(t, state.SelectTopic(d.Store().Current(), "ghost", 7))
}

func TestTopicUpdatedUpsertsAndTracksThread(t *testing.T) {
	d, _ := newTestDispatcher("viewer", state.Settings{})
	seedForum(d, "forum")

	d.Apply(TopicUpdated{
		ChatID:        "forum",
		TopicID:       7,
		Topic:         domain.TopicPatch{ID: 7, Title: strPtr("Releases")},
		LastMessageID: int64Ptr(40),
	})

	s := d.Store().Current()
	topic := state.SelectTopic(s, "forum", 7)
	require.NotNil(t, topic)
	assert.Equal(t, "Releases", topic.Title)

	info := state.SelectThreadInfo(s, "forum", domain.TopicThreadID(7))
	require.NotNil(t, info)
	assert.Equal(t, int64(40), info.LastMessageID)

	ls := state.SelectThreadLocalState(s, "forum", domain.TopicThreadID(7))
	require.NotNil(t, ls)
	assert.Equal(t, int64(7), ls.FirstMessageID, "topic root message opens its thread")
}

func TestMinTopicUpdateKeepsRicherFields(t *testing.T) {
	d, _ := newTestDispatcher("viewer", state.Settings{})
	seedForum(d, "forum")

	d.Apply(TopicUpdated{ChatID: "forum", TopicID: 7, Topic: domain.TopicPatch{
		ID: 7, Title: strPtr("Releases"), IsHidden: boolPtr(true),
	}})
	d.Apply(TopicUpdated{ChatID: "forum", TopicID: 7, Topic: domain.TopicPatch{
		ID: 7, Title: strPtr("Releases v2"), IsHidden: boolPtr(false), IsMin: true,
	}})

	topic := state.SelectTopic(d.Store().Current(), "forum", 7)
	require.NotNil(t, topic)
	assert.Equal(t, "Releases v2", topic.Title)
	assert.True(t, topic.IsHidden)
}

func TestTopicsListedRegistersTopics(t *testing.T) {
	d, _ := newTestDispatcher("viewer", state.Settings{})
	seedForum(d, "forum")

	d.Apply(TopicsListed{
		ChatID: "forum",
		Topics: []domain.TopicPatch{
			{ID: 7, Title: strPtr("Releases")},
			{ID: 9, Title: strPtr("Support")},
		},
		TotalCount: intPtr(25),
	})

	s := d.Store().Current()
	info := state.SelectTopicsInfo(s, "forum")
	require.NotNil(t, info)
	assert.Equal(t, []int64{7, 9}, info.ListedTopicIDs)
	assert.Equal(t, 25, info.TotalCount)
}

func TestPinnedTopicsOrderReplacedWholesale(t *testing.T) {
	d, _ := newTestDispatcher("viewer", state.Settings{})
	seedForum(d, "forum")
	d.Apply(TopicsListed{ChatID: "forum", Topics: []domain.TopicPatch{
		{ID: 7, Title: strPtr("a")}, {ID: 9, Title: strPtr("b")},
	}})

	d.Apply(PinnedTopicsOrder{ChatID: "forum", TopicIDs: []int64{9, 7}})
	assert.Equal(t, []int64{9, 7},
		state.SelectTopicsInfo(d.Store().Current(), "forum").OrderedPinnedTopicIDs)

	d.Apply(PinnedTopicsOrder{ChatID: "forum", TopicIDs: nil})
	assert.Empty(t, state.SelectTopicsInfo(d.Store().Current(), "forum").OrderedPinnedTopicIDs)
}

func TestDeletingTopicRootDeletesTopic(t *testing.T) {
	d, manual := newTestDispatcher("viewer", state.Settings{})
	seedForum(d, "forum")

	d.Apply(TopicUpdated{ChatID: "forum", TopicID: 7,
		Topic: domain.TopicPatch{ID: 7, Title: strPtr("Releases")}})

	root := newTextMessage("forum", 7, "topic opened")
	root.Content = domain.Content{Action: &domain.ActionContent{
		Type: domain.ActionTopicCreate, Title: "Releases",
	}}
	d.Apply(NewMessage{ChatID: "forum", ID: 7, Message: root})

	d.Apply(MessagesDeleted{ChatID: "forum", IDs: []int64{7}})
	manual.Advance(AnimationDelay)

	s := d.Store().Current()
	assert.Nil(t, state.SelectTopic(s, "forum", 7))
	assert.Nil(t, state.SelectChatMessage(s, "forum", 7))
}

func TestPinnedMessagesUpdated(t *testing.T) {
	d, _ := newTestDispatcher("viewer", state.Settings{})
	seedPrivateChat(d, "c1")
	d.Apply(NewMessage{ChatID: "c1", ID: 10, Message: newTextMessage("c1", 10, "a")})
	d.Apply(NewMessage{ChatID: "c1", ID: 12, Message: newTextMessage("c1", 12, "b")})

	d.Apply(PinnedMessagesUpdated{ChatID: "c1", IsPinned: true, IDs: []int64{10}})
	d.Apply(PinnedMessagesUpdated{ChatID: "c1", IsPinned: true, IDs: []int64{12}})
	assert.Equal(t, []int64{12, 10},
		state.SelectPinnedIDs(d.Store().Current(), "c1", domain.MainThreadID))

	d.Apply(PinnedMessagesUpdated{ChatID: "c1", IsPinned: false, IDs: []int64{12}})
	assert.Equal(t, []int64{10},
		state.SelectPinnedIDs(d.Store().Current(), "c1", domain.MainThreadID))
}
