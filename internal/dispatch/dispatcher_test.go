package dispatch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatsync/internal/domain"
	"chatsync/internal/sched"
	"chatsync/internal/state"
	"chatsync/internal/store"
	"chatsync/pkg/logger"
)

func newTestDispatcher(userID string, settings state.Settings) (*Dispatcher, *sched.Manual) {
	st := store.New(state.NewSnapshot(userID, settings))
	manual := sched.NewManual()
	return New(st, manual, logger.NewNop(), Config{}), manual
}

func seedPrivateChat(d *Dispatcher, chatID string) {
	d.Apply(ChatUpdated{Chat: &domain.Chat{ID: chatID, Type: domain.ChatTypePrivate}})
}

func newTextMessage(chatID string, id int64, text string) *domain.Message {
	return &domain.Message{
		ChatID:  chatID,
		ID:      id,
		Content: domain.Content{Text: &domain.TextContent{Text: text}},
		Date:    1700000000 + id,
	}
}

func TestNewMessageIndexesMainThread(t *testing.T) {
	d, _ := newTestDispatcher("viewer", state.Settings{})
	seedPrivateChat(d, "c1")

	d.Apply(NewMessage{ChatID: "c1", ID: 10, Message: newTextMessage("c1", 10, "hi")})

	s := d.Store().Current()
	require.NotNil(t, state.SelectChatMessage(s, "c1", 10))
	assert.Equal(t, []int64{10}, state.SelectListedIDs(s, "c1", domain.MainThreadID))
	assert.Equal(t, int64(10), state.SelectChatLastMessageID(s, "c1"))
}

func TestNewMessageSkipsMainIndexWithUnreadBacklog(t *testing.T) {
	d, _ := newTestDispatcher("viewer", state.Settings{})
	seedPrivateChat(d, "c1")

	unread := 5
	d.Apply(ThreadReadState{ChatID: "c1", ThreadID: domain.MainThreadID,
		ReadState: domain.ReadStatePatch{UnreadCount: &unread}})

	d.Apply(NewMessage{ChatID: "c1", ID: 10, Message: newTextMessage("c1", 10, "hi")})

	s := d.Store().Current()
	require.NotNil(t, state.SelectChatMessage(s, "c1", 10))
	assert.Nil(t, state.SelectListedIDs(s, "c1", domain.MainThreadID),
		"a partially loaded history must not claim completeness")
	assert.Equal(t, int64(10), state.SelectChatLastMessageID(s, "c1"))
}

func TestSendSucceededRenamesPlaceholderAtomically(t *testing.T) {
	d, _ := newTestDispatcher("viewer", state.Settings{})
	seedPrivateChat(d, "c1")

	localID := domain.NextLocalMessageID()
	local := newTextMessage("c1", localID, "draft")
	local.IsOutgoing = true
	local.SendingState = domain.SendingStatePending
	d.Apply(NewMessage{ChatID: "c1", ID: localID, Message: local, WasDrafted: true})

	assert.Equal(t, localID, state.SelectChatLastMessageID(d.Store().Current(), "c1"))

	server := newTextMessage("c1", 100, "draft")
	server.IsOutgoing = true
	server.SendingState = domain.SendingStateSucceeded
	d.Apply(MessageSendSucceeded{ChatID: "c1", LocalID: localID, Message: server})

	s := d.Store().Current()
	assert.Nil(t, state.SelectChatMessage(s, "c1", localID), "placeholder gone in the same snapshot")

	confirmed := state.SelectChatMessage(s, "c1", 100)
	require.NotNil(t, confirmed)
	assert.Equal(t, localID, confirmed.PreviousLocalID)
	assert.False(t, confirmed.IsDeleting)

	assert.Equal(t, []int64{100}, state.SelectListedIDs(s, "c1", domain.MainThreadID))
	assert.Equal(t, int64(100), state.SelectChatLastMessageID(s, "c1"),
		"confirmed counterpart of the current placeholder wins the last-message race")
}

func TestSendSucceededPreservesLocalMedia(t *testing.T) {
	d, _ := newTestDispatcher("viewer", state.Settings{})
	seedPrivateChat(d, "c1")

	localID := domain.NextLocalMessageID()
	local := &domain.Message{
		ChatID: "c1", ID: localID,
		Content: domain.Content{Photo: &domain.PhotoContent{ID: "p1", BlobURL: "blob:abc"}},
	}
	d.Apply(NewMessage{ChatID: "c1", ID: localID, Message: local})

	server := &domain.Message{
		ChatID: "c1", ID: 100,
		Content: domain.Content{Photo: &domain.PhotoContent{ID: "p1"}},
	}
	d.Apply(MessageSendSucceeded{ChatID: "c1", LocalID: localID, Message: server})

	confirmed := state.SelectChatMessage(d.Store().Current(), "c1", 100)
	require.NotNil(t, confirmed)
	assert.Equal(t, "blob:abc", confirmed.Content.Photo.BlobURL)
}

func TestLastMessageMonotonic(t *testing.T) {
	d, _ := newTestDispatcher("viewer", state.Settings{})
	seedPrivateChat(d, "c1")

	d.Apply(NewMessage{ChatID: "c1", ID: 5, Message: newTextMessage("c1", 5, "a")})
	assert.Equal(t, int64(5), state.SelectChatLastMessageID(d.Store().Current(), "c1"))

	// An older message arriving late never moves the pointer back.
	d.Apply(NewMessage{ChatID: "c1", ID: 3, Message: newTextMessage("c1", 3, "old")})
	assert.Equal(t, int64(5), state.SelectChatLastMessageID(d.Store().Current(), "c1"))

	d.Apply(NewMessage{ChatID: "c1", ID: 7, Message: newTextMessage("c1", 7, "new")})
	assert.Equal(t, int64(7), state.SelectChatLastMessageID(d.Store().Current(), "c1"))
}

func TestTwoPhaseDelete(t *testing.T) {
	d, manual := newTestDispatcher("viewer", state.Settings{})
	seedPrivateChat(d, "c1")
	d.Apply(NewMessage{ChatID: "c1", ID: 10, Message: newTextMessage("c1", 10, "a")})
	d.Apply(NewMessage{ChatID: "c1", ID: 11, Message: newTextMessage("c1", 11, "b")})

	effects := d.Apply(MessagesDeleted{ChatID: "c1", IDs: []int64{11}})
	assert.Contains(t, effects, RequestChatUpdate{ChatID: "c1"})

	s := d.Store().Current()
	flagged := state.SelectChatMessage(s, "c1", 11)
	require.NotNil(t, flagged, "phase one keeps the message in the table")
	assert.True(t, flagged.IsDeleting)

	manual.Advance(AnimationDelay)

	assert.Nil(t, state.SelectChatMessage(d.Store().Current(), "c1", 11))
	assert.NotNil(t, state.SelectChatMessage(d.Store().Current(), "c1", 10))
}

func TestDeleteRepairsLastMessagePointer(t *testing.T) {
	d, manual := newTestDispatcher("viewer", state.Settings{})
	seedPrivateChat(d, "c1")
	last := int64(11)
	d.Apply(ThreadInfo{Info: state.ThreadInfoUpdate{
		ChatID: "c1", ThreadID: domain.MainThreadID, LastMessageID: &last,
	}})
	d.Apply(NewMessage{ChatID: "c1", ID: 10, Message: newTextMessage("c1", 10, "a")})
	d.Apply(NewMessage{ChatID: "c1", ID: 11, Message: newTextMessage("c1", 11, "b")})

	d.Apply(MessagesDeleted{ChatID: "c1", IDs: []int64{11}})

	s := d.Store().Current()
	assert.Equal(t, int64(10), state.SelectChatLastMessageID(s, "c1"),
		"pointer repaired already in phase one")
	info := state.SelectThreadInfo(s, "c1", domain.MainThreadID)
	require.NotNil(t, info)
	assert.Equal(t, int64(10), info.LastMessageID)

	manual.Advance(AnimationDelay)
	assert.Nil(t, state.SelectChatMessage(d.Store().Current(), "c1", 11))
}

func TestPurgeRevalidatesAtFireTime(t *testing.T) {
	d, manual := newTestDispatcher("viewer", state.Settings{})
	seedPrivateChat(d, "c1")
	d.Apply(NewMessage{ChatID: "c1", ID: 10, Message: newTextMessage("c1", 10, "a")})
	d.Apply(NewMessage{ChatID: "c1", ID: 11, Message: newTextMessage("c1", 11, "b")})

	d.Apply(MessagesDeleted{ChatID: "c1", IDs: []int64{10, 11}})

	// The delete of 11 is cancelled before the purge fires.
	notDeleting := false
	d.Apply(MessagesPatched{ChatID: "c1", IDs: []int64{11},
		Patch: domain.MessagePatch{IsDeleting: &notDeleting}})

	manual.Advance(AnimationDelay)

	s := d.Store().Current()
	assert.Nil(t, state.SelectChatMessage(s, "c1", 10))
	assert.NotNil(t, state.SelectChatMessage(s, "c1", 11), "unflagged message survives the purge")
}

func TestSnapEffectUsesLongerDelay(t *testing.T) {
	d, manual := newTestDispatcher("viewer", state.Settings{CanAnimateSnapEffect: true})
	seedPrivateChat(d, "c1")
	d.Apply(NewMessage{ChatID: "c1", ID: 10, Message: newTextMessage("c1", 10, "a")})

	d.Apply(MessagesDeleted{ChatID: "c1", IDs: []int64{10}})

	manual.Advance(AnimationDelay)
	assert.NotNil(t, state.SelectChatMessage(d.Store().Current(), "c1", 10))

	manual.Advance(SnapAnimationDelay - AnimationDelay)
	assert.Nil(t, state.SelectChatMessage(d.Store().Current(), "c1", 10))
}

func TestHistoryDeletedDropsThreads(t *testing.T) {
	d, manual := newTestDispatcher("viewer", state.Settings{})
	seedPrivateChat(d, "c1")
	d.Apply(NewMessage{ChatID: "c1", ID: 10, Message: newTextMessage("c1", 10, "a")})
	d.Apply(NewMessage{ChatID: "c1", ID: 11, Message: newTextMessage("c1", 11, "b")})

	d.Apply(HistoryDeleted{ChatID: "c1"})
	manual.Advance(AnimationDelay)

	s := d.Store().Current()
	assert.Empty(t, state.SelectChatMessages(s, "c1"))
	assert.Nil(t, state.SelectThread(s, "c1", domain.MainThreadID))
}

func TestReactionReconcileIsIdempotent(t *testing.T) {
	d, _ := newTestDispatcher("viewer", state.Settings{})
	seedPrivateChat(d, "c1")
	d.Apply(NewMessage{ChatID: "c1", ID: 10, Message: newTextMessage("c1", 10, "a")})

	reactions := func() *domain.Reactions {
		return &domain.Reactions{Results: []domain.ReactionCount{
			{Reaction: domain.Reaction{Type: domain.ReactionTypeEmoji, Emoticon: "🔥"}, Count: 2},
		}}
	}

	d.Apply(MessageReactions{ChatID: "c1", ID: 10, Reactions: reactions()})
	before := d.Store().Current()

	d.Apply(MessageReactions{ChatID: "c1", ID: 10, Reactions: reactions()})
	assert.Same(t, before, d.Store().Current(), "identical aggregate commits nothing")
}

func TestLocalPaidReactionWinsOverStaleSnapshot(t *testing.T) {
	d, _ := newTestDispatcher("viewer", state.Settings{})
	seedPrivateChat(d, "c1")

	msg := newTextMessage("c1", 10, "a")
	msg.Reactions = &domain.Reactions{Results: []domain.ReactionCount{
		{Reaction: domain.Reaction{Type: domain.ReactionTypePaid}, Count: 1, LocalAmount: 50},
	}}
	d.Apply(NewMessage{ChatID: "c1", ID: 10, Message: msg})

	stale := &domain.Reactions{Results: []domain.ReactionCount{
		{Reaction: domain.Reaction{Type: domain.ReactionTypePaid}, Count: 1},
	}}
	d.Apply(MessageReactions{ChatID: "c1", ID: 10, Reactions: stale})

	current := state.SelectChatMessage(d.Store().Current(), "c1", 10)
	require.NotNil(t, current.Reactions)
	assert.Equal(t, int64(50), current.Reactions.Results[0].LocalAmount,
		"passive reconciliation keeps the optimistic paid reaction")

	confirmed := &domain.Reactions{Results: []domain.ReactionCount{
		{Reaction: domain.Reaction{Type: domain.ReactionTypePaid}, Count: 2},
	}}
	d.Apply(ReactionSendConfirmed{ChatID: "c1", ID: 10, Reactions: confirmed})

	current = state.SelectChatMessage(d.Store().Current(), "c1", 10)
	assert.Zero(t, current.Reactions.Results[0].LocalAmount,
		"only the explicit confirmation resets local paid state")
}

func TestReactionUnreadTransitions(t *testing.T) {
	d, _ := newTestDispatcher("viewer", state.Settings{})
	seedPrivateChat(d, "c1")
	own := newTextMessage("c1", 10, "a")
	own.IsOutgoing = true
	d.Apply(NewMessage{ChatID: "c1", ID: 10, Message: own})

	zero := 0
	d.Apply(ThreadReadState{ChatID: "c1", ThreadID: domain.MainThreadID,
		ReadState: domain.ReadStatePatch{UnreadReactionsCount: &zero}})

	withUnread := &domain.Reactions{RecentReactions: []domain.RecentReaction{
		{PeerID: "other", Reaction: domain.Reaction{Type: domain.ReactionTypeEmoji, Emoticon: "🔥"}, IsUnread: true},
	}}
	effects := d.Apply(MessageReactions{ChatID: "c1", ID: 10, Reactions: withUnread})
	assert.Contains(t, effects, NotifyReaction{ChatID: "c1", MessageID: 10})

	rs := state.SelectThreadReadState(d.Store().Current(), "c1", domain.MainThreadID)
	require.NotNil(t, rs)
	assert.Equal(t, 1, rs.UnreadReactionsCount)
	assert.Equal(t, []int64{10}, rs.UnreadReactions)

	read := &domain.Reactions{RecentReactions: []domain.RecentReaction{
		{PeerID: "other", Reaction: domain.Reaction{Type: domain.ReactionTypeEmoji, Emoticon: "🔥"}},
	}}
	d.Apply(MessageReactions{ChatID: "c1", ID: 10, Reactions: read})

	rs = state.SelectThreadReadState(d.Store().Current(), "c1", domain.MainThreadID)
	assert.Zero(t, rs.UnreadReactionsCount)
	assert.Empty(t, rs.UnreadReactions)
}

func TestReactionUnreadIgnoresIncomingMessages(t *testing.T) {
	d, _ := newTestDispatcher("viewer", state.Settings{})
	seedPrivateChat(d, "c1")
	d.Apply(NewMessage{ChatID: "c1", ID: 10, Message: newTextMessage("c1", 10, "a")})

	zero := 0
	d.Apply(ThreadReadState{ChatID: "c1", ThreadID: domain.MainThreadID,
		ReadState: domain.ReadStatePatch{UnreadReactionsCount: &zero}})

	withUnread := &domain.Reactions{RecentReactions: []domain.RecentReaction{
		{PeerID: "other", Reaction: domain.Reaction{Type: domain.ReactionTypeEmoji, Emoticon: "🔥"}, IsUnread: true},
	}}
	effects := d.Apply(MessageReactions{ChatID: "c1", ID: 10, Reactions: withUnread})
	assert.NotContains(t, effects, NotifyReaction{ChatID: "c1", MessageID: 10})

	current := state.SelectChatMessage(d.Store().Current(), "c1", 10)
	assert.Same(t, withUnread, current.Reactions, "the aggregate itself still lands")

	rs := state.SelectThreadReadState(d.Store().Current(), "c1", domain.MainThreadID)
	require.NotNil(t, rs)
	assert.Zero(t, rs.UnreadReactionsCount,
		"reactions to someone else's message never become unread")
	assert.Empty(t, rs.UnreadReactions)
}

func TestReactionForUnknownMessageMovesCounterOnly(t *testing.T) {
	d, _ := newTestDispatcher("viewer", state.Settings{})
	seedPrivateChat(d, "c1")

	zero := 0
	d.Apply(ThreadReadState{ChatID: "c1", ThreadID: domain.MainThreadID,
		ReadState: domain.ReadStatePatch{UnreadReactionsCount: &zero}})

	withUnread := &domain.Reactions{RecentReactions: []domain.RecentReaction{
		{PeerID: "other", Reaction: domain.Reaction{Type: domain.ReactionTypeEmoji, Emoticon: "🔥"}, IsUnread: true},
	}}
	effects := d.Apply(MessageReactions{ChatID: "c1", ID: 999, Reactions: withUnread})
	assert.Empty(t, effects)

	rs := state.SelectThreadReadState(d.Store().Current(), "c1", domain.MainThreadID)
	require.NotNil(t, rs)
	assert.Equal(t, 1, rs.UnreadReactionsCount)
	assert.Equal(t, []int64{999}, rs.UnreadReactions)

	read := &domain.Reactions{RecentReactions: []domain.RecentReaction{
		{PeerID: "other", Reaction: domain.Reaction{Type: domain.ReactionTypeEmoji, Emoticon: "🔥"}},
	}}
	effects = d.Apply(MessageReactions{ChatID: "c1", ID: 998, Reactions: read})
	assert.Contains(t, effects, ReloadUnreadReactions{ChatID: "c1"},
		"a read aggregate for an unheld message asks for a recount")
}

func TestTypingDraftLifecycle(t *testing.T) {
	d, manual := newTestDispatcher("viewer", state.Settings{})
	seedPrivateChat(d, "c1")

	base := time.Unix(1700000000, 0)
	d.now = func() time.Time { return base }

	d.Apply(TypingDraft{ChatID: "c1", RandomID: "r1", Text: "hel"})

	s := d.Store().Current()
	listed := state.SelectListedIDs(s, "c1", domain.MainThreadID)
	require.Len(t, listed, 1)
	draftID := listed[0]
	assert.True(t, domain.IsLocalMessageID(draftID))

	// Same correlation id edits the existing placeholder.
	d.Apply(TypingDraft{ChatID: "c1", RandomID: "r1", Text: "hello"})

	s = d.Store().Current()
	assert.Len(t, state.SelectListedIDs(s, "c1", domain.MainThreadID), 1)
	assert.Equal(t, "hello", state.SelectChatMessage(s, "c1", draftID).Content.Text.Text)

	// Untouched past the TTL, the placeholder vanishes.
	d.now = func() time.Time { return base.Add(DefaultTypingDraftTTL) }
	manual.Advance(DefaultTypingDraftTTL)

	s = d.Store().Current()
	assert.Nil(t, state.SelectChatMessage(s, "c1", draftID))
	ls := state.SelectThreadLocalState(s, "c1", domain.MainThreadID)
	require.NotNil(t, ls)
	assert.Empty(t, ls.TypingDrafts)
}

func TestBotForumMessageSupersedesTypingDrafts(t *testing.T) {
	d, _ := newTestDispatcher("viewer", state.Settings{})
	d.Apply(ChatUpdated{Chat: &domain.Chat{ID: "bot", Type: domain.ChatTypePrivate, IsBotForum: true}})

	d.Apply(TypingDraft{ChatID: "bot", RandomID: "r1", Text: "typing..."})
	require.Len(t, state.SelectListedIDs(d.Store().Current(), "bot", domain.MainThreadID), 1)

	d.Apply(NewMessage{ChatID: "bot", ID: 50, Message: newTextMessage("bot", 50, "real answer")})

	s := d.Store().Current()
	assert.Equal(t, []int64{50}, state.SelectListedIDs(s, "bot", domain.MainThreadID))
	ls := state.SelectThreadLocalState(s, "bot", domain.MainThreadID)
	require.NotNil(t, ls)
	assert.Empty(t, ls.TypingDrafts)
}

type bogusUpdate struct{}

func (bogusUpdate) Kind() Kind { return "bogus.kind" }

func TestUnknownKindIsSkipped(t *testing.T) {
	d, _ := newTestDispatcher("viewer", state.Settings{})
	before := d.Store().Current()

	effects := d.Apply(bogusUpdate{})
	assert.Nil(t, effects)
	assert.Same(t, before, d.Store().Current())
}
