package events

import (
	"encoding/json"
	"fmt"

	"chatsync/internal/dispatch"
	chatsync_errors "chatsync/pkg/errors"
)

// Decode turns an envelope back into its typed update.
func Decode(env *Envelope) (dispatch.Update, error) {
	switch env.EventType {
	case dispatch.KindNewMessage:
		return decodeAs[dispatch.NewMessage](env)
	case dispatch.KindNewScheduledMessage:
		return decodeAs[dispatch.NewScheduledMessage](env)
	case dispatch.KindMessageUpdated:
		return decodeAs[dispatch.MessageUpdated](env)
	case dispatch.KindScheduledMessageUpdated:
		return decodeAs[dispatch.ScheduledMessageUpdated](env)
	case dispatch.KindMessageSendSucceeded:
		return decodeAs[dispatch.MessageSendSucceeded](env)
	case dispatch.KindScheduledMessageSendSucceeded:
		return decodeAs[dispatch.ScheduledMessageSendSucceeded](env)
	case dispatch.KindMessageSendFailed:
		return decodeAs[dispatch.MessageSendFailed](env)
	case dispatch.KindScheduledMessageSendFailed:
		return decodeAs[dispatch.ScheduledMessageSendFailed](env)
	case dispatch.KindMessagesDeleted:
		return decodeAs[dispatch.MessagesDeleted](env)
	case dispatch.KindScheduledMessagesDeleted:
		return decodeAs[dispatch.ScheduledMessagesDeleted](env)
	case dispatch.KindMessagesPatched:
		return decodeAs[dispatch.MessagesPatched](env)
	case dispatch.KindHistoryDeleted:
		return decodeAs[dispatch.HistoryDeleted](env)
	case dispatch.KindSavedHistoryDeleted:
		return decodeAs[dispatch.SavedHistoryDeleted](env)
	case dispatch.KindParticipantHistoryDeleted:
		return decodeAs[dispatch.ParticipantHistoryDeleted](env)
	case dispatch.KindMessageReactions:
		return decodeAs[dispatch.MessageReactions](env)
	case dispatch.KindReactionSendConfirmed:
		return decodeAs[dispatch.ReactionSendConfirmed](env)
	case dispatch.KindPinnedMessagesUpdated:
		return decodeAs[dispatch.PinnedMessagesUpdated](env)
	case dispatch.KindThreadInfo:
		return decodeAs[dispatch.ThreadInfo](env)
	case dispatch.KindThreadReadState:
		return decodeAs[dispatch.ThreadReadState](env)
	case dispatch.KindTopicUpdated:
		return decodeAs[dispatch.TopicUpdated](env)
	case dispatch.KindTopicsListed:
		return decodeAs[dispatch.TopicsListed](env)
	case dispatch.KindPinnedTopicsOrder:
		return decodeAs[dispatch.PinnedTopicsOrder](env)
	case dispatch.KindTypingDraft:
		return decodeAs[dispatch.TypingDraft](env)
	case dispatch.KindChatUpdated:
		return decodeAs[dispatch.ChatUpdated](env)
	}
	return nil, fmt.Errorf("%w: %s", chatsync_errors.ErrUnknownKind, env.EventType)
}

// decodeAs produces the update by value: the dispatch table matches on
// concrete value types.
func decodeAs[U dispatch.Update](env *Envelope) (dispatch.Update, error) {
	var u U
	if err := json.Unmarshal(env.Payload, &u); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", chatsync_errors.ErrMalformedPayload, env.EventType, err)
	}
	return u, nil
}
