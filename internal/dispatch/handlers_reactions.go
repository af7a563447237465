package dispatch

import (
	"reflect"

	"chatsync/internal/domain"
	"chatsync/internal/state"
)

func (d *Dispatcher) handleMessageReactions(s *state.Snapshot, u MessageReactions) (*state.Snapshot, []Effect) {
	return d.applyReactions(s, u.ChatID, u.ID, u.ThreadID, u.Reactions, true)
}

func (d *Dispatcher) handleReactionSendConfirmed(s *state.Snapshot, u ReactionSendConfirmed) (*state.Snapshot, []Effect) {
	// Explicit confirmation of the viewer's own request: the server
	// aggregate is authoritative, including any local paid-reaction state.
	return d.applyReactions(s, u.ChatID, u.ID, "", u.Reactions, false)
}

// reconcileReactions is the passive path used when reactions arrive
// embedded in a message update.
func (d *Dispatcher) reconcileReactions(s *state.Snapshot, chatID string, id int64, threadID domain.ThreadID, incoming *domain.Reactions) (*state.Snapshot, []Effect) {
	return d.applyReactions(s, chatID, id, threadID, incoming, true)
}

func (d *Dispatcher) applyReactions(s *state.Snapshot, chatID string, id int64, threadID domain.ThreadID, incoming *domain.Reactions, reinject bool) (*state.Snapshot, []Effect) {
	if incoming == nil {
		return s, nil
	}

	current := state.SelectChatMessage(s, chatID, id)
	if current == nil {
		// The message is outside the local window but its unread marker
		// still counts against the thread.
		if state.HasUnreadReactions(s, incoming) {
			return state.AddUnreadReactions(s, chatID, []int64{id}, nil), nil
		}
		return s, []Effect{ReloadUnreadReactions{ChatID: chatID, ThreadID: threadID}}
	}

	merged := incoming
	if reinject {
		// A pending paid reaction lives only on the client; a server
		// snapshot that predates its confirmation must not wipe it.
		merged = state.ReinjectLocalPaidReaction(current.Reactions, incoming)
	}

	if reflect.DeepEqual(current.Reactions, merged) {
		return s, nil
	}

	s = state.PatchChatMessage(s, chatID, id, domain.MessagePatch{Reactions: merged})

	// Unread markers track reactions to the viewer's outgoing messages only.
	if !current.IsOutgoing {
		return s, nil
	}

	hadUnread := state.HasUnreadReactions(s, current.Reactions)
	hasUnread := state.HasUnreadReactions(s, merged)
	if hadUnread == hasUnread {
		return s, nil
	}

	if threadID == "" {
		if msg := state.SelectChatMessage(s, chatID, id); msg != nil {
			threadID = state.SelectThreadIDFromMessage(s, msg)
		} else {
			threadID = domain.MainThreadID
		}
	}

	var effects []Effect
	if state.SelectThreadReadState(s, chatID, threadID) == nil {
		// No baseline to move by a delta; ask for a recount instead.
		effects = append(effects, ReloadUnreadReactions{ChatID: chatID, ThreadID: threadID})
	}

	if hasUnread {
		s = state.AddUnreadReactions(s, chatID, []int64{id}, nil)
		effects = append(effects, NotifyReaction{ChatID: chatID, MessageID: id})
	} else {
		s = state.RemoveUnreadReactions(s, chatID, []int64{id})
	}
	return s, effects
}
