package dispatch

import (
	"maps"

	"chatsync/internal/domain"
	"chatsync/internal/state"
)

// handleTypingDraft renders a peer's in-progress draft as an ephemeral
// local message. The correlation id keys the draft: repeated events with
// the same id edit one placeholder in place, and every event re-arms its
// expiry timer.
func (d *Dispatcher) handleTypingDraft(s *state.Snapshot, u TypingDraft) (*state.Snapshot, []Effect) {
	threadID := u.ThreadID
	if threadID == "" {
		threadID = domain.MainThreadID
	}

	now := d.now().Unix()
	content := domain.Content{Text: &domain.TextContent{Text: u.Text}}

	if ls := state.SelectThreadLocalState(s, u.ChatID, threadID); ls != nil {
		if msgID, ok := ls.TypingDrafts[u.RandomID]; ok {
			if state.SelectChatMessage(s, u.ChatID, msgID) != nil {
				s = state.PatchChatMessage(s, u.ChatID, msgID, domain.MessagePatch{
					Content:  &content,
					EditDate: &now,
				})
				d.scheduleDraftExpiry(u.ChatID, threadID, u.RandomID)
				return s, nil
			}
		}
	}

	msg := &domain.Message{
		ChatID:   u.ChatID,
		ID:       domain.NextLocalMessageID(),
		Content:  content,
		Date:     now,
		EditDate: now,
	}
	if topicID, ok := threadID.MessageID(); ok {
		chat := state.SelectChat(s, u.ChatID)
		msg.Reply = &domain.ReplyInfo{
			ReplyToTopID: topicID,
			IsForumTopic: chat != nil && chat.IsForum,
		}
	}

	s, effects := d.handleNewMessage(s, NewMessage{ChatID: u.ChatID, ID: msg.ID, Message: msg})

	s = state.EnsureThread(s, u.ChatID, threadID)
	drafts := map[string]int64{u.RandomID: msg.ID}
	if ls := state.SelectThreadLocalState(s, u.ChatID, threadID); ls != nil && ls.TypingDrafts != nil {
		drafts = maps.Clone(ls.TypingDrafts)
		drafts[u.RandomID] = msg.ID
	}
	s = state.ReplaceTypingDrafts(s, u.ChatID, threadID, drafts)

	d.scheduleDraftExpiry(u.ChatID, threadID, u.RandomID)
	return s, effects
}

// scheduleDraftExpiry arranges a draft placeholder to vanish once its TTL
// passes without another keystroke. The edit date is re-read at fire time,
// so a rewritten draft survives older timers.
func (d *Dispatcher) scheduleDraftExpiry(chatID string, threadID domain.ThreadID, randomID string) {
	ttl := d.cfg.TypingDraftTTL
	d.sched.Schedule(ttl, func() {
		d.store.Update(func(s *state.Snapshot) *state.Snapshot {
			ls := state.SelectThreadLocalState(s, chatID, threadID)
			if ls == nil {
				return s
			}
			msgID, ok := ls.TypingDrafts[randomID]
			if !ok {
				return s
			}
			msg := state.SelectChatMessage(s, chatID, msgID)
			if msg == nil || d.now().Unix()-msg.EditDate < int64(ttl.Seconds()) {
				return s
			}
			drafts := maps.Clone(ls.TypingDrafts)
			delete(drafts, randomID)
			s = state.ReplaceTypingDrafts(s, chatID, threadID, drafts)
			return state.DeleteChatMessages(s, chatID, []int64{msgID})
		})
	})
}
