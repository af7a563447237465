package dispatch

import (
	"chatsync/internal/domain"
	"chatsync/internal/state"
)

func (d *Dispatcher) handleNewMessage(s *state.Snapshot, u NewMessage) (*state.Snapshot, []Effect) {
	if u.Message == nil {
		return s, nil
	}
	msg := normalizeMessage(u.Message, u.ChatID, u.ID)

	s = upsertWithLocalMedia(s, msg, true, false)
	newMsg := state.SelectChatMessage(s, msg.ChatID, msg.ID)

	var effects []Effect
	chat := state.SelectChat(s, msg.ChatID)
	if chat != nil && chat.IsForum && msg.Reply != nil && msg.Reply.IsForumTopic &&
		msg.Reply.ReplyToMsgID != 0 && state.SelectTopicFromMessage(s, newMsg) == nil {
		effects = append(effects, LoadTopic{ChatID: msg.ChatID, TopicID: msg.Reply.ReplyToMsgID})
	}

	s = d.applyListedAndThreadCounters(s, newMsg)

	// Force the last-message pointer for drafted local messages to prevent
	// flickering while the optimistic send settles.
	force := newMsg.IsLocal() && u.WasDrafted
	s = d.updateChatLastMessage(s, msg.ChatID, newMsg, force)

	// A real incoming message in a bot forum supersedes any typing-draft
	// placeholders still rendered in its thread.
	if chat != nil && chat.IsBotForum && !newMsg.IsOutgoing && !newMsg.IsLocal() {
		threadID := state.SelectThreadIDFromMessage(s, newMsg)
		if ls := state.SelectThreadLocalState(s, msg.ChatID, threadID); ls != nil && len(ls.TypingDrafts) > 0 {
			draftIDs := make([]int64, 0, len(ls.TypingDrafts))
			for _, id := range ls.TypingDrafts {
				draftIDs = append(draftIDs, id)
			}
			s = state.DeleteChatMessages(s, msg.ChatID, draftIDs)
			s = state.ReplaceTypingDrafts(s, msg.ChatID, threadID, nil)
		}
	}

	return s, effects
}

func (d *Dispatcher) handleMessageUpdated(s *state.Snapshot, u MessageUpdated) (*state.Snapshot, []Effect) {
	if u.Message == nil {
		return s, nil
	}
	current := state.SelectChatMessage(s, u.ChatID, u.ID)

	var effects []Effect
	if u.Message.Reactions != nil {
		var fx []Effect
		s, fx = d.reconcileReactions(s, u.ChatID, u.ID, "", u.Message.Reactions)
		effects = append(effects, fx...)
	}

	if current == nil {
		if u.IsFull {
			next, fx := d.handleNewMessage(s, NewMessage{ChatID: u.ChatID, ID: u.ID, Message: u.Message})
			return next, append(effects, fx...)
		}
		return s, effects
	}

	msg := normalizeMessage(u.Message, u.ChatID, u.ID)
	return upsertWithLocalMedia(s, msg, false, false), effects
}

func (d *Dispatcher) handleMessageSendSucceeded(s *state.Snapshot, u MessageSendSucceeded) (*state.Snapshot, []Effect) {
	if u.Message == nil {
		return s, nil
	}
	msg := normalizeMessage(u.Message, u.ChatID, u.Message.ID)

	s = d.applyListedAndThreadCounters(s, msg)

	current := state.SelectChatMessage(s, u.ChatID, u.LocalID)

	// Rename, not insert-then-delete: the placeholder leaves the table in
	// the same transaction the confirmed message lands, and locally known
	// content the response omits survives the merge.
	s = state.DeleteChatMessages(s, u.ChatID, []int64{u.LocalID})
	if msg.IsScheduled {
		// Edge case for "Send When Online".
		s = state.DeleteScheduledMessages(s, u.ChatID, []int64{u.LocalID})
	}

	merged := mergeConfirmed(current, msg)
	merged.PreviousLocalID = u.LocalID
	merged.IsDeleting = false
	s = state.PutChatMessage(s, merged)

	s = d.updateChatLastMessage(s, u.ChatID, merged, false)

	// Outgoing thread messages are read by definition; move the thread's
	// inbox watermark and last-message pointer along.
	if thread := state.SelectThreadByMessage(s, merged); thread != nil && thread.Info != nil {
		threadID := thread.Info.ThreadID
		inboxID := merged.ID
		s = state.UpdateThreadReadState(s, u.ChatID, threadID, domain.ReadStatePatch{
			LastReadInboxMessageID: &inboxID,
		})
		s = state.UpdateThreadInfoLastMessageID(s, u.ChatID, threadID, merged.ID)
	}

	return s, nil
}

func (d *Dispatcher) handleMessageSendFailed(s *state.Snapshot, u MessageSendFailed) (*state.Snapshot, []Effect) {
	failed := domain.SendingStateFailed
	return state.PatchChatMessage(s, u.ChatID, u.LocalID, domain.MessagePatch{SendingState: &failed}), nil
}

func (d *Dispatcher) handleNewScheduledMessage(s *state.Snapshot, u NewScheduledMessage) (*state.Snapshot, []Effect) {
	if u.Message == nil {
		return s, nil
	}
	msg := normalizeMessage(u.Message, u.ChatID, u.ID)
	msg.IsScheduled = true

	s = upsertWithLocalMedia(s, msg, true, true)
	s = appendScheduledID(s, msg, msg.ID)
	return s, nil
}

func (d *Dispatcher) handleScheduledMessageUpdated(s *state.Snapshot, u ScheduledMessageUpdated) (*state.Snapshot, []Effect) {
	if u.Message == nil {
		return s, nil
	}
	current := state.SelectScheduledMessage(s, u.ChatID, u.ID)
	if current == nil {
		if u.IsFromNew {
			return d.handleNewScheduledMessage(s, NewScheduledMessage{ChatID: u.ChatID, ID: u.ID, Message: u.Message})
		}
		return s, nil
	}

	msg := normalizeMessage(u.Message, u.ChatID, u.ID)
	msg.IsScheduled = true
	s = upsertWithLocalMedia(s, msg, false, true)
	return appendScheduledID(s, current, u.ID), nil
}

func (d *Dispatcher) handleScheduledMessageSendSucceeded(s *state.Snapshot, u ScheduledMessageSendSucceeded) (*state.Snapshot, []Effect) {
	if u.Message == nil {
		return s, nil
	}
	msg := normalizeMessage(u.Message, u.ChatID, u.Message.ID)
	msg.IsScheduled = true

	s = appendScheduledID(s, msg, msg.ID)

	current := state.SelectScheduledMessage(s, u.ChatID, u.LocalID)
	s = state.DeleteScheduledMessages(s, u.ChatID, []int64{u.LocalID})

	merged := mergeConfirmed(current, msg)
	merged.PreviousLocalID = u.LocalID
	merged.IsDeleting = false
	return state.PutScheduledMessage(s, merged), nil
}

func (d *Dispatcher) handleScheduledMessageSendFailed(s *state.Snapshot, u ScheduledMessageSendFailed) (*state.Snapshot, []Effect) {
	failed := domain.SendingStateFailed
	return state.PatchScheduledMessage(s, u.ChatID, u.LocalID, domain.MessagePatch{SendingState: &failed}), nil
}

func (d *Dispatcher) handleMessagesPatched(s *state.Snapshot, u MessagesPatched) (*state.Snapshot, []Effect) {
	for _, id := range u.IDs {
		s = state.PatchChatMessage(s, u.ChatID, id, u.Patch)
	}
	return s, nil
}

func (d *Dispatcher) handleChatUpdated(s *state.Snapshot, u ChatUpdated) (*state.Snapshot, []Effect) {
	if u.Chat == nil {
		return s, nil
	}
	return state.UpdateChat(s, u.Chat), nil
}

// normalizeMessage stamps identity fields the envelope may carry outside
// the message body.
func normalizeMessage(msg *domain.Message, chatID string, id int64) *domain.Message {
	next := *msg
	if chatID != "" {
		next.ChatID = chatID
	}
	if id != 0 {
		next.ID = id
	}
	return &next
}

// upsertWithLocalMedia stores a message, preserving locally uploaded media
// the server response does not know about (blob URLs, preview thumbnails).
// When isNew is false and the target is unknown, nothing happens.
func upsertWithLocalMedia(s *state.Snapshot, msg *domain.Message, isNew, isScheduled bool) *state.Snapshot {
	var current *domain.Message
	if isScheduled {
		current = state.SelectScheduledMessage(s, msg.ChatID, msg.ID)
	} else {
		current = state.SelectChatMessage(s, msg.ChatID, msg.ID)
	}
	if current == nil && !isNew {
		return s
	}

	merged := mergeConfirmed(current, msg)
	if isScheduled {
		return state.PutScheduledMessage(s, merged)
	}
	return state.PutChatMessage(s, merged)
}

// mergeConfirmed overlays a server message onto the locally known one,
// backfilling content only the client has.
func mergeConfirmed(current, incoming *domain.Message) *domain.Message {
	merged := *incoming
	if current == nil {
		return &merged
	}

	content := merged.Content
	if cur, inc := current.Content.Photo, content.Photo; cur != nil && inc != nil {
		photo := *inc
		if photo.BlobURL == "" {
			photo.BlobURL = cur.BlobURL
		}
		if photo.Thumbnail == "" {
			photo.Thumbnail = cur.Thumbnail
		}
		content.Photo = &photo
	} else if cur, inc := current.Content.Video, content.Video; cur != nil && inc != nil {
		video := *inc
		if video.BlobURL == "" {
			video.BlobURL = cur.BlobURL
		}
		content.Video = &video
	} else if cur, inc := current.Content.Sticker, content.Sticker; cur != nil && inc != nil {
		sticker := *inc
		if !sticker.IsPreloadedGlobally {
			sticker.IsPreloadedGlobally = cur.IsPreloadedGlobally
		}
		content.Sticker = &sticker
	} else if cur, inc := current.Content.Document, content.Document; cur != nil && inc != nil {
		document := *inc
		if document.PreviewBlobURL == "" {
			document.PreviewBlobURL = cur.PreviewBlobURL
		}
		content.Document = &document
	}
	merged.Content = content

	if merged.Reactions == nil {
		merged.Reactions = current.Reactions
	}
	return &merged
}

// applyListedAndThreadCounters indexes a message into its thread's listed
// set and, separately, into the main timeline (a reply belongs to both).
// The main-thread index is skipped while an unread backlog has not been
// loaded yet, so a partially loaded history never claims completeness.
func (d *Dispatcher) applyListedAndThreadCounters(s *state.Snapshot, msg *domain.Message) *state.Snapshot {
	threadID := state.SelectThreadIDFromMessage(s, msg)
	threadInfo := state.SelectThreadInfo(s, msg.ChatID, threadID)

	mainReadState := state.SelectThreadReadState(s, msg.ChatID, domain.MainThreadID)
	unreadBacklogNotLoaded := mainReadState != nil && mainReadState.UnreadCount > 0 &&
		state.SelectListedIDs(s, msg.ChatID, domain.MainThreadID) == nil

	if threadID != domain.MainThreadID {
		s = state.EnsureThread(s, msg.ChatID, threadID)
		s = state.AppendListedIDs(s, msg.ChatID, threadID, []int64{msg.ID})
	}

	if threadInfo != nil {
		s = state.UpdateThreadInfoLastMessageID(s, msg.ChatID, threadID, msg.ID)
		if !msg.IsLocal() && !msg.IsAction() {
			s = state.UpdateThreadInfoMessagesCount(s, msg.ChatID, threadID, threadInfo.MessagesCount+1)
		}
	}

	if unreadBacklogNotLoaded {
		return s
	}

	s = state.EnsureThread(s, msg.ChatID, domain.MainThreadID)
	return state.AppendListedIDs(s, msg.ChatID, domain.MainThreadID, []int64{msg.ID})
}

// updateChatLastMessage moves the chat-level last-message pointer with a
// monotonic tie-break: a candidate wins only if it is the same message, the
// confirmed counterpart of the current local placeholder, numerically
// newer, or the move is forced.
func (d *Dispatcher) updateChatLastMessage(s *state.Snapshot, chatID string, msg *domain.Message, force bool) *state.Snapshot {
	currentLastID := state.SelectChatLastMessageID(s, chatID)

	threadID := state.SelectThreadIDFromMessage(s, msg)
	s = state.UpdateThreadInfoLastMessageID(s, chatID, threadID, msg.ID)

	if savedDialogID := state.SelectSavedDialogIDFromMessage(s, msg); savedDialogID != "" {
		s = state.UpdateSavedLastMessageID(s, savedDialogID, msg.ID)
	}

	if currentLastID != 0 && !force {
		sameOrNewer := currentLastID == msg.ID ||
			(msg.PreviousLocalID != 0 && currentLastID == msg.PreviousLocalID) ||
			msg.ID > currentLastID
		if !sameOrNewer {
			return s
		}
	}

	return state.UpdateChatLastMessageID(s, chatID, msg.ID)
}

// appendScheduledID records a scheduled message id on the main thread and,
// when the message belongs elsewhere, on its own thread too. Sets are kept
// descending.
func appendScheduledID(s *state.Snapshot, msg *domain.Message, id int64) *state.Snapshot {
	s = state.EnsureThread(s, msg.ChatID, domain.MainThreadID)
	main := state.SelectScheduledIDs(s, msg.ChatID, domain.MainThreadID)
	s = state.ReplaceScheduledIDs(s, msg.ChatID, domain.MainThreadID, mergeScheduled(main, id))

	threadID := state.SelectThreadIDFromMessage(s, msg)
	if threadID == domain.MainThreadID {
		return s
	}
	s = state.EnsureThread(s, msg.ChatID, threadID)
	ids := state.SelectScheduledIDs(s, msg.ChatID, threadID)
	return state.ReplaceScheduledIDs(s, msg.ChatID, threadID, mergeScheduled(ids, id))
}

func mergeScheduled(ids []int64, id int64) []int64 {
	out := make([]int64, 0, len(ids)+1)
	inserted := false
	for _, existing := range ids {
		if existing == id {
			inserted = true
		}
		if !inserted && existing < id {
			out = append(out, id)
			inserted = true
		}
		out = append(out, existing)
	}
	if !inserted {
		out = append(out, id)
	}
	return out
}
