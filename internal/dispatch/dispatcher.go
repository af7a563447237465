// Package dispatch applies typed server updates to the snapshot store. One
// handler per update kind; each handler is a pure merge over the snapshot
// plus a list of side-effect intents. Delayed follow-ups (deletion purge,
// draft expiry) go through the scheduler and re-read current state at fire
// time.
package dispatch

import (
	"time"

	"go.uber.org/zap"

	"chatsync/internal/sched"
	"chatsync/internal/state"
	"chatsync/internal/store"
	"chatsync/pkg/logger"
)

// Purge delays. The snap delay applies when the snap exit effect is
// animating and the rendering layer needs more time before entities leave
// canonical state.
const (
	AnimationDelay     = 350 * time.Millisecond
	SnapAnimationDelay = 1000 * time.Millisecond
)

// DefaultTypingDraftTTL bounds how long an untouched typing draft stays
// rendered.
const DefaultTypingDraftTTL = 20 * time.Second

type handlerFunc func(*state.Snapshot, Update) (*state.Snapshot, []Effect)

type Config struct {
	AnimationDelay     time.Duration
	SnapAnimationDelay time.Duration
	TypingDraftTTL     time.Duration
}

func (c Config) withDefaults() Config {
	if c.AnimationDelay <= 0 {
		c.AnimationDelay = AnimationDelay
	}
	if c.SnapAnimationDelay <= 0 {
		c.SnapAnimationDelay = SnapAnimationDelay
	}
	if c.TypingDraftTTL <= 0 {
		c.TypingDraftTTL = DefaultTypingDraftTTL
	}
	return c
}

type Dispatcher struct {
	store    *store.Store
	sched    sched.Scheduler
	log      *logger.Logger
	cfg      Config
	handlers map[Kind]handlerFunc

	// now is swappable in tests of time-dependent choreography.
	now func() time.Time
}

func New(st *store.Store, scheduler sched.Scheduler, log *logger.Logger, cfg Config) *Dispatcher {
	d := &Dispatcher{
		store: st,
		sched: scheduler,
		log:   log,
		cfg:   cfg.withDefaults(),
		now:   time.Now,
	}
	d.handlers = map[Kind]handlerFunc{
		KindNewMessage:                    wrap(d.handleNewMessage),
		KindNewScheduledMessage:           wrap(d.handleNewScheduledMessage),
		KindMessageUpdated:                wrap(d.handleMessageUpdated),
		KindScheduledMessageUpdated:       wrap(d.handleScheduledMessageUpdated),
		KindMessageSendSucceeded:          wrap(d.handleMessageSendSucceeded),
		KindScheduledMessageSendSucceeded: wrap(d.handleScheduledMessageSendSucceeded),
		KindMessageSendFailed:             wrap(d.handleMessageSendFailed),
		KindScheduledMessageSendFailed:    wrap(d.handleScheduledMessageSendFailed),
		KindMessagesDeleted:               wrap(d.handleMessagesDeleted),
		KindScheduledMessagesDeleted:      wrap(d.handleScheduledMessagesDeleted),
		KindMessagesPatched:               wrap(d.handleMessagesPatched),
		KindHistoryDeleted:                wrap(d.handleHistoryDeleted),
		KindSavedHistoryDeleted:           wrap(d.handleSavedHistoryDeleted),
		KindParticipantHistoryDeleted:     wrap(d.handleParticipantHistoryDeleted),
		KindMessageReactions:              wrap(d.handleMessageReactions),
		KindReactionSendConfirmed:         wrap(d.handleReactionSendConfirmed),
		KindPinnedMessagesUpdated:         wrap(d.handlePinnedMessagesUpdated),
		KindThreadInfo:                    wrap(d.handleThreadInfo),
		KindThreadReadState:               wrap(d.handleThreadReadState),
		KindTopicUpdated:                  wrap(d.handleTopicUpdated),
		KindTopicsListed:                  wrap(d.handleTopicsListed),
		KindPinnedTopicsOrder:             wrap(d.handlePinnedTopicsOrder),
		KindTypingDraft:                   wrap(d.handleTypingDraft),
		KindChatUpdated:                   wrap(d.handleChatUpdated),
	}
	return d
}

// wrap adapts a typed handler to the dispatch table.
func wrap[U Update](h func(*state.Snapshot, U) (*state.Snapshot, []Effect)) handlerFunc {
	return func(s *state.Snapshot, u Update) (*state.Snapshot, []Effect) {
		typed, ok := u.(U)
		if !ok {
			return s, nil
		}
		return h(s, typed)
	}
}

// Apply runs the handler for one update and commits the resulting
// snapshot. A well-formed update never errors: unknown kinds are skipped,
// references to unknown entities reconcile to nothing. Returns the
// side-effect intents for the caller to act on.
func (d *Dispatcher) Apply(u Update) []Effect {
	handler, ok := d.handlers[u.Kind()]
	if !ok {
		d.log.Warnf("skipping update of unknown kind %q", u.Kind())
		return nil
	}

	var effects []Effect
	d.store.Update(func(s *state.Snapshot) *state.Snapshot {
		next, fx := handler(s, u)
		effects = fx
		return next
	})
	if len(effects) > 0 {
		d.log.Logger.Debug("update applied",
			zap.String("kind", string(u.Kind())),
			zap.Int("effects", len(effects)))
	}
	return effects
}

// Store exposes the underlying snapshot store for the query surface.
func (d *Dispatcher) Store() *store.Store {
	return d.store
}
