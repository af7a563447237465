package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"chatsync/internal/dispatch"
	chatsync_errors "chatsync/pkg/errors"
	"chatsync/pkg/logger"
)

// Redis channels. Inbound updates arrive on one channel; side-effect
// intents produced while applying them are published per effect kind so
// interested workers can subscribe narrowly.
const (
	UpdatesChannel      = "chatsync:updates"
	EffectChannelPrefix = "chatsync:effects:"
)

// Applier consumes decoded updates. *dispatch.Dispatcher satisfies it.
type Applier interface {
	Apply(u dispatch.Update) []dispatch.Effect
}

// RedisBus bridges Redis Pub/Sub and the dispatcher: every message on the
// updates channel is decoded and applied, and resulting effect intents go
// back out over Redis.
type RedisBus struct {
	client  *redis.Client
	applier Applier
	log     *logger.Logger

	pubsub  *redis.PubSub
	ctx     context.Context
	cancel  context.CancelFunc
	mu      sync.Mutex
	running bool
	wg      sync.WaitGroup
}

func NewRedisBus(client *redis.Client, applier Applier, log *logger.Logger) *RedisBus {
	ctx, cancel := context.WithCancel(context.Background())
	return &RedisBus{
		client:  client,
		applier: applier,
		log:     log,
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (b *RedisBus) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.running {
		return nil
	}
	b.pubsub = b.client.Subscribe(b.ctx, UpdatesChannel)
	b.running = true
	b.wg.Add(1)
	go b.listen()
	return nil
}

func (b *RedisBus) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.running {
		return nil
	}
	b.cancel()
	b.running = false
	err := b.pubsub.Close()
	b.wg.Wait()
	return err
}

// Publish sends an update to the bus. The local listener picks it up like
// any other instance's.
func (b *RedisBus) Publish(ctx context.Context, u dispatch.Update) error {
	b.mu.Lock()
	running := b.running
	b.mu.Unlock()
	if !running {
		return chatsync_errors.ErrBusNotStarted
	}

	env, err := NewEnvelope(u)
	if err != nil {
		return fmt.Errorf("marshal update %s: %w", u.Kind(), err)
	}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope %s: %w", u.Kind(), err)
	}
	return b.client.Publish(ctx, UpdatesChannel, data).Err()
}

func (b *RedisBus) listen() {
	defer b.wg.Done()
	ch := b.pubsub.Channel()
	for {
		select {
		case <-b.ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			b.handleMessage([]byte(msg.Payload))
		}
	}
}

func (b *RedisBus) handleMessage(payload []byte) {
	var env Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		b.log.Warnf("dropping undecodable envelope: %v", err)
		return
	}
	u, err := Decode(&env)
	if err != nil {
		b.log.Warnf("dropping update: %v", err)
		return
	}

	for _, effect := range b.applier.Apply(u) {
		b.publishEffect(effect)
	}
}

func (b *RedisBus) publishEffect(effect dispatch.Effect) {
	data, err := json.Marshal(effect)
	if err != nil {
		b.log.Errorf("marshal effect %s: %v", effect.EffectName(), err)
		return
	}
	channel := EffectChannelPrefix + effect.EffectName()
	if err := b.client.Publish(b.ctx, channel, data).Err(); err != nil {
		b.log.Errorf("publish effect %s: %v", effect.EffectName(), err)
	}
}
