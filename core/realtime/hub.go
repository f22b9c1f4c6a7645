package realtime

import (
	"context"
	"encoding/json"
	"slices"
	"sync"

	"nuon-api/core/cache"
	"nuon-api/core/constants"
	"nuon-api/core/events"
	"nuon-api/core/logger"

	"github.com/google/uuid"
)

const subscriberBuffer = 16

type Subscriber struct {
	id     uuid.UUID
	userID uuid.UUID
	C      chan events.Envelope
}

// Hub fans envelopes received on the realtime Redis channel out to locally
// connected subscribers.
type Hub struct {
	cache cache.Cache

	mu          sync.RWMutex
	subscribers map[uuid.UUID]*Subscriber
}

func NewHub(c cache.Cache) *Hub {
	return &Hub{
		cache:       c,
		subscribers: make(map[uuid.UUID]*Subscriber),
	}
}

// Run consumes the realtime channel until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	messages, closeFn := h.cache.Subscribe(ctx, constants.RedisChannelRealtimeEvents)
	defer func() {
		if err := closeFn(); err != nil {
			logger.Warn("Hub:Run:Close", "error", err)
		}
	}()

	logger.Info("Hub:Run:Subscribed", "channel", constants.RedisChannelRealtimeEvents)
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			var env events.Envelope
			if err := json.Unmarshal(msg, &env); err != nil {
				logger.Warn("Hub:Run:Decode", "error", err)
				continue
			}
			h.Dispatch(env)
		}
	}
}

func (h *Hub) Subscribe(userID uuid.UUID) *Subscriber {
	sub := &Subscriber{
		id:     uuid.New(),
		userID: userID,
		C:      make(chan events.Envelope, subscriberBuffer),
	}

	h.mu.Lock()
	h.subscribers[sub.id] = sub
	h.mu.Unlock()
	return sub
}

func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subscribers[sub.id]; ok {
		delete(h.subscribers, sub.id)
		close(sub.C)
	}
}

// Dispatch delivers env to every matching subscriber. Slow subscribers drop
// events instead of blocking the hub.
func (h *Hub) Dispatch(env events.Envelope) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subscribers {
		if len(env.UserIDs) > 0 && !slices.Contains(env.UserIDs, sub.userID) {
			continue
		}
		select {
		case sub.C <- env:
		default:
			logger.Warn("Hub:Dispatch:Dropped", "event", env.Event, "user_id", sub.userID)
		}
	}
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
