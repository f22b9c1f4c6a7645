package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"nuon-api/core/cache"
	"nuon-api/core/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pubsubCache struct {
	cache.Cache
	ch chan []byte
}

func (p *pubsubCache) Subscribe(ctx context.Context, channel string) (<-chan []byte, func() error) {
	return p.ch, func() error { return nil }
}

func TestDispatch_TargetsUsers(t *testing.T) {
	hub := NewHub(cache.NewNoopCache())
	alice, bob := uuid.New(), uuid.New()
	subA := hub.Subscribe(alice)
	subB := hub.Subscribe(bob)

	hub.Dispatch(events.Envelope{Event: events.BookingUpdate, UserIDs: []uuid.UUID{alice}})

	select {
	case env := <-subA.C:
		assert.Equal(t, events.BookingUpdate, env.Event)
	default:
		t.Fatal("alice did not receive the event")
	}
	assert.Empty(t, subB.C)
}

func TestDispatch_Broadcast(t *testing.T) {
	hub := NewHub(cache.NewNoopCache())
	subs := []*Subscriber{hub.Subscribe(uuid.New()), hub.Subscribe(uuid.New())}

	hub.Dispatch(events.Envelope{Event: events.NewAvailability})

	for _, s := range subs {
		assert.Len(t, s.C, 1)
	}
}

func TestDispatch_FullBufferDoesNotBlock(t *testing.T) {
	hub := NewHub(cache.NewNoopCache())
	sub := hub.Subscribe(uuid.New())

	for i := 0; i < subscriberBuffer+5; i++ {
		hub.Dispatch(events.Envelope{Event: events.NewAvailability})
	}
	assert.Len(t, sub.C, subscriberBuffer)
}

func TestUnsubscribe(t *testing.T) {
	hub := NewHub(cache.NewNoopCache())
	sub := hub.Subscribe(uuid.New())
	require.Equal(t, 1, hub.Count())

	hub.Unsubscribe(sub)
	hub.Unsubscribe(sub)

	assert.Equal(t, 0, hub.Count())
	_, open := <-sub.C
	assert.False(t, open)
}

func TestRun_ForwardsChannelMessages(t *testing.T) {
	src := &pubsubCache{Cache: cache.NewNoopCache(), ch: make(chan []byte, 1)}
	hub := NewHub(src)
	sub := hub.Subscribe(uuid.New())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	raw, err := json.Marshal(events.Envelope{Event: events.MentorAvailabilityChanged})
	require.NoError(t, err)
	src.ch <- raw

	select {
	case env := <-sub.C:
		assert.Equal(t, events.MentorAvailabilityChanged, env.Event)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}
