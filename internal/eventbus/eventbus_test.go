package eventbus

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type collector struct {
	mu     sync.Mutex
	events []*Envelope
}

func (c *collector) handle(_ context.Context, ev *Envelope) {
	c.mu.Lock()
	c.events = append(c.events, ev)
	c.mu.Unlock()
}

func (c *collector) snapshot() []*Envelope {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Envelope, len(c.events))
	copy(out, c.events)
	return out
}

func (c *collector) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

func TestPublishAssignsIDAndTimestamp(t *testing.T) {
	bus := NewMemoryBus(8)
	defer bus.Close()

	var c collector
	_, err := bus.Subscribe(context.Background(), Filter{}, c.handle)
	require.NoError(t, err)

	require.NoError(t, bus.Publish(context.Background(), &Envelope{EventType: "A"}))
	require.Eventually(t, func() bool { return c.len() == 1 }, time.Second, 5*time.Millisecond)

	ev := c.snapshot()[0]
	assert.Len(t, ev.ID, 36)
	assert.False(t, ev.Timestamp.IsZero())
}

func TestFilterByTypeAndSource(t *testing.T) {
	bus := NewMemoryBus(16)
	defer bus.Close()

	var onlyA, fromWorld collector
	_, err := bus.Subscribe(context.Background(), Filter{Types: []string{"A"}}, onlyA.handle)
	require.NoError(t, err)
	_, err = bus.Subscribe(context.Background(), Filter{Sources: []string{"world"}}, fromWorld.handle)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, bus.Publish(ctx, &Envelope{EventType: "A", Source: "world"}))
	require.NoError(t, bus.Publish(ctx, &Envelope{EventType: "B", Source: "world"}))
	require.NoError(t, bus.Publish(ctx, &Envelope{EventType: "A", Source: "other"}))

	bus.Close()
	assert.Equal(t, 2, onlyA.len())
	assert.Equal(t, 2, fromWorld.len())
}

func TestDeliveryKeepsOrder(t *testing.T) {
	bus := NewMemoryBus(4)

	var c collector
	_, err := bus.Subscribe(context.Background(), Filter{}, c.handle)
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		ev := &Envelope{EventType: "seq", Priority: PriorityHigh, Version: i}
		require.NoError(t, bus.Publish(context.Background(), ev))
	}
	bus.Close()

	events := c.snapshot()
	require.Len(t, events, 100)
	for i, ev := range events {
		assert.Equal(t, i, ev.Version)
	}
	assert.Equal(t, uint64(100), bus.Metrics().Consumed)
}

func TestLowPriorityDroppedWhenFull(t *testing.T) {
	bus := NewMemoryBus(1)
	defer bus.Close()

	block := make(chan struct{})
	_, err := bus.Subscribe(context.Background(), Filter{}, func(context.Context, *Envelope) { <-block })
	require.NoError(t, err)

	ctx := context.Background()
	// первое событие занимает обработчик, второе буфер
	require.NoError(t, bus.Publish(ctx, &Envelope{}))
	require.Eventually(t, func() bool { return bus.Metrics().InFlight == 0 }, time.Second, time.Millisecond)
	require.NoError(t, bus.Publish(ctx, &Envelope{}))
	require.NoError(t, bus.Publish(ctx, &Envelope{Priority: PriorityLow}))

	assert.Equal(t, uint64(1), bus.Metrics().Dropped)

	// высокий приоритет ждёт места и уважает контекст
	cctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	err = bus.Publish(cctx, &Envelope{Priority: PriorityHigh})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(block)
}

func TestUnsubscribe(t *testing.T) {
	bus := NewMemoryBus(8)

	var c collector
	sub, err := bus.Subscribe(context.Background(), Filter{}, c.handle)
	require.NoError(t, err)
	sub.Unsubscribe()

	require.NoError(t, bus.Publish(context.Background(), &Envelope{}))
	bus.Close()
	assert.Equal(t, 0, c.len())
}

func TestClosedBus(t *testing.T) {
	bus := NewMemoryBus(1)
	bus.Close()
	bus.Close()

	assert.ErrorIs(t, bus.Publish(context.Background(), &Envelope{}), ErrBusClosed)
	_, err := bus.Subscribe(context.Background(), Filter{}, func(context.Context, *Envelope) {})
	assert.ErrorIs(t, err, ErrBusClosed)
}
