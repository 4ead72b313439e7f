package notify

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func publish(t *testing.T, bus *MemoryBus, channel, msgType string) Message {
	t.Helper()
	msg, err := NewMessage(msgType, map[string]string{"note": msgType})
	require.NoError(t, err)
	require.NoError(t, bus.Publish(context.Background(), channel, msg))
	return msg
}

func TestPublishDeliversInOrder(t *testing.T) {
	bus := NewMemoryBus()
	ctx := context.Background()
	ch, cancel := bus.Subscribe(ctx, "team:alpha")
	defer cancel()

	var sent []Message
	for i := 0; i < 5; i++ {
		sent = append(sent, publish(t, bus, "team:alpha", fmt.Sprintf("event.%d", i)))
	}

	for i, want := range sent {
		got := <-ch
		assert.Equal(t, want.ID, got.ID, "message %d out of order", i)
	}
}

func TestPublishReachesAllSubscribers(t *testing.T) {
	bus := NewMemoryBus()
	ctx := context.Background()
	a, cancelA := bus.Subscribe(ctx, "team:alpha")
	defer cancelA()
	b, cancelB := bus.Subscribe(ctx, "team:alpha")
	defer cancelB()

	msg := publish(t, bus, "team:alpha", "event")
	assert.Equal(t, msg.ID, (<-a).ID)
	assert.Equal(t, msg.ID, (<-b).ID)
}

func TestPublishIsChannelScoped(t *testing.T) {
	bus := NewMemoryBus()
	ctx := context.Background()
	alpha, cancelAlpha := bus.Subscribe(ctx, "team:alpha")
	defer cancelAlpha()
	bravo, cancelBravo := bus.Subscribe(ctx, "team:bravo")
	defer cancelBravo()

	publish(t, bus, "team:alpha", "event")
	assert.Len(t, alpha, 1)
	assert.Len(t, bravo, 0, "other channels never see the message")
}

func TestPublishWithoutSubscribersIsDiscarded(t *testing.T) {
	bus := NewMemoryBus()
	publish(t, bus, "team:nobody", "event")

	// A later subscriber sees nothing: delivery is at-most-once, not replayed.
	ch, cancel := bus.Subscribe(context.Background(), "team:nobody")
	defer cancel()
	assert.Len(t, ch, 0)
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	bus := NewMemoryBus()
	ch, cancel := bus.Subscribe(context.Background(), "team:alpha")
	defer cancel()

	for i := 0; i < subscriberBuffer+10; i++ {
		publish(t, bus, "team:alpha", fmt.Sprintf("event.%d", i))
	}

	// The buffer holds the oldest messages; the overflow was dropped and
	// Publish never blocked.
	assert.Len(t, ch, subscriberBuffer)
	first := <-ch
	assert.Equal(t, "event.0", first.Type)
}

func TestCancelStopsDeliveryAndClosesStream(t *testing.T) {
	bus := NewMemoryBus()
	ch, cancel := bus.Subscribe(context.Background(), "team:alpha")

	cancel()
	publish(t, bus, "team:alpha", "event")

	msg, open := <-ch
	assert.False(t, open, "cancelled stream is closed")
	assert.Zero(t, msg.ID)
}

func TestCancelLeavesOtherSubscribersAttached(t *testing.T) {
	bus := NewMemoryBus()
	ctx := context.Background()
	_, cancelFirst := bus.Subscribe(ctx, "team:alpha")
	second, cancelSecond := bus.Subscribe(ctx, "team:alpha")
	defer cancelSecond()

	cancelFirst()
	msg := publish(t, bus, "team:alpha", "event")
	assert.Equal(t, msg.ID, (<-second).ID)
}

func TestTeamChannel(t *testing.T) {
	id := uuid.New()
	assert.Equal(t, "team:"+id.String(), TeamChannel(id))
}
