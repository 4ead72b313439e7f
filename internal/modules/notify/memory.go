package notify

import (
	"context"
	"sync"
)

// subscriberBuffer is the per-subscriber queue depth. A subscriber that
// falls further behind loses messages instead of blocking publishers.
const subscriberBuffer = 16

// MemoryBus is an in-process Bus for single-node deployments and tests.
type MemoryBus struct {
	mu          sync.RWMutex
	subscribers map[string][]chan Message
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subscribers: make(map[string][]chan Message)}
}

// Publish delivers msg to every current subscriber of channel. Sends are
// non-blocking: a full subscriber buffer drops the message for that
// subscriber only. Per-channel FIFO holds because Publish is synchronous.
func (b *MemoryBus) Publish(_ context.Context, channel string, msg Message) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subscribers[channel] {
		select {
		case ch <- msg:
		default:
		}
	}
	return nil
}

// Subscribe registers a new subscriber on channel. The returned cancel
// function removes the subscription and closes the stream.
func (b *MemoryBus) Subscribe(_ context.Context, channel string) (<-chan Message, func()) {
	ch := make(chan Message, subscriberBuffer)
	b.mu.Lock()
	b.subscribers[channel] = append(b.subscribers[channel], ch)
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.subscribers[channel]
		for i, sub := range subs {
			if sub == ch {
				b.subscribers[channel] = append(subs[:i], subs[i+1:]...)
				close(ch)
				break
			}
		}
	}
	return ch, cancel
}
