package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
)

// RedisBus backs the Bus contract with redis PUBLISH/SUBSCRIBE, letting
// team-side consumers run in separate processes. Redis pub/sub is already
// at-most-once and FIFO per channel, which matches the Bus contract.
type RedisBus struct {
	client *redis.Client
}

func NewRedisBus(addr string) *RedisBus {
	return &RedisBus{client: redis.NewClient(&redis.Options{Addr: addr})}
}

func (b *RedisBus) Publish(ctx context.Context, channel string, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if err := b.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", channel, err)
	}
	return nil
}

func (b *RedisBus) Subscribe(ctx context.Context, channel string) (<-chan Message, func()) {
	pubsub := b.client.Subscribe(ctx, channel)
	out := make(chan Message, subscriberBuffer)
	go func() {
		defer close(out)
		for m := range pubsub.Channel() {
			var msg Message
			if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
				log.Printf("notify: dropping malformed message on %s: %v", channel, err)
				continue
			}
			select {
			case out <- msg:
			default:
			}
		}
	}()
	cancel := func() { _ = pubsub.Close() }
	return out, cancel
}

// Ping verifies connectivity at startup.
func (b *RedisBus) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}
