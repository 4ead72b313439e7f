// Package notify is the pub/sub channel-group primitive used by the
// incident router and status-change events. Delivery is at-most-once and
// best-effort: no persistence, no cross-channel ordering, FIFO within one
// channel.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Message is one notification delivered to a channel group.
type Message struct {
	ID      uuid.UUID       `json:"id"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
	SentAt  time.Time       `json:"sent_at"`
}

// NewMessage wraps an arbitrary payload into a Message.
func NewMessage(msgType string, payload interface{}) (Message, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{ID: uuid.New(), Type: msgType, Payload: body, SentAt: time.Now()}, nil
}

// Bus is the channel-group pub/sub abstraction. Publish never blocks on a
// slow subscriber; Subscribe returns a receive channel and a cancel
// function that must be called to release the subscription.
type Bus interface {
	Publish(ctx context.Context, channel string, msg Message) error
	Subscribe(ctx context.Context, channel string) (<-chan Message, func())
}

// TeamChannel is the stable channel-key convention for a resource's team.
func TeamChannel(resourceID uuid.UUID) string {
	return "team:" + resourceID.String()
}
