package bus

import (
	"context"
	"encoding/json"
	"time"
)

// Well-known subjects.
const (
	// SubjectContextUpdated carries ContextUpdated payloads whenever a
	// fresh user context is published.
	SubjectContextUpdated = "ember.context.updated"

	// SubjectNotificationSent announces a delivered push notification.
	SubjectNotificationSent = "ember.notify.sent"

	// QueueNotifications is the task queue push deliveries flow through.
	QueueNotifications = "notifications"
)

// ContextUpdated is the event emitted after each successful synthesis.
type ContextUpdated struct {
	UserID     string    `json:"userId"`
	Version    uint64    `json:"version"`
	ProducedAt time.Time `json:"producedAt"`
}

// PublishContextUpdated publishes a context-update event.
func PublishContextUpdated(ctx context.Context, b MessageBus, event ContextUpdated) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return b.Publish(ctx, SubjectContextUpdated, data)
}

// SubscribeContextUpdated registers a handler for context-update events.
// Malformed payloads are dropped.
func SubscribeContextUpdated(ctx context.Context, b MessageBus, fn func(ContextUpdated)) (Subscription, error) {
	return b.Subscribe(ctx, SubjectContextUpdated, func(msg *Message) {
		var event ContextUpdated
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			return
		}
		fn(event)
	})
}
