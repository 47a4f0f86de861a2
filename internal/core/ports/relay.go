package ports

import (
	"context"

	"github.com/buy01/marketplace-system/internal/core/domain"
)

// CascadeHandler processes one delivered event. A nil return acknowledges the
// event; a non-nil return nacks it and the relay will redeliver. Handlers run
// at-least-once and must be idempotent.
type CascadeHandler func(ctx context.Context, event domain.CascadeEvent) error

// EventPublisher is the write side of the relay.
type EventPublisher interface {
	// Publish appends an event to the topic for its kind, keyed by PayloadID.
	// Events sharing a key reach a given consumer group in publish order.
	Publish(ctx context.Context, event domain.CascadeEvent) error
}

// EventRelay is a named, per-key-ordered, at-least-once pub/sub channel with
// one topic per event kind.
type EventRelay interface {
	EventPublisher
	// Subscribe registers a handler for a topic under a consumer group. Each
	// group receives every event on the topic exactly as a Kafka consumer
	// group would: duplicates are possible, per-key order is guaranteed.
	Subscribe(kind domain.EventKind, group string, handler CascadeHandler)
}
