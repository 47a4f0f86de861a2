package domain

import "time"

// EventKind identifies the kind of cascade event. One relay topic per kind.
type EventKind string

const (
	EventUserDeleted    EventKind = "user-deleted"
	EventProductDeleted EventKind = "product-deleted"
)

// Topic returns the relay topic carrying events of this kind.
func (k EventKind) Topic() string { return string(k) }

// CascadeEvent is an immutable fact broadcast after a domain-level deletion.
// Delivery is at-least-once; consumers must tolerate duplicates. PayloadID is
// the deleted entity's id and doubles as the partition key, so events for the
// same entity are observed in publish order.
type CascadeEvent struct {
	Kind      EventKind `json:"kind"`
	PayloadID string    `json:"payload_id"`
	EmittedAt time.Time `json:"emitted_at"`
}

// NewCascadeEvent builds an event stamped with the current UTC time.
func NewCascadeEvent(kind EventKind, payloadID string) CascadeEvent {
	return CascadeEvent{Kind: kind, PayloadID: payloadID, EmittedAt: time.Now().UTC()}
}
