// Package events emits domain events (e.g. to Kafka). Emission is best-effort:
// callers log and ignore errors, and nothing in the request path depends on it.
package events

import (
	"context"
	"time"
)

// Event types emitted by the platform.
const (
	TypeAccountCreated     = "account.created"
	TypeOrderStatusChanged = "order.status-changed"
)

// Event is a single domain event.
type Event struct {
	ID         string            `json:"id"`
	Type       string            `json:"type"`
	Subject    string            `json:"subject"` // entity id the event is about
	OccurredAt time.Time         `json:"occurred_at"`
	Payload    map[string]string `json:"payload,omitempty"`
}

// Emitter emits domain events. Implementations may block briefly; use EmitAsync
// from request handlers.
type Emitter interface {
	// Emit sends a single event. Returns an error only on write failure; callers
	// typically log and ignore.
	Emit(ctx context.Context, event *Event) error
	// Close releases resources (e.g. Kafka writer). Safe to call if already closed.
	Close() error
}
