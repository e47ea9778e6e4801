// Package events publishes lifecycle and table status changes to the notification channel
package events

import (
	"context"
	"sync"
	"time"
)

// Routing keys
const (
	TableStatusChanged = "table.status.changed"
	ReservationPrefix  = "reservation."
	BlockPrefix        = "block."
)

// Event is a message published after a committed change
type Event struct {
	// RoutingKey is e.g. "table.status.changed" or "reservation.confirm"
	RoutingKey string    `json:"event_type"`
	EntityID   string    `json:"entity_id"`
	Status     string    `json:"status"`
	Previous   string    `json:"previous_status,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	Source     string    `json:"source,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NoopPublisher discards every event
type NoopPublisher struct{}

// Publish implements Publisher
func (NoopPublisher) Publish(context.Context, Event) error { return nil }

// Close implements Publisher
func (NoopPublisher) Close() error { return nil }

// Recorder keeps published events in memory. It is used by tests and by the
// in-memory store mode.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Publish implements Publisher
func (r *Recorder) Publish(_ context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

// Close implements Publisher
func (r *Recorder) Close() error { return nil }

// Events returns a copy of the recorded events
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// ByKey returns the recorded events with the given routing key
func (r *Recorder) ByKey(key string) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.RoutingKey == key {
			out = append(out, e)
		}
	}
	return out
}
