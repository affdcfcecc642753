// Package events is the change notification bridge. Mutations publish named
// events on hierarchical channels (list.<id>, list.<id>.settings,
// list.<id>.delete) and observers subscribe to a single channel.
package events

import (
	"context"
	"encoding/json"
	"time"
)

// Event is a single published notification.
type Event struct {
	ID      uint64          `json:"id"`      // Monotonic per bus
	Channel string          `json:"channel"` // Hierarchical channel name
	Payload json.RawMessage `json:"payload"` // JSON encoded payload
	Time    time.Time       `json:"time"`
}

// Publisher sends events. Delivery is at-most-once to current subscribers.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload any) error
}

// Bus distributes events to subscribers of a channel.
type Bus interface {
	Publisher

	// Subscribe registers a subscriber for channel. The subscription first
	// yields the channel's recent history, then live events.
	// Returns a Subscription that must be closed when done.
	Subscribe(channel string) Subscription

	// Close shuts down the bus and all subscriptions.
	Close() error
}

// Subscription receives events.
type Subscription interface {
	// Events returns a channel of events for this subscription.
	Events() <-chan Event

	// Close unsubscribes and releases resources.
	Close() error
}
