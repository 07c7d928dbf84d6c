package pubsub

import (
	"context"
	"encoding/json"
)

// Topic names used by the pipeline and web layer.
const (
	TopicLoadStatus = "load_status"
	TopicView       = "view"
)

// Event represents a pub/sub event
type Event struct {
	Topic   string          `json:"topic"`   // Subscription topic ("load_status", "view")
	Type    string          `json:"type"`    // Event type (e.g., "loading", "ready", "error", "toggled")
	Data    json.RawMessage `json:"data"`    // Event payload
	Version int             `json:"version"` // Version number for ordering
}

// Subscription represents a client subscription to a topic
type Subscription interface {
	// Topic returns the subscription topic
	Topic() string

	// Events returns a channel for receiving events
	Events() <-chan Event

	// Close closes the subscription
	Close() error
}

// Publisher manages pub/sub subscriptions and event publishing
type Publisher interface {
	// Subscribe creates a new subscription to a topic
	// Context cancellation will close the subscription
	Subscribe(ctx context.Context, topic string) (Subscription, error)

	// Publish sends an event to all subscribers of a topic
	Publish(topic string, eventType string, data interface{}) error

	// Close shuts down the publisher and all subscriptions
	Close() error
}

// LoadStatus reports the progress of a dataset load.
type LoadStatus struct {
	State   string `json:"state"`   // loading, ready, error
	Message string `json:"message"` // Human-readable status message
	Source  string `json:"source"`  // The source being loaded
}

// ViewSummary describes the currently visible subgraph after a load or
// a visibility toggle.
type ViewSummary struct {
	Nodes       int  `json:"nodes"`
	Links       int  `json:"links"`
	Experiments int  `json:"experiments"`
	Loaded      bool `json:"loaded"` // False only before the first successful load
}
