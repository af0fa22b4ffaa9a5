package collection

import "time"

// ListEventType identifies the lifecycle stage of a decorated list call.
type ListEventType string

const (
	ListStarted   ListEventType = "list.started"
	ListSucceeded ListEventType = "list.succeeded"
	ListFailed    ListEventType = "list.failed"
)

// ListEvent is emitted by collection decorators around delegated list calls.
type ListEvent struct {
	Type       ListEventType `json:"type"`
	Collection string        `json:"collection"`
	// Count is the number of returned rows; only set on success.
	Count int `json:"count,omitempty"`
	// Error carries the failure message; only set on failure.
	Error     string        `json:"error,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	Duration  time.Duration `json:"duration,omitempty"`
}

// NewListEvent builds an event stamped with the current time.
func NewListEvent(eventType ListEventType, collectionName string) ListEvent {
	return ListEvent{Type: eventType, Collection: collectionName, Timestamp: time.Now()}
}
