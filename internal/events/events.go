package events

import (
	"time"

	"github.com/google/uuid"
)

// StreamName is the Redis stream source events are published to.
const StreamName = "discovery:source-events"

// EventType identifies what happened to a source.
type EventType string

const (
	SourceCreated EventType = "source.created"
	SourceUpdated EventType = "source.updated"
	SourceDeleted EventType = "source.deleted"
	SourceChecked EventType = "source.checked"
)

// SourceEvent is the payload published for source lifecycle and check events.
type SourceEvent struct {
	EventID     uuid.UUID `json:"event_id"`
	EventType   EventType `json:"event_type"`
	SourceID    string    `json:"source_id"`
	SourceName  string    `json:"source_name,omitempty"`
	CheckStatus string    `json:"check_status,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}
