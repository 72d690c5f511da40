package models

import (
	"encoding/json"
	"strings"
	"time"
)

// EventType categorizes events in the playback log.
type EventType string

const (
	// Session events
	EventTypeSessionStarted  EventType = "session.started"
	EventTypeSessionFinished EventType = "session.finished"

	// Playback events
	EventTypeSegmentStarted EventType = "playback.segment_started"
	EventTypeReplyStarted   EventType = "playback.reply_started"
	EventTypeWaitingReply   EventType = "playback.waiting_reply"
	EventTypeLoadFailed     EventType = "playback.load_failed"
	EventTypePaused         EventType = "playback.paused"
	EventTypeFinished       EventType = "playback.finished"

	// Settings events
	EventTypeSettingsUpdated EventType = "settings.updated"

	// System events
	EventTypeError   EventType = "error"
	EventTypeWarning EventType = "warning"
)

// EntityType identifies the type of entity an event relates to.
type EntityType string

const (
	EntityTypeSession  EntityType = "session"
	EntityTypeSettings EntityType = "settings"
	EntityTypeSystem   EntityType = "system"
)

// Event represents an append-only log entry.
type Event struct {
	// ID is the unique identifier for the event.
	ID string `json:"id"`

	// Timestamp is when the event occurred.
	Timestamp time.Time `json:"timestamp"`

	// Type categorizes the event.
	Type EventType `json:"type"`

	// EntityType identifies what kind of entity this event relates to.
	EntityType EntityType `json:"entity_type"`

	// EntityID is the ID of the related entity, usually the session.
	EntityID string `json:"entity_id"`

	// Payload contains event-specific data.
	Payload json.RawMessage `json:"payload,omitempty"`

	// Metadata contains additional context.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Validate checks if the event is valid.
func (e *Event) Validate() error {
	validation := &ValidationErrors{}
	if strings.TrimSpace(string(e.Type)) == "" {
		validation.AddMessage("type", "event type is required")
	}
	if strings.TrimSpace(string(e.EntityType)) == "" {
		validation.AddMessage("entity_type", "entity_type is required")
	}
	if strings.TrimSpace(e.EntityID) == "" {
		validation.AddMessage("entity_id", "entity_id is required")
	}
	return validation.Err()
}

// SessionStartedPayload is the payload for session.started events.
type SessionStartedPayload struct {
	SequenceID   string   `json:"sequence_id"`
	Theme        Theme    `json:"theme"`
	Fingerprint  string   `json:"fingerprint,omitempty"`
	Segments     int      `json:"segments"`
	Responsorial bool     `json:"responsorial"`
	Options      []string `json:"options,omitempty"`
}

// SegmentPayload is the payload for playback events tied to a segment.
type SegmentPayload struct {
	Cursor  int         `json:"cursor"`
	Order   int         `json:"order"`
	Kind    SegmentKind `json:"kind"`
	Title   string      `json:"title"`
	Audio   string      `json:"audio,omitempty"`
	Volume  float64     `json:"volume"`
	Phase   string      `json:"phase,omitempty"`
	Message string      `json:"message,omitempty"`
}

// SessionFinishedPayload is the payload for session.finished events.
type SessionFinishedPayload struct {
	Completed bool   `json:"completed"`
	Duration  string `json:"duration"`
	Reason    string `json:"reason,omitempty"`
}

// ErrorPayload is the payload for error events.
type ErrorPayload struct {
	Error   string `json:"error"`
	Context string `json:"context,omitempty"`
}
