package player

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/santorosario/rosario/internal/db"
	"github.com/santorosario/rosario/internal/models"
)

// Playback event types.
const (
	EventSessionStarted = "session_started"
	EventSessionEnded   = "session_ended"
	EventSegmentStarted = "segment_started"
	EventReplyStarted   = "reply_started"
	EventWaitingReply   = "waiting_reply"
	EventLoadFailed     = "load_failed"
	EventPaused         = "paused"
	EventFinished       = "finished"
)

// ReasonSequenceChanged marks a session closed because the sequence was
// replaced mid-recitation.
const ReasonSequenceChanged = "sequence_changed"

// PlaybackEvent is a structured event emitted by the controller.
type PlaybackEvent struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id"`
	Data      any       `json:"data,omitempty"`
}

// EventSink receives playback events.
type EventSink interface {
	Emit(ctx context.Context, event PlaybackEvent) error
	Close() error
}

// NoopSink drops all events.
type NoopSink struct{}

// Emit ignores events.
func (NoopSink) Emit(ctx context.Context, event PlaybackEvent) error {
	return nil
}

// Close is a no-op.
func (NoopSink) Close() error {
	return nil
}

// MultiSink fans events out to several sinks. Emit returns the first error
// but always delivers to every sink.
type MultiSink []EventSink

// Emit forwards the event to every sink.
func (m MultiSink) Emit(ctx context.Context, event PlaybackEvent) error {
	var first error
	for _, sink := range m {
		if sink == nil {
			continue
		}
		if err := sink.Emit(ctx, event); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Close closes every sink.
func (m MultiSink) Close() error {
	var errs []error
	for _, sink := range m {
		if sink == nil {
			continue
		}
		if err := sink.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// JSONLinesSink writes events to a writer as JSON lines.
type JSONLinesSink struct {
	mu      sync.Mutex
	out     io.Writer
	encoder *json.Encoder
	closed  bool
}

// NewJSONLinesSink returns a sink writing to out. Close closes out when it
// is an io.Closer.
func NewJSONLinesSink(out io.Writer) *JSONLinesSink {
	return &JSONLinesSink{out: out, encoder: json.NewEncoder(out)}
}

// Emit writes one event line.
func (s *JSONLinesSink) Emit(ctx context.Context, event PlaybackEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("event writer closed")
	}
	return s.encoder.Encode(event)
}

// Close closes the writer when possible.
func (s *JSONLinesSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if closer, ok := s.out.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// DatabaseEventSink writes events to the SQLite event log.
type DatabaseEventSink struct {
	mu   sync.Mutex
	repo *db.EventRepository
}

// NewDatabaseEventSink creates a database-backed event sink. The database
// stays owned by the caller.
func NewDatabaseEventSink(database *db.DB) *DatabaseEventSink {
	var repo *db.EventRepository
	if database != nil {
		repo = db.NewEventRepository(database)
	}
	return &DatabaseEventSink{repo: repo}
}

// Emit persists an event to the event repository.
func (s *DatabaseEventSink) Emit(ctx context.Context, event PlaybackEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.repo == nil {
		return errors.New("event repository is required")
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	payload, err := json.Marshal(event.Data)
	if err != nil {
		return err
	}

	return s.repo.Create(ctx, &models.Event{
		Timestamp:  event.Timestamp,
		Type:       playbackEventType(event.Type),
		EntityType: models.EntityTypeSession,
		EntityID:   event.SessionID,
		Payload:    payload,
	})
}

// Close is a no-op; the database is closed by its owner.
func (s *DatabaseEventSink) Close() error {
	return nil
}

func playbackEventType(eventType string) models.EventType {
	trimmed := strings.TrimSpace(eventType)
	switch trimmed {
	case EventSessionStarted:
		return models.EventTypeSessionStarted
	case EventSessionEnded:
		return models.EventTypeSessionFinished
	case "":
		return models.EventType("playback.unknown")
	}
	if strings.HasPrefix(trimmed, "playback.") || strings.HasPrefix(trimmed, "session.") {
		return models.EventType(trimmed)
	}
	return models.EventType("playback." + trimmed)
}
