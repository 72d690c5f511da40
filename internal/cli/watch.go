package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/santorosario/rosario/internal/db"
	"github.com/santorosario/rosario/internal/models"
)

// watchMode is set by --watch on commands that can stream.
var watchMode bool

// MustBeJSONLForWatch rejects --watch without --jsonl.
func MustBeJSONLForWatch() error {
	if watchMode && !jsonlOutput {
		return errors.New("--watch requires --jsonl")
	}
	return nil
}

// StreamConfig configures an EventStreamer.
type StreamConfig struct {
	// PollInterval is the delay between polls once caught up.
	PollInterval time.Duration

	// BatchSize is the page size of each poll.
	BatchSize int

	// EntityTypes and EventTypes filter the stream when non-empty.
	EntityTypes []models.EntityType
	EventTypes  []models.EventType

	// EntityID restricts the stream to one entity, e.g. a session.
	EntityID string

	// Since is the replay start when IncludeExisting is set.
	Since *time.Time

	// IncludeExisting replays stored events before following new ones.
	IncludeExisting bool
}

// DefaultStreamConfig follows new events only.
func DefaultStreamConfig() StreamConfig {
	return StreamConfig{
		PollInterval: 500 * time.Millisecond,
		BatchSize:    100,
	}
}

// EventStreamer tails the event log as JSON lines.
type EventStreamer struct {
	repo   *db.EventRepository
	out    io.Writer
	config StreamConfig
	enc    *json.Encoder

	// pageFull is set when the last poll may have left events unread.
	pageFull bool
}

// NewEventStreamer creates a streamer writing to out.
func NewEventStreamer(repo *db.EventRepository, out io.Writer, config StreamConfig) *EventStreamer {
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultStreamConfig().PollInterval
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultStreamConfig().BatchSize
	}
	return &EventStreamer{
		repo:   repo,
		out:    out,
		config: config,
		enc:    json.NewEncoder(out),
	}
}

// Stream writes events until ctx is canceled.
func (s *EventStreamer) Stream(ctx context.Context) error {
	var since *time.Time
	if s.config.IncludeExisting {
		since = s.config.Since
	} else {
		now := time.Now().UTC()
		since = &now
	}

	cursor := ""
	ticker := time.NewTicker(s.config.PollInterval)
	defer ticker.Stop()

	for {
		events, next, err := s.poll(ctx, cursor, since)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		for _, event := range events {
			if err := s.writeEvent(event); err != nil {
				return err
			}
		}
		if next != "" {
			cursor = next
		}
		if s.pageFull {
			// drain pending pages before sleeping
			select {
			case <-ctx.Done():
				return nil
			default:
				continue
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// poll fetches one page after cursor. The returned cursor is the last
// event read, before filtering, or "" when nothing was read.
func (s *EventStreamer) poll(ctx context.Context, cursor string, since *time.Time) ([]*models.Event, string, error) {
	query := db.EventQuery{
		Since:  since,
		Cursor: cursor,
		Limit:  s.config.BatchSize,
	}
	if len(s.config.EntityTypes) == 1 {
		query.EntityType = &s.config.EntityTypes[0]
	}
	if len(s.config.EventTypes) == 1 {
		query.Type = &s.config.EventTypes[0]
	}
	if s.config.EntityID != "" {
		query.EntityID = &s.config.EntityID
	}

	page, err := s.repo.Query(ctx, query)
	if err != nil {
		return nil, "", err
	}
	s.pageFull = page.NextCursor != ""
	if len(page.Events) == 0 {
		return nil, "", nil
	}

	last := page.Events[len(page.Events)-1].ID
	filtered := make([]*models.Event, 0, len(page.Events))
	for _, event := range page.Events {
		if s.matches(event) {
			filtered = append(filtered, event)
		}
	}
	return filtered, last, nil
}

func (s *EventStreamer) matches(event *models.Event) bool {
	if len(s.config.EntityTypes) > 1 && !containsValue(s.config.EntityTypes, event.EntityType) {
		return false
	}
	if len(s.config.EventTypes) > 1 && !containsValue(s.config.EventTypes, event.Type) {
		return false
	}
	return true
}

func (s *EventStreamer) writeEvent(event *models.Event) error {
	return s.enc.Encode(event)
}

func containsValue[T comparable](values []T, v T) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseSince parses a --since value: a duration back from now ("1h", "7d"),
// an RFC3339 timestamp, a date, or a local date-time.
func ParseSince(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	if d, err := parseDurationWithDays(value); err == nil {
		t := time.Now().UTC().Add(-d)
		return &t, nil
	}

	if t, err := time.Parse(time.RFC3339, value); err == nil {
		t = t.UTC()
		return &t, nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return &t, nil
	}
	if t, err := time.Parse("2006-01-02T15:04:05", value); err == nil {
		return &t, nil
	}

	return nil, fmt.Errorf("invalid --since value %q (use a duration like 1h or 2d, or a timestamp)", value)
}

// parseDurationWithDays extends time.ParseDuration with a "d" suffix.
func parseDurationWithDays(value string) (time.Duration, error) {
	if strings.HasSuffix(value, "d") {
		days, err := strconv.ParseFloat(strings.TrimSuffix(value, "d"), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", value)
		}
		return time.Duration(days * float64(24*time.Hour)), nil
	}
	return time.ParseDuration(value)
}
