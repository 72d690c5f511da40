package player

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingSink struct {
	emitted int
}

func (s *failingSink) Emit(ctx context.Context, event PlaybackEvent) error {
	s.emitted++
	return errors.New("sink unavailable")
}

func (s *failingSink) Close() error {
	return errors.New("close failed")
}

func TestJSONLinesSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONLinesSink(&buf)

	require.NoError(t, sink.Emit(context.Background(), PlaybackEvent{Type: EventPaused, SessionID: "s1"}))
	require.NoError(t, sink.Emit(context.Background(), PlaybackEvent{Type: EventFinished, SessionID: "s1"}))
	require.NoError(t, sink.Close())
	require.Error(t, sink.Emit(context.Background(), PlaybackEvent{Type: EventPaused}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var event PlaybackEvent
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &event))
	assert.Equal(t, EventFinished, event.Type)
	assert.Equal(t, "s1", event.SessionID)
}

func TestMultiSinkDeliversToAll(t *testing.T) {
	failing := &failingSink{}
	recording := &recordingSink{}
	sink := MultiSink{failing, nil, recording}

	err := sink.Emit(context.Background(), PlaybackEvent{Type: EventPaused})
	require.Error(t, err)
	assert.Equal(t, 1, failing.emitted)
	assert.Equal(t, []string{EventPaused}, recording.types())

	assert.Error(t, sink.Close())
	assert.True(t, recording.closed)
}
