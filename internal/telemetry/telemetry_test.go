package telemetry

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/santorosario/rosario/internal/models"
	"github.com/santorosario/rosario/internal/player"
	"github.com/santorosario/rosario/internal/sequences"
)

type staticSource struct {
	status player.Status
	points []sequences.NavigationPoint
}

func (s staticSource) Status() player.Status {
	return s.status
}

func (s staticSource) NavigationPoints() []sequences.NavigationPoint {
	return s.points
}

func newTestMetrics(t *testing.T) (*Metrics, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)
	return m, reg
}

func TestNewMetricsRejectsDuplicateRegistration(t *testing.T) {
	_, reg := newTestMetrics(t)
	_, err := NewMetrics(reg)
	assert.Error(t, err)
}

func TestMetricsSinkCountsEvents(t *testing.T) {
	m, _ := newTestMetrics(t)
	sink := NewMetricsSink(m)
	ctx := context.Background()

	events := []player.PlaybackEvent{
		{Type: player.EventSessionStarted},
		{Type: player.EventSegmentStarted, Data: models.SegmentPayload{Kind: models.KindHailMary, Volume: 1}},
		{Type: player.EventSegmentStarted, Data: models.SegmentPayload{Kind: models.KindHailMary, Volume: 0}},
		{Type: player.EventReplyStarted, Data: models.SegmentPayload{Volume: 0}},
		{Type: player.EventReplyStarted, Data: models.SegmentPayload{Volume: 1}},
		{Type: player.EventLoadFailed},
	}
	for _, event := range events {
		require.NoError(t, sink.Emit(ctx, event))
	}
	require.NoError(t, sink.Close())

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Events.WithLabelValues(player.EventSegmentStarted)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Segments.WithLabelValues(string(models.KindHailMary))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Replies.WithLabelValues("true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Replies.WithLabelValues("false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LoadFailures))
}

func TestMetricsPublish(t *testing.T) {
	m, _ := newTestMetrics(t)

	m.Publish(player.Status{Cursor: 12, Total: 75, Playing: true})
	assert.Equal(t, 12.0, testutil.ToFloat64(m.Cursor))
	assert.Equal(t, 75.0, testutil.ToFloat64(m.Total))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Playing))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Responsorial))

	m.Publish(player.Status{Responsorial: true})
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Playing))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Responsorial))
}

func TestRouter(t *testing.T) {
	m, reg := newTestMetrics(t)
	source := staticSource{
		status: player.Status{Cursor: 3, Total: 75, Phase: player.PhaseReplySilent, Title: "Ave María 1"},
		points: []sequences.NavigationPoint{{Label: sequences.NavStart, Index: 0}},
	}
	server := httptest.NewServer(NewRouter(source, reg, m))
	defer server.Close()

	get := func(path string) (*http.Response, string) {
		t.Helper()
		resp, err := http.Get(server.URL + path)
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp, string(body)
	}

	resp, body := get("/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, body)

	resp, body = get("/status")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	var status player.Status
	require.NoError(t, json.Unmarshal([]byte(body), &status))
	assert.Equal(t, 3, status.Cursor)
	assert.Equal(t, player.PhaseReplySilent, status.Phase)

	_, body = get("/navigation")
	var points []sequences.NavigationPoint
	require.NoError(t, json.Unmarshal([]byte(body), &points))
	assert.Equal(t, source.points, points)

	resp, _ = get("/missing")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	_, body = get("/metrics")
	assert.True(t, strings.Contains(body, `rosario_http_requests_total{endpoint="/status",method="GET",status="200"} 1`), body)
}

func TestRouterEmptyNavigation(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := httptest.NewRecorder()
	NewRouter(staticSource{}, reg, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/navigation", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}
