// Package telemetry exposes playback metrics and a read-only HTTP status
// surface.
package telemetry

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/santorosario/rosario/internal/models"
	"github.com/santorosario/rosario/internal/player"
)

const namespace = "rosario"

// Metrics holds the playback collectors.
type Metrics struct {
	Events       *prometheus.CounterVec
	Segments     *prometheus.CounterVec
	Replies      *prometheus.CounterVec
	LoadFailures prometheus.Counter
	Cursor       prometheus.Gauge
	Total        prometheus.Gauge
	Playing      prometheus.Gauge
	Responsorial prometheus.Gauge

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "playback_events_total",
			Help:      "Playback events by type.",
		}, []string{"type"}),
		Segments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "segments_started_total",
			Help:      "Segment intros started by kind.",
		}, []string{"kind"}),
		Replies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "replies_started_total",
			Help:      "Replies started, split by audibility.",
		}, []string{"audible"}),
		LoadFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_load_failures_total",
			Help:      "Clips that failed to load or play.",
		}),
		Cursor: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cursor",
			Help:      "Current position in the enabled sequence.",
		}),
		Total: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "segments",
			Help:      "Number of enabled segments in the sequence.",
		}),
		Playing: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "playing",
			Help:      "1 while playback is active.",
		}),
		Responsorial: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "responsorial",
			Help:      "1 in responsorial mode, 0 in solo mode.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "endpoint", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "endpoint"}),
	}

	collectors := []prometheus.Collector{
		m.Events, m.Segments, m.Replies, m.LoadFailures,
		m.Cursor, m.Total, m.Playing, m.Responsorial,
		m.HTTPRequests, m.HTTPDuration,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Publish updates the gauges from a controller status.
func (m *Metrics) Publish(status player.Status) {
	m.Cursor.Set(float64(status.Cursor))
	m.Total.Set(float64(status.Total))
	m.Playing.Set(boolGauge(status.Playing))
	m.Responsorial.Set(boolGauge(status.Responsorial))
}

// MetricsSink counts playback events.
type MetricsSink struct {
	metrics *Metrics
}

// NewMetricsSink returns an event sink feeding m.
func NewMetricsSink(m *Metrics) *MetricsSink {
	return &MetricsSink{metrics: m}
}

// Emit records one event.
func (s *MetricsSink) Emit(ctx context.Context, event player.PlaybackEvent) error {
	s.metrics.Events.WithLabelValues(event.Type).Inc()

	payload, _ := event.Data.(models.SegmentPayload)
	switch event.Type {
	case player.EventSegmentStarted:
		s.metrics.Segments.WithLabelValues(string(payload.Kind)).Inc()
	case player.EventReplyStarted:
		audible := "false"
		if payload.Volume > 0 {
			audible = "true"
		}
		s.metrics.Replies.WithLabelValues(audible).Inc()
	case player.EventLoadFailed:
		s.metrics.LoadFailures.Inc()
	}
	return nil
}

// Close is a no-op.
func (s *MetricsSink) Close() error {
	return nil
}

func boolGauge(v bool) float64 {
	if v {
		return 1
	}
	return 0
}
