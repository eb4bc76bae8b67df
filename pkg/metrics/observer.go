package metrics

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"
)

// Event names emitted by the pipeline.
const (
	EventBreakerDenied   = "llm_breaker_denied"
	EventRateLimit       = "llm_rate_limit"
	EventDigitsHeld      = "tts_digits_held"
	EventNumeralFallback = "tts_numeral_fallback"
	EventRegisterDrift   = "register_drift"
	EventRegisterHandoff = "register_handoff"
	EventSuspicion       = "transcript_suspicion"
)

type MetricsEvent struct {
	Name   string
	Time   time.Time
	Value  float64
	Tags   map[string]string
	Fields map[string]any
}

type Observer interface {
	RecordEvent(ev MetricsEvent)
}

type NoopObserver struct{}

func (NoopObserver) RecordEvent(MetricsEvent) {}

// MemoryObserver collects events in memory; used by tests and the example.
type MemoryObserver struct {
	mu     sync.Mutex
	Events []MetricsEvent
}

func NewMemoryObserver() *MemoryObserver {
	return &MemoryObserver{}
}

func (m *MemoryObserver) RecordEvent(ev MetricsEvent) {
	m.mu.Lock()
	m.Events = append(m.Events, ev)
	m.mu.Unlock()
}

// Named returns the collected events matching name.
func (m *MemoryObserver) Named(name string) []MetricsEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []MetricsEvent
	for _, ev := range m.Events {
		if ev.Name == name {
			out = append(out, ev)
		}
	}
	return out
}

// MultiObserver fans every event out to all sinks, so a deployment can
// keep an in-memory view and a persisted JSONL trail from one recorder.
type MultiObserver struct {
	sinks []Observer
}

func NewMultiObserver(sinks ...Observer) *MultiObserver {
	return &MultiObserver{sinks: sinks}
}

func (m *MultiObserver) RecordEvent(ev MetricsEvent) {
	for _, s := range m.sinks {
		if s != nil {
			s.RecordEvent(ev)
		}
	}
}

// JSONLObserver writes one JSON line per event.
type JSONLObserver struct {
	logger *slog.Logger
}

func NewJSONLObserver(w io.Writer) *JSONLObserver {
	if w == nil {
		w = io.Discard
	}
	return &JSONLObserver{logger: slog.New(slog.NewJSONHandler(w, nil))}
}

func (o *JSONLObserver) RecordEvent(ev MetricsEvent) {
	attrs := []slog.Attr{
		slog.String("name", ev.Name),
		slog.Time("time", ev.Time),
		slog.Float64("value", ev.Value),
	}
	for k, v := range ev.Tags {
		attrs = append(attrs, slog.String(k, v))
	}
	for k, v := range ev.Fields {
		attrs = append(attrs, slog.Any(k, v))
	}
	o.logger.LogAttrs(context.TODO(), slog.LevelInfo, "metrics", attrs...)
}
