package metrics

import (
	"errors"
	"strings"
	"testing"

	"github.com/kilianp07/popcast/core/factory"
)

type countingSink struct {
	forecasts int
	fallbacks int
	err       error
}

func (c *countingSink) RecordForecast(ForecastEvent) error { c.forecasts++; return c.err }
func (c *countingSink) RecordFallback(FallbackEvent) error { c.fallbacks++; return nil }

type forecastOnly struct{ n int }

func (f *forecastOnly) RecordForecast(ForecastEvent) error { f.n++; return nil }

func TestMultiSink_ForwardsOptionalRecorders(t *testing.T) {
	a := &countingSink{}
	b := &forecastOnly{}
	m := NewMultiSink(a, b)
	if err := m.RecordForecast(ForecastEvent{Country: "France"}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := m.RecordFallback(FallbackEvent{From: "exponential_smoothing", To: "polynomial"}); err != nil {
		t.Fatalf("fallback: %v", err)
	}
	if a.forecasts != 1 || b.n != 1 {
		t.Fatalf("expected each sink to see one forecast, got %d and %d", a.forecasts, b.n)
	}
	if a.fallbacks != 1 {
		t.Fatalf("expected fallback forwarded once, got %d", a.fallbacks)
	}
}

func TestMultiSink_JoinsErrors(t *testing.T) {
	boom := errors.New("boom")
	m := NewMultiSink(&countingSink{err: boom}, &countingSink{})
	if err := m.RecordForecast(ForecastEvent{}); !errors.Is(err, boom) {
		t.Fatalf("expected joined error, got %v", err)
	}
}

func TestNewMetricsSink(t *testing.T) {
	s, err := NewMetricsSink(nil)
	if err != nil {
		t.Fatalf("nil config: %v", err)
	}
	if _, ok := s.(NopSink); !ok {
		t.Fatalf("expected NopSink, got %T", s)
	}
	if err := RegisterMetricsSink("counting-test", func(map[string]any) (MetricsSink, error) {
		return &countingSink{}, nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	s, err = NewMetricsSink([]factory.ModuleConfig{{Type: "counting-test"}, {Type: "counting-test"}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if ms, ok := s.(*MultiSink); !ok || len(ms.Sinks) != 2 {
		t.Fatalf("expected MultiSink of 2, got %T", s)
	}
	if _, err := NewMetricsSink([]factory.ModuleConfig{{Type: "missing"}}); err == nil {
		t.Fatal("expected error for unknown type")
	}
}

type closingSink struct {
	forecastOnly
	closed bool
}

func (c *closingSink) Close() error { c.closed = true; return nil }

func TestMultiSink_Close(t *testing.T) {
	c := &closingSink{}
	m := NewMultiSink(c, &forecastOnly{})
	if err := m.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !c.closed {
		t.Fatal("expected closer to be closed")
	}
}

func TestNewMetricsSink_ClosesBuiltSinksOnError(t *testing.T) {
	built := &closingSink{}
	if err := RegisterMetricsSink("closing-test", func(map[string]any) (MetricsSink, error) {
		return built, nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, err := NewMetricsSink([]factory.ModuleConfig{{Type: "closing-test"}, {Type: "missing"}})
	if err == nil {
		t.Fatal("expected error for unknown type")
	}
	if !strings.Contains(err.Error(), "metrics sink 1 (missing)") {
		t.Fatalf("error does not name the failing sink: %v", err)
	}
	if !built.closed {
		t.Fatal("expected the sink built first to be closed")
	}
}
