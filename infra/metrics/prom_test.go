package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kilianp07/popcast/core/factory"
	coremetrics "github.com/kilianp07/popcast/core/metrics"
)

func TestPromSink_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	s, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	_ = s.RecordForecast(coremetrics.ForecastEvent{Requested: "xgboost_ensemble", Used: "gradient_boosting", Fallback: true, Duration: time.Millisecond})
	_ = s.RecordForecast(coremetrics.ForecastEvent{Requested: "linear", Used: "linear", Duration: time.Millisecond})
	_ = s.RecordFallback(coremetrics.FallbackEvent{From: "xgboost_ensemble", To: "gradient_boosting", Reason: "capability_unavailable"})
	_ = s.RecordModel(coremetrics.ModelEvent{Requested: "random_forest", Used: "random_forest", R2: 0.8})
	_ = s.RecordIngest(coremetrics.IngestEvent{Source: "syb.csv", Rows: 10, Skipped: 2})

	if v := testutil.ToFloat64(s.forecasts.WithLabelValues("xgboost_ensemble", "gradient_boosting", "true")); v != 1 {
		t.Fatalf("expected 1 fallback forecast, got %v", v)
	}
	if v := testutil.ToFloat64(s.fallbacks.WithLabelValues("xgboost_ensemble", "gradient_boosting", "capability_unavailable")); v != 1 {
		t.Fatalf("expected 1 fallback, got %v", v)
	}
	if v := testutil.ToFloat64(s.modelR2.WithLabelValues("random_forest")); v != 0.8 {
		t.Fatalf("expected r2 0.8, got %v", v)
	}
	if v := testutil.ToFloat64(s.ingested.WithLabelValues("syb.csv", "kept")); v != 8 {
		t.Fatalf("expected 8 kept rows, got %v", v)
	}
	if n := testutil.CollectAndCount(s.duration); n != 2 {
		t.Fatalf("expected 2 duration series, got %d", n)
	}
}

func TestPromSink_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	b, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	_ = a.RecordFallback(coremetrics.FallbackEvent{From: "a", To: "b", Reason: "fit_failure"})
	_ = b.RecordFallback(coremetrics.FallbackEvent{From: "a", To: "b", Reason: "fit_failure"})
	if v := testutil.ToFloat64(a.fallbacks.WithLabelValues("a", "b", "fit_failure")); v != 2 {
		t.Fatalf("expected shared counter at 2, got %v", v)
	}
}

func TestPromSink_Textfile(t *testing.T) {
	reg := prometheus.NewRegistry()
	path := filepath.Join(t.TempDir(), "popcast.prom")
	s, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	s.WithTextfile(path)
	_ = s.RecordForecast(coremetrics.ForecastEvent{Requested: "linear", Used: "linear"})
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	if !strings.Contains(string(data), `popcast_forecasts_total{fallback="false",requested="linear",used="linear"} 1`) {
		t.Fatalf("textfile missing counter:\n%s", data)
	}
}

func TestFactoryRegistrations(t *testing.T) {
	s, err := coremetrics.NewMetricsSink(nil)
	if err != nil {
		t.Fatalf("nop: %v", err)
	}
	if _, ok := s.(coremetrics.NopSink); !ok {
		t.Fatalf("expected NopSink, got %T", s)
	}
	if _, err := coremetrics.NewMetricsSink([]factory.ModuleConfig{{Type: "nop"}, {Type: "nop"}}); err != nil {
		t.Fatalf("multi nop: %v", err)
	}
	if _, err := coremetrics.NewMetricsSink([]factory.ModuleConfig{{Type: "statsd"}}); err == nil {
		t.Fatal("expected unknown sink error")
	}
}
