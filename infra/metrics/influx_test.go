package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/kilianp07/popcast/core/factory"
	coremetrics "github.com/kilianp07/popcast/core/metrics"
	"github.com/kilianp07/popcast/core/model"
)

func captureServer(t *testing.T) (*httptest.Server, func() []string) {
	t.Helper()
	var mu sync.Mutex
	var bodies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, strings.TrimSpace(string(b)))
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)
	return srv, func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), bodies...)
	}
}

func TestInfluxSink_RecordForecast(t *testing.T) {
	srv, bodies := captureServer(t)
	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	ev := coremetrics.ForecastEvent{
		Country:   "France",
		Indicator: "population",
		Requested: "exponential_smoothing",
		Used:      "polynomial",
		Fallback:  true,
		Points:    []model.Point{{Year: 2024, Value: 68.1234}, {Year: 2025, Value: 68.4}},
	}
	if err := sink.RecordForecast(ev); err != nil {
		t.Fatalf("record error: %v", err)
	}
	var lines []string
	for _, p := range ev.Points {
		pt := write.NewPointWithMeasurement("population_forecast").
			AddTag("country", "France").
			AddTag("indicator", "population").
			AddTag("method", "polynomial").
			AddTag("requested", "exponential_smoothing").
			AddTag("fallback", "true").
			AddField("value", round3(p.Value)).
			SetTime(time.Date(p.Year, time.January, 1, 0, 0, 0, 0, time.UTC))
		lines = append(lines, strings.TrimSpace(write.PointToLineProtocol(pt, time.Nanosecond)))
	}
	got := bodies()
	if len(got) != 1 || got[0] != strings.Join(lines, "\n") {
		t.Errorf("unexpected bodies: %#v", got)
	}
}

func TestInfluxSink_EmptyForecastWritesNothing(t *testing.T) {
	srv, bodies := captureServer(t)
	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	if err := sink.RecordForecast(coremetrics.ForecastEvent{Country: "X"}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if n := len(bodies()); n != 0 {
		t.Fatalf("expected no writes, got %d", n)
	}
}

func TestInfluxSink_RecordFallback(t *testing.T) {
	srv, bodies := captureServer(t)
	sink := NewInfluxSink(srv.URL+"/api/v2/write", "token", "org", "bucket")
	now := time.Now()
	ev := coremetrics.FallbackEvent{Country: "Chad", From: "xgboost_ensemble", To: "gradient_boosting", Reason: "capability_unavailable", Time: now}
	if err := sink.RecordFallback(ev); err != nil {
		t.Fatalf("record: %v", err)
	}
	p := write.NewPointWithMeasurement("forecast_fallback").
		AddTag("from", "xgboost_ensemble").
		AddTag("to", "gradient_boosting").
		AddTag("country", "Chad").
		AddField("reason", "capability_unavailable").
		SetTime(now)
	exp := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	if got := bodies(); len(got) != 1 || got[0] != exp {
		t.Errorf("bodies: %#v", got)
	}
}

func TestInfluxSink_RecordModel(t *testing.T) {
	srv, bodies := captureServer(t)
	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	now := time.Now()
	ev := coremetrics.ModelEvent{Requested: "xgboost_ensemble", Used: "gradient_boosting", Rows: 120, MAE: 1.23456, RMSE: 2, R2: 0.9, Duration: 1500 * time.Microsecond, Time: now}
	if err := sink.RecordModel(ev); err != nil {
		t.Fatalf("record: %v", err)
	}
	p := write.NewPointWithMeasurement("density_model").
		AddTag("requested", "xgboost_ensemble").
		AddTag("method", "gradient_boosting").
		AddField("rows", 120).
		AddField("mae", 1.235).
		AddField("rmse", 2.0).
		AddField("r2", 0.9).
		AddField("duration_ms", 1.5).
		SetTime(now)
	exp := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	if got := bodies(); len(got) != 1 || got[0] != exp {
		t.Errorf("bodies: %#v", got)
	}
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(srv.URL+"/api/v2/write", "tok", "org", "bucket")
	if _, ok := sink.(*InfluxSink); ok {
		t.Fatalf("expected NopSink on failing health check")
	}
	if !called {
		t.Fatalf("health endpoint not called")
	}
}

func TestInfluxFactory(t *testing.T) {
	if _, err := coremetrics.NewMetricsSink([]factory.ModuleConfig{{Type: "influx", Conf: map[string]any{"org": "o"}}}); err == nil {
		t.Fatal("expected error without url")
	}
	s, err := coremetrics.NewMetricsSink([]factory.ModuleConfig{{Type: "influx", Conf: map[string]any{
		"url": "http://127.0.0.1:1", "bucket": "b", "skip_health_check": "true",
	}}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, ok := s.(*InfluxSink); !ok {
		t.Fatalf("expected *InfluxSink, got %T", s)
	}
}
