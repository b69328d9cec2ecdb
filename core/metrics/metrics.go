package metrics

import (
	"time"

	"github.com/kilianp07/popcast/core/model"
)

// ForecastEvent describes one completed series forecast.
type ForecastEvent struct {
	Country   string
	Indicator string
	Requested string
	Used      string
	Fallback  bool
	Points    []model.Point
	Duration  time.Duration
	Time      time.Time
}

// MetricsSink records forecasts for observability purposes.
type MetricsSink interface {
	RecordForecast(ev ForecastEvent) error
}

// Closer is implemented by sinks that buffer or hold connections. Close is
// called once when a run ends.
type Closer interface {
	Close() error
}

// FallbackEvent records one step of a fallback chain being skipped.
type FallbackEvent struct {
	Country string
	From    string
	To      string
	// Reason is one of capability_unavailable, insufficient_data, fit_failure.
	Reason string
	Time   time.Time
}

// FallbackRecorder records fallback applications.
type FallbackRecorder interface {
	RecordFallback(ev FallbackEvent) error
}

// ModelEvent captures a trained density model.
type ModelEvent struct {
	Requested string
	Used      string
	Rows      int
	MAE       float64
	RMSE      float64
	R2        float64
	Duration  time.Duration
	Time      time.Time
}

// ModelRecorder records density model trainings.
type ModelRecorder interface {
	RecordModel(ev ModelEvent) error
}

// IngestEvent summarizes a data load.
type IngestEvent struct {
	Source    string
	Rows      int
	Skipped   int
	Countries int
	Time      time.Time
}

// IngestRecorder records data loads.
type IngestRecorder interface {
	RecordIngest(ev IngestEvent) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordForecast(ForecastEvent) error { return nil }
func (NopSink) RecordFallback(FallbackEvent) error { return nil }
func (NopSink) RecordModel(ModelEvent) error       { return nil }
func (NopSink) RecordIngest(IngestEvent) error     { return nil }
