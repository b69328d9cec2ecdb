package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/popcast/core/metrics"
)

// PromSink records forecast activity in Prometheus collectors.
type PromSink struct {
	forecasts *prometheus.CounterVec
	fallbacks *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	models    *prometheus.CounterVec
	modelR2   *prometheus.GaugeVec
	ingested  *prometheus.GaugeVec

	gatherer prometheus.Gatherer
	textfile string
}

// NewPromSink registers the collectors on the default registerer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers the collectors on reg. A nil registerer
// defaults to the global one. Collectors already registered are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		forecasts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "popcast_forecasts_total",
			Help: "Completed series forecasts",
		}, []string{"requested", "used", "fallback"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "popcast_fallbacks_total",
			Help: "Fallback chain steps skipped",
		}, []string{"from", "to", "reason"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "popcast_forecast_duration_seconds",
			Help:    "Time spent fitting and extrapolating one series",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"method"}),
		models: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "popcast_density_models_total",
			Help: "Trained density models",
		}, []string{"requested", "used"}),
		modelR2: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "popcast_density_model_r2",
			Help: "Test R2 of the last density model per method",
		}, []string{"method"}),
		ingested: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "popcast_ingest_rows",
			Help: "Rows read by the last data load",
		}, []string{"source", "state"}),
	}
	var err error
	if s.forecasts, err = register(reg, s.forecasts); err != nil {
		return nil, err
	}
	if s.fallbacks, err = register(reg, s.fallbacks); err != nil {
		return nil, err
	}
	if s.duration, err = register(reg, s.duration); err != nil {
		return nil, err
	}
	if s.models, err = register(reg, s.models); err != nil {
		return nil, err
	}
	if s.modelR2, err = register(reg, s.modelR2); err != nil {
		return nil, err
	}
	if s.ingested, err = register(reg, s.ingested); err != nil {
		return nil, err
	}
	if g, ok := reg.(prometheus.Gatherer); ok {
		s.gatherer = g
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// WithTextfile makes Close write every gathered metric to path in the text
// exposition format, for node exporter textfile collection.
func (s *PromSink) WithTextfile(path string) *PromSink {
	s.textfile = path
	return s
}

// RecordForecast counts the forecast and observes its duration.
func (s *PromSink) RecordForecast(ev coremetrics.ForecastEvent) error {
	s.forecasts.WithLabelValues(ev.Requested, ev.Used, strconv.FormatBool(ev.Fallback)).Inc()
	s.duration.WithLabelValues(ev.Used).Observe(ev.Duration.Seconds())
	return nil
}

// RecordFallback counts one skipped chain step.
func (s *PromSink) RecordFallback(ev coremetrics.FallbackEvent) error {
	s.fallbacks.WithLabelValues(ev.From, ev.To, ev.Reason).Inc()
	return nil
}

// RecordModel counts the training and keeps its R2.
func (s *PromSink) RecordModel(ev coremetrics.ModelEvent) error {
	s.models.WithLabelValues(ev.Requested, ev.Used).Inc()
	s.modelR2.WithLabelValues(ev.Used).Set(ev.R2)
	return nil
}

// RecordIngest sets the kept and skipped row gauges.
func (s *PromSink) RecordIngest(ev coremetrics.IngestEvent) error {
	s.ingested.WithLabelValues(ev.Source, "kept").Set(float64(ev.Rows - ev.Skipped))
	s.ingested.WithLabelValues(ev.Source, "skipped").Set(float64(ev.Skipped))
	return nil
}

// Close writes the textfile when one is configured.
func (s *PromSink) Close() error {
	if s.textfile == "" {
		return nil
	}
	g := s.gatherer
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	return prometheus.WriteToTextfile(s.textfile, g)
}
