package metrics

import (
	"errors"
	"fmt"

	"github.com/kilianp07/popcast/core/factory"
)

var sinkRegistry = factory.NewRegistry[MetricsSink]()

// RegisterMetricsSink makes a sink type available to NewMetricsSink.
func RegisterMetricsSink(name string, f factory.Factory[MetricsSink]) error {
	return sinkRegistry.Register(name, f)
}

// NewMetricsSink builds one sink per config. No config gives a NopSink, one
// gives that sink and more give a MultiSink. When a sink cannot be built the
// ones already built are closed.
func NewMetricsSink(cfgs []factory.ModuleConfig) (MetricsSink, error) {
	if len(cfgs) == 0 {
		return NopSink{}, nil
	}
	sinks := make([]MetricsSink, 0, len(cfgs))
	for i, c := range cfgs {
		s, err := sinkRegistry.Create(c)
		if err != nil {
			err = fmt.Errorf("metrics sink %d (%s): %w", i, c.Type, err)
			return nil, errors.Join(err, NewMultiSink(sinks...).Close())
		}
		sinks = append(sinks, s)
	}
	if len(sinks) == 1 {
		return sinks[0], nil
	}
	return NewMultiSink(sinks...), nil
}

// MultiSink fans events out to several sinks. Optional recorder interfaces
// are forwarded only to the sinks implementing them.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordForecast forwards to every sink and joins their errors.
func (m *MultiSink) RecordForecast(ev ForecastEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		errs = append(errs, s.RecordForecast(ev))
	}
	return errors.Join(errs...)
}

func (m *MultiSink) RecordFallback(ev FallbackEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if rec, ok := s.(FallbackRecorder); ok {
			errs = append(errs, rec.RecordFallback(ev))
		}
	}
	return errors.Join(errs...)
}

func (m *MultiSink) RecordModel(ev ModelEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if rec, ok := s.(ModelRecorder); ok {
			errs = append(errs, rec.RecordModel(ev))
		}
	}
	return errors.Join(errs...)
}

func (m *MultiSink) RecordIngest(ev IngestEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if rec, ok := s.(IngestRecorder); ok {
			errs = append(errs, rec.RecordIngest(ev))
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink implementing Closer.
func (m *MultiSink) Close() error {
	var errs []error
	for _, s := range m.Sinks {
		if c, ok := s.(Closer); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}
