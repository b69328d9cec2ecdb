// Package metrics defines the observability events emitted while forecasting
// and training, together with a registry of sink factories. Sinks implement
// MetricsSink and opt into the other recorder interfaces they support.
package metrics
