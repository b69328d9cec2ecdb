// Package infra contains the adapters around the core packages: data
// ingestion, the optional smoother and booster, metrics sinks, monitoring,
// charts, the run store and terminal reports. These packages depend on the
// core packages, never the reverse.
package infra
