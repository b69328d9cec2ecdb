// Package monitoring reports fatal run errors to an external error tracker.
package monitoring

import (
	"errors"
	"time"

	"github.com/kilianp07/popcast/core/forecast"
)

// Monitor defines methods used for error reporting.
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	// CapturePanic reports a value obtained from recover.
	CapturePanic(v any)
	Flush(timeout time.Duration)
}

type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string) {}
func (NopMonitor) CapturePanic(any)                          {}
func (NopMonitor) Flush(time.Duration)                       {}

var current Monitor = NopMonitor{}

// Init sets the global monitor implementation.
func Init(m Monitor) {
	if m != nil {
		current = m
	}
}

// CaptureException records the error with optional tags.
func CaptureException(err error, tags map[string]string) {
	current.CaptureException(err, tags)
}

// CaptureCommandError records a failed command. Forecast failures are tagged
// with the country and requested method.
func CaptureCommandError(command string, err error) {
	if err == nil {
		return
	}
	tags := map[string]string{"command": command}
	var ff *forecast.ForecastFailure
	if errors.As(err, &ff) {
		tags["country"] = ff.Country
		tags["method"] = string(ff.Requested)
	}
	current.CaptureException(err, tags)
}

// CapturePanic reports a recovered panic value.
func CapturePanic(v any) {
	current.CapturePanic(v)
}

// Flush flushes buffered events.
func Flush(d time.Duration) {
	current.Flush(d)
}
