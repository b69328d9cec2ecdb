package forecast

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCapabilityUnavailable marks a step whose optional implementation is
	// disabled or not linked in.
	ErrCapabilityUnavailable = errors.New("capability unavailable")
	// ErrInsufficientData marks a step whose minimum history is not met.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrFitFailure marks a numerical failure: singular system or
	// non-finite output.
	ErrFitFailure = errors.New("fit failure")
)

// Attempt records why one step of a chain was not used.
type Attempt struct {
	Method Method
	Err    error
}

// ForecastFailure is returned when every step of the chain failed.
type ForecastFailure struct {
	Country   string
	Requested Method
	Reason    string
	Attempts  []Attempt
}

func (f *ForecastFailure) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "forecast %s", f.Requested)
	if f.Country != "" {
		fmt.Fprintf(&b, " for %s", f.Country)
	}
	fmt.Fprintf(&b, " failed: %s", f.Reason)
	return b.String()
}

// Unwrap exposes the per-step errors so errors.Is can match the sentinels.
func (f *ForecastFailure) Unwrap() []error {
	out := make([]error, 0, len(f.Attempts))
	for _, a := range f.Attempts {
		out = append(out, a.Err)
	}
	return out
}
