package monitoring

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/kilianp07/popcast/core/forecast"
)

type recordingMonitor struct {
	errs   []error
	tags   []map[string]string
	panics []any
}

func (r *recordingMonitor) CaptureException(err error, tags map[string]string) {
	r.errs = append(r.errs, err)
	r.tags = append(r.tags, tags)
}
func (r *recordingMonitor) CapturePanic(v any)  { r.panics = append(r.panics, v) }
func (r *recordingMonitor) Flush(time.Duration) {}

func TestCaptureCommandError(t *testing.T) {
	rec := &recordingMonitor{}
	Init(rec)
	defer Init(NopMonitor{})

	CaptureCommandError("forecast", nil)
	ff := &forecast.ForecastFailure{Country: "Chad", Requested: forecast.MethodLinear, Reason: "no data"}
	CaptureCommandError("forecast", fmt.Errorf("run: %w", ff))
	CaptureCommandError("train", errors.New("boom"))

	if len(rec.errs) != 2 {
		t.Fatalf("expected 2 captures, got %d", len(rec.errs))
	}
	if rec.tags[0]["country"] != "Chad" || rec.tags[0]["method"] != "linear" {
		t.Fatalf("unexpected tags %v", rec.tags[0])
	}
	if _, ok := rec.tags[1]["country"]; ok || rec.tags[1]["command"] != "train" {
		t.Fatalf("unexpected tags %v", rec.tags[1])
	}
}

func TestInitIgnoresNil(t *testing.T) {
	Init(nil)
	CaptureException(errors.New("x"), nil)
}

func TestCapturePanic(t *testing.T) {
	rec := &recordingMonitor{}
	Init(rec)
	defer Init(NopMonitor{})

	func() {
		defer func() {
			if r := recover(); r != nil {
				CapturePanic(r)
			}
		}()
		panic("index out of range")
	}()
	if len(rec.panics) != 1 || rec.panics[0] != "index out of range" {
		t.Fatalf("unexpected panics %v", rec.panics)
	}
}
