package forecast

import (
	"github.com/kilianp07/popcast/core/evaluate"
	"github.com/kilianp07/popcast/core/model"
)

// Request describes one forecast.
type Request struct {
	Country    string
	Indicator  model.Indicator
	Method     Method
	YearsAhead int
	// Degree of the polynomial method. Zero uses DefaultDegree.
	Degree int
	// GrowthOverride, when set, replaces the fitted trajectory with compound
	// growth at this annual rate from the last observation.
	GrowthOverride *float64
}

// Result is the outcome of a forecast. MethodUsed is the method that actually
// produced Predicted.
type Result struct {
	Country     string                `json:"country"`
	Indicator   model.Indicator       `json:"indicator"`
	Requested   Method                `json:"requested"`
	MethodUsed  Method                `json:"method_used"`
	Degree      int                   `json:"degree,omitempty"`
	Predicted   []model.Point         `json:"predicted"`
	Diagnostics *evaluate.Diagnostics `json:"diagnostics,omitempty"`
	Warnings    []string              `json:"warnings,omitempty"`
}

// Fallback reports whether a substitute method was used.
func (r Result) Fallback() bool {
	return r.MethodUsed != r.Requested && r.MethodUsed != MethodGrowthOverride
}

// fitted is a series model after training.
type fitted interface {
	// inSample returns the in-sample estimates and the years they belong to.
	inSample() (years []int, values []float64)
	// forecast predicts the value for each future year.
	forecast(years []int) ([]float64, error)
}
