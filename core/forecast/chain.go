package forecast

import (
	"fmt"

	"github.com/kilianp07/popcast/core/capability"
	"github.com/kilianp07/popcast/core/model"
)

type fitFunc func(d *Dispatcher, s model.TimeSeries, degree int) (fitted, []string, error)

// Step is one node of a fallback chain.
type Step struct {
	Method Method
	// Requires names the capability the step depends on. Empty means the step
	// is always available.
	Requires capability.Name
	// Degree pins the polynomial degree for this step. Zero uses the request.
	Degree int

	minPoints func(Options) int
	fit       fitFunc
}

// MinPoints returns the minimum number of valid points the step needs.
func (s Step) MinPoints(o Options) int { return s.minPoints(o) }

func (s Step) String() string {
	if s.Method == MethodPolynomial && s.Degree > 0 {
		return fmt.Sprintf("%s(degree=%d)", s.Method, s.Degree)
	}
	return string(s.Method)
}

func two(Options) int { return 2 }

var (
	linearStep = Step{Method: MethodLinear, minPoints: two, fit: fitLinear}
	polyStep   = Step{Method: MethodPolynomial, minPoints: two, fit: fitPolynomial}
	holtStep   = Step{
		Method:    MethodExponentialSmoothing,
		Requires:  capability.SmoothingExtended,
		minPoints: func(o Options) int { return o.MinHistory },
		fit:       fitSmoothing,
	}
	gbStep = Step{
		Method:    MethodGradientBoosting,
		minPoints: func(o Options) int { return o.TreeMinPoints },
		fit:       fitResidualTrees(MethodGradientBoosting),
	}
	rfStep = Step{
		Method:    MethodRandomForest,
		minPoints: func(o Options) int { return o.TreeMinPoints },
		fit:       fitResidualTrees(MethodRandomForest),
	}
	xgbStep = Step{
		Method:    MethodXGBoost,
		Requires:  capability.BoostingExtended,
		minPoints: func(o Options) int { return o.TreeMinPoints },
		fit:       fitResidualTrees(MethodXGBoost),
	}
)

func pinned(s Step, degree int) Step {
	s.Degree = degree
	return s
}

var chains = map[Method][]Step{
	MethodLinear:               {linearStep},
	MethodPolynomial:           {polyStep, linearStep},
	MethodExponentialSmoothing: {holtStep, pinned(polyStep, 2), linearStep},
	MethodGradientBoosting:     {gbStep, linearStep},
	MethodRandomForest:         {rfStep, linearStep},
	MethodXGBoost:              {xgbStep, gbStep, linearStep},
}

// Chain returns the ordered steps tried for m. Linear is always the last step.
func Chain(m Method) ([]Step, error) {
	steps, ok := chains[m]
	if !ok {
		return nil, fmt.Errorf("unknown forecast method %q", m)
	}
	return append([]Step(nil), steps...), nil
}
