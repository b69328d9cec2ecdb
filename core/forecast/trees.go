package forecast

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/kilianp07/popcast/core/learn"
	"github.com/kilianp07/popcast/core/model"
)

// residualFit forecasts with a tree ensemble trained on the residuals of a
// linear trend, using the year as the only feature. Trees cannot
// extrapolate, so the trend carries the level and the ensemble adds the
// residual of the nearest years.
type residualFit struct {
	trend *lineFit
	reg   learn.Regressor
	years []int
	est   []float64
}

func (d *Dispatcher) newRegressor(m Method) (learn.Regressor, error) {
	t := d.opts.Trees
	switch m {
	case MethodRandomForest:
		return &learn.RandomForest{NEstimators: t.NEstimators, MaxDepth: t.MaxDepth, MinSamplesLeaf: 1, Seed: t.Seed}, nil
	case MethodGradientBoosting:
		return &learn.GradientBoosting{NEstimators: t.NEstimators, LearningRate: t.LearningRate, MaxDepth: t.MaxDepth, MinSamplesLeaf: 1, Seed: t.Seed}, nil
	case MethodXGBoost:
		if !learn.HasBooster(d.opts.Booster.Type) {
			return nil, fmt.Errorf("%w: booster %q not linked in", ErrCapabilityUnavailable, d.opts.Booster.Type)
		}
		reg, err := learn.NewBooster(d.opts.Booster)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFitFailure, err)
		}
		return reg, nil
	default:
		return nil, fmt.Errorf("no regressor for %s", m)
	}
}

func yearMatrix(years []int) *mat.Dense {
	x := mat.NewDense(len(years), 1, nil)
	for i, y := range years {
		x.Set(i, 0, float64(y))
	}
	return x
}

func fitResidualTrees(m Method) fitFunc {
	return func(d *Dispatcher, s model.TimeSeries, degree int) (fitted, []string, error) {
		reg, err := d.newRegressor(m)
		if err != nil {
			return nil, nil, err
		}
		lf, _, err := fitLinear(d, s, degree)
		if err != nil {
			return nil, nil, err
		}
		trend := lf.(*lineFit)
		years, base := trend.inSample()
		resid := make([]float64, len(years))
		for i := range resid {
			resid[i] = s.At(i).Value - base[i]
		}
		x := yearMatrix(years)
		if err := reg.Fit(x, resid); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrFitFailure, err)
		}
		pred, err := reg.Predict(x)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrFitFailure, err)
		}
		est := make([]float64, len(years))
		for i := range est {
			est[i] = base[i] + pred[i]
		}
		return &residualFit{trend: trend, reg: reg, years: years, est: est}, nil, nil
	}
}

func (r *residualFit) inSample() ([]int, []float64) { return r.years, r.est }

func (r *residualFit) forecast(years []int) ([]float64, error) {
	pred, err := r.reg.Predict(yearMatrix(years))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFitFailure, err)
	}
	out := make([]float64, len(years))
	for i, y := range years {
		out[i] = r.trend.at(y) + pred[i]
	}
	return out, nil
}
