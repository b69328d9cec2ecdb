package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/popcast/core/capability"
	"github.com/kilianp07/popcast/core/density"
	"github.com/kilianp07/popcast/core/evaluate"
	"github.com/kilianp07/popcast/core/forecast"
	"github.com/kilianp07/popcast/core/model"
	"github.com/kilianp07/popcast/core/scenario"
)

func TestForecasts(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, false)
	results := []forecast.Result{
		{
			Country:     "France",
			Requested:   forecast.MethodExponentialSmoothing,
			MethodUsed:  forecast.MethodPolynomial,
			Degree:      2,
			Predicted:   []model.Point{{Year: 2024, Value: 68.5}, {Year: 2025, Value: 68.75}},
			Diagnostics: &evaluate.Diagnostics{MAE: 0.1, RMSE: 0.2, R2: 0.99},
			Warnings:    []string{"requested exponential_smoothing, used polynomial"},
		},
		{Country: "Chad", Requested: forecast.MethodLinear, MethodUsed: forecast.MethodLinear},
	}
	failures := []Failure{{Country: "Nauru", Err: errors.New("insufficient data")}}
	require.NoError(t, p.Forecasts(results, failures))

	out := buf.String()
	assert.Contains(t, out, "polynomial(2)")
	assert.Contains(t, out, "68.750")
	assert.Contains(t, out, "0.990")
	assert.Contains(t, out, "Nauru")
	assert.Contains(t, out, "insufficient data")
	assert.Contains(t, out, "2 forecasts, 1 with fallback, 1 failed")
	assert.NotContains(t, out, "\x1b[")
}

func TestWarnings(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, false)
	require.NoError(t, p.Warnings([]forecast.Result{{Country: "Peru", Warnings: []string{"a", "b"}}}))
	assert.Equal(t, "warning Peru: a\nwarning Peru: b\n", buf.String())
}

func TestScenarios(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, false)
	proj := scenario.Project(100, 0.01, []scenario.Scenario{{Name: "low", Delta: -0.01}, {Name: "high", Delta: 0.01}}, 2)
	require.NoError(t, p.Scenarios(2023, proj))
	out := buf.String()
	assert.Contains(t, out, "low (+0.00%)")
	assert.Contains(t, out, "high (+2.00%)")
	assert.Contains(t, out, "2025")
	assert.Contains(t, out, "104.040")
	assert.Less(t, strings.Index(out, "low"), strings.Index(out, "high"))
}

func TestModel(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, false)
	res := &density.ModelResult{
		Requested:          forecast.MethodXGBoost,
		MethodUsed:         forecast.MethodGradientBoosting,
		Diagnostics:        evaluate.Diagnostics{MAE: 1, RMSE: 2, R2: 0.5},
		FeatureImportances: []density.Importance{{Feature: "log_population", Value: 0.75}, {Feature: "year", Value: 0.25}},
		TrainRows:          8,
		TestActual:         []float64{1, 2},
	}
	require.NoError(t, p.Model(res))
	out := buf.String()
	assert.Contains(t, out, "density model gradient_boosting (requested xgboost_ensemble)")
	assert.Contains(t, out, "train rows 8  test rows 2")
	assert.Contains(t, out, "0.7500")
	assert.Less(t, strings.Index(out, "log_population"), strings.Index(out, "0.2500"))
}

func TestCapabilities(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, false)
	caps := capability.New(capability.SmoothingExtended)
	reasons := map[capability.Name]string{capability.BoostingExtended: "disabled by config"}
	require.NoError(t, p.Capabilities(caps, reasons))
	out := buf.String()
	assert.Contains(t, out, string(capability.SmoothingExtended))
	assert.Contains(t, out, "enabled")
	assert.Contains(t, out, "disabled by config")
}

func TestDataset(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, false)
	ds := &model.Dataset{Countries: make([]model.CountryRecord, 3), Report: model.LoadReport{Layout: "long", Encoding: "utf-8", Rows: 10, Skipped: 1}}
	require.NoError(t, p.Dataset(ds))
	assert.Equal(t, "loaded 3 countries (long layout, utf-8): 10 rows, 1 skipped\n", buf.String())
}
