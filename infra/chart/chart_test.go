package chart

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/popcast/core/density"
	"github.com/kilianp07/popcast/core/forecast"
	"github.com/kilianp07/popcast/core/model"
	"github.com/kilianp07/popcast/core/scenario"
)

func TestForecastsHTML(t *testing.T) {
	hist := model.SeriesFromMap(map[int]float64{2019: 10, 2020: math.NaN(), 2021: 12})
	res := []forecast.Result{
		{Requested: forecast.MethodLinear, MethodUsed: forecast.MethodLinear, Predicted: []model.Point{{Year: 2022, Value: 13}}},
		{Requested: forecast.MethodXGBoost, MethodUsed: forecast.MethodGradientBoosting, Predicted: []model.Point{{Year: 2022, Value: 12.5}}},
	}
	line := Forecasts("Chad", hist, res)
	html, err := HTML("Chad", line)
	require.NoError(t, err)
	assert.Contains(t, html, "Chad")
	assert.Contains(t, html, "gradient_boosting (for xgboost_ensemble)")
	assert.Contains(t, html, "2022")
}

func TestLineDataGaps(t *testing.T) {
	data := lineData([]int{2000, 2001, 2002}, []model.Point{{Year: 2001, Value: 5}})
	require.Len(t, data, 3)
	assert.Nil(t, data[0].Value)
	assert.Equal(t, 5.0, data[1].Value)
}

func TestScenariosAndImportances(t *testing.T) {
	proj := scenario.Project(100, 0.01, []scenario.Scenario{{Name: "low", Delta: -0.01}, {Name: "high", Delta: 0.01}}, 3)
	sc := Scenarios("France", 2023, proj)
	imp := Importances(&density.ModelResult{
		MethodUsed:         forecast.MethodRandomForest,
		FeatureImportances: []density.Importance{{Feature: "log_population", Value: 0.7}, {Feature: "year", Value: 0.3}},
	})
	var b strings.Builder
	require.NoError(t, Render(&b, "run", sc, imp))
	out := b.String()
	assert.Contains(t, out, "low (0.00%)")
	assert.Contains(t, out, "high (2.00%)")
	assert.Contains(t, out, "2026")
	assert.Contains(t, out, "log_population")
}
