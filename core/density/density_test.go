package density

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/popcast/core/capability"
	"github.com/kilianp07/popcast/core/forecast"
	"github.com/kilianp07/popcast/core/learn"
	"github.com/kilianp07/popcast/core/metrics"
	"github.com/kilianp07/popcast/core/model"
)

type modelSink struct {
	metrics.NopSink
	models    []metrics.ModelEvent
	fallbacks []metrics.FallbackEvent
}

func (m *modelSink) RecordModel(ev metrics.ModelEvent) error {
	m.models = append(m.models, ev)
	return nil
}

func (m *modelSink) RecordFallback(ev metrics.FallbackEvent) error {
	m.fallbacks = append(m.fallbacks, ev)
	return nil
}

func init() {
	_ = learn.RegisterBooster("test-boost", func(map[string]any) (learn.Regressor, error) {
		return &learn.GradientBoosting{NEstimators: 30, Seed: 1}, nil
	})
}

func sampleDataset() *model.Dataset {
	type c struct {
		name, reg string
		base, area float64
	}
	countries := []c{
		{"Big", "Asia", 100, 1}, {"Mid", "Europe", 40, 0.5},
		{"Small", "Europe", 5, 0.2}, {"Far", "", 10, 2},
	}
	ds := &model.Dataset{}
	for _, k := range countries {
		pop := map[int]float64{}
		dens := map[int]float64{}
		v := k.base
		for y := 2000; y < 2006; y++ {
			pop[y] = v
			dens[y] = v / k.area
			v *= 1.02
		}
		ds.Countries = append(ds.Countries, model.CountryRecord{
			Name: k.name, Region: k.reg,
			Population: model.SeriesFromMap(pop),
			Density:    model.SeriesFromMap(dens),
		})
	}
	return ds
}

func TestBuildDataset(t *testing.T) {
	d := BuildDataset(sampleDataset(), nil)
	assert.Equal(t, []string{"year", "log_population", "region_Asia", "region_Europe", "region_Other"}, d.Features)
	require.Equal(t, 24, d.Len())
	r, c := d.X.Dims()
	assert.Equal(t, 24, r)
	assert.Equal(t, 5, c)
	assert.Equal(t, 2000.0, d.X.At(0, 0))
	assert.InDelta(t, math.Log(100), d.X.At(0, 1), 1e-12)
	assert.Equal(t, 1.0, d.X.At(0, 2))
	assert.Equal(t, 0.0, d.X.At(0, 3))
	assert.Equal(t, "Other", d.Rows[23].Region)

	only := BuildDataset(sampleDataset(), []int{2003})
	assert.Equal(t, 4, only.Len())
}

func TestBuildDataset_SkipsMissingDensity(t *testing.T) {
	ds := &model.Dataset{Countries: []model.CountryRecord{{
		Name:       "A",
		Population: model.SeriesFromMap(map[int]float64{2000: 1, 2001: 2, 2002: 0}),
		Density:    model.SeriesFromMap(map[int]float64{2000: 3, 2002: 4}),
	}}}
	d := BuildDataset(ds, nil)
	require.Equal(t, 1, d.Len())
	assert.Equal(t, 2000, d.Rows[0].Year)
}

func TestTrain_InsufficientData(t *testing.T) {
	ds := BuildDataset(sampleDataset(), []int{2001})
	_, err := NewTrainer(nil, nil).Train(ds, forecast.MethodRandomForest, DefaultParams(), capability.All())
	assert.True(t, errors.Is(err, forecast.ErrInsufficientData))
}

func TestTrain_RandomForest(t *testing.T) {
	sink := &modelSink{}
	ds := BuildDataset(sampleDataset(), nil)
	res, err := NewTrainer(nil, sink).Train(ds, forecast.MethodRandomForest, Params{NEstimators: 25}, capability.None())
	require.NoError(t, err)
	assert.Equal(t, forecast.MethodRandomForest, res.MethodUsed)
	assert.Equal(t, 19, res.TrainRows)
	assert.Len(t, res.TestActual, 5)
	assert.Len(t, res.TestPredicted, 5)
	require.Len(t, res.FeatureImportances, len(ds.Features))
	sum := 0.0
	for i, imp := range res.FeatureImportances {
		sum += imp.Value
		if i > 0 && imp.Value > res.FeatureImportances[i-1].Value {
			t.Fatalf("importances not sorted: %v", res.FeatureImportances)
		}
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	require.Len(t, sink.models, 1)
	assert.Equal(t, 24, sink.models[0].Rows)
}

func TestTrain_Deterministic(t *testing.T) {
	ds := BuildDataset(sampleDataset(), nil)
	tr := NewTrainer(nil, nil)
	p := Params{NEstimators: 20, Seed: 7}
	a, err := tr.Train(ds, forecast.MethodGradientBoosting, p, capability.None())
	require.NoError(t, err)
	b, err := tr.Train(ds, forecast.MethodGradientBoosting, p, capability.None())
	require.NoError(t, err)
	assert.Equal(t, a.TestPredicted, b.TestPredicted)
	assert.Equal(t, a.Diagnostics, b.Diagnostics)
}

func TestTrain_XGBoostFallsBack(t *testing.T) {
	sink := &modelSink{}
	ds := BuildDataset(sampleDataset(), nil)
	res, err := NewTrainer(nil, sink).Train(ds, forecast.MethodXGBoost, Params{NEstimators: 20, Booster: "test-boost"}, capability.None())
	require.NoError(t, err)
	assert.Equal(t, forecast.MethodXGBoost, res.Requested)
	assert.Equal(t, forecast.MethodGradientBoosting, res.MethodUsed)
	require.NotEmpty(t, res.Warnings)
	assert.Contains(t, res.Warnings[0], "requested xgboost_ensemble, used gradient_boosting")
	require.Len(t, sink.fallbacks, 1)

	res, err = NewTrainer(nil, nil).Train(ds, forecast.MethodXGBoost, Params{Booster: "missing"}, capability.All())
	require.NoError(t, err)
	assert.Equal(t, forecast.MethodGradientBoosting, res.MethodUsed)
}

func TestTrain_XGBoostAvailable(t *testing.T) {
	ds := BuildDataset(sampleDataset(), nil)
	res, err := NewTrainer(nil, nil).Train(ds, forecast.MethodXGBoost, Params{Booster: "test-boost"}, capability.All())
	require.NoError(t, err)
	assert.Equal(t, forecast.MethodXGBoost, res.MethodUsed)
	assert.Empty(t, res.Warnings)
}

func TestTrain_UnsupportedMethod(t *testing.T) {
	ds := BuildDataset(sampleDataset(), nil)
	_, err := NewTrainer(nil, nil).Train(ds, forecast.MethodLinear, DefaultParams(), capability.All())
	assert.Error(t, err)
}

func TestSplit(t *testing.T) {
	train, test := split(10, 0.2, 3)
	assert.Len(t, test, 2)
	assert.Len(t, train, 8)
	seen := map[int]bool{}
	for _, i := range append(train, test...) {
		seen[i] = true
	}
	assert.Len(t, seen, 10)
	train2, test2 := split(10, 0.2, 3)
	assert.Equal(t, train, train2)
	assert.Equal(t, test, test2)

	_, test = split(5, 0.01, 1)
	assert.Len(t, test, 1)
}
