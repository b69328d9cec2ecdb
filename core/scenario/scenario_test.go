package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/popcast/core/model"
)

func TestProject_GrowthCancels(t *testing.T) {
	got := Project(100, 0.02, []Scenario{{Name: "flat", Delta: -0.02}}, 1)
	pts, ok := got.Get("flat")
	require.True(t, ok)
	assert.Equal(t, []model.Point{{Year: 0, Value: 100}, {Year: 1, Value: 100}}, pts)
}

func TestProject_Compounds(t *testing.T) {
	got := Project(100, 0.10, []Scenario{{Name: "x"}}, 2)
	pts, _ := got.Get("x")
	require.Len(t, pts, 3)
	assert.InDelta(t, 121.0, pts[2].Value, 1e-9)
}

func TestProject_KeepsCallerOrder(t *testing.T) {
	scs := []Scenario{{Name: "zeta", Delta: 0.01}, {Name: "alpha"}, {Name: "mid", Delta: -0.01}}
	got := Project(1, 0, scs, 3)
	names := make([]string, len(got))
	for i, p := range got {
		names[i] = p.Name
	}
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, names)
	_, ok := got.Get("missing")
	assert.False(t, ok)
}

func TestCompound_NegativeHorizon(t *testing.T) {
	assert.Equal(t, []float64{5}, Compound(5, 0.1, -3))
}

func TestBaseGrowth(t *testing.T) {
	s := model.SeriesFromMap(map[int]float64{2000: 50, 2010: 100, 2020: 200})
	g, err := BaseGrowth(s, 10)
	require.NoError(t, err)
	assert.InDelta(t, 0.071773, g, 1e-6)

	whole, err := BaseGrowth(s, 0)
	require.NoError(t, err)
	assert.InDelta(t, 0.071773, whole, 1e-6)

	_, err = BaseGrowth(model.SeriesFromMap(map[int]float64{2000: 1}), 5)
	assert.ErrorIs(t, err, ErrNoGrowth)
}

func TestParse_PreservesOrder(t *testing.T) {
	scs, err := Parse([]byte("high: 0.01\nlow: -0.01\nbaseline: 0\n"))
	require.NoError(t, err)
	assert.Equal(t, []Scenario{{"high", 0.01}, {"low", -0.01}, {"baseline", 0}}, scs)
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte("- a\n- b\n"))
	assert.Error(t, err)
	_, err = Parse([]byte("a: fast\n"))
	assert.Error(t, err)
	_, err = Parse([]byte("a: 1\na: 2\n"))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenarios.yaml")
	require.NoError(t, os.WriteFile(path, []byte("slow: -0.005\nfast: 0.005\n"), 0o644))
	scs, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, scs, 2)
	assert.Equal(t, "slow", scs[0].Name)
}
