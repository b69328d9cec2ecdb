package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `data:
  path: "data/SYB66_1_202310_Population.csv"
  min_year: 2000
forecast:
  method: "exponential_smoothing"
  years_ahead: 15
  countries: ["France", "Chad"]
  booster:
    type: "xgboost"
    conf:
      lambda: 2
model:
  method: "xgboost_ensemble"
  params:
    n_estimators: 50
    lambda: 3
scenarios:
  list:
    - name: "slow"
      delta: -0.01
    - name: "fast"
      delta: 0.02
capabilities:
  disable: ["boosting-extended"]
metrics:
  sinks:
    - type: "nop"
regions:
  Atlantis: "Ocean"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"data.path", cfg.Data.Path, "data/SYB66_1_202310_Population.csv"},
		{"data.min_year", cfg.Data.MinYear, 2000},
		{"data.max_skip_ratio", cfg.Data.MaxSkipRatio, 0.5},
		{"forecast.method", cfg.Forecast.Method, "exponential_smoothing"},
		{"forecast.years_ahead", cfg.Forecast.YearsAhead, 15},
		{"forecast.degree", cfg.Forecast.Degree, 2},
		{"forecast.min_history", cfg.Forecast.MinHistory, 4},
		{"forecast.countries", len(cfg.Forecast.Countries), 2},
		{"forecast.smoother", cfg.Forecast.Smoother.Type, "holt"},
		{"forecast.booster.lambda", cfg.Forecast.Booster.Conf["lambda"], 2},
		{"model.method", cfg.Model.Method, "xgboost_ensemble"},
		{"model.n_estimators", cfg.Model.Params.NEstimators, 50},
		{"model.max_depth", cfg.Model.Params.MaxDepth, 6},
		{"model.lambda", cfg.Model.Params.Lambda, 3.0},
		{"scenarios.first", cfg.Scenarios.List[0].Name, "slow"},
		{"scenarios.second", cfg.Scenarios.List[1].Name, "fast"},
		{"capabilities", cfg.Capabilities.Disable[0], "boosting-extended"},
		{"metrics_sink", len(cfg.Metrics.Sinks) == 1 && cfg.Metrics.Sinks[0].Type == "nop", true},
		{"regions", cfg.Regions["Atlantis"], "Ocean"},
		{"output.dir", cfg.Output.Dir, "out"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v (%T)", c.name, c.got, c.got)
		}
	}
}

func TestLoad_JSONAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"forecast":{"years_ahead":5}}`), 0o644))
	t.Setenv("K_FORECAST__YEARS_AHEAD", "20")
	t.Setenv("K_MODEL__PARAMS__SEED", "9")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Forecast.YearsAhead)
	assert.Equal(t, uint64(9), cfg.Model.Params.Seed)
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Forecast.YearsAhead)
	assert.Equal(t, 1990, cfg.Data.MinYear)
	assert.Equal(t, "random_forest", cfg.Model.Method)
	assert.Equal(t, []string{"low", "baseline", "high"}, []string{cfg.Scenarios.List[0].Name, cfg.Scenarios.List[1].Name, cfg.Scenarios.List[2].Name})
	assert.Len(t, cfg.Forecast.Compare, 6)
	assert.Equal(t, Default().Forecast, cfg.Forecast)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"bad.toml":       "x = 1",
		"method.yaml":    "forecast:\n  method: arima\n",
		"years.yaml":     "forecast:\n  years_ahead: -1\n",
		"capability.yml": "capabilities:\n  disable: [gpu]\n",
		"format.yaml":    "output:\n  formats: [xlsx]\n",
		"model.yaml":     "model:\n  method: linear\n",
		"dup.yaml":       "scenarios:\n  list:\n    - name: a\n    - name: a\n",
	}
	for name, body := range cases {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
		if _, err := Load(path); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestScenariosResolve(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenarios.yaml")
	require.NoError(t, os.WriteFile(path, []byte("zeta: 0.01\nalpha: -0.01\n"), 0o644))
	s, err := ScenariosConfig{File: path}.Resolve()
	require.NoError(t, err)
	require.Len(t, s, 2)
	assert.Equal(t, "zeta", s[0].Name)

	s, err = ScenariosConfig{List: []ScenarioConfig{{Name: "b", Delta: 0.1}}}.Resolve()
	require.NoError(t, err)
	assert.Equal(t, 0.1, s[0].Delta)
}
