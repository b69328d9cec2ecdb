package app

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/components"

	"github.com/kilianp07/popcast/app/plugins"
	"github.com/kilianp07/popcast/core/density"
	"github.com/kilianp07/popcast/core/forecast"
	"github.com/kilianp07/popcast/core/model"
	"github.com/kilianp07/popcast/infra/chart"
	"github.com/kilianp07/popcast/pkg/export"
)

// WriteForecasts exports results in every configured format and renders one
// chart per country next to them. It returns the written paths.
func (s *Service) WriteForecasts(name string, ds *model.Dataset, results []forecast.Result) ([]string, error) {
	var paths []string
	for _, f := range s.cfg.Output.Formats {
		format, err := plugins.Lookup(f)
		if err != nil {
			return paths, err
		}
		p, err := s.create(name+format.Ext, func(w io.Writer) error { return format.Export(w, results) })
		if err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	if s.cfg.Output.DisableCharts || len(results) == 0 {
		return paths, nil
	}

	a := &Analysis{Results: results}
	order, groups := a.ByCountry()
	cs := make([]components.Charter, 0, len(order))
	for _, c := range order {
		rs := groups[c]
		var history model.TimeSeries
		if rec, ok := ds.Country(c); ok {
			history = rec.Series(rs[0].Indicator)
		}
		cs = append(cs, chart.Forecasts(c, history, rs))
	}
	p, err := s.create(name+".html", func(w io.Writer) error { return chart.Render(w, "popcast forecasts", cs...) })
	if err != nil {
		return paths, err
	}
	return append(paths, p), nil
}

// WriteScenario stores the projections as JSON and renders their chart.
func (s *Service) WriteScenario(name string, sr *ScenarioResult) ([]string, error) {
	p, err := s.create(name+".json", func(w io.Writer) error { return export.WriteJSON(w, sr) })
	if err != nil {
		return nil, err
	}
	paths := []string{p}
	if s.cfg.Output.DisableCharts {
		return paths, nil
	}
	line := chart.Scenarios(sr.Country, sr.StartYear, sr.Projections)
	p, err = s.create(name+".html", func(w io.Writer) error { return chart.Render(w, "popcast scenarios", line) })
	if err != nil {
		return paths, err
	}
	return append(paths, p), nil
}

// WriteModel stores the model result as JSON and renders the importances.
func (s *Service) WriteModel(name string, res *density.ModelResult) ([]string, error) {
	p, err := s.create(name+".json", func(w io.Writer) error { return export.WriteJSON(w, res) })
	if err != nil {
		return nil, err
	}
	paths := []string{p}
	if s.cfg.Output.DisableCharts {
		return paths, nil
	}
	p, err = s.create(name+".html", func(w io.Writer) error { return chart.Render(w, "popcast density model", chart.Importances(res)) })
	if err != nil {
		return paths, err
	}
	return append(paths, p), nil
}

func (s *Service) create(file string, write func(io.Writer) error) (path string, err error) {
	if err := os.MkdirAll(s.cfg.Output.Dir, 0o755); err != nil {
		return "", fmt.Errorf("output dir: %w", err)
	}
	path = filepath.Join(s.cfg.Output.Dir, file)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if err := write(f); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	s.log.Debugf("wrote %s", path)
	return path, nil
}
