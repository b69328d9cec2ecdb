// Package chart renders forecast, scenario and feature importance charts as
// standalone HTML pages.
package chart

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kilianp07/popcast/core/density"
	"github.com/kilianp07/popcast/core/forecast"
	"github.com/kilianp07/popcast/core/model"
	"github.com/kilianp07/popcast/core/scenario"
)

// Forecasts draws the observed series and one line per forecast result on a
// shared year axis. Years missing from a line are left as gaps.
func Forecasts(country string, history model.TimeSeries, results []forecast.Result) *charts.Line {
	observed := history.Valid().Points()
	years := map[int]struct{}{}
	for _, p := range observed {
		years[p.Year] = struct{}{}
	}
	for _, r := range results {
		for _, p := range r.Predicted {
			years[p.Year] = struct{}{}
		}
	}
	axis := sortedYears(years)

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: country, Subtitle: "observed and forecast"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Year"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Value"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	line.SetXAxis(labels(axis)).AddSeries("observed", lineData(axis, observed))
	for _, r := range results {
		name := string(r.MethodUsed)
		if r.Fallback() {
			name = fmt.Sprintf("%s (for %s)", r.MethodUsed, r.Requested)
		}
		line.AddSeries(name, lineData(axis, r.Predicted))
	}
	return line
}

// Scenarios draws one compound-growth trajectory per scenario, offset so
// year 0 is startYear.
func Scenarios(country string, startYear int, proj scenario.Projections) *charts.Line {
	n := 0
	for _, p := range proj {
		n = max(n, len(p.Points))
	}
	axis := make([]int, n)
	for i := range axis {
		axis[i] = startYear + i
	}
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: country, Subtitle: "growth scenarios"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Year"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	line.SetXAxis(labels(axis))
	for _, p := range proj {
		shifted := make([]model.Point, len(p.Points))
		for i, pt := range p.Points {
			shifted[i] = model.Point{Year: startYear + pt.Year, Value: pt.Value}
		}
		line.AddSeries(fmt.Sprintf("%s (%.2f%%)", p.Name, p.Growth*100), lineData(axis, shifted))
	}
	return line
}

// Importances draws the feature importances of a density model as bars.
func Importances(res *density.ModelResult) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Feature importance", Subtitle: string(res.MethodUsed)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Gain share"}),
	)
	names := make([]string, len(res.FeatureImportances))
	data := make([]opts.BarData, len(res.FeatureImportances))
	for i, imp := range res.FeatureImportances {
		names[i] = imp.Feature
		data[i] = opts.BarData{Value: imp.Value}
	}
	bar.SetXAxis(names).AddSeries("importance", data)
	return bar
}

// Render writes the charts as one HTML page to w.
func Render(w io.Writer, title string, cs ...components.Charter) error {
	page := components.NewPage()
	page.PageTitle = title
	page.AddCharts(cs...)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// HTML renders the charts into a string.
func HTML(title string, cs ...components.Charter) (string, error) {
	var buf bytes.Buffer
	if err := Render(&buf, title, cs...); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func sortedYears(set map[int]struct{}) []int {
	out := make([]int, 0, len(set))
	for y := range set {
		out = append(out, y)
	}
	sort.Ints(out)
	return out
}

func labels(years []int) []string {
	out := make([]string, len(years))
	for i, y := range years {
		out[i] = strconv.Itoa(y)
	}
	return out
}

func lineData(axis []int, pts []model.Point) []opts.LineData {
	byYear := make(map[int]float64, len(pts))
	for _, p := range pts {
		byYear[p.Year] = p.Value
	}
	out := make([]opts.LineData, len(axis))
	for i, y := range axis {
		if v, ok := byYear[y]; ok {
			out[i] = opts.LineData{Value: v}
		} else {
			out[i] = opts.LineData{Value: nil}
		}
	}
	return out
}
