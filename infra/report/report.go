// Package report prints run summaries as terminal tables.
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/kilianp07/popcast/core/capability"
	"github.com/kilianp07/popcast/core/density"
	"github.com/kilianp07/popcast/core/forecast"
	"github.com/kilianp07/popcast/core/model"
	"github.com/kilianp07/popcast/core/scenario"
)

// Printer writes tables to one writer.
type Printer struct {
	w      io.Writer
	yellow func(...any) string
	green  func(...any) string
	red    func(...any) string
}

// NewPrinter returns a printer. Colors highlight fallbacks and failures when
// useColors is set.
func NewPrinter(w io.Writer, useColors bool) *Printer {
	p := &Printer{w: w, yellow: fmt.Sprint, green: fmt.Sprint, red: fmt.Sprint}
	if useColors {
		p.yellow = color.New(color.FgYellow).SprintFunc()
		p.green = color.New(color.FgGreen).SprintFunc()
		p.red = color.New(color.FgRed).SprintFunc()
	}
	return p
}

func (p *Printer) table(headers []string, data [][]string) error {
	table := tablewriter.NewWriter(p.w)
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// Failure is a country whose forecast could not be produced.
type Failure struct {
	Country string
	Err     error
}

// Forecasts prints one row per result with the last predicted value and the
// in-sample diagnostics. Substituted methods are highlighted.
func (p *Printer) Forecasts(results []forecast.Result, failures []Failure) error {
	headers := []string{"Country", "Requested", "Used", "Final year", "Final value", "MAE", "RMSE", "R2", "Warnings"}
	var data [][]string
	for _, r := range results {
		used := string(r.MethodUsed)
		if r.MethodUsed == forecast.MethodPolynomial && r.Degree > 0 {
			used = fmt.Sprintf("%s(%d)", used, r.Degree)
		}
		if r.Fallback() {
			used = p.yellow(used)
		} else {
			used = p.green(used)
		}
		year, value := "-", "-"
		if n := len(r.Predicted); n > 0 {
			year = strconv.Itoa(r.Predicted[n-1].Year)
			value = formatFloat(r.Predicted[n-1].Value)
		}
		mae, rmse, r2 := "-", "-", "-"
		if d := r.Diagnostics; d != nil {
			mae, rmse, r2 = formatFloat(d.MAE), formatFloat(d.RMSE), formatFloat(d.R2)
		}
		data = append(data, []string{r.Country, string(r.Requested), used, year, value, mae, rmse, r2, strconv.Itoa(len(r.Warnings))})
	}
	for _, f := range failures {
		data = append(data, []string{f.Country, "", p.red("failed"), "-", "-", "-", "-", "-", p.red(f.Err.Error())})
	}
	if err := p.table(headers, data); err != nil {
		return err
	}
	fallbacks := 0
	for _, r := range results {
		if r.Fallback() {
			fallbacks++
		}
	}
	_, err := fmt.Fprintf(p.w, "%d forecasts, %d with fallback, %d failed\n", len(results), fallbacks, len(failures))
	return err
}

// Warnings lists every warning of the results, prefixed with the country.
func (p *Printer) Warnings(results []forecast.Result) error {
	for _, r := range results {
		for _, w := range r.Warnings {
			if _, err := fmt.Fprintf(p.w, "%s %s: %s\n", p.yellow("warning"), r.Country, w); err != nil {
				return err
			}
		}
	}
	return nil
}

// Scenarios prints a year by scenario table. Year 0 is startYear.
func (p *Printer) Scenarios(startYear int, proj scenario.Projections) error {
	headers := []string{"Year"}
	n := 0
	for _, pr := range proj {
		headers = append(headers, fmt.Sprintf("%s (%+.2f%%)", pr.Name, pr.Growth*100))
		n = max(n, len(pr.Points))
	}
	data := make([][]string, n)
	for t := 0; t < n; t++ {
		row := []string{strconv.Itoa(startYear + t)}
		for _, pr := range proj {
			if t < len(pr.Points) {
				row = append(row, formatFloat(pr.Points[t].Value))
			} else {
				row = append(row, "-")
			}
		}
		data[t] = row
	}
	return p.table(headers, data)
}

// Model prints the scores and feature importances of a density model.
func (p *Printer) Model(res *density.ModelResult) error {
	used := string(res.MethodUsed)
	if res.MethodUsed != res.Requested {
		used = p.yellow(used)
	}
	if _, err := fmt.Fprintf(p.w, "density model %s (requested %s): MAE %s  RMSE %s  R2 %s  train rows %d  test rows %d\n",
		used, res.Requested, formatFloat(res.Diagnostics.MAE), formatFloat(res.Diagnostics.RMSE),
		formatFloat(res.Diagnostics.R2), res.TrainRows, len(res.TestActual)); err != nil {
		return err
	}
	data := make([][]string, len(res.FeatureImportances))
	for i, imp := range res.FeatureImportances {
		data[i] = []string{strconv.Itoa(i + 1), imp.Feature, fmt.Sprintf("%.4f", imp.Value)}
	}
	return p.table([]string{"Rank", "Feature", "Importance"}, data)
}

// Capabilities prints every known capability and whether it is enabled.
func (p *Printer) Capabilities(caps capability.Set, reasons map[capability.Name]string) error {
	var data [][]string
	for _, n := range capability.Known {
		state := p.green("enabled")
		if !caps.Has(n) {
			state = p.red("disabled")
		}
		data = append(data, []string{string(n), state, reasons[n]})
	}
	return p.table([]string{"Capability", "State", "Detail"}, data)
}

// Dataset prints what ingestion kept.
func (p *Printer) Dataset(ds *model.Dataset) error {
	r := ds.Report
	_, err := fmt.Fprintf(p.w, "loaded %d countries (%s layout, %s): %d rows, %d skipped\n",
		len(ds.Countries), r.Layout, r.Encoding, r.Rows, r.Skipped)
	return err
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
