package ingest

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/kilianp07/popcast/core/model"
	"github.com/kilianp07/popcast/core/region"
)

type parser interface {
	layout() string
	row(rec []string, acc *accumulator) error
}

var yearHeader = regexp.MustCompile(`^\d{4}$`)

// detect returns a parser when rec is a recognizable header row.
func detect(rec []string) parser {
	hs := make([]string, len(rec))
	for i, h := range rec {
		hs[i] = strings.ToLower(strings.TrimSpace(h))
	}
	if p := detectLong(hs); p != nil {
		return p
	}
	if p := detectWide(hs); p != nil {
		return p
	}
	return nil
}

func detectLong(hs []string) parser {
	p := &longParser{name: -1, code: -1, year: -1, series: -1, value: -1}
	for i, h := range hs {
		switch {
		case h == "year":
			p.year = i
		case h == "series":
			p.series = i
		case h == "value":
			p.value = i
		case strings.Contains(h, "country") || h == "name":
			if p.name < 0 {
				p.name = i
			}
		}
	}
	if p.year < 0 || p.series < 0 || p.value < 0 || p.name < 0 {
		return nil
	}
	// Yearbook tables put the numeric code under the region header and the
	// name in the following unlabeled column.
	if next := p.name + 1; next < len(hs) && hs[next] == "" {
		p.code, p.name = p.name, next
	}
	return p
}

func detectWide(hs []string) parser {
	p := &wideParser{name: -1, density: -1}
	for i, h := range hs {
		switch {
		case yearHeader.MatchString(h):
			y, _ := strconv.Atoi(h)
			p.years = append(p.years, yearCol{col: i, year: y})
		case strings.Contains(h, "density"):
			p.density = i
		case p.name < 0 && h != "":
			p.name = i
		}
	}
	if len(p.years) < 2 || p.name < 0 {
		return nil
	}
	return p
}

type longParser struct {
	name, code, year, series, value int
}

func (p *longParser) layout() string { return LayoutLong }

func (p *longParser) row(rec []string, acc *accumulator) error {
	name := cell(rec, p.name)
	if name == "" {
		return fmt.Errorf("missing country name")
	}
	ind, ok := seriesIndicator(cell(rec, p.series))
	if !ok {
		return nil
	}
	year, err := parseYear(cell(rec, p.year))
	if err != nil {
		return err
	}
	v, err := parseNumber(cell(rec, p.value))
	if err != nil {
		return fmt.Errorf("value: %w", err)
	}
	acc.add(name, cell(rec, p.code), ind, year, v)
	return nil
}

// seriesIndicator maps a yearbook series label to an indicator. Sex-specific
// population series are ignored.
func seriesIndicator(s string) (model.Indicator, bool) {
	l := strings.ToLower(s)
	switch {
	case strings.Contains(l, "density"):
		return model.IndicatorDensity, true
	case strings.Contains(l, "population") && strings.Contains(l, "mid-year") &&
		!strings.Contains(l, "males"):
		return model.IndicatorPopulation, true
	}
	return "", false
}

type yearCol struct {
	col  int
	year int
}

type wideParser struct {
	name    int
	density int
	years   []yearCol
}

func (p *wideParser) layout() string { return LayoutWide }

func (p *wideParser) row(rec []string, acc *accumulator) error {
	name := cell(rec, p.name)
	if name == "" {
		return fmt.Errorf("missing country name")
	}
	kept, bad, latest := 0, 0, 0
	for _, yc := range p.years {
		raw := cell(rec, yc.col)
		if raw == "" {
			continue
		}
		v, err := parseNumber(raw)
		if err != nil {
			bad++
			continue
		}
		acc.add(name, "", model.IndicatorPopulation, yc.year, v)
		kept++
		latest = max(latest, yc.year)
	}
	if kept == 0 {
		if bad > 0 {
			return fmt.Errorf("%s: no parseable year value", name)
		}
		return fmt.Errorf("%s: no values", name)
	}
	if bad > 0 {
		acc.warnf("%s: %d unparseable year value(s) ignored", name, bad)
	}
	if p.density >= 0 {
		if raw := cell(rec, p.density); raw != "" {
			d, err := parseNumber(raw)
			if err != nil {
				acc.warnf("%s: density: %v", name, err)
			} else {
				acc.add(name, "", model.IndicatorDensity, latest, d)
			}
		}
	}
	return nil
}

func cell(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func parseYear(s string) (int, error) {
	y, err := strconv.Atoi(s)
	if err != nil || y < 1000 || y > 9999 {
		return 0, fmt.Errorf("invalid year %q", s)
	}
	return y, nil
}

var numberCleaner = strings.NewReplacer(",", "", " ", "", "\u00a0", "", "\u202f", "", "'", "")

// parseNumber strips thousands separators before parsing.
func parseNumber(s string) (float64, error) {
	clean := numberCleaner.Replace(s)
	if clean == "" {
		return 0, fmt.Errorf("empty number")
	}
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return v, nil
}

type obs struct {
	name, code string
	pop, dens  map[int]float64
}

type accumulator struct {
	opts     Options
	order    []string
	byName   map[string]*obs
	warnings []string
}

func newAccumulator(opts Options) *accumulator {
	return &accumulator{opts: opts, byName: map[string]*obs{}}
}

func (a *accumulator) warnf(format string, args ...any) {
	a.warnings = append(a.warnings, fmt.Sprintf(format, args...))
}

func (a *accumulator) add(name, code string, ind model.Indicator, year int, v float64) {
	if a.opts.MinYear > 0 && year < a.opts.MinYear {
		return
	}
	if !a.opts.KeepAggregates && isAggregate(name) {
		return
	}
	o, ok := a.byName[name]
	if !ok {
		o = &obs{name: name, code: code, pop: map[int]float64{}, dens: map[int]float64{}}
		a.byName[name] = o
		a.order = append(a.order, name)
	}
	m := o.pop
	if ind == model.IndicatorDensity {
		m = o.dens
	}
	if _, dup := m[year]; dup {
		a.warnf("%s: duplicate %s for %d, keeping first", name, ind, year)
		return
	}
	m[year] = v
}

func (a *accumulator) records() []model.CountryRecord {
	reg := a.opts.Regions
	if reg == nil {
		reg = region.New(nil)
	}
	out := make([]model.CountryRecord, 0, len(a.order))
	for _, n := range a.order {
		o := a.byName[n]
		out = append(out, model.CountryRecord{
			Name:       o.name,
			Code:       o.code,
			Region:     reg.Of(o.name),
			Population: model.SeriesFromMap(o.pop),
			Density:    model.SeriesFromMap(o.dens),
		})
	}
	return out
}
