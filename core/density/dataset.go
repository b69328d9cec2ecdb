// Package density trains cross-country models that predict population
// density from year, population and region.
package density

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/kilianp07/popcast/core/model"
	"github.com/kilianp07/popcast/core/region"
)

// Feature names shared by every dataset.
const (
	FeatureYear          = "year"
	FeatureLogPopulation = "log_population"
	regionPrefix         = "region_"
)

// Row is one (country, year) observation.
type Row struct {
	Country    string
	Region     string
	Year       int
	Population float64
	Density    float64
}

// Dataset is the modeling table: feature matrix X and density target Y.
type Dataset struct {
	Features []string
	Rows     []Row
	X        *mat.Dense
	Y        []float64
}

// Len returns the number of rows.
func (d *Dataset) Len() int { return len(d.Rows) }

// BuildDataset joins population and density by year for every country. Rows
// need a positive population and a finite density. When years is not empty
// only those years are kept.
func BuildDataset(ds *model.Dataset, years []int) *Dataset {
	keep := map[int]bool{}
	for _, y := range years {
		keep[y] = true
	}
	var rows []Row
	regions := map[string]struct{}{}
	for _, c := range ds.Countries {
		reg := c.Region
		if reg == "" {
			reg = region.Other
		}
		dens := c.Density.Valid()
		for _, p := range c.Population.Valid().Points() {
			if len(keep) > 0 && !keep[p.Year] {
				continue
			}
			d, ok := dens.ValueAt(p.Year)
			if !ok || p.Value <= 0 {
				continue
			}
			rows = append(rows, Row{Country: c.Name, Region: reg, Year: p.Year, Population: p.Value, Density: d})
			regions[reg] = struct{}{}
		}
	}

	names := make([]string, 0, len(regions))
	for r := range regions {
		names = append(names, r)
	}
	sort.Strings(names)
	col := make(map[string]int, len(names))
	features := []string{FeatureYear, FeatureLogPopulation}
	for i, r := range names {
		col[r] = 2 + i
		features = append(features, regionPrefix+r)
	}

	out := &Dataset{Features: features, Rows: rows, Y: make([]float64, len(rows))}
	if len(rows) == 0 {
		return out
	}
	out.X = mat.NewDense(len(rows), len(features), nil)
	for i, r := range rows {
		out.X.Set(i, 0, float64(r.Year))
		out.X.Set(i, 1, math.Log(r.Population))
		out.X.Set(i, col[r.Region], 1)
		out.Y[i] = r.Density
	}
	return out
}

func (d *Dataset) subset(idx []int) (*mat.Dense, []float64) {
	x := mat.NewDense(len(idx), len(d.Features), nil)
	y := make([]float64, len(idx))
	for i, r := range idx {
		x.SetRow(i, d.X.RawRowView(r))
		y[i] = d.Y[r]
	}
	return x, y
}
