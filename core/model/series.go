package model

import (
	"fmt"
	"math"
	"sort"
)

// Indicator identifies which measure a series carries.
type Indicator string

const (
	IndicatorPopulation Indicator = "population"
	IndicatorDensity    Indicator = "density"
)

// ParseIndicator validates an indicator name.
func ParseIndicator(s string) (Indicator, error) {
	switch Indicator(s) {
	case IndicatorPopulation, IndicatorDensity:
		return Indicator(s), nil
	default:
		return "", fmt.Errorf("unknown indicator %q", s)
	}
}

// Point is a single yearly observation.
type Point struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

// TimeSeries is an ordered sequence of yearly observations. Years are strictly
// increasing but may contain gaps.
type TimeSeries struct {
	points []Point
}

// NewTimeSeries builds a series from pts. Points are copied and must have
// strictly increasing years.
func NewTimeSeries(pts []Point) (TimeSeries, error) {
	for i := 1; i < len(pts); i++ {
		if pts[i].Year <= pts[i-1].Year {
			return TimeSeries{}, fmt.Errorf("years not strictly increasing at %d (%d after %d)", i, pts[i].Year, pts[i-1].Year)
		}
	}
	cp := make([]Point, len(pts))
	copy(cp, pts)
	return TimeSeries{points: cp}, nil
}

// SeriesFromMap sorts the observations by year and builds a series.
func SeriesFromMap(m map[int]float64) TimeSeries {
	pts := make([]Point, 0, len(m))
	for y, v := range m {
		pts = append(pts, Point{Year: y, Value: v})
	}
	sort.Slice(pts, func(i, j int) bool { return pts[i].Year < pts[j].Year })
	return TimeSeries{points: pts}
}

// Len returns the number of points.
func (s TimeSeries) Len() int { return len(s.points) }

// Points returns a copy of the observations.
func (s TimeSeries) Points() []Point {
	cp := make([]Point, len(s.points))
	copy(cp, s.points)
	return cp
}

// At returns the i-th point.
func (s TimeSeries) At(i int) Point { return s.points[i] }

// Last returns the most recent point. ok is false for an empty series.
func (s TimeSeries) Last() (Point, bool) {
	if len(s.points) == 0 {
		return Point{}, false
	}
	return s.points[len(s.points)-1], true
}

// Valid returns a new series without non-finite values.
func (s TimeSeries) Valid() TimeSeries {
	out := make([]Point, 0, len(s.points))
	for _, p := range s.points {
		if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
			continue
		}
		out = append(out, p)
	}
	return TimeSeries{points: out}
}

// Since returns the points observed in or after year.
func (s TimeSeries) Since(year int) TimeSeries {
	i := sort.Search(len(s.points), func(i int) bool { return s.points[i].Year >= year })
	return TimeSeries{points: append([]Point(nil), s.points[i:]...)}
}

// Years and Values split the series into parallel slices.
func (s TimeSeries) Years() []float64 {
	xs := make([]float64, len(s.points))
	for i, p := range s.points {
		xs[i] = float64(p.Year)
	}
	return xs
}

func (s TimeSeries) Values() []float64 {
	ys := make([]float64, len(s.points))
	for i, p := range s.points {
		ys[i] = p.Value
	}
	return ys
}

// ValueAt returns the value observed in year.
func (s TimeSeries) ValueAt(year int) (float64, bool) {
	i := sort.Search(len(s.points), func(i int) bool { return s.points[i].Year >= year })
	if i < len(s.points) && s.points[i].Year == year {
		return s.points[i].Value, true
	}
	return 0, false
}
