package ingest

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/popcast/core/model"
	"github.com/kilianp07/popcast/core/region"
)

const syb = `T02,"Population, density and surface area",,,,,
Region/Country/Area,,Year,Series,Value,Footnotes,Source
1,"Total, all countries or areas",2010,Population mid-year estimates (millions),"6,985.60",,
4,Afghanistan,1985,Population mid-year estimates (millions),11.00,,
4,Afghanistan,2010,Population mid-year estimates (millions),28.19,,
4,Afghanistan,2010,Population mid-year estimates for males (millions),14.50,,
4,Afghanistan,2010,Population density,43.2,,
4,Afghanistan,2015,Population mid-year estimates (millions),33.75,,
4,Afghanistan,2015,Population density,51.7,,
4,Afghanistan,2015,Surface area (thousand km2),652.9,,
8,Albania,2010,Population mid-year estimates (millions),2.95,,
8,Albania,n/a,Population mid-year estimates (millions),2.90,,
8,Albania,2015,Population mid-year estimates (millions),2.89,,
`

func TestParse_LongLayout(t *testing.T) {
	ds, err := Parse(strings.NewReader(syb), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, LayoutLong, ds.Report.Layout)
	assert.Equal(t, "utf-8", ds.Report.Encoding)
	assert.Equal(t, 11, ds.Report.Rows)
	assert.Equal(t, 1, ds.Report.Skipped)
	assert.Equal(t, []string{"Afghanistan", "Albania"}, ds.Names())

	af, ok := ds.Country("Afghanistan")
	require.True(t, ok)
	assert.Equal(t, "4", af.Code)
	assert.Equal(t, "Asia", af.Region)
	assert.Equal(t, []float64{2010, 2015}, af.Population.Years())
	assert.Equal(t, []float64{28.19, 33.75}, af.Population.Values())
	assert.Equal(t, []float64{43.2, 51.7}, af.Density.Values())

	al, _ := ds.Country("Albania")
	assert.Equal(t, 2, al.Population.Len())
	assert.Equal(t, 0, al.Density.Len())
	assert.Equal(t, "Other", al.Region)
}

func TestParse_KeepAggregatesAndThousands(t *testing.T) {
	opts := DefaultOptions()
	opts.KeepAggregates = true
	opts.MinYear = 0
	ds, err := Parse(strings.NewReader(syb), opts)
	require.NoError(t, err)
	total, ok := ds.Country("Total, all countries or areas")
	require.True(t, ok)
	v, _ := total.Population.ValueAt(2010)
	assert.Equal(t, 6985.6, v)
	af, _ := ds.Country("Afghanistan")
	assert.Equal(t, 3, af.Population.Len())
}

func TestParse_Latin1(t *testing.T) {
	in := "Country,2000,2010\nC\xf4te d'Ivoire,16.8,21.1\n"
	ds, err := ParseBytes([]byte(in), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "latin-1", ds.Report.Encoding)
	assert.Equal(t, []string{"Côte d'Ivoire"}, ds.Names())
}

func TestParse_WideLayout(t *testing.T) {
	in := "World population table\n\nCountry Name,1980,2000,2010,Density (per km2)\n" +
		"France,54.0,\"60,9\",65.0,118.6\n" +
		"Germany,78.3,x,81.8,\n" +
		"Chad,,,,\n"
	opts := DefaultOptions()
	opts.Regions = region.New(map[string]string{"france": "Western Europe"})
	ds, err := Parse(strings.NewReader(in), opts)
	require.NoError(t, err)
	assert.Equal(t, LayoutWide, ds.Report.Layout)
	assert.Equal(t, 3, ds.Report.Rows)
	assert.Equal(t, 1, ds.Report.Skipped)
	assert.Contains(t, ds.Report.Warnings[0], "title row")

	fr, ok := ds.Country("France")
	require.True(t, ok)
	assert.Equal(t, "Western Europe", fr.Region)
	assert.Equal(t, []float64{2000, 2010}, fr.Population.Years())
	assert.Equal(t, 609.0, fr.Population.At(0).Value)
	d, ok := fr.Density.ValueAt(2010)
	require.True(t, ok)
	assert.Equal(t, 118.6, d)

	de, _ := ds.Country("Germany")
	assert.Equal(t, 1, de.Population.Len())
}

func TestParse_SkipRatio(t *testing.T) {
	in := "Region/Country/Area,,Year,Series,Value\n" +
		"1,A,2000,Population mid-year estimates (millions),bad\n" +
		"1,A,2001,Population mid-year estimates (millions),bad\n" +
		"1,A,2002,Population mid-year estimates (millions),3\n"
	_, err := Parse(strings.NewReader(in), DefaultOptions())
	var dfe *DataFormatError
	require.True(t, errors.As(err, &dfe))
	assert.Equal(t, 2, dfe.Report.Skipped)
	assert.Contains(t, err.Error(), "unparseable")

	opts := DefaultOptions()
	opts.MaxSkipRatio = 0.9
	ds, err := Parse(strings.NewReader(in), opts)
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Report.Skipped)
}

func TestParse_NoHeader(t *testing.T) {
	_, err := Parse(strings.NewReader("just,some\ncells,here\n"), DefaultOptions())
	var dfe *DataFormatError
	require.ErrorAs(t, err, &dfe)
	assert.Contains(t, dfe.Reason, "no header")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "syb.csv")
	require.NoError(t, os.WriteFile(path, []byte(syb), 0o600))
	ds, err := Load(path, DefaultOptions())
	require.NoError(t, err)
	assert.Len(t, ds.Countries, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.csv"), DefaultOptions())
	assert.Error(t, err)
}

func TestSeriesIndicator(t *testing.T) {
	cases := map[string]model.Indicator{
		"Population mid-year estimates (millions)": model.IndicatorPopulation,
		"Population density":                       model.IndicatorDensity,
	}
	for in, want := range cases {
		got, ok := seriesIndicator(in)
		if !ok || got != want {
			t.Fatalf("seriesIndicator(%q) = %v %v", in, got, ok)
		}
	}
	for _, in := range []string{"Population mid-year estimates for females (millions)", "Sex ratio"} {
		if _, ok := seriesIndicator(in); ok {
			t.Fatalf("expected %q to be ignored", in)
		}
	}
}
