package model

// CountryRecord holds the cleaned series for one country or area.
type CountryRecord struct {
	Name       string
	Code       string
	Region     string
	Population TimeSeries // millions
	Density    TimeSeries // persons per km2
}

// Series returns the series for the given indicator.
func (c CountryRecord) Series(ind Indicator) TimeSeries {
	if ind == IndicatorDensity {
		return c.Density
	}
	return c.Population
}

// LoadReport summarizes what ingestion kept and dropped.
type LoadReport struct {
	Layout   string   `json:"layout"`
	Encoding string   `json:"encoding"`
	Rows     int      `json:"rows"`
	Skipped  int      `json:"skipped"`
	Warnings []string `json:"warnings,omitempty"`
}

// SkipRatio is the share of data rows that could not be parsed.
func (r LoadReport) SkipRatio() float64 {
	if r.Rows == 0 {
		return 0
	}
	return float64(r.Skipped) / float64(r.Rows)
}

// Dataset is the cleaned input of an analysis run.
type Dataset struct {
	Countries []CountryRecord
	Report    LoadReport
}

// Country looks up a record by name.
func (d *Dataset) Country(name string) (CountryRecord, bool) {
	for _, c := range d.Countries {
		if c.Name == name {
			return c, true
		}
	}
	return CountryRecord{}, false
}

// Names returns the country names in load order.
func (d *Dataset) Names() []string {
	out := make([]string, len(d.Countries))
	for i, c := range d.Countries {
		out[i] = c.Name
	}
	return out
}
