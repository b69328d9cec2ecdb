// Package region assigns countries to world regions for the density models.
package region

import (
	"sort"
	"strings"
)

// Other is returned for countries without a known region.
const Other = "Other"

var builtin = map[string]string{
	"algeria": "Africa", "angola": "Africa", "egypt": "Africa", "ethiopia": "Africa",
	"ghana": "Africa", "kenya": "Africa", "morocco": "Africa", "mozambique": "Africa",
	"nigeria": "Africa", "senegal": "Africa", "south africa": "Africa", "sudan": "Africa",
	"uganda": "Africa", "united republic of tanzania": "Africa", "zambia": "Africa",
	"democratic republic of the congo": "Africa", "madagascar": "Africa", "cameroon": "Africa",

	"afghanistan": "Asia", "bangladesh": "Asia", "china": "Asia", "india": "Asia",
	"indonesia": "Asia", "iran (islamic republic of)": "Asia", "iraq": "Asia", "israel": "Asia",
	"japan": "Asia", "kazakhstan": "Asia", "malaysia": "Asia", "nepal": "Asia",
	"pakistan": "Asia", "philippines": "Asia", "republic of korea": "Asia", "saudi arabia": "Asia",
	"singapore": "Asia", "sri lanka": "Asia", "thailand": "Asia", "türkiye": "Asia",
	"turkey": "Asia", "viet nam": "Asia", "myanmar": "Asia", "yemen": "Asia",

	"austria": "Europe", "belgium": "Europe", "czechia": "Europe", "denmark": "Europe",
	"finland": "Europe", "france": "Europe", "germany": "Europe", "greece": "Europe",
	"hungary": "Europe", "ireland": "Europe", "italy": "Europe", "netherlands": "Europe",
	"norway": "Europe", "poland": "Europe", "portugal": "Europe", "romania": "Europe",
	"russian federation": "Europe", "spain": "Europe", "sweden": "Europe", "switzerland": "Europe",
	"ukraine": "Europe", "united kingdom": "Europe",

	"canada": "Northern America", "united states of america": "Northern America",

	"argentina": "Latin America", "bolivia (plurinational state of)": "Latin America",
	"brazil": "Latin America", "chile": "Latin America", "colombia": "Latin America",
	"cuba": "Latin America", "ecuador": "Latin America", "guatemala": "Latin America",
	"mexico": "Latin America", "peru": "Latin America", "venezuela (boliv. rep. of)": "Latin America",

	"australia": "Oceania", "new zealand": "Oceania", "papua new guinea": "Oceania", "fiji": "Oceania",
}

// Lookup resolves country names to regions. The zero value uses the built-in
// table only.
type Lookup struct {
	overrides map[string]string
}

// New returns a lookup where overrides take precedence over the built-in
// table. Keys are matched case-insensitively.
func New(overrides map[string]string) *Lookup {
	l := &Lookup{overrides: make(map[string]string, len(overrides))}
	for k, v := range overrides {
		if v = strings.TrimSpace(v); v != "" {
			l.overrides[key(k)] = v
		}
	}
	return l
}

// Of returns the region of country, or Other.
func (l *Lookup) Of(country string) string {
	k := key(country)
	if l != nil {
		if r, ok := l.overrides[k]; ok {
			return r
		}
	}
	if r, ok := builtin[k]; ok {
		return r
	}
	return Other
}

// Regions returns every region the lookup can produce, sorted, Other last.
func (l *Lookup) Regions() []string {
	set := map[string]struct{}{}
	for _, r := range builtin {
		set[r] = struct{}{}
	}
	if l != nil {
		for _, r := range l.overrides {
			set[r] = struct{}{}
		}
	}
	delete(set, Other)
	out := make([]string, 0, len(set)+1)
	for r := range set {
		out = append(out, r)
	}
	sort.Strings(out)
	return append(out, Other)
}

func key(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
