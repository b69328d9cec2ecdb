package ingest

import "strings"

// aggregates are the yearbook rows that total several countries.
var aggregates = map[string]struct{}{
	"total, all countries or areas": {},
	"world":                         {},
	"africa":                        {},
	"northern africa":               {},
	"sub-saharan africa":            {},
	"eastern africa":                {},
	"middle africa":                 {},
	"southern africa":               {},
	"western africa":                {},
	"americas":                      {},
	"northern america":              {},
	"latin america & the caribbean": {},
	"caribbean":                     {},
	"central america":               {},
	"south america":                 {},
	"asia":                          {},
	"central asia":                  {},
	"eastern asia":                  {},
	"south-central asia":            {},
	"south-eastern asia":            {},
	"southern asia":                 {},
	"western asia":                  {},
	"europe":                        {},
	"eastern europe":                {},
	"northern europe":               {},
	"southern europe":               {},
	"western europe":                {},
	"oceania":                       {},
	"australia and new zealand":     {},
	"melanesia":                     {},
	"micronesia":                    {},
	"polynesia":                     {},
}

func isAggregate(name string) bool {
	_, ok := aggregates[strings.ToLower(strings.Join(strings.Fields(name), " "))]
	return ok
}
