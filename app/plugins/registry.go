// Package plugins maps output format names to exporters.
package plugins

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/kilianp07/popcast/core/forecast"
)

// Exporter writes forecast results in one file format.
type Exporter func(w io.Writer, results []forecast.Result) error

// Format is a registered exporter and the file extension it produces.
type Format struct {
	Ext    string
	Export Exporter
}

var Exporters = map[string]Format{}

// RegisterExporter adds or replaces the exporter for name.
func RegisterExporter(name, ext string, e Exporter) {
	Exporters[strings.ToLower(name)] = Format{Ext: ext, Export: e}
}

// Lookup returns the exporter registered under name.
func Lookup(name string) (Format, error) {
	f, ok := Exporters[strings.ToLower(name)]
	if !ok {
		return Format{}, fmt.Errorf("unknown output format %s", name)
	}
	return f, nil
}

// Names lists the registered formats.
func Names() []string {
	out := make([]string, 0, len(Exporters))
	for n := range Exporters {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
