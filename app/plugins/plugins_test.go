package plugins

import (
	"bytes"
	"strings"
	"testing"

	"github.com/kilianp07/popcast/core/forecast"
	"github.com/kilianp07/popcast/core/model"
)

func TestBuiltinFormats(t *testing.T) {
	if got := strings.Join(Names(), ","); got != "csv,json,parquet" {
		t.Fatalf("formats = %s", got)
	}
	results := []forecast.Result{{Country: "Peru", Indicator: model.IndicatorPopulation, Requested: "linear", MethodUsed: "linear", Predicted: []model.Point{{Year: 2030, Value: 36}}}}
	for _, name := range Names() {
		f, err := Lookup(strings.ToUpper(name))
		if err != nil {
			t.Fatalf("lookup %s: %v", name, err)
		}
		if f.Ext != "."+name {
			t.Errorf("%s ext = %s", name, f.Ext)
		}
		var buf bytes.Buffer
		if err := f.Export(&buf, results); err != nil {
			t.Fatalf("%s export: %v", name, err)
		}
		if buf.Len() == 0 {
			t.Errorf("%s wrote nothing", name)
		}
	}
}

func TestLookupUnknown(t *testing.T) {
	if _, err := Lookup("xlsx"); err == nil {
		t.Fatal("expected error")
	}
}
