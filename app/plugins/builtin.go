package plugins

import (
	"io"

	"github.com/kilianp07/popcast/core/forecast"
	"github.com/kilianp07/popcast/pkg/export"
)

func init() {
	RegisterExporter("json", ".json", func(w io.Writer, results []forecast.Result) error {
		return export.WriteJSON(w, results)
	})
	RegisterExporter("csv", ".csv", export.WriteCSV)
	RegisterExporter("parquet", ".parquet", export.WriteParquet)
}
