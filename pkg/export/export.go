// Package export writes forecast results as JSON, CSV or Parquet.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/parquet-go/parquet-go"

	"github.com/kilianp07/popcast/core/forecast"
)

// Record is one forecast value in flat form.
type Record struct {
	Country    string  `json:"country" parquet:"country,snappy,dict"`
	Indicator  string  `json:"indicator" parquet:"indicator,snappy,dict"`
	Requested  string  `json:"requested" parquet:"requested,snappy,dict"`
	MethodUsed string  `json:"method_used" parquet:"method_used,snappy,dict"`
	Fallback   bool    `json:"fallback" parquet:"fallback"`
	Year       int32   `json:"year" parquet:"year,snappy"`
	Value      float64 `json:"value" parquet:"value,snappy"`
}

// Flatten turns results into one record per predicted year, in input order.
func Flatten(results []forecast.Result) []Record {
	var out []Record
	for _, r := range results {
		for _, p := range r.Predicted {
			out = append(out, Record{
				Country:    r.Country,
				Indicator:  string(r.Indicator),
				Requested:  string(r.Requested),
				MethodUsed: string(r.MethodUsed),
				Fallback:   r.Fallback(),
				Year:       int32(p.Year),
				Value:      p.Value,
			})
		}
	}
	return out
}

// WriteJSON writes v to w as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteCSV writes the flattened results to w with a header row.
func WriteCSV(w io.Writer, results []forecast.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"country", "indicator", "requested", "method_used", "fallback", "year", "value"}); err != nil {
		return err
	}
	for _, r := range Flatten(results) {
		rec := []string{
			r.Country,
			r.Indicator,
			r.Requested,
			r.MethodUsed,
			strconv.FormatBool(r.Fallback),
			strconv.Itoa(int(r.Year)),
			strconv.FormatFloat(r.Value, 'f', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteParquet writes the flattened results to w as a Parquet file.
func WriteParquet(w io.Writer, results []forecast.Result) error {
	writer := parquet.NewGenericWriter[Record](w)
	if _, err := writer.Write(Flatten(results)); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	return writer.Close()
}
