// Package ingest loads UN Statistical Yearbook population tables.
package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/kilianp07/popcast/core/logger"
	"github.com/kilianp07/popcast/core/model"
	"github.com/kilianp07/popcast/core/region"
)

// Layout names reported in model.LoadReport.
const (
	LayoutLong = "long"
	LayoutWide = "wide"
)

// Options controls parsing and cleaning.
type Options struct {
	// MinYear drops observations before this year. Zero keeps everything.
	MinYear int
	// MaxSkipRatio fails the load when more than this share of data rows is
	// unparseable. Zero uses 0.5.
	MaxSkipRatio float64
	// KeepAggregates keeps world and regional total rows.
	KeepAggregates bool
	Regions        *region.Lookup
	Logger         logger.Logger
	// Source names the input in errors.
	Source string
}

// DefaultOptions returns the loader defaults.
func DefaultOptions() Options {
	return Options{MinYear: 1990, MaxSkipRatio: 0.5}
}

// DataFormatError reports input that could not be turned into a dataset.
type DataFormatError struct {
	Source string
	Reason string
	Report model.LoadReport
}

func (e *DataFormatError) Error() string {
	if e.Source == "" {
		return "data format: " + e.Reason
	}
	return fmt.Sprintf("data format %s: %s", e.Source, e.Reason)
}

// Load reads and parses the file at path.
func Load(path string, opts Options) (*model.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if opts.Source == "" {
		opts.Source = path
	}
	return ParseBytes(data, opts)
}

// Parse reads r to the end and parses it.
func Parse(r io.Reader, opts Options) (*model.Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return ParseBytes(data, opts)
}

// ParseBytes decodes data as UTF-8, or Latin-1 when it is not valid UTF-8,
// skips title rows until a header is recognized and parses the long or wide
// layout.
func ParseBytes(data []byte, opts Options) (*model.Dataset, error) {
	log := logger.OrNop(opts.Logger)
	if opts.MaxSkipRatio <= 0 {
		opts.MaxSkipRatio = 0.5
	}
	report := model.LoadReport{Encoding: "utf-8"}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(data) {
		dec, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return nil, &DataFormatError{Source: opts.Source, Reason: "decode latin-1: " + err.Error(), Report: report}
		}
		data = dec
		report.Encoding = "latin-1"
		log.Debugf("%s: input is not valid UTF-8, decoded as Latin-1", opts.Source)
	}

	rd := csv.NewReader(bytes.NewReader(data))
	rd.FieldsPerRecord = -1
	rd.LazyQuotes = true
	rd.TrimLeadingSpace = true

	var p parser
	title := 0
	for {
		rec, err := rd.Read()
		if errors.Is(err, io.EOF) {
			return nil, &DataFormatError{Source: opts.Source, Reason: "no header row found", Report: report}
		}
		if err != nil {
			return nil, &DataFormatError{Source: opts.Source, Reason: err.Error(), Report: report}
		}
		if p = detect(rec); p != nil {
			break
		}
		title++
	}
	if title > 0 {
		report.Warnings = append(report.Warnings, fmt.Sprintf("skipped %d title row(s)", title))
	}
	report.Layout = p.layout()

	acc := newAccumulator(opts)
	for {
		rec, err := rd.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			report.Rows++
			report.Skipped++
			report.Warnings = append(report.Warnings, err.Error())
			continue
		}
		line, _ := rd.FieldPos(0)
		if blank(rec) {
			continue
		}
		report.Rows++
		if err := p.row(rec, acc); err != nil {
			report.Skipped++
			report.Warnings = append(report.Warnings, fmt.Sprintf("line %d: %v", line, err))
		}
	}
	report.Warnings = append(report.Warnings, acc.warnings...)

	if report.Rows == 0 {
		return nil, &DataFormatError{Source: opts.Source, Reason: "no data rows", Report: report}
	}
	if ratio := report.SkipRatio(); ratio > opts.MaxSkipRatio {
		return nil, &DataFormatError{
			Source: opts.Source,
			Reason: fmt.Sprintf("%d of %d rows unparseable (%.0f%% > %.0f%%)", report.Skipped, report.Rows, ratio*100, opts.MaxSkipRatio*100),
			Report: report,
		}
	}
	ds := &model.Dataset{Countries: acc.records(), Report: report}
	if len(ds.Countries) == 0 {
		return nil, &DataFormatError{Source: opts.Source, Reason: "no usable observations", Report: report}
	}
	log.Infof("%s: loaded %d countries from %d rows (%d skipped, %s layout, %s)",
		opts.Source, len(ds.Countries), report.Rows, report.Skipped, report.Layout, report.Encoding)
	return ds, nil
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
