// Package csvfile loads the NOAA storm-events dataset from a local CSV file,
// optionally gzip- or bzip2-compressed. Fetching and caching the archive is
// an upstream concern; this adapter only ever sees a path on disk.
package csvfile

import (
	"compress/bzip2"
	"compress/gzip"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/storm-impact-report/internal/domain"
)

// Column names as they appear in the dataset header.
const (
	colEventType     = "EVTYPE"
	colBeginDate     = "BGN_DATE"
	colFatalities    = "FATALITIES"
	colInjuries      = "INJURIES"
	colPropertyValue = "PROPDMG"
	colPropertyScale = "PROPDMGEXP"
	colCropValue     = "CROPDMG"
	colCropScale     = "CROPDMGEXP"
)

// dateLayouts are tried in order against BGN_DATE values. The dataset uses
// "4/18/1950 0:00:00"; the other layouts cover re-exported fixtures.
var dateLayouts = []string{
	"1/2/2006 15:04:05",
	"1/2/2006",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ctxCheckInterval is how many rows pass between context checks while
// streaming the file.
const ctxCheckInterval = 8192

// Loader reads storm-event records from a CSV file.
// It implements pipeline.Loader.
type Loader struct {
	path   string
	logger *slog.Logger
}

// NewLoader creates a Loader for the dataset at path.
func NewLoader(path string, logger *slog.Logger) *Loader {
	return &Loader{path: path, logger: logger}
}

// Load streams the whole file into memory. Every row becomes a Record: rows
// with unparseable begin dates are kept with a zero date and counted in the
// stats (the date-window filter drops them later), and unparseable numerics
// read as zero. Only open/read/decode errors are fatal.
func (l *Loader) Load(ctx context.Context) ([]domain.Record, domain.LoadStats, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, domain.LoadStats{}, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	rc, err := decompressed(f, l.path)
	if err != nil {
		return nil, domain.LoadStats{}, err
	}

	reader := csv.NewReader(rc)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, domain.LoadStats{}, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(h)] = i
	}
	for _, required := range []string{colEventType, colBeginDate} {
		if _, ok := cols[required]; !ok {
			return nil, domain.LoadStats{}, fmt.Errorf("dataset missing column %q", required)
		}
	}

	var records []domain.Record
	var stats domain.LoadStats

	for {
		if stats.Rows%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, domain.LoadStats{}, err
			}
		}

		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, domain.LoadStats{}, fmt.Errorf("read row %d: %w", stats.Rows+2, err)
		}

		begin, ok := parseBeginDate(get(row, cols, colBeginDate))
		if !ok {
			stats.DateParseErrors++
		}

		records = append(records, domain.Record{
			EventType:           get(row, cols, colEventType),
			BeginDate:           begin,
			Fatalities:          parseCount(get(row, cols, colFatalities)),
			Injuries:            parseCount(get(row, cols, colInjuries)),
			PropertyDamageValue: parseValue(get(row, cols, colPropertyValue)),
			PropertyDamageScale: get(row, cols, colPropertyScale),
			CropDamageValue:     parseValue(get(row, cols, colCropValue)),
			CropDamageScale:     get(row, cols, colCropScale),
		})
		stats.Rows++
	}

	l.logger.Debug("dataset read", "path", l.path, "rows", stats.Rows, "date_parse_errors", stats.DateParseErrors)
	return records, stats, nil
}

// decompressed wraps the file reader according to the path's extension.
func decompressed(f *os.File, path string) (io.Reader, error) {
	switch {
	case strings.HasSuffix(path, ".bz2"):
		return bzip2.NewReader(f), nil
	case strings.HasSuffix(path, ".gz"):
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip stream: %w", err)
		}
		return gz, nil
	default:
		return f, nil
	}
}

func get(row []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// parseBeginDate tries each known layout; ok is false when none matched.
func parseBeginDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// parseCount reads a non-negative integer count that may be written with a
// decimal point ("0.00"). Unparseable or negative values read as zero.
func parseCount(s string) int {
	v := parseValue(s)
	if v < 0 {
		return 0
	}
	return int(v)
}

// parseValue parses a string as float64, returning 0 on failure.
func parseValue(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}
