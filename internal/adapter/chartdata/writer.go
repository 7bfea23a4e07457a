// Package chartdata serializes ranked report output as chart-data JSON
// documents for the external renderer: one document per chart, one facet per
// metric, one horizontal bar per category.
package chartdata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/storm-impact-report/internal/domain"
)

// Output filenames inside the configured directory.
const (
	HealthFile   = "health_impact.json"
	EconomicFile = "economic_impact.json"
)

// billion scales economic values for display; health values stay in
// original units.
const billion = 1e9

// Chart is one renderable document.
type Chart struct {
	Title       string    `json:"title"`
	Unit        string    `json:"unit"`
	GeneratedAt time.Time `json:"generated_at"`
	DateFloor   string    `json:"date_floor"`
	Facets      []Facet   `json:"facets"`
}

// Facet is one metric's bar group within a chart.
type Facet struct {
	Metric string `json:"metric"`
	Bars   []Bar  `json:"bars"`
}

// Bar is one category's ranked value.
type Bar struct {
	Category string  `json:"category"`
	Value    float64 `json:"value"`
	Rank     int     `json:"rank"`
	Top3     bool    `json:"top_3"`
}

// Writer emits chart-data files into a directory.
// It implements pipeline.ReportWriter.
type Writer struct {
	dir    string
	logger *slog.Logger
}

// NewWriter creates a Writer targeting dir (created on first write).
func NewWriter(dir string, logger *slog.Logger) *Writer {
	return &Writer{dir: dir, logger: logger}
}

// WriteReport writes the health and economic chart documents.
func (w *Writer) WriteReport(ctx context.Context, report domain.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	health := buildChart(report, report.Health,
		"Weather event types most harmful to population health", "count", 1)
	economic := buildChart(report, report.Economic,
		"Weather event types with the greatest economic consequences", "billions USD", billion)

	if err := w.writeJSON(HealthFile, health); err != nil {
		return err
	}
	return w.writeJSON(EconomicFile, economic)
}

// buildChart groups ranked entries into per-metric facets, preserving entry
// order, dividing values by scale for display.
func buildChart(report domain.Report, entries []domain.RankedEntry, title, unit string, scale float64) Chart {
	chart := Chart{
		Title:       title,
		Unit:        unit,
		GeneratedAt: report.GeneratedAt,
		DateFloor:   report.DateFloor.Format("2006-01-02"),
	}

	index := make(map[domain.Metric]int)
	for _, e := range entries {
		i, ok := index[e.Metric]
		if !ok {
			i = len(chart.Facets)
			index[e.Metric] = i
			chart.Facets = append(chart.Facets, Facet{Metric: string(e.Metric)})
		}
		chart.Facets[i].Bars = append(chart.Facets[i].Bars, Bar{
			Category: e.Category,
			Value:    e.Value / scale,
			Rank:     e.Rank,
			Top3:     e.Top3,
		})
	}
	return chart
}

func (w *Writer) writeJSON(name string, chart Chart) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	data, err := json.MarshalIndent(chart, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize chart %s: %w", name, err)
	}
	data = append(data, '\n')

	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write chart %s: %w", name, err)
	}

	w.logger.Info("chart data written", "path", path, "facets", len(chart.Facets))
	return nil
}
