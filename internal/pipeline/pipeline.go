package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/storm-impact-report/internal/domain"
	"github.com/couchcryptid/storm-impact-report/internal/observability"
)

// Loader reads the raw dataset into memory.
type Loader interface {
	Load(ctx context.Context) ([]domain.Record, domain.LoadStats, error)
}

// ReportWriter emits the final ranked report for the external renderer.
type ReportWriter interface {
	WriteReport(ctx context.Context, report domain.Report) error
}

// analysis bundles the metric set and merge rules for one half of the report.
type analysis struct {
	name    string
	metrics []domain.Metric
	rules   []domain.MergeRule
}

// Pipeline orchestrates the load-normalize-filter-aggregate-rank run.
type Pipeline struct {
	loader  Loader
	writer  ReportWriter
	logger  *slog.Logger
	metrics *observability.Metrics
	floor   time.Time
	ratio   float64
}

// New creates a Pipeline over the given date floor and significance ratio.
func New(loader Loader, writer ReportWriter, logger *slog.Logger, metrics *observability.Metrics, floor time.Time, ratio float64) *Pipeline {
	return &Pipeline{
		loader:  loader,
		writer:  writer,
		logger:  logger,
		metrics: metrics,
		floor:   floor,
		ratio:   ratio,
	}
}

// Run executes the full report: one dataset load, then the health and
// economic analyses, then one report write. Any load or write error is
// fatal; the transforms themselves are pure and cannot fail.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("report run started",
		"date_floor", p.floor.Format("2006-01-02"),
		"significance_ratio", p.ratio,
	)

	records, stats, err := p.loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	p.metrics.RecordsLoaded.Add(float64(stats.Rows))
	p.metrics.DateParseErrors.Add(float64(stats.DateParseErrors))
	p.logger.Info("dataset loaded", "rows", stats.Rows, "date_parse_errors", stats.DateParseErrors)

	normalized := make([]domain.NormalizedRecord, len(records))
	for i, r := range records {
		normalized[i] = domain.NormalizeRecord(r)
	}

	analyses := []analysis{
		{name: "health", metrics: domain.HealthMetrics, rules: domain.HealthMergeRules},
		{name: "economic", metrics: domain.EconomicMetrics, rules: domain.EconomicMergeRules},
	}

	ranked := make(map[string][]domain.RankedEntry, len(analyses))
	for _, a := range analyses {
		if err := ctx.Err(); err != nil {
			return err
		}
		ranked[a.name] = p.analyze(a, normalized)
	}

	report := domain.NewReport(p.floor, p.ratio, ranked["health"], ranked["economic"])
	if err := p.writer.WriteReport(ctx, report); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	p.metrics.ReportsWritten.Inc()

	p.logger.Info("report run finished",
		"health_entries", len(report.Health),
		"economic_entries", len(report.Economic),
	)
	return nil
}

// analyze runs the filter → aggregate → threshold → relabel → rank sequence
// for one analysis over the already-normalized table.
func (p *Pipeline) analyze(a analysis, records []domain.NormalizedRecord) []domain.RankedEntry {
	start := time.Now()

	filtered := Filter(records, p.floor, a.metrics)
	p.metrics.RecordsRetained.WithLabelValues(a.name).Add(float64(len(filtered)))

	totals := Aggregate(filtered, a.metrics)
	significant := Significant(totals, p.ratio)
	merged := Relabel(significant, a.rules)
	entries := Rank(merged)

	for _, m := range a.metrics {
		var n int
		for _, e := range entries {
			if e.Metric == m {
				n++
			}
		}
		p.metrics.SignificantCategories.WithLabelValues(a.name, string(m)).Set(float64(n))
	}
	p.metrics.AnalysisDuration.WithLabelValues(a.name).Observe(time.Since(start).Seconds())

	p.logger.Info("analysis complete",
		"analysis", a.name,
		"records_retained", len(filtered),
		"categories_aggregated", len(totals),
		"categories_significant", len(significant),
		"categories_ranked", len(entries),
	)
	return entries
}
