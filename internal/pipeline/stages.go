package pipeline

import (
	"sort"
	"time"

	"github.com/couchcryptid/storm-impact-report/internal/domain"
)

// Filter keeps records whose begin date is on or after floor and which have
// at least one of the given metrics strictly positive. Records with a zero
// (unparseable) begin date fail the date comparison and are dropped here;
// the loader has already counted them. Input order is preserved so that
// downstream rank tie-breaking stays deterministic.
func Filter(records []domain.NormalizedRecord, floor time.Time, metrics []domain.Metric) []domain.NormalizedRecord {
	out := make([]domain.NormalizedRecord, 0, len(records))
	for _, r := range records {
		if r.BeginDate.Before(floor) {
			continue
		}
		for _, m := range metrics {
			if m.Value(r) > 0 {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

// Aggregate groups records by category label and sums each metric across the
// group. The output is metric-major: for each metric in the given order,
// one MetricTotal per category in order of first appearance in the input.
// A category filtered in because it is positive for one metric still gets a
// (possibly zero) total for the others.
func Aggregate(records []domain.NormalizedRecord, metrics []domain.Metric) []domain.MetricTotal {
	var order []string
	sums := make(map[string]map[domain.Metric]float64)

	for _, r := range records {
		group, ok := sums[r.EventType]
		if !ok {
			group = make(map[domain.Metric]float64, len(metrics))
			sums[r.EventType] = group
			order = append(order, r.EventType)
		}
		for _, m := range metrics {
			group[m] += m.Value(r)
		}
	}

	out := make([]domain.MetricTotal, 0, len(order)*len(metrics))
	for _, m := range metrics {
		for _, category := range order {
			out = append(out, domain.MetricTotal{Category: category, Metric: m, Value: sums[category][m]})
		}
	}
	return out
}

// Significant keeps totals strictly above ratio times the largest total for
// the same metric. The cut is per metric: a category can survive for one
// metric and be dropped for another. A metric whose maximum is zero yields
// nothing (no division happens, so there is nothing to guard).
func Significant(totals []domain.MetricTotal, ratio float64) []domain.MetricTotal {
	maxima := make(map[domain.Metric]float64)
	for _, t := range totals {
		if t.Value > maxima[t.Metric] {
			maxima[t.Metric] = t.Value
		}
	}

	out := make([]domain.MetricTotal, 0, len(totals))
	for _, t := range totals {
		max := maxima[t.Metric]
		if max <= 0 {
			continue
		}
		if t.Value > ratio*max {
			out = append(out, t)
		}
	}
	return out
}

// Relabel rewrites category labels to their canonical names under the given
// merge rules and re-aggregates, summing every total whose label mapped to
// the same canonical name. Output keeps the input's metric-major order, with
// canonical categories in order of first appearance.
func Relabel(totals []domain.MetricTotal, rules []domain.MergeRule) []domain.MetricTotal {
	type key struct {
		metric   domain.Metric
		category string
	}

	var out []domain.MetricTotal
	index := make(map[key]int)

	for _, t := range totals {
		canonical := domain.Canonicalize(t.Category, rules)
		k := key{metric: t.Metric, category: canonical}
		if i, ok := index[k]; ok {
			out[i].Value += t.Value
			continue
		}
		index[k] = len(out)
		out = append(out, domain.MetricTotal{Category: canonical, Metric: t.Metric, Value: t.Value})
	}
	return out
}

// Rank orders each metric group descending by value and assigns 1-based
// ranks. The sort is stable, so ties keep the order in which categories
// first appeared. Ranks within a group are exactly 1..N; entries with rank
// three or better are flagged top-3.
func Rank(totals []domain.MetricTotal) []domain.RankedEntry {
	var metricOrder []domain.Metric
	groups := make(map[domain.Metric][]domain.MetricTotal)
	for _, t := range totals {
		if _, ok := groups[t.Metric]; !ok {
			metricOrder = append(metricOrder, t.Metric)
		}
		groups[t.Metric] = append(groups[t.Metric], t)
	}

	out := make([]domain.RankedEntry, 0, len(totals))
	for _, m := range metricOrder {
		group := groups[m]
		sort.SliceStable(group, func(i, j int) bool { return group[i].Value > group[j].Value })
		for i, t := range group {
			out = append(out, domain.RankedEntry{
				MetricTotal: t,
				Rank:        i + 1,
				Top3:        i < 3,
			})
		}
	}
	return out
}
