package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/storm-impact-report/internal/domain"
)

var testFloor = time.Date(1996, 1, 1, 0, 0, 0, 0, time.UTC)

func rec(category string, date time.Time, fatalities, injuries int, prop, crop float64) domain.NormalizedRecord {
	return domain.NormalizedRecord{
		EventType:      category,
		BeginDate:      date,
		Fatalities:     fatalities,
		Injuries:       injuries,
		PropertyDamage: prop,
		CropDamage:     crop,
	}
}

func TestFilter(t *testing.T) {
	inWindow := time.Date(2001, 7, 4, 0, 0, 0, 0, time.UTC)
	before := time.Date(1980, 7, 4, 0, 0, 0, 0, time.UTC)

	t.Run("drops records before the floor", func(t *testing.T) {
		records := []domain.NormalizedRecord{
			rec("tornado", before, 5, 0, 0, 0),
			rec("tornado", inWindow, 5, 0, 0, 0),
		}

		out := Filter(records, testFloor, domain.HealthMetrics)

		require.Len(t, out, 1)
		assert.Equal(t, inWindow, out[0].BeginDate)
	})

	t.Run("floor itself is inside the window", func(t *testing.T) {
		records := []domain.NormalizedRecord{rec("heat", testFloor, 1, 0, 0, 0)}
		assert.Len(t, Filter(records, testFloor, domain.HealthMetrics), 1)
	})

	t.Run("zero date from a failed parse is dropped", func(t *testing.T) {
		records := []domain.NormalizedRecord{rec("heat", time.Time{}, 10, 10, 0, 0)}
		assert.Empty(t, Filter(records, testFloor, domain.HealthMetrics))
	})

	t.Run("requires a strictly positive selected metric", func(t *testing.T) {
		// heat has nothing positive; flood and hail are only economically
		// positive; tornado only health; lightning both.
		records := []domain.NormalizedRecord{
			rec("heat", inWindow, 0, 0, 0, 0),
			rec("flood", inWindow, 0, 0, 500, 0),
			rec("tornado", inWindow, 0, 3, 0, 0),
			rec("hail", inWindow, 0, 0, 0, 2000),
			rec("lightning", inWindow, 1, 0, 100, 0),
		}

		health := Filter(records, testFloor, domain.HealthMetrics)
		economic := Filter(records, testFloor, domain.EconomicMetrics)

		assert.Len(t, health, 2)
		assert.Len(t, economic, 3)
	})

	t.Run("preserves input order", func(t *testing.T) {
		records := []domain.NormalizedRecord{
			rec("b", inWindow, 1, 0, 0, 0),
			rec("a", inWindow, 1, 0, 0, 0),
			rec("c", inWindow, 1, 0, 0, 0),
		}

		out := Filter(records, testFloor, domain.HealthMetrics)

		require.Len(t, out, 3)
		assert.Equal(t, "b", out[0].EventType)
		assert.Equal(t, "a", out[1].EventType)
		assert.Equal(t, "c", out[2].EventType)
	})
}

func TestAggregate(t *testing.T) {
	date := time.Date(2002, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("sums per category and metric", func(t *testing.T) {
		records := []domain.NormalizedRecord{
			rec("tornado", date, 2, 10, 0, 0),
			rec("heat", date, 5, 1, 0, 0),
			rec("tornado", date, 3, 20, 0, 0),
		}

		totals := Aggregate(records, domain.HealthMetrics)

		// Metric-major, categories in first-appearance order.
		require.Len(t, totals, 4)
		assert.Equal(t, domain.MetricTotal{Category: "tornado", Metric: domain.MetricFatalities, Value: 5}, totals[0])
		assert.Equal(t, domain.MetricTotal{Category: "heat", Metric: domain.MetricFatalities, Value: 5}, totals[1])
		assert.Equal(t, domain.MetricTotal{Category: "tornado", Metric: domain.MetricInjuries, Value: 30}, totals[2])
		assert.Equal(t, domain.MetricTotal{Category: "heat", Metric: domain.MetricInjuries, Value: 1}, totals[3])
	})

	t.Run("conserves sums per metric", func(t *testing.T) {
		records := []domain.NormalizedRecord{
			rec("a", date, 1, 2, 0, 0),
			rec("b", date, 3, 0, 0, 0),
			rec("a", date, 0, 7, 0, 0),
			rec("c", date, 2, 2, 0, 0),
		}

		var wantFatal, wantInj float64
		for _, r := range records {
			wantFatal += domain.MetricFatalities.Value(r)
			wantInj += domain.MetricInjuries.Value(r)
		}

		var gotFatal, gotInj float64
		for _, tot := range Aggregate(records, domain.HealthMetrics) {
			switch tot.Metric {
			case domain.MetricFatalities:
				gotFatal += tot.Value
			case domain.MetricInjuries:
				gotInj += tot.Value
			}
		}

		assert.Equal(t, wantFatal, gotFatal)
		assert.Equal(t, wantInj, gotInj)
	})

	t.Run("empty input yields no totals", func(t *testing.T) {
		assert.Empty(t, Aggregate(nil, domain.HealthMetrics))
	})
}

func TestSignificant(t *testing.T) {
	t.Run("keeps totals above the per-metric cut", func(t *testing.T) {
		totals := []domain.MetricTotal{
			{Category: "tornado", Metric: domain.MetricFatalities, Value: 100},
			{Category: "heat", Metric: domain.MetricFatalities, Value: 6}, // above 5
			{Category: "hail", Metric: domain.MetricFatalities, Value: 5}, // exactly the cut: dropped
			{Category: "fog", Metric: domain.MetricFatalities, Value: 1},  // below
		}

		out := Significant(totals, 0.05)

		require.Len(t, out, 2)
		assert.Equal(t, "tornado", out[0].Category)
		assert.Equal(t, "heat", out[1].Category)
	})

	t.Run("threshold invariant holds for kept and dropped", func(t *testing.T) {
		totals := []domain.MetricTotal{
			{Category: "a", Metric: domain.MetricInjuries, Value: 200},
			{Category: "b", Metric: domain.MetricInjuries, Value: 11},
			{Category: "c", Metric: domain.MetricInjuries, Value: 10},
			{Category: "d", Metric: domain.MetricInjuries, Value: 9},
		}

		kept := Significant(totals, 0.05)
		keptSet := make(map[string]bool)
		for _, e := range kept {
			keptSet[e.Category] = true
		}

		const max = 200.0
		for _, tot := range totals {
			if keptSet[tot.Category] {
				assert.Greater(t, tot.Value, 0.05*max)
			} else {
				assert.LessOrEqual(t, tot.Value, 0.05*max)
			}
		}
	})

	t.Run("cut is per metric", func(t *testing.T) {
		totals := []domain.MetricTotal{
			{Category: "tornado", Metric: domain.MetricFatalities, Value: 100},
			{Category: "fog", Metric: domain.MetricFatalities, Value: 1},
			{Category: "tornado", Metric: domain.MetricInjuries, Value: 10},
			{Category: "fog", Metric: domain.MetricInjuries, Value: 8},
		}

		out := Significant(totals, 0.05)

		require.Len(t, out, 3)
		// fog failed fatalities but passed injuries.
		assert.Equal(t, domain.MetricInjuries, out[2].Metric)
		assert.Equal(t, "fog", out[2].Category)
	})

	t.Run("metric with zero maximum yields nothing", func(t *testing.T) {
		totals := []domain.MetricTotal{
			{Category: "a", Metric: domain.MetricCropDamage, Value: 0},
			{Category: "b", Metric: domain.MetricCropDamage, Value: 0},
		}

		assert.Empty(t, Significant(totals, 0.05))
	})
}

func TestRelabel(t *testing.T) {
	t.Run("merges synonymous categories and sums values", func(t *testing.T) {
		totals := []domain.MetricTotal{
			{Category: "hurricane", Metric: domain.MetricPropertyDamage, Value: 10},
			{Category: "tropical storm", Metric: domain.MetricPropertyDamage, Value: 4},
		}

		out := Relabel(totals, domain.EconomicMergeRules)

		require.Len(t, out, 1)
		assert.Equal(t, "hurricane/tropical storm", out[0].Category)
		assert.Equal(t, 14.0, out[0].Value)
	})

	t.Run("unmatched labels pass through", func(t *testing.T) {
		totals := []domain.MetricTotal{
			{Category: "hail", Metric: domain.MetricPropertyDamage, Value: 7},
		}

		out := Relabel(totals, domain.EconomicMergeRules)

		require.Len(t, out, 1)
		assert.Equal(t, "hail", out[0].Category)
	})

	t.Run("merged label keeps first-appearance position", func(t *testing.T) {
		totals := []domain.MetricTotal{
			{Category: "flash flood", Metric: domain.MetricFatalities, Value: 3},
			{Category: "tornado", Metric: domain.MetricFatalities, Value: 5},
			{Category: "flood", Metric: domain.MetricFatalities, Value: 2},
		}

		out := Relabel(totals, domain.HealthMergeRules)

		require.Len(t, out, 2)
		assert.Equal(t, domain.MetricTotal{Category: "flood", Metric: domain.MetricFatalities, Value: 5}, out[0])
		assert.Equal(t, domain.MetricTotal{Category: "tornado", Metric: domain.MetricFatalities, Value: 5}, out[1])
	})

	t.Run("merging stays within a metric", func(t *testing.T) {
		totals := []domain.MetricTotal{
			{Category: "hurricane", Metric: domain.MetricPropertyDamage, Value: 10},
			{Category: "tropical storm", Metric: domain.MetricCropDamage, Value: 4},
		}

		out := Relabel(totals, domain.EconomicMergeRules)

		require.Len(t, out, 2)
		assert.Equal(t, 10.0, out[0].Value)
		assert.Equal(t, 4.0, out[1].Value)
	})
}

func TestRank(t *testing.T) {
	t.Run("ranks descending with top-3 flags", func(t *testing.T) {
		totals := []domain.MetricTotal{
			{Category: "flood", Metric: domain.MetricFatalities, Value: 10},
			{Category: "heat", Metric: domain.MetricFatalities, Value: 100},
			{Category: "tornado", Metric: domain.MetricFatalities, Value: 50},
			{Category: "hail", Metric: domain.MetricFatalities, Value: 8},
		}

		out := Rank(totals)

		require.Len(t, out, 4)
		assert.Equal(t, "heat", out[0].Category)
		assert.Equal(t, 1, out[0].Rank)
		assert.True(t, out[0].Top3)
		assert.Equal(t, "tornado", out[1].Category)
		assert.Equal(t, 2, out[1].Rank)
		assert.Equal(t, "flood", out[2].Category)
		assert.True(t, out[2].Top3)
		assert.Equal(t, "hail", out[3].Category)
		assert.Equal(t, 4, out[3].Rank)
		assert.False(t, out[3].Top3)
	})

	t.Run("ranks are exactly 1..N per metric", func(t *testing.T) {
		totals := []domain.MetricTotal{
			{Category: "a", Metric: domain.MetricFatalities, Value: 3},
			{Category: "b", Metric: domain.MetricFatalities, Value: 9},
			{Category: "a", Metric: domain.MetricInjuries, Value: 1},
			{Category: "b", Metric: domain.MetricInjuries, Value: 1},
			{Category: "c", Metric: domain.MetricInjuries, Value: 4},
		}

		out := Rank(totals)

		seen := make(map[domain.Metric][]int)
		for _, e := range out {
			seen[e.Metric] = append(seen[e.Metric], e.Rank)
		}
		assert.Equal(t, []int{1, 2}, seen[domain.MetricFatalities])
		assert.Equal(t, []int{1, 2, 3}, seen[domain.MetricInjuries])
	})

	t.Run("ties keep first-appearance order", func(t *testing.T) {
		totals := []domain.MetricTotal{
			{Category: "first", Metric: domain.MetricFatalities, Value: 5},
			{Category: "second", Metric: domain.MetricFatalities, Value: 5},
		}

		out := Rank(totals)

		require.Len(t, out, 2)
		assert.Equal(t, "first", out[0].Category)
		assert.Equal(t, 1, out[0].Rank)
		assert.Equal(t, "second", out[1].Category)
		assert.Equal(t, 2, out[1].Rank)
	})

	t.Run("metric groups keep their input order", func(t *testing.T) {
		totals := []domain.MetricTotal{
			{Category: "a", Metric: domain.MetricPropertyDamage, Value: 1},
			{Category: "a", Metric: domain.MetricCropDamage, Value: 2},
		}

		out := Rank(totals)

		require.Len(t, out, 2)
		assert.Equal(t, domain.MetricPropertyDamage, out[0].Metric)
		assert.Equal(t, domain.MetricCropDamage, out[1].Metric)
	})
}
