// Command gendata writes a synthetic storm-events CSV fixture and then runs
// the real loader and pipeline stages over it, printing the ranked output so
// test assertions can be regenerated when the transforms change.
//
// Usage:
//
//	go run ./cmd/gendata -out data/mock/storm_events_small.csv -rows 500
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/storm-impact-report/internal/adapter/csvfile"
	"github.com/couchcryptid/storm-impact-report/internal/domain"
	"github.com/couchcryptid/storm-impact-report/internal/pipeline"
)

var defaultFloor = time.Date(1996, time.January, 1, 0, 0, 0, 0, time.UTC)

// profile shapes one synthetic category. Raw labels keep the dataset's
// casing noise so normalization and relabeling get exercised.
type profile struct {
	rawLabel  string
	weight    int
	maxFatal  int
	maxInj    int
	maxProp   float64 // in units of the scale code below
	propScale string
	maxCrop   float64
	cropScale string
}

var profiles = []profile{
	{rawLabel: "TORNADO", weight: 30, maxFatal: 4, maxInj: 60, maxProp: 900, propScale: "K", maxCrop: 50, cropScale: "K"},
	{rawLabel: "EXCESSIVE HEAT", weight: 10, maxFatal: 8, maxInj: 20, maxProp: 0, propScale: "", maxCrop: 200, cropScale: "K"},
	{rawLabel: "FLASH FLOOD", weight: 20, maxFatal: 2, maxInj: 6, maxProp: 12, propScale: "M", maxCrop: 3, cropScale: "M"},
	{rawLabel: "FLOOD", weight: 15, maxFatal: 1, maxInj: 4, maxProp: 40, propScale: "M", maxCrop: 8, cropScale: "M"},
	{rawLabel: "TSTM WIND", weight: 40, maxFatal: 1, maxInj: 8, maxProp: 300, propScale: "K", maxCrop: 60, cropScale: "K"},
	{rawLabel: "High Wind", weight: 12, maxFatal: 1, maxInj: 5, maxProp: 200, propScale: "K", maxCrop: 40, cropScale: "K"},
	{rawLabel: "HURRICANE/TYPHOON", weight: 3, maxFatal: 6, maxInj: 40, maxProp: 9, propScale: "B", maxCrop: 900, cropScale: "M"},
	{rawLabel: "TROPICAL STORM", weight: 4, maxFatal: 2, maxInj: 12, maxProp: 600, propScale: "M", maxCrop: 200, cropScale: "M"},
	{rawLabel: "HEAVY SNOW", weight: 10, maxFatal: 1, maxInj: 10, maxProp: 80, propScale: "K", maxCrop: 0, cropScale: ""},
	{rawLabel: "RIP CURRENTS", weight: 5, maxFatal: 3, maxInj: 4, maxProp: 0, propScale: "", maxCrop: 0, cropScale: ""},
	{rawLabel: "FROST/FREEZE", weight: 6, maxFatal: 0, maxInj: 0, maxProp: 20, propScale: "K", maxCrop: 400, cropScale: "K"},
	{rawLabel: "EXTREME COLD", weight: 5, maxFatal: 3, maxInj: 2, maxProp: 10, propScale: "K", maxCrop: 300, cropScale: "K"},
	// Junk scale code on purpose: resolves to multiplier 1.
	{rawLabel: "LIGHTNING", weight: 8, maxFatal: 2, maxInj: 6, maxProp: 500, propScale: "?", maxCrop: 0, cropScale: ""},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the CSV fixture")
	rows := flag.Int("rows", 500, "number of data rows to generate")
	seed := flag.Int64("seed", 1, "random seed (fixed by default for reproducible fixtures)")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	rng := rand.New(rand.NewSource(*seed))

	if err := writeCSV(*out, *rows, rng); err != nil {
		return fmt.Errorf("writing fixture: %w", err)
	}
	log.Printf("wrote fixture: %s (%d rows)", *out, *rows)

	return printStats(*out)
}

func writeCSV(path string, rows int, rng *rand.Rand) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"BGN_DATE", "EVTYPE", "FATALITIES", "INJURIES", "PROPDMG", "PROPDMGEXP", "CROPDMG", "CROPDMGEXP"}
	if err := w.Write(header); err != nil {
		return err
	}

	var weightTotal int
	for _, p := range profiles {
		weightTotal += p.weight
	}

	for i := 0; i < rows; i++ {
		p := pick(rng, weightTotal)

		// Dates span 1993-2011 so a slice of rows falls before the default
		// window floor; every ~200th row gets a junk date to exercise the
		// loader's parse-error counting.
		date := randomDate(rng)
		dateStr := fmt.Sprintf("%d/%d/%d 0:00:00", date.Month(), date.Day(), date.Year())
		if i%200 == 199 {
			dateStr = "not-a-date"
		}

		row := []string{
			dateStr,
			p.rawLabel,
			fmt.Sprintf("%d", randCount(rng, p.maxFatal)),
			fmt.Sprintf("%d", randCount(rng, p.maxInj)),
			fmt.Sprintf("%.2f", randValue(rng, p.maxProp)),
			p.propScale,
			fmt.Sprintf("%.2f", randValue(rng, p.maxCrop)),
			p.cropScale,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func pick(rng *rand.Rand, weightTotal int) profile {
	n := rng.Intn(weightTotal)
	for _, p := range profiles {
		if n < p.weight {
			return p
		}
		n -= p.weight
	}
	return profiles[0]
}

func randomDate(rng *rand.Rand) time.Time {
	start := time.Date(1993, time.January, 1, 0, 0, 0, 0, time.UTC)
	days := rng.Intn(365 * 19)
	return start.AddDate(0, 0, days)
}

func randCount(rng *rand.Rand, max int) int {
	if max == 0 {
		return 0
	}
	return rng.Intn(max + 1)
}

func randValue(rng *rand.Rand, max float64) float64 {
	if max == 0 {
		return 0
	}
	return rng.Float64() * max
}

// printStats loads the fixture back through the real adapter and prints both
// ranked analyses.
func printStats(path string) error {
	loader := csvfile.NewLoader(path, slog.Default())
	records, stats, err := loader.Load(context.Background())
	if err != nil {
		return err
	}

	normalized := make([]domain.NormalizedRecord, len(records))
	for i, r := range records {
		normalized[i] = domain.NormalizeRecord(r)
	}

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Rows: %d, date parse errors: %d\n", stats.Rows, stats.DateParseErrors)

	printAnalysis("health", normalized, domain.HealthMetrics, domain.HealthMergeRules)
	printAnalysis("economic", normalized, domain.EconomicMetrics, domain.EconomicMergeRules)
	return nil
}

func printAnalysis(name string, records []domain.NormalizedRecord, metrics []domain.Metric, rules []domain.MergeRule) {
	filtered := pipeline.Filter(records, defaultFloor, metrics)
	totals := pipeline.Aggregate(filtered, metrics)
	entries := pipeline.Rank(pipeline.Relabel(pipeline.Significant(totals, 0.05), rules))

	fmt.Printf("\n%s (retained %d records):\n", name, len(filtered))
	for _, e := range entries {
		marker := " "
		if e.Top3 {
			marker = "*"
		}
		fmt.Printf("  %s %-16s #%d %-28s %g\n", marker, e.Metric, e.Rank, e.Category, e.Value)
	}
}
