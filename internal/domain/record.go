package domain

import (
	"time"
)

// Metric identifies one impact measure summed per event category.
type Metric string

const (
	MetricFatalities     Metric = "fatalities"
	MetricInjuries       Metric = "injuries"
	MetricPropertyDamage Metric = "property_damage"
	MetricCropDamage     Metric = "crop_damage"
)

// HealthMetrics are the population-health impact measures.
var HealthMetrics = []Metric{MetricFatalities, MetricInjuries}

// EconomicMetrics are the economic impact measures, in currency units.
var EconomicMetrics = []Metric{MetricPropertyDamage, MetricCropDamage}

// Value extracts the metric's value from a normalized record.
// Unknown metrics read as zero.
func (m Metric) Value(r NormalizedRecord) float64 {
	switch m {
	case MetricFatalities:
		return float64(r.Fatalities)
	case MetricInjuries:
		return float64(r.Injuries)
	case MetricPropertyDamage:
		return r.PropertyDamage
	case MetricCropDamage:
		return r.CropDamage
	default:
		return 0
	}
}

// Record is one observed weather event as it appears in the storm-events
// dataset. Damage values carry their raw magnitude code ("K", "M", "B", or
// empty) unresolved.
type Record struct {
	EventType           string
	BeginDate           time.Time
	Fatalities          int
	Injuries            int
	PropertyDamageValue float64
	PropertyDamageScale string
	CropDamageValue     float64
	CropDamageScale     string
}

// NormalizedRecord is a Record with the event type lowercased and damage
// values resolved to absolute currency units.
type NormalizedRecord struct {
	EventType      string
	BeginDate      time.Time
	Fatalities     int
	Injuries       int
	PropertyDamage float64
	CropDamage     float64
}

// MetricTotal is the summed value of one metric for one category label.
// The sum only grows as records are added and is never negative.
type MetricTotal struct {
	Category string
	Metric   Metric
	Value    float64
}

// RankedEntry is a MetricTotal with its 1-based rank within its metric
// group (descending by value) and a top-3 flag.
type RankedEntry struct {
	MetricTotal
	Rank int
	Top3 bool
}

// LoadStats reports what the loader saw while reading the dataset.
// Records with unparseable begin dates are kept (with a zero date, which
// fails the window filter downstream) and counted here rather than dropped
// silently.
type LoadStats struct {
	Rows            int
	DateParseErrors int
}

// Report is the final ranked output of one analysis run.
type Report struct {
	GeneratedAt       time.Time
	DateFloor         time.Time
	SignificanceRatio float64
	Health            []RankedEntry
	Economic          []RankedEntry
}

// NewReport assembles a Report and stamps it with the package clock, so
// tests can freeze GeneratedAt via SetClock.
func NewReport(floor time.Time, ratio float64, health, economic []RankedEntry) Report {
	return Report{
		GeneratedAt:       clock.Now().UTC(),
		DateFloor:         floor,
		SignificanceRatio: ratio,
		Health:            health,
		Economic:          economic,
	}
}
