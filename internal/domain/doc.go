// Package domain models NOAA Storm Events records and the vocabulary of the
// report's table transforms: metrics, per-category totals, merge rules, and
// ranked output.
//
// # Data Source
//
// Records come from the NOAA National Climatic Data Center Storm Events
// database, distributed as a single flat CSV (usually bzip2-compressed)
// covering events from 1950 onward. Event-type coverage is uneven: only
// tornadoes were recorded before 1955, and the full set of 48 event types
// only appears from January 1996 — which is why analyses window the data at
// 1996-01-01 by default.
//
// # Dataset Conventions
//
// Event types ("EVTYPE" column):
//
//	Free-text category labels with inconsistent casing and spelling:
//	"TORNADO", "Tornado", "TSTM WIND", "THUNDERSTORM WINDS", "EXCESSIVE HEAT".
//	Labels are lowercased during normalization; synonym merging is handled
//	by ordered [MergeRule] lists, first match wins.
//
// Begin dates ("BGN_DATE" column):
//
//	"M/D/YYYY H:MM:SS" with a meaningless zero time-of-day, e.g.
//	"4/18/1950 0:00:00". Rows whose date cannot be parsed get a zero time,
//	are counted by the loader, and fall out at the date-window filter.
//
// Damage magnitudes ("PROPDMGEXP"/"CROPDMGEXP" columns):
//
//	A letter code scaling the adjacent damage value:
//	  "K" → 1e3   "M" → 1e6   "B" → 1e9
//	Other codes occur in the raw data ("k", "m", "+", "?", "0"–"8", "h",
//	"H", empty). All of them resolve to a multiplier of 1. That is how the
//	dataset has historically been read, and it can mask data-entry errors —
//	a lowercase "k" almost certainly meant thousands. The policy is kept
//	as-is rather than silently corrected; see [ScaleMultiplier].
//
// Impact counts ("FATALITIES"/"INJURIES" columns):
//
//	Non-negative integers, sometimes written with a decimal point ("0.00").
//	Parsed as floats and truncated.
//
// # Significance Threshold
//
// After aggregation, a (category, metric) total is significant when it
// exceeds a fixed fraction (default 5%) of the largest total for that
// metric. A metric whose largest total is zero yields no significant
// categories at all.
package domain
