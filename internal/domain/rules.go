package domain

import "strings"

// MergeRule maps near-duplicate category labels onto a canonical name.
// Rules are evaluated in slice order and the first match wins; labels no
// rule matches keep their (lowercased) name.
type MergeRule struct {
	Match     func(label string) bool
	Canonical string
}

// MatchExact matches any of the given labels exactly.
func MatchExact(labels ...string) func(string) bool {
	set := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		set[l] = struct{}{}
	}
	return func(label string) bool {
		_, ok := set[label]
		return ok
	}
}

// MatchContains matches labels containing the given substring.
func MatchContains(substr string) func(string) bool {
	return func(label string) bool {
		return strings.Contains(label, substr)
	}
}

// Canonicalize returns the canonical name for a label under the given rules.
func Canonicalize(label string, rules []MergeRule) string {
	for _, r := range rules {
		if r.Match(label) {
			return r.Canonical
		}
	}
	return label
}

// HealthMergeRules merge synonymous labels for the population-health
// analysis. Order matters: "excessive heat" must resolve before the broader
// substring rules get a look at the label.
var HealthMergeRules = []MergeRule{
	{Match: MatchExact("excessive heat"), Canonical: "heat"},
	{Match: MatchExact("flash flood"), Canonical: "flood"},
	{Match: MatchContains("wind"), Canonical: "high wind"},
	{Match: MatchExact("heavy snow"), Canonical: "winter storm"},
	{Match: MatchExact("rip currents"), Canonical: "rip current"},
	{Match: MatchContains("cold"), Canonical: "extreme cold"},
}

// EconomicMergeRules merge synonymous labels for the economic analysis.
var EconomicMergeRules = []MergeRule{
	{Match: MatchExact("flash flood"), Canonical: "flood"},
	{Match: MatchExact("hurricane/typhoon", "tropical storm", "hurricane"), Canonical: "hurricane/tropical storm"},
	{Match: MatchExact("extreme cold", "frost/freeze"), Canonical: "frost/freeze/extreme cold"},
}
