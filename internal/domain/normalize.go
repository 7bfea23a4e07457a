package domain

import "strings"

// scaleMultipliers resolves the dataset's magnitude codes to numeric scale
// factors. Matching is exact: lowercase codes like "k" and junk codes like
// "+" or "?" deliberately fall through to 1, reproducing how the source
// dataset has always been read (see the package doc for the caveat).
var scaleMultipliers = map[string]float64{
	"K": 1e3,
	"M": 1e6,
	"B": 1e9,
}

// ScaleMultiplier returns the numeric factor for a raw magnitude code.
// Unrecognized or missing codes resolve to 1.
func ScaleMultiplier(code string) float64 {
	if m, ok := scaleMultipliers[strings.TrimSpace(code)]; ok {
		return m
	}
	return 1
}

// NormalizeRecord lowercases the event type and resolves both damage values
// to absolute currency units. Pure function over one record; the input is
// not modified.
func NormalizeRecord(r Record) NormalizedRecord {
	return NormalizedRecord{
		EventType:      strings.ToLower(strings.TrimSpace(r.EventType)),
		BeginDate:      r.BeginDate,
		Fatalities:     r.Fatalities,
		Injuries:       r.Injuries,
		PropertyDamage: r.PropertyDamageValue * ScaleMultiplier(r.PropertyDamageScale),
		CropDamage:     r.CropDamageValue * ScaleMultiplier(r.CropDamageScale),
	}
}
