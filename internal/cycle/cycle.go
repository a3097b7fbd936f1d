// Package cycle classifies calendar dates against the Bitcoin 4-year
// halving cycle and the historical monthly seasonality table.
package cycle

import "time"

// Cycle phase labels. The scorer matches on these exact strings.
const (
	PhasePostHalvingExpansion = "Post-Halving Expansion"
	PhasePreHalvingRally      = "Pre-Halving Rally"
	PhaseAccumulation         = "Accumulation"
	PhaseBearDistribution     = "Bear Market / Distribution"
)

// Phase day thresholds relative to the nearest halving.
const (
	expansionMaxDaysSince = 540 // ~18 months after a halving
	rallyMaxDaysUntil     = 270 // ~9 months before a halving
	accumulationMaxDays   = 540 // ~18 months before a halving

	// noHalvingSentinel is used when no past (or future) halving exists for
	// a date, so the day-count branches can never select a phase from the
	// missing side.
	noHalvingSentinel = 9999
)

// DefaultHalvings lists the historic and projected halving dates.
func DefaultHalvings() []time.Time {
	return []time.Time{
		time.Date(2012, 11, 28, 0, 0, 0, 0, time.UTC),
		time.Date(2016, 7, 9, 0, 0, 0, 0, time.UTC),
		time.Date(2020, 5, 11, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 4, 20, 0, 0, 0, 0, time.UTC), // Approx
		time.Date(2028, 4, 1, 0, 0, 0, 0, time.UTC),  // Projected
	}
}

// Phase describes where a date sits in the halving cycle.
type Phase struct {
	Date             time.Time
	Name             string
	DaysSinceHalving int
	DaysUntilHalving int
}

// Classifier maps dates to cycle phases using a fixed, ordered halving table.
type Classifier struct {
	halvings []time.Time
}

// NewClassifier creates a classifier over the given halving dates. The
// table is sorted once at construction and immutable afterwards.
func NewClassifier(halvings []time.Time) *Classifier {
	sorted := make([]time.Time, len(halvings))
	copy(sorted, halvings)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j].Before(sorted[j-1]); j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	return &Classifier{halvings: sorted}
}

// NearestHalvings returns the nearest halving at or before the date and the
// nearest strictly after it. Either may be zero (ok=false) at the edges of
// the table.
func (c *Classifier) NearestHalvings(date time.Time) (past time.Time, pastOK bool, next time.Time, nextOK bool) {
	for _, h := range c.halvings {
		if !h.After(date) {
			past = h
			pastOK = true
		} else {
			next = h
			nextOK = true
			break
		}
	}
	return past, pastOK, next, nextOK
}

// GetPhase determines the market cycle phase for a date.
//
// The branch order is load-bearing: days-since is checked before days-until,
// so a date shortly after the last known halving still reads as Expansion
// even though no future halving exists. Once more than 540 days have passed
// and no future halving is known, the fallback resolves to Bear/Distribution.
func (c *Classifier) GetPhase(date time.Time) Phase {
	past, pastOK, next, nextOK := c.NearestHalvings(date)

	daysSince := noHalvingSentinel
	if pastOK {
		daysSince = int(date.Sub(past).Hours() / 24)
	}
	daysUntil := noHalvingSentinel
	if nextOK {
		daysUntil = int(next.Sub(date).Hours() / 24)
	}

	var name string
	switch {
	case pastOK && daysSince <= expansionMaxDaysSince:
		name = PhasePostHalvingExpansion
	case nextOK && daysUntil <= rallyMaxDaysUntil:
		name = PhasePreHalvingRally
	case nextOK && daysUntil <= accumulationMaxDays:
		name = PhaseAccumulation
	default:
		name = PhaseBearDistribution
	}

	return Phase{
		Date:             date,
		Name:             name,
		DaysSinceHalving: daysSince,
		DaysUntilHalving: daysUntil,
	}
}
