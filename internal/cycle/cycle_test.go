package cycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestClassifier_GetPhase(t *testing.T) {
	c := NewClassifier(DefaultHalvings())

	cases := []struct {
		name     string
		date     time.Time
		expected string
	}{
		// 2020-05-11 halving.
		{"day of halving", date(2020, 5, 11), PhasePostHalvingExpansion},
		{"six months after halving", date(2020, 11, 11), PhasePostHalvingExpansion},
		{"day 540 after halving", date(2021, 11, 2), PhasePostHalvingExpansion},
		{"day 541 after halving", date(2021, 11, 3), PhaseBearDistribution},

		// Approaching the 2024-04-20 halving.
		{"nine months before halving", date(2023, 8, 1), PhasePreHalvingRally},
		{"fifteen months before halving", date(2023, 1, 20), PhaseAccumulation},

		// Deep bear: more than 540 days past and more than 540 days out.
		{"mid-cycle bear", date(2022, 6, 1), PhaseBearDistribution},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, c.GetPhase(tc.date).Name, tc.date.Format("2006-01-02"))
		})
	}
}

func TestClassifier_BeforeFirstHalving(t *testing.T) {
	c := NewClassifier(DefaultHalvings())

	// No past halving exists, so the days-since branch cannot fire. Well
	// ahead of the first halving the date reads as Bear/Distribution; within
	// 270 days it reads as Pre-Halving Rally.
	phase := c.GetPhase(date(2010, 1, 1))
	assert.Equal(t, PhaseBearDistribution, phase.Name)
	assert.Equal(t, noHalvingSentinel, phase.DaysSinceHalving)

	assert.Equal(t, PhasePreHalvingRally, c.GetPhase(date(2012, 9, 1)).Name)
}

func TestClassifier_AfterLastHalving(t *testing.T) {
	c := NewClassifier(DefaultHalvings())

	// Shortly after the last known halving there is no future halving, so
	// only the days-since branch can fire.
	phase := c.GetPhase(date(2028, 6, 1))
	assert.Equal(t, PhasePostHalvingExpansion, phase.Name)
	assert.Equal(t, noHalvingSentinel, phase.DaysUntilHalving)

	// Past the expansion window with no future halving the fallback is
	// Bear/Distribution, regardless of where the real cycle actually is.
	assert.Equal(t, PhaseBearDistribution, c.GetPhase(date(2030, 6, 1)).Name)
}

func TestClassifier_NearestHalvings(t *testing.T) {
	c := NewClassifier(DefaultHalvings())

	past, pastOK, next, nextOK := c.NearestHalvings(date(2022, 1, 1))
	require.True(t, pastOK)
	require.True(t, nextOK)
	assert.Equal(t, date(2020, 5, 11), past)
	assert.Equal(t, date(2024, 4, 20), next)

	_, pastOK, _, nextOK = c.NearestHalvings(date(2009, 1, 3))
	assert.False(t, pastOK)
	assert.True(t, nextOK)

	_, pastOK, _, nextOK = c.NearestHalvings(date(2040, 1, 1))
	assert.True(t, pastOK)
	assert.False(t, nextOK)
}

func TestClassifier_SortsHalvingTable(t *testing.T) {
	// Construction must not depend on input order.
	shuffled := []time.Time{
		date(2024, 4, 20),
		date(2012, 11, 28),
		date(2028, 4, 1),
		date(2020, 5, 11),
		date(2016, 7, 9),
	}
	c := NewClassifier(shuffled)
	past, pastOK, next, nextOK := c.NearestHalvings(date(2018, 1, 1))
	require.True(t, pastOK)
	require.True(t, nextOK)
	assert.Equal(t, date(2016, 7, 9), past)
	assert.Equal(t, date(2020, 5, 11), next)
}
