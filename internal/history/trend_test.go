package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/btcquant/internal/domain"
)

func TestRepository_TrailingCloses(t *testing.T) {
	repo := newTestRepository(t)

	for d := 1; d <= 10; d++ {
		require.NoError(t, repo.Upsert(record(day(2023, 1, d), 20000+float64(d)*100)))
	}

	// Limited window ending mid-series, oldest first.
	closes, err := repo.TrailingCloses(day(2023, 1, 8), 3)
	require.NoError(t, err)
	require.Len(t, closes, 3)
	assert.InDelta(t, 20600.0, closes[0], 1e-9)
	assert.InDelta(t, 20700.0, closes[1], 1e-9)
	assert.InDelta(t, 20800.0, closes[2], 1e-9)

	// Fewer rows than requested returns what exists.
	closes, err = repo.TrailingCloses(day(2023, 1, 2), 365)
	require.NoError(t, err)
	require.Len(t, closes, 2)
	assert.InDelta(t, 20100.0, closes[0], 1e-9)

	// No rows at or before the date.
	closes, err = repo.TrailingCloses(day(2022, 1, 1), 30)
	require.NoError(t, err)
	assert.Empty(t, closes)
}

func TestEnrichTrend_DerivesExtensionAndFlag(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 20000
	}

	snap := domain.IndicatorSnapshot{
		Date:    day(2023, 2, 10),
		Price:   25000,
		Metrics: map[string]*float64{domain.MetricMVRV: f(1.5)},
	}

	enriched := EnrichTrend(snap, closes)

	// Fewer closes than the EMA length fall back to the simple mean, so
	// 25,000 against a flat 20,000 history reads as +25% extension.
	got := enriched.Metric(domain.MetricPriceVsEMAPct)
	require.NotNil(t, got)
	assert.InDelta(t, 25.0, *got, 1e-6)
	assert.True(t, enriched.IsBullTrend)

	// Below the trailing average the flag flips.
	snap.Price = 15000
	enriched = EnrichTrend(snap, closes)
	got = enriched.Metric(domain.MetricPriceVsEMAPct)
	require.NotNil(t, got)
	assert.InDelta(t, -25.0, *got, 1e-6)
	assert.False(t, enriched.IsBullTrend)
}

func TestEnrichTrend_UpstreamValueWins(t *testing.T) {
	closes := []float64{20000, 20000, 20000}

	snap := domain.IndicatorSnapshot{
		Date:        day(2023, 2, 10),
		Price:       25000,
		Metrics:     map[string]*float64{domain.MetricPriceVsEMAPct: f(-12.5)},
		IsBullTrend: true,
	}

	enriched := EnrichTrend(snap, closes)
	assert.InDelta(t, -12.5, *enriched.Metric(domain.MetricPriceVsEMAPct), 1e-9)
	assert.True(t, enriched.IsBullTrend, "upstream flag is kept alongside the upstream metric")
}

func TestEnrichTrend_NoHistoryLeavesRecordUntouched(t *testing.T) {
	snap := domain.IndicatorSnapshot{
		Date:    day(2023, 2, 10),
		Price:   25000,
		Metrics: map[string]*float64{},
	}

	enriched := EnrichTrend(snap, nil)
	assert.Nil(t, enriched.Metric(domain.MetricPriceVsEMAPct))
	assert.False(t, enriched.IsBullTrend)
}

func TestEnrichTrend_DoesNotMutateInput(t *testing.T) {
	closes := []float64{20000, 20000, 20000}
	snap := domain.IndicatorSnapshot{
		Date:    day(2023, 2, 10),
		Price:   25000,
		Metrics: map[string]*float64{domain.MetricMVRV: f(1.5)},
	}

	_ = EnrichTrend(snap, closes)
	assert.Nil(t, snap.Metric(domain.MetricPriceVsEMAPct), "the caller's snapshot must stay unchanged")
}
