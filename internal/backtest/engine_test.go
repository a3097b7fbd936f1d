package backtest

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func point(d int, price, metric float64) SeriesPoint {
	return SeriesPoint{Date: date(2023, 1, 1).AddDate(0, 0, d), Price: price, Metric: metric}
}

func TestRunThresholds_RoundTrip(t *testing.T) {
	points := []SeriesPoint{
		point(0, 100, 0),
		point(1, 90, 0),
		point(2, 80, 0),
		point(3, 120, 0),
		point(4, 150, 0),
	}
	zscores := []float64{math.NaN(), -2.0, 0, 0, 3.0}

	metrics, equity := runThresholds(points, zscores, -1.5, 2.5, 10000)

	// Buy at 90, sell at 150: one winning round trip.
	assert.Equal(t, 2, metrics.Trades)
	assert.InDelta(t, 100.0, metrics.WinRate, 1e-9)
	assert.InDelta(t, 66.6667, metrics.ReturnPct, 1e-3)
	assert.InDelta(t, 999.0, metrics.ProfitFactor, 1e-9, "no losing trade to divide by")

	// Mark-to-market trough at price 80: -11.11% from the 10k peak.
	assert.InDelta(t, -11.1111, metrics.MaxDrawdownPct, 1e-3)
	assert.InDelta(t, 6.0, metrics.Calmar, 1e-3)

	require.Len(t, equity, 5)
	assert.InDelta(t, 10000.0, equity[0], 1e-9)
	assert.InDelta(t, 10000.0*150/90, equity[4], 1e-6)
}

func TestRunThresholds_NaNSignalsAreSkipped(t *testing.T) {
	points := []SeriesPoint{
		point(0, 100, 0),
		point(1, 50, 0),
		point(2, 50, 0),
	}
	// Deeply negative z-scores, but all NaN: never tradable.
	zscores := []float64{math.NaN(), math.NaN(), math.NaN()}

	metrics, _ := runThresholds(points, zscores, -1.0, 1.0, 10000)
	assert.Zero(t, metrics.Trades)
	assert.Zero(t, metrics.ReturnPct)
	assert.Zero(t, metrics.MaxDrawdownPct, "cash-only runs never draw down")
}

func TestRunThresholds_OpenPositionMarkedToMarket(t *testing.T) {
	points := []SeriesPoint{
		point(0, 100, 0),
		point(1, 100, 0),
		point(2, 130, 0),
	}
	zscores := []float64{0, -2.0, 0}

	metrics, _ := runThresholds(points, zscores, -1.5, 2.5, 1000)

	// Still holding at the end: the unrealized gain counts toward the
	// return but no round trip has closed.
	assert.Equal(t, 1, metrics.Trades)
	assert.InDelta(t, 30.0, metrics.ReturnPct, 1e-9)
	assert.Zero(t, metrics.WinRate)
}

func TestRunThresholds_LosingTrade(t *testing.T) {
	points := []SeriesPoint{
		point(0, 100, 0),
		point(1, 60, 0),
	}
	zscores := []float64{-2.0, 3.0}

	metrics, _ := runThresholds(points, zscores, -1.5, 2.5, 1000)
	assert.Equal(t, 2, metrics.Trades)
	assert.Zero(t, metrics.WinRate)
	assert.Zero(t, metrics.ProfitFactor)
	assert.InDelta(t, -40.0, metrics.ReturnPct, 1e-9)
}

func TestRunStaticBaseline(t *testing.T) {
	// Raw metric crosses the classic undervalued/overvalued bands.
	points := []SeriesPoint{
		point(0, 100, 0.8), // below 1.0: buy
		point(1, 200, 2.0), // hold
		point(2, 400, 4.0), // above 3.7: sell
	}

	metrics, equity := runStaticBaseline(points, 1.0, 3.7, 10000)
	assert.Equal(t, 2, metrics.Trades)
	assert.InDelta(t, 300.0, metrics.ReturnPct, 1e-9)
	assert.InDelta(t, 100.0, metrics.WinRate, 1e-9)
	require.Len(t, equity, 3)
	assert.InDelta(t, 40000.0, equity[2], 1e-6)
}

func TestRunStrategy_RepeatedSignalsAreIdempotent(t *testing.T) {
	// Consecutive buy signals cannot double-buy, and sells with no position
	// are no-ops.
	points := []SeriesPoint{
		point(0, 100, 0),
		point(1, 100, 0),
		point(2, 100, 0),
		point(3, 100, 0),
	}
	zscores := []float64{-2.0, -2.0, 3.0, 3.0}

	metrics, _ := runThresholds(points, zscores, -1.5, 2.5, 1000)
	assert.Equal(t, 2, metrics.Trades)
}
