package formulas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMean(t *testing.T) {
	assert.Zero(t, Mean(nil))
	assert.InDelta(t, 3.0, Mean([]float64{1, 2, 3, 4, 5}), 1e-12)
	assert.InDelta(t, -1.5, Mean([]float64{-1, -2}), 1e-12)
}

func TestStdDev(t *testing.T) {
	assert.Zero(t, StdDev(nil))
	assert.Zero(t, StdDev([]float64{42}))
	// Sample standard deviation of {2,4,4,4,5,5,7,9}.
	assert.InDelta(t, 2.13808993, StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 1e-6)
}

func TestCalculateReturns(t *testing.T) {
	assert.Empty(t, CalculateReturns([]float64{100}))

	returns := CalculateReturns([]float64{100, 110, 99})
	require.Len(t, returns, 2)
	assert.InDelta(t, 0.10, returns[0], 1e-12)
	assert.InDelta(t, -0.10, returns[1], 1e-12)

	// A zero price cannot produce a return; the slot stays zero.
	withZero := CalculateReturns([]float64{0, 50})
	require.Len(t, withZero, 1)
	assert.Zero(t, withZero[0])
}

func TestMaxDrawdown(t *testing.T) {
	assert.Zero(t, MaxDrawdown(nil))
	assert.Zero(t, MaxDrawdown([]float64{100, 110, 120}), "monotonic rise has no drawdown")

	// Peak 120 to trough 60: -50%.
	assert.InDelta(t, -0.5, MaxDrawdown([]float64{100, 120, 60, 90}), 1e-12)

	// Later deeper drawdown wins over the earlier shallow one.
	assert.InDelta(t, -0.75, MaxDrawdown([]float64{100, 80, 160, 40}), 1e-12)
}

func TestRound(t *testing.T) {
	assert.InDelta(t, 3.14, Round(3.14159, 2), 1e-12)
	assert.InDelta(t, 3.0, Round(2.5, 0), 1e-12, "halves round away from zero")
	assert.InDelta(t, -3.0, Round(-2.5, 0), 1e-12)
	assert.InDelta(t, 100.0, Round(99.999, 2), 1e-12)
}

func TestCalculateEMA(t *testing.T) {
	assert.Nil(t, CalculateEMA(nil, 10))

	// Fewer closes than the period fall back to the simple mean.
	short := CalculateEMA([]float64{10, 20}, 5)
	require.NotNil(t, short)
	assert.InDelta(t, 15.0, *short, 1e-12)

	// A constant series has a constant EMA.
	flat := make([]float64, 30)
	for i := range flat {
		flat[i] = 100
	}
	ema := CalculateEMA(flat, 10)
	require.NotNil(t, ema)
	assert.InDelta(t, 100.0, *ema, 1e-9)
}

func TestCalculateSMA(t *testing.T) {
	assert.Nil(t, CalculateSMA([]float64{1, 2}, 5))

	sma := CalculateSMA([]float64{1, 2, 3, 4, 5}, 5)
	require.NotNil(t, sma)
	assert.InDelta(t, 3.0, *sma, 1e-12)
}

func TestPriceVsEMAPct(t *testing.T) {
	flat := make([]float64, 30)
	for i := range flat {
		flat[i] = 100
	}

	pct := PriceVsEMAPct(120, flat, 10)
	require.NotNil(t, pct)
	assert.InDelta(t, 20.0, *pct, 1e-9)

	pct = PriceVsEMAPct(80, flat, 10)
	require.NotNil(t, pct)
	assert.InDelta(t, -20.0, *pct, 1e-9)

	assert.Nil(t, PriceVsEMAPct(100, nil, 10))
}
