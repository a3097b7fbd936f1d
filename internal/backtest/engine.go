package backtest

import (
	"math"

	"github.com/aristath/btcquant/pkg/formulas"
)

// profitFactorSentinel is reported when a run has gross profit but no
// gross loss to divide by.
const profitFactorSentinel = 999.0

// signalFunc decides the day's action from an observation index.
// Exactly one of buy/sell may be set; neither means hold.
type signalFunc func(i int) (buy, sell bool)

// runThresholds runs the adaptive z-score strategy over a period slice:
// all-in when the z-score drops below the buy threshold, all-out when it
// rises above the sell threshold. Days with no tradable signal (NaN
// z-score, fewer observations than min-periods) are skipped rather than
// traded on.
func runThresholds(points []SeriesPoint, zscores []float64, buy, sell, initialCapital float64) (RunMetrics, []float64) {
	return runStrategy(points, initialCapital, func(i int) (bool, bool) {
		z := zscores[i]
		if math.IsNaN(z) {
			return false, false
		}
		return z < buy, z > sell
	})
}

// runStaticBaseline runs the fixed-threshold comparison strategy on the
// raw valuation metric.
func runStaticBaseline(points []SeriesPoint, buyBelow, sellAbove, initialCapital float64) (RunMetrics, []float64) {
	return runStrategy(points, initialCapital, func(i int) (bool, bool) {
		m := points[i].Metric
		return m < buyBelow, m > sellAbove
	})
}

// runStrategy is the shared all-in/all-out execution loop. The equity
// curve is marked to market daily; drawdown is tracked incrementally
// against the running peak.
func runStrategy(points []SeriesPoint, initialCapital float64, signal signalFunc) (RunMetrics, []float64) {
	cash := initialCapital
	asset := 0.0
	entryPrice := 0.0

	trades := 0
	wins := 0
	grossProfit := 0.0
	grossLoss := 0.0

	equity := make([]float64, 0, len(points))

	for i, point := range points {
		price := point.Price
		buy, sell := signal(i)

		if buy && cash > 0 {
			asset = cash / price
			cash = 0
			entryPrice = price
			trades++
		} else if sell && asset > 0 {
			cash = asset * price
			asset = 0
			trades++

			pnl := (price - entryPrice) / entryPrice
			if pnl > 0 {
				wins++
				grossProfit += pnl
			} else {
				grossLoss += math.Abs(pnl)
			}
		}

		equity = append(equity, cash+asset*price)
	}

	finalEquity := initialCapital
	if len(equity) > 0 {
		finalEquity = equity[len(equity)-1]
	}
	totalReturn := (finalEquity - initialCapital) / initialCapital * 100
	maxDD := formulas.MaxDrawdown(equity) * 100

	// A round trip is two orders, so closed trades = trades/2.
	winRate := 0.0
	if trades > 0 {
		winRate = float64(wins) / (float64(trades) / 2) * 100
	}

	profitFactor := 0.0
	switch {
	case grossLoss > 0:
		profitFactor = grossProfit / grossLoss
	case grossProfit > 0:
		profitFactor = profitFactorSentinel
	}

	calmar := 0.0
	if maxDD != 0 {
		calmar = totalReturn / math.Abs(maxDD)
	}

	return RunMetrics{
		ReturnPct:      totalReturn,
		MaxDrawdownPct: maxDD,
		Trades:         trades,
		WinRate:        winRate,
		ProfitFactor:   profitFactor,
		Calmar:         calmar,
		FinalEquity:    finalEquity,
	}, equity
}
