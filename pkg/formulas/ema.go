package formulas

import (
	"math"

	"github.com/markcheno/go-talib"
)

// CalculateEMA calculates the Exponential Moving Average of the closes.
//
// EMA Formula:
//
//	EMA_today = (Price_today × multiplier) + (EMA_yesterday × (1 - multiplier))
//	where multiplier = 2 / (period + 1)
//
// Returns the current EMA value, or nil if there is no data. If there is
// not enough data for a proper EMA the simple mean is used as a fallback.
func CalculateEMA(closes []float64, length int) *float64 {
	if len(closes) == 0 {
		return nil
	}

	if len(closes) < length {
		sma := Mean(closes)
		return &sma
	}

	ema := talib.Ema(closes, length)
	if len(ema) > 0 && !math.IsNaN(ema[len(ema)-1]) {
		result := ema[len(ema)-1]
		return &result
	}

	sma := Mean(closes[len(closes)-length:])
	return &sma
}

// CalculateSMA calculates the Simple Moving Average of the closes.
// Returns nil when there are fewer closes than the requested length.
func CalculateSMA(closes []float64, length int) *float64 {
	if len(closes) < length {
		return nil
	}

	sma := talib.Sma(closes, length)
	if len(sma) > 0 && !math.IsNaN(sma[len(sma)-1]) {
		result := sma[len(sma)-1]
		return &result
	}

	return nil
}

// PriceVsEMAPct returns how far the price sits above (positive) or below
// (negative) its EMA, in percent. Used as the trend-extension input to the
// medium-term score.
func PriceVsEMAPct(price float64, closes []float64, length int) *float64 {
	ema := CalculateEMA(closes, length)
	if ema == nil || *ema == 0 {
		return nil
	}

	pct := ((price - *ema) / *ema) * 100
	return &pct
}
