package formulas

import "math"

// RollingZScore computes the rolling z-score of a series. For each index i
// the mean and standard deviation are computed over values[max(0,i-window+1)..i],
// so the statistic only ever looks backward in time relative to the index it
// labels. Indices with fewer than minPeriods observations (or a zero standard
// deviation) are NaN.
//
// Callers slicing a series into sub-periods must compute the z-score over the
// full series first and slice afterwards; computing on an already-sliced
// sub-period leaks the sub-period's own variance into its early observations.
func RollingZScore(values []float64, window, minPeriods int) []float64 {
	if minPeriods < 2 {
		minPeriods = 2
	}

	zscores := make([]float64, len(values))
	for i := range values {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		obs := values[start : i+1]
		if len(obs) < minPeriods {
			zscores[i] = math.NaN()
			continue
		}

		mean := Mean(obs)
		std := StdDev(obs)
		if std == 0 {
			zscores[i] = math.NaN()
			continue
		}
		zscores[i] = (values[i] - mean) / std
	}

	return zscores
}

// RollingMean computes the trailing mean over the given window, with NaN
// for indices with fewer than minPeriods observations.
func RollingMean(values []float64, window, minPeriods int) []float64 {
	if minPeriods < 1 {
		minPeriods = 1
	}

	means := make([]float64, len(values))
	for i := range values {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		obs := values[start : i+1]
		if len(obs) < minPeriods {
			means[i] = math.NaN()
			continue
		}
		means[i] = Mean(obs)
	}

	return means
}

// RollingStdDev computes the trailing sample standard deviation over the
// given window, with NaN for indices with fewer than minPeriods observations.
func RollingStdDev(values []float64, window, minPeriods int) []float64 {
	if minPeriods < 2 {
		minPeriods = 2
	}

	stds := make([]float64, len(values))
	for i := range values {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		obs := values[start : i+1]
		if len(obs) < minPeriods {
			stds[i] = math.NaN()
			continue
		}
		stds[i] = StdDev(obs)
	}

	return stds
}
