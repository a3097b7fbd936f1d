// Package scoring turns a daily indicator snapshot into the two composite
// conviction scores (long-term and medium-term) consumed by the allocation
// policy.
package scoring

// Normalize maps a raw metric value onto [-1, 1] given its calibration
// range: the value is clamped to [min, max], scaled linearly to [0, 1],
// rescaled to [-1, 1] and negated when invert is set (for metrics where
// high readings are bearish).
//
// A nil value scores 0.0 — the scorer must stay total over partial data,
// so missing inputs fail closed to neutral instead of propagating errors.
// Pure and stateless: identical inputs always produce identical outputs.
func Normalize(value *float64, min, max float64, invert bool) float64 {
	if value == nil || max == min {
		return 0.0
	}

	clamped := *value
	if clamped < min {
		clamped = min
	}
	if clamped > max {
		clamped = max
	}

	normalized := (clamped - min) / (max - min)
	score := (normalized * 2) - 1

	if invert {
		score = -score
	}

	return score
}
