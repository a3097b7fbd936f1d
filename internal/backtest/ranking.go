package backtest

import (
	"sort"

	"github.com/samber/lo"
)

// TopByCalmar returns, per period, the n best grid cells ranked by Calmar
// ratio (risk-adjusted return). Period order follows first appearance in
// the rows.
func TopByCalmar(rows []SweepRow, n int) map[string][]SweepRow {
	byPeriod := lo.GroupBy(rows, func(row SweepRow) string { return row.Period })

	return lo.MapValues(byPeriod, func(periodRows []SweepRow, _ string) []SweepRow {
		sorted := make([]SweepRow, len(periodRows))
		copy(sorted, periodRows)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Calmar > sorted[j].Calmar
		})
		if len(sorted) > n {
			sorted = sorted[:n]
		}
		return sorted
	})
}

// Periods returns the distinct period names in first-appearance order.
func Periods(rows []SweepRow) []string {
	return lo.Uniq(lo.Map(rows, func(row SweepRow, _ int) string { return row.Period }))
}
