package history

import (
	"fmt"
	"time"

	"github.com/aristath/btcquant/internal/domain"
	"github.com/aristath/btcquant/pkg/formulas"
)

// TrendEMADays is the long trailing average behind the trend-extension
// metric and the bull-trend flag: price versus its 365-day EMA.
const TrendEMADays = 365

// TrailingCloses returns up to the given number of closing prices at or
// before end, oldest first.
func (r *Repository) TrailingCloses(end time.Time, days int) ([]float64, error) {
	rows, err := r.db.Query(
		`SELECT price FROM daily_records WHERE date <= ? ORDER BY date DESC LIMIT ?`,
		end.Unix(), days,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query trailing closes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var closes []float64
	for rows.Next() {
		var price float64
		if err := rows.Scan(&price); err != nil {
			return nil, fmt.Errorf("failed to scan trailing close: %w", err)
		}
		closes = append(closes, price)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Query is newest-first for the LIMIT; callers want chronological order.
	for i, j := 0, len(closes)-1; i < j; i, j = i+1, j-1 {
		closes[i], closes[j] = closes[j], closes[i]
	}
	return closes, nil
}

// EnrichTrend derives the trend-extension metric and the bull-trend flag
// from the trailing closes when the upstream feed did not provide them.
// Records that already carry the extension metric pass through unchanged,
// as do records with no price history to derive from. The input snapshot
// is not mutated; the returned copy carries its own metric map.
func EnrichTrend(snap domain.IndicatorSnapshot, closes []float64) domain.IndicatorSnapshot {
	if snap.Metric(domain.MetricPriceVsEMAPct) != nil {
		return snap
	}

	pct := formulas.PriceVsEMAPct(snap.Price, closes, TrendEMADays)
	if pct == nil {
		return snap
	}

	metrics := make(map[string]*float64, len(snap.Metrics)+1)
	for name, value := range snap.Metrics {
		metrics[name] = value
	}
	metrics[domain.MetricPriceVsEMAPct] = pct

	snap.Metrics = metrics
	snap.IsBullTrend = *pct > 0
	return snap
}
