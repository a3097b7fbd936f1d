package simulation

import (
	"math"

	"github.com/aristath/btcquant/internal/ledger"
	"github.com/aristath/btcquant/pkg/formulas"
)

// Metrics summarizes one simulation run.
type Metrics struct {
	TotalReturnPct  float64 `json:"return_pct"`
	MaxDrawdownPct  float64 `json:"max_drawdown_pct"`
	TradeCount      int     `json:"trade_count"`
	WinRate         float64 `json:"win_rate"`
	ProfitFactor    float64 `json:"profit_factor"`
	Calmar          float64 `json:"calmar"`
	FinalEquity     float64 `json:"final_equity"`
	BuyAndHoldPct   float64 `json:"buy_and_hold_pct"`
	AlphaVsHoldPct  float64 `json:"alpha_vs_hold_pct"`
	InterestPaidUSD float64 `json:"interest_paid_usd"`
}

// computeMetrics derives the summary metrics from the finished ledger.
// Buy-and-hold is benchmarked on the first and last snapshot prices.
func computeMetrics(l *ledger.Ledger) Metrics {
	history := l.History()
	if len(history) == 0 {
		return Metrics{}
	}

	equity := make([]float64, len(history))
	interest := 0.0
	for i, snap := range history {
		equity[i] = snap.Equity
		interest += snap.InterestAccrued
	}

	initial := l.InitialCapital()
	final := equity[len(equity)-1]
	totalReturn := 0.0
	if initial > 0 {
		totalReturn = (final - initial) / initial * 100
	}

	maxDD := formulas.MaxDrawdown(equity) * 100

	calmar := 0.0
	if maxDD != 0 {
		calmar = totalReturn / math.Abs(maxDD)
	}

	firstPrice := history[0].Price
	lastPrice := history[len(history)-1].Price
	buyAndHold := 0.0
	if firstPrice > 0 {
		buyAndHold = (lastPrice - firstPrice) / firstPrice * 100
	}

	stats := ledger.ComputeTradeStats(l.Orders())

	return Metrics{
		TotalReturnPct:  formulas.Round(totalReturn, 2),
		MaxDrawdownPct:  formulas.Round(maxDD, 2),
		TradeCount:      len(l.Orders()),
		WinRate:         formulas.Round(stats.WinRate, 2),
		ProfitFactor:    formulas.Round(stats.ProfitFactor, 2),
		Calmar:          formulas.Round(calmar, 2),
		FinalEquity:     formulas.Round(final, 2),
		BuyAndHoldPct:   formulas.Round(buyAndHold, 2),
		AlphaVsHoldPct:  formulas.Round(totalReturn-buyAndHold, 2),
		InterestPaidUSD: formulas.Round(interest, 2),
	}
}
