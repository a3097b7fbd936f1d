package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aristath/btcquant/internal/domain"
)

func buy(qty, price float64) domain.ExecutedOrder {
	return domain.ExecutedOrder{Side: domain.OrderSideBuy, Quantity: qty, Price: price, AmountUSD: qty * price}
}

func sell(qty, price float64) domain.ExecutedOrder {
	return domain.ExecutedOrder{Side: domain.OrderSideSell, Quantity: qty, Price: price, AmountUSD: qty * price}
}

func TestComputeTradeStats_Empty(t *testing.T) {
	stats := ComputeTradeStats(nil)
	assert.Zero(t, stats.ClosedTrades)
	assert.Zero(t, stats.WinRate)
	assert.Zero(t, stats.ProfitFactor)
}

func TestComputeTradeStats_OpenPositionOnly(t *testing.T) {
	// Buys with no sell realize nothing.
	stats := ComputeTradeStats([]domain.ExecutedOrder{buy(1, 100), buy(1, 120)})
	assert.Zero(t, stats.ClosedTrades)
}

func TestComputeTradeStats_SingleWin(t *testing.T) {
	stats := ComputeTradeStats([]domain.ExecutedOrder{
		buy(1, 100),
		sell(1, 150),
	})
	assert.Equal(t, 1, stats.ClosedTrades)
	assert.Equal(t, 1, stats.Wins)
	assert.Zero(t, stats.Losses)
	assert.InDelta(t, 100.0, stats.WinRate, 1e-9)
	assert.InDelta(t, 50.0, stats.GrossProfit, 1e-9)
	// No losing lot to divide by.
	assert.InDelta(t, 999.0, stats.ProfitFactor, 1e-9)
}

func TestComputeTradeStats_FIFOMatching(t *testing.T) {
	// Two lots at 100 and 200; the sell at 150 consumes the oldest lot
	// first (a win), then half of the second (a loss).
	stats := ComputeTradeStats([]domain.ExecutedOrder{
		buy(1, 100),
		buy(1, 200),
		sell(1.5, 150),
	})
	assert.Equal(t, 2, stats.ClosedTrades)
	assert.Equal(t, 1, stats.Wins)
	assert.Equal(t, 1, stats.Losses)
	assert.InDelta(t, 50.0, stats.WinRate, 1e-9)
	assert.InDelta(t, 50.0, stats.GrossProfit, 1e-9) // 1.0 * (150-100)
	assert.InDelta(t, 25.0, stats.GrossLoss, 1e-9)   // 0.5 * (200-150)
	assert.InDelta(t, 2.0, stats.ProfitFactor, 1e-9)
}

func TestComputeTradeStats_PartialLotCarriesForward(t *testing.T) {
	// The first sell consumes half of the lot; the second sell closes the
	// remainder at a different price.
	stats := ComputeTradeStats([]domain.ExecutedOrder{
		buy(2, 100),
		sell(1, 150),
		sell(1, 80),
	})
	assert.Equal(t, 2, stats.ClosedTrades)
	assert.Equal(t, 1, stats.Wins)
	assert.Equal(t, 1, stats.Losses)
	assert.InDelta(t, 50.0, stats.GrossProfit, 1e-9)
	assert.InDelta(t, 20.0, stats.GrossLoss, 1e-9)
}

func TestComputeTradeStats_BreakEvenCountsAsLoss(t *testing.T) {
	// Zero PnL is not a win.
	stats := ComputeTradeStats([]domain.ExecutedOrder{
		buy(1, 100),
		sell(1, 100),
	})
	assert.Equal(t, 1, stats.ClosedTrades)
	assert.Zero(t, stats.Wins)
	assert.Equal(t, 1, stats.Losses)
	assert.Zero(t, stats.WinRate)
	assert.Zero(t, stats.ProfitFactor)
}

func TestComputeTradeStats_FloatingPointLotClosure(t *testing.T) {
	// Quantities that do not subtract cleanly must still close the lot
	// instead of leaving a dust remainder that would match a later sell.
	stats := ComputeTradeStats([]domain.ExecutedOrder{
		buy(0.1+0.2, 100), // 0.30000000000000004
		sell(0.3, 150),
		buy(1, 100),
		sell(1, 150),
	})
	assert.Equal(t, 2, stats.ClosedTrades)
	assert.Equal(t, 2, stats.Wins)
}
