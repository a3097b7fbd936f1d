package ledger

import (
	"math"

	"github.com/aristath/btcquant/internal/domain"
)

// lotEpsilon closes out a lot whose remaining quantity is within floating
// point noise of zero.
const lotEpsilon = 1e-9

// TradeStats summarizes realized trade outcomes reconstructed from the
// order log.
type TradeStats struct {
	ClosedTrades int
	Wins         int
	Losses       int
	WinRate      float64 // percent of closed lots with positive realized PnL
	GrossProfit  float64 // sum of positive realized PnL, in quote currency
	GrossLoss    float64 // absolute sum of negative realized PnL
	ProfitFactor float64
}

// profitFactorSentinel is reported when there is gross profit but no gross
// loss to divide by.
const profitFactorSentinel = 999.0

// openLot is a partially consumed BUY awaiting FIFO matching.
type openLot struct {
	quantity float64
	price    float64
}

// ComputeTradeStats reconstructs win/loss statistics from an order log
// using FIFO lot matching: each SELL consumes the oldest open BUY lots
// first, and each fully or partially closed lot's realized PnL sign decides
// win or loss.
func ComputeTradeStats(orders []domain.ExecutedOrder) TradeStats {
	var stats TradeStats
	var lots []openLot

	for _, order := range orders {
		switch order.Side {
		case domain.OrderSideBuy:
			lots = append(lots, openLot{quantity: order.Quantity, price: order.Price})

		case domain.OrderSideSell:
			remaining := order.Quantity
			for remaining > lotEpsilon && len(lots) > 0 {
				lot := &lots[0]
				matched := math.Min(remaining, lot.quantity)

				pnl := matched * (order.Price - lot.price)
				stats.ClosedTrades++
				if pnl > 0 {
					stats.Wins++
					stats.GrossProfit += pnl
				} else {
					stats.Losses++
					stats.GrossLoss += math.Abs(pnl)
				}

				lot.quantity -= matched
				remaining -= matched
				if lot.quantity <= lotEpsilon {
					lots = lots[1:]
				}
			}
		}
	}

	if stats.ClosedTrades > 0 {
		stats.WinRate = float64(stats.Wins) / float64(stats.ClosedTrades) * 100
	}

	switch {
	case stats.GrossLoss > 0:
		stats.ProfitFactor = stats.GrossProfit / stats.GrossLoss
	case stats.GrossProfit > 0:
		stats.ProfitFactor = profitFactorSentinel
	default:
		stats.ProfitFactor = 0
	}

	return stats
}
