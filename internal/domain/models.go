// Package domain contains the core types shared by the scoring, policy,
// ledger and simulation packages. The domain layer is pure: no database,
// logging or transport dependencies.
package domain

import "time"

// Metric names as they appear in IndicatorSnapshot.Metrics.
// Upstream data acquisition produces these; the core only reads them.
const (
	MetricMVRV          = "mvrv"
	MetricMayerMultiple = "mayer_multiple"
	MetricRUP           = "rup"
	MetricM2YoY         = "m2_yoy"
	MetricInterestRate  = "interest_rate"
	MetricFearAndGreed  = "fear_and_greed"
	MetricPriceVsEMAPct = "price_vs_ema_pct"
	MetricFundingRate   = "funding_rate"
)

// IndicatorSnapshot is the immutable daily record consumed by the scorer.
// Metric values are pointers because upstream sources routinely fail for
// individual series; a nil value must score neutral, never crash.
type IndicatorSnapshot struct {
	Date        time.Time
	Price       float64
	Metrics     map[string]*float64
	CyclePhase  string // market cycle phase label, e.g. "Post-Halving Expansion"
	IsBullTrend bool   // price above its long EMA
}

// Metric returns the named metric value, or nil when absent.
func (s IndicatorSnapshot) Metric(name string) *float64 {
	if s.Metrics == nil {
		return nil
	}
	return s.Metrics[name]
}

// CompositeScore is a [-100, 100] conviction score with its unscaled
// sub-components exposed for diagnostics.
type CompositeScore struct {
	Value       float64            `json:"value"`
	Components  map[string]float64 `json:"components"`
	Description string             `json:"description"`
}

// Scores bundles the two horizons computed per snapshot.
type Scores struct {
	LongTerm   CompositeScore `json:"long_term"`
	MediumTerm CompositeScore `json:"medium_term"`
}

// AllocationDecision is the policy output: the target allocation fraction
// (asset value / net equity, may exceed 1.0 under leverage) and the
// human-readable rationale behind it.
type AllocationDecision struct {
	TargetFraction float64
	Rationale      string
}

// OrderSide is the direction of an order.
type OrderSide string

const (
	OrderSideBuy  OrderSide = "BUY"
	OrderSideSell OrderSide = "SELL"
)

// Order is a quote-currency order derived from the gap between the target
// and the current allocation.
type Order struct {
	Side      OrderSide
	AmountUSD float64
	Rationale string
}

// ExecutedOrder is an entry in the ledger's append-only order log.
type ExecutedOrder struct {
	Date      time.Time
	Side      OrderSide
	AmountUSD float64
	Price     float64
	Quantity  float64
}

// DailySnapshot is one row of the ledger's history, appended exactly once
// per simulated day and never mutated afterward.
type DailySnapshot struct {
	Date            time.Time `json:"date"`
	Price           float64   `json:"price"`
	Cash            float64   `json:"cash"`
	AssetQuantity   float64   `json:"asset_quantity"`
	AssetValue      float64   `json:"asset_value"`
	Debt            float64   `json:"debt"`
	Equity          float64   `json:"equity"`
	InterestAccrued float64   `json:"interest_accrued"`
}
