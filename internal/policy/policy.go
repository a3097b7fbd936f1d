// Package policy translates composite scores into a target allocation and
// concrete orders. The decision table is an ordered list of guarded rules
// evaluated first-match-wins; the order of the rules is semantically
// load-bearing and must not be rearranged.
package policy

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/btcquant/internal/domain"
)

// ErrInsolvent is returned when net equity is zero or negative. No order
// can be produced for such a day; the caller must stop the affected run
// rather than continue with undefined allocation math.
var ErrInsolvent = errors.New("policy: net equity is zero or negative")

// Config holds the trade gating parameters. The rule thresholds themselves
// live in the rule table below.
type Config struct {
	// MinTradeUSD is the fixed floor of the dynamic minimum-trade threshold.
	MinTradeUSD float64 `yaml:"min_trade_usd"`
	// DynamicThresholdPct scales the threshold with equity: orders below
	// max(MinTradeUSD, DynamicThresholdPct * equity) are suppressed.
	DynamicThresholdPct float64 `yaml:"dynamic_threshold_pct"`
	// CooldownDays suppresses non-urgent orders for this many days after
	// the last executed trade. Urgent rules always bypass the cooldown.
	CooldownDays int `yaml:"cooldown_days"`
}

// DefaultConfig returns the production gating parameters.
func DefaultConfig() Config {
	return Config{
		MinTradeUSD:         10.0,
		DynamicThresholdPct: 0.02,
		CooldownDays:        7,
	}
}

// rule is one entry of the decision table: a guard over (lt, mt), a target
// transform over (lt, mt, current allocation) and a rationale builder.
type rule struct {
	matches   func(lt, mt float64) bool
	target    func(lt, mt, cur float64) float64
	rationale func(lt, mt, tgt float64) string
	urgent    bool
}

// maxLeverage caps the super-bull scale-up at 2x exposure.
const maxLeverage = 2.0

// moonbagFraction is the minimum retained allocation under bearish (but
// not extreme) long-term signals.
const moonbagFraction = 0.10

// neutralFloor keeps the baseline allocation from drifting to zero when no
// rule fires.
const neutralFloor = 0.30

// rules is the ordered decision table. First match wins.
var rules = []rule{
	{
		// 1. Super-Bull leverage: linear scale-up from 1x at lt=75 to 2x at lt=100.
		matches: func(lt, mt float64) bool { return lt > 75 && mt > 50 },
		target: func(lt, mt, cur float64) float64 {
			return math.Min(1+(lt-75)/25, maxLeverage)
		},
		rationale: func(lt, mt, tgt float64) string {
			return fmt.Sprintf("Super Bull (Leveraged %.2fx)", tgt)
		},
		urgent: true,
	},
	{
		// 2. Strong conviction buy: fully invested, no leverage.
		matches:   func(lt, mt float64) bool { return lt > 40 && mt > 0 },
		target:    func(lt, mt, cur float64) float64 { return 1.0 },
		rationale: func(lt, mt, tgt float64) string { return "Strong Buy (High Conviction)" },
		urgent:    true,
	},
	{
		// 3. Extreme bear exit: full capital preservation.
		matches:   func(lt, mt float64) bool { return lt < -60 },
		target:    func(lt, mt, cur float64) float64 { return 0.0 },
		rationale: func(lt, mt, tgt float64) string { return "Extreme Bear (Full Exit)" },
		urgent:    true,
	},
	{
		// 4. Defensive floor: bearish but not extreme, keep a moonbag.
		matches:   func(lt, mt float64) bool { return lt < -40 },
		target:    func(lt, mt, cur float64) float64 { return moonbagFraction },
		rationale: func(lt, mt, tgt float64) string { return "Defensive Exit (Moonbag 10%)" },
		urgent:    true,
	},
	{
		// 5. Dip accumulation: add exposure proportional to dip intensity.
		matches: func(lt, mt float64) bool { return lt > 20 && mt < -20 },
		target: func(lt, mt, cur float64) float64 {
			return math.Min(cur+math.Abs(mt)/200, 1.0)
		},
		rationale: func(lt, mt, tgt float64) string {
			return fmt.Sprintf("Accumulate (Dip Intensity %.0f)", math.Abs(mt))
		},
	},
	{
		// 6. Rally trim: reduce exposure proportional to rally heat, floored
		// at the moonbag.
		matches: func(lt, mt float64) bool { return lt < 20 && mt > 20 },
		target: func(lt, mt, cur float64) float64 {
			return math.Max(cur-mt/200, moonbagFraction)
		},
		rationale: func(lt, mt, tgt float64) string {
			return fmt.Sprintf("Sell Rally (Heat %.0f)", mt)
		},
	},
	{
		// 7. Tactical scalp, capped at 30% exposure.
		matches: func(lt, mt float64) bool { return mt > 50 },
		target: func(lt, mt, cur float64) float64 {
			return math.Min(cur+0.20, 0.30)
		},
		rationale: func(lt, mt, tgt float64) string { return "Buy Scalp (Tactical)" },
	},
	{
		// 8. Neutral baseline: hold, but never drift below the floor.
		matches:   func(lt, mt float64) bool { return true },
		target:    func(lt, mt, cur float64) float64 { return math.Max(cur, neutralFloor) },
		rationale: func(lt, mt, tgt float64) string { return "Neutral (Hold Baseline)" },
	},
}

// Policy evaluates the decision table and sizes orders against the ledger's
// current state. Pure apart from its immutable configuration: identical
// inputs always yield identical decisions.
type Policy struct {
	cfg Config
	log zerolog.Logger
}

// New creates a policy with the given gating configuration.
func New(cfg Config, log zerolog.Logger) *Policy {
	return &Policy{
		cfg: cfg,
		log: log.With().Str("component", "policy").Logger(),
	}
}

// Decide maps (lt, mt, current allocation) to a target fraction and
// rationale via the ordered rule table.
func (p *Policy) Decide(lt, mt, cur float64) (domain.AllocationDecision, bool) {
	for _, r := range rules {
		if r.matches(lt, mt) {
			tgt := r.target(lt, mt, cur)
			return domain.AllocationDecision{
				TargetFraction: tgt,
				Rationale:      r.rationale(lt, mt, tgt),
			}, r.urgent
		}
	}
	// Unreachable: rule 8 matches everything.
	return domain.AllocationDecision{TargetFraction: cur, Rationale: "Neutral (Hold Baseline)"}, false
}

// CalculateOrder evaluates the decision table against the ledger state and
// returns the order needed to reach the target allocation, or nil when no
// trade is warranted.
//
// Gates, in order: insolvency (fatal for the day), the dynamic minimum-trade
// threshold, and the cooldown window (bypassed by urgent rules). Sells are
// capped at current holdings.
func (p *Policy) CalculateOrder(
	scores domain.Scores,
	cash, assetValue, debt float64,
	lastTradeDate *time.Time,
	currentDate time.Time,
) (*domain.Order, domain.AllocationDecision, error) {
	netEquity := cash + assetValue - debt
	if netEquity <= 0 {
		return nil, domain.AllocationDecision{}, ErrInsolvent
	}

	cur := assetValue / netEquity
	lt := scores.LongTerm.Value
	mt := scores.MediumTerm.Value

	decision, urgent := p.Decide(lt, mt, cur)

	targetAssetValue := decision.TargetFraction * netEquity
	diff := targetAssetValue - assetValue

	threshold := math.Max(p.cfg.MinTradeUSD, p.cfg.DynamicThresholdPct*netEquity)
	if math.Abs(diff) < threshold {
		return nil, decision, nil
	}

	if !urgent && p.inCooldown(lastTradeDate, currentDate) {
		p.log.Debug().
			Time("date", currentDate).
			Str("rationale", decision.Rationale).
			Msg("Order suppressed by cooldown")
		return nil, decision, nil
	}

	if diff > 0 {
		return &domain.Order{
			Side:      domain.OrderSideBuy,
			AmountUSD: diff,
			Rationale: decision.Rationale,
		}, decision, nil
	}

	amount := math.Min(-diff, assetValue) // cannot sell more than holdings
	if amount < threshold {
		return nil, decision, nil
	}
	return &domain.Order{
		Side:      domain.OrderSideSell,
		AmountUSD: amount,
		Rationale: decision.Rationale,
	}, decision, nil
}

// inCooldown reports whether the cooldown window is still open.
func (p *Policy) inCooldown(lastTradeDate *time.Time, currentDate time.Time) bool {
	if lastTradeDate == nil || p.cfg.CooldownDays <= 0 {
		return false
	}
	elapsed := currentDate.Sub(*lastTradeDate).Hours() / 24
	return elapsed < float64(p.cfg.CooldownDays)
}
