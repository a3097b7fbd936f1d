// Package simulation replays ordered daily records through the
// scorer -> policy -> ledger pipeline and aggregates the resulting
// snapshots into performance metrics.
package simulation

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/btcquant/internal/domain"
	"github.com/aristath/btcquant/internal/ledger"
	"github.com/aristath/btcquant/internal/policy"
	"github.com/aristath/btcquant/internal/scoring"
)

// Result is the output of one simulation run.
type Result struct {
	Snapshots []domain.DailySnapshot
	Orders    []domain.ExecutedOrder
	Metrics   Metrics
	// Insolvent is set when the run was stopped early because net equity
	// went non-positive. Snapshots and metrics cover the days up to the
	// stop.
	Insolvent bool
}

// Engine drives one ledger through a record stream. Each engine owns its
// ledger exclusively; runs are single-threaded with no suspension points.
type Engine struct {
	scorer *scoring.Scorer
	policy *policy.Policy
	ledger *ledger.Ledger
	log    zerolog.Logger
}

// NewEngine creates a simulation engine around a fresh ledger.
func NewEngine(scorer *scoring.Scorer, pol *policy.Policy, led *ledger.Ledger, log zerolog.Logger) *Engine {
	return &Engine{
		scorer: scorer,
		policy: pol,
		ledger: led,
		log:    log.With().Str("component", "simulation").Logger(),
	}
}

// Run processes the ordered record stream to exhaustion: per day it scores
// the snapshot, derives the allocation decision from the ledger's current
// state, executes the resulting order if any, then accrues interest and
// snapshots. An insolvent day stops the run (recorded on the result, not
// an error); anything else that fails mid-stream aborts with an error.
func (e *Engine) Run(records []domain.IndicatorSnapshot) (*Result, error) {
	if len(records) == 0 {
		return nil, errors.New("simulation: empty record stream")
	}

	if !e.ledger.Initialized() {
		if err := e.ledger.Initialize(records[0].Price); err != nil {
			return nil, fmt.Errorf("simulation: %w", err)
		}
	}

	result := &Result{}

	for _, record := range records {
		scores := e.scorer.Calculate(record)

		order, decision, err := e.policy.CalculateOrder(
			scores,
			e.ledger.Cash(),
			e.ledger.AssetValue(record.Price),
			e.ledger.Debt(),
			e.ledger.LastTradeDate(),
			record.Date,
		)
		if errors.Is(err, policy.ErrInsolvent) {
			e.log.Warn().
				Time("date", record.Date).
				Float64("equity", e.ledger.NetEquity(record.Price)).
				Msg("Run stopped: net equity depleted")
			result.Insolvent = true
			break
		}
		if err != nil {
			return nil, fmt.Errorf("simulation: decision failed on %s: %w", record.Date.Format("2006-01-02"), err)
		}

		if order != nil {
			if err := e.ledger.ExecuteOrder(order.Side, order.AmountUSD, record.Price, record.Date); err != nil {
				return nil, fmt.Errorf("simulation: order failed on %s: %w", record.Date.Format("2006-01-02"), err)
			}
			e.log.Debug().
				Time("date", record.Date).
				Str("side", string(order.Side)).
				Float64("amount_usd", order.AmountUSD).
				Str("rationale", order.Rationale).
				Float64("target_fraction", decision.TargetFraction).
				Msg("Order executed")
		}

		if _, err := e.ledger.AccrueAndSnapshot(record.Price, record.Date); err != nil {
			return nil, fmt.Errorf("simulation: snapshot failed on %s: %w", record.Date.Format("2006-01-02"), err)
		}
	}

	result.Snapshots = e.ledger.History()
	result.Orders = e.ledger.Orders()
	result.Metrics = computeMetrics(e.ledger)

	e.log.Info().
		Int("days", len(result.Snapshots)).
		Int("trades", len(result.Orders)).
		Float64("return_pct", result.Metrics.TotalReturnPct).
		Float64("max_dd_pct", result.Metrics.MaxDrawdownPct).
		Bool("insolvent", result.Insolvent).
		Msg("Simulation finished")

	return result, nil
}
