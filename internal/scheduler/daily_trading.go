package scheduler

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/btcquant/internal/domain"
	"github.com/aristath/btcquant/internal/history"
	"github.com/aristath/btcquant/internal/ledger"
	"github.com/aristath/btcquant/internal/policy"
	"github.com/aristath/btcquant/internal/report"
	"github.com/aristath/btcquant/internal/scoring"
)

// DailyTradingJob runs the paper-trading routine once per day: score the
// latest indicator record, derive an order, execute it against the ledger,
// accrue interest, persist everything and archive the report.
type DailyTradingJob struct {
	historyRepo *history.Repository
	ledgerRepo  *ledger.Repository
	ledgerCfg   ledger.Config
	scorer      *scoring.Scorer
	policy      *policy.Policy
	reportDir   string
	log         zerolog.Logger
}

// NewDailyTradingJob wires the daily routine.
func NewDailyTradingJob(
	historyRepo *history.Repository,
	ledgerRepo *ledger.Repository,
	ledgerCfg ledger.Config,
	scorer *scoring.Scorer,
	pol *policy.Policy,
	reportDir string,
	log zerolog.Logger,
) *DailyTradingJob {
	return &DailyTradingJob{
		historyRepo: historyRepo,
		ledgerRepo:  ledgerRepo,
		ledgerCfg:   ledgerCfg,
		scorer:      scorer,
		policy:      pol,
		reportDir:   reportDir,
		log:         log.With().Str("job", "daily_trading").Logger(),
	}
}

// Name implements Job.
func (j *DailyTradingJob) Name() string { return "daily_trading" }

// Run implements Job.
func (j *DailyTradingJob) Run() error {
	record, err := j.historyRepo.Latest()
	if err != nil {
		return fmt.Errorf("daily trading: %w", err)
	}
	if record == nil {
		return errors.New("daily trading: no indicator records available")
	}

	// Upstream feeds routinely fail for the derivative series; derive the
	// trend extension and bull flag from stored price history when absent.
	if record.Metric(domain.MetricPriceVsEMAPct) == nil {
		closes, err := j.historyRepo.TrailingCloses(record.Date, history.TrendEMADays)
		if err != nil {
			return fmt.Errorf("daily trading: %w", err)
		}
		enriched := history.EnrichTrend(*record, closes)
		record = &enriched
	}

	scores := j.scorer.Calculate(*record)
	j.log.Info().
		Time("date", record.Date).
		Float64("lt", scores.LongTerm.Value).
		Float64("mt", scores.MediumTerm.Value).
		Msg("Daily scores")

	led := ledger.New(j.ledgerCfg, j.log)
	loaded, err := j.ledgerRepo.Load(led)
	if err != nil {
		return fmt.Errorf("daily trading: %w", err)
	}
	if !loaded {
		if err := led.Initialize(record.Price); err != nil {
			return fmt.Errorf("daily trading: %w", err)
		}
	}

	order, _, err := j.policy.CalculateOrder(
		scores,
		led.Cash(),
		led.AssetValue(record.Price),
		led.Debt(),
		led.LastTradeDate(),
		record.Date,
	)
	if errors.Is(err, policy.ErrInsolvent) {
		// Fatal for the day's decision, not for the process: surface it
		// and leave the state untouched.
		j.log.Error().Time("date", record.Date).Msg("Portfolio insolvent, no order produced")
		return err
	}
	if err != nil {
		return fmt.Errorf("daily trading: %w", err)
	}

	if order != nil {
		if err := led.ExecuteOrder(order.Side, order.AmountUSD, record.Price, record.Date); err != nil {
			return fmt.Errorf("daily trading: %w", err)
		}
		executed := led.Orders()[len(led.Orders())-1]
		if err := j.ledgerRepo.AppendOrder(executed); err != nil {
			return fmt.Errorf("daily trading: %w", err)
		}
		j.log.Info().
			Str("side", string(order.Side)).
			Float64("amount_usd", order.AmountUSD).
			Str("rationale", order.Rationale).
			Msg("Order executed")
	} else {
		j.log.Info().Msg("No trade needed, allocation within thresholds")
	}

	snapshot, err := led.AccrueAndSnapshot(record.Price, record.Date)
	if err != nil {
		return fmt.Errorf("daily trading: %w", err)
	}
	if err := j.ledgerRepo.AppendSnapshot(snapshot); err != nil {
		return fmt.Errorf("daily trading: %w", err)
	}
	if err := j.ledgerRepo.SaveState(led); err != nil {
		return fmt.Errorf("daily trading: %w", err)
	}

	content := report.Generate(led, scores)
	if err := report.Archive(j.reportDir, record.Date.Format("2006-01-02"), content); err != nil {
		return fmt.Errorf("daily trading: %w", err)
	}

	return nil
}

var _ Job = (*DailyTradingJob)(nil)
