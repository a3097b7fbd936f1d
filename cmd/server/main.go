// Package main is the entry point for the btcquant paper-trading service.
// It scores the latest daily indicator snapshot, drives the allocation
// policy and ledger, and archives a daily report — all on a cron schedule.
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/aristath/btcquant/internal/config"
	"github.com/aristath/btcquant/internal/cycle"
	"github.com/aristath/btcquant/internal/database"
	"github.com/aristath/btcquant/internal/history"
	"github.com/aristath/btcquant/internal/ledger"
	"github.com/aristath/btcquant/internal/policy"
	"github.com/aristath/btcquant/internal/scheduler"
	"github.com/aristath/btcquant/internal/scoring"
	"github.com/aristath/btcquant/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})

	log.Info().Msg("Starting btcquant")

	strategy, err := config.LoadStrategy(cfg.StrategyFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid strategy configuration")
	}

	ledgerDB, err := database.New(database.Config{
		Path:    cfg.LedgerDBPath(),
		Profile: database.ProfileLedger,
		Name:    "ledger",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open ledger database")
	}
	defer func() { _ = ledgerDB.Close() }()

	historyDB, err := database.New(database.Config{
		Path:    cfg.HistoryDBPath(),
		Profile: database.ProfileStandard,
		Name:    "history",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open history database")
	}
	defer func() { _ = historyDB.Close() }()

	ledgerRepo, err := ledger.NewRepository(ledgerDB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize ledger repository")
	}
	historyRepo, err := history.NewRepository(historyDB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize history repository")
	}

	seasonality := cycle.NewSeasonalityTable(cycle.DefaultMonthlyAvgReturns())
	scorer := scoring.NewScorer(strategy.Scoring, seasonality, log)
	pol := policy.New(strategy.Policy, log)

	dailyJob := scheduler.NewDailyTradingJob(
		historyRepo,
		ledgerRepo,
		strategy.Ledger,
		scorer,
		pol,
		cfg.ReportDir,
		log,
	)

	sched := scheduler.New(log)
	if err := sched.AddJob(cfg.TradeSchedule, dailyJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to register daily trading job")
	}
	sched.Start()
	defer sched.Stop()

	if cfg.DevMode {
		// Run the routine immediately so development does not wait for the
		// next scheduled tick.
		if err := sched.RunNow(dailyJob); err != nil {
			log.Error().Err(err).Msg("Immediate run failed")
		}
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down")
}
