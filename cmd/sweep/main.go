// Package main runs the walk-forward parameter sweep over the stored
// indicator history, persists the result table and prints the best
// configurations per period.
package main

import (
	"fmt"

	"github.com/aristath/btcquant/internal/backtest"
	"github.com/aristath/btcquant/internal/config"
	"github.com/aristath/btcquant/internal/database"
	"github.com/aristath/btcquant/internal/history"
	"github.com/aristath/btcquant/pkg/logger"
)

const topPerPeriod = 3

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

	strategy, err := config.LoadStrategy(cfg.StrategyFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid strategy configuration")
	}

	historyDB, err := database.New(database.Config{
		Path:    cfg.HistoryDBPath(),
		Profile: database.ProfileStandard,
		Name:    "history",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open history database")
	}
	defer func() { _ = historyDB.Close() }()

	resultsDB, err := database.New(database.Config{
		Path:    cfg.ResultsDBPath(),
		Profile: database.ProfileStandard,
		Name:    "results",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open results database")
	}
	defer func() { _ = resultsDB.Close() }()

	historyRepo, err := history.NewRepository(historyDB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize history repository")
	}
	resultsRepo, err := backtest.NewResultsRepository(resultsDB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize results repository")
	}

	records, err := historyRepo.LoadAll()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load indicator history")
	}
	series := backtest.BuildSeries(records)
	log.Info().Int("observations", len(series)).Msg("Series loaded")

	sweep := backtest.NewSweep(strategy.Sweep, log)
	rows, err := sweep.Run(series)
	if err != nil {
		log.Fatal().Err(err).Msg("Sweep failed")
	}

	runID, err := resultsRepo.SaveRun(rows)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to save sweep results")
	}
	log.Info().Str("run_id", runID).Msg("Sweep results persisted")

	// Best configurations per period, ranked by risk-adjusted return.
	top := backtest.TopByCalmar(rows, topPerPeriod)
	for _, period := range backtest.Periods(rows) {
		fmt.Printf("\n--- %s ---\n", period)
		for _, row := range top[period] {
			fmt.Printf("window=%4dd buy=%+.1f sell=%+.1f  return=%+9.2f%%  maxDD=%+7.2f%%  calmar=%6.2f  (static return %+9.2f%%)\n",
				row.WindowDays, row.BuyThreshold, row.SellThreshold,
				row.ReturnPct, row.MaxDrawdownPct, row.Calmar, row.StaticReturnPct)
		}
	}
}
