package backtest

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/btcquant/pkg/formulas"
)

// Sweep runs the walk-forward grid over a full historical series.
type Sweep struct {
	cfg Config
	log zerolog.Logger
}

// NewSweep creates a sweep runner. The configuration must already be
// validated.
func NewSweep(cfg Config, log zerolog.Logger) *Sweep {
	return &Sweep{
		cfg: cfg,
		log: log.With().Str("component", "walkforward").Logger(),
	}
}

// Run evaluates every (window, period, buy, sell) combination.
//
// Causality: for each window length the rolling z-score is computed over
// the ENTIRE series first and only then sliced into sub-periods. Slicing
// before computing would leak a sub-period's own future variance into its
// early observations, so slice-after-compute is mandatory here. The static
// baseline ignores the z-score entirely, so it is run once per period and
// attached to every grid row of that period.
func (s *Sweep) Run(series []SeriesPoint) ([]SweepRow, error) {
	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("backtest: empty series")
	}

	metric := make([]float64, len(series))
	for i, p := range series {
		metric[i] = p.Metric
	}

	progress := newProgressReporter(s.cfg.Combinations(), s.log)

	// The static baseline depends only on the period slice, so it is run
	// once per period and shared across every window's grid rows.
	type periodSlice struct {
		name   string
		lo, hi int
		static RunMetrics
	}
	var periods []periodSlice
	for _, period := range s.cfg.Periods {
		lo, hi := periodBounds(series, period)
		if lo >= hi {
			s.log.Warn().
				Str("period", period.Name).
				Msg("Period has no observations, skipping")
			continue
		}
		static, _ := runStaticBaseline(series[lo:hi], s.cfg.StaticBuyBelow, s.cfg.StaticSellAbove, s.cfg.InitialCapital)
		periods = append(periods, periodSlice{name: period.Name, lo: lo, hi: hi, static: static})
	}

	var cells []cellJob
	for _, window := range s.cfg.WindowDays {
		zscores := formulas.RollingZScore(metric, window, s.cfg.MinPeriods)

		for _, period := range periods {
			periodPoints := series[period.lo:period.hi]
			periodZ := zscores[period.lo:period.hi]
			static := period.static

			for _, buy := range s.cfg.BuyThresholds {
				for _, sell := range s.cfg.SellThresholds {
					cells = append(cells, cellJob{
						index: len(cells),
						row: SweepRow{
							Period:               period.name,
							WindowDays:           window,
							BuyThreshold:         buy,
							SellThreshold:        sell,
							StaticReturnPct:      static.ReturnPct,
							StaticMaxDrawdownPct: static.MaxDrawdownPct,
						},
						points:         periodPoints,
						zscores:        periodZ,
						initialCapital: s.cfg.InitialCapital,
					})
				}
			}
		}
	}

	pool := newWorkerPool(s.cfg.Workers)
	rows := pool.runAll(cells, progress.Done)
	progress.Finish()

	s.log.Info().
		Int("combinations", len(rows)).
		Int("windows", len(s.cfg.WindowDays)).
		Int("periods", len(s.cfg.Periods)).
		Msg("Walk-forward sweep complete")

	return rows, nil
}

// periodBounds returns the half-open index range [lo, hi) of the series
// observations within the period.
func periodBounds(series []SeriesPoint, period Period) (int, int) {
	lo := len(series)
	hi := 0
	for i, p := range series {
		if !p.Date.Before(period.Start) && !p.Date.After(period.End) {
			if i < lo {
				lo = i
			}
			hi = i + 1
		}
	}
	if lo > hi {
		return 0, 0
	}
	return lo, hi
}
