// Package backtest implements the walk-forward parameter sweep: rolling
// z-score threshold strategies evaluated over a grid of window lengths and
// entry/exit thresholds across multiple historical sub-periods, each paired
// with a static-threshold baseline.
package backtest

import (
	"errors"
	"time"

	"github.com/aristath/btcquant/internal/domain"
)

// Period is one named historical sub-period of the sweep.
type Period struct {
	Name  string    `yaml:"name"`
	Start time.Time `yaml:"start"`
	End   time.Time `yaml:"end"`
}

// Config holds the sweep grid and strategy parameters. Validated before
// any run starts: an empty grid is a setup error, not a runtime one.
type Config struct {
	// WindowDays are the rolling z-score window lengths to test.
	WindowDays []int `yaml:"window_days"`
	// BuyThresholds are z-score levels below which the strategy goes all-in.
	BuyThresholds []float64 `yaml:"buy_thresholds"`
	// SellThresholds are z-score levels above which the strategy goes all-out.
	SellThresholds []float64 `yaml:"sell_thresholds"`
	// Periods are the historical sub-periods to slice the series into.
	Periods []Period `yaml:"periods"`

	// MinPeriods lets the rolling statistic emit signals before a full
	// window has accumulated.
	MinPeriods int `yaml:"min_periods"`
	// InitialCapital is the starting equity of each grid cell's backtest.
	InitialCapital float64 `yaml:"initial_capital"`

	// Static baseline thresholds on the raw valuation metric.
	StaticBuyBelow  float64 `yaml:"static_buy_below"`
	StaticSellAbove float64 `yaml:"static_sell_above"`

	// Workers bounds the parallelism of the sweep. Zero means one worker
	// per CPU.
	Workers int `yaml:"workers"`
}

// DefaultConfig returns the production sweep grid: 1-4 year windows and
// the threshold ranges the strategy research settled on.
func DefaultConfig() Config {
	return Config{
		WindowDays:     []int{365, 730, 1095, 1460},
		BuyThresholds:  []float64{-1.0, -1.2, -1.5, -1.8, -2.0},
		SellThresholds: []float64{1.5, 2.0, 2.5, 3.0, 3.5},
		Periods: []Period{
			{Name: "2016_2017_Bull", Start: date(2016, 1, 1), End: date(2017, 12, 31)},
			{Name: "2018_Bear", Start: date(2018, 1, 1), End: date(2018, 12, 31)},
			{Name: "2019_Recovery", Start: date(2019, 1, 1), End: date(2019, 12, 31)},
			{Name: "2020_2021_Bull", Start: date(2020, 1, 1), End: date(2021, 12, 31)},
			{Name: "2022_Bear", Start: date(2022, 1, 1), End: date(2022, 12, 31)},
			{Name: "2023_2024_Cycle", Start: date(2023, 1, 1), End: date(2024, 11, 29)},
			{Name: "Full_History", Start: date(2016, 1, 1), End: date(2024, 11, 29)},
		},
		MinPeriods:      30,
		InitialCapital:  10000.0,
		StaticBuyBelow:  1.0,
		StaticSellAbove: 3.7,
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Validate rejects grids with zero combinations.
func (c Config) Validate() error {
	if len(c.WindowDays) == 0 || len(c.BuyThresholds) == 0 || len(c.SellThresholds) == 0 {
		return errors.New("backtest: sweep grid has zero combinations")
	}
	if len(c.Periods) == 0 {
		return errors.New("backtest: sweep has no periods")
	}
	if c.InitialCapital <= 0 {
		return errors.New("backtest: initial capital must be positive")
	}
	return nil
}

// Combinations returns the total number of grid cells.
func (c Config) Combinations() int {
	return len(c.WindowDays) * len(c.BuyThresholds) * len(c.SellThresholds) * len(c.Periods)
}

// SeriesPoint is one observation of the full historical series: a date, a
// price and the raw valuation metric the z-score is computed on.
type SeriesPoint struct {
	Date   time.Time
	Price  float64
	Metric float64
}

// BuildSeries extracts the (date, price, valuation metric) series from
// daily indicator records, skipping days where the metric is absent.
func BuildSeries(records []domain.IndicatorSnapshot) []SeriesPoint {
	points := make([]SeriesPoint, 0, len(records))
	for _, rec := range records {
		metric := rec.Metric(domain.MetricMVRV)
		if metric == nil {
			continue
		}
		points = append(points, SeriesPoint{
			Date:   rec.Date,
			Price:  rec.Price,
			Metric: *metric,
		})
	}
	return points
}

// RunMetrics holds the performance figures of one grid cell (or baseline).
type RunMetrics struct {
	ReturnPct      float64
	MaxDrawdownPct float64
	Trades         int
	WinRate        float64
	ProfitFactor   float64
	Calmar         float64
	FinalEquity    float64
}

// SweepRow is one record of the tabular sweep output: the grid cell's
// metrics keyed by (period, window, buy, sell), paired with the static
// baseline metrics for the same period.
type SweepRow struct {
	Period        string
	WindowDays    int
	BuyThreshold  float64
	SellThreshold float64

	ReturnPct      float64
	MaxDrawdownPct float64
	Trades         int
	WinRate        float64
	ProfitFactor   float64
	Calmar         float64

	StaticReturnPct      float64
	StaticMaxDrawdownPct float64
	OutperformancePct    float64

	EquityCurve []float64
}
