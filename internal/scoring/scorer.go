package scoring

import (
	"github.com/rs/zerolog"

	"github.com/aristath/btcquant/internal/cycle"
	"github.com/aristath/btcquant/internal/domain"
	"github.com/aristath/btcquant/pkg/formulas"
)

// =============================================================================
// COMPOSITE SCORE WEIGHTS
// =============================================================================
// Fixed policy constants, not discovered parameters. Each weight group must
// sum to 1.0 (validated by Config.Validate).
//
// Long-Term blends slow-moving valuation, cycle and liquidity signals.
// Medium-Term blends sentiment, trend extension, trend direction and
// seasonality. The 0.25/0.05 trend-direction/seasonality split is the
// variant the live deployment shipped with.

// Config holds the calibration ranges and blend weights for both composite
// scores. Process-wide and immutable after load; tests construct alternate
// configs directly.
type Config struct {
	// Long-term component weights
	LTOnChainWeight float64 `yaml:"lt_onchain_weight"`
	LTCycleWeight   float64 `yaml:"lt_cycle_weight"`
	LTMacroWeight   float64 `yaml:"lt_macro_weight"`

	// On-chain sub-weights
	MVRVWeight  float64 `yaml:"mvrv_weight"`
	MayerWeight float64 `yaml:"mayer_weight"`
	RUPWeight   float64 `yaml:"rup_weight"`

	// Macro sub-weights
	M2Weight   float64 `yaml:"m2_weight"`
	RateWeight float64 `yaml:"rate_weight"`

	// Medium-term component weights
	MTSentimentWeight   float64 `yaml:"mt_sentiment_weight"`
	MTExtensionWeight   float64 `yaml:"mt_extension_weight"`
	MTTrendDirWeight    float64 `yaml:"mt_trend_dir_weight"`
	MTSeasonalityWeight float64 `yaml:"mt_seasonality_weight"`

	// Calibration ranges
	MVRVMin, MVRVMax           float64 `yaml:"-"`
	MayerMin, MayerMax         float64 `yaml:"-"`
	RUPMin, RUPMax             float64 `yaml:"-"`
	M2Min, M2Max               float64 `yaml:"-"`
	RateMin, RateMax           float64 `yaml:"-"`
	SentimentMin, SentimentMax float64 `yaml:"-"`
	ExtensionMin, ExtensionMax float64 `yaml:"-"`

	// Cycle phase contributions
	CycleAccumulation float64 `yaml:"-"`
	CycleExpansion    float64 `yaml:"-"`
	CycleBear         float64 `yaml:"-"`
}

// DefaultConfig returns the production score configuration.
func DefaultConfig() Config {
	return Config{
		LTOnChainWeight: 0.50,
		LTCycleWeight:   0.30,
		LTMacroWeight:   0.20,

		MVRVWeight:  0.4,
		MayerWeight: 0.3,
		RUPWeight:   0.3,

		M2Weight:   0.6,
		RateWeight: 0.4,

		MTSentimentWeight:   0.40,
		MTExtensionWeight:   0.30,
		MTTrendDirWeight:    0.25,
		MTSeasonalityWeight: 0.05,

		MVRVMin: 0.8, MVRVMax: 3.5,
		MayerMin: 0.6, MayerMax: 2.4,
		RUPMin: 0.0, RUPMax: 3.0,
		M2Min: 0.0, M2Max: 10.0,
		RateMin: 2.0, RateMax: 5.0,
		SentimentMin: 10, SentimentMax: 90,
		ExtensionMin: -30, ExtensionMax: 100,

		CycleAccumulation: 0.8,
		CycleExpansion:    0.4,
		CycleBear:         -0.8,
	}
}

// Validate checks that every weight group sums to 1.0. Called once before
// any run starts; a bad weight set is a setup error, not a runtime one.
func (c Config) Validate() error {
	groups := map[string]float64{
		"long_term":   c.LTOnChainWeight + c.LTCycleWeight + c.LTMacroWeight,
		"onchain":     c.MVRVWeight + c.MayerWeight + c.RUPWeight,
		"macro":       c.M2Weight + c.RateWeight,
		"medium_term": c.MTSentimentWeight + c.MTExtensionWeight + c.MTTrendDirWeight + c.MTSeasonalityWeight,
	}
	for name, sum := range groups {
		if sum < 0.999 || sum > 1.001 {
			return &WeightError{Group: name, Sum: sum}
		}
	}
	return nil
}

// WeightError reports a weight group that does not sum to 1.0.
type WeightError struct {
	Group string
	Sum   float64
}

func (e *WeightError) Error() string {
	return "scoring: weight group " + e.Group + " does not sum to 1.0"
}

// Scorer computes the long-term and medium-term composite scores for a
// daily snapshot. Stateless apart from its immutable configuration.
type Scorer struct {
	cfg         Config
	seasonality *cycle.SeasonalityTable
	log         zerolog.Logger
}

// NewScorer creates a scorer with the given configuration and seasonality
// table.
func NewScorer(cfg Config, seasonality *cycle.SeasonalityTable, log zerolog.Logger) *Scorer {
	return &Scorer{
		cfg:         cfg,
		seasonality: seasonality,
		log:         log.With().Str("component", "scorer").Logger(),
	}
}

// Calculate produces both composite scores for the snapshot. Missing
// metrics normalize to neutral; an unrecognized cycle phase contributes 0.
func (s *Scorer) Calculate(snap domain.IndicatorSnapshot) domain.Scores {
	lt := s.calculateLongTerm(snap)
	mt := s.calculateMediumTerm(snap)

	s.log.Debug().
		Time("date", snap.Date).
		Float64("long_term", lt.Value).
		Float64("medium_term", mt.Value).
		Msg("Scores calculated")

	return domain.Scores{LongTerm: lt, MediumTerm: mt}
}

// calculateLongTerm blends on-chain valuation, cycle position and macro
// liquidity into the slow conviction score.
func (s *Scorer) calculateLongTerm(snap domain.IndicatorSnapshot) domain.CompositeScore {
	cfg := s.cfg

	mvrvScore := Normalize(snap.Metric(domain.MetricMVRV), cfg.MVRVMin, cfg.MVRVMax, true)
	mayerScore := Normalize(snap.Metric(domain.MetricMayerMultiple), cfg.MayerMin, cfg.MayerMax, true)
	rupScore := Normalize(snap.Metric(domain.MetricRUP), cfg.RUPMin, cfg.RUPMax, true)
	onchainScore := mvrvScore*cfg.MVRVWeight + mayerScore*cfg.MayerWeight + rupScore*cfg.RUPWeight

	m2Score := Normalize(snap.Metric(domain.MetricM2YoY), cfg.M2Min, cfg.M2Max, false)
	rateScore := Normalize(snap.Metric(domain.MetricInterestRate), cfg.RateMin, cfg.RateMax, true)
	macroScore := m2Score*cfg.M2Weight + rateScore*cfg.RateWeight

	cycleScore := s.cycleContribution(snap.CyclePhase)

	final := onchainScore*cfg.LTOnChainWeight + cycleScore*cfg.LTCycleWeight + macroScore*cfg.LTMacroWeight
	value := formulas.Round(final*100, 2)

	return domain.CompositeScore{
		Value: value,
		Components: map[string]float64{
			"onchain": formulas.Round(onchainScore, 2),
			"macro":   formulas.Round(macroScore, 2),
			"cycle":   formulas.Round(cycleScore, 2),
		},
		Description: DescribeScore(value),
	}
}

// calculateMediumTerm blends sentiment, trend extension, trend direction
// and seasonality into the fast conviction score.
func (s *Scorer) calculateMediumTerm(snap domain.IndicatorSnapshot) domain.CompositeScore {
	cfg := s.cfg

	sentimentScore := Normalize(snap.Metric(domain.MetricFearAndGreed), cfg.SentimentMin, cfg.SentimentMax, true)
	extensionScore := Normalize(snap.Metric(domain.MetricPriceVsEMAPct), cfg.ExtensionMin, cfg.ExtensionMax, true)

	trendDir := -1.0
	if snap.IsBullTrend {
		trendDir = 1.0
	}

	seasonScore := 0.0
	if s.seasonality != nil && s.seasonality.Get(snap.Date).IsBullish() {
		seasonScore = 1.0
	}

	final := sentimentScore*cfg.MTSentimentWeight +
		extensionScore*cfg.MTExtensionWeight +
		trendDir*cfg.MTTrendDirWeight +
		seasonScore*cfg.MTSeasonalityWeight
	value := formulas.Round(final*100, 2)

	return domain.CompositeScore{
		Value: value,
		Components: map[string]float64{
			"sentiment":   formulas.Round(sentimentScore, 2),
			"extension":   formulas.Round(extensionScore, 2),
			"trend_dir":   formulas.Round(trendDir, 2),
			"seasonality": formulas.Round(seasonScore, 2),
		},
		Description: DescribeScore(value),
	}
}

// cycleContribution maps a phase label to its discrete score. Unknown
// labels contribute 0 — a classifier failure degrades to neutral rather
// than aborting the day's score.
func (s *Scorer) cycleContribution(phase string) float64 {
	switch phase {
	case cycle.PhaseAccumulation, cycle.PhasePreHalvingRally:
		return s.cfg.CycleAccumulation
	case cycle.PhasePostHalvingExpansion:
		return s.cfg.CycleExpansion
	case cycle.PhaseBearDistribution:
		return s.cfg.CycleBear
	default:
		return 0.0
	}
}

// DescribeScore maps a scaled [-100, 100] score onto its qualitative band.
func DescribeScore(score float64) string {
	switch {
	case score >= 80:
		return "Extreme Bullish (Max Opportunity)"
	case score >= 50:
		return "Bullish (Favorable)"
	case score >= 20:
		return "Mildly Bullish"
	case score > -20:
		return "Neutral"
	case score > -50:
		return "Mildly Bearish"
	case score > -80:
		return "Bearish (Unfavorable)"
	default:
		return "Extreme Bearish (Max Risk)"
	}
}
