package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aristath/btcquant/internal/backtest"
	"github.com/aristath/btcquant/internal/ledger"
	"github.com/aristath/btcquant/internal/policy"
	"github.com/aristath/btcquant/internal/scoring"
)

// Strategy bundles every strategy parameter set. Loaded once at startup
// and immutable afterwards; tests construct alternates directly.
type Strategy struct {
	Scoring scoring.Config  `yaml:"scoring"`
	Policy  policy.Config   `yaml:"policy"`
	Ledger  ledger.Config   `yaml:"ledger"`
	Sweep   backtest.Config `yaml:"sweep"`
}

// DefaultStrategy returns the production parameter sets.
func DefaultStrategy() Strategy {
	return Strategy{
		Scoring: scoring.DefaultConfig(),
		Policy:  policy.DefaultConfig(),
		Ledger:  ledger.DefaultConfig(),
		Sweep:   backtest.DefaultConfig(),
	}
}

// LoadStrategy returns the defaults overlaid with the YAML file when a
// path is given, then validates the result. Weight sets that do not sum
// to 1.0 or empty sweep grids are setup errors caught here, before any
// run starts.
func LoadStrategy(path string) (Strategy, error) {
	strategy := DefaultStrategy()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Strategy{}, fmt.Errorf("failed to read strategy file: %w", err)
		}
		if err := yaml.Unmarshal(data, &strategy); err != nil {
			return Strategy{}, fmt.Errorf("failed to parse strategy file: %w", err)
		}
	}

	if err := strategy.Validate(); err != nil {
		return Strategy{}, err
	}
	return strategy, nil
}

// Validate checks every parameter set.
func (s Strategy) Validate() error {
	if err := s.Scoring.Validate(); err != nil {
		return err
	}
	if err := s.Sweep.Validate(); err != nil {
		return err
	}
	if s.Ledger.InitialCapital <= 0 {
		return fmt.Errorf("config: initial capital must be positive")
	}
	return nil
}
