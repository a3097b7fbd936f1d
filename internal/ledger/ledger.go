// Package ledger owns the portfolio state: cash, asset quantity and
// outstanding margin debt. It executes orders, accrues daily interest and
// appends immutable daily snapshots. A Ledger is exclusively owned by one
// simulation run (or the live paper-trading loop); there is no concurrent
// mutation.
package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/btcquant/internal/domain"
)

// ErrNotInitialized is returned by operations that require a genesis state.
var ErrNotInitialized = errors.New("ledger: not initialized")

// daysPerMonth flattens the monthly margin rate into a daily one
// (annual rate / 12 / 30).
const daysPerMonth = 30.0

// Config holds ledger construction parameters.
type Config struct {
	// InitialCapital is the genesis capital, split 50/50 between cash and
	// asset at the first observed price.
	InitialCapital float64 `yaml:"initial_capital"`
	// AnnualMarginRatePct is the yearly interest rate charged on margin
	// debt, in percent (12.0 = 1% per month).
	AnnualMarginRatePct float64 `yaml:"annual_margin_rate_pct"`
}

// DefaultConfig returns the paper-trading defaults.
func DefaultConfig() Config {
	return Config{
		InitialCapital:      1000.0,
		AnnualMarginRatePct: 12.0,
	}
}

// Ledger is the single-owner mutable portfolio state.
type Ledger struct {
	cash           float64
	assetQuantity  float64
	debt           float64
	initialCapital float64
	dailyRate      float64
	initialized    bool

	lastTradeDate *time.Time
	history       []domain.DailySnapshot
	orders        []domain.ExecutedOrder

	log zerolog.Logger
}

// New creates an uninitialized ledger. Initialize must be called with the
// first observed price before orders or snapshots.
func New(cfg Config, log zerolog.Logger) *Ledger {
	return &Ledger{
		initialCapital: cfg.InitialCapital,
		dailyRate:      cfg.AnnualMarginRatePct / 100.0 / 12.0 / daysPerMonth,
		log:            log.With().Str("component", "ledger").Logger(),
	}
}

// Initialize splits the genesis capital 50/50 into cash and asset at the
// given price. Debt starts at zero.
func (l *Ledger) Initialize(price float64) error {
	if price <= 0 {
		return fmt.Errorf("ledger: invalid genesis price %f", price)
	}
	if l.initialized {
		return errors.New("ledger: already initialized")
	}

	half := l.initialCapital / 2
	l.cash = half
	l.assetQuantity = half / price
	l.debt = 0
	l.initialized = true

	l.log.Info().
		Float64("cash", l.cash).
		Float64("asset_quantity", l.assetQuantity).
		Float64("price", price).
		Msg("Ledger initialized")

	return nil
}

// ExecuteOrder applies one order to the state.
//
// BUY spends cash first; any shortfall is borrowed on margin and cash is
// zeroed. All purchased quantity is credited. SELL credits the proceeds
// and, while debt is outstanding, immediately sweeps min(debt, cash) into
// repayment. Every executed order is appended to the immutable order log.
func (l *Ledger) ExecuteOrder(side domain.OrderSide, amountUSD, price float64, date time.Time) error {
	if !l.initialized {
		return ErrNotInitialized
	}
	if amountUSD <= 0 || price <= 0 {
		return fmt.Errorf("ledger: invalid order amount=%f price=%f", amountUSD, price)
	}

	quantity := amountUSD / price

	switch side {
	case domain.OrderSideBuy:
		if amountUSD > l.cash {
			borrowed := amountUSD - l.cash
			l.debt += borrowed
			l.cash = 0
		} else {
			l.cash -= amountUSD
		}
		l.assetQuantity += quantity

	case domain.OrderSideSell:
		if quantity > l.assetQuantity {
			return fmt.Errorf("ledger: sell quantity %f exceeds holdings %f", quantity, l.assetQuantity)
		}
		l.assetQuantity -= quantity
		l.cash += amountUSD

		if l.debt > 0 && l.cash > 0 {
			repay := l.debt
			if l.cash < repay {
				repay = l.cash
			}
			l.debt -= repay
			l.cash -= repay
		}

	default:
		return fmt.Errorf("ledger: unknown order side %q", side)
	}

	d := date
	l.lastTradeDate = &d
	l.orders = append(l.orders, domain.ExecutedOrder{
		Date:      date,
		Side:      side,
		AmountUSD: amountUSD,
		Price:     price,
		Quantity:  quantity,
	})

	l.log.Debug().
		Str("side", string(side)).
		Float64("amount_usd", amountUSD).
		Float64("price", price).
		Float64("cash", l.cash).
		Float64("debt", l.debt).
		Msg("Order executed")

	return nil
}

// AccrueAndSnapshot applies one day of interest on outstanding debt and
// appends the day's snapshot. Runs exactly once per simulated day, after
// any order execution for that day.
func (l *Ledger) AccrueAndSnapshot(price float64, date time.Time) (domain.DailySnapshot, error) {
	if !l.initialized {
		return domain.DailySnapshot{}, ErrNotInitialized
	}

	interest := 0.0
	if l.debt > 0 {
		interest = l.debt * l.dailyRate
		l.debt += interest
	}

	assetValue := l.assetQuantity * price
	equity := l.cash + assetValue - l.debt

	snapshot := domain.DailySnapshot{
		Date:            date,
		Price:           price,
		Cash:            l.cash,
		AssetQuantity:   l.assetQuantity,
		AssetValue:      assetValue,
		Debt:            l.debt,
		Equity:          equity,
		InterestAccrued: interest,
	}
	l.history = append(l.history, snapshot)

	return snapshot, nil
}

// Initialized reports whether genesis has happened.
func (l *Ledger) Initialized() bool { return l.initialized }

// Cash returns the current cash balance.
func (l *Ledger) Cash() float64 { return l.cash }

// AssetQuantity returns the current asset holdings.
func (l *Ledger) AssetQuantity() float64 { return l.assetQuantity }

// Debt returns the outstanding margin debt.
func (l *Ledger) Debt() float64 { return l.debt }

// InitialCapital returns the genesis capital.
func (l *Ledger) InitialCapital() float64 { return l.initialCapital }

// AssetValue returns the holdings marked at the given price.
func (l *Ledger) AssetValue(price float64) float64 { return l.assetQuantity * price }

// NetEquity returns cash + asset value - debt at the given price.
func (l *Ledger) NetEquity(price float64) float64 {
	return l.cash + l.assetQuantity*price - l.debt
}

// AllocationFraction returns asset value / net equity at the given price;
// values above 1.0 indicate leveraged exposure. Returns 0 when equity is
// not positive (the policy treats that as insolvency).
func (l *Ledger) AllocationFraction(price float64) float64 {
	equity := l.NetEquity(price)
	if equity <= 0 {
		return 0
	}
	return l.AssetValue(price) / equity
}

// LastTradeDate returns the timestamp of the last executed order, or nil.
func (l *Ledger) LastTradeDate() *time.Time { return l.lastTradeDate }

// History returns the append-only snapshot history.
func (l *Ledger) History() []domain.DailySnapshot { return l.history }

// Orders returns the append-only order log.
func (l *Ledger) Orders() []domain.ExecutedOrder { return l.orders }

// Restore rehydrates a ledger from persisted state. Used by the repository
// when resuming the live paper-trading loop.
func (l *Ledger) Restore(cash, assetQuantity, debt, initialCapital float64, lastTradeDate *time.Time, history []domain.DailySnapshot, orders []domain.ExecutedOrder) {
	l.cash = cash
	l.assetQuantity = assetQuantity
	l.debt = debt
	l.initialCapital = initialCapital
	l.lastTradeDate = lastTradeDate
	l.history = history
	l.orders = orders
	l.initialized = true
}
