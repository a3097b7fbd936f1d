// Package history persists the daily indicator records consumed by the
// scorer and the backtesting harness. Acquisition of the raw series is
// upstream of this module; this is only their durable form.
package history

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/btcquant/internal/database"
	"github.com/aristath/btcquant/internal/domain"
)

// Repository stores and loads ordered daily indicator records. Metric
// columns are nullable on purpose: upstream sources fail per-series, and
// the scorer treats absent values as neutral.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

const recordsColumns = `date, price, mvrv, mayer_multiple, rup, m2_yoy, interest_rate,
	fear_and_greed, price_vs_ema_pct, funding_rate, cycle_phase, is_bull_trend`

// NewRepository creates the repository and ensures its schema exists.
func NewRepository(db *database.DB, log zerolog.Logger) (*Repository, error) {
	r := &Repository{
		db:  db.Conn(),
		log: log.With().Str("repo", "history").Logger(),
	}
	if err := r.ensureSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}
	return r, nil
}

func (r *Repository) ensureSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS daily_records (
			date INTEGER PRIMARY KEY,
			price REAL NOT NULL,
			mvrv REAL,
			mayer_multiple REAL,
			rup REAL,
			m2_yoy REAL,
			interest_rate REAL,
			fear_and_greed REAL,
			price_vs_ema_pct REAL,
			funding_rate REAL,
			cycle_phase TEXT NOT NULL DEFAULT '',
			is_bull_trend INTEGER NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_daily_records_date ON daily_records(date);
	`
	_, err := r.db.Exec(schema)
	return err
}

// Upsert writes one daily record, replacing any previous row for the date.
func (r *Repository) Upsert(snap domain.IndicatorSnapshot) error {
	query := `
		INSERT OR REPLACE INTO daily_records (` + recordsColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query,
		snap.Date.Unix(),
		snap.Price,
		nullMetric(snap, domain.MetricMVRV),
		nullMetric(snap, domain.MetricMayerMultiple),
		nullMetric(snap, domain.MetricRUP),
		nullMetric(snap, domain.MetricM2YoY),
		nullMetric(snap, domain.MetricInterestRate),
		nullMetric(snap, domain.MetricFearAndGreed),
		nullMetric(snap, domain.MetricPriceVsEMAPct),
		nullMetric(snap, domain.MetricFundingRate),
		snap.CyclePhase,
		boolToInt(snap.IsBullTrend),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert daily record: %w", err)
	}
	return nil
}

// LoadRange returns all records within [start, end] ordered by date.
func (r *Repository) LoadRange(start, end time.Time) ([]domain.IndicatorSnapshot, error) {
	query := `SELECT ` + recordsColumns + ` FROM daily_records WHERE date >= ? AND date <= ? ORDER BY date ASC`
	return r.queryRecords(query, start.Unix(), end.Unix())
}

// LoadAll returns every record ordered by date.
func (r *Repository) LoadAll() ([]domain.IndicatorSnapshot, error) {
	query := `SELECT ` + recordsColumns + ` FROM daily_records ORDER BY date ASC`
	return r.queryRecords(query)
}

// Latest returns the most recent record, or nil when the table is empty.
func (r *Repository) Latest() (*domain.IndicatorSnapshot, error) {
	query := `SELECT ` + recordsColumns + ` FROM daily_records ORDER BY date DESC LIMIT 1`
	records, err := r.queryRecords(query)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

func (r *Repository) queryRecords(query string, args ...any) ([]domain.IndicatorSnapshot, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []domain.IndicatorSnapshot
	for rows.Next() {
		snap, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, snap)
	}
	return records, rows.Err()
}

func scanRecord(rows *sql.Rows) (domain.IndicatorSnapshot, error) {
	var (
		dateUnix                                   int64
		price                                      float64
		mvrv, mayer, rup, m2, rate, fng, ext, fund sql.NullFloat64
		cyclePhase                                 string
		isBullTrend                                int
	)
	if err := rows.Scan(&dateUnix, &price, &mvrv, &mayer, &rup, &m2, &rate, &fng, &ext, &fund, &cyclePhase, &isBullTrend); err != nil {
		return domain.IndicatorSnapshot{}, fmt.Errorf("failed to scan daily record: %w", err)
	}

	metrics := map[string]*float64{}
	putMetric(metrics, domain.MetricMVRV, mvrv)
	putMetric(metrics, domain.MetricMayerMultiple, mayer)
	putMetric(metrics, domain.MetricRUP, rup)
	putMetric(metrics, domain.MetricM2YoY, m2)
	putMetric(metrics, domain.MetricInterestRate, rate)
	putMetric(metrics, domain.MetricFearAndGreed, fng)
	putMetric(metrics, domain.MetricPriceVsEMAPct, ext)
	putMetric(metrics, domain.MetricFundingRate, fund)

	return domain.IndicatorSnapshot{
		Date:        time.Unix(dateUnix, 0).UTC(),
		Price:       price,
		Metrics:     metrics,
		CyclePhase:  cyclePhase,
		IsBullTrend: isBullTrend != 0,
	}, nil
}

func putMetric(metrics map[string]*float64, name string, val sql.NullFloat64) {
	if val.Valid {
		v := val.Float64
		metrics[name] = &v
	}
}

func nullMetric(snap domain.IndicatorSnapshot, name string) sql.NullFloat64 {
	if v := snap.Metric(name); v != nil {
		return sql.NullFloat64{Float64: *v, Valid: true}
	}
	return sql.NullFloat64{}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
