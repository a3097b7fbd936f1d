package backtest

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/aristath/btcquant/internal/database"
)

// ResultsRepository persists sweep result rows for downstream reporting.
// Each Run call gets its own run ID so multiple sweeps can coexist and be
// compared.
type ResultsRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

const resultsColumns = `run_id, period, window_days, buy_threshold, sell_threshold,
	return_pct, max_drawdown_pct, trades, win_rate, profit_factor, calmar,
	static_return_pct, static_max_drawdown_pct, outperformance_pct, equity_curve`

// NewResultsRepository creates the repository and ensures its schema exists.
func NewResultsRepository(db *database.DB, log zerolog.Logger) (*ResultsRepository, error) {
	r := &ResultsRepository{
		db:  db.Conn(),
		log: log.With().Str("repo", "sweep_results").Logger(),
	}
	if err := r.ensureSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize sweep results schema: %w", err)
	}
	return r, nil
}

func (r *ResultsRepository) ensureSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS sweep_results (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			period TEXT NOT NULL,
			window_days INTEGER NOT NULL,
			buy_threshold REAL NOT NULL,
			sell_threshold REAL NOT NULL,
			return_pct REAL NOT NULL,
			max_drawdown_pct REAL NOT NULL,
			trades INTEGER NOT NULL,
			win_rate REAL NOT NULL,
			profit_factor REAL NOT NULL,
			calmar REAL NOT NULL,
			static_return_pct REAL NOT NULL,
			static_max_drawdown_pct REAL NOT NULL,
			outperformance_pct REAL NOT NULL,
			equity_curve BLOB,
			created_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_sweep_results_run ON sweep_results(run_id);
		CREATE INDEX IF NOT EXISTS idx_sweep_results_period ON sweep_results(run_id, period);
	`
	_, err := r.db.Exec(schema)
	return err
}

// SaveRun persists all rows of one sweep under a fresh run ID, returned to
// the caller. The equity curve is stored as a msgpack blob: compact, and
// only read back whole.
func (r *ResultsRepository) SaveRun(rows []SweepRow) (string, error) {
	runID := uuid.New().String()
	now := time.Now().Unix()

	tx, err := r.db.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin sweep results transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
		INSERT INTO sweep_results (` + resultsColumns + `, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare sweep results insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, row := range rows {
		curve, err := msgpack.Marshal(row.EquityCurve)
		if err != nil {
			return "", fmt.Errorf("failed to encode equity curve: %w", err)
		}

		if _, err := stmt.Exec(
			runID, row.Period, row.WindowDays, row.BuyThreshold, row.SellThreshold,
			row.ReturnPct, row.MaxDrawdownPct, row.Trades, row.WinRate, row.ProfitFactor, row.Calmar,
			row.StaticReturnPct, row.StaticMaxDrawdownPct, row.OutperformancePct, curve, now,
		); err != nil {
			return "", fmt.Errorf("failed to insert sweep result: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit sweep results: %w", err)
	}

	r.log.Info().
		Str("run_id", runID).
		Int("rows", len(rows)).
		Msg("Sweep results saved")

	return runID, nil
}

// LoadRun returns every row of a run, ordered for stable output.
func (r *ResultsRepository) LoadRun(runID string) ([]SweepRow, error) {
	query := `SELECT ` + resultsColumns + ` FROM sweep_results WHERE run_id = ?
		ORDER BY period, window_days, buy_threshold, sell_threshold`
	rows, err := r.db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load sweep results: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []SweepRow
	for rows.Next() {
		var (
			row      SweepRow
			gotRunID string
			curve    []byte
		)
		if err := rows.Scan(
			&gotRunID, &row.Period, &row.WindowDays, &row.BuyThreshold, &row.SellThreshold,
			&row.ReturnPct, &row.MaxDrawdownPct, &row.Trades, &row.WinRate, &row.ProfitFactor, &row.Calmar,
			&row.StaticReturnPct, &row.StaticMaxDrawdownPct, &row.OutperformancePct, &curve,
		); err != nil {
			return nil, fmt.Errorf("failed to scan sweep result: %w", err)
		}
		if len(curve) > 0 {
			if err := msgpack.Unmarshal(curve, &row.EquityCurve); err != nil {
				return nil, fmt.Errorf("failed to decode equity curve: %w", err)
			}
		}
		results = append(results, row)
	}
	return results, rows.Err()
}
