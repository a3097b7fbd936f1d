package ledger

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/btcquant/internal/database"
	"github.com/aristath/btcquant/internal/domain"
)

// Repository persists the portfolio state, the append-only order log and
// the daily snapshot history to the ledger database.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// ordersColumns avoids SELECT * so schema changes fail loudly in one place.
const ordersColumns = `date, side, amount_usd, price, quantity`

const snapshotsColumns = `date, price, cash, asset_quantity, asset_value, debt, equity, interest_accrued`

// NewRepository creates the repository and ensures its schema exists.
func NewRepository(db *database.DB, log zerolog.Logger) (*Repository, error) {
	r := &Repository{
		db:  db.Conn(),
		log: log.With().Str("repo", "ledger").Logger(),
	}
	if err := r.ensureSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize ledger schema: %w", err)
	}
	return r, nil
}

func (r *Repository) ensureSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS portfolio_state (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			cash REAL NOT NULL,
			asset_quantity REAL NOT NULL,
			debt REAL NOT NULL,
			initial_capital REAL NOT NULL,
			last_trade_date INTEGER,
			updated_at INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS orders (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			date INTEGER NOT NULL,
			side TEXT NOT NULL CHECK (side IN ('BUY', 'SELL')),
			amount_usd REAL NOT NULL,
			price REAL NOT NULL,
			quantity REAL NOT NULL,
			created_at INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS snapshots (
			date INTEGER PRIMARY KEY,
			price REAL NOT NULL,
			cash REAL NOT NULL,
			asset_quantity REAL NOT NULL,
			asset_value REAL NOT NULL,
			debt REAL NOT NULL,
			equity REAL NOT NULL,
			interest_accrued REAL NOT NULL
		);
	`
	_, err := r.db.Exec(schema)
	return err
}

// SaveState upserts the singleton portfolio state row.
func (r *Repository) SaveState(l *Ledger) error {
	var lastTrade sql.NullInt64
	if t := l.LastTradeDate(); t != nil {
		lastTrade = sql.NullInt64{Int64: t.Unix(), Valid: true}
	}

	query := `
		INSERT INTO portfolio_state (id, cash, asset_quantity, debt, initial_capital, last_trade_date, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			cash = excluded.cash,
			asset_quantity = excluded.asset_quantity,
			debt = excluded.debt,
			initial_capital = excluded.initial_capital,
			last_trade_date = excluded.last_trade_date,
			updated_at = excluded.updated_at
	`
	_, err := r.db.Exec(query, l.Cash(), l.AssetQuantity(), l.Debt(), l.InitialCapital(), lastTrade, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to save portfolio state: %w", err)
	}
	return nil
}

// AppendOrder records one executed order in the append-only log.
func (r *Repository) AppendOrder(order domain.ExecutedOrder) error {
	query := `INSERT INTO orders (date, side, amount_usd, price, quantity, created_at) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.Exec(query, order.Date.Unix(), string(order.Side), order.AmountUSD, order.Price, order.Quantity, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to append order: %w", err)
	}

	r.log.Info().
		Str("side", string(order.Side)).
		Float64("amount_usd", order.AmountUSD).
		Float64("price", order.Price).
		Msg("Order recorded")

	return nil
}

// AppendSnapshot records one daily snapshot. The date is the primary key,
// so re-running a day replaces nothing and fails loudly instead.
func (r *Repository) AppendSnapshot(snap domain.DailySnapshot) error {
	query := `INSERT INTO snapshots (` + snapshotsColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.Exec(query,
		snap.Date.Unix(), snap.Price, snap.Cash, snap.AssetQuantity,
		snap.AssetValue, snap.Debt, snap.Equity, snap.InterestAccrued,
	)
	if err != nil {
		return fmt.Errorf("failed to append snapshot: %w", err)
	}
	return nil
}

// Load rehydrates a ledger from the database. Returns (false, nil) when no
// state has ever been saved (the caller initializes a fresh ledger).
func (r *Repository) Load(l *Ledger) (bool, error) {
	var (
		cash, assetQuantity, debt, initialCapital float64
		lastTrade                                 sql.NullInt64
	)
	err := r.db.QueryRow(`SELECT cash, asset_quantity, debt, initial_capital, last_trade_date FROM portfolio_state WHERE id = 1`).
		Scan(&cash, &assetQuantity, &debt, &initialCapital, &lastTrade)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load portfolio state: %w", err)
	}

	var lastTradeDate *time.Time
	if lastTrade.Valid {
		t := time.Unix(lastTrade.Int64, 0).UTC()
		lastTradeDate = &t
	}

	orders, err := r.loadOrders()
	if err != nil {
		return false, err
	}
	history, err := r.loadSnapshots()
	if err != nil {
		return false, err
	}

	l.Restore(cash, assetQuantity, debt, initialCapital, lastTradeDate, history, orders)

	r.log.Debug().
		Int("orders", len(orders)).
		Int("snapshots", len(history)).
		Msg("Ledger state loaded")

	return true, nil
}

func (r *Repository) loadOrders() ([]domain.ExecutedOrder, error) {
	rows, err := r.db.Query(`SELECT ` + ordersColumns + ` FROM orders ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var orders []domain.ExecutedOrder
	for rows.Next() {
		var (
			dateUnix int64
			side     string
			order    domain.ExecutedOrder
		)
		if err := rows.Scan(&dateUnix, &side, &order.AmountUSD, &order.Price, &order.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		order.Date = time.Unix(dateUnix, 0).UTC()
		order.Side = domain.OrderSide(side)
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

func (r *Repository) loadSnapshots() ([]domain.DailySnapshot, error) {
	rows, err := r.db.Query(`SELECT ` + snapshotsColumns + ` FROM snapshots ORDER BY date ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var history []domain.DailySnapshot
	for rows.Next() {
		var (
			dateUnix int64
			snap     domain.DailySnapshot
		)
		if err := rows.Scan(&dateUnix, &snap.Price, &snap.Cash, &snap.AssetQuantity,
			&snap.AssetValue, &snap.Debt, &snap.Equity, &snap.InterestAccrued); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snap.Date = time.Unix(dateUnix, 0).UTC()
		history = append(history, snap)
	}
	return history, rows.Err()
}
