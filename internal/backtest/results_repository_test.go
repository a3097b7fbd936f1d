package backtest

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	testdb "github.com/aristath/btcquant/internal/testing"
)

func newTestResultsRepository(t *testing.T) *ResultsRepository {
	t.Helper()
	db, cleanup := testdb.NewTestDB(t, "results")
	t.Cleanup(cleanup)

	repo, err := NewResultsRepository(db, zerolog.Nop())
	require.NoError(t, err)
	return repo
}

func TestResultsRepository_RoundTrip(t *testing.T) {
	repo := newTestResultsRepository(t)

	rows := []SweepRow{
		{
			Period: "2022_Bear", WindowDays: 730, BuyThreshold: -1.5, SellThreshold: 2.0,
			ReturnPct: 12.5, MaxDrawdownPct: -22.1, Trades: 6, WinRate: 66.67,
			ProfitFactor: 2.4, Calmar: 0.57,
			StaticReturnPct: -8.0, StaticMaxDrawdownPct: -40.0, OutperformancePct: 20.5,
			EquityCurve: []float64{10000, 10100, 11250},
		},
		{
			Period: "Full_History", WindowDays: 365, BuyThreshold: -1.0, SellThreshold: 3.5,
			ReturnPct: 250.0, MaxDrawdownPct: -35.0, Trades: 14, WinRate: 85.71,
			ProfitFactor: 999.0, Calmar: 7.14,
			StaticReturnPct: 180.0, StaticMaxDrawdownPct: -50.0, OutperformancePct: 70.0,
			EquityCurve: []float64{10000, 35000},
		},
	}

	runID, err := repo.SaveRun(rows)
	require.NoError(t, err)
	require.NotEmpty(t, runID)

	loaded, err := repo.LoadRun(runID)
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	// LoadRun orders by period name, so 2022_Bear comes first.
	got := loaded[0]
	assert.Equal(t, "2022_Bear", got.Period)
	assert.Equal(t, 730, got.WindowDays)
	assert.InDelta(t, -1.5, got.BuyThreshold, 1e-9)
	assert.InDelta(t, 12.5, got.ReturnPct, 1e-9)
	assert.Equal(t, 6, got.Trades)
	assert.InDelta(t, 20.5, got.OutperformancePct, 1e-9)
	require.Len(t, got.EquityCurve, 3)
	assert.InDelta(t, 11250.0, got.EquityCurve[2], 1e-9)

	assert.Equal(t, "Full_History", loaded[1].Period)
	assert.InDelta(t, 999.0, loaded[1].ProfitFactor, 1e-9)
}

func TestResultsRepository_RunsAreIsolated(t *testing.T) {
	repo := newTestResultsRepository(t)

	first, err := repo.SaveRun([]SweepRow{{Period: "p", WindowDays: 365}})
	require.NoError(t, err)
	second, err := repo.SaveRun([]SweepRow{{Period: "p", WindowDays: 730}, {Period: "q", WindowDays: 730}})
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	firstRows, err := repo.LoadRun(first)
	require.NoError(t, err)
	assert.Len(t, firstRows, 1)

	secondRows, err := repo.LoadRun(second)
	require.NoError(t, err)
	assert.Len(t, secondRows, 2)
}

func TestResultsRepository_UnknownRun(t *testing.T) {
	repo := newTestResultsRepository(t)

	rows, err := repo.LoadRun("no-such-run")
	require.NoError(t, err)
	assert.Empty(t, rows)
}
