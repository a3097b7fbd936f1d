package database

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "test.db")

	db, err := New(Config{Path: path, Profile: ProfileLedger, Name: "test"})
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	assert.Equal(t, "test", db.Name())
	assert.Equal(t, ProfileLedger, db.Profile())
	require.NoError(t, db.Conn().Ping())

	// The nested parent directory was created on demand.
	_, err = db.Conn().Exec(`CREATE TABLE t (id INTEGER PRIMARY KEY)`)
	require.NoError(t, err)
}

func TestNew_DefaultsToStandardProfile(t *testing.T) {
	db, err := New(Config{Path: filepath.Join(t.TempDir(), "d.db"), Name: "d"})
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	assert.Equal(t, ProfileStandard, db.Profile())
}

func TestBuildConnectionString(t *testing.T) {
	ledgerStr := buildConnectionString("/tmp/ledger.db", ProfileLedger)
	assert.True(t, strings.HasPrefix(ledgerStr, "/tmp/ledger.db?"))
	assert.Contains(t, ledgerStr, "journal_mode(WAL)")
	assert.Contains(t, ledgerStr, "synchronous(FULL)")
	assert.Contains(t, ledgerStr, "auto_vacuum(NONE)")
	assert.Contains(t, ledgerStr, "foreign_keys(1)")

	standardStr := buildConnectionString("/tmp/std.db", ProfileStandard)
	assert.Contains(t, standardStr, "synchronous(NORMAL)")
	assert.Contains(t, standardStr, "temp_store(MEMORY)")
	assert.NotContains(t, standardStr, "synchronous(FULL)")
}
