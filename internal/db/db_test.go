package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAndMigrate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "invoicer.db")

	database, err := Open(path, "test-key")
	require.NoError(t, err)
	defer database.Close()

	require.NoError(t, database.RunMigrations())
	// a second run is a no-op
	require.NoError(t, database.RunMigrations())

	v, err := database.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, len(migrations), v)

	for _, table := range []string{"company_settings", "invoices", "line_items"} {
		var name string
		err := database.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		require.NoError(t, err, table)
	}
}

func TestSettingsTableIsSingleton(t *testing.T) {
	database, err := Open(filepath.Join(t.TempDir(), "invoicer.db"), "test-key")
	require.NoError(t, err)
	defer database.Close()
	require.NoError(t, database.RunMigrations())

	insert := `INSERT INTO company_settings (id, company_name, created_at, updated_at) VALUES (?, 'ACME', 'now', 'now')`
	_, err = database.Exec(insert, "a")
	require.NoError(t, err)
	_, err = database.Exec(insert, "b")
	assert.Error(t, err, "a second settings row must be rejected")
}

func TestForeignKeysSurviveReconnect(t *testing.T) {
	database, err := Open(filepath.Join(t.TempDir(), "invoicer.db"), "test-key")
	require.NoError(t, err)
	defer database.Close()
	require.NoError(t, database.RunMigrations())

	// no idle connections: every statement below runs on a fresh one
	database.SetMaxIdleConns(0)

	var enabled int
	require.NoError(t, database.QueryRow("PRAGMA foreign_keys").Scan(&enabled))
	assert.Equal(t, 1, enabled)

	_, err = database.Exec(`INSERT INTO invoices (id, invoice_number, invoice_date, client_name, created_at, updated_at)
		VALUES ('inv-1', 'INV-0001', '2026-10-14', 'Globex', 'now', 'now')`)
	require.NoError(t, err)
	_, err = database.Exec(`INSERT INTO line_items (id, invoice_id, quantity, rate, amount) VALUES ('li-1', 'inv-1', '1', '5', '5')`)
	require.NoError(t, err)

	_, err = database.Exec(`INSERT INTO line_items (id, invoice_id, quantity, rate, amount) VALUES ('li-2', 'missing', '1', '5', '5')`)
	assert.Error(t, err, "orphan line items must be rejected")

	_, err = database.Exec("DELETE FROM invoices")
	require.NoError(t, err)
	var n int
	require.NoError(t, database.QueryRow("SELECT COUNT(*) FROM line_items").Scan(&n))
	assert.Zero(t, n, "line items cascade with their invoice")
}
