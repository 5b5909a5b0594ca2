package migrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsDirIsValid(t *testing.T) {
	require.NoError(t, ValidateDir("migrations"))
}

func TestOrdersMigrationCarriesStagingColumns(t *testing.T) {
	entries, err := os.ReadDir("migrations")
	require.NoError(t, err)

	var ordersSQL string
	for _, e := range entries {
		if strings.Contains(e.Name(), "create_orders") {
			b, err := os.ReadFile(filepath.Join("migrations", e.Name()))
			require.NoError(t, err)
			ordersSQL = string(b)
		}
	}
	require.NotEmpty(t, ordersSQL, "orders migration missing")

	// Staging metadata must be first-class columns, not packed metadata text.
	assert.Contains(t, ordersSQL, "is_staged")
	assert.Contains(t, ordersSQL, "current_stage")
	assert.Contains(t, ordersSQL, "is_finalized")
	assert.Contains(t, ordersSQL, "finalized_at")
	assert.Contains(t, ordersSQL, "stage TEXT")
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()

	path, err := CreateSQLMigration(dir, "Add Waiter Calls!")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "_add_waiter_calls.sql"))

	require.NoError(t, ValidateDir(dir))

	_, err = CreateSQLMigration(dir, "")
	assert.Error(t, err)
}
