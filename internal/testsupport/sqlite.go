// Package testsupport opens migrated throwaway stores for package tests.
package testsupport

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Josh-IE/risk-management/internal/config"
	"github.com/Josh-IE/risk-management/internal/infrastructure/database"
)

// NewSQLiteConnection returns a connection to a migrated SQLite file in a
// test temp dir, closed when the test ends
func NewSQLiteConnection(t testing.TB) *database.Connection {
	t.Helper()

	dsn := config.SQLiteDSN(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, database.MigrateDSN(config.DriverSQLite, dsn))

	conn, err := database.OpenDSN(context.Background(), config.DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}
