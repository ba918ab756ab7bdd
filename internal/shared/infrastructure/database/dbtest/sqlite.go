// Package dbtest opens migrated databases for repository tests.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/anandgupta07/coach-sub000/internal/shared/infrastructure/database"
	"github.com/anandgupta07/coach-sub000/internal/shared/infrastructure/database/sqlite"
	"github.com/anandgupta07/coach-sub000/internal/shared/infrastructure/migrations"
)

// NewSQLite returns a connection to a fresh, fully migrated SQLite database that
// is closed when the test ends.
func NewSQLite(t testing.TB) database.Connection {
	t.Helper()
	ctx := context.Background()

	conn, err := sqlite.Open(ctx, database.Config{
		Driver:     database.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "portal.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, migrations.RunSQLite(ctx, conn.(*sqlite.Connection).DB()))
	return conn
}
