package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anandgupta07/coach-sub000/internal/shared/infrastructure/database"
)

func openTestConnection(t *testing.T) database.Connection {
	t.Helper()
	conn, err := Open(context.Background(), database.Config{
		SQLitePath: filepath.Join(t.TempDir(), "portal.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestOpen_RegisteredWithFactory(t *testing.T) {
	ctx := context.Background()

	conn, err := database.Open(ctx, database.Config{
		Driver:     database.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "nested", "portal.db"),
	})
	require.NoError(t, err)
	defer conn.Close()

	assert.NoError(t, conn.Ping(ctx))
	assert.Equal(t, database.DriverSQLite, conn.Driver())
}

func TestOpen_InMemory(t *testing.T) {
	ctx := context.Background()

	conn, err := Open(ctx, database.Config{SQLitePath: MemoryPath})
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Exec(ctx, `CREATE TABLE plans (id TEXT PRIMARY KEY)`)
	require.NoError(t, err)

	var count int
	require.NoError(t, conn.QueryRow(ctx, `SELECT COUNT(*) FROM plans`).Scan(&count))
	assert.Equal(t, 0, count)
}

func TestConnection_ExecAndQuery(t *testing.T) {
	ctx := context.Background()
	conn := openTestConnection(t)

	_, err := conn.Exec(ctx, `CREATE TABLE plans (id TEXT PRIMARY KEY, name TEXT)`)
	require.NoError(t, err)

	result, err := conn.Exec(ctx, `INSERT INTO plans (id, name) VALUES (?, ?)`, "p1", "Quarterly")
	require.NoError(t, err)
	affected, err := result.RowsAffected()
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	_, err = conn.Exec(ctx, `INSERT INTO plans (id, name) VALUES (?, ?)`, "p2", "Half-yearly")
	require.NoError(t, err)

	rows, err := conn.Query(ctx, `SELECT name FROM plans ORDER BY id`)
	require.NoError(t, err)
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		names = append(names, name)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"Quarterly", "Half-yearly"}, names)
}

func TestUnitOfWork_CommitAndRollback(t *testing.T) {
	ctx := context.Background()
	conn := openTestConnection(t)
	uow := database.NewUnitOfWork(conn)

	_, err := conn.Exec(ctx, `CREATE TABLE plans (id TEXT PRIMARY KEY)`)
	require.NoError(t, err)

	txCtx, err := uow.Begin(ctx)
	require.NoError(t, err)
	_, err = database.ExecutorFromContext(txCtx, conn).Exec(txCtx, `INSERT INTO plans (id) VALUES (?)`, "kept")
	require.NoError(t, err)
	require.NoError(t, uow.Commit(txCtx))

	txCtx, err = uow.Begin(ctx)
	require.NoError(t, err)
	_, err = database.ExecutorFromContext(txCtx, conn).Exec(txCtx, `INSERT INTO plans (id) VALUES (?)`, "dropped")
	require.NoError(t, err)
	require.NoError(t, uow.Rollback(txCtx))

	var count int
	require.NoError(t, conn.QueryRow(ctx, `SELECT COUNT(*) FROM plans`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestUnitOfWork_NestedBeginJoinsOuterTransaction(t *testing.T) {
	ctx := context.Background()
	conn := openTestConnection(t)
	uow := database.NewUnitOfWork(conn)

	_, err := conn.Exec(ctx, `CREATE TABLE plans (id TEXT PRIMARY KEY)`)
	require.NoError(t, err)

	outer, err := uow.Begin(ctx)
	require.NoError(t, err)
	inner, err := uow.Begin(outer)
	require.NoError(t, err)

	_, err = database.ExecutorFromContext(inner, conn).Exec(inner, `INSERT INTO plans (id) VALUES (?)`, "nested")
	require.NoError(t, err)

	// The inner commit is a no-op; the outer rollback discards the insert.
	require.NoError(t, uow.Commit(inner))
	require.NoError(t, uow.Rollback(outer))

	var count int
	require.NoError(t, conn.QueryRow(ctx, `SELECT COUNT(*) FROM plans`).Scan(&count))
	assert.Equal(t, 0, count)
}

func TestUnitOfWork_CommitWithoutBegin(t *testing.T) {
	uow := database.NewUnitOfWork(openTestConnection(t))
	assert.ErrorIs(t, uow.Commit(context.Background()), database.ErrNoTransaction)
}
