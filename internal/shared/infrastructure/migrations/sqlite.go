package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed sqlite/*.sql
var sqliteFS embed.FS

// RunSQLite applies every embedded SQLite migration in file-name order.
// The scripts are idempotent, so it runs on every start.
func RunSQLite(ctx context.Context, db *sql.DB) error {
	names, err := fs.Glob(sqliteFS, "sqlite/*.up.sql")
	if err != nil {
		return fmt.Errorf("list sqlite migrations: %w", err)
	}
	sort.Strings(names)

	for _, name := range names {
		script, err := sqliteFS.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := db.ExecContext(ctx, string(script)); err != nil {
			return fmt.Errorf("apply migration %s: %w", strings.TrimPrefix(name, "sqlite/"), err)
		}
	}
	return nil
}
