package migrations

import (
	"context"
	"embed"
	"fmt"

	_ "github.com/lib/pq" // registers the "postgres" database/sql driver used by goose
	"github.com/pressly/goose/v3"
)

//go:embed postgres/*.sql
var postgresFS embed.FS

// RunPostgres applies pending goose migrations to the database at dsn.
func RunPostgres(ctx context.Context, dsn string) error {
	db, err := goose.OpenDBWithDriver("postgres", dsn)
	if err != nil {
		return fmt.Errorf("open postgres for migrations: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(postgresFS)
	defer goose.SetBaseFS(nil)

	if err := goose.UpContext(ctx, db, "postgres"); err != nil {
		return fmt.Errorf("apply postgres migrations: %w", err)
	}
	return nil
}

// PostgresVersion reports the latest applied goose version.
func PostgresVersion(ctx context.Context, dsn string) (int64, error) {
	db, err := goose.OpenDBWithDriver("postgres", dsn)
	if err != nil {
		return 0, fmt.Errorf("open postgres for migrations: %w", err)
	}
	defer db.Close()

	return goose.GetDBVersionContext(ctx, db)
}
