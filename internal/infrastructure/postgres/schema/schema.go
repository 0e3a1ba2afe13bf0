// Package schema embeds the database schema. golang-migrate isn't part
// of this module's dependency set, so startup applies the single
// idempotent schema file directly instead (every statement is CREATE
// ... IF NOT EXISTS).
package schema

import (
	"context"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed 001_init.sql
var files embed.FS

// Apply executes the embedded schema against pool.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	sql, err := files.ReadFile("001_init.sql")
	if err != nil {
		return fmt.Errorf("schema: read embedded sql: %w", err)
	}

	if _, err := pool.Exec(ctx, string(sql)); err != nil {
		return fmt.Errorf("schema: apply: %w", err)
	}

	return nil
}
