// Package postgres wires the domain's repository ports to PostgreSQL via
// pgx/v5, grounded on oms/internal/infrastructure/repository/postgres
// and oms/pkg/uow/postgres — hand-written SQL rather than sqlc-generated
// queries, since the sqlc codegen step cannot run in this environment.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/parcelhub/dispatch-engine/internal/infrastructure/postgres/tx"
)

// UoW implements ports.UnitOfWork over a pgx connection pool.
type UoW struct {
	pool *pgxpool.Pool
}

// NewUoW constructs a UoW.
func NewUoW(pool *pgxpool.Pool) *UoW {
	return &UoW{pool: pool}
}

// Begin starts a transaction and returns a context carrying it.
func (u *UoW) Begin(ctx context.Context) (context.Context, error) {
	pgxTx, err := u.pool.Begin(ctx)
	if err != nil {
		return ctx, fmt.Errorf("postgres: begin: %w", err)
	}
	return tx.WithTx(ctx, pgxTx), nil
}

// Commit commits the transaction carried by ctx. No-op if ctx carries
// none.
func (u *UoW) Commit(ctx context.Context) error {
	t := tx.FromContext(ctx)
	if t == nil {
		return nil
	}
	return t.Commit(ctx)
}

// Rollback rolls back the transaction carried by ctx. Safe to call after
// a successful Commit or with no transaction open.
func (u *UoW) Rollback(ctx context.Context) error {
	t := tx.FromContext(ctx)
	if t == nil {
		return nil
	}
	return t.Rollback(ctx)
}
