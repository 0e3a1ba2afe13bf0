// Package tx carries a pgx.Tx through context.Context, the same shape as
// oms/pkg/uow/context.go, so repositories pick up an in-flight
// transaction without a query builder or ORM session object threaded
// through every call.
package tx

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type txKey struct{}

// WithTx returns a context carrying tx.
func WithTx(ctx context.Context, t pgx.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, t)
}

// FromContext returns the pgx.Tx carried by ctx, or nil if none.
func FromContext(ctx context.Context) pgx.Tx {
	t, _ := ctx.Value(txKey{}).(pgx.Tx)
	return t
}

// HasTx reports whether ctx carries a transaction.
func HasTx(ctx context.Context) bool {
	return FromContext(ctx) != nil
}

// Querier is the subset of pgxpool.Pool and pgx.Tx that repositories
// need, so a repository method can run against either a pooled
// connection or an in-flight transaction without caring which.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Pick returns the in-flight transaction carried by ctx, falling back to
// pool when no transaction is open (read-only call paths).
func Pick(ctx context.Context, pool Querier) Querier {
	if t := FromContext(ctx); t != nil {
		return t
	}
	return pool
}

