// Package postgres implements ports.ScanEventRepository on PostgreSQL,
// backing the supplemented scan history feature (SPEC_FULL.md §3).
package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/parcelhub/dispatch-engine/internal/domain/ports"
	"github.com/parcelhub/dispatch-engine/internal/infrastructure/postgres/tx"
)

// Store appends and reads the immutable scan history.
type Store struct {
	pool *pgxpool.Pool
}

// New constructs a Store.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Append(ctx context.Context, ev ports.ScanEvent) error {
	q := tx.Pick(ctx, s.pool)

	id := ev.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	_, err := q.Exec(ctx, `
		INSERT INTO scan_events (id, order_id, code_value, action, actor_id, warehouse_id, success, message)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		id, ev.OrderID, ev.CodeValue, ev.Action, ev.ActorID, ev.WarehouseID, ev.Success, ev.Message)
	if err != nil {
		return fmt.Errorf("scan_events: append: %w", err)
	}

	return nil
}

func (s *Store) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]ports.ScanEvent, error) {
	q := tx.Pick(ctx, s.pool)
	rows, err := q.Query(ctx, `
		SELECT id, order_id, code_value, action, actor_id, warehouse_id, success, message
		FROM scan_events WHERE order_id = $1 ORDER BY recorded_at`, orderID)
	if err != nil {
		return nil, fmt.Errorf("scan_events: list by order: %w", err)
	}
	defer rows.Close()

	var out []ports.ScanEvent
	for rows.Next() {
		var ev ports.ScanEvent
		if err := rows.Scan(&ev.ID, &ev.OrderID, &ev.CodeValue, &ev.Action, &ev.ActorID, &ev.WarehouseID, &ev.Success, &ev.Message); err != nil {
			return nil, fmt.Errorf("scan_events: scan: %w", err)
		}
		out = append(out, ev)
	}

	return out, rows.Err()
}
