// Package postgres implements ports.WarehouseRepository on PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/parcelhub/dispatch-engine/internal/domain/ports"
	"github.com/parcelhub/dispatch-engine/internal/domain/warehouse"
	"github.com/parcelhub/dispatch-engine/internal/infrastructure/postgres/tx"
)

// Store persists warehouse.Warehouse aggregates.
type Store struct {
	pool *pgxpool.Pool
}

// New constructs a Store.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const selectWarehouseCols = `id, kind, lat, lon, area_id, capacity_limit, current_load, status`

func scanWarehouse(row pgx.Row) (*warehouse.Warehouse, error) {
	var (
		id, areaID           uuid.UUID
		kind, status         string
		lat, lon             float64
		capacityLimit, load  int
	)

	if err := row.Scan(&id, &kind, &lat, &lon, &areaID, &capacityLimit, &load, &status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrNotFound
		}
		return nil, fmt.Errorf("warehouse: scan: %w", err)
	}

	w, err := warehouse.New(id, warehouse.Type(kind), lat, lon, areaID, capacityLimit, warehouse.Status(status))
	if err != nil {
		return nil, err
	}
	if err := w.SetCurrentLoad(load); err != nil {
		return nil, err
	}

	return w, nil
}

func (s *Store) Get(ctx context.Context, warehouseID uuid.UUID) (*warehouse.Warehouse, error) {
	q := tx.Pick(ctx, s.pool)
	row := q.QueryRow(ctx, `SELECT `+selectWarehouseCols+` FROM warehouses WHERE id = $1`, warehouseID)
	return scanWarehouse(row)
}

func (s *Store) Save(ctx context.Context, w *warehouse.Warehouse) error {
	q := tx.Pick(ctx, s.pool)
	_, err := q.Exec(ctx, `
		INSERT INTO warehouses (id, kind, lat, lon, area_id, capacity_limit, current_load, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (id) DO UPDATE SET current_load = EXCLUDED.current_load, status = EXCLUDED.status`,
		w.ID(), w.Type().String(), w.Lat(), w.Lon(), w.AreaID(), w.CapacityLimit(), w.CurrentLoad(), w.Status().String())
	if err != nil {
		return fmt.Errorf("warehouse: save: %w", err)
	}
	return nil
}

func (s *Store) ListActiveByType(ctx context.Context, kind warehouse.Type) ([]*warehouse.Warehouse, error) {
	q := tx.Pick(ctx, s.pool)
	rows, err := q.Query(ctx, `SELECT `+selectWarehouseCols+` FROM warehouses WHERE kind = $1 AND status = 'ACTIVE'`, kind.String())
	if err != nil {
		return nil, fmt.Errorf("warehouse: list active by type: %w", err)
	}
	defer rows.Close()

	var out []*warehouse.Warehouse
	for rows.Next() {
		w, err := scanWarehouse(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}

	return out, rows.Err()
}

func (s *Store) ListAll(ctx context.Context) ([]*warehouse.Warehouse, error) {
	q := tx.Pick(ctx, s.pool)
	rows, err := q.Query(ctx, `SELECT `+selectWarehouseCols+` FROM warehouses`)
	if err != nil {
		return nil, fmt.Errorf("warehouse: list all: %w", err)
	}
	defer rows.Close()

	var out []*warehouse.Warehouse
	for rows.Next() {
		w, err := scanWarehouse(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}

	return out, rows.Err()
}
