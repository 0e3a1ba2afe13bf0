// Package postgres implements ports.CourierRepository on PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/parcelhub/dispatch-engine/internal/domain/courier"
	"github.com/parcelhub/dispatch-engine/internal/domain/ports"
	"github.com/parcelhub/dispatch-engine/internal/infrastructure/postgres/tx"
)

// Store persists courier.Courier aggregates.
type Store struct {
	pool *pgxpool.Pool
}

// New constructs a Store.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const selectCourierCols = `id, vehicle, area_id, current_lat, current_lon, rating, home_warehouse_id, status, display_name`

func scanCourier(row pgx.Row) (*courier.Courier, error) {
	var (
		id, areaID                   uuid.UUID
		vehicle, status, displayName string
		currentLat, currentLon       *float64
		rating                       float64
		homeWarehouseID              *uuid.UUID
	)

	if err := row.Scan(&id, &vehicle, &areaID, &currentLat, &currentLon, &rating, &homeWarehouseID, &status, &displayName); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrNotFound
		}
		return nil, fmt.Errorf("courier: scan: %w", err)
	}

	c, err := courier.New(id, courier.Vehicle(vehicle), areaID, rating, homeWarehouseID, courier.Status(status))
	if err != nil {
		return nil, err
	}
	if currentLat != nil && currentLon != nil {
		if err := c.SetLocation(*currentLat, *currentLon); err != nil {
			return nil, err
		}
	}

	return c, nil
}

func (s *Store) Get(ctx context.Context, courierID uuid.UUID) (*courier.Courier, error) {
	q := tx.Pick(ctx, s.pool)
	row := q.QueryRow(ctx, `SELECT `+selectCourierCols+` FROM couriers WHERE id = $1`, courierID)
	return scanCourier(row)
}

// GetForUpdate acquires the per-courier row lock (spec.md §5).
func (s *Store) GetForUpdate(ctx context.Context, courierID uuid.UUID) (*courier.Courier, error) {
	q := tx.Pick(ctx, s.pool)
	row := q.QueryRow(ctx, `SELECT `+selectCourierCols+` FROM couriers WHERE id = $1 FOR UPDATE`, courierID)
	return scanCourier(row)
}

func (s *Store) Save(ctx context.Context, c *courier.Courier) error {
	q := tx.Pick(ctx, s.pool)
	lat, lon, ok := c.Location()
	var latPtr, lonPtr *float64
	if ok {
		latPtr, lonPtr = &lat, &lon
	}

	_, err := q.Exec(ctx, `
		INSERT INTO couriers (id, vehicle, area_id, current_lat, current_lon, rating, home_warehouse_id, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (id) DO UPDATE SET
			area_id = EXCLUDED.area_id,
			current_lat = EXCLUDED.current_lat,
			current_lon = EXCLUDED.current_lon,
			status = EXCLUDED.status`,
		c.ID(), c.Vehicle().String(), c.AreaID(), latPtr, lonPtr, c.Rating(), c.HomeWarehouseID(), c.Status().String())
	if err != nil {
		return fmt.Errorf("courier: save: %w", err)
	}

	return nil
}

func (s *Store) listWhere(ctx context.Context, where string, args ...any) ([]*courier.Courier, error) {
	q := tx.Pick(ctx, s.pool)
	rows, err := q.Query(ctx, `SELECT `+selectCourierCols+` FROM couriers WHERE `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("courier: list: %w", err)
	}
	defer rows.Close()

	var out []*courier.Courier
	for rows.Next() {
		c, err := scanCourier(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}

	return out, rows.Err()
}

func (s *Store) ListOnlineByArea(ctx context.Context, areaID uuid.UUID, vehicle *courier.Vehicle) ([]*courier.Courier, error) {
	if vehicle != nil {
		return s.listWhere(ctx, `area_id = $1 AND status = 'ONLINE' AND vehicle = $2`, areaID, vehicle.String())
	}
	return s.listWhere(ctx, `area_id = $1 AND status = 'ONLINE'`, areaID)
}

func (s *Store) ListOnlineByAreaExcluding(ctx context.Context, areaID, exclude uuid.UUID, vehicle *courier.Vehicle) ([]*courier.Courier, error) {
	if vehicle != nil {
		return s.listWhere(ctx, `area_id = $1 AND status = 'ONLINE' AND id != $2 AND vehicle = $3`, areaID, exclude, vehicle.String())
	}
	return s.listWhere(ctx, `area_id = $1 AND status = 'ONLINE' AND id != $2`, areaID, exclude)
}

func (s *Store) ListByArea(ctx context.Context, areaID uuid.UUID) ([]*courier.Courier, error) {
	return s.listWhere(ctx, `area_id = $1`, areaID)
}

func (s *Store) DisplayName(ctx context.Context, courierID uuid.UUID) (string, error) {
	q := tx.Pick(ctx, s.pool)
	var name string
	err := q.QueryRow(ctx, `SELECT display_name FROM couriers WHERE id = $1`, courierID).Scan(&name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ports.ErrNotFound
		}
		return "", fmt.Errorf("courier: display name: %w", err)
	}
	return name, nil
}
