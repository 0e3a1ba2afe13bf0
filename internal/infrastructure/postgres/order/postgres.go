// Package postgres implements ports.OrderRepository on PostgreSQL,
// grounded on oms/internal/infrastructure/repository/postgres/order's
// Load/Save shape, with hand-written SQL instead of sqlc-generated
// queries.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/parcelhub/dispatch-engine/internal/domain/journey"
	"github.com/parcelhub/dispatch-engine/internal/domain/ports"
	"github.com/parcelhub/dispatch-engine/internal/infrastructure/postgres/tx"
)

// Store persists journey.Order aggregates.
type Store struct {
	pool *pgxpool.Pool
}

// New constructs a Store.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const selectOrderCols = `id, order_code, sme_id, receiver_name, receiver_phone, receiver_address,
	receiver_lat, receiver_lon, weight, status, barcode_id, area_id, total_distance_km`

func scanOrder(row pgx.Row) (*journey.Order, error) {
	var (
		id, smeID, barcodeID, areaID                       uuid.UUID
		orderCode, receiverName, receiverPhone, receiverAddr string
		receiverLat, receiverLon                            *float64
		weight, totalDistanceKm                             float64
		status                                              string
	)

	if err := row.Scan(&id, &orderCode, &smeID, &receiverName, &receiverPhone, &receiverAddr,
		&receiverLat, &receiverLon, &weight, &status, &barcodeID, &areaID, &totalDistanceKm); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrNotFound
		}
		return nil, fmt.Errorf("order: scan: %w", err)
	}

	return journey.ReconstituteOrder(id, orderCode, smeID, receiverName, receiverPhone, receiverAddr,
		receiverLat, receiverLon, weight, journey.OrderStatus(status), barcodeID, areaID, totalDistanceKm), nil
}

func (s *Store) Load(ctx context.Context, orderID uuid.UUID) (*journey.Order, error) {
	q := tx.Pick(ctx, s.pool)
	row := q.QueryRow(ctx, `SELECT `+selectOrderCols+` FROM orders WHERE id = $1`, orderID)
	return scanOrder(row)
}

func (s *Store) LoadByCode(ctx context.Context, orderCode string) (*journey.Order, error) {
	q := tx.Pick(ctx, s.pool)
	row := q.QueryRow(ctx, `SELECT `+selectOrderCols+` FROM orders WHERE order_code = $1`, orderCode)
	return scanOrder(row)
}

// LoadForUpdate acquires the per-order row lock required before any leg
// mutation (spec.md §5); must be called within a transaction.
func (s *Store) LoadForUpdate(ctx context.Context, orderID uuid.UUID) (*journey.Order, error) {
	q := tx.Pick(ctx, s.pool)
	row := q.QueryRow(ctx, `SELECT `+selectOrderCols+` FROM orders WHERE id = $1 FOR UPDATE`, orderID)
	return scanOrder(row)
}

func (s *Store) Save(ctx context.Context, o *journey.Order) error {
	q := tx.Pick(ctx, s.pool)
	lat, lon, ok := o.ReceiverCoordinates()
	var latPtr, lonPtr *float64
	if ok {
		latPtr, lonPtr = &lat, &lon
	}

	_, err := q.Exec(ctx, `
		INSERT INTO orders (id, order_code, sme_id, receiver_name, receiver_phone, receiver_address,
			receiver_lat, receiver_lon, weight, status, barcode_id, area_id, total_distance_km)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		ON CONFLICT (id) DO UPDATE SET
			receiver_lat = EXCLUDED.receiver_lat,
			receiver_lon = EXCLUDED.receiver_lon,
			status = EXCLUDED.status,
			total_distance_km = EXCLUDED.total_distance_km`,
		o.ID(), o.OrderCode(), o.SmeID(), o.ReceiverName(), o.ReceiverPhone(), o.ReceiverAddress(),
		latPtr, lonPtr, o.Weight(), o.Status().String(), o.BarcodeID(), o.AreaID(), o.TotalDistanceKm())
	if err != nil {
		return fmt.Errorf("order: save: %w", err)
	}

	return nil
}

func (s *Store) Delete(ctx context.Context, orderID uuid.UUID) error {
	q := tx.Pick(ctx, s.pool)
	_, err := q.Exec(ctx, `DELETE FROM orders WHERE id = $1`, orderID)
	if err != nil {
		return fmt.Errorf("order: delete: %w", err)
	}
	return nil
}

func (s *Store) ListPendingByArea(ctx context.Context, areaID uuid.UUID) ([]*journey.Order, error) {
	q := tx.Pick(ctx, s.pool)
	rows, err := q.Query(ctx, `SELECT `+selectOrderCols+` FROM orders WHERE area_id = $1 AND status = $2`,
		areaID, journey.OrderStatusPending.String())
	if err != nil {
		return nil, fmt.Errorf("order: list pending: %w", err)
	}
	defer rows.Close()

	var out []*journey.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}

	return out, rows.Err()
}
