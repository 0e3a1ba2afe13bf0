// Package postgres implements ports.LegRepository on PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/parcelhub/dispatch-engine/internal/domain/journey"
	"github.com/parcelhub/dispatch-engine/internal/domain/ports"
	"github.com/parcelhub/dispatch-engine/internal/infrastructure/postgres/tx"
)

// Store persists journey.Leg aggregates.
type Store struct {
	pool *pgxpool.Pool
}

// New constructs a Store.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const selectLegCols = `id, order_id, sequence, leg_type, status, origin_sme_id, origin_warehouse_id,
	destination_warehouse_id, destination_is_receiver, assigned_courier_id, estimated_distance_km,
	started_at, completed_at`

func scanLeg(row pgx.Row) (*journey.Leg, error) {
	var (
		id, orderID                                              uuid.UUID
		sequence                                                 int
		legType, status                                          string
		originSmeID, originWarehouseID, destinationWarehouseID   *uuid.UUID
		destinationIsReceiver                                    bool
		assignedCourierID                                        *uuid.UUID
		estimatedDistanceKm                                      *float64
		startedAt, completedAt                                   *time.Time
	)

	if err := row.Scan(&id, &orderID, &sequence, &legType, &status, &originSmeID, &originWarehouseID,
		&destinationWarehouseID, &destinationIsReceiver, &assignedCourierID, &estimatedDistanceKm,
		&startedAt, &completedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrNotFound
		}
		return nil, fmt.Errorf("leg: scan: %w", err)
	}

	return journey.ReconstituteLeg(id, orderID, sequence, journey.LegType(legType), journey.LegStatus(status),
		originSmeID, originWarehouseID, destinationWarehouseID, destinationIsReceiver,
		assignedCourierID, estimatedDistanceKm, startedAt, completedAt), nil
}

func (s *Store) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*journey.Leg, error) {
	q := tx.Pick(ctx, s.pool)
	rows, err := q.Query(ctx, `SELECT `+selectLegCols+` FROM legs WHERE order_id = $1 ORDER BY sequence`, orderID)
	if err != nil {
		return nil, fmt.Errorf("leg: list by order: %w", err)
	}
	defer rows.Close()

	var out []*journey.Leg
	for rows.Next() {
		l, err := scanLeg(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}

	return out, rows.Err()
}

func (s *Store) SaveAll(ctx context.Context, legs []*journey.Leg) error {
	for _, l := range legs {
		if err := s.Save(ctx, l); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Save(ctx context.Context, l *journey.Leg) error {
	q := tx.Pick(ctx, s.pool)
	_, err := q.Exec(ctx, `
		INSERT INTO legs (id, order_id, sequence, leg_type, status, origin_sme_id, origin_warehouse_id,
			destination_warehouse_id, destination_is_receiver, assigned_courier_id, estimated_distance_km,
			started_at, completed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			origin_sme_id = EXCLUDED.origin_sme_id,
			origin_warehouse_id = EXCLUDED.origin_warehouse_id,
			destination_warehouse_id = EXCLUDED.destination_warehouse_id,
			destination_is_receiver = EXCLUDED.destination_is_receiver,
			assigned_courier_id = EXCLUDED.assigned_courier_id,
			estimated_distance_km = EXCLUDED.estimated_distance_km,
			started_at = EXCLUDED.started_at,
			completed_at = EXCLUDED.completed_at`,
		l.ID(), l.OrderID(), l.Sequence(), l.Type().String(), l.Status().String(),
		l.OriginSmeID(), l.OriginWarehouseID(), l.DestinationWarehouseID(), l.DestinationIsReceiver(),
		l.AssignedCourierID(), l.EstimatedDistanceKm(), l.StartedAt(), l.CompletedAt())
	if err != nil {
		return fmt.Errorf("leg: save: %w", err)
	}

	return nil
}

func (s *Store) Get(ctx context.Context, legID uuid.UUID) (*journey.Leg, error) {
	q := tx.Pick(ctx, s.pool)
	row := q.QueryRow(ctx, `SELECT `+selectLegCols+` FROM legs WHERE id = $1`, legID)
	return scanLeg(row)
}

func (s *Store) DeleteByOrder(ctx context.Context, orderID uuid.UUID) error {
	q := tx.Pick(ctx, s.pool)
	_, err := q.Exec(ctx, `DELETE FROM legs WHERE order_id = $1`, orderID)
	if err != nil {
		return fmt.Errorf("leg: delete by order: %w", err)
	}
	return nil
}

func (s *Store) ListByCourier(ctx context.Context, courierID uuid.UUID, statuses []journey.LegStatus) ([]*journey.Leg, error) {
	names := make([]string, 0, len(statuses))
	for _, st := range statuses {
		names = append(names, st.String())
	}

	q := tx.Pick(ctx, s.pool)
	rows, err := q.Query(ctx, `SELECT `+selectLegCols+` FROM legs WHERE assigned_courier_id = $1 AND status = ANY($2)`,
		courierID, names)
	if err != nil {
		return nil, fmt.Errorf("leg: list by courier: %w", err)
	}
	defer rows.Close()

	var out []*journey.Leg
	for rows.Next() {
		l, err := scanLeg(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}

	return out, rows.Err()
}

// ListPendingTransfersReadyInArea returns TRANSFER/PENDING legs whose
// origin hub is in the area and whose preceding PICKUP leg on the same
// order is COMPLETED (spec.md §4.6 Phase 2).
func (s *Store) ListPendingTransfersReadyInArea(ctx context.Context, areaID uuid.UUID) ([]*journey.Leg, error) {
	q := tx.Pick(ctx, s.pool)
	rows, err := q.Query(ctx, `
		SELECT l.id, l.order_id, l.sequence, l.leg_type, l.status, l.origin_sme_id, l.origin_warehouse_id,
			l.destination_warehouse_id, l.destination_is_receiver, l.assigned_courier_id, l.estimated_distance_km,
			l.started_at, l.completed_at
		FROM legs l
		JOIN warehouses w ON w.id = l.origin_warehouse_id
		JOIN legs pickup ON pickup.order_id = l.order_id AND pickup.leg_type = 'PICKUP'
		WHERE l.leg_type = 'TRANSFER' AND l.status = 'PENDING'
			AND w.area_id = $1 AND pickup.status = 'COMPLETED'`, areaID)
	if err != nil {
		return nil, fmt.Errorf("leg: list pending transfers: %w", err)
	}
	defer rows.Close()

	var out []*journey.Leg
	for rows.Next() {
		l, err := scanLeg(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}

	return out, rows.Err()
}

// ListCompletedPickupsSince supports the warehouse load-sync job
// (SPEC_FULL.md §3): counts legs currently sitting at warehouseID,
// i.e. completed-inbound-but-not-yet-outbound.
func (s *Store) ListCompletedPickupsSince(ctx context.Context, warehouseID uuid.UUID) (int, error) {
	q := tx.Pick(ctx, s.pool)
	var count int
	err := q.QueryRow(ctx, `
		SELECT COUNT(*) FROM legs
		WHERE destination_warehouse_id = $1 AND status = 'COMPLETED'
			AND order_id NOT IN (
				SELECT order_id FROM legs WHERE origin_warehouse_id = $1 AND status IN ('IN_PROGRESS','COMPLETED')
			)`, warehouseID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("leg: count resting at warehouse: %w", err)
	}

	return count, nil
}
