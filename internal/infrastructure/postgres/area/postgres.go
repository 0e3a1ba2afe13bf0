// Package postgres implements ports.AreaRepository on PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/parcelhub/dispatch-engine/internal/domain/area"
	"github.com/parcelhub/dispatch-engine/internal/domain/ports"
	"github.com/parcelhub/dispatch-engine/internal/infrastructure/postgres/tx"
)

// Store reads area.Area aggregates.
type Store struct {
	pool *pgxpool.Pool
}

// New constructs a Store.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const selectAreaCols = `id, name, center_lat, center_lon, radius_km, status`

func scanArea(row pgx.Row) (*area.Area, error) {
	var (
		id                         uuid.UUID
		name, status               string
		centerLat, centerLon, radiusKm float64
	)

	if err := row.Scan(&id, &name, &centerLat, &centerLon, &radiusKm, &status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrNotFound
		}
		return nil, fmt.Errorf("area: scan: %w", err)
	}

	return area.New(id, name, centerLat, centerLon, radiusKm, area.Status(status))
}

func (s *Store) Get(ctx context.Context, areaID uuid.UUID) (*area.Area, error) {
	q := tx.Pick(ctx, s.pool)
	row := q.QueryRow(ctx, `SELECT `+selectAreaCols+` FROM areas WHERE id = $1`, areaID)
	return scanArea(row)
}

func (s *Store) ListActive(ctx context.Context) ([]*area.Area, error) {
	q := tx.Pick(ctx, s.pool)
	rows, err := q.Query(ctx, `SELECT `+selectAreaCols+` FROM areas WHERE status = 'ACTIVE'`)
	if err != nil {
		return nil, fmt.Errorf("area: list active: %w", err)
	}
	defer rows.Close()

	var out []*area.Area
	for rows.Next() {
		a, err := scanArea(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}

	return out, rows.Err()
}
