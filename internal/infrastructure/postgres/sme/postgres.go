// Package postgres implements ports.SMERepository on PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/parcelhub/dispatch-engine/internal/domain/ports"
	"github.com/parcelhub/dispatch-engine/internal/domain/sme"
	"github.com/parcelhub/dispatch-engine/internal/infrastructure/postgres/tx"
)

// Store reads sme.SME aggregates.
type Store struct {
	pool *pgxpool.Pool
}

// New constructs a Store.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Get(ctx context.Context, smeID uuid.UUID) (*sme.SME, error) {
	q := tx.Pick(ctx, s.pool)

	var (
		id, areaID uuid.UUID
		lat, lon   *float64
		status     string
	)

	err := q.QueryRow(ctx, `SELECT id, lat, lon, area_id, status FROM smes WHERE id = $1`, smeID).
		Scan(&id, &lat, &lon, &areaID, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrNotFound
		}
		return nil, fmt.Errorf("sme: get: %w", err)
	}

	return sme.New(id, lat, lon, areaID, sme.Status(status))
}
