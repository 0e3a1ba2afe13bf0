// Package postgres implements ports.BarcodeRepository on PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/parcelhub/dispatch-engine/internal/domain/barcode"
	"github.com/parcelhub/dispatch-engine/internal/domain/ports"
	"github.com/parcelhub/dispatch-engine/internal/infrastructure/postgres/tx"
)

// Store persists barcode.Barcode aggregates.
type Store struct {
	pool *pgxpool.Pool
}

// New constructs a Store.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Save(ctx context.Context, b *barcode.Barcode) error {
	q := tx.Pick(ctx, s.pool)
	_, err := q.Exec(ctx, `
		INSERT INTO barcodes (id, order_id, code_value, active)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (id) DO UPDATE SET active = EXCLUDED.active`,
		b.ID(), b.OrderID(), b.CodeValue(), b.Active())
	if err != nil {
		return fmt.Errorf("barcode: save: %w", err)
	}
	return nil
}

func (s *Store) FindByCodeValue(ctx context.Context, codeValue string) (*barcode.Barcode, error) {
	q := tx.Pick(ctx, s.pool)

	var id, orderID uuid.UUID
	var active bool
	err := q.QueryRow(ctx, `SELECT id, order_id, active FROM barcodes WHERE code_value = $1`, codeValue).
		Scan(&id, &orderID, &active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrNotFound
		}
		return nil, fmt.Errorf("barcode: find by code value: %w", err)
	}

	b, err := barcode.New(id, orderID, codeValue)
	if err != nil {
		return nil, err
	}
	if !active {
		b.Deactivate()
	}

	return b, nil
}

func (s *Store) DeleteByOrder(ctx context.Context, orderID uuid.UUID) error {
	q := tx.Pick(ctx, s.pool)
	_, err := q.Exec(ctx, `DELETE FROM barcodes WHERE order_id = $1`, orderID)
	if err != nil {
		return fmt.Errorf("barcode: delete by order: %w", err)
	}
	return nil
}
