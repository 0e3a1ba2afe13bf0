//go:build integration

package postgres_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/parcelhub/dispatch-engine/internal/domain/area"
	"github.com/parcelhub/dispatch-engine/internal/domain/barcode"
	"github.com/parcelhub/dispatch-engine/internal/domain/journey"
	"github.com/parcelhub/dispatch-engine/internal/domain/sme"
	barcodepg "github.com/parcelhub/dispatch-engine/internal/infrastructure/postgres/barcode"
	orderpg "github.com/parcelhub/dispatch-engine/internal/infrastructure/postgres/order"
	"github.com/parcelhub/dispatch-engine/internal/testhelpers"
)

// TestOrderStore_SaveLoad exercises the real query text against a
// disposable Postgres container, grounded on
// oms/internal/testhelpers/postgres_container.go.
func TestOrderStore_SaveLoad(t *testing.T) {
	pc := testhelpers.SetupPostgresContainer(t)
	ctx := context.Background()

	areaID := uuid.New()
	_, err := pc.Pool.Exec(ctx,
		`INSERT INTO areas (id, name, center_lat, center_lon, radius_km, status) VALUES ($1, $2, $3, $4, $5, $6)`,
		areaID, "downtown", 10.0, 106.0, 15.0, string(area.StatusActive))
	require.NoError(t, err)

	smeID := uuid.New()
	lat, lon := 10.1, 106.1
	_, err = sme.New(smeID, &lat, &lon, areaID, sme.StatusActive)
	require.NoError(t, err)
	_, err = pc.Pool.Exec(ctx,
		`INSERT INTO smes (id, lat, lon, area_id, status) VALUES ($1, $2, $3, $4, $5)`,
		smeID, lat, lon, areaID, string(sme.StatusActive))
	require.NoError(t, err)

	orderID := uuid.New()
	bc, err := barcode.New(uuid.New(), orderID, "BC-INTEGRATION-1")
	require.NoError(t, err)
	require.NoError(t, barcodepg.New(pc.Pool).Save(ctx, bc))

	store := orderpg.New(pc.Pool)
	ord := journey.NewOrder(orderID, "ORD-INTEGRATION-1", smeID, "Jane Doe", "+15550000", "221B Baker St",
		&lat, &lon, 2.5, bc.ID(), areaID)

	require.NoError(t, store.Save(ctx, ord))

	loaded, err := store.Load(ctx, orderID)
	require.NoError(t, err)
	require.Equal(t, ord.OrderCode(), loaded.OrderCode())
	require.Equal(t, ord.Status(), loaded.Status())

	byCode, err := store.LoadByCode(ctx, "ORD-INTEGRATION-1")
	require.NoError(t, err)
	require.Equal(t, orderID, byCode.ID())
}
