package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/parcelhub/dispatch-engine/internal/domain/area"
	"github.com/parcelhub/dispatch-engine/internal/domain/barcode"
	"github.com/parcelhub/dispatch-engine/internal/domain/courier"
	"github.com/parcelhub/dispatch-engine/internal/domain/journey"
	"github.com/parcelhub/dispatch-engine/internal/domain/sme"
	"github.com/parcelhub/dispatch-engine/internal/domain/warehouse"
)

// UnitOfWork binds repository calls to a single logical transaction
// (spec.md §5 "a single logical operation ... is one transaction").
// Grounded on oms/pkg/uow: Begin stores the tx in the returned context,
// Commit/Rollback read it back out.
type UnitOfWork interface {
	Begin(ctx context.Context) (context.Context, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// OrderRepository persists Order aggregates.
type OrderRepository interface {
	Load(ctx context.Context, orderID uuid.UUID) (*journey.Order, error)
	LoadByCode(ctx context.Context, orderCode string) (*journey.Order, error)
	// LoadForUpdate acquires the per-order row lock required by spec.md §5
	// before any leg mutation.
	LoadForUpdate(ctx context.Context, orderID uuid.UUID) (*journey.Order, error)
	Save(ctx context.Context, order *journey.Order) error
	Delete(ctx context.Context, orderID uuid.UUID) error
	ListPendingByArea(ctx context.Context, areaID uuid.UUID) ([]*journey.Order, error)
}

// LegRepository persists JourneyLeg aggregates.
type LegRepository interface {
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*journey.Leg, error)
	SaveAll(ctx context.Context, legs []*journey.Leg) error
	Save(ctx context.Context, leg *journey.Leg) error
	Get(ctx context.Context, legID uuid.UUID) (*journey.Leg, error)
	DeleteByOrder(ctx context.Context, orderID uuid.UUID) error
	// ListByCourier returns legs assigned to a courier with status in the
	// given set (used by the Incident Handler, spec.md §4.7).
	ListByCourier(ctx context.Context, courierID uuid.UUID, statuses []journey.LegStatus) ([]*journey.Leg, error)
	// ListPendingTransfersReadyInArea returns TRANSFER/PENDING legs whose
	// origin hub is in the area and whose preceding PICKUP is COMPLETED
	// (spec.md §4.6 Phase 2).
	ListPendingTransfersReadyInArea(ctx context.Context, areaID uuid.UUID) ([]*journey.Leg, error)
	// ListCompletedPickupsSince supports the warehouse load-sync job.
	ListCompletedPickupsSince(ctx context.Context, warehouseID uuid.UUID) (int, error)
}

// BarcodeRepository persists Barcode aggregates.
type BarcodeRepository interface {
	Save(ctx context.Context, b *barcode.Barcode) error
	FindByCodeValue(ctx context.Context, codeValue string) (*barcode.Barcode, error)
	DeleteByOrder(ctx context.Context, orderID uuid.UUID) error
}

// CourierRepository persists Courier aggregates.
type CourierRepository interface {
	Get(ctx context.Context, courierID uuid.UUID) (*courier.Courier, error)
	// GetForUpdate acquires the per-courier row lock (spec.md §5).
	GetForUpdate(ctx context.Context, courierID uuid.UUID) (*courier.Courier, error)
	Save(ctx context.Context, c *courier.Courier) error
	ListOnlineByArea(ctx context.Context, areaID uuid.UUID, vehicle *courier.Vehicle) ([]*courier.Courier, error)
	ListOnlineByAreaExcluding(ctx context.Context, areaID uuid.UUID, exclude uuid.UUID, vehicle *courier.Vehicle) ([]*courier.Courier, error)
	// ListByArea returns every courier in the area regardless of status,
	// used by the dispatch summary read model (SPEC_FULL.md §3).
	ListByArea(ctx context.Context, areaID uuid.UUID) ([]*courier.Courier, error)
	DisplayName(ctx context.Context, courierID uuid.UUID) (string, error)
}

// WarehouseRepository persists Warehouse aggregates.
type WarehouseRepository interface {
	Get(ctx context.Context, warehouseID uuid.UUID) (*warehouse.Warehouse, error)
	Save(ctx context.Context, w *warehouse.Warehouse) error
	ListActiveByType(ctx context.Context, kind warehouse.Type) ([]*warehouse.Warehouse, error)
	ListAll(ctx context.Context) ([]*warehouse.Warehouse, error)
}

// SMERepository persists SME aggregates.
type SMERepository interface {
	Get(ctx context.Context, smeID uuid.UUID) (*sme.SME, error)
}

// AreaRepository persists Area aggregates.
type AreaRepository interface {
	Get(ctx context.Context, areaID uuid.UUID) (*area.Area, error)
	ListActive(ctx context.Context) ([]*area.Area, error)
}

// ScanEventRepository appends an immutable scan history, including
// rejected attempts (SPEC_FULL.md §3 "Scan history").
type ScanEventRepository interface {
	Append(ctx context.Context, ev ScanEvent) error
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]ScanEvent, error)
}

// ScanEvent is one row of the scan history.
type ScanEvent struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	CodeValue   string
	Action      string
	ActorID     string
	WarehouseID *uuid.UUID
	Success     bool
	Message     string
}
