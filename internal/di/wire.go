//go:generate wire
//go:build wireinject

// The build tag makes sure the stub is not built in the final build.

/*
Dispatch DI-package
*/
package dispatch_di

import (
	"context"
	"net/http"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/wire"
	"github.com/jackc/pgx/v5/pgxpool"
	openai "github.com/sashabaranov/go-openai"
	"github.com/shortlink-org/go-sdk/logger"
	"go.temporal.io/sdk/client"

	"github.com/parcelhub/dispatch-engine/internal/agent"
	agent_workflow "github.com/parcelhub/dispatch-engine/internal/agent/workflow"
	"github.com/parcelhub/dispatch-engine/internal/dispatch"
	"github.com/parcelhub/dispatch-engine/internal/domain/ports"
	appconfig "github.com/parcelhub/dispatch-engine/internal/infrastructure/config"
	"github.com/parcelhub/dispatch-engine/internal/infrastructure/health"
	httptransport "github.com/parcelhub/dispatch-engine/internal/infrastructure/http"
	"github.com/parcelhub/dispatch-engine/internal/infrastructure/identity"
	"github.com/parcelhub/dispatch-engine/internal/infrastructure/notify"
	"github.com/parcelhub/dispatch-engine/internal/infrastructure/postgres"
	"github.com/parcelhub/dispatch-engine/internal/infrastructure/telemetry"
	areapg "github.com/parcelhub/dispatch-engine/internal/infrastructure/postgres/area"
	barcodepg "github.com/parcelhub/dispatch-engine/internal/infrastructure/postgres/barcode"
	courierpg "github.com/parcelhub/dispatch-engine/internal/infrastructure/postgres/courier"
	legpg "github.com/parcelhub/dispatch-engine/internal/infrastructure/postgres/leg"
	orderpg "github.com/parcelhub/dispatch-engine/internal/infrastructure/postgres/order"
	scaneventpg "github.com/parcelhub/dispatch-engine/internal/infrastructure/postgres/scanevent"
	smepg "github.com/parcelhub/dispatch-engine/internal/infrastructure/postgres/sme"
	warehousepg "github.com/parcelhub/dispatch-engine/internal/infrastructure/postgres/warehouse"
	"github.com/parcelhub/dispatch-engine/internal/infrastructure/warehousesync"
	"github.com/parcelhub/dispatch-engine/internal/incident"
	"github.com/parcelhub/dispatch-engine/internal/planner"
	"github.com/parcelhub/dispatch-engine/internal/routing"
	"github.com/parcelhub/dispatch-engine/internal/scan"
)

// Service bundles every long-lived component cmd/server needs to start
// and stop the process.
type Service struct {
	Log    logger.Logger
	Config *appconfig.Config
	Pool   *pgxpool.Pool

	Router http.Handler

	WarehouseSync   *warehousesync.Job
	RoutingProber   *health.RoutingProber
	TemporalClient  client.Client
	AgentActivities *agent_workflow.Activities
}

// DefaultSet is the full provider graph for the dispatch engine.
var DefaultSet = wire.NewSet(
	newLogger,
	newConfig,
	newPool,
	newTracerProvider,

	newUnitOfWork,
	wire.Bind(new(ports.UnitOfWork), new(*postgres.UoW)),

	newOrderRepo,
	newLegRepo,
	newBarcodeRepo,
	newCourierRepo,
	newWarehouseRepo,
	newSMERepo,
	newAreaRepo,
	newScanEventRepo,
	wire.Bind(new(ports.OrderRepository), new(*orderpg.Store)),
	wire.Bind(new(ports.LegRepository), new(*legpg.Store)),
	wire.Bind(new(ports.BarcodeRepository), new(*barcodepg.Store)),
	wire.Bind(new(ports.CourierRepository), new(*courierpg.Store)),
	wire.Bind(new(ports.WarehouseRepository), new(*warehousepg.Store)),
	wire.Bind(new(ports.SMERepository), new(*smepg.Store)),
	wire.Bind(new(ports.AreaRepository), new(*areapg.Store)),
	wire.Bind(new(ports.ScanEventRepository), new(*scaneventpg.Store)),

	newRoutingGateway,
	wire.Bind(new(ports.RoutingProvider), new(*routing.Gateway)),

	newKafkaPublisher,
	newEventSink,
	newNotificationSink,
	wire.Bind(new(ports.EventPublisher), new(*notify.EventSink)),
	wire.Bind(new(ports.NotificationSink), new(*notify.Sink)),

	newIdentityManager,
	wire.Bind(new(ports.IdentityService), new(*identity.Manager)),

	newPlanner,
	newManualAssignHandler,
	newBatchAssignHandler,
	newRoleAssignHandler,
	newUpdateLegHandler,
	newDeleteLegHandler,
	newDeleteOrderHandler,
	newSummaryHandler,

	newScanMachine,
	newIncidentHandler,

	newOpenAIClient,
	newAgentEngine,
	newAgentDriver,
	newAgentActivities,

	newTemporalClient,
	newRoutingProber,
	newWarehouseSyncJob,

	newScanHTTPHandler,
	newHistoryHTTPHandler,
	newBarcodeImageHTTPHandler,
	newDispatchHTTPHandler,
	newAgentHTTPHandler,
	newHealthHTTPHandler,
	newRouter,

	NewService,
)

func newLogger() (logger.Logger, error) {
	panic("wireinject stub")
}

func newConfig() (*appconfig.Config, error) {
	panic("wireinject stub")
}

func newTracerProvider() *telemetry.Provider {
	panic("wireinject stub")
}

func newPool(ctx context.Context, cfg *appconfig.Config) (*pgxpool.Pool, func(), error) {
	panic("wireinject stub")
}

func newUnitOfWork(pool *pgxpool.Pool) *postgres.UoW { panic("wireinject stub") }

func newOrderRepo(pool *pgxpool.Pool) *orderpg.Store        { panic("wireinject stub") }
func newLegRepo(pool *pgxpool.Pool) *legpg.Store             { panic("wireinject stub") }
func newBarcodeRepo(pool *pgxpool.Pool) *barcodepg.Store     { panic("wireinject stub") }
func newCourierRepo(pool *pgxpool.Pool) *courierpg.Store     { panic("wireinject stub") }
func newWarehouseRepo(pool *pgxpool.Pool) *warehousepg.Store { panic("wireinject stub") }
func newSMERepo(pool *pgxpool.Pool) *smepg.Store             { panic("wireinject stub") }
func newAreaRepo(pool *pgxpool.Pool) *areapg.Store           { panic("wireinject stub") }
func newScanEventRepo(pool *pgxpool.Pool) *scaneventpg.Store { panic("wireinject stub") }

func newRoutingGateway(cfg *appconfig.Config) (*routing.Gateway, func(), error) {
	panic("wireinject stub")
}

func newKafkaPublisher(cfg *appconfig.Config, log logger.Logger) (message.Publisher, error) {
	panic("wireinject stub")
}
func newEventSink(p message.Publisher) *notify.EventSink { panic("wireinject stub") }
func newNotificationSink(p message.Publisher, log logger.Logger) *notify.Sink {
	panic("wireinject stub")
}

func newIdentityManager(cfg *appconfig.Config) *identity.Manager { panic("wireinject stub") }

func newPlanner(log logger.Logger, warehouses ports.WarehouseRepository, r ports.RoutingProvider) *planner.Planner {
	panic("wireinject stub")
}
func newManualAssignHandler(log logger.Logger, uow ports.UnitOfWork, orders ports.OrderRepository, legs ports.LegRepository, couriers ports.CourierRepository, smes ports.SMERepository, pl *planner.Planner, publish ports.EventPublisher) *dispatch.ManualAssignHandler {
	panic("wireinject stub")
}
func newBatchAssignHandler(log logger.Logger, uow ports.UnitOfWork, orders ports.OrderRepository, legs ports.LegRepository, couriers ports.CourierRepository, smes ports.SMERepository, pl *planner.Planner, publish ports.EventPublisher) *dispatch.BatchAssignHandler {
	panic("wireinject stub")
}
func newRoleAssignHandler(log logger.Logger, uow ports.UnitOfWork, orders ports.OrderRepository, legs ports.LegRepository, couriers ports.CourierRepository) *dispatch.RoleAssignHandler {
	panic("wireinject stub")
}
func newUpdateLegHandler(log logger.Logger, uow ports.UnitOfWork, orders ports.OrderRepository, legs ports.LegRepository, couriers ports.CourierRepository, smes ports.SMERepository, warehouses ports.WarehouseRepository, r ports.RoutingProvider) *dispatch.UpdateLegHandler {
	panic("wireinject stub")
}
func newDeleteLegHandler(log logger.Logger, uow ports.UnitOfWork, legs ports.LegRepository) *dispatch.DeleteLegHandler {
	panic("wireinject stub")
}
func newDeleteOrderHandler(log logger.Logger, uow ports.UnitOfWork, orders ports.OrderRepository, legs ports.LegRepository, barcodes ports.BarcodeRepository) *dispatch.DeleteOrderHandler {
	panic("wireinject stub")
}
func newSummaryHandler(areas ports.AreaRepository, orders ports.OrderRepository, legs ports.LegRepository, couriers ports.CourierRepository) *dispatch.SummaryHandler {
	panic("wireinject stub")
}

func newScanMachine(log logger.Logger, uow ports.UnitOfWork, orders ports.OrderRepository, legs ports.LegRepository, barcodes ports.BarcodeRepository, couriers ports.CourierRepository, scanEvents ports.ScanEventRepository, notifications ports.NotificationSink) (*scan.Machine, error) {
	panic("wireinject stub")
}
func newIncidentHandler(log logger.Logger, uow ports.UnitOfWork, couriers ports.CourierRepository, legs ports.LegRepository, r ports.RoutingProvider, publish ports.EventPublisher) *incident.Handler {
	panic("wireinject stub")
}

func newOpenAIClient(cfg *appconfig.Config) *openai.Client { panic("wireinject stub") }
func newAgentEngine(log logger.Logger, orders ports.OrderRepository, legs ports.LegRepository, couriers ports.CourierRepository, warehouses ports.WarehouseRepository, areas ports.AreaRepository, smes ports.SMERepository, r ports.RoutingProvider, batch *dispatch.BatchAssignHandler, incidents *incident.Handler) *agent.Engine {
	panic("wireinject stub")
}
func newAgentDriver(log logger.Logger, oaClient *openai.Client, cfg *appconfig.Config, engine *agent.Engine) *agent.Driver {
	panic("wireinject stub")
}
func newAgentActivities(driver *agent.Driver, areas ports.AreaRepository) *agent_workflow.Activities {
	panic("wireinject stub")
}

func newTemporalClient(cfg *appconfig.Config) (client.Client, error) { panic("wireinject stub") }

func newRoutingProber(log logger.Logger, r ports.RoutingProvider) *health.RoutingProber {
	panic("wireinject stub")
}
func newWarehouseSyncJob(log logger.Logger, warehouses ports.WarehouseRepository, legs ports.LegRepository, cfg *appconfig.Config) *warehousesync.Job {
	panic("wireinject stub")
}

func newScanHTTPHandler(m *scan.Machine) *httptransport.ScanHandler { panic("wireinject stub") }
func newHistoryHTTPHandler(scanEvents ports.ScanEventRepository) *httptransport.HistoryHandler {
	panic("wireinject stub")
}
func newBarcodeImageHTTPHandler(barcodes ports.BarcodeRepository) *httptransport.BarcodeImageHandler {
	panic("wireinject stub")
}
func newDispatchHTTPHandler(manual *dispatch.ManualAssignHandler, batch *dispatch.BatchAssignHandler, role *dispatch.RoleAssignHandler, update *dispatch.UpdateLegHandler, del *dispatch.DeleteLegHandler, deleteOrder *dispatch.DeleteOrderHandler, summary *dispatch.SummaryHandler, legs ports.LegRepository, couriers ports.CourierRepository) *httptransport.DispatchHandler {
	panic("wireinject stub")
}
func newAgentHTTPHandler(driver *agent.Driver, areas ports.AreaRepository, incidents *incident.Handler) *httptransport.AgentHandler {
	panic("wireinject stub")
}
func newHealthHTTPHandler(pool *pgxpool.Pool, prober *health.RoutingProber) *httptransport.HealthHandler {
	panic("wireinject stub")
}
func newRouter(identitySvc ports.IdentityService, scanH *httptransport.ScanHandler, historyH *httptransport.HistoryHandler, barcodeImgH *httptransport.BarcodeImageHandler, dispatchH *httptransport.DispatchHandler, agentH *httptransport.AgentHandler, healthH *httptransport.HealthHandler) http.Handler {
	panic("wireinject stub")
}

func NewService(
	log logger.Logger,
	cfg *appconfig.Config,
	pool *pgxpool.Pool,
	router http.Handler,
	warehouseSync *warehousesync.Job,
	prober *health.RoutingProber,
	temporalClient client.Client,
	agentActivities *agent_workflow.Activities,
	tracerProvider *telemetry.Provider,
) *Service {
	panic("wireinject stub")
}

// InitializeService builds the fully wired Service, mirroring
// oms/internal/di/wire.go's InitializeOMSService.
func InitializeService() (*Service, func(), error) {
	panic(wire.Build(DefaultSet))
}
