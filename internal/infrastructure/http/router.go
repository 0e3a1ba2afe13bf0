package http

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/parcelhub/dispatch-engine/internal/domain/ports"
)

// NewRouter assembles the core's external HTTP surface (spec.md §6), Go
// 1.22+ method-pattern routes on a plain http.ServeMux, grounded on
// oms/internal/infrastructure/http/stock_event.go's one non-gRPC
// handler. /health and /metrics are unauthenticated; every other route
// requires a valid bearer token and is wrapped with Instrument for
// tracing/metrics.
func NewRouter(
	identity ports.IdentityService,
	scanHandler *ScanHandler,
	historyHandler *HistoryHandler,
	barcodeImageHandler *BarcodeImageHandler,
	dispatchHandler *DispatchHandler,
	agentHandler *AgentHandler,
	healthHandler *HealthHandler,
) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.Handle("GET /metrics", promhttp.Handler())

	protected := http.NewServeMux()
	protected.HandleFunc("POST /barcodes/scan", Instrument("/barcodes/scan", scanHandler.Scan))
	protected.HandleFunc("POST /journey/scan", Instrument("/journey/scan", scanHandler.UniversalScan))
	protected.HandleFunc("GET /barcodes/order/{order_id}/history", Instrument("/barcodes/order/{order_id}/history", historyHandler.History))
	protected.HandleFunc("GET /barcodes/{code_value}/image", Instrument("/barcodes/{code_value}/image", barcodeImageHandler.Image))

	protected.HandleFunc("POST /dispatch/assign-shipper", Instrument("/dispatch/assign-shipper", dispatchHandler.AssignShipper))
	protected.HandleFunc("POST /dispatch/batch-assign-shippers", Instrument("/dispatch/batch-assign-shippers", dispatchHandler.BatchAssign))
	protected.HandleFunc("PUT /dispatch/legs/{leg_id}", Instrument("/dispatch/legs/{leg_id}", dispatchHandler.UpdateLeg))
	protected.HandleFunc("POST /dispatch/transfer/assign-shipper", Instrument("/dispatch/transfer/assign-shipper", dispatchHandler.AssignTransfer))
	protected.HandleFunc("POST /dispatch/delivery/assign-shipper", Instrument("/dispatch/delivery/assign-shipper", dispatchHandler.AssignDelivery))
	protected.HandleFunc("DELETE /dispatch/legs/{leg_id}", Instrument("/dispatch/legs/{leg_id}", dispatchHandler.DeleteLeg))
	protected.HandleFunc("DELETE /dispatch/orders/{order_id}", Instrument("/dispatch/orders/{order_id}", dispatchHandler.DeleteOrder))
	protected.HandleFunc("GET /dispatch/orders/{order_id}/legs", Instrument("/dispatch/orders/{order_id}/legs", dispatchHandler.OrderLegs))
	protected.HandleFunc("GET /dispatch/summary", Instrument("/dispatch/summary", dispatchHandler.Summary))

	protected.HandleFunc("POST /ai/optimize", Instrument("/ai/optimize", agentHandler.Optimize))
	protected.HandleFunc("POST /ai/report-incident", Instrument("/ai/report-incident", agentHandler.ReportIncident))

	mux.Handle("/", RequireAuth(identity, protected))

	return mux
}
