package http

import (
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/parcelhub/dispatch-engine/internal/infrastructure/health"
)

// HealthHandler serves GET /health (spec.md §6): 200 if the DB pool is
// up and the last routing-provider probe succeeded.
type HealthHandler struct {
	pool   *pgxpool.Pool
	prober *health.RoutingProber
}

// NewHealthHandler constructs a HealthHandler.
func NewHealthHandler(pool *pgxpool.Pool, prober *health.RoutingProber) *HealthHandler {
	return &HealthHandler{pool: pool, prober: prober}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.pool.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, envelope{Status: "error", Message: "database unreachable"})
		return
	}

	if !h.prober.OK() {
		writeJSON(w, http.StatusServiceUnavailable, envelope{Status: "error", Message: "routing provider unreachable"})
		return
	}

	writeOK(w, map[string]string{"db": "up", "routing": "up"})
}
