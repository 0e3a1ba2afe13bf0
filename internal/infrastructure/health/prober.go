// Package health tracks the routing-provider liveness bit spec.md §6's
// /health check reports ("a routing-provider ping succeeded in the last
// tick"), grounded on the same ticker-loop shape as
// internal/infrastructure/warehousesync's sync job.
package health

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/shortlink-org/go-sdk/logger"

	"github.com/parcelhub/dispatch-engine/internal/domain/ports"
)

// probeAddress is a stable, always-resolvable address used only to
// verify the routing provider is reachable, never for a real journey.
const probeAddress = "1600 Amphitheatre Parkway, Mountain View, CA"

// RoutingProber periodically geocodes probeAddress and records whether
// the routing provider answered.
type RoutingProber struct {
	log     logger.Logger
	routing ports.RoutingProvider
	ok      atomic.Bool
}

// NewRoutingProber constructs a RoutingProber.
func NewRoutingProber(log logger.Logger, routing ports.RoutingProvider) *RoutingProber {
	return &RoutingProber{log: log, routing: routing}
}

// OK reports whether the most recent probe succeeded.
func (p *RoutingProber) OK() bool {
	return p.ok.Load()
}

// Run probes on interval until ctx is cancelled.
func (p *RoutingProber) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	p.probeOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.probeOnce(ctx)
		}
	}
}

func (p *RoutingProber) probeOnce(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := p.routing.Geocode(probeCtx, probeAddress)
	if err != nil {
		p.log.Warn("routing provider health probe failed", "error", err)
		p.ok.Store(false)
		return
	}

	p.ok.Store(true)
}
