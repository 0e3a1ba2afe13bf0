// Package telemetry wires the process-wide OpenTelemetry tracer
// provider, grounded on oms/internal/di/wire.go's newGoSDKTracer slot
// (that one wraps go-sdk/tracer internally; this package configures the
// SDK directly since go-sdk/tracer's internals are not available to
// import against here, the same reasoning as internal/infrastructure/config).
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Provider wraps the SDK TracerProvider so DI callers don't need to
// import go.opentelemetry.io/otel/sdk/trace directly.
type Provider struct {
	tp *sdktrace.TracerProvider
}

// Shutdown flushes and stops the tracer provider.
func (p *Provider) Shutdown() { _ = p.tp.Shutdown(context.Background()) }

// NewProvider installs a process-wide TracerProvider and returns a
// handle to shut it down on exit.
func NewProvider() *Provider {
	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)

	return &Provider{tp: tp}
}
