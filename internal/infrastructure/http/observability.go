package http

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/parcelhub/dispatch-engine/internal/infrastructure/http"

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_http_requests_total",
		Help: "Total HTTP requests by route and status.",
	}, []string{"route", "method", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "dispatch_http_request_duration_seconds",
		Help: "HTTP request latency by route.",
	}, []string{"route", "method"})
)

// statusRecorder captures the status code a handler writes, since
// http.ResponseWriter doesn't expose it after the fact.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Instrument wraps next with an OpenTelemetry span and Prometheus
// request metrics, grounded on
// oms/internal/usecases/middleware/{metrics,tracing}.go adapted from
// their CommandHandler[C] wrapping to plain http.HandlerFunc wrapping.
func Instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	tracer := otel.Tracer(tracerName)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), fmt.Sprintf("%s %s", r.Method, route),
			trace.WithAttributes(
				attribute.String("http.route", route),
				attribute.String("http.method", r.Method),
			),
		)
		defer span.End()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next(rec, r.WithContext(ctx))

		duration := time.Since(start).Seconds()
		requestDuration.WithLabelValues(route, r.Method).Observe(duration)
		requestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).Inc()

		if rec.status >= 500 {
			span.SetStatus(codes.Error, http.StatusText(rec.status))
		} else {
			span.SetStatus(codes.Ok, "")
		}
	}
}
