package middleware

import (
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/Harshitk-cp/wumpus/internal/metrics"
	"github.com/go-chi/chi/v5"
)

// MetricsCollector counts requests and errors for /stats and exports them
// to prometheus.
type MetricsCollector struct {
	requestCount *atomic.Int64
	errorCount   *atomic.Int64
}

func NewMetricsCollector(requestCount, errorCount *atomic.Int64) *MetricsCollector {
	return &MetricsCollector{
		requestCount: requestCount,
		errorCount:   errorCount,
	}
}

// Middleware counts every request, and every 4xx/5xx response as an error.
// Latency is labelled by route pattern, never by raw path, to keep session
// ids out of label values.
func (mc *MetricsCollector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		mc.requestCount.Add(1)

		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)

		if rw.statusCode >= 400 {
			mc.errorCount.Add(1)
		}
		metrics.HTTPRequests.WithLabelValues(r.Method, statusClass(rw.statusCode)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(routeLabel(r)).Observe(time.Since(start).Seconds())
	})
}

// statusClass buckets a status code as "2xx", "4xx" and so on.
func statusClass(code int) string {
	return strconv.Itoa(code/100) + "xx"
}

func routeLabel(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
