// Package metrics declares the prometheus collectors of the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Query results.
const (
	ResultSafe          = "safe"
	ResultContradiction = "contradiction"
	ResultTimeout       = "timeout"
	ResultError         = "error"
)

var (
	// QueriesTotal counts safety queries by result.
	QueriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wumpus_queries_total",
		Help: "Total safety queries by result",
	}, []string{"result"})

	// QueryDuration tracks enumeration latency per grid size.
	QueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wumpus_query_duration_seconds",
		Help:    "Safety query duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 16), // 0.1ms to ~3s
	}, []string{"grid_size"})

	// QueryModels tracks how many consistent worlds a query found.
	QueryModels = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "wumpus_query_models",
		Help:    "Consistent world models per safety query",
		Buckets: prometheus.ExponentialBuckets(1, 4, 11),
	})

	// SafeCells tracks the size of the certified safe set.
	SafeCells = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "wumpus_query_safe_cells",
		Help:    "Cells certified safe per query",
		Buckets: []float64{0, 1, 2, 3, 4, 6, 8, 12, 16},
	})

	// CrossCheckMismatches counts disagreements between enumeration and SAT.
	CrossCheckMismatches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wumpus_crosscheck_mismatch_total",
		Help: "Safety answers on which the SAT cross-check disagreed",
	})

	// SessionsExpired counts sessions removed by the idle sweep.
	SessionsExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wumpus_sessions_expired_total",
		Help: "Sessions deleted by the idle expirer",
	})

	// HTTPRequests counts requests by method and status class.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wumpus_http_requests_total",
		Help: "HTTP requests by method and status class",
	}, []string{"method", "status"})

	// HTTPRequestDuration tracks latency per chi route pattern.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wumpus_http_request_duration_seconds",
		Help:    "HTTP request duration by route pattern",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
)
