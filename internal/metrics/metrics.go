package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry served on /metrics
	Registry = prometheus.NewRegistry()

	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path"},
	)

	// RoutingRequests counts directions lookups by provider and outcome (ok, missing_credential, http_error, ...)
	RoutingRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "routing_requests_total", Help: "Directions provider calls by outcome."},
		[]string{"provider", "outcome"},
	)
	RoutingLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "routing_request_duration_seconds", Help: "Directions provider latency in seconds.", Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10}},
		[]string{"provider"},
	)
	DegradedRoutes = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "evacuation_degraded_routes_total", Help: "Routes that fell back to a straight-line placeholder."},
	)

	PlanRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "engine_runs_total", Help: "Engine invocations by kind and result."},
		[]string{"kind", "result"},
	)
	SuggestedTransfers = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "allocation_suggested_transfers", Help: "Transfer suggestions produced by the latest allocation run."},
	)

	IngestedPredictions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "ingested_predictions_total", Help: "Predictions persisted from external feeds."},
		[]string{"source"},
	)
	StreamSubscribers = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "event_stream_subscribers", Help: "Connected live event subscribers."},
	)
)

var regOnce sync.Once

// RegisterDefault registers all collectors on Registry. Safe to call more than once.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(
			HTTPRequests,
			HTTPDuration,
			RoutingRequests,
			RoutingLatency,
			DegradedRoutes,
			PlanRuns,
			SuggestedTransfers,
			IngestedPredictions,
			StreamSubscribers,
		)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}
