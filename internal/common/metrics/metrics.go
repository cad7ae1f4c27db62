package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the Prometheus collectors of the dispatcher, gateway,
// orchestrator and workers. Collectors are registered on the registerer
// passed to New, so tests can use a private registry.
type Metrics struct {
	RPCRequests        *prometheus.CounterVec
	RPCDuration        *prometheus.HistogramVec
	GatewayReads       *prometheus.CounterVec
	GatewayFallbacks   *prometheus.CounterVec
	GatewayCacheHits   *prometheus.CounterVec
	CollectionCalls    *prometheus.CounterVec
	CollectionDuration prometheus.Histogram
	WorkerJobsFailed   *prometheus.CounterVec
	WorkerJobsDone     *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RPCRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rpc_requests_total",
				Help: "Protocol requests handled by the dispatcher",
			},
			[]string{"method", "outcome"},
		),
		RPCDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rpc_request_duration_seconds",
				Help:    "Duration of dispatcher calls in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		GatewayReads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_reads_total",
				Help: "Gateway reads by entity and answering source",
			},
			[]string{"entity", "source"},
		),
		GatewayFallbacks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_fallbacks_total",
				Help: "Primary store failures answered from the snapshot",
			},
			[]string{"entity"},
		),
		GatewayCacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_cache_hits_total",
				Help: "Primary answers served from the read-through cache",
			},
			[]string{"entity"},
		),
		CollectionCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orchestrator_calls_total",
				Help: "Per-capability tool calls issued by the orchestrator",
			},
			[]string{"tool", "outcome"},
		),
		CollectionDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "orchestrator_collection_duration_seconds",
				Help:    "Duration of a full collection pass",
				Buckets: prometheus.DefBuckets,
			},
		),
		WorkerJobsDone: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "worker_jobs_completed_total",
				Help: "Total number of jobs completed by worker",
			},
			[]string{"task_type"},
		),
		WorkerJobsFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "worker_jobs_failed_total",
				Help: "Total number of jobs failed by worker",
			},
			[]string{"task_type", "error_code"},
		),
	}
}

// NewNop returns collectors bound to a throwaway registry.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}
