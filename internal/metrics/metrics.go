package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OracleRequestsTotal counts oracle requests by method and outcome category
	OracleRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oracle_requests_total",
			Help: "Total number of oracle query and sign requests",
		},
		[]string{"method", "outcome"},
	)

	// OracleRequestDuration tracks oracle request processing time
	OracleRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "oracle_request_duration_seconds",
			Help:    "Oracle request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// OracleRevealedComponents tracks how many components each signing request disclosed
	OracleRevealedComponents = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "oracle_revealed_components",
			Help:    "Number of components revealed in filtered views sent to the oracle",
			Buckets: []float64{1, 2, 4, 8, 16, 32},
		},
	)

	// RegistryCacheTotal counts identity registry cache lookups by result (hit, miss, error)
	RegistryCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oracle_registry_cache_total",
			Help: "Total number of identity registry cache lookups",
		},
		[]string{"result"},
	)

	// NotaryFinalizationsTotal counts finalisation attempts by outcome category
	NotaryFinalizationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notary_finalizations_total",
			Help: "Total number of transactions submitted for finality",
		},
		[]string{"outcome"},
	)

	// FlowStepsTotal counts requester flow steps reached
	FlowStepsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "requester_flow_steps_total",
			Help: "Total number of requester flow steps reached",
		},
		[]string{"step"},
	)
)
