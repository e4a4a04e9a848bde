package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FinalizedLagEpochs tracks the distance between the current and finalized epoch
	FinalizedLagEpochs = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "netwatch_finalized_lag_epochs",
			Help: "Epochs between the current epoch and the last finalized epoch",
		},
	)

	// JustifiedLagEpochs tracks the distance between the current and justified epoch
	JustifiedLagEpochs = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "netwatch_justified_lag_epochs",
			Help: "Epochs between the current epoch and the last justified epoch",
		},
	)

	// ParticipationPercent tracks the canonical chain's best recent participation
	ParticipationPercent = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "netwatch_participation_percent",
			Help: "Highest recent epoch participation of the canonical chain",
		},
	)

	// BlockProductionPercent tracks proposed blocks over scheduled slots in the window
	BlockProductionPercent = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "netwatch_block_production_percent",
			Help: "Proposed blocks as a percentage of proposed plus missed in the recent window",
		},
	)

	// HealthStatus is 1 for the current status label and 0 for every other
	HealthStatus = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "netwatch_health_status",
			Help: "Current network health classification",
		},
		[]string{"status"},
	)

	// EndpointUp tracks whether an endpoint answered its last probe
	EndpointUp = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "netwatch_endpoint_up",
			Help: "1 if the endpoint was online at the last probe",
		},
		[]string{"endpoint", "kind"},
	)

	// EndpointLatency tracks probe round trips
	EndpointLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "netwatch_endpoint_latency_seconds",
			Help:    "Endpoint probe latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "kind"},
	)

	// UpstreamRequestsTotal tracks explorer API requests by outcome
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netwatch_upstream_requests_total",
			Help: "Total number of explorer API requests",
		},
		[]string{"source", "outcome"},
	)

	// CyclesTotal tracks completed refresh and probe cycles
	CyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netwatch_cycles_total",
			Help: "Total number of completed background cycles",
		},
		[]string{"cycle", "outcome"},
	)
)
