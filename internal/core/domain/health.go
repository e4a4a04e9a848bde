package domain

// HealthStatus is the overall classification of the network.
type HealthStatus string

const (
	HealthUnknown  HealthStatus = "unknown"
	HealthHealthy  HealthStatus = "healthy"
	HealthDegraded HealthStatus = "degraded"
	HealthCritical HealthStatus = "critical"
)

// HealthReport is derived from a single snapshot and the current epoch-metrics window.
// Nil pointers mean the input needed for the value was unavailable.
type HealthReport struct {
	Status HealthStatus `json:"status"`

	FinalizedLagEpochs *int64 `json:"finalized_lag_epochs"`
	JustifiedLagEpochs *int64 `json:"justified_lag_epochs"`
	IsFinalizing       bool   `json:"is_finalizing"`
	IsJustifying       bool   `json:"is_justifying"`

	UnfinalityEpochs          *int64 `json:"unfinality_epochs"`
	UnfinalityDurationSeconds *int64 `json:"unfinality_duration_seconds"`

	ParticipationPercent   *float64 `json:"participation_percent"`
	IsParticipationLow     bool     `json:"is_participation_low"`
	BlockProductionPercent *float64 `json:"block_production_percent"`

	// Mean of the per-epoch sync participation values reported upstream.
	SyncParticipationAvg *float64 `json:"sync_participation_avg"`
}
