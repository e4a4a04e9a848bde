package domain

import "time"

// ForkVersions is the pair of protocol versions the network currently runs.
type ForkVersions struct {
	Execution *string `json:"execution_version"`
	Consensus *string `json:"consensus_version"`
}

// TimelineSource tells whether the fork timeline came from the explorer or from config.
type TimelineSource string

const (
	TimelineLive     TimelineSource = "live"
	TimelineFallback TimelineSource = "fallback"
)

// LiveStatus is the head of the chain as last reported by the explorer.
type LiveStatus struct {
	HeadSlot           uint64  `json:"head_slot"`
	HeadEpoch          uint64  `json:"head_epoch"`
	EpochProgress      float64 `json:"epoch_progress"`
	FinalizedEpoch     int64   `json:"finalized_epoch"`
	JustifiedEpoch     int64   `json:"justified_epoch"`
	ActiveValidators   uint64  `json:"active_validators"`
	EnteringValidators uint64  `json:"entering_validators"`
	ExitingValidators  uint64  `json:"exiting_validators"`
	IsSynced           bool    `json:"is_synced"`

	// Wall-clock view of the chain, independent of the explorer.
	WallclockEpoch  uint64 `json:"wallclock_epoch"`
	HeadDelayEpochs uint64 `json:"head_delay_epochs"`
}

// State is the published result of one refresh cycle. It is never mutated after
// publication.
type State struct {
	CycleID        string         `json:"cycle_id"`
	UpdatedAt      time.Time      `json:"updated_at"`
	UpdatedAgo     string         `json:"updated_ago"`
	TimelineSource TimelineSource `json:"timeline_source"`
	Forks          []DisplayFork  `json:"forks"`
	Versions       ForkVersions   `json:"versions"`
	Health         HealthReport   `json:"health"`
	Live           *LiveStatus    `json:"live"`
}

// EndpointStatus joins an endpoint with its latest probe result and recent history.
type EndpointStatus struct {
	Endpoint
	ProbeResult
	UptimePercent float64 `json:"uptime_percent"`
	AvgLatencyMs  int64   `json:"avg_latency_ms"`
	Samples       int     `json:"samples"`
}

// ProbeSet is the published result of one probe cycle, in configuration order.
type ProbeSet struct {
	CycleID   string           `json:"cycle_id"`
	StartedAt time.Time        `json:"started_at"`
	Complete  bool             `json:"complete"`
	Endpoints []EndpointStatus `json:"endpoints"`
}
