package domain

import "time"

// EndpointKind selects how an endpoint is probed.
type EndpointKind string

const (
	EndpointRPC        EndpointKind = "rpc"
	EndpointCheckpoint EndpointKind = "checkpoint"
)

// Endpoint is a public endpoint declared in configuration.
type Endpoint struct {
	ID   string       `yaml:"id"   json:"id"`
	Kind EndpointKind `yaml:"kind" json:"kind"`
	URL  string       `yaml:"url"  json:"url"`
}

// ProbeStatus is the liveness classification of an endpoint.
type ProbeStatus string

const (
	ProbeOnline   ProbeStatus = "online"
	ProbeOffline  ProbeStatus = "offline"
	ProbeChecking ProbeStatus = "checking"
)

// ProbeResult is the outcome of one probe. LatencyMs is always set once the probe settled.
type ProbeResult struct {
	Status    ProbeStatus `json:"status"`
	LatencyMs int64       `json:"latency_ms"`
	Fallback  bool        `json:"fallback,omitempty"`
	Error     string      `json:"error,omitempty"`
	CheckedAt time.Time   `json:"checked_at"`
}
