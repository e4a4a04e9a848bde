package domain

// ForkType distinguishes protocol upgrades from blob-parameter-only schedule changes.
type ForkType string

const (
	ForkTypeConsensus ForkType = "consensus"
	ForkTypeBPO       ForkType = "bpo"
)

// ForkEvent is a single fork entry as reported by the explorer API.
// Several events may share an epoch.
type ForkEvent struct {
	Epoch  uint64   `json:"epoch"`
	Time   int64    `json:"time,omitempty"`
	Active *bool    `json:"active,omitempty"`
	Type   ForkType `json:"type"`
	Name   string   `json:"name"`
}

// DisplayFork is one row of the normalized fork timeline.
type DisplayFork struct {
	Name             string  `json:"name"`
	Timestamp        int64   `json:"timestamp"`
	Epoch            uint64  `json:"epoch"`
	ExecutionVersion *string `json:"execution_version"`
	ConsensusVersion *string `json:"consensus_version"`
	IsGenesis        bool    `json:"is_genesis"`
	Active           *bool   `json:"active"`
}

// ConsensusFork enumerates the consensus-layer versions the timeline knows how to pair.
type ConsensusFork uint8

const (
	ForkUnknown ConsensusFork = iota
	ForkPhase0
	ForkAltair
	ForkBellatrix
	ForkCapella
	ForkDeneb
	ForkElectra
	ForkFulu
)

var consensusForkNames = map[ConsensusFork]string{
	ForkPhase0:    "Phase0",
	ForkAltair:    "Altair",
	ForkBellatrix: "Bellatrix",
	ForkCapella:   "Capella",
	ForkDeneb:     "Deneb",
	ForkElectra:   "Electra",
	ForkFulu:      "Fulu",
}

// String implements fmt.Stringer.
func (f ConsensusFork) String() string {
	s, ok := consensusForkNames[f]
	if !ok {
		return "Unknown"
	}
	return s
}

// ParseConsensusFork maps an upstream fork name onto the enumeration.
// Names are matched exactly; anything else is ForkUnknown.
func ParseConsensusFork(name string) ConsensusFork {
	for f, s := range consensusForkNames {
		if s == name {
			return f
		}
	}
	return ForkUnknown
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool {
	return &b
}
