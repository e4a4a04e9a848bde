package domain

// NetworkSnapshot is the network overview reported by the explorer at one point in time.
type NetworkSnapshot struct {
	NetworkInfo    *NetworkInfo    `json:"network_info"`
	CurrentState   *CurrentState   `json:"current_state"`
	Checkpoints    *Checkpoints    `json:"checkpoints"`
	ValidatorStats *ValidatorStats `json:"validator_stats"`
	QueueStats     *QueueStats     `json:"queue_stats,omitempty"`
	Forks          []ForkEvent     `json:"forks"`
	IsSynced       bool            `json:"is_synced"`
}

type NetworkInfo struct {
	NetworkName string `json:"network_name"`
	ConfigName  string `json:"config_name"`
	GenesisTime int64  `json:"genesis_time"`
}

type CurrentState struct {
	CurrentSlot          uint64  `json:"current_slot"`
	CurrentEpoch         uint64  `json:"current_epoch"`
	CurrentEpochProgress float64 `json:"current_epoch_progress"`
	SlotsPerEpoch        uint64  `json:"slots_per_epoch"`
	SecondsPerSlot       uint64  `json:"seconds_per_slot"`
	SecondsPerEpoch      uint64  `json:"seconds_per_epoch"`
}

type Checkpoints struct {
	FinalizedEpoch int64  `json:"finalized_epoch"`
	FinalizedRoot  string `json:"finalized_root,omitempty"`
	JustifiedEpoch int64  `json:"justified_epoch"`
	JustifiedRoot  string `json:"justified_root,omitempty"`
}

type ValidatorStats struct {
	TotalBalance         uint64 `json:"total_balance"`
	TotalActiveBalance   uint64 `json:"total_active_balance"`
	ActiveValidatorCount uint64 `json:"active_validator_count"`
	AverageBalance       uint64 `json:"average_balance"`
	TotalEligibleEther   uint64 `json:"total_eligible_ether"`
}

type QueueStats struct {
	EnteringValidatorCount        uint64 `json:"entering_validator_count"`
	ExitingValidatorCount         uint64 `json:"exiting_validator_count"`
	EnteringEtherAmount           uint64 `json:"entering_ether_amount"`
	EtherChurnPerDay              uint64 `json:"ether_churn_per_day"`
	DepositEstimatedTimeToProcess uint64 `json:"deposit_estimated_time"`
	ExitEstimatedTimeToProcess    uint64 `json:"exit_estimated_time"`
}

// NetworkSplits lists the competing chain branches seen by the explorer.
type NetworkSplits struct {
	CurrentEpoch   uint64       `json:"current_epoch"`
	FinalizedEpoch int64        `json:"finalized_epoch"`
	Splits         []ChainSplit `json:"splits"`
}

type ChainSplit struct {
	ForkID                 string    `json:"fork_id"`
	HeadSlot               uint64    `json:"head_slot"`
	HeadRoot               string    `json:"head_root"`
	TotalChainWeight       uint64    `json:"total_chain_weight"`
	LastEpochParticipation []float64 `json:"last_epoch_participation"`
	IsCanonical            bool      `json:"is_canonical"`
}

// Canonical returns the canonical split, or nil when none is marked.
func (s *NetworkSplits) Canonical() *ChainSplit {
	if s == nil {
		return nil
	}
	for i := range s.Splits {
		if s.Splits[i].IsCanonical {
			return &s.Splits[i]
		}
	}
	return nil
}

// EpochMetrics holds block production and sync committee figures for one epoch.
type EpochMetrics struct {
	Epoch             uint64  `json:"epoch"`
	Finalized         bool    `json:"finalized"`
	ProposedBlocks    uint64  `json:"proposed_blocks"`
	MissedBlocks      uint64  `json:"missed_blocks"`
	OrphanedBlocks    uint64  `json:"orphaned_blocks"`
	SyncParticipation float64 `json:"sync_participation"`
}
