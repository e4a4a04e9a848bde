// Package health derives network health indicators from a snapshot and serves them over HTTP.
package health

import (
	"github.com/vietddude/netwatch/internal/core/domain"
)

// Display thresholds. They are fixed and do not depend on the network's parameters.
const (
	MaxFinalizedLagEpochs = 3
	MaxJustifiedLagEpochs = 2

	// Participation below two thirds cannot reach the consensus quorum.
	LowParticipationPercent = 66.0

	DefaultSecondsPerEpoch = 384
)

// Input is everything one evaluation looks at. Any field may be nil or empty.
type Input struct {
	Snapshot *domain.NetworkSnapshot
	Splits   *domain.NetworkSplits
	Window   []domain.EpochMetrics
}

// Evaluate computes a fresh HealthReport. It reads nothing but its input,
// never fails and is safe for concurrent use.
func Evaluate(in Input) domain.HealthReport {
	report := domain.HealthReport{Status: domain.HealthUnknown}

	if s := in.Snapshot; s != nil && s.CurrentState != nil && s.Checkpoints != nil {
		current := int64(s.CurrentState.CurrentEpoch)
		finalizedLag := current - s.Checkpoints.FinalizedEpoch
		justifiedLag := current - s.Checkpoints.JustifiedEpoch

		report.FinalizedLagEpochs = &finalizedLag
		report.JustifiedLagEpochs = &justifiedLag
		report.IsFinalizing = finalizedLag <= MaxFinalizedLagEpochs
		report.IsJustifying = justifiedLag <= MaxJustifiedLagEpochs

		var unfinality, duration int64
		if !report.IsFinalizing {
			unfinality = max(finalizedLag-2, 0)
			duration = unfinality * secondsPerEpoch(s.CurrentState)
		}
		report.UnfinalityEpochs = &unfinality
		report.UnfinalityDurationSeconds = &duration
	}

	report.ParticipationPercent = participation(in.Splits)
	if report.ParticipationPercent != nil {
		report.IsParticipationLow = *report.ParticipationPercent < LowParticipationPercent
	}

	report.BlockProductionPercent = blockProduction(in.Window)
	report.SyncParticipationAvg = syncParticipation(in.Window)

	report.Status = classify(report)
	return report
}

func secondsPerEpoch(cs *domain.CurrentState) int64 {
	if cs.SecondsPerEpoch == 0 {
		return DefaultSecondsPerEpoch
	}
	return int64(cs.SecondsPerEpoch)
}

// participation is the best of the canonical branch's recent epochs, not their mean.
func participation(splits *domain.NetworkSplits) *float64 {
	canonical := splits.Canonical()
	if canonical == nil || len(canonical.LastEpochParticipation) == 0 {
		return nil
	}

	best := canonical.LastEpochParticipation[0]
	for _, p := range canonical.LastEpochParticipation[1:] {
		if p > best {
			best = p
		}
	}
	return &best
}

func blockProduction(window []domain.EpochMetrics) *float64 {
	var proposed, missed uint64
	for _, m := range window {
		proposed += m.ProposedBlocks
		missed += m.MissedBlocks
	}
	if proposed+missed == 0 {
		return nil
	}

	pct := float64(proposed) / float64(proposed+missed) * 100
	return &pct
}

func syncParticipation(window []domain.EpochMetrics) *float64 {
	if len(window) == 0 {
		return nil
	}

	var total float64
	for _, m := range window {
		total += m.SyncParticipation
	}
	avg := total / float64(len(window))
	return &avg
}

func classify(r domain.HealthReport) domain.HealthStatus {
	if r.FinalizedLagEpochs == nil {
		return domain.HealthUnknown
	}
	if !r.IsFinalizing {
		return domain.HealthCritical
	}
	if !r.IsJustifying || r.IsParticipationLow {
		return domain.HealthDegraded
	}
	return domain.HealthHealthy
}
