package forks

import (
	"time"

	"github.com/vietddude/netwatch/internal/core/domain"
)

// IsActive reports whether f is in effect at now. The explorer's active flag wins;
// without it genesis is active and later forks are judged by their timestamp.
func IsActive(f domain.DisplayFork, now time.Time) bool {
	if f.Active != nil {
		return *f.Active
	}
	if f.IsGenesis {
		return true
	}
	return f.Timestamp <= now.Unix()
}

// CurrentVersions walks the timeline and keeps the versions of the latest active fork.
func CurrentVersions(timeline []domain.DisplayFork, now time.Time) domain.ForkVersions {
	var v domain.ForkVersions
	for _, f := range timeline {
		if !IsActive(f, now) {
			continue
		}
		if f.ExecutionVersion != nil {
			v.Execution = f.ExecutionVersion
		}
		if f.ConsensusVersion != nil {
			v.Consensus = f.ConsensusVersion
		}
	}
	return v
}
