// Package forks turns the explorer's raw fork list into the display timeline.
package forks

import (
	"regexp"
	"sort"
	"strings"

	"github.com/vietddude/netwatch/internal/core/domain"
)

// Genesis naming is fixed: the network launched with every fork up to Deneb active.
const (
	GenesisName      = "Merge / Shapella / Dencun"
	GenesisExecution = "Cancun"
	GenesisConsensus = "Deneb"
)

// BPO epochs preceding any other fork fall back to this pair.
const (
	DefaultBPOExecution = "Osaka"
	DefaultBPOConsensus = "Fulu"
)

type pairing struct {
	execution string
	label     string // empty means "{execution}/{consensus}"
}

var knownPairings = map[domain.ConsensusFork]pairing{
	domain.ForkDeneb:   {execution: "Cancun"},
	domain.ForkElectra: {execution: "Prague", label: "Pectra (Prague/Electra)"},
	domain.ForkFulu:    {execution: "Osaka", label: "Fusaka (Osaka/Fulu)"},
}

var bpoName = regexp.MustCompile(`^BPO(\d+)$`)

type epochGroup struct {
	epoch     uint64
	timestamp int64
	active    *bool
	bpo       bool
	consensus []string
	execution []string
	bpoLabels []string
}

// Normalize groups events by epoch and emits one DisplayFork per epoch, ascending.
// Epoch 0 is always present and always carries the genesis naming.
//
// Within an epoch the last consensus name and the last paired execution name win.
// Malformed input degrades to nil versions, never to an error.
func Normalize(events []domain.ForkEvent) []domain.DisplayFork {
	groups := make(map[uint64]*epochGroup)

	for _, ev := range events {
		g, ok := groups[ev.Epoch]
		if !ok {
			g = &epochGroup{
				epoch:     ev.Epoch,
				timestamp: ev.Time,
				active:    ev.Active,
			}
			groups[ev.Epoch] = g
		}

		switch ev.Type {
		case domain.ForkTypeConsensus:
			g.consensus = append(g.consensus, ev.Name)
			if p, ok := knownPairings[domain.ParseConsensusFork(ev.Name)]; ok {
				g.execution = append(g.execution, p.execution)
			}
		case domain.ForkTypeBPO:
			g.bpoLabels = append(g.bpoLabels, bpoName.ReplaceAllString(ev.Name, "BPO $1"))
			g.bpo = true
		}
	}

	if _, ok := groups[0]; !ok {
		groups[0] = &epochGroup{epoch: 0}
	}

	epochs := make([]uint64, 0, len(groups))
	for epoch := range groups {
		epochs = append(epochs, epoch)
	}
	sort.Slice(epochs, func(i, j int) bool { return epochs[i] < epochs[j] })

	timeline := make([]domain.DisplayFork, 0, len(epochs))
	for _, epoch := range epochs {
		g := groups[epoch]

		var prev *domain.DisplayFork
		if n := len(timeline); n > 0 {
			prev = &timeline[n-1]
		}

		fork := domain.DisplayFork{
			Timestamp: g.timestamp,
			Epoch:     epoch,
			IsGenesis: epoch == 0,
			Active:    g.active,
		}

		switch {
		case epoch == 0:
			fork.Name = GenesisName
			fork.ExecutionVersion = domain.StringPtr(GenesisExecution)
			fork.ConsensusVersion = domain.StringPtr(GenesisConsensus)

		case g.bpo:
			fork.Name = strings.Join(g.bpoLabels, " / ")
			if prev != nil {
				fork.ExecutionVersion = prev.ExecutionVersion
				fork.ConsensusVersion = prev.ConsensusVersion
			} else {
				fork.ExecutionVersion = domain.StringPtr(DefaultBPOExecution)
				fork.ConsensusVersion = domain.StringPtr(DefaultBPOConsensus)
			}

		default:
			fork.ConsensusVersion = last(g.consensus)
			fork.ExecutionVersion = last(g.execution)
			if fork.ExecutionVersion == nil && prev != nil {
				fork.ExecutionVersion = prev.ExecutionVersion
			}
			fork.Name = displayName(fork.ExecutionVersion, fork.ConsensusVersion)
		}

		timeline = append(timeline, fork)
	}

	return timeline
}

func displayName(execution, consensus *string) string {
	if consensus != nil {
		if p, ok := knownPairings[domain.ParseConsensusFork(*consensus)]; ok && p.label != "" {
			return p.label
		}
	}

	switch {
	case execution != nil && consensus != nil:
		return *execution + "/" + *consensus
	case consensus != nil:
		return *consensus
	case execution != nil:
		return *execution
	}
	return ""
}

func last(values []string) *string {
	if len(values) == 0 {
		return nil
	}
	return domain.StringPtr(values[len(values)-1])
}
