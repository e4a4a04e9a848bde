// Package chainclock derives beacon chain slots and epochs from wall-clock time.
package chainclock

import (
	"fmt"
	"time"

	"github.com/ethpandaops/ethwallclock"
)

// Clock reports the slot and epoch the chain should be at right now, independent of
// what any explorer reports.
type Clock struct {
	wallclock *ethwallclock.EthereumBeaconChain
}

// New creates a clock for a chain with the given genesis and timing parameters.
func New(genesis time.Time, secondsPerSlot, slotsPerEpoch uint64) *Clock {
	return &Clock{
		wallclock: ethwallclock.NewEthereumBeaconChain(
			genesis,
			time.Duration(secondsPerSlot)*time.Second,
			slotsPerEpoch,
		),
	}
}

// Epoch returns the current wall-clock epoch.
func (c *Clock) Epoch() (uint64, error) {
	_, epoch, err := c.wallclock.Now()
	if err != nil {
		return 0, fmt.Errorf("wallclock epoch: %w", err)
	}
	return epoch.Number(), nil
}

// EpochAt returns the epoch containing t.
func (c *Clock) EpochAt(t time.Time) (uint64, error) {
	_, epoch, err := c.wallclock.FromTime(t)
	if err != nil {
		return 0, fmt.Errorf("wallclock epoch: %w", err)
	}
	return epoch.Number(), nil
}

// Stop releases the clock's internal tickers.
func (c *Clock) Stop() {
	c.wallclock.Stop()
}

// HeadDelayEpochs is how far a reported head epoch trails the wall clock.
// A head ahead of the wall clock counts as no delay.
func HeadDelayEpochs(wallclockEpoch, headEpoch uint64) uint64 {
	if headEpoch >= wallclockEpoch {
		return 0
	}
	return wallclockEpoch - headEpoch
}
