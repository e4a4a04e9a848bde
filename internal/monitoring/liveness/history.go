package liveness

import (
	"sync"
	"time"

	"github.com/vietddude/netwatch/internal/core/domain"
)

// Stats summarises the recent probe outcomes of one endpoint.
type Stats struct {
	Samples       int     `json:"samples"`
	UptimePercent float64 `json:"uptime_percent"`
	AvgLatencyMs  int64   `json:"avg_latency_ms"`
	LastOnline    string  `json:"last_online,omitempty"`
}

type sample struct {
	online  bool
	latency time.Duration
	at      time.Time
}

// History keeps a sliding window of probe outcomes per endpoint.
type History struct {
	mu sync.RWMutex

	maxSamples int
	samples    map[string][]sample
}

// NewHistory creates a history that remembers up to maxSamples cycles per endpoint.
func NewHistory(maxSamples int) *History {
	if maxSamples <= 0 {
		maxSamples = 30
	}
	return &History{
		maxSamples: maxSamples,
		samples:    make(map[string][]sample),
	}
}

// Record appends one completed probe cycle. Checking results are ignored.
func (h *History) Record(results map[string]domain.ProbeResult) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, r := range results {
		if r.Status == domain.ProbeChecking {
			continue
		}
		window := append(h.samples[id], sample{
			online:  r.Status == domain.ProbeOnline,
			latency: time.Duration(r.LatencyMs) * time.Millisecond,
			at:      r.CheckedAt,
		})
		if len(window) > h.maxSamples {
			window = window[len(window)-h.maxSamples:]
		}
		h.samples[id] = window
	}
}

// Retain drops every endpoint not listed in ids.
func (h *History) Retain(ids []string) {
	keep := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		keep[id] = struct{}{}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for id := range h.samples {
		if _, ok := keep[id]; !ok {
			delete(h.samples, id)
		}
	}
}

// Stats returns the summary for id. Latency is averaged over online samples only.
func (h *History) Stats(id string) Stats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	window := h.samples[id]
	stats := Stats{Samples: len(window)}
	if len(window) == 0 {
		return stats
	}

	var online int
	var total time.Duration
	for _, s := range window {
		if !s.online {
			continue
		}
		online++
		total += s.latency
		stats.LastOnline = s.at.Format(time.RFC3339)
	}

	stats.UptimePercent = float64(online) / float64(len(window)) * 100
	if online > 0 {
		stats.AvgLatencyMs = (total / time.Duration(online)).Milliseconds()
	}
	return stats
}
