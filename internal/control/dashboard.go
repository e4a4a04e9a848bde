// Package control runs the refresh and probe cycles and owns every piece of state
// that outlives a single cycle.
package control

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/vietddude/netwatch/internal/core/chainclock"
	"github.com/vietddude/netwatch/internal/core/domain"
	"github.com/vietddude/netwatch/internal/infra/beaconapi"
	"github.com/vietddude/netwatch/internal/monitoring/forks"
	"github.com/vietddude/netwatch/internal/monitoring/health"
	"github.com/vietddude/netwatch/internal/monitoring/liveness"
	"github.com/vietddude/netwatch/internal/monitoring/metrics"
)

// Source supplies raw network data.
type Source interface {
	Overview(ctx context.Context) (*domain.NetworkSnapshot, error)
	Splits(ctx context.Context) (*domain.NetworkSplits, error)
	Epochs(ctx context.Context, limit int) ([]domain.EpochMetrics, error)
}

// EndpointProber checks a set of endpoints and returns once all settled.
type EndpointProber interface {
	ProbeAll(ctx context.Context, endpoints []domain.Endpoint) map[string]domain.ProbeResult
}

// EpochClock reports the wall-clock epoch.
type EpochClock interface {
	Epoch() (uint64, error)
}

// Options configures a Dashboard.
type Options struct {
	Source    Source
	Prober    EndpointProber
	Clock     EpochClock // optional
	Endpoints []domain.Endpoint
	Fallback  []domain.DisplayFork

	EpochWindow     int
	HistorySize     int
	RefreshInterval time.Duration
	ProbeInterval   time.Duration
	RecencyInterval time.Duration
}

// Dashboard publishes immutable State and ProbeSet values. Readers always see
// either the previous or the next complete value.
type Dashboard struct {
	source   Source
	prober   EndpointProber
	clock    EpochClock
	fallback []domain.DisplayFork

	windowSize      int
	refreshInterval time.Duration
	probeInterval   time.Duration
	recencyInterval time.Duration

	mu        sync.Mutex
	window    []domain.EpochMetrics
	endpoints []domain.Endpoint

	probeMu sync.Mutex
	history *liveness.History
	reprobe chan struct{}

	state  atomic.Pointer[domain.State]
	probes atomic.Pointer[domain.ProbeSet]

	now func() time.Time
	log *slog.Logger
}

// NewDashboard creates a dashboard. Nothing runs until Run or one of the cycle
// methods is called.
func NewDashboard(opts Options) *Dashboard {
	if opts.EpochWindow <= 0 {
		opts.EpochWindow = 10
	}
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = 5 * time.Minute
	}
	if opts.ProbeInterval <= 0 {
		opts.ProbeInterval = 2 * time.Minute
	}
	if opts.RecencyInterval <= 0 {
		opts.RecencyInterval = 30 * time.Second
	}

	return &Dashboard{
		source:          opts.Source,
		prober:          opts.Prober,
		clock:           opts.Clock,
		fallback:        opts.Fallback,
		windowSize:      opts.EpochWindow,
		refreshInterval: opts.RefreshInterval,
		probeInterval:   opts.ProbeInterval,
		recencyInterval: opts.RecencyInterval,
		endpoints:       append([]domain.Endpoint(nil), opts.Endpoints...),
		history:         liveness.NewHistory(opts.HistorySize),
		reprobe:         make(chan struct{}, 1),
		now:             time.Now,
		log:             slog.Default().With("component", "dashboard"),
	}
}

// State returns the latest refresh result, or nil before the first cycle.
func (d *Dashboard) State() *domain.State {
	return d.state.Load()
}

// Probes returns the latest probe set, or nil before the first probe cycle.
func (d *Dashboard) Probes() *domain.ProbeSet {
	return d.probes.Load()
}

// Endpoints returns a copy of the declared endpoint list.
func (d *Dashboard) Endpoints() []domain.Endpoint {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]domain.Endpoint(nil), d.endpoints...)
}

// SetEndpoints replaces the declared endpoint list and schedules a probe cycle.
func (d *Dashboard) SetEndpoints(endpoints []domain.Endpoint) {
	d.mu.Lock()
	d.endpoints = append([]domain.Endpoint(nil), endpoints...)
	d.mu.Unlock()

	d.log.Info("Endpoint list updated", "count", len(endpoints))
	select {
	case d.reprobe <- struct{}{}:
	default:
	}
}

// Run executes both cycles immediately and then on their intervals until ctx is done.
func (d *Dashboard) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		d.Refresh(ctx)
		return tick(ctx, d.refreshInterval, nil, func() { d.Refresh(ctx) })
	})
	g.Go(func() error {
		d.ProbeEndpoints(ctx)
		return tick(ctx, d.probeInterval, d.reprobe, func() { d.ProbeEndpoints(ctx) })
	})
	g.Go(func() error {
		return tick(ctx, d.recencyInterval, nil, d.touchRecency)
	})

	return g.Wait()
}

func tick(ctx context.Context, every time.Duration, extra <-chan struct{}, fn func()) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			fn()
		case <-extra:
			fn()
		}
	}
}

// Refresh runs one refresh cycle and publishes its State. Upstream failures
// degrade the result instead of failing the cycle.
func (d *Dashboard) Refresh(ctx context.Context) *domain.State {
	cycleID := uuid.NewString()
	log := d.log.With("cycle", cycleID)
	start := d.now()

	var (
		snapshot *domain.NetworkSnapshot
		splits   *domain.NetworkSplits
		epochs   []domain.EpochMetrics
		epochErr error
	)

	var g errgroup.Group
	g.Go(func() error {
		var err error
		if snapshot, err = d.source.Overview(ctx); err != nil {
			logFetchError(log, "overview", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if splits, err = d.source.Splits(ctx); err != nil {
			logFetchError(log, "splits", err)
		}
		return nil
	})
	g.Go(func() error {
		if epochs, epochErr = d.source.Epochs(ctx, d.windowSize); epochErr != nil {
			logFetchError(log, "epochs", epochErr)
		}
		return nil
	})
	_ = g.Wait()

	window := d.mergeWindow(epochs, epochErr == nil)

	timeline, source := d.timeline(snapshot)
	report := health.Evaluate(health.Input{
		Snapshot: snapshot,
		Splits:   splits,
		Window:   window,
	})

	now := d.now()
	state := &domain.State{
		CycleID:        cycleID,
		UpdatedAt:      now.UTC(),
		UpdatedAgo:     humanize.Time(now),
		TimelineSource: source,
		Forks:          timeline,
		Versions:       forks.CurrentVersions(timeline, now),
		Health:         report,
		Live:           d.liveStatus(snapshot),
	}
	d.state.Store(state)

	recordHealth(report)
	outcome := "ok"
	if snapshot == nil || splits == nil || epochErr != nil {
		outcome = "degraded"
	}
	metrics.CyclesTotal.WithLabelValues("refresh", outcome).Inc()

	log.Info("Refresh cycle completed",
		"status", report.Status,
		"timeline", source,
		"forks", len(timeline),
		"window", len(window),
		"duration", now.Sub(start))
	return state
}

func logFetchError(log *slog.Logger, what string, err error) {
	if errors.Is(err, beaconapi.ErrDataUnavailable) {
		log.Warn("Network data unavailable", "source", what, "error", err)
		return
	}
	log.Error("Fetch failed", "source", what, "error", err)
}

// mergeWindow folds fresh epoch metrics into the rolling window, newest first.
// The same epoch reported again replaces the older entry.
func (d *Dashboard) mergeWindow(fresh []domain.EpochMetrics, ok bool) []domain.EpochMetrics {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !ok {
		return d.window
	}

	byEpoch := make(map[uint64]domain.EpochMetrics, len(d.window)+len(fresh))
	for _, m := range d.window {
		byEpoch[m.Epoch] = m
	}
	for _, m := range fresh {
		byEpoch[m.Epoch] = m
	}

	merged := make([]domain.EpochMetrics, 0, len(byEpoch))
	for _, m := range byEpoch {
		merged = append(merged, m)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Epoch > merged[j].Epoch })
	if len(merged) > d.windowSize {
		merged = merged[:d.windowSize]
	}

	d.window = merged
	return merged
}

func (d *Dashboard) timeline(snapshot *domain.NetworkSnapshot) ([]domain.DisplayFork, domain.TimelineSource) {
	if snapshot != nil && len(snapshot.Forks) > 0 {
		return forks.Normalize(snapshot.Forks), domain.TimelineLive
	}
	return append([]domain.DisplayFork(nil), d.fallback...), domain.TimelineFallback
}

func (d *Dashboard) liveStatus(snapshot *domain.NetworkSnapshot) *domain.LiveStatus {
	if snapshot == nil || snapshot.CurrentState == nil {
		return nil
	}

	live := &domain.LiveStatus{
		HeadSlot:      snapshot.CurrentState.CurrentSlot,
		HeadEpoch:     snapshot.CurrentState.CurrentEpoch,
		EpochProgress: snapshot.CurrentState.CurrentEpochProgress,
		IsSynced:      snapshot.IsSynced,
	}
	if cp := snapshot.Checkpoints; cp != nil {
		live.FinalizedEpoch = cp.FinalizedEpoch
		live.JustifiedEpoch = cp.JustifiedEpoch
	}
	if vs := snapshot.ValidatorStats; vs != nil {
		live.ActiveValidators = vs.ActiveValidatorCount
	}
	if qs := snapshot.QueueStats; qs != nil {
		live.EnteringValidators = qs.EnteringValidatorCount
		live.ExitingValidators = qs.ExitingValidatorCount
	}

	if d.clock != nil {
		epoch, err := d.clock.Epoch()
		if err != nil {
			d.log.Debug("Wall clock unavailable", "error", err)
		} else {
			live.WallclockEpoch = epoch
			live.HeadDelayEpochs = chainclock.HeadDelayEpochs(epoch, live.HeadEpoch)
		}
	}
	return live
}

// ProbeEndpoints runs one probe cycle. Every endpoint is published as checking
// first, then the settled set replaces it.
func (d *Dashboard) ProbeEndpoints(ctx context.Context) *domain.ProbeSet {
	d.probeMu.Lock()
	defer d.probeMu.Unlock()

	endpoints := d.Endpoints()
	ids := make([]string, len(endpoints))
	for i, ep := range endpoints {
		ids[i] = ep.ID
	}
	d.history.Retain(ids)

	cycleID := uuid.NewString()
	started := d.now().UTC()

	checking := make(map[string]domain.ProbeResult, len(endpoints))
	for _, ep := range endpoints {
		checking[ep.ID] = domain.ProbeResult{Status: domain.ProbeChecking}
	}
	d.probes.Store(d.probeSet(cycleID, started, endpoints, checking, false))

	results := d.prober.ProbeAll(ctx, endpoints)
	d.history.Record(results)

	set := d.probeSet(cycleID, started, endpoints, results, true)
	d.probes.Store(set)

	online := 0
	for _, ep := range endpoints {
		r := results[ep.ID]
		up := 0.0
		if r.Status == domain.ProbeOnline {
			up = 1
			online++
		}
		metrics.EndpointUp.WithLabelValues(ep.ID, string(ep.Kind)).Set(up)
		metrics.EndpointLatency.WithLabelValues(ep.ID, string(ep.Kind)).Observe(float64(r.LatencyMs) / 1000)
	}
	metrics.CyclesTotal.WithLabelValues("probe", "ok").Inc()

	d.log.Info("Probe cycle completed", "cycle", cycleID, "online", online, "total", len(endpoints))
	return set
}

func (d *Dashboard) probeSet(
	cycleID string,
	started time.Time,
	endpoints []domain.Endpoint,
	results map[string]domain.ProbeResult,
	complete bool,
) *domain.ProbeSet {
	set := &domain.ProbeSet{
		CycleID:   cycleID,
		StartedAt: started,
		Complete:  complete,
		Endpoints: make([]domain.EndpointStatus, 0, len(endpoints)),
	}
	for _, ep := range endpoints {
		stats := d.history.Stats(ep.ID)
		set.Endpoints = append(set.Endpoints, domain.EndpointStatus{
			Endpoint:      ep,
			ProbeResult:   results[ep.ID],
			UptimePercent: stats.UptimePercent,
			AvgLatencyMs:  stats.AvgLatencyMs,
			Samples:       stats.Samples,
		})
	}
	return set
}

// touchRecency republishes the current State with a fresh "updated ago" label.
// A refresh that lands in between wins.
func (d *Dashboard) touchRecency() {
	current := d.state.Load()
	if current == nil {
		return
	}
	next := *current
	next.UpdatedAgo = humanize.Time(current.UpdatedAt)
	d.state.CompareAndSwap(current, &next)
}

func recordHealth(r domain.HealthReport) {
	setOrNaN(metrics.FinalizedLagEpochs, int64Value(r.FinalizedLagEpochs))
	setOrNaN(metrics.JustifiedLagEpochs, int64Value(r.JustifiedLagEpochs))
	setOrNaN(metrics.ParticipationPercent, r.ParticipationPercent)
	setOrNaN(metrics.BlockProductionPercent, r.BlockProductionPercent)
	for _, s := range []domain.HealthStatus{domain.HealthUnknown, domain.HealthHealthy, domain.HealthDegraded, domain.HealthCritical} {
		v := 0.0
		if s == r.Status {
			v = 1
		}
		metrics.HealthStatus.WithLabelValues(string(s)).Set(v)
	}
}

// setOrNaN exports a missing value as NaN so scrapes never see a stale reading.
func setOrNaN(g prometheus.Gauge, v *float64) {
	if v == nil {
		g.Set(math.NaN())
		return
	}
	g.Set(*v)
}

func int64Value(v *int64) *float64 {
	if v == nil {
		return nil
	}
	f := float64(*v)
	return &f
}
